package loader

import (
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/ext/lightspunctual"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kkiej/literp/engine/light"
)

func testDocument() *gltf.Document {
	spotRange := 20.0
	outer := 0.4
	intensity := 3.0
	color := [3]float64{1, 0.5, 0.25}

	return &gltf.Document{
		Scene: gltf.Index(0),
		Scenes: []*gltf.Scene{
			{Name: "room", Nodes: []int{0, 1, 2}},
		},
		Nodes: []*gltf.Node{
			{
				Translation: [3]float64{0, 5, 0},
				Extensions:  gltf.Extensions{lightspunctual.ExtensionName: lightspunctual.LightIndex(0)},
			},
			{
				Translation: [3]float64{10, 0, 0},
				Mesh:        gltf.Index(0),
			},
			{
				Translation: [3]float64{0, 0, 3},
				Children:    []int{3},
			},
			{
				Translation: [3]float64{1, 0, 0},
				Extensions:  gltf.Extensions{lightspunctual.ExtensionName: lightspunctual.LightIndex(1)},
			},
		},
		Meshes: []*gltf.Mesh{
			{Primitives: []*gltf.Primitive{{Attributes: map[string]int{gltf.POSITION: 0}}}},
		},
		Accessors: []*gltf.Accessor{
			{Min: []float64{-1, -1, -1}, Max: []float64{1, 1, 1}},
		},
		Extensions: gltf.Extensions{
			lightspunctual.ExtensionName: lightspunctual.Lights{
				{
					Type:      lightspunctual.TypeSpot,
					Range:     &spotRange,
					Intensity: &intensity,
					Color:     &color,
					Spot:      &lightspunctual.Spot{InnerConeAngle: 0.2, OuterConeAngle: &outer},
				},
				{Type: lightspunctual.TypePoint},
			},
		},
	}
}

func TestSceneFromDocument(t *testing.T) {
	scene, err := SceneFromDocument(testDocument(), nil)
	require.NoError(t, err)

	assert.Equal(t, "room", scene.Name)
	require.Len(t, scene.Lights, 2)

	spot := scene.Lights[0]
	assert.Equal(t, light.LightTypeSpot, spot.Type())
	assertNear(t, mgl32.Vec3{0, 5, 0}, spot.Position())
	assertNear(t, mgl32.Vec3{0, 0, -1}, spot.Direction())
	assertNear(t, mgl32.Vec3{1, 0.5, 0.25}, spot.Color())
	assert.InDelta(t, 3, spot.Intensity(), 1e-6)
	assert.InDelta(t, 20, spot.Range(), 1e-6)
	assert.InDelta(t, 2*mgl32.RadToDeg(0.4), spot.SpotAngle(), 1e-3)
	assert.InDelta(t, 2*mgl32.RadToDeg(0.2), spot.InnerSpotAngle(), 1e-3)
	assert.Equal(t, light.ShadowsSoft, spot.Shadows())

	point := scene.Lights[1]
	assert.Equal(t, light.LightTypePoint, point.Type())
	assertNear(t, mgl32.Vec3{1, 0, 3}, point.Position())
	assert.Equal(t, DefaultLightRange, point.Range())

	require.Len(t, scene.Casters, 1)
	assertNear(t, mgl32.Vec3{9, -1, -1}, scene.Casters[0].Min())
	assertNear(t, mgl32.Vec3{11, 1, 1}, scene.Casters[0].Max())
	assert.Equal(t, scene.Casters[0], scene.Bounds)
}

func TestSceneFromDocumentRotatedLight(t *testing.T) {
	doc := testDocument()
	// -90 degrees about X turns local -Z into world -Y.
	s := math.Sqrt(0.5)
	doc.Nodes[0].Rotation = [4]float64{-s, 0, 0, s}

	scene, err := SceneFromDocument(doc, nil)
	require.NoError(t, err)
	assertNear(t, mgl32.Vec3{0, -1, 0}, scene.Lights[0].Direction())
}

func TestSceneFromDocumentErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(doc *gltf.Document)
		errMsg string
	}{
		{
			name:   "missing light",
			mutate: func(doc *gltf.Document) { doc.Nodes[3].Extensions[lightspunctual.ExtensionName] = lightspunctual.LightIndex(7) },
			errMsg: "missing light 7",
		},
		{
			name:   "missing mesh",
			mutate: func(doc *gltf.Document) { doc.Nodes[1].Mesh = gltf.Index(4) },
			errMsg: "mesh index 4 out of range",
		},
		{
			name:   "missing node",
			mutate: func(doc *gltf.Document) { doc.Nodes[2].Children = []int{9} },
			errMsg: "node index 9 out of range",
		},
		{
			name:   "cycle",
			mutate: func(doc *gltf.Document) { doc.Nodes[3].Children = []int{2} },
			errMsg: "reachable more than once",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := testDocument()
			tt.mutate(doc)
			_, err := SceneFromDocument(doc, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSceneFromDocumentWithoutLights(t *testing.T) {
	doc := testDocument()
	doc.Extensions = nil
	doc.Nodes[0].Extensions = nil
	doc.Nodes[3].Extensions = nil

	scene, err := SceneFromDocument(doc, nil)
	require.NoError(t, err)
	assert.Empty(t, scene.Lights)
	assert.Len(t, scene.Casters, 1)
}

const sceneJSON = `{
  "asset": {"version": "2.0"},
  "extensionsUsed": ["KHR_lights_punctual"],
  "extensions": {"KHR_lights_punctual": {"lights": [{"type": "directional", "intensity": 2}]}},
  "scene": 0,
  "scenes": [{"nodes": [0]}],
  "nodes": [{"extensions": {"KHR_lights_punctual": {"light": 0}}}]
}`

func TestLoaderLoadReaderCaches(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)

	scene, err := l.LoadReader("sun", strings.NewReader(sceneJSON))
	require.NoError(t, err)
	require.Len(t, scene.Lights, 1)
	assert.Equal(t, light.LightTypeDirectional, scene.Lights[0].Type())
	assert.InDelta(t, 2, scene.Lights[0].Intensity(), 1e-6)
	assert.Equal(t, "sun", scene.Name)

	assert.Same(t, scene, l.Get("sun"))
	assert.Len(t, l.Scenes(), 1)
	assert.Nil(t, l.Get("other"))
}

func TestLoaderLoadErrors(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)

	_, err := l.Load("scene.fbx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported scene format")

	_, err = l.Load("does-not-exist.gltf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load does-not-exist.gltf")

	_, err = l.LoadReader("broken", strings.NewReader("{"))
	require.Error(t, err)
}

func TestLoaderWithScene(t *testing.T) {
	preset := &SceneData{Name: "preset"}
	l := NewLoader(BackendTypeGLTF, WithScene("preset", preset))
	assert.Same(t, preset, l.Get("preset"))
}

func assertNear(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	assert.InDelta(t, 0, want.Sub(got).Len(), 1e-4, "want %v, got %v", want, got)
}
