package loader

import (
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/ext/lightspunctual"

	"github.com/kkiej/literp/common"
	"github.com/kkiej/literp/engine/light"
)

// DefaultLightRange is used for glTF point and spot lights without a range, which the
// format defines as infinite.
const DefaultLightRange float32 = 10

// gltfLoaderBackendImpl reads KHR_lights_punctual lights and mesh bounds from glTF
// documents.
type gltfLoaderBackendImpl struct {
	logger common.Logger
}

var _ loaderBackend = &gltfLoaderBackendImpl{}

// newGLTFLoaderBackend creates a new glTF loader backend.
//
// Parameters:
//   - logger: receives warnings about skipped document content
//
// Returns:
//   - loaderBackend: the loader backend for glTF/GLB files
func newGLTFLoaderBackend(logger common.Logger) loaderBackend {
	return &gltfLoaderBackendImpl{logger: logger}
}

func (b *gltfLoaderBackendImpl) Load(path string) (*SceneData, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open gltf: %w", err)
	}
	return SceneFromDocument(doc, b.logger)
}

func (b *gltfLoaderBackendImpl) LoadReader(r io.Reader) (*SceneData, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, fmt.Errorf("failed to decode gltf: %w", err)
	}
	return SceneFromDocument(doc, b.logger)
}

// SceneFromDocument walks the document's default scene, accumulating node transforms,
// and collects its punctual lights and mesh caster bounds. Documents without a default
// scene use their first scene.
//
// Parameters:
//   - doc: the decoded glTF document
//   - logger: receives warnings about skipped content (nil for none)
//
// Returns:
//   - *SceneData: the lights and casters of the scene
//   - error: error if a node references a missing light, mesh or accessor
func SceneFromDocument(doc *gltf.Document, logger common.Logger) (*SceneData, error) {
	if logger == nil {
		logger = common.NewNopLogger()
	}
	w := &gltfWalker{
		doc:     doc,
		logger:  logger,
		visited: make(map[int]bool),
		scene:   &SceneData{},
	}
	if lights, ok := doc.Extensions[lightspunctual.ExtensionName].(lightspunctual.Lights); ok {
		w.lights = lights
	}

	var roots []int
	switch {
	case doc.Scene != nil && *doc.Scene < len(doc.Scenes):
		roots = doc.Scenes[*doc.Scene].Nodes
		w.scene.Name = doc.Scenes[*doc.Scene].Name
	case len(doc.Scenes) > 0:
		roots = doc.Scenes[0].Nodes
		w.scene.Name = doc.Scenes[0].Name
	}

	for _, root := range roots {
		if err := w.walk(root, mgl32.Ident4()); err != nil {
			return nil, err
		}
	}
	return w.scene, nil
}

type gltfWalker struct {
	doc     *gltf.Document
	logger  common.Logger
	lights  lightspunctual.Lights
	visited map[int]bool
	scene   *SceneData
}

func (w *gltfWalker) walk(index int, parent mgl32.Mat4) error {
	if index < 0 || index >= len(w.doc.Nodes) {
		return fmt.Errorf("node index %d out of range", index)
	}
	if w.visited[index] {
		return fmt.Errorf("node %d is reachable more than once", index)
	}
	w.visited[index] = true

	node := w.doc.Nodes[index]
	world := parent.Mul4(localMatrix(node))

	if ext, ok := node.Extensions[lightspunctual.ExtensionName]; ok {
		if idx, ok := ext.(lightspunctual.LightIndex); ok {
			if int(idx) >= len(w.lights) {
				return fmt.Errorf("node %d references missing light %d", index, idx)
			}
			if l, ok := convertLight(w.lights[idx], world); ok {
				w.scene.Lights = append(w.scene.Lights, l)
			} else {
				w.logger.Warnf("node %d: skipping light of unknown type %q", index, w.lights[idx].Type)
			}
		}
	}

	if node.Mesh != nil {
		b, err := w.meshBounds(*node.Mesh)
		if err != nil {
			return fmt.Errorf("node %d: %w", index, err)
		}
		if !b.IsEmpty() {
			b = b.Transform(world)
			w.scene.Casters = append(w.scene.Casters, b)
			w.scene.Bounds = w.scene.Bounds.Encapsulate(b)
		}
	}

	for _, child := range node.Children {
		if err := w.walk(child, world); err != nil {
			return err
		}
	}
	return nil
}

// meshBounds returns the local bounds of a mesh from its POSITION accessor limits.
func (w *gltfWalker) meshBounds(index int) (common.Bounds, error) {
	if index < 0 || index >= len(w.doc.Meshes) {
		return common.Bounds{}, fmt.Errorf("mesh index %d out of range", index)
	}
	var b common.Bounds
	for _, prim := range w.doc.Meshes[index].Primitives {
		acc, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		if acc < 0 || acc >= len(w.doc.Accessors) {
			return common.Bounds{}, fmt.Errorf("accessor index %d out of range", acc)
		}
		a := w.doc.Accessors[acc]
		if len(a.Min) < 3 || len(a.Max) < 3 {
			w.logger.Warnf("mesh %d: POSITION accessor %d has no min/max", index, acc)
			continue
		}
		b = b.Encapsulate(common.NewBoundsMinMax(
			mgl32.Vec3{float32(a.Min[0]), float32(a.Min[1]), float32(a.Min[2])},
			mgl32.Vec3{float32(a.Max[0]), float32(a.Max[1]), float32(a.Max[2])},
		))
	}
	return b, nil
}

// localMatrix returns the node's matrix, or its TRS composition when no matrix is set.
func localMatrix(node *gltf.Node) mgl32.Mat4 {
	if node.Matrix != [16]float64{} && node.Matrix != identity {
		var m mgl32.Mat4
		for i, v := range node.Matrix {
			m[i] = float32(v)
		}
		return m
	}
	t := node.TranslationOrDefault()
	r := node.RotationOrDefault()
	s := node.ScaleOrDefault()
	q := mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}
	return mgl32.Translate3D(float32(t[0]), float32(t[1]), float32(t[2])).
		Mul4(q.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(float32(s[0]), float32(s[1]), float32(s[2])))
}

var identity = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

// convertLight builds a light at the node's world transform. glTF lights shine down
// their local -Z axis and express spot cones as half angles in radians.
func convertLight(src *lightspunctual.Light, world mgl32.Mat4) (light.Light, bool) {
	var t light.LightType
	switch src.Type {
	case lightspunctual.TypeDirectional:
		t = light.LightTypeDirectional
	case lightspunctual.TypePoint:
		t = light.LightTypePoint
	case lightspunctual.TypeSpot:
		t = light.LightTypeSpot
	default:
		return nil, false
	}

	pos := world.Col(3).Vec3()
	fwd := world.Mul4x1(mgl32.Vec4{0, 0, -1, 0}).Vec3()
	if fwd.Len() > 0 {
		fwd = fwd.Normalize()
	} else {
		fwd = mgl32.Vec3{0, 0, -1}
	}
	c := src.ColorOrDefault()
	lightRange := DefaultLightRange
	if src.Range != nil && *src.Range > 0 {
		lightRange = float32(*src.Range)
	}

	opts := []light.LightBuilderOption{
		light.WithPosition(pos.X(), pos.Y(), pos.Z()),
		light.WithDirection(fwd.X(), fwd.Y(), fwd.Z()),
		light.WithColor(float32(c[0]), float32(c[1]), float32(c[2])),
		light.WithIntensity(float32(src.IntensityOrDefault())),
		light.WithRange(lightRange),
		light.WithShadows(light.ShadowsSoft, 1),
	}
	if src.Spot != nil {
		inner := 2 * mgl32.RadToDeg(float32(src.Spot.InnerConeAngle))
		outer := 2 * mgl32.RadToDeg(float32(src.Spot.OuterConeAngleOrDefault()))
		opts = append(opts, light.WithSpotAngles(inner, outer))
	}
	return light.NewLight(t, opts...), true
}
