package main

import (
	"math"
	"math/rand"

	"github.com/charmbracelet/harmonica"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/kkiej/literp/common"
	"github.com/kkiej/literp/engine/light"
)

// demoExtent is the half size of the generated floor.
const demoExtent = 12

// mover drives a light's position toward a random target on a critically damped spring
// and picks a new target once it arrives.
type mover struct {
	light  light.Light
	spring harmonica.Spring
	rng    *rand.Rand

	pos    [3]float64
	vel    [3]float64
	target [3]float64
}

func newMover(l light.Light, fps int, rng *rand.Rand) *mover {
	p := l.Position()
	m := &mover{
		light:  l,
		spring: harmonica.NewSpring(harmonica.FPS(fps), 1.5, 1.0),
		rng:    rng,
		pos:    [3]float64{float64(p.X()), float64(p.Y()), float64(p.Z())},
	}
	m.retarget()
	return m
}

func (m *mover) retarget() {
	m.target = [3]float64{
		(m.rng.Float64()*2 - 1) * demoExtent,
		0.5 + m.rng.Float64()*3,
		(m.rng.Float64()*2 - 1) * demoExtent,
	}
}

// Update advances the spring one frame and moves the light.
func (m *mover) Update() {
	var dist float64
	for i := range m.pos {
		m.pos[i], m.vel[i] = m.spring.Update(m.pos[i], m.vel[i], m.target[i])
		d := m.target[i] - m.pos[i]
		dist += d * d
	}
	if math.Sqrt(dist) < 0.25 {
		m.retarget()
	}
	m.light.SetPosition(mgl32.Vec3{float32(m.pos[0]), float32(m.pos[1]), float32(m.pos[2])})
}

// demoScene builds a floor, a few pillars, a shadowed sun and count random point and
// spot lights with a mover each.
func demoScene(count, fps int, rng *rand.Rand) ([]light.Light, []common.Bounds, []*mover) {
	casters := []common.Bounds{
		common.NewBoundsMinMax(mgl32.Vec3{-demoExtent, -0.5, -demoExtent}, mgl32.Vec3{demoExtent, 0, demoExtent}),
	}
	for _, c := range [][2]float32{{-6, -6}, {6, -6}, {-6, 6}, {6, 6}} {
		casters = append(casters, common.NewBoundsMinMax(
			mgl32.Vec3{c[0] - 0.5, 0, c[1] - 0.5},
			mgl32.Vec3{c[0] + 0.5, 4, c[1] + 0.5},
		))
	}

	lights := []light.Light{
		light.NewLight(light.LightTypeDirectional,
			light.WithDirection(-0.4, -1, -0.3),
			light.WithIntensity(0.6),
			light.WithShadows(light.ShadowsSoft, 1),
		),
	}
	movers := make([]*mover, 0, count)
	for i := range count {
		pos := mgl32.Vec3{
			(rng.Float32()*2 - 1) * demoExtent,
			0.5 + rng.Float32()*3,
			(rng.Float32()*2 - 1) * demoExtent,
		}
		opts := []light.LightBuilderOption{
			light.WithPosition(pos.X(), pos.Y(), pos.Z()),
			light.WithColor(0.3+0.7*rng.Float32(), 0.3+0.7*rng.Float32(), 0.3+0.7*rng.Float32()),
			light.WithIntensity(2 + 4*rng.Float32()),
			light.WithRange(2 + 4*rng.Float32()),
		}
		t := light.LightTypePoint
		if i%3 == 2 {
			t = light.LightTypeSpot
			opts = append(opts, light.WithDirection(0, -1, 0), light.WithSpotAngles(30, 60))
		}
		// only a handful fit into the other shadow atlas anyway
		if i < 4 {
			opts = append(opts, light.WithShadows(light.ShadowsHard, 1))
		}
		l := light.NewLight(t, opts...)
		lights = append(lights, l)
		movers = append(movers, newMover(l, fps, rng))
	}
	return lights, casters, movers
}
