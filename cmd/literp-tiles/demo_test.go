package main

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kkiej/literp/engine/light"
)

func TestDemoScene(t *testing.T) {
	lights, casters, movers := demoScene(6, 30, rand.New(rand.NewSource(1)))

	require.Len(t, lights, 7)
	assert.Equal(t, light.LightTypeDirectional, lights[0].Type())
	assert.Equal(t, light.LightTypeSpot, lights[3].Type())
	assert.Len(t, casters, 5)
	assert.Len(t, movers, 6)
}

func TestMoverApproachesTarget(t *testing.T) {
	l := light.NewLight(light.LightTypePoint)
	m := newMover(l, 30, rand.New(rand.NewSource(7)))
	target := m.target

	start := l.Position()
	for range 5 {
		m.Update()
	}
	assert.NotEqual(t, start, l.Position())

	// the target only changes on arrival, and a 1.5Hz spring needs far more than five frames
	assert.Equal(t, target, m.target)
}
