package profiler

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kkiej/literp/common"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type captureLogger struct {
	common.Logger
	mu    sync.Mutex
	lines []string
}

func (l *captureLogger) Infof(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func TestSamplesAverageOverInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	logger := &captureLogger{Logger: common.NewNopLogger()}
	p := NewProfiler(WithClock(clock.now), WithInterval(time.Second), WithLogger(logger))

	for i := 0; i < 4; i++ {
		s := p.Begin("Light And Shadow Pass")
		clock.advance(time.Duration(i+1) * time.Millisecond)
		s.End()
		clock.advance(250 * time.Millisecond)
		logged := p.Tick()
		assert.Equal(t, i == 3, logged, "frame %d", i)
	}

	r := p.LastReport()
	assert.InDelta(t, 4/1.01, r.FPS, 1e-9)
	assert.Equal(t, 2500*time.Microsecond, r.Samples["Light And Shadow Pass"])
	assert.Equal(t, 4, r.Calls["Light And Shadow Pass"])
	require.Len(t, logger.lines, 1)
	assert.Contains(t, logger.lines[0], "Light And Shadow Pass: 2.500 ms")

	clock.advance(2 * time.Second)
	require.True(t, p.Tick())
	assert.Empty(t, p.LastReport().Samples)
}

func TestNilProfilerSample(t *testing.T) {
	var p *Profiler
	s := p.Begin("x")
	assert.Nil(t, s)
	s.End()
}
