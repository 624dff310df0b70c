package profiler

import (
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kkiej/literp/common"
)

// Report is the summary produced by the last Tick that logged.
type Report struct {
	FPS float64

	// Samples maps each sample name to its average duration per call over the interval.
	Samples map[string]time.Duration

	// Calls maps each sample name to the number of calls over the interval.
	Calls map[string]int
}

type sampleStats struct {
	total time.Duration
	calls int
}

// Profiler tracks frame rate, named CPU samples and memory statistics.
// Outputs stats to the logger at a configurable interval.
type Profiler struct {
	mu             sync.Mutex
	logger         common.Logger
	now            func() time.Time
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	samples        map[string]*sampleStats
	last           Report
}

// Sample is an open timing sample. Call End exactly once.
type Sample struct {
	p     *Profiler
	name  string
	start time.Time
}

// NewProfiler creates a new Profiler.
// Update interval defaults to 1 second and output goes to a nop logger.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		logger:         common.NewNopLogger(),
		now:            time.Now,
		updateInterval: time.Second,
		samples:        make(map[string]*sampleStats),
	}
	for _, option := range options {
		option(p)
	}
	p.lastTime = p.now()
	return p
}

// Begin opens a named sample. A nil Profiler returns a nil Sample whose End is a no-op.
//
// Parameters:
//   - name: the sample name, e.g. "Light And Shadow Pass"
//
// Returns:
//   - *Sample: the open sample
func (p *Profiler) Begin(name string) *Sample {
	if p == nil {
		return nil
	}
	return &Sample{p: p, name: name, start: p.now()}
}

// End closes the sample and adds its duration to the current interval.
func (s *Sample) End() {
	if s == nil {
		return
	}
	elapsed := s.p.now().Sub(s.start)

	s.p.mu.Lock()
	defer s.p.mu.Unlock()
	st, ok := s.p.samples[s.name]
	if !ok {
		st = &sampleStats{}
		s.p.samples[s.name] = st
	}
	st.total += elapsed
	st.calls++
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, sample averages, heap usage, allocation rate, GC count/pause times, total memory.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	report := Report{
		FPS:     float64(p.frameCount) / elapsed.Seconds(),
		Samples: make(map[string]time.Duration, len(p.samples)),
		Calls:   make(map[string]int, len(p.samples)),
	}
	names := make([]string, 0, len(p.samples))
	for name, st := range p.samples {
		if st.calls == 0 {
			continue
		}
		report.Samples[name] = st.total / time.Duration(st.calls)
		report.Calls[name] = st.calls
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		fmt.Fprintf(&sb, " | %s: %.3f ms", name, float64(report.Samples[name])/float64(time.Millisecond))
	}

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024

	// MB/sec allocated since the last report
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of last 256 GC pauses
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			pause := p.memStats.PauseNs[i%256] / 1000
			if pause > maxPauseUs {
				maxPauseUs = pause
			}
		}
	}

	p.logger.Infof("FPS: %.2f%s | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
		report.FPS, sb.String(), allocMB, allocRateMB, gcCount, lastPauseUs, maxPauseUs, sysMB)

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	clear(p.samples)
	p.last = report
	return true
}

// LastReport returns the summary of the last logged interval.
func (p *Profiler) LastReport() Report {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}
