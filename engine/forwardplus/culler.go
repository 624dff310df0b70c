package forwardplus

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// Culler runs tile jobs on a bounded set of reusable goroutines. Each scheduled job is
// split into one task per tile row.
type Culler interface {
	// Schedule starts job over tileCount tiles and returns a handle to wait on.
	// The job's slices must not be touched until the handle completes.
	//
	// Parameters:
	//   - job: the job to run (must not be nil)
	//   - tileCount: number of tiles in the grid
	//
	// Returns:
	//   - *Handle: completion handle for the job
	Schedule(job *Job, tileCount int) *Handle

	// Workers returns the configured number of pool workers.
	//
	// Returns:
	//   - int: the worker count
	Workers() int
}

// Handle tracks a scheduled job.
type Handle struct {
	wg sync.WaitGroup
}

// Complete blocks until every task of the job has finished. It is safe to call more
// than once and on a nil handle.
func (h *Handle) Complete() {
	if h == nil {
		return
	}
	h.wg.Wait()
}

type culler struct {
	mu      sync.Mutex
	pool    worker.DynamicWorkerPool
	workers int
	queue   int
	nextID  int
}

var _ Culler = &culler{}

// NewCuller creates a Culler backed by a dynamic worker pool.
//
// Parameters:
//   - options: functional options to configure the culler
//
// Returns:
//   - Culler: the new culler
func NewCuller(options ...CullerOption) Culler {
	c := &culler{
		workers: max(runtime.NumCPU()-1, 1),
		queue:   256,
	}
	for _, option := range options {
		option(c)
	}

	// Pool after options so WithWorkers can override the default.
	c.pool = worker.NewDynamicWorkerPool(c.workers, c.queue, 1*time.Second)
	return c
}

func (c *culler) Schedule(job *Job, tileCount int) *Handle {
	h := &Handle{}
	if tileCount <= 0 || job.TilesPerRow <= 0 {
		return h
	}

	rows := (tileCount + job.TilesPerRow - 1) / job.TilesPerRow
	c.mu.Lock()
	defer c.mu.Unlock()
	for row := 0; row < rows; row++ {
		start := row * job.TilesPerRow
		end := min(start+job.TilesPerRow, tileCount)
		h.wg.Add(1)
		id := c.nextID
		c.nextID++
		c.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer h.wg.Done()
				job.ExecuteRange(start, end)
				return nil, nil
			},
		})
	}
	return h
}

func (c *culler) Workers() int {
	return c.workers
}
