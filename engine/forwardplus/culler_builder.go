package forwardplus

// CullerOption configures a Culler.
type CullerOption func(*culler)

// WithWorkers sets the number of pool workers. Values below 1 are ignored.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - CullerOption: the option
func WithWorkers(n int) CullerOption {
	return func(c *culler) {
		if n >= 1 {
			c.workers = n
		}
	}
}

// WithQueueSize sets the task queue capacity of the pool. Values below 1 are ignored.
//
// Parameters:
//   - n: the queue capacity
//
// Returns:
//   - CullerOption: the option
func WithQueueSize(n int) CullerOption {
	return func(c *culler) {
		if n >= 1 {
			c.queue = n
		}
	}
}
