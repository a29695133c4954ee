// Package progress reports how far along a batch of concurrent tasks is.
package progress

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// Counter is safe to increment from many goroutines.
type Counter struct {
	ctx   context.Context
	name  string
	total int
	done  atomic.Int64
}

// New creates a counter for total tasks. Its logs carry ctx's attributes and
// use name as the message.
func New(ctx context.Context, name string, total int) *Counter {
	return &Counter{ctx: ctx, name: name, total: total}
}

// Inc marks one more task as finished and logs the new count.
func (c *Counter) Inc() int {
	n := int(c.done.Add(1))
	slog.InfoContext(c.ctx, c.name, "done", n, "total", c.total)
	return n
}

// Done returns how many tasks have finished so far.
func (c *Counter) Done() int {
	return int(c.done.Load())
}
