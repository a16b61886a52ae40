// Package querycount tracks how many store round trips a request makes.
package querycount

import (
	"context"
	"sync/atomic"
)

type contextKey struct{}

// Counter counts store round trips. It is safe for concurrent use.
type Counter struct {
	n atomic.Int64
}

// Value returns the number of round trips recorded so far.
func (c *Counter) Value() int64 {
	return c.n.Load()
}

// NewContext returns a child context carrying a fresh Counter.
func NewContext(ctx context.Context) (context.Context, *Counter) {
	c := &Counter{}
	return context.WithValue(ctx, contextKey{}, c), c
}

// Inc records one round trip against the counter in ctx, if any.
func Inc(ctx context.Context) {
	if c, ok := ctx.Value(contextKey{}).(*Counter); ok {
		c.n.Add(1)
	}
}
