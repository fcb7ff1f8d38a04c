package filters

import (
	"context"
	"sync"
)

// Call is the pending result of Registry.Start.
type Call struct {
	once   sync.Once
	done   chan struct{}
	result string
	err    error
}

func newCall() *Call {
	return &Call{done: make(chan struct{})}
}

func completed(result string, err error) *Call {
	c := newCall()
	c.resolve(result, err)
	return c
}

func (c *Call) resolve(result string, err error) {
	c.once.Do(func() {
		c.result, c.err = result, err
		close(c.done)
	})
}

// Done is closed once the result is available.
func (c *Call) Done() <-chan struct{} { return c.done }

// Ready reports whether the call has completed.
func (c *Call) Ready() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the call completes or ctx is done.
func (c *Call) Wait(ctx context.Context) (string, error) {
	select {
	case <-c.done:
		return c.result, c.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Result returns the outcome of a completed call. It must only be used once
// Ready reports true.
func (c *Call) Result() (string, error) {
	if !c.Ready() {
		panic("filters: Result called before the call completed")
	}
	return c.result, c.err
}
