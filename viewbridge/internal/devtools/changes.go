package devtools

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-rod/rod/lib/proto"
)

const bindingName = "__viewbridge_changed"

// Changes reports structural and size changes of the container subtree and
// renderer commits. Kinds are "mutation", "resize" and "commit".
type Changes struct {
	rt       *Runtime
	selector string

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewChanges returns a change source for the container matched by selector.
func NewChanges(rt *Runtime, selector string) *Changes {
	return &Changes{rt: rt, selector: selector}
}

// Start arms the page observers. notify runs on the CDP event goroutine and
// must not block.
func (c *Changes) Start(ctx context.Context, notify func(kind string)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return fmt.Errorf("devtools: changes already started")
	}

	page := c.rt.Page()
	if err := (proto.RuntimeAddBinding{Name: bindingName}).Call(page); err != nil {
		c.rt.logger.Warn("devtools: addBinding failed (may already exist)", "error", err)
	}

	lctx, cancel := context.WithCancel(ctx)
	wait := page.Context(lctx).EachEvent(func(e *proto.RuntimeBindingCalled) {
		if e.Name != bindingName {
			return
		}
		notify(e.Payload)
	})
	done := make(chan struct{})
	go func() {
		defer close(done)
		wait()
	}()

	var ok bool
	if err := c.rt.call(ctx, "observe", &ok, c.selector); err != nil || !ok {
		cancel()
		<-done
		if err == nil {
			err = ErrNoContainer
		}
		return fmt.Errorf("devtools: observe: %w", err)
	}

	c.cancel = cancel
	c.done = done
	return nil
}

// Stop disconnects the page observers and stops event delivery. After Stop
// returns notify is never called again.
func (c *Changes) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel == nil {
		return nil
	}
	c.cancel()
	<-c.done
	c.cancel = nil

	err := c.rt.call(ctx, "unobserve", nil)
	if rerr := (proto.RuntimeRemoveBinding{Name: bindingName}).Call(c.rt.Page()); rerr != nil {
		c.rt.logger.Debug("devtools: removeBinding failed", "error", rerr)
	}
	return err
}
