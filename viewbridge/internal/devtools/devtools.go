// Package devtools implements the hook, element, overlay and change-source
// capabilities over a live page through the Chrome DevTools Protocol. A small
// page-side script (viewbridge.js) reads the rendering runtime's devtools
// hook and hands back integer handles; the Go side never holds JS objects.
package devtools

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-rod/rod"
)

//go:embed viewbridge.js
var script string

// ErrNoContainer is returned when the container selector matches nothing.
var ErrNoContainer = errors.New("devtools: container element not found")

// ErrDetached is returned when a handle no longer resolves in the page,
// typically because the handle registry was reset by a newer pass.
var ErrDetached = errors.New("devtools: handle no longer attached")

// callJS dispatches to the injected helper and always answers a JSON string
// so the result survives the CDP round trip unchanged.
const callJS = `(m, args) => {
	const vb = window.__viewbridge;
	if (!vb) return JSON.stringify({ missing: true });
	return JSON.stringify({ value: vb[m](...args) });
}`

// Runtime is the page-side helper bound to one page.
type Runtime struct {
	page   *rod.Page
	logger *slog.Logger
}

// New binds a Runtime to page. Inject runs lazily on first use.
func New(page *rod.Page, logger *slog.Logger) *Runtime {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runtime{page: page, logger: logger}
}

// Page returns the underlying page.
func (rt *Runtime) Page() *rod.Page {
	return rt.page
}

// Inject installs the page-side helper. It is idempotent.
func (rt *Runtime) Inject(ctx context.Context) error {
	if _, err := rt.page.Context(ctx).Eval(script); err != nil {
		return fmt.Errorf("devtools: inject: %w", err)
	}
	return nil
}

// call invokes window.__viewbridge[method](args...) and decodes the result
// into out. A page that navigated away lost the helper: it is re-injected
// once and the call retried.
func (rt *Runtime) call(ctx context.Context, method string, out any, args ...any) error {
	if args == nil {
		args = []any{}
	}
	for attempt := 0; attempt < 2; attempt++ {
		res, err := rt.page.Context(ctx).Eval(callJS, method, args)
		if err != nil {
			return fmt.Errorf("devtools: %s: %w", method, err)
		}
		missing, err := decodeReply(res.Value.Str(), out)
		if err != nil {
			return fmt.Errorf("devtools: %s: %w", method, err)
		}
		if !missing {
			return nil
		}
		rt.logger.Debug("devtools: helper missing, injecting", "method", method)
		if err := rt.Inject(ctx); err != nil {
			return err
		}
	}
	return fmt.Errorf("devtools: %s: helper unavailable after inject", method)
}

type reply struct {
	Missing bool            `json:"missing"`
	Value   json.RawMessage `json:"value"`
}

// decodeReply unpacks a callJS answer. A null or absent value leaves out
// untouched.
func decodeReply(raw string, out any) (missing bool, err error) {
	var r reply
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return false, fmt.Errorf("decode reply: %w", err)
	}
	if r.Missing {
		return true, nil
	}
	if out == nil || len(r.Value) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(r.Value, out); err != nil {
		return false, fmt.Errorf("decode value: %w", err)
	}
	return false, nil
}
