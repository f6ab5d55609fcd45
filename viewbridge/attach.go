package viewbridge

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-rod/rod"

	"github.com/hazyhaar/overlay/viewbridge/internal/devtools"
	"github.com/hazyhaar/overlay/viewbridge/internal/metrics"
)

// AttachConfig configures a Bridge over a live page.
type AttachConfig struct {
	// Container is the CSS selector of the root container element.
	Container string
	Keys      Keys
	Throttle  ThrottleConfig
	Sinks     []Sink
	Metrics   *metrics.Metrics
	Logger    *slog.Logger

	// Observe installs the mutation and resize observers. Without it the
	// bridge only recomputes on explicit Update calls.
	Observe bool
}

// pageRuntime is the part of devtools.Runtime that prepares a page.
type pageRuntime interface {
	Container(ctx context.Context, selector string) (*devtools.Element, error)
	Inject(ctx context.Context) error
}

// prepare resolves the container before injecting the page helper, so a
// page without the container is left untouched.
func prepare(ctx context.Context, rt pageRuntime, selector string) (*devtools.Element, error) {
	container, err := rt.Container(ctx, selector)
	if err != nil {
		return nil, err
	}
	if err := rt.Inject(ctx); err != nil {
		return nil, err
	}
	return container, nil
}

// Attach installs a Bridge on page. Like Install it returns nil, after
// logging, when the container is missing or the page cannot be prepared.
// A missing container leaves no page-side state.
func Attach(ctx context.Context, page *rod.Page, cfg AttachConfig) *Bridge {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	pageURL := ""
	if info, err := page.Context(ctx).Info(); err == nil {
		pageURL = info.URL
	}

	rt := devtools.New(page, logger)
	icfg := InstallConfig{
		Hook:     devtools.NewHook(rt),
		Keys:     cfg.Keys,
		Throttle: cfg.Throttle,
		PageURL:  pageURL,
		Sinks:    cfg.Sinks,
		Metrics:  cfg.Metrics,
		Logger:   logger,
	}

	container, err := prepare(ctx, rt, cfg.Container)
	switch {
	case errors.Is(err, devtools.ErrNoContainer):
		logger.Debug("viewbridge: container selector matched nothing", "selector", cfg.Container)
		return Install(ctx, icfg)
	case err != nil:
		logger.Error("viewbridge: prepare page", "page", pageURL, "selector", cfg.Container, "error", err)
		return nil
	}
	icfg.Container = container

	surface, err := devtools.NewSurface(ctx, rt, cfg.Container)
	if err != nil {
		logger.Error("viewbridge: create overlay", "selector", cfg.Container, "error", err)
		return nil
	}
	icfg.Surface = surface

	if cfg.Observe {
		icfg.Changes = devtools.NewChanges(rt, cfg.Container)
	}
	return Install(ctx, icfg)
}
