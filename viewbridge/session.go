package viewbridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hazyhaar/overlay/viewbridge/internal/browser"
)

// ErrNotInstalled is returned by Open when the bridge could not be installed
// on the page (typically: the container selector matched nothing).
var ErrNotInstalled = errors.New("viewbridge: bridge not installed")

// Session owns a browser, the tab showing the page and the Bridge on it.
type Session struct {
	Bridge *Bridge

	mgr *browser.Manager
	tab *browser.Tab
}

// SessionOptions configures Open.
type SessionOptions struct {
	Sinks   []Sink
	Observe bool
	Logger  *slog.Logger
}

// Open starts (or connects to) Chrome, loads cfg.Page.URL and attaches a
// Bridge to cfg.Page.Container.
func Open(ctx context.Context, cfg *Config, opts SessionOptions) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mgr := browser.NewManager(browser.Config{
		RemoteURL:        cfg.Browser.Remote,
		ResourceBlocking: cfg.Browser.ResourceBlocking,
		Mode:             browser.ParseMode(cfg.Browser.Stealth),
		XvfbDisplay:      cfg.Browser.XvfbDisplay,
		Logger:           logger,
	})
	if _, err := mgr.Start(ctx); err != nil {
		return nil, fmt.Errorf("viewbridge: start browser: %w", err)
	}

	tab, err := browser.OpenTab(ctx, mgr, cfg.Page.URL, cfg.Page.LoadTimeout)
	if err != nil {
		mgr.Close()
		return nil, fmt.Errorf("viewbridge: open tab: %w", err)
	}

	b := Attach(ctx, tab.Page, AttachConfig{
		Container: cfg.Page.Container,
		Keys:      KeysFromConfig(cfg),
		Throttle:  ThrottleFromConfig(cfg),
		Sinks:     opts.Sinks,
		Logger:    logger,
		Observe:   opts.Observe,
	})
	if b == nil {
		tab.Close()
		mgr.Close()
		return nil, ErrNotInstalled
	}
	return &Session{Bridge: b, mgr: mgr, tab: tab}, nil
}

// Close disposes the bridge, then closes the tab and the browser.
func (s *Session) Close() error {
	var errs []error
	if err := s.Bridge.Dispose(); err != nil {
		errs = append(errs, err)
	}
	if err := s.tab.Close(); err != nil {
		errs = append(errs, fmt.Errorf("viewbridge: close tab: %w", err))
	}
	if err := s.mgr.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
