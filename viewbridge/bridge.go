// Package viewbridge mirrors the tagged elements of a live component tree
// into a ViewState (geometry, props and slot layout keyed by node id) and
// keeps a pinhole selection overlay on top of them.
//
// The Bridge reads the tree through a hook.Hook, so the core never depends
// on how the page is driven. Attach wires it to a real page through the
// Chrome DevTools Protocol; tests wire it to in-memory fakes.
package viewbridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hazyhaar/overlay/idgen"
	"github.com/hazyhaar/overlay/viewbridge/internal/builder"
	"github.com/hazyhaar/overlay/viewbridge/internal/hook"
	"github.com/hazyhaar/overlay/viewbridge/internal/metrics"
	"github.com/hazyhaar/overlay/viewbridge/internal/pinhole"
	"github.com/hazyhaar/overlay/viewbridge/internal/selection"
	"github.com/hazyhaar/overlay/viewbridge/internal/sink"
	"github.com/hazyhaar/overlay/viewbridge/internal/throttle"
	"github.com/hazyhaar/overlay/viewbridge/viewstate"
)

// ErrDisposed is returned by operations on a disposed Bridge.
var ErrDisposed = errors.New("viewbridge: bridge disposed")

// disposeTimeout bounds the page calls and the final sink flush made while
// tearing down.
const disposeTimeout = 5 * time.Second

// publishQueue is how many snapshots may wait for slow sinks. Past that the
// oldest waiting one is dropped; sinks see the gap in Seq.
const publishQueue = 64

// ChangeSource reports structural and size changes of the observed subtree.
// notify may be called from any goroutine and must not block.
type ChangeSource interface {
	Start(ctx context.Context, notify func(kind string)) error
	Stop(ctx context.Context) error
}

// InstallConfig holds everything a Bridge needs.
type InstallConfig struct {
	Hook      Hook
	Container Element // root container; nil means it was not found
	Surface   Surface
	Changes   ChangeSource // optional; without it only explicit Update runs

	Keys     Keys
	Throttle ThrottleConfig
	PageURL  string
	Sinks    []Sink

	Metrics *metrics.Metrics // optional; a private registry is created if nil
	IDs     idgen.Generator  // snapshot ids; defaults to idgen.Default
	Logger  *slog.Logger
}

// Bridge is the orchestrator. One per page.
type Bridge struct {
	hook      hook.Hook
	container hook.Element
	build     *builder.Builder
	sel       *selection.Overlay
	changes   ChangeSource
	sinks     *sink.Router
	metrics   *metrics.Metrics
	ids       idgen.Generator
	pageURL   string
	throttle  throttle.Config
	logger    *slog.Logger

	// mu serialises passes and selection changes.
	mu       sync.Mutex
	selected string
	seq      uint64

	state    atomic.Pointer[viewstate.ViewState]
	disposed atomic.Bool

	notifyCh chan string
	cancel   context.CancelFunc
	done     chan struct{}

	// Snapshots are handed to the publisher under mu and delivered outside
	// it, so a slow sink never holds up a pass or a selection change.
	pubCh     chan viewstate.Snapshot
	pubCancel context.CancelFunc
	pubDone   chan struct{}

	disposeOnce sync.Once
	disposeErr  error
}

// Install creates a Bridge, runs a first pass and starts the observation
// loop. When the root container is missing it logs an error and returns nil:
// nothing is created and nothing observes the page.
func Install(ctx context.Context, cfg InstallConfig) *Bridge {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Container == nil {
		logger.Error("viewbridge: root container not found, bridge not installed", "page", cfg.PageURL)
		return nil
	}
	if cfg.Hook == nil || cfg.Surface == nil {
		logger.Error("viewbridge: hook and surface are required, bridge not installed", "page", cfg.PageURL)
		return nil
	}

	b := newBridge(cfg, logger)

	loopCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.done = make(chan struct{})

	// Delivery outlives the install context; only Dispose ends it.
	pubCtx, pubCancel := context.WithCancel(context.WithoutCancel(ctx))
	b.pubCancel = pubCancel
	b.pubDone = make(chan struct{})
	go b.publish(pubCtx)

	if b.changes != nil {
		if err := b.changes.Start(loopCtx, b.notify); err != nil {
			logger.Warn("viewbridge: change source unavailable, explicit updates only", "error", err)
			b.changes = nil
		}
	}

	if err := b.Update(ctx); err != nil {
		logger.Warn("viewbridge: initial pass failed", "error", err)
	}

	go b.loop(loopCtx)

	logger.Info("viewbridge: installed",
		"page", b.pageURL,
		"entries", len(b.ViewState()),
		"throttle", b.throttle.Window)
	return b
}

func newBridge(cfg InstallConfig, logger *slog.Logger) *Bridge {
	m := cfg.Metrics
	if m == nil {
		m = metrics.New()
	}
	ids := cfg.IDs
	if ids == nil {
		ids = idgen.Default
	}
	b := &Bridge{
		hook:      cfg.Hook,
		container: cfg.Container,
		build:     builder.New(cfg.Hook, cfg.Keys, logger),
		sel:       selection.New(pinhole.New(cfg.Surface, logger)),
		changes:   cfg.Changes,
		sinks:     sink.NewRouter(logger, cfg.Sinks...),
		metrics:   m,
		ids:       ids,
		pageURL:   cfg.PageURL,
		throttle:  cfg.Throttle,
		logger:    logger,
		notifyCh:  make(chan string, 64),
		pubCh:     make(chan viewstate.Snapshot, publishQueue),
	}
	empty := make(viewstate.ViewState)
	b.state.Store(&empty)
	return b
}

// ViewState returns the last published snapshot. It is never recomputed on
// read and must not be mutated.
func (b *Bridge) ViewState() viewstate.ViewState {
	return *b.state.Load()
}

// Selected returns the node id the overlay currently isolates, or "" when the
// overlay is hidden.
func (b *Bridge) Selected() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selected
}

// SelectionRect returns the rect the overlay currently renders, nil when
// hidden.
func (b *Bridge) SelectionRect() *viewstate.Rect {
	return b.sel.Rect()
}

// Metrics returns the bridge collectors.
func (b *Bridge) Metrics() *metrics.Metrics {
	return b.metrics
}

// Update runs one full pass, publishes the new ViewState, re-projects the
// current selection rect and queues the snapshot for the sinks. It returns
// before the sinks have it. A pass that fails leaves the previous ViewState
// in place.
func (b *Bridge) Update(ctx context.Context) error {
	if b.disposed.Load() {
		return ErrDisposed
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.disposed.Load() {
		return ErrDisposed
	}
	return b.passLocked(ctx)
}

func (b *Bridge) passLocked(ctx context.Context) error {
	start := time.Now()
	vs, st, err := b.build.Build(ctx, b.container)
	elapsed := time.Since(start)

	if err != nil {
		b.metrics.ObservePass(metrics.OutcomeError, elapsed, st.Visited, 0, st.Skipped)
		return fmt.Errorf("viewbridge: update: %w", err)
	}

	outcome := metrics.OutcomeOK
	if st.NoHook {
		outcome = metrics.OutcomeNoHook
	}
	b.metrics.ObservePass(outcome, elapsed, st.Visited, len(vs), st.Skipped)

	// Every geometry read of the pass is done; only now touch the overlay.
	b.state.Store(&vs)
	if err := b.sel.Update(ctx); err != nil {
		b.logger.Warn("viewbridge: re-project selection", "error", err)
	}

	b.seq++
	snap := viewstate.Snapshot{
		ID:        b.ids(),
		Seq:       b.seq,
		PageURL:   b.pageURL,
		ViewState: vs,
		Timestamp: time.Now().UnixMilli(),
	}

	b.logger.Debug("viewbridge: pass",
		"seq", snap.Seq,
		"visited", st.Visited,
		"entries", len(vs),
		"slots", st.Slots,
		"skipped", st.Skipped,
		"duplicates", st.Duplicates,
		"duration", elapsed)

	b.enqueueLocked(snap)
	return nil
}

// enqueueLocked hands snap to the publisher without blocking. Passes are the
// only producers and they hold mu, so after dropping the oldest entry there
// is room.
func (b *Bridge) enqueueLocked(snap viewstate.Snapshot) {
	if b.sinks.Len() == 0 {
		return
	}
	select {
	case b.pubCh <- snap:
		return
	default:
	}
	select {
	case old := <-b.pubCh:
		b.logger.Warn("viewbridge: sinks behind, snapshot dropped", "seq", old.Seq)
	default:
	}
	b.pubCh <- snap
}

// publish delivers queued snapshots in order until Dispose closes the queue.
func (b *Bridge) publish(ctx context.Context) {
	defer close(b.pubDone)
	for snap := range b.pubCh {
		if err := b.sinks.Send(ctx, snap); err != nil && ctx.Err() == nil {
			b.logger.Warn("viewbridge: publish snapshot", "seq", snap.Seq, "error", err)
		}
	}
}

// SetSelection isolates the element with the given id, or hides the overlay
// when id is nil. An id absent from the current ViewState is ignored: the
// overlay keeps whatever it showed before.
func (b *Bridge) SetSelection(ctx context.Context, id *string) error {
	_, err := b.setSelection(ctx, id)
	return err
}

// setSelection reports whether the request changed the overlay state.
func (b *Bridge) setSelection(ctx context.Context, id *string) (bool, error) {
	if b.disposed.Load() {
		return false, ErrDisposed
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.disposed.Load() {
		return false, ErrDisposed
	}

	if id == nil {
		if err := b.sel.RemoveSelection(ctx); err != nil {
			return false, fmt.Errorf("viewbridge: clear selection: %w", err)
		}
		b.selected = ""
		return true, nil
	}

	entry, ok := b.ViewState()[*id]
	if !ok {
		b.logger.Debug("viewbridge: selection ignored, unknown node", "node_id", *id)
		return false, nil
	}
	if err := b.sel.SetSelection(ctx, entry.Rect); err != nil {
		return false, fmt.Errorf("viewbridge: set selection: %w", err)
	}
	b.selected = *id
	return true, nil
}

// notify is handed to the ChangeSource.
func (b *Bridge) notify(kind string) {
	if b.disposed.Load() {
		return
	}
	b.metrics.Notification()
	select {
	case b.notifyCh <- kind:
	default:
		// Loop is behind; a pass is already due.
	}
}

// loop coalesces change notifications into trailing passes.
func (b *Bridge) loop(ctx context.Context) {
	defer close(b.done)

	th := throttle.New(b.throttle, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.disposed.Load() {
			return
		}
		if err := b.passLocked(ctx); err != nil && ctx.Err() == nil {
			b.logger.Warn("viewbridge: observed pass failed", "error", err)
		}
	})
	defer th.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case kind := <-b.notifyCh:
			b.logger.Debug("viewbridge: change", "kind", kind, "pending", th.Pending()+1)
			th.Notify()
		case <-th.C():
			th.Flush()
		}
	}
}

// Dispose stops observing, removes the overlay elements, discards the
// ViewState, flushes queued snapshots and closes the sinks. It is idempotent; later calls return the
// first result.
func (b *Bridge) Dispose() error {
	b.disposeOnce.Do(func() {
		b.disposed.Store(true)

		ctx, cancel := context.WithTimeout(context.Background(), disposeTimeout)
		defer cancel()

		var errs []error
		if b.changes != nil {
			if err := b.changes.Stop(ctx); err != nil {
				errs = append(errs, fmt.Errorf("stop changes: %w", err))
			}
		}

		b.cancel()
		<-b.done

		b.mu.Lock()
		if err := b.sel.Remove(ctx); err != nil {
			errs = append(errs, fmt.Errorf("remove overlay: %w", err))
		}
		b.selected = ""
		empty := make(viewstate.ViewState)
		b.state.Store(&empty)
		// No pass can start once disposed is set and mu is released.
		close(b.pubCh)
		b.mu.Unlock()

		// Let queued snapshots drain, but not past the teardown budget.
		select {
		case <-b.pubDone:
		case <-ctx.Done():
			b.pubCancel()
			<-b.pubDone
			errs = append(errs, fmt.Errorf("flush sinks: %w", ctx.Err()))
		}
		b.pubCancel()

		if err := b.sinks.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close sinks: %w", err))
		}

		if len(errs) > 0 {
			b.disposeErr = fmt.Errorf("viewbridge: dispose: %w", errors.Join(errs...))
		}
		b.logger.Info("viewbridge: disposed", "page", b.pageURL)
	})
	return b.disposeErr
}
