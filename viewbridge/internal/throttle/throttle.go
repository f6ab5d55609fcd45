// Package throttle coalesces bursts of change notifications into a single
// trailing recompute.
package throttle

import "time"

// DefaultWindow is the quiet period used by viewbridge unless configured.
const DefaultWindow = 100 * time.Millisecond

// Config controls coalescing.
type Config struct {
	// Window is the quiet period. Every notification restarts it; fire runs
	// once it expires. Zero disables coalescing: every notification fires
	// synchronously.
	Window time.Duration
	// MaxBurst fires immediately once this many notifications are pending,
	// so a page that never goes quiet still refreshes. Zero means no cap.
	MaxBurst int
}

// Throttle is owned by a single goroutine: it is not safe for concurrent
// use. The owner selects on C() and calls Flush when it fires.
type Throttle struct {
	cfg     Config
	pending int
	timer   *time.Timer
	timerCh <-chan time.Time
	fire    func()
}

// New creates a Throttle calling fire for each coalesced burst.
func New(cfg Config, fire func()) *Throttle {
	if cfg.Window < 0 {
		cfg.Window = 0
	}
	if cfg.MaxBurst < 0 {
		cfg.MaxBurst = 0
	}
	return &Throttle{cfg: cfg, fire: fire}
}

// Notify records one change. It returns true if fire ran synchronously
// (zero window or burst cap reached).
func (t *Throttle) Notify() bool {
	t.pending++

	if t.cfg.Window == 0 || (t.cfg.MaxBurst > 0 && t.pending >= t.cfg.MaxBurst) {
		t.Flush()
		return true
	}

	// (Re)start the quiet window.
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.NewTimer(t.cfg.Window)
	t.timerCh = t.timer.C
	return false
}

// C returns the channel that fires when the quiet window expires. It is nil
// while nothing is pending, so selecting on it blocks.
func (t *Throttle) C() <-chan time.Time {
	return t.timerCh
}

// Pending returns the number of notifications waiting to be coalesced.
func (t *Throttle) Pending() int {
	return t.pending
}

// Flush runs fire if anything is pending and resets the window.
func (t *Throttle) Flush() {
	if t.pending == 0 {
		return
	}
	t.Stop()
	t.fire()
}

// Stop drops pending notifications without firing.
func (t *Throttle) Stop() {
	t.pending = 0
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
		t.timerCh = nil
	}
}
