package browser

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// displayScreen is the virtual screen geometry. Page rectangles are measured
// against the real layout, so the display must be large enough for the
// editor viewport.
const displayScreen = "1920x1080x24"

const displayWait = 5 * time.Second

// displaySocket returns the X11 socket path of a display such as ":99".
func displaySocket(display string) (string, error) {
	n := strings.TrimPrefix(display, ":")
	if i := strings.IndexByte(n, '.'); i >= 0 {
		n = n[:i]
	}
	if n == "" || strings.Trim(n, "0123456789") != "" {
		return "", fmt.Errorf("invalid display %q", display)
	}
	return filepath.Join("/tmp/.X11-unix", "X"+n), nil
}

// startXvfb runs a virtual display so a headful Chrome can lay out and paint
// the overlay on a machine without a screen. It returns once the display
// accepts connections.
func (m *Manager) startXvfb(ctx context.Context) error {
	if m.xvfb != nil {
		return nil
	}
	display := m.cfg.XvfbDisplay
	socket, err := displaySocket(display)
	if err != nil {
		return err
	}

	cmd := exec.Command("Xvfb", display, "-screen", "0", displayScreen, "-ac", "-nolisten", "tcp")
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start xvfb: %w", err)
	}
	m.xvfb = cmd

	ctx, cancel := context.WithTimeout(ctx, displayWait)
	defer cancel()
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		if _, err := os.Stat(socket); err == nil {
			break
		}
		select {
		case <-ctx.Done():
			m.stopXvfb()
			return fmt.Errorf("wait for display %s: %w", display, ctx.Err())
		case <-tick.C:
		}
	}

	m.cfg.Logger.Info("browser: display ready", "display", display, "pid", cmd.Process.Pid)
	return nil
}

func (m *Manager) stopXvfb() {
	if m.xvfb == nil {
		return
	}
	if m.xvfb.Process != nil {
		m.xvfb.Process.Kill()
		m.xvfb.Wait()
	}
	m.cfg.Logger.Info("browser: display stopped", "display", m.cfg.XvfbDisplay)
	m.xvfb = nil
}
