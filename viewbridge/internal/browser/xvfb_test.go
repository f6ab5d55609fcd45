package browser

import "testing"

func TestDisplaySocket(t *testing.T) {
	cases := map[string]string{
		":99":  "/tmp/.X11-unix/X99",
		"0":    "/tmp/.X11-unix/X0",
		":1.0": "/tmp/.X11-unix/X1",
	}
	for display, want := range cases {
		got, err := displaySocket(display)
		if err != nil || got != want {
			t.Errorf("%s: got %q, %v, want %q", display, got, err, want)
		}
	}
	for _, bad := range []string{"", ":", "host:0", ":x1"} {
		if _, err := displaySocket(bad); err == nil {
			t.Errorf("%q: want error", bad)
		}
	}
}
