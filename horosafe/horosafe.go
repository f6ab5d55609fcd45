// Package horosafe provides the safety checks applied to user-supplied
// endpoints: URL scheme and SSRF validation, and bounded response excerpts.
package horosafe

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
)

// MaxResponseBody caps how much of a response is drained after an excerpt (1 MiB).
const MaxResponseBody int64 = 1 << 20

// ErrSSRF is returned when a URL targets a private/loopback address.
var ErrSSRF = errors.New("horosafe: URL targets a private or loopback address")

// ErrUnsafeScheme is returned when a URL uses a non-HTTP(S) scheme.
var ErrUnsafeScheme = errors.New("horosafe: only http and https schemes are allowed")

// URLPolicy controls ValidateURL.
type URLPolicy struct {
	// AllowPrivate accepts loopback and private addresses. Dev servers and
	// local editors live there.
	AllowPrivate bool
	// Resolve checks every address a hostname resolves to, catching internal
	// names that resolve to private ranges.
	Resolve bool
}

// ValidateURL checks that rawURL uses http/https, has a hostname and, unless
// the policy allows it, does not target a private or loopback address.
func ValidateURL(rawURL string, policy URLPolicy) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("horosafe: invalid URL: %w", err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return ErrUnsafeScheme
	}
	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("horosafe: URL has no host")
	}
	if policy.AllowPrivate {
		return nil
	}

	if ip := net.ParseIP(host); ip != nil {
		if isPrivateIP(ip) {
			return ErrSSRF
		}
		return nil
	}
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return ErrSSRF
	}
	if !policy.Resolve {
		return nil
	}

	addrs, err := net.LookupHost(host)
	if err != nil {
		// Unresolvable now; the connection attempt reports the real error.
		return nil
	}
	for _, a := range addrs {
		if ip := net.ParseIP(a); ip != nil && isPrivateIP(ip) {
			return ErrSSRF
		}
	}
	return nil
}

// Excerpt returns at most maxBytes from the start of r, then discards up to
// MaxResponseBody more so an HTTP connection can be reused. A longer body is
// truncated, never an error; only read failures are reported.
func Excerpt(r io.Reader, maxBytes int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes))
	if err != nil {
		return data, err
	}
	_, err = io.Copy(io.Discard, io.LimitReader(r, MaxResponseBody))
	return data, err
}

var privateRanges = func() []*net.IPNet {
	var nets []*net.IPNet
	for _, cidr := range []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"169.254.0.0/16",
		"fc00::/7",
	} {
		_, n, err := net.ParseCIDR(cidr)
		if err == nil {
			nets = append(nets, n)
		}
	}
	return nets
}()

func isPrivateIP(ip net.IP) bool {
	if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
		return true
	}
	for _, n := range privateRanges {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
