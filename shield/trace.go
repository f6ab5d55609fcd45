package shield

import (
	"log/slog"
	"net/http"
	"regexp"

	"github.com/hazyhaar/overlay/idgen"
	"github.com/hazyhaar/overlay/kit"
)

// TraceHeader carries the trace id in both directions.
const TraceHeader = "X-Trace-ID"

var (
	traceIDs = idgen.Prefixed("tr_", idgen.Default)

	// Editors may pass their own id to correlate their logs with ours.
	validTraceID = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,64}$`)
)

// TraceID tags each request with a trace id, taken from the incoming
// X-Trace-ID header when it is well formed and minted otherwise. The id is
// echoed in the response and stored in the context with TransportHTTP.
func TraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceHeader)
		if !validTraceID.MatchString(traceID) {
			traceID = traceIDs()
		}
		w.Header().Set(TraceHeader, traceID)

		ctx := kit.WithTraceID(r.Context(), traceID)
		ctx = kit.WithTransport(ctx, kit.TransportHTTP)

		// Editors poll; keep request lines out of the default level.
		slog.Debug("shield: request",
			"trace_id", traceID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
