package viewbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hazyhaar/overlay/kit"
	"github.com/hazyhaar/overlay/shield"
)

// DefaultUpdateLimit caps explicit recomputes per client: a pass walks the
// whole tree.
var DefaultUpdateLimit = shield.Limit{MaxRequests: 20, Window: time.Second}

// HTTPOptions configures the editor-facing HTTP API.
type HTTPOptions struct {
	// Hub serves GET /api/stream when set. Its commands are routed to the
	// bridge.
	Hub *Hub
	// UpdateLimit overrides DefaultUpdateLimit for POST /api/update.
	UpdateLimit *shield.Limit
}

// Handler returns the HTTP API:
//
//	GET  /health          liveness, view state size and connected editors
//	GET  /api/view-state  last computed view state
//	POST /api/selection   {"node_id": "..."} or {"node_id": null}
//	POST /api/update      recompute now
//	GET  /api/stream      websocket snapshot push and editor commands
//	GET  /metrics         Prometheus exposition
func (b *Bridge) Handler(opts HTTPOptions) http.Handler {
	limit := DefaultUpdateLimit
	if opts.UpdateLimit != nil {
		limit = *opts.UpdateLimit
	}
	stack, rl := shield.APIStack(shield.StackConfig{
		Limits: map[string]shield.Limit{"POST /api/update": limit},
	})
	rl.StartGC(time.Minute, b.done)

	ep := b.endpoints()

	r := chi.NewRouter()
	r.Handle("/metrics", b.metrics.Handler())

	r.Group(func(r chi.Router) {
		for _, mw := range stack {
			r.Use(mw)
		}

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			status := "ok"
			if b.disposed.Load() {
				status = "disposed"
			}
			body := map[string]any{
				"status":  status,
				"entries": len(b.ViewState()),
			}
			if opts.Hub != nil {
				body["editors"] = opts.Hub.Clients()
			}
			writeJSON(w, http.StatusOK, body)
		})

		r.Get("/api/view-state", func(w http.ResponseWriter, r *http.Request) {
			resp, err := ep.viewState(r.Context(), nil)
			respond(w, resp, err)
		})

		r.Post("/api/selection", func(w http.ResponseWriter, r *http.Request) {
			var req selectionRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, fmt.Errorf("invalid body: %w", err))
				return
			}
			resp, err := ep.setSelection(r.Context(), &req)
			respond(w, resp, err)
		})

		r.Post("/api/update", func(w http.ResponseWriter, r *http.Request) {
			resp, err := ep.update(r.Context(), nil)
			respond(w, resp, err)
		})

		if opts.Hub != nil {
			opts.Hub.SetCommandHandler(func(ctx context.Context, cmd Command) error {
				return b.HandleCommand(kit.WithTransport(ctx, kit.TransportWebSocket), cmd)
			})
			r.Handle("/api/stream", opts.Hub)
		}
	})

	return r
}

func respond(w http.ResponseWriter, resp any, err error) {
	switch {
	case errors.Is(err, ErrDisposed):
		writeError(w, http.StatusServiceUnavailable, err)
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
	default:
		writeJSON(w, http.StatusOK, resp)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
