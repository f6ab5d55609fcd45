package viewbridge

import (
	"context"

	"github.com/hazyhaar/overlay/kit"
	"github.com/hazyhaar/overlay/viewbridge/viewstate"
)

// Request and response shapes shared by the MCP tools and the HTTP API.

type viewStateResponse struct {
	Entries   int                 `json:"entries"`
	Selected  string              `json:"selected"`
	ViewState viewstate.ViewState `json:"view_state"`
}

type selectionRequest struct {
	NodeID *string `json:"node_id"` // null clears the selection
}

type selectionResponse struct {
	// Applied is false when the node id was unknown and the overlay was left
	// as it was.
	Applied  bool            `json:"applied"`
	Selected string          `json:"selected"`
	Rect     *viewstate.Rect `json:"rect"`
}

type updateResponse struct {
	Entries int `json:"entries"`
}

// endpoints are the bridge operations in transport-neutral form.
type endpoints struct {
	viewState    kit.Endpoint
	setSelection kit.Endpoint
	update       kit.Endpoint
}

func (b *Bridge) endpoints() endpoints {
	return endpoints{
		viewState: kit.Logging(b.logger, "view_state")(func(_ context.Context, _ any) (any, error) {
			vs := b.ViewState()
			return &viewStateResponse{Entries: len(vs), Selected: b.Selected(), ViewState: vs}, nil
		}),
		setSelection: kit.Logging(b.logger, "set_selection")(func(ctx context.Context, req any) (any, error) {
			r := req.(*selectionRequest)
			applied, err := b.setSelection(ctx, r.NodeID)
			if err != nil {
				return nil, err
			}
			return &selectionResponse{Applied: applied, Selected: b.Selected(), Rect: b.SelectionRect()}, nil
		}),
		update: kit.Logging(b.logger, "update")(func(ctx context.Context, _ any) (any, error) {
			if err := b.Update(ctx); err != nil {
				return nil, err
			}
			return &updateResponse{Entries: len(b.ViewState())}, nil
		}),
	}
}
