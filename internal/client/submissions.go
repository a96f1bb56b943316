package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/erazemk/toolshed/internal/model"
)

// SubmitTool proposes a new tool for the catalog.
func (c *Client) SubmitTool(ctx context.Context, in model.ToolInput) (model.ToolSubmission, error) {
	var sub model.ToolSubmission
	err := c.do(ctx, request{
		method: http.MethodPost,
		route:  "/tool-submissions",
		path:   "/tool-submissions",
		body:   in,
		out:    &sub,
	})
	return sub, err
}

// PendingSubmissions lists submissions awaiting review (admin).
func (c *Client) PendingSubmissions(ctx context.Context) ([]model.ToolSubmission, error) {
	var subs []model.ToolSubmission
	err := c.do(ctx, request{
		method: http.MethodGet,
		route:  "/tool-submissions/pending",
		path:   "/tool-submissions/pending",
		out:    &subs,
	})
	return subs, err
}

// ReviewSubmission approves or rejects submission id (admin). action is
// model.ReviewApprove or model.ReviewReject.
func (c *Client) ReviewSubmission(ctx context.Context, id int64, action string) error {
	if action != model.ReviewApprove && action != model.ReviewReject {
		return fmt.Errorf("unknown review action %q", action)
	}
	return c.do(ctx, request{
		method: http.MethodPut,
		route:  "/tool-submissions/{id}/" + action,
		path:   fmt.Sprintf("/tool-submissions/%d/%s", id, action),
	})
}
