package client

import (
	"context"
	"net/http"

	"github.com/erazemk/toolshed/internal/model"
)

// ListReservations returns the current user's reservations.
func (c *Client) ListReservations(ctx context.Context) ([]model.Reservation, error) {
	var rs []model.Reservation
	err := c.do(ctx, request{method: http.MethodGet, route: "/reservations", path: "/reservations", out: &rs})
	return rs, err
}

type reserveRequest struct {
	ToolID          int64  `json:"tool_id"`
	ReservationDate string `json:"reservation_date"`
}

// Reserve claims toolID for date.
func (c *Client) Reserve(ctx context.Context, toolID int64, date string) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		route:  "/reservations/reserve",
		path:   "/reservations/reserve",
		body:   reserveRequest{ToolID: toolID, ReservationDate: date},
	})
}

// Checkout marks the reservation on toolID as checked out.
func (c *Client) Checkout(ctx context.Context, toolID int64) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		route:  "/reservations/checkout/{toolId}",
		path:   idPath("/reservations/checkout/%d", toolID),
	})
}

// Return asks for the reservation on toolID to be returned. The backend
// cancels a reservation that was never checked out. report, when non-nil,
// is sent as the request body.
func (c *Client) Return(ctx context.Context, toolID int64, report *model.ReturnReport) error {
	req := request{
		method: http.MethodPost,
		route:  "/reservations/return/{toolId}",
		path:   idPath("/reservations/return/%d", toolID),
	}
	if report != nil {
		req.body = report
	}
	return c.do(ctx, req)
}

// PendingReturns lists returns awaiting approval (admin).
func (c *Client) PendingReturns(ctx context.Context) ([]model.Reservation, error) {
	var rs []model.Reservation
	err := c.do(ctx, request{
		method: http.MethodGet,
		route:  "/reservations/pending-returns",
		path:   "/reservations/pending-returns",
		out:    &rs,
	})
	return rs, err
}

// ApproveReturn confirms the return of reservation id (admin).
func (c *Client) ApproveReturn(ctx context.Context, id int64) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		route:  "/reservations/approve-return/{id}",
		path:   idPath("/reservations/approve-return/%d", id),
	})
}

// RejectReturn sends reservation id back to checked out (admin).
func (c *Client) RejectReturn(ctx context.Context, id int64) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		route:  "/reservations/reject-return/{id}",
		path:   idPath("/reservations/reject-return/%d", id),
	})
}
