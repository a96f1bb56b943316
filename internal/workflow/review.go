package workflow

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/erazemk/toolshed/internal/forms"
	"github.com/erazemk/toolshed/internal/model"
	"github.com/erazemk/toolshed/internal/notify"
	"github.com/erazemk/toolshed/internal/store"
)

// ReviewAPI is the part of the backend the admin review uses.
type ReviewAPI interface {
	ListTools(ctx context.Context, skip, limit int) ([]model.Tool, error)
	CreateTool(ctx context.Context, in model.ToolInput) (model.Tool, error)
	UpdateTool(ctx context.Context, id int64, in model.ToolInput) (model.Tool, error)
	DeleteTool(ctx context.Context, id int64) error
	PendingReturns(ctx context.Context) ([]model.Reservation, error)
	ApproveReturn(ctx context.Context, id int64) error
	RejectReturn(ctx context.Context, id int64) error
	PendingSubmissions(ctx context.Context) ([]model.ToolSubmission, error)
	ReviewSubmission(ctx context.Context, id int64, action string) error
	UsageReport(ctx context.Context) (model.UsageReport, error)
}

// PendingReturn is a return awaiting approval together with what the
// borrower declared locally.
type PendingReturn struct {
	Reservation model.Reservation
	Report      *model.ReturnReport
	Declaration *model.CheckoutDeclaration
}

// Review is the administrator's side of the workflow.
type Review struct {
	api   ReviewAPI
	db    *sql.DB
	board *notify.Board

	mu          sync.RWMutex
	returns     []PendingReturn
	submissions []model.ToolSubmission
	tools       []model.Tool
}

// NewReview returns an admin review with its own notification board.
func NewReview(api ReviewAPI, db *sql.DB, ttl time.Duration) *Review {
	return &Review{api: api, db: db, board: notify.NewBoard(ttl)}
}

// Notifications returns the review's notification board.
func (r *Review) Notifications() *notify.Board {
	return r.board
}

// Returns returns the last fetched pending returns.
func (r *Review) Returns() []PendingReturn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]PendingReturn(nil), r.returns...)
}

// Submissions returns the last fetched pending submissions.
func (r *Review) Submissions() []model.ToolSubmission {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.ToolSubmission(nil), r.submissions...)
}

// Tools returns the last fetched catalog.
func (r *Review) Tools() []model.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.Tool(nil), r.tools...)
}

// PendingReturns fetches the returns awaiting approval and joins each with
// its locally stored report and declaration.
func (r *Review) PendingReturns(ctx context.Context) ([]PendingReturn, error) {
	rs, err := r.api.PendingReturns(ctx)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, r.failed("Failed to fetch pending returns", err)
	}

	out := make([]PendingReturn, 0, len(rs))
	for _, res := range rs {
		pr := PendingReturn{Reservation: res}
		if pr.Report, err = store.GetReturnReport(ctx, r.db, res.ID); err != nil {
			slog.Error("loading return report", "reservation_id", res.ID, "error", err)
		}
		if pr.Declaration, err = store.GetCheckoutDeclaration(ctx, r.db, res.ID); err != nil {
			slog.Error("loading checkout declaration", "reservation_id", res.ID, "error", err)
		}
		out = append(out, pr)
	}

	r.mu.Lock()
	r.returns = out
	r.mu.Unlock()

	if len(out) == 0 {
		r.board.Info("No pending returns")
	}
	return out, nil
}

// ApproveReturn confirms a pending return; the tool becomes available.
func (r *Review) ApproveReturn(ctx context.Context, reservationID int64) error {
	return r.decideReturn(ctx, reservationID, model.EventApproveReturn)
}

// RejectReturn refuses a pending return; the tool stays checked out.
func (r *Review) RejectReturn(ctx context.Context, reservationID int64) error {
	return r.decideReturn(ctx, reservationID, model.EventRejectReturn)
}

func (r *Review) decideReturn(ctx context.Context, id int64, event model.Event) error {
	call, verb := r.api.ApproveReturn, "approve"
	if event == model.EventRejectReturn {
		call, verb = r.api.RejectReturn, "reject"
	}
	msg := fmt.Sprintf("Failed to %s return", verb)

	if err := r.checkPending(id, event); err != nil {
		r.board.Error(msg)
		return err
	}
	if err := call(ctx, id); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return r.failed(msg, err)
	}
	slog.Info("return reviewed", "reservation_id", id, "decision", verb)
	if event == model.EventApproveReturn {
		r.forget(ctx, id)
	}

	if _, err := r.PendingReturns(ctx); err != nil {
		return err
	}
	if event == model.EventApproveReturn {
		r.board.Success("Return approved")
	} else {
		r.board.Success("Return rejected")
	}
	return nil
}

// forget drops the local declaration and report of a returned reservation.
func (r *Review) forget(ctx context.Context, id int64) {
	if err := store.DeleteReturnReport(ctx, r.db, id); err != nil {
		slog.Error("deleting return report", "reservation_id", id, "error", err)
	}
	if err := store.DeleteCheckoutDeclaration(ctx, r.db, id); err != nil {
		slog.Error("deleting checkout declaration", "reservation_id", id, "error", err)
	}
}

// checkPending validates event against the last fetched copy of the
// reservation. An id not in the list is left to the backend to judge.
func (r *Review) checkPending(id int64, event model.Event) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, pr := range r.returns {
		if pr.Reservation.ID != id {
			continue
		}
		state, err := pr.Reservation.State()
		if err != nil {
			return err
		}
		if _, err := model.Transition(state, event); err != nil {
			return fmt.Errorf("reservation %d: %w", id, err)
		}
	}
	return nil
}

// PendingSubmissions fetches the submissions awaiting review.
func (r *Review) PendingSubmissions(ctx context.Context) ([]model.ToolSubmission, error) {
	subs, err := r.api.PendingSubmissions(ctx)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, r.failed("Failed to fetch submissions", err)
	}

	r.mu.Lock()
	r.submissions = subs
	r.mu.Unlock()

	if len(subs) == 0 {
		r.board.Info("No pending submissions")
	}
	return subs, nil
}

// ApproveSubmission accepts a submission; the backend adds the tool.
func (r *Review) ApproveSubmission(ctx context.Context, id int64) error {
	return r.reviewSubmission(ctx, id, model.ReviewApprove)
}

// RejectSubmission declines a submission.
func (r *Review) RejectSubmission(ctx context.Context, id int64) error {
	return r.reviewSubmission(ctx, id, model.ReviewReject)
}

func (r *Review) reviewSubmission(ctx context.Context, id int64, action string) error {
	if err := r.api.ReviewSubmission(ctx, id, action); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return r.failed(fmt.Sprintf("Failed to %s submission", action), err)
	}
	slog.Info("submission reviewed", "submission_id", id, "decision", action)

	if _, err := r.PendingSubmissions(ctx); err != nil {
		return err
	}
	if action == model.ReviewApprove {
		r.board.Success("Submission approved")
	} else {
		r.board.Success("Submission rejected")
	}
	return nil
}

// Inventory fetches the whole catalog for management.
func (r *Review) Inventory(ctx context.Context) ([]model.Tool, error) {
	tools, err := listAll(ctx, r.api)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, r.failed(msgFetchTools, err)
	}

	r.mu.Lock()
	r.tools = tools
	r.mu.Unlock()
	return tools, nil
}

// CreateTool adds a tool directly to the catalog.
func (r *Review) CreateTool(ctx context.Context, form *forms.SubmissionForm) (model.Tool, error) {
	if err := form.Validate(); err != nil {
		return model.Tool{}, err
	}
	tool, err := r.api.CreateTool(ctx, form.Input())
	if err != nil {
		if ctx.Err() != nil {
			return model.Tool{}, ctx.Err()
		}
		return model.Tool{}, r.failed("Failed to create tool", err)
	}
	slog.Info("tool created", "tool_id", tool.ID, "name", tool.Name)

	if _, err := r.Inventory(ctx); err != nil {
		return tool, err
	}
	r.board.Success("Tool created")
	return tool, nil
}

// UpdateTool edits a catalog entry.
func (r *Review) UpdateTool(ctx context.Context, id int64, form *forms.SubmissionForm) (model.Tool, error) {
	if err := form.Validate(); err != nil {
		return model.Tool{}, err
	}
	tool, err := r.api.UpdateTool(ctx, id, form.Input())
	if err != nil {
		if ctx.Err() != nil {
			return model.Tool{}, ctx.Err()
		}
		return model.Tool{}, r.failed("Failed to update tool", err)
	}
	slog.Info("tool updated", "tool_id", id)

	if _, err := r.Inventory(ctx); err != nil {
		return tool, err
	}
	r.board.Success("Tool updated")
	return tool, nil
}

// DeleteTool removes a catalog entry.
func (r *Review) DeleteTool(ctx context.Context, id int64) error {
	if err := r.api.DeleteTool(ctx, id); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return r.failed("Failed to delete tool", err)
	}
	slog.Info("tool deleted", "tool_id", id)

	if _, err := r.Inventory(ctx); err != nil {
		return err
	}
	r.board.Success("Tool deleted")
	return nil
}

// UsageReport fetches the catalog and reservation totals.
func (r *Review) UsageReport(ctx context.Context) (model.UsageReport, error) {
	rep, err := r.api.UsageReport(ctx)
	if ctx.Err() != nil {
		return model.UsageReport{}, ctx.Err()
	}
	if err != nil {
		return model.UsageReport{}, r.failed("Failed to fetch usage report", err)
	}
	return rep, nil
}

func (r *Review) failed(msg string, err error) error {
	slog.Warn(msg, "error", err)
	r.board.Error(msg)
	return fmt.Errorf("%s: %w", msg, err)
}
