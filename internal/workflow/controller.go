// Package workflow drives reservations through reserve, checkout and return
// against the backend, keeping the local view in step by refetching after
// every change.
package workflow

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/erazemk/toolshed/internal/forms"
	"github.com/erazemk/toolshed/internal/model"
	"github.com/erazemk/toolshed/internal/notify"
	"github.com/erazemk/toolshed/internal/session"
	"github.com/erazemk/toolshed/internal/store"
)

// CheckoutWarning is the standing notice about the backend's grace window.
const CheckoutWarning = "Reservations that are not checked out within 24 hours are cancelled automatically."

// Errors returned by the workflow.
var (
	ErrToolUnavailable     = errors.New("tool is not available")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrNotLoggedIn         = errors.New("not logged in")
)

// Failure messages shown to the user.
const (
	msgReserveFailed  = "Failed to reserve tool"
	msgCheckoutFailed = "Failed to check out tool"
	msgReturnFailed   = "Failed to return tool"
	msgCancelFailed   = "Failed to cancel reservation"
	msgFetchRes       = "Failed to fetch reservations"
	msgFetchTools     = "Failed to fetch tools"
	msgSubmitFailed   = "Failed to submit tool"
	msgLoginRequired  = "Please log in to continue"
)

// ReservationAPI is the part of the backend the controller uses.
type ReservationAPI interface {
	ListTools(ctx context.Context, skip, limit int) ([]model.Tool, error)
	ListReservations(ctx context.Context) ([]model.Reservation, error)
	Reserve(ctx context.Context, toolID int64, date string) error
	Checkout(ctx context.Context, toolID int64) error
	Return(ctx context.Context, toolID int64, report *model.ReturnReport) error
	SubmitTool(ctx context.Context, in model.ToolInput) (model.ToolSubmission, error)
}

// Options tune a Controller.
type Options struct {
	// SendReturnMetadata puts the return report in the return call body.
	SendReturnMetadata bool
	NotificationTTL    time.Duration
}

// Controller owns the signed-in user's reservations and the catalog
// snapshot they are checked against. It is safe for concurrent use.
type Controller struct {
	api   ReservationAPI
	db    *sql.DB
	sess  *session.Session
	board *notify.Board
	opts  Options
	now   func() time.Time

	mu           sync.RWMutex
	tools        []model.Tool
	reservations []model.Reservation
	started      uint64 // reloads begun
	applied      uint64 // newest reload whose result is shown

	unsubscribe func()
}

// NewController returns a controller for the user signed in to sess. Its
// state is dropped on logout.
func NewController(api ReservationAPI, db *sql.DB, sess *session.Session, opts Options) *Controller {
	c := &Controller{
		api:   api,
		db:    db,
		sess:  sess,
		board: notify.NewBoard(opts.NotificationTTL),
		opts:  opts,
		now:   time.Now,
	}
	c.unsubscribe = sess.Subscribe(func(_ model.Identity, signedIn bool) {
		if !signedIn {
			c.reset()
		}
	})
	return c
}

// Close detaches the controller from the session.
func (c *Controller) Close() {
	c.unsubscribe()
}

func (c *Controller) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tools = nil
	c.reservations = nil
	c.applied = c.started
}

// Reservations returns the last fetched reservations.
func (c *Controller) Reservations() []model.Reservation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Reservation(nil), c.reservations...)
}

// Tools returns the last fetched catalog.
func (c *Controller) Tools() []model.Tool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Tool(nil), c.tools...)
}

// Warning returns the persistent checkout policy notice.
func (c *Controller) Warning() string {
	return CheckoutWarning
}

// Notifications returns the controller's notification board.
func (c *Controller) Notifications() *notify.Board {
	return c.board
}

// Reservation returns the reservation with id from the last fetch.
func (c *Controller) Reservation(id int64) (model.Reservation, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, r := range c.reservations {
		if r.ID == id {
			return r, true
		}
	}
	return model.Reservation{}, false
}

// Reload fetches the catalog and the reservations and replaces the local
// state only when both succeed. Reservations whose flags contradict each
// other are left out. A result that arrives after ctx is done, or after a
// newer reload has landed, is discarded.
func (c *Controller) Reload(ctx context.Context) error {
	return c.reload(ctx, true)
}

// quietReload is Reload without notifications, for background refreshes.
func (c *Controller) quietReload(ctx context.Context) error {
	return c.reload(ctx, false)
}

func (c *Controller) reload(ctx context.Context, visible bool) error {
	if !c.signedIn() {
		return ErrNotLoggedIn
	}

	c.mu.Lock()
	c.started++
	seq := c.started
	c.mu.Unlock()

	tools, err := listAll(ctx, c.api)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		slog.Warn("fetching tools failed", "error", err)
		if visible {
			c.board.Error(msgFetchTools)
		}
		return fmt.Errorf("fetching tools: %w", err)
	}

	fetched, err := c.api.ListReservations(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		slog.Warn("fetching reservations failed", "error", err)
		if visible {
			c.board.Error(msgFetchRes)
		}
		return fmt.Errorf("fetching reservations: %w", err)
	}

	reservations := make([]model.Reservation, 0, len(fetched))
	for _, r := range fetched {
		if _, err := r.State(); err != nil {
			slog.Warn("ignoring reservation", "reservation_id", r.ID, "tool_id", r.ToolID, "error", err)
			continue
		}
		reservations = append(reservations, r)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq <= c.applied {
		return nil
	}
	c.tools = tools
	c.reservations = reservations
	c.applied = seq
	return nil
}

// Reserve claims toolID for date. The request is not sent when the last
// known catalog shows the tool unavailable or the user already holds an
// active reservation on it.
func (c *Controller) Reserve(ctx context.Context, toolID int64, date string) error {
	if !c.requireLogin() {
		return ErrNotLoggedIn
	}

	if err := c.checkReservable(toolID); err != nil {
		slog.Info("reserve rejected locally", "tool_id", toolID, "error", err)
		c.board.Error(msgReserveFailed + ": " + err.Error())
		return err
	}

	if err := c.api.Reserve(ctx, toolID, date); err != nil {
		return c.failed(ctx, msgReserveFailed, err, "tool_id", toolID)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	slog.Info("tool reserved", "tool_id", toolID, "date", date)

	if err := c.Reload(ctx); err != nil {
		return err
	}
	c.board.Success("Tool reserved successfully! " + CheckoutWarning)
	return nil
}

func (c *Controller) checkReservable(toolID int64) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, t := range c.tools {
		if t.ID == toolID && !t.IsAvailable {
			return ErrToolUnavailable
		}
	}
	for _, r := range c.reservations {
		if r.ToolID == toolID && r.IsActive {
			return ErrToolUnavailable
		}
	}
	return nil
}

// Cancel gives up a reservation that has not been checked out.
func (c *Controller) Cancel(ctx context.Context, reservationID int64) error {
	if !c.requireLogin() {
		return ErrNotLoggedIn
	}

	r, err := c.lookup(reservationID, model.EventCancel)
	if err != nil {
		c.board.Error(msgCancelFailed)
		return err
	}

	if err := c.api.Return(ctx, r.ToolID, nil); err != nil {
		return c.failed(ctx, msgCancelFailed, err, "reservation_id", reservationID)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	slog.Info("reservation cancelled", "reservation_id", reservationID, "tool_id", r.ToolID)

	if err := c.Reload(ctx); err != nil {
		return err
	}
	c.board.Success("Reservation cancelled")
	return nil
}

// Checkout takes possession of a reserved tool. form must validate before
// anything is sent; field errors come back as forms.FieldErrors without a
// notification.
func (c *Controller) Checkout(ctx context.Context, reservationID int64, form *forms.CheckoutForm) error {
	if !c.requireLogin() {
		return ErrNotLoggedIn
	}

	r, err := c.lookup(reservationID, model.EventCheckout)
	if err != nil {
		c.board.Error(msgCheckoutFailed)
		return err
	}

	return form.Submit(func(decl model.CheckoutDeclaration) error {
		decl.ReservationID = r.ID
		decl.ToolID = r.ToolID
		decl.DeclaredAt = c.now()

		if err := c.api.Checkout(ctx, r.ToolID); err != nil {
			return c.failed(ctx, msgCheckoutFailed, err, "reservation_id", r.ID)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Info("tool checked out", "reservation_id", r.ID, "tool_id", r.ToolID)

		if err := store.SaveCheckoutDeclaration(ctx, c.db, decl); err != nil {
			slog.Error("saving checkout declaration", "reservation_id", r.ID, "error", err)
		}

		if err := c.Reload(ctx); err != nil {
			return err
		}
		c.board.Success("Tool checked out successfully!")
		return nil
	})
}

// RequestReturn asks for a checked out tool to be taken back. The report is
// stored locally before the call so the admin review can show it; it is
// sent in the request only with Options.SendReturnMetadata.
func (c *Controller) RequestReturn(ctx context.Context, reservationID int64, form *forms.ReturnForm) error {
	if !c.requireLogin() {
		return ErrNotLoggedIn
	}

	r, err := c.lookup(reservationID, model.EventRequestReturn)
	if err != nil {
		c.board.Error(msgReturnFailed)
		return err
	}

	return form.Submit(func(report model.ReturnReport) error {
		report.ReservationID = r.ID
		report.ToolID = r.ToolID

		if err := store.SaveReturnReport(ctx, c.db, report); err != nil {
			slog.Error("saving return report", "reservation_id", r.ID, "error", err)
			c.board.Error(msgReturnFailed)
			return fmt.Errorf("saving return report: %w", err)
		}

		var body *model.ReturnReport
		if c.opts.SendReturnMetadata {
			body = &report
		}
		if err := c.api.Return(ctx, r.ToolID, body); err != nil {
			// The tool is still checked out; no report belongs to it.
			if err := store.DeleteReturnReport(context.WithoutCancel(ctx), c.db, r.ID); err != nil {
				slog.Error("deleting unsent return report", "reservation_id", r.ID, "error", err)
			}
			return c.failed(ctx, msgReturnFailed, err, "reservation_id", r.ID)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Info("return requested", "reservation_id", r.ID, "tool_id", r.ToolID, "condition", report.Condition)

		if body != nil {
			if err := store.MarkReturnReportTransmitted(ctx, c.db, r.ID); err != nil {
				slog.Error("marking return report transmitted", "reservation_id", r.ID, "error", err)
			}
		}

		if err := c.Reload(ctx); err != nil {
			return err
		}
		c.board.Success("Return requested. An administrator will confirm it.")
		return nil
	})
}

// SubmitTool proposes a new tool for the catalog.
func (c *Controller) SubmitTool(ctx context.Context, form *forms.SubmissionForm) (model.ToolSubmission, error) {
	if !c.requireLogin() {
		return model.ToolSubmission{}, ErrNotLoggedIn
	}
	if err := form.Validate(); err != nil {
		return model.ToolSubmission{}, err
	}

	sub, err := c.api.SubmitTool(ctx, form.Input())
	if err != nil {
		return model.ToolSubmission{}, c.failed(ctx, msgSubmitFailed, err, "name", form.Name)
	}
	if ctx.Err() != nil {
		return model.ToolSubmission{}, ctx.Err()
	}
	slog.Info("tool submitted", "submission_id", sub.ID, "name", sub.Name)
	c.board.Success("Tool submitted for approval")
	return sub, nil
}

// lookup finds a reservation in the last fetch and checks event is legal
// from its state.
func (c *Controller) lookup(reservationID int64, event model.Event) (model.Reservation, error) {
	r, ok := c.Reservation(reservationID)
	if !ok {
		return model.Reservation{}, fmt.Errorf("%w: %d", ErrReservationNotFound, reservationID)
	}
	state, err := r.State()
	if err != nil {
		return model.Reservation{}, err
	}
	if _, err := model.Transition(state, event); err != nil {
		return model.Reservation{}, fmt.Errorf("reservation %d: %w", reservationID, err)
	}
	return r, nil
}

// failed reports a failed backend call: one error notification, unless ctx
// was cancelled, in which case the result is dropped.
func (c *Controller) failed(ctx context.Context, msg string, err error, attrs ...any) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	slog.Warn(msg, append(attrs, "error", err)...)
	c.board.Error(msg)
	return fmt.Errorf("%s: %w", msg, err)
}

func (c *Controller) signedIn() bool {
	return c.sess.Token() != ""
}

func (c *Controller) requireLogin() bool {
	if c.signedIn() {
		return true
	}
	c.board.Error(msgLoginRequired)
	return false
}
