package testutil

import (
	"net/http"
	"sort"
	"time"

	"github.com/erazemk/toolshed/internal/model"
)

type reserveRequest struct {
	ToolID          int64  `json:"tool_id"`
	ReservationDate string `json:"reservation_date"`
}

// listReservations handles GET /reservations. Callers see their own
// reservations, oldest first.
func (b *Backend) listReservations(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r.Context())

	b.mu.Lock()
	out := make([]model.Reservation, 0)
	for _, res := range b.reservations {
		if res.UserID == claims.UserID {
			out = append(out, b.view(res))
		}
	}
	b.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	jsonResponse(w, http.StatusOK, out)
}

// reserve handles POST /reservations/reserve.
func (b *Backend) reserve(w http.ResponseWriter, r *http.Request) {
	var req reserveRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	if req.ReservationDate == "" {
		jsonError(w, http.StatusBadRequest, "reservation_date is required")
		return
	}
	claims := getClaims(r.Context())

	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.tools[req.ToolID]
	if !ok {
		jsonError(w, http.StatusNotFound, "Tool not found")
		return
	}
	if !t.IsAvailable || b.activeFor(t.ID) != nil {
		jsonError(w, http.StatusBadRequest, "Tool is not available")
		return
	}

	res := &model.Reservation{
		ID:              b.id(),
		ToolID:          t.ID,
		UserID:          claims.UserID,
		ReservationDate: req.ReservationDate,
		IsActive:        true,
	}
	b.reservations[res.ID] = res
	b.syncAvailability(t.ID)
	jsonResponse(w, http.StatusOK, b.view(res))
}

// callerReservation finds the caller's active reservation on the {toolId}
// path value. Caller holds mu.
func (b *Backend) callerReservation(w http.ResponseWriter, r *http.Request) *model.Reservation {
	toolID, ok := pathID(r, "toolId")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid tool id")
		return nil
	}
	res := b.activeFor(toolID)
	if res == nil || res.UserID != getClaims(r.Context()).UserID {
		jsonError(w, http.StatusNotFound, "Reservation not found")
		return nil
	}
	return res
}

// checkout handles POST /reservations/checkout/{toolId}.
func (b *Backend) checkout(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	res := b.callerReservation(w, r)
	if res == nil {
		return
	}
	if res.IsCheckedOut {
		jsonError(w, http.StatusBadRequest, "Tool already checked out")
		return
	}
	res.IsCheckedOut = true
	jsonResponse(w, http.StatusOK, b.view(res))
}

// returnTool handles POST /reservations/return/{toolId}. A reservation that
// was never checked out is cancelled; a checked out one becomes return
// pending.
func (b *Backend) returnTool(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	res := b.callerReservation(w, r)
	if res == nil {
		return
	}

	switch {
	case !res.IsCheckedOut:
		res.IsActive = false
		b.syncAvailability(res.ToolID)
	case res.ReturnPending:
		jsonError(w, http.StatusBadRequest, "Return already requested")
		return
	default:
		res.ReturnPending = true
	}
	jsonResponse(w, http.StatusOK, b.view(res))
}

// pendingReturns handles GET /reservations/pending-returns.
func (b *Backend) pendingReturns(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	out := make([]model.Reservation, 0)
	for _, res := range b.reservations {
		if res.IsActive && res.ReturnPending {
			out = append(out, b.view(res))
		}
	}
	b.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	jsonResponse(w, http.StatusOK, out)
}

// pendingByID finds a reservation awaiting return approval. Caller holds
// mu.
func (b *Backend) pendingByID(w http.ResponseWriter, r *http.Request) *model.Reservation {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid reservation id")
		return nil
	}
	res, ok := b.reservations[id]
	if !ok {
		jsonError(w, http.StatusNotFound, "Reservation not found")
		return nil
	}
	if !res.IsActive || !res.ReturnPending {
		jsonError(w, http.StatusBadRequest, "Reservation is not pending return")
		return nil
	}
	return res
}

// approveReturn handles POST /reservations/approve-return/{id}.
func (b *Backend) approveReturn(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	res := b.pendingByID(w, r)
	if res == nil {
		return
	}

	returned := b.now().UTC().Format(time.RFC3339)
	res.IsActive = false
	res.IsCheckedOut = false
	res.ReturnPending = false
	res.ReturnDate = &returned
	b.syncAvailability(res.ToolID)
	jsonResponse(w, http.StatusOK, b.view(res))
}

// rejectReturn handles POST /reservations/reject-return/{id}. The tool
// stays checked out.
func (b *Backend) rejectReturn(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	res := b.pendingByID(w, r)
	if res == nil {
		return
	}
	res.ReturnPending = false
	jsonResponse(w, http.StatusOK, b.view(res))
}
