package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/toolshed/internal/forms"
	"github.com/erazemk/toolshed/internal/model"
	"github.com/erazemk/toolshed/internal/workflow"
)

// reservationRow is a reservation together with its derived state.
type reservationRow struct {
	model.Reservation
	State       model.State
	CanCancel   bool
	CanCheckout bool
	CanReturn   bool
}

type reservationsPage struct {
	PageData
	Reservations []reservationRow
	Warning      string
}

// ReservationsPage handles GET /reservations.
func (s *Server) ReservationsPage(w http.ResponseWriter, r *http.Request) {
	if err := s.Controller.Reload(r.Context()); err != nil {
		slog.Debug("reservations reload failed", "error", err)
	}

	data := &reservationsPage{
		PageData: s.page("My reservations", s.Controller.Notifications()),
		Warning:  s.Controller.Warning(),
	}
	for _, res := range s.Controller.Reservations() {
		// The controller has already dropped reservations with bad flags.
		state, _ := res.State()
		data.Reservations = append(data.Reservations, reservationRow{
			Reservation: res,
			State:       state,
			CanCancel:   model.CanTransition(state, model.EventCancel),
			CanCheckout: model.CanTransition(state, model.EventCheckout),
			CanReturn:   model.CanTransition(state, model.EventRequestReturn),
		})
	}
	s.Templates.Render(w, "reservations.html", data)
}

// CancelSubmit handles POST /reservations/{id}/cancel.
func (s *Server) CancelSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.notFound(w, r, "Unknown reservation.")
		return
	}
	if err := s.Controller.Cancel(r.Context(), id); err != nil {
		slog.Debug("cancel failed", "reservation_id", id, "error", err)
	}
	http.Redirect(w, r, "/reservations", http.StatusSeeOther)
}

type checkoutPage struct {
	PageData
	Reservation model.Reservation
	Form        *forms.CheckoutForm
	Errors      forms.FieldErrors
}

// CheckoutPage handles GET /reservations/{id}/checkout.
func (s *Server) CheckoutPage(w http.ResponseWriter, r *http.Request) {
	res, ok := s.reservationFor(w, r)
	if !ok {
		return
	}
	s.Templates.Render(w, "checkout.html", &checkoutPage{
		PageData:    s.page("Check out", s.Controller.Notifications()),
		Reservation: res,
		Form:        &forms.CheckoutForm{},
	})
}

// CheckoutSubmit handles POST /reservations/{id}/checkout.
func (s *Server) CheckoutSubmit(w http.ResponseWriter, r *http.Request) {
	res, ok := s.reservationFor(w, r)
	if !ok {
		return
	}

	form := &forms.CheckoutForm{
		Name:               r.FormValue("name"),
		Address:            r.FormValue("address"),
		Phone:              r.FormValue("phone"),
		ExpectedReturnDate: r.FormValue("expectedReturnDate"),
		AgreeToTerms:       r.FormValue("agreeToTerms") != "",
	}

	err := s.Controller.Checkout(r.Context(), res.ID, form)
	var fieldErrs forms.FieldErrors
	if errors.As(err, &fieldErrs) {
		s.Templates.RenderStatus(w, http.StatusUnprocessableEntity, "checkout.html", &checkoutPage{
			PageData:    s.page("Check out", nil),
			Reservation: res,
			Form:        form,
			Errors:      fieldErrs,
		})
		return
	}
	if err != nil {
		slog.Debug("checkout failed", "reservation_id", res.ID, "error", err)
	}
	http.Redirect(w, r, "/reservations", http.StatusSeeOther)
}

type returnPage struct {
	PageData
	Reservation model.Reservation
	Form        *forms.ReturnForm
	Errors      forms.FieldErrors
	Conditions  []string
	Detailed    bool
}

// ReturnPage handles GET /reservations/{id}/return. ?detailed=1 selects
// the long form.
func (s *Server) ReturnPage(w http.ResponseWriter, r *http.Request) {
	res, ok := s.reservationFor(w, r)
	if !ok {
		return
	}
	form := &forms.ReturnForm{}
	if r.URL.Query().Get("detailed") == "1" {
		form.Variant = forms.ReturnDetailed
	}
	s.Templates.Render(w, "return.html", &returnPage{
		PageData:    s.page("Return", s.Controller.Notifications()),
		Reservation: res,
		Form:        form,
		Conditions:  model.Conditions,
		Detailed:    form.Variant == forms.ReturnDetailed,
	})
}

// ReturnSubmit handles POST /reservations/{id}/return.
func (s *Server) ReturnSubmit(w http.ResponseWriter, r *http.Request) {
	res, ok := s.reservationFor(w, r)
	if !ok {
		return
	}

	form := &forms.ReturnForm{
		Condition:           r.FormValue("condition"),
		ReturnReason:        r.FormValue("returnReason"),
		Damages:             r.FormValue("damages"),
		Feedback:            r.FormValue("feedback"),
		CleaningStatus:      r.FormValue("cleaningStatus"),
		MissingParts:        r.FormValue("missingParts"),
		MaintenanceNeeded:   r.FormValue("maintenanceNeeded"),
		NotesForNextUser:    r.FormValue("notesForNextUser"),
		SafetyIssues:        r.FormValue("safetyIssues"),
		ActualUsageDuration: r.FormValue("actualUsageDuration"),
	}
	if r.FormValue("variant") == "detailed" {
		form.Variant = forms.ReturnDetailed
	}

	err := s.Controller.RequestReturn(r.Context(), res.ID, form)
	var fieldErrs forms.FieldErrors
	if errors.As(err, &fieldErrs) {
		s.Templates.RenderStatus(w, http.StatusUnprocessableEntity, "return.html", &returnPage{
			PageData:    s.page("Return", nil),
			Reservation: res,
			Form:        form,
			Errors:      fieldErrs,
			Conditions:  model.Conditions,
			Detailed:    form.Variant == forms.ReturnDetailed,
		})
		return
	}
	if err != nil {
		slog.Debug("return failed", "reservation_id", res.ID, "error", err)
	}
	http.Redirect(w, r, "/reservations", http.StatusSeeOther)
}

// reservationFor resolves the {id} path value against the local view,
// reloading once when it is not there yet.
func (s *Server) reservationFor(w http.ResponseWriter, r *http.Request) (model.Reservation, bool) {
	id, ok := pathID(r, "id")
	if ok {
		res, found := s.Controller.Reservation(id)
		if !found {
			_ = s.Controller.Reload(r.Context())
			res, found = s.Controller.Reservation(id)
		}
		if found {
			return res, true
		}
	}
	s.notFound(w, r, workflow.ErrReservationNotFound.Error())
	return model.Reservation{}, false
}

type submitPage struct {
	PageData
	Form       *forms.SubmissionForm
	Errors     forms.FieldErrors
	Categories []string
	Conditions []string
}

// SubmitPage handles GET /submit.
func (s *Server) SubmitPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "submit.html", &submitPage{
		PageData:   s.page("Submit a tool", s.Controller.Notifications()),
		Form:       &forms.SubmissionForm{},
		Categories: model.Categories[1:],
		Conditions: model.Conditions,
	})
}

// SubmitToolSubmit handles POST /submit.
func (s *Server) SubmitToolSubmit(w http.ResponseWriter, r *http.Request) {
	form := submissionFromRequest(r)

	_, err := s.Controller.SubmitTool(r.Context(), form)
	var fieldErrs forms.FieldErrors
	if errors.As(err, &fieldErrs) {
		s.Templates.RenderStatus(w, http.StatusUnprocessableEntity, "submit.html", &submitPage{
			PageData:   s.page("Submit a tool", nil),
			Form:       form,
			Errors:     fieldErrs,
			Categories: model.Categories[1:],
			Conditions: model.Conditions,
		})
		return
	}
	if err != nil {
		slog.Debug("submission failed", "error", err)
	}
	http.Redirect(w, r, "/submit", http.StatusSeeOther)
}

func submissionFromRequest(r *http.Request) *forms.SubmissionForm {
	return &forms.SubmissionForm{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		Condition:   r.FormValue("condition"),
	}
}
