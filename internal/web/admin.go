package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/toolshed/internal/forms"
	"github.com/erazemk/toolshed/internal/model"
	"github.com/erazemk/toolshed/internal/workflow"
)

type adminReturnsPage struct {
	PageData
	Returns []workflow.PendingReturn
}

// AdminReturnsPage handles GET /admin/returns.
func (s *Server) AdminReturnsPage(w http.ResponseWriter, r *http.Request) {
	returns, err := s.Review.PendingReturns(r.Context())
	if err != nil {
		slog.Debug("pending returns failed", "error", err)
	}
	s.Templates.Render(w, "admin_returns.html", &adminReturnsPage{
		PageData: s.page("Pending returns", s.Review.Notifications()),
		Returns:  returns,
	})
}

// AdminReturnSubmit handles POST /admin/returns/{id}/{decision}.
func (s *Server) AdminReturnSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.notFound(w, r, "Unknown reservation.")
		return
	}

	// Decisions check against the list the admin is looking at.
	if len(s.Review.Returns()) == 0 {
		_, _ = s.Review.PendingReturns(r.Context())
	}

	var err error
	switch r.PathValue("decision") {
	case "approve":
		err = s.Review.ApproveReturn(r.Context(), id)
	case "reject":
		err = s.Review.RejectReturn(r.Context(), id)
	default:
		s.notFound(w, r, "Unknown decision.")
		return
	}
	if err != nil {
		slog.Debug("return decision failed", "reservation_id", id, "error", err)
	}
	http.Redirect(w, r, "/admin/returns", http.StatusSeeOther)
}

type adminSubmissionsPage struct {
	PageData
	Submissions []model.ToolSubmission
}

// AdminSubmissionsPage handles GET /admin/submissions.
func (s *Server) AdminSubmissionsPage(w http.ResponseWriter, r *http.Request) {
	subs, err := s.Review.PendingSubmissions(r.Context())
	if err != nil {
		slog.Debug("pending submissions failed", "error", err)
	}
	s.Templates.Render(w, "admin_submissions.html", &adminSubmissionsPage{
		PageData:    s.page("Pending submissions", s.Review.Notifications()),
		Submissions: subs,
	})
}

// AdminSubmissionSubmit handles POST /admin/submissions/{id}/{decision}.
func (s *Server) AdminSubmissionSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.notFound(w, r, "Unknown submission.")
		return
	}

	var err error
	switch r.PathValue("decision") {
	case model.ReviewApprove:
		err = s.Review.ApproveSubmission(r.Context(), id)
	case model.ReviewReject:
		err = s.Review.RejectSubmission(r.Context(), id)
	default:
		s.notFound(w, r, "Unknown decision.")
		return
	}
	if err != nil {
		slog.Debug("submission review failed", "submission_id", id, "error", err)
	}
	http.Redirect(w, r, "/admin/submissions", http.StatusSeeOther)
}

type adminToolsPage struct {
	PageData
	Tools      []model.Tool
	Form       *forms.SubmissionForm
	Errors     forms.FieldErrors
	Categories []string
	Conditions []string
}

func (s *Server) renderTools(w http.ResponseWriter, r *http.Request, status int, form *forms.SubmissionForm, errs forms.FieldErrors) {
	tools, err := s.Review.Inventory(r.Context())
	if err != nil {
		slog.Debug("inventory failed", "error", err)
	}
	if form == nil {
		form = &forms.SubmissionForm{}
	}
	s.Templates.RenderStatus(w, status, "admin_tools.html", &adminToolsPage{
		PageData:   s.page("Manage tools", s.Review.Notifications()),
		Tools:      tools,
		Form:       form,
		Errors:     errs,
		Categories: model.Categories[1:],
		Conditions: model.Conditions,
	})
}

// AdminToolsPage handles GET /admin/tools.
func (s *Server) AdminToolsPage(w http.ResponseWriter, r *http.Request) {
	s.renderTools(w, r, http.StatusOK, nil, nil)
}

// AdminToolCreateSubmit handles POST /admin/tools.
func (s *Server) AdminToolCreateSubmit(w http.ResponseWriter, r *http.Request) {
	form := submissionFromRequest(r)
	_, err := s.Review.CreateTool(r.Context(), form)
	var fieldErrs forms.FieldErrors
	if errors.As(err, &fieldErrs) {
		s.renderTools(w, r, http.StatusUnprocessableEntity, form, fieldErrs)
		return
	}
	http.Redirect(w, r, "/admin/tools", http.StatusSeeOther)
}

// AdminToolUpdateSubmit handles POST /admin/tools/{id}.
func (s *Server) AdminToolUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.notFound(w, r, "Unknown tool.")
		return
	}
	form := submissionFromRequest(r)
	_, err := s.Review.UpdateTool(r.Context(), id, form)
	var fieldErrs forms.FieldErrors
	if errors.As(err, &fieldErrs) {
		s.renderTools(w, r, http.StatusUnprocessableEntity, form, fieldErrs)
		return
	}
	http.Redirect(w, r, "/admin/tools", http.StatusSeeOther)
}

// AdminToolDeleteSubmit handles POST /admin/tools/{id}/delete.
func (s *Server) AdminToolDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.notFound(w, r, "Unknown tool.")
		return
	}
	if err := s.Review.DeleteTool(r.Context(), id); err != nil {
		slog.Debug("delete tool failed", "tool_id", id, "error", err)
	}
	http.Redirect(w, r, "/admin/tools", http.StatusSeeOther)
}

type adminReportPage struct {
	PageData
	Report model.UsageReport
}

// AdminReportPage handles GET /admin/report.
func (s *Server) AdminReportPage(w http.ResponseWriter, r *http.Request) {
	rep, err := s.Review.UsageReport(r.Context())
	if err != nil {
		slog.Debug("usage report failed", "error", err)
	}
	s.Templates.Render(w, "admin_report.html", &adminReportPage{
		PageData: s.page("Usage report", s.Review.Notifications()),
		Report:   rep,
	})
}
