package web

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/erazemk/toolshed/internal/model"
	"github.com/erazemk/toolshed/internal/workflow"
)

type catalogPage struct {
	PageData
	Result     workflow.Page
	Categories []string
	Warning    string
	Today      string
}

// CatalogPage handles GET /tools.
func (s *Server) CatalogPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	query := workflow.Query{
		Search:        q.Get("search"),
		Category:      q.Get("category"),
		Page:          page,
		AvailableOnly: q.Get("available") == "1",
	}

	result, err := s.Catalog.Browse(r.Context(), query)
	if err != nil {
		slog.Debug("catalog browse failed", "error", err)
	}

	// The controller board wins over the catalog board after a reserve.
	data := &catalogPage{
		PageData:   s.page("Tools", s.Catalog.Notifications()),
		Result:     result,
		Categories: model.Categories,
		Warning:    s.Controller.Warning(),
		Today:      time.Now().Format("2006-01-02"),
	}
	if n, ok := s.Controller.Notifications().Current(); ok {
		data.Notice = &n
	}
	s.Templates.Render(w, "catalog.html", data)
}

// ReserveSubmit handles POST /tools/{id}/reserve.
func (s *Server) ReserveSubmit(w http.ResponseWriter, r *http.Request) {
	toolID, ok := pathID(r, "id")
	if !ok {
		s.notFound(w, r, "Unknown tool.")
		return
	}

	date := r.FormValue("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	// Make sure the availability check runs against a fresh snapshot.
	if len(s.Controller.Tools()) == 0 {
		_ = s.Controller.Reload(r.Context())
	}
	if err := s.Controller.Reserve(r.Context(), toolID, date); err != nil {
		slog.Debug("reserve failed", "tool_id", toolID, "error", err)
		http.Redirect(w, r, "/tools", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/reservations", http.StatusSeeOther)
}
