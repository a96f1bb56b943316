// Package web serves the browser UI of the local front-end.
package web

import (
	"context"
	"net/http"

	"github.com/erazemk/toolshed/internal/client"
	"github.com/erazemk/toolshed/internal/model"
	"github.com/erazemk/toolshed/internal/notify"
	"github.com/erazemk/toolshed/internal/session"
	"github.com/erazemk/toolshed/internal/workflow"
	webembed "github.com/erazemk/toolshed/web"
)

// AccountAPI is the part of the backend the account pages use.
type AccountAPI interface {
	Login(ctx context.Context, username, password string) (client.LoginResponse, error)
	Register(ctx context.Context, req client.RegisterRequest) error
	Profile(ctx context.Context, id int64) (model.User, error)
	UpdateProfile(ctx context.Context, id int64, upd client.ProfileUpdate) (model.User, error)
}

// Server holds all dependencies for page handlers.
type Server struct {
	Templates  *Templates
	Session    *session.Session
	Accounts   AccountAPI
	Controller *workflow.Controller
	Catalog    *workflow.Catalog
	Review     *workflow.Review
	// Metrics serves /metrics when set.
	Metrics http.Handler

	// board carries notices from the account pages.
	board *notify.Board
}

// NewRouter creates the web page router with all page routes registered.
func NewRouter(s *Server) (http.Handler, error) {
	if s.Templates == nil {
		templates, err := LoadTemplates()
		if err != nil {
			return nil, err
		}
		s.Templates = templates
	}
	if s.board == nil {
		s.board = notify.NewBoard(0)
	}

	mux := http.NewServeMux()
	requireLogin := RequireLogin(s.Session)
	requireAdmin := RequireAdmin(s.Session, s.Templates)
	authed := func(h http.HandlerFunc) http.Handler { return requireLogin(h) }
	admin := func(h http.HandlerFunc) http.Handler { return requireLogin(requireAdmin(h)) }

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))
	if s.Metrics != nil {
		mux.Handle("GET /metrics", s.Metrics)
	}

	// Public routes.
	mux.HandleFunc("GET /login", s.LoginPage)
	mux.HandleFunc("POST /login", s.LoginSubmit)
	mux.HandleFunc("GET /register", s.RegisterPage)
	mux.HandleFunc("POST /register", s.RegisterSubmit)
	mux.HandleFunc("POST /logout", s.Logout)

	// Signed-in routes.
	mux.Handle("GET /{$}", authed(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/tools", http.StatusSeeOther)
	}))
	mux.Handle("GET /tools", authed(s.CatalogPage))
	mux.Handle("POST /tools/{id}/reserve", authed(s.ReserveSubmit))

	mux.Handle("GET /reservations", authed(s.ReservationsPage))
	mux.Handle("POST /reservations/{id}/cancel", authed(s.CancelSubmit))
	mux.Handle("GET /reservations/{id}/checkout", authed(s.CheckoutPage))
	mux.Handle("POST /reservations/{id}/checkout", authed(s.CheckoutSubmit))
	mux.Handle("GET /reservations/{id}/return", authed(s.ReturnPage))
	mux.Handle("POST /reservations/{id}/return", authed(s.ReturnSubmit))

	mux.Handle("GET /submit", authed(s.SubmitPage))
	mux.Handle("POST /submit", authed(s.SubmitToolSubmit))

	mux.Handle("GET /profile", authed(s.ProfilePage))
	mux.Handle("POST /profile", authed(s.ProfileSubmit))

	// Administration.
	mux.Handle("GET /admin/returns", admin(s.AdminReturnsPage))
	mux.Handle("POST /admin/returns/{id}/{decision}", admin(s.AdminReturnSubmit))
	mux.Handle("GET /admin/submissions", admin(s.AdminSubmissionsPage))
	mux.Handle("POST /admin/submissions/{id}/{decision}", admin(s.AdminSubmissionSubmit))
	mux.Handle("GET /admin/tools", admin(s.AdminToolsPage))
	mux.Handle("POST /admin/tools", admin(s.AdminToolCreateSubmit))
	mux.Handle("POST /admin/tools/{id}", admin(s.AdminToolUpdateSubmit))
	mux.Handle("POST /admin/tools/{id}/delete", admin(s.AdminToolDeleteSubmit))
	mux.Handle("GET /admin/report", admin(s.AdminReportPage))

	return LoggingMiddleware(mux), nil
}

// page builds the base page data for the signed-in user, taking the
// visible notice from board.
func (s *Server) page(title string, board *notify.Board) PageData {
	pd := PageData{Title: title}
	if id, ok := s.Session.Current(); ok {
		pd.User = &id
	}
	if board != nil {
		if n, ok := board.Current(); ok {
			pd.Notice = &n
		}
	}
	return pd
}
