package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/toolshed/internal/auth"
	"github.com/erazemk/toolshed/internal/client"
	"github.com/erazemk/toolshed/internal/forms"
	"github.com/erazemk/toolshed/internal/model"
)

type accountPage struct {
	PageData
	Form   any
	Errors forms.FieldErrors
}

// LoginPage handles GET /login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "login.html", &accountPage{PageData: s.page("Log in", s.board), Form: &forms.LoginForm{}})
}

// LoginSubmit handles POST /login.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	form := &forms.LoginForm{
		Username: r.FormValue("username"),
		Password: r.FormValue("password"),
	}
	data := &accountPage{PageData: PageData{Title: "Log in"}, Form: form}

	if err := form.Validate(); err != nil {
		errors.As(err, &data.Errors)
		s.Templates.RenderStatus(w, http.StatusUnprocessableEntity, "login.html", data)
		return
	}

	resp, err := s.Accounts.Login(r.Context(), form.Username, form.Password)
	if err != nil {
		slog.Warn("login failed", "username", form.Username, "error", err)
		data.Error = "Login failed. Check your username and password."
		if client.StatusCode(err) == 0 {
			data.Error = "Login failed. The server could not be reached."
		}
		s.Templates.RenderStatus(w, http.StatusUnauthorized, "login.html", data)
		return
	}

	id := auth.NewIdentity(resp.AccessToken, form.Username, resp.Role, resp.UserID)
	if err := s.Session.Login(r.Context(), id); err != nil {
		slog.Error("failed to store session", "error", err)
		data.Error = "Login failed."
		s.Templates.RenderStatus(w, http.StatusInternalServerError, "login.html", data)
		return
	}

	if err := s.Controller.Reload(r.Context()); err != nil {
		slog.Warn("initial reload failed", "error", err)
	}
	http.Redirect(w, r, "/tools", http.StatusSeeOther)
}

// RegisterPage handles GET /register.
func (s *Server) RegisterPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "register.html", &accountPage{PageData: s.page("Register", nil), Form: &forms.RegisterForm{}})
}

// RegisterSubmit handles POST /register.
func (s *Server) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	form := &forms.RegisterForm{
		Username: r.FormValue("username"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
	}
	data := &accountPage{PageData: PageData{Title: "Register"}, Form: form}

	if err := form.Validate(); err != nil {
		errors.As(err, &data.Errors)
		s.Templates.RenderStatus(w, http.StatusUnprocessableEntity, "register.html", data)
		return
	}

	err := s.Accounts.Register(r.Context(), client.RegisterRequest{
		Username: form.Username,
		Email:    form.Email,
		Password: form.Password,
		Role:     model.RoleUser,
	})
	if err != nil {
		slog.Warn("registration failed", "username", form.Username, "error", err)
		data.Error = "Registration failed."
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Detail != "" {
			data.Error = "Registration failed: " + apiErr.Detail
		}
		s.Templates.RenderStatus(w, http.StatusBadRequest, "register.html", data)
		return
	}

	slog.Info("user registered", "username", form.Username)
	s.board.Success("Account created. You can log in now.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Logout handles POST /logout.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if err := s.Session.Logout(r.Context()); err != nil {
		slog.Error("failed to clear session", "error", err)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

type profilePage struct {
	PageData
	Profile model.User
	Errors  forms.FieldErrors
}

// ProfilePage handles GET /profile.
func (s *Server) ProfilePage(w http.ResponseWriter, r *http.Request) {
	data := &profilePage{PageData: s.page("Profile", s.board)}
	profile, err := s.Accounts.Profile(r.Context(), data.User.UserID)
	if err != nil {
		slog.Warn("failed to fetch profile", "error", err)
		data.Error = "Failed to fetch profile"
	}
	data.Profile = profile
	s.Templates.Render(w, "profile.html", data)
}

// ProfileSubmit handles POST /profile.
func (s *Server) ProfileSubmit(w http.ResponseWriter, r *http.Request) {
	id, _ := s.Session.Current()
	upd := client.ProfileUpdate{Email: r.FormValue("email")}

	if _, err := s.Accounts.UpdateProfile(r.Context(), id.UserID, upd); err != nil {
		slog.Warn("failed to update profile", "error", err)
		s.board.Error("Failed to update profile")
	} else {
		s.board.Success("Profile updated")
	}
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}
