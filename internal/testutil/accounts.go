package testutil

import (
	"log/slog"
	"net/http"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/toolshed/internal/auth"
	"github.com/erazemk/toolshed/internal/model"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      int64  `json:"user_id"`
	Role        string `json:"role"`
}

// login handles POST /auth/login.
func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}

	b.mu.Lock()
	acc, ok := b.accounts[req.Username]
	b.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(acc.hash, []byte(req.Password)) != nil {
		slog.Warn("login failed", "username", req.Username)
		jsonError(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	token, err := auth.SignToken(b.secret, acc.user.ID, acc.user.Username, acc.user.Role, b.tokenTTL)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	jsonResponse(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		UserID:      acc.user.ID,
		Role:        acc.user.Role,
	})
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// register handles POST /auth/register.
func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "username and password required")
		return
	}
	if req.Role == "" {
		req.Role = model.RoleUser
	}
	if !model.ValidRole(req.Role) {
		jsonError(w, http.StatusBadRequest, "Invalid role")
		return
	}

	u, err := b.AddUser(req.Username, req.Password, req.Role)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "Username already registered")
		return
	}
	if req.Email != "" {
		b.mu.Lock()
		b.accounts[u.Username].user.Email = req.Email
		b.mu.Unlock()
	}
	jsonResponse(w, http.StatusCreated, map[string]string{"msg": "User registered successfully"})
}

type profileUpdate struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// profileAccess resolves the {id} path value and checks the caller may see
// it. Only the user themselves or an admin may.
func (b *Backend) profileAccess(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	claims := getClaims(r.Context())
	if claims.UserID != id && !model.RoleAtLeast(claims.Role, model.RoleAdmin) {
		jsonError(w, http.StatusForbidden, "Not enough permissions")
		return 0, false
	}
	return id, true
}

// getProfile handles GET /users/profile/{id}.
func (b *Backend) getProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := b.profileAccess(w, r)
	if !ok {
		return
	}

	b.mu.Lock()
	acc := b.userByID(id)
	b.mu.Unlock()
	if acc == nil {
		jsonError(w, http.StatusNotFound, "User not found")
		return
	}
	jsonResponse(w, http.StatusOK, acc.user)
}

// updateProfile handles PUT /users/profile/{id}.
func (b *Backend) updateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := b.profileAccess(w, r)
	if !ok {
		return
	}

	var req profileUpdate
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	acc := b.userByID(id)
	if acc == nil {
		jsonError(w, http.StatusNotFound, "User not found")
		return
	}
	if req.Username != "" && req.Username != acc.user.Username {
		if _, taken := b.accounts[req.Username]; taken {
			jsonError(w, http.StatusBadRequest, "Username already registered")
			return
		}
		delete(b.accounts, acc.user.Username)
		acc.user.Username = req.Username
		b.accounts[req.Username] = acc
	}
	if req.Email != "" {
		acc.user.Email = req.Email
	}
	jsonResponse(w, http.StatusOK, acc.user)
}

// usageReport handles GET /report/usage.
func (b *Backend) usageReport(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rep := model.UsageReport{TotalTools: len(b.tools), TotalUsers: len(b.accounts)}
	for _, t := range b.tools {
		if t.IsAvailable {
			rep.AvailableTools++
		} else {
			rep.ReservedTools++
		}
	}
	for _, res := range b.reservations {
		if res.IsActive {
			rep.ActiveReservations++
		}
	}
	jsonResponse(w, http.StatusOK, rep)
}
