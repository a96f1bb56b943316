package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/erazemk/toolshed/internal/auth"
	"github.com/erazemk/toolshed/internal/model"
)

func (b *Backend) routes() http.Handler {
	mux := http.NewServeMux()

	authMW := b.authMiddleware
	requireAdmin := requireRole(model.RoleAdmin)
	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(strings.Replace(pattern, " ", " "+APIPrefix, 1), h)
	}
	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return authMW(h).ServeHTTP
	}
	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return authMW(requireAdmin(h)).ServeHTTP
	}

	// Public.
	handle("POST /auth/login", b.login)
	handle("POST /auth/register", b.register)
	handle("GET /tools", b.listTools)
	handle("GET /tools/category/{category}", b.toolsByCategory)

	// Catalog management (admin).
	handle("POST /tools", admin(b.createTool))
	handle("PUT /tools/{id}", admin(b.updateTool))
	handle("DELETE /tools/{id}", admin(b.deleteTool))

	// Reservations.
	handle("GET /reservations", authed(b.listReservations))
	handle("POST /reservations/reserve", authed(b.reserve))
	handle("POST /reservations/checkout/{toolId}", authed(b.checkout))
	handle("POST /reservations/return/{toolId}", authed(b.returnTool))
	handle("GET /reservations/pending-returns", admin(b.pendingReturns))
	handle("POST /reservations/approve-return/{id}", admin(b.approveReturn))
	handle("POST /reservations/reject-return/{id}", admin(b.rejectReturn))

	// Submissions.
	handle("POST /tool-submissions", authed(b.createSubmission))
	handle("GET /tool-submissions/pending", admin(b.pendingSubmissions))
	handle("PUT /tool-submissions/{id}/{action}", admin(b.reviewSubmission))

	// Profiles and reports.
	handle("GET /users/profile/{id}", authed(b.getProfile))
	handle("PUT /users/profile/{id}", authed(b.updateProfile))
	handle("GET /report/usage", admin(b.usageReport))

	return b.recordMiddleware(mux)
}

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a FastAPI-style error body.
func jsonError(w http.ResponseWriter, status int, detail string) {
	jsonResponse(w, status, map[string]string{"detail": detail})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

type contextKey string

const claimsKey contextKey = "claims"

// authMiddleware validates the bearer token and adds its claims to the
// request context.
func (b *Backend) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			jsonError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		claims, err := auth.ValidateToken(b.secret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			jsonError(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRole returns middleware that checks the caller has at least the
// given role.
func requireRole(minimum string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := getClaims(r.Context())
			if claims == nil {
				jsonError(w, http.StatusUnauthorized, "Not authenticated")
				return
			}
			if !model.RoleAtLeast(claims.Role, minimum) {
				jsonError(w, http.StatusForbidden, "Not enough permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func getClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// recordMiddleware records every request, applies queued failures, and
// logs method, path, status and duration.
func (b *Backend) recordMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := strings.TrimPrefix(r.URL.Path, APIPrefix)

		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		b.mu.Lock()
		b.requests = append(b.requests, RecordedRequest{
			Method: r.Method,
			Path:   path,
			Query:  r.URL.RawQuery,
			Body:   string(body),
		})
		b.mu.Unlock()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		if f, ok := b.takeFailure(r.Method, path); ok {
			jsonError(rec, f.status, f.detail)
		} else {
			next.ServeHTTP(rec, r)
		}

		slog.Debug("backend request",
			"method", r.Method,
			"path", r.URL.RequestURI(),
			"status", rec.status,
			"request_id", r.Header.Get("X-Request-ID"),
			"duration", time.Since(start).Round(time.Millisecond),
		)
	})
}
