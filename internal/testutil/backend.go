// Package testutil provides an in-memory tool-lending backend that speaks
// the same REST contract as the real one. Tests run it on httptest; the
// toolshed binary can serve it for local development.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/toolshed/internal/auth"
	"github.com/erazemk/toolshed/internal/model"
)

// APIPrefix is the path every backend route lives under.
const APIPrefix = "/api/v1"

// DefaultSecret signs tokens when no secret is given.
const DefaultSecret = "toolshed-dev-secret"

// RecordedRequest is one request the backend received.
type RecordedRequest struct {
	Method string
	Path   string // relative to APIPrefix
	Query  string
	Body   string
}

type failure struct {
	status int
	detail string
}

type account struct {
	user model.User
	hash []byte
}

// Backend is the in-memory backend. All methods are safe for concurrent use.
type Backend struct {
	secret   string
	tokenTTL time.Duration
	now      func() time.Time
	handler  http.Handler

	mu           sync.Mutex
	accounts     map[string]*account // by username
	tools        map[int64]*model.Tool
	reservations map[int64]*model.Reservation
	submissions  map[int64]*model.ToolSubmission
	nextID       int64
	requests     []RecordedRequest
	failures     map[string][]failure
}

// NewBackend creates an empty backend that signs tokens with secret.
func NewBackend(secret string) *Backend {
	if secret == "" {
		secret = DefaultSecret
	}
	b := &Backend{
		secret:       secret,
		tokenTTL:     30 * time.Minute,
		now:          time.Now,
		accounts:     make(map[string]*account),
		tools:        make(map[int64]*model.Tool),
		reservations: make(map[int64]*model.Reservation),
		submissions:  make(map[int64]*model.ToolSubmission),
		failures:     make(map[string][]failure),
	}
	b.handler = b.routes()
	return b
}

// ServeHTTP implements http.Handler.
func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.handler.ServeHTTP(w, r)
}

// Start serves b on an httptest server for the duration of the test and
// returns the base URL to configure a client with.
func Start(t *testing.T, b *Backend) string {
	t.Helper()
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	return srv.URL + APIPrefix
}

func (b *Backend) id() int64 {
	b.nextID++
	return b.nextID
}

// AddUser creates an account and returns it.
func (b *Backend) AddUser(username, password, role string) (model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hashing password: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.accounts[username]; ok {
		return model.User{}, fmt.Errorf("user %q already exists", username)
	}
	u := model.User{ID: b.id(), Username: username, Email: username + "@example.org", Role: role}
	b.accounts[username] = &account{user: u, hash: hash}
	return u, nil
}

// TokenFor signs a token for an existing user.
func (b *Backend) TokenFor(username string) (string, error) {
	b.mu.Lock()
	acc, ok := b.accounts[username]
	b.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("unknown user %q", username)
	}
	return auth.SignToken(b.secret, acc.user.ID, acc.user.Username, acc.user.Role, b.tokenTTL)
}

// AddTool adds t to the catalog. A zero ID is assigned; new tools start
// available.
func (b *Backend) AddTool(t model.Tool) model.Tool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if t.ID == 0 {
		t.ID = b.id()
	} else if t.ID > b.nextID {
		b.nextID = t.ID
	}
	t.IsAvailable = true
	b.tools[t.ID] = &t
	return t
}

// PutReservation stores r as-is, bypassing every rule. Tests use it to
// serve flag combinations the backend would never produce.
func (b *Backend) PutReservation(r model.Reservation) model.Reservation {
	b.mu.Lock()
	defer b.mu.Unlock()
	if r.ID == 0 {
		r.ID = b.id()
	} else if r.ID > b.nextID {
		b.nextID = r.ID
	}
	b.reservations[r.ID] = &r
	return r
}

// ExpireReservation drops an unconfirmed reservation the way the backend's
// 24-hour sweep does and frees its tool.
func (b *Backend) ExpireReservation(id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.reservations[id]
	if !ok {
		return fmt.Errorf("reservation %d not found", id)
	}
	if !r.IsActive || r.IsCheckedOut {
		return fmt.Errorf("reservation %d is not an unconfirmed reservation", id)
	}
	delete(b.reservations, id)
	b.syncAvailability(r.ToolID)
	return nil
}

// FailNext makes the next request matching method and path (relative to
// APIPrefix) fail with status and detail. Calls queue up.
func (b *Backend) FailNext(method, path string, status int, detail string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := method + " " + path
	b.failures[key] = append(b.failures[key], failure{status: status, detail: detail})
}

func (b *Backend) takeFailure(method, path string) (failure, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := method + " " + path
	queue := b.failures[key]
	if len(queue) == 0 {
		return failure{}, false
	}
	b.failures[key] = queue[1:]
	return queue[0], true
}

// Requests returns the requests received so far, oldest first.
func (b *Backend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]RecordedRequest(nil), b.requests...)
}

// ResetRequests forgets the recorded requests.
func (b *Backend) ResetRequests() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = nil
}

// Tool returns a copy of tool id.
func (b *Backend) Tool(id int64) (model.Tool, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.tools[id]
	if !ok {
		return model.Tool{}, false
	}
	return *t, true
}

// Reservation returns a copy of reservation id.
func (b *Backend) Reservation(id int64) (model.Reservation, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.reservations[id]
	if !ok {
		return model.Reservation{}, false
	}
	return *r, true
}

// CheckInvariants verifies that every tool's availability matches its
// active reservations and that no reservation carries contradictory flags.
func (b *Backend) CheckInvariants() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, r := range b.reservations {
		if r.IsCheckedOut && !r.IsActive {
			return fmt.Errorf("reservation %d checked out but inactive", r.ID)
		}
		if r.ReturnPending && !r.IsCheckedOut {
			return fmt.Errorf("reservation %d return pending but not checked out", r.ID)
		}
	}
	for _, t := range b.tools {
		if held := b.activeFor(t.ID) != nil; held == t.IsAvailable {
			return fmt.Errorf("tool %d available=%v with active reservation=%v", t.ID, t.IsAvailable, held)
		}
	}
	return nil
}

// activeFor returns the active reservation on toolID. Caller holds mu.
func (b *Backend) activeFor(toolID int64) *model.Reservation {
	for _, r := range b.reservations {
		if r.ToolID == toolID && r.IsActive {
			return r
		}
	}
	return nil
}

// syncAvailability recomputes a tool's flag from its reservations. Caller
// holds mu.
func (b *Backend) syncAvailability(toolID int64) {
	if t, ok := b.tools[toolID]; ok {
		t.IsAvailable = b.activeFor(toolID) == nil
	}
}

// sortedTools returns the catalog ordered by id. Caller holds mu.
func (b *Backend) sortedTools() []model.Tool {
	out := make([]model.Tool, 0, len(b.tools))
	for _, t := range b.tools {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// userByID finds an account by id. Caller holds mu.
func (b *Backend) userByID(id int64) *account {
	for _, acc := range b.accounts {
		if acc.user.ID == id {
			return acc
		}
	}
	return nil
}

// view returns r with its tool and user nested, as the backend serves it.
// Caller holds mu.
func (b *Backend) view(r *model.Reservation) model.Reservation {
	out := *r
	if t, ok := b.tools[r.ToolID]; ok {
		tc := *t
		out.Tool = &tc
	}
	if acc := b.userByID(r.UserID); acc != nil {
		uc := acc.user
		out.User = &uc
	}
	return out
}
