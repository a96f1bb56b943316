// Package session holds the signed-in identity and tells subscribers about
// login and logout.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/erazemk/toolshed/internal/model"
	"github.com/erazemk/toolshed/internal/store"
)

// Listener is called after every login (signedIn true) and logout.
type Listener func(id model.Identity, signedIn bool)

// Session is the explicit session object passed to every component.
type Session struct {
	db  *sql.DB
	now func() time.Time

	mu      sync.RWMutex
	current *model.Identity

	subMu  sync.Mutex
	nextID int
	subs   map[int]Listener
}

// Open loads the persisted session from db. An expired session is cleared
// and the session starts signed out.
func Open(ctx context.Context, db *sql.DB) (*Session, error) {
	s := &Session{db: db, now: time.Now, subs: make(map[int]Listener)}

	id, err := store.LoadSession(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if id != nil && id.Expired(s.now()) {
		slog.Info("stored session expired", "user", id.Username)
		if err := store.ClearSession(ctx, db); err != nil {
			return nil, fmt.Errorf("clearing expired session: %w", err)
		}
		id = nil
	}
	s.current = id
	return s, nil
}

// Current returns the signed-in identity.
func (s *Session) Current() (model.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil || s.current.Expired(s.now()) {
		return model.Identity{}, false
	}
	return *s.current, true
}

// Token returns the bearer token, or "" when signed out.
func (s *Session) Token() string {
	id, ok := s.Current()
	if !ok {
		return ""
	}
	return id.Token
}

// Login persists id and notifies subscribers.
func (s *Session) Login(ctx context.Context, id model.Identity) error {
	if id.Token == "" {
		return fmt.Errorf("login: empty token")
	}
	if err := store.SaveSession(ctx, s.db, id); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	s.mu.Lock()
	s.current = &id
	s.mu.Unlock()

	slog.Info("user logged in", "user", id.Username, "role", id.Role)
	s.publish(id, true)
	return nil
}

// Logout clears all persisted session keys together and notifies
// subscribers.
func (s *Session) Logout(ctx context.Context) error {
	if err := store.ClearSession(ctx, s.db); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	s.mu.Lock()
	var prev model.Identity
	if s.current != nil {
		prev = *s.current
	}
	s.current = nil
	s.mu.Unlock()

	slog.Info("user logged out", "user", prev.Username)
	s.publish(prev, false)
	return nil
}

// Subscribe registers fn for login/logout events and returns a function
// that removes it.
func (s *Session) Subscribe(fn Listener) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Session) publish(id model.Identity, signedIn bool) {
	s.subMu.Lock()
	listeners := make([]Listener, 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	s.subMu.Unlock()

	for _, fn := range listeners {
		fn(id, signedIn)
	}
}
