// Package notify holds the transient banner shown by a UI component.
package notify

import (
	"sync"
	"time"
)

// Severity of a notification.
type Severity string

// Severities.
const (
	Success Severity = "success"
	Error   Severity = "error"
	Info    Severity = "info"
	Warning Severity = "warning"
)

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = 6 * time.Second

// Notification is a single user-visible message.
type Notification struct {
	Message   string
	Severity  Severity
	ExpiresAt time.Time
}

// Board keeps the latest notification of one component. A new notification
// replaces the current one; nothing is queued.
type Board struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	current *Notification
}

// NewBoard returns a board whose notifications expire after ttl.
func NewBoard(ttl time.Duration) *Board {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Board{ttl: ttl, now: time.Now}
}

// Show replaces the current notification.
func (b *Board) Show(severity Severity, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = &Notification{
		Message:   message,
		Severity:  severity,
		ExpiresAt: b.now().Add(b.ttl),
	}
}

func (b *Board) Success(message string) { b.Show(Success, message) }
func (b *Board) Error(message string)   { b.Show(Error, message) }
func (b *Board) Info(message string)    { b.Show(Info, message) }
func (b *Board) Warning(message string) { b.Show(Warning, message) }

// Current returns the visible notification, if any.
func (b *Board) Current() (Notification, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return Notification{}, false
	}
	if !b.now().Before(b.current.ExpiresAt) {
		b.current = nil
		return Notification{}, false
	}
	return *b.current, true
}

// Dismiss hides the current notification.
func (b *Board) Dismiss() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = nil
}
