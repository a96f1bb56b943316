package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedBoard(ttl time.Duration) (*Board, *time.Time) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	b := NewBoard(ttl)
	b.now = func() time.Time { return now }
	return b, &now
}

func TestBoardLastOneWins(t *testing.T) {
	b, _ := fixedBoard(time.Minute)

	b.Error("Failed to reserve tool")
	b.Error("Failed to fetch tools")

	n, ok := b.Current()
	require.True(t, ok)
	assert.Equal(t, "Failed to fetch tools", n.Message)
	assert.Equal(t, Error, n.Severity)
}

func TestBoardAutoDismiss(t *testing.T) {
	b, now := fixedBoard(6 * time.Second)

	b.Success("Tool checked out successfully!")
	_, ok := b.Current()
	require.True(t, ok)

	*now = now.Add(6 * time.Second)
	_, ok = b.Current()
	assert.False(t, ok, "notification should expire after its ttl")
}

func TestBoardDismiss(t *testing.T) {
	b, _ := fixedBoard(time.Minute)

	b.Info("No pending returns")
	b.Dismiss()

	_, ok := b.Current()
	assert.False(t, ok)
}

func TestNewBoardDefaultTTL(t *testing.T) {
	b := NewBoard(0)
	assert.Equal(t, DefaultTTL, b.ttl)
}
