package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/erazemk/toolshed/internal/model"
)

// Fixed keys of the persisted session.
const (
	KeyToken     = "token"
	KeyUsername  = "username"
	KeyUserID    = "user_id"
	KeyRole      = "role"
	KeyExpiresAt = "expires_at"
)

var sessionKeys = []string{KeyToken, KeyUsername, KeyUserID, KeyRole, KeyExpiresAt}

// SaveSession persists the identity under the fixed session keys in one
// transaction.
func SaveSession(ctx context.Context, db *sql.DB, id model.Identity) error {
	values := map[string]string{
		KeyToken:    id.Token,
		KeyUsername: id.Username,
		KeyUserID:   strconv.FormatInt(id.UserID, 10),
		KeyRole:     id.Role,
	}
	if !id.ExpiresAt.IsZero() {
		values[KeyExpiresAt] = id.ExpiresAt.UTC().Format(time.RFC3339)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := clearSessionKeys(ctx, tx); err != nil {
		return err
	}
	for key, value := range values {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO settings (key, value) VALUES (?, ?)`, key, value,
		); err != nil {
			return fmt.Errorf("storing %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing session: %w", err)
	}
	return nil
}

// LoadSession returns the persisted identity, or nil if no token is stored.
func LoadSession(ctx context.Context, db *sql.DB) (*model.Identity, error) {
	token, ok, err := GetSetting(ctx, db, KeyToken)
	if err != nil {
		return nil, err
	}
	if !ok || token == "" {
		return nil, nil
	}

	id := &model.Identity{Token: token}
	if id.Username, _, err = GetSetting(ctx, db, KeyUsername); err != nil {
		return nil, err
	}
	if id.Role, _, err = GetSetting(ctx, db, KeyRole); err != nil {
		return nil, err
	}

	userID, ok, err := GetSetting(ctx, db, KeyUserID)
	if err != nil {
		return nil, err
	}
	if ok {
		id.UserID, err = strconv.ParseInt(userID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing stored user id: %w", err)
		}
	}

	expires, ok, err := GetSetting(ctx, db, KeyExpiresAt)
	if err != nil {
		return nil, err
	}
	if ok {
		id.ExpiresAt, err = time.Parse(time.RFC3339, expires)
		if err != nil {
			return nil, fmt.Errorf("parsing stored expiry: %w", err)
		}
	}

	return id, nil
}

// ClearSession removes every session key together.
func ClearSession(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := clearSessionKeys(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing session clear: %w", err)
	}
	return nil
}

func clearSessionKeys(ctx context.Context, tx *sql.Tx) error {
	for _, key := range sessionKeys {
		if _, err := tx.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key); err != nil {
			return fmt.Errorf("clearing %s: %w", key, err)
		}
	}
	return nil
}
