package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TokenPurpose string

const (
	PurposeVerifyEmail   TokenPurpose = "verify-email"
	PurposeResetPassword TokenPurpose = "reset-password"
)

// EphemeralTokenStore persists single-use side-channel tokens, hashed at
// rest. One token per (user, purpose) is active at a time: issuing a new
// one replaces whatever was outstanding.
type EphemeralTokenStore struct {
	DB *pgxpool.Pool
}

func NewEphemeralTokenStore(db *pgxpool.Pool) *EphemeralTokenStore {
	return &EphemeralTokenStore{DB: db}
}

func (s *EphemeralTokenStore) Replace(ctx context.Context, userID string, purpose TokenPurpose, rawToken string, expiresAt *time.Time) error {
	hashed, err := argon2id.CreateHash(rawToken, argon2id.DefaultParams)
	if err != nil {
		return fmt.Errorf("hash token: %w", err)
	}

	if _, err := s.DB.Exec(ctx, `
		DELETE FROM ephemeral_tokens WHERE user_id=$1 AND purpose=$2
	`, userID, purpose); err != nil {
		return fmt.Errorf("invalidate prior tokens: %w", err)
	}

	_, err = s.DB.Exec(ctx, `
		INSERT INTO ephemeral_tokens (id, user_id, purpose, token_hash, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.NewString(), userID, purpose, hashed, expiresAt)
	if err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	return nil
}

// Consume verifies rawToken against the user's stored token for the
// purpose and deletes it. Expiry is checked here, at consumption time;
// there is no background sweep. When two requests race on the same
// token the delete decides: only the request whose delete removes the
// row succeeds, the other observes ErrInvalidOrExpiredToken.
func (s *EphemeralTokenStore) Consume(ctx context.Context, userID string, purpose TokenPurpose, rawToken string) error {
	rows, err := s.DB.Query(ctx, `
		SELECT id, token_hash, expires_at
		FROM ephemeral_tokens
		WHERE user_id=$1 AND purpose=$2
	`, userID, purpose)
	if err != nil {
		return fmt.Errorf("load tokens: %w", err)
	}
	defer rows.Close()

	var matchID string
	for rows.Next() {
		var (
			id        string
			tokenHash string
			expiresAt *time.Time
		)
		if err := rows.Scan(&id, &tokenHash, &expiresAt); err != nil {
			return fmt.Errorf("scan token: %w", err)
		}
		ok, err := argon2id.ComparePasswordAndHash(rawToken, tokenHash)
		if err != nil || !ok {
			continue
		}
		if expiresAt != nil && expiresAt.Before(time.Now()) {
			return ErrInvalidOrExpiredToken
		}
		matchID = id
		break
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate tokens: %w", err)
	}
	if matchID == "" {
		return ErrInvalidOrExpiredToken
	}

	tag, err := s.DB.Exec(ctx, `DELETE FROM ephemeral_tokens WHERE id=$1`, matchID)
	if err != nil {
		return fmt.Errorf("consume token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidOrExpiredToken
	}
	return nil
}
