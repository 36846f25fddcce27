package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mentorhub/mentorhub/internal/user"
)

// verificationTokenTTL is how long a verification link stays usable.
const verificationTokenTTL = 24 * time.Hour

// TokenIssuer mints and validates email-verification tokens. Tokens are
// single-use: the validating lookup excludes verified accounts, and issuing
// overwrites any pending token.
type TokenIssuer struct {
	users UserStore
}

func NewTokenIssuer(users UserStore) *TokenIssuer {
	return &TokenIssuer{users: users}
}

// Mint generates a fresh token and its expiry without persisting anything.
// Used at registration where the token is stored as part of account creation.
func (i *TokenIssuer) Mint() (token string, expiresAt time.Time, err error) {
	token, err = generateRandomToken()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate verification token: %w", err)
	}
	return token, time.Now().Add(verificationTokenTTL), nil
}

// Issue mints a token and stores it on the account, invalidating whatever
// token was pending before.
func (i *TokenIssuer) Issue(ctx context.Context, accountID uuid.UUID) (string, error) {
	token, expiresAt, err := i.Mint()
	if err != nil {
		return "", err
	}

	if err := i.users.UpdateVerificationToken(ctx, accountID, token, expiresAt); err != nil {
		return "", fmt.Errorf("failed to store verification token: %w", err)
	}

	return token, nil
}

// Validate resolves a token to its unverified account. Unknown, expired and
// already-consumed tokens all report ErrInvalidOrExpiredToken so callers
// cannot probe verification state by guessing tokens.
func (i *TokenIssuer) Validate(ctx context.Context, token string, now time.Time) (*user.User, error) {
	if token == "" {
		return nil, ErrInvalidOrExpiredToken
	}

	u, err := i.users.GetByVerificationToken(ctx, token, now)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidOrExpiredToken
		}
		return nil, fmt.Errorf("failed to look up verification token: %w", err)
	}

	return u, nil
}

// generateRandomToken creates a cryptographically secure random token
func generateRandomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
