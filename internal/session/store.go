package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mentorhub/mentorhub/internal/user"
)

var (
	// ErrNoSession means no live session exists for the request.
	ErrNoSession = errors.New("no active session")
)

// Principal is the authenticated identity carried by a session.
type Principal struct {
	UserID    uuid.UUID `json:"userId"`
	Email     string    `json:"email"`
	Role      user.Role `json:"userType"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
}

// Store keeps sessions in Redis under opaque random ids, one hash per
// session, expiring with the configured TTL.
type Store struct {
	client     *redis.Client
	ttl        time.Duration
	cookieName string
}

func NewStore(client *redis.Client, ttl time.Duration, cookieName string) *Store {
	return &Store{
		client:     client,
		ttl:        ttl,
		cookieName: cookieName,
	}
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

// Create persists a new session and returns its id. The write completes
// before Create returns, so the session is readable by the next request.
func (s *Store) Create(ctx context.Context, p *Principal) (string, error) {
	id, err := generateSessionID()
	if err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}

	key := sessionKey(id)
	pipe := s.client.Pipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"user_id":    p.UserID.String(),
		"email":      p.Email,
		"role":       string(p.Role),
		"first_name": p.FirstName,
		"last_name":  p.LastName,
		"created_at": time.Now().Unix(),
	})
	pipe.Expire(ctx, key, s.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	return id, nil
}

// Get loads the principal for a session id
func (s *Store) Get(ctx context.Context, id string) (*Principal, error) {
	data, err := s.client.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNoSession
	}

	userID, err := uuid.Parse(data["user_id"])
	if err != nil {
		return nil, fmt.Errorf("corrupt session %s: %w", id, err)
	}

	return &Principal{
		UserID:    userID,
		Email:     data["email"],
		Role:      user.Role(data["role"]),
		FirstName: data["first_name"],
		LastName:  data["last_name"],
	}, nil
}

// Delete removes a session
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// FromRequest resolves the principal for the request's session cookie.
func (s *Store) FromRequest(ctx context.Context, r *http.Request) (*Principal, error) {
	id, err := readSessionCookie(r, s.cookieName)
	if err != nil {
		return nil, ErrNoSession
	}
	return s.Get(ctx, id)
}

// generateSessionID creates a cryptographically random opaque id
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
