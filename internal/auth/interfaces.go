package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mentorhub/mentorhub/internal/profile"
	"github.com/mentorhub/mentorhub/internal/session"
	"github.com/mentorhub/mentorhub/internal/user"
)

// UserStore is the credential-store contract the lifecycle depends on.
// Implementations must enforce the unique-email constraint at the storage
// layer; application-level checks alone cannot close the registration race.
type UserStore interface {
	Create(ctx context.Context, email, passwordHash string, role user.Role, verificationToken string, expiresAt time.Time) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByVerificationToken(ctx context.Context, token string, now time.Time) (*user.User, error)
	MarkEmailVerified(ctx context.Context, userID uuid.UUID) error
	UpdateVerificationToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	UpdateLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error
}

// ProfileStore creates and resolves the role-specific profile variants.
type ProfileStore interface {
	CreateMentor(ctx context.Context, m *profile.Mentor, photo profile.Photo) error
	CreateMentee(ctx context.Context, m *profile.Mentee) error
	FindByUser(ctx context.Context, userID uuid.UUID, role user.Role) (profile.Profile, error)
}

// Mailer dispatches transactional mail. Send failures never feed back into
// the lifecycle's error path; at most they downgrade a response flag.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, toEmail, firstName, token string) error
	SendWelcomeEmail(ctx context.Context, toEmail, firstName string, role user.Role) error
}

// SessionContext is the per-request session handle injected into the
// lifecycle. Establish must persist the session before returning so a
// follow-up request can read it.
type SessionContext interface {
	Current(ctx context.Context) (*session.Principal, error)
	Establish(ctx context.Context, p *session.Principal) error
	Destroy(ctx context.Context) error
}
