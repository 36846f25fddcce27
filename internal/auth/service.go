package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/mentorhub/mentorhub/internal/logging"
	"github.com/mentorhub/mentorhub/internal/profile"
	"github.com/mentorhub/mentorhub/internal/session"
	"github.com/mentorhub/mentorhub/internal/user"
)

var (
	ErrEmailRequired      = errors.New("email is required")
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")

	// ErrInvalidCredentials covers both unknown email and wrong password so
	// responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailNotVerified deliberately leaks verification state: the client
	// needs it to offer a resend. Carried by NotVerifiedError.
	ErrEmailNotVerified = errors.New("email not verified, please check your inbox")

	// ErrInvalidOrExpiredToken covers unknown, expired and already-used
	// verification tokens alike.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired verification token")

	// ErrNotFoundOrAlreadyVerified covers both resend failure modes.
	ErrNotFoundOrAlreadyVerified = errors.New("no unverified account found for this email")

	ErrNotAuthenticated = errors.New("not authenticated")
)

// NotVerifiedError carries the address so the client can offer a resend.
// errors.Is(err, ErrEmailNotVerified) matches it.
type NotVerifiedError struct {
	Email string
}

func (e *NotVerifiedError) Error() string { return ErrEmailNotVerified.Error() }

func (e *NotVerifiedError) Is(target error) bool { return target == ErrEmailNotVerified }

// Service is the auth lifecycle controller: it owns the
// register -> verify -> login -> session -> logout transitions. Session state
// is always an injected per-request SessionContext, never ambient.
type Service struct {
	users    UserStore
	profiles ProfileStore
	mailer   Mailer
	issuer   *TokenIssuer
	logger   *logging.Logger

	// dummyHash keeps password verification on the unknown-email path so
	// login timing does not distinguish missing accounts.
	dummyHash string
}

func NewService(users UserStore, profiles ProfileStore, mailer Mailer, logger *logging.Logger) *Service {
	dummyHash, err := hashPassword("mentorhub-timing-pad")
	if err != nil {
		// crypto/rand failing is unrecoverable anyway
		panic(fmt.Sprintf("failed to precompute dummy hash: %v", err))
	}

	return &Service{
		users:     users,
		profiles:  profiles,
		mailer:    mailer,
		issuer:    NewTokenIssuer(users),
		logger:    logger,
		dummyHash: dummyHash,
	}
}

// RegisterMentorInput is the validated mentor registration payload.
type RegisterMentorInput struct {
	Email                string
	Password             string
	FirstName            string
	LastName             string
	PhoneNumber          string
	LinkedinURL          string
	ProgrammingLanguages []string
	Technologies         []string
	Domains              []string
	YearsOfExperience    int
	GeneralDescription   string
	Photo                profile.Photo
}

// RegisterMenteeInput is the validated mentee registration payload.
type RegisterMenteeInput struct {
	Email              string
	Password           string
	FirstName          string
	LastName           string
	PhoneNumber        string
	GeneralDescription string
}

// RegistrationResult reports the created account, its profile, and whether
// the verification email went out.
type RegistrationResult struct {
	User      *user.User
	Profile   profile.Profile
	EmailSent bool
}

// VerifyResult reports the now-verified account and its profile.
type VerifyResult struct {
	User    *user.User
	Profile profile.Profile
}

// LoginResult reports the authenticated account and its profile.
type LoginResult struct {
	User    *user.User
	Profile profile.Profile
}

// Identity is the WhoAmI answer for an authenticated session.
type Identity struct {
	User      *user.User
	Profile   profile.Profile
	Principal *session.Principal
}

// RegisterMentor creates an unverified mentor account with its profile,
// sends the verification email (awaited; failure only clears EmailSent) and
// establishes a session. The immediate session for a yet-unverified account
// mirrors the product's existing behavior; Login stays verified-gated.
func (s *Service) RegisterMentor(ctx context.Context, in RegisterMentorInput, sess SessionContext) (*RegistrationResult, error) {
	if err := in.Photo.Validate(); err != nil {
		return nil, err
	}

	u, token, err := s.createAccount(ctx, in.Email, in.Password, user.RoleMentor)
	if err != nil {
		return nil, err
	}

	mentor := &profile.Mentor{
		UserID:               u.ID,
		FirstName:            in.FirstName,
		LastName:             in.LastName,
		Email:                u.Email,
		PhoneNumber:          in.PhoneNumber,
		LinkedinURL:          in.LinkedinURL,
		ProgrammingLanguages: in.ProgrammingLanguages,
		Technologies:         in.Technologies,
		Domains:              in.Domains,
		YearsOfExperience:    in.YearsOfExperience,
		GeneralDescription:   in.GeneralDescription,
	}
	if err := s.profiles.CreateMentor(ctx, mentor, in.Photo); err != nil {
		return nil, fmt.Errorf("failed to create mentor profile: %w", err)
	}

	emailSent := s.sendVerification(ctx, u.Email, in.FirstName, token)

	if err := s.establishSession(ctx, sess, u, in.FirstName, in.LastName); err != nil {
		return nil, err
	}

	return &RegistrationResult{User: u, Profile: mentor, EmailSent: emailSent}, nil
}

// RegisterMentee is the mentee variant of RegisterMentor.
func (s *Service) RegisterMentee(ctx context.Context, in RegisterMenteeInput, sess SessionContext) (*RegistrationResult, error) {
	u, token, err := s.createAccount(ctx, in.Email, in.Password, user.RoleMentee)
	if err != nil {
		return nil, err
	}

	mentee := &profile.Mentee{
		UserID:             u.ID,
		FirstName:          in.FirstName,
		LastName:           in.LastName,
		Email:              u.Email,
		PhoneNumber:        in.PhoneNumber,
		GeneralDescription: in.GeneralDescription,
	}
	if err := s.profiles.CreateMentee(ctx, mentee); err != nil {
		return nil, fmt.Errorf("failed to create mentee profile: %w", err)
	}

	emailSent := s.sendVerification(ctx, u.Email, in.FirstName, token)

	if err := s.establishSession(ctx, sess, u, in.FirstName, in.LastName); err != nil {
		return nil, err
	}

	return &RegistrationResult{User: u, Profile: mentee, EmailSent: emailSent}, nil
}

// VerifyEmail consumes a verification token: the account flips to verified
// exactly once, the token is cleared, and the user is logged in. The welcome
// email goes out asynchronously only after the session is persisted; its
// failure never fails the verification.
func (s *Service) VerifyEmail(ctx context.Context, token string, sess SessionContext) (*VerifyResult, error) {
	u, err := s.issuer.Validate(ctx, token, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.users.MarkEmailVerified(ctx, u.ID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// Raced with another verification of the same token
			return nil, ErrInvalidOrExpiredToken
		}
		return nil, fmt.Errorf("failed to mark email as verified: %w", err)
	}
	u.EmailVerified = true
	u.VerificationToken = nil
	u.VerificationExpiresAt = nil

	prof, err := s.profiles.FindByUser(ctx, u.ID, u.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	firstName, lastName := prof.DisplayName()

	// Session must be readable before the response goes out
	if err := s.establishSession(ctx, sess, u, firstName, lastName); err != nil {
		return nil, err
	}

	go func() {
		// Detached from the request context: the response must not wait
		emailCtx := context.Background()
		if err := s.mailer.SendWelcomeEmail(emailCtx, u.Email, firstName, u.Role); err != nil {
			s.logger.Warn("failed to send welcome email", "email", u.Email, "error", err)
		}
	}()

	return &VerifyResult{User: u, Profile: prof}, nil
}

// ResendVerification reissues the token for an unverified account,
// invalidating the previous one, and sends a fresh verification email.
// Session state is untouched.
func (s *Service) ResendVerification(ctx context.Context, email string) (bool, error) {
	u, err := s.users.GetByEmail(ctx, user.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return false, ErrNotFoundOrAlreadyVerified
		}
		return false, fmt.Errorf("failed to get user: %w", err)
	}

	if u.EmailVerified {
		return false, ErrNotFoundOrAlreadyVerified
	}

	token, err := s.issuer.Issue(ctx, u.ID)
	if err != nil {
		return false, err
	}

	firstName := ""
	if prof, err := s.profiles.FindByUser(ctx, u.ID, u.Role); err == nil {
		firstName, _ = prof.DisplayName()
	} else {
		s.logger.Warn("failed to load profile for resend", "user_id", u.ID, "error", err)
	}

	return s.sendVerification(ctx, u.Email, firstName, token), nil
}

// Login authenticates by email and password. Unknown email and wrong
// password are indistinguishable; a correct password on an unverified
// account returns NotVerifiedError and no session.
func (s *Service) Login(ctx context.Context, email, password string, sess SessionContext) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.users.GetByEmail(ctx, user.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// Burn the same hashing work as the found path
			verifyPassword(s.dummyHash, password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !verifyPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	if !u.EmailVerified {
		return nil, &NotVerifiedError{Email: u.Email}
	}

	now := time.Now()
	if err := s.users.UpdateLastLogin(ctx, u.ID, now); err != nil {
		s.logger.Warn("failed to update last login", "user_id", u.ID, "error", err)
	} else {
		u.LastLoginAt = &now
	}

	prof, err := s.profiles.FindByUser(ctx, u.ID, u.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	firstName, lastName := prof.DisplayName()

	if err := s.establishSession(ctx, sess, u, firstName, lastName); err != nil {
		return nil, err
	}

	return &LoginResult{User: u, Profile: prof}, nil
}

// Logout destroys the current session and returns the principal's email.
func (s *Service) Logout(ctx context.Context, sess SessionContext) (string, error) {
	p, err := sess.Current(ctx)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return "", ErrNotAuthenticated
		}
		return "", fmt.Errorf("failed to read session: %w", err)
	}

	if err := sess.Destroy(ctx); err != nil {
		return "", fmt.Errorf("failed to destroy session: %w", err)
	}

	return p.Email, nil
}

// WhoAmI introspects the current session. A session pointing at an account
// that no longer exists is destroyed and reported as unauthenticated rather
// than erroring.
func (s *Service) WhoAmI(ctx context.Context, sess SessionContext) (*Identity, error) {
	p, err := sess.Current(ctx)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	u, err := s.users.GetByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// Self-heal dangling sessions
			if derr := sess.Destroy(ctx); derr != nil {
				s.logger.Warn("failed to destroy dangling session", "user_id", p.UserID, "error", derr)
			}
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	prof, err := s.profiles.FindByUser(ctx, u.ID, u.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	return &Identity{User: u, Profile: prof, Principal: p}, nil
}

// createAccount validates credentials, hashes the password and inserts the
// unverified account with a pending verification token.
func (s *Service) createAccount(ctx context.Context, email, password string, role user.Role) (*user.User, string, error) {
	if email == "" {
		return nil, "", ErrEmailRequired
	}
	if len(email) > 254 {
		return nil, "", ErrInvalidEmailFormat
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, "", ErrInvalidEmailFormat
	}
	if password == "" {
		return nil, "", ErrPasswordRequired
	}
	if len(password) < 6 {
		return nil, "", ErrPasswordTooShort
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	token, expiresAt, err := s.issuer.Mint()
	if err != nil {
		return nil, "", err
	}

	u, err := s.users.Create(ctx, email, passwordHash, role, token, expiresAt)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, "", user.ErrDuplicateEmail
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	return u, token, nil
}

// sendVerification awaits the send and reports success; failure is logged
// and only downgrades the response flag.
func (s *Service) sendVerification(ctx context.Context, email, firstName, token string) bool {
	if err := s.mailer.SendVerificationEmail(ctx, email, firstName, token); err != nil {
		s.logger.Warn("failed to send verification email", "email", email, "error", err)
		return false
	}
	return true
}

func (s *Service) establishSession(ctx context.Context, sess SessionContext, u *user.User, firstName, lastName string) error {
	err := sess.Establish(ctx, &session.Principal{
		UserID:    u.ID,
		Email:     u.Email,
		Role:      u.Role,
		FirstName: firstName,
		LastName:  lastName,
	})
	if err != nil {
		return fmt.Errorf("failed to establish session: %w", err)
	}
	return nil
}
