package auth

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorhub/mentorhub/internal/logging"
	"github.com/mentorhub/mentorhub/internal/profile"
	"github.com/mentorhub/mentorhub/internal/session"
	"github.com/mentorhub/mentorhub/internal/user"
)

// fakeUserStore mimics the Postgres repository, including the unique-email
// constraint and the unverified-only token queries.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*user.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*user.User)}
}

func (s *fakeUserStore) Create(_ context.Context, email, passwordHash string, role user.Role, token string, expiresAt time.Time) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	normalized := user.NormalizeEmail(email)
	for _, u := range s.users {
		if u.Email == normalized {
			return nil, user.ErrDuplicateEmail
		}
	}

	u := &user.User{
		ID:                    uuid.New(),
		Email:                 normalized,
		PasswordHash:          passwordHash,
		Role:                  role,
		EmailVerified:         false,
		VerificationToken:     &token,
		VerificationExpiresAt: &expiresAt,
		Active:                true,
		CreatedAt:             time.Now(),
	}
	s.users[u.ID] = u
	return cloneUser(u), nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	normalized := user.NormalizeEmail(email)
	for _, u := range s.users {
		if u.Email == normalized {
			return cloneUser(u), nil
		}
	}
	return nil, user.ErrNotFound
}

func (s *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *fakeUserStore) GetByVerificationToken(_ context.Context, token string, now time.Time) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.EmailVerified || u.VerificationToken == nil || u.VerificationExpiresAt == nil {
			continue
		}
		if *u.VerificationToken == token && u.VerificationExpiresAt.After(now) {
			return cloneUser(u), nil
		}
	}
	return nil, user.ErrNotFound
}

func (s *fakeUserStore) MarkEmailVerified(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok || u.EmailVerified {
		return user.ErrNotFound
	}
	u.EmailVerified = true
	u.VerificationToken = nil
	u.VerificationExpiresAt = nil
	return nil
}

func (s *fakeUserStore) UpdateVerificationToken(_ context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok || u.EmailVerified {
		return user.ErrNotFound
	}
	u.VerificationToken = &token
	u.VerificationExpiresAt = &expiresAt
	return nil
}

func (s *fakeUserStore) UpdateLastLogin(_ context.Context, userID uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return user.ErrNotFound
	}
	u.LastLoginAt = &at
	return nil
}

// expireToken rewinds the stored expiry so the pending token reads as expired.
func (s *fakeUserStore) expireToken(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	past := time.Now().Add(-time.Minute)
	s.users[userID].VerificationExpiresAt = &past
}

func (s *fakeUserStore) delete(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, userID)
}

func cloneUser(u *user.User) *user.User {
	c := *u
	return &c
}

type fakeProfileStore struct {
	mu      sync.Mutex
	mentors map[uuid.UUID]*profile.Mentor
	mentees map[uuid.UUID]*profile.Mentee
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{
		mentors: make(map[uuid.UUID]*profile.Mentor),
		mentees: make(map[uuid.UUID]*profile.Mentee),
	}
}

func (s *fakeProfileStore) CreateMentor(_ context.Context, m *profile.Mentor, photo profile.Photo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m.ID = uuid.New()
	m.HasProfilePhoto = len(photo.Data) > 0
	s.mentors[m.UserID] = m
	return nil
}

func (s *fakeProfileStore) CreateMentee(_ context.Context, m *profile.Mentee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m.ID = uuid.New()
	s.mentees[m.UserID] = m
	return nil
}

func (s *fakeProfileStore) FindByUser(_ context.Context, userID uuid.UUID, role user.Role) (profile.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch role {
	case user.RoleMentor:
		if m, ok := s.mentors[userID]; ok {
			return m, nil
		}
	case user.RoleMentee:
		if m, ok := s.mentees[userID]; ok {
			return m, nil
		}
	case user.RoleAdmin:
		return &profile.Admin{}, nil
	}
	return nil, profile.ErrNotFound
}

type sentMail struct {
	kind      string // "verification" or "welcome"
	toEmail   string
	firstName string
	token     string
}

type fakeMailer struct {
	mu       sync.Mutex
	sent     []sentMail
	failNext bool
}

func (m *fakeMailer) SendVerificationEmail(_ context.Context, toEmail, firstName, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failNext {
		m.failNext = false
		return fmt.Errorf("smtp unavailable")
	}
	m.sent = append(m.sent, sentMail{kind: "verification", toEmail: toEmail, firstName: firstName, token: token})
	return nil
}

func (m *fakeMailer) SendWelcomeEmail(_ context.Context, toEmail, firstName string, _ user.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sent = append(m.sent, sentMail{kind: "welcome", toEmail: toEmail, firstName: firstName})
	return nil
}

func (m *fakeMailer) lastVerificationToken(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].kind == "verification" {
			return m.sent[i].token
		}
	}
	t.Fatal("no verification email was sent")
	return ""
}

// fakeSession is an in-memory SessionContext standing in for the
// cookie+Redis pair of one client.
type fakeSession struct {
	mu        sync.Mutex
	principal *session.Principal
}

func (s *fakeSession) Current(context.Context) (*session.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.principal == nil {
		return nil, session.ErrNoSession
	}
	p := *s.principal
	return &p, nil
}

func (s *fakeSession) Establish(_ context.Context, p *session.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *p
	s.principal = &c
	return nil
}

func (s *fakeSession) Destroy(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.principal == nil {
		return session.ErrNoSession
	}
	s.principal = nil
	return nil
}

type serviceFixture struct {
	service  *Service
	users    *fakeUserStore
	profiles *fakeProfileStore
	mailer   *fakeMailer
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	users := newFakeUserStore()
	profiles := newFakeProfileStore()
	mailer := &fakeMailer{}

	return &serviceFixture{
		service:  NewService(users, profiles, mailer, logging.NewLogger(true)),
		users:    users,
		profiles: profiles,
		mailer:   mailer,
	}
}

func menteeInput(email string) RegisterMenteeInput {
	return RegisterMenteeInput{
		Email:       email,
		Password:    "password123",
		FirstName:   "Bob",
		LastName:    "Builder",
		PhoneNumber: "054-1234567",
	}
}

func mentorInput(email string) RegisterMentorInput {
	return RegisterMentorInput{
		Email:                email,
		Password:             "password123",
		FirstName:            "Alice",
		LastName:             "Levi",
		PhoneNumber:          "054-7654321",
		ProgrammingLanguages: []string{"Go"},
		Technologies:         []string{"PostgreSQL"},
		Domains:              []string{"Backend"},
		YearsOfExperience:    7,
		GeneralDescription:   "Backend mentor",
		Photo:                profile.Photo{Data: []byte("jpeg-bytes"), ContentType: "image/jpeg", FileName: "me.jpg"},
	}
}

func TestRegisterMentee(t *testing.T) {
	ctx := context.Background()

	t.Run("creates unverified account with pending token", func(t *testing.T) {
		f := newServiceFixture(t)
		sess := &fakeSession{}

		result, err := f.service.RegisterMentee(ctx, menteeInput("bob@x.com"), sess)
		require.NoError(t, err)

		assert.False(t, result.User.EmailVerified)
		assert.True(t, result.EmailSent)
		assert.Equal(t, user.RoleMentee, result.User.Role)

		stored, err := f.users.GetByEmail(ctx, "bob@x.com")
		require.NoError(t, err)
		require.NotNil(t, stored.VerificationToken)
		require.NotNil(t, stored.VerificationExpiresAt)

		// Token expiry sits 24h out
		expected := time.Now().Add(24 * time.Hour)
		assert.WithinDuration(t, expected, *stored.VerificationExpiresAt, time.Minute)

		// The emailed token is the stored one
		assert.Equal(t, *stored.VerificationToken, f.mailer.lastVerificationToken(t))
	})

	t.Run("starts a session immediately", func(t *testing.T) {
		f := newServiceFixture(t)
		sess := &fakeSession{}

		result, err := f.service.RegisterMentee(ctx, menteeInput("bob@x.com"), sess)
		require.NoError(t, err)

		p, err := sess.Current(ctx)
		require.NoError(t, err)
		assert.Equal(t, result.User.ID, p.UserID)
		assert.Equal(t, "Bob", p.FirstName)
	})

	t.Run("email send failure only clears the flag", func(t *testing.T) {
		f := newServiceFixture(t)
		f.mailer.failNext = true
		sess := &fakeSession{}

		result, err := f.service.RegisterMentee(ctx, menteeInput("bob@x.com"), sess)
		require.NoError(t, err)
		assert.False(t, result.EmailSent)

		// Account still exists with its pending token
		stored, err := f.users.GetByEmail(ctx, "bob@x.com")
		require.NoError(t, err)
		assert.NotNil(t, stored.VerificationToken)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.service.RegisterMentee(ctx, menteeInput("bob@x.com"), &fakeSession{})
		require.NoError(t, err)

		_, err = f.service.RegisterMentee(ctx, menteeInput("BOB@x.com"), &fakeSession{})
		assert.ErrorIs(t, err, user.ErrDuplicateEmail)
	})

	t.Run("concurrent registration has exactly one winner", func(t *testing.T) {
		f := newServiceFixture(t)

		const attempts = 8
		errs := make(chan error, attempts)
		var wg sync.WaitGroup
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.service.RegisterMentee(ctx, menteeInput("bob@x.com"), &fakeSession{})
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		wins, losses := 0, 0
		for err := range errs {
			if err == nil {
				wins++
			} else {
				assert.ErrorIs(t, err, user.ErrDuplicateEmail)
				losses++
			}
		}
		assert.Equal(t, 1, wins)
		assert.Equal(t, attempts-1, losses)
	})

	t.Run("credential validation", func(t *testing.T) {
		f := newServiceFixture(t)

		in := menteeInput("")
		_, err := f.service.RegisterMentee(ctx, in, &fakeSession{})
		assert.ErrorIs(t, err, ErrEmailRequired)

		in = menteeInput("not-an-email")
		_, err = f.service.RegisterMentee(ctx, in, &fakeSession{})
		assert.ErrorIs(t, err, ErrInvalidEmailFormat)

		in = menteeInput("bob@x.com")
		in.Password = "short"
		_, err = f.service.RegisterMentee(ctx, in, &fakeSession{})
		assert.ErrorIs(t, err, ErrPasswordTooShort)
	})
}

func TestRegisterMentor(t *testing.T) {
	ctx := context.Background()

	t.Run("creates mentor with profile and photo", func(t *testing.T) {
		f := newServiceFixture(t)

		result, err := f.service.RegisterMentor(ctx, mentorInput("alice@x.com"), &fakeSession{})
		require.NoError(t, err)

		mentor, ok := result.Profile.(*profile.Mentor)
		require.True(t, ok)
		assert.True(t, mentor.HasProfilePhoto)
		assert.Equal(t, user.RoleMentor, result.User.Role)
		assert.True(t, result.EmailSent)
	})

	t.Run("rejects missing photo before creating anything", func(t *testing.T) {
		f := newServiceFixture(t)

		in := mentorInput("alice@x.com")
		in.Photo = profile.Photo{}
		_, err := f.service.RegisterMentor(ctx, in, &fakeSession{})
		assert.ErrorIs(t, err, profile.ErrPhotoRequired)

		_, err = f.users.GetByEmail(ctx, "alice@x.com")
		assert.ErrorIs(t, err, user.ErrNotFound)
	})
}

func TestVerifyEmail(t *testing.T) {
	ctx := context.Background()

	register := func(t *testing.T, f *serviceFixture, email string) string {
		t.Helper()
		_, err := f.service.RegisterMentee(ctx, menteeInput(email), &fakeSession{})
		require.NoError(t, err)
		return f.mailer.lastVerificationToken(t)
	}

	t.Run("valid token verifies and logs in", func(t *testing.T) {
		f := newServiceFixture(t)
		token := register(t, f, "bob@x.com")

		sess := &fakeSession{}
		result, err := f.service.VerifyEmail(ctx, token, sess)
		require.NoError(t, err)

		assert.True(t, result.User.EmailVerified)
		assert.Nil(t, result.User.VerificationToken)

		p, err := sess.Current(ctx)
		require.NoError(t, err)
		assert.Equal(t, result.User.ID, p.UserID)
	})

	t.Run("token is single use", func(t *testing.T) {
		f := newServiceFixture(t)
		token := register(t, f, "bob@x.com")

		_, err := f.service.VerifyEmail(ctx, token, &fakeSession{})
		require.NoError(t, err)

		sess := &fakeSession{}
		_, err = f.service.VerifyEmail(ctx, token, sess)
		assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)

		// Replay must not create a session either
		_, err = sess.Current(ctx)
		assert.ErrorIs(t, err, session.ErrNoSession)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		f := newServiceFixture(t)
		token := register(t, f, "bob@x.com")

		u, err := f.users.GetByEmail(ctx, "bob@x.com")
		require.NoError(t, err)
		f.users.expireToken(u.ID)

		_, err = f.service.VerifyEmail(ctx, token, &fakeSession{})
		assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
	})

	t.Run("unknown and empty tokens are rejected identically", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.service.VerifyEmail(ctx, "no-such-token", &fakeSession{})
		assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)

		_, err = f.service.VerifyEmail(ctx, "", &fakeSession{})
		assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
	})
}

func TestResendVerification(t *testing.T) {
	ctx := context.Background()

	t.Run("invalidates the previous token", func(t *testing.T) {
		f := newServiceFixture(t)
		_, err := f.service.RegisterMentee(ctx, menteeInput("bob@x.com"), &fakeSession{})
		require.NoError(t, err)
		oldToken := f.mailer.lastVerificationToken(t)

		emailSent, err := f.service.ResendVerification(ctx, "bob@x.com")
		require.NoError(t, err)
		assert.True(t, emailSent)
		newToken := f.mailer.lastVerificationToken(t)
		assert.NotEqual(t, oldToken, newToken)

		// Old link is dead, new one works
		_, err = f.service.VerifyEmail(ctx, oldToken, &fakeSession{})
		assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)

		_, err = f.service.VerifyEmail(ctx, newToken, &fakeSession{})
		assert.NoError(t, err)
	})

	t.Run("unknown email", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.service.ResendVerification(ctx, "nobody@x.com")
		assert.ErrorIs(t, err, ErrNotFoundOrAlreadyVerified)
	})

	t.Run("already verified account", func(t *testing.T) {
		f := newServiceFixture(t)
		_, err := f.service.RegisterMentee(ctx, menteeInput("bob@x.com"), &fakeSession{})
		require.NoError(t, err)
		token := f.mailer.lastVerificationToken(t)
		_, err = f.service.VerifyEmail(ctx, token, &fakeSession{})
		require.NoError(t, err)

		_, err = f.service.ResendVerification(ctx, "bob@x.com")
		assert.ErrorIs(t, err, ErrNotFoundOrAlreadyVerified)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	registerVerified := func(t *testing.T, f *serviceFixture, email string) {
		t.Helper()
		_, err := f.service.RegisterMentee(ctx, menteeInput(email), &fakeSession{})
		require.NoError(t, err)
		_, err = f.service.VerifyEmail(ctx, f.mailer.lastVerificationToken(t), &fakeSession{})
		require.NoError(t, err)
	}

	t.Run("verified account logs in", func(t *testing.T) {
		f := newServiceFixture(t)
		registerVerified(t, f, "bob@x.com")

		sess := &fakeSession{}
		result, err := f.service.Login(ctx, "bob@x.com", "password123", sess)
		require.NoError(t, err)
		assert.True(t, result.User.EmailVerified)
		assert.NotNil(t, result.User.LastLoginAt)

		p, err := sess.Current(ctx)
		require.NoError(t, err)
		assert.Equal(t, result.User.ID, p.UserID)
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		f := newServiceFixture(t)
		registerVerified(t, f, "bob@x.com")

		_, errUnknown := f.service.Login(ctx, "nobody@x.com", "password123", &fakeSession{})
		_, errWrongPw := f.service.Login(ctx, "bob@x.com", "wrong-password", &fakeSession{})

		assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
		assert.ErrorIs(t, errWrongPw, ErrInvalidCredentials)
		assert.Equal(t, errUnknown.Error(), errWrongPw.Error())
	})

	t.Run("unverified account gets no session", func(t *testing.T) {
		f := newServiceFixture(t)
		_, err := f.service.RegisterMentee(ctx, menteeInput("bob@x.com"), &fakeSession{})
		require.NoError(t, err)

		sess := &fakeSession{}
		_, err = f.service.Login(ctx, "bob@x.com", "password123", sess)
		assert.ErrorIs(t, err, ErrEmailNotVerified)

		var notVerified *NotVerifiedError
		require.ErrorAs(t, err, &notVerified)
		assert.Equal(t, "bob@x.com", notVerified.Email)

		_, err = sess.Current(ctx)
		assert.ErrorIs(t, err, session.ErrNoSession)
	})

	t.Run("empty credentials", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.service.Login(ctx, "", "password123", &fakeSession{})
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = f.service.Login(ctx, "bob@x.com", "", &fakeSession{})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()

	t.Run("destroys the session", func(t *testing.T) {
		f := newServiceFixture(t)
		sess := &fakeSession{}
		_, err := f.service.RegisterMentee(ctx, menteeInput("bob@x.com"), sess)
		require.NoError(t, err)

		email, err := f.service.Logout(ctx, sess)
		require.NoError(t, err)
		assert.Equal(t, "bob@x.com", email)

		_, err = sess.Current(ctx)
		assert.ErrorIs(t, err, session.ErrNoSession)
	})

	t.Run("without a session", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.service.Logout(ctx, &fakeSession{})
		assert.ErrorIs(t, err, ErrNotAuthenticated)
	})
}

func TestWhoAmI(t *testing.T) {
	ctx := context.Background()

	t.Run("reports the session's account", func(t *testing.T) {
		f := newServiceFixture(t)
		sess := &fakeSession{}
		result, err := f.service.RegisterMentee(ctx, menteeInput("bob@x.com"), sess)
		require.NoError(t, err)

		identity, err := f.service.WhoAmI(ctx, sess)
		require.NoError(t, err)
		assert.Equal(t, result.User.ID, identity.User.ID)
		assert.Equal(t, "bob@x.com", identity.Principal.Email)
	})

	t.Run("without a session", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.service.WhoAmI(ctx, &fakeSession{})
		assert.ErrorIs(t, err, ErrNotAuthenticated)
	})

	t.Run("destroys sessions pointing at deleted accounts", func(t *testing.T) {
		f := newServiceFixture(t)
		sess := &fakeSession{}
		result, err := f.service.RegisterMentee(ctx, menteeInput("bob@x.com"), sess)
		require.NoError(t, err)

		f.users.delete(result.User.ID)

		_, err = f.service.WhoAmI(ctx, sess)
		assert.ErrorIs(t, err, ErrNotAuthenticated)

		_, err = sess.Current(ctx)
		assert.ErrorIs(t, err, session.ErrNoSession)
	})
}

// TestFullLifecycle walks the happy path end to end: register, fail a login,
// verify via the emailed token, log in, introspect, log out.
func TestFullLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)

	_, err := f.service.RegisterMentee(ctx, menteeInput("bob@x.com"), &fakeSession{})
	require.NoError(t, err)

	_, err = f.service.Login(ctx, "bob@x.com", "password123", &fakeSession{})
	require.ErrorIs(t, err, ErrEmailNotVerified)

	token := f.mailer.lastVerificationToken(t)
	verifySess := &fakeSession{}
	verified, err := f.service.VerifyEmail(ctx, token, verifySess)
	require.NoError(t, err)
	assert.True(t, verified.User.EmailVerified)

	loginSess := &fakeSession{}
	_, err = f.service.Login(ctx, "bob@x.com", "password123", loginSess)
	require.NoError(t, err)

	identity, err := f.service.WhoAmI(ctx, loginSess)
	require.NoError(t, err)
	assert.Equal(t, "bob@x.com", identity.User.Email)

	email, err := f.service.Logout(ctx, loginSess)
	require.NoError(t, err)
	assert.Equal(t, "bob@x.com", email)

	_, err = f.service.WhoAmI(ctx, loginSess)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}
