package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/talent-service/internal/auth"
	"github.com/spec-kit/talent-service/internal/domain"
	"github.com/spec-kit/talent-service/internal/events"
	"github.com/spec-kit/talent-service/internal/repository/memory"
	apperrors "github.com/spec-kit/talent-service/pkg/util"
)

type countingLimiter struct {
	max      int
	failures map[string]int
}

func (l *countingLimiter) Allow(_ context.Context, email string) bool {
	return l.failures[email] < l.max
}

func (l *countingLimiter) RecordFailure(_ context.Context, email string) {
	l.failures[email]++
}

func (l *countingLimiter) Reset(_ context.Context, email string) {
	delete(l.failures, email)
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *eventRecorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func (r *eventRecorder) last() events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

type authFixture struct {
	svc     *AuthService
	users   *memory.UserStore
	issuer  *auth.Issuer
	hasher  *auth.Hasher
	limiter *countingLimiter
	events  *eventRecorder
	now     time.Time
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		users:   memory.NewUserStore(),
		hasher:  auth.NewHasher(bcrypt.MinCost),
		limiter: &countingLimiter{max: 3, failures: map[string]int{}},
		events:  &eventRecorder{},
		now:     time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	f.issuer = auth.NewIssuer("access-secret", "refresh-secret", auth.WithClock(func() time.Time { return f.now }))

	dispatcher := events.NewInMemoryDispatcher()
	for _, eventType := range events.AuthEventTypes {
		dispatcher.Subscribe(eventType, f.events.handle)
	}

	f.svc = NewAuthService(AuthDependencies{
		UserRepo:   f.users,
		Issuer:     f.issuer,
		Hasher:     f.hasher,
		Limiter:    f.limiter,
		Dispatcher: dispatcher,
	})
	return f
}

// seedUser stores a user with a known password, role and organization.
func (f *authFixture) seedUser(t *testing.T, email, password string, role domain.Role, orgID *int64) *domain.User {
	t.Helper()
	hash, err := f.hasher.HashPassword(password)
	require.NoError(t, err)
	user := &domain.User{FullName: "Seeded", Email: email, PasswordHash: hash, Role: role, OrganizationID: orgID}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

func (f *authFixture) storedHash(t *testing.T, id int64) *string {
	t.Helper()
	user, err := f.users.FindByID(context.Background(), id)
	require.NoError(t, err)
	return user.RefreshTokenHash
}

func int64Ptr(v int64) *int64 { return &v }

func TestRegister(t *testing.T) {
	f := newAuthFixture(t)

	res, err := f.svc.Register(context.Background(), " Ada Lovelace ", "Ada@Example.com", "s3cret-pass")
	require.NoError(t, err)

	assert.Equal(t, "Ada Lovelace", res.User.FullName)
	assert.Equal(t, "ada@example.com", res.User.Email)
	assert.Equal(t, domain.RoleUser, res.User.Role)
	assert.Nil(t, res.User.OrganizationID)

	claims, err := f.issuer.VerifyAccess(res.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.Subject)
	assert.Nil(t, claims.OrganizationID)

	hash := f.storedHash(t, res.User.ID)
	require.NotNil(t, hash)
	assert.True(t, f.hasher.CompareRefreshToken(*hash, res.Tokens.RefreshToken))
	assert.Equal(t, []events.EventType{events.EventUserRegistered}, f.events.types())
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.Register(context.Background(), "Ada", "ada@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, err = f.svc.Register(context.Background(), "Other", "ADA@example.com", "s3cret-pass")
	require.ErrorIs(t, err, apperrors.ErrValidation)
	de := apperrors.ToDomainError(err)
	assert.Equal(t, []apperrors.FieldError{{Field: "email", Rule: "unique"}}, de.Details["fields"])
}

func TestLogin_ClaimsReflectRecord(t *testing.T) {
	f := newAuthFixture(t)
	user := f.seedUser(t, "admin@example.com", "correct", domain.RoleAdmin, int64Ptr(1))
	require.Equal(t, int64(1), user.ID)

	res, err := f.svc.Login(context.Background(), "admin@example.com", "correct")
	require.NoError(t, err)

	claims, err := f.issuer.VerifyAccess(res.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.Subject)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	require.NotNil(t, claims.OrganizationID)
	assert.Equal(t, int64(1), *claims.OrganizationID)

	hash := f.storedHash(t, user.ID)
	require.NotNil(t, hash)
	assert.True(t, f.hasher.CompareRefreshToken(*hash, res.Tokens.RefreshToken))
	assert.Equal(t, events.EventUserLoggedIn, f.events.last().Type)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "admin@example.com", "correct", domain.RoleAdmin, int64Ptr(1))

	_, wrongPassword := f.svc.Login(context.Background(), "admin@example.com", "wrong")
	_, unknownEmail := f.svc.Login(context.Background(), "nobody@example.com", "correct")

	require.ErrorIs(t, wrongPassword, apperrors.ErrInvalidCredentials)
	require.ErrorIs(t, unknownEmail, apperrors.ErrInvalidCredentials)

	a, b := apperrors.ToDomainError(wrongPassword), apperrors.ToDomainError(unknownEmail)
	assert.Equal(t, a.HTTPStatus, b.HTTPStatus)
	assert.Equal(t, a.Message, b.Message)
	assert.Equal(t, 400, a.HTTPStatus)

	assert.Equal(t, []events.EventType{events.EventLoginFailed, events.EventLoginFailed}, f.events.types())
}

func TestLogin_LimiterBlocksThenResets(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "ada@example.com", "correct", domain.RoleUser, nil)

	for i := 0; i < 3; i++ {
		_, err := f.svc.Login(context.Background(), "ada@example.com", "wrong")
		require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	}

	_, err := f.svc.Login(context.Background(), "ada@example.com", "correct")
	require.ErrorIs(t, err, apperrors.ErrTooManyRequests)
	payload, ok := f.events.last().Payload.(events.LoginFailedPayload)
	require.True(t, ok)
	assert.Equal(t, ReasonRateLimited, payload.Reason)

	f.limiter.failures = map[string]int{"ada@example.com": 1}
	_, err = f.svc.Login(context.Background(), "ada@example.com", "correct")
	require.NoError(t, err)
	assert.Empty(t, f.limiter.failures)
}

func TestLogin_NewSessionRevokesPrevious(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "ada@example.com", "correct", domain.RoleUser, nil)

	first, err := f.svc.Login(context.Background(), "ada@example.com", "correct")
	require.NoError(t, err)
	second, err := f.svc.Login(context.Background(), "ada@example.com", "correct")
	require.NoError(t, err)

	_, err = f.svc.Refresh(context.Background(), first.Tokens.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	_, err = f.svc.Refresh(context.Background(), second.Tokens.RefreshToken)
	assert.NoError(t, err)
}

func TestRefresh_ReusesFarFromExpiry(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "ada@example.com", "correct", domain.RoleUser, nil)
	login, err := f.svc.Login(context.Background(), "ada@example.com", "correct")
	require.NoError(t, err)

	f.now = f.now.Add(24 * time.Hour)
	res, err := f.svc.Refresh(context.Background(), login.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.False(t, res.Rotated)
	assert.Equal(t, login.Tokens.RefreshToken, res.Tokens.RefreshToken)
	assert.Equal(t, events.EventAccessReissued, f.events.last().Type)
}

func TestRefresh_RotatesNearExpiry(t *testing.T) {
	f := newAuthFixture(t)
	user := f.seedUser(t, "ada@example.com", "correct", domain.RoleUser, nil)
	login, err := f.svc.Login(context.Background(), "ada@example.com", "correct")
	require.NoError(t, err)

	f.now = f.now.Add(auth.RefreshTokenTTL - 12*time.Hour)
	res, err := f.svc.Refresh(context.Background(), login.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.True(t, res.Rotated)
	assert.NotEqual(t, login.Tokens.RefreshToken, res.Tokens.RefreshToken)
	assert.True(t, f.hasher.CompareRefreshToken(*f.storedHash(t, user.ID), res.Tokens.RefreshToken))
	assert.Equal(t, events.EventSessionRenewed, f.events.last().Type)

	// The presented token is now revoked.
	_, err = f.svc.Refresh(context.Background(), login.Tokens.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestRefresh_Rejections(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "ada@example.com", "correct", domain.RoleUser, nil)
	login, err := f.svc.Login(context.Background(), "ada@example.com", "correct")
	require.NoError(t, err)

	for name, presented := range map[string]string{
		"missing":      "",
		"garbage":      "not-a-token",
		"access token": login.Tokens.AccessToken,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Refresh(context.Background(), presented)
			assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
		})
	}

	t.Run("expired", func(t *testing.T) {
		issuedAt := f.now
		f.now = issuedAt.Add(auth.RefreshTokenTTL + time.Minute)
		defer func() { f.now = issuedAt }()

		_, err := f.svc.Refresh(context.Background(), login.Tokens.RefreshToken)
		assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	})

	t.Run("no active session", func(t *testing.T) {
		login, err := f.svc.Login(context.Background(), "ada@example.com", "correct")
		require.NoError(t, err)
		require.NoError(t, f.users.UpdateRefreshTokenHash(context.Background(), login.User.ID, nil))

		_, err = f.svc.Refresh(context.Background(), login.Tokens.RefreshToken)
		assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
		assert.Equal(t, events.EventRefreshRejected, f.events.last().Type)
	})
}

func TestProfile(t *testing.T) {
	f := newAuthFixture(t)
	user := f.seedUser(t, "ada@example.com", "correct", domain.RoleRecruiter, int64Ptr(4))

	got, err := f.svc.Profile(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleRecruiter, got.Role)

	_, err = f.svc.Profile(context.Background(), 999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
