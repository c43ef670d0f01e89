package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/talent-service/internal/auth"
	"github.com/spec-kit/talent-service/internal/domain"
	"github.com/spec-kit/talent-service/internal/events"
	"github.com/spec-kit/talent-service/internal/ratelimit"
	"github.com/spec-kit/talent-service/internal/repository"
	apperrors "github.com/spec-kit/talent-service/pkg/util"
)

// Login failure reasons recorded in audit events. Clients only ever see
// INVALID_CREDENTIALS or TOO_MANY_REQUESTS.
const (
	reasonUnknownEmail  = "unknown_email"
	reasonWrongPassword = "wrong_password"
	ReasonRateLimited   = "rate_limited"
)

// LoginLimiter bounds failed login attempts per email.
type LoginLimiter interface {
	Allow(ctx context.Context, email string) bool
	RecordFailure(ctx context.Context, email string)
	Reset(ctx context.Context, email string)
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User   *domain.User
	Tokens domain.TokenPair
}

// RefreshResult is returned by refresh. Rotated reports whether Tokens
// carries a new refresh token that must replace the presented one.
type RefreshResult struct {
	Tokens  domain.TokenPair
	Rotated bool
}

// AuthService coordinates registration, login and refresh.
type AuthService struct {
	users      repository.UserRepository
	issuer     *auth.Issuer
	hasher     *auth.Hasher
	rotation   *auth.RotationPolicy
	limiter    LoginLimiter
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Issuer     *auth.Issuer
	Hasher     *auth.Hasher
	Limiter    LoginLimiter
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	var limiter LoginLimiter = ratelimit.Noop{}
	if deps.Limiter != nil {
		limiter = deps.Limiter
	}
	return &AuthService{
		users:      deps.UserRepo,
		issuer:     deps.Issuer,
		hasher:     deps.Hasher,
		rotation:   auth.NewRotationPolicy(deps.UserRepo, deps.Issuer, deps.Hasher),
		limiter:    limiter,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Register creates an account with the default role and no organization,
// then opens a session for it.
func (s *AuthService) Register(ctx context.Context, fullName, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, duplicateEmailError()
	}

	hash, err := s.hasher.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		FullName:     strings.TrimSpace(fullName),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.DefaultRole,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, duplicateEmailError()
		}
		return nil, err
	}

	tokens, err := s.openSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.New(events.EventUserRegistered, events.ActorFromUser(user), nil))
	return &AuthResult{User: user, Tokens: tokens}, nil
}

// Login verifies credentials. Unknown email and wrong password fail
// identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)

	if !s.limiter.Allow(ctx, email) {
		s.publish(ctx, events.New(events.EventLoginFailed, events.Actor{}, events.LoginFailedPayload{Reason: ReasonRateLimited}))
		return nil, apperrors.NewTooManyRequests("too many failed login attempts; try again later")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.hasher.CompareDummy(password)
		s.loginFailed(ctx, email, nil, reasonUnknownEmail)
		return nil, apperrors.NewInvalidCredentials()
	}

	ok, err := s.hasher.ComparePassword(user.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.loginFailed(ctx, email, user, reasonWrongPassword)
		return nil, apperrors.NewInvalidCredentials()
	}

	s.limiter.Reset(ctx, email)

	tokens, err := s.openSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.New(events.EventUserLoggedIn, events.ActorFromUser(user), nil))
	return &AuthResult{User: user, Tokens: tokens}, nil
}

// Refresh exchanges a refresh token for a new access token, rotating the
// refresh token when it is close to expiry.
func (s *AuthService) Refresh(ctx context.Context, presented string) (*RefreshResult, error) {
	if presented == "" {
		return nil, apperrors.NewUnauthorized("missing refresh token")
	}

	claims, err := s.issuer.VerifyRefresh(presented)
	if err != nil {
		s.refreshRejected(ctx, nil, err)
		return nil, apperrors.NewUnauthorized("invalid refresh token")
	}

	rot, err := s.rotation.ValidateGenerateTokens(ctx, claims.Subject, presented)
	if err != nil {
		if errors.Is(err, auth.ErrUnknownSubject) ||
			errors.Is(err, auth.ErrNoActiveSession) ||
			errors.Is(err, auth.ErrTokenMismatch) {
			s.refreshRejected(ctx, &claims.Subject, err)
			return nil, apperrors.NewUnauthorized("invalid refresh token")
		}
		return nil, err
	}

	eventType := events.EventAccessReissued
	var payload interface{}
	if rot.Renewed {
		eventType = events.EventSessionRenewed
		payload = events.SessionRenewedPayload{PreviousExpiry: claims.Expiry()}
	}
	s.publish(ctx, events.New(eventType, events.ActorFromUser(rot.User), payload))

	return &RefreshResult{Tokens: rot.Pair, Rotated: rot.Renewed}, nil
}

// Profile returns the live record for userID.
func (s *AuthService) Profile(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": userID})
		}
		return nil, err
	}
	return user, nil
}

// openSession issues a pair for user and binds its refresh token, replacing
// any earlier session.
func (s *AuthService) openSession(ctx context.Context, user *domain.User) (domain.TokenPair, error) {
	tokens, err := s.issuer.IssuePair(user.ID, user.Role, user.OrganizationID)
	if err != nil {
		return domain.TokenPair{}, err
	}
	if err := s.rotation.BindRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return domain.TokenPair{}, err
	}
	return tokens, nil
}

func (s *AuthService) loginFailed(ctx context.Context, email string, user *domain.User, reason string) {
	s.limiter.RecordFailure(ctx, email)
	s.publish(ctx, events.New(events.EventLoginFailed, events.ActorFromUser(user), events.LoginFailedPayload{Reason: reason}))
}

func (s *AuthService) refreshRejected(ctx context.Context, userID *int64, cause error) {
	s.publish(ctx, events.New(events.EventRefreshRejected, events.Actor{UserID: userID}, events.RefreshRejectedPayload{Reason: cause.Error()}))
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event", string(event.Type)), zap.Error(err))
	}
}

func duplicateEmailError() error {
	return apperrors.NewValidationError("validation failed", []apperrors.FieldError{{Field: "email", Rule: "unique"}})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
