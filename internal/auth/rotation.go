package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spec-kit/talent-service/internal/domain"
	"github.com/spec-kit/talent-service/internal/repository"
)

// RenewalThreshold is the remaining refresh-token lifetime at or below which a
// refresh mints a new pair instead of reusing the presented refresh token.
const RenewalThreshold = 24 * time.Hour

// credentialWriteTimeout bounds a refresh-hash write detached from the request.
const credentialWriteTimeout = 5 * time.Second

// Rejection reasons. Callers surface all of them as unauthenticated.
var (
	ErrUnknownSubject  = errors.New("refresh subject not found")
	ErrNoActiveSession = errors.New("no active session")
	ErrTokenMismatch   = errors.New("refresh token does not match active session")
)

// CredentialStore is the slice of the user store the rotation path needs.
type CredentialStore interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateRefreshTokenHash(ctx context.Context, id int64, hash *string) error
}

// Rotation is the outcome of an accepted refresh.
type Rotation struct {
	Pair domain.TokenPair
	// Renewed is true when a new refresh token was minted and stored.
	Renewed bool
	User    *domain.User
}

// RotationPolicy validates a presented refresh token against the stored hash
// and decides between sliding renewal and access-only reissue.
type RotationPolicy struct {
	store  CredentialStore
	issuer *Issuer
	hasher *Hasher
}

// NewRotationPolicy wires the policy.
func NewRotationPolicy(store CredentialStore, issuer *Issuer, hasher *Hasher) *RotationPolicy {
	return &RotationPolicy{store: store, issuer: issuer, hasher: hasher}
}

// ValidateGenerateTokens accepts or rejects presented for userID. The caller
// must have verified presented with the refresh secret and taken userID from
// its sub claim. Role and organization come from the live record.
func (p *RotationPolicy) ValidateGenerateTokens(ctx context.Context, userID int64, presented string) (*Rotation, error) {
	user, err := p.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnknownSubject
		}
		return nil, err
	}
	if !user.HasActiveSession() {
		return nil, ErrNoActiveSession
	}
	if !p.hasher.CompareRefreshToken(*user.RefreshTokenHash, presented) {
		return nil, ErrTokenMismatch
	}

	claims, err := p.issuer.DecodeRefresh(presented)
	if err != nil {
		return nil, err
	}
	remaining := claims.Expiry().Sub(p.issuer.now())

	if remaining <= RenewalThreshold {
		pair, err := p.issuer.IssuePair(user.ID, user.Role, user.OrganizationID)
		if err != nil {
			return nil, err
		}
		if err := p.persist(ctx, user.ID, pair.RefreshToken); err != nil {
			return nil, err
		}
		return &Rotation{Pair: pair, Renewed: true, User: user}, nil
	}

	access, err := p.issuer.IssueAccess(user.ID, user.Role, user.OrganizationID)
	if err != nil {
		return nil, err
	}
	return &Rotation{
		Pair: domain.TokenPair{AccessToken: access, RefreshToken: presented},
		User: user,
	}, nil
}

// BindRefreshToken stores the hash of a newly issued refresh token for userID,
// invalidating whatever token was bound before.
func (p *RotationPolicy) BindRefreshToken(ctx context.Context, userID int64, refreshToken string) error {
	return p.persist(ctx, userID, refreshToken)
}

// persist runs on a context detached from request cancellation so an aborted
// request cannot leave the hash half-written.
func (p *RotationPolicy) persist(ctx context.Context, userID int64, refreshToken string) error {
	hash, err := p.hasher.HashRefreshToken(refreshToken)
	if err != nil {
		return err
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), credentialWriteTimeout)
	defer cancel()

	if err := p.store.UpdateRefreshTokenHash(writeCtx, userID, &hash); err != nil {
		return fmt.Errorf("bind refresh token: %w", err)
	}
	return nil
}
