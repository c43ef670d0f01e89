package auth

import (
	"time"

	"github.com/spec-kit/talent-service/internal/domain"
)

// Fixed token lifetimes.
const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// Issuer mints access/refresh pairs. Each token kind has its own codec and
// secret so a leaked refresh secret cannot forge access tokens.
type Issuer struct {
	access  *Codec
	refresh *Codec
}

// IssuerOption configures an Issuer.
type IssuerOption func(*Issuer)

// WithClock replaces time.Now for signing and verification.
func WithClock(now func() time.Time) IssuerOption {
	return func(i *Issuer) { i.setClock(now) }
}

// NewIssuer builds an issuer from the two signing secrets.
func NewIssuer(accessSecret, refreshSecret string, opts ...IssuerOption) *Issuer {
	i := &Issuer{
		access:  NewCodec(accessSecret),
		refresh: NewCodec(refreshSecret),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// IssuePair signs a fresh access and refresh token for the identity. It has no
// side effects; persisting the refresh hash is the caller's job.
func (i *Issuer) IssuePair(userID int64, role domain.Role, orgID *int64) (domain.TokenPair, error) {
	access, err := i.IssueAccess(userID, role, orgID)
	if err != nil {
		return domain.TokenPair{}, err
	}

	refreshClaims := &RefreshClaims{BaseClaims: BaseClaims{Subject: userID, Role: role}}
	refresh, err := i.refresh.Sign(refreshClaims, RefreshTokenTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// IssueAccess signs only an access token.
func (i *Issuer) IssueAccess(userID int64, role domain.Role, orgID *int64) (string, error) {
	claims := &AccessClaims{
		BaseClaims:     BaseClaims{Subject: userID, Role: role},
		OrganizationID: orgID,
	}
	return i.access.Sign(claims, AccessTokenTTL)
}

// VerifyAccess verifies an access token with the access secret.
func (i *Issuer) VerifyAccess(token string) (*AccessClaims, error) {
	var claims AccessClaims
	if err := i.access.Verify(token, &claims); err != nil {
		return nil, err
	}
	return &claims, nil
}

// VerifyRefresh verifies a refresh token with the refresh secret.
func (i *Issuer) VerifyRefresh(token string) (*RefreshClaims, error) {
	var claims RefreshClaims
	if err := i.refresh.Verify(token, &claims); err != nil {
		return nil, err
	}
	return &claims, nil
}

// DecodeRefresh reads a refresh token's claims without verification.
func (i *Issuer) DecodeRefresh(token string) (*RefreshClaims, error) {
	var claims RefreshClaims
	if err := i.refresh.Decode(token, &claims); err != nil {
		return nil, err
	}
	return &claims, nil
}

// now is shared by both codecs.
func (i *Issuer) now() time.Time {
	return i.access.now()
}

func (i *Issuer) setClock(now func() time.Time) {
	i.access.now = now
	i.refresh.now = now
}
