package auth

import (
	"crypto/hmac"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/talent-service/internal/domain"
)

// Codec verification failures.
var (
	ErrInvalidSignature = errors.New("token signature invalid")
	ErrExpired          = errors.New("token expired")
	ErrMalformed        = errors.New("token malformed")
)

// BaseClaims holds the fields every token kind carries. It implements
// jwt.Claims so the concrete claim structs can be signed and parsed directly.
type BaseClaims struct {
	Subject   int64            `json:"sub"`
	Role      domain.Role      `json:"role"`
	ID        string           `json:"jti,omitempty"`
	IssuedAt  *jwt.NumericDate `json:"iat,omitempty"`
	ExpiresAt *jwt.NumericDate `json:"exp,omitempty"`
}

func (c BaseClaims) GetExpirationTime() (*jwt.NumericDate, error) { return c.ExpiresAt, nil }
func (c BaseClaims) GetIssuedAt() (*jwt.NumericDate, error)       { return c.IssuedAt, nil }
func (c BaseClaims) GetNotBefore() (*jwt.NumericDate, error)      { return nil, nil }
func (c BaseClaims) GetIssuer() (string, error)                   { return "", nil }
func (c BaseClaims) GetAudience() (jwt.ClaimStrings, error)       { return nil, nil }
func (c BaseClaims) GetSubject() (string, error) {
	return strconv.FormatInt(c.Subject, 10), nil
}

// Expiry returns the exp claim, or the zero time when absent.
func (c BaseClaims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

func (c *BaseClaims) base() *BaseClaims { return c }

// Signable is implemented by *AccessClaims and *RefreshClaims.
type Signable interface {
	jwt.Claims
	base() *BaseClaims
}

// AccessClaims is the payload of an access token.
type AccessClaims struct {
	BaseClaims
	OrganizationID *int64 `json:"organizationId,omitempty"`
}

// RefreshClaims is the payload of a refresh token. It deliberately has no
// tenant field: the refresh path resolves tenant and role from the live record.
type RefreshClaims struct {
	BaseClaims
}

// Codec signs and verifies HS256 tokens with a single secret.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// NewCodec builds a codec for one token kind.
func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret), now: time.Now}
}

// Sign stamps iat/exp/jti on claims and returns the compact token.
func (c *Codec) Sign(claims Signable, ttl time.Duration) (string, error) {
	now := c.now()
	b := claims.base()
	b.IssuedAt = jwt.NewNumericDate(now)
	b.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	if b.ID == "" {
		b.ID = uuid.NewString()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature then expiry and decodes the payload into dst. Any
// change to a well-formed token, header and payload included, fails with
// ErrInvalidSignature.
func (c *Codec) Verify(tokenStr string, dst jwt.Claims) error {
	if err := c.checkSignature(tokenStr); err != nil {
		return err
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, dst, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return classify(err)
	}
	if !parsed.Valid {
		return ErrMalformed
	}
	return nil
}

// checkSignature recomputes the HS256 MAC over header.payload before any JSON
// is decoded, so tampering is reported as a bad signature rather than a parse
// failure.
func (c *Codec) checkSignature(tokenStr string) error {
	parts := strings.Split(tokenStr, ".")
	if len(parts) != 3 {
		return fmt.Errorf("%w: token has %d segments", ErrMalformed, len(parts))
	}
	parser := jwt.NewParser()
	for _, seg := range parts[:2] {
		if _, err := parser.DecodeSegment(seg); err != nil || seg == "" {
			return fmt.Errorf("%w: undecodable segment", ErrMalformed)
		}
	}

	mac, err := jwt.SigningMethodHS256.Sign(parts[0]+"."+parts[1], c.secret)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	// Compare the encoded form: lenient base64 decoding ignores trailing bits.
	if !hmac.Equal([]byte(base64.RawURLEncoding.EncodeToString(mac)), []byte(parts[2])) {
		return ErrInvalidSignature
	}
	return nil
}

// Decode reads the payload without checking the signature. Only use it on a
// token that has already been verified.
func (c *Codec) Decode(tokenStr string, dst jwt.Claims) error {
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}
