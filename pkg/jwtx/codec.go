package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token type discriminators carried in the "type" claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// ErrMalformed covers every structural failure: bad signature, wrong
// algorithm, unparseable payload, missing required claims. Callers must not
// surface finer-grained reasons to the network.
var ErrMalformed = errors.New("jwtx: malformed token")

// Claims is the signed session payload. Expiry is always an absolute epoch
// timestamp; whether it has passed is the caller's decision at evaluation
// time, not the codec's.
type Claims struct {
	UserID    int64  `json:"user_id"`
	RefreshID int64  `json:"refresh_id,omitempty"` // session id, set on access tokens
	Nonce     string `json:"nonce,omitempty"`      // randomises every issued token
	Type      string `json:"type"`

	jwt.RegisteredClaims
}

// NewAccessClaims builds claims for an access token bound to a session. The
// nonce keeps two issuances for the same session within one second from
// encoding identically; expiry only has whole-second resolution.
func NewAccessClaims(userID, sessionID int64, expiresAt time.Time, nonce string) Claims {
	return Claims{
		UserID:    userID,
		RefreshID: sessionID,
		Nonce:     nonce,
		Type:      TypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
}

// NewRefreshClaims builds claims for a refresh token. The nonce keeps two
// refresh tokens for the same user and expiry from encoding identically.
func NewRefreshClaims(userID int64, expiresAt time.Time, nonce string) Claims {
	return Claims{
		UserID: userID,
		Nonce:  nonce,
		Type:   TypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
}

// ExpiresAtTime returns the embedded expiry, or the zero time when absent.
func (c Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Codec signs and verifies session claims with a shared HMAC secret.
type Codec struct {
	secret []byte
	method jwt.SigningMethod
}

// NewCodec builds a codec for the given HMAC algorithm (HS256, HS384, HS512).
func NewCodec(secret, algorithm string) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("jwtx: empty signing secret")
	}
	method := jwt.GetSigningMethod(algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("jwtx: unsupported algorithm %q", algorithm)
	}
	return &Codec{secret: []byte(secret), method: method}, nil
}

// Encode returns the signed compact serialisation of claims.
func (c *Codec) Encode(claims Claims) (string, error) {
	return jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
}

// Decode verifies signature and structural shape and returns the claims.
// It deliberately skips time-based validation: expiry comparison belongs to
// the caller, against the canonical wall clock.
func (c *Codec) Decode(token string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, c.keyFunc,
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return Claims{}, ErrMalformed
	}
	if err := claims.checkShape(); err != nil {
		return Claims{}, ErrMalformed
	}
	return claims, nil
}

func (c *Codec) keyFunc(token *jwt.Token) (any, error) {
	if token.Method.Alg() != c.method.Alg() {
		return nil, fmt.Errorf("jwtx: unexpected signing method %q", token.Method.Alg())
	}
	return c.secret, nil
}

func (c Claims) checkShape() error {
	if c.UserID <= 0 {
		return errors.New("jwtx: missing user_id")
	}
	if c.Type != TypeAccess && c.Type != TypeRefresh {
		return errors.New("jwtx: unknown token type")
	}
	if c.ExpiresAt == nil {
		return errors.New("jwtx: missing exp")
	}
	if c.Type == TypeAccess && c.RefreshID <= 0 {
		return errors.New("jwtx: access token missing refresh_id")
	}
	return nil
}
