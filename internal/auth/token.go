package auth

import (
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrMalformed is returned when the token is not a three-part base64url structure.
	ErrMalformed = errors.New("token malformed")
	// ErrBadSignature is returned when the signature does not match the signing key.
	ErrBadSignature = errors.New("token signature invalid")
	// ErrExpired is returned when the current time is not strictly before the expiry.
	ErrExpired = errors.New("token expired")
	// ErrEmptySubject is returned when issuing a token for an empty subject.
	ErrEmptySubject = errors.New("token subject must not be empty")
)

var signingMethod = jwt.SigningMethodHS256

// TokenManager handles issuing and validating JWT tokens. It holds no mutable state
// and is safe for concurrent use.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption customizes a TokenManager.
type TokenOption func(*TokenManager)

// WithClock replaces the wall clock used for issuing and expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(tm *TokenManager) {
		tm.now = now
	}
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttl time.Duration, opts ...TokenOption) *TokenManager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	tm := &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(tm)
	}
	return tm
}

// TTL returns the configured token lifetime.
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

// Issue builds and signs a token for an already authenticated subject.
func (tm *TokenManager) Issue(subject string) (string, time.Time, error) {
	if strings.TrimSpace(subject) == "" {
		return "", time.Time{}, ErrEmptySubject
	}

	issuedAt := newMicroTime(tm.now())
	expiresAt := newMicroTime(issuedAt.Add(tm.ttl))
	claims := &tokenClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}

	token, err := jwt.NewWithClaims(signingMethod, claims).SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt.Time, nil
}

// Verify checks structure, then signature, then expiry, and returns the subject.
func (tm *TokenManager) Verify(tokenStr string) (string, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)

	parts := strings.Split(tokenStr, ".")
	if len(parts) != 3 {
		return "", ErrMalformed
	}
	segments := make([][]byte, len(parts))
	for i, part := range parts {
		if part == "" {
			return "", ErrMalformed
		}
		decoded, err := parser.DecodeSegment(part)
		if err != nil {
			return "", ErrMalformed
		}
		segments[i] = decoded
	}

	// The signature is checked over the raw segments before any claim is decoded, so a
	// tampered payload always reports ErrBadSignature.
	if err := signingMethod.Verify(parts[0]+"."+parts[1], segments[2], tm.secret); err != nil {
		return "", ErrBadSignature
	}

	var claims tokenClaims
	_, err := parser.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (interface{}, error) {
		return tm.secret, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "", ErrBadSignature
	default:
		return "", ErrMalformed
	}

	if claims.Subject == "" {
		return "", ErrMalformed
	}
	return claims.Subject, nil
}
