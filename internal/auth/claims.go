package auth

import (
	"math"
	"strconv"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// microTime is a NumericDate kept to the microsecond. jwt.NumericDate rounds through the
// package-wide jwt.TimePrecision, which defaults to whole seconds and would cut a short
// lifetime down by up to a second.
type microTime struct {
	time.Time
}

func newMicroTime(t time.Time) *microTime {
	return &microTime{Time: t.Truncate(time.Microsecond)}
}

func (m microTime) MarshalJSON() ([]byte, error) {
	return strconv.AppendFloat(nil, float64(m.UnixMicro())/1e6, 'f', 6, 64), nil
}

func (m *microTime) UnmarshalJSON(b []byte) error {
	seconds, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	m.Time = time.UnixMicro(int64(math.Round(seconds * 1e6)))
	return nil
}

// numericDate hands the time to the jwt validator without truncating it.
func (m *microTime) numericDate() *jwt.NumericDate {
	if m == nil {
		return nil
	}
	return &jwt.NumericDate{Time: m.Time}
}

// tokenClaims is the payload of an identity token.
type tokenClaims struct {
	ID        string     `json:"jti,omitempty"`
	Subject   string     `json:"sub"`
	IssuedAt  *microTime `json:"iat,omitempty"`
	ExpiresAt *microTime `json:"exp,omitempty"`
}

var _ jwt.Claims = (*tokenClaims)(nil)

func (c *tokenClaims) GetExpirationTime() (*jwt.NumericDate, error) {
	return c.ExpiresAt.numericDate(), nil
}

func (c *tokenClaims) GetIssuedAt() (*jwt.NumericDate, error) {
	return c.IssuedAt.numericDate(), nil
}

func (c *tokenClaims) GetNotBefore() (*jwt.NumericDate, error) { return nil, nil }

func (c *tokenClaims) GetIssuer() (string, error) { return "", nil }

func (c *tokenClaims) GetSubject() (string, error) { return c.Subject, nil }

func (c *tokenClaims) GetAudience() (jwt.ClaimStrings, error) { return nil, nil }
