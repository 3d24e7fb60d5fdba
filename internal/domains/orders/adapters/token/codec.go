// Package token signs and verifies the guest-token cookie payload. The
// cookie carries a short JWT whose subject is the opaque cart token; a
// bad or expired signature degrades to "no guest order", never an error.
package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL bounds how long a signed guest cookie stays verifiable.
const DefaultTTL = 30 * 24 * time.Hour

// Codec signs guest tokens into cookie payloads and verifies them back.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewCodec builds a codec for the given signing secret. A non-positive
// ttl falls back to DefaultTTL.
func NewCodec(secret []byte, ttl time.Duration) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("guest token secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Codec{secret: secret, ttl: ttl, now: time.Now}, nil
}

// Encode signs the opaque guest token into a cookie payload.
func (c *Codec) Encode(guestToken string) (string, error) {
	guestToken = strings.TrimSpace(guestToken)
	if guestToken == "" {
		return "", errors.New("guest token is empty")
	}
	now := c.now()
	claims := jwt.RegisteredClaims{
		Subject:   guestToken,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Decode verifies a cookie payload and returns the guest token inside.
// Anything invalid — bad signature, wrong algorithm, expiry — yields an
// empty string: the caller proceeds as a tokenless guest.
func (c *Codec) Decode(payload string) string {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return ""
	}
	parsed, err := jwt.ParseWithClaims(payload, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now))
	if err != nil || !parsed.Valid {
		return ""
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return ""
	}
	return claims.Subject
}
