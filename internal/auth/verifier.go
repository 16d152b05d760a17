package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the access token claims the gateway reads.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// User builds the user described by the claims.
func (c *Claims) User() User {
	return User{ID: c.Subject, Email: c.Email, Role: c.Role}
}

// Verifier checks access tokens. With a secret it verifies HS256 signatures;
// without one it only decodes the token and checks expiry, leaving the
// signature to the provider.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

// NewVerifier returns a Verifier for the project's JWT secret, which may be empty.
func NewVerifier(secret string) *Verifier {
	v := &Verifier{now: time.Now}
	if secret != "" {
		v.secret = []byte(secret)
	}
	return v
}

// Trusted reports whether a successful Parse proves the token is genuine.
func (v *Verifier) Trusted() bool {
	return len(v.secret) > 0
}

// Parse validates token and returns its claims.
func (v *Verifier) Parse(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrUnauthenticated
	}

	claims := &Claims{}
	if v.Trusted() {
		_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return v.secret, nil
		}, jwt.WithTimeFunc(v.now), jwt.WithExpirationRequired())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
		}
	} else {
		if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
		}
		if claims.ExpiresAt != nil && !v.now().Before(claims.ExpiresAt.Time) {
			return nil, fmt.Errorf("%w: token is expired", ErrUnauthenticated)
		}
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", ErrUnauthenticated)
	}
	return claims, nil
}
