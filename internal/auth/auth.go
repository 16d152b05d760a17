// Package auth fronts the hosted authentication service: password sign-in,
// sign-out, session and user lookup, and token refresh.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"lensfolio/api-gateway/internal/timeout"
)

var (
	// ErrUnauthenticated is returned when no usable access token is presented.
	ErrUnauthenticated = errors.New("auth: not authenticated")
	// ErrInvalidCredentials is returned when sign-in or refresh is rejected.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrRejected marks a provider answer that refuses the caller, as
	// opposed to the provider failing. Provider implementations wrap it.
	ErrRejected = errors.New("auth: rejected by provider")
	// ErrUnavailable is returned when the provider fails for any other reason.
	ErrUnavailable = errors.New("auth: provider unavailable")
)

// User is the signed-in administrator.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// Session is an authenticated session as handed to clients.
type Session struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	TokenType    string    `json:"tokenType,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt"`
	User         User      `json:"user"`
}

// Provider is the subset of the authentication service the gateway needs.
type Provider interface {
	SignIn(email, password string) (*Session, error)
	Refresh(refreshToken string) (*Session, error)
	User(accessToken string) (*User, error)
	SignOut(accessToken string) error
}

// Gateway passes calls through to a Provider, bounding each one with the
// store timeout and checking access tokens before they are forwarded.
type Gateway struct {
	provider Provider
	verifier *Verifier
	timeout  time.Duration
	log      *logrus.Logger
}

// NewGateway builds a Gateway. A nil verifier accepts tokens only after the
// provider confirms them.
func NewGateway(provider Provider, verifier *Verifier, d time.Duration, log *logrus.Logger) *Gateway {
	if verifier == nil {
		verifier = NewVerifier("")
	}
	if d <= 0 {
		d = timeout.Default
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Gateway{provider: provider, verifier: verifier, timeout: d, log: log}
}

// Login signs in with email and password.
func (g *Gateway) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidCredentials)
	}
	s, err := timeout.Do(ctx, "login", g.timeout, func() (*Session, error) {
		return g.provider.SignIn(email, password)
	})
	if err != nil {
		return nil, g.fail("login", err, ErrInvalidCredentials)
	}
	return s, nil
}

// Refresh trades a refresh token for a new session.
func (g *Gateway) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: refresh token is required", ErrInvalidCredentials)
	}
	s, err := timeout.Do(ctx, "refresh", g.timeout, func() (*Session, error) {
		return g.provider.Refresh(refreshToken)
	})
	if err != nil {
		return nil, g.fail("refresh", err, ErrInvalidCredentials)
	}
	return s, nil
}

// Logout revokes the session behind accessToken.
func (g *Gateway) Logout(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return ErrUnauthenticated
	}
	_, err := timeout.Do(ctx, "logout", g.timeout, func() (struct{}, error) {
		return struct{}{}, g.provider.SignOut(accessToken)
	})
	if err != nil {
		return g.fail("logout", err, ErrUnauthenticated)
	}
	return nil
}

// CurrentUser asks the provider who owns accessToken.
func (g *Gateway) CurrentUser(ctx context.Context, accessToken string) (*User, error) {
	if _, err := g.verifier.Parse(accessToken); err != nil {
		return nil, err
	}
	return g.lookupUser(ctx, accessToken)
}

// Session validates accessToken and describes the session it belongs to.
// With a signing secret configured the token alone is trusted; otherwise the
// provider is asked to confirm it.
func (g *Gateway) Session(ctx context.Context, accessToken string) (*Session, error) {
	claims, err := g.verifier.Parse(accessToken)
	if err != nil {
		return nil, err
	}

	s := &Session{AccessToken: accessToken, TokenType: "bearer", User: claims.User()}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	if g.verifier.Trusted() {
		return s, nil
	}

	u, err := g.lookupUser(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	s.User = *u
	return s, nil
}

func (g *Gateway) lookupUser(ctx context.Context, accessToken string) (*User, error) {
	u, err := timeout.Do(ctx, "getUser", g.timeout, func() (*User, error) {
		return g.provider.User(accessToken)
	})
	if err != nil {
		return nil, g.fail("getUser", err, ErrUnauthenticated)
	}
	return u, nil
}

// fail logs err and classifies it. Timeouts and cancellations keep their
// identity, provider rejections are reported as kind and everything else as
// ErrUnavailable.
func (g *Gateway) fail(op string, err, kind error) error {
	g.log.WithField("op", op).Errorf("Error during %s: %v", op, err)
	switch {
	case errors.Is(err, timeout.ErrTimeout), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, kind):
		return err
	case errors.Is(err, ErrRejected):
		return fmt.Errorf("%w: %v", kind, err)
	default:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}
