package auth

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	gotrue "github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"
)

// GoTrueProvider adapts the Supabase auth client to Provider.
type GoTrueProvider struct {
	client gotrue.Client
}

// NewGoTrueProvider wraps client, usually supabase.Client.Auth.
func NewGoTrueProvider(client gotrue.Client) *GoTrueProvider {
	return &GoTrueProvider{client: client}
}

func (p *GoTrueProvider) SignIn(email, password string) (*Session, error) {
	resp, err := p.client.SignInWithEmailPassword(email, password)
	if err != nil {
		return nil, classifyGoTrue(err)
	}
	return fromTokenResponse(resp), nil
}

func (p *GoTrueProvider) Refresh(refreshToken string) (*Session, error) {
	resp, err := p.client.RefreshToken(refreshToken)
	if err != nil {
		return nil, classifyGoTrue(err)
	}
	return fromTokenResponse(resp), nil
}

func (p *GoTrueProvider) User(accessToken string) (*User, error) {
	resp, err := p.client.WithToken(accessToken).GetUser()
	if err != nil {
		return nil, classifyGoTrue(err)
	}
	u := fromUser(resp.User)
	return &u, nil
}

func (p *GoTrueProvider) SignOut(accessToken string) error {
	return classifyGoTrue(p.client.WithToken(accessToken).Logout())
}

var goTrueStatus = regexp.MustCompile(`response status code (\d{3})`)

// classifyGoTrue wraps 4xx answers in ErrRejected. gotrue-go reports them
// only as "response status code N: body".
func classifyGoTrue(err error) error {
	if err == nil {
		return nil
	}
	m := goTrueStatus.FindStringSubmatch(err.Error())
	if m == nil {
		return err
	}
	status, _ := strconv.Atoi(m[1])
	if status >= 400 && status < 500 {
		return fmt.Errorf("%w: %v", ErrRejected, err)
	}
	return err
}

func fromTokenResponse(resp *types.TokenResponse) *Session {
	s := &Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    resp.TokenType,
		User:         fromUser(resp.User),
	}
	switch {
	case resp.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(resp.ExpiresAt, 0).UTC()
	case resp.ExpiresIn > 0:
		s.ExpiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second).UTC()
	}
	return s
}

func fromUser(u types.User) User {
	return User{ID: u.ID.String(), Email: u.Email, Role: u.Role}
}
