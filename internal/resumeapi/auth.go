package resumeapi

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// credentialSource hands out a static bearer token until its expiry.
type credentialSource struct {
	token *oauth2.Token
	now   func() time.Time
}

func (s credentialSource) Token() (*oauth2.Token, error) {
	if !s.token.Expiry.IsZero() && !s.now().Before(s.token.Expiry) {
		return nil, ErrCredentialExpired
	}
	return s.token, nil
}

// CredentialExpiry reads the exp claim of a JWT credential without
// verifying its signature. Opaque tokens and tokens without exp return
// the zero time.
func CredentialExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// authorizedClient returns an HTTP client that adds the bearer header,
// built on top of base.
func authorizedClient(base *http.Client, token string, now func() time.Time) *http.Client {
	if token == "" {
		return base
	}
	src := credentialSource{
		token: &oauth2.Token{
			AccessToken: token,
			TokenType:   "Bearer",
			Expiry:      CredentialExpiry(token),
		},
		now: now,
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	client := oauth2.NewClient(ctx, src)
	client.Timeout = base.Timeout
	return client
}
