package api

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"ubae_shell/internal/model"
)

// SessionCookie is the cookie the upstream API issues at login/signup.
const SessionCookie = "jwt"

// credential reports what the jar knows about the session cookie.
type credential int

const (
	credentialMissing credential = iota
	credentialExpired
	// credentialPresent: a cookie is held and not known to be expired. The
	// server remains the authority on whether it is valid.
	credentialPresent
)

// credential inspects the session cookie without verifying its signature;
// the shell never holds the server's signing key.
func (c *Client) credential(now time.Time) credential {
	var token string
	for _, cookie := range c.httpClient.Jar.Cookies(c.baseURL) {
		if cookie.Name == SessionCookie && cookie.Value != "" {
			token = cookie.Value
			break
		}
	}
	if token == "" {
		return credentialMissing
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		// Not a JWT we can read; let the server decide.
		return credentialPresent
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return credentialPresent
	}
	if !exp.After(now) {
		return credentialExpired
	}
	return credentialPresent
}

// GetAuthUser returns the current user's profile, or nil when nobody is
// logged in. Transport and server failures are returned as errors.
func (c *Client) GetAuthUser(ctx context.Context) (*model.User, error) {
	switch c.credential(time.Now()) {
	case credentialMissing:
		return nil, nil
	case credentialExpired:
		log.Printf("[API] GetAuthUser: session cookie expired, skipping request")
		return nil, nil
	}

	var resp model.AuthResponse
	if err := c.get(ctx, "/auth/me", &resp); err != nil {
		if errors.Is(err, model.ErrUnauthorized) {
			return nil, nil
		}
		return nil, err
	}
	return resp.User, nil
}

func (c *Client) Signup(ctx context.Context, req *model.SignupRequest) (*model.User, error) {
	var resp model.AuthResponse
	if err := c.post(ctx, "/auth/signup", req, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (c *Client) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	var resp model.AuthResponse
	if err := c.post(ctx, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.post(ctx, "/auth/logout", nil, nil)
}

func (c *Client) CompleteOnboarding(ctx context.Context, req *model.OnboardingRequest) (*model.User, error) {
	var resp model.AuthResponse
	if err := c.post(ctx, "/auth/onboarding", req, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}
