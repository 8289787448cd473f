package api

import (
	"context"
	"net/http"

	"github.com/devtracker/devtracker-cli/internal/errors"
)

// Login authenticates with email and password.
//
// A SUCCESS status carries the bearer token for the session; NO_ORG means
// the credentials are valid but the user must join an organization before
// the session is usable. Neither outcome is persisted here; that decision
// belongs to the onboarding flow.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}

	var result LoginResult
	if err := c.call(ctx, http.MethodPost, "/api/auth/login", nil, body, &result, false); err != nil {
		if errors.IsValidation(err) || errors.IsAuthorization(err) {
			return nil, errors.Wrap(errors.ErrCodeAuthLoginFailed, errors.KindValidation, "login rejected", err).
				WithSuggestion("Check your email and password")
		}
		return nil, err
	}

	return &result, nil
}

// Signup registers a new account. It does not authenticate: only a
// subsequent login returns the token and the org-membership status.
func (c *Client) Signup(ctx context.Context, req SignupRequest) error {
	if err := c.call(ctx, http.MethodPost, "/api/auth/signup", nil, req, nil, false); err != nil {
		if errors.IsValidation(err) {
			return errors.Wrap(errors.ErrCodeAuthSignupRejected, errors.KindValidation, "signup rejected", err).
				WithSuggestion("The email or user id may already be taken")
		}
		return err
	}
	return nil
}
