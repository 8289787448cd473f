// Package api is the facade over the DevTracker REST API.
//
// It owns endpoint construction, bearer-token attachment, response decoding,
// and the mapping from HTTP outcomes to the client error taxonomy. It
// performs no retries; every call surfaces its raw outcome to the caller.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/devtracker/devtracker-cli/internal/errors"
	"github.com/devtracker/devtracker-cli/internal/log"
	"github.com/devtracker/devtracker-cli/internal/session"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:8080"

// Client is the DevTracker API client.
//
// The zero-value bearer source is the session store; WithToken binds an
// explicit token for calls made before a session is persisted (the
// onboarding flow attaches the pending login token this way).
type Client struct {
	baseURL    string
	httpClient *http.Client
	sessions   session.Store
	logger     *log.Logger

	// token, when non-empty, overrides the session store as bearer source.
	token string
}

// NewClient creates a new API client bound to a session store.
func NewClient(baseURL string, sessions session.Store, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		sessions:   sessions,
		logger:     logger,
	}
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// WithToken returns a client that authenticates with an explicit token
// instead of the session store. Authorization failures on such a client do
// not clear the session store: the rejected credential was never persisted.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

// bearer resolves the token to attach, and whether it came from the store.
func (c *Client) bearer() (token string, fromStore bool) {
	if c.token != "" {
		return c.token, false
	}
	if c.sessions == nil {
		return "", false
	}
	tok, ok := c.sessions.Token()
	if !ok {
		return "", false
	}
	return tok, true
}

// doRequest performs one HTTP request.
// authed controls whether a bearer token is attached.
func (c *Client) doRequest(ctx context.Context, method, path string, query map[string]string, body any, authed bool) (*http.Response, bool, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, false, errors.Wrap(errors.ErrCodeNetRequestFailed, errors.KindNetwork, "failed to marshal request body", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeNetRequestFailed, errors.KindNetwork, "failed to create request", err)
	}

	if len(query) > 0 {
		q := req.URL.Query()
		for k, v := range query {
			q.Set(k, v)
		}
		req.URL.RawQuery = q.Encode()
	}

	req.Header.Set("Content-Type", "application/json")

	tokenFromStore := false
	if authed {
		token, fromStore := c.bearer()
		if token == "" {
			return nil, false, errors.NewNoSessionError()
		}
		req.Header.Set("Authorization", "Bearer "+token)
		tokenFromStore = fromStore
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeNetRequestFailed, errors.KindNetwork, fmt.Sprintf("request to %s failed", path), err).
			WithSuggestion("Check that the DevTracker API is reachable").
			WithSuggestion("Verify the configured base URL: " + c.baseURL)
	}

	return resp, tokenFromStore, nil
}

// errorMessage extracts the {message} field from a non-2xx body, if present.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return ""
}

// parseResponse maps the HTTP outcome to the error taxonomy and decodes a
// 2xx body into target (target may be nil for empty responses).
//
// Authorization failures on store-backed requests clear the session store
// here, once, for every call path: a rejected token means the session is
// gone and the user must re-authenticate.
func (c *Client) parseResponse(resp *http.Response, tokenFromStore bool, target any) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if target == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return errors.Wrap(errors.ErrCodeNetBadResponse, errors.KindNetwork, "failed to decode response", err)
		}
		return nil
	}

	body, _ := io.ReadAll(resp.Body)
	message := errorMessage(body)

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		if tokenFromStore {
			c.invalidateSession()
			return errors.NewSessionExpiredError()
		}
		if message == "" {
			message = "access denied"
		}
		return errors.New(errors.ErrCodeAuthUnauthorized, errors.KindAuthorization, message)

	case http.StatusNotFound:
		if message == "" {
			message = "not found"
		}
		return errors.New(errors.ErrCodeNetUnexpectedCode, errors.KindNotFound, message)

	default:
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && message != "" {
			return errors.New(errors.ErrCodeNetUnexpectedCode, errors.KindValidation, message)
		}
		if message == "" {
			message = fmt.Sprintf("request failed with status %d", resp.StatusCode)
		}
		return errors.New(errors.ErrCodeNetUnexpectedCode, errors.KindNetwork, message).
			WithSuggestion("Try again in a moment")
	}
}

// invalidateSession clears the persisted session after a 401/403.
func (c *Client) invalidateSession() {
	if c.sessions == nil {
		return
	}
	c.logger.Warn("server rejected session token, clearing session")
	if err := c.sessions.Clear(); err != nil {
		c.logger.WithError(err).Warn("failed to clear session")
	}
}

// call is the shared request/parse pipeline.
func (c *Client) call(ctx context.Context, method, path string, query map[string]string, body, target any, authed bool) error {
	resp, tokenFromStore, err := c.doRequest(ctx, method, path, query, body, authed)
	if err != nil {
		return err
	}
	return c.parseResponse(resp, tokenFromStore, target)
}
