// Package users resolves user identities through the external identity
// service. The catalog does not own identity; a missing user indicates a
// referential gap between services, not a client mistake.
package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Domain errors for identity lookups.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUsernameNotFound = errors.New("username not found")
	ErrUpstream         = errors.New("identity service call failed")
)

// User is the identity projection the catalog needs.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Client resolves identities by id or username.
type Client interface {
	// FetchByID resolves a user by id, returning ErrUserNotFound when the
	// identity service has no such user.
	FetchByID(ctx context.Context, id int64) (*User, error)

	// FetchByName resolves a user by username, returning ErrUsernameNotFound
	// when the identity service has no such user.
	FetchByName(ctx context.Context, username string) (*User, error)
}

// HTTPClient is the direct identity-service client.
type HTTPClient struct {
	base   string
	client *http.Client
}

// NewHTTPClient creates an identity client against the given base URL.
func NewHTTPClient(base string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		base:   base,
		client: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) FetchByID(ctx context.Context, id int64) (*User, error) {
	return c.fetch(ctx, fmt.Sprintf("%s/api/users/id/%d", c.base, id), fmt.Errorf("%w: id %d", ErrUserNotFound, id))
}

func (c *HTTPClient) FetchByName(ctx context.Context, username string) (*User, error) {
	return c.fetch(
		ctx,
		fmt.Sprintf("%s/api/users/username/%s", c.base, url.PathEscape(username)),
		fmt.Errorf("%w: %q", ErrUsernameNotFound, username),
	)
}

func (c *HTTPClient) fetch(ctx context.Context, target string, notFound error) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, notFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var u User
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrUpstream, err)
	}

	return &u, nil
}
