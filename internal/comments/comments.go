// Package comments calls the downstream comment service to clean up
// comments orphaned by an image delete.
package comments

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrUpstream indicates the comment service call failed; the upstream status
// is carried in the wrapped message.
var ErrUpstream = errors.New("comment service call failed")

// Client removes comments for deleted images.
type Client interface {
	DeleteForImage(ctx context.Context, imageID int64) error
}

// HTTPClient is the direct comment-service client.
type HTTPClient struct {
	base   string
	client *http.Client
}

// NewHTTPClient creates a comment client against the given base URL.
func NewHTTPClient(base string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		base:   base,
		client: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) DeleteForImage(ctx context.Context, imageID int64) error {
	target := fmt.Sprintf("%s/api/comments/image/%d", c.base, imageID)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, target, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	return nil
}
