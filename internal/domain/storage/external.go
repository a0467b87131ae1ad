package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ExternalClient talks to the external object store over plain HTTP. Objects
// are written under generated keys; the store returns (or we derive) the
// absolute URL that becomes the locator reference, verbatim.
type ExternalClient struct {
	baseURL string
	client  *http.Client
}

func NewExternalClient(baseURL string) *ExternalClient {
	return &ExternalClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Put uploads the payload and returns its absolute URL.
func (c *ExternalClient) Put(ctx context.Context, data []byte) (string, error) {
	url := fmt.Sprintf("%s/o/%s", c.baseURL, uuid.New().String())

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("external put: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: put status %d", ErrBackendUnavailable, resp.StatusCode)
	}
	return url, nil
}

// Get downloads the object at url. Transport and server errors surface as
// ErrBackendUnavailable; a 404 means the object is gone.
func (c *ExternalClient) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("external get: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: get status %d", ErrBackendUnavailable, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Delete removes the object at url. A 404 is success — the delete path must
// stay idempotent end to end.
func (c *ExternalClient) Delete(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("external delete: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound && (resp.StatusCode < 200 || resp.StatusCode >= 300) {
		return fmt.Errorf("%w: delete status %d", ErrBackendUnavailable, resp.StatusCode)
	}
	return nil
}
