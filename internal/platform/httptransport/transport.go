// Package httptransport posts gateway requests over HTTPS.
package httptransport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tinywideclouds/go-firebase-push/pkg/push"
)

// DefaultTimeout bounds a single POST when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// maxBodyBytes caps how much of a gateway reply is read.
const maxBodyBytes = 1 << 20

// Transport implements push.Transport with net/http.
type Transport struct {
	httpClient *http.Client
}

// New returns a Transport whose client gives up after timeout.
func New(timeout time.Duration) *Transport {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Transport{httpClient: &http.Client{Timeout: timeout}}
}

// NewWithClient uses the given client as-is.
func NewWithClient(client *http.Client) *Transport {
	return &Transport{httpClient: client}
}

// Post sends body to url. Any HTTP response is returned with a nil error;
// an error means no usable response was received.
func (t *Transport) Post(ctx context.Context, url string, headers map[string]string, body []byte) (*push.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}

	return &push.Response{StatusCode: resp.StatusCode, Body: respBody}, nil
}
