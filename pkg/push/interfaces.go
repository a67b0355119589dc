package push

import (
	"context"
)

// Sender defines the public contract for delivering one push notification to
// one device token. All failure modes collapse to false; the cause is reported
// through a Notifier instead.
type Sender interface {
	// Send performs a single, synchronous delivery attempt.
	Send(ctx context.Context, token string, params Parameters) bool
}

// Transport performs the HTTP POST to the messaging gateway.
// A non-nil error means no response was received (timeout, connection error,
// cancellation). Any received response, whatever its status, is returned with
// a nil error.
type Transport interface {
	Post(ctx context.Context, url string, headers map[string]string, body []byte) (*Response, error)
}

// Notifier receives structured failure reports. Implementations must not block
// the caller for longer than it takes to hand the report off.
type Notifier interface {
	Notice(report Report)
}

// ConfigAccessor is a read-only view over stored configuration.
type ConfigAccessor interface {
	// Get returns the value for key, or "" if it is not set.
	Get(key string) string
}

// Response is the raw gateway reply.
type Response struct {
	StatusCode int
	Body       []byte
}
