package push

import (
	"errors"
	"log/slog"
)

// Keys read from a ConfigAccessor.
const (
	KeyServerKey = "server_key"
	KeyEndpoint  = "endpoint"
)

// DefaultEndpoint is the FCM legacy HTTP send endpoint.
const DefaultEndpoint = "https://fcm.googleapis.com/fcm/send"

var (
	ErrMissingServerKey = errors.New("firebase server key is not configured")
	ErrMissingEndpoint  = errors.New("firebase endpoint is not configured")
)

// Credential authorizes requests against the gateway.
// Treat it as immutable once loaded.
type Credential struct {
	ServerKey   string
	EndpointURL string
}

// LoadCredential reads the server key and endpoint from an accessor.
func LoadCredential(accessor ConfigAccessor) (Credential, error) {
	cred := Credential{
		ServerKey:   accessor.Get(KeyServerKey),
		EndpointURL: accessor.Get(KeyEndpoint),
	}
	if cred.ServerKey == "" {
		return Credential{}, ErrMissingServerKey
	}
	if cred.EndpointURL == "" {
		return Credential{}, ErrMissingEndpoint
	}
	return cred, nil
}

// AuthorizationHeader returns the value of the Authorization header.
func (c Credential) AuthorizationHeader() string {
	return "key=" + c.ServerKey
}

// String never includes the server key.
func (c Credential) String() string {
	return "Credential{endpoint=" + c.EndpointURL + ", server_key=REDACTED}"
}

// LogValue keeps the server key out of slog output.
func (c Credential) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("endpoint", c.EndpointURL),
		slog.String("server_key", "REDACTED"),
	)
}

// StaticConfig is an in-memory ConfigAccessor.
type StaticConfig map[string]string

func (c StaticConfig) Get(key string) string {
	return c[key]
}
