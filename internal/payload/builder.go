package payload

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tinywideclouds/go-firebase-push/pkg/push"
)

// DefaultPriority is used unless the parameters carry a priority override.
const DefaultPriority = "high"

// ErrRejected is returned by Build when IsValid fails.
var ErrRejected = errors.New("notification parameters rejected")

type options struct {
	defaultPriority string
}

// Option customizes Build.
type Option func(*options)

// WithDefaultPriority replaces DefaultPriority. Empty values are ignored.
func WithDefaultPriority(priority string) Option {
	return func(o *options) {
		if priority != "" {
			o.defaultPriority = priority
		}
	}
}

// notificationFields is the presence-to-field table for the optional display
// parameters carried inside the "notification" block.
var notificationFields = []struct {
	key   string
	value func(p push.Parameters) (any, bool)
}{
	{"icon", func(p push.Parameters) (any, bool) { return optional(p.Icon) }},
	{"sound", func(p push.Parameters) (any, bool) { return optional(p.Sound) }},
	{"click_action", func(p push.Parameters) (any, bool) { return optional(p.ClickAction) }},
	{"badge", func(p push.Parameters) (any, bool) { return p.Badge, p.Badge != nil }},
}

// Build validates the parameters and serializes the gateway request body.
func Build(token string, p push.Parameters, opts ...Option) ([]byte, error) {
	msg, err := compose(token, p, opts...)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return body, nil
}

// compose merges mandatory and optional fields. Later steps win on key
// collisions: priority override, notification, content_available, data.
func compose(token string, p push.Parameters, opts ...Option) (map[string]any, error) {
	if !IsValid(p) {
		return nil, ErrRejected
	}

	o := options{defaultPriority: DefaultPriority}
	for _, opt := range opts {
		opt(&o)
	}

	msg := map[string]any{
		"to":       token,
		"priority": o.defaultPriority,
	}

	if p.Priority != nil {
		msg["priority"] = *p.Priority
	}

	if hasAlert(p) {
		notification := map[string]any{
			"title": *p.Title,
			"body":  *p.Body,
		}
		for _, field := range notificationFields {
			if v, ok := field.value(p); ok {
				notification[field.key] = v
			}
		}
		msg["notification"] = notification
	}

	if p.ContentAvailable != nil {
		msg["content_available"] = *p.ContentAvailable
	}

	if p.Data != nil && DataKeysAllowed(p.Data) {
		msg["data"] = p.Data
	}

	return msg, nil
}

func optional(s *string) (any, bool) {
	if s == nil {
		return nil, false
	}
	return *s, true
}
