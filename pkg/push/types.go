// Package push contains the public domain model and contracts for sending
// push notifications through the Firebase Cloud Messaging gateway.
package push

// Request is one push addressed to a single device token.
// On the wire the parameters sit next to the token:
//
//	{"token": "abc", "title": "Hi", "body": "There", "data": {"id": 1}}
type Request struct {
	Token string `json:"token"`
	Parameters
}

// Parameters are the caller-supplied notification fields.
// A nil pointer (or nil map / nil Badge) means the field is absent.
type Parameters struct {
	Title            *string        `json:"title,omitempty"`
	Body             *string        `json:"body,omitempty"`
	Icon             *string        `json:"icon,omitempty"`
	Sound            *string        `json:"sound,omitempty"`
	Badge            any            `json:"badge,omitempty"`
	ClickAction      *string        `json:"click_action,omitempty"`
	ContentAvailable *bool          `json:"content_available,omitempty"`
	Priority         *string        `json:"priority,omitempty"`
	Data             map[string]any `json:"data"`
}

// String returns a pointer to s. It keeps Parameters literals short.
func String(s string) *string { return &s }

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }
