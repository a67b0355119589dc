package push

import (
	"fmt"
)

// ErrorKind classifies why a send failed.
type ErrorKind int

const (
	// KindCallerInput is a missing token or an invalid parameter set.
	// Detected locally; no network call was made.
	KindCallerInput ErrorKind = iota + 1
	// KindTransport means no gateway response was received.
	KindTransport
	// KindGateway means the gateway answered but rejected the message.
	KindGateway
)

func (k ErrorKind) String() string {
	switch k {
	case KindCallerInput:
		return "caller_input"
	case KindTransport:
		return "transport"
	case KindGateway:
		return "gateway"
	default:
		return "unknown"
	}
}

func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *ErrorKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "caller_input":
		*k = KindCallerInput
	case "transport":
		*k = KindTransport
	case "gateway":
		*k = KindGateway
	default:
		return fmt.Errorf("unknown error kind %q", text)
	}
	return nil
}

// Module and service identifiers attached to every Report.
const (
	ModuleName  = "Firebase Notification"
	ServiceName = "firebase"
)

// SendError is the typed failure produced inside the send path.
type SendError struct {
	Kind       ErrorKind
	Reason     string
	StatusCode int
}

func (e *SendError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s failure (status %d): %s", e.Kind, e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("%s failure: %s", e.Kind, e.Reason)
}

// Report converts the error into the structured form handed to a Notifier.
func (e *SendError) Report() Report {
	return Report{
		Kind:       e.Kind,
		Module:     ModuleName,
		Service:    ServiceName,
		Reason:     e.Reason,
		StatusCode: e.StatusCode,
	}
}

// Report is a structured failure notice.
type Report struct {
	Kind       ErrorKind `json:"kind"`
	Module     string    `json:"module"`
	Service    string    `json:"service"`
	Reason     string    `json:"reason"`
	StatusCode int       `json:"status_code,omitempty"`
}

// Message renders the report as "<module>:  <error>".
func (r Report) Message() string {
	return fmt.Sprintf("%s:  %s", r.Module, r.Reason)
}
