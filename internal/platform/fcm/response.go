package fcm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/tinywideclouds/go-firebase-push/pkg/push"
)

// Common gateway error codes.
// See https://firebase.google.com/docs/cloud-messaging/http-server-ref#error-codes
const (
	ErrorCodeMissingRegistration = "MissingRegistration"
	ErrorCodeInvalidRegistration = "InvalidRegistration"
	ErrorCodeNotRegistered       = "NotRegistered"
	ErrorCodeMismatchSenderID    = "MismatchSenderId"
	ErrorCodeUnavailable         = "Unavailable"
)

var errNoResults = errors.New("response has no results")

// gatewayResponse is the legacy HTTP API reply for a single-token send.
type gatewayResponse struct {
	MulticastID  int64           `json:"multicast_id"`
	Success      int             `json:"success"`
	Failure      int             `json:"failure"`
	CanonicalIDs int             `json:"canonical_ids"`
	Results      []gatewayResult `json:"results"`
}

type gatewayResult struct {
	MessageID      string `json:"message_id"`
	RegistrationID string `json:"registration_id"`
	// Error is a pointer so that a present-but-empty field still counts.
	Error *string `json:"error"`
}

// firstResult decodes the body and returns results[0].
// Only one token is addressed per request, so only one result is expected.
func firstResult(body []byte) (*gatewayResult, error) {
	var resp gatewayResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, errNoResults
	}
	return &resp.Results[0], nil
}

// interpret maps a gateway reply to nil (delivered) or a KindGateway error.
func interpret(resp *push.Response) (*gatewayResult, error) {
	result, parseErr := firstResult(resp.Body)

	if resp.StatusCode != http.StatusOK {
		reason := fmt.Sprintf("unexpected status %d", resp.StatusCode)
		if parseErr == nil && result.Error != nil {
			reason = *result.Error
		}
		return nil, &push.SendError{Kind: push.KindGateway, Reason: reason, StatusCode: resp.StatusCode}
	}

	if parseErr != nil {
		return nil, &push.SendError{
			Kind:       push.KindGateway,
			Reason:     fmt.Sprintf("malformed gateway response: %v", parseErr),
			StatusCode: resp.StatusCode,
		}
	}

	if result.Error != nil {
		return nil, &push.SendError{Kind: push.KindGateway, Reason: *result.Error, StatusCode: resp.StatusCode}
	}

	return result, nil
}
