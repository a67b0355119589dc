package fcm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"firebase.google.com/go/v4/messaging"
	"github.com/tinywideclouds/go-firebase-push/internal/payload"
	"github.com/tinywideclouds/go-firebase-push/pkg/push"
)

// MessagingClient defines the subset of the Firebase Messaging API we use.
// *messaging.Client satisfies it; tests substitute a mock.
type MessagingClient interface {
	Send(ctx context.Context, msg *messaging.Message) (string, error)
}

// SDKDispatcher sends through the Firebase Admin SDK (HTTP v1 API).
// It applies the same validation rules as LegacyDispatcher.
type SDKDispatcher struct {
	client          MessagingClient
	notifier        push.Notifier
	defaultPriority string
	logger          *slog.Logger
}

func NewSDKDispatcher(client MessagingClient, notifier push.Notifier, defaultPriority string, logger *slog.Logger) *SDKDispatcher {
	if defaultPriority == "" {
		defaultPriority = payload.DefaultPriority
	}
	return &SDKDispatcher{
		client:          client,
		notifier:        notifier,
		defaultPriority: defaultPriority,
		logger:          logger.With("component", "FCMSDKDispatcher"),
	}
}

func (d *SDKDispatcher) Send(ctx context.Context, token string, params push.Parameters) bool {
	err := d.Deliver(ctx, token, params)
	if err == nil {
		return true
	}
	report(d.logger, d.notifier, err)
	return false
}

// Deliver returns nil or a *push.SendError.
func (d *SDKDispatcher) Deliver(ctx context.Context, token string, params push.Parameters) error {
	if token == "" {
		return &push.SendError{Kind: push.KindCallerInput, Reason: "missing device token"}
	}
	if !payload.IsValid(params) {
		return &push.SendError{Kind: push.KindCallerInput, Reason: payload.ErrRejected.Error()}
	}

	msg, err := d.toMessage(token, params)
	if err != nil {
		return &push.SendError{Kind: push.KindCallerInput, Reason: err.Error()}
	}

	id, err := d.client.Send(ctx, msg)
	if err != nil {
		return &push.SendError{Kind: classify(err), Reason: err.Error()}
	}

	d.logger.Debug("FCM accepted message", "message_id", id)
	return nil
}

func (d *SDKDispatcher) toMessage(token string, p push.Parameters) (*messaging.Message, error) {
	priority := d.defaultPriority
	if p.Priority != nil {
		priority = *p.Priority
	}
	if priority != "high" && priority != "normal" {
		return nil, fmt.Errorf("unsupported priority %q", priority)
	}

	msg := &messaging.Message{
		Token:   token,
		Android: &messaging.AndroidConfig{Priority: priority},
	}
	aps := &messaging.Aps{}
	apsSet := false

	if p.Title != nil && p.Body != nil && *p.Title != "" && *p.Body != "" {
		msg.Notification = &messaging.Notification{Title: *p.Title, Body: *p.Body}

		android := &messaging.AndroidNotification{}
		if p.Icon != nil {
			android.Icon = *p.Icon
		}
		if p.Sound != nil {
			android.Sound = *p.Sound
			aps.Sound = *p.Sound
			apsSet = true
		}
		if p.ClickAction != nil {
			android.ClickAction = *p.ClickAction
			aps.Category = *p.ClickAction
			apsSet = true
		}
		if badge, ok := badgeValue(p.Badge); ok {
			aps.Badge = &badge
			apsSet = true
		}
		msg.Android.Notification = android
	}

	if p.ContentAvailable != nil && *p.ContentAvailable {
		aps.ContentAvailable = true
		apsSet = true
	}

	if p.Data != nil && payload.DataKeysAllowed(p.Data) {
		data, err := stringifyData(p.Data)
		if err != nil {
			return nil, err
		}
		msg.Data = data
	}

	if apsSet {
		msg.APNS = &messaging.APNSConfig{Payload: &messaging.APNSPayload{Aps: aps}}
	}
	return msg, nil
}

// classify separates gateway answers (which carry an FCM error code) from
// failures to reach the gateway at all.
func classify(err error) push.ErrorKind {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return push.KindTransport
	}
	switch {
	case messaging.IsInvalidArgument(err),
		messaging.IsRegistrationTokenNotRegistered(err),
		messaging.IsUnregistered(err),
		messaging.IsSenderIDMismatch(err),
		messaging.IsQuotaExceeded(err),
		messaging.IsUnavailable(err),
		messaging.IsInternal(err),
		messaging.IsThirdPartyAuthError(err):
		return push.KindGateway
	}
	return push.KindTransport
}

// badgeValue accepts the number or numeric string forms of a badge.
func badgeValue(v any) (int, bool) {
	switch b := v.(type) {
	case int:
		return b, true
	case int64:
		return int(b), true
	case float64:
		return int(b), true
	case json.Number:
		n, err := b.Int64()
		return int(n), err == nil
	case string:
		n, err := strconv.Atoi(b)
		return n, err == nil
	}
	return 0, false
}

// stringifyData converts data values to strings; the v1 API only accepts
// string values. Non-string values are JSON-encoded.
func stringifyData(data map[string]any) (map[string]string, error) {
	out := make(map[string]string, len(data))
	for k, v := range data {
		if s, ok := v.(string); ok {
			out[k] = s
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("data key %q: %w", k, err)
		}
		out[k] = string(raw)
	}
	return out, nil
}
