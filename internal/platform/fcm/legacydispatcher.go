// Package fcm delivers push notifications through Firebase Cloud Messaging.
package fcm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tinywideclouds/go-firebase-push/internal/payload"
	"github.com/tinywideclouds/go-firebase-push/pkg/push"
)

// LegacyDispatcher sends one message per call to the FCM legacy HTTP
// endpoint, authorized with the server key.
// It holds no mutable state and is safe for concurrent use.
type LegacyDispatcher struct {
	cred            push.Credential
	transport       push.Transport
	notifier        push.Notifier
	defaultPriority string
	logger          *slog.Logger
}

// LegacyOption customizes a LegacyDispatcher.
type LegacyOption func(*LegacyDispatcher)

// WithDefaultPriority sets the priority used when a request has no override.
func WithDefaultPriority(priority string) LegacyOption {
	return func(d *LegacyDispatcher) {
		if priority != "" {
			d.defaultPriority = priority
		}
	}
}

// NewLegacyDispatcher binds the dispatcher to an already-loaded credential.
func NewLegacyDispatcher(
	cred push.Credential,
	transport push.Transport,
	notifier push.Notifier,
	logger *slog.Logger,
	opts ...LegacyOption,
) (*LegacyDispatcher, error) {
	if cred.ServerKey == "" {
		return nil, push.ErrMissingServerKey
	}
	if cred.EndpointURL == "" {
		return nil, push.ErrMissingEndpoint
	}
	if transport == nil {
		return nil, errors.New("transport is required")
	}
	if notifier == nil {
		return nil, errors.New("notifier is required")
	}

	d := &LegacyDispatcher{
		cred:            cred,
		transport:       transport,
		notifier:        notifier,
		defaultPriority: payload.DefaultPriority,
		logger:          logger.With("component", "FCMLegacyDispatcher"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Send delivers the notification and reports whether the gateway accepted it.
// Failures are reported to the notifier and never returned.
func (d *LegacyDispatcher) Send(ctx context.Context, token string, params push.Parameters) bool {
	err := d.Deliver(ctx, token, params)
	if err == nil {
		return true
	}
	report(d.logger, d.notifier, err)
	return false
}

// Deliver is Send with the failure kept as a *push.SendError.
// It does not notify.
func (d *LegacyDispatcher) Deliver(ctx context.Context, token string, params push.Parameters) error {
	if token == "" {
		return &push.SendError{Kind: push.KindCallerInput, Reason: "missing device token"}
	}

	body, err := payload.Build(token, params, payload.WithDefaultPriority(d.defaultPriority))
	if err != nil {
		return &push.SendError{Kind: push.KindCallerInput, Reason: err.Error()}
	}

	resp, err := d.transport.Post(ctx, d.cred.EndpointURL, d.headers(), body)
	if err != nil {
		return &push.SendError{Kind: push.KindTransport, Reason: err.Error()}
	}
	if resp == nil {
		return &push.SendError{Kind: push.KindTransport, Reason: "transport returned no response"}
	}

	result, err := interpret(resp)
	if err != nil {
		return err
	}

	d.logger.Debug("FCM accepted message", "message_id", result.MessageID)
	if result.RegistrationID != "" {
		d.logger.Info("FCM returned a canonical registration id for the token")
	}
	return nil
}

func (d *LegacyDispatcher) headers() map[string]string {
	return map[string]string{
		"Content-Type":  "application/json",
		"Authorization": d.cred.AuthorizationHeader(),
	}
}

// report logs a send failure and forwards transport and gateway failures to
// the notifier. Caller input failures stay silent apart from a debug line.
func report(logger *slog.Logger, notifier push.Notifier, err error) {
	var sendErr *push.SendError
	if !errors.As(err, &sendErr) {
		sendErr = &push.SendError{Kind: push.KindTransport, Reason: fmt.Sprint(err)}
	}

	if sendErr.Kind == push.KindCallerInput {
		logger.Debug("Push rejected before sending", "reason", sendErr.Reason)
		return
	}

	logger.Warn("Push notification not sent",
		"kind", sendErr.Kind.String(),
		"reason", sendErr.Reason,
		"status", sendErr.StatusCode,
	)
	notifier.Notice(sendErr.Report())
}
