package pipeline

import (
	"context"
	"log/slog"

	"github.com/illmade-knight/go-dataflow/pkg/messagepipeline"
	"github.com/tinywideclouds/go-firebase-push/pkg/push"
)

// NewProcessor hands each request to the sender exactly once.
//
// It always returns nil: a failed push has already been reported by the
// sender, and returning an error would make Pub/Sub redeliver the message,
// which amounts to a retry.
func NewProcessor(
	sender push.Sender,
	logger *slog.Logger,
) messagepipeline.StreamProcessor[push.Request] {

	return func(ctx context.Context, original messagepipeline.Message, request *push.Request) error {
		procLogger := logger.With("pubsub_msg_id", original.ID)

		if sender.Send(ctx, request.Token, request.Parameters) {
			procLogger.Info("Push notification sent")
			return nil
		}

		procLogger.Info("Push notification not sent; dropping message")
		return nil
	}
}
