// Package pipeline contains the message processing components that feed
// push requests from Pub/Sub into a push.Sender.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/illmade-knight/go-dataflow/pkg/messagepipeline"
	"github.com/tinywideclouds/go-firebase-push/pkg/push"
)

// PushRequestTransformer is a dataflow Transformer that unmarshals a raw
// message payload into a push.Request.
//
// Only structural problems (malformed JSON) are rejected here. Semantic checks
// (empty token, invalid parameter combination) belong to the dispatcher so
// that every entry point applies the same rules.
func PushRequestTransformer(
	_ context.Context,
	msg *messagepipeline.Message,
) (*push.Request, bool, error) {
	var req push.Request

	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		// skip=true lets the StreamingService handle the Nack/DLQ logic.
		return nil, true, fmt.Errorf("failed to unmarshal push request from message %s: %w", msg.ID, err)
	}

	return &req, false, nil
}
