package pipeline_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/illmade-knight/go-dataflow/pkg/messagepipeline"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tinywideclouds/go-firebase-push/internal/pipeline"
	"github.com/tinywideclouds/go-firebase-push/pkg/push"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, token string, params push.Parameters) bool {
	return m.Called(ctx, token, params).Bool(0)
}

func TestProcessor(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()

	request := &push.Request{
		Token:      "T1",
		Parameters: push.Parameters{Title: push.String("Hi"), Body: push.String("There")},
	}

	t.Run("Delivered", func(t *testing.T) {
		sender := new(mockSender)
		sender.On("Send", mock.Anything, "T1", request.Parameters).Return(true).Once()

		processor := pipeline.NewProcessor(sender, logger)
		err := processor(ctx, messagepipeline.Message{}, request)

		require.NoError(t, err)
		sender.AssertExpectations(t)
	})

	t.Run("Failure is acknowledged, not retried", func(t *testing.T) {
		sender := new(mockSender)
		sender.On("Send", mock.Anything, "T1", request.Parameters).Return(false).Once()

		processor := pipeline.NewProcessor(sender, logger)
		err := processor(ctx, messagepipeline.Message{}, request)

		require.NoError(t, err)
		sender.AssertNumberOfCalls(t, "Send", 1)
	})
}
