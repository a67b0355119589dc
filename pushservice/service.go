package pushservice

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/illmade-knight/go-dataflow/pkg/messagepipeline"
	"github.com/tinywideclouds/go-microservice-base/pkg/microservice"
	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"

	"github.com/tinywideclouds/go-firebase-push/internal/api"
	"github.com/tinywideclouds/go-firebase-push/internal/pipeline"
	"github.com/tinywideclouds/go-firebase-push/internal/storage/cache"
	"github.com/tinywideclouds/go-firebase-push/pkg/push"
	"github.com/tinywideclouds/go-firebase-push/pushservice/config"
)

type Wrapper struct {
	*microservice.BaseServer
	pipelineService *messagepipeline.StreamingService[push.Request]
	journal         *cache.ReportJournal
	logger          *slog.Logger
}

// New assembles the service.
// consumer may be nil, in which case only the HTTP entry point is served.
// journal may be nil when Redis is disabled.
func New(
	cfg *config.Config,
	consumer messagepipeline.MessageConsumer,
	sender push.Sender,
	journal *cache.ReportJournal,
	authMiddleware func(http.Handler) http.Handler,
	logger *slog.Logger,
) (*Wrapper, error) {
	if sender == nil {
		return nil, fmt.Errorf("sender cannot be nil")
	}

	// 1. Base Server
	baseServer := microservice.NewBaseServer(logger, cfg.ListenAddr)

	// 2. Pipeline (optional)
	var streamingService *messagepipeline.StreamingService[push.Request]
	if consumer != nil {
		processor := pipeline.NewProcessor(sender, logger)

		var err error
		streamingService, err = messagepipeline.NewStreamingService(
			messagepipeline.StreamingServiceConfig{NumWorkers: cfg.NumPipelineWorkers},
			consumer,
			pipeline.PushRequestTransformer,
			processor,
			logger,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create streaming service: %w", err)
		}
	}

	// 3. API
	var reports api.ReportReader
	if journal != nil {
		reports = journal
	}
	sendAPI := api.NewSendAPI(sender, reports, logger)

	// Register Routes
	mux := baseServer.Mux()
	corsMiddleware := middleware.NewCorsMiddleware(cfg.CorsConfig, logger)
	preflight := corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	mux.Handle("OPTIONS /api/v1/send", preflight)
	mux.Handle("POST /api/v1/send", corsMiddleware(authMiddleware(http.HandlerFunc(sendAPI.Send))))

	mux.Handle("OPTIONS /api/v1/reports", preflight)
	mux.Handle("GET /api/v1/reports", corsMiddleware(authMiddleware(http.HandlerFunc(sendAPI.RecentReports))))

	return &Wrapper{
		BaseServer:      baseServer,
		pipelineService: streamingService,
		journal:         journal,
		logger:          logger,
	}, nil
}

func (w *Wrapper) Start(ctx context.Context) error {
	if w.pipelineService != nil {
		w.logger.Info("Core processing pipeline starting...")
		if err := w.pipelineService.Start(ctx); err != nil {
			return fmt.Errorf("failed to start processing service: %w", err)
		}
	} else {
		w.logger.Info("No subscription configured, serving HTTP only.")
	}
	w.SetReady(true)
	w.logger.Info("Service is now ready.")
	return w.BaseServer.Start()
}

func (w *Wrapper) Shutdown(ctx context.Context) error {
	w.logger.Info("Shutting down service components...")
	var finalErr error
	if w.pipelineService != nil {
		if err := w.pipelineService.Stop(ctx); err != nil {
			w.logger.Error("Processing pipeline shutdown failed.", "err", err)
			finalErr = err
		}
	}
	if err := w.BaseServer.Shutdown(ctx); err != nil {
		w.logger.Error("HTTP server shutdown failed.", "err", err)
		finalErr = err
	}
	if w.journal != nil {
		w.journal.Flush()
	}
	w.logger.Info("Service shutdown complete.")
	return finalErr
}
