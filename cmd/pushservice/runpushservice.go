package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"

	firebase "firebase.google.com/go/v4"

	"github.com/illmade-knight/go-dataflow/pkg/messagepipeline"
	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"

	"github.com/tinywideclouds/go-firebase-push/internal/notice"
	"github.com/tinywideclouds/go-firebase-push/internal/platform/fcm"
	"github.com/tinywideclouds/go-firebase-push/internal/platform/httptransport"
	"github.com/tinywideclouds/go-firebase-push/internal/storage/cache"
	fsStore "github.com/tinywideclouds/go-firebase-push/internal/storage/firestore"
	"github.com/tinywideclouds/go-firebase-push/pkg/push"

	"github.com/tinywideclouds/go-firebase-push/pushservice"
	"github.com/tinywideclouds/go-firebase-push/pushservice/config"

	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gopkg.in/yaml.v3"
)

//go:embed local.yaml
var configFile []byte

func main() {
	var logLevel slog.Level
	switch os.Getenv("LOG_LEVEL") {
	case "debug", "DEBUG":
		logLevel = slog.LevelDebug
	case "info", "INFO":
		logLevel = slog.LevelInfo
	case "warn", "WARN":
		logLevel = slog.LevelWarn
	case "error", "ERROR":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})).With("service", "go-firebase-push")
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Config Loading ---
	var yamlCfg config.YamlConfig
	if err := yaml.Unmarshal(configFile, &yamlCfg); err != nil {
		logger.Error("Failed to unmarshal embedded yaml config", "err", err)
		os.Exit(1)
	}
	baseCfg, err := config.NewConfigFromYaml(&yamlCfg, logger)
	if err != nil {
		logger.Error("Failed to map yaml config", "err", err)
		os.Exit(1)
	}
	cfg, err := config.UpdateConfigWithEnvOverrides(baseCfg, logger)
	if err != nil {
		logger.Error("Config failed", "err", err)
		os.Exit(1)
	}

	// --- Failure Reporting ---
	notifiers := notice.Multi{notice.NewLogNotifier(logger)}

	var journal *cache.ReportJournal
	if cfg.Redis.Enabled {
		logger.Info("Initializing Redis report journal...", "addr", cfg.Redis.Addr)
		redisClient, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Error("Failed to connect to Redis", "err", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		journal = cache.NewReportJournal(redisClient, cfg.Redis.MaxReports, logger)
		notifiers = append(notifiers, journal)
	}

	// --- Sender ---
	sender, err := newSender(ctx, cfg, notifiers, logger)
	if err != nil {
		logger.Error("Failed to initialize sender", "mode", cfg.Firebase.Mode, "err", err)
		os.Exit(1)
	}

	// --- Auth ---
	identityURL := os.Getenv("IDENTITY_SERVICE_URL")
	if identityURL == "" {
		identityURL = "http://localhost:3000"
	}
	jwksURL, err := middleware.DiscoverAndValidateJWTConfig(identityURL, middleware.RSA256, logger)
	if err != nil {
		logger.Error("JWT discovery failed", "identity_url", identityURL, "err", err)
		os.Exit(1)
	}
	authMiddleware, err := middleware.NewJWKSAuthMiddleware(jwksURL, logger)
	if err != nil {
		logger.Error("Failed to create auth middleware", "err", err)
		os.Exit(1)
	}

	// --- Consumer (optional) ---
	var consumer messagepipeline.MessageConsumer
	if cfg.PipelineEnabled() {
		psClient, err := pubsub.NewClient(ctx, cfg.ProjectID)
		if err != nil {
			logger.Error("PubSub client failed", "err", err)
			os.Exit(1)
		}
		defer psClient.Close()

		consumer, err = newIngestionConsumer(ctx, cfg, psClient, logger)
		if err != nil {
			logger.Error("Failed to create ingestion consumer", "err", err)
			os.Exit(1)
		}
	}

	service, err := pushservice.New(cfg, consumer, sender, journal, authMiddleware, logger)
	if err != nil {
		logger.Error("Service creation failed", "err", err)
		os.Exit(1)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = service.Shutdown(shutdownCtx)
	}()

	logger.Info("Starting service...", "mode", cfg.Firebase.Mode, "pipeline", cfg.PipelineEnabled())
	if err := service.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Service shutdown with error", "err", err)
		os.Exit(1)
	}
}

// newSender builds the dispatcher for the configured gateway mode.
func newSender(ctx context.Context, cfg *config.Config, notifier push.Notifier, logger *slog.Logger) (push.Sender, error) {
	switch cfg.Firebase.Mode {
	case config.ModeV1:
		var opts []option.ClientOption
		if len(cfg.Firebase.ServiceAccountJSON) > 0 {
			opts = append(opts, option.WithCredentialsJSON(cfg.Firebase.ServiceAccountJSON))
		}
		fbApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
		}
		client, err := fbApp.Messaging(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create messaging client: %w", err)
		}
		return fcm.NewSDKDispatcher(client, notifier, cfg.Firebase.DefaultPriority, logger), nil

	default:
		accessor, err := credentialAccessor(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		cred, err := push.LoadCredential(accessor)
		if err != nil {
			return nil, fmt.Errorf("failed to load gateway credential: %w", err)
		}
		logger.Info("Gateway credential loaded", "credential", cred, "source", cfg.Firebase.CredentialSource)

		return fcm.NewLegacyDispatcher(
			cred,
			httptransport.New(cfg.Firebase.Timeout),
			notifier,
			logger,
			fcm.WithDefaultPriority(cfg.Firebase.DefaultPriority),
		)
	}
}

// credentialAccessor returns the ConfigAccessor for the configured source.
// A Firestore snapshot is read once; the credential is fixed for the process lifetime.
func credentialAccessor(ctx context.Context, cfg *config.Config, logger *slog.Logger) (push.ConfigAccessor, error) {
	if cfg.Firebase.CredentialSource != config.CredentialSourceFirestore {
		return cfg.Firebase, nil
	}

	fsClient, err := firestore.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("firestore client failed: %w", err)
	}
	defer fsClient.Close()

	settings, err := fsStore.NewSettingsStore(fsClient).Load(ctx)
	if err != nil {
		return nil, err
	}
	if settings.Get(push.KeyEndpoint) == "" {
		logger.Debug("Stored settings have no endpoint, using configured endpoint")
		settings[push.KeyEndpoint] = cfg.Firebase.Endpoint
	}
	return settings, nil
}

func newIngestionConsumer(ctx context.Context, cfg *config.Config, psClient *pubsub.Client, logger *slog.Logger) (messagepipeline.MessageConsumer, error) {
	sub := convertPubsub(cfg.ProjectID, cfg.PubsubConsumerConfig.SubscriptionID, "subscriptions")
	topicID := convertPubsub(cfg.ProjectID, cfg.TopicID, "topics")

	subConfig := &pubsubpb.Subscription{
		Name:                  sub,
		Topic:                 topicID,
		AckDeadlineSeconds:    10,
		EnableMessageOrdering: false,
	}
	if cfg.SubscriptionDLQTopicID != "" {
		subConfig.DeadLetterPolicy = &pubsubpb.DeadLetterPolicy{
			DeadLetterTopic:     convertPubsub(cfg.ProjectID, cfg.SubscriptionDLQTopicID, "topics"),
			MaxDeliveryAttempts: 5,
		}
	}
	logger.Debug("Ensuring subscription exists", "sub", subConfig.Name, "topic", subConfig.Topic)
	_, err := psClient.SubscriptionAdminClient.CreateSubscription(ctx, subConfig)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			logger.Debug("Subscription already exists, skipping creation", "sub", subConfig.Name)
		} else {
			logger.Error("Failed to create subscription", "sub", subConfig.Name, "err", err)
			return nil, fmt.Errorf("could not create sub: %s", sub)
		}
	}

	return messagepipeline.NewGooglePubsubConsumer(
		messagepipeline.NewGooglePubsubConsumerDefaults(subConfig.Name), psClient, logger,
	)
}

type PS string

func convertPubsub(project, id string, ps PS) string {
	return fmt.Sprintf("projects/%s/%s/%s", project, ps, id)
}
