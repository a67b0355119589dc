package config

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/illmade-knight/go-dataflow/pkg/messagepipeline"
	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"

	"github.com/tinywideclouds/go-firebase-push/pkg/push"
)

// Gateway modes.
const (
	ModeLegacy = "legacy"
	ModeV1     = "v1"
)

// Credential sources for legacy mode.
const (
	CredentialSourceConfig    = "config"
	CredentialSourceFirestore = "firestore"
)

type RedisConfig struct {
	Enabled    bool
	Addr       string
	Password   string
	DB         int
	MaxReports int64
}

// FirebaseConfig holds the gateway settings. It doubles as a
// push.ConfigAccessor when the credential source is "config".
type FirebaseConfig struct {
	Mode             string
	ServerKey        string
	Endpoint         string
	DefaultPriority  string
	CredentialSource string
	Timeout          time.Duration
	// ServiceAccountJSON is the decoded service account used in v1 mode.
	ServiceAccountJSON []byte
}

// Get implements push.ConfigAccessor.
func (f FirebaseConfig) Get(key string) string {
	switch key {
	case push.KeyServerKey:
		return f.ServerKey
	case push.KeyEndpoint:
		return f.Endpoint
	default:
		return ""
	}
}

// Config defines the *single*, authoritative configuration.
type Config struct {
	ProjectID              string
	ListenAddr             string
	TopicID                string
	SubscriptionID         string
	SubscriptionDLQTopicID string
	NumPipelineWorkers     int

	CorsConfig middleware.CorsConfig
	Redis      RedisConfig
	Firebase   FirebaseConfig

	PubsubConsumerConfig *messagepipeline.GooglePubsubConsumerConfig
}

// PipelineEnabled reports whether Pub/Sub ingestion is configured.
func (c *Config) PipelineEnabled() bool {
	return c.SubscriptionID != ""
}

// UpdateConfigWithEnvOverrides applies environment variables and final validation.
func UpdateConfigWithEnvOverrides(cfg *Config, logger *slog.Logger) (*Config, error) {
	logger.Debug("Applying environment variable overrides...")

	// 1. Apply Environment Overrides
	if val := os.Getenv("PROJECT_ID"); val != "" {
		logger.Debug("Overriding config value", "key", "PROJECT_ID", "source", "env")
		cfg.ProjectID = val
	}
	if val := os.Getenv("PORT"); val != "" {
		logger.Debug("Overriding config value", "key", "PORT", "source", "env")
		cfg.ListenAddr = ":" + val
	}
	if val := os.Getenv("TOPIC_ID"); val != "" {
		logger.Debug("Overriding config value", "key", "TOPIC_ID", "source", "env")
		cfg.TopicID = val
	}
	if val := os.Getenv("SUBSCRIPTION_ID"); val != "" {
		logger.Debug("Overriding config value", "key", "SUBSCRIPTION_ID", "source", "env")
		cfg.SubscriptionID = val
		cfg.PubsubConsumerConfig = messagepipeline.NewGooglePubsubConsumerDefaults(val)
	}
	if val := os.Getenv("SUBSCRIPTION_DLQ_TOPIC_ID"); val != "" {
		logger.Debug("Overriding config value", "key", "SUBSCRIPTION_DLQ_TOPIC_ID", "source", "env")
		cfg.SubscriptionDLQTopicID = val
	}
	if val := os.Getenv("NUM_PIPELINE_WORKERS"); val != "" {
		if workers, err := strconv.Atoi(val); err == nil && workers > 0 {
			logger.Debug("Overriding config value", "key", "NUM_PIPELINE_WORKERS", "source", "env")
			cfg.NumPipelineWorkers = workers
		}
	}

	// Redis Overrides
	if val := os.Getenv("REDIS_ADDR"); val != "" {
		cfg.Redis.Addr = val
		cfg.Redis.Enabled = true
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		cfg.Redis.Password = val
	}
	if val := os.Getenv("REDIS_DB"); val != "" {
		if db, err := strconv.Atoi(val); err == nil {
			cfg.Redis.DB = db
		}
	}
	if val := os.Getenv("REDIS_ENABLED"); val != "" {
		enabled, _ := strconv.ParseBool(val)
		cfg.Redis.Enabled = enabled
	}

	// Firebase Overrides
	if val := os.Getenv("FIREBASE_MODE"); val != "" {
		logger.Debug("Overriding config value", "key", "FIREBASE_MODE", "source", "env")
		cfg.Firebase.Mode = val
	}
	if val := os.Getenv("FIREBASE_SERVER_KEY"); val != "" {
		// Never log the value itself.
		logger.Debug("Overriding config value", "key", "FIREBASE_SERVER_KEY", "source", "env")
		cfg.Firebase.ServerKey = val
	}
	if val := os.Getenv("FIREBASE_ENDPOINT"); val != "" {
		logger.Debug("Overriding config value", "key", "FIREBASE_ENDPOINT", "source", "env")
		cfg.Firebase.Endpoint = val
	}
	if val := os.Getenv("FIREBASE_DEFAULT_PRIORITY"); val != "" {
		logger.Debug("Overriding config value", "key", "FIREBASE_DEFAULT_PRIORITY", "source", "env")
		cfg.Firebase.DefaultPriority = val
	}
	if val := os.Getenv("FIREBASE_CREDENTIAL_SOURCE"); val != "" {
		logger.Debug("Overriding config value", "key", "FIREBASE_CREDENTIAL_SOURCE", "source", "env")
		cfg.Firebase.CredentialSource = val
	}
	if val := os.Getenv("FIREBASE_TIMEOUT"); val != "" {
		timeout, err := time.ParseDuration(val)
		if err != nil {
			return nil, fmt.Errorf("invalid FIREBASE_TIMEOUT %q: %w", val, err)
		}
		logger.Debug("Overriding config value", "key", "FIREBASE_TIMEOUT", "source", "env")
		cfg.Firebase.Timeout = timeout
	}

	if val := os.Getenv("FIREBASE_SERVICE_ACCOUNT"); val != "" {
		decoded, err := base64.StdEncoding.DecodeString(val)
		if err != nil {
			return nil, fmt.Errorf("FIREBASE_SERVICE_ACCOUNT is not valid base64: %w", err)
		}
		logger.Debug("Overriding config value", "key", "FIREBASE_SERVICE_ACCOUNT", "source", "env")
		cfg.Firebase.ServiceAccountJSON = decoded
	}

	// CORS Overrides
	if corsOrigins := os.Getenv("CORS_ALLOWED_ORIGINS"); corsOrigins != "" {
		logger.Debug("Overriding config value", "key", "CORS_ALLOWED_ORIGINS", "source", "env")
		rawOrigins := strings.Split(corsOrigins, ",")
		var cleanOrigins []string
		for _, o := range rawOrigins {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				cleanOrigins = append(cleanOrigins, trimmed)
			}
		}
		cfg.CorsConfig.AllowedOrigins = cleanOrigins
	}

	// 2. Final Validation
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("project_id is required (set via YAML or PROJECT_ID env var)")
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.NumPipelineWorkers <= 0 {
		cfg.NumPipelineWorkers = 1
	}
	if cfg.Redis.MaxReports <= 0 {
		cfg.Redis.MaxReports = 1000
	}

	if cfg.Firebase.Mode == "" {
		cfg.Firebase.Mode = ModeLegacy
	}
	if cfg.Firebase.Mode != ModeLegacy && cfg.Firebase.Mode != ModeV1 {
		return nil, fmt.Errorf("firebase.mode must be %q or %q, got %q", ModeLegacy, ModeV1, cfg.Firebase.Mode)
	}
	if cfg.Firebase.CredentialSource == "" {
		cfg.Firebase.CredentialSource = CredentialSourceConfig
	}
	if cfg.Firebase.CredentialSource != CredentialSourceConfig && cfg.Firebase.CredentialSource != CredentialSourceFirestore {
		return nil, fmt.Errorf("firebase.credential_source must be %q or %q, got %q",
			CredentialSourceConfig, CredentialSourceFirestore, cfg.Firebase.CredentialSource)
	}
	if cfg.Firebase.Endpoint == "" {
		cfg.Firebase.Endpoint = push.DefaultEndpoint
	}
	if cfg.Firebase.Timeout <= 0 {
		cfg.Firebase.Timeout = 10 * time.Second
	}

	if cfg.PubsubConsumerConfig == nil && cfg.SubscriptionID != "" {
		cfg.PubsubConsumerConfig = messagepipeline.NewGooglePubsubConsumerDefaults(cfg.SubscriptionID)
	}

	logger.Debug("Configuration finalized and validated successfully")
	return cfg, nil
}
