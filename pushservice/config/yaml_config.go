package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/illmade-knight/go-dataflow/pkg/messagepipeline"
	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"
)

type YamlCorsConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	Role           string   `yaml:"role"`
}

type YamlRedisConfig struct {
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	Enabled    bool   `yaml:"enabled"`
	MaxReports int64  `yaml:"max_reports"`
}

type YamlFirebaseConfig struct {
	Mode             string `yaml:"mode"`
	ServerKey        string `yaml:"server_key"`
	Endpoint         string `yaml:"endpoint"`
	DefaultPriority  string `yaml:"default_priority"`
	CredentialSource string `yaml:"credential_source"`
	Timeout          string `yaml:"timeout"`
}

// YamlConfig is the structure that mirrors the raw config.yaml file.
type YamlConfig struct {
	ProjectID              string             `yaml:"project_id"`
	ListenAddr             string             `yaml:"listen_addr"`
	TopicID                string             `yaml:"topic_id"`
	SubscriptionID         string             `yaml:"subscription_id"`
	SubscriptionDLQTopicID string             `yaml:"subscription_dlq_topic_id"`
	CorsConfig             YamlCorsConfig     `yaml:"cors"`
	RedisConfig            YamlRedisConfig    `yaml:"redis"`
	FirebaseConfig         YamlFirebaseConfig `yaml:"firebase"`
	NumPipelineWorkers     int                `yaml:"num_pipeline_workers"`
}

// NewConfigFromYaml converts the YamlConfig into a clean, base Config struct.
func NewConfigFromYaml(baseCfg *YamlConfig, logger *slog.Logger) (*Config, error) {
	logger.Debug("Mapping YAML config to base config struct")

	var timeout time.Duration
	if baseCfg.FirebaseConfig.Timeout != "" {
		parsed, err := time.ParseDuration(baseCfg.FirebaseConfig.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid firebase.timeout %q: %w", baseCfg.FirebaseConfig.Timeout, err)
		}
		timeout = parsed
	}

	cfg := &Config{
		ProjectID:      baseCfg.ProjectID,
		ListenAddr:     baseCfg.ListenAddr,
		TopicID:        baseCfg.TopicID,
		SubscriptionID: baseCfg.SubscriptionID,
		CorsConfig: middleware.CorsConfig{
			AllowedOrigins: baseCfg.CorsConfig.AllowedOrigins,
			Role:           middleware.CorsRole(baseCfg.CorsConfig.Role),
		},
		Redis: RedisConfig{
			Addr:       baseCfg.RedisConfig.Addr,
			Password:   baseCfg.RedisConfig.Password,
			DB:         baseCfg.RedisConfig.DB,
			Enabled:    baseCfg.RedisConfig.Enabled,
			MaxReports: baseCfg.RedisConfig.MaxReports,
		},
		Firebase: FirebaseConfig{
			Mode:             baseCfg.FirebaseConfig.Mode,
			ServerKey:        baseCfg.FirebaseConfig.ServerKey,
			Endpoint:         baseCfg.FirebaseConfig.Endpoint,
			DefaultPriority:  baseCfg.FirebaseConfig.DefaultPriority,
			CredentialSource: baseCfg.FirebaseConfig.CredentialSource,
			Timeout:          timeout,
		},
		SubscriptionDLQTopicID: baseCfg.SubscriptionDLQTopicID,
		NumPipelineWorkers:     baseCfg.NumPipelineWorkers,
	}

	if cfg.SubscriptionID != "" {
		cfg.PubsubConsumerConfig = messagepipeline.NewGooglePubsubConsumerDefaults(cfg.SubscriptionID)
	}

	logger.Debug("YAML config mapping complete",
		"project_id", cfg.ProjectID,
		"listen_addr", cfg.ListenAddr,
		"subscription_id", cfg.SubscriptionID,
		"firebase_mode", cfg.Firebase.Mode,
	)

	return cfg, nil
}
