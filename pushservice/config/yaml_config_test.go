package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"
	"github.com/tinywideclouds/go-firebase-push/pushservice/config"
	"gopkg.in/yaml.v3"
)

func TestNewConfigFromYaml(t *testing.T) {
	logger := newTestLogger()

	t.Run("Success - maps all fields correctly", func(t *testing.T) {
		yamlCfg := &config.YamlConfig{
			ProjectID:              "yaml-project",
			ListenAddr:             ":9000",
			TopicID:                "yaml-topic",
			SubscriptionID:         "yaml-subscription",
			SubscriptionDLQTopicID: "yaml-dlq",
			NumPipelineWorkers:     5,
			CorsConfig: config.YamlCorsConfig{
				AllowedOrigins: []string{"http://yaml.com"},
				Role:           "editor",
			},
			RedisConfig: config.YamlRedisConfig{
				Addr:       "redis:6379",
				Enabled:    true,
				MaxReports: 200,
			},
			FirebaseConfig: config.YamlFirebaseConfig{
				Mode:             "legacy",
				ServerKey:        "yaml-key",
				Endpoint:         "https://yaml.endpoint/send",
				DefaultPriority:  "normal",
				CredentialSource: "firestore",
				Timeout:          "5s",
			},
		}

		cfg, err := config.NewConfigFromYaml(yamlCfg, logger)

		require.NoError(t, err)
		require.NotNil(t, cfg)

		// 1. Direct Field Mapping
		assert.Equal(t, "yaml-project", cfg.ProjectID)
		assert.Equal(t, ":9000", cfg.ListenAddr)
		assert.Equal(t, "yaml-topic", cfg.TopicID)
		assert.Equal(t, "yaml-subscription", cfg.SubscriptionID)
		assert.Equal(t, "yaml-dlq", cfg.SubscriptionDLQTopicID)
		assert.Equal(t, 5, cfg.NumPipelineWorkers)

		// 2. CORS
		assert.Equal(t, []string{"http://yaml.com"}, cfg.CorsConfig.AllowedOrigins)
		assert.Equal(t, middleware.CorsRoleEditor, cfg.CorsConfig.Role)

		// 3. Redis
		assert.True(t, cfg.Redis.Enabled)
		assert.Equal(t, int64(200), cfg.Redis.MaxReports)

		// 4. Firebase
		assert.Equal(t, "legacy", cfg.Firebase.Mode)
		assert.Equal(t, "yaml-key", cfg.Firebase.ServerKey)
		assert.Equal(t, "https://yaml.endpoint/send", cfg.Firebase.Endpoint)
		assert.Equal(t, "normal", cfg.Firebase.DefaultPriority)
		assert.Equal(t, "firestore", cfg.Firebase.CredentialSource)
		assert.Equal(t, 5*time.Second, cfg.Firebase.Timeout)

		assert.NotNil(t, cfg.PubsubConsumerConfig)
		assert.True(t, cfg.PipelineEnabled())
	})

	t.Run("Success - Handles missing optional fields gracefully", func(t *testing.T) {
		yamlCfg := &config.YamlConfig{
			ProjectID: "minimal-project",
		}

		cfg, err := config.NewConfigFromYaml(yamlCfg, logger)

		require.NoError(t, err)
		assert.Equal(t, "minimal-project", cfg.ProjectID)
		assert.Equal(t, 0, cfg.NumPipelineWorkers)
		assert.Empty(t, cfg.ListenAddr)
		assert.Empty(t, cfg.Firebase.ServerKey)
		assert.Nil(t, cfg.PubsubConsumerConfig)
		assert.False(t, cfg.PipelineEnabled())
	})

	t.Run("Failure - Bad timeout", func(t *testing.T) {
		_, err := config.NewConfigFromYaml(&config.YamlConfig{
			FirebaseConfig: config.YamlFirebaseConfig{Timeout: "ten"},
		}, logger)
		assert.Error(t, err)
	})

	t.Run("Success - Parses raw YAML", func(t *testing.T) {
		raw := []byte(`
project_id: raw-project
firebase:
  server_key: raw-key
  endpoint: https://fcm.googleapis.com/fcm/send
  timeout: 2s
`)
		var yamlCfg config.YamlConfig
		require.NoError(t, yaml.Unmarshal(raw, &yamlCfg))

		cfg, err := config.NewConfigFromYaml(&yamlCfg, logger)
		require.NoError(t, err)
		assert.Equal(t, "raw-key", cfg.Firebase.ServerKey)
		assert.Equal(t, 2*time.Second, cfg.Firebase.Timeout)
	})
}
