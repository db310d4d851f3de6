package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "social-go", cfg.AppName)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "/ws", cfg.Server.WebSocketPath)
	assert.Equal(t, "8081", cfg.APIServer.Port)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "social-chat-messages", cfg.Kafka.MessagesTopic)
	assert.Equal(t, "social-outgoing-events", cfg.Kafka.OutgoingTopic)
	assert.Equal(t, 60, cfg.WebSocket.PongWaitSeconds)
	assert.Greater(t, cfg.WebSocket.PongWaitSeconds, cfg.WebSocket.PingPeriodSeconds)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}
