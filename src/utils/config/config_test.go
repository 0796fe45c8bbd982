package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	config := Default()
	require.NotNil(t, config)

	assert.Equal(t, ":7777", config.RESTListenAddress)
	assert.Equal(t, 30*time.Second, config.StopTimeout)

	assert.Equal(t, int64(50), config.Ingestor.ReplayMaxRange)
	assert.Equal(t, 100, config.Ingestor.ChannelSize)

	assert.Equal(t, time.Minute, config.Reconciler.Interval)
	assert.Equal(t, 200, config.Reconciler.BatchSize)
	assert.Equal(t, 10, config.Reconciler.Concurrency)

	assert.Equal(t, ":8080", config.Relayer.ListenAddress)
	assert.Equal(t, 10, config.Relayer.RateLimitRequests)
	assert.Equal(t, time.Minute, config.Relayer.RateLimitWindow)
	assert.Equal(t, 3, config.Relayer.MaxAttempts)
	assert.Equal(t, time.Second, config.Relayer.BackoffInitialInterval)
	assert.Equal(t, uint64(500000), config.Relayer.GasLimit)
}
