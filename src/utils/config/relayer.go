package config

import (
	"time"

	"github.com/spf13/viper"
)

type Relayer struct {
	// Address the relay HTTP API listens on
	ListenAddress string

	// Hex-encoded private key of the funded relayer account
	PrivateKey string

	// Secret used to verify session JWTs issued by the auth gateway
	SessionJwtSecret string

	// Max relay requests accepted per sender within one window
	RateLimitRequests int

	// Fixed rate limiting window
	RateLimitWindow time.Duration

	// Max submission attempts for transient failures
	MaxAttempts int

	// Initial backoff between submission attempts
	BackoffInitialInterval time.Duration

	// Gas limit set on relayed transactions
	GasLimit uint64

	// Max batch size before audit entries are flushed to the database
	AuditBatchSize int

	// After this time audit entries are flushed to the database
	AuditFlushInterval time.Duration

	// Max time between failed retries to flush audit entries
	AuditMaxBackoffInterval time.Duration

	// Timeout for reading an inbound HTTP request. Responses are not
	// bounded, a relay reply waits for the transaction receipt.
	ServerRequestTimeout time.Duration
}

func setRelayerDefaults() {
	viper.SetDefault("Relayer.ListenAddress", ":8080")
	viper.SetDefault("Relayer.PrivateKey", "")
	viper.SetDefault("Relayer.SessionJwtSecret", "")
	viper.SetDefault("Relayer.RateLimitRequests", 10)
	viper.SetDefault("Relayer.RateLimitWindow", "1m")
	viper.SetDefault("Relayer.MaxAttempts", 3)
	viper.SetDefault("Relayer.BackoffInitialInterval", "1s")
	viper.SetDefault("Relayer.GasLimit", 500000)
	viper.SetDefault("Relayer.AuditBatchSize", 50)
	viper.SetDefault("Relayer.AuditFlushInterval", "2s")
	viper.SetDefault("Relayer.AuditMaxBackoffInterval", "30s")
	viper.SetDefault("Relayer.ServerRequestTimeout", "120s")
}
