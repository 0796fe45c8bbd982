package config

import (
	"time"

	"github.com/spf13/viper"
)

type Ingestor struct {
	// Max number of blocks replayed in one historical query.
	// Kept small to respect provider query-range limits.
	ReplayMaxRange int64

	// Maximum length of the event channel between subscriber and applier
	ChannelSize int

	// URL of the downstream financing pipeline webhook
	PipelineUrl string

	// Max time between failed retries to dispatch to the pipeline
	DispatcherBackoffInterval time.Duration

	// Max total time dispatch to the pipeline is retried, 0 is no limit
	DispatcherMaxElapsedTime time.Duration

	// Timeout for pipeline HTTP requests
	HttpRequestTimeout time.Duration

	// Redis channel tokenization notifications are published to
	NotifierChannelName string

	// Whether tokenization notifications are published at all
	NotifierEnabled bool

	// Max backoff between retries of the startup head/replay queries
	StartupRetryMaxInterval time.Duration
}

func setIngestorDefaults() {
	viper.SetDefault("Ingestor.ReplayMaxRange", 50)
	viper.SetDefault("Ingestor.ChannelSize", 100)
	viper.SetDefault("Ingestor.PipelineUrl", "http://127.0.0.1:3000/internal/financing")
	viper.SetDefault("Ingestor.DispatcherBackoffInterval", "3s")
	viper.SetDefault("Ingestor.DispatcherMaxElapsedTime", "2m")
	viper.SetDefault("Ingestor.HttpRequestTimeout", "30s")
	viper.SetDefault("Ingestor.NotifierChannelName", "invoices:tokenized")
	viper.SetDefault("Ingestor.NotifierEnabled", false)
	viper.SetDefault("Ingestor.StartupRetryMaxInterval", "5s")
}
