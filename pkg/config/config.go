// Package config loads pipeline configuration from file and environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Elasticsearch source store configuration
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`

	// Dgraph loader configuration
	Dgraph DgraphConfig `mapstructure:"dgraph"`

	// Output file configuration
	Output OutputConfig `mapstructure:"output"`

	// Registry snapshot configuration
	Registry RegistryConfig `mapstructure:"registry"`

	// Watcher configuration
	Watcher WatcherConfig `mapstructure:"watcher"`

	// Telemetry configuration
	Telemetry TelemetryConfig `mapstructure:"telemetry"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig holds control-plane server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

// ElasticsearchConfig holds source store configuration
type ElasticsearchConfig struct {
	URL          string `mapstructure:"url"`
	Index        string `mapstructure:"index"`
	MaxDocuments int    `mapstructure:"max_documents"`
}

// DgraphConfig holds the live loader invocation configuration
type DgraphConfig struct {
	Alpha         string `mapstructure:"alpha"`
	Zero          string `mapstructure:"zero"`
	SchemaFile    string `mapstructure:"schema_file"`
	DockerImage   string `mapstructure:"docker_image"`
	DockerNetwork string `mapstructure:"docker_network"`
}

// OutputConfig holds triple file output configuration
type OutputConfig struct {
	Dir                string `mapstructure:"dir"`
	RDFFile            string `mapstructure:"rdf_file"`
	CleanupAfterUpload bool   `mapstructure:"cleanup_after_upload"`
}

// RegistryConfig holds identifier snapshot configuration. An empty
// SnapshotDir disables persistence; identifiers stay stable either way
// because they are content-derived.
type RegistryConfig struct {
	SnapshotDir string `mapstructure:"snapshot_dir"`
}

// WatcherConfig holds background auto-processor configuration
type WatcherConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	IntervalSeconds int  `mapstructure:"interval_seconds"`
}

// TelemetryConfig holds telemetry configuration
type TelemetryConfig struct {
	ParquetPath string `mapstructure:"parquet_path"`
}

// CircuitBreakerConfig holds configuration for circuit breaking around the
// external loader
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	overrideWithEnv(config)

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")

	viper.SetDefault("elasticsearch.url", "http://localhost:9200")
	viper.SetDefault("elasticsearch.index", "judgments")
	viper.SetDefault("elasticsearch.max_documents", 10000)

	viper.SetDefault("dgraph.alpha", "dgraph-alpha:9080")
	viper.SetDefault("dgraph.zero", "dgraph-zero:5080")
	viper.SetDefault("dgraph.schema_file", "judgments.schema")
	viper.SetDefault("dgraph.docker_image", "dgraph/dgraph:latest")
	viper.SetDefault("dgraph.docker_network", "dgraph_default")

	viper.SetDefault("output.dir", ".")
	viper.SetDefault("output.rdf_file", "judgments.rdf")
	viper.SetDefault("output.cleanup_after_upload", true)

	viper.SetDefault("registry.snapshot_dir", "")

	viper.SetDefault("watcher.enabled", false)
	viper.SetDefault("watcher.interval_seconds", 60)

	viper.SetDefault("circuit_breaker.enabled", true)
	viper.SetDefault("circuit_breaker.max_requests", 1)
	viper.SetDefault("circuit_breaker.interval", 60)
	viper.SetDefault("circuit_breaker.timeout", 120)
	viper.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)

	home, err := os.UserHomeDir()
	if err == nil {
		viper.SetDefault("telemetry.parquet_path", fmt.Sprintf("%s/.jurisgraph/telemetry", home))
	}
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	if url := os.Getenv("ES_URL"); url != "" {
		config.Elasticsearch.URL = url
	}
	if index := os.Getenv("ES_INDEX"); index != "" {
		config.Elasticsearch.Index = index
	}
	if alpha := os.Getenv("DGRAPH_ALPHA"); alpha != "" {
		config.Dgraph.Alpha = alpha
	}
	if zero := os.Getenv("DGRAPH_ZERO"); zero != "" {
		config.Dgraph.Zero = zero
	}
	if dir := os.Getenv("OUTPUT_DIR"); dir != "" {
		config.Output.Dir = dir
	}
	if dir := os.Getenv("REGISTRY_SNAPSHOT_DIR"); dir != "" {
		config.Registry.SnapshotDir = dir
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if path := os.Getenv("TELEMETRY_PARQUET_PATH"); path != "" {
		config.Telemetry.ParquetPath = path
	}
}
