package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds settings for the local database fallback.
type SQLiteConfig struct {
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
}

// StorageConfig selects and configures the storage backend.
type StorageConfig struct {
	Type   string       `json:"type" mapstructure:"type"`
	Memory MemoryConfig `json:"memory" mapstructure:"memory"`
	SQLite SQLiteConfig `json:"sqlite" mapstructure:"sqlite"`
}

// OTelConfig holds OpenTelemetry metric settings.
type OTelConfig struct {
	Enabled     bool   `json:"enabled" mapstructure:"enabled"`
	ServiceName string `json:"serviceName" mapstructure:"serviceName"`
}

// GeneratorConfig holds the portfolio sizes and simulation extent of one run.
type GeneratorConfig struct {
	StormEvents     int    `json:"stormEvents" mapstructure:"stormEvents"`
	FloodGauges     int    `json:"floodGauges" mapstructure:"floodGauges"`
	Properties      int    `json:"properties" mapstructure:"properties"`
	Mortgages       int    `json:"mortgages" mapstructure:"mortgages"`
	Timesteps       int    `json:"timesteps" mapstructure:"timesteps"`
	SimulationHours int    `json:"simulationHours" mapstructure:"simulationHours"`
	Anchor          string `json:"anchor" mapstructure:"anchor"`
	TrackStart      string `json:"trackStart" mapstructure:"trackStart"`
	TrackEnd        string `json:"trackEnd" mapstructure:"trackEnd"`
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file. A missing file is
// not an error; defaults and overrides via viper.Set still apply.
func Load(configDir string) error {
	// Set default values
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("defaultTag", "Run")
	viper.SetDefault("logsDir", "./perilgenlogs")

	viper.SetDefault("generator.stormEvents", 2)
	viper.SetDefault("generator.floodGauges", 40)
	viper.SetDefault("generator.properties", 200)
	viper.SetDefault("generator.mortgages", 200)
	viper.SetDefault("generator.timesteps", 100)
	viper.SetDefault("generator.simulationHours", 60)
	viper.SetDefault("generator.anchor", "")
	viper.SetDefault("generator.trackStart", "")
	viper.SetDefault("generator.trackEnd", "")

	viper.SetDefault("api.serverUrl", "http://localhost:5000")
	viper.SetDefault("api.apiKey", "")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "perilgen")

	viper.SetDefault("influx.enabled", true)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "perilgen-metrics")
	viper.SetDefault("influx.buckets.gaugeReadings", "gauge_readings")
	viper.SetDefault("influx.buckets.stormTrack", "storm_track")
	viper.SetDefault("influx.buckets.performance", "generator_performance")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./output")
	viper.SetDefault("storage.memory.compressOutput", false)
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "perilgen")

	viper.SetConfigName("perilgen.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); notFound {
			return nil
		}
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetStorageConfig returns the storage section.
func GetStorageConfig() StorageConfig {
	var cfg StorageConfig
	if err := viper.UnmarshalKey("storage", &cfg); err != nil {
		return StorageConfig{Type: "memory"}
	}
	return cfg
}

// GetOTelConfig returns the otel section.
func GetOTelConfig() OTelConfig {
	var cfg OTelConfig
	if err := viper.UnmarshalKey("otel", &cfg); err != nil {
		return OTelConfig{}
	}
	return cfg
}

// GetGeneratorConfig returns the generator section.
func GetGeneratorConfig() GeneratorConfig {
	var cfg GeneratorConfig
	if err := viper.UnmarshalKey("generator", &cfg); err != nil {
		return GeneratorConfig{}
	}
	return cfg
}
