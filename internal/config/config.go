package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Flow     FlowConfig     `mapstructure:"flow"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	IR       IRConfig       `mapstructure:"ir"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Type string `mapstructure:"type"`
	Path string `mapstructure:"path"`
}

// FlowConfig contains flow engine settings
type FlowConfig struct {
	MaxNodes       int `mapstructure:"max_nodes"`
	ExecutionLimit int `mapstructure:"execution_limit"`
}

// LoggerConfig contains logging settings
type LoggerConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// IRConfig contains infrared receiver/transmitter node settings.
type IRConfig struct {
	SampleRateHz     uint32 `mapstructure:"sample_rate_hz"`
	MQTTTopicPrefix  string `mapstructure:"mqtt_topic_prefix"`
	SBPHeaderHighUS  uint32 `mapstructure:"sbp_header_high_us"`
	SBPHeaderLowUS   uint32 `mapstructure:"sbp_header_low_us"`
	SBPDataHighUS    uint32 `mapstructure:"sbp_data_high_us"`
	SBPZeroLowUS     uint32 `mapstructure:"sbp_zero_low_us"`
	SBPOneLowUS      uint32 `mapstructure:"sbp_one_low_us"`
	SBPBits          uint32 `mapstructure:"sbp_bits"`
}

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in common locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		v.AddConfigPath(getConfigDir())
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found; using defaults
	}

	// Override with environment variables
	v.SetEnvPrefix("EDGEFLOW")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	// Database defaults
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.path", "./data/edgeflow.db")

	// Flow defaults
	v.SetDefault("flow.max_nodes", 1000)
	v.SetDefault("flow.execution_limit", 10000)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")

	// IR defaults
	v.SetDefault("ir.sample_rate_hz", 40000)
	v.SetDefault("ir.mqtt_topic_prefix", "edgeflow/ir")
	v.SetDefault("ir.sbp_header_high_us", 4500)
	v.SetDefault("ir.sbp_header_low_us", 4500)
	v.SetDefault("ir.sbp_data_high_us", 560)
	v.SetDefault("ir.sbp_zero_low_us", 560)
	v.SetDefault("ir.sbp_one_low_us", 1690)
	v.SetDefault("ir.sbp_bits", 36)
}

func getConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".edgeflow")
}
