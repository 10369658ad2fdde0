// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Engine   EngineConfig   `mapstructure:"engine"`
	S3       S3Config       `mapstructure:"s3"`
	Versions VersionsConfig `mapstructure:"versions"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// EngineConfig points at the workflow engine's API.
type EngineConfig struct {
	URL                 string `mapstructure:"url"`
	Token               string `mapstructure:"token"`
	Namespace           string `mapstructure:"namespace"`
	TimeoutSeconds      int    `mapstructure:"timeout_seconds"`
	PollIntervalSeconds int    `mapstructure:"poll_interval_seconds"`
}

// S3Config holds the bucket coordinates for presigned URLs.
type S3Config struct {
	Endpoint              string `mapstructure:"endpoint"`
	AccessKey             string `mapstructure:"access_key"`
	SecretKey             string `mapstructure:"secret_key"`
	Bucket                string `mapstructure:"bucket"`
	Region                string `mapstructure:"region"`
	ForcePathStyle        bool   `mapstructure:"force_path_style"`
	UploadExpirySeconds   int    `mapstructure:"upload_expiry_seconds"`
	DownloadExpirySeconds int    `mapstructure:"download_expiry_seconds"`
}

// VersionsConfig pins the deployed pipeline, database, and backend
// versions reported by the version endpoint. The tool version also
// selects which workflow template jobs are submitted to.
type VersionsConfig struct {
	Tool    string `mapstructure:"tool"`
	DB      string `mapstructure:"db"`
	Backend string `mapstructure:"backend"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ANNOSERVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("engine.namespace", "annoserve")
	v.SetDefault("engine.timeout_seconds", 30)
	v.SetDefault("engine.poll_interval_seconds", 15)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.force_path_style", false)
	v.SetDefault("s3.upload_expiry_seconds", 10000)
	v.SetDefault("s3.download_expiry_seconds", 60*86400)
	v.SetDefault("versions.backend", "0.4.0")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Engine.URL == "" {
		return fmt.Errorf("engine.url must be set")
	}
	if c.Engine.TimeoutSeconds <= 0 {
		return fmt.Errorf("engine.timeout_seconds must be > 0")
	}
	if c.Engine.PollIntervalSeconds <= 0 {
		return fmt.Errorf("engine.poll_interval_seconds must be > 0")
	}
	if c.S3.Bucket == "" {
		return fmt.Errorf("s3.bucket must be set")
	}
	if c.Versions.Tool == "" {
		return fmt.Errorf("versions.tool must be set")
	}
	if c.Versions.DB == "" {
		return fmt.Errorf("versions.db must be set")
	}
	return nil
}

// EngineTimeout converts the engine timeout config into a duration.
func (c Config) EngineTimeout() time.Duration {
	return time.Duration(c.Engine.TimeoutSeconds) * time.Second
}

// PollInterval converts the reconciliation interval config into a
// duration.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Engine.PollIntervalSeconds) * time.Second
}

// UploadExpiry converts the upload presign expiry config into a
// duration.
func (c Config) UploadExpiry() time.Duration {
	return time.Duration(c.S3.UploadExpirySeconds) * time.Second
}

// DownloadExpiry converts the download presign expiry config into a
// duration.
func (c Config) DownloadExpiry() time.Duration {
	return time.Duration(c.S3.DownloadExpirySeconds) * time.Second
}
