// Package config loads the environment-backed settings shared by both
// import commands: database credentials for the topology importer and
// the log level both importers use, the same way the location-
// microservice's internal/config package layers viper over a nested
// struct.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/exatel-oss/osmtopo/pkg/topostore"
)

// Config holds everything read from the environment. File-path and mode
// flags (--pbf, --output-path, --max-meters, ...) are parsed separately
// by each cmd with the standard flag package; only settings that belong in the
// environment rather than on the command line live here.
type Config struct {
	Database topostore.Config `validate:"required"`
	Log      LogConfig
}

// LogConfig controls the applog.New level.
type LogConfig struct {
	Level string
}

// Load reads DB_* and LOG_LEVEL from the environment (optionally via a
// .env file in the working directory, if present). It does not validate
// the result: database fields are only required when a cmd actually opens
// a topostore.Postgres, and that cmd checks them with ValidateForTopoImport.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig() // a missing .env is fine; AutomaticEnv still picks up real env vars

	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOG_LEVEL", "info")

	cfg := &Config{
		Database: topostore.Config{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetInt("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
	}

	return cfg, nil
}

// ValidateForTopoImport fails fast when the database settings the
// topology importer needs are missing, rather than letting pgx surface
// a confusing dial error.
func ValidateForTopoImport(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// DialTimeout bounds how long cmd/topoimport waits for the initial
// database connection before giving up.
const DialTimeout = 10 * time.Second
