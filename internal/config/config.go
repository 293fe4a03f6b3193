// Package config loads server settings from defaults, an optional
// tictactoe.yaml in the working directory, and TICTACTOE_* environment
// variables, in increasing order of precedence.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ListenAddr      string
	LogLevel        string
	ShutdownTimeout time.Duration
	// AIEnabled is the mode a new game gets when the creator does not
	// pick one: true plays the computer, false starts a two-player game.
	AIEnabled bool
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("shutdown_timeout", 10*time.Second)
	v.SetDefault("ai_enabled", true)

	v.SetEnvPrefix("tictactoe")
	v.AutomaticEnv()

	v.SetConfigName("tictactoe")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	return &Config{
		ListenAddr:      v.GetString("listen_addr"),
		LogLevel:        v.GetString("log_level"),
		ShutdownTimeout: v.GetDuration("shutdown_timeout"),
		AIEnabled:       v.GetBool("ai_enabled"),
	}, nil
}
