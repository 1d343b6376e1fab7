package config

import (
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Port      string `mapstructure:"PORT"`
	DBPath    string `mapstructure:"DB_PATH"`
	WebAppURL string `mapstructure:"WEB_APP_URL"`

	// AI enrichment configuration. An empty key disables enrichment.
	AIAPIKey  string `mapstructure:"AI_API_KEY"`
	AIBaseURL string `mapstructure:"AI_BASE_URL"`
	AIModel   string `mapstructure:"AI_MODEL"`
}

// Load reads configuration from a .env file (if present) and the
// environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using system environment variables")
	}

	viper.SetDefault("PORT", "3000")
	viper.SetDefault("DB_PATH", "linkhoard.db")
	viper.SetDefault("WEB_APP_URL", "http://localhost:3000")
	viper.AutomaticEnv()

	// AutomaticEnv alone does not populate Unmarshal; bind each key.
	for _, key := range []string{"PORT", "DB_PATH", "WEB_APP_URL", "AI_API_KEY", "AI_BASE_URL", "AI_MODEL"} {
		if err := viper.BindEnv(key); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
