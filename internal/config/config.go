// file: internal/config/config.go
// version: 1.2.0
// guid: 7b8c9d0e-1f2a-3b4c-5d6e-7f8a9b0c1d2e

package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	DatabasePath string
	DatabaseType string // "sqlite" (default) or "pebble"
	CatalogCSV   string
	WatchCatalog bool

	Host string
	Port int

	SearchCacheTTL   time.Duration
	SearchResultMax  int
	ScoreThreshold   float64
	MaxMatches       int
	PerCandidateMax  int

	APIRateLimitPerMinute int
	JSONBodyLimitMB       int

	BasicAuthEnabled  bool
	BasicAuthUsername string
	BasicAuthPassword string

	EnableAIRecognition bool
	OpenAIAPIKey        string

	LogLevel string
}

var AppConfig Config

// InitConfig initializes the application configuration
func InitConfig() {
	// Set defaults
	viper.SetDefault("database_type", "sqlite")
	viper.SetDefault("database_path", "rxscribe.db")
	viper.SetDefault("host", "0.0.0.0")
	viper.SetDefault("port", 8080)
	viper.SetDefault("search_cache_ttl_seconds", 300)
	viper.SetDefault("search_result_max", 50)
	viper.SetDefault("score_threshold", 0.6)
	viper.SetDefault("max_matches", 10)
	viper.SetDefault("per_candidate_max", 5)
	viper.SetDefault("api_rate_limit_per_minute", 120)
	viper.SetDefault("json_body_limit_mb", 2)
	viper.SetDefault("watch_catalog", true)
	viper.SetDefault("enable_ai_recognition", false)
	viper.SetDefault("log_level", "info")

	AppConfig = Config{
		DatabasePath: viper.GetString("database_path"),
		DatabaseType: viper.GetString("database_type"),
		CatalogCSV:   viper.GetString("catalog_csv"),
		WatchCatalog: viper.GetBool("watch_catalog"),

		Host: viper.GetString("host"),
		Port: viper.GetInt("port"),

		SearchCacheTTL:  time.Duration(viper.GetInt("search_cache_ttl_seconds")) * time.Second,
		SearchResultMax: viper.GetInt("search_result_max"),
		ScoreThreshold:  viper.GetFloat64("score_threshold"),
		MaxMatches:      viper.GetInt("max_matches"),
		PerCandidateMax: viper.GetInt("per_candidate_max"),

		APIRateLimitPerMinute: viper.GetInt("api_rate_limit_per_minute"),
		JSONBodyLimitMB:       viper.GetInt("json_body_limit_mb"),

		BasicAuthEnabled:  viper.GetBool("basic_auth_enabled"),
		BasicAuthUsername: viper.GetString("basic_auth_username"),
		BasicAuthPassword: viper.GetString("basic_auth_password"),

		EnableAIRecognition: viper.GetBool("enable_ai_recognition"),
		OpenAIAPIKey:        viper.GetString("openai_api_key"),

		LogLevel: viper.GetString("log_level"),
	}

	// Normalize database type
	if AppConfig.DatabaseType == "sqlite3" {
		AppConfig.DatabaseType = "sqlite"
	}
	if AppConfig.DatabaseType == "" {
		AppConfig.DatabaseType = "sqlite"
	}
}
