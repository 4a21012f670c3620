// file: internal/config/config_test.go
// version: 1.2.0
// guid: b2c3d4e5-f6a7-8b9c-0d1e-2f3a4b5c6d7e

package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

// TestInitConfig tests configuration initialization with defaults
func TestInitConfig(t *testing.T) {
	// Arrange
	viper.Reset()

	// Act
	InitConfig()

	// Assert - Verify database defaults
	if AppConfig.DatabaseType != "sqlite" {
		t.Errorf("Expected database_type to be 'sqlite', got '%s'", AppConfig.DatabaseType)
	}
	if AppConfig.DatabasePath != "rxscribe.db" {
		t.Errorf("Expected database_path to be 'rxscribe.db', got '%s'", AppConfig.DatabasePath)
	}
	if AppConfig.Port != 8080 {
		t.Errorf("Expected port to be 8080, got %d", AppConfig.Port)
	}
	if !AppConfig.WatchCatalog {
		t.Error("Expected watch_catalog to be true by default")
	}
}

// TestSearchDefaults tests matching and retrieval defaults
func TestSearchDefaults(t *testing.T) {
	viper.Reset()
	InitConfig()

	if AppConfig.SearchCacheTTL != 5*time.Minute {
		t.Errorf("Expected search_cache_ttl to be 5m, got %v", AppConfig.SearchCacheTTL)
	}
	if AppConfig.SearchResultMax != 50 {
		t.Errorf("Expected search_result_max to be 50, got %d", AppConfig.SearchResultMax)
	}
	if AppConfig.ScoreThreshold != 0.6 {
		t.Errorf("Expected score_threshold to be 0.6, got %f", AppConfig.ScoreThreshold)
	}
	if AppConfig.MaxMatches != 10 {
		t.Errorf("Expected max_matches to be 10, got %d", AppConfig.MaxMatches)
	}
	if AppConfig.PerCandidateMax != 5 {
		t.Errorf("Expected per_candidate_max to be 5, got %d", AppConfig.PerCandidateMax)
	}
}

// TestAIRecognitionDefaults tests AI recognition configuration defaults
func TestAIRecognitionDefaults(t *testing.T) {
	viper.Reset()
	InitConfig()

	if AppConfig.EnableAIRecognition {
		t.Error("Expected enable_ai_recognition to be false by default")
	}
	if AppConfig.OpenAIAPIKey != "" {
		t.Errorf("Expected openai_api_key to be empty by default, got '%s'", AppConfig.OpenAIAPIKey)
	}
}

// TestServerDefaults tests HTTP server configuration defaults
func TestServerDefaults(t *testing.T) {
	viper.Reset()
	InitConfig()

	if AppConfig.Host != "0.0.0.0" {
		t.Errorf("Expected host to be '0.0.0.0', got '%s'", AppConfig.Host)
	}
	if AppConfig.APIRateLimitPerMinute != 120 {
		t.Errorf("Expected api_rate_limit_per_minute to be 120, got %d", AppConfig.APIRateLimitPerMinute)
	}
	if AppConfig.JSONBodyLimitMB != 2 {
		t.Errorf("Expected json_body_limit_mb to be 2, got %d", AppConfig.JSONBodyLimitMB)
	}
	if AppConfig.BasicAuthEnabled {
		t.Error("Expected basic_auth_enabled to be false by default")
	}
}

// TestDatabaseTypeNormalization tests SQLite3 to SQLite normalization
func TestDatabaseTypeNormalization(t *testing.T) {
	// Arrange
	viper.Reset()
	viper.Set("database_type", "sqlite3")

	// Act
	InitConfig()

	// Assert
	if AppConfig.DatabaseType != "sqlite" {
		t.Errorf("Expected database_type to be normalized to 'sqlite', got '%s'", AppConfig.DatabaseType)
	}
}

// TestConfigOverrides tests that viper values override defaults
func TestConfigOverrides(t *testing.T) {
	viper.Reset()
	viper.Set("database_type", "pebble")
	viper.Set("port", 9090)
	viper.Set("score_threshold", 0.8)

	InitConfig()

	if AppConfig.DatabaseType != "pebble" {
		t.Errorf("Expected database_type to be 'pebble', got '%s'", AppConfig.DatabaseType)
	}
	if AppConfig.Port != 9090 {
		t.Errorf("Expected port to be 9090, got %d", AppConfig.Port)
	}
	if AppConfig.ScoreThreshold != 0.8 {
		t.Errorf("Expected score_threshold to be 0.8, got %f", AppConfig.ScoreThreshold)
	}
}
