// file: internal/config/persistence.go
// version: 1.3.0
// guid: 9c8d7e6f-5a4b-3c2d-1e0f-9a8b7c6d5e4f

package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFilePath returns the path to the YAML config file next to the database.
func ConfigFilePath() string {
	if AppConfig.DatabasePath != "" {
		return filepath.Join(filepath.Dir(AppConfig.DatabasePath), "config.yaml")
	}
	return ""
}

// LoadConfigFromFile loads settings from the YAML config file as a fallback.
// File values only fill in gaps left by env vars and flags.
func LoadConfigFromFile() error {
	path := ConfigFilePath()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fileConfig map[string]any
	if err := yaml.Unmarshal(data, &fileConfig); err != nil {
		log.Printf("Warning: Failed to parse config file %s: %v", path, err)
		return nil
	}

	applied := 0

	stringFallbacks := map[string]*string{
		"catalog_csv":         &AppConfig.CatalogCSV,
		"openai_api_key":      &AppConfig.OpenAIAPIKey,
		"basic_auth_username": &AppConfig.BasicAuthUsername,
		"basic_auth_password": &AppConfig.BasicAuthPassword,
	}
	for key, ptr := range stringFallbacks {
		if *ptr == "" {
			if val, ok := fileConfig[key].(string); ok && val != "" {
				*ptr = val
				applied++
			}
		}
	}

	if !AppConfig.EnableAIRecognition {
		if val, ok := fileConfig["enable_ai_recognition"].(bool); ok && val {
			AppConfig.EnableAIRecognition = true
			applied++
		}
	}
	if !AppConfig.BasicAuthEnabled {
		if val, ok := fileConfig["basic_auth_enabled"].(bool); ok && val {
			AppConfig.BasicAuthEnabled = true
			applied++
		}
	}

	if applied > 0 {
		log.Printf("Applied %d settings from config file %s", applied, path)
	}
	return nil
}

// SaveConfigToFile writes key settings to a YAML config file next to the database.
// Secrets are stored in plaintext here, file permissions restrict access.
func SaveConfigToFile() error {
	path := ConfigFilePath()
	if path == "" {
		return fmt.Errorf("cannot determine config file path")
	}

	fileConfig := map[string]any{
		"database_path":             AppConfig.DatabasePath,
		"database_type":             AppConfig.DatabaseType,
		"catalog_csv":               AppConfig.CatalogCSV,
		"watch_catalog":             AppConfig.WatchCatalog,
		"host":                      AppConfig.Host,
		"port":                      AppConfig.Port,
		"search_cache_ttl_seconds":  int(AppConfig.SearchCacheTTL.Seconds()),
		"search_result_max":         AppConfig.SearchResultMax,
		"score_threshold":           AppConfig.ScoreThreshold,
		"max_matches":               AppConfig.MaxMatches,
		"per_candidate_max":         AppConfig.PerCandidateMax,
		"api_rate_limit_per_minute": AppConfig.APIRateLimitPerMinute,
		"json_body_limit_mb":        AppConfig.JSONBodyLimitMB,
		"basic_auth_enabled":        AppConfig.BasicAuthEnabled,
		"enable_ai_recognition":     AppConfig.EnableAIRecognition,
		"log_level":                 AppConfig.LogLevel,
	}

	if AppConfig.BasicAuthUsername != "" {
		fileConfig["basic_auth_username"] = AppConfig.BasicAuthUsername
	}
	if AppConfig.BasicAuthPassword != "" {
		fileConfig["basic_auth_password"] = AppConfig.BasicAuthPassword
	}
	if AppConfig.OpenAIAPIKey != "" {
		fileConfig["openai_api_key"] = AppConfig.OpenAIAPIKey
	}

	data, err := yaml.Marshal(fileConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	// Write with restrictive permissions since it may contain secrets
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	log.Printf("Configuration saved to file: %s", path)
	return nil
}
