/*
Package config manages the TOML configuration cascade for the
completion pipeline: per-language overrides, global defaults and the
builtin per-language table.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/bims2021/AI-Autocode-Completion/internal/utils"
)

const appDirName = "autocode"

// Config holds the entire config structure.
type Config struct {
	Completion CompletionConfig            `toml:"completion"`
	Service    ServiceConfig               `toml:"service"`
	Cache      CacheConfig                 `toml:"cache"`
	Stats      StatsConfig                 `toml:"stats"`
	Languages  map[string]LanguageOverride `toml:"languages"`
}

// CompletionConfig holds the global generation defaults.
type CompletionConfig struct {
	Enabled           bool    `toml:"enabled"`
	MaxSuggestions    int     `toml:"max_suggestions"`
	Temperature       float64 `toml:"temperature"`
	MaxContextLines   int     `toml:"max_context_lines"`
	AutoTrigger       bool    `toml:"auto_trigger"`
	Model             string  `toml:"model"`
	TopP              float64 `toml:"top_p"`
	TopK              int     `toml:"top_k"`
	RepetitionPenalty float64 `toml:"repetition_penalty"`
	ContextWindow     int     `toml:"context_window"`
}

// ServiceConfig holds inference service connection options.
type ServiceConfig struct {
	APIURL    string `toml:"api_url"`
	TimeoutMs int    `toml:"timeout_ms"`
}

// CacheConfig holds suggestion cache options.
type CacheConfig struct {
	MaxEntries int `toml:"max_entries"`
}

// StatsConfig holds statistics persistence options.
type StatsConfig struct {
	FilePath        string `toml:"file_path"`
	AutosaveSeconds int    `toml:"autosave_seconds"`
}

// LanguageOverride is one [languages.X] section. Pointer fields so a
// partial section only overrides what it names.
type LanguageOverride struct {
	Enabled           *bool    `toml:"enabled"`
	MaxSuggestions    *int     `toml:"max_suggestions"`
	Temperature       *float64 `toml:"temperature"`
	MaxContextLines   *int     `toml:"max_context_lines"`
	Model             *string  `toml:"model"`
	TopP              *float64 `toml:"top_p"`
	TopK              *int     `toml:"top_k"`
	RepetitionPenalty *float64 `toml:"repetition_penalty"`
	ContextWindow     *int     `toml:"context_window"`
	MaxNewTokens      *int     `toml:"max_new_tokens"`
	CommentStyle      *string  `toml:"comment_style"`
	IndentStyle       *string  `toml:"indent_style"`
	IndentSize        *int     `toml:"indent_size"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. Platform user config dir
// 2. Current executable dir
// 3. builtin defaults
func GetConfigDir() (string, error) {
	primaryPath, err := utils.UserConfigDir(appDirName)
	if err == nil {
		if result := utils.CheckDirStatus(primaryPath); result.Writable {
			return primaryPath, nil
		}
	} else {
		log.Errorf("Failed to get user config directory: %v", err)
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/autocode/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	var config *Config
	var err error

	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err = LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err = InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Completion: CompletionConfig{
			Enabled:           true,
			MaxSuggestions:    3,
			Temperature:       0.7,
			MaxContextLines:   50,
			AutoTrigger:       true,
			Model:             "auto",
			TopP:              0.9,
			TopK:              50,
			RepetitionPenalty: 1.1,
			ContextWindow:     1024,
		},
		Service: ServiceConfig{
			APIURL:    "http://localhost:8000",
			TimeoutMs: 5000,
		},
		Cache: CacheConfig{
			MaxEntries: 100,
		},
		Stats: StatsConfig{
			AutosaveSeconds: 300,
		},
		Languages: make(map[string]LanguageOverride),
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	if config.Languages == nil {
		config.Languages = make(map[string]LanguageOverride)
	}
	return config, nil
}

// tryPartialParse salvages whatever sections still decode from a
// malformed config file, falling back to defaults for the rest.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if completionSection, ok := utils.ExtractSection(tempConfig, "completion"); ok {
		extractCompletionConfig(completionSection, &config.Completion)
	}
	if serviceSection, ok := utils.ExtractSection(tempConfig, "service"); ok {
		extractServiceConfig(serviceSection, &config.Service)
	}
	if cacheSection, ok := utils.ExtractSection(tempConfig, "cache"); ok {
		if val, ok := utils.ExtractInt64(cacheSection, "max_entries"); ok {
			config.Cache.MaxEntries = val
		}
	}
	if statsSection, ok := utils.ExtractSection(tempConfig, "stats"); ok {
		if val, ok := utils.ExtractString(statsSection, "file_path"); ok {
			config.Stats.FilePath = val
		}
		if val, ok := utils.ExtractInt64(statsSection, "autosave_seconds"); ok {
			config.Stats.AutosaveSeconds = val
		}
	}
	return config, nil
}

// extractCompletionConfig extracts the [completion] section from a map
func extractCompletionConfig(data map[string]any, completion *CompletionConfig) {
	if val, ok := utils.ExtractBool(data, "enabled"); ok {
		completion.Enabled = val
	}
	if val, ok := utils.ExtractInt64(data, "max_suggestions"); ok {
		completion.MaxSuggestions = val
	}
	if val, ok := utils.ExtractFloat64(data, "temperature"); ok {
		completion.Temperature = val
	}
	if val, ok := utils.ExtractInt64(data, "max_context_lines"); ok {
		completion.MaxContextLines = val
	}
	if val, ok := utils.ExtractBool(data, "auto_trigger"); ok {
		completion.AutoTrigger = val
	}
	if val, ok := utils.ExtractString(data, "model"); ok {
		completion.Model = val
	}
	if val, ok := utils.ExtractFloat64(data, "top_p"); ok {
		completion.TopP = val
	}
	if val, ok := utils.ExtractInt64(data, "top_k"); ok {
		completion.TopK = val
	}
	if val, ok := utils.ExtractFloat64(data, "repetition_penalty"); ok {
		completion.RepetitionPenalty = val
	}
	if val, ok := utils.ExtractInt64(data, "context_window"); ok {
		completion.ContextWindow = val
	}
}

// extractServiceConfig extracts the [service] section from a map
func extractServiceConfig(data map[string]any, service *ServiceConfig) {
	if val, ok := utils.ExtractString(data, "api_url"); ok {
		service.APIURL = val
	}
	if val, ok := utils.ExtractInt64(data, "timeout_ms"); ok {
		service.TimeoutMs = val
	}
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	configDir := filepath.Dir(defaultPath)
	if err := utils.EnsureDir(configDir); err != nil {
		return err
	}
	config := DefaultConfig()
	return utils.SaveTOMLFile(config, defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
