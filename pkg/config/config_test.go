package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[completion]
max_suggestions = 5
temperature = 0.4
model = "codebert"

[service]
api_url = "http://inference.local:9000"
timeout_ms = 2500

[languages.python]
temperature = 0.3
indent_size = 2
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Completion.MaxSuggestions != 5 {
		t.Errorf("max_suggestions = %d, want 5", cfg.Completion.MaxSuggestions)
	}
	if cfg.Completion.Model != "codebert" {
		t.Errorf("model = %q, want codebert", cfg.Completion.Model)
	}
	if cfg.Service.APIURL != "http://inference.local:9000" {
		t.Errorf("api_url = %q", cfg.Service.APIURL)
	}
	// Unset fields keep their defaults.
	if cfg.Completion.TopK != 50 {
		t.Errorf("top_k = %d, want default 50", cfg.Completion.TopK)
	}

	ov, ok := cfg.Languages["python"]
	if !ok {
		t.Fatal("python override missing")
	}
	if ov.Temperature == nil || *ov.Temperature != 0.3 {
		t.Errorf("override temperature = %v, want 0.3", ov.Temperature)
	}
	if ov.IndentSize == nil || *ov.IndentSize != 2 {
		t.Errorf("override indent_size = %v, want 2", ov.IndentSize)
	}
	// Fields the section never named stay nil so the cascade falls through.
	if ov.TopP != nil {
		t.Errorf("override top_p = %v, want nil", ov.TopP)
	}
}

func TestLoadConfigPartialRecovery(t *testing.T) {
	// temperature has the wrong type, which fails the struct decode;
	// the recovery pass should still salvage the valid keys.
	path := writeConfig(t, `
[completion]
max_suggestions = 8
temperature = "hot"

[service]
api_url = "http://inference.local:9000"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig should recover, got %v", err)
	}
	if cfg.Completion.MaxSuggestions != 8 {
		t.Errorf("max_suggestions = %d, want 8 salvaged", cfg.Completion.MaxSuggestions)
	}
	if cfg.Completion.Temperature != 0.7 {
		t.Errorf("temperature = %g, want default for the broken key", cfg.Completion.Temperature)
	}
	if cfg.Service.APIURL != "http://inference.local:9000" {
		t.Errorf("api_url = %q, want salvaged value", cfg.Service.APIURL)
	}
}

func TestInitConfigCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := InitConfig(path)
	if err != nil {
		t.Fatalf("InitConfig: %v", err)
	}
	if cfg.Completion.MaxSuggestions != 3 {
		t.Errorf("created config not defaulted: %+v", cfg.Completion)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file not created: %v", err)
	}

	// A second init loads the file it just wrote.
	again, err := InitConfig(path)
	if err != nil {
		t.Fatalf("InitConfig reload: %v", err)
	}
	if again.Completion.MaxSuggestions != 3 {
		t.Errorf("reloaded config = %+v", again.Completion)
	}
}
