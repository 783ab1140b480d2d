package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigExample(t *testing.T) {
	cfg, err := LoadConfig("config.example.yml")
	if err != nil {
		t.Fatalf("Failed to load example config: %v", err)
	}
	if cfg.Server.Port != 1313 {
		t.Errorf("Expected port 1313, got %d", cfg.Server.Port)
	}
	if len(cfg.Debate.Topics) != 3 || cfg.Debate.Topics[0].OpeningQuestion == "" {
		t.Errorf("Expected three topics with questions, got %+v", cfg.Debate.Topics)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("Unexpected redis addr %q", cfg.Redis.Addr)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "server:\n  port: 9000\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Debate.SettleDelaySeconds != 3 || cfg.Debate.PhasePauseSeconds != 1 {
		t.Errorf("Expected default delays, got %d/%d", cfg.Debate.SettleDelaySeconds, cfg.Debate.PhasePauseSeconds)
	}
	if cfg.Debate.RelayMode != "room" || cfg.Log.Level != "info" || cfg.Database.Name != "arguematch" {
		t.Errorf("Unexpected defaults %+v", cfg)
	}

	cfg, err = LoadConfig(writeConfig(t, "debate:\n  settleDelaySeconds: 0\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Debate.SettleDelaySeconds != 0 {
		t.Errorf("Expected explicit zero settle delay to stick, got %d", cfg.Debate.SettleDelaySeconds)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	cases := map[string]string{
		"relay mode":  "debate:\n  relayMode: everyone\n",
		"negative":    "debate:\n  phasePauseSeconds: -5\n",
		"empty topic": "debate:\n  topics:\n    - openingQuestion: \"why?\"\n",
		"bad port":    "server:\n  port: 70000\n",
		"broken yaml": "server: [\n",
	}
	for name, body := range cases {
		if _, err := LoadConfig(writeConfig(t, body)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected default config to be valid, got %v", err)
	}
	if cfg.Debate.SettleDelaySeconds != 3 {
		t.Errorf("Expected settle delay 3, got %d", cfg.Debate.SettleDelaySeconds)
	}
}
