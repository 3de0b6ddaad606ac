package runconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.DepthLimit != -1 {
		t.Errorf("expected default DepthLimit=-1, got %d", cfg.DepthLimit)
	}
	if cfg.Algorithm != "leader-election" {
		t.Errorf("expected default Algorithm=leader-election, got %s", cfg.Algorithm)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{"depth_limit": 20, "algorithm": "paxos"}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cfg.DepthLimit != 20 {
		t.Errorf("expected DepthLimit=20, got %d", cfg.DepthLimit)
	}
	if cfg.Algorithm != "paxos" {
		t.Errorf("expected Algorithm=paxos, got %s", cfg.Algorithm)
	}
	if cfg.TraceDB != "" {
		t.Errorf("expected TraceDB to preserve default, got %s", cfg.TraceDB)
	}
}

func TestLoadFromEnv(t *testing.T) {
	os.Setenv("EXPLORE_DEPTH_LIMIT", "5")
	os.Setenv("EXPLORE_ALGORITHM", "paxos")
	defer func() {
		os.Unsetenv("EXPLORE_DEPTH_LIMIT")
		os.Unsetenv("EXPLORE_ALGORITHM")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DepthLimit != 5 {
		t.Errorf("expected DepthLimit=5, got %d", cfg.DepthLimit)
	}
	if cfg.Algorithm != "paxos" {
		t.Errorf("expected Algorithm=paxos, got %s", cfg.Algorithm)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	os.WriteFile(path, []byte(`{"depth_limit": 20}`), 0644)

	os.Setenv("EXPLORE_DEPTH_LIMIT", "99")
	defer os.Unsetenv("EXPLORE_DEPTH_LIMIT")

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cfg.DepthLimit != 99 {
		t.Errorf("expected env override to win, got %d", cfg.DepthLimit)
	}
}
