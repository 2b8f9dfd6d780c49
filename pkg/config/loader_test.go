package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoader_DefaultsOnly(t *testing.T) {
	l := NewLoader(WithConfigPaths("nonexistent.yaml"))
	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Engine.Iterations != 1000 {
		t.Errorf("Engine.Iterations = %d, want 1000", cfg.Engine.Iterations)
	}
	if cfg.Engine.Parallelism != 1 {
		t.Errorf("Engine.Parallelism = %d, want 1", cfg.Engine.Parallelism)
	}
}

func TestLoader_ConfigFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "netgraph.yaml")
	content := "engine:\n  iterations: 50\n  parallelism: 4\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(WithConfigPaths(path))
	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Engine.Iterations != 50 {
		t.Errorf("Engine.Iterations = %d, want 50", cfg.Engine.Iterations)
	}
	if cfg.Engine.Parallelism != 4 {
		t.Errorf("Engine.Parallelism = %d, want 4", cfg.Engine.Parallelism)
	}
}

func TestLoader_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "netgraph.yaml")
	if err := os.WriteFile(path, []byte("engine:\n  iterations: 50\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("NETGRAPH_ENGINE_ITERATIONS", "777")

	l := NewLoader(WithConfigPaths(path))
	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Engine.Iterations != 777 {
		t.Errorf("Engine.Iterations = %d, want 777 (env override)", cfg.Engine.Iterations)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := &Config{Engine: EngineConfig{Parallelism: -1}}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative parallelism")
	}
}
