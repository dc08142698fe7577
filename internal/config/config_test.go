package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := LoadConfig(t.TempDir())

	if got := cfg.EffectiveMarker(); got != "RemoteService" {
		t.Errorf("EffectiveMarker = %q, want RemoteService", got)
	}
	if got := cfg.EffectiveResultType(); got != "Result" {
		t.Errorf("EffectiveResultType = %q, want Result", got)
	}
	if got := cfg.EffectivePackageJSON(); got != "package.json" {
		t.Errorf("EffectivePackageJSON = %q, want package.json", got)
	}
	dirs := cfg.EffectiveServiceDirs()
	if len(dirs) != 1 || dirs[0] != "src/services" {
		t.Errorf("EffectiveServiceDirs = %v, want [src/services]", dirs)
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	rc := `generator:
  service_dirs:
    - ts/api
  marker: HostService
  result_type: Outcome
  out: gen/manifest.json
`
	if err := os.WriteFile(filepath.Join(dir, ".manifestrc"), []byte(rc), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := LoadConfig(dir)
	if got := cfg.EffectiveMarker(); got != "HostService" {
		t.Errorf("EffectiveMarker = %q, want HostService", got)
	}
	if got := cfg.EffectiveResultType(); got != "Outcome" {
		t.Errorf("EffectiveResultType = %q, want Outcome", got)
	}
	if got := cfg.EffectiveOut(); got != "gen/manifest.json" {
		t.Errorf("EffectiveOut = %q, want gen/manifest.json", got)
	}
	if !cfg.IsServiceModule("ts/api/deck.ts") {
		t.Error("ts/api/deck.ts should be a service module")
	}
	if cfg.IsServiceModule("src/services/deck.ts") {
		t.Error("default dir should no longer match")
	}
}

func TestInvalidYAMLFallsBack(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".manifestrc"), []byte("generator: [oops"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := LoadConfig(dir)
	if got := cfg.EffectiveMarker(); got != "RemoteService" {
		t.Errorf("EffectiveMarker after invalid YAML = %q, want default", got)
	}
}

func TestIsServiceModule(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		rel  string
		want bool
	}{
		{"src/services/deck.ts", true},
		{"src/services/nested/card.ts", true},
		{"src/servicesExtra/deck.ts", false},
		{"src/components/deck.ts", false},
		{"deck.ts", false},
	}
	for _, tt := range tests {
		if got := cfg.IsServiceModule(tt.rel); got != tt.want {
			t.Errorf("IsServiceModule(%q) = %v, want %v", tt.rel, got, tt.want)
		}
	}
}
