package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.NumTags != 9 || cfg.DefaultLayout != "tall" {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.EngineTimeout.Std() != 2*time.Second {
		t.Fatalf("engine timeout = %s, want 2s", cfg.EngineTimeout.Std())
	}
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
num_tags: 6
default_layout: byobu
log_level: debug
engine_timeout: 500ms
tag_layouts:
  3: tatami
engines:
  byobu: /opt/engines/byobu --gap 8
bindings:
  alt-1:
    command: VIEW_TAG
    payload:
      tag: 1
`)
	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.NumTags != 6 || cfg.DefaultLayout != "byobu" || cfg.LogLevel != "debug" {
		t.Fatalf("config = %+v", cfg)
	}
	if cfg.EngineTimeout.Std() != 500*time.Millisecond {
		t.Fatalf("engine timeout = %s", cfg.EngineTimeout.Std())
	}
	if cfg.TagLayouts[3] != "tatami" {
		t.Fatalf("tag layouts = %v", cfg.TagLayouts)
	}
	if cfg.Engines["byobu"] != "/opt/engines/byobu --gap 8" {
		t.Fatalf("engines = %v", cfg.Engines)
	}
	b, ok := cfg.Bindings["alt-1"]
	if !ok || b.Command != "VIEW_TAG" {
		t.Fatalf("bindings = %v", cfg.Bindings)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, "defalt_layout: byobu\n")
	if _, err := LoadFromPath(path); err == nil {
		t.Fatal("misspelled field should be rejected")
	}
}

func TestValidateRanges(t *testing.T) {
	cases := []string{
		"num_tags: 0\n",
		"num_tags: 33\n",
		"default_layout: \"\"\n",
		"log_level: loud\n",
		"engine_timeout: 0s\n",
		"num_tags: 4\ntag_layouts:\n  7: tatami\n",
		"bindings:\n  alt-1:\n    payload:\n      tag: 1\n",
	}
	for _, content := range cases {
		path := writeConfig(t, content)
		if _, err := LoadFromPath(path); err == nil {
			t.Errorf("config %q should be rejected", content)
		}
	}
}
