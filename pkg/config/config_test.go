package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type testConfig struct {
	Name  string `yaml:"name"`
	Port  int    `yaml:"port"`
	Inner struct {
		Dir string `yaml:"dir"`
	} `yaml:"inner"`
}

func (c *testConfig) Validate() error {
	if c.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("WIKITY_TEST_DIR", "/srv/site")
	p := writeConfig(t, "name: demo\nport: 9000\ninner:\n  dir: ${WIKITY_TEST_DIR}\n")

	cfg := testConfig{Name: "default"}
	if err := Load(p, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "demo" || cfg.Port != 9000 || cfg.Inner.Dir != "/srv/site" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadKeepsUnsetDefaults(t *testing.T) {
	p := writeConfig(t, "port: 1\n")
	cfg := testConfig{Name: "default"}
	if err := Load(p, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "default" {
		t.Errorf("name = %q, want default", cfg.Name)
	}
}

func TestLoadValidates(t *testing.T) {
	p := writeConfig(t, "port: 0\n")
	err := Load(p, &testConfig{})
	if err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Fatalf("err = %v, want validation failure", err)
	}
}

func TestLoadBadYAML(t *testing.T) {
	p := writeConfig(t, "port: [\n")
	if err := Load(p, &testConfig{}); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadOptional(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	cfg := testConfig{Name: "default", Port: 8080}
	if err := LoadOptional(missing, &cfg); err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if cfg.Name != "default" || cfg.Port != 8080 {
		t.Errorf("defaults changed: %+v", cfg)
	}

	if err := LoadOptional("", &testConfig{}); err == nil {
		t.Error("defaults should still be validated")
	}

	p := writeConfig(t, "port: 7\n")
	if err := LoadOptional(p, &cfg); err != nil {
		t.Fatalf("existing file: %v", err)
	}
	if cfg.Port != 7 {
		t.Errorf("port = %d, want 7", cfg.Port)
	}
}
