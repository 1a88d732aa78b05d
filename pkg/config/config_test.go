package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Level int    `yaml:"level"`
}

func (s *sample) Validate() error {
	if s.Level < 0 {
		return errors.New("level must not be negative")
	}
	return nil
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("LABJOURNAL_TEST_NAME", "from-env")
	path := writeConfig(t, "name: ${LABJOURNAL_TEST_NAME}\nlevel: 2\n")

	var s sample
	if err := Load(path, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "from-env" || s.Level != 2 {
		t.Errorf("sample = %+v", s)
	}
}

func TestLoad_ValidationError(t *testing.T) {
	path := writeConfig(t, "level: -1\n")
	var s sample
	err := Load(path, &s)
	if err == nil || !strings.Contains(err.Error(), "config validation failed") {
		t.Errorf("err = %v", err)
	}
}

func TestLoadOptional_MissingFileKeepsDefaults(t *testing.T) {
	s := sample{Name: "default", Level: 1}
	read, err := LoadOptional(filepath.Join(t.TempDir(), "absent.yaml"), &s)
	if err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if read || s.Name != "default" {
		t.Errorf("read=%v sample=%+v", read, s)
	}
}

func TestLoadOptional_EmptyNameValidates(t *testing.T) {
	s := sample{Level: -5}
	if _, err := LoadOptional("", &s); err == nil {
		t.Error("expected validation error for defaults")
	}
}

func TestLoadOptional_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, "level: 3\n")
	s := sample{Name: "default", Level: 1}
	read, err := LoadOptional(path, &s)
	if err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if !read || s.Name != "default" || s.Level != 3 {
		t.Errorf("read=%v sample=%+v", read, s)
	}
}
