package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Data != "data/DATA.json" {
		t.Errorf("Data = %q, want default", cfg.Data)
	}
	if cfg.Port != 8080 || cfg.Workers != 4 || cfg.Dilate != 0 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadPriority(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	toml := "port = 9000\ndilate = 2\ndata = \"from-file.json\"\n"
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RESECTION_ANALYZER_DILATE", "-1")
	t.Setenv("RESECTION_ANALYZER_JSON_LOGS", "true")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("port", 8080, "")
	fs.String("data", "", "")
	if err := fs.Parse([]string{"--data", "from-flag.json"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(fs)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 9000 {
		t.Errorf("Port = %d, want 9000 from file (flag unchanged)", cfg.Port)
	}
	if cfg.Dilate != -1 {
		t.Errorf("Dilate = %d, want -1 from env", cfg.Dilate)
	}
	if !cfg.JSONLogs {
		t.Error("JSONLogs should be set from env")
	}
	if cfg.Data != "from-flag.json" {
		t.Errorf("Data = %q, want flag value", cfg.Data)
	}
}
