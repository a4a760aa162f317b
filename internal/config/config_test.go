package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want 8080", cfg.ServerPort)
	}
	if cfg.TickIntervalSeconds != 10 {
		t.Errorf("TickIntervalSeconds = %d, want 10", cfg.TickIntervalSeconds)
	}
	if cfg.CoolRelayPin == cfg.HeatRelayPin {
		t.Error("default relay pins must differ")
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"server_port": 9090, "alert_high_f": 90}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ServerPort != 9090 {
		t.Errorf("ServerPort = %d, want 9090", cfg.ServerPort)
	}
	if cfg.AlertHighF != 90 {
		t.Errorf("AlertHighF = %v, want 90", cfg.AlertHighF)
	}
	// Unset fields keep their defaults.
	if cfg.GPIOChip != "gpiochip0" {
		t.Errorf("GPIOChip = %q, want gpiochip0", cfg.GPIOChip)
	}
}

func TestLoadRejectsInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() with broken JSON = nil error, want error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"zero tick interval", func(c *Config) { c.TickIntervalSeconds = 0 }, true},
		{"inverted sensor window", func(c *Config) { c.SensorMinF = 130 }, true},
		{"shared relay pin", func(c *Config) { c.HeatRelayPin = c.CoolRelayPin }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := DefaultConfig()
	cfg.ServerPort = 9999
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded.ServerPort != 9999 {
		t.Errorf("ServerPort = %d, want 9999", loaded.ServerPort)
	}
}

func TestDatabasePath(t *testing.T) {
	cfg := &Config{DataDir: "/var/lib/thermctl"}
	want := filepath.Join("/var/lib/thermctl", "thermctl.db")
	if got := cfg.DatabasePath(); got != want {
		t.Errorf("DatabasePath() = %q, want %q", got, want)
	}
}
