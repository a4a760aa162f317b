package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the fixed application configuration: hardware wiring, loop
// cadence, and collaborator endpoints. The tunable climate settings
// (targets, schedule) live in the database, not here.
type Config struct {
	// Server settings
	ServerPort int    `json:"server_port"`
	DataDir    string `json:"data_dir"`

	// Control loop
	TickIntervalSeconds int `json:"tick_interval_seconds"`

	// Sensor settings
	SensorDeviceID string  `json:"sensor_device_id"` // 1-wire device id, e.g. 28-00000a1b2c3d
	SensorMinF     float64 `json:"sensor_min_f"`     // readings outside this window are rejected
	SensorMaxF     float64 `json:"sensor_max_f"`

	// Alert thresholds (degrees F, 0 disables)
	AlertHighF float64 `json:"alert_high_f"`
	AlertLowF  float64 `json:"alert_low_f"`

	// Relay wiring and short-cycle protection
	GPIOChip          string `json:"gpio_chip"`
	CoolRelayPin      int    `json:"cool_relay_pin"`
	HeatRelayPin      int    `json:"heat_relay_pin"`
	CoolMinRunSeconds int    `json:"cool_min_run_seconds"`
	CoolMinOffSeconds int    `json:"cool_min_off_seconds"`
	HeatMinRunSeconds int    `json:"heat_min_run_seconds"`
	HeatMinOffSeconds int    `json:"heat_min_off_seconds"`

	// Notification channels (empty disables)
	DiscordWebhookURL string `json:"discord_webhook_url"`
	MQTTBrokerURL     string `json:"mqtt_broker_url"`
	MQTTTopicPrefix   string `json:"mqtt_topic_prefix"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".thermctl")

	return &Config{
		ServerPort:          8080,
		DataDir:             dataDir,
		TickIntervalSeconds: 10,
		SensorMinF:          40.0,
		SensorMaxF:          120.0,
		AlertHighF:          85.0,
		AlertLowF:           55.0,
		GPIOChip:            "gpiochip0",
		CoolRelayPin:        15,
		HeatRelayPin:        16,
		CoolMinRunSeconds:   30,
		CoolMinOffSeconds:   180,
		HeatMinRunSeconds:   300,
		HeatMinOffSeconds:   180,
		MQTTTopicPrefix:     "thermctl",
	}
}

// Load reads configuration from a JSON file, falling back to defaults for
// a missing file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings the control loop cannot run with.
func (c *Config) Validate() error {
	if c.TickIntervalSeconds <= 0 {
		return fmt.Errorf("tick_interval_seconds must be positive")
	}
	if c.SensorMinF >= c.SensorMaxF {
		return fmt.Errorf("sensor_min_f must be below sensor_max_f")
	}
	if c.CoolRelayPin == c.HeatRelayPin {
		return fmt.Errorf("cool and heat relays cannot share pin %d", c.CoolRelayPin)
	}
	return nil
}

// Save writes configuration to a JSON file
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// EnsureDataDir creates the data directory if it doesn't exist
func (c *Config) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0755)
}

// DatabasePath returns the path to the SQLite database
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "thermctl.db")
}
