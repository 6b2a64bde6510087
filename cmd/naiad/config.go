package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	flags "github.com/jessevdk/go-flags"
	yaml "gopkg.in/yaml.v2"

	"github.com/formicidae-tracker/naiad/internal/naiad"
)

type MetricsConfig struct {
	Address string `yaml:"address"`
}

type Config struct {
	Zones                int           `yaml:"zones"`
	Columns              int           `yaml:"columns"`
	SensorsCheckInterval time.Duration `yaml:"sensors-check-interval"`
	RPCPort              int           `yaml:"rpc-port"`
	OTELEndpoint         string        `yaml:"otel-endpoint"`
	Verbosity            int           `yaml:"-"`
	JournalDir           string        `yaml:"journal-dir"`
	Program              string        `yaml:"program"`
	MQTT                 MQTTConfig    `yaml:"mqtt"`
	Metrics              MetricsConfig `yaml:"metrics"`
}

const (
	DEFAULT_CONFIG_PATH = "/etc/default/naiad.yml"
	DefaultZones        = 15
	DefaultColumns      = 3
	DefaultMaxFailures  = 3
)

func DefaultConfig() *Config {
	return &Config{
		Zones:                DefaultZones,
		Columns:              DefaultColumns,
		SensorsCheckInterval: naiad.DefaultSensorsCheckInterval,
		RPCPort:              naiad.NAIAD_PORT,
		JournalDir:           filepath.Join(xdg.DataHome, "naiad", "journal"),
		MQTT: MQTTConfig{
			TopicPrefix: "naiad",
			ClientID:    "naiad",
			MaxFailures: DefaultMaxFailures,
		},
	}
}

func OpenConfigFromArg(option flags.Filename) (*Config, error) {
	configPath := DEFAULT_CONFIG_PATH
	if len(option) > 0 {
		configPath = string(option)
	}
	return OpenConfig(configPath)
}

// OpenConfig reads a YAML configuration. Missing keys keep their
// default value.
func OpenConfig(filename string) (*Config, error) {
	c := DefaultConfig()
	buf, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(buf, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (c Config) Check() error {
	if c.Zones <= 0 {
		return fmt.Errorf("invalid zones %d: should be strictly positive", c.Zones)
	}
	if c.Columns <= 0 {
		return fmt.Errorf("invalid columns %d: should be strictly positive", c.Columns)
	}
	if c.SensorsCheckInterval <= 0 {
		return fmt.Errorf("invalid sensors-check-interval %s: should be strictly positive", c.SensorsCheckInterval)
	}
	if c.RPCPort <= 0 || c.RPCPort > 65535 {
		return fmt.Errorf("invalid rpc-port %d", c.RPCPort)
	}
	if len(c.MQTT.Broker) > 0 && len(c.MQTT.TopicPrefix) == 0 {
		return fmt.Errorf("invalid mqtt definition: empty topic-prefix")
	}
	return nil
}
