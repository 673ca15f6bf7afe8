// Package config loads the appliance configuration from a YAML file.
// Every field has a working default, so an empty file (or no file at all)
// yields a runnable configuration; unknown keys are rejected so a typo in
// the field name fails loudly instead of silently keeping the default.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	yaml "go.yaml.in/yaml/v3"

	"github.com/ve3nkl/portable-ntp-server/internal/button"
	"github.com/ve3nkl/portable-ntp-server/internal/command"
	"github.com/ve3nkl/portable-ntp-server/internal/monitor"
)

// Duration is a time.Duration that unmarshals from YAML strings like "5s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if v < 0 {
		return fmt.Errorf("duration %q must be >= 0", s)
	}
	*d = Duration(v)
	return nil
}

// Std returns the duration as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full appliance configuration.
type Config struct {
	Buttons Buttons `yaml:"buttons"`
	Display Display `yaml:"display"`
	Wifi    Wifi    `yaml:"wifi"`
	MQTT    MQTT    `yaml:"mqtt"`
}

// Buttons configures the GPIO chip and the panel button lines.
type Buttons struct {
	Chip   string `yaml:"chip"`
	Top    int    `yaml:"top"`
	Middle int    `yaml:"middle"`
	Bottom int    `yaml:"bottom"`

	Poll      Duration `yaml:"poll"`
	Settle    Duration `yaml:"settle"`
	LongPress Duration `yaml:"long_press"`
}

// Display configures the refresh cadence.
type Display struct {
	RefreshInterval Duration `yaml:"refresh_interval"`
}

// Wifi configures the boot wifi mode and the mode-switch script.
type Wifi struct {
	Mode   string `yaml:"mode"`
	Script string `yaml:"script"`
}

// MQTT configures event publishing. An empty broker disables it.
type MQTT struct {
	Broker          string `yaml:"broker"`
	ClicksPerSecond int    `yaml:"clicks_per_second"`
}

// Default returns the configuration the appliance image ships with.
func Default() *Config {
	return &Config{
		Buttons: Buttons{
			Chip:   "gpiochip0",
			Top:    button.DefaultOffsetTop,
			Middle: button.DefaultOffsetMiddle,
			Bottom: button.DefaultOffsetBottom,
		},
		Display: Display{
			RefreshInterval: Duration(monitor.DefaultRefreshInterval),
		},
		Wifi: Wifi{
			Mode:   string(command.WifiAP),
			Script: command.DefaultWifiScript,
		},
		MQTT: MQTT{
			ClicksPerSecond: 2,
		},
	}
}

// Load reads the YAML file at path on top of the defaults. A missing file
// is not an error; a malformed or unknown field is.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.unmarshalStrict(data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) unmarshalStrict(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	// an empty document keeps the defaults
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) validate() error {
	offs := map[int]string{}
	for _, b := range []struct {
		name   string
		offset int
	}{
		{"top", c.Buttons.Top},
		{"middle", c.Buttons.Middle},
		{"bottom", c.Buttons.Bottom},
	} {
		if b.offset <= 0 {
			return fmt.Errorf("buttons.%s: offset %d out of range", b.name, b.offset)
		}
		if prev, dup := offs[b.offset]; dup {
			return fmt.Errorf("buttons.%s: offset %d already used by %s", b.name, b.offset, prev)
		}
		offs[b.offset] = b.name
	}

	switch command.WifiMode(c.Wifi.Mode) {
	case command.WifiAP, command.WifiClient, command.WifiOff:
	default:
		return fmt.Errorf("wifi.mode: %q is not AP, CLIENT or OFF", c.Wifi.Mode)
	}

	if c.MQTT.ClicksPerSecond < 0 {
		return fmt.Errorf("mqtt.clicks_per_second: must be >= 0")
	}
	return nil
}

// ButtonConfig translates the button section into the debouncer's terms.
func (c *Config) ButtonConfig() button.Config {
	return button.Config{
		PollInterval: c.Buttons.Poll.Std(),
		Settle:       c.Buttons.Settle.Std(),
		LongPress:    c.Buttons.LongPress.Std(),
	}
}

// MonitorConfig translates the display and wifi sections into the
// monitor's terms.
func (c *Config) MonitorConfig() monitor.Config {
	return monitor.Config{
		RefreshInterval: c.Display.RefreshInterval.Std(),
		WifiMode:        command.WifiMode(c.Wifi.Mode),
		Top:             c.Buttons.Top,
		Middle:          c.Buttons.Middle,
		Bottom:          c.Buttons.Bottom,
	}
}
