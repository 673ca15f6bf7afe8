package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ve3nkl/portable-ntp-server/internal/button"
	"github.com/ve3nkl/portable-ntp-server/internal/command"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "monitor.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Buttons.Chip != "gpiochip0" {
		t.Errorf("chip = %q, want gpiochip0", cfg.Buttons.Chip)
	}
	if cfg.Buttons.Top != button.DefaultOffsetTop {
		t.Errorf("top = %d, want %d", cfg.Buttons.Top, button.DefaultOffsetTop)
	}
	if got := cfg.Display.RefreshInterval.Std(); got != 5*time.Second {
		t.Errorf("refresh interval = %v, want 5s", got)
	}
	if cfg.Wifi.Mode != string(command.WifiAP) {
		t.Errorf("wifi mode = %q, want AP", cfg.Wifi.Mode)
	}
	if cfg.Wifi.Script != command.DefaultWifiScript {
		t.Errorf("wifi script = %q, want %q", cfg.Wifi.Script, command.DefaultWifiScript)
	}
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Buttons.Top != button.DefaultOffsetTop {
		t.Errorf("top = %d, want default", cfg.Buttons.Top)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
buttons:
  top: 17
  long_press: 1500ms
display:
  refresh_interval: 10s
wifi:
  mode: CLIENT
mqtt:
  broker: tcp://10.0.0.2:1883
  clicks_per_second: 5
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Buttons.Top != 17 {
		t.Errorf("top = %d, want 17", cfg.Buttons.Top)
	}
	// untouched keys keep their defaults
	if cfg.Buttons.Middle != button.DefaultOffsetMiddle {
		t.Errorf("middle = %d, want default", cfg.Buttons.Middle)
	}
	if got := cfg.Buttons.LongPress.Std(); got != 1500*time.Millisecond {
		t.Errorf("long press = %v, want 1.5s", got)
	}
	if got := cfg.Display.RefreshInterval.Std(); got != 10*time.Second {
		t.Errorf("refresh interval = %v, want 10s", got)
	}
	if cfg.MQTT.Broker != "tcp://10.0.0.2:1883" {
		t.Errorf("broker = %q", cfg.MQTT.Broker)
	}

	mc := cfg.MonitorConfig()
	if mc.RefreshInterval != 10*time.Second || mc.WifiMode != command.WifiClient || mc.Top != 17 {
		t.Errorf("MonitorConfig = %+v", mc)
	}
	bc := cfg.ButtonConfig()
	if bc.LongPress != 1500*time.Millisecond {
		t.Errorf("ButtonConfig.LongPress = %v", bc.LongPress)
	}
}

func TestLoadEmptyFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Buttons.Bottom != button.DefaultOffsetBottom {
		t.Errorf("bottom = %d, want default", cfg.Buttons.Bottom)
	}
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	_, err := Load(writeConfig(t, "buttons:\n  topp: 17\n"))
	if err == nil {
		t.Fatal("unknown key accepted")
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	_, err := Load(writeConfig(t, "display:\n  refresh_interval: fast\n"))
	if err == nil {
		t.Fatal("bad duration accepted")
	}
}

func TestLoadRejectsNegativeDuration(t *testing.T) {
	_, err := Load(writeConfig(t, "display:\n  refresh_interval: -5s\n"))
	if err == nil {
		t.Fatal("negative duration accepted")
	}
}

func TestValidateDuplicateOffsets(t *testing.T) {
	_, err := Load(writeConfig(t, "buttons:\n  top: 6\n"))
	if err == nil || !strings.Contains(err.Error(), "already used") {
		t.Fatalf("duplicate offsets accepted: %v", err)
	}
}

func TestValidateWifiMode(t *testing.T) {
	_, err := Load(writeConfig(t, "wifi:\n  mode: SOMETIMES\n"))
	if err == nil {
		t.Fatal("bad wifi mode accepted")
	}
}
