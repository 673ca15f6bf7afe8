package command

import (
	"os/exec"
	"time"

	"github.com/rs/zerolog"
)

// DefaultWifiScript is where the appliance image installs the mode-switch
// helper.
const DefaultWifiScript = "/home/pi/set_wifi.sh"

// clockFormat is the layout the date binary accepts with -s.
const clockFormat = "2006/01/02 15:04:05"

// ExecRunner invokes the real OS commands through sudo.
type ExecRunner struct {
	log        zerolog.Logger
	wifiScript string

	// start launches a command without waiting for it. Injectable for
	// tests.
	start func(name string, arg ...string) error
}

// NewExecRunner creates a Runner using the given wifi mode-switch script.
func NewExecRunner(log zerolog.Logger, wifiScript string) *ExecRunner {
	if wifiScript == "" {
		wifiScript = DefaultWifiScript
	}
	return &ExecRunner{
		log:        log.With().Str("component", "command").Logger(),
		wifiScript: wifiScript,
		start: func(name string, arg ...string) error {
			cmd := exec.Command(name, arg...)
			if err := cmd.Start(); err != nil {
				return err
			}
			// Reap in the background; the exit status is not our
			// concern.
			go cmd.Wait()
			return nil
		},
	}
}

// SetWifiMode runs the mode-switch script. Fire-and-forget.
func (r *ExecRunner) SetWifiMode(mode WifiMode) {
	r.log.Info().Str("mode", string(mode)).Msg("switching wifi mode")
	if err := r.start("sudo", r.wifiScript, string(mode)); err != nil {
		r.log.Error().Err(err).Msg("wifi mode switch failed to start")
	}
}

// SetClock sets the system clock to t.
func (r *ExecRunner) SetClock(t time.Time) {
	stamp := t.UTC().Format(clockFormat)
	r.log.Info().Str("time", stamp).Msg("setting system clock from GPS")
	if err := r.start("sudo", "date", "-u", "-s", stamp); err != nil {
		r.log.Error().Err(err).Msg("clock set failed to start")
	}
}

// Shutdown powers the system off.
func (r *ExecRunner) Shutdown() {
	r.log.Info().Msg("issuing shutdown")
	if err := r.start("sudo", "shutdown", "-h", "now"); err != nil {
		r.log.Error().Err(err).Msg("shutdown failed to start")
	}
}
