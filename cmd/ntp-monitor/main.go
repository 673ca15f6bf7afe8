// Command ntp-monitor drives the status panel and buttons of a portable
// GPS-disciplined NTP server: it renders the GPS fix, chrony statistics and
// network status on the e-ink display, and turns button clicks into menu
// actions up to and including a staged power-off.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/rs/zerolog"

	"github.com/ve3nkl/portable-ntp-server/internal/button"
	"github.com/ve3nkl/portable-ntp-server/internal/command"
	"github.com/ve3nkl/portable-ntp-server/internal/config"
	"github.com/ve3nkl/portable-ntp-server/internal/display"
	"github.com/ve3nkl/portable-ntp-server/internal/events"
	"github.com/ve3nkl/portable-ntp-server/internal/monitor"
	"github.com/ve3nkl/portable-ntp-server/internal/source"
)

func main() {
	configPath := flag.String("config", "", "Path to the YAML config file")
	broker := flag.String("broker", "", "MQTT broker address (overrides config; empty keeps config)")
	gpsdAddr := flag.String("gpsd", source.DefaultGpsdAddr, "gpsd JSON socket address")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
	if !*debug {
		log = log.Level(zerolog.InfoLevel)
	}

	if err := run(log, *configPath, *broker, *gpsdAddr); err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
}

func run(log zerolog.Logger, configPath, brokerOverride, gpsdAddr string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if brokerOverride != "" {
		cfg.MQTT.Broker = brokerOverride
	}

	edges, err := button.NewRealEdgeSource(cfg.Buttons.Chip)
	if err != nil {
		return fmt.Errorf("open gpio: %w", err)
	}
	buttons := button.NewDebouncer(edges, log, cfg.ButtonConfig())

	position := source.NewGpsdSource(log, gpsdAddr)
	defer position.Close()
	timesync := source.NewChronySource(log)
	network := source.NewIfconfigSource(log)
	runner := command.NewExecRunner(log, cfg.Wifi.Script)

	var pub events.Publisher = events.NopPublisher{}
	if cfg.MQTT.Broker != "" {
		real, err := events.NewRealPublisher(cfg.MQTT.Broker)
		if err != nil {
			log.Warn().Err(err).Str("broker", cfg.MQTT.Broker).
				Msg("mqtt unavailable, events disabled")
		} else {
			buffered := events.NewBuffered(real, log, events.DefaultBufferSize)
			pub = events.NewRateLimited(buffered, cfg.MQTT.ClicksPerSecond)
		}
	}
	defer pub.Close()

	// TODO: attach the epd2in13 SPI driver as the sink once it is ported;
	// until then frames go to the log.
	sink := display.NewLogSink(log)

	mon, err := monitor.New(monitor.Deps{
		Position:  position,
		TimeSync:  timesync,
		Network:   network,
		Sink:      sink,
		Runner:    runner,
		Publisher: pub,
		Buttons:   buttons,
		Log:       log,
	}, cfg.MonitorConfig())
	if err != nil {
		buttons.Close()
		return fmt.Errorf("init monitor: %w", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sig
		log.Info().Str("signal", s.String()).Msg("stopping")
		mon.Stop(signalName(s))
	}()

	daemon.SdNotify(false, daemon.SdNotifyReady)
	mon.Run()
	daemon.SdNotify(false, daemon.SdNotifyStopping)

	mon.Teardown()

	if mon.ShutdownConfirmed() {
		log.Info().Msg("issuing system power-off")
		runner.Shutdown()
	}
	return nil
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return s.String()
}
