//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"octopus/app"
	"octopus/hal"
	"octopus/internal/config"
	"octopus/octo/telemetry"
)

func main() {
	var run hal.HeadlessConfig
	var configPath, assets, flash, serialPort, broker, writeConfig string
	flag.StringVar(&configPath, "config", "octopus.yaml", "YAML config file (missing file = defaults).")
	flag.BoolVar(&run.Enabled, "headless", false, "Run without a window.")
	flag.IntVar(&run.Hz, "hz", 60, "Tick rate in headless mode.")
	flag.Uint64Var(&run.Ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run forever).")
	flag.StringVar(&assets, "assets", "", "Directory holding the dashboard bitmaps.")
	flag.StringVar(&flash, "flash", "", "Flash image file keeping the water counter.")
	flag.StringVar(&serialPort, "serial", "", "Send log lines to this serial port instead of stdout.")
	flag.StringVar(&broker, "mqtt", "", "MQTT broker URL for telemetry (e.g. tcp://localhost:1883).")
	flag.StringVar(&writeConfig, "write-config", "", "Write the resolved config to this file and exit.")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if assets != "" {
		cfg.Host.AssetsDir = assets
	}
	if flash != "" {
		cfg.Host.FlashPath = flash
	}
	if serialPort != "" {
		cfg.Host.SerialPort = serialPort
	}
	if broker != "" {
		cfg.Telemetry.Broker = broker
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if writeConfig != "" {
		if err := cfg.Save(writeConfig); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	hc := hal.DefaultHostConfig()
	hc.AssetsDir = cfg.Host.AssetsDir
	hc.FlashPath = cfg.Host.FlashPath
	hc.SerialPort = cfg.Host.SerialPort
	hc.SerialBaud = cfg.Host.SerialBaud
	hc.TankMinCM = cfg.Level.MinCM
	hc.TankMaxCM = cfg.Level.MaxCM

	newApp := func(h hal.HAL) (hal.App, error) { return newHostApp(h, cfg) }

	if run.Enabled {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := hal.RunHeadless(ctx, hc, newApp, run); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := hal.RunWindow(hc, newApp); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// hostApp adds the optional telemetry publisher to the app.
type hostApp struct {
	*app.App
	pub *telemetry.Publisher
}

func newHostApp(h hal.HAL, cfg *config.Config) (hal.App, error) {
	a, err := app.New(h, cfg)
	if err != nil {
		return nil, err
	}
	ha := &hostApp{App: a}
	if cfg.Telemetry.Broker == "" {
		return ha, nil
	}

	pub, err := telemetry.Dial(cfg.Telemetry, h.Logger())
	if err != nil {
		// The dashboard keeps running without a broker.
		h.Logger().WriteLineString(err.Error())
		return ha, nil
	}
	ha.pub = pub
	a.OnStep(func(s app.Snapshot) {
		pub.Publish(telemetry.Sample{
			Time:        s.Time,
			Level:       s.State.Level,
			LevelValid:  s.LevelValid,
			DistanceCM:  s.DistanceCM,
			Pump:        s.State.Pump,
			Valve:       s.State.Valve,
			PumpFailure: s.State.PumpFailure,
			FlowLPM:     s.FlowLPM,
			TotalLiters: s.TotalLiters,
		})
	})
	return ha, nil
}

func (a *hostApp) Close() error {
	if a.pub != nil {
		_ = a.pub.Close()
	}
	return a.App.Close()
}
