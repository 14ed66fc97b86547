// Firmware entry: load the board profile, run the light until it shuts
// down, then park.
package main

import (
	"context"

	"torchcode-go/bus"
	"torchcode-go/services/config"
	"torchcode-go/services/light"
	"torchcode-go/services/monitor"
	"torchcode-go/services/telemetry"
	"torchcode-go/x/logx"
)

// profileName is set at link time: -ldflags "-X main.profileName=blf-a6".
var profileName = "pico-fet1"

func main() {
	log := logx.New(logSink(), logx.LevelInfo)
	log.Info("boot", "profile", profileName)

	p, err := config.Lookup(profileName)
	if err != nil {
		log.Error("profile", "err", err)
		park()
		return
	}
	hw, err := light.DefaultHardware(p)
	if err != nil {
		log.Error("hardware", "err", err)
		park()
		return
	}

	ctx, cancel := runContext()
	defer cancel()

	b := bus.NewBus(8)
	mon := &monitor.Service{Log: log.With("monitor")}
	_ = mon.Start(ctx, b.NewConnection("monitor"))
	if link := telemetryLink(); link != nil {
		go func() {
			if err := telemetry.Start(ctx, b.NewConnection("telemetry"), telemetry.Options{Link: link, Log: log.With("telemetry")}); err != nil {
				log.Warn("telemetry stopped", "err", err)
			}
		}()
	}

	l, err := light.New(light.Options{Profile: p, Hardware: hw, Log: log, Conn: b.NewConnection("light")})
	if err != nil {
		log.Error("light", "err", err)
		park()
		return
	}
	if err := drive(ctx, l); err != nil && err != context.Canceled {
		log.Error("light", "err", err)
	}
	log.Info("halted", "state", l.State(), "mode", l.Index())
	park()
}
