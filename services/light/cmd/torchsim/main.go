//go:build !rp2040 && !rp2350

// Command torchsim runs the light core against host fakes. Each press in
// the script is one power cycle; the store and retained word carry over
// between them, the same as on a board.
//
//	torchsim -profile pico-fet1 -presses "l,s*3,m" -ticks 5
package main

import (
	"context"
	"flag"
	"os"

	"torchcode-go/bus"
	"torchcode-go/services/config"
	"torchcode-go/services/light"
	"torchcode-go/services/light/internal/halcore"
	"torchcode-go/services/light/internal/platform"
	"torchcode-go/services/monitor"
	"torchcode-go/services/telemetry"
	"torchcode-go/types"
	"torchcode-go/x/logx"
)

var (
	profile   = flag.String("profile", "pico-fet1", "Embedded profile name or a .json/.yaml file")
	presses   = flag.String("presses", "l,s,s,m", "Press script: s, m, l or a raw reading; x*N repeats")
	ticks     = flag.Int("ticks", 3, "Ticks to run after each boot")
	volts     = flag.Uint("volts", 170, "Battery reading at boot (0..255)")
	drain     = flag.Int("drain", 0, "Battery reading lost per tick")
	calibrate = flag.Int("calibrate", 0, "Store a battery calibration trim before the first boot")
	tempMC    = flag.Int("temp", 0, "Thermometer reading in milli-degrees C; 0 means no thermometer")
	record    = flag.String("telemetry", "", "Write telemetry frames to this file")
	verbose   = flag.Bool("verbose", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	lvl := logx.LevelInfo
	if *verbose {
		lvl = logx.LevelDebug
	}
	log := logx.New(os.Stderr, lvl)

	if err := run(log); err != nil {
		log.Error("torchsim failed", "err", err)
		os.Exit(1)
	}
}

func run(log *logx.Logger) error {
	p, err := config.Load(*profile)
	if err != nil {
		return err
	}
	script, err := parsePresses(*presses)
	if err != nil {
		return err
	}

	clk := &platform.VirtualClock{}
	out := &platform.FakeOutput{Clock: clk}
	smp := platform.NewScriptSampler(sampleLong, uint8(*volts))
	store := platform.NewMemStore(platform.StoreCells(p))
	hw := halcore.Hardware{
		Output:  out,
		Sampler: smp,
		Store:   store,
		Delay:   clk,
		Retain:  &platform.RAMRetainer{},
		Power:   &platform.FakePower{},
	}
	if *tempMC != 0 {
		hw.Thermo = &platform.FakeThermometer{MilliC: int32(*tempMC)}
	}

	b := bus.NewBus(64)
	ctx, cancel := context.WithCancel(context.Background())
	mon := &monitor.Service{Log: log.With("monitor")}
	monDone := make(chan struct{})
	go func() {
		mon.Run(ctx, b.NewConnection("monitor"))
		close(monDone)
	}()

	var telDone chan error
	if *record != "" {
		f, err := os.Create(*record)
		if err != nil {
			cancel()
			return err
		}
		defer f.Close()
		telDone = make(chan error, 1)
		go func() {
			telDone <- telemetry.Start(ctx, b.NewConnection("telemetry"), telemetry.Options{Link: f, Log: log.With("telemetry")})
		}()
	}

	conn := b.NewConnection("light")
	for n, sample := range script {
		smp.Set(halcore.ChannelTimer, sample)
		smp.Set(halcore.ChannelBattery, uint8(*volts))
		smp.Queue(halcore.ChannelBattery, batteryRamp(uint8(*volts), *drain, *ticks)...)

		l, err := light.New(light.Options{Profile: p, Hardware: hw, Log: log, Conn: conn})
		if err != nil {
			cancel()
			return err
		}
		if n == 0 && *calibrate != 0 {
			if err := l.SetCalibration(int8(*calibrate)); err != nil {
				log.Warn("calibration not stored", "err", err)
			}
		}
		start := clk.Now()
		l.Boot()
		for i := 0; i < *ticks && l.State() != types.StateShutDown; i++ {
			l.Tick()
		}
		log.Info("cycle", "n", n+1, "press", l.Press(), "mode", l.Index(), "is", describe(l.Mode()),
			"state", l.State(), "volts", l.Voltage(), "ms", (clk.Now() - start).Milliseconds())
	}

	// Both services drain their queues before returning.
	cancel()
	<-monDone
	if telDone != nil {
		if err := <-telDone; err != nil {
			return err
		}
	}

	writes := 0
	for _, w := range store.Writes {
		writes += w
	}
	log.Info("done", "cycles", len(script), "frames", len(out.Frames), "store_writes", writes,
		"virtual_ms", clk.Now().Milliseconds())
	return nil
}
