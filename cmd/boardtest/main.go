// Command boardtest is the bring-up check for a light board: PWM steps on
// both channels, both ADC channels, an EEPROM scratch cycle and the
// thermometer. It repeats until cyclesToRun is reached.
package main

import (
	"os"
	"time"

	"torchcode-go/services/config"
	"torchcode-go/services/light"
	"torchcode-go/x/logx"
)

const (
	profileName = "pico-fet1"
	cycleDwell  = 2 * time.Second
	// Cycles: 0 = loop forever
	cyclesToRun = 3
)

func main() {
	time.Sleep(2 * time.Second)
	log := logx.New(os.Stdout, logx.LevelInfo).With("boardtest")

	p, err := config.Lookup(profileName)
	if err != nil {
		log.Error("profile", "err", err)
		return
	}
	hw, err := light.DefaultHardware(p)
	if err != nil {
		log.Error("hardware", "err", err)
		return
	}

	for cycle := 1; cyclesToRun == 0 || cycle <= cyclesToRun; cycle++ {
		log.Info("cycle", "n", cycle)
		res := runChecks(hw, p, log)
		if passed(res) {
			log.Info("PASS", "cycle", cycle)
			blink(hw, 2, 120*time.Millisecond)
		} else {
			log.Warn("FAIL", "cycle", cycle)
			blink(hw, 1, 400*time.Millisecond)
		}
		hw.Delay.Delay(cycleDwell)
	}
	log.Info("completed", "cycles", cyclesToRun)
}

func blink(hw light.Hardware, n int, on time.Duration) {
	for i := 0; i < n; i++ {
		hw.Output.Render(0, 40)
		hw.Delay.Delay(on)
		hw.Output.Render(0, 0)
		hw.Delay.Delay(200 * time.Millisecond)
	}
}
