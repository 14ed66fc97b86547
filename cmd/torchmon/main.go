//go:build !rp2040 && !rp2350

// Command torchmon follows a board's telemetry link from the host and logs
// every record it carries.
package main

import (
	"encoding/json"
	"flag"
	"io"
	"os"

	"github.com/tarm/serial"

	"torchcode-go/services/telemetry"
	"torchcode-go/x/logx"
)

var (
	device  = flag.String("device", "/dev/ttyACM0", "Serial device path, or - for stdin")
	baud    = flag.Int("baud", 115200, "Baud rate (ignored for USB CDC)")
	verbose = flag.Bool("verbose", false, "Print raw payload JSON")
)

func main() {
	flag.Parse()
	log := logx.New(os.Stderr, logx.LevelInfo)

	link, err := open(*device, *baud)
	if err != nil {
		log.Error("open failed", "device", *device, "err", err)
		os.Exit(1)
	}
	defer link.Close()

	log.Info("listening", "device", *device)
	err = telemetry.ReadRecords(link, func(r telemetry.Record) {
		line := []any{"topic", r.Topic}
		if m, ok := r.Payload.(map[string]any); ok {
			for _, k := range []string{"state", "mode", "voltage", "reason"} {
				if v, ok := m[k]; ok {
					line = append(line, k, field(v))
				}
			}
		}
		if *verbose {
			if b, err := json.Marshal(r.Payload); err == nil {
				line = append(line, "raw", string(b))
			}
		}
		log.Info("record", line...)
	})
	if err != nil {
		log.Error("link closed", "err", err)
		os.Exit(1)
	}
	log.Info("link closed by board")
}

func open(dev string, baud int) (io.ReadCloser, error) {
	if dev == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return serial.OpenPort(&serial.Config{Name: dev, Baud: baud})
}

// field narrows JSON numbers to ints so logx prints them without fmt.
func field(v any) any {
	if f, ok := v.(float64); ok {
		return int64(f)
	}
	return v
}
