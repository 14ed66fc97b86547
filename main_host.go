//go:build !rp2040 && !rp2350

package main

import (
	"context"
	"io"
	"os"

	"torchcode-go/services/light"
)

// hostTicks bounds a host run. The fakes run on virtual time and would
// otherwise tick as fast as the CPU allows.
const hostTicks = 10

func logSink() io.Writer       { return os.Stderr }
func telemetryLink() io.Writer { return nil }

func runContext() (context.Context, context.CancelFunc) {
	return context.WithCancel(context.Background())
}

func drive(ctx context.Context, l *light.Light) error {
	l.Boot()
	for i := 0; i < hostTicks; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		l.Tick()
	}
	return nil
}

func park() {}
