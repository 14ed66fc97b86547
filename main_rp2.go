//go:build rp2040 || rp2350

package main

import (
	"context"
	"io"
	"machine"
	"time"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"

	"torchcode-go/services/light"
)

// UART0 on GP16/GP17; GP0/GP1 carry the PWM outputs.
const (
	logBaud = 115200
	logTX   = machine.GPIO16
	logRX   = machine.GPIO17
)

func logSink() io.Writer {
	// Allow USB CDC to enumerate before the first line.
	time.Sleep(2 * time.Second)
	u := uartx.UART0
	_ = u.Configure(uartx.UARTConfig{BaudRate: logBaud, TX: logTX, RX: logRX})
	return u
}

// telemetryLink is the USB CDC serial port.
func telemetryLink() io.Writer { return machine.Serial }

func runContext() (context.Context, context.CancelFunc) {
	return context.WithCancel(context.Background())
}

func drive(ctx context.Context, l *light.Light) error { return l.Run(ctx) }

// park idles the core once the light has powered down.
func park() {
	for {
		time.Sleep(time.Hour)
	}
}
