// Package monitor logs light events from the bus and, when configured, a
// periodic heartbeat line with the running event count.
package monitor

import (
	"context"
	"time"

	"torchcode-go/bus"
	"torchcode-go/types"
	"torchcode-go/x/logx"
)

var topicConfigMonitor = bus.T("config", "monitor")

type Service struct {
	Log *logx.Logger
	// Filter defaults to light/#.
	Filter bus.Topic
	// Interval enables the heartbeat line. Zero disables it until a config
	// message on config/monitor sets one.
	Interval time.Duration

	events int
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	log := s.Log
	if log == nil {
		log = logx.Nop()
	}
	filter := s.Filter
	if len(filter) == 0 {
		filter = bus.T("light", "#")
	}
	evSub := conn.Subscribe(filter)
	defer conn.Unsubscribe(evSub)
	cfgSub := conn.Subscribe(topicConfigMonitor)
	defer conn.Unsubscribe(cfgSub)

	tick := time.NewTicker(time.Hour)
	defer tick.Stop()
	if s.Interval > 0 {
		tick.Reset(s.Interval)
	} else {
		tick.Stop()
	}

	for {
		select {
		case <-ctx.Done():
			s.drain(log, evSub)
			log.Info("monitor stopping", "events", s.events)
			return
		case <-tick.C:
			log.Info("heartbeat", "events", s.events)
		case msg, ok := <-evSub.Channel():
			if !ok {
				return
			}
			s.events++
			logMessage(log, msg)
		case msg, ok := <-cfgSub.Channel():
			if !ok {
				return
			}
			iv, ok := intervalOf(msg.Payload)
			if !ok {
				log.Warn("bad monitor config", "topic", msg.Topic)
				continue
			}
			if iv <= 0 {
				tick.Stop()
			} else {
				tick.Reset(iv)
			}
			log.Info("heartbeat interval set", "ms", iv.Milliseconds())
		}
	}
}

// drain logs events already queued, without waiting.
func (s *Service) drain(log *logx.Logger, sub *bus.Subscription) {
	for {
		select {
		case msg, ok := <-sub.Channel():
			if !ok {
				return
			}
			s.events++
			logMessage(log, msg)
		default:
			return
		}
	}
}

func logMessage(log *logx.Logger, msg *bus.Message) {
	ev, ok := msg.Payload.(types.Event)
	if !ok {
		log.Debug("message", "topic", msg.Topic)
		return
	}
	if ev.Kind == types.EventState {
		log.Info("state", "state", ev.State, "mode", ev.Mode, "volts", ev.Voltage, "reason", string(ev.Reason))
		return
	}
	log.Info("mode", "mode", ev.Mode, "volts", ev.Voltage, "reason", string(ev.Reason))
}

// intervalOf accepts a duration or a map with an "interval" in seconds,
// the shape a JSON config decodes to.
func intervalOf(p any) (time.Duration, bool) {
	switch v := p.(type) {
	case time.Duration:
		return v, true
	case map[string]any:
		if f, ok := v["interval"].(float64); ok {
			return time.Duration(f * float64(time.Second)), true
		}
	}
	return 0, false
}

// Run blocks until ctx is cancelled or a subscription closes.
func (s *Service) Run(ctx context.Context, conn *bus.Connection) {
	s.serviceLoop(ctx, conn)
}

// Start runs the monitor on its own goroutine.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}
