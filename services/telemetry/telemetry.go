// Package telemetry forwards bus messages over a byte link as
// length-prefixed frames, so a host on the other end of a UART can follow
// the light.
//
//	frame:   type(1) len(2, big endian) payload(len)
//	publish: payload is JSON {"topic":"light/state","retained":true,"payload":{...}}
package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"torchcode-go/bus"
	"torchcode-go/errcode"
	"torchcode-go/x/logx"
)

const (
	framePing  byte = 0x01
	framePub   byte = 0x10
	frameClose byte = 0x7f
)

var topicState = bus.T("telemetry", "state")

type Options struct {
	// Link receives frames. Required.
	Link io.Writer
	// Filter defaults to light/#.
	Filter bus.Topic
	// PingEvery writes an empty ping frame on this period. Zero disables.
	PingEvery time.Duration
	Log       *logx.Logger
}

// Record is the JSON body of a publish frame.
type Record struct {
	Topic    string `json:"topic"`
	Retained bool   `json:"retained,omitempty"`
	Payload  any    `json:"payload"`
}

type Service struct {
	conn *bus.Connection
	opt  Options
	wr   *framedWriter
	log  *logx.Logger
	sent int
}

// Start forwards until ctx is cancelled or the link fails. It blocks.
func Start(ctx context.Context, conn *bus.Connection, o Options) error {
	if o.Link == nil {
		return &errcode.E{C: errcode.InvalidParams, Op: "telemetry.start", Msg: "no link"}
	}
	if len(o.Filter) == 0 {
		o.Filter = bus.T("light", "#")
	}
	s := &Service{conn: conn, opt: o, wr: newFramedWriter(o.Link), log: o.Log}
	if s.log == nil {
		s.log = logx.Nop()
	}
	return s.run(ctx)
}

func (s *Service) run(ctx context.Context) error {
	sub := s.conn.Subscribe(s.opt.Filter)
	defer s.conn.Unsubscribe(sub)

	var ping <-chan time.Time
	if s.opt.PingEvery > 0 {
		t := time.NewTicker(s.opt.PingEvery)
		defer t.Stop()
		ping = t.C
	}
	s.publishState("up", "forwarding", nil)

	for {
		select {
		case <-ctx.Done():
			s.drain(sub)
			// Best effort; the link may already be gone.
			_ = s.wr.WriteFrame(Frame{Type: frameClose})
			s.publishState("idle", "stopped", nil)
			return nil
		case <-ping:
			if err := s.wr.WriteFrame(Frame{Type: framePing}); err != nil {
				return s.fail(err)
			}
		case msg, ok := <-sub.Channel():
			if !ok {
				return nil
			}
			if err := s.forward(msg); err != nil {
				if errcode.Of(err) == errcode.InvalidParams {
					s.log.Warn("dropping unencodable message", "topic", msg.Topic, "err", err)
					continue
				}
				return s.fail(err)
			}
		}
	}
}

// drain forwards whatever is already queued, without waiting.
func (s *Service) drain(sub *bus.Subscription) {
	for {
		select {
		case msg, ok := <-sub.Channel():
			if !ok || s.forward(msg) != nil {
				return
			}
		default:
			return
		}
	}
}

func (s *Service) forward(msg *bus.Message) error {
	body, err := json.Marshal(Record{Topic: msg.Topic.String(), Retained: msg.Retained, Payload: msg.Payload})
	if err != nil {
		return errcode.Wrap(errcode.InvalidParams, "telemetry.encode", err)
	}
	if err := s.wr.WriteFrame(Frame{Type: framePub, Payload: body}); err != nil {
		return err
	}
	s.sent++
	return nil
}

func (s *Service) fail(err error) error {
	s.log.Error("link write failed", "sent", s.sent, "err", err)
	s.publishState("error", "link_write_failed", err)
	return errcode.Wrap(errcode.Error, "telemetry.link", err)
}

func (s *Service) publishState(level, status string, err error) {
	payload := map[string]any{
		"level":  level,
		"status": status,
		"sent":   s.sent,
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	s.conn.Publish(s.conn.NewMessage(topicState, payload, true))
}

// ---- framing ----

// Frame is one length-prefixed unit on the link.
type Frame struct {
	Type    byte
	Payload []byte
}

var errFrameTooLarge = errors.New("telemetry: frame too large")

type framedReader struct{ r io.Reader }
type framedWriter struct{ w io.Writer }

func newFramedReader(r io.Reader) *framedReader { return &framedReader{r: r} }
func newFramedWriter(w io.Writer) *framedWriter { return &framedWriter{w: w} }

func (fr *framedReader) ReadFrame() (Frame, error) {
	var hdr [3]byte
	if _, err := io.ReadFull(fr.r, hdr[:]); err != nil {
		return Frame{}, err
	}
	n := int(hdr[1])<<8 | int(hdr[2])
	var buf []byte
	if n > 0 {
		buf = make([]byte, n)
		if _, err := io.ReadFull(fr.r, buf); err != nil {
			return Frame{}, err
		}
	}
	return Frame{Type: hdr[0], Payload: buf}, nil
}

// WriteFrame issues a single Write so frames from one writer never
// interleave.
func (fw *framedWriter) WriteFrame(f Frame) error {
	if len(f.Payload) > 0xFFFF {
		return errFrameTooLarge
	}
	b := make([]byte, 0, 3+len(f.Payload))
	b = append(b, f.Type, byte(len(f.Payload)>>8), byte(len(f.Payload)))
	b = append(b, f.Payload...)
	_, err := fw.w.Write(b)
	return err
}

// ReadRecords decodes publish frames from r until EOF, skipping pings. It
// is the host side of the link.
func ReadRecords(r io.Reader, fn func(Record)) error {
	fr := newFramedReader(r)
	for {
		f, err := fr.ReadFrame()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		switch f.Type {
		case framePub:
			var rec Record
			if err := json.Unmarshal(f.Payload, &rec); err != nil {
				return errcode.Wrap(errcode.InvalidParams, "telemetry.decode", err)
			}
			fn(rec)
		case frameClose:
			return nil
		}
	}
}
