//go:build !rp2040 && !rp2350

package platform

import (
	"errors"
	"sync"
	"time"

	"torchcode-go/services/light/internal/halcore"
	"torchcode-go/types"
)

// DefaultHardware returns host fakes sized for p: an erased MemStore, a
// virtual clock and a sampler reading a long press on a full battery.
func DefaultHardware(p *types.Profile) (halcore.Hardware, error) {
	clk := &VirtualClock{}
	return halcore.Hardware{
		Output:  &FakeOutput{Clock: clk},
		Sampler: NewScriptSampler(0, 255),
		Store:   NewMemStore(StoreCells(p)),
		Delay:   clk,
		Retain:  &RAMRetainer{},
		Power:   &FakePower{},
	}, nil
}

// ----------------------------- Output ----------------------------------------

type Frame struct {
	Primary, Secondary uint8
	At                 time.Duration
}

// FakeOutput records every Render call. Clock, when set, stamps frames.
type FakeOutput struct {
	Clock  *VirtualClock
	Frames []Frame
}

func (o *FakeOutput) Render(primary, secondary uint8) {
	f := Frame{Primary: primary, Secondary: secondary}
	if o.Clock != nil {
		f.At = o.Clock.Now()
	}
	o.Frames = append(o.Frames, f)
}

// Last returns the most recent frame, zero if none.
func (o *FakeOutput) Last() Frame {
	if len(o.Frames) == 0 {
		return Frame{}
	}
	return o.Frames[len(o.Frames)-1]
}

// Count returns how many frames matched primary,secondary.
func (o *FakeOutput) Count(primary, secondary uint8) int {
	n := 0
	for _, f := range o.Frames {
		if f.Primary == primary && f.Secondary == secondary {
			n++
		}
	}
	return n
}

func (o *FakeOutput) Reset() { o.Frames = o.Frames[:0] }

// ----------------------------- Sampler ---------------------------------------

// ScriptSampler plays back queued readings per channel. When a queue runs
// dry the last value repeats.
type ScriptSampler struct {
	queues [2][]uint8
	last   [2]uint8
	Reads  [2]int
	Armed  int
}

func NewScriptSampler(timer, battery uint8) *ScriptSampler {
	s := &ScriptSampler{}
	s.last[halcore.ChannelTimer] = timer
	s.last[halcore.ChannelBattery] = battery
	return s
}

// Queue appends readings for ch.
func (s *ScriptSampler) Queue(ch halcore.Channel, vals ...uint8) {
	s.queues[ch] = append(s.queues[ch], vals...)
}

// Set replaces the queue for ch with a constant.
func (s *ScriptSampler) Set(ch halcore.Channel, v uint8) {
	s.queues[ch] = s.queues[ch][:0]
	s.last[ch] = v
}

func (s *ScriptSampler) Sample(ch halcore.Channel) uint8 {
	s.Reads[ch]++
	if q := s.queues[ch]; len(q) > 0 {
		s.last[ch] = q[0]
		s.queues[ch] = q[1:]
	}
	return s.last[ch]
}

func (s *ScriptSampler) ArmTimer() { s.Armed++ }

// ----------------------------- Store -----------------------------------------

// ErrPowerLost is returned by MemStore writes past FailAfter.
var ErrPowerLost = errors.New("power lost")

// MemStore is an erased-to-0xFF byte store that counts writes per cell.
// With FailAfter >= 0 the store accepts that many more writes and then
// rejects the rest, simulating power loss mid-sequence.
type MemStore struct {
	mu        sync.Mutex
	cells     []byte
	Writes    []int
	Log       []int // cell index of every accepted write, in order
	FailAfter int
}

func NewMemStore(n int) *MemStore {
	m := &MemStore{cells: make([]byte, n), Writes: make([]int, n), FailAfter: -1}
	for i := range m.cells {
		m.cells[i] = 0xFF
	}
	return m
}

func (m *MemStore) Len() int { return len(m.cells) }

func (m *MemStore) ReadCell(i int) (byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= len(m.cells) {
		return 0xFF, errors.New("memstore: index out of range")
	}
	return m.cells[i], nil
}

func (m *MemStore) WriteCell(i int, b byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= len(m.cells) {
		return errors.New("memstore: index out of range")
	}
	if m.FailAfter == 0 {
		return ErrPowerLost
	}
	if m.FailAfter > 0 {
		m.FailAfter--
	}
	m.cells[i] = b
	m.Writes[i]++
	m.Log = append(m.Log, i)
	return nil
}

// Cells returns a copy of the raw contents.
func (m *MemStore) Cells() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.cells...)
}

// Poke sets a cell without counting it as a write.
func (m *MemStore) Poke(i int, b byte) {
	m.mu.Lock()
	m.cells[i] = b
	m.mu.Unlock()
}

// ResetCounters clears write statistics and re-enables writes.
func (m *MemStore) ResetCounters() {
	m.mu.Lock()
	for i := range m.Writes {
		m.Writes[i] = 0
	}
	m.Log = m.Log[:0]
	m.FailAfter = -1
	m.mu.Unlock()
}

// ----------------------------- Time ------------------------------------------

// VirtualClock implements Delayer by accumulating simulated time.
type VirtualClock struct {
	now time.Duration
}

func (c *VirtualClock) Delay(d time.Duration) {
	if d > 0 {
		c.now += d
	}
}

func (c *VirtualClock) Now() time.Duration { return c.now }

// ----------------------------- Retained / power / thermal --------------------

type RAMRetainer struct{ V uint32 }

func (r *RAMRetainer) Load() uint32   { return r.V }
func (r *RAMRetainer) Store(v uint32) { r.V = v }

type FakePower struct{ Downs int }

func (p *FakePower) PowerDown() { p.Downs++ }

// FakeThermometer returns MilliC, or Err when set.
type FakeThermometer struct {
	MilliC int32
	Err    error
	Reads  int
}

func (f *FakeThermometer) MilliCelsius() (int32, error) {
	f.Reads++
	if f.Err != nil {
		return 0, f.Err
	}
	return f.MilliC, nil
}
