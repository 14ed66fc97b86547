package supervisor

import (
	"context"
	"errors"
	"testing"

	"torchcode-go/services/config"
	"torchcode-go/services/light/internal/catalog"
	"torchcode-go/services/light/internal/halcore"
	"torchcode-go/services/light/internal/platform"
	"torchcode-go/types"
)

const (
	longPress   = 0
	mediumPress = 200
	shortPress  = 255
)

type recorder struct{ evs []types.Event }

func (r *recorder) Emit(ev types.Event) { r.evs = append(r.evs, ev) }

func (r *recorder) count(why types.Reason) int {
	n := 0
	for _, ev := range r.evs {
		if ev.Reason == why {
			n++
		}
	}
	return n
}

func (r *recorder) last() types.Event {
	if len(r.evs) == 0 {
		return types.Event{}
	}
	return r.evs[len(r.evs)-1]
}

// rig is one board whose store and retained word survive across boots.
type rig struct {
	t      *testing.T
	p      *types.Profile
	cat    *catalog.Catalog
	clk    *platform.VirtualClock
	out    *platform.FakeOutput
	smp    *platform.ScriptSampler
	st     *platform.MemStore
	ret    *platform.RAMRetainer
	pow    *platform.FakePower
	thermo halcore.Thermometer
	ev     *recorder
}

func newRig(t *testing.T, name string) *rig {
	t.Helper()
	p, err := config.Lookup(name)
	if err != nil {
		t.Fatal(err)
	}
	cat, err := catalog.Build(p)
	if err != nil {
		t.Fatal(err)
	}
	clk := &platform.VirtualClock{}
	return &rig{
		t:   t,
		p:   p,
		cat: cat,
		clk: clk,
		out: &platform.FakeOutput{Clock: clk},
		smp: platform.NewScriptSampler(longPress, 255),
		st:  platform.NewMemStore(platform.StoreCells(p)),
		ret: &platform.RAMRetainer{},
		pow: &platform.FakePower{},
		ev:  &recorder{},
	}
}

func (r *rig) boot(timer uint8) *Supervisor {
	r.t.Helper()
	r.smp.Set(halcore.ChannelTimer, timer)
	s, err := New(Options{
		Profile: r.p,
		Catalog: r.cat,
		Hardware: halcore.Hardware{
			Output:  r.out,
			Sampler: r.smp,
			Store:   r.st,
			Delay:   r.clk,
			Retain:  r.ret,
			Power:   r.pow,
			Thermo:  r.thermo,
		},
		Events: r.ev,
	})
	if err != nil {
		r.t.Fatalf("New: %v", err)
	}
	s.Boot()
	return s
}

// walk boots once per press and returns the last supervisor.
func (r *rig) walk(presses ...uint8) *Supervisor {
	r.t.Helper()
	var s *Supervisor
	for _, p := range presses {
		s = r.boot(p)
	}
	return s
}

func ticks(s *Supervisor, n int) {
	for i := 0; i < n; i++ {
		s.Tick()
	}
}

func TestBootErasedStoreWritesDefaults(t *testing.T) {
	r := newRig(t, "pico-fet1")
	s := r.boot(longPress)

	if s.State() != types.StateRendering {
		t.Fatalf("state = %v", s.State())
	}
	if s.Flags() != types.DefaultFlags() {
		t.Fatalf("flags = %+v, want defaults", s.Flags())
	}
	if s.Index() != 0 {
		t.Fatalf("index = %d, want 0", s.Index())
	}
	cells := r.st.Cells()
	if got, want := cells[r.p.Store.Cells], ^types.DefaultFlags().EncodeSplit(); got != want {
		t.Errorf("config cell = 0x%02x, want 0x%02x", got, want)
	}
	if cells[0] != ^uint8(0x05) {
		t.Errorf("ring cell 0 = 0x%02x", cells[0])
	}
	if r.smp.Armed != 1 {
		t.Errorf("timer armed %d times", r.smp.Armed)
	}
	if ev := r.ev.last(); ev.Kind != types.EventMode || ev.Reason != types.ReasonPress {
		t.Errorf("last event = %+v", ev)
	}

	// A second boot finds the saved config and leaves it alone.
	before := r.st.Writes[r.p.Store.Cells]
	r.boot(longPress)
	if r.st.Writes[r.p.Store.Cells] != before {
		t.Error("config cell rewritten on a configured boot")
	}
}

func TestShortPressesWalkAcrossBoots(t *testing.T) {
	r := newRig(t, "pico-fet1")
	r.boot(longPress)
	want := []uint8{1, 2, 3, 4, 0, 1}
	for n, w := range want {
		s := r.boot(shortPress)
		if s.Index() != w {
			t.Fatalf("short %d: index %d, want %d", n, s.Index(), w)
		}
		if s.Retained().FastPresses != uint8(n+1) {
			t.Fatalf("short %d: fast presses %d", n, s.Retained().FastPresses)
		}
	}
	if s := r.boot(longPress); s.Index() != 1 {
		t.Fatalf("long press with memory: index %d, want 1", s.Index())
	}
	if v, _ := halcore.UnpackRetained(r.ret.V); v.FastPresses != 0 {
		t.Fatal("long press must clear fast presses")
	}
}

func TestMediumPressCrossesIntoHidden(t *testing.T) {
	r := newRig(t, "pico-fet1")
	r.boot(longPress)

	s := r.boot(mediumPress)
	if s.Index() != 11 || s.Mode().Kind != types.KindBatteryCheck {
		t.Fatalf("first medium: index %d kind %v", s.Index(), s.Mode().Kind)
	}
	s = r.boot(mediumPress)
	if s.Index() != 12 || s.Mode().Kind != types.KindBikingStrobe {
		t.Fatalf("second medium: index %d kind %v", s.Index(), s.Mode().Kind)
	}
	if s = r.boot(shortPress); s.Index() != 0 {
		t.Fatalf("short from hidden: index %d, want 0", s.Index())
	}
}

func TestConfigEditAfterSixteenShorts(t *testing.T) {
	r := newRig(t, "blf-a6")
	r.boot(longPress)
	var s *Supervisor
	for i := 0; i < 16; i++ {
		s = r.boot(shortPress)
	}
	if s.Retained().FastPresses != 16 {
		t.Fatalf("fast presses = %d", s.Retained().FastPresses)
	}
	r.out.Reset()
	r.ev.evs = nil

	s.Tick()

	if s.State() != types.StateRendering {
		t.Fatalf("state after edit = %v", s.State())
	}
	if s.Index() != s.Bounds().SolidLow {
		t.Fatalf("index = %d, want SolidLow %d", s.Index(), s.Bounds().SolidLow)
	}
	if s.Flags() != types.DefaultFlags() {
		t.Fatalf("flags changed without a power cut: %+v", s.Flags())
	}
	if v, ok := halcore.UnpackRetained(r.ret.V); !ok || v.FastPresses != 0 {
		t.Fatalf("retained = %+v ok=%v", v, ok)
	}

	blink, buzz := r.p.Signal.Blink, r.p.Signal.Buzz
	n := len(types.CombinedEditable)
	if got, want := r.out.Count(blink[0], blink[1]), n*(n+1)/2; got != want {
		t.Errorf("number blinks = %d, want %d", got, want)
	}
	if got, want := r.out.Count(buzz[0], buzz[1]), n*buzzCount; got != want {
		t.Errorf("buzz frames = %d, want %d", got, want)
	}
	if r.ev.count(types.ReasonConfig) < 3 {
		t.Errorf("config events = %+v", r.ev.evs)
	}
	if r.ev.evs[0].State != types.StateConfigEdit {
		t.Errorf("first event = %+v", r.ev.evs[0])
	}

	// The edit persisted SolidLow, so the next long press resumes there.
	if s = r.boot(longPress); s.Index() != 0 {
		t.Fatalf("boot after edit: index %d", s.Index())
	}
}

func TestConfigEditSplitWrites(t *testing.T) {
	r := newRig(t, "pico-fet1")
	r.boot(longPress)
	var s *Supervisor
	for i := 0; i < 16; i++ {
		s = r.boot(shortPress)
	}
	cfg := r.p.Store.Cells
	before := r.st.Writes[cfg]
	s.Tick()
	if got, want := r.st.Writes[cfg]-before, 2*len(types.SplitEditable); got != want {
		t.Fatalf("config cell writes = %d, want %d", got, want)
	}
	if got := ^r.st.Cells()[cfg]; got != types.DefaultFlags().EncodeSplit() {
		t.Fatalf("config cell = 0x%02x after edit", got)
	}
}

func TestLowBatteryShutsDownAtFloor(t *testing.T) {
	r := newRig(t, "pico-fet1")
	s := r.boot(longPress)
	r.smp.Set(halcore.ChannelBattery, r.p.Battery.Low-2)

	ticks(s, r.p.Protect.LowRun-1)
	if s.State() != types.StateRendering {
		t.Fatalf("shut down after %d bad ticks", r.p.Protect.LowRun-1)
	}
	s.Tick()
	if s.State() != types.StateShutDown {
		t.Fatalf("state = %v after %d bad ticks", s.State(), r.p.Protect.LowRun)
	}
	if r.pow.Downs != 1 {
		t.Fatalf("PowerDown called %d times", r.pow.Downs)
	}
	if r.out.Last() != (platform.Frame{At: r.out.Last().At}) {
		t.Fatalf("last frame = %+v, want dark", r.out.Last())
	}
	if ev := r.ev.last(); ev.State != types.StateShutDown || ev.Reason != types.ReasonLowBattery {
		t.Fatalf("last event = %+v", ev)
	}
	if s = r.boot(longPress); s.Index() != 0 {
		t.Fatalf("persisted index = %d", s.Index())
	}
}

func TestLowBatteryStepsDown(t *testing.T) {
	r := newRig(t, "pico-fet1")
	s := r.walk(longPress, shortPress, shortPress, shortPress)
	if s.Index() != 3 {
		t.Fatalf("setup index = %d", s.Index())
	}
	low, good := r.p.Battery.Low-1, r.p.Battery.Low

	r.smp.Set(halcore.ChannelBattery, low)
	ticks(s, r.p.Protect.LowRun)
	if s.Index() != 2 {
		t.Fatalf("after %d bad ticks: index %d, want 2", r.p.Protect.LowRun, s.Index())
	}
	if r.ev.count(types.ReasonLowBattery) != 1 {
		t.Fatalf("low battery events = %d", r.ev.count(types.ReasonLowBattery))
	}

	// A good tick resets the run.
	ticks(s, r.p.Protect.LowRun-1)
	r.smp.Set(halcore.ChannelBattery, good)
	s.Tick()
	r.smp.Set(halcore.ChannelBattery, low)
	ticks(s, r.p.Protect.LowRun-1)
	if s.Index() != 2 {
		t.Fatalf("interrupted run stepped down to %d", s.Index())
	}
}

func TestTurboTimeoutFiresOnce(t *testing.T) {
	r := newRig(t, "pico-fet1")
	s := r.walk(longPress, shortPress, shortPress, shortPress, shortPress)
	if s.Mode().Kind != types.KindTurbo {
		t.Fatalf("setup mode = %+v", s.Mode())
	}
	ticks(s, r.p.Turbo.TimeoutTicks)
	if s.Index() != 4 {
		t.Fatalf("stepped down early at tick %d", r.p.Turbo.TimeoutTicks)
	}
	s.Tick()
	if s.Index() != 2 {
		t.Fatalf("index after timeout = %d, want 2", s.Index())
	}
	if f := r.out.Last(); f.Primary != 7 || f.Secondary != 255 {
		t.Fatalf("frame after step-down = %+v", f)
	}
	ticks(s, 2*r.p.Turbo.TimeoutTicks)
	if n := r.ev.count(types.ReasonTurbo); n != 1 {
		t.Fatalf("turbo events = %d", n)
	}
	if s = r.boot(longPress); s.Index() != 2 {
		t.Fatalf("step-down not persisted: %d", s.Index())
	}
}

// A step-down target that is itself turbo fires once and then holds.
func TestTurboOverrideToTurboFiresOnce(t *testing.T) {
	r := newRig(t, "pico-fet1")
	top := uint8(4)
	r.p.Turbo.StepDown = &top
	s := r.walk(longPress, shortPress, shortPress, shortPress, shortPress)
	ticks(s, r.p.Turbo.TimeoutTicks+1)
	if s.Index() != 4 || r.ev.count(types.ReasonTurbo) != 1 {
		t.Fatalf("index %d turbo events %d", s.Index(), r.ev.count(types.ReasonTurbo))
	}
	ticks(s, 2*r.p.Turbo.TimeoutTicks)
	if n := r.ev.count(types.ReasonTurbo); n != 1 {
		t.Fatalf("turbo events = %d, want 1", n)
	}

	// A fresh boot into turbo starts a new timeout.
	s = r.boot(longPress)
	ticks(s, r.p.Turbo.TimeoutTicks+1)
	if n := r.ev.count(types.ReasonTurbo); n != 2 {
		t.Fatalf("turbo events after reboot = %d, want 2", n)
	}
}

func TestCriticalBatteryAtBoot(t *testing.T) {
	r := newRig(t, "pico-fet1")
	r.smp.Set(halcore.ChannelBattery, r.p.Battery.Critical-1)
	s := r.boot(longPress)
	if s.State() != types.StateShutDown {
		t.Fatalf("state = %v", s.State())
	}
	if r.pow.Downs != 1 {
		t.Fatalf("PowerDown called %d times", r.pow.Downs)
	}
	blink := r.p.Signal.Blink
	if got := r.out.Count(blink[0], blink[1]); got != warnCount {
		t.Fatalf("warning blinks = %d", got)
	}
	if ev := r.ev.last(); ev.Reason != types.ReasonCritical {
		t.Fatalf("last event = %+v", ev)
	}
	s.Tick()
	if r.pow.Downs != 1 {
		t.Fatal("tick after shutdown did work")
	}
}

func TestLockInHoldsMode(t *testing.T) {
	r := newRig(t, "pico-fet1")
	f := types.DefaultFlags()
	f.LockIn = true
	r.st.Poke(r.p.Store.Cells, ^f.EncodeSplit())

	s := r.walk(longPress, shortPress)
	if s.Index() != 1 {
		t.Fatalf("setup index = %d", s.Index())
	}
	ticks(s, r.p.Protect.LockSettleTicks-1)
	if s.Retained().Locked {
		t.Fatal("locked too early")
	}
	s.Tick()
	if !s.Retained().Locked {
		t.Fatal("not locked after settle ticks")
	}

	s = r.boot(shortPress)
	if s.Index() != 1 {
		t.Fatalf("short while locked moved to %d", s.Index())
	}
	if s.Retained().FastPresses != 1 {
		t.Fatalf("fast presses while locked = %d", s.Retained().FastPresses)
	}
	s = r.boot(longPress)
	if s.Retained().Locked {
		t.Fatal("long press must unlock")
	}
	if s.Index() != 1 {
		t.Fatalf("long press with memory: index %d", s.Index())
	}
}

func TestThermalStepDown(t *testing.T) {
	r := newRig(t, "pico-fet1")
	th := &platform.FakeThermometer{MilliC: r.p.Protect.ThermalMilliC}
	r.thermo = th
	s := r.walk(longPress, shortPress, shortPress, shortPress)

	ticks(s, r.p.Protect.LowRun)
	if s.Index() != 2 {
		t.Fatalf("index = %d, want 2", s.Index())
	}
	if r.ev.count(types.ReasonThermal) != 1 {
		t.Fatalf("thermal events = %d", r.ev.count(types.ReasonThermal))
	}

	th.MilliC, th.Err = 0, errors.New("i2c nack")
	reads := th.Reads
	ticks(s, 2*r.p.Protect.LowRun)
	if s.Index() != 2 {
		t.Fatalf("read errors stepped down to %d", s.Index())
	}
	if th.Reads-reads != 2*r.p.Protect.LowRun {
		t.Fatalf("thermometer reads = %d", th.Reads-reads)
	}
}

func TestFastPressesClearedAfterTick(t *testing.T) {
	r := newRig(t, "pico-fet1")
	s := r.walk(longPress, shortPress, shortPress)
	if s.Retained().FastPresses != 2 {
		t.Fatalf("fast presses = %d", s.Retained().FastPresses)
	}
	s.Tick()
	if v, _ := halcore.UnpackRetained(r.ret.V); v.FastPresses != 0 {
		t.Fatalf("retained fast presses = %d after a tick", v.FastPresses)
	}
}

func TestGarbageRetainedWord(t *testing.T) {
	r := newRig(t, "pico-fet1")
	r.ret.V = 0xDEADBEEF
	s := r.boot(shortPress)
	if s.Retained().FastPresses != 1 || s.Retained().Locked {
		t.Fatalf("retained = %+v", s.Retained())
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	r := newRig(t, "pico-fet1")
	s, err := New(Options{Profile: r.p, Catalog: r.cat, Hardware: halcore.Hardware{
		Output: r.out, Sampler: r.smp, Store: r.st, Delay: r.clk, Retain: r.ret, Power: r.pow,
	}})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v", err)
	}
	if s.State() != types.StateRendering {
		t.Fatalf("state = %v", s.State())
	}
}

func TestRunEndsAtShutdown(t *testing.T) {
	r := newRig(t, "pico-fet1")
	r.smp.Set(halcore.ChannelBattery, r.p.Battery.Low-1)
	s, err := New(Options{Profile: r.p, Catalog: r.cat, Hardware: halcore.Hardware{
		Output: r.out, Sampler: r.smp, Store: r.st, Delay: r.clk, Retain: r.ret, Power: r.pow,
	}})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run = %v", err)
	}
	if s.State() != types.StateShutDown || r.pow.Downs != 1 {
		t.Fatalf("state %v downs %d", s.State(), r.pow.Downs)
	}
}

func TestCalibrationAppliesToReadings(t *testing.T) {
	r := newRig(t, "pico-fet1")
	s := r.boot(longPress)
	if err := s.SetCalibration(-5); err != nil {
		t.Fatal(err)
	}
	if got := r.st.Cells()[r.p.Store.Cells+1]; got != ^uint8(0xFB) {
		t.Fatalf("calibration cell = 0x%02x", got)
	}
	r.smp.Set(halcore.ChannelBattery, 200)
	s = r.boot(longPress)
	if s.Voltage() != 195 {
		t.Fatalf("voltage = %d, want 195", s.Voltage())
	}

	r.smp.Set(halcore.ChannelBattery, 2)
	s.Tick()
	if s.Voltage() != 0 {
		t.Fatalf("voltage = %d, want clamp at 0", s.Voltage())
	}
}

func TestBatteryBlinks(t *testing.T) {
	buckets := []uint8{121, 141, 154, 162, 170}
	cases := []struct {
		v    uint8
		want int
	}{
		{0, 0},
		{121, 0},
		{122, 1},
		{150, 2},
		{170, 4},
		{171, 5},
		{255, 5},
	}
	for _, tc := range cases {
		if got := BatteryBlinks(tc.v, buckets); got != tc.want {
			t.Errorf("BatteryBlinks(%d) = %d, want %d", tc.v, got, tc.want)
		}
	}
}

func TestHiddenPatternsRender(t *testing.T) {
	r := newRig(t, "pico-fet1")
	r.boot(longPress)
	want := []types.Kind{types.KindBatteryCheck, types.KindBikingStrobe, types.KindBeacon, types.KindStrobe, types.KindSOS}
	for _, k := range want {
		s := r.boot(mediumPress)
		if s.Mode().Kind != k {
			t.Fatalf("index %d kind %v, want %v", s.Index(), s.Mode().Kind, k)
		}
		r.out.Reset()
		start := r.clk.Now()
		s.Tick()
		if len(r.out.Frames) == 0 {
			t.Fatalf("%v drew nothing", k)
		}
		if r.clk.Now() == start {
			t.Fatalf("%v took no time", k)
		}
	}
}
