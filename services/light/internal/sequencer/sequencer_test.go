package sequencer

import (
	"testing"

	"torchcode-go/services/config"
	"torchcode-go/services/light/internal/catalog"
	"torchcode-go/services/light/internal/press"
	"torchcode-go/types"
)

func mustCatalog(t *testing.T, name string) *catalog.Catalog {
	t.Helper()
	p, err := config.Lookup(name)
	if err != nil {
		t.Fatal(err)
	}
	c, err := catalog.Build(p)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

// Every transition output must be legal for every flag combination and
// every input index, including garbage ones.
func TestTransitionsAlwaysLegal(t *testing.T) {
	for _, name := range config.Names() {
		c := mustCatalog(t, name)
		for fb := 0; fb < 256; fb++ {
			f := types.DecodeSplit(uint8(fb))
			b := Derive(c, f)
			if !b.Legal(b.Start) {
				t.Fatalf("%s flags=0x%02x: Start %d illegal (%+v)", name, fb, b.Start, b)
			}
			for i := 0; i < 256; i++ {
				idx := uint8(i)
				dim, _ := b.Dimmer(idx)
				outs := []uint8{
					b.Advance(idx),
					b.RetreatOrCross(idx),
					b.ResetOrHold(idx, true),
					b.ResetOrHold(idx, false),
					b.Normalize(idx),
					b.TurboStepDown(nil),
					dim,
				}
				for k, o := range outs {
					if !b.Legal(o) {
						t.Fatalf("%s flags=0x%02x idx=%d: output %d = %d illegal (%+v)", name, fb, idx, k, o, b)
					}
				}
			}
		}
	}
}

func TestDeriveBLFA6(t *testing.T) {
	c := mustCatalog(t, "blf-a6")
	cases := []struct {
		name  string
		flags types.Flags
		want  Bounds
	}{
		{"default", types.Flags{}, Bounds{0, 6, 11, 14, true, 1, 1, 0}},
		{"reversed", types.Flags{Reversed: true}, Bounds{0, 6, 11, 14, true, 1, -1, 6}},
		{"group2", types.Flags{Group2: true}, Bounds{7, 10, 11, 14, true, 1, 1, 7}},
		{"moon off", types.Flags{MoonDisabled: true}, Bounds{1, 6, 11, 14, true, 1, 1, 1}},
		{"muggle", types.Flags{Muggle: true}, Bounds{0, 4, 11, 14, true, 1, 1, 0}},
		{"muggle reversed group2", types.Flags{Muggle: true, Reversed: true, Group2: true}, Bounds{7, 8, 11, 14, true, 1, -1, 8}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Derive(c, tc.flags); got != tc.want {
				t.Fatalf("Derive = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestAdvanceWraps(t *testing.T) {
	c := mustCatalog(t, "blf-a6")
	b := Derive(c, types.Flags{})
	seq := []uint8{1, 2, 3, 4, 5, 6, 0, 1}
	i := uint8(0)
	for n, want := range seq {
		i = b.Advance(i)
		if i != want {
			t.Fatalf("step %d: got %d, want %d", n, i, want)
		}
	}
	if got := b.Advance(12); got != b.Start {
		t.Fatalf("short press in hidden = %d, want Start", got)
	}

	r := Derive(c, types.Flags{Reversed: true})
	if got := r.Advance(0); got != 6 {
		t.Fatalf("reversed wrap = %d, want 6", got)
	}
}

func TestAdvanceGroupStep(t *testing.T) {
	c := mustCatalog(t, "pico-fet1") // group2 = 5..10 step 2
	b := Derive(c, types.Flags{Group2: true})
	i := b.Start
	var got []uint8
	for k := 0; k < 4; k++ {
		got = append(got, i)
		i = b.Advance(i)
	}
	want := []uint8{5, 7, 9, 5}
	for k := range want {
		if got[k] != want[k] {
			t.Fatalf("stepped walk = %v, want %v", got, want)
		}
	}
}

// Medium press at the lowest solid index going forward crosses into the
// hidden range instead of wrapping within the solid modes.
func TestMediumCrossesIntoHidden(t *testing.T) {
	c := mustCatalog(t, "blf-a6")
	b := Derive(c, types.Flags{MediumPress: true})
	if got := b.RetreatOrCross(b.SolidLow); got != b.HiddenLow {
		t.Fatalf("medium at SolidLow = %d, want HiddenLow %d", got, b.HiddenLow)
	}
	walk := []uint8{12, 13, 14, 0}
	i := b.HiddenLow
	for n, want := range walk {
		i = b.RetreatOrCross(i)
		if i != want {
			t.Fatalf("hidden walk step %d = %d, want %d", n, i, want)
		}
	}
	if got := b.RetreatOrCross(4); got != 3 {
		t.Fatalf("medium at 4 = %d, want 3", got)
	}

	r := Derive(c, types.Flags{Reversed: true})
	if got := r.RetreatOrCross(r.SolidHigh); got != r.HiddenLow {
		t.Fatalf("reversed medium at first mode = %d, want HiddenLow", got)
	}
	if got := r.RetreatOrCross(3); got != 4 {
		t.Fatalf("reversed medium at 3 = %d, want 4", got)
	}
}

func TestMediumWithoutHidden(t *testing.T) {
	p := &types.Profile{Groups: []types.Group{{Modes: []types.ModeSpec{{Secondary: 1}, {Secondary: 2}}}}}
	c, err := catalog.Build(p)
	if err != nil {
		t.Fatal(err)
	}
	b := Derive(c, types.Flags{})
	if got := b.RetreatOrCross(0); got != b.Start {
		t.Fatalf("no hidden: got %d, want Start", got)
	}
}

func TestNextDispatch(t *testing.T) {
	c := mustCatalog(t, "blf-a6")
	b := Derive(c, types.Flags{})
	if got := b.Next(3, press.Short, types.Flags{}); got != 4 {
		t.Errorf("short = %d", got)
	}
	if got := b.Next(3, press.Medium, types.Flags{}); got != 2 {
		t.Errorf("medium = %d", got)
	}
	if got := b.Next(3, press.Long, types.Flags{Memory: true}); got != 3 {
		t.Errorf("long with memory = %d", got)
	}
	if got := b.Next(3, press.Long, types.Flags{}); got != 0 {
		t.Errorf("long without memory = %d", got)
	}
	if got := b.Next(200, press.Long, types.Flags{Memory: true}); got != 0 {
		t.Errorf("long with memory on garbage = %d", got)
	}
}

func TestStepDowns(t *testing.T) {
	c := mustCatalog(t, "blf-a6")
	b := Derive(c, types.Flags{})
	if got := b.TurboStepDown(nil); got != 4 {
		t.Errorf("turbo step down = %d, want 4", got)
	}
	five, bad := uint8(5), uint8(99)
	if got := b.TurboStepDown(&five); got != 5 {
		t.Errorf("override = %d, want 5", got)
	}
	if got := b.TurboStepDown(&bad); got != 4 {
		t.Errorf("illegal override = %d, want 4", got)
	}

	cases := []struct {
		in, want uint8
		floor    bool
	}{
		{12, 0, false},
		{5, 4, false},
		{1, 0, false},
		{0, 0, true},
	}
	for _, tc := range cases {
		got, floor := b.Dimmer(tc.in)
		if got != tc.want || floor != tc.floor {
			t.Errorf("Dimmer(%d) = %d,%v want %d,%v", tc.in, got, floor, tc.want, tc.floor)
		}
	}
}
