package ramp

import (
	"testing"
	"time"
)

func TestLinearMonotonicEndsAtTarget(t *testing.T) {
	var got []uint8
	var waited time.Duration
	Linear(0, 255, time.Second, 10,
		func(d time.Duration) bool { waited += d; return true },
		func(l uint8) { got = append(got, l) })

	if len(got) == 0 || got[len(got)-1] != 255 {
		t.Fatalf("levels = %v", got)
	}
	for i := 1; i < len(got); i++ {
		if got[i] < got[i-1] {
			t.Fatalf("not monotonic: %v", got)
		}
	}
	if waited != time.Second {
		t.Fatalf("waited %v", waited)
	}
}

func TestLinearDown(t *testing.T) {
	var last uint8 = 99
	Linear(200, 20, 100*time.Millisecond, 4, func(time.Duration) bool { return true }, func(l uint8) {
		if l > last && last != 99 {
			t.Fatalf("rose from %d to %d", last, l)
		}
		last = l
	})
	if last != 20 {
		t.Fatalf("ended at %d", last)
	}
}

func TestLinearSnapAndCancel(t *testing.T) {
	var got []uint8
	set := func(l uint8) { got = append(got, l) }
	Linear(10, 90, 0, 5, nil, set)
	if len(got) != 1 || got[0] != 90 {
		t.Fatalf("snap = %v", got)
	}

	got = nil
	calls := 0
	Linear(0, 100, time.Second, 10, func(time.Duration) bool { calls++; return calls < 3 }, set)
	if len(got) != 2 || got[len(got)-1] == 100 {
		t.Fatalf("cancelled ramp = %v", got)
	}
}
