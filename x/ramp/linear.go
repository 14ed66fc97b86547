// Package ramp drives caller-paced integer fades, e.g. a PWM level sweep.
package ramp

import (
	"time"

	"torchcode-go/x/mathx"
)

// Set applies a level.
type Set func(level uint8)

// Wait blocks for d and reports whether to continue.
type Wait func(d time.Duration) bool

// Linear moves from cur to `to` in steps equal slices of total, calling set
// whenever the integer level changes. steps==0 or total==0 snaps to `to`.
// The final call is always set(to) unless wait cancels first.
func Linear(cur, to uint8, total time.Duration, steps int, wait Wait, set Set) {
	if steps <= 0 || total <= 0 {
		set(to)
		return
	}
	d := int32(to) - int32(cur)
	st := int32(steps)
	acc := int32(0)
	lvl := int32(cur)
	slice := total / time.Duration(steps)
	if slice <= 0 {
		slice = time.Millisecond
	}

	for i := 1; i < steps; i++ {
		if !wait(slice) {
			return
		}
		acc += d
		if inc := acc / st; inc != 0 {
			acc -= inc * st
			lvl = mathx.Clamp(lvl+inc, 0, 255)
			set(uint8(lvl))
		}
	}
	if !wait(slice) {
		return
	}
	set(to)
}
