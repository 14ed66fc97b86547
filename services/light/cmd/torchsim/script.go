//go:build !rp2040 && !rp2350

package main

import (
	"strconv"
	"strings"

	"torchcode-go/errcode"
	"torchcode-go/types"
)

// Capacitor readings used for scripted presses.
const (
	sampleLong   = 0
	sampleMedium = 200
	sampleShort  = 255
)

// parsePresses turns "l,s,s,m" into timing-capacitor readings. Tokens may
// be s/short, m/medium, l/long or a raw reading 0..255. A token like "s*16"
// repeats.
func parsePresses(script string) ([]uint8, error) {
	var out []uint8
	for _, tok := range strings.Split(script, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		n := 1
		if i := strings.IndexByte(tok, '*'); i >= 0 {
			r, err := strconv.Atoi(tok[i+1:])
			if err != nil || r < 1 {
				return nil, &errcode.E{C: errcode.InvalidParams, Op: "torchsim.presses", Msg: "bad repeat in " + tok}
			}
			tok, n = tok[:i], r
		}
		v, err := pressSample(tok)
		if err != nil {
			return nil, err
		}
		for ; n > 0; n-- {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "torchsim.presses", Msg: "empty script"}
	}
	return out, nil
}

func pressSample(tok string) (uint8, error) {
	switch strings.ToLower(tok) {
	case "s", "short":
		return sampleShort, nil
	case "m", "medium":
		return sampleMedium, nil
	case "l", "long":
		return sampleLong, nil
	}
	v, err := strconv.ParseUint(tok, 10, 8)
	if err != nil {
		return 0, &errcode.E{C: errcode.InvalidParams, Op: "torchsim.presses", Msg: "unknown press " + tok}
	}
	return uint8(v), nil
}

// batteryRamp is the reading sequence for one boot: two boot samples at v,
// then one per tick falling by drain.
func batteryRamp(v uint8, drain, ticks int) []uint8 {
	out := []uint8{v, v}
	cur := int(v)
	for i := 0; i < ticks; i++ {
		cur -= drain
		if cur < 0 {
			cur = 0
		}
		out = append(out, uint8(cur))
	}
	return out
}

func describe(m types.Mode) string {
	if m.Kind.Levelled() {
		return m.Kind.String() + "(" + strconv.Itoa(int(m.Primary)) + "," + strconv.Itoa(int(m.Secondary)) + ")"
	}
	return m.Kind.String()
}
