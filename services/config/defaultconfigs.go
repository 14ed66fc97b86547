package config

// -----------------------------------------------------------------------------
// Embedded profiles
//
// Key: profile name as passed to Lookup or the -profile flag.
// Val: raw JSON for that board, decoded with encoding/json.
// -----------------------------------------------------------------------------

// blf-a6: legacy combined layout, FET + 1x7135.
const cfgBLFA6 = `{
  "name": "blf-a6",
  "groups": [
    {"name": "seven", "step": 1, "modes": [
      {"primary": 0,   "secondary": 3},
      {"primary": 0,   "secondary": 20},
      {"primary": 0,   "secondary": 110},
      {"primary": 7,   "secondary": 255},
      {"primary": 56,  "secondary": 255},
      {"primary": 137, "secondary": 255},
      {"kind": "turbo", "primary": 255, "secondary": 0}
    ]},
    {"name": "four", "step": 1, "modes": [
      {"primary": 0,   "secondary": 3},
      {"primary": 0,   "secondary": 110},
      {"primary": 90,  "secondary": 255},
      {"kind": "turbo", "primary": 255, "secondary": 0}
    ]}
  ],
  "hidden": [
    {"kind": "turbo", "primary": 255},
    {"kind": "strobe"},
    {"kind": "battcheck"},
    {"kind": "biking"}
  ],
  "press":   {"short": 230, "medium": 160},
  "battery": {"buckets": [121, 141, 154, 162, 170], "low": 113, "critical": 109},
  "turbo":   {"timeout_ticks": 60},
  "protect": {"low_run": 8, "lock_settle_ticks": 3},
  "timing":  {"tick_ms": 1000, "settle_ms": 1000, "pwm_hz": 18750},
  "signal":  {"blink": [30, 0], "buzz": [20, 0]},
  "store":   {"layout": "combined", "cells": 64}
}`

// pico-fet1: split layout with a calibration cell. Group two steps by two.
const cfgPicoFET1 = `{
  "name": "pico-fet1",
  "groups": [
    {"name": "five", "step": 1, "modes": [
      {"primary": 0,   "secondary": 8},
      {"primary": 0,   "secondary": 110},
      {"primary": 7,   "secondary": 255},
      {"primary": 137, "secondary": 255},
      {"kind": "turbo", "primary": 255, "secondary": 0}
    ]},
    {"name": "sparse", "step": 2, "modes": [
      {"primary": 0,   "secondary": 20},
      {"primary": 0,   "secondary": 110},
      {"primary": 7,   "secondary": 255},
      {"primary": 56,  "secondary": 255},
      {"primary": 90,  "secondary": 255},
      {"kind": "turbo", "primary": 255, "secondary": 0}
    ]}
  ],
  "hidden": [
    {"kind": "battcheck"},
    {"kind": "biking"},
    {"kind": "beacon"},
    {"kind": "strobe"},
    {"kind": "sos"}
  ],
  "press":   {"short": 230, "medium": 160},
  "battery": {"buckets": [121, 141, 154, 162, 170], "low": 113, "critical": 109},
  "turbo":   {"timeout_ticks": 30},
  "protect": {"low_run": 8, "thermal_milli_c": 55000, "lock_settle_ticks": 3},
  "timing":  {"tick_ms": 1000, "settle_ms": 1000, "pwm_hz": 20000},
  "signal":  {"blink": [0, 20], "buzz": [0, 20]},
  "store":   {"layout": "split", "cells": 32, "calibration": true}
}`

var embeddedProfiles = map[string][]byte{
	"blf-a6":    []byte(cfgBLFA6),
	"pico-fet1": []byte(cfgPicoFET1),
}
