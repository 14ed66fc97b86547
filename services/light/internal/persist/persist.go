// Package persist is the wear-levelled save/restore engine for the mode
// record.
//
// Cells 0..N-1 form the wear-levelling ring. In the split layout cell N
// holds the config byte and, optionally, cell N+1 a battery calibration
// offset. Every stored byte is complemented so an erased cell (0xFF) never
// decodes as a record.
//
//	combined ring cell: ^(idx<<4 | flags nibble)   valid when ^cell != 0
//	split ring cell:    ^(idx<<4 | tag)            valid when low nibble == tag
//	split config cell:  ^flags                     erased => Set clear
//	calibration cell:   ^uint8(offset)             erased => 0
//
// Save writes the new cell before erasing the old one, so a power loss
// between the two leaves both readable and Restore returns one of them.
// In the combined layout a record of index 0 with no flags encodes as 0xFF
// and is indistinguishable from an erased cell.
package persist

import (
	"torchcode-go/errcode"
	"torchcode-go/services/light/internal/halcore"
	"torchcode-go/types"
)

const (
	erased   = 0xFF
	splitTag = 0x5
	noCursor = -1
)

// Record is the logical persisted state.
type Record struct {
	Mode        uint8
	Flags       types.Flags
	Calibration int8
}

type Engine struct {
	store  halcore.Store
	layout types.Layout
	n      int
	calib  bool
	cursor int
	cur    Record
}

// New checks that store can hold the layout. cells must be a power of two.
func New(store halcore.Store, layout types.Layout, cells int, calibration bool) (*Engine, error) {
	const op = "persist.new"
	if cells < 1 || cells&(cells-1) != 0 {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: op, Msg: "cells must be a power of two"}
	}
	need := cells
	switch layout {
	case types.LayoutCombined:
		if calibration {
			return nil, &errcode.E{C: errcode.Unsupported, Op: op, Msg: "calibration needs split layout"}
		}
	case types.LayoutSplit, "":
		layout = types.LayoutSplit
		need++
		if calibration {
			need++
		}
	default:
		return nil, &errcode.E{C: errcode.InvalidParams, Op: op, Msg: "unknown layout " + string(layout)}
	}
	if store == nil || store.Len() < need {
		return nil, &errcode.E{C: errcode.StoreTooSmall, Op: op}
	}
	return &Engine{store: store, layout: layout, n: cells, calib: calibration, cursor: noCursor}, nil
}

func (e *Engine) Layout() types.Layout { return e.layout }

// Cursor is the ring position of the current record, -1 when none.
func (e *Engine) Cursor() int { return e.cursor }

// Current is the last record restored or saved.
func (e *Engine) Current() Record { return e.cur }

func (e *Engine) configCell() int { return e.n }
func (e *Engine) calibCell() int  { return e.n + 1 }

// Restore scans the ring from cell 0; the first decodable cell is current.
// ok is false when no ring cell decodes. In the split layout the returned
// flags come from the config cell regardless of ok; callers check Flags.Set.
func (e *Engine) Restore() (rec Record, ok bool, err error) {
	const op = "persist.restore"
	e.cursor = noCursor
	for i := 0; i < e.n; i++ {
		b, rerr := e.store.ReadCell(i)
		if rerr != nil {
			return Record{}, false, errcode.Wrap(errcode.StoreIO, op, rerr)
		}
		if mode, flags, valid := e.decodeRing(b); valid {
			rec.Mode, rec.Flags = mode, flags
			e.cursor = i
			ok = true
			break
		}
	}
	if e.layout == types.LayoutSplit {
		b, rerr := e.store.ReadCell(e.configCell())
		if rerr != nil {
			return Record{}, false, errcode.Wrap(errcode.StoreIO, op, rerr)
		}
		rec.Flags = types.DecodeSplit(^b)
		if e.calib {
			c, rerr := e.store.ReadCell(e.calibCell())
			if rerr != nil {
				return Record{}, false, errcode.Wrap(errcode.StoreIO, op, rerr)
			}
			rec.Calibration = int8(^c)
		}
	}
	e.cur = rec
	return rec, ok, nil
}

func (e *Engine) decodeRing(b byte) (mode uint8, flags types.Flags, ok bool) {
	v := ^b
	if e.layout == types.LayoutCombined {
		if v == 0 {
			return 0, types.Flags{}, false
		}
		return v >> 4, types.DecodeCombined(v & 0x0F), true
	}
	if v&0x0F != splitTag {
		return 0, types.Flags{}, false
	}
	return v >> 4, types.Flags{}, true
}

func (e *Engine) encodeRing(mode uint8, f types.Flags) byte {
	if e.layout == types.LayoutCombined {
		return ^(mode<<4 | f.EncodeCombined())
	}
	return ^(mode<<4 | splitTag)
}

// save is the wear-levelled write: new value at the next ring cell, then
// the previous cell erased. The cursor advances on every successful write.
func (e *Engine) save(b byte) error {
	const op = "persist.save"
	next := (e.cursor + 1) & (e.n - 1)
	if err := e.store.WriteCell(next, b); err != nil {
		return errcode.Wrap(errcode.StoreIO, op, err)
	}
	old := e.cursor
	e.cursor = next
	if old != noCursor && old != next {
		if err := e.store.WriteCell(old, erased); err != nil {
			return errcode.Wrap(errcode.StoreIO, op, err)
		}
	}
	return nil
}

// SaveMode persists idx through the ring.
func (e *Engine) SaveMode(idx uint8) error {
	if err := e.save(e.encodeRing(idx&0x0F, e.cur.Flags)); err != nil {
		return err
	}
	e.cur.Mode = idx & 0x0F
	return nil
}

// SaveFlags writes the config cell in place (split) or re-saves the
// composite record with the current mode (combined).
func (e *Engine) SaveFlags(f types.Flags) error {
	if e.layout == types.LayoutCombined {
		if err := e.save(e.encodeRing(e.cur.Mode, f)); err != nil {
			return err
		}
		e.cur.Flags = f
		return nil
	}
	if err := e.store.WriteCell(e.configCell(), ^f.EncodeSplit()); err != nil {
		return errcode.Wrap(errcode.StoreIO, "persist.save_flags", err)
	}
	e.cur.Flags = f
	return nil
}

// Save persists a whole record: flags first, then the mode.
func (e *Engine) Save(rec Record) error {
	if e.layout == types.LayoutCombined {
		if err := e.save(e.encodeRing(rec.Mode&0x0F, rec.Flags)); err != nil {
			return err
		}
		e.cur.Mode, e.cur.Flags = rec.Mode&0x0F, rec.Flags
		return nil
	}
	if err := e.SaveFlags(rec.Flags); err != nil {
		return err
	}
	if e.calib && rec.Calibration != e.cur.Calibration {
		if err := e.SaveCalibration(rec.Calibration); err != nil {
			return err
		}
	}
	return e.SaveMode(rec.Mode)
}

// SaveCalibration writes the calibration cell. Split layout only.
func (e *Engine) SaveCalibration(off int8) error {
	if !e.calib {
		return &errcode.E{C: errcode.Unsupported, Op: "persist.save_calibration"}
	}
	if err := e.store.WriteCell(e.calibCell(), ^uint8(off)); err != nil {
		return errcode.Wrap(errcode.StoreIO, "persist.save_calibration", err)
	}
	e.cur.Calibration = off
	return nil
}
