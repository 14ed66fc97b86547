// Package catalog builds the immutable, ordered mode table from a profile.
//
// Order: group 1 solids, group 2 solids, hidden modes. All indexing is
// bounds-checked.
package catalog

import (
	"torchcode-go/errcode"
	"torchcode-go/types"
)

// MaxModes is the number of indexes a 4-bit record field can address.
const MaxModes = 16

// Span is one contiguous solid group.
type Span struct {
	Low, High uint8
	Step      uint8
}

func (s Span) Contains(i uint8) bool { return i >= s.Low && i <= s.High }

type Catalog struct {
	modes     []types.Mode
	groups    []Span
	hiddenLow uint8
	hiddenN   uint8
}

// Build converts p into a catalog. p must have passed config.Validate; Build
// re-checks the properties indexing relies on.
func Build(p *types.Profile) (*Catalog, error) {
	const op = "catalog.build"
	if p == nil || len(p.Groups) == 0 || len(p.Groups) > 2 {
		return nil, &errcode.E{C: errcode.InvalidCatalog, Op: op, Msg: "need one or two groups"}
	}
	total := len(p.Hidden)
	for _, g := range p.Groups {
		total += len(g.Modes)
	}
	if total > MaxModes {
		return nil, &errcode.E{C: errcode.TooManyModes, Op: op}
	}

	c := &Catalog{modes: make([]types.Mode, 0, total)}
	for _, g := range p.Groups {
		if len(g.Modes) == 0 {
			return nil, &errcode.E{C: errcode.InvalidCatalog, Op: op, Msg: "empty group " + g.Name}
		}
		step := g.Step
		if step == 0 {
			step = 1
		}
		sp := Span{Low: uint8(len(c.modes)), Step: step}
		for _, ms := range g.Modes {
			m, err := decode(ms)
			if err != nil {
				return nil, err
			}
			if !m.Kind.Levelled() {
				return nil, &errcode.E{C: errcode.InvalidCatalog, Op: op, Msg: "symbolic mode in solid group"}
			}
			c.modes = append(c.modes, m)
		}
		sp.High = uint8(len(c.modes) - 1)
		c.groups = append(c.groups, sp)
	}
	c.hiddenLow = uint8(len(c.modes))
	for _, ms := range p.Hidden {
		m, err := decode(ms)
		if err != nil {
			return nil, err
		}
		c.modes = append(c.modes, m)
	}
	c.hiddenN = uint8(len(p.Hidden))
	return c, nil
}

func decode(ms types.ModeSpec) (types.Mode, error) {
	k := types.KindSolid
	if ms.Kind != "" {
		var ok bool
		if k, ok = types.ParseKind(ms.Kind); !ok {
			return types.Mode{}, &errcode.E{C: errcode.InvalidCatalog, Op: "catalog.build", Msg: "unknown kind " + ms.Kind}
		}
	}
	if !k.Levelled() {
		return types.Symbol(k), nil
	}
	return types.Mode{Kind: k, Primary: ms.Primary, Secondary: ms.Secondary}, nil
}

func (c *Catalog) Len() int { return len(c.modes) }

// At returns the mode at i; ok is false when i is out of range.
func (c *Catalog) At(i uint8) (types.Mode, bool) {
	if int(i) >= len(c.modes) {
		return types.Mode{}, false
	}
	return c.modes[i], true
}

// Group returns the solid span for the requested group. With a single group
// both selections map to it.
func (c *Catalog) Group(second bool) Span {
	if second && len(c.groups) > 1 {
		return c.groups[1]
	}
	return c.groups[0]
}

// Hidden returns the hidden range. ok is false when there are no hidden modes.
func (c *Catalog) Hidden() (low, high uint8, ok bool) {
	if c.hiddenN == 0 {
		return 0, 0, false
	}
	return c.hiddenLow, c.hiddenLow + c.hiddenN - 1, true
}
