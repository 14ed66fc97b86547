package platform

import "torchcode-go/types"

// StoreCells is the number of cells a profile's layout needs.
func StoreCells(p *types.Profile) int {
	n := p.Store.Cells
	if p.Store.Layout == types.LayoutSplit {
		n++
		if p.Store.Calibration {
			n++
		}
	}
	return n
}
