package quadtree

// ChildMask is the child existence bit set carried by every tile payload.
// Only the low four bits are meaningful.
type ChildMask uint32

const (
	maskSW ChildMask = 1 << iota
	maskSE
	maskNE
	maskNW
)

// MaskAll has every child present
const MaskAll = maskSW | maskSE | maskNE | maskNW

func quadrantBit(q Quadrant) ChildMask {
	switch q {
	case SW:
		return maskSW
	case SE:
		return maskSE
	case NE:
		return maskNE
	case NW:
		return maskNW
	}
	return 0
}

func (m ChildMask) Has(q Quadrant) bool {
	bit := quadrantBit(q)
	return bit != 0 && m&bit == bit
}

func (m ChildMask) With(q Quadrant) ChildMask {
	return m | quadrantBit(q)
}

func (m ChildMask) SWExists() bool { return m.Has(SW) }
func (m ChildMask) SEExists() bool { return m.Has(SE) }
func (m ChildMask) NEExists() bool { return m.Has(NE) }
func (m ChildMask) NWExists() bool { return m.Has(NW) }

// IsChildAvailable answers for an arbitrary child address of parent. Addresses that are not
// children of parent are never available.
func (m ChildMask) IsChildAvailable(parent Address, child Address) bool {
	if child.Level != parent.Level+1 {
		return false
	}
	if child.X/2 != parent.X || child.Y/2 != parent.Y {
		return false
	}
	return m.Has(child.Quadrant())
}

// Count returns how many children are flagged
func (m ChildMask) Count() int {
	n := 0
	for _, q := range Quadrants {
		if m.Has(q) {
			n++
		}
	}
	return n
}
