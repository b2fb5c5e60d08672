package quadtree

import (
	"fmt"
	"strconv"
)

// Address identifies a quadtree node. Y grows southward, as in the geographic tiling scheme.
type Address struct {
	Level uint32
	X     uint32
	Y     uint32
}

type Quadrant uint8

const (
	NW Quadrant = iota // (2x, 2y)
	SW                 // (2x, 2y+1)
	NE                 // (2x+1, 2y)
	SE                 // (2x+1, 2y+1)
)

func (q Quadrant) String() string {
	switch q {
	case NW:
		return "NW"
	case SW:
		return "SW"
	case NE:
		return "NE"
	case SE:
		return "SE"
	}
	return "Quadrant(" + strconv.Itoa(int(q)) + ")"
}

// Quadrants in a fixed iteration order
var Quadrants = [4]Quadrant{NW, SW, NE, SE}

func NewAddress(level, x, y uint32) Address {
	return Address{Level: level, X: x, Y: y}
}

func (a Address) IsRoot() bool {
	return a.Level == 0
}

// Child returns the address of the given quadrant one level down
func (a Address) Child(q Quadrant) Address {
	child := Address{Level: a.Level + 1, X: 2 * a.X, Y: 2 * a.Y}
	switch q {
	case SW:
		child.Y++
	case NE:
		child.X++
	case SE:
		child.X++
		child.Y++
	}
	return child
}

func (a Address) Children() [4]Address {
	var children [4]Address
	for i, q := range Quadrants {
		children[i] = a.Child(q)
	}
	return children
}

// Parent returns the enclosing node. ok is false for roots.
func (a Address) Parent() (parent Address, ok bool) {
	if a.IsRoot() {
		return Address{}, false
	}
	return Address{Level: a.Level - 1, X: a.X / 2, Y: a.Y / 2}, true
}

// Quadrant reports which child of its parent this address is
func (a Address) Quadrant() Quadrant {
	east := a.X%2 == 1
	south := a.Y%2 == 1
	switch {
	case !east && !south:
		return NW
	case !east && south:
		return SW
	case east && !south:
		return NE
	}
	return SE
}

// Path is the url suffix of the tile: level/x/y
func (a Address) Path() string {
	return fmt.Sprintf("%d/%d/%d", a.Level, a.X, a.Y)
}

func (a Address) String() string {
	return "[" + a.Path() + "]"
}
