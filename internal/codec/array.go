package codec

import (
	"github.com/ecopia-map/cesium_stream/internal/schema"
)

// Element is any of the fixed-width kinds a dimension can hold
type Element interface {
	uint8 | int8 | uint16 | int16 | uint32 | int32 | uint64 | int64 | float32 | float64
}

// Array is a decoded per-dimension sequence. Index i refers to the same point across all the
// arrays of a tile.
type Array interface {
	Datatype() schema.Datatype
	Len() int
	// At returns the i-th value widened to float64
	At(i int) float64
}

// Values is the typed storage behind an Array
type Values[T Element] struct {
	datatype schema.Datatype
	Data     []T
}

func NewValues[T Element](datatype schema.Datatype, data []T) *Values[T] {
	return &Values[T]{datatype: datatype, Data: data}
}

func (v *Values[T]) Datatype() schema.Datatype {
	return v.datatype
}

func (v *Values[T]) Len() int {
	return len(v.Data)
}

func (v *Values[T]) At(i int) float64 {
	return float64(v.Data[i])
}

// Dimension pairs a decoded array with the name it was declared under
type Dimension struct {
	Name   string
	Values Array
}

// Float64s widens any array to a fresh []float64
func Float64s(a Array) []float64 {
	if v, ok := a.(*Values[float64]); ok {
		out := make([]float64, len(v.Data))
		copy(out, v.Data)
		return out
	}
	out := make([]float64, a.Len())
	for i := range out {
		out[i] = a.At(i)
	}
	return out
}

// Lookup finds a dimension by name in declaration order
func Lookup(dims []Dimension, name string) (Array, bool) {
	for _, d := range dims {
		if d.Name == name {
			return d.Values, true
		}
	}
	return nil, false
}
