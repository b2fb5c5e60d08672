package schema

import (
	"strings"

	"github.com/pkg/errors"
)

var ErrUnsupportedDatatype = errors.New("unsupported datatype")

// Datatype is the closed set of fixed-width numeric kinds a dimension can be packed as
type Datatype uint8

const (
	DatatypeInvalid Datatype = iota
	Uint8
	Int8
	Uint16
	Int16
	Uint32
	Int32
	Uint64
	Int64
	Float32
	Float64
)

// wire names as they appear in the header json
var datatypeNames = map[Datatype]string{
	Uint8:   "uint8_t",
	Int8:    "int8_t",
	Uint16:  "uint16_t",
	Int16:   "int16_t",
	Uint32:  "uint32_t",
	Int32:   "int32_t",
	Uint64:  "uint64_t",
	Int64:   "int64_t",
	Float32: "float",
	Float64: "double",
}

var datatypeSizes = map[Datatype]int{
	Uint8:   1,
	Int8:    1,
	Uint16:  2,
	Int16:   2,
	Uint32:  4,
	Int32:   4,
	Uint64:  8,
	Int64:   8,
	Float32: 4,
	Float64: 8,
}

// AllDatatypes returns the supported kinds in tag order
func AllDatatypes() []Datatype {
	return []Datatype{Uint8, Int8, Uint16, Int16, Uint32, Int32, Uint64, Int64, Float32, Float64}
}

func ParseDatatype(value string) (Datatype, error) {
	normalizedValue := strings.TrimSpace(value)
	for dt, name := range datatypeNames {
		if name == normalizedValue {
			return dt, nil
		}
	}
	return DatatypeInvalid, errors.Wrapf(ErrUnsupportedDatatype, "datatype %q", value)
}

func (d Datatype) String() string {
	if name, ok := datatypeNames[d]; ok {
		return name
	}
	return "invalid"
}

// Size is the packed width in bytes, 0 for an invalid tag
func (d Datatype) Size() int {
	return datatypeSizes[d]
}

func (d Datatype) Valid() bool {
	_, ok := datatypeSizes[d]
	return ok
}

func (d Datatype) IsFloat() bool {
	return d == Float32 || d == Float64
}

func (d Datatype) IsSigned() bool {
	switch d {
	case Int8, Int16, Int32, Int64, Float32, Float64:
		return true
	}
	return false
}
