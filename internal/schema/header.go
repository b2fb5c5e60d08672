package schema

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Only version 4 of the point cloud header is understood
const SupportedVersion = 4

// Names of the positional dimensions every renderable source must declare
const (
	DimensionX = "X"
	DimensionY = "Y"
	DimensionZ = "Z"
)

var (
	ErrUnsupportedSchemaVersion = errors.New("unsupported schema version")
	ErrMalformedHeader          = errors.New("malformed header")
)

// Describes one per-point attribute and where it lives inside a packed point record
type Dimension struct {
	Name     string
	Datatype Datatype
	Offset   int                 // byte offset within a point record
	Minimum  decimal.NullDecimal // declared minimum, used by colorization only
	Maximum  decimal.NullDecimal // declared maximum, used by colorization only
}

// Range returns the declared [min, max] of the dimension. ok is false when either bound is missing.
func (d Dimension) Range() (min float64, max float64, ok bool) {
	if !d.Minimum.Valid || !d.Maximum.Valid {
		return 0, 0, false
	}
	min, _ = d.Minimum.Decimal.Float64()
	max, _ = d.Maximum.Decimal.Float64()
	return min, max, true
}

// Header is the immutable schema of a point cloud source
type Header struct {
	Version     int
	Dimensions  []Dimension
	PointStride int // sum of all dimension widths
}

type headerJSON struct {
	Version    *int            `json:"version"`
	Dimensions []dimensionJSON `json:"dimensions"`
}

type dimensionJSON struct {
	Name     string              `json:"name"`
	Datatype string              `json:"datatype"`
	Minimum  decimal.NullDecimal `json:"minimum"`
	Maximum  decimal.NullDecimal `json:"maximum"`
}

// NewHeader builds a header from dimensions in declaration order, assigning offsets as a running
// byte total. Offsets already present in dims are ignored.
func NewHeader(version int, dims []Dimension) (*Header, error) {
	if version != SupportedVersion {
		return nil, errors.Wrapf(ErrUnsupportedSchemaVersion, "version %d, expected %d", version, SupportedVersion)
	}
	if len(dims) == 0 {
		return nil, errors.Wrap(ErrMalformedHeader, "no dimensions declared")
	}

	header := &Header{
		Version:    version,
		Dimensions: make([]Dimension, len(dims)),
	}

	seen := make(map[string]bool, len(dims))
	numBytes := 0
	for i, dim := range dims {
		if dim.Name == "" {
			return nil, errors.Wrapf(ErrMalformedHeader, "dimension %d has no name", i)
		}
		if seen[dim.Name] {
			return nil, errors.Wrapf(ErrMalformedHeader, "duplicate dimension %q", dim.Name)
		}
		seen[dim.Name] = true

		if !dim.Datatype.Valid() {
			return nil, errors.Wrapf(ErrUnsupportedDatatype, "dimension %q", dim.Name)
		}

		dim.Offset = numBytes
		header.Dimensions[i] = dim
		numBytes += dim.Datatype.Size()
	}
	header.PointStride = numBytes

	return header, nil
}

// ParseHeader decodes and validates the json header served at the source url
func ParseHeader(data []byte) (*Header, error) {
	var raw headerJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(ErrMalformedHeader, "decode json: %v", err)
	}
	if raw.Version == nil {
		return nil, errors.Wrap(ErrMalformedHeader, "missing version")
	}
	if *raw.Version != SupportedVersion {
		return nil, errors.Wrapf(ErrUnsupportedSchemaVersion, "version %d, expected %d", *raw.Version, SupportedVersion)
	}

	dims := make([]Dimension, 0, len(raw.Dimensions))
	for _, rawDim := range raw.Dimensions {
		datatype, err := ParseDatatype(rawDim.Datatype)
		if err != nil {
			return nil, errors.WithMessagef(err, "dimension %q", rawDim.Name)
		}
		dims = append(dims, Dimension{
			Name:     rawDim.Name,
			Datatype: datatype,
			Minimum:  rawDim.Minimum,
			Maximum:  rawDim.Maximum,
		})
	}

	header, err := NewHeader(*raw.Version, dims)
	if err != nil {
		return nil, err
	}

	for _, name := range []string{DimensionX, DimensionY, DimensionZ} {
		if _, ok := header.Dimension(name); !ok {
			return nil, errors.Wrapf(ErrMalformedHeader, "missing positional dimension %q", name)
		}
	}

	return header, nil
}

func (h *Header) Dimension(name string) (Dimension, bool) {
	dim, _, ok := lo.FindIndexOf(h.Dimensions, func(d Dimension) bool {
		return d.Name == name
	})
	return dim, ok
}

// Index returns the declaration index of the named dimension or -1
func (h *Header) Index(name string) int {
	_, i, _ := lo.FindIndexOf(h.Dimensions, func(d Dimension) bool {
		return d.Name == name
	})
	return i
}

func (h *Header) Names() []string {
	return lo.Map(h.Dimensions, func(d Dimension, _ int) string {
		return d.Name
	})
}
