package codec

import (
	"encoding/binary"
	"math"

	"github.com/ecopia-map/cesium_stream/internal/schema"
	"github.com/pkg/errors"
)

var (
	ErrEmptyOrTruncatedTile = errors.New("empty or truncated tile")
	ErrMalformedTilePayload = errors.New("malformed tile payload")

	// ErrUnsupportedDatatype is shared with the schema so callers can match either
	ErrUnsupportedDatatype = schema.ErrUnsupportedDatatype
)

// ExtractDimension reads one little-endian value per point at offset + i*stride.
// The datatype is resolved once, outside the per-point loop.
func ExtractDimension(buf []byte, datatype schema.Datatype, offset int, stride int, numPoints int) (Array, error) {
	if len(buf) != numPoints*stride {
		return nil, errors.Wrapf(ErrMalformedTilePayload, "%d bytes for %d points of stride %d", len(buf), numPoints, stride)
	}
	if datatype.Valid() && (offset < 0 || offset+datatype.Size() > stride) {
		return nil, errors.Wrapf(ErrMalformedTilePayload, "%s at offset %d does not fit stride %d", datatype, offset, stride)
	}

	le := binary.LittleEndian

	switch datatype {
	case schema.Uint8:
		return NewValues(datatype, extract(buf, offset, stride, numPoints, func(b []byte) uint8 {
			return b[0]
		})), nil
	case schema.Int8:
		return NewValues(datatype, extract(buf, offset, stride, numPoints, func(b []byte) int8 {
			return int8(b[0])
		})), nil
	case schema.Uint16:
		return NewValues(datatype, extract(buf, offset, stride, numPoints, le.Uint16)), nil
	case schema.Int16:
		return NewValues(datatype, extract(buf, offset, stride, numPoints, func(b []byte) int16 {
			return int16(le.Uint16(b))
		})), nil
	case schema.Uint32:
		return NewValues(datatype, extract(buf, offset, stride, numPoints, le.Uint32)), nil
	case schema.Int32:
		return NewValues(datatype, extract(buf, offset, stride, numPoints, func(b []byte) int32 {
			return int32(le.Uint32(b))
		})), nil
	case schema.Uint64:
		return NewValues(datatype, extract(buf, offset, stride, numPoints, le.Uint64)), nil
	case schema.Int64:
		return NewValues(datatype, extract(buf, offset, stride, numPoints, func(b []byte) int64 {
			return int64(le.Uint64(b))
		})), nil
	case schema.Float32:
		return NewValues(datatype, extract(buf, offset, stride, numPoints, func(b []byte) float32 {
			return math.Float32frombits(le.Uint32(b))
		})), nil
	case schema.Float64:
		return NewValues(datatype, extract(buf, offset, stride, numPoints, func(b []byte) float64 {
			return math.Float64frombits(le.Uint64(b))
		})), nil
	}

	return nil, errors.Wrapf(ErrUnsupportedDatatype, "tag %d", uint8(datatype))
}

func extract[T Element](buf []byte, offset int, stride int, numPoints int, read func([]byte) T) []T {
	dst := make([]T, numPoints)
	for i, pos := 0, offset; i < numPoints; i, pos = i+1, pos+stride {
		dst[i] = read(buf[pos:])
	}
	return dst
}

// DecodeDimensions runs the extraction once per declared dimension, in header order
func DecodeDimensions(header *schema.Header, body []byte, numPoints int) ([]Dimension, error) {
	dims := make([]Dimension, 0, len(header.Dimensions))
	for _, dim := range header.Dimensions {
		values, err := ExtractDimension(body, dim.Datatype, dim.Offset, header.PointStride, numPoints)
		if err != nil {
			return nil, errors.WithMessagef(err, "dimension %q", dim.Name)
		}
		dims = append(dims, Dimension{Name: dim.Name, Values: values})
	}
	return dims, nil
}
