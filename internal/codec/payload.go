package codec

import (
	"encoding/binary"
	"math"

	"github.com/ecopia-map/cesium_stream/internal/schema"
	"github.com/pkg/errors"
)

// Tile payloads start with two little-endian u32: point count and child existence mask
const PayloadHeaderSize = 8

// Payload is a framed but not yet decoded tile
type Payload struct {
	NumPoints uint32
	ChildMask uint32
	Body      []byte // NumPoints * stride bytes of packed point records
}

// ParsePayload validates the tile framing against the point stride of the header
func ParsePayload(data []byte, stride int) (*Payload, error) {
	if len(data) == 0 {
		return nil, errors.Wrap(ErrEmptyOrTruncatedTile, "tile has length zero")
	}
	if len(data) < PayloadHeaderSize {
		return nil, errors.Wrapf(ErrEmptyOrTruncatedTile, "tile is too short: %d bytes", len(data))
	}

	payload := &Payload{
		NumPoints: binary.LittleEndian.Uint32(data[0:4]),
		ChildMask: binary.LittleEndian.Uint32(data[4:8]),
		Body:      data[PayloadHeaderSize:],
	}

	numBytes := len(payload.Body)
	if stride <= 0 {
		if numBytes != 0 || payload.NumPoints != 0 {
			return nil, errors.Wrapf(ErrMalformedTilePayload, "stride %d with %d body bytes", stride, numBytes)
		}
		return payload, nil
	}
	if numBytes%stride != 0 {
		return nil, errors.Wrapf(ErrMalformedTilePayload, "%d body bytes is not a multiple of stride %d", numBytes, stride)
	}
	if uint64(numBytes/stride) != uint64(payload.NumPoints) {
		return nil, errors.Wrapf(ErrMalformedTilePayload, "header declares %d points, body holds %d", payload.NumPoints, numBytes/stride)
	}

	return payload, nil
}

// EncodePayload packs dimensions back into the wire layout. Every declared dimension must be
// present with the declared datatype and the same length.
func EncodePayload(header *schema.Header, childMask uint32, dims []Dimension) ([]byte, error) {
	numPoints := 0
	if len(dims) > 0 {
		numPoints = dims[0].Values.Len()
	}

	out := make([]byte, PayloadHeaderSize+numPoints*header.PointStride)
	binary.LittleEndian.PutUint32(out[0:4], uint32(numPoints))
	binary.LittleEndian.PutUint32(out[4:8], childMask)
	body := out[PayloadHeaderSize:]

	for _, dim := range header.Dimensions {
		values, ok := Lookup(dims, dim.Name)
		if !ok {
			return nil, errors.Errorf("missing dimension %q", dim.Name)
		}
		if values.Datatype() != dim.Datatype {
			return nil, errors.Errorf("dimension %q is %s, header declares %s", dim.Name, values.Datatype(), dim.Datatype)
		}
		if values.Len() != numPoints {
			return nil, errors.Errorf("dimension %q has %d points, expected %d", dim.Name, values.Len(), numPoints)
		}
		if err := putDimension(body, values, dim.Offset, header.PointStride); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func putDimension(buf []byte, values Array, offset int, stride int) error {
	le := binary.LittleEndian

	switch v := values.(type) {
	case *Values[uint8]:
		put(buf, offset, stride, v.Data, func(b []byte, x uint8) { b[0] = x })
	case *Values[int8]:
		put(buf, offset, stride, v.Data, func(b []byte, x int8) { b[0] = uint8(x) })
	case *Values[uint16]:
		put(buf, offset, stride, v.Data, le.PutUint16)
	case *Values[int16]:
		put(buf, offset, stride, v.Data, func(b []byte, x int16) { le.PutUint16(b, uint16(x)) })
	case *Values[uint32]:
		put(buf, offset, stride, v.Data, le.PutUint32)
	case *Values[int32]:
		put(buf, offset, stride, v.Data, func(b []byte, x int32) { le.PutUint32(b, uint32(x)) })
	case *Values[uint64]:
		put(buf, offset, stride, v.Data, le.PutUint64)
	case *Values[int64]:
		put(buf, offset, stride, v.Data, func(b []byte, x int64) { le.PutUint64(b, uint64(x)) })
	case *Values[float32]:
		put(buf, offset, stride, v.Data, func(b []byte, x float32) { le.PutUint32(b, math.Float32bits(x)) })
	case *Values[float64]:
		put(buf, offset, stride, v.Data, func(b []byte, x float64) { le.PutUint64(b, math.Float64bits(x)) })
	default:
		return errors.Wrapf(ErrUnsupportedDatatype, "array of %s", values.Datatype())
	}
	return nil
}

func put[T Element](buf []byte, offset int, stride int, data []T, write func([]byte, T)) {
	for i, pos := 0, offset; i < len(data); i, pos = i+1, pos+stride {
		write(buf[pos:], data[i])
	}
}
