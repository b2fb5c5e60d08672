package geometry

import "math"

// A point in some coordinate reference system. For geographic coordinates X is the longitude
// and Y the latitude, both in degrees, and Z the height in meters.
type Coordinate struct {
	X float64
	Y float64
	Z float64
}

// Axis aligned box with cached midpoints
type BoundingBox struct {
	Xmin, Xmax       float64
	Ymin, Ymax       float64
	Zmin, Zmax       float64
	Xmid, Ymid, Zmid float64
}

func NewBoundingBox(minX, maxX, minY, maxY, minZ, maxZ float64) *BoundingBox {
	return &BoundingBox{
		Xmin: minX,
		Xmax: maxX,
		Ymin: minY,
		Ymax: maxY,
		Zmin: minZ,
		Zmax: maxZ,
		Xmid: (minX + maxX) / 2,
		Ymid: (minY + maxY) / 2,
		Zmid: (minZ + maxZ) / 2,
	}
}

// Extend grows the box so that it contains the given coordinate
func (b *BoundingBox) Extend(c Coordinate) {
	b.Xmin = math.Min(b.Xmin, c.X)
	b.Xmax = math.Max(b.Xmax, c.X)
	b.Ymin = math.Min(b.Ymin, c.Y)
	b.Ymax = math.Max(b.Ymax, c.Y)
	b.Zmin = math.Min(b.Zmin, c.Z)
	b.Zmax = math.Max(b.Zmax, c.Z)
	b.Xmid = (b.Xmin + b.Xmax) / 2
	b.Ymid = (b.Ymin + b.Ymax) / 2
	b.Zmid = (b.Zmin + b.Zmax) / 2
}

// Returns the box as a cesium region: west, south, east, north in radians, then min and max height.
// The box is assumed to hold degrees.
func (b *BoundingBox) GetAsArray() []float64 {
	return []float64{
		DegToRad(b.Xmin),
		DegToRad(b.Ymin),
		DegToRad(b.Xmax),
		DegToRad(b.Ymax),
		b.Zmin,
		b.Zmax,
	}
}

func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func RadToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
