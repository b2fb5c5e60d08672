package ply

import (
	"os"
	"path/filepath"
	"unsafe"

	"github.com/cobaltgray/go-plyfile"
	"github.com/pkg/errors"
)

// Vertex is one colored point as stored in the binary ply output
type Vertex struct {
	X, Y, Z float32
	R, G, B uint8
}

var vertexProperties = func() []plyfile.PlyProperty {
	var v Vertex
	return []plyfile.PlyProperty{
		{"x", plyfile.PLY_FLOAT, plyfile.PLY_FLOAT, int(unsafe.Offsetof(v.X)), 0, 0, 0, 0},
		{"y", plyfile.PLY_FLOAT, plyfile.PLY_FLOAT, int(unsafe.Offsetof(v.Y)), 0, 0, 0, 0},
		{"z", plyfile.PLY_FLOAT, plyfile.PLY_FLOAT, int(unsafe.Offsetof(v.Z)), 0, 0, 0, 0},
		{"red", plyfile.PLY_UCHAR, plyfile.PLY_UCHAR, int(unsafe.Offsetof(v.R)), 0, 0, 0, 0},
		{"green", plyfile.PLY_UCHAR, plyfile.PLY_UCHAR, int(unsafe.Offsetof(v.G)), 0, 0, 0, 0},
		{"blue", plyfile.PLY_UCHAR, plyfile.PLY_UCHAR, int(unsafe.Offsetof(v.B)), 0, 0, 0, 0},
	}
}()

// WritePlyFile writes the vertices as a binary little endian ply point cloud
func WritePlyFile(filePath string, verts []Vertex) error {
	if info, err := os.Stat(filepath.Dir(filePath)); err != nil || !info.IsDir() {
		return errors.Errorf("cannot write %s: parent folder missing", filePath)
	}

	elemNames := []string{"vertex"}
	var version float32
	cplyfile := plyfile.PlyOpenForWriting(filePath, len(elemNames), elemNames, plyfile.PLY_BINARY_LE, &version)

	plyfile.PlyElementCount(cplyfile, "vertex", len(verts))
	for _, prop := range vertexProperties {
		plyfile.PlyDescribeProperty(cplyfile, "vertex", prop)
	}
	plyfile.PlyHeaderComplete(cplyfile)

	plyfile.PlyPutElementSetup(cplyfile, "vertex")
	for _, vertex := range verts {
		plyfile.PlyPutElement(cplyfile, vertex)
	}
	plyfile.PlyClose(cplyfile)

	return nil
}

// FromRenderBuffer builds ply vertices from cartesian positions and rgba colors, expressing the
// positions relative to center so they survive the float32 narrowing
func FromRenderBuffer(positions []float64, rgba []uint8, center [3]float64) []Vertex {
	numPoints := len(positions) / 3
	verts := make([]Vertex, numPoints)
	for i := 0; i < numPoints; i++ {
		verts[i] = Vertex{
			X: float32(positions[i*3] - center[0]),
			Y: float32(positions[i*3+1] - center[1]),
			Z: float32(positions[i*3+2] - center[2]),
			R: rgba[i*4],
			G: rgba[i*4+1],
			B: rgba[i*4+2],
		}
	}
	return verts
}

// Center returns the average of cartesian positions
func Center(positions []float64) [3]float64 {
	var center [3]float64
	numPoints := len(positions) / 3
	if numPoints == 0 {
		return center
	}
	for i := 0; i < numPoints; i++ {
		center[0] += positions[i*3]
		center[1] += positions[i*3+1]
		center[2] += positions[i*3+2]
	}
	center[0] /= float64(numPoints)
	center[1] /= float64(numPoints)
	center[2] /= float64(numPoints)
	return center
}
