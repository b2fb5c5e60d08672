package ply

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.viam.com/test"
)

func TestCenterAndVertices(t *testing.T) {
	positions := []float64{6378137, 0, 10, 6378139, 2, 20}
	rgba := []uint8{1, 2, 3, 255, 4, 5, 6, 255}

	center := Center(positions)
	test.That(t, center, test.ShouldResemble, [3]float64{6378138, 1, 15})
	test.That(t, Center(nil), test.ShouldResemble, [3]float64{})

	verts := FromRenderBuffer(positions, rgba, center)
	test.That(t, verts, test.ShouldResemble, []Vertex{
		{X: -1, Y: -1, Z: -5, R: 1, G: 2, B: 3},
		{X: 1, Y: 1, Z: 5, R: 4, G: 5, B: 6},
	})
}

func TestWritePlyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.ply")
	verts := []Vertex{{X: 1, Y: 2, Z: 3, R: 255}, {X: 4, Y: 5, Z: 6, B: 255}}
	test.That(t, WritePlyFile(path, verts), test.ShouldBeNil)

	data, err := os.ReadFile(path)
	test.That(t, err, test.ShouldBeNil)
	content := string(data)
	test.That(t, strings.HasPrefix(content, "ply\n"), test.ShouldBeTrue)
	test.That(t, content, test.ShouldContainSubstring, "binary_little_endian")
	test.That(t, content, test.ShouldContainSubstring, "element vertex 2")
	test.That(t, content, test.ShouldContainSubstring, "end_header")

	test.That(t, WritePlyFile(filepath.Join(t.TempDir(), "missing", "content.ply"), verts), test.ShouldNotBeNil)
}
