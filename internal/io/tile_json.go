package io

type Asset struct {
	Version string `json:"version"`
}

type Content struct {
	Url string `json:"url"`
}

type BoundingVolume struct {
	Region []float64 `json:"region"`
}

// Sidecar describing one exported tile
type TileJson struct {
	Address        string          `json:"address"`
	NumPoints      int             `json:"numPoints"`
	GeometricError float64         `json:"geometricError"`
	TileRegion     []float64       `json:"tileRegion"`               // extent of the quadtree node
	BoundingVolume *BoundingVolume `json:"boundingVolume,omitempty"` // extent of the points
	RtcCenter      []float64       `json:"rtcCenter,omitempty"`
	Content        *Content        `json:"content,omitempty"`
	Children       []string        `json:"children,omitempty"`
}

// Top level index of an export
type Index struct {
	Asset          Asset    `json:"asset"`
	Source         string   `json:"source"`
	Dimensions     []string `json:"dimensions"`
	GeometricError float64  `json:"geometricError"`
	Roots          []string `json:"roots"`
	Tiles          []string `json:"tiles"`
}
