// Package lightmap bakes flat-shaded irradiance textures for scene meshes.
//
// A bake walks a mesh's triangles in index order, shades each one once at
// its centroid, and fills the triangle's UV footprint on a square grid,
// keeping the per-channel maximum where footprints overlap. The grid is
// then upsampled, blurred and labelled by a Composer.
package lightmap

import "strings"

// Quality selects the output texture resolution.
type Quality string

const (
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
)

var textureSizes = map[Quality]int{
	QualityLow:    256,
	QualityMedium: 512,
	QualityHigh:   1024,
}

// ParseQuality normalizes a tier name. Unknown names map to QualityMedium.
func ParseQuality(s string) Quality {
	q := Quality(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := textureSizes[q]; ok {
		return q
	}
	return QualityMedium
}

// Valid reports whether q names a recognized tier.
func (q Quality) Valid() bool {
	_, ok := textureSizes[q]
	return ok
}

// TextureSize returns the output edge length in pixels. Unrecognized tiers
// fall back to the medium size.
func (q Quality) TextureSize() int {
	if size, ok := textureSizes[q]; ok {
		return size
	}
	return textureSizes[QualityMedium]
}

// GridSize returns the lightmap grid edge length, always half the texture
// size.
func (q Quality) GridSize() int {
	return q.TextureSize() / 2
}

func (q Quality) String() string {
	return string(q)
}
