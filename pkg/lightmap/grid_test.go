package lightmap

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/taigrr/lightbake/pkg/math3d"
	"github.com/taigrr/lightbake/pkg/scene"
)

func uvs(a, b, c math3d.Vec2) [3]math3d.Vec2 {
	return [3]math3d.Vec2{a, b, c}
}

func countCovered(g *Grid) int {
	n := 0
	for y := range g.Size {
		for x := range g.Size {
			if g.Covered(x, y) {
				n++
			}
		}
	}
	return n
}

func TestGridCell(t *testing.T) {
	g := NewGrid(8)
	tests := []struct {
		uv   math3d.Vec2
		want image.Point
	}{
		{math3d.V2(0, 0), image.Pt(0, 0)},
		{math3d.V2(0.5, 0.26), image.Pt(4, 2)},
		{math3d.V2(1, 1), image.Pt(7, 7)},
		{math3d.V2(-3, 9), image.Pt(0, 7)},
		{math3d.V2(0.124, 0.125), image.Pt(0, 1)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, g.Cell(tt.uv), "uv %v", tt.uv)
	}
}

func TestRasterizeFillsInclusive(t *testing.T) {
	g := NewGrid(4)
	// Right triangle covering cells on and below the diagonal of the
	// lower-left 3×3 corner.
	ok := g.Rasterize(uvs(math3d.V2(0, 0), math3d.V2(0.5, 0), math3d.V2(0, 0.5)), scene.Gray(0.5))
	assert.True(t, ok)

	want := map[image.Point]bool{
		{0, 0}: true, {1, 0}: true, {2, 0}: true,
		{0, 1}: true, {1, 1}: true,
		{0, 2}: true,
	}
	for y := range 4 {
		for x := range 4 {
			assert.Equal(t, want[image.Pt(x, y)], g.Covered(x, y), "cell %d,%d", x, y)
		}
	}
	r, _, _ := g.At(1, 1)
	assert.InDelta(t, 127.5, r, 1e-9)
}

func TestRasterizeWindingIndependent(t *testing.T) {
	a, b := NewGrid(16), NewGrid(16)
	p := [3]math3d.Vec2{math3d.V2(0.1, 0.1), math3d.V2(0.9, 0.3), math3d.V2(0.4, 0.8)}

	a.Rasterize(uvs(p[0], p[1], p[2]), scene.White)
	b.Rasterize(uvs(p[0], p[2], p[1]), scene.White)

	assert.True(t, a.Equal(b))
	assert.Positive(t, countCovered(a))
}

func TestRasterizeDegenerate(t *testing.T) {
	g := NewGrid(8)

	// Collinear points.
	assert.False(t, g.Rasterize(uvs(math3d.V2(0, 0), math3d.V2(0.5, 0.5), math3d.V2(0.9, 0.9)), scene.White))
	// Distinct UVs collapsing into one cell.
	assert.False(t, g.Rasterize(uvs(math3d.V2(0.01, 0.01), math3d.V2(0.02, 0.01), math3d.V2(0.01, 0.02)), scene.White))
	// Entirely outside the unit square clamps onto a single edge.
	assert.False(t, g.Rasterize(uvs(math3d.V2(2, 0), math3d.V2(3, 0.5), math3d.V2(4, 1)), scene.White))

	assert.Zero(t, countCovered(g))
}

func TestRasterizeOverlapKeepsMax(t *testing.T) {
	g := NewGrid(8)
	tri := uvs(math3d.V2(0, 0), math3d.V2(1, 0), math3d.V2(0, 1))

	g.Rasterize(tri, scene.Color{R: 0.8, G: 0.2, B: 0.5})
	g.Rasterize(tri, scene.Color{R: 0.3, G: 0.9, B: 0.5})

	r, gr, b := g.At(0, 0)
	assert.InDelta(t, 0.8*255, r, 1e-9)
	assert.InDelta(t, 0.9*255, gr, 1e-9)
	assert.InDelta(t, 0.5*255, b, 1e-9)

	// Order does not matter.
	h := NewGrid(8)
	h.Rasterize(tri, scene.Color{R: 0.3, G: 0.9, B: 0.5})
	h.Rasterize(tri, scene.Color{R: 0.8, G: 0.2, B: 0.5})
	assert.True(t, g.Equal(h))
}

func TestGridImage(t *testing.T) {
	g := NewGrid(2)
	g.Merge(1, 0, scene.Gray(AmbientFloor))
	g.Merge(0, 1, scene.White)

	img := g.Image()
	assert.Equal(t, image.Rect(0, 0, 2, 2), img.Bounds())

	c := img.RGBAAt(1, 0)
	assert.GreaterOrEqual(t, c.R, uint8(25))
	assert.LessOrEqual(t, c.R, uint8(26))
	assert.Equal(t, uint8(255), c.A)
	assert.Equal(t, uint8(255), img.RGBAAt(0, 1).G)
	assert.Equal(t, uint8(0), img.RGBAAt(0, 0).R)
	assert.Equal(t, uint8(255), img.RGBAAt(0, 0).A)
}
