package lightmap

import (
	"image"
	"image/color"
	"math"
	"slices"

	"github.com/taigrr/lightbake/pkg/math3d"
	"github.com/taigrr/lightbake/pkg/scene"
)

// Grid is a square lattice of RGB accumulators in [0, 255]. Every cell
// holds the per-channel maximum of the values rasterized into it.
type Grid struct {
	Size int
	Data []float64 // Size*Size*3, row-major RGB
}

// NewGrid creates a zeroed grid.
func NewGrid(size int) *Grid {
	size = max(size, 1)
	return &Grid{
		Size: size,
		Data: make([]float64, size*size*3),
	}
}

// At returns the RGB value of cell (x, y).
func (g *Grid) At(x, y int) (r, gr, b float64) {
	i := (y*g.Size + x) * 3
	return g.Data[i], g.Data[i+1], g.Data[i+2]
}

// Covered reports whether any triangle has written to cell (x, y).
// Written cells are never below the ambient floor.
func (g *Grid) Covered(x, y int) bool {
	r, gr, b := g.At(x, y)
	return r > 0 || gr > 0 || b > 0
}

// Merge raises cell (x, y) to c·255 channel-wise.
func (g *Grid) Merge(x, y int, c scene.Color) {
	i := (y*g.Size + x) * 3
	g.Data[i] = max(g.Data[i], c.R*255)
	g.Data[i+1] = max(g.Data[i+1], c.G*255)
	g.Data[i+2] = max(g.Data[i+2], c.B*255)
}

// Cell maps a UV coordinate to a grid cell, clamped to the grid.
func (g *Grid) Cell(uv math3d.Vec2) image.Point {
	x := int(math.Floor(uv.X * float64(g.Size)))
	y := int(math.Floor(uv.Y * float64(g.Size)))
	return image.Pt(clampInt(x, 0, g.Size-1), clampInt(y, 0, g.Size-1))
}

// Rasterize fills every cell of the triangle's UV footprint with c. Cells
// are tested at their integer lattice coordinates, edges inclusive.
// Zero-area triangles are skipped and reported with false.
func (g *Grid) Rasterize(uv [3]math3d.Vec2, c scene.Color) bool {
	a, b, d := g.Cell(uv[0]), g.Cell(uv[1]), g.Cell(uv[2])

	area := edge(a, b, d)
	if area == 0 {
		return false
	}

	minX := min(a.X, b.X, d.X)
	maxX := max(a.X, b.X, d.X)
	minY := min(a.Y, b.Y, d.Y)
	maxY := max(a.Y, b.Y, d.Y)

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			p := image.Pt(x, y)
			w0 := edge(b, d, p)
			w1 := edge(d, a, p)
			w2 := edge(a, b, p)
			if area < 0 {
				w0, w1, w2 = -w0, -w1, -w2
			}
			if w0 >= 0 && w1 >= 0 && w2 >= 0 {
				g.Merge(x, y, c)
			}
		}
	}
	return true
}

// edge returns twice the signed area of triangle (a, b, p).
func edge(a, b, p image.Point) int {
	return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
}

// Image converts the grid to an opaque RGBA image of Size×Size pixels.
func (g *Grid) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, g.Size, g.Size))
	for y := range g.Size {
		for x := range g.Size {
			r, gr, b := g.At(x, y)
			img.SetRGBA(x, y, color.RGBA{R: toByte(r), G: toByte(gr), B: toByte(b), A: 255})
		}
	}
	return img
}

// Equal reports whether two grids hold identical values.
func (g *Grid) Equal(o *Grid) bool {
	return g.Size == o.Size && slices.Equal(g.Data, o.Data)
}

func toByte(v float64) uint8 {
	return uint8(math.Round(max(0, min(255, v))))
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
