package lightmap

import (
	"errors"

	"go.uber.org/zap"

	"github.com/taigrr/lightbake/pkg/scene"
)

// Stats counts what happened to a mesh's triangles during a bake.
type Stats struct {
	Triangles   int
	Rasterized  int
	Degenerate  int // zero area in grid space
	BadNormals  int // vertex normals summed to zero
	Synthesized int // UVs derived from positions
}

// Skipped returns the number of triangles that did not reach the grid.
func (s Stats) Skipped() int {
	return s.Degenerate + s.BadNormals
}

// Baker bakes single meshes. It is not safe for concurrent use because the
// Composer is not.
type Baker struct {
	composer *Composer
	log      *zap.Logger
}

// NewBaker creates a baker. A nil logger disables logging.
func NewBaker(composer *Composer, log *zap.Logger) *Baker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Baker{composer: composer, log: log}
}

// Composer returns the composer used for textures.
func (b *Baker) Composer() *Composer {
	return b.composer
}

// BakeGrid shades and rasterizes every triangle of m onto a new grid of
// the given size. Triangles are processed in index order; degenerate ones
// are counted and skipped.
func (b *Baker) BakeGrid(m *scene.Mesh, lights []scene.Light, gridSize int) (*Grid, Stats, error) {
	geom, err := Extract(m)
	if err != nil {
		return nil, Stats{}, err
	}

	grid := NewGrid(gridSize)
	stats := Stats{Triangles: geom.TriangleCount()}

	for _, tri := range geom.Triangles() {
		c, err := ShadeTriangle(tri, geom.World, geom.Category, lights)
		if errors.Is(err, ErrDegenerateNormal) {
			stats.BadNormals++
			continue
		}

		uv := tri.UVs
		if !tri.HasUVs {
			uv = SynthesizeUV(geom.Category, tri.Positions, tri.Normals)
			stats.Synthesized++
		}
		if !grid.Rasterize(uv, c) {
			stats.Degenerate++
			continue
		}
		stats.Rasterized++
	}

	b.log.Debug("mesh rasterized",
		zap.String("mesh", geom.Name),
		zap.Stringer("category", geom.Category),
		zap.Int("grid", gridSize),
		zap.Int("triangles", stats.Triangles),
		zap.Int("skipped", stats.Skipped()),
	)
	return grid, stats, nil
}

// BakeMesh bakes m into a finished texture at the tier's resolution. When
// the mesh has unusable geometry the returned texture is the error
// placeholder and err is a *GeometryError.
func (b *Baker) BakeMesh(m *scene.Mesh, lights []scene.Light, q Quality) (*Texture, Stats, error) {
	size := q.TextureSize()
	grid, stats, err := b.BakeGrid(m, lights, q.GridSize())
	if err != nil {
		b.log.Warn("mesh skipped", zap.Error(err))
		return b.composer.ErrorTexture(size), stats, err
	}
	return b.composer.Compose(grid, size, m.Name), stats, nil
}
