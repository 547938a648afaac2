package lightmap

import (
	"fmt"
	"iter"

	"github.com/taigrr/lightbake/pkg/math3d"
	"github.com/taigrr/lightbake/pkg/scene"
)

// Geometry is a validated read-only view of a mesh's buffers.
type Geometry struct {
	Name      string
	Category  scene.Category
	World     math3d.Mat4
	Positions []math3d.Vec3
	Normals   []math3d.Vec3
	UVs       []math3d.Vec2
	Indices   []int
}

// Triangle is one index triple resolved against a Geometry. It only lives
// for the duration of an iteration step.
type Triangle struct {
	Positions [3]math3d.Vec3
	Normals   [3]math3d.Vec3
	UVs       [3]math3d.Vec2
	// HasUVs is false when the UV buffer does not cover all three
	// vertices; UVs is then zero and must be synthesized.
	HasUVs bool
}

// Extract validates a mesh and returns its geometry. Positions, normals and
// indices are required and every index must address both the position and
// the normal buffer. A trailing partial index triple is ignored.
func Extract(m *scene.Mesh) (*Geometry, error) {
	if m == nil {
		return nil, &GeometryError{Mesh: "", Err: ErrMissingGeometry}
	}
	geomErr := func(err error) error {
		return &GeometryError{Mesh: m.Name, Err: err}
	}

	switch {
	case len(m.Positions) == 0:
		return nil, geomErr(fmt.Errorf("%w: positions", ErrMissingGeometry))
	case len(m.Normals) == 0:
		return nil, geomErr(fmt.Errorf("%w: normals", ErrMissingGeometry))
	case len(m.Indices) == 0:
		return nil, geomErr(fmt.Errorf("%w: indices", ErrMissingGeometry))
	}

	limit := min(len(m.Positions), len(m.Normals))
	for i, idx := range m.Indices[:len(m.Indices)/3*3] {
		if idx < 0 || idx >= limit {
			return nil, geomErr(fmt.Errorf("%w: indices[%d] = %d, %d vertices", ErrIndexOutOfRange, i, idx, limit))
		}
	}

	return &Geometry{
		Name:      m.Name,
		Category:  m.Category(),
		World:     m.World,
		Positions: m.Positions,
		Normals:   m.Normals,
		UVs:       m.UVs,
		Indices:   m.Indices,
	}, nil
}

// TriangleCount returns the number of complete index triples.
func (g *Geometry) TriangleCount() int {
	return len(g.Indices) / 3
}

// Triangles yields every triangle in index order together with its
// ordinal.
func (g *Geometry) Triangles() iter.Seq2[int, Triangle] {
	return func(yield func(int, Triangle) bool) {
		for t := range g.TriangleCount() {
			ids := [3]int{g.Indices[t*3], g.Indices[t*3+1], g.Indices[t*3+2]}
			var tri Triangle
			for k, id := range ids {
				tri.Positions[k] = g.Positions[id]
				tri.Normals[k] = g.Normals[id]
			}
			if n := len(g.UVs); ids[0] < n && ids[1] < n && ids[2] < n {
				tri.HasUVs = true
				for k, id := range ids {
					tri.UVs[k] = g.UVs[id]
				}
			}
			if !yield(t, tri) {
				return
			}
		}
	}
}
