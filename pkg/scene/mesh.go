// Package scene holds the meshes and lights that a lightmap bake reads,
// along with the builders and loaders that produce them.
package scene

import (
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/taigrr/lightbake/pkg/math3d"
)

// Mesh is an indexed triangle mesh with a world transform.
//
// A nil buffer means the attribute is absent. UVs are optional; the baker
// synthesizes them when missing and never writes them back.
type Mesh struct {
	ID      uuid.UUID
	Name    string
	Visible bool

	Positions []math3d.Vec3
	Normals   []math3d.Vec3
	UVs       []math3d.Vec2
	Indices   []int

	World math3d.Mat4
}

// NewMesh creates an empty visible mesh with an identity transform.
func NewMesh(name string) *Mesh {
	return &Mesh{
		ID:      uuid.New(),
		Name:    name,
		Visible: true,
		World:   math3d.Identity(),
	}
}

// Category returns the UV heuristic category inferred from the mesh name.
func (m *Mesh) Category() Category {
	return CategoryOf(m.Name)
}

// TriangleCount returns the number of complete index triples.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// VertexCount returns the number of positions.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// IsHelper reports whether the mesh is an editor helper object that should
// never receive a lightmap.
func (m *Mesh) IsHelper() bool {
	return strings.Contains(m.Name, "helper") || strings.Contains(m.Name, "Helper")
}

// SetPosition replaces the world transform with a translation.
func (m *Mesh) SetPosition(p math3d.Vec3) {
	m.World = math3d.Translate(p)
}

// Bounds returns the axis-aligned bounding box of the local positions.
func (m *Mesh) Bounds() (minB, maxB math3d.Vec3) {
	if len(m.Positions) == 0 {
		return math3d.Zero3(), math3d.Zero3()
	}
	minB, maxB = m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		minB = minB.Min(p)
		maxB = maxB.Max(p)
	}
	return minB, maxB
}

// Clone returns a deep copy of the mesh that keeps the same identity.
func (m *Mesh) Clone() *Mesh {
	c := *m
	c.Positions = slices.Clone(m.Positions)
	c.Normals = slices.Clone(m.Normals)
	c.UVs = slices.Clone(m.UVs)
	c.Indices = slices.Clone(m.Indices)
	return &c
}

// Category selects the heuristic used to synthesize UVs for a mesh.
type Category int

const (
	CategoryOther Category = iota
	CategoryWall
	CategoryGround
	CategoryBox
	CategorySphere
)

func (c Category) String() string {
	switch c {
	case CategoryWall:
		return "wall"
	case CategoryGround:
		return "ground"
	case CategoryBox:
		return "box"
	case CategorySphere:
		return "sphere"
	default:
		return "other"
	}
}

// CategoryOf infers a category from a mesh name. Matching is case
// insensitive and the first match in wall, ground/floor, box, sphere order
// wins.
func CategoryOf(name string) Category {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "wall"):
		return CategoryWall
	case strings.Contains(n, "ground"), strings.Contains(n, "floor"):
		return CategoryGround
	case strings.Contains(n, "box"):
		return CategoryBox
	case strings.Contains(n, "sphere"):
		return CategorySphere
	default:
		return CategoryOther
	}
}
