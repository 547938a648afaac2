package scene

import (
	"math"

	"github.com/taigrr/lightbake/pkg/math3d"
)

// Ground builds a flat width×depth quad in the XZ plane, centered on the
// origin, facing +Y. It has 4 vertices, 2 triangles and no UVs.
func Ground(name string, width, depth float64) *Mesh {
	m := NewMesh(name)
	hw, hd := width/2, depth/2
	m.Positions = []math3d.Vec3{
		math3d.V3(-hw, 0, hd),
		math3d.V3(hw, 0, hd),
		math3d.V3(hw, 0, -hd),
		math3d.V3(-hw, 0, -hd),
	}
	m.Normals = []math3d.Vec3{math3d.Up(), math3d.Up(), math3d.Up(), math3d.Up()}
	m.Indices = []int{0, 1, 2, 0, 2, 3}
	return m
}

// boxFace describes one face of a box: its outward normal and the two
// in-plane axes spanning it.
type boxFace struct {
	normal, u, v math3d.Vec3
}

var boxFaces = [6]boxFace{
	{math3d.V3(0, 0, 1), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)},
	{math3d.V3(0, 0, -1), math3d.V3(-1, 0, 0), math3d.V3(0, 1, 0)},
	{math3d.V3(1, 0, 0), math3d.V3(0, 0, -1), math3d.V3(0, 1, 0)},
	{math3d.V3(-1, 0, 0), math3d.V3(0, 0, 1), math3d.V3(0, 1, 0)},
	{math3d.V3(0, 1, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, -1)},
	{math3d.V3(0, -1, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, 1)},
}

// Box builds an axis-aligned box centered on the origin with per-face
// normals: 24 vertices, 12 triangles, no UVs.
func Box(name string, width, height, depth float64) *Mesh {
	m := NewMesh(name)
	half := math3d.V3(width/2, height/2, depth/2)
	m.Positions = make([]math3d.Vec3, 0, 24)
	m.Normals = make([]math3d.Vec3, 0, 24)
	m.Indices = make([]int, 0, 36)

	for _, f := range boxFaces {
		base := len(m.Positions)
		for _, c := range [4][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			p := f.normal.Add(f.u.Scale(c[0])).Add(f.v.Scale(c[1]))
			m.Positions = append(m.Positions, math3d.V3(p.X*half.X, p.Y*half.Y, p.Z*half.Z))
			m.Normals = append(m.Normals, f.normal)
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return m
}

// Sphere builds a UV sphere centered on the origin. segments controls both
// the ring and slice count and is raised to at least 3.
func Sphere(name string, diameter float64, segments int) *Mesh {
	segments = max(segments, 3)
	m := NewMesh(name)
	r := diameter / 2
	rings, sectors := segments, segments*2

	for ring := 0; ring <= rings; ring++ {
		theta := float64(ring) * math.Pi / float64(rings)
		sinT, cosT := math.Sincos(theta)
		for slice := 0; slice <= sectors; slice++ {
			phi := float64(slice) * 2 * math.Pi / float64(sectors)
			sinP, cosP := math.Sincos(phi)
			n := math3d.V3(cosP*sinT, cosT, sinP*sinT)
			m.Positions = append(m.Positions, n.Scale(r))
			m.Normals = append(m.Normals, n)
		}
	}

	stride := sectors + 1
	for ring := range rings {
		for slice := range sectors {
			a := ring*stride + slice
			b := a + stride
			m.Indices = append(m.Indices, a, a+1, b, a+1, b+1, b)
		}
	}
	return m
}
