package render

import (
	"math"

	"github.com/taigrr/lightbake/pkg/lightmap"
	"github.com/taigrr/lightbake/pkg/math3d"
	"github.com/taigrr/lightbake/pkg/scene"
)

// Vertex is a world-space vertex with its shaded color and lightmap UV.
type Vertex struct {
	Position math3d.Vec3
	Color    Color
	UV       math3d.Vec2
}

// Triangle represents a triangle to be rasterized.
type Triangle struct {
	V [3]Vertex
}

// FrameStats counts what the last frame drew.
type FrameStats struct {
	MeshesTested int
	MeshesCulled int // outside the frustum
	MeshesDrawn  int
	Triangles    int // triangles that produced at least the setup pass
}

// Rasterizer draws scene meshes into a framebuffer with a Z-buffer.
// Front faces are counter-clockwise seen from outside, as in glTF.
type Rasterizer struct {
	camera  *Camera
	fb      *Framebuffer
	zbuffer []float64 // row-major
	frustum Frustum

	Stats                  FrameStats
	DisableBackfaceCulling bool
}

// NewRasterizer creates a new rasterizer.
func NewRasterizer(camera *Camera, fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{camera: camera, fb: fb}
	r.Resize()
	r.frustum = camera.Frustum()
	return r
}

// Resize resizes the depth buffer to match the framebuffer.
func (r *Rasterizer) Resize() {
	if r.fb == nil {
		r.zbuffer = nil
		return
	}
	r.zbuffer = make([]float64, r.fb.Width*r.fb.Height)
	r.ClearDepth()
}

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Width
}

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Height
}

// ClearDepth clears the Z-buffer.
func (r *Rasterizer) ClearDepth() {
	// Use copy-doubling for faster clearing
	n := len(r.zbuffer)
	if n == 0 {
		return
	}
	r.zbuffer[0] = math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(r.zbuffer[i:], r.zbuffer[:i])
	}
}

// BeginFrame clears depth, resets the stats and picks up camera changes.
func (r *Rasterizer) BeginFrame() {
	r.ClearDepth()
	r.Stats = FrameStats{}
	r.frustum = r.camera.Frustum()
}

// IsVisible tests if a world-space box touches the view frustum.
func (r *Rasterizer) IsVisible(box AABB) bool {
	return r.frustum.IntersectAABB(box)
}

func (r *Rasterizer) getDepth(x, y int) float64 {
	if x < 0 || x >= r.Width() || y < 0 || y >= r.Height() {
		return math.MaxFloat64
	}
	return r.zbuffer[y*r.Width()+x]
}

func (r *Rasterizer) setDepth(x, y int, z float64) {
	if x < 0 || x >= r.Width() || y < 0 || y >= r.Height() {
		return
	}
	r.zbuffer[y*r.Width()+x] = z
}

// screenVertex holds a vertex transformed to screen space.
type screenVertex struct {
	X, Y  float64 // Screen coordinates
	Z     float64 // NDC depth
	W     float64
	Color Color
	UV    math3d.Vec2
}

func (r *Rasterizer) project(viewProj math3d.Mat4, v Vertex) screenVertex {
	clip := viewProj.MulVec4(math3d.V4FromV3(v.Position, 1))
	ndc := clip.PerspectiveDivide()
	return screenVertex{
		X:     (ndc.X + 1) * 0.5 * float64(r.Width()),
		Y:     (1 - ndc.Y) * 0.5 * float64(r.Height()), // Y flipped
		Z:     ndc.Z,
		W:     clip.W,
		Color: v.Color,
		UV:    v.UV,
	}
}

// DrawTriangle rasterizes a triangle. With a texture the pixel color is
// sampled at the interpolated UV; otherwise the vertex colors are
// interpolated (Gouraud). Triangles crossing the camera plane are
// dropped. It reports whether the triangle reached the pixel loop.
func (r *Rasterizer) DrawTriangle(tri Triangle, tex *Texture) bool {
	viewProj := r.camera.ViewProjectionMatrix()

	var sv [3]screenVertex
	for i := range 3 {
		sv[i] = r.project(viewProj, tri.V[i])
		if sv[i].W <= 0 {
			return false
		}
	}

	// Screen Y points down, so a counter-clockwise front face has a
	// negative cross product here.
	edge1 := math3d.V2(sv[1].X-sv[0].X, sv[1].Y-sv[0].Y)
	edge2 := math3d.V2(sv[2].X-sv[0].X, sv[2].Y-sv[0].Y)
	cross := edge1.Cross(edge2)
	if cross == 0 || (cross > 0 && !r.DisableBackfaceCulling) {
		return false
	}

	minX := int(math.Max(0, math.Floor(min3(sv[0].X, sv[1].X, sv[2].X))))
	maxX := int(math.Min(float64(r.Width()-1), math.Ceil(max3(sv[0].X, sv[1].X, sv[2].X))))
	minY := int(math.Max(0, math.Floor(min3(sv[0].Y, sv[1].Y, sv[2].Y))))
	maxY := int(math.Min(float64(r.Height()-1), math.Ceil(max3(sv[0].Y, sv[1].Y, sv[2].Y))))

	r.Stats.Triangles++
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5
			bc := barycentric(
				sv[0].X, sv[0].Y,
				sv[1].X, sv[1].Y,
				sv[2].X, sv[2].Y,
				px, py,
			)
			if bc.X < 0 || bc.Y < 0 || bc.Z < 0 {
				continue
			}

			z := bc.X*sv[0].Z + bc.Y*sv[1].Z + bc.Z*sv[2].Z
			if z >= r.getDepth(x, y) {
				continue
			}

			var c Color
			if tex != nil {
				uv := interpolateUV(sv[0].UV, sv[1].UV, sv[2].UV, bc)
				c = tex.Sample(uv.X, uv.Y)
				c.A = 255
			} else {
				c = interpolateColor3(sv[0].Color, sv[1].Color, sv[2].Color, bc)
			}
			r.setDepth(x, y, z)
			r.fb.SetPixel(x, y, c)
		}
	}
	return true
}

// barycentric calculates barycentric coordinates for point (px, py) in triangle.
func barycentric(x0, y0, x1, y1, x2, y2, px, py float64) math3d.Vec3 {
	v0x, v0y := x2-x0, y2-y0
	v1x, v1y := x1-x0, y1-y0
	v2x, v2y := px-x0, py-y0

	dot00 := v0x*v0x + v0y*v0y
	dot01 := v0x*v1x + v0y*v1y
	dot02 := v0x*v2x + v0y*v2y
	dot11 := v1x*v1x + v1y*v1y
	dot12 := v1x*v2x + v1y*v2y

	invDenom := 1.0 / (dot00*dot11 - dot01*dot01)
	u := (dot11*dot02 - dot01*dot12) * invDenom
	v := (dot00*dot12 - dot01*dot02) * invDenom

	return math3d.V3(1-u-v, v, u)
}

// interpolateColor3 interpolates between 3 colors using barycentric coords.
func interpolateColor3(c0, c1, c2 Color, bc math3d.Vec3) Color {
	return RGB(
		uint8(float64(c0.R)*bc.X+float64(c1.R)*bc.Y+float64(c2.R)*bc.Z),
		uint8(float64(c0.G)*bc.X+float64(c1.G)*bc.Y+float64(c2.G)*bc.Z),
		uint8(float64(c0.B)*bc.X+float64(c1.B)*bc.Y+float64(c2.B)*bc.Z),
	)
}

func interpolateUV(a, b, c math3d.Vec2, bc math3d.Vec3) math3d.Vec2 {
	return a.Scale(bc.X).Add(b.Scale(bc.Y)).Add(c.Scale(bc.Z))
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}

// LightColor converts a lighting result in [0, 1] to an opaque color.
func LightColor(c scene.Color) Color {
	c = c.Clamp(0, 1)
	return RGB(
		uint8(math.Round(c.R*255)),
		uint8(math.Round(c.G*255)),
		uint8(math.Round(c.B*255)),
	)
}

// geometry culls m against the frustum and extracts its triangles.
func (r *Rasterizer) geometry(m *scene.Mesh) (*lightmap.Geometry, bool) {
	if !m.Visible {
		return nil, false
	}
	r.Stats.MeshesTested++
	if !r.IsVisible(MeshBounds(m)) {
		r.Stats.MeshesCulled++
		return nil, false
	}
	g, err := lightmap.Extract(m)
	if err != nil {
		return nil, false
	}
	r.Stats.MeshesDrawn++
	return g, true
}

// DrawMeshLit draws a mesh lit per vertex by lights with the same model
// the baker uses per triangle. It reports whether the mesh was drawn.
func (r *Rasterizer) DrawMeshLit(m *scene.Mesh, lights []scene.Light) bool {
	g, ok := r.geometry(m)
	if !ok {
		return false
	}
	for _, t := range g.Triangles() {
		var tri Triangle
		for i := range 3 {
			p := g.World.MulVec3(t.Positions[i])
			n := g.World.MulVec3Dir(t.Normals[i]).Normalize()
			tri.V[i] = Vertex{Position: p, Color: LightColor(lightmap.Shade(p, n, g.Category, lights))}
		}
		r.DrawTriangle(tri, nil)
	}
	return true
}

// DrawMeshBaked draws a mesh textured with its baked lightmap. UVs come
// from the mesh or are synthesized exactly as the baker did.
func (r *Rasterizer) DrawMeshBaked(m *scene.Mesh, tex *Texture) bool {
	g, ok := r.geometry(m)
	if !ok {
		return false
	}
	for _, t := range g.Triangles() {
		uv := t.UVs
		if !t.HasUVs {
			uv = lightmap.SynthesizeUV(g.Category, t.Positions, t.Normals)
		}
		var tri Triangle
		for i := range 3 {
			tri.V[i] = Vertex{Position: g.World.MulVec3(t.Positions[i]), UV: uv[i]}
		}
		r.DrawTriangle(tri, tex)
	}
	return true
}

// DrawMeshWireframe outlines every triangle of a mesh, ignoring depth.
func (r *Rasterizer) DrawMeshWireframe(m *scene.Mesh, color Color) {
	g, ok := r.geometry(m)
	if !ok {
		return
	}
	for _, t := range g.Triangles() {
		v0 := g.World.MulVec3(t.Positions[0])
		v1 := g.World.MulVec3(t.Positions[1])
		v2 := g.World.MulVec3(t.Positions[2])
		r.drawLine3D(v0, v1, color)
		r.drawLine3D(v1, v2, color)
		r.drawLine3D(v2, v0, color)
	}
}

// DrawMarker draws a small cross at a world position, such as a light.
func (r *Rasterizer) DrawMarker(p math3d.Vec3, size int, color Color) bool {
	x, y, _, ok := r.camera.WorldToScreen(p, r.Width(), r.Height())
	if !ok {
		return false
	}
	cx, cy := int(x), int(y)
	r.fb.DrawLine(cx-size, cy, cx+size, cy, color)
	r.fb.DrawLine(cx, cy-size, cx, cy+size, color)
	return true
}

// drawLine3D draws a projected line. Lines with an end behind the camera
// are skipped.
func (r *Rasterizer) drawLine3D(a, b math3d.Vec3, color Color) {
	viewProj := r.camera.ViewProjectionMatrix()
	sa := r.project(viewProj, Vertex{Position: a})
	sb := r.project(viewProj, Vertex{Position: b})
	if sa.W <= 0 || sb.W <= 0 {
		return
	}
	r.fb.DrawLine(int(sa.X), int(sa.Y), int(sb.X), int(sb.Y), color)
}
