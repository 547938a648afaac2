package render

import (
	"math"

	"github.com/taigrr/lightbake/pkg/math3d"
)

// Orbit limits.
const (
	MinRadius = 2.0
	MaxRadius = 120.0

	minBeta = 0.01
	maxBeta = math.Pi - 0.01
)

// Camera orbits a target point. Alpha is the longitude around the Y axis
// and Beta the angle down from +Y, both in radians.
type Camera struct {
	Alpha  float64
	Beta   float64
	Radius float64
	Target math3d.Vec3

	// Projection parameters
	FOV         float64 // Vertical field of view in radians
	AspectRatio float64 // Width / Height
	Near        float64
	Far         float64

	viewMatrix     math3d.Mat4
	projMatrix     math3d.Mat4
	viewProjMatrix math3d.Mat4
	viewDirty      bool
	projDirty      bool
	vpDirty        bool
}

// NewCamera returns the editor's default view: a quarter turn around the
// origin, tilted 45°, 30 units out.
func NewCamera() *Camera {
	return &Camera{
		Alpha:       math.Pi / 4,
		Beta:        math.Pi / 4,
		Radius:      30,
		FOV:         math.Pi / 4,
		AspectRatio: 16.0 / 9.0,
		Near:        0.1,
		Far:         500,
		viewDirty:   true,
		projDirty:   true,
		vpDirty:     true,
	}
}

// SetOrbit places the camera at the given angles and distance.
func (c *Camera) SetOrbit(alpha, beta, radius float64) {
	c.Alpha = alpha
	c.Beta = clampF(beta, minBeta, maxBeta)
	c.Radius = clampF(radius, MinRadius, MaxRadius)
	c.markView()
}

// Orbit rotates the camera around its target.
func (c *Camera) Orbit(dAlpha, dBeta float64) {
	c.SetOrbit(c.Alpha+dAlpha, c.Beta+dBeta, c.Radius)
}

// Zoom moves the camera toward (negative) or away from the target.
func (c *Camera) Zoom(d float64) {
	c.SetOrbit(c.Alpha, c.Beta, c.Radius+d)
}

// SetTarget changes the orbit center.
func (c *Camera) SetTarget(t math3d.Vec3) {
	c.Target = t
	c.markView()
}

// SetFOV sets the field of view (in radians).
func (c *Camera) SetFOV(fov float64) {
	c.FOV = fov
	c.markProj()
}

// SetAspectRatio sets the aspect ratio.
func (c *Camera) SetAspectRatio(aspect float64) {
	c.AspectRatio = aspect
	c.markProj()
}

// SetClipPlanes sets the near and far clipping planes.
func (c *Camera) SetClipPlanes(near, far float64) {
	c.Near = near
	c.Far = far
	c.markProj()
}

func (c *Camera) markView() {
	c.viewDirty = true
	c.vpDirty = true
}

func (c *Camera) markProj() {
	c.projDirty = true
	c.vpDirty = true
}

// Position returns the eye position in world space.
func (c *Camera) Position() math3d.Vec3 {
	sinB, cosB := math.Sincos(c.Beta)
	sinA, cosA := math.Sincos(c.Alpha)
	return c.Target.Add(math3d.V3(cosA*sinB, cosB, sinA*sinB).Scale(c.Radius))
}

// Forward returns the unit view direction.
func (c *Camera) Forward() math3d.Vec3 {
	return c.Target.Sub(c.Position()).Normalize()
}

// ViewMatrix returns the view matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	if c.viewDirty {
		c.viewMatrix = math3d.LookAt(c.Position(), c.Target, math3d.Up())
		c.viewDirty = false
	}
	return c.viewMatrix
}

// ProjectionMatrix returns the projection matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	if c.projDirty {
		c.projMatrix = math3d.Perspective(c.FOV, c.AspectRatio, c.Near, c.Far)
		c.projDirty = false
	}
	return c.projMatrix
}

// ViewProjectionMatrix returns the combined view-projection matrix.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	if c.vpDirty {
		c.viewProjMatrix = c.ProjectionMatrix().Mul(c.ViewMatrix())
		c.vpDirty = false
	}
	return c.viewProjMatrix
}

// Frustum returns the current view frustum.
func (c *Camera) Frustum() Frustum {
	return NewFrustumFromMatrix(c.ViewProjectionMatrix())
}

// WorldToScreen transforms a world point to screen coordinates.
// Returns (screenX, screenY, depth, visible).
func (c *Camera) WorldToScreen(worldPos math3d.Vec3, screenWidth, screenHeight int) (x, y, depth float64, visible bool) {
	clipPos := c.ViewProjectionMatrix().MulVec4(math3d.V4FromV3(worldPos, 1))

	// Behind the camera
	if clipPos.W <= 0 {
		return 0, 0, 0, false
	}

	ndc := clipPos.PerspectiveDivide()
	if ndc.X < -1 || ndc.X > 1 || ndc.Y < -1 || ndc.Y > 1 || ndc.Z < -1 || ndc.Z > 1 {
		return 0, 0, 0, false
	}

	x = (ndc.X + 1) * 0.5 * float64(screenWidth)
	y = (1 - ndc.Y) * 0.5 * float64(screenHeight) // Y is flipped
	return x, y, ndc.Z, true
}

func clampF(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
