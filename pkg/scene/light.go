package scene

import "github.com/taigrr/lightbake/pkg/math3d"

// Color is a linear RGB color with channels nominally in [0, 1].
type Color struct {
	R, G, B float64
}

// White is the default diffuse color of every light.
var White = Color{1, 1, 1}

// Gray returns a color with all channels set to v.
func Gray(v float64) Color {
	return Color{v, v, v}
}

// Add returns the channel-wise sum.
func (c Color) Add(o Color) Color {
	return Color{c.R + o.R, c.G + o.G, c.B + o.B}
}

// Scale multiplies every channel by s.
func (c Color) Scale(s float64) Color {
	return Color{c.R * s, c.G * s, c.B * s}
}

// Clamp limits every channel to [lo, hi].
func (c Color) Clamp(lo, hi float64) Color {
	return Color{clamp(c.R, lo, hi), clamp(c.G, lo, hi), clamp(c.B, lo, hi)}
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}

// Light is one of *PointLight, *DirectionalLight or *HemisphericLight.
// The interface is sealed so that shading can switch over every kind.
type Light interface {
	Base() *LightBase
	light()
}

// LightBase holds the attributes shared by every light kind.
type LightBase struct {
	Name      string
	Intensity float64
	Diffuse   Color
	Enabled   bool
}

// Base returns the shared attributes.
func (b *LightBase) Base() *LightBase { return b }

// PointLight emits from a position with distance attenuation.
type PointLight struct {
	LightBase
	Position math3d.Vec3
}

// DirectionalLight emits parallel rays travelling along Direction.
type DirectionalLight struct {
	LightBase
	Direction math3d.Vec3
}

// HemisphericLight is a sky/ground ambient term oriented along Direction.
type HemisphericLight struct {
	LightBase
	Direction math3d.Vec3
}

func (*PointLight) light()       {}
func (*DirectionalLight) light() {}
func (*HemisphericLight) light() {}

// NewPointLight creates an enabled white point light.
func NewPointLight(name string, pos math3d.Vec3, intensity float64) *PointLight {
	return &PointLight{
		LightBase: LightBase{Name: name, Intensity: intensity, Diffuse: White, Enabled: true},
		Position:  pos,
	}
}

// NewDirectionalLight creates an enabled white directional light.
func NewDirectionalLight(name string, dir math3d.Vec3, intensity float64) *DirectionalLight {
	return &DirectionalLight{
		LightBase: LightBase{Name: name, Intensity: intensity, Diffuse: White, Enabled: true},
		Direction: dir,
	}
}

// NewHemisphericLight creates an enabled white hemispheric light.
func NewHemisphericLight(name string, dir math3d.Vec3, intensity float64) *HemisphericLight {
	return &HemisphericLight{
		LightBase: LightBase{Name: name, Intensity: intensity, Diffuse: White, Enabled: true},
		Direction: dir,
	}
}

// KindOf names the kind of a light for logs and config.
func KindOf(l Light) string {
	switch l.(type) {
	case *PointLight:
		return "point"
	case *DirectionalLight:
		return "directional"
	case *HemisphericLight:
		return "hemispheric"
	default:
		return "unknown"
	}
}
