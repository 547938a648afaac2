package lightmap

import (
	"github.com/taigrr/lightbake/pkg/math3d"
	"github.com/taigrr/lightbake/pkg/scene"
)

// Shading constants.
const (
	AmbientFloor = 0.1
	MaxChannel   = 1.0

	// Point light attenuation 1 / (1 + linear·d + quadratic·d²).
	attLinear    = 0.1
	attQuadratic = 0.01

	// Wall and box surfaces fade out linearly to zero at this distance from
	// a point light.
	shadowRange = 15.0
)

// Shade returns the irradiance at a world-space point with a world-space
// unit normal. It starts from the ambient floor, adds the contribution of
// every enabled light and clamps each channel to [AmbientFloor, MaxChannel].
func Shade(centroid, normal math3d.Vec3, cat scene.Category, lights []scene.Light) scene.Color {
	c := scene.Gray(AmbientFloor)
	for _, l := range lights {
		if l == nil || !l.Base().Enabled {
			continue
		}
		c = c.Add(contribution(l, centroid, normal, cat))
	}
	return c.Clamp(AmbientFloor, MaxChannel)
}

func contribution(l scene.Light, centroid, normal math3d.Vec3, cat scene.Category) scene.Color {
	switch l := l.(type) {
	case *scene.PointLight:
		dir := l.Position.Sub(centroid).Normalize()
		dot := normal.Dot(dir)
		if dot <= 0 {
			return scene.Color{}
		}
		d := l.Position.Distance(centroid)
		att := 1 / (1 + attLinear*d + attQuadratic*d*d)
		k := dot * l.Intensity * att
		if cat == scene.CategoryWall || cat == scene.CategoryBox {
			vertical := max(0, dir.Y*0.5+0.5)
			shadow := max(0, 1-d/shadowRange)
			k *= vertical * shadow
		}
		return l.Diffuse.Scale(k)

	case *scene.DirectionalLight:
		dot := normal.Dot(l.Direction.Negate())
		if dot <= 0 {
			return scene.Color{}
		}
		return l.Diffuse.Scale(dot * l.Intensity)

	case *scene.HemisphericLight:
		dot := normal.Dot(l.Direction)
		return l.Diffuse.Scale((dot*0.5 + 0.5) * l.Intensity)

	default:
		return scene.Color{}
	}
}

// ShadeTriangle shades a triangle at its centroid. Positions and normals
// are local; world transforms the centroid as a point and the averaged
// normal as a direction. It returns ErrDegenerateNormal when the vertex
// normals cancel out.
func ShadeTriangle(tri Triangle, world math3d.Mat4, cat scene.Category, lights []scene.Light) (scene.Color, error) {
	sum := tri.Normals[0].Add(tri.Normals[1]).Add(tri.Normals[2])
	if sum.IsZero() {
		return scene.Color{}, ErrDegenerateNormal
	}

	center := tri.Positions[0].Add(tri.Positions[1]).Add(tri.Positions[2]).Scale(1.0 / 3)
	worldCenter := world.MulVec3(center)
	worldNormal := world.MulVec3Dir(sum.Normalize()).Normalize()
	if worldNormal.IsZero() {
		return scene.Color{}, ErrDegenerateNormal
	}

	return Shade(worldCenter, worldNormal, cat, lights), nil
}
