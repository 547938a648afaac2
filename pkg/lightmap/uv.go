package lightmap

import (
	"math"

	"github.com/taigrr/lightbake/pkg/math3d"
	"github.com/taigrr/lightbake/pkg/scene"
)

// SynthesizeUV derives UVs for a triangle from its local positions. The
// projection depends on the mesh category; wall and box projections pick
// their plane from the first vertex normal. The result is not clamped.
func SynthesizeUV(cat scene.Category, p [3]math3d.Vec3, n [3]math3d.Vec3) [3]math3d.Vec2 {
	var project func(v math3d.Vec3) math3d.Vec2

	switch cat {
	case scene.CategoryWall:
		// Walls span [-5,5] horizontally and [-2.5,2.5] vertically.
		useX := math.Abs(n[0].Z) > math.Abs(n[0].X)
		project = func(v math3d.Vec3) math3d.Vec2 {
			h := v.Z
			if useX {
				h = v.X
			}
			return math3d.V2((h+5)/10, (v.Y+2.5)/5)
		}
	case scene.CategoryGround:
		project = func(v math3d.Vec3) math3d.Vec2 {
			return math3d.V2((v.X+5)/10, (v.Z+5)/10)
		}
	case scene.CategoryBox:
		a := n[0].Abs()
		switch {
		case a.Y > a.X && a.Y > a.Z:
			project = func(v math3d.Vec3) math3d.Vec2 { return math3d.V2(v.X+0.5, v.Z+0.5) }
		case a.X > a.Z:
			project = func(v math3d.Vec3) math3d.Vec2 { return math3d.V2(v.Z+0.5, v.Y+0.5) }
		default:
			project = func(v math3d.Vec3) math3d.Vec2 { return math3d.V2(v.X+0.5, v.Y+0.5) }
		}
	case scene.CategorySphere:
		project = sphericalUV
	default:
		project = func(v math3d.Vec3) math3d.Vec2 {
			return math3d.V2(0.5+v.X/10, 0.5+v.Z/10)
		}
	}

	return [3]math3d.Vec2{project(p[0]), project(p[1]), project(p[2])}
}

// sphericalUV maps the direction of v to longitude/latitude. The origin
// maps to the texture center.
func sphericalUV(v math3d.Vec3) math3d.Vec2 {
	d := v.Normalize()
	u := 0.5 + math.Atan2(d.Z, d.X)/(2*math.Pi)
	w := 0.5 - math.Asin(d.Y)/math.Pi
	return math3d.V2(u, w)
}
