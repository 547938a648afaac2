package scene

import "github.com/taigrr/lightbake/pkg/math3d"

// Names of the lights created by DefaultRoom.
const (
	MainLightName    = "light"
	AmbientLightName = "ambientLight"
)

// DefaultRoom builds the sample room: a 10×10 ground enclosed by four
// walls, a box and a sphere, lit by a point light above the center and a
// dim hemispheric fill.
func DefaultRoom() *Scene {
	s := New()

	s.AddLight(
		NewPointLight(MainLightName, math3d.V3(0, 5, 0), 1.0),
		NewHemisphericLight(AmbientLightName, math3d.Up(), 0.2),
	)

	ground := Ground("ground", 10, 10)

	wall1 := Box("wall1", 10, 5, 0.3)
	wall1.SetPosition(math3d.V3(0, 2.5, 5))
	wall2 := Box("wall2", 10, 5, 0.3)
	wall2.SetPosition(math3d.V3(0, 2.5, -5))
	wall3 := Box("wall3", 0.3, 5, 10)
	wall3.SetPosition(math3d.V3(5, 2.5, 0))
	wall4 := Box("wall4", 0.3, 5, 10)
	wall4.SetPosition(math3d.V3(-5, 2.5, 0))

	box := Box("box", 1, 1, 1)
	box.SetPosition(math3d.V3(2, 0.5, 2))

	sphere := Sphere("sphere", 1, 16)
	sphere.SetPosition(math3d.V3(-2, 0.5, -2))

	s.AddMesh(ground, wall1, wall2, wall3, wall4, box, sphere)
	return s
}
