package main

import (
	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/lightbake/pkg/render"
)

// orbitAxis tracks one camera angle and its angular velocity.
type orbitAxis struct {
	Position  float64
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64 // spring velocity used to animate Velocity toward 0
}

func newOrbitAxis(fps int, pos float64) orbitAxis {
	return orbitAxis{
		Position: pos,
		// Frequency 4.0 = moderate speed, damping 1.0 = critically damped (no overshoot)
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// update applies velocity to position and decays velocity toward 0.
func (a *orbitAxis) update() {
	a.Position += a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
}

// orbit animates the camera: the angles coast after an impulse and the
// distance eases toward the zoom target.
type orbit struct {
	alpha, beta orbitAxis

	radius       float64
	radiusVel    float64
	targetRadius float64
	zoomSpring   harmonica.Spring

	fps  int
	home [3]float64 // alpha, beta, radius restored by reset
}

func newOrbit(fps int, cam *render.Camera) *orbit {
	o := &orbit{
		fps:        fps,
		zoomSpring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
		home:       [3]float64{cam.Alpha, cam.Beta, cam.Radius},
	}
	o.reset()
	return o
}

// impulse adds angular velocity in radians per frame.
func (o *orbit) impulse(dAlpha, dBeta float64) {
	o.alpha.Velocity += dAlpha
	o.beta.Velocity += dBeta
}

// zoom moves the target distance, clamped to the camera limits.
func (o *orbit) zoom(d float64) {
	o.targetRadius = max(render.MinRadius, min(render.MaxRadius, o.targetRadius+d))
}

func (o *orbit) reset() {
	o.alpha = newOrbitAxis(o.fps, o.home[0])
	o.beta = newOrbitAxis(o.fps, o.home[1])
	o.radius, o.radiusVel, o.targetRadius = o.home[2], 0, o.home[2]
}

// update advances one frame and moves the camera.
func (o *orbit) update(cam *render.Camera) {
	o.alpha.update()
	o.beta.update()
	o.radius, o.radiusVel = o.zoomSpring.Update(o.radius, o.radiusVel, o.targetRadius)

	cam.SetOrbit(o.alpha.Position, o.beta.Position, o.radius)
	// The camera clamps beta; stop coasting into the pole.
	if cam.Beta != o.beta.Position {
		o.beta.Position, o.beta.Velocity, o.beta.velAccel = cam.Beta, 0, 0
	}
}
