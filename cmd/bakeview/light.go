package main

import (
	"github.com/taigrr/lightbake/pkg/math3d"
	"github.com/taigrr/lightbake/pkg/scene"
)

// action is one user intent decoded from terminal input.
type action int

const (
	actNone action = iota
	actQuit
	actOrbitLeft
	actOrbitRight
	actOrbitUp
	actOrbitDown
	actDrag
	actZoomIn
	actZoomOut
	actResetView
	actLightLeft
	actLightRight
	actLightForward
	actLightBack
	actLightUp
	actLightDown
	actBrighter
	actDimmer
	actToggleLight
	actCycleQuality
	actBake
	actToggleView
	actNextResult
	actPrevResult
	actSave
	actSaveAll
	actToggleHelp
)

// Light control ranges.
const (
	maxIntensity = 2.0
	maxLightXZ   = 10.0
	maxLightY    = 10.0
)

// lightControl is the input side's copy of the point light. Changes are
// turned into scene commands; the render loop applies them.
type lightControl struct {
	name      string
	pos       math3d.Vec3
	intensity float64
	enabled   bool

	moveStep      float64
	intensityStep float64
}

// newLightControl binds to the main light, or the first point light when
// the scene has no light by that name.
func newLightControl(s *scene.Scene, moveStep, intensityStep float64) (*lightControl, bool) {
	p, ok := s.Light(scene.MainLightName).(*scene.PointLight)
	if !ok {
		for _, l := range s.Lights {
			if p, ok = l.(*scene.PointLight); ok {
				break
			}
		}
	}
	if !ok {
		return nil, false
	}
	return &lightControl{
		name:          p.Name,
		pos:           p.Position,
		intensity:     p.Intensity,
		enabled:       p.Enabled,
		moveStep:      moveStep,
		intensityStep: intensityStep,
	}, true
}

// handle updates the control for a light action and returns the command
// to submit.
func (c *lightControl) handle(a action) (scene.Command, bool) {
	d := math3d.Zero3()
	switch a {
	case actLightLeft:
		d.X = -c.moveStep
	case actLightRight:
		d.X = c.moveStep
	case actLightForward:
		d.Z = -c.moveStep
	case actLightBack:
		d.Z = c.moveStep
	case actLightUp:
		d.Y = c.moveStep
	case actLightDown:
		d.Y = -c.moveStep
	case actBrighter:
		c.intensity = min(maxIntensity, c.intensity+c.intensityStep)
	case actDimmer:
		c.intensity = max(0, c.intensity-c.intensityStep)
	case actToggleLight:
		c.enabled = !c.enabled
		return scene.SetLightEnabled{Light: c.name, Enabled: c.enabled}, true
	default:
		return nil, false
	}

	p := c.pos.Add(d)
	c.pos = math3d.V3(
		max(-maxLightXZ, min(maxLightXZ, p.X)),
		max(0, min(maxLightY, p.Y)),
		max(-maxLightXZ, min(maxLightXZ, p.Z)),
	)
	return scene.LightUpdate{Light: c.name, Intensity: c.intensity, Position: c.pos}, true
}
