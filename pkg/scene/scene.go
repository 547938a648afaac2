package scene

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/taigrr/lightbake/pkg/math3d"
)

// commandQueueSize bounds the number of light updates buffered between
// two render ticks. Submit drops the oldest pending command when full.
const commandQueueSize = 64

// Command mutates scene state. Commands are queued with Submit and applied
// in submission order by ApplyPending.
type Command interface {
	Apply(s *Scene) error
}

// LightUpdate sets the intensity and position of a point light.
type LightUpdate struct {
	Light     string // Name of the target light
	Intensity float64
	Position  math3d.Vec3
}

// Apply implements Command.
func (u LightUpdate) Apply(s *Scene) error {
	l := s.Light(u.Light)
	if l == nil {
		return fmt.Errorf("light %q not found", u.Light)
	}
	p, ok := l.(*PointLight)
	if !ok {
		return fmt.Errorf("light %q is a %s light, not a point light", u.Light, KindOf(l))
	}
	p.Intensity = u.Intensity
	p.Position = u.Position
	return nil
}

// SetLightEnabled toggles a light of any kind.
type SetLightEnabled struct {
	Light   string
	Enabled bool
}

// Apply implements Command.
func (c SetLightEnabled) Apply(s *Scene) error {
	l := s.Light(c.Light)
	if l == nil {
		return fmt.Errorf("light %q not found", c.Light)
	}
	l.Base().Enabled = c.Enabled
	return nil
}

// Scene owns the meshes and lights. It is not safe for concurrent use
// except for Submit, which may be called from any goroutine.
type Scene struct {
	Meshes []*Mesh
	Lights []Light

	commands chan Command
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{commands: make(chan Command, commandQueueSize)}
}

// AddMesh appends meshes to the scene.
func (s *Scene) AddMesh(meshes ...*Mesh) {
	s.Meshes = append(s.Meshes, meshes...)
}

// AddLight appends lights to the scene.
func (s *Scene) AddLight(lights ...Light) {
	s.Lights = append(s.Lights, lights...)
}

// Light returns the first light with the given name, or nil. Nil entries
// in Lights are skipped.
func (s *Scene) Light(name string) Light {
	for _, l := range s.Lights {
		if l != nil && l.Base().Name == name {
			return l
		}
	}
	return nil
}

// Mesh returns the mesh with the given identity, or nil.
func (s *Scene) Mesh(id uuid.UUID) *Mesh {
	for _, m := range s.Meshes {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// MeshByName returns the first mesh with the given name, or nil.
func (s *Scene) MeshByName(name string) *Mesh {
	for _, m := range s.Meshes {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Submit queues a command for the next ApplyPending call.
func (s *Scene) Submit(cmd Command) {
	if s.commands == nil {
		panic("scene: Submit on a Scene not created with New")
	}
	for {
		select {
		case s.commands <- cmd:
			return
		default:
		}
		// Queue full: the oldest update is superseded by newer ones.
		select {
		case <-s.commands:
		default:
		}
	}
}

// ApplyPending applies every queued command in order and returns how many
// were applied. Commands that fail are skipped; their errors are returned
// joined together with the count.
func (s *Scene) ApplyPending() (int, error) {
	var (
		applied int
		errs    []error
	)
	for {
		select {
		case cmd := <-s.commands:
			if err := cmd.Apply(s); err != nil {
				errs = append(errs, err)
				continue
			}
			applied++
		default:
			return applied, errors.Join(errs...)
		}
	}
}
