package bake

import (
	"errors"
	"fmt"
)

// ErrUnknownMesh is returned for a mesh that is not part of a session.
var ErrUnknownMesh = errors.New("mesh was not baked in this session")

// InputError rejects a bake request before any state is touched.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string {
	return "invalid bake request: " + e.Reason
}

// RuntimeError wraps an unexpected failure or a recovered panic raised
// while baking or composing a mesh.
type RuntimeError struct {
	Mesh string // empty when the failure is not tied to a mesh
	Err  error
}

func (e *RuntimeError) Error() string {
	if e.Mesh == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("mesh %q: %v", e.Mesh, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// recovered converts a recover() value into an error.
func recovered(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}
