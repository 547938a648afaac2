package lightmap

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingGeometry means a mesh lacks positions, normals or indices.
	ErrMissingGeometry = errors.New("missing required vertex data")
	// ErrIndexOutOfRange means an index does not address a vertex.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrDegenerateTriangle marks a triangle with zero area in grid space.
	ErrDegenerateTriangle = errors.New("degenerate triangle")
	// ErrDegenerateNormal marks a triangle whose vertex normals sum to zero.
	ErrDegenerateNormal = errors.New("degenerate normal")
)

// GeometryError reports a mesh that cannot be baked. The bake of that mesh
// is skipped and its texture is the error placeholder.
type GeometryError struct {
	Mesh string
	Err  error
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("mesh %q: %v", e.Mesh, e.Err)
}

func (e *GeometryError) Unwrap() error {
	return e.Err
}
