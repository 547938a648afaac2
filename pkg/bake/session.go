package bake

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taigrr/lightbake/pkg/lightmap"
)

// Result is the bake outcome for one mesh. It is the side-table entry the
// orchestrator keeps instead of marking the mesh itself.
type Result struct {
	MeshID  uuid.UUID
	Name    string
	Index   int // position in the bake request
	Quality lightmap.Quality
	Stats   lightmap.Stats
	BakedAt time.Time
	// Err is a *lightmap.GeometryError when the mesh could not be baked.
	Err error

	grid    *lightmap.Grid
	texture *lightmap.Texture
}

// OK reports whether the mesh was baked.
func (r *Result) OK() bool {
	return r.Err == nil
}

// Session holds the results of one Bake call in bake order.
type Session struct {
	Quality lightmap.Quality

	orch    *Orchestrator
	status  string
	results []*Result
	byID    map[uuid.UUID]*Result
}

func newSession(o *Orchestrator, q lightmap.Quality, n int) *Session {
	return &Session{
		Quality: q,
		orch:    o,
		results: make([]*Result, 0, n),
		byID:    make(map[uuid.UUID]*Result, n),
	}
}

func (s *Session) add(r *Result) {
	s.results = append(s.results, r)
	s.byID[r.MeshID] = r
}

// Results returns the per-mesh results in bake order.
func (s *Session) Results() []*Result {
	return s.results
}

// Status returns the summary line of the bake.
func (s *Session) Status() string {
	return s.status
}

// Result looks up the result for a mesh.
func (s *Session) Result(meshID uuid.UUID) (*Result, bool) {
	r, ok := s.byID[meshID]
	return r, ok
}

// Generate returns the finished texture for a mesh, composing it on first
// use. Meshes that failed to bake, or whose composition fails, get the
// error placeholder; the latter also returns a *RuntimeError.
func (s *Session) Generate(meshID uuid.UUID) (*lightmap.Texture, error) {
	r, ok := s.byID[meshID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMesh, meshID)
	}
	return s.orch.texture(r)
}

// Download writes the mesh's texture into dir and returns the file path.
func (s *Session) Download(meshID uuid.UUID, dir string) (string, error) {
	tex, err := s.Generate(meshID)
	if tex == nil {
		return "", err
	}
	r := s.byID[meshID]
	path := filepath.Join(dir, lightmap.FileName(r.Name, r.Index, s.orch.now()))
	if err := tex.WriteFile(path); err != nil {
		return "", err
	}
	s.orch.log.Info("lightmap written", zap.String("mesh", r.Name), zap.String("path", path))
	return path, nil
}

// DownloadAll writes every texture of the session into dir. Per-mesh
// failures are written as placeholders and do not stop the batch.
func (s *Session) DownloadAll(dir string) ([]string, error) {
	paths := make([]string, 0, len(s.results))
	for _, r := range s.results {
		p, err := s.Download(r.MeshID, dir)
		if p == "" {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}
