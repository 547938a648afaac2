// Package bake sequences lightmap bakes across the meshes of a scene and
// keeps the per-mesh results for preview and download.
package bake

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taigrr/lightbake/pkg/lightmap"
	"github.com/taigrr/lightbake/pkg/scene"
)

// Orchestrator runs bakes one mesh at a time on the calling goroutine.
// Lookups of past results may be made from any goroutine.
type Orchestrator struct {
	baker     *lightmap.Baker
	presenter Presenter
	log       *zap.Logger

	// Now stamps results and download names. Yield is called after the
	// loading indicator is shown and between meshes so a host sharing the
	// goroutine can repaint.
	Now   func() time.Time
	Yield func()

	mu      sync.RWMutex
	results map[uuid.UUID]*Result

	composeMu sync.Mutex
}

// New creates an orchestrator. A nil presenter or logger is replaced by a
// no-op.
func New(baker *lightmap.Baker, p Presenter, log *zap.Logger) *Orchestrator {
	if p == nil {
		p = NopPresenter{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		baker:     baker,
		presenter: p,
		log:       log,
		Now:       time.Now,
		Yield:     runtime.Gosched,
		results:   make(map[uuid.UUID]*Result),
	}
}

func (o *Orchestrator) now() time.Time {
	return o.Now()
}

// Bake bakes meshes against the scene's lights at the given quality.
//
// An empty mesh list, a nil mesh or a nil scene is rejected with an
// *InputError before anything else happens. Pending light updates on the
// scene are applied first. A mesh with unusable geometry does not stop the
// batch; its Result carries the error. Cancellation is honored between
// meshes. Panics are recovered into a *RuntimeError. The loading indicator
// is hidden on every path once shown.
func (o *Orchestrator) Bake(ctx context.Context, s *scene.Scene, meshes []*scene.Mesh, q lightmap.Quality) (sess *Session, err error) {
	if err := validate(s, meshes); err != nil {
		o.log.Error("invalid bake request", zap.Error(err))
		o.presenter.Alert(AlertInvalidInput)
		return nil, err
	}

	o.log.Info("starting lightmap bake",
		zap.Int("meshes", len(meshes)),
		zap.Stringer("quality", q),
		zap.Int("texture", q.TextureSize()),
	)

	hide := sync.OnceFunc(o.presenter.HideLoading)
	o.presenter.ShowLoading(LoadingMessage)
	defer hide()

	var current string
	defer func() {
		if r := recover(); r != nil {
			sess, err = nil, o.fail(hide, &RuntimeError{Mesh: current, Err: recovered(r)})
		}
	}()

	o.Yield()

	if n, err := s.ApplyPending(); err != nil {
		o.log.Warn("light updates rejected", zap.Int("applied", n), zap.Error(err))
	}

	sess = newSession(o, q, len(meshes))
	for i, m := range meshes {
		if err := ctx.Err(); err != nil {
			return nil, o.fail(hide, &RuntimeError{Err: err})
		}
		current = m.Name

		res, err := o.bakeOne(i, m, s.Lights, q)
		if err != nil {
			return nil, o.fail(hide, &RuntimeError{Mesh: m.Name, Err: err})
		}
		sess.add(res)
		o.record(res)

		o.presenter.Progress(Progress{Done: i + 1, Total: len(meshes), Mesh: m.Name})
		o.Yield()
	}

	sess.status = StatusMessage(len(meshes))
	o.log.Info("lightmap bake complete", zap.Int("meshes", len(meshes)))
	hide()
	o.presenter.ShowResults(sess.status, sess.Results())
	return sess, nil
}

func validate(s *scene.Scene, meshes []*scene.Mesh) error {
	switch {
	case s == nil:
		return &InputError{Reason: "no scene"}
	case len(meshes) == 0:
		return &InputError{Reason: "no meshes"}
	}
	for i, m := range meshes {
		if m == nil {
			return &InputError{Reason: fmt.Sprintf("nil mesh at index %d", i)}
		}
	}
	return nil
}

// bakeOne bakes a single mesh into a Result. Geometry errors are recorded
// on the result; anything else is returned.
func (o *Orchestrator) bakeOne(i int, m *scene.Mesh, lights []scene.Light, q lightmap.Quality) (*Result, error) {
	res := &Result{
		MeshID:  m.ID,
		Name:    m.Name,
		Index:   i,
		Quality: q,
	}
	grid, stats, err := o.baker.BakeGrid(m, lights, q.GridSize())
	var geomErr *lightmap.GeometryError
	switch {
	case errors.As(err, &geomErr):
		o.log.Warn("mesh skipped", zap.String("mesh", m.Name), zap.Error(err))
		res.Err = err
	case err != nil:
		return nil, err
	}
	res.grid = grid
	res.Stats = stats
	res.BakedAt = o.now()
	return res, nil
}

// fail tears down the loading indicator, then logs and alerts err.
func (o *Orchestrator) fail(hide func(), err *RuntimeError) error {
	hide()
	o.log.Error("lightmap bake failed", zap.String("mesh", err.Mesh), zap.Error(err.Err))
	o.presenter.Alert(alertBakeFailed + err.Error())
	return err
}

func (o *Orchestrator) record(r *Result) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.results[r.MeshID] = r
}

// Result returns the most recent bake result for a mesh.
func (o *Orchestrator) Result(meshID uuid.UUID) (*Result, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	r, ok := o.results[meshID]
	return r, ok
}

// Applied reports whether a mesh has been baked successfully.
func (o *Orchestrator) Applied(meshID uuid.UUID) bool {
	r, ok := o.Result(meshID)
	return ok && r.OK()
}

// Reset forgets every recorded result.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	clear(o.results)
}

// texture composes (or returns the cached) texture for a result.
func (o *Orchestrator) texture(r *Result) (tex *lightmap.Texture, err error) {
	o.composeMu.Lock()
	defer o.composeMu.Unlock()

	if r.texture != nil {
		return r.texture, nil
	}
	composer := o.baker.Composer()
	size := r.Quality.TextureSize()

	defer func() {
		if p := recover(); p != nil {
			err = &RuntimeError{Mesh: r.Name, Err: recovered(p)}
			o.log.Error("lightmap generation failed", zap.String("mesh", r.Name), zap.Error(err))
			tex = composer.ErrorTexture(size)
		}
	}()

	if r.Err != nil || r.grid == nil {
		r.texture = composer.ErrorTexture(size)
	} else {
		r.texture = composer.Compose(r.grid, size, r.Name)
	}
	return r.texture, nil
}

// Candidates returns the scene meshes eligible for lightmap export:
// visible, not editor helpers, and with at least one index.
func Candidates(s *scene.Scene) []*scene.Mesh {
	var out []*scene.Mesh
	for _, m := range s.Meshes {
		if m.Visible && !m.IsHelper() && len(m.Indices) > 0 {
			out = append(out, m)
		}
	}
	return out
}

// Preview pairs a result with its finished texture.
type Preview struct {
	Result  *Result
	Texture *lightmap.Texture
}

// GenerateAll bakes every export candidate of the scene and composes its
// texture. Meshes that fail anywhere along the way get the error
// placeholder instead of aborting the batch.
func (o *Orchestrator) GenerateAll(ctx context.Context, s *scene.Scene, q lightmap.Quality) (*Session, []Preview, error) {
	var meshes []*scene.Mesh
	if s != nil {
		meshes = Candidates(s)
	}
	sess, err := o.Bake(ctx, s, meshes, q)
	if err != nil {
		return nil, nil, err
	}
	previews := make([]Preview, 0, len(sess.results))
	for _, r := range sess.results {
		tex, err := o.texture(r)
		if err != nil {
			o.presenter.Alert("Error: " + err.Error())
		}
		previews = append(previews, Preview{Result: r, Texture: tex})
	}
	return sess, previews, nil
}
