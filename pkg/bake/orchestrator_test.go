package bake

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/lightbake/pkg/lightmap"
	"github.com/taigrr/lightbake/pkg/math3d"
	"github.com/taigrr/lightbake/pkg/scene"
)

// recorder is a Presenter that remembers every call in order.
type recorder struct {
	calls    []string
	alerts   []string
	progress []Progress
	status   string
	results  []*Result

	panicOnProgress bool
}

func (r *recorder) ShowLoading(msg string) { r.calls = append(r.calls, "show:"+msg) }
func (r *recorder) HideLoading()           { r.calls = append(r.calls, "hide") }

func (r *recorder) Progress(p Progress) {
	r.calls = append(r.calls, "progress")
	r.progress = append(r.progress, p)
	if r.panicOnProgress {
		panic("presenter exploded")
	}
}

func (r *recorder) Alert(msg string) {
	r.calls = append(r.calls, "alert")
	r.alerts = append(r.alerts, msg)
}

func (r *recorder) ShowResults(status string, results []*Result) {
	r.calls = append(r.calls, "results")
	r.status = status
	r.results = results
}

// loadingBalanced reports whether every show has a matching hide.
func (r *recorder) loadingBalanced() bool {
	depth := 0
	for _, c := range r.calls {
		switch {
		case strings.HasPrefix(c, "show:"):
			depth++
		case c == "hide":
			depth--
		}
	}
	return depth == 0
}

func newTestOrchestrator(t *testing.T, p Presenter) *Orchestrator {
	t.Helper()
	composer, err := lightmap.NewComposer(lightmap.DefaultComposeOptions())
	require.NoError(t, err)
	o := New(lightmap.NewBaker(composer, nil), p, nil)
	o.Now = func() time.Time { return time.UnixMilli(1700000000000) }
	return o
}

func TestBakeRejectsInvalidInput(t *testing.T) {
	room := scene.DefaultRoom()
	tests := []struct {
		name   string
		scene  *scene.Scene
		meshes []*scene.Mesh
	}{
		{"empty mesh list", room, nil},
		{"nil scene", nil, room.Meshes},
		{"nil mesh", room, []*scene.Mesh{room.Meshes[0], nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			o := newTestOrchestrator(t, rec)

			sess, err := o.Bake(context.Background(), tt.scene, tt.meshes, lightmap.QualityLow)
			assert.Nil(t, sess)
			var inErr *InputError
			require.True(t, errors.As(err, &inErr))

			assert.Equal(t, []string{"alert"}, rec.calls)
			assert.Equal(t, []string{AlertInvalidInput}, rec.alerts)
			assert.True(t, rec.loadingBalanced())
			_, ok := o.Result(room.Meshes[0].ID)
			assert.False(t, ok)
		})
	}
}

func TestBakeDefaultRoom(t *testing.T) {
	rec := &recorder{}
	o := newTestOrchestrator(t, rec)
	room := scene.DefaultRoom()

	sess, err := o.Bake(context.Background(), room, room.Meshes, lightmap.QualityLow)
	require.NoError(t, err)

	assert.Equal(t, "Successfully processed 7 objects in the scene.", sess.Status())
	assert.Equal(t, sess.Status(), rec.status)
	require.Len(t, sess.Results(), 7)
	assert.Len(t, rec.progress, 7)
	assert.Equal(t, Progress{Done: 7, Total: 7, Mesh: "sphere"}, rec.progress[6])

	assert.Equal(t, "show:"+LoadingMessage, rec.calls[0])
	assert.Equal(t, []string{"hide", "results"}, rec.calls[len(rec.calls)-2:])
	assert.True(t, rec.loadingBalanced())
	assert.Empty(t, rec.alerts)

	for i, r := range sess.Results() {
		assert.Equal(t, room.Meshes[i].Name, r.Name)
		assert.Equal(t, i, r.Index)
		assert.True(t, r.OK(), r.Name)
		assert.True(t, o.Applied(room.Meshes[i].ID))
		assert.Positive(t, r.Stats.Rasterized, r.Name)
	}
}

func TestBakeDoesNotMutateMeshes(t *testing.T) {
	o := newTestOrchestrator(t, nil)
	room := scene.DefaultRoom()
	before := make([]*scene.Mesh, len(room.Meshes))
	for i, m := range room.Meshes {
		before[i] = m.Clone()
	}

	_, err := o.Bake(context.Background(), room, room.Meshes, lightmap.QualityLow)
	require.NoError(t, err)

	for i, m := range room.Meshes {
		assert.Equal(t, before[i], m)
		assert.Nil(t, m.UVs)
	}
}

func TestBakeMissingNormalsContinues(t *testing.T) {
	rec := &recorder{}
	o := newTestOrchestrator(t, rec)
	room := scene.DefaultRoom()
	broken := room.MeshByName("box")
	broken.Normals = nil

	sess, err := o.Bake(context.Background(), room, room.Meshes, lightmap.QualityLow)
	require.NoError(t, err)
	assert.Empty(t, rec.alerts)

	res, ok := sess.Result(broken.ID)
	require.True(t, ok)
	assert.ErrorIs(t, res.Err, lightmap.ErrMissingGeometry)
	assert.False(t, o.Applied(broken.ID))

	tex, err := sess.Generate(broken.ID)
	require.NoError(t, err)
	assert.True(t, tex.Placeholder)

	ground := room.MeshByName("ground")
	tex, err = sess.Generate(ground.ID)
	require.NoError(t, err)
	assert.False(t, tex.Placeholder)
	assert.Equal(t, 256, tex.Size)
	assert.True(t, o.Applied(ground.ID))
}

func TestBakeAppliesPendingLightUpdates(t *testing.T) {
	o := newTestOrchestrator(t, nil)
	room := scene.DefaultRoom()
	ground := room.MeshByName("ground")

	room.Submit(scene.SetLightEnabled{Light: scene.MainLightName, Enabled: false})
	room.Submit(scene.SetLightEnabled{Light: scene.AmbientLightName, Enabled: false})
	sess, err := o.Bake(context.Background(), room, []*scene.Mesh{ground}, lightmap.QualityLow)
	require.NoError(t, err)

	// With every light off the ground is at the ambient floor everywhere.
	res, _ := sess.Result(ground.ID)
	r, _, _ := res.grid.At(10, 10)
	assert.InDelta(t, lightmap.AmbientFloor*255, r, 1e-9)
}

func TestBakeCancelled(t *testing.T) {
	rec := &recorder{}
	o := newTestOrchestrator(t, rec)
	room := scene.DefaultRoom()

	ctx, cancel := context.WithCancel(context.Background())
	o.Yield = func() {}
	calls := 0
	o.Now = func() time.Time {
		calls++
		if calls == 2 {
			cancel()
		}
		return time.Unix(0, 0)
	}

	sess, err := o.Bake(ctx, room, room.Meshes, lightmap.QualityLow)
	assert.Nil(t, sess)
	var rtErr *RuntimeError
	require.True(t, errors.As(err, &rtErr))
	assert.ErrorIs(t, err, context.Canceled)

	require.Len(t, rec.alerts, 1)
	assert.True(t, strings.HasPrefix(rec.alerts[0], "Error during lightmap baking: "))
	assert.True(t, rec.loadingBalanced())
	assert.NotContains(t, rec.calls, "results")

	// Meshes finished before the cancellation stay recorded.
	assert.True(t, o.Applied(room.Meshes[0].ID))
	assert.False(t, o.Applied(room.Meshes[2].ID))
}

func TestBakeRecoversPanic(t *testing.T) {
	rec := &recorder{panicOnProgress: true}
	o := newTestOrchestrator(t, rec)
	room := scene.DefaultRoom()

	sess, err := o.Bake(context.Background(), room, room.Meshes, lightmap.QualityLow)
	assert.Nil(t, sess)

	var rtErr *RuntimeError
	require.True(t, errors.As(err, &rtErr))
	assert.Equal(t, "ground", rtErr.Mesh)
	assert.Contains(t, err.Error(), "presenter exploded")

	require.Len(t, rec.alerts, 1)
	assert.Equal(t, "Error during lightmap baking: "+err.Error(), rec.alerts[0])
	assert.True(t, rec.loadingBalanced())
	// The indicator is gone before the user sees the alert.
	assert.Equal(t, []string{"hide", "alert"}, rec.calls[len(rec.calls)-2:])
}

func TestCandidates(t *testing.T) {
	room := scene.DefaultRoom()
	room.MeshByName("wall1").Visible = false
	room.AddMesh(scene.Box("axisHelper", 1, 1, 1), scene.Box("helperGrid", 1, 1, 1), scene.NewMesh("empty"))

	var names []string
	for _, m := range Candidates(room) {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"ground", "wall2", "wall3", "wall4", "box", "sphere"}, names)
}

func TestGenerateAll(t *testing.T) {
	rec := &recorder{}
	o := newTestOrchestrator(t, rec)
	room := scene.DefaultRoom()
	room.AddMesh(scene.Box("lightHelper", 0.2, 0.2, 0.2))
	sphere := room.MeshByName("sphere")
	sphere.Normals = sphere.Normals[:3]

	sess, previews, err := o.GenerateAll(context.Background(), room, lightmap.QualityLow)
	require.NoError(t, err)
	require.Len(t, previews, 7)
	assert.Equal(t, "Successfully processed 7 objects in the scene.", sess.Status())

	for _, p := range previews {
		require.NotNil(t, p.Texture)
		assert.Equal(t, p.Result.Name == "sphere", p.Texture.Placeholder, p.Result.Name)
	}
	assert.ErrorIs(t, previews[6].Result.Err, lightmap.ErrIndexOutOfRange)
}

func TestGenerateAllEmptyScene(t *testing.T) {
	rec := &recorder{}
	o := newTestOrchestrator(t, rec)

	_, _, err := o.GenerateAll(context.Background(), scene.New(), lightmap.QualityLow)
	var inErr *InputError
	assert.True(t, errors.As(err, &inErr))
	assert.Equal(t, []string{AlertInvalidInput}, rec.alerts)
}

func TestSessionDownload(t *testing.T) {
	o := newTestOrchestrator(t, nil)
	room := scene.DefaultRoom()
	unnamed := scene.Ground("", 2, 2)
	room.AddMesh(unnamed)

	sess, err := o.Bake(context.Background(), room, room.Meshes, lightmap.QualityLow)
	require.NoError(t, err)

	dir := t.TempDir()
	path, err := sess.Download(room.MeshByName("wall2").ID, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "lightmap-wall2-1700000000000.png"), path)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	path, err = sess.Download(unnamed.ID, dir)
	require.NoError(t, err)
	assert.Equal(t, "lightmap-mesh-7-1700000000000.png", filepath.Base(path))

	_, err = sess.Download(scene.NewMesh("stranger").ID, dir)
	assert.ErrorIs(t, err, ErrUnknownMesh)

	paths, err := sess.DownloadAll(dir)
	require.NoError(t, err)
	assert.Len(t, paths, 8)
}

func TestGenerateCachesTexture(t *testing.T) {
	o := newTestOrchestrator(t, nil)
	room := scene.DefaultRoom()
	box := room.MeshByName("box")

	sess, err := o.Bake(context.Background(), room, []*scene.Mesh{box}, lightmap.QualityMedium)
	require.NoError(t, err)

	a, err := sess.Generate(box.ID)
	require.NoError(t, err)
	b, err := sess.Generate(box.ID)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 512, a.Image.Bounds().Dx())
}

func TestResetForgetsResults(t *testing.T) {
	o := newTestOrchestrator(t, nil)
	room := scene.DefaultRoom()
	m := scene.Ground("ground", 4, 4)
	m.SetPosition(math3d.V3(0, 1, 0))
	room.AddMesh(m)

	_, err := o.Bake(context.Background(), room, []*scene.Mesh{m}, lightmap.QualityLow)
	require.NoError(t, err)
	require.True(t, o.Applied(m.ID))

	o.Reset()
	assert.False(t, o.Applied(m.ID))
}
