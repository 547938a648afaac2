package main

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taigrr/lightbake/internal/config"
	"github.com/taigrr/lightbake/pkg/bake"
	"github.com/taigrr/lightbake/pkg/lightmap"
	"github.com/taigrr/lightbake/pkg/math3d"
	"github.com/taigrr/lightbake/pkg/render"
	"github.com/taigrr/lightbake/pkg/scene"
)

func newTestEditor(t *testing.T) *editor {
	t.Helper()
	cfg := config.Default()
	cfg.Bake.Quality = "low"
	cfg.Bake.OutDir = filepath.Join(t.TempDir(), "out")
	e, err := newEditor(cfg, scene.DefaultRoom(), zap.NewNop(), 80, 24)
	require.NoError(t, err)
	return e
}

func TestOrbitCoastsAndSettles(t *testing.T) {
	cam := render.NewCamera()
	o := newOrbit(30, cam)

	o.impulse(0.1, 0)
	for range 120 {
		o.update(cam)
	}
	assert.Greater(t, cam.Alpha, math.Pi/4+0.1, "should coast past the first step")
	assert.InDelta(t, 0, o.alpha.Velocity, 1e-3)

	settled := cam.Alpha
	o.update(cam)
	assert.InDelta(t, settled, cam.Alpha, 1e-3)
}

func TestOrbitZoom(t *testing.T) {
	cam := render.NewCamera()
	o := newOrbit(30, cam)

	o.zoom(-10)
	for range 120 {
		o.update(cam)
	}
	assert.InDelta(t, 20, cam.Radius, 0.05)

	o.zoom(-1000)
	assert.Equal(t, render.MinRadius, o.targetRadius)
	o.zoom(1000)
	assert.Equal(t, render.MaxRadius, o.targetRadius)

	o.reset()
	o.update(cam)
	assert.InDelta(t, 30, cam.Radius, 1e-9)
	assert.InDelta(t, math.Pi/4, cam.Alpha, 1e-9)
}

func TestOrbitStopsAtPole(t *testing.T) {
	cam := render.NewCamera()
	o := newOrbit(30, cam)

	o.impulse(0, -5)
	o.update(cam)
	assert.Zero(t, o.beta.Velocity)
	assert.Equal(t, cam.Beta, o.beta.Position)
}

func TestLightControl(t *testing.T) {
	lc, ok := newLightControl(scene.DefaultRoom(), 0.5, 0.1)
	require.True(t, ok)
	assert.Equal(t, scene.MainLightName, lc.name)
	assert.Equal(t, math3d.V3(0, 5, 0), lc.pos)

	cmd, ok := lc.handle(actLightRight)
	require.True(t, ok)
	assert.Equal(t, scene.LightUpdate{Light: "light", Intensity: 1, Position: math3d.V3(0.5, 5, 0)}, cmd)

	for range 30 {
		lc.handle(actBrighter)
		lc.handle(actLightDown)
		lc.handle(actLightForward)
	}
	assert.Equal(t, maxIntensity, lc.intensity)
	assert.Equal(t, math3d.V3(0.5, 0, -10), lc.pos)

	for range 30 {
		lc.handle(actDimmer)
	}
	assert.Zero(t, lc.intensity)

	cmd, ok = lc.handle(actToggleLight)
	require.True(t, ok)
	assert.Equal(t, scene.SetLightEnabled{Light: "light", Enabled: false}, cmd)

	_, ok = lc.handle(actBake)
	assert.False(t, ok)
}

func TestLightControlFallsBackToFirstPointLight(t *testing.T) {
	s := scene.New()
	s.AddLight(
		scene.NewHemisphericLight("sky", math3d.Up(), 1),
		scene.NewPointLight("lamp", math3d.V3(1, 2, 3), 0.5),
	)
	lc, ok := newLightControl(s, 0.5, 0.1)
	require.True(t, ok)
	assert.Equal(t, "lamp", lc.name)

	_, ok = newLightControl(scene.New(), 0.5, 0.1)
	assert.False(t, ok)
}

func TestEditorLightEditsReachScene(t *testing.T) {
	e := newTestEditor(t)
	ctx := context.Background()

	assert.True(t, e.apply(ctx, event{act: actLightUp}))
	assert.True(t, e.apply(ctx, event{act: actBrighter}))

	// Queued until the next frame.
	p := e.scene.Light(scene.MainLightName).(*scene.PointLight)
	assert.Equal(t, 5.0, p.Position.Y)

	e.step()
	assert.Equal(t, 5.5, p.Position.Y)
	assert.InDelta(t, 1.1, p.Intensity, 1e-9)

	e.apply(ctx, event{act: actToggleLight})
	e.step()
	assert.False(t, p.Enabled)
}

func TestEditorQuit(t *testing.T) {
	e := newTestEditor(t)
	assert.False(t, e.apply(context.Background(), event{act: actQuit}))
}

func TestEditorCycleQuality(t *testing.T) {
	e := newTestEditor(t)
	want := []lightmap.Quality{lightmap.QualityMedium, lightmap.QualityHigh, lightmap.QualityLow}
	for _, q := range want {
		e.apply(context.Background(), event{act: actCycleQuality})
		assert.Equal(t, q, e.quality)
	}
	assert.Contains(t, e.hud.status, "256px")
}

func TestEditorNeedsBakeFirst(t *testing.T) {
	e := newTestEditor(t)
	ctx := context.Background()

	e.apply(ctx, event{act: actToggleView})
	assert.Equal(t, viewLit, e.mode)
	assert.True(t, e.hud.alert)

	e.apply(ctx, event{act: actSave})
	_, err := os.Stat(e.cfg.Bake.OutDir)
	assert.True(t, os.IsNotExist(err))
}

func TestEditorBake(t *testing.T) {
	e := newTestEditor(t)
	paints := 0
	e.paint = func() { paints++ }

	e.apply(context.Background(), event{act: actBake})

	require.NotNil(t, e.sess)
	assert.Len(t, e.textures, 7)
	assert.Len(t, e.previews, 7)
	assert.Equal(t, viewBaked, e.mode)
	assert.Equal(t, bake.StatusMessage(7), e.hud.status)
	assert.False(t, e.hud.alert)
	assert.Empty(t, e.hud.loading)
	assert.Equal(t, bake.Progress{Done: 7, Total: 7, Mesh: "sphere"}, e.hud.progress)
	assert.Greater(t, paints, 7)

	e.apply(context.Background(), event{act: actToggleView})
	assert.Equal(t, viewLit, e.mode)
}

func TestEditorBakeCancelled(t *testing.T) {
	e := newTestEditor(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e.apply(ctx, event{act: actBake})
	assert.Nil(t, e.sess)
	assert.Equal(t, viewLit, e.mode)
	assert.True(t, e.hud.alert)
	assert.Empty(t, e.hud.loading)
}

func TestEditorSelectAndSave(t *testing.T) {
	e := newTestEditor(t)
	ctx := context.Background()
	e.apply(ctx, event{act: actBake})

	e.apply(ctx, event{act: actPrevResult})
	assert.Equal(t, 6, e.selected)
	e.apply(ctx, event{act: actNextResult})
	e.apply(ctx, event{act: actNextResult})
	assert.Equal(t, 1, e.selected)

	e.apply(ctx, event{act: actSave})
	assert.False(t, e.hud.alert, e.hud.status)
	entries, err := os.ReadDir(e.cfg.Bake.OutDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "wall1")

	// Same millisecond names may collide with the first save.
	e.apply(ctx, event{act: actSaveAll})
	assert.False(t, e.hud.alert, e.hud.status)
	entries, err = os.ReadDir(e.cfg.Bake.OutDir)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(entries), 7)
}

func TestEditorDrawFrame(t *testing.T) {
	e := newTestEditor(t)
	e.step()
	e.drawFrame()
	assert.Positive(t, e.rast.Stats.MeshesDrawn)

	lit := e.fb.ToImage()

	e.apply(context.Background(), event{act: actBake})
	e.drawFrame()
	assert.Positive(t, e.rast.Stats.MeshesDrawn)

	// The preview inset is framed in white.
	size := min(e.fb.Width, e.fb.Height) / 3
	assert.Equal(t, render.ColorWhite, e.fb.GetPixel(e.fb.Width-size-3, 2))
	assert.NotEqual(t, lit.Pix, e.fb.ToImage().Pix)
}

func TestEditorResize(t *testing.T) {
	e := newTestEditor(t)
	e.resize(120, 40)
	assert.Equal(t, 120, e.fb.Width)
	assert.Equal(t, 80, e.fb.Height)
	assert.Equal(t, 120, e.rast.Width())
	assert.InDelta(t, 1.5, e.cam.AspectRatio, 1e-9)
}

func TestHUDBottomLine(t *testing.T) {
	h := newHUD()
	h.ShowLoading(bake.LoadingMessage)
	line, _ := h.bottomLine()
	assert.Equal(t, bake.LoadingMessage, line)

	h.Progress(bake.Progress{Done: 2, Total: 7, Mesh: "wall1"})
	line, _ = h.bottomLine()
	assert.Equal(t, "Baking lightmap... 2/7 wall1", line)

	h.HideLoading()
	h.ShowResults("done.", []*bake.Result{{Name: "a"}, {Name: "b", Err: lightmap.ErrMissingGeometry}})
	line, fg := h.bottomLine()
	assert.Equal(t, "done. 1 could not be baked.", line)
	assert.Equal(t, hudOK, fg)

	h.Alert("boom")
	line, fg = h.bottomLine()
	assert.Equal(t, "boom", line)
	assert.Equal(t, hudAlert, fg)
}
