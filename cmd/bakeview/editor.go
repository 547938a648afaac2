package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taigrr/lightbake/internal/config"
	"github.com/taigrr/lightbake/pkg/bake"
	"github.com/taigrr/lightbake/pkg/lightmap"
	"github.com/taigrr/lightbake/pkg/render"
	"github.com/taigrr/lightbake/pkg/scene"
)

// Input tuning.
const (
	orbitImpulse = 0.04 // radians per frame per key press
	dragScale    = 0.01 // radians per frame per cell dragged
	zoomStep     = 2.0
)

type viewMode int

const (
	viewLit viewMode = iota
	viewBaked
)

func (m viewMode) String() string {
	if m == viewBaked {
		return "baked"
	}
	return "lit"
}

var qualities = []lightmap.Quality{lightmap.QualityLow, lightmap.QualityMedium, lightmap.QualityHigh}

// event is one decoded input. dx and dy carry drag distances in cells.
type event struct {
	act    action
	dx, dy int
}

// editor owns the scene, the camera and the last bake. Every method runs
// on the render goroutine.
type editor struct {
	cfg   *config.Config
	scene *scene.Scene
	orch  *bake.Orchestrator
	log   *zap.Logger
	hud   *hud

	cam   *render.Camera
	orbit *orbit
	light *lightControl // nil when the scene has no point light
	fb    *render.Framebuffer
	rast  *render.Rasterizer
	bg    color.RGBA

	quality  lightmap.Quality
	mode     viewMode
	sess     *bake.Session
	previews []bake.Preview
	textures map[uuid.UUID]*render.Texture
	selected int

	// paint shows the current frame. The orchestrator calls it between
	// meshes so progress stays visible while a bake blocks the loop.
	paint func()
}

func newEditor(cfg *config.Config, s *scene.Scene, log *zap.Logger, width, height int) (*editor, error) {
	composer, err := lightmap.NewComposer(cfg.ComposeOptions())
	if err != nil {
		return nil, fmt.Errorf("create composer: %w", err)
	}
	e := &editor{
		cfg:      cfg,
		scene:    s,
		log:      log,
		hud:      newHUD(),
		cam:      render.NewCamera(),
		bg:       cfg.BackgroundColor(),
		quality:  cfg.Quality(),
		textures: make(map[uuid.UUID]*render.Texture),
	}
	e.orch = bake.New(lightmap.NewBaker(composer, log), e.hud, log)
	e.orch.Yield = func() {
		if e.paint != nil {
			e.paint()
		}
	}

	if _, err := s.ApplyPending(); err != nil {
		log.Warn("light overrides rejected", zap.Error(err))
	}
	if lc, ok := newLightControl(s, cfg.View.MoveStep, cfg.View.IntensityStep); ok {
		e.light = lc
	} else {
		log.Info("scene has no point light; light controls disabled")
	}
	e.orbit = newOrbit(cfg.View.FPS, e.cam)
	e.resize(width, height)
	return e, nil
}

// resize matches the framebuffer to a terminal of width x height cells.
func (e *editor) resize(width, height int) {
	e.fb = render.NewFramebuffer(width, height*2)
	e.rast = render.NewRasterizer(e.cam, e.fb)
	if height > 0 {
		e.cam.SetAspectRatio(float64(width) / float64(height*2))
	}
}

// apply handles one input event. It returns false when the editor should
// quit.
func (e *editor) apply(ctx context.Context, ev event) bool {
	switch ev.act {
	case actQuit:
		return false
	case actOrbitLeft:
		e.orbit.impulse(-orbitImpulse, 0)
	case actOrbitRight:
		e.orbit.impulse(orbitImpulse, 0)
	case actOrbitUp:
		e.orbit.impulse(0, -orbitImpulse)
	case actOrbitDown:
		e.orbit.impulse(0, orbitImpulse)
	case actDrag:
		e.orbit.impulse(-float64(ev.dx)*dragScale, -float64(ev.dy)*dragScale)
	case actZoomIn:
		e.orbit.zoom(-zoomStep)
	case actZoomOut:
		e.orbit.zoom(zoomStep)
	case actResetView:
		e.orbit.reset()
	case actLightLeft, actLightRight, actLightForward, actLightBack,
		actLightUp, actLightDown, actBrighter, actDimmer, actToggleLight:
		e.moveLight(ev.act)
	case actCycleQuality:
		e.cycleQuality()
	case actBake:
		e.bake(ctx)
	case actToggleView:
		e.toggleView()
	case actNextResult:
		e.selectResult(1)
	case actPrevResult:
		e.selectResult(-1)
	case actSave:
		e.save()
	case actSaveAll:
		e.saveAll()
	case actToggleHelp:
		e.hud.showHelp = !e.hud.showHelp
	}
	return true
}

func (e *editor) moveLight(a action) {
	if e.light == nil {
		e.hud.setStatus("No point light in the scene.", true)
		return
	}
	cmd, ok := e.light.handle(a)
	if !ok {
		return
	}
	e.scene.Submit(cmd)
	if e.sess != nil {
		e.hud.setStatus("Lighting changed. Press b to re-bake.", false)
	}
}

func (e *editor) cycleQuality() {
	i := 0
	for j, q := range qualities {
		if q == e.quality {
			i = j
		}
	}
	e.quality = qualities[(i+1)%len(qualities)]
	e.hud.setStatus(fmt.Sprintf("Quality: %s (%dpx)", e.quality, e.quality.TextureSize()), false)
}

// bake runs a full bake and switches to the baked view on success.
// Failures are already reported through the HUD.
func (e *editor) bake(ctx context.Context) {
	sess, previews, err := e.orch.GenerateAll(ctx, e.scene, e.quality)
	if err != nil {
		return
	}
	e.sess, e.previews, e.selected = sess, previews, 0
	clear(e.textures)
	for _, p := range previews {
		if p.Texture != nil {
			e.textures[p.Result.MeshID] = render.TextureFromLightmap(p.Texture)
		}
	}
	e.mode = viewBaked
}

func (e *editor) toggleView() {
	if e.sess == nil {
		e.hud.setStatus("Nothing baked yet. Press b to bake.", true)
		return
	}
	if e.mode == viewBaked {
		e.mode = viewLit
	} else {
		e.mode = viewBaked
	}
}

func (e *editor) selectResult(d int) {
	n := len(e.previews)
	if n == 0 {
		return
	}
	e.selected = ((e.selected+d)%n + n) % n
	r := e.previews[e.selected].Result
	e.hud.setStatus(fmt.Sprintf("Lightmap %d/%d: %s", e.selected+1, n, r.Name), false)
}

func (e *editor) outDir() (string, bool) {
	if e.sess == nil {
		e.hud.setStatus("Nothing baked yet. Press b to bake.", true)
		return "", false
	}
	dir := e.cfg.Bake.OutDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		e.log.Error("create output directory", zap.Error(err))
		e.hud.setStatus("Error: "+err.Error(), true)
		return "", false
	}
	return dir, true
}

// save writes the selected lightmap.
func (e *editor) save() {
	dir, ok := e.outDir()
	if !ok || len(e.previews) == 0 {
		return
	}
	path, err := e.sess.Download(e.previews[e.selected].Result.MeshID, dir)
	if path == "" {
		e.hud.setStatus("Error: "+err.Error(), true)
		return
	}
	e.hud.setStatus("Saved "+path, false)
}

// saveAll writes every lightmap of the last bake.
func (e *editor) saveAll() {
	dir, ok := e.outDir()
	if !ok {
		return
	}
	paths, err := e.sess.DownloadAll(dir)
	if err != nil {
		e.hud.setStatus(fmt.Sprintf("Saved %d lightmaps; error: %v", len(paths), err), true)
		return
	}
	e.hud.setStatus(fmt.Sprintf("Saved %d lightmaps to %s", len(paths), dir), false)
}

// step advances one frame of animation and applies queued light changes.
func (e *editor) step() {
	if n, err := e.scene.ApplyPending(); err != nil {
		e.log.Warn("light updates rejected", zap.Int("applied", n), zap.Error(err))
	}
	e.orbit.update(e.cam)
	e.hud.updateFPS()
}

// drawFrame renders the scene into the framebuffer.
func (e *editor) drawFrame() {
	e.fb.Clear(e.bg)
	e.rast.BeginFrame()

	for _, m := range e.scene.Meshes {
		if e.mode == viewBaked {
			if tex, ok := e.textures[m.ID]; ok {
				e.rast.DrawMeshBaked(m, tex)
				continue
			}
		}
		e.rast.DrawMeshLit(m, e.scene.Lights)
	}

	if e.light != nil {
		if p, ok := e.scene.Light(e.light.name).(*scene.PointLight); ok && p.Enabled {
			e.rast.DrawMarker(p.Position, 2, render.ColorYellow)
		}
	}

	if e.mode == viewBaked && len(e.previews) > 0 {
		e.drawPreview(e.previews[e.selected])
	}
}

// drawPreview outlines the selected mesh and insets its lightmap in the
// top right corner.
func (e *editor) drawPreview(p bake.Preview) {
	if m := e.scene.Mesh(p.Result.MeshID); m != nil {
		e.rast.DrawMeshWireframe(m, render.ColorCyan)
	}
	if p.Texture == nil {
		return
	}
	size := min(e.fb.Width, e.fb.Height) / 3
	if size < 8 {
		return
	}
	dst := image.Rect(e.fb.Width-size-2, 3, e.fb.Width-2, 3+size)
	e.fb.Blit(p.Texture.Image, dst)
	e.fb.DrawRectOutline(dst.Min.X-1, dst.Min.Y-1, size+2, size+2, render.ColorWhite)
}

// title is the HUD's top line.
func (e *editor) title() string {
	s := fmt.Sprintf(" %s | %s | view: %s ", e.sceneName(), e.quality, e.mode)
	if e.light != nil {
		state := "on"
		if !e.light.enabled {
			state = "off"
		}
		s += fmt.Sprintf("| light %s (%.1f, %.1f, %.1f) x%.1f ", state,
			e.light.pos.X, e.light.pos.Y, e.light.pos.Z, e.light.intensity)
	}
	return s
}

func (e *editor) sceneName() string {
	if e.cfg.Scene.Path == "" {
		return "sample room"
	}
	return e.cfg.Scene.Path
}
