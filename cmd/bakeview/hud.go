package main

import (
	"fmt"
	"image/color"
	"time"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/lightbake/pkg/bake"
	"github.com/taigrr/lightbake/pkg/render"
)

var (
	hudBg    = color.RGBA{0, 0, 0, 200}
	hudAlert = color.RGBA{255, 96, 96, 255}
	hudOK    = color.RGBA{128, 255, 128, 255}
)

var helpLines = []string{
	"mouse drag / arrows  orbit",
	"scroll / + -         zoom",
	"r                    reset view",
	"a d w s              move light x / z",
	"pgup pgdown          move light y",
	"[ ]                  dimmer / brighter",
	"l                    toggle light",
	"q                    cycle quality",
	"b                    bake lightmaps",
	"v                    lit / baked view",
	"tab shift+tab        select lightmap",
	"p / P                save one / all",
	"?                    toggle help",
	"esc                  quit",
}

// hud is the text overlay. It also receives bake progress as the
// orchestrator's presenter; both happen on the render goroutine.
type hud struct {
	loading  string
	progress bake.Progress

	status string
	alert  bool

	showHelp bool

	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

func newHUD() *hud {
	return &hud{fpsTime: time.Now()}
}

// updateFPS counts a frame.
func (h *hud) updateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

func (h *hud) setStatus(msg string, alert bool) {
	h.status, h.alert = msg, alert
}

// ShowLoading implements bake.Presenter.
func (h *hud) ShowLoading(msg string) {
	h.loading = msg
	h.progress = bake.Progress{}
}

// HideLoading implements bake.Presenter.
func (h *hud) HideLoading() {
	h.loading = ""
}

// Progress implements bake.Presenter.
func (h *hud) Progress(p bake.Progress) {
	h.progress = p
}

// Alert implements bake.Presenter.
func (h *hud) Alert(msg string) {
	h.setStatus(msg, true)
}

// ShowResults implements bake.Presenter.
func (h *hud) ShowResults(status string, results []*bake.Result) {
	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}
	if failed > 0 {
		status = fmt.Sprintf("%s %d could not be baked.", status, failed)
	}
	h.setStatus(status, false)
}

// bottomLine is the text for the last row.
func (h *hud) bottomLine() (string, color.Color) {
	if h.loading != "" {
		if h.progress.Total == 0 {
			return h.loading, render.ColorYellow
		}
		return fmt.Sprintf("%s %d/%d %s", h.loading, h.progress.Done, h.progress.Total, h.progress.Mesh), render.ColorYellow
	}
	if h.alert {
		return h.status, hudAlert
	}
	return h.status, hudOK
}

// draw writes the overlay over the area.
func (h *hud) draw(scr uv.Screen, area uv.Rectangle, top string) {
	w := area.Dx()
	render.DrawText(scr, area, area.Min.X, area.Min.Y, fmt.Sprintf(" %.0f FPS ", h.fps), hudOK, hudBg)
	render.DrawText(scr, area, max(area.Min.X, area.Min.X+(w-len(top))/2), area.Min.Y, top, render.ColorWhite, hudBg)

	if line, fg := h.bottomLine(); line != "" {
		render.DrawText(scr, area, area.Min.X, area.Max.Y-1, " "+line+" ", fg, hudBg)
	}

	if !h.showHelp {
		render.DrawText(scr, area, max(area.Min.X, area.Max.X-10), area.Max.Y-1, " ? help ", render.ColorGray, hudBg)
		return
	}
	for i, l := range helpLines {
		render.DrawText(scr, area, area.Min.X+1, area.Min.Y+2+i, " "+l+" ", render.ColorWhite, hudBg)
	}
}
