// bakeview - terminal lightmap editor
// Shows the scene lit in real time, bakes lightmaps for every mesh and
// previews the baked result in place.
//
// Controls:
//
//	Mouse drag / arrows - Orbit the camera
//	Scroll / +/-        - Zoom in/out
//	R                   - Reset view
//	A/D W/S             - Move the light along x / z
//	PgUp/PgDn           - Move the light up / down
//	[ ]                 - Dim / brighten the light
//	L                   - Toggle the light
//	Q                   - Cycle bake quality
//	B                   - Bake lightmaps
//	V                   - Toggle lit / baked view
//	Tab / Shift+Tab     - Select lightmap
//	P / Shift+P         - Save selected / all lightmaps
//	?                   - Toggle help
//	Esc                 - Quit
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"go.uber.org/zap"

	"github.com/taigrr/lightbake/internal/config"
	"github.com/taigrr/lightbake/internal/logger"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "bakeview - terminal lightmap editor\n\n")
		fmt.Fprintf(os.Stderr, "Usage: bakeview [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// The screen belongs to the UI, so logs only go to a file.
	opts := logger.Options{Level: cfg.Logging.Level}
	if cfg.Logging.LogFile != "" {
		opts.File = logger.DefaultFileConfig(cfg.Logging.LogFile)
	}
	if err := logger.InitWithOptions(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Error("bakeview failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// decode maps a terminal event to an editor event.
func decode(ev uv.Event, drag *dragState) (event, bool) {
	switch ev := ev.(type) {
	case uv.KeyPressEvent:
		switch {
		case ev.MatchString("escape", "ctrl+c"):
			return event{act: actQuit}, true
		case ev.MatchString("left"):
			return event{act: actOrbitLeft}, true
		case ev.MatchString("right"):
			return event{act: actOrbitRight}, true
		case ev.MatchString("up"):
			return event{act: actOrbitUp}, true
		case ev.MatchString("down"):
			return event{act: actOrbitDown}, true
		case ev.MatchString("+", "="):
			return event{act: actZoomIn}, true
		case ev.MatchString("-", "_"):
			return event{act: actZoomOut}, true
		case ev.MatchString("r"):
			return event{act: actResetView}, true
		case ev.MatchString("a"):
			return event{act: actLightLeft}, true
		case ev.MatchString("d"):
			return event{act: actLightRight}, true
		case ev.MatchString("w"):
			return event{act: actLightForward}, true
		case ev.MatchString("s"):
			return event{act: actLightBack}, true
		case ev.MatchString("pgup"):
			return event{act: actLightUp}, true
		case ev.MatchString("pgdown"):
			return event{act: actLightDown}, true
		case ev.MatchString("]"):
			return event{act: actBrighter}, true
		case ev.MatchString("["):
			return event{act: actDimmer}, true
		case ev.MatchString("l"):
			return event{act: actToggleLight}, true
		case ev.MatchString("q"):
			return event{act: actCycleQuality}, true
		case ev.MatchString("b"):
			return event{act: actBake}, true
		case ev.MatchString("v"):
			return event{act: actToggleView}, true
		case ev.MatchString("shift+tab"):
			return event{act: actPrevResult}, true
		case ev.MatchString("tab"):
			return event{act: actNextResult}, true
		case ev.MatchString("P", "shift+p"):
			return event{act: actSaveAll}, true
		case ev.MatchString("p"):
			return event{act: actSave}, true
		case ev.MatchString("?"), ev.MatchString("shift+/"):
			return event{act: actToggleHelp}, true
		}

	case uv.MouseClickEvent:
		drag.down = true
		drag.x, drag.y = ev.X, ev.Y

	case uv.MouseReleaseEvent:
		drag.down = false

	case uv.MouseMotionEvent:
		if drag.down {
			dx, dy := ev.X-drag.x, ev.Y-drag.y
			drag.x, drag.y = ev.X, ev.Y
			return event{act: actDrag, dx: dx, dy: dy}, true
		}

	case uv.MouseWheelEvent:
		switch ev.Button {
		case uv.MouseWheelUp:
			return event{act: actZoomIn}, true
		case uv.MouseWheelDown:
			return event{act: actZoomOut}, true
		}
	}
	return event{}, false
}

type dragState struct {
	down bool
	x, y int
}

func run(cfg *config.Config) error {
	s, err := cfg.LoadScene()
	if err != nil {
		return err
	}

	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	ed, err := newEditor(cfg, s, logger.Named("bake"), width, height)
	if err != nil {
		return err
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	// Enable mouse mode
	fmt.Fprint(os.Stdout, "\x1b[?1003h") // Enable any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // Enable SGR extended mouse mode

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events := make(chan event, 64)
	resizes := make(chan uv.WindowSizeEvent, 1)
	go func() {
		var drag dragState
		for ev := range term.Events() {
			if ws, ok := ev.(uv.WindowSizeEvent); ok {
				select {
				case <-resizes:
				default:
				}
				resizes <- ws
				continue
			}
			if e, ok := decode(ev, &drag); ok {
				select {
				case events <- e:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	var displayErr error
	ed.paint = func() {
		ed.drawFrame()
		area := uv.Rect(0, 0, width, height)
		ed.fb.Draw(term, area)
		ed.hud.draw(term, area, ed.title())
		if err := term.Display(); err != nil && displayErr == nil {
			displayErr = err
		}
	}

	logger.Info("editor started", zap.Int("meshes", len(s.Meshes)), zap.Stringer("quality", ed.quality))

	targetDuration := time.Second / time.Duration(cfg.View.FPS)
	for {
		now := time.Now()

	drain:
		for {
			select {
			case <-ctx.Done():
				return nil
			case ws := <-resizes:
				width, height = ws.Width, ws.Height
				term.Erase()
				term.Resize(width, height)
				ed.resize(width, height)
			case e := <-events:
				if !ed.apply(ctx, e) {
					return nil
				}
			default:
				break drain
			}
		}

		ed.step()
		ed.paint()
		if displayErr != nil {
			return fmt.Errorf("display: %w", displayErr)
		}

		// Frame timing
		elapsed := time.Since(now)
		if elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}
