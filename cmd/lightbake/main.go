// lightbake - headless lightmap baker
// Bakes a lightmap for every visible mesh of a scene and writes one PNG per
// mesh named lightmap-<mesh>-<unix millis>.png.
//
// The scene is the built-in sample room unless -scene (or scene.path in the
// config file) names a glTF/GLB file. Light overrides from the config are
// applied before baking. With -watch the scene and config file are
// re-baked whenever they change.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/taigrr/lightbake/internal/config"
	"github.com/taigrr/lightbake/internal/logger"
	"github.com/taigrr/lightbake/pkg/bake"
	"github.com/taigrr/lightbake/pkg/lightmap"
)

var (
	flagWatch      = flag.Bool("watch", false, "Re-bake when the scene or config file changes")
	flagInitConfig = flag.String("init-config", "", "Write the effective config to this path and exit")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "lightbake - headless lightmap baker\n\n")
		fmt.Fprintf(os.Stderr, "Usage: lightbake [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *flagInitConfig != "" {
		if err := cfg.SaveTo(*flagInitConfig); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(*flagInitConfig)
		return
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()
	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	orch, err := newOrchestrator(cfg)
	if err != nil {
		return err
	}
	if err := bakeOnce(ctx, cfg, orch); err != nil {
		if !*flagWatch {
			return err
		}
		logger.Error("bake failed", zap.Error(err))
	}
	if !*flagWatch {
		return nil
	}
	return watch(ctx, cfg)
}

// newOrchestrator wires the baker and composer configured by cfg.
func newOrchestrator(cfg *config.Config) (*bake.Orchestrator, error) {
	composer, err := lightmap.NewComposer(cfg.ComposeOptions())
	if err != nil {
		return nil, fmt.Errorf("create composer: %w", err)
	}
	log := logger.Named("bake")
	return bake.New(lightmap.NewBaker(composer, log), bake.LogPresenter{Log: log}, log), nil
}

// bakeOnce bakes every candidate mesh and writes the textures to the
// output directory. Written paths go to stdout followed by the status line.
func bakeOnce(ctx context.Context, cfg *config.Config, orch *bake.Orchestrator) error {
	s, err := cfg.LoadScene()
	if err != nil {
		return err
	}
	if cfg.Bake.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Bake.Timeout)
		defer cancel()
	}

	sess, _, err := orch.GenerateAll(ctx, s, cfg.Quality())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Bake.OutDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	paths, err := sess.DownloadAll(cfg.Bake.OutDir)
	for _, p := range paths {
		fmt.Println(p)
	}
	if err != nil {
		return err
	}
	fmt.Println(sess.Status())
	return nil
}
