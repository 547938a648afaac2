// Package config handles lightbake configuration loading and management.
package config

import (
	"fmt"
	"image/color"
	"time"

	"github.com/taigrr/lightbake/pkg/lightmap"
	"github.com/taigrr/lightbake/pkg/math3d"
	"github.com/taigrr/lightbake/pkg/scene"
)

// Config holds all settings shared by the lightbake commands.
type Config struct {
	Bake    BakeConfig    `yaml:"bake"`
	Compose ComposeConfig `yaml:"compose"`
	Scene   SceneConfig   `yaml:"scene"`
	View    ViewConfig    `yaml:"view"`
	Logging LoggingConfig `yaml:"logging"`
}

// BakeConfig holds bake request settings.
type BakeConfig struct {
	Quality string        `yaml:"quality"` // low, medium or high
	OutDir  string        `yaml:"out_dir"`
	Timeout time.Duration `yaml:"timeout"` // 0 means no limit
}

// ComposeConfig mirrors lightmap.ComposeOptions.
type ComposeConfig struct {
	Filter     string  `yaml:"filter"`
	BlurRadius float64 `yaml:"blur_radius"`
	GridLines  int     `yaml:"grid_lines"`
	GridAlpha  float64 `yaml:"grid_alpha"`
	LabelAlpha float64 `yaml:"label_alpha"`
	LabelSize  float64 `yaml:"label_size"`
	ErrorSize  float64 `yaml:"error_size"`
}

// SceneConfig selects the scene to bake and adjusts its lights.
type SceneConfig struct {
	// Path is a .gltf or .glb file. Empty means the built-in room.
	Path   string          `yaml:"path"`
	Lights []LightOverride `yaml:"lights,omitempty"`
}

// LightOverride changes one named light after the scene is loaded. Unset
// fields keep the scene's value. Intensity and position only apply to
// point lights.
type LightOverride struct {
	Name      string      `yaml:"name"`
	Intensity *float64    `yaml:"intensity,omitempty"`
	Position  *[3]float64 `yaml:"position,omitempty"`
	Enabled   *bool       `yaml:"enabled,omitempty"`
}

// ViewConfig holds terminal editor settings.
type ViewConfig struct {
	FPS        int    `yaml:"fps"`
	Background [3]int `yaml:"background"`
	// Step sizes for the light controls.
	MoveStep      float64 `yaml:"move_step"`
	IntensityStep float64 `yaml:"intensity_step"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with the stock bake settings.
func Default() *Config {
	opts := lightmap.DefaultComposeOptions()
	return &Config{
		Bake: BakeConfig{
			Quality: string(lightmap.QualityMedium),
			OutDir:  "lightmaps",
		},
		Compose: ComposeConfig{
			Filter:     opts.Filter,
			BlurRadius: opts.BlurRadius,
			GridLines:  opts.GridLines,
			GridAlpha:  opts.GridAlpha,
			LabelAlpha: opts.LabelAlpha,
			LabelSize:  opts.LabelSize,
			ErrorSize:  opts.ErrorSize,
		},
		View: ViewConfig{
			FPS:           30,
			Background:    [3]int{30, 30, 40},
			MoveStep:      0.5,
			IntensityStep: 0.1,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Quality returns the parsed bake quality tier.
func (c *Config) Quality() lightmap.Quality {
	return lightmap.ParseQuality(c.Bake.Quality)
}

// ComposeOptions converts the compose section for lightmap.NewComposer.
func (c *Config) ComposeOptions() lightmap.ComposeOptions {
	opts := lightmap.DefaultComposeOptions()
	opts.Filter = c.Compose.Filter
	opts.BlurRadius = c.Compose.BlurRadius
	opts.GridLines = c.Compose.GridLines
	opts.GridAlpha = c.Compose.GridAlpha
	opts.LabelAlpha = c.Compose.LabelAlpha
	opts.LabelSize = c.Compose.LabelSize
	opts.ErrorSize = c.Compose.ErrorSize
	return opts
}

// BackgroundColor returns the editor clear color.
func (c *Config) BackgroundColor() color.RGBA {
	ch := func(v int) uint8 { return uint8(max(0, min(255, v))) }
	b := c.View.Background
	return color.RGBA{ch(b[0]), ch(b[1]), ch(b[2]), 255}
}

// Validate rejects settings the commands cannot run with.
func (c *Config) Validate() error {
	switch c.Compose.Filter {
	case lightmap.FilterBilinear, lightmap.FilterNearest:
	default:
		return fmt.Errorf("compose.filter: unknown filter %q", c.Compose.Filter)
	}
	if c.Compose.BlurRadius < 0 {
		return fmt.Errorf("compose.blur_radius: must not be negative")
	}
	if c.View.FPS <= 0 {
		return fmt.Errorf("view.fps: must be positive")
	}
	for i, o := range c.Scene.Lights {
		if o.Name == "" {
			return fmt.Errorf("scene.lights[%d]: name is required", i)
		}
	}
	return nil
}

// Commands turns the light overrides into scene commands, reading unset
// point light fields from s.
func (c *SceneConfig) Commands(s *scene.Scene) []scene.Command {
	var cmds []scene.Command
	for _, o := range c.Lights {
		if o.Enabled != nil {
			cmds = append(cmds, scene.SetLightEnabled{Light: o.Name, Enabled: *o.Enabled})
		}
		if o.Intensity == nil && o.Position == nil {
			continue
		}
		u := scene.LightUpdate{Light: o.Name}
		if p, ok := s.Light(o.Name).(*scene.PointLight); ok {
			u.Intensity, u.Position = p.Intensity, p.Position
		}
		if o.Intensity != nil {
			u.Intensity = *o.Intensity
		}
		if o.Position != nil {
			u.Position = math3d.V3(o.Position[0], o.Position[1], o.Position[2])
		}
		cmds = append(cmds, u)
	}
	return cmds
}

// LoadScene builds the configured scene: the sample room, or the glTF file
// named by scene.path. Light overrides are queued on the scene and take
// effect when the next bake applies pending commands.
func (c *Config) LoadScene() (*scene.Scene, error) {
	s := scene.DefaultRoom()
	if c.Scene.Path != "" {
		var err error
		if s, err = scene.LoadGLTF(c.Scene.Path); err != nil {
			return nil, err
		}
	}
	for _, cmd := range c.Scene.Commands(s) {
		s.Submit(cmd)
	}
	return s, nil
}
