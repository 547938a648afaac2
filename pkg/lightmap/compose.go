package lightmap

import (
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/blur"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Upsampling filters accepted by ComposeOptions.Filter.
const (
	FilterBilinear = "bilinear"
	FilterNearest  = "nearest"
)

// Fallback label for meshes without a name.
const UnnamedMesh = "Unnamed Mesh"

// ComposeOptions controls how a grid is turned into a texture.
type ComposeOptions struct {
	Filter     string  // FilterBilinear or FilterNearest
	BlurRadius float64 // 0 disables the blur pass
	GridLines  int     // overlay lines per axis, 0 disables
	GridAlpha  float64
	LabelAlpha float64
	LabelSize  float64 // pixels
	ErrorSize  float64 // pixels
	Background color.RGBA
}

// DefaultComposeOptions returns the stock texture look: bilinear upsample,
// a 4px blur, 16 faint grid lines and a dim name label.
func DefaultComposeOptions() ComposeOptions {
	return ComposeOptions{
		Filter:     FilterBilinear,
		BlurRadius: 4,
		GridLines:  16,
		GridAlpha:  0.05,
		LabelAlpha: 0.2,
		LabelSize:  16,
		ErrorSize:  20,
		Background: color.RGBA{0x11, 0x11, 0x11, 0xff},
	}
}

// Composer renders grids into finished textures. It caches font faces and
// is not safe for concurrent use.
type Composer struct {
	opts      ComposeOptions
	scaler    draw.Scaler
	labelFace font.Face
	errorFace font.Face
}

// NewComposer parses the label font and prepares the upsampler.
func NewComposer(opts ComposeOptions) (*Composer, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse label font: %w", err)
	}
	newFace := func(size float64) (font.Face, error) {
		return opentype.NewFace(f, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
	}

	c := &Composer{opts: opts, scaler: draw.BiLinear}
	if opts.Filter == FilterNearest {
		c.scaler = draw.NearestNeighbor
	}
	if c.labelFace, err = newFace(opts.LabelSize); err != nil {
		return nil, fmt.Errorf("label face: %w", err)
	}
	if c.errorFace, err = newFace(opts.ErrorSize); err != nil {
		return nil, fmt.Errorf("error face: %w", err)
	}
	return c, nil
}

// Options returns the options the composer was built with.
func (c *Composer) Options() ComposeOptions {
	return c.opts
}

// Compose upsamples the grid to size×size pixels, blurs it once, overlays
// the alignment grid and labels it with name.
func (c *Composer) Compose(g *Grid, size int, name string) *Texture {
	dst := c.canvas(size)
	src := g.Image()
	c.scaler.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	if c.opts.BlurRadius > 0 {
		// The blur kernel drops alpha slightly; draw it over the opaque
		// upsample so every pixel stays at 255.
		draw.Draw(dst, dst.Bounds(), blur.Gaussian(dst, c.opts.BlurRadius), image.Point{}, draw.Over)
	}

	c.drawGridLines(dst)

	if name == "" {
		name = UnnamedMesh
	}
	white := color.NRGBA{255, 255, 255, alpha(c.opts.LabelAlpha)}
	drawCentered(dst, c.labelFace, name, white, size/2, size-10)

	return &Texture{Name: name, Size: size, Image: dst}
}

// ErrorTexture returns the placeholder drawn for meshes that could not be
// baked: the background with a red "Error" label in the center.
func (c *Composer) ErrorTexture(size int) *Texture {
	dst := c.canvas(size)
	drawCentered(dst, c.errorFace, "Error", color.NRGBA{255, 0, 0, 255}, size/2, size/2)
	return &Texture{Name: "Error", Size: size, Image: dst, Placeholder: true}
}

func (c *Composer) canvas(size int) *image.RGBA {
	size = max(size, 1)
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(c.opts.Background), image.Point{}, draw.Src)
	return dst
}

// drawGridLines draws evenly spaced one pixel lines along both axes.
func (c *Composer) drawGridLines(dst *image.RGBA) {
	n := c.opts.GridLines
	if n <= 0 {
		return
	}
	size := dst.Bounds().Dx()
	line := image.NewUniform(color.NRGBA{255, 255, 255, alpha(c.opts.GridAlpha)})
	for i := range n {
		p := i * size / n
		draw.Draw(dst, image.Rect(0, p, size, p+1), line, image.Point{}, draw.Over)
		draw.Draw(dst, image.Rect(p, 0, p+1, size), line, image.Point{}, draw.Over)
	}
}

// drawCentered draws s horizontally centered on x with its baseline at y.
func drawCentered(dst *image.RGBA, face font.Face, s string, col color.Color, x, y int) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
	}
	width := d.MeasureString(s)
	d.Dot = fixed.Point26_6{X: fixed.I(x) - width/2, Y: fixed.I(y)}
	d.DrawString(s)
}

func alpha(a float64) uint8 {
	return uint8(max(0, min(1, a))*255 + 0.5)
}
