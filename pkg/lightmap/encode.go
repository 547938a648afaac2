package lightmap

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"
	"time"
)

// Texture is a finished, immutable lightmap image.
type Texture struct {
	Name  string
	Size  int
	Image *image.RGBA
	// Placeholder is set on the "Error" image drawn for meshes that could
	// not be baked.
	Placeholder bool
}

// PNG encodes the texture.
func (t *Texture) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, t.Image); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURI returns the PNG as a data:image/png;base64 URI.
func (t *Texture) DataURI() (string, error) {
	data, err := t.PNG()
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), nil
}

// WriteFile writes the PNG to path.
func (t *Texture) WriteFile(path string) error {
	data, err := t.PNG()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// FileName returns the download name for a mesh's lightmap:
// lightmap-<name>-<unix millis>.png, with mesh-<index> standing in for an
// empty name. Path separators in the name are replaced.
func FileName(meshName string, index int, t time.Time) string {
	if meshName == "" {
		meshName = fmt.Sprintf("mesh-%d", index)
	}
	meshName = strings.NewReplacer("/", "_", `\`, "_").Replace(meshName)
	return fmt.Sprintf("lightmap-%s-%d.png", meshName, t.UnixMilli())
}
