// Package assets holds the default palette and sheet images. Files in the
// on-disk assets directory take precedence over the embedded copies.
package assets

import (
	"bytes"
	"embed"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
)

//go:embed palette.yaml sheets/*.png scripts/*.tengo
var assetsFS embed.FS

// Library resolves asset names against Dir first, then the embedded files.
type Library struct {
	Dir string
}

// Load returns the bytes of an asset by assets-relative path.
func (l Library) Load(name string) ([]byte, error) {
	clean := cleanAssetPath(name)
	if l.Dir != "" {
		if data, err := os.ReadFile(filepath.Join(l.Dir, filepath.FromSlash(clean))); err == nil {
			return data, nil
		}
	}
	data, err := assetsFS.ReadFile(clean)
	if err != nil {
		return nil, fmt.Errorf("assets: load %s: %w", name, err)
	}
	return data, nil
}

// LoadImage decodes an image asset.
func (l Library) LoadImage(name string) (*ebiten.Image, error) {
	b, err := l.Load(name)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("assets: decode %s: %w", name, err)
	}
	return ebiten.NewImageFromImage(img), nil
}

func cleanAssetPath(path string) string {
	if path == "" {
		return ""
	}
	s := filepath.ToSlash(path)
	if after, ok := strings.CutPrefix(s, "assets/"); ok {
		return after
	}
	return s
}
