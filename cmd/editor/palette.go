package main

import (
	"fmt"

	"github.com/dagbay/level-design/assets"
	"github.com/dagbay/level-design/cellsheet"
)

// loadPalette builds the palette described by the named spec, loading every
// sheet image through lib.
func loadPalette(lib assets.Library, name string) (*cellsheet.Palette, []*cellsheet.Image, error) {
	data, err := lib.Load(name)
	if err != nil {
		return nil, nil, err
	}
	spec, err := cellsheet.ParsePaletteSpec(data)
	if err != nil {
		return nil, nil, fmt.Errorf("palette %s: %w", name, err)
	}

	var images []*cellsheet.Image
	pal, err := cellsheet.BuildPalette(spec, func(s cellsheet.SheetSpec) (cellsheet.Bitmap, error) {
		src, err := lib.LoadImage(s.Image)
		if err != nil {
			return nil, err
		}
		img, err := cellsheet.NewImage(src, s.CellWidth, s.CellHeight, s.Cells)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
		return img, nil
	})
	if err != nil {
		for _, img := range images {
			img.Close()
		}
		return nil, nil, fmt.Errorf("palette %s: %w", name, err)
	}
	return pal, images, nil
}
