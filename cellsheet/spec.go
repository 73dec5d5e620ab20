package cellsheet

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type PaletteSpec struct {
	CellWidth  int         `yaml:"cell_width"`
	CellHeight int         `yaml:"cell_height"`
	Sheets     []SheetSpec `yaml:"sheets"`
}

// SheetSpec describes one sheet. Sheets without an Offset are assigned one
// automatically; the others keep their hand-picked offset so that saved
// levels using those ranges stay readable.
type SheetSpec struct {
	Name       string `yaml:"name"`
	Image      string `yaml:"image"`
	Offset     *int   `yaml:"offset"`
	Cells      int    `yaml:"cells"`
	CellWidth  int    `yaml:"cell_width"`
	CellHeight int    `yaml:"cell_height"`
}

// ParsePaletteSpec decodes a palette spec from YAML. Per-sheet cell sizes
// default to the palette-wide ones.
func ParsePaletteSpec(data []byte) (*PaletteSpec, error) {
	var spec PaletteSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("cellsheet: unmarshal palette: %w", err)
	}
	for i := range spec.Sheets {
		s := &spec.Sheets[i]
		if s.Name == "" {
			return nil, fmt.Errorf("cellsheet: sheet %d has no name", i)
		}
		if s.CellWidth == 0 {
			s.CellWidth = spec.CellWidth
		}
		if s.CellHeight == 0 {
			s.CellHeight = spec.CellHeight
		}
		if s.CellWidth <= 0 || s.CellHeight <= 0 {
			return nil, fmt.Errorf("cellsheet: sheet %q has invalid cell size %dx%d", s.Name, s.CellWidth, s.CellHeight)
		}
	}
	return &spec, nil
}

// BitmapLoader produces the bitmap for a sheet spec.
type BitmapLoader func(SheetSpec) (Bitmap, error)

// MetricsLoader builds pixel-less bitmaps from the cell counts in the spec.
func MetricsLoader(s SheetSpec) (Bitmap, error) {
	if s.Cells <= 0 {
		return nil, fmt.Errorf("cellsheet: sheet %q needs an explicit cell count", s.Name)
	}
	return Metrics{Cells: s.Cells, Width: s.CellWidth, Height: s.CellHeight}, nil
}

// BuildPalette loads every sheet in declaration order. Auto offsets advance
// by the cell count of each auto-assigned sheet only.
func BuildPalette(spec *PaletteSpec, load BitmapLoader) (*Palette, error) {
	if spec == nil {
		return nil, fmt.Errorf("cellsheet: nil palette spec")
	}
	sheets := make([]*CellSheet, 0, len(spec.Sheets))
	offset := 0
	for _, s := range spec.Sheets {
		bmp, err := load(s)
		if err != nil {
			return nil, fmt.Errorf("cellsheet: load sheet %q: %w", s.Name, err)
		}
		if s.Offset != nil {
			sheets = append(sheets, New(bmp, s.Name, *s.Offset))
			continue
		}
		sheet := New(bmp, s.Name, offset)
		offset += sheet.CellCount()
		sheets = append(sheets, sheet)
	}
	return NewPalette(sheets...)
}
