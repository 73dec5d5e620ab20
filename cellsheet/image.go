package cellsheet

import (
	"fmt"
	"image"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/hajimehoshi/ebiten/v2"
)

// Image is an ebiten-backed Bitmap. Cells are laid out left to right, top to
// bottom. Sub-images are cached per cell so the per-frame draw pass does not
// rebuild them.
type Image struct {
	img   *ebiten.Image
	cellW int
	cellH int
	cols  int
	count int
	cache *ristretto.Cache[int, *ebiten.Image]
}

// NewImage splits img into cellW x cellH cells. A count of 0 uses every
// whole cell in the image.
func NewImage(img *ebiten.Image, cellW, cellH, count int) (*Image, error) {
	if img == nil {
		return nil, fmt.Errorf("cellsheet: nil image")
	}
	if cellW <= 0 || cellH <= 0 {
		return nil, fmt.Errorf("cellsheet: invalid cell size %dx%d", cellW, cellH)
	}
	b := img.Bounds()
	cols := b.Dx() / cellW
	rows := b.Dy() / cellH
	if cols == 0 || rows == 0 {
		return nil, fmt.Errorf("cellsheet: image %dx%d smaller than one %dx%d cell", b.Dx(), b.Dy(), cellW, cellH)
	}
	if count <= 0 || count > cols*rows {
		count = cols * rows
	}

	cache, err := ristretto.NewCache(&ristretto.Config[int, *ebiten.Image]{
		NumCounters: int64(count) * 10,
		MaxCost:     int64(count),
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("cellsheet: create cell cache: %w", err)
	}

	return &Image{
		img:   img,
		cellW: cellW,
		cellH: cellH,
		cols:  cols,
		count: count,
		cache: cache,
	}, nil
}

func (i *Image) CellCount() int       { return i.count }
func (i *Image) CellSize() (int, int) { return i.cellW, i.cellH }

// Cell returns the sub-image for a 0-based cell index, or nil when the index
// is out of range.
func (i *Image) Cell(idx int) *ebiten.Image {
	if idx < 0 || idx >= i.count {
		return nil
	}
	if sub, ok := i.cache.Get(idx); ok {
		return sub
	}
	x := (idx % i.cols) * i.cellW
	y := (idx / i.cols) * i.cellH
	sub := i.img.SubImage(image.Rect(x, y, x+i.cellW, y+i.cellH)).(*ebiten.Image)
	i.cache.Set(idx, sub, 1)
	return sub
}

// Close releases the cell cache.
func (i *Image) Close() {
	if i.cache != nil {
		i.cache.Close()
	}
}
