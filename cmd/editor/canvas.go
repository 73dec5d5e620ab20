package main

import (
	"github.com/dagbay/level-design/cellsheet"
	"github.com/hajimehoshi/ebiten/v2"
)

// screenCanvas draws sheet cells onto the frame, skipping cells that fall
// outside it.
type screenCanvas struct {
	dst *ebiten.Image
}

func (c *screenCanvas) DrawCell(b cellsheet.Bitmap, cell int, x, y float64) {
	img, ok := b.(*cellsheet.Image)
	if !ok {
		return
	}
	w, h := img.CellSize()
	bounds := c.dst.Bounds()
	if x+float64(w) < float64(bounds.Min.X) || y+float64(h) < float64(bounds.Min.Y) ||
		x > float64(bounds.Max.X) || y > float64(bounds.Max.Y) {
		return
	}
	sub := img.Cell(cell)
	if sub == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(x, y)
	c.dst.DrawImage(sub, op)
}
