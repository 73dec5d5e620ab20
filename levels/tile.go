package levels

import (
	"github.com/dagbay/level-design/cellsheet"
	"github.com/jakecoffman/cp"
)

// Canvas draws sheet cells. Implementations decide what a Bitmap is backed by.
type Canvas interface {
	// DrawCell draws the 0-based cell of b with its top-left corner at x, y.
	DrawCell(b cellsheet.Bitmap, cell int, x, y float64)
}

// Pointer is the mouse state for one frame, in world coordinates.
type Pointer struct {
	X, Y  float64
	Left  bool
	Right bool
}

// Tile is one grid cell. Its origin never moves after the layer is built.
type Tile struct {
	Ref  cellsheet.Ref
	X, Y float64
	Size float64
}

// Bounds returns the tile rectangle. Containment is inclusive of every edge.
func (t *Tile) Bounds() cp.BB {
	return cp.BB{L: t.X, B: t.Y, R: t.X + t.Size, T: t.Y + t.Size}
}

func (t *Tile) Contains(x, y float64) bool {
	return t.Bounds().ContainsVect(cp.Vector{X: x, Y: y})
}

// CheckInput paints the tile with the selection on a left press and erases it
// on a right press when the pointer is over it. Left wins when both are down.
// It reports whether the tile changed.
func (t *Tile) CheckInput(p Pointer, sheet, selection int) bool {
	if !p.Left && !p.Right {
		return false
	}
	if !t.Contains(p.X, p.Y) {
		return false
	}
	next := cellsheet.Empty
	if p.Left {
		next = cellsheet.Ref{Sheet: sheet, Cell: selection}
	}
	if next == t.Ref {
		return false
	}
	t.Ref = next
	return true
}

// Draw renders the tile's cell shifted by the camera offset. Empty tiles and
// refs that no longer name a sheet draw nothing.
func (t *Tile) Draw(c Canvas, pal *cellsheet.Palette, camX, camY float64) {
	if t.Ref.IsEmpty() {
		return
	}
	sheet := pal.Sheet(t.Ref.Sheet)
	if sheet == nil {
		return
	}
	c.DrawCell(sheet.Bitmap(), t.Ref.Cell-1, t.X-camX, t.Y-camY)
}
