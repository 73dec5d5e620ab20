package levels

import (
	"fmt"
	"math"

	"github.com/dagbay/level-design/cellsheet"
)

// Grid describes the area a layer must cover. All sizes are in pixels.
type Grid struct {
	ViewWidth   int
	ViewHeight  int
	TileSize    int
	ExtraWidth  int
	ExtraHeight int
}

// Dimensions returns the column and row counts needed to cover the extended
// viewport.
func (g Grid) Dimensions() (cols, rows int) {
	cols = int(math.Ceil(float64(g.ViewWidth+g.ExtraWidth) / float64(g.TileSize)))
	rows = int(math.Ceil(float64(g.ViewHeight+g.ExtraHeight) / float64(g.TileSize)))
	return cols, rows
}

func (g Grid) validate() error {
	if g.TileSize <= 0 {
		return fmt.Errorf("levels: tile size must be positive, got %d", g.TileSize)
	}
	if g.ViewWidth < 0 || g.ViewHeight < 0 {
		return fmt.Errorf("levels: invalid viewport %dx%d", g.ViewWidth, g.ViewHeight)
	}
	if g.ExtraWidth < 0 || g.ExtraHeight < 0 {
		return fmt.Errorf("levels: invalid extra size %dx%d", g.ExtraWidth, g.ExtraHeight)
	}
	return nil
}

// Layer is a dense row-major grid of tiles.
type Layer struct {
	cols     int
	rows     int
	tileSize int
	tiles    []Tile
}

// Build creates a layer covering g with every tile set to fill.
func Build(g Grid, fill cellsheet.Ref) (*Layer, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}
	cols, rows := g.Dimensions()
	l := &Layer{
		cols:     cols,
		rows:     rows,
		tileSize: g.TileSize,
		tiles:    make([]Tile, cols*rows),
	}
	size := float64(g.TileSize)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			l.tiles[row*cols+col] = Tile{
				Ref:  fill,
				X:    float64(col) * size,
				Y:    float64(row) * size,
				Size: size,
			}
		}
	}
	return l, nil
}

func (l *Layer) Cols() int     { return l.cols }
func (l *Layer) Rows() int     { return l.rows }
func (l *Layer) TileSize() int { return l.tileSize }

// At returns the tile at row, col or nil when out of range.
func (l *Layer) At(row, col int) *Tile {
	if row < 0 || row >= l.rows || col < 0 || col >= l.cols {
		return nil
	}
	return &l.tiles[row*l.cols+col]
}

// Dispatch hands the pointer to every tile whose inclusive bounds can contain
// it and returns how many tiles changed. A pointer exactly on a seam reaches
// the tiles on both sides.
func (l *Layer) Dispatch(p Pointer, sheet, selection int) int {
	if !p.Left && !p.Right {
		return 0
	}
	size := float64(l.tileSize)
	col := int(math.Floor(p.X / size))
	row := int(math.Floor(p.Y / size))
	changed := 0
	for r := row - 1; r <= row; r++ {
		for c := col - 1; c <= col; c++ {
			t := l.At(r, c)
			if t == nil {
				continue
			}
			if t.CheckInput(p, sheet, selection) {
				changed++
			}
		}
	}
	return changed
}

// Draw renders every tile in row-major order.
func (l *Layer) Draw(c Canvas, pal *cellsheet.Palette, camX, camY float64) {
	for i := range l.tiles {
		l.tiles[i].Draw(c, pal, camX, camY)
	}
}

// Codes flattens the layer into rows of global tile codes.
func (l *Layer) Codes(pal *cellsheet.Palette) [][]int {
	grid := make([][]int, l.rows)
	for row := 0; row < l.rows; row++ {
		line := make([]int, l.cols)
		for col := 0; col < l.cols; col++ {
			line[col] = pal.Code(l.tiles[row*l.cols+col].Ref)
		}
		grid[row] = line
	}
	return grid
}

// Apply replaces the layer contents with grid. The grid must match the layer
// dimensions and every code must resolve through pal; on error the layer is
// left untouched.
func (l *Layer) Apply(grid [][]int, pal *cellsheet.Palette) error {
	if len(grid) != l.rows {
		return fmt.Errorf("levels: grid has %d rows, layer has %d", len(grid), l.rows)
	}
	refs := make([]cellsheet.Ref, 0, len(l.tiles))
	for row, line := range grid {
		if len(line) != l.cols {
			return fmt.Errorf("levels: row %d has %d columns, layer has %d", row+1, len(line), l.cols)
		}
		for col, code := range line {
			ref, err := pal.Resolve(code)
			if err != nil {
				return fmt.Errorf("levels: row %d column %d: %w", row+1, col+1, err)
			}
			refs = append(refs, ref)
		}
	}
	for i := range l.tiles {
		l.tiles[i].Ref = refs[i]
	}
	return nil
}
