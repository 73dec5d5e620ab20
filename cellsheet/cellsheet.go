package cellsheet

// Bitmap is an image atlas partitioned into equally sized cells.
type Bitmap interface {
	CellCount() int
	CellSize() (w, h int)
}

// Metrics is a Bitmap without pixels. It is used where only the cell layout
// of a sheet matters, such as headless palettes.
type Metrics struct {
	Cells  int
	Width  int
	Height int
}

func (m Metrics) CellCount() int       { return m.Cells }
func (m Metrics) CellSize() (int, int) { return m.Width, m.Height }

// CellSheet wraps one named bitmap and the offset that maps its 1-based cell
// selections into the global tile-code space.
type CellSheet struct {
	bitmap Bitmap
	name   string
	offset int
}

// New creates a CellSheet. The offset is taken verbatim.
func New(bitmap Bitmap, name string, offset int) *CellSheet {
	return &CellSheet{bitmap: bitmap, name: name, offset: offset}
}

func (c *CellSheet) Name() string   { return c.name }
func (c *CellSheet) Offset() int    { return c.offset }
func (c *CellSheet) Bitmap() Bitmap { return c.bitmap }

// CellCount returns the number of cells reported by the bitmap.
func (c *CellSheet) CellCount() int {
	if c.bitmap == nil {
		return 0
	}
	return c.bitmap.CellCount()
}

// Code returns the global tile code for a 1-based cell selection.
func (c *CellSheet) Code(cell int) int {
	return c.offset + cell
}

// Contains reports whether code falls inside this sheet's code range.
func (c *CellSheet) Contains(code int) bool {
	return code > c.offset && code <= c.offset+c.CellCount()
}
