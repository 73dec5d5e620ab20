package cellsheet

import (
	"errors"
	"fmt"
)

// ErrUnknownCode is returned when a tile code does not belong to any sheet.
var ErrUnknownCode = errors.New("cellsheet: unknown tile code")

// Ref identifies a painted cell: the palette index of a sheet and a 1-based
// cell selection within it. The zero Ref is an empty tile.
type Ref struct {
	Sheet int
	Cell  int
}

// Empty is the erased tile.
var Empty = Ref{}

func (r Ref) IsEmpty() bool { return r.Cell == 0 }

// Palette is the ordered set of sheets available to a session.
type Palette struct {
	sheets []*CellSheet
	byName map[string]int
}

// NewPalette validates sheets and returns a palette over them. Names must be
// unique, every sheet needs at least one cell and no two code ranges may
// overlap.
func NewPalette(sheets ...*CellSheet) (*Palette, error) {
	if len(sheets) == 0 {
		return nil, errors.New("cellsheet: palette has no sheets")
	}
	p := &Palette{byName: make(map[string]int, len(sheets))}
	for i, s := range sheets {
		if s == nil {
			return nil, fmt.Errorf("cellsheet: sheet %d is nil", i)
		}
		if _, dup := p.byName[s.Name()]; dup {
			return nil, fmt.Errorf("cellsheet: duplicate sheet name %q", s.Name())
		}
		if s.CellCount() < 1 {
			return nil, fmt.Errorf("cellsheet: sheet %q has no cells", s.Name())
		}
		if s.Offset() < 0 {
			return nil, fmt.Errorf("cellsheet: sheet %q has negative offset %d", s.Name(), s.Offset())
		}
		for _, prev := range p.sheets {
			if overlaps(prev, s) {
				return nil, fmt.Errorf("cellsheet: sheet %q codes %d-%d overlap sheet %q codes %d-%d",
					s.Name(), s.Offset()+1, s.Offset()+s.CellCount(),
					prev.Name(), prev.Offset()+1, prev.Offset()+prev.CellCount())
			}
		}
		p.byName[s.Name()] = i
		p.sheets = append(p.sheets, s)
	}
	return p, nil
}

func overlaps(a, b *CellSheet) bool {
	aLo, aHi := a.Offset()+1, a.Offset()+a.CellCount()
	bLo, bHi := b.Offset()+1, b.Offset()+b.CellCount()
	return aLo <= bHi && bLo <= aHi
}

func (p *Palette) Len() int { return len(p.sheets) }

// Sheet returns the sheet at index i, or nil when i is out of range.
func (p *Palette) Sheet(i int) *CellSheet {
	if i < 0 || i >= len(p.sheets) {
		return nil
	}
	return p.sheets[i]
}

// Index returns the palette index of the named sheet.
func (p *Palette) Index(name string) (int, bool) {
	i, ok := p.byName[name]
	return i, ok
}

// Code flattens a ref into its global tile code. Empty refs and refs that do
// not name a sheet flatten to 0.
func (p *Palette) Code(r Ref) int {
	if r.IsEmpty() {
		return 0
	}
	s := p.Sheet(r.Sheet)
	if s == nil {
		return 0
	}
	return s.Code(r.Cell)
}

// Resolve maps a global tile code back to the sheet whose range owns it.
func (p *Palette) Resolve(code int) (Ref, error) {
	if code == 0 {
		return Empty, nil
	}
	for i, s := range p.sheets {
		if s.Contains(code) {
			return Ref{Sheet: i, Cell: code - s.Offset()}, nil
		}
	}
	return Empty, fmt.Errorf("%w: %d", ErrUnknownCode, code)
}
