// Package script runs tengo programs that paint layers.
//
// A program sees a global `level` with:
//
//	level.layer             index of the layer being painted
//	level.rows, level.cols  grid size
//	level.get(row, col)     tile code at a cell
//	level.set(row, col, c)  set a tile code
//	level.fill(c)           set every tile
//	level.code(sheet, cell) global code for a 1-based cell of a named sheet
//
// Edits are staged and applied to the layer only when the program finishes
// and every code is valid.
package script

import (
	"context"
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/dagbay/level-design/cellsheet"
	"github.com/dagbay/level-design/levels"
)

type Program struct {
	name     string
	compiled *tengo.Compiled
}

// Compile prepares src so it can be run against any number of layers.
func Compile(name string, src []byte) (*Program, error) {
	s := tengo.NewScript(src)
	_ = s.Add("level", map[string]any{})
	s.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := s.Compile()
	if err != nil {
		return nil, fmt.Errorf("script: compile %s: %w", name, err)
	}
	return &Program{name: name, compiled: compiled}, nil
}

// Apply runs the program against one layer.
func (p *Program) Apply(ctx context.Context, index int, l *levels.Layer, pal *cellsheet.Palette) error {
	grid := l.Codes(pal)
	run := p.compiled.Clone()
	if err := run.Set("level", levelObject(index, grid, pal)); err != nil {
		return fmt.Errorf("script: %s: %w", p.name, err)
	}
	if err := run.RunContext(ctx); err != nil {
		return fmt.Errorf("script: run %s on layer %d: %w", p.name, index, err)
	}
	if err := l.Apply(grid, pal); err != nil {
		return fmt.Errorf("script: %s on layer %d: %w", p.name, index, err)
	}
	return nil
}

func levelObject(index int, grid [][]int, pal *cellsheet.Palette) *tengo.ImmutableMap {
	rows := len(grid)
	cols := 0
	if rows > 0 {
		cols = len(grid[0])
	}
	cell := func(args []tengo.Object) (int, int, error) {
		if len(args) < 2 {
			return 0, 0, tengo.ErrWrongNumArguments
		}
		row, ok := tengo.ToInt(args[0])
		if !ok {
			return 0, 0, tengo.ErrInvalidArgumentType{Name: "row", Expected: "int", Found: args[0].TypeName()}
		}
		col, ok := tengo.ToInt(args[1])
		if !ok {
			return 0, 0, tengo.ErrInvalidArgumentType{Name: "col", Expected: "int", Found: args[1].TypeName()}
		}
		if row < 0 || row >= rows || col < 0 || col >= cols {
			return 0, 0, tengo.ErrIndexOutOfBounds
		}
		return row, col, nil
	}

	values := map[string]tengo.Object{
		"layer": &tengo.Int{Value: int64(index)},
		"rows":  &tengo.Int{Value: int64(rows)},
		"cols":  &tengo.Int{Value: int64(cols)},
	}

	values["get"] = &tengo.UserFunction{Name: "get", Value: func(args ...tengo.Object) (tengo.Object, error) {
		row, col, err := cell(args)
		if err != nil {
			return nil, err
		}
		return &tengo.Int{Value: int64(grid[row][col])}, nil
	}}

	values["set"] = &tengo.UserFunction{Name: "set", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 3 {
			return nil, tengo.ErrWrongNumArguments
		}
		row, col, err := cell(args)
		if err != nil {
			return nil, err
		}
		code, ok := tengo.ToInt(args[2])
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: "code", Expected: "int", Found: args[2].TypeName()}
		}
		grid[row][col] = code
		return tengo.UndefinedValue, nil
	}}

	values["fill"] = &tengo.UserFunction{Name: "fill", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		code, ok := tengo.ToInt(args[0])
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: "code", Expected: "int", Found: args[0].TypeName()}
		}
		for r := range grid {
			for c := range grid[r] {
				grid[r][c] = code
			}
		}
		return tengo.UndefinedValue, nil
	}}

	values["code"] = &tengo.UserFunction{Name: "code", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 2 {
			return nil, tengo.ErrWrongNumArguments
		}
		name, ok := tengo.ToString(args[0])
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: "sheet", Expected: "string", Found: args[0].TypeName()}
		}
		n, ok := tengo.ToInt(args[1])
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: "cell", Expected: "int", Found: args[1].TypeName()}
		}
		i, found := pal.Index(strings.TrimSpace(name))
		if !found {
			return tengo.UndefinedValue, nil
		}
		if n < 1 || n > pal.Sheet(i).CellCount() {
			return tengo.UndefinedValue, nil
		}
		return &tengo.Int{Value: int64(pal.Code(cellsheet.Ref{Sheet: i, Cell: n}))}, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}
