package levels

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Encode writes grid as text: one line per row, each code followed by a
// single space.
func Encode(w io.Writer, grid [][]int) error {
	bw := bufio.NewWriter(w)
	for _, row := range grid {
		for _, code := range row {
			bw.WriteString(strconv.Itoa(code))
			bw.WriteByte(' ')
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// Decode parses a whitespace-delimited grid of non-negative integers. Blank
// lines are skipped; every other line must have the same number of columns.
func Decode(r io.Reader) ([][]int, error) {
	var grid [][]int
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		row := make([]int, len(fields))
		for i, f := range fields {
			v, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("levels: line %d column %d: invalid tile code %q", line, i+1, f)
			}
			if v < 0 {
				return nil, fmt.Errorf("levels: line %d column %d: negative tile code %d", line, i+1, v)
			}
			row[i] = v
		}
		if len(grid) > 0 && len(row) != len(grid[0]) {
			return nil, fmt.Errorf("levels: line %d has %d columns, expected %d", line, len(row), len(grid[0]))
		}
		grid = append(grid, row)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("levels: read grid: %w", err)
	}
	return grid, nil
}
