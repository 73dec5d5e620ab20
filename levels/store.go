package levels

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dagbay/level-design/cellsheet"
	"github.com/spf13/afero"
)

// SaveError reports a layer that could not be written.
type SaveError struct {
	Layer int
	Path  string
	Err   error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("levels: save layer %d to %s: %v", e.Layer, e.Path, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

// Store persists layers as {Base}{index}.txt files inside Dir.
type Store struct {
	Fs   afero.Fs
	Dir  string
	Base string

	// written holds the last bytes saved per layer index.
	written map[int][]byte
}

// NewStore returns a store on the OS filesystem.
func NewStore(dir, base string) *Store {
	return &Store{Fs: afero.NewOsFs(), Dir: dir, Base: base}
}

// Filename returns the file name used for a layer index.
func Filename(base string, index int) string {
	return base + strconv.Itoa(index) + ".txt"
}

func (s *Store) Path(index int) string {
	return filepath.Join(s.Dir, Filename(s.Base, index))
}

// LayerIndex reports which layer a path belongs to.
func (s *Store) LayerIndex(path string) (int, bool) {
	if filepath.Clean(filepath.Dir(path)) != filepath.Clean(s.Dir) {
		return 0, false
	}
	name := filepath.Base(path)
	digits, ok := strings.CutPrefix(name, s.Base)
	if !ok {
		return 0, false
	}
	digits, ok = strings.CutSuffix(digits, ".txt")
	if !ok || digits == "" {
		return 0, false
	}
	i, err := strconv.Atoi(digits)
	if err != nil || i < 0 || strconv.Itoa(i) != digits {
		return 0, false
	}
	return i, true
}

// Save overwrites the file for one layer.
func (s *Store) Save(index int, l *Layer, pal *cellsheet.Palette) error {
	path := s.Path(index)
	if s.Dir != "" {
		if err := s.Fs.MkdirAll(s.Dir, 0o755); err != nil {
			return &SaveError{Layer: index, Path: path, Err: err}
		}
	}
	var buf bytes.Buffer
	if err := Encode(&buf, l.Codes(pal)); err != nil {
		return &SaveError{Layer: index, Path: path, Err: err}
	}
	if err := afero.WriteFile(s.Fs, path, buf.Bytes(), 0o644); err != nil {
		return &SaveError{Layer: index, Path: path, Err: err}
	}
	if s.written == nil {
		s.written = make(map[int][]byte)
	}
	s.written[index] = buf.Bytes()
	return nil
}

// Changed reports whether the file for a layer differs from what this store
// last saved there. A layer this store never saved counts as changed.
func (s *Store) Changed(index int) (bool, error) {
	last, ok := s.written[index]
	if !ok {
		return true, nil
	}
	data, err := afero.ReadFile(s.Fs, s.Path(index))
	if err != nil {
		return false, fmt.Errorf("levels: read %s: %w", s.Path(index), err)
	}
	return !bytes.Equal(data, last), nil
}

// SaveAll writes every layer, continuing past failures. The returned error
// joins one *SaveError per failed layer.
func (s *Store) SaveAll(layers []*Layer, pal *cellsheet.Palette) error {
	var errs []error
	for i, l := range layers {
		if err := s.Save(i, l, pal); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Load reads the file for one layer into l.
func (s *Store) Load(index int, l *Layer, pal *cellsheet.Palette) error {
	path := s.Path(index)
	f, err := s.Fs.Open(path)
	if err != nil {
		return fmt.Errorf("levels: open %s: %w", path, err)
	}
	defer f.Close()

	grid, err := Decode(f)
	if err != nil {
		return fmt.Errorf("levels: decode %s: %w", path, err)
	}
	if err := l.Apply(grid, pal); err != nil {
		return fmt.Errorf("levels: apply %s: %w", path, err)
	}
	return nil
}
