package editor

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/dagbay/level-design/cellsheet"
	"github.com/dagbay/level-design/levels"
	"github.com/sirupsen/logrus"
	"github.com/tanema/gween/ease"
)

// ErrQuit is returned by Update once the quit action has been typed.
var ErrQuit = errors.New("editor: quit")

type Options struct {
	Layers int
	Grid   levels.Grid
	// Prefill paints every new tile with the first cell of the first sheet
	// instead of leaving it empty.
	Prefill bool
}

// Session owns the layers, the palette and the edit targets of one editing
// run. All methods are expected to be called from the game loop goroutine.
type Session struct {
	palette   *cellsheet.Palette
	layers    []*levels.Layer
	store     *levels.Store
	log       logrus.FieldLogger
	clipboard Clipboard
	reloads   <-chan int
	camera    Camera

	layer     int
	sheet     int
	selection int
	hud       bool

	cursorX, cursorY float64
	done             bool
}

func New(opts Options, pal *cellsheet.Palette, store *levels.Store, log logrus.FieldLogger) (*Session, error) {
	if pal == nil || pal.Len() == 0 {
		return nil, fmt.Errorf("editor: empty palette")
	}
	if opts.Layers < 1 {
		return nil, fmt.Errorf("editor: need at least one layer, got %d", opts.Layers)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	fill := cellsheet.Empty
	if opts.Prefill {
		fill = cellsheet.Ref{Sheet: 0, Cell: 1}
	}
	layers := make([]*levels.Layer, opts.Layers)
	for i := range layers {
		l, err := levels.Build(opts.Grid, fill)
		if err != nil {
			return nil, fmt.Errorf("editor: build layer %d: %w", i, err)
		}
		layers[i] = l
	}

	return &Session{
		palette:   pal,
		layers:    layers,
		store:     store,
		log:       log,
		selection: 1,
		hud:       true,
	}, nil
}

// SetClipboard enables the copy action.
func (s *Session) SetClipboard(c Clipboard) { s.clipboard = c }

// WatchReloads makes Update reload the layer index each time one arrives on ch.
func (s *Session) WatchReloads(ch <-chan int) { s.reloads = ch }

func (s *Session) Palette() *cellsheet.Palette { return s.palette }
func (s *Session) Layers() []*levels.Layer     { return s.layers }
func (s *Session) ActiveLayer() int            { return s.layer }
func (s *Session) ActiveSheet() int            { return s.sheet }
func (s *Session) Selection() int              { return s.selection }
func (s *Session) HUDVisible() bool            { return s.hud }
func (s *Session) Camera() *Camera             { return &s.camera }

// PreviewCell is the 0-based cell drawn under the pointer.
func (s *Session) PreviewCell() int { return s.selection - 1 }

// HUDLines returns the status text shown while the HUD is visible.
func (s *Session) HUDLines() []string {
	return []string{
		"Current Cell Sheet: " + s.palette.Sheet(s.sheet).Name(),
		"Current Layer: " + strconv.Itoa(s.layer+1),
	}
}

// Update runs one frame: pointer edits on the active layer, then key
// transitions, then camera movement.
func (s *Session) Update(in Input, dt float64) error {
	if s.done || in.Typed(ActionQuit) {
		s.done = true
		return ErrQuit
	}

	s.drainReloads()

	s.cursorX, s.cursorY = in.Cursor()
	wx, wy := s.camera.ScreenToWorld(s.cursorX, s.cursorY)
	s.layers[s.layer].Dispatch(levels.Pointer{
		X:     wx,
		Y:     wy,
		Left:  in.MouseDown(MouseLeft),
		Right: in.MouseDown(MouseRight),
	}, s.sheet, s.selection)

	s.handleKeys(in)

	if in.Held(ActionPan) {
		if dx, dy := in.Movement(); dx != 0 || dy != 0 {
			s.camera.Pan(-dx, -dy)
		}
	}
	s.camera.update(float32(dt))
	return nil
}

func (s *Session) handleKeys(in Input) {
	if in.Typed(ActionAdvanceLayer) {
		s.AdvanceLayer()
	}
	if in.Typed(ActionRetreatLayer) {
		s.RetreatLayer()
	}
	if in.Typed(ActionSave) {
		s.Save()
	}
	if in.Typed(ActionToggleHUD) {
		s.hud = !s.hud
	}
	if in.Typed(ActionNextSheet) {
		s.NextSheet()
	}
	if in.Typed(ActionPrevSheet) {
		s.PrevSheet()
	}

	_, wy := in.Wheel()
	if in.Typed(ActionSelectNext) || wy > 0 {
		s.SelectNext()
	}
	if in.Typed(ActionSelectPrev) || wy < 0 {
		s.SelectPrev()
	}

	if in.Typed(ActionRecenter) {
		s.camera.ScrollTo(0, 0, recenterDuration, ease.OutQuad)
	}
	if in.Typed(ActionCopyLayer) {
		s.CopyLayer()
	}
}

func (s *Session) AdvanceLayer() {
	if s.layer < len(s.layers)-1 {
		s.layer++
	}
}

func (s *Session) RetreatLayer() {
	if s.layer > 0 {
		s.layer--
	}
}

// NextSheet moves to the next sheet and re-arms its first cell. At the last
// sheet it does nothing.
func (s *Session) NextSheet() {
	if s.sheet < s.palette.Len()-1 {
		s.sheet++
		s.selection = 1
	}
}

func (s *Session) PrevSheet() {
	if s.sheet > 0 {
		s.sheet--
		s.selection = 1
	}
}

func (s *Session) SelectNext() {
	if count := s.palette.Sheet(s.sheet).CellCount(); s.selection < count {
		s.selection++
	}
}

func (s *Session) SelectPrev() {
	if s.selection > 1 {
		s.selection--
	}
}

// Save writes every layer. A layer that fails is logged and does not stop
// the others. It returns the number of layers written.
func (s *Session) Save() int {
	if s.store == nil {
		s.log.Warn("save requested without a store")
		return 0
	}
	err := s.store.SaveAll(s.layers, s.palette)
	failed := 0
	for _, e := range unwrapJoined(err) {
		failed++
		var se *levels.SaveError
		if errors.As(e, &se) {
			s.log.WithFields(logrus.Fields{"layer": se.Layer, "path": se.Path}).WithError(se.Err).Warn("layer save failed")
			continue
		}
		s.log.WithError(e).Warn("layer save failed")
	}
	saved := len(s.layers) - failed
	s.log.WithFields(logrus.Fields{"saved": saved, "failed": failed, "base": s.store.Base}).Info("level saved")
	return saved
}

// LoadAll reads every existing layer file. Missing files leave their layer
// as built; other failures are logged. It returns the number of layers read.
func (s *Session) LoadAll() int {
	if s.store == nil {
		return 0
	}
	loaded := 0
	for i := range s.layers {
		err := s.store.Load(i, s.layers[i], s.palette)
		switch {
		case err == nil:
			loaded++
		case errors.Is(err, fs.ErrNotExist):
			s.log.WithField("path", s.store.Path(i)).Debug("no saved layer")
		default:
			s.log.WithFields(logrus.Fields{"layer": i, "path": s.store.Path(i)}).WithError(err).Warn("layer load failed")
		}
	}
	return loaded
}

// Reload replaces one layer with its file on disk.
func (s *Session) Reload(index int) error {
	if index < 0 || index >= len(s.layers) {
		return fmt.Errorf("editor: no layer %d", index)
	}
	if s.store == nil {
		return fmt.Errorf("editor: no store")
	}
	if err := s.store.Load(index, s.layers[index], s.palette); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"layer": index, "path": s.store.Path(index)}).Info("layer reloaded")
	return nil
}

func (s *Session) drainReloads() {
	for s.reloads != nil {
		select {
		case idx, ok := <-s.reloads:
			if !ok {
				s.reloads = nil
				return
			}
			if idx < 0 || idx >= len(s.layers) || s.store == nil {
				continue
			}
			if changed, err := s.store.Changed(idx); err == nil && !changed {
				s.log.WithField("layer", idx).Debug("skip reload of own save")
				continue
			}
			if err := s.Reload(idx); err != nil {
				s.log.WithField("layer", idx).WithError(err).Warn("layer reload failed")
			}
		default:
			return
		}
	}
}

// CopyLayer puts the active layer's text grid on the clipboard.
func (s *Session) CopyLayer() {
	if s.clipboard == nil {
		return
	}
	var buf bytes.Buffer
	if err := levels.Encode(&buf, s.layers[s.layer].Codes(s.palette)); err != nil {
		s.log.WithError(err).Warn("encode layer for clipboard")
		return
	}
	if err := s.clipboard.WriteText(buf.String()); err != nil {
		s.log.WithField("layer", s.layer).WithError(err).Warn("copy layer failed")
		return
	}
	s.log.WithField("layer", s.layer).Info("layer copied to clipboard")
}

// Draw renders every layer bottom to top, then overlay (the HUD) when it is
// non-nil, then the armed cell under the pointer.
func (s *Session) Draw(c levels.Canvas, overlay func()) {
	for _, l := range s.layers {
		l.Draw(c, s.palette, s.camera.X, s.camera.Y)
	}
	if overlay != nil {
		overlay()
	}
	if s.selection > 0 {
		c.DrawCell(s.palette.Sheet(s.sheet).Bitmap(), s.PreviewCell(), s.cursorX, s.cursorY)
	}
}

func unwrapJoined(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
