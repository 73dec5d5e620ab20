package editor

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dagbay/level-design/cellsheet"
	"github.com/dagbay/level-design/levels"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
)

// fakeInput is a fixed snapshot of one frame of input.
type fakeInput struct {
	typed  map[Action]bool
	held   map[Action]bool
	left   bool
	right  bool
	x, y   float64
	wheelY float64
	dx, dy float64
}

func press(actions ...Action) *fakeInput {
	in := &fakeInput{typed: map[Action]bool{}, held: map[Action]bool{}}
	for _, a := range actions {
		in.typed[a] = true
	}
	return in
}

func (f *fakeInput) Typed(a Action) bool          { return f.typed[a] }
func (f *fakeInput) Held(a Action) bool           { return f.held[a] }
func (f *fakeInput) Cursor() (float64, float64)   { return f.x, f.y }
func (f *fakeInput) Wheel() (float64, float64)    { return 0, f.wheelY }
func (f *fakeInput) Movement() (float64, float64) { return f.dx, f.dy }
func (f *fakeInput) MouseDown(b MouseButton) bool {
	switch b {
	case MouseLeft:
		return f.left
	case MouseRight:
		return f.right
	}
	return false
}

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) WriteText(s string) error {
	if c.err != nil {
		return c.err
	}
	c.text = s
	return nil
}

type drawCall struct {
	bitmap cellsheet.Bitmap
	cell   int
	x, y   float64
}

type recordingCanvas struct {
	calls []drawCall
}

func (c *recordingCanvas) DrawCell(b cellsheet.Bitmap, cell int, x, y float64) {
	c.calls = append(c.calls, drawCall{bitmap: b, cell: cell, x: x, y: y})
}

func testPalette(t *testing.T) *cellsheet.Palette {
	t.Helper()
	p, err := cellsheet.NewPalette(
		cellsheet.New(cellsheet.Metrics{Cells: 16, Width: 64, Height: 64}, "Solid", 0),
		cellsheet.New(cellsheet.Metrics{Cells: 4, Width: 64, Height: 64}, "Ladder", 16),
		cellsheet.New(cellsheet.Metrics{Cells: 4, Width: 64, Height: 64}, "Players", 908),
	)
	if err != nil {
		t.Fatalf("NewPalette: %v", err)
	}
	return p
}

func newSession(t *testing.T, layers int, store *levels.Store) (*Session, *logtest.Hook) {
	t.Helper()
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	s, err := New(Options{
		Layers: layers,
		Grid:   levels.Grid{ViewWidth: 1600, ViewHeight: 896, TileSize: 64},
	}, testPalette(t), store, log)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, hook
}

func step(t *testing.T, s *Session, in *fakeInput) {
	t.Helper()
	if err := s.Update(in, 1.0/60); err != nil {
		t.Fatalf("Update: %v", err)
	}
}

func TestNewRejectsBadOptions(t *testing.T) {
	pal := testPalette(t)
	grid := levels.Grid{ViewWidth: 64, ViewHeight: 64, TileSize: 64}
	if _, err := New(Options{Layers: 0, Grid: grid}, pal, nil, nil); err == nil {
		t.Fatalf("zero layers should fail")
	}
	if _, err := New(Options{Layers: 1, Grid: levels.Grid{TileSize: 0}}, pal, nil, nil); err == nil {
		t.Fatalf("zero tile size should fail")
	}
	if _, err := New(Options{Layers: 1, Grid: grid}, nil, nil, nil); err == nil {
		t.Fatalf("nil palette should fail")
	}
}

func TestInitialState(t *testing.T) {
	s, _ := newSession(t, 2, nil)
	if s.ActiveLayer() != 0 || s.ActiveSheet() != 0 || s.Selection() != 1 || !s.HUDVisible() {
		t.Fatalf("initial state = layer %d sheet %d selection %d hud %v",
			s.ActiveLayer(), s.ActiveSheet(), s.Selection(), s.HUDVisible())
	}
	want := []string{"Current Cell Sheet: Solid", "Current Layer: 1"}
	got := s.HUDLines()
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("HUDLines = %q", got)
	}
	for _, l := range s.Layers() {
		for _, row := range l.Codes(s.Palette()) {
			for _, code := range row {
				if code != 0 {
					t.Fatalf("new layers should be empty")
				}
			}
		}
	}
}

func TestPrefill(t *testing.T) {
	s, err := New(Options{
		Layers:  1,
		Grid:    levels.Grid{ViewWidth: 128, ViewHeight: 64, TileSize: 64},
		Prefill: true,
	}, testPalette(t), nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := s.Layers()[0].Codes(s.Palette()); got[0][0] != 1 || got[0][1] != 1 {
		t.Fatalf("prefilled codes = %v", got)
	}
}

func TestSelectionClamps(t *testing.T) {
	s, _ := newSession(t, 1, nil)

	step(t, s, press(ActionSelectPrev))
	if s.Selection() != 1 {
		t.Fatalf("selection below 1: %d", s.Selection())
	}
	for i := 0; i < 20; i++ {
		step(t, s, press(ActionSelectNext))
	}
	if s.Selection() != 16 {
		t.Fatalf("selection = %d, want clamp at 16", s.Selection())
	}

	wheel := press()
	wheel.wheelY = -1
	step(t, s, wheel)
	if s.Selection() != 15 {
		t.Fatalf("wheel down: selection = %d, want 15", s.Selection())
	}
	wheel.wheelY = 1
	step(t, s, wheel)
	if s.Selection() != 16 {
		t.Fatalf("wheel up: selection = %d, want 16", s.Selection())
	}
}

func TestSheetSwitchResetsSelection(t *testing.T) {
	s, _ := newSession(t, 1, nil)
	for i := 0; i < 5; i++ {
		step(t, s, press(ActionSelectNext))
	}
	step(t, s, press(ActionNextSheet))
	if s.ActiveSheet() != 1 || s.Selection() != 1 {
		t.Fatalf("after next_sheet: sheet %d selection %d", s.ActiveSheet(), s.Selection())
	}
	if s.HUDLines()[0] != "Current Cell Sheet: Ladder" {
		t.Fatalf("HUD = %q", s.HUDLines()[0])
	}

	step(t, s, press(ActionNextSheet))
	step(t, s, press(ActionSelectNext))
	step(t, s, press(ActionNextSheet))
	if s.ActiveSheet() != 2 || s.Selection() != 2 {
		t.Fatalf("clamped next_sheet moved state: sheet %d selection %d", s.ActiveSheet(), s.Selection())
	}

	step(t, s, press(ActionPrevSheet))
	if s.ActiveSheet() != 1 || s.Selection() != 1 {
		t.Fatalf("after prev_sheet: sheet %d selection %d", s.ActiveSheet(), s.Selection())
	}
	step(t, s, press(ActionPrevSheet))
	step(t, s, press(ActionSelectNext))
	step(t, s, press(ActionPrevSheet))
	if s.ActiveSheet() != 0 || s.Selection() != 2 {
		t.Fatalf("clamped prev_sheet moved state: sheet %d selection %d", s.ActiveSheet(), s.Selection())
	}
}

func TestLayerClamps(t *testing.T) {
	s, _ := newSession(t, 2, nil)
	step(t, s, press(ActionRetreatLayer))
	if s.ActiveLayer() != 0 {
		t.Fatalf("retreat below 0: %d", s.ActiveLayer())
	}
	step(t, s, press(ActionAdvanceLayer))
	step(t, s, press(ActionAdvanceLayer))
	if s.ActiveLayer() != 1 {
		t.Fatalf("advance past last: %d", s.ActiveLayer())
	}
	if s.HUDLines()[1] != "Current Layer: 2" {
		t.Fatalf("HUD = %q", s.HUDLines()[1])
	}
}

func TestToggleHUD(t *testing.T) {
	s, _ := newSession(t, 1, nil)
	step(t, s, press(ActionToggleHUD))
	if s.HUDVisible() {
		t.Fatalf("HUD should be hidden")
	}
	step(t, s, press(ActionToggleHUD))
	if !s.HUDVisible() {
		t.Fatalf("HUD should be visible")
	}
}

func TestQuitIsTerminal(t *testing.T) {
	s, _ := newSession(t, 1, nil)
	in := press(ActionQuit, ActionSelectNext)
	in.left = true
	if err := s.Update(in, 0); !errors.Is(err, ErrQuit) {
		t.Fatalf("Update = %v, want ErrQuit", err)
	}
	if s.Selection() != 1 || s.Layers()[0].At(0, 0).Ref != cellsheet.Empty {
		t.Fatalf("quit frame should not apply edits")
	}
	if err := s.Update(press(), 0); !errors.Is(err, ErrQuit) {
		t.Fatalf("Update after quit = %v, want ErrQuit", err)
	}
}

func TestPaintOnlyActiveLayer(t *testing.T) {
	s, _ := newSession(t, 2, nil)
	step(t, s, press(ActionAdvanceLayer))

	in := press()
	in.left = true
	in.x, in.y = 100, 10
	step(t, s, in)

	pal := s.Palette()
	if got := s.Layers()[1].At(0, 1).Ref; got != (cellsheet.Ref{Sheet: 0, Cell: 1}) {
		t.Fatalf("active layer tile = %+v", got)
	}
	if code := s.Layers()[0].Codes(pal)[0][1]; code != 0 {
		t.Fatalf("inactive layer painted: %d", code)
	}

	in.left, in.right = false, true
	step(t, s, in)
	if !s.Layers()[1].At(0, 1).Ref.IsEmpty() {
		t.Fatalf("right click should erase")
	}
}

func TestSaveEndToEnd(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := &levels.Store{Fs: fs, Dir: ".", Base: "file"}
	s, hook := newSession(t, 2, store)

	if l := s.Layers()[0]; l.Cols() != 25 || l.Rows() != 14 {
		t.Fatalf("layer is %dx%d, want 25x14", l.Cols(), l.Rows())
	}

	in := press()
	in.left = true
	in.x, in.y = 0, 0
	step(t, s, in)
	step(t, s, press(ActionSave))

	data, err := afero.ReadFile(fs, "file0.txt")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.HasPrefix(string(data), "1 0 0") {
		t.Fatalf("file0.txt starts %q", string(data)[:10])
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if len(lines) != 14 || len(strings.Fields(lines[0])) != 25 {
		t.Fatalf("file0.txt is %d lines of %d codes", len(lines), len(strings.Fields(lines[0])))
	}
	if ok, _ := afero.Exists(fs, "file1.txt"); !ok {
		t.Fatalf("file1.txt not written")
	}
	if last := hook.LastEntry(); last == nil || last.Message != "level saved" || last.Data["saved"] != 2 {
		t.Fatalf("last log entry = %+v", last)
	}
}

// readOnlyLayerFs refuses writes to one file.
type readOnlyLayerFs struct {
	afero.Fs
	name string
}

func (f *readOnlyLayerFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if filepath.Base(name) == f.name {
		return nil, os.ErrPermission
	}
	return f.Fs.OpenFile(name, flag, perm)
}

func TestSaveFailureIsLogged(t *testing.T) {
	base := afero.NewMemMapFs()
	store := &levels.Store{Fs: &readOnlyLayerFs{Fs: base, name: "file0.txt"}, Dir: ".", Base: "file"}
	s, hook := newSession(t, 2, store)

	if saved := s.Save(); saved != 1 {
		t.Fatalf("Save = %d, want 1", saved)
	}
	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["layer"] == 0 && e.Data["path"] == "file0.txt" {
			warned = true
		}
	}
	if !warned {
		t.Fatalf("no warning for layer 0")
	}
	if ok, _ := afero.Exists(base, "file1.txt"); !ok {
		t.Fatalf("layer 1 should still be written")
	}
}

func TestLoadAllAndReload(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := &levels.Store{Fs: fs, Dir: ".", Base: "file"}
	s, _ := newSession(t, 2, store)

	row := "909" + strings.Repeat(" 0", 24) + "\n"
	_ = afero.WriteFile(fs, "file0.txt", []byte(strings.Repeat(row, 14)), 0o644)

	if n := s.LoadAll(); n != 1 {
		t.Fatalf("LoadAll = %d, want 1", n)
	}
	if got := s.Layers()[0].At(13, 0).Ref; got != (cellsheet.Ref{Sheet: 2, Cell: 1}) {
		t.Fatalf("loaded ref = %+v", got)
	}

	_ = afero.WriteFile(fs, "file1.txt", []byte("1 2\n"), 0o644)
	if err := s.Reload(1); err == nil {
		t.Fatalf("reload of a mismatched grid should fail")
	}
	if err := s.Reload(5); err == nil {
		t.Fatalf("reload of a missing layer should fail")
	}
}

func TestOwnSaveIsNotReloaded(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := &levels.Store{Fs: fs, Dir: ".", Base: "file"}
	s, _ := newSession(t, 1, store)
	ch := make(chan int, 4)
	s.WatchReloads(ch)

	step(t, s, press(ActionSave))
	paint := press()
	paint.left = true
	paint.x, paint.y = 70, 10
	step(t, s, paint)

	ch <- 0
	step(t, s, press())
	if s.Layers()[0].At(0, 1).Ref.IsEmpty() {
		t.Fatalf("edit made after saving was reverted")
	}

	row := "17" + strings.Repeat(" 0", 24) + "\n"
	_ = afero.WriteFile(fs, "file0.txt", []byte(strings.Repeat(row, 14)), 0o644)
	ch <- 0
	step(t, s, press())
	if got := s.Layers()[0].At(0, 0).Ref; got != (cellsheet.Ref{Sheet: 1, Cell: 1}) {
		t.Fatalf("outside edit not reloaded: %+v", got)
	}
}

func TestWatchedSaveKeepsLaterEdits(t *testing.T) {
	dir := t.TempDir()
	store := levels.NewStore(dir, "file")
	s, _ := newSession(t, 1, store)
	w, err := levels.NewWatcher(store)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()
	s.WatchReloads(w.Events)

	step(t, s, press(ActionSave))
	paint := press()
	paint.left = true
	step(t, s, paint)

	time.Sleep(400 * time.Millisecond)
	step(t, s, press())
	if s.Layers()[0].At(0, 0).Ref.IsEmpty() {
		t.Fatalf("edit made after saving was reverted by the watcher")
	}

	row := "17" + strings.Repeat(" 0", 24) + "\n"
	if err := os.WriteFile(store.Path(0), []byte(strings.Repeat(row, 14)), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	deadline := time.Now().Add(3 * time.Second)
	for s.Layers()[0].At(0, 0).Ref != (cellsheet.Ref{Sheet: 1, Cell: 1}) {
		if time.Now().After(deadline) {
			t.Fatalf("outside edit never reloaded")
		}
		time.Sleep(20 * time.Millisecond)
		step(t, s, press())
	}
}

func TestReloadsDrainedInUpdate(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := &levels.Store{Fs: fs, Dir: ".", Base: "file"}
	s, _ := newSession(t, 1, store)

	row := "17" + strings.Repeat(" 0", 24) + "\n"
	_ = afero.WriteFile(fs, "file0.txt", []byte(strings.Repeat(row, 14)), 0o644)

	ch := make(chan int, 2)
	ch <- 0
	ch <- 3
	s.WatchReloads(ch)
	step(t, s, press())

	if got := s.Layers()[0].At(0, 0).Ref; got != (cellsheet.Ref{Sheet: 1, Cell: 1}) {
		t.Fatalf("reloaded ref = %+v", got)
	}
	close(ch)
	step(t, s, press())
}

func TestPanAndPointerMapping(t *testing.T) {
	s, _ := newSession(t, 1, nil)

	in := press()
	in.held[ActionPan] = true
	in.dx, in.dy = -64, 0
	step(t, s, in)
	if cam := s.Camera(); cam.X != 64 || cam.Y != 0 {
		t.Fatalf("camera = (%v,%v), want (64,0)", cam.X, cam.Y)
	}

	paint := press()
	paint.left = true
	paint.x, paint.y = 10, 10
	step(t, s, paint)
	if s.Layers()[0].At(0, 1).Ref.IsEmpty() {
		t.Fatalf("pointer should hit the tile under the panned camera")
	}

	moved := press()
	moved.dx, moved.dy = 40, 40
	step(t, s, moved)
	if cam := s.Camera(); cam.X != 64 {
		t.Fatalf("movement without pan should not move the camera")
	}
}

func TestRecenter(t *testing.T) {
	s, _ := newSession(t, 1, nil)
	s.Camera().Pan(300, -120)

	step(t, s, press(ActionRecenter))
	if !s.Camera().scrolling() {
		t.Fatalf("recenter should start a scroll")
	}
	for i := 0; i < 120 && s.Camera().scrolling(); i++ {
		step(t, s, press())
	}
	if cam := s.Camera(); cam.scrolling() || cam.X != 0 || cam.Y != 0 {
		t.Fatalf("camera = (%v,%v) scrolling %v", cam.X, cam.Y, cam.scrolling())
	}
}

func TestCopyLayer(t *testing.T) {
	s, hook := newSession(t, 1, nil)
	step(t, s, press(ActionCopyLayer))

	clip := &fakeClipboard{}
	s.SetClipboard(clip)
	in := press()
	in.left = true
	step(t, s, in)
	step(t, s, press(ActionCopyLayer))
	if !strings.HasPrefix(clip.text, "1 0 ") || strings.Count(clip.text, "\n") != 14 {
		t.Fatalf("clipboard = %q", clip.text)
	}

	clip.err = errors.New("no display")
	step(t, s, press(ActionCopyLayer))
	if last := hook.LastEntry(); last == nil || last.Level != logrus.WarnLevel {
		t.Fatalf("copy failure not logged: %+v", last)
	}
}

func TestDrawOrder(t *testing.T) {
	s, _ := newSession(t, 2, nil)
	pal := s.Palette()
	_ = s.Layers()[0].Apply(gridWith(s.Layers()[0], 0, 0, 3), pal)
	_ = s.Layers()[1].Apply(gridWith(s.Layers()[1], 0, 0, 909), pal)
	step(t, s, press(ActionSelectNext))

	in := press()
	in.x, in.y = 500, 300
	step(t, s, in)

	c := &recordingCanvas{}
	overlayAt := -1
	s.Draw(c, func() { overlayAt = len(c.calls) })
	if len(c.calls) != 3 {
		t.Fatalf("draw calls = %d, want 3", len(c.calls))
	}
	if overlayAt != 2 {
		t.Fatalf("overlay drawn after %d cells, want between the layers and the preview", overlayAt)
	}
	if c.calls[0].cell != 2 || c.calls[0].bitmap != pal.Sheet(0).Bitmap() {
		t.Fatalf("first draw = %+v", c.calls[0])
	}
	if c.calls[1].cell != 0 || c.calls[1].bitmap != pal.Sheet(2).Bitmap() {
		t.Fatalf("second draw = %+v", c.calls[1])
	}
	preview := c.calls[2]
	if preview.cell != 1 || preview.x != 500 || preview.y != 300 {
		t.Fatalf("preview = %+v", preview)
	}
}

func TestDrawWithoutOverlay(t *testing.T) {
	s, _ := newSession(t, 1, nil)
	c := &recordingCanvas{}
	s.Draw(c, nil)
	if len(c.calls) != 1 || c.calls[0].cell != 0 {
		t.Fatalf("draw calls = %+v, want only the preview", c.calls)
	}
}

func gridWith(l *levels.Layer, row, col, code int) [][]int {
	grid := make([][]int, l.Rows())
	for r := range grid {
		grid[r] = make([]int, l.Cols())
	}
	grid[row][col] = code
	return grid
}
