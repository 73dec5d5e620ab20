package editor

// Action is an editor command bound to a key.
type Action int

const (
	ActionAdvanceLayer Action = iota
	ActionRetreatLayer
	ActionNextSheet
	ActionPrevSheet
	ActionSelectNext
	ActionSelectPrev
	ActionToggleHUD
	ActionSave
	ActionQuit
	ActionPan
	ActionRecenter
	ActionCopyLayer

	actionCount
)

var actionNames = [actionCount]string{
	ActionAdvanceLayer: "advance_layer",
	ActionRetreatLayer: "retreat_layer",
	ActionNextSheet:    "next_sheet",
	ActionPrevSheet:    "prev_sheet",
	ActionSelectNext:   "select_next",
	ActionSelectPrev:   "select_prev",
	ActionToggleHUD:    "toggle_hud",
	ActionSave:         "save",
	ActionQuit:         "quit",
	ActionPan:          "pan",
	ActionRecenter:     "recenter",
	ActionCopyLayer:    "copy_layer",
}

func (a Action) String() string {
	if a < 0 || a >= actionCount {
		return "unknown"
	}
	return actionNames[a]
}

// Actions returns every action in declaration order.
func Actions() []Action {
	out := make([]Action, actionCount)
	for i := range out {
		out[i] = Action(i)
	}
	return out
}

// ParseAction looks an action up by its config name.
func ParseAction(name string) (Action, bool) {
	for i, n := range actionNames {
		if n == name {
			return Action(i), true
		}
	}
	return 0, false
}

type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseRight
)

// Input is the per-frame view of the keyboard and mouse.
type Input interface {
	// Typed reports whether the action's key was pressed this frame.
	Typed(a Action) bool
	// Held reports whether the action's key is down.
	Held(a Action) bool
	MouseDown(b MouseButton) bool
	// Cursor is the pointer position in screen pixels.
	Cursor() (x, y float64)
	Wheel() (dx, dy float64)
	// Movement is how far the pointer moved since the previous frame.
	Movement() (dx, dy float64)
}

// Clipboard receives text copied out of the editor.
type Clipboard interface {
	WriteText(text string) error
}
