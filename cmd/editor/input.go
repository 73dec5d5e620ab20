package main

import (
	"fmt"

	"github.com/dagbay/level-design/editor"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// ebitenInput samples the keyboard and mouse once per tick.
type ebitenInput struct {
	keys map[editor.Action][]ebiten.Key

	x, y    int
	dx, dy  int
	sampled bool
}

func newInput(names map[editor.Action][]string) (*ebitenInput, error) {
	keys := make(map[editor.Action][]ebiten.Key, len(names))
	for action, list := range names {
		for _, name := range list {
			var k ebiten.Key
			if err := k.UnmarshalText([]byte(name)); err != nil {
				return nil, fmt.Errorf("key %q for %s: %w", name, action, err)
			}
			keys[action] = append(keys[action], k)
		}
	}
	return &ebitenInput{keys: keys}, nil
}

func (in *ebitenInput) update() {
	x, y := ebiten.CursorPosition()
	if in.sampled {
		in.dx, in.dy = x-in.x, y-in.y
	}
	in.x, in.y = x, y
	in.sampled = true
}

func (in *ebitenInput) Typed(a editor.Action) bool {
	for _, k := range in.keys[a] {
		if inpututil.IsKeyJustPressed(k) {
			return true
		}
	}
	return false
}

func (in *ebitenInput) Held(a editor.Action) bool {
	for _, k := range in.keys[a] {
		if ebiten.IsKeyPressed(k) {
			return true
		}
	}
	return false
}

func (in *ebitenInput) MouseDown(b editor.MouseButton) bool {
	switch b {
	case editor.MouseLeft:
		return ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	case editor.MouseRight:
		return ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	}
	return false
}

func (in *ebitenInput) Cursor() (float64, float64) {
	return float64(in.x), float64(in.y)
}

func (in *ebitenInput) Wheel() (float64, float64) {
	return ebiten.Wheel()
}

func (in *ebitenInput) Movement() (float64, float64) {
	return float64(in.dx), float64(in.dy)
}
