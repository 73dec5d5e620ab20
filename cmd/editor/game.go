package main

import (
	"errors"

	"github.com/dagbay/level-design/editor"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sirupsen/logrus"
)

// Game adapts an editor session to the ebiten loop.
type Game struct {
	session *editor.Session
	input   *ebitenInput
	hud     *hud
	width   int
	height  int

	watchErrors <-chan error
	log         logrus.FieldLogger
}

func (g *Game) Update() error {
	g.input.update()
	g.drainWatchErrors()

	if err := g.session.Update(g.input, 1/float64(ebiten.TPS())); err != nil {
		if errors.Is(err, editor.ErrQuit) {
			return ebiten.Termination
		}
		return err
	}

	g.hud.update(g.session.HUDVisible(), g.session.HUDLines())
	return nil
}

func (g *Game) drainWatchErrors() {
	for g.watchErrors != nil {
		select {
		case err, ok := <-g.watchErrors:
			if !ok {
				g.watchErrors = nil
				return
			}
			g.log.WithError(err).Warn("layer watcher")
		default:
			return
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.session.Draw(&screenCanvas{dst: screen}, func() { g.hud.draw(screen) })
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}
