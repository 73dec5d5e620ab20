package main

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/gofont/goregular"
)

// hud is the status overlay in the top-left corner.
type hud struct {
	ui      *ebitenui.UI
	panel   *widget.Container
	lines   []*widget.Text
	visible bool
}

func newHUD(fontSize float64, lineCount int) (*hud, error) {
	s, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("load hud font: %w", err)
	}
	var face text.Face = &text.GoTextFace{Source: s, Size: fontSize}

	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(imageui.NewNineSliceColor(color.NRGBA{A: 140})),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(4),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 8, Bottom: 8, Left: 10, Right: 10}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
				HorizontalPosition: widget.AnchorLayoutPositionStart,
				VerticalPosition:   widget.AnchorLayoutPositionStart,
			}),
		),
	)

	h := &hud{panel: panel, visible: true}
	for i := 0; i < lineCount; i++ {
		t := widget.NewText(widget.TextOpts.Text("", &face, colornames.White))
		h.lines = append(h.lines, t)
		panel.AddChild(t)
	}

	root := widget.NewContainer(widget.ContainerOpts.Layout(widget.NewAnchorLayout()))
	root.AddChild(panel)
	h.ui = &ebitenui.UI{Container: root}
	return h, nil
}

func (h *hud) update(visible bool, lines []string) {
	if visible != h.visible {
		h.visible = visible
		if visible {
			h.panel.GetWidget().Visibility = widget.Visibility_Show
		} else {
			h.panel.GetWidget().Visibility = widget.Visibility_Hide
		}
	}
	for i, t := range h.lines {
		if i < len(lines) {
			t.Label = lines[i]
		}
	}
	h.ui.Update()
}

func (h *hud) draw(screen *ebiten.Image) {
	if h.visible {
		h.ui.Draw(screen)
	}
}
