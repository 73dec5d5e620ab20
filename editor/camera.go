package editor

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const recenterDuration = 0.35

type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// Camera is the world offset of the top-left corner of the screen. Tiles keep
// their grid origins; only drawing and pointer mapping go through the camera.
type Camera struct {
	X, Y float64

	scroll *scrollAnim
}

// Pan moves the camera by a delta and cancels any running scroll.
func (c *Camera) Pan(dx, dy float64) {
	c.scroll = nil
	c.X += dx
	c.Y += dy
}

// ScrollTo animates the camera to x, y over duration seconds.
func (c *Camera) ScrollTo(x, y float64, duration float32, easeFn ease.TweenFunc) {
	c.scroll = &scrollAnim{
		tweenX: gween.New(float32(c.X), float32(x), duration, easeFn),
		tweenY: gween.New(float32(c.Y), float32(y), duration, easeFn),
	}
}

// scrolling reports whether a ScrollTo animation is running.
func (c *Camera) scrolling() bool { return c.scroll != nil }

func (c *Camera) ScreenToWorld(sx, sy float64) (float64, float64) {
	return sx + c.X, sy + c.Y
}

func (c *Camera) update(dt float32) {
	if c.scroll == nil {
		return
	}
	if !c.scroll.doneX {
		val, done := c.scroll.tweenX.Update(dt)
		c.X = float64(val)
		c.scroll.doneX = done
	}
	if !c.scroll.doneY {
		val, done := c.scroll.tweenY.Update(dt)
		c.Y = float64(val)
		c.scroll.doneY = done
	}
	if c.scroll.doneX && c.scroll.doneY {
		c.scroll = nil
	}
}
