package trellis

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// DefaultPanDuration is used by animated pans when PanOptions.Duration is 0.
const DefaultPanDuration = 300 * time.Millisecond

// panAnimation tweens the viewport's pan offset (matrix e and f) one frame
// at a time through the canvas scheduler.
type panAnimation struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
	frame  FrameHandle
}

func newPanAnimation(from, to ScreenPoint, d time.Duration, fn ease.TweenFunc) *panAnimation {
	if fn == nil {
		fn = ease.OutCubic
	}
	secs := float32(d.Seconds())
	return &panAnimation{
		tweenX: gween.New(float32(from.X), float32(to.X), secs, fn),
		tweenY: gween.New(float32(from.Y), float32(to.Y), secs, fn),
	}
}

// step advances both tweens by dt seconds and returns the pan offset.
func (a *panAnimation) step(dt float64, current ScreenPoint) (ScreenPoint, bool) {
	p := current
	if !a.doneX {
		v, done := a.tweenX.Update(float32(dt))
		p.X = float64(v)
		a.doneX = done
	}
	if !a.doneY {
		v, done := a.tweenY.Update(float32(dt))
		p.Y = float64(v)
		a.doneY = done
	}
	return p, a.doneX && a.doneY
}
