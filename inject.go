package trellis

import "github.com/hajimehoshi/ebiten/v2"

type syntheticKind uint8

const (
	syntheticPointer syntheticKind = iota
	syntheticWheel
	syntheticKey
)

// syntheticEvent represents a single injected input event. Screen
// coordinates are used (matching what a script sees in screenshots) and
// converted through the viewport exactly like real mouse input.
type syntheticEvent struct {
	kind      syntheticKind
	at        ScreenPoint
	pressed   bool
	button    MouseButton
	wheelDY   float64
	key       ebiten.Key
	modifiers KeyModifiers
}

// InjectPress queues a left-button press at the given screen coordinates.
// The event is consumed on the next frame's processInput call. mods, if
// given, are OR-ed into the modifier state for this event.
func (c *Canvas) InjectPress(x, y float64, mods ...KeyModifiers) {
	c.injectQueue = append(c.injectQueue, syntheticEvent{
		kind: syntheticPointer, at: ScreenPoint{x, y},
		pressed: true, button: MouseButtonLeft, modifiers: orMods(mods),
	})
}

// InjectButtonPress queues a press of an arbitrary mouse button.
func (c *Canvas) InjectButtonPress(x, y float64, button MouseButton, mods ...KeyModifiers) {
	c.injectQueue = append(c.injectQueue, syntheticEvent{
		kind: syntheticPointer, at: ScreenPoint{x, y},
		pressed: true, button: button, modifiers: orMods(mods),
	})
}

// InjectMove queues a pointer move with the button held down. Use this
// between InjectPress and InjectRelease to simulate a drag.
func (c *Canvas) InjectMove(x, y float64, mods ...KeyModifiers) {
	c.injectQueue = append(c.injectQueue, syntheticEvent{
		kind: syntheticPointer, at: ScreenPoint{x, y},
		pressed: true, button: MouseButtonLeft, modifiers: orMods(mods),
	})
}

// InjectHover queues a pointer move with no button held.
func (c *Canvas) InjectHover(x, y float64, mods ...KeyModifiers) {
	c.injectQueue = append(c.injectQueue, syntheticEvent{
		kind: syntheticPointer, at: ScreenPoint{x, y},
		pressed: false, button: MouseButtonLeft, modifiers: orMods(mods),
	})
}

// InjectRelease queues a pointer release at the given screen coordinates.
func (c *Canvas) InjectRelease(x, y float64, mods ...KeyModifiers) {
	c.injectQueue = append(c.injectQueue, syntheticEvent{
		kind: syntheticPointer, at: ScreenPoint{x, y},
		pressed: false, button: MouseButtonLeft, modifiers: orMods(mods),
	})
}

// InjectClick queues a press followed by a release at the same screen
// coordinates. Consumes two frames.
func (c *Canvas) InjectClick(x, y float64, mods ...KeyModifiers) {
	c.InjectPress(x, y, mods...)
	c.InjectRelease(x, y, mods...)
}

// InjectDrag queues a full drag sequence: press at (fromX, fromY),
// linearly interpolated moves over frames-2 intermediate frames, and
// release at (toX, toY). Minimum frames is 2 (press + release).
func (c *Canvas) InjectDrag(fromX, fromY, toX, toY float64, frames int, mods ...KeyModifiers) {
	if frames < 2 {
		frames = 2
	}
	c.InjectPress(fromX, fromY, mods...)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		c.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t, mods...)
	}
	c.InjectRelease(toX, toY, mods...)
}

// InjectWheel queues a wheel event at the given screen coordinates.
// dy > 0 scrolls down.
func (c *Canvas) InjectWheel(x, y, dy float64, mods ...KeyModifiers) {
	c.injectQueue = append(c.injectQueue, syntheticEvent{
		kind: syntheticWheel, at: ScreenPoint{x, y}, wheelDY: dy, modifiers: orMods(mods),
	})
}

// InjectKey queues a key press.
func (c *Canvas) InjectKey(k ebiten.Key, mods ...KeyModifiers) {
	c.injectQueue = append(c.injectQueue, syntheticEvent{
		kind: syntheticKey, key: k, modifiers: orMods(mods),
	})
}

func orMods(mods []KeyModifiers) KeyModifiers {
	var m KeyModifiers
	for _, x := range mods {
		m |= x
	}
	return m
}

// processInjectedInput pops one event from the inject queue and feeds it
// through the same paths as real input. Returns true if an event was
// consumed (real input is skipped for that frame).
func (c *Canvas) processInjectedInput(mods KeyModifiers) bool {
	if len(c.injectQueue) == 0 {
		return false
	}
	evt := c.injectQueue[0]
	copy(c.injectQueue, c.injectQueue[1:])
	c.injectQueue = c.injectQueue[:len(c.injectQueue)-1]

	mods |= evt.modifiers
	switch evt.kind {
	case syntheticPointer:
		c.processPointer(0, evt.at, evt.pressed, evt.button, mods)
	case syntheticWheel:
		c.processWheel(evt.at, 0, evt.wheelDY, mods)
	case syntheticKey:
		c.dispatchKey(evt.key, mods)
	}
	return true
}

// drainInjected processes every queued synthetic event immediately, without
// polling real input or advancing frames.
func (c *Canvas) drainInjected() {
	for len(c.injectQueue) > 0 {
		c.processInjectedInput(0)
	}
}
