package trellis

import "github.com/hajimehoshi/ebiten/v2"

// PointerContext carries pointer event data. Scene and Screen describe the
// same position in both coordinate spaces.
type PointerContext struct {
	Target    *Object // topmost evented object under the pointer, or nil
	Scene     ScenePoint
	Screen    ScreenPoint
	Button    MouseButton
	PointerID int
	Modifiers KeyModifiers
	// Transform is the gesture in progress, or nil.
	Transform *Transform
}

// WheelContext carries scroll wheel data. DeltaY > 0 scrolls down.
type WheelContext struct {
	Scene          ScenePoint
	Screen         ScreenPoint
	DeltaX, DeltaY float64
	Modifiers      KeyModifiers
}

// PinchContext carries two-finger pinch data. Center is the midpoint of the
// two touches relative to the canvas; Distance and PrevDistance are the
// touch separations this frame and last frame, in pixels.
type PinchContext struct {
	Center       ScreenPoint
	Distance     float64
	PrevDistance float64
	// Scale is Distance relative to the separation when the pinch began.
	Scale float64
}

// KeyContext carries a key press. Capture-phase handlers run before
// bubble-phase handlers and may stop the event from reaching them.
type KeyContext struct {
	Key       ebiten.Key
	Modifiers KeyModifiers
	stopped   bool
}

// StopPropagation prevents later handlers from seeing the event.
func (k *KeyContext) StopPropagation() {
	k.stopped = true
}

// Stopped reports whether a handler stopped propagation.
func (k *KeyContext) Stopped() bool {
	return k.stopped
}

// ObjectContext carries an object lifecycle event.
type ObjectContext struct {
	Object *Object
}

// TransformContext carries a move or scale gesture update. The canvas has
// already applied the pointer's change to Target when handlers run;
// handlers may adjust Target further.
type TransformContext struct {
	Target    *Object
	Transform *Transform
	Pointer   ScenePoint
	Modifiers KeyModifiers
}

// RenderContext is passed to before-render and after-render handlers.
type RenderContext struct {
	Canvas *Canvas
	Layer  GuideLayer
}

// FrameContext is passed to frame handlers once per Advance.
type FrameContext struct {
	DT float64 // seconds
}

// --- Handler registry ---

type handler[T any] struct {
	id uint32
	fn func(T)
}

// handlerList keeps registration order. remove never edits the backing
// array in place, so a handler may unregister itself while firing.
type handlerList[T any] []handler[T]

func (l handlerList[T]) without(id uint32) handlerList[T] {
	out := make(handlerList[T], 0, len(l))
	for _, h := range l {
		if h.id != id {
			out = append(out, h)
		}
	}
	return out
}

func (l handlerList[T]) fire(ctx T) {
	for _, h := range l {
		h.fn(ctx)
	}
}

type handlerRegistry struct {
	pointerDown     handlerList[PointerContext]
	pointerMove     handlerList[PointerContext]
	pointerUp       handlerList[PointerContext]
	wheel           handlerList[WheelContext]
	pinch           handlerList[PinchContext]
	keyCapture      handlerList[*KeyContext]
	keyBubble       handlerList[*KeyContext]
	objectAdded     handlerList[ObjectContext]
	objectRemoved   handlerList[ObjectContext]
	objectModified  handlerList[ObjectContext]
	objectMoving    handlerList[TransformContext]
	objectScaling   handlerList[TransformContext]
	beforeRender    handlerList[RenderContext]
	afterRender     handlerList[RenderContext]
	viewportChanged handlerList[Matrix]
	frame           handlerList[FrameContext]
	nextID          uint32
}

// CallbackHandle allows removing a registered canvas callback.
type CallbackHandle struct {
	id      uint32
	reg     *handlerRegistry
	event   EventType
	capture bool
}

// Remove unregisters this callback so it no longer fires. Calling Remove
// on the zero CallbackHandle or twice is a no-op.
func (h CallbackHandle) Remove() {
	r := h.reg
	if r == nil {
		return
	}
	switch h.event {
	case EventPointerDown:
		r.pointerDown = r.pointerDown.without(h.id)
	case EventPointerMove:
		r.pointerMove = r.pointerMove.without(h.id)
	case EventPointerUp:
		r.pointerUp = r.pointerUp.without(h.id)
	case EventWheel:
		r.wheel = r.wheel.without(h.id)
	case EventPinch:
		r.pinch = r.pinch.without(h.id)
	case EventKeyDown:
		if h.capture {
			r.keyCapture = r.keyCapture.without(h.id)
		} else {
			r.keyBubble = r.keyBubble.without(h.id)
		}
	case EventObjectAdded:
		r.objectAdded = r.objectAdded.without(h.id)
	case EventObjectRemoved:
		r.objectRemoved = r.objectRemoved.without(h.id)
	case EventObjectModified:
		r.objectModified = r.objectModified.without(h.id)
	case EventObjectMoving:
		r.objectMoving = r.objectMoving.without(h.id)
	case EventObjectScaling:
		r.objectScaling = r.objectScaling.without(h.id)
	case EventBeforeRender:
		r.beforeRender = r.beforeRender.without(h.id)
	case EventAfterRender:
		r.afterRender = r.afterRender.without(h.id)
	case EventViewportChanged:
		r.viewportChanged = r.viewportChanged.without(h.id)
	case EventFrame:
		r.frame = r.frame.without(h.id)
	}
}

// removeAll removes every handle in hs. Components keep the handles they
// register and call this from Dispose.
func removeAll(hs []CallbackHandle) {
	for _, h := range hs {
		h.Remove()
	}
}

func (c *Canvas) handle(event EventType) CallbackHandle {
	c.handlers.nextID++
	return CallbackHandle{id: c.handlers.nextID, reg: &c.handlers, event: event}
}

// --- Canvas-level event registration ---

// OnPointerDown registers a callback for pointer presses.
func (c *Canvas) OnPointerDown(fn func(PointerContext)) CallbackHandle {
	h := c.handle(EventPointerDown)
	c.handlers.pointerDown = append(c.handlers.pointerDown, handler[PointerContext]{h.id, fn})
	return h
}

// OnPointerMove registers a callback for pointer movement, pressed or not.
func (c *Canvas) OnPointerMove(fn func(PointerContext)) CallbackHandle {
	h := c.handle(EventPointerMove)
	c.handlers.pointerMove = append(c.handlers.pointerMove, handler[PointerContext]{h.id, fn})
	return h
}

// OnPointerUp registers a callback for pointer releases.
func (c *Canvas) OnPointerUp(fn func(PointerContext)) CallbackHandle {
	h := c.handle(EventPointerUp)
	c.handlers.pointerUp = append(c.handlers.pointerUp, handler[PointerContext]{h.id, fn})
	return h
}

// OnWheel registers a callback for scroll wheel movement.
func (c *Canvas) OnWheel(fn func(WheelContext)) CallbackHandle {
	h := c.handle(EventWheel)
	c.handlers.wheel = append(c.handlers.wheel, handler[WheelContext]{h.id, fn})
	return h
}

// OnPinch registers a callback for two-finger pinch updates.
func (c *Canvas) OnPinch(fn func(PinchContext)) CallbackHandle {
	h := c.handle(EventPinch)
	c.handlers.pinch = append(c.handlers.pinch, handler[PinchContext]{h.id, fn})
	return h
}

// OnKeyDown registers a bubble-phase key handler.
func (c *Canvas) OnKeyDown(fn func(*KeyContext)) CallbackHandle {
	h := c.handle(EventKeyDown)
	c.handlers.keyBubble = append(c.handlers.keyBubble, handler[*KeyContext]{h.id, fn})
	return h
}

// OnKeyDownCapture registers a capture-phase key handler. Capture handlers
// run before every bubble handler, including the canvas's default
// delete-key handling.
func (c *Canvas) OnKeyDownCapture(fn func(*KeyContext)) CallbackHandle {
	h := c.handle(EventKeyDown)
	h.capture = true
	c.handlers.keyCapture = append(c.handlers.keyCapture, handler[*KeyContext]{h.id, fn})
	return h
}

// OnObjectAdded registers a callback for objects joining the canvas.
func (c *Canvas) OnObjectAdded(fn func(ObjectContext)) CallbackHandle {
	h := c.handle(EventObjectAdded)
	c.handlers.objectAdded = append(c.handlers.objectAdded, handler[ObjectContext]{h.id, fn})
	return h
}

// OnObjectRemoved registers a callback for objects leaving the canvas.
func (c *Canvas) OnObjectRemoved(fn func(ObjectContext)) CallbackHandle {
	h := c.handle(EventObjectRemoved)
	c.handlers.objectRemoved = append(c.handlers.objectRemoved, handler[ObjectContext]{h.id, fn})
	return h
}

// OnObjectModified registers a callback for finished transform gestures and
// explicit Canvas.NotifyModified calls.
func (c *Canvas) OnObjectModified(fn func(ObjectContext)) CallbackHandle {
	h := c.handle(EventObjectModified)
	c.handlers.objectModified = append(c.handlers.objectModified, handler[ObjectContext]{h.id, fn})
	return h
}

// OnObjectMoving registers a callback for drag gesture updates.
func (c *Canvas) OnObjectMoving(fn func(TransformContext)) CallbackHandle {
	h := c.handle(EventObjectMoving)
	c.handlers.objectMoving = append(c.handlers.objectMoving, handler[TransformContext]{h.id, fn})
	return h
}

// OnObjectScaling registers a callback for handle gesture updates.
func (c *Canvas) OnObjectScaling(fn func(TransformContext)) CallbackHandle {
	h := c.handle(EventObjectScaling)
	c.handlers.objectScaling = append(c.handlers.objectScaling, handler[TransformContext]{h.id, fn})
	return h
}

// OnBeforeRender registers a callback run at the start of Draw.
func (c *Canvas) OnBeforeRender(fn func(RenderContext)) CallbackHandle {
	h := c.handle(EventBeforeRender)
	c.handlers.beforeRender = append(c.handlers.beforeRender, handler[RenderContext]{h.id, fn})
	return h
}

// OnAfterRender registers a callback run after the main layer is drawn.
func (c *Canvas) OnAfterRender(fn func(RenderContext)) CallbackHandle {
	h := c.handle(EventAfterRender)
	c.handlers.afterRender = append(c.handlers.afterRender, handler[RenderContext]{h.id, fn})
	return h
}

// OnViewportChanged registers a callback for viewport transform changes.
func (c *Canvas) OnViewportChanged(fn func(Matrix)) CallbackHandle {
	h := c.handle(EventViewportChanged)
	c.handlers.viewportChanged = append(c.handlers.viewportChanged, handler[Matrix]{h.id, fn})
	return h
}

// OnFrame registers a callback run once per Advance.
func (c *Canvas) OnFrame(fn func(FrameContext)) CallbackHandle {
	h := c.handle(EventFrame)
	c.handlers.frame = append(c.handlers.frame, handler[FrameContext]{h.id, fn})
	return h
}

// --- Dispatch ---

// dispatchKey runs capture handlers, then bubble handlers, honoring
// StopPropagation between and within phases.
func (c *Canvas) dispatchKey(k ebiten.Key, mods KeyModifiers) {
	ctx := &KeyContext{Key: k, Modifiers: mods}
	for _, h := range c.handlers.keyCapture {
		h.fn(ctx)
		if ctx.stopped {
			return
		}
	}
	for _, h := range c.handlers.keyBubble {
		h.fn(ctx)
		if ctx.stopped {
			return
		}
	}
	c.defaultKeyHandler(ctx)
}

func (c *Canvas) fireObjectEvent(event EventType, o *Object) {
	ctx := ObjectContext{Object: o}
	switch event {
	case EventObjectAdded:
		c.handlers.objectAdded.fire(ctx)
	case EventObjectRemoved:
		c.handlers.objectRemoved.fire(ctx)
	case EventObjectModified:
		c.handlers.objectModified.fire(ctx)
	}
	c.emitStoreEvent(event, o)
}
