package trellis

import (
	"bytes"
	"context"
	"time"
)

// History defaults.
const (
	DefaultHistorySize     = 50
	DefaultHistoryDebounce = 300 * time.Millisecond
)

// HistoryOptions configures NewHistory. Zero fields take the package
// defaults.
type HistoryOptions struct {
	MaxSize  int
	Debounce time.Duration
	// Now is the clock used for debouncing. Nil means time.Now.
	Now func() time.Time
	// Save configures the snapshot encoding.
	Save SaveOptions
}

func (o HistoryOptions) withDefaults() HistoryOptions {
	if o.MaxSize <= 0 {
		o.MaxSize = DefaultHistorySize
	}
	if o.Debounce <= 0 {
		o.Debounce = DefaultHistoryDebounce
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// History records serialized snapshots of a canvas for undo and redo.
// Object changes are coalesced: a snapshot is taken once no change has
// arrived for the debounce interval, checked on every frame.
type History struct {
	canvas    *Canvas
	opts      HistoryOptions
	snapshots [][]byte
	index     int

	pending  bool
	deadline time.Time
	// isUndoRedo suppresses capture while a snapshot is being loaded.
	isUndoRedo bool

	handles []CallbackHandle
}

// NewHistory starts recording c. The current scene is the first snapshot.
func NewHistory(c *Canvas, opts HistoryOptions) *History {
	if c == nil {
		panic("trellis: NewHistory requires a canvas")
	}
	h := &History{canvas: c, opts: opts.withDefaults(), index: -1}
	changed := func(ObjectContext) { h.Capture() }
	h.handles = []CallbackHandle{
		c.OnObjectAdded(changed),
		c.OnObjectRemoved(changed),
		c.OnObjectModified(changed),
		c.OnFrame(func(FrameContext) { h.tick() }),
	}
	h.capture()
	return h
}

// Capture schedules a snapshot after the debounce interval. Call it after
// changes the canvas does not report as object events, such as background
// edits.
func (h *History) Capture() {
	if h.isUndoRedo {
		return
	}
	h.pending = true
	h.deadline = h.opts.Now().Add(h.opts.Debounce)
}

func (h *History) tick() {
	if h.pending && !h.opts.Now().Before(h.deadline) {
		h.capture()
	}
}

// Flush takes the pending snapshot now, if there is one.
func (h *History) Flush() {
	if h.pending {
		h.capture()
	}
}

func (h *History) capture() {
	h.pending = false
	data, err := SerializeCanvas(h.canvas, h.opts.Save)
	if err != nil {
		Logger().Warn("history snapshot failed", "error", err)
		return
	}
	if h.index >= 0 && bytes.Equal(h.snapshots[h.index], data) {
		return
	}
	// A new snapshot after an undo discards the redo branch.
	h.snapshots = append(h.snapshots[:h.index+1], data)
	if over := len(h.snapshots) - h.opts.MaxSize; over > 0 {
		h.snapshots = append(h.snapshots[:0:0], h.snapshots[over:]...)
	}
	h.index = len(h.snapshots) - 1
	Logger().Debug("history snapshot", "index", h.index, "len", len(h.snapshots))
}

// CanUndo reports whether an earlier snapshot exists.
func (h *History) CanUndo() bool {
	return h.index > 0 || (h.pending && h.index >= 0)
}

// CanRedo reports whether a later snapshot exists.
func (h *History) CanRedo() bool {
	return !h.pending && h.index < len(h.snapshots)-1
}

// Undo restores the previous snapshot. A pending change is captured first
// so it can be redone.
func (h *History) Undo(ctx context.Context) error {
	h.Flush()
	if h.index <= 0 {
		return nil
	}
	return h.restore(ctx, h.index-1)
}

// Redo restores the next snapshot.
func (h *History) Redo(ctx context.Context) error {
	if !h.CanRedo() {
		return nil
	}
	return h.restore(ctx, h.index+1)
}

func (h *History) restore(ctx context.Context, i int) error {
	h.isUndoRedo = true
	defer func() { h.isUndoRedo = false }()
	if _, err := LoadCanvas(ctx, h.canvas, h.snapshots[i], LoadOptions{}); err != nil {
		return err
	}
	h.index = i
	h.pending = false
	return nil
}

// Len returns the number of stored snapshots.
func (h *History) Len() int {
	return len(h.snapshots)
}

// Index returns the position of the current snapshot.
func (h *History) Index() int {
	return h.index
}

// Clear drops every snapshot and records the current scene as the only one.
func (h *History) Clear() {
	h.snapshots = nil
	h.index = -1
	h.pending = false
	h.capture()
}

// Dispose stops recording.
func (h *History) Dispose() {
	removeAll(h.handles)
	h.handles = nil
	h.pending = false
}
