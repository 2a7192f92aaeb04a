package trellis

// ClickCreateOptions configures StartClickCreate.
type ClickCreateOptions struct {
	ModeOptions
	// Factory builds the object to place. It is centered on the snapped
	// click point after creation. Required.
	Factory func() *Object
	// OnCreate runs after the object was added.
	OnCreate func(o *Object)
	// Once exits the mode after the first object.
	Once bool
}

// ClickCreateMode places a new object at each snapped click.
type ClickCreateMode struct {
	modeBase
	opts ClickCreateOptions
}

// StartClickCreate starts click-to-create on c.
func StartClickCreate(c *Canvas, opts ClickCreateOptions) *ClickCreateMode {
	if opts.Factory == nil {
		panic("trellis: StartClickCreate requires a factory")
	}
	m := &ClickCreateMode{opts: opts}
	m.start(c, "click-create", opts.ModeOptions)
	m.handles = append(m.handles,
		c.OnPointerMove(func(ctx PointerContext) { m.snapPoint(ctx.Scene) }),
		c.OnPointerDown(m.onPointerDown),
	)
	return m
}

func (m *ClickCreateMode) onPointerDown(ctx PointerContext) {
	if m.ignore(ctx) {
		return
	}
	p := m.snapPoint(ctx.Scene)
	o := m.opts.Factory()
	if o == nil {
		return
	}
	ApplyObjectDefaults(m.canvas, o)
	o.SetCenterPoint(p)
	m.canvas.Add(o)
	if m.opts.OnCreate != nil {
		m.opts.OnCreate(o)
	}
	if m.opts.Once {
		m.Exit()
	}
}

// Exit stops the mode and clears its guidelines.
func (m *ClickCreateMode) Exit() {
	m.exit()
}
