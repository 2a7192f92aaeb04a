package trellis

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig configures Run.
type RunConfig struct {
	Title         string
	Width, Height int
	// ShowFPS draws an FPS/TPS counter over the canvas.
	ShowFPS bool
	// Resizable lets the window resize; the canvas follows its size.
	Resizable bool
	// Update runs once per tick after the canvas updated. Returning an
	// error stops the game loop.
	Update func() error
}

// game adapts a Canvas to ebiten.Game.
type game struct {
	canvas *Canvas
	cfg    RunConfig
	fps    *fpsOverlay
}

func (g *game) Update() error {
	g.canvas.Update()
	if g.fps != nil {
		g.fps.update(1.0 / float64(ebiten.TPS()))
	}
	if g.cfg.Update != nil {
		return g.cfg.Update()
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.canvas.Draw(screen)
	if g.fps != nil {
		g.fps.draw(screen)
	}
}

func (g *game) Layout(w, h int) (int, int) {
	if float64(w) != g.canvas.width || float64(h) != g.canvas.height {
		g.canvas.SetDimensions(float64(w), float64(h))
	}
	return w, h
}

// Run opens a window and runs c until the window closes or cfg.Update
// returns an error. For full control implement ebiten.Game yourself and
// call Canvas.Update and Canvas.Draw.
func Run(c *Canvas, cfg RunConfig) error {
	if cfg.Width <= 0 {
		cfg.Width = int(c.width)
	}
	if cfg.Height <= 0 {
		cfg.Height = int(c.height)
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	g := &game{canvas: c, cfg: cfg}
	if cfg.ShowFPS {
		g.fps = newFPSOverlay()
	}
	return ebiten.RunGame(g)
}
