// Package trellis is a 2D scene-editing toolkit for [Ebitengine]: object
// alignment and snapping, cursor snapping, viewport pan and zoom, scene
// serialization, undo history, background images and drawing modes.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	canvas := trellis.NewCanvas(1280, 800)
//	trellis.NewViewportController(canvas, trellis.ViewportOptions{})
//	trellis.NewAlignmentGuides(canvas, trellis.AlignmentOptions{})
//	canvas.Add(trellis.NewRect(120, 80))
//	trellis.Run(canvas, trellis.RunConfig{Title: "Editor"})
//
// For full control, implement [ebiten.Game] yourself and call
// [Canvas.Update] and [Canvas.Draw] directly.
//
// # Coordinate spaces
//
// Every position is typed by the space it lives in. [ScenePoint] is world
// space, [ScreenPoint] is canvas pixels after the viewport transform and
// [LocalPoint] is an object's own frame. Converting between them is always
// an explicit call: [Canvas.SceneToScreen], [Canvas.ScreenToScene],
// [Object.LocalToScene], [Object.SceneToLocal].
//
// Live objects use the center origin convention: Left/Top is the object's
// geometric center. Documents written with [SaveOptions.CornerOrigins] use
// the top-left corner instead; [LoadCanvas] accepts both.
//
// # Snapping
//
// [SnapCursorPoint] snaps one point per axis to the nearest target within a
// screen-pixel margin. [AlignmentGuides] does the same for whole objects
// while they are dragged or scaled, moving the object onto the match and
// drawing guidelines on the canvas's [GuideLayer]. Snap points come from a
// [SnapPointRegistry]; register an extractor to override the built-in
// shapes.
//
// # Threading
//
// A Canvas and everything attached to it is single-threaded. Call every
// method from the goroutine running the game loop.
//
// # Logging
//
// The package is silent by default. Pass a [log/slog.Logger] to [SetLogger]
// to see debug records for serialization, history and mode changes.
//
// [Ebitengine]: https://ebitengine.org
package trellis
