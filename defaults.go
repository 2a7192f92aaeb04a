package trellis

import "slices"

var edgeControls = []Control{ControlML, ControlMR, ControlMT, ControlMB}

// ApplyObjectDefaults reapplies the derived state that documents do not
// carry: the canvas's control styling and the locks each shape needs.
// Circles scale uniformly with corner handles only and keep radii that
// span their box; polygons cannot be flipped by scaling.
func ApplyObjectDefaults(c *Canvas, o *Object) {
	style := c.ControlStyle
	style.HiddenControls = slices.Clone(c.ControlStyle.HiddenControls)
	o.Controls = style

	switch {
	case o.IsCircle():
		o.Locks.UniformScale = true
		for _, ctl := range edgeControls {
			if !slices.Contains(o.Controls.HiddenControls, ctl) {
				o.Controls.HiddenControls = append(o.Controls.HiddenControls, ctl)
			}
		}
		o.RX, o.RY = o.Width/2, o.Height/2
	case o.Kind == KindPolygon:
		o.Locks.ScalingFlip = true
	}
}
