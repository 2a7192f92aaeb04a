package trellis

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/colorm"
)

// BackgroundFilters adjusts how the background image is drawn. The zero
// value draws the image unchanged except that Contrast 0 is treated as 1.
type BackgroundFilters struct {
	// Contrast scales color distance from mid-gray: 1 is normal, values
	// between 0 and 1 flatten toward gray, >1 increases contrast. 0 means
	// unset and draws like 1.
	Contrast float64 `json:"contrast"`
	// Inverted inverts the RGB channels after the contrast adjustment.
	Inverted bool `json:"inverted"`
}

// IsIdentity reports whether the filters leave the image unchanged.
func (f BackgroundFilters) IsIdentity() bool {
	return (f.Contrast == 0 || f.Contrast == 1) && !f.Inverted
}

// colorMatrix returns the 4x5 row-major color matrix for the filters:
// [R_r, R_g, R_b, R_a, R_offset, G_r, ...]. Contrast is applied first.
func (f BackgroundFilters) colorMatrix() [20]float64 {
	c := f.Contrast
	if c == 0 {
		c = 1
	}
	t := (1.0 - c) / 2.0
	m := [20]float64{
		c, 0, 0, 0, t,
		0, c, 0, 0, t,
		0, 0, c, 0, t,
		0, 0, 0, 1, 0,
	}
	if f.Inverted {
		// x' = 1 - (c*x + t)
		for row := 0; row < 3; row++ {
			for col := 0; col < 5; col++ {
				m[row*5+col] = -m[row*5+col]
			}
			m[row*5+4]++
		}
	}
	return m
}

// colorM converts the filter matrix for colorm draw calls.
func (f BackgroundFilters) colorM() colorm.ColorM {
	var cm colorm.ColorM
	m := f.colorMatrix()
	for row := 0; row < 4; row++ {
		for col := 0; col < 5; col++ {
			cm.SetElement(row, col, m[row*5+col])
		}
	}
	return cm
}

// drawFiltered draws img onto dst through geo with the filters applied.
func drawFiltered(dst, img *ebiten.Image, geo ebiten.GeoM, f BackgroundFilters) {
	if f.IsIdentity() {
		var op ebiten.DrawImageOptions
		op.GeoM = geo
		op.Filter = ebiten.FilterLinear
		dst.DrawImage(img, &op)
		return
	}
	var op colorm.DrawImageOptions
	op.GeoM = geo
	op.Filter = ebiten.FilterLinear
	colorm.DrawImage(dst, img, f.colorM(), &op)
}
