// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package debugpreview renders classified output and tile-statistics
// rasters to colorized PNG images for offline debugging, without
// constituting the interactive visualization the core explicitly excludes.
package debugpreview

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"

	"github.com/mlnoga/floodsar/internal/raster"
)

// ClassColors maps the three classification values to preview colors:
// nodata is opaque black, land is a muted green, water is blue.
var ClassColors = map[raster.ClassValue]colorful.Color{
	raster.NoData: colorful.Color{R: 0, G: 0, B: 0},
	raster.Land:   colorful.Color{R: 0.36, G: 0.55, B: 0.27},
	raster.Water:  colorful.Color{R: 0.16, G: 0.40, B: 0.75},
}

// RenderClassRaster renders a classified raster as a flat-colored RGBA
// image using ClassColors.
func RenderClassRaster(r *raster.ClassRaster) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, int(r.Width), int(r.Height)))
	for y := int32(0); y < r.Height; y++ {
		for x := int32(0); x < r.Width; x++ {
			c, ok := ClassColors[r.Data[r.Index(x, y)]]
			if !ok {
				c = ClassColors[raster.NoData]
			}
			img.Set(int(x), int(y), c)
		}
	}
	return img
}

// RenderFloatRaster renders a FloatRaster as a color-ramp RGBA image,
// linearly mapping [min,max] onto a blue-to-red colorful.Color gradient
// blended in Lab space.
// Invalid pixels render as opaque black.
func RenderFloatRaster(r *raster.FloatRaster, min, max float32) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, int(r.Width), int(r.Height)))
	span := max - min
	for i, v := range r.Data {
		x, y := int(int32(i)%r.Width), int(int32(i)/r.Width)
		if !r.Valid[i] || span <= 0 {
			img.Set(x, y, color.Black)
			continue
		}
		t := (v - min) / span
		if t < 0 {
			t = 0
		}
		if t > 1 {
			t = 1
		}
		low := colorful.Color{R: 0.1, G: 0.1, B: 0.6}
		high := colorful.Color{R: 0.8, G: 0.1, B: 0.1}
		img.Set(x, y, low.BlendLab(high, float64(t)))
	}
	return img
}

// Scale resizes src to the given width/height using bilinear
// interpolation, for shrinking large debug previews to a thumbnail size.
func Scale(src image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}

// WritePNG encodes img as PNG to w.
func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}
