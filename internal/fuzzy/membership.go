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

// Package fuzzy implements the piecewise-quadratic Z-shape and S-shape
// membership functions used to turn backscatter, elevation, slope and blob
// size into per-pixel [0,1] evidence of water, plus the veto-mean fusion
// that combines the four channels.
package fuzzy

import "github.com/mlnoga/floodsar/internal/raster"

// Z evaluates the Z-shape (high-to-low) membership function at v, for
// parameters a < b: 1 below a, a smooth quadratic descent through the
// midpoint c=(a+b)/2, and 0 at and above b.
func Z(v, a, b float32) float32 {
	if v < a {
		return 1
	}
	if v >= b {
		return 0
	}
	d := b - a
	c := (a + b) / 2
	if v < c {
		t := (v - a) / d
		return 1 - 2*t*t
	}
	t := (v - b) / d
	return 2 * t * t
}

// S evaluates the S-shape (low-to-high) membership function at v: the
// mirror image of Z, 0 below a and 1 at and above b.
func S(v, a, b float32) float32 {
	return 1 - Z(v, a, b)
}

// EvalRaster applies fn to every valid pixel of src, propagating
// invalidity unchanged.
func EvalRaster(src *raster.FloatRaster, fn func(v float32) float32) *raster.FloatRaster {
	out := raster.NewFloatRaster(src.Width, src.Height)
	for i, v := range src.Data {
		if !src.Valid[i] {
			continue
		}
		out.Data[i] = raster.Clamp01(fn(v))
		out.Valid[i] = true
	}
	return out
}

// ZRaster applies the Z-shape membership function with parameters (a, b) to
// every valid pixel of src.
func ZRaster(src *raster.FloatRaster, a, b float32) *raster.FloatRaster {
	return EvalRaster(src, func(v float32) float32 { return Z(v, a, b) })
}

// SRaster applies the S-shape membership function with parameters (a, b) to
// every valid pixel of src.
func SRaster(src *raster.FloatRaster, a, b float32) *raster.FloatRaster {
	return EvalRaster(src, func(v float32) float32 { return S(v, a, b) })
}

// VetoMean fuses the four fuzzy channels per pixel: if any channel is
// exactly 0, the output is 0; otherwise the output is the arithmetic mean
// of the four. A pixel invalid in any channel is invalid in the output.
func VetoMean(channels ...*raster.FloatRaster) *raster.FloatRaster {
	if len(channels) == 0 {
		return raster.NewFloatRaster(0, 0)
	}
	width, height := channels[0].Width, channels[0].Height
	out := raster.NewFloatRaster(width, height)

	for i := range out.Data {
		valid := true
		veto := false
		var sum float32
		for _, ch := range channels {
			if !ch.Valid[i] {
				valid = false
				break
			}
			if ch.Data[i] == 0 {
				veto = true
			}
			sum += ch.Data[i]
		}
		if !valid {
			continue
		}
		out.Valid[i] = true
		if veto {
			out.Data[i] = 0
		} else {
			out.Data[i] = sum / float32(len(channels))
		}
	}
	return out
}
