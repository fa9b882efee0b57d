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

// Package dem resamples a digital elevation model into image-pixel space
// and derives the surface-normal and slope-angle rasters that feed the
// elevation and slope fuzzy channels.
package dem

import (
	"math"

	"github.com/mlnoga/floodsar/internal/raster"
	"github.com/mlnoga/floodsar/internal/statkernel"
)

// Resample bilinear-resamples dem (in DEM-pixel space) into a destWidth x
// destHeight raster in image-pixel space, using transform to map each
// destination pixel's center into DEM-pixel coordinates. Out-of-bounds or
// invalid source samples propagate as invalid destination pixels.
func Resample(demRaster *raster.FloatRaster, transform raster.CoordTransform, destWidth, destHeight int32) *raster.FloatRaster {
	out := raster.NewFloatRaster(destWidth, destHeight)
	for y := int32(0); y < destHeight; y++ {
		for x := int32(0); x < destWidth; x++ {
			demPt := transform.Forward(raster.Point2D{X: float32(x) + 0.5, Y: float32(y) + 0.5})
			v, ok := bilinear(demRaster, demPt.X-0.5, demPt.Y-0.5)
			if ok {
				out.Set(x, y, v, true)
			}
		}
	}
	return out
}

// bilinear samples demRaster at fractional pixel coordinates (fx, fy),
// returning ok=false if any of the four surrounding samples are
// out-of-bounds or invalid.
func bilinear(r *raster.FloatRaster, fx, fy float32) (float32, bool) {
	x0 := int32(math.Floor(float64(fx)))
	y0 := int32(math.Floor(float64(fy)))
	x1, y1 := x0+1, y0+1
	if x0 < 0 || y0 < 0 || x1 >= r.Width || y1 >= r.Height {
		return 0, false
	}
	v00, ok00 := r.At(x0, y0)
	v10, ok10 := r.At(x1, y0)
	v01, ok01 := r.At(x0, y1)
	v11, ok11 := r.At(x1, y1)
	if !ok00 || !ok10 || !ok01 || !ok11 {
		return 0, false
	}
	tx := fx - float32(x0)
	ty := fy - float32(y0)
	top := v00 + (v10-v00)*tx
	bottom := v01 + (v11-v01)*tx
	return top + (bottom-top)*ty, true
}

// SurfaceNormals computes per-pixel unit surface normals of dem via
// central-difference partial derivatives scaled by unit pixel spacing
// (dx, dy). Border pixels (where a central difference is unavailable) are
// invalid, as is any pixel whose 4-neighborhood includes an invalid sample.
func SurfaceNormals(demRaster *raster.FloatRaster, dx, dy float32) (nx, ny, nz *raster.FloatRaster) {
	w, h := demRaster.Width, demRaster.Height
	nx = raster.NewFloatRaster(w, h)
	ny = raster.NewFloatRaster(w, h)
	nz = raster.NewFloatRaster(w, h)

	for y := int32(1); y < h-1; y++ {
		for x := int32(1); x < w-1; x++ {
			left, okL := demRaster.At(x-1, y)
			right, okR := demRaster.At(x+1, y)
			up, okU := demRaster.At(x, y-1)
			down, okD := demRaster.At(x, y+1)
			if !okL || !okR || !okU || !okD {
				continue
			}
			dzdx := (right - left) / (2 * dx)
			dzdy := (down - up) / (2 * dy)

			vx, vy, vz := -dzdx, -dzdy, float32(1.0)
			length := float32(math.Sqrt(float64(vx*vx + vy*vy + vz*vz)))
			if length == 0 {
				continue
			}
			nx.Set(x, y, vx/length, true)
			ny.Set(x, y, vy/length, true)
			nz.Set(x, y, vz/length, true)
		}
	}
	return nx, ny, nz
}

// SlopeDegrees computes slope angle in degrees from a unit surface normal's
// z-component: acos(|nz|)*180/pi. Invalid where nz is invalid.
func SlopeDegrees(nz *raster.FloatRaster) *raster.FloatRaster {
	out := raster.NewFloatRaster(nz.Width, nz.Height)
	for i, v := range nz.Data {
		if !nz.Valid[i] {
			continue
		}
		av := v
		if av < 0 {
			av = -av
		}
		if av > 1 {
			av = 1
		}
		deg := float32(math.Acos(float64(av)) * 180 / math.Pi)
		out.Data[i] = deg
		out.Valid[i] = true
	}
	return out
}

// MeanAndStdDevUnderMask computes the sample mean and population stddev of
// dem values at pixels where mask indicates water, subsampling every
// subsampleFactor-th pixel in each dimension for performance on large
// rasters. ok is false if no water pixel was sampled.
func MeanAndStdDevUnderMask(demRaster *raster.FloatRaster, mask *raster.ClassRaster, subsampleFactor int32) (mean, stddev float32, ok bool) {
	if subsampleFactor <= 0 {
		subsampleFactor = 1
	}
	var samples []float32
	for y := int32(0); y < demRaster.Height; y += subsampleFactor {
		for x := int32(0); x < demRaster.Width; x += subsampleFactor {
			if mask.Data[mask.Index(x, y)] != raster.Water {
				continue
			}
			v, valid := demRaster.At(x, y)
			if !valid {
				continue
			}
			samples = append(samples, v)
		}
	}
	if len(samples) == 0 {
		return 0, 0, false
	}
	validFlags := make([]bool, len(samples))
	for i := range validFlags {
		validFlags[i] = true
	}
	mean, _ = statkernel.Mean(samples, validFlags)
	stddev, _ = statkernel.StdDev(samples, validFlags)
	return mean, stddev, true
}
