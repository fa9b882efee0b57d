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

package threshold

import (
	"math"

	"github.com/mlnoga/floodsar/internal/raster"
	"github.com/mlnoga/floodsar/internal/statkernel"
)

// NumAggregatorBins is the fixed histogram resolution used by the global
// threshold aggregator for each selected tile, per source behavior.
const NumAggregatorBins = 255

// Result is the outcome of aggregating per-tile thresholds into a single
// global threshold.
type Result struct {
	Threshold      float32      // arithmetic mean of per-tile thresholds
	StdDev         float32      // population stddev of per-tile thresholds, diagnostic only
	NumTiles       int          // number of tiles that contributed a finite threshold
	ContributingROIs []raster.ROI // the subset of input tiles that contributed
}

// Aggregate runs KittlerIllingworth on each of the given tile ROIs,
// restricted to img and histogrammed over [globalMin, globalMax] with
// NumAggregatorBins bins, and returns the mean of the resulting per-tile
// thresholds. Tiles for which KittlerIllingworth returns Fail do not
// contribute. ok is false if every tile failed.
func Aggregate(img *raster.FloatRaster, tiles []raster.ROI, globalMin, globalMax float32) (Result, bool) {
	var perTile []float32
	var contributing []raster.ROI
	for _, roi := range tiles {
		sub := img.SubRaster(roi)
		hist := statkernel.Histogram(sub.Data, sub.Valid, NumAggregatorBins, globalMin, globalMax)
		h64 := make([]float64, len(hist))
		for i, c := range hist {
			h64[i] = float64(c)
		}
		t := KittlerIllingworth(h64, globalMin, globalMax)
		if t == Fail || math.IsInf(float64(t), 0) {
			continue
		}
		perTile = append(perTile, t)
		contributing = append(contributing, roi)
	}
	if len(perTile) == 0 {
		return Result{}, false
	}

	valid := make([]bool, len(perTile))
	for i := range valid {
		valid[i] = true
	}
	mean, _ := statkernel.Mean(perTile, valid)
	stddev, _ := statkernel.StdDev(perTile, valid)

	return Result{Threshold: mean, StdDev: stddev, NumTiles: len(perTile), ContributingROIs: contributing}, true
}
