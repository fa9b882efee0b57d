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

package tilestats

import (
	"sort"

	"github.com/mlnoga/floodsar/internal/errs"
	"github.com/mlnoga/floodsar/internal/raster"
	"github.com/mlnoga/floodsar/internal/statkernel"
)

// StdDevPercentileCutoff is the percentile of valid tile stddevs above
// which a tile is considered heterogeneous enough to be a threshold
// candidate.
const StdDevPercentileCutoff = 0.95

// MaxNumTiles caps the number of tiles the selector returns.
const MaxNumTiles = 5

// stdDevHistogramBins matches the aggregator's fixed histogram resolution.
const stdDevHistogramBins = 255

type candidate struct {
	row, col int32
	roi      raster.ROI
	stddev   float32
}

// Select picks up to MaxNumTiles tiles with above-cutoff stddev and
// below-global-mean brightness. Returns an Algorithmic PipelineError if the
// candidate set is empty.
func Select(table *Table) ([]raster.ROI, error) {
	var means, stddevs []float32
	var flatValid []bool
	for r := int32(0); r < table.Rows; r++ {
		for c := int32(0); c < table.Cols; c++ {
			if !table.Valid[r][c] {
				continue
			}
			means = append(means, table.Mean[r][c])
			stddevs = append(stddevs, table.StdDev[r][c])
			flatValid = append(flatValid, true)
		}
	}
	if len(means) == 0 {
		return nil, errs.New(errs.Algorithmic, "tilestats.Select",
			"no valid tiles to select from", nil)
	}

	globalMean, _ := statkernel.Mean(means, flatValid)

	var minStdDev, maxStdDev float32
	for i, s := range stddevs {
		if i == 0 || s < minStdDev {
			minStdDev = s
		}
		if i == 0 || s > maxStdDev {
			maxStdDev = s
		}
	}
	var cutoff float32
	if maxStdDev > minStdDev {
		hist := statkernel.Histogram(stddevs, flatValid, stdDevHistogramBins, minStdDev, maxStdDev)
		bin := statkernel.Percentile(hist, StdDevPercentileCutoff)
		width := (maxStdDev - minStdDev) / float32(stdDevHistogramBins)
		cutoff = minStdDev + float32(bin)*width
	} else {
		cutoff = maxStdDev
	}

	var candidates []candidate
	for r := int32(0); r < table.Rows; r++ {
		for c := int32(0); c < table.Cols; c++ {
			if !table.Valid[r][c] {
				continue
			}
			if table.StdDev[r][c] > cutoff && table.Mean[r][c] < globalMean {
				candidates = append(candidates, candidate{
					row: r, col: c, roi: table.ROI[r][c], stddev: table.StdDev[r][c],
				})
			}
		}
	}

	if len(candidates) == 0 {
		return nil, errs.New(errs.Algorithmic, "tilestats.Select",
			"no heterogeneous tiles found", map[string]interface{}{
				"global_mean":    globalMean,
				"stddev_cutoff":  cutoff,
				"num_valid_tiles": len(means),
			})
	}

	if len(candidates) > MaxNumTiles {
		sort.Slice(candidates, func(i, j int) bool {
			return candidates[i].stddev > candidates[j].stddev
		})
		candidates = candidates[:MaxNumTiles]
	}

	rois := make([]raster.ROI, len(candidates))
	for i, c := range candidates {
		rois[i] = c.roi
	}
	return rois, nil
}
