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
	"sync"

	"github.com/mlnoga/floodsar/internal/raster"
	"github.com/mlnoga/floodsar/internal/statkernel"
	"github.com/mlnoga/floodsar/internal/tile"
)

// MinPercentValid is the minimum fraction of valid pixels a quadrant needs
// to be kept when computing a tile's mean/stddev-of-sub-means.
const MinPercentValid = 0.9

// Compute runs the tiled statistics engine over img: img is divided into a
// grid of tileSize x tileSize tiles (partial edge tiles included), each
// split into four quadrants, and each tile's mean/stddev-of-kept-quadrant-
// means is written into a fresh Table. Tiles are processed concurrently
// through a counting semaphore capped at maxThreads; writes are
// position-addressed so no further synchronization is required.
func Compute(img *raster.FloatRaster, tileSize, maxThreads int32) *Table {
	roi := raster.ROI{X: 0, Y: 0, Width: img.Width, Height: img.Height}
	grid := tile.Divide(roi, tileSize, true)
	table := NewTable(grid.Cols, grid.Rows)

	if maxThreads <= 0 {
		maxThreads = 1
	}
	sem := make(chan struct{}, maxThreads)
	var wg sync.WaitGroup

	grid.ForEach(func(row, col int32, tileROI raster.ROI) {
		wg.Add(1)
		sem <- struct{}{}
		go func(row, col int32, tileROI raster.ROI) {
			defer wg.Done()
			defer func() { <-sem }()
			mean, stddev, ok := computeTile(img, tileROI)
			table.Set(row, col, mean, stddev, ok, tileROI)
		}(row, col, tileROI)
	})
	wg.Wait()
	return table
}

// computeTile splits tileROI into four quadrants, keeps those with
// sufficient valid coverage, and returns the mean and population stddev of
// the kept quadrant means.
func computeTile(img *raster.FloatRaster, tileROI raster.ROI) (mean, stddev float32, ok bool) {
	quadrants := quadrantsOf(tileROI)

	var keptMeans []float32
	for _, q := range quadrants {
		if q.Width <= 0 || q.Height <= 0 {
			continue
		}
		sub := img.SubRaster(q)
		validCount := 0
		for _, v := range sub.Valid {
			if v {
				validCount++
			}
		}
		total := len(sub.Valid)
		if total == 0 || float32(validCount)/float32(total) < MinPercentValid {
			continue
		}
		qMean, qOK := statkernel.Mean(sub.Data, sub.Valid)
		if !qOK {
			continue
		}
		keptMeans = append(keptMeans, qMean)
	}

	if len(keptMeans) == 0 {
		return 0, 0, false
	}

	validFlags := make([]bool, len(keptMeans))
	for i := range validFlags {
		validFlags[i] = true
	}
	tileMean, _ := statkernel.Mean(keptMeans, validFlags)
	tileStdDev, _ := statkernel.StdDev(keptMeans, validFlags)

	if tileMean <= 0 {
		return 0, 0, false
	}
	return tileMean, tileStdDev, true
}

// quadrantsOf splits roi into four equal quadrants using integer
// half-dimensions; the bottom/right quadrants absorb any odd remainder.
func quadrantsOf(roi raster.ROI) [4]raster.ROI {
	halfW := roi.Width / 2
	halfH := roi.Height / 2
	return [4]raster.ROI{
		{X: roi.X, Y: roi.Y, Width: halfW, Height: halfH},
		{X: roi.X + halfW, Y: roi.Y, Width: roi.Width - halfW, Height: halfH},
		{X: roi.X, Y: roi.Y + halfH, Width: halfW, Height: roi.Height - halfH},
		{X: roi.X + halfW, Y: roi.Y + halfH, Width: roi.Width - halfW, Height: roi.Height - halfH},
	}
}
