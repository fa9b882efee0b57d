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

// Package flood implements the two-level (hysteresis) flood fill that turns
// a defuzzed fuzzy-fusion raster into the final {NODATA, LAND, WATER}
// classification, seeding at a strict threshold and growing at a relaxed
// one.
package flood

import (
	"sync"

	"github.com/mlnoga/floodsar/internal/raster"
	"github.com/mlnoga/floodsar/internal/tile"
)

// SeedThreshold and GrowThreshold are the hysteresis parameters of the
// two-level flood fill: pixels at or above SeedThreshold start a region;
// the region grows through pixels at or above GrowThreshold.
const (
	SeedThreshold = 0.60
	GrowThreshold = 0.45
)

// Fill runs the two-level flood fill over defuzzed, tile-parallel with a
// halo expansion mirroring the blob sizer's approximation: each tile grows
// independently within its expanded halo, so a component seeded near a
// tile boundary may only be partially grown. nodataMask marks pixels that
// were nodata in the initial water mask; those pixels are forced to NODATA
// in the output regardless of the defuzzed value. seedThreshold and
// growThreshold override the package defaults (SeedThreshold,
// GrowThreshold) so callers can wire them to configuration.
func Fill(defuzzed *raster.FloatRaster, nodataMask *raster.ClassRaster, tileSize, haloPixels, maxThreads int32, seedThreshold, growThreshold float32) *raster.ClassRaster {
	out := raster.NewClassRaster(defuzzed.Width, defuzzed.Height)
	roi := raster.ROI{X: 0, Y: 0, Width: defuzzed.Width, Height: defuzzed.Height}
	grid := tile.Divide(roi, tileSize, true)

	if maxThreads <= 0 {
		maxThreads = 1
	}
	sem := make(chan struct{}, maxThreads)
	var wg sync.WaitGroup

	grid.ForEach(func(row, col int32, tileROI raster.ROI) {
		wg.Add(1)
		sem <- struct{}{}
		go func(tileROI raster.ROI) {
			defer wg.Done()
			defer func() { <-sem }()
			fillTile(defuzzed, nodataMask, out, tileROI, haloPixels, seedThreshold, growThreshold)
		}(tileROI)
	})
	wg.Wait()
	return out
}

type point struct{ x, y int32 }

// fillTile grows seeds within tileROI's expanded halo and writes the result
// for the pixels within tileROI into out.
func fillTile(defuzzed *raster.FloatRaster, nodataMask *raster.ClassRaster, out *raster.ClassRaster, tileROI raster.ROI, halo int32, seedThreshold, growThreshold float32) {
	expanded := tile.Expand(tileROI, halo, defuzzed.Width, defuzzed.Height)
	isWater := make([]bool, int(expanded.Width)*int(expanded.Height))
	visited := make([]bool, len(isWater))

	localIdx := func(x, y int32) int32 {
		return (y-expanded.Y)*expanded.Width + (x - expanded.X)
	}
	aboveGrow := func(x, y int32) bool {
		v, valid := defuzzed.At(x, y)
		return valid && v >= growThreshold
	}
	aboveSeed := func(x, y int32) bool {
		v, valid := defuzzed.At(x, y)
		return valid && v >= seedThreshold
	}

	for y := expanded.Y; y < expanded.Y+expanded.Height; y++ {
		for x := expanded.X; x < expanded.X+expanded.Width; x++ {
			li := localIdx(x, y)
			if visited[li] || !aboveSeed(x, y) {
				continue
			}
			// BFS grows through every pixel >= GrowThreshold, seeded from
			// this pixel which is >= SeedThreshold.
			queue := []point{{x, y}}
			visited[li] = true
			isWater[li] = true
			for len(queue) > 0 {
				p := queue[len(queue)-1]
				queue = queue[:len(queue)-1]
				neighbors := [4]point{
					{p.x - 1, p.y}, {p.x + 1, p.y}, {p.x, p.y - 1}, {p.x, p.y + 1},
				}
				for _, n := range neighbors {
					if n.x < expanded.X || n.x >= expanded.X+expanded.Width ||
						n.y < expanded.Y || n.y >= expanded.Y+expanded.Height {
						continue
					}
					nli := localIdx(n.x, n.y)
					if visited[nli] || !aboveGrow(n.x, n.y) {
						continue
					}
					visited[nli] = true
					isWater[nli] = true
					queue = append(queue, n)
				}
			}
		}
	}

	for y := tileROI.Y; y < tileROI.Y+tileROI.Height; y++ {
		for x := tileROI.X; x < tileROI.X+tileROI.Width; x++ {
			outIdx := out.Index(x, y)
			_, valid := defuzzed.At(x, y)
			nodata := nodataMask.Data[nodataMask.Index(x, y)] == raster.NoData
			switch {
			case !valid || nodata:
				out.Data[outIdx] = raster.NoData
			case isWater[localIdx(x, y)]:
				out.Data[outIdx] = raster.Water
			default:
				out.Data[outIdx] = raster.Land
			}
		}
	}
}
