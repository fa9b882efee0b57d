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

// Package blob sizes the 4-connected components of a binary water mask,
// approximating the computation in tile-parallel fashion via a halo
// expansion so that tiles remain independent.
package blob

import (
	"sync"

	"github.com/mlnoga/floodsar/internal/raster"
	"github.com/mlnoga/floodsar/internal/tile"
)

// Sizes returns a raster the same shape as mask where every water pixel
// holds the size (in pixels, clamped to maxBlobSize) of the 4-connected
// component it belongs to; non-water pixels hold 0. Processing is
// tile-parallel: the image is divided into tileSize tiles, each expanded by
// haloPixels on every side, and components are sized independently within
// their expanded tile. Components that touch the halo boundary are sized
// only within the expanded tile -- the documented cross-tile approximation.
func Sizes(mask *raster.ClassRaster, tileSize, haloPixels, maxBlobSize, maxThreads int32) *raster.FloatRaster {
	out := raster.NewFloatRaster(mask.Width, mask.Height)
	roi := raster.ROI{X: 0, Y: 0, Width: mask.Width, Height: mask.Height}
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
			sizeTile(mask, out, tileROI, haloPixels, maxBlobSize)
		}(tileROI)
	})
	wg.Wait()
	return out
}

// sizeTile computes component sizes within tileROI's expanded halo and
// writes the results for the pixels within tileROI (not the halo) into out.
func sizeTile(mask *raster.ClassRaster, out *raster.FloatRaster, tileROI raster.ROI, halo, maxBlobSize int32) {
	expanded := tile.Expand(tileROI, halo, mask.Width, mask.Height)
	visited := make([]bool, int(expanded.Width)*int(expanded.Height))

	localIdx := func(x, y int32) int32 {
		return (y-expanded.Y)*expanded.Width + (x - expanded.X)
	}
	isWater := func(x, y int32) bool {
		return mask.Data[mask.Index(x, y)] == raster.Water
	}

	type point struct{ x, y int32 }

	for y := expanded.Y; y < expanded.Y+expanded.Height; y++ {
		for x := expanded.X; x < expanded.X+expanded.Width; x++ {
			li := localIdx(x, y)
			if visited[li] || !isWater(x, y) {
				continue
			}
			// BFS the component within the expanded tile.
			queue := []point{{x, y}}
			visited[li] = true
			members := []point{{x, y}}
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
					if visited[nli] || !isWater(n.x, n.y) {
						continue
					}
					visited[nli] = true
					queue = append(queue, n)
					members = append(members, n)
				}
			}

			size := float32(len(members))
			if size > float32(maxBlobSize) {
				size = float32(maxBlobSize)
			}
			for _, m := range members {
				if tileROI.Contains(m.x, m.y) {
					out.Set(m.x, m.y, size, true)
				}
			}
		}
	}

	// non-water pixels within tileROI (not touched above) are explicitly 0.
	for y := tileROI.Y; y < tileROI.Y+tileROI.Height; y++ {
		for x := tileROI.X; x < tileROI.X+tileROI.Width; x++ {
			idx := out.Index(x, y)
			if !out.Valid[idx] {
				out.Data[idx] = 0
				out.Valid[idx] = true
			}
		}
	}
}
