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

// Package tile partitions a raster extent into a row-major grid of fixed
// size tiles, the unit of work for every data-parallel stage of the
// pipeline.
package tile

import "github.com/mlnoga/floodsar/internal/raster"

// Grid is a row-major arrangement of tile ROIs over a bounding box.
type Grid struct {
	Rows, Cols int32
	Tiles      [][]raster.ROI // Tiles[row][col]
}

// Divide partitions roi into a grid of size x size tiles. Tile (r, c) has
// origin (roi.X + c*size, roi.Y + r*size). When includePartials is true,
// edge tiles are clipped to roi's extent rather than dropped; when false,
// any tile that would extend past roi's extent is omitted and the grid's
// row/column count reflects only full tiles.
func Divide(roi raster.ROI, size int32, includePartials bool) *Grid {
	if size <= 0 {
		return &Grid{}
	}
	var rows, cols int32
	if includePartials {
		rows = ceilDiv(roi.Height, size)
		cols = ceilDiv(roi.Width, size)
	} else {
		rows = roi.Height / size
		cols = roi.Width / size
	}

	g := &Grid{Rows: rows, Cols: cols}
	g.Tiles = make([][]raster.ROI, rows)
	for r := int32(0); r < rows; r++ {
		row := make([]raster.ROI, cols)
		for c := int32(0); c < cols; c++ {
			x := roi.X + c*size
			y := roi.Y + r*size
			w, h := size, size
			if x+w > roi.X+roi.Width {
				w = roi.X + roi.Width - x
			}
			if y+h > roi.Y+roi.Height {
				h = roi.Y + roi.Height - y
			}
			row[c] = raster.ROI{X: x, Y: y, Width: w, Height: h}
		}
		g.Tiles[r] = row
	}
	return g
}

func ceilDiv(a, b int32) int32 {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// ForEach calls fn(row, col, roi) for every tile in the grid. It makes no
// ordering guarantee beyond row-major iteration; callers requiring
// concurrency build their own worker pool over this enumeration.
func (g *Grid) ForEach(fn func(row, col int32, roi raster.ROI)) {
	for r := int32(0); r < g.Rows; r++ {
		for c := int32(0); c < g.Cols; c++ {
			fn(r, c, g.Tiles[r][c])
		}
	}
}

// Expand returns roi grown by halo pixels on every side, clipped to
// [0,0,boundsWidth,boundsHeight]. Used by the blob sizer and flood fill to
// approximate cross-tile independence via a halo region.
func Expand(roi raster.ROI, halo, boundsWidth, boundsHeight int32) raster.ROI {
	expanded := raster.ROI{
		X:      roi.X - halo,
		Y:      roi.Y - halo,
		Width:  roi.Width + 2*halo,
		Height: roi.Height + 2*halo,
	}
	clipped, ok := expanded.Intersect(boundsWidth, boundsHeight)
	if !ok {
		return roi
	}
	return clipped
}
