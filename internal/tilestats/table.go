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

// Package tilestats computes per-tile mean/stddev-of-sub-means statistics
// over a preprocessed raster (the tiled statistics engine) and selects the
// subset of tiles most likely to straddle a land/water boundary (the tile
// selector).
package tilestats

import "github.com/mlnoga/floodsar/internal/raster"

// Table holds per-tile mean and stddev-of-sub-tile-means, indexed
// table[row][col] consistently between the engine and the selector.
type Table struct {
	Rows, Cols int32
	Mean       [][]float32
	StdDev     [][]float32
	Valid      [][]bool
	ROI        [][]raster.ROI
}

// NewTable allocates a Table of the given dimensions with every cell marked
// invalid.
func NewTable(numTilesX, numTilesY int32) *Table {
	t := &Table{Rows: numTilesY, Cols: numTilesX}
	t.Mean = make([][]float32, numTilesY)
	t.StdDev = make([][]float32, numTilesY)
	t.Valid = make([][]bool, numTilesY)
	t.ROI = make([][]raster.ROI, numTilesY)
	for r := int32(0); r < numTilesY; r++ {
		t.Mean[r] = make([]float32, numTilesX)
		t.StdDev[r] = make([]float32, numTilesX)
		t.Valid[r] = make([]bool, numTilesX)
		t.ROI[r] = make([]raster.ROI, numTilesX)
	}
	return t
}

// Set writes a tile's statistics. Invalid tiles pass mean=stddev=0 and
// valid=false.
func (t *Table) Set(row, col int32, mean, stddev float32, valid bool, roi raster.ROI) {
	t.Mean[row][col] = mean
	t.StdDev[row][col] = stddev
	t.Valid[row][col] = valid
	t.ROI[row][col] = roi
}
