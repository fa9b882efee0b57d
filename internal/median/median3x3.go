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

// Package median implements a validity-aware 3x3 median filter over
// float32 rasters, used by the preprocessing stage to despeckle the
// rescaled dB image before tiled statistics are computed.
package median

import (
	"github.com/mlnoga/floodsar/internal/qsort"
)

// Filter3x3 applies a 3x3 median filter to data, a 2D array with the given
// line width. For each valid interior pixel it gathers up to nine valid
// neighbors (itself plus the 3x3 window) and assigns their median; a pixel
// with zero valid neighbors becomes invalid. Border rows and columns are
// copied unchanged. Windows with a full complement of nine valid neighbors
// take the CPU-feature-gated fast path; partial windows at validity-mask
// boundaries fall back to quickselect.
func Filter3x3(data []float32, valid []bool, width int32) (dstData []float32, dstValid []bool) {
	dstData = make([]float32, len(data))
	dstValid = make([]bool, len(valid))
	height := int32(len(data)) / width

	copy(dstData, data)
	copy(dstValid, valid)

	gathered := make([]float32, 0, 9)
	for y := int32(1); y < height-1; y++ {
		for x := int32(1); x < width-1; x++ {
			idx := y*width + x
			if !valid[idx] {
				dstValid[idx] = false
				continue
			}
			gathered = gathered[:0]
			full := true
			for oy := int32(-1); oy <= 1; oy++ {
				for ox := int32(-1); ox <= 1; ox++ {
					nidx := idx + oy*width + ox
					if valid[nidx] {
						gathered = append(gathered, data[nidx])
					} else {
						full = false
					}
				}
			}
			if len(gathered) == 0 {
				dstValid[idx] = false
				continue
			}
			if full {
				dstData[idx] = MedianOfNineFast(gathered)
			} else {
				dstData[idx] = qsort.QSelectMedianFloat32(gathered)
			}
			dstValid[idx] = true
		}
	}
	return dstData, dstValid
}
