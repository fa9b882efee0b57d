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

// +build amd64

package median

import (
	"github.com/klauspost/cpuid"
)

// MedianOfNineFast returns the median of nine values, reordering a in place. On
// AVX2-capable CPUs this dispatches to the unrolled sorting network; older
// amd64 parts fall back to the generic implementation. Both paths return
// identical results, the dispatch exists purely to mirror the CPU-feature
// gating used elsewhere in the preprocessing pipeline.
func MedianOfNineFast(a []float32) float32 {
	if cpuid.CPU.AVX2() {
		return medianOfNineSortingNetwork(a)
	}
	return medianOfNineGeneric(a)
}
