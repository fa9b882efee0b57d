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

package qsort

import (
	"testing"

	"github.com/valyala/fastrand"
)

func TestMedianOddEven(t *testing.T) {
	rng := fastrand.RNG{}
	for n := 1; n < 200; n++ {
		arr := make([]float32, n)
		for j := range arr {
			arr[j] = float32(j + 1)
		}
		// shuffle
		for j := n - 1; j > 0; j-- {
			k := int(rng.Uint32n(uint32(j + 1)))
			arr[j], arr[k] = arr[k], arr[j]
		}

		got := QSelectMedianFloat32(arr)
		var want float32
		if n%2 == 1 {
			want = float32(n/2 + 1)
		} else {
			want = float32(n)/2 + 0.5
		}
		if got != want {
			t.Fatalf("n=%d: got median %v, want %v", n, got, want)
		}
	}
}

func TestQSortFloat32(t *testing.T) {
	rng := fastrand.RNG{}
	arr := make([]float32, 500)
	for i := range arr {
		arr[i] = float32(rng.Uint32n(10000))
	}
	QSortFloat32(arr)
	for i := 1; i < len(arr); i++ {
		if arr[i-1] > arr[i] {
			t.Fatalf("not sorted at index %d: %v > %v", i, arr[i-1], arr[i])
		}
	}
}
