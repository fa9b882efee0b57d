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

// Package threshold implements the Kittler-Illingworth minimum-error
// histogram partitioning used to split a SAR tile's backscatter histogram
// into water/land populations, and the aggregator that combines per-tile
// thresholds into a single global value.
package threshold

import "math"

// Fail is the sentinel threshold value returned by KittlerIllingworth when
// no candidate split bin yields a finite criterion value.
const Fail = math.MaxFloat32

// KittlerIllingworth evaluates the minimum-error criterion J(t) for every
// candidate split bin t in [1, len(hist)-1) and returns the threshold value
// min + w*(t*-0.5) for the minimizing t*, where w is the bin width
// (max-min)/len(hist). Bins where either side's prior or variance is
// non-positive are skipped (treated as J=+Inf). Ties resolve to the lowest
// index. Returns Fail if every candidate bin was skipped.
func KittlerIllingworth(hist []float64, min, max float32) float32 {
	k := len(hist)
	if k < 2 {
		return Fail
	}
	total := 0.0
	for _, c := range hist {
		total += c
	}
	if total <= 0 {
		return Fail
	}
	h := make([]float64, k)
	for i, c := range hist {
		h[i] = c / total
	}
	width := float64(max-min) / float64(k)
	v := make([]float64, k)
	for i := range v {
		v[i] = float64(min) + float64(i)*width
	}

	bestJ := math.Inf(1)
	bestT := -1

	for t := 1; t < k-1; t++ {
		var p1, sum1 float64
		for i := 0; i <= t; i++ {
			p1 += h[i]
			sum1 += h[i] * v[i]
		}
		p2 := 1 - p1
		if p1 <= 0 || p2 <= 0 {
			continue
		}
		mu1 := sum1 / p1

		var sum2 float64
		for i := t + 1; i < k; i++ {
			sum2 += h[i] * v[i]
		}
		mu2 := sum2 / p2

		var var1, var2 float64
		for i := 0; i <= t; i++ {
			d := v[i] - mu1
			var1 += h[i] * d * d
		}
		var1 /= p1
		for i := t + 1; i < k; i++ {
			d := v[i] - mu2
			var2 += h[i] * d * d
		}
		var2 /= p2

		if var1 <= 0 || var2 <= 0 {
			continue
		}

		j := 1 + 2*(p1*math.Log(math.Sqrt(var1))+p2*math.Log(math.Sqrt(var2))) -
			2*(p1*math.Log(p1)+p2*math.Log(p2))

		if j < bestJ {
			bestJ = j
			bestT = t
		}
	}

	if bestT < 0 {
		return Fail
	}
	return min + float32(width)*(float32(bestT)-0.5)
}
