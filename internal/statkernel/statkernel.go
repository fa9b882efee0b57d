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

// Package statkernel provides the validity-masked histogram, percentile,
// mean and standard deviation primitives every downstream statistical stage
// builds on: the tiled statistics engine, the tile selector, and the
// Kittler-Illingworth optimizer's histogram construction.
package statkernel

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Invalid is the explicit marker returned by Mean/StdDev when there are no
// valid samples to summarize. Never NaN: callers test for it by value or by
// use the ok return instead.
const Invalid = float32(0)

// Histogram bins samples into numBins buckets spanning [min, max]. Samples
// outside the range, and samples whose valid flag is false, are discarded.
// Bins are left-closed/right-open except the last bin, which is closed on
// both ends so that a sample equal to max is counted.
func Histogram(samples []float32, valid []bool, numBins int, min, max float32) []int64 {
	counts := make([]int64, numBins)
	if numBins <= 0 || max <= min {
		return counts
	}
	width := (max - min) / float32(numBins)
	for i, v := range samples {
		if valid != nil && !valid[i] {
			continue
		}
		if v < min || v > max {
			continue
		}
		b := int((v - min) / width)
		if b >= numBins {
			b = numBins - 1
		}
		if b < 0 {
			b = 0
		}
		counts[b]++
	}
	return counts
}

// Percentile returns the smallest bin index b such that the cumulative mass
// through b is at least p (p in [0,1]) of the histogram's total mass.
// Returns -1 if the histogram is empty (zero total mass).
func Percentile(hist []int64, p float32) int {
	var total int64
	for _, c := range hist {
		total += c
	}
	if total == 0 {
		return -1
	}
	threshold := p * float32(total)
	var cum int64
	for i, c := range hist {
		cum += c
		if float32(cum) >= threshold {
			return i
		}
	}
	return len(hist) - 1
}

// validSamples extracts the valid-masked subset of samples.
func validSamples(samples []float32, valid []bool) []float64 {
	out := make([]float64, 0, len(samples))
	for i, v := range samples {
		if valid == nil || valid[i] {
			out = append(out, float64(v))
		}
	}
	return out
}

// Mean returns the arithmetic mean of the valid samples. ok is false (and
// the returned value is Invalid) when there are no valid samples.
func Mean(samples []float32, valid []bool) (mean float32, ok bool) {
	xs := validSamples(samples, valid)
	if len(xs) == 0 {
		return Invalid, false
	}
	return float32(stat.Mean(xs, nil)), true
}

// StdDev returns the population standard deviation (divide by N, not N-1)
// of the valid samples, matching the source's convention. ok is false when
// there are no valid samples.
func StdDev(samples []float32, valid []bool) (stddev float32, ok bool) {
	xs := validSamples(samples, valid)
	if len(xs) == 0 {
		return Invalid, false
	}
	if len(xs) == 1 {
		return 0, true
	}
	_, sampleVariance := stat.MeanVariance(xs, nil)
	// stat.MeanVariance divides by N-1; rescale to the population form.
	popVariance := sampleVariance * float64(len(xs)-1) / float64(len(xs))
	if popVariance < 0 {
		popVariance = 0
	}
	return float32(math.Sqrt(popVariance)), true
}
