package flood

import (
	"testing"

	"github.com/mlnoga/floodsar/internal/raster"
)

func allValidClassRaster(width, height int32, value raster.ClassValue) *raster.ClassRaster {
	r := raster.NewClassRaster(width, height)
	for i := range r.Data {
		r.Data[i] = value
	}
	return r
}

func TestFillSeededRegionBecomesWater(t *testing.T) {
	defuzzed := raster.NewFloatRaster(20, 20)
	for y := int32(0); y < 20; y++ {
		for x := int32(0); x < 20; x++ {
			defuzzed.Set(x, y, 0.5, true) // above grow, below seed everywhere
		}
	}
	defuzzed.Set(10, 10, 0.9, true) // single seed pixel

	nodata := allValidClassRaster(20, 20, raster.Land) // irrelevant here, all "not nodata"
	out := Fill(defuzzed, nodata, 20, 8, 2, SeedThreshold, GrowThreshold)

	v := out.Data[out.Index(10, 10)]
	if v != raster.Water {
		t.Fatalf("seed pixel classified %v, want Water", v)
	}
	// connected region entirely >= GrowThreshold should all become water.
	edge := out.Data[out.Index(0, 0)]
	if edge != raster.Water {
		t.Fatalf("connected region classified %v, want Water", edge)
	}
}

func TestFillDisjointLowRegionStaysLand(t *testing.T) {
	defuzzed := raster.NewFloatRaster(20, 20)
	for y := int32(0); y < 20; y++ {
		for x := int32(0); x < 20; x++ {
			defuzzed.Set(x, y, 0.5, true)
		}
	}
	defuzzed.Set(2, 2, 0.9, true) // seed in top-left

	// isolate a region at (15,15) with value in [0.45,0.60) separated by land
	for y := int32(10); y < 20; y++ {
		for x := int32(10); x < 20; x++ {
			defuzzed.Set(x, y, 0.1, true) // moat below grow threshold
		}
	}
	defuzzed.Set(15, 15, 0.5, true) // disjoint low region, no seed reaches it

	nodata := allValidClassRaster(20, 20, raster.Land)
	out := Fill(defuzzed, nodata, 20, 8, 2, SeedThreshold, GrowThreshold)
	if out.Data[out.Index(15, 15)] != raster.Land {
		t.Fatalf("unreached region with no seed should remain Land")
	}
}

func TestFillRespectsNodataMask(t *testing.T) {
	defuzzed := raster.NewFloatRaster(10, 10)
	for y := int32(0); y < 10; y++ {
		for x := int32(0); x < 10; x++ {
			defuzzed.Set(x, y, 0.9, true)
		}
	}
	nodata := allValidClassRaster(10, 10, raster.NoData)
	out := Fill(defuzzed, nodata, 10, 4, 2, SeedThreshold, GrowThreshold)
	for _, v := range out.Data {
		if v != raster.NoData {
			t.Fatalf("pixel classified %v, want NoData under initial nodata mask", v)
		}
	}
}

func TestFillIdempotent(t *testing.T) {
	defuzzed := raster.NewFloatRaster(16, 16)
	for y := int32(0); y < 16; y++ {
		for x := int32(0); x < 16; x++ {
			defuzzed.Set(x, y, 0.5, true)
		}
	}
	defuzzed.Set(8, 8, 0.9, true)
	nodata := allValidClassRaster(16, 16, raster.Land)

	first := Fill(defuzzed, nodata, 16, 8, 2, SeedThreshold, GrowThreshold)

	// re-express the first classification in the defuzzed domain: water=1.
	second := raster.NewFloatRaster(16, 16)
	for i, v := range first.Data {
		if v == raster.Water {
			second.Data[i] = 1
		}
		second.Valid[i] = v != raster.NoData
	}
	rerun := Fill(second, nodata, 16, 8, 2, SeedThreshold, GrowThreshold)

	for i := range first.Data {
		if first.Data[i] != rerun.Data[i] {
			t.Fatalf("flood fill not idempotent at index %d: %v vs %v", i, first.Data[i], rerun.Data[i])
		}
	}
}
