package tilestats

import (
	"testing"

	"github.com/mlnoga/floodsar/internal/raster"
)

func TestComputeConstantTileHasZeroStdDev(t *testing.T) {
	img := raster.NewFloatRaster(64, 64)
	for i := range img.Data {
		img.Data[i] = 50
		img.Valid[i] = true
	}
	table := Compute(img, 64, 4)
	if table.Rows != 1 || table.Cols != 1 {
		t.Fatalf("table dims = %dx%d, want 1x1", table.Rows, table.Cols)
	}
	if !table.Valid[0][0] {
		t.Fatalf("tile should be valid")
	}
	if table.StdDev[0][0] != 0 {
		t.Fatalf("stddev of identical quadrant means = %v, want 0", table.StdDev[0][0])
	}
	if table.Mean[0][0] != 50 {
		t.Fatalf("mean = %v, want 50", table.Mean[0][0])
	}
}

func TestComputeInsufficientValidCoverageInvalidatesTile(t *testing.T) {
	img := raster.NewFloatRaster(32, 32)
	// only mark the top-left quadrant partially valid; rest stays invalid,
	// and even that quadrant falls under the 90% coverage requirement.
	for y := int32(0); y < 8; y++ {
		for x := int32(0); x < 8; x++ {
			img.Set(x, y, 10, true)
		}
	}
	table := Compute(img, 32, 2)
	if table.Valid[0][0] {
		t.Fatalf("tile with <90%% valid coverage in every quadrant should be invalid")
	}
}

func TestComputeNonPositiveMeanInvalidatesTile(t *testing.T) {
	img := raster.NewFloatRaster(32, 32)
	for i := range img.Data {
		img.Data[i] = -5
		img.Valid[i] = true
	}
	table := Compute(img, 32, 2)
	if table.Valid[0][0] {
		t.Fatalf("tile with non-positive mean should be invalid")
	}
}
