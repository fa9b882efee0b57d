package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/mlnoga/floodsar/internal/config"
	"github.com/mlnoga/floodsar/internal/errs"
	"github.com/mlnoga/floodsar/internal/logging"
	"github.com/mlnoga/floodsar/internal/raster"
)

func splitDNRaster(width, height int32, leftDN, rightDN float32) *raster.FloatRaster {
	r := raster.NewFloatRaster(width, height)
	r.Geo = &raster.Georef{Transform: raster.IdentityTransform2D(), CRS: "EPSG:32633"}
	for y := int32(0); y < height; y++ {
		for x := int32(0); x < width; x++ {
			v := leftDN
			if x >= width/2 {
				v = rightDN
			}
			r.Set(x, y, v, true)
		}
	}
	return r
}

// flatDEM returns a raster with a very gentle linear elevation ramp: nearly
// flat (slope well under the slope channel's 15-degree cutoff) but with
// enough variance under any sub-region for the elevation statistics to be
// well-defined rather than degenerate.
func flatDEM(width, height int32, baseElevation float32) *raster.FloatRaster {
	r := raster.NewFloatRaster(width, height)
	for y := int32(0); y < height; y++ {
		for x := int32(0); x < width; x++ {
			r.Set(x, y, baseElevation+float32(x)*0.001, true)
		}
	}
	return r
}

func TestRunVerticalSplitClassifiesWaterAndLand(t *testing.T) {
	width, height := int32(512), int32(512)
	// DN values chosen so 10*log10(dn) lands well inside [0,35] dB: 10 -> 10dB, 3162 -> ~35dB.
	img := splitDNRaster(width, height, 10, 3162)
	dem := flatDEM(width, height, 0) // gentle ramp: slope stays near zero, elevation stats stay well-defined.

	cfg := config.Default()
	// a tile size that does not evenly divide the split location (width/2)
	// ensures at least one tile straddles the land/water boundary.
	cfg.TileSize = 150
	cfg.TileExpand = 32
	cfg.MaxThreads = 2

	in := Inputs{
		Image:          raster.NewMemRaster(img),
		DEM:            raster.NewMemRaster(dem),
		ImageToDEM:     raster.AffineCoordTransform{Fwd: raster.IdentityTransform2D()},
		MetersPerPixel: 10,
	}
	logger := logging.New(nil, "error")

	out, diag, err := Run(context.Background(), cfg, in, logger)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if diag.NumTilesSelected == 0 {
		t.Fatalf("expected at least one selected tile")
	}

	left := out.Data[out.Index(10, 256)]
	right := out.Data[out.Index(width-10, 256)]
	if left != raster.Water {
		t.Fatalf("low-backscatter half classified %v, want Water", left)
	}
	if right != raster.Land {
		t.Fatalf("high-backscatter half classified %v, want Land", right)
	}
}

func TestRunConstantRasterHasNoHeterogeneousTiles(t *testing.T) {
	width, height := int32(512), int32(512)
	img := splitDNRaster(width, height, 100, 100) // constant, no split
	dem := flatDEM(width, height, 0)

	cfg := config.Default()
	cfg.TileSize = 256

	in := Inputs{
		Image:          raster.NewMemRaster(img),
		DEM:            raster.NewMemRaster(dem),
		ImageToDEM:     raster.AffineCoordTransform{Fwd: raster.IdentityTransform2D()},
		MetersPerPixel: 10,
	}
	logger := logging.New(nil, "error")

	_, _, err := Run(context.Background(), cfg, in, logger)
	if err == nil {
		t.Fatalf("expected algorithmic error for a constant raster")
	}
	var pe *errs.PipelineError
	if !errors.As(err, &pe) || pe.Kind != errs.Algorithmic {
		t.Fatalf("expected *errs.PipelineError{Kind: Algorithmic}, got %v", err)
	}
}

func TestRunMissingGeoreferenceIsInputError(t *testing.T) {
	width, height := int32(64), int32(64)
	img := raster.NewFloatRaster(width, height) // no Geo set
	for i := range img.Data {
		img.Data[i] = 10
		img.Valid[i] = true
	}
	dem := flatDEM(width, height, 0)

	cfg := config.Default()
	in := Inputs{
		Image:          raster.NewMemRaster(img),
		DEM:            raster.NewMemRaster(dem),
		ImageToDEM:     raster.AffineCoordTransform{Fwd: raster.IdentityTransform2D()},
		MetersPerPixel: 10,
	}
	logger := logging.New(nil, "error")

	_, _, err := Run(context.Background(), cfg, in, logger)
	if err == nil {
		t.Fatalf("expected input error for missing georeference")
	}
	var pe *errs.PipelineError
	if !errors.As(err, &pe) || pe.Kind != errs.Input {
		t.Fatalf("expected *errs.PipelineError{Kind: Input}, got %v", err)
	}
}
