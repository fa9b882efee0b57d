package debugpreview

import (
	"bytes"
	"testing"

	"github.com/mlnoga/floodsar/internal/raster"
)

func TestRenderClassRasterColorsByClass(t *testing.T) {
	r := raster.NewClassRaster(2, 1)
	r.Data[0] = raster.Land
	r.Data[1] = raster.Water
	img := RenderClassRaster(r)

	land := img.RGBAAt(0, 0)
	water := img.RGBAAt(1, 0)
	if land == water {
		t.Fatalf("land and water pixels should render with different colors")
	}
}

func TestRenderFloatRasterInvalidIsBlack(t *testing.T) {
	r := raster.NewFloatRaster(2, 1)
	r.Set(0, 0, 5, true)
	// pixel (1,0) left invalid.
	img := RenderFloatRaster(r, 0, 10)
	black := img.RGBAAt(1, 0)
	if black.R != 0 || black.G != 0 || black.B != 0 {
		t.Fatalf("invalid pixel should render black, got %+v", black)
	}
}

func TestScaleProducesRequestedDimensions(t *testing.T) {
	r := raster.NewClassRaster(10, 10)
	img := RenderClassRaster(r)
	scaled := Scale(img, 4, 4)
	b := scaled.Bounds()
	if b.Dx() != 4 || b.Dy() != 4 {
		t.Fatalf("scaled bounds = %v, want 4x4", b)
	}
}

func TestWritePNGProducesNonEmptyOutput(t *testing.T) {
	r := raster.NewClassRaster(4, 4)
	img := RenderClassRaster(r)
	var buf bytes.Buffer
	if err := WritePNG(&buf, img); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected non-empty PNG output")
	}
}
