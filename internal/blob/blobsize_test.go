package blob

import (
	"testing"

	"github.com/mlnoga/floodsar/internal/raster"
)

func TestSizesSmallComponentExact(t *testing.T) {
	mask := raster.NewClassRaster(32, 32)
	for i := range mask.Data {
		mask.Data[i] = raster.Land
	}
	// a 3x3 water blob, well inside a single tile+halo.
	for y := int32(10); y < 13; y++ {
		for x := int32(10); x < 13; x++ {
			mask.Data[mask.Index(x, y)] = raster.Water
		}
	}
	sizes := Sizes(mask, 32, 8, 1000, 2)
	v, valid := sizes.At(11, 11)
	if !valid || v != 9 {
		t.Fatalf("blob size at center = (%v,%v), want (9,true)", v, valid)
	}
	v, valid = sizes.At(0, 0)
	if !valid || v != 0 {
		t.Fatalf("non-water pixel size = (%v,%v), want (0,true)", v, valid)
	}
}

func TestSizesClampsToMax(t *testing.T) {
	mask := raster.NewClassRaster(20, 20)
	for i := range mask.Data {
		mask.Data[i] = raster.Water
	}
	sizes := Sizes(mask, 20, 4, 50, 2)
	v, valid := sizes.At(10, 10)
	if !valid || v != 50 {
		t.Fatalf("clamped blob size = (%v,%v), want (50,true)", v, valid)
	}
}

func TestSizesDisjointComponentsIndependent(t *testing.T) {
	mask := raster.NewClassRaster(20, 20)
	for i := range mask.Data {
		mask.Data[i] = raster.Land
	}
	mask.Data[mask.Index(2, 2)] = raster.Water
	mask.Data[mask.Index(17, 17)] = raster.Water
	sizes := Sizes(mask, 20, 4, 1000, 2)
	v1, _ := sizes.At(2, 2)
	v2, _ := sizes.At(17, 17)
	if v1 != 1 || v2 != 1 {
		t.Fatalf("isolated single-pixel blobs should each have size 1, got %v and %v", v1, v2)
	}
}
