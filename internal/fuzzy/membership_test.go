package fuzzy

import (
	"testing"

	"github.com/mlnoga/floodsar/internal/raster"
)

func TestZShapeBoundaries(t *testing.T) {
	a, b := float32(0), float32(10)
	if Z(-1, a, b) != 1 {
		t.Fatalf("Z below a should be 1")
	}
	if Z(10, a, b) != 0 {
		t.Fatalf("Z at/above b should be 0")
	}
	if Z(5, a, b) != 0.5 {
		t.Fatalf("Z at midpoint should be 0.5, got %v", Z(5, a, b))
	}
}

func TestZPlusSEqualsOne(t *testing.T) {
	a, b := float32(2), float32(8)
	for v := float32(-5); v <= 15; v += 0.37 {
		z := Z(v, a, b)
		s := S(v, a, b)
		if diff := (z + s) - 1; diff > 1e-5 || diff < -1e-5 {
			t.Fatalf("Z(%v)+S(%v) = %v, want 1", v, v, z+s)
		}
	}
}

func TestVetoMeanZeroChannelVetoes(t *testing.T) {
	mk := func(v float32) *raster.FloatRaster {
		r := raster.NewFloatRaster(1, 1)
		r.Set(0, 0, v, true)
		return r
	}
	out := VetoMean(mk(0.8), mk(0.9), mk(0), mk(0.7))
	got, valid := out.At(0, 0)
	if !valid || got != 0 {
		t.Fatalf("VetoMean with a zero channel = (%v,%v), want (0,true)", got, valid)
	}
}

func TestVetoMeanAverages(t *testing.T) {
	mk := func(v float32) *raster.FloatRaster {
		r := raster.NewFloatRaster(1, 1)
		r.Set(0, 0, v, true)
		return r
	}
	out := VetoMean(mk(0.2), mk(0.4), mk(0.6), mk(0.8))
	got, valid := out.At(0, 0)
	if !valid || got != 0.5 {
		t.Fatalf("VetoMean = (%v,%v), want (0.5,true)", got, valid)
	}
}

func TestVetoMeanOrderInvariant(t *testing.T) {
	mk := func(v float32) *raster.FloatRaster {
		r := raster.NewFloatRaster(1, 1)
		r.Set(0, 0, v, true)
		return r
	}
	a := VetoMean(mk(0.1), mk(0.9), mk(0.3), mk(0.7))
	b := VetoMean(mk(0.7), mk(0.3), mk(0.9), mk(0.1))
	va, _ := a.At(0, 0)
	vb, _ := b.At(0, 0)
	if va != vb {
		t.Fatalf("VetoMean not order-invariant: %v vs %v", va, vb)
	}
}

func TestVetoMeanPropagatesInvalidity(t *testing.T) {
	valid := raster.NewFloatRaster(1, 1)
	valid.Set(0, 0, 0.5, true)
	invalid := raster.NewFloatRaster(1, 1) // never Set -> stays invalid

	out := VetoMean(valid, valid, valid, invalid)
	_, ok := out.At(0, 0)
	if ok {
		t.Fatalf("VetoMean should be invalid when any channel is invalid")
	}
}
