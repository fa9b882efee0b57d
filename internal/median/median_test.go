package median

import "testing"

func TestMedianOfNineSortingNetworkMatchesGeneric(t *testing.T) {
	vals := []float32{9, 1, 8, 2, 7, 3, 6, 4, 5}
	network := make([]float32, len(vals))
	copy(network, vals)
	generic := make([]float32, len(vals))
	copy(generic, vals)

	got := medianOfNineSortingNetwork(network)
	want := medianOfNineGeneric(generic)
	if got != want {
		t.Fatalf("sorting network median = %v, generic = %v", got, want)
	}
	if got != 5 {
		t.Fatalf("median of 1..9 = %v, want 5", got)
	}
}

func TestFilter3x3InteriorFullWindow(t *testing.T) {
	// 5x5 raster, all valid, with a single outlier at the center.
	width := int32(5)
	data := make([]float32, 25)
	valid := make([]bool, 25)
	for i := range data {
		data[i] = 10
		valid[i] = true
	}
	data[2*int(width)+2] = 1000 // center outlier

	dstData, dstValid := Filter3x3(data, valid, width)
	idx := 2*width + 2
	if !dstValid[idx] {
		t.Fatalf("center pixel should remain valid")
	}
	if dstData[idx] != 10 {
		t.Fatalf("center pixel after filtering = %v, want 10 (outlier suppressed)", dstData[idx])
	}

	// border pixels are copied unchanged.
	if dstData[0] != data[0] || !dstValid[0] {
		t.Fatalf("border pixel should be copied unchanged")
	}
}

func TestFilter3x3PropagatesInvalidity(t *testing.T) {
	width := int32(5)
	data := make([]float32, 25)
	valid := make([]bool, 25)
	for i := range data {
		data[i] = 10
		valid[i] = true
	}
	// invalidate the entire 3x3 neighborhood of the center pixel except itself.
	center := 2*width + 2
	for oy := int32(-1); oy <= 1; oy++ {
		for ox := int32(-1); ox <= 1; ox++ {
			if ox == 0 && oy == 0 {
				continue
			}
			valid[center+oy*width+ox] = false
		}
	}
	_, dstValid := Filter3x3(data, valid, width)
	if !dstValid[center] {
		t.Fatalf("center pixel with at least one valid neighbor (itself) should remain valid")
	}

	// now invalidate the center pixel itself; output must be invalid too.
	valid[center] = false
	_, dstValid2 := Filter3x3(data, valid, width)
	if dstValid2[center] {
		t.Fatalf("invalid input pixel must remain invalid in output")
	}
}
