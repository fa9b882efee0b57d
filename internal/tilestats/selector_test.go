package tilestats

import (
	"errors"
	"testing"

	"github.com/mlnoga/floodsar/internal/errs"
	"github.com/mlnoga/floodsar/internal/raster"
)

func TestSelectNoHeterogeneousTiles(t *testing.T) {
	// every tile has identical mean and stddev -> candidate set empty
	// because mean < global_mean never holds.
	table := NewTable(2, 2)
	for r := int32(0); r < 2; r++ {
		for c := int32(0); c < 2; c++ {
			table.Set(r, c, 100, 5, true, raster.ROI{X: c * 16, Y: r * 16, Width: 16, Height: 16})
		}
	}
	_, err := Select(table)
	if err == nil {
		t.Fatalf("expected algorithmic error for homogeneous tiles")
	}
	var pe *errs.PipelineError
	if !errors.As(err, &pe) || pe.Kind != errs.Algorithmic {
		t.Fatalf("expected *errs.PipelineError{Kind: Algorithmic}, got %v", err)
	}
}

func TestSelectPicksHeterogeneousLowMeanTiles(t *testing.T) {
	table := NewTable(3, 1)
	table.Set(0, 0, 50, 1, true, raster.ROI{X: 0, Y: 0, Width: 16, Height: 16})
	table.Set(0, 1, 200, 50, true, raster.ROI{X: 16, Y: 0, Width: 16, Height: 16}) // high stddev, high mean
	table.Set(0, 2, 10, 50, true, raster.ROI{X: 32, Y: 0, Width: 16, Height: 16})  // high stddev, low mean

	rois, err := Select(table)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(rois) != 1 {
		t.Fatalf("expected exactly one candidate (low mean + high stddev), got %d", len(rois))
	}
	want := raster.ROI{X: 32, Y: 0, Width: 16, Height: 16}
	if rois[0] != want {
		t.Fatalf("selected ROI = %v, want %v", rois[0], want)
	}
}

func TestSelectCapsAtMaxNumTiles(t *testing.T) {
	table := NewTable(8, 1)
	globalMeanHigh := float32(1000)
	table.Set(0, 0, globalMeanHigh, 0, true, raster.ROI{X: 0, Y: 0, Width: 8, Height: 8})
	for c := int32(1); c < 8; c++ {
		table.Set(0, c, 1, float32(c), true, raster.ROI{X: c * 8, Y: 0, Width: 8, Height: 8})
	}
	rois, err := Select(table)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(rois) > MaxNumTiles {
		t.Fatalf("Select returned %d tiles, want at most %d", len(rois), MaxNumTiles)
	}
}
