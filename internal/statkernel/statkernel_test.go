package statkernel

import "testing"

func TestHistogramBinning(t *testing.T) {
	samples := []float32{0, 1, 1, 2, 2, 2, 3, 100, -5}
	valid := []bool{true, true, true, true, true, true, true, true, false}
	hist := Histogram(samples, valid, 4, 0, 4)
	// bins: [0,1)=1 sample(0), [1,2)=2(1,1), [2,3)=3(2,2,2), [3,4]=1(3); 100 discarded out of range.
	want := []int64{1, 2, 3, 1}
	for i := range want {
		if hist[i] != want[i] {
			t.Fatalf("hist=%v, want %v", hist, want)
		}
	}
}

func TestPercentileEmpty(t *testing.T) {
	hist := make([]int64, 10)
	if got := Percentile(hist, 0.5); got != -1 {
		t.Fatalf("Percentile of empty histogram = %d, want -1", got)
	}
}

func TestPercentileBasic(t *testing.T) {
	hist := []int64{10, 10, 10, 10} // total 40
	// cumulative: 10,20,30,40 -> 95th percentile threshold = 38, first bin with cum>=38 is index 3
	if got := Percentile(hist, 0.95); got != 3 {
		t.Fatalf("Percentile(95) = %d, want 3", got)
	}
	if got := Percentile(hist, 0.25); got != 0 {
		t.Fatalf("Percentile(25) = %d, want 0", got)
	}
}

func TestMeanStdDevAllInvalid(t *testing.T) {
	samples := []float32{1, 2, 3}
	valid := []bool{false, false, false}
	if _, ok := Mean(samples, valid); ok {
		t.Fatalf("Mean should report ok=false for all-invalid input")
	}
	if _, ok := StdDev(samples, valid); ok {
		t.Fatalf("StdDev should report ok=false for all-invalid input")
	}
}

func TestMeanStdDevConstant(t *testing.T) {
	samples := []float32{5, 5, 5, 5}
	valid := []bool{true, true, true, true}
	mean, ok := Mean(samples, valid)
	if !ok || mean != 5 {
		t.Fatalf("Mean = (%v,%v), want (5,true)", mean, ok)
	}
	stddev, ok := StdDev(samples, valid)
	if !ok || stddev != 0 {
		t.Fatalf("StdDev of constant samples = (%v,%v), want (0,true)", stddev, ok)
	}
}

func TestStdDevPopulationForm(t *testing.T) {
	// population stddev of {2,4,4,4,5,5,7,9} is 2.0 (textbook example)
	samples := []float32{2, 4, 4, 4, 5, 5, 7, 9}
	valid := make([]bool, len(samples))
	for i := range valid {
		valid[i] = true
	}
	stddev, ok := StdDev(samples, valid)
	if !ok {
		t.Fatalf("StdDev not ok")
	}
	if stddev < 1.99 || stddev > 2.01 {
		t.Fatalf("StdDev = %v, want ~2.0", stddev)
	}
}
