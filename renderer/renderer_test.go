package renderer

import "testing"

func TestDeviceSize(t *testing.T) {
	testCases := []struct {
		w, h, pr     float64
		wantW, wantH int
	}{
		{800, 600, 1, 800, 600},
		{800, 600, 2, 1600, 1200},
		{100.7, 50.2, 1.5, 151, 75},
		{0, 0, 2, 0, 0},
		{-10, 5, 1, 0, 5},
	}
	for _, tc := range testCases {
		w, h := DeviceSize(tc.w, tc.h, tc.pr)
		if w != tc.wantW || h != tc.wantH {
			t.Errorf("DeviceSize(%v, %v, %v) = %d x %d, want %d x %d",
				tc.w, tc.h, tc.pr, w, h, tc.wantW, tc.wantH)
		}
	}
}
