package grid

import "testing"

func TestGetGridCoords(t *testing.T) {
	tests := []struct {
		index int
		cols  int
		wantX int
		wantY int
	}{
		// 8 cols (the D5700 character screen)
		{0, 8, 0, 0},
		{1, 8, 1, 0},
		{7, 8, 7, 0},
		{8, 8, 0, 1},
		{9, 8, 1, 1},
		{15, 8, 7, 1},
		{16, 8, 0, 2},
		{63, 8, 7, 7},

		// 16 cols
		{0, 16, 0, 0},
		{15, 16, 15, 0},
		{16, 16, 0, 1},
		{31, 16, 15, 1},
		{255, 16, 15, 15},
	}

	for _, tc := range tests {
		gotX, gotY := GetGridCoords(tc.index, tc.cols)
		if gotX != tc.wantX || gotY != tc.wantY {
			t.Errorf("GetGridCoords(%d, %d) = (%d, %d); want (%d, %d)", tc.index, tc.cols, gotX, gotY, tc.wantX, tc.wantY)
		}
	}
}
