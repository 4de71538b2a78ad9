package confront

import (
	"testing"

	"github.com/carbonscope/co2-diagnostics/internal/cmip"
)

func gridIndex(t *testing.T, lat, lon []float64) *CellIndex {
	t.Helper()
	idx, err := NewCellIndex(&cmip.Dataset{Model: "TEST", Lat: lat, Lon: lon})
	if err != nil {
		t.Fatal(err)
	}
	return idx
}

func TestNearestPicksContainingCell(t *testing.T) {
	idx := gridIndex(t, []float64{-60, 0, 60}, []float64{0, 90, 180, 270})

	c := idx.Nearest(10, 100)
	if c.J != 1 || c.I != 1 {
		t.Errorf("cell = (%d,%d), want (1,1)", c.J, c.I)
	}
	if c.Lat != 0 || c.Lon != 90 {
		t.Errorf("center = (%v,%v), want (0,90)", c.Lat, c.Lon)
	}
}

func TestNearestWrapsLongitude(t *testing.T) {
	idx := gridIndex(t, []float64{-60, 0, 60}, []float64{0, 90, 180, 270})

	// A western-hemisphere longitude as stored in raw observation files.
	if c := idx.Nearest(10, -155.576); c.I != 2 {
		t.Errorf("cell lon index = %d, want 2 (center 180)", c.I)
	}
	// Just west of the wrap seam, closest to the 0 column.
	if c := idx.Nearest(10, 359); c.I != 0 {
		t.Errorf("cell lon index = %d, want 0 (center 0)", c.I)
	}
}

func TestNearestReachesPoles(t *testing.T) {
	idx := gridIndex(t, []float64{-60, 0, 60}, []float64{0, 90, 180, 270})

	if c := idx.Nearest(89.9, 10); c.J != 2 {
		t.Errorf("cell lat index = %d, want 2 (center 60)", c.J)
	}
	if c := idx.Nearest(-90, 10); c.J != 0 {
		t.Errorf("cell lat index = %d, want 0 (center -60)", c.J)
	}
}

func TestNearestTieBreaksLowestIndex(t *testing.T) {
	idx := gridIndex(t, []float64{-60, 0, 60}, []float64{0, 90, 180, 270})

	// Exactly halfway between the 0 and 90 columns.
	if c := idx.Nearest(10, 45); c.I != 0 {
		t.Errorf("cell lon index = %d, want 0 on a tie", c.I)
	}
}

func TestNearestOutsideRegionalGrid(t *testing.T) {
	idx := gridIndex(t, []float64{0, 10}, []float64{100, 110})

	c := idx.Nearest(50, 230)
	if c.J != 1 || c.I != 1 {
		t.Errorf("cell = (%d,%d), want (1,1)", c.J, c.I)
	}
}
