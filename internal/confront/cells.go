package confront

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"

	"github.com/carbonscope/co2-diagnostics/internal/cmip"
)

// CellPolicy selects how a point station is matched to a model grid cell.
type CellPolicy string

// CellNearest matches the cell whose center is closest in latitude and
// longitude; vertically the lowest model level is used.
const CellNearest CellPolicy = "nearest"

// gridCell is one model cell's footprint plus its axis indices.
type gridCell struct {
	geom.Polygon
	j, i int
}

// Cell identifies the model grid cell a station was matched to.
type Cell struct {
	J   int     `json:"j"`
	I   int     `json:"i"`
	Lat float64 `json:"lat"` // cell center, degrees
	Lon float64 `json:"lon"`
}

// CellIndex answers point-to-cell queries against one model grid. Cells are
// rectangles whose edges sit halfway between neighboring centers, so the
// rectangle containing a point is also the cell with the nearest center.
type CellIndex struct {
	tree *rtree.Rtree
	lat  []float64
	lon  []float64
	west float64 // western edge of the tiled domain
}

// NewCellIndex tiles the model grid into cell rectangles and indexes them
// for spatial search. Outer latitude edges extend to the poles.
func NewCellIndex(d *cmip.Dataset) (*CellIndex, error) {
	if len(d.Lat) == 0 || len(d.Lon) == 0 {
		return nil, fmt.Errorf("confront: model %q has an empty grid", d.Model)
	}
	latEdges := axisEdges(d.Lat, -90, 90)
	lonEdges := axisEdges(d.Lon, math.Inf(-1), math.Inf(1))

	idx := &CellIndex{
		tree: rtree.NewTree(25, 50),
		lat:  d.Lat,
		lon:  d.Lon,
		west: lonEdges[0],
	}
	for j := range d.Lat {
		y0, y1 := latEdges[j], latEdges[j+1]
		for i := range d.Lon {
			x0, x1 := lonEdges[i], lonEdges[i+1]
			idx.tree.Insert(gridCell{
				Polygon: geom.Polygon{{
					{X: x0, Y: y0},
					{X: x1, Y: y0},
					{X: x1, Y: y1},
					{X: x0, Y: y1},
				}},
				j: j, i: i,
			})
		}
	}
	return idx, nil
}

// axisEdges returns len(centers)+1 edges halfway between neighboring
// centers. The outer edges mirror the first and last spacing, clamped to
// [lo, hi]. A single-center axis gets an arbitrary one-degree cell.
func axisEdges(centers []float64, lo, hi float64) []float64 {
	n := len(centers)
	edges := make([]float64, n+1)
	if n == 1 {
		edges[0] = math.Max(lo, centers[0]-0.5)
		edges[1] = math.Min(hi, centers[0]+0.5)
		return edges
	}
	for k := 1; k < n; k++ {
		edges[k] = (centers[k-1] + centers[k]) / 2
	}
	edges[0] = math.Max(lo, centers[0]-(centers[1]-centers[0])/2)
	edges[n] = math.Min(hi, centers[n-1]+(centers[n-1]-centers[n-2])/2)
	return edges
}

// Nearest returns the grid cell closest to the given point. The longitude
// is wrapped into the grid's own convention first, and the seam between the
// first and last column is resolved by comparing wrapped center distances.
func (idx *CellIndex) Nearest(lat, lon float64) Cell {
	lon = wrapInto(lon, idx.west)

	best := Cell{J: -1, I: -1}
	bestDist := math.Inf(1)
	consider := func(j, i int) {
		d := latDiff(lat, idx.lat[j])
		l := lonDiff(lon, idx.lon[i])
		dist := d*d + l*l
		// Ties go to the lowest indices so the match never depends on
		// index traversal order.
		better := dist < bestDist ||
			(dist == bestDist && (j < best.J || (j == best.J && i < best.I)))
		if better {
			bestDist = dist
			best = Cell{J: j, I: i, Lat: idx.lat[j], Lon: idx.lon[i]}
		}
	}

	p := geom.Point{X: lon, Y: lat}
	for _, cI := range idx.tree.SearchIntersect(p.Bounds()) {
		c := cI.(gridCell)
		consider(c.j, c.i)
	}
	if best.J >= 0 {
		return best
	}

	// The point fell on the wrap seam or outside the tiled domain of a
	// regional grid; scan the centers directly.
	for j := range idx.lat {
		for i := range idx.lon {
			consider(j, i)
		}
	}
	return best
}

// wrapInto maps a longitude into [west, west+360).
func wrapInto(lon, west float64) float64 {
	for lon < west {
		lon += 360
	}
	for lon >= west+360 {
		lon -= 360
	}
	return lon
}

func latDiff(a, b float64) float64 {
	return math.Abs(a - b)
}

// lonDiff is the shorter angular distance between two longitudes.
func lonDiff(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}
