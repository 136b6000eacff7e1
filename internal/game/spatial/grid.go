// Package spatial provides a uniform hash grid for broad-phase pointer picking.
//
// The grid uses preallocated slices with integer indices (not pointers)
// so it can be cleared and refilled every query without allocating.
package spatial

import (
	"math"
)

// Bounds is an axis-aligned rectangle on the ground plane (x, z).
type Bounds struct {
	MinX, MinZ float64
	MaxX, MaxZ float64
}

// Centered returns square bounds of the given half-extent around the origin.
func Centered(halfExtent float64) Bounds {
	return Bounds{MinX: -halfExtent, MinZ: -halfExtent, MaxX: halfExtent, MaxZ: halfExtent}
}

// SpatialGrid buckets entity indices by ground-plane cell.
//
// Cell size should be at least the largest hit radius so a query touches
// a 3x3 neighbourhood at most. Cells are row-major (cells[row*cols+col]).
// Positions outside the bounds clamp to the border cells.
type SpatialGrid struct {
	bounds      Bounds
	cellSize    float64
	invCellSize float64
	cols, rows  int
	cells       [][]uint32
	scratch     []uint32 // reusable query result buffer
	count       int
}

// NewSpatialGrid creates a grid covering bounds.
// maxEntities is used to preallocate cell capacity.
func NewSpatialGrid(bounds Bounds, cellSize float64, maxEntities int) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = 1
	}
	cols := int(math.Ceil((bounds.MaxX - bounds.MinX) / cellSize))
	rows := int(math.Ceil((bounds.MaxZ - bounds.MinZ) / cellSize))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	cells := make([][]uint32, cols*rows)
	perCell := maxEntities / len(cells)
	if perCell < 2 {
		perCell = 2
	}
	for i := range cells {
		cells[i] = make([]uint32, 0, perCell)
	}

	return &SpatialGrid{
		bounds:      bounds,
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		cols:        cols,
		rows:        rows,
		cells:       cells,
		scratch:     make([]uint32, 0, 16),
	}
}

// Clear empties all cells, keeping capacity.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
	g.count = 0
}

// Insert files entityID under the cell containing (x, z).
func (g *SpatialGrid) Insert(entityID uint32, x, z float64) {
	col, row := g.cellCoords(x, z)
	idx := row*g.cols + col
	g.cells[idx] = append(g.cells[idx], entityID)
	g.count++
}

func (g *SpatialGrid) cellCoords(x, z float64) (col, row int) {
	col = g.clampCol(int(math.Floor((x - g.bounds.MinX) * g.invCellSize)))
	row = g.clampRow(int(math.Floor((z - g.bounds.MinZ) * g.invCellSize)))
	return col, row
}

func (g *SpatialGrid) clampCol(c int) int {
	if c < 0 {
		return 0
	}
	if c >= g.cols {
		return g.cols - 1
	}
	return c
}

func (g *SpatialGrid) clampRow(r int) int {
	if r < 0 {
		return 0
	}
	if r >= g.rows {
		return g.rows - 1
	}
	return r
}

// QueryRadius returns entity IDs in every cell overlapping the square of
// half-size radius around (cx, cz).
//
// IMPORTANT: The returned slice is reused on subsequent calls.
// Candidates may lie outside the radius; callers do the narrow phase.
func (g *SpatialGrid) QueryRadius(cx, cz, radius float64) []uint32 {
	g.scratch = g.scratch[:0]

	minCol, minRow := g.cellCoords(cx-radius, cz-radius)
	maxCol, maxRow := g.cellCoords(cx+radius, cz+radius)

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			g.scratch = append(g.scratch, g.cells[row*g.cols+col]...)
		}
	}
	return g.scratch
}

// Len returns the number of inserted entities.
func (g *SpatialGrid) Len() int {
	return g.count
}

// Dimensions returns the grid dimensions.
func (g *SpatialGrid) Dimensions() (cols, rows int, cellSize float64) {
	return g.cols, g.rows, g.cellSize
}
