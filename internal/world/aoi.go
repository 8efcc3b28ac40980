package world

import "math"

// AOIGrid implements a cell-based Area of Interest index over 2D (x, y)
// positions. GetNearby scans a neighbourhood sized to the query radius
// rather than a fixed 3x3 window, so a radius bigger than one cell still
// sees every candidate cell. Accessed only from the tick goroutine — no
// locks.

const cellSize = 64.0

type cellKey struct {
	cx, cy int64
}

func toCellCoord(v float64) int64 {
	c := int64(v / cellSize)
	if v < 0 && float64(c)*cellSize != v {
		c--
	}
	return c
}

// AOIGrid tracks which entity ids occupy which cells.
type AOIGrid struct {
	cells map[cellKey]map[uint64]struct{}
}

func NewAOIGrid() *AOIGrid {
	return &AOIGrid{cells: make(map[cellKey]map[uint64]struct{})}
}

func (g *AOIGrid) key(x, y float64) cellKey {
	return cellKey{cx: toCellCoord(x), cy: toCellCoord(y)}
}

// Add places an entity into the grid.
func (g *AOIGrid) Add(id uint64, x, y float64) {
	k := g.key(x, y)
	cell := g.cells[k]
	if cell == nil {
		cell = make(map[uint64]struct{})
		g.cells[k] = cell
	}
	cell[id] = struct{}{}
}

// Remove takes an entity out of the grid.
func (g *AOIGrid) Remove(id uint64, x, y float64) {
	k := g.key(x, y)
	cell := g.cells[k]
	if cell != nil {
		delete(cell, id)
		if len(cell) == 0 {
			delete(g.cells, k)
		}
	}
}

// Move updates an entity's cell when its position changes.
func (g *AOIGrid) Move(id uint64, oldX, oldY, newX, newY float64) {
	oldK := g.key(oldX, oldY)
	newK := g.key(newX, newY)
	if oldK == newK {
		return
	}
	g.Remove(id, oldX, oldY)
	g.Add(id, newX, newY)
}

// GetNearby returns every id in the cell neighbourhood covering radius
// around a position. This is a coarse candidate set — callers must still
// apply the exact interest_radius distance check. The scan window is
// derived from radius (ceil(radius/cellSize) cells in every direction,
// minimum 1) so a radius spanning more than one cell is never silently
// truncated to a fixed 3x3 window.
func (g *AOIGrid) GetNearby(x, y float64, radius float64) []uint64 {
	reach := int64(math.Ceil(radius / cellSize))
	if reach < 1 {
		reach = 1
	}
	cx := toCellCoord(x)
	cy := toCellCoord(y)
	var result []uint64
	for dx := -reach; dx <= reach; dx++ {
		for dy := -reach; dy <= reach; dy++ {
			k := cellKey{cx: cx + dx, cy: cy + dy}
			for id := range g.cells[k] {
				result = append(result, id)
			}
		}
	}
	return result
}
