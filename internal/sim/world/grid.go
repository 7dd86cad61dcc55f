package world

// Grid is the full farm tilemap, row-major.
type Grid struct {
	Cols  int
	Rows  int
	Cells []Cell
}

func NewGrid(cols, rows int) *Grid {
	return &Grid{Cols: cols, Rows: rows, Cells: make([]Cell, cols*rows)}
}

func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.Cols && y >= 0 && y < g.Rows
}

// Index maps (x, y) to the flat cell index. Callers must bounds-check first.
func (g *Grid) Index(x, y int) int { return y*g.Cols + x }

func (g *Grid) At(x, y int) *Cell { return &g.Cells[g.Index(x, y)] }

// Coord is the inverse of Index.
func (g *Grid) Coord(i int) (x, y int) { return i % g.Cols, i / g.Cols }

func (g *Grid) Walkable(x, y int) bool {
	if !g.InBounds(x, y) {
		return false
	}
	return g.Cells[g.Index(x, y)].Terrain.Walkable()
}

// Center is the spawn cell.
func (g *Grid) Center() Point { return Point{X: g.Cols / 2, Y: g.Rows / 2} }
