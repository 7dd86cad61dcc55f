package path

import (
	"testing"

	"farmgrid.app/internal/sim/world"
)

// buildGrid parses a tile picture: '.' grass, '#' rock, '~' water, 'T' tree.
func buildGrid(t *testing.T, rows ...string) *world.Grid {
	t.Helper()
	g := world.NewGrid(len(rows[0]), len(rows))
	for y, row := range rows {
		if len(row) != g.Cols {
			t.Fatalf("ragged row %d", y)
		}
		for x, ch := range row {
			c := g.At(x, y)
			switch ch {
			case '.':
				c.Terrain = world.TerrainGrass
			case '#':
				c.Terrain = world.TerrainStone
			case '~':
				c.Terrain = world.TerrainWater
			case 'T':
				c.Terrain = world.TerrainWood
			default:
				t.Fatalf("bad tile %q", ch)
			}
		}
	}
	return g
}

func TestFindPathStraightLine(t *testing.T) {
	g := buildGrid(t,
		".....",
		".....",
		".....",
	)
	got := FindPath(g, world.Point{X: 0, Y: 1}, world.Point{X: 4, Y: 1})
	if got == nil {
		t.Fatalf("no path on open grid")
	}
	// A clear straight line simplifies to its two endpoints.
	if len(got) != 2 || got[0] != (world.Point{X: 0, Y: 1}) || got[1] != (world.Point{X: 4, Y: 1}) {
		t.Fatalf("path = %v", got)
	}
}

func TestFindPathAroundWall(t *testing.T) {
	g := buildGrid(t,
		".....",
		".###.",
		".....",
	)
	start := world.Point{X: 0, Y: 1}
	goal := world.Point{X: 4, Y: 1}
	got := FindPath(g, start, goal)
	if got == nil {
		t.Fatalf("no path around wall")
	}
	if got[0] != start || got[len(got)-1] != goal {
		t.Fatalf("endpoints = %v", got)
	}
	// Every consecutive waypoint pair must be line-of-sight walkable.
	for i := 1; i < len(got); i++ {
		if !lineWalkable(g, got[i-1], got[i]) {
			t.Fatalf("segment %v-%v crosses an obstacle", got[i-1], got[i])
		}
	}
}

func TestFindPathRejectsBadGoals(t *testing.T) {
	g := buildGrid(t,
		"..~",
		"..T",
		"..#",
	)
	start := world.Point{X: 0, Y: 0}
	for _, goal := range []world.Point{
		{X: 2, Y: 0}, // water
		{X: 2, Y: 1}, // tree
		{X: 2, Y: 2}, // rock
		{X: 9, Y: 9}, // out of bounds
		{X: -1, Y: 0},
	} {
		if got := FindPath(g, start, goal); got != nil {
			t.Fatalf("goal %v: got path %v, want nil", goal, got)
		}
	}
}

func TestFindPathUnreachable(t *testing.T) {
	g := buildGrid(t,
		".~.",
		".~.",
		".~.",
	)
	if got := FindPath(g, world.Point{X: 0, Y: 1}, world.Point{X: 2, Y: 1}); got != nil {
		t.Fatalf("crossed water: %v", got)
	}
}

func TestFindPathSameCell(t *testing.T) {
	g := buildGrid(t, "...", "...")
	p := world.Point{X: 1, Y: 1}
	got := FindPath(g, p, p)
	if len(got) != 1 || got[0] != p {
		t.Fatalf("path = %v", got)
	}
}

func TestSimplifiedSegmentsNeverCrossObstacles(t *testing.T) {
	g := buildGrid(t,
		"........",
		"..T.....",
		"....#...",
		"..~~....",
		"........",
	)
	start := world.Point{X: 0, Y: 0}
	goal := world.Point{X: 7, Y: 4}
	got := FindPath(g, start, goal)
	if got == nil {
		t.Fatalf("no path")
	}
	if got[0] != start || got[len(got)-1] != goal {
		t.Fatalf("endpoints = %v", got)
	}
	for i := 1; i < len(got); i++ {
		if !lineWalkable(g, got[i-1], got[i]) {
			t.Fatalf("segment %v-%v crosses an obstacle", got[i-1], got[i])
		}
	}
}

func TestFindPathDeterministic(t *testing.T) {
	g := buildGrid(t,
		"......",
		".T.#..",
		"..~...",
		"......",
	)
	start := world.Point{X: 0, Y: 0}
	goal := world.Point{X: 5, Y: 3}
	first := FindPath(g, start, goal)
	for i := 0; i < 10; i++ {
		again := FindPath(g, start, goal)
		if len(again) != len(first) {
			t.Fatalf("run %d: %v vs %v", i, again, first)
		}
		for j := range again {
			if again[j] != first[j] {
				t.Fatalf("run %d: %v vs %v", i, again, first)
			}
		}
	}
}
