package world

import (
	"testing"

	"farmgrid.app/internal/sim/tuning"
)

func TestGenerateDeterministic(t *testing.T) {
	tun := tuning.Default()
	tun.GridCols = 40
	tun.GridRows = 40

	a := Generate(42, tun)
	b := Generate(42, tun)
	for i := range a.Cells {
		if a.Cells[i] != b.Cells[i] {
			t.Fatalf("cell %d differs across identical seeds: %+v vs %+v", i, a.Cells[i], b.Cells[i])
		}
	}

	c := Generate(43, tun)
	same := 0
	for i := range a.Cells {
		if a.Cells[i] == c.Cells[i] {
			same++
		}
	}
	if same == len(a.Cells) {
		t.Fatalf("different seeds produced identical grids")
	}
}

func TestGenerateSpawnSafety(t *testing.T) {
	tun := tuning.Default()
	tun.GridCols = 40
	tun.GridRows = 40
	g := Generate(7, tun)

	center := g.Center()
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			x, y := center.X+dx, center.Y+dy
			if got := g.At(x, y).Terrain; got != TerrainGrass {
				t.Fatalf("spawn cell (%d,%d) = %s, want grass", x, y, got)
			}
		}
	}
}

func TestGenerateEdgesAreWater(t *testing.T) {
	tun := tuning.Default()
	tun.GridCols = 60
	tun.GridRows = 60
	g := Generate(11, tun)

	// The cubic falloff drowns the corners regardless of noise.
	for _, p := range []Point{{0, 0}, {g.Cols - 1, 0}, {0, g.Rows - 1}, {g.Cols - 1, g.Rows - 1}} {
		if got := g.At(p.X, p.Y).Terrain; got != TerrainWater {
			t.Fatalf("corner (%d,%d) = %s, want water", p.X, p.Y, got)
		}
	}
}

func TestGenerateVariantsOnlyOnDecor(t *testing.T) {
	tun := tuning.Default()
	tun.GridCols = 60
	tun.GridRows = 60
	g := Generate(5, tun)
	for i, c := range g.Cells {
		switch c.Terrain {
		case TerrainWood, TerrainStone, TerrainWeed:
			if c.Variant > 2 {
				t.Fatalf("cell %d variant = %d", i, c.Variant)
			}
		default:
			if c.Variant != 0 {
				t.Fatalf("cell %d (%s) has variant %d", i, c.Terrain, c.Variant)
			}
		}
		if c.Status != "" || c.SeedID != "" || c.Watered {
			t.Fatalf("fresh cell %d carries crop state: %+v", i, c)
		}
	}
}
