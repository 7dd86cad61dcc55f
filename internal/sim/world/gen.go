package world

import (
	"math"

	"farmgrid.app/internal/sim/tuning"
)

// Generate builds a fresh farm grid for the given seed. The same seed always
// produces the same grid, so a regenerated map can be diffed against a
// persisted one when debugging.
//
// Each cell gets an elevation from two octaves of Perlin noise minus a cubic
// radial falloff, pushing water to the edges and land to the middle. Decor
// (rocks, weeds, trees) is drawn from a per-cell hash so it does not depend
// on iteration order.
func Generate(seed int64, cfg tuning.Tuning) *Grid {
	g := NewGrid(cfg.GridCols, cfg.GridRows)
	n := newPerlin()
	wg := cfg.Worldgen

	// Seed shifts the noise sampling window. Derived from a hash so nearby
	// seeds do not produce nearly identical maps.
	off := float64(hash2(seed, 0, 0)%100000) / 1000.0

	centerX := float64(g.Cols) / 2
	centerY := float64(g.Rows) / 2

	for y := 0; y < g.Rows; y++ {
		for x := 0; x < g.Cols; x++ {
			nx := (float64(x) - centerX) / (centerX * 0.95)
			ny := (float64(y) - centerY) / (centerY * 0.95)
			d := math.Sqrt(nx*nx + ny*ny)

			noise := n.Noise(float64(x)*wg.NoiseScale+off, float64(y)*wg.NoiseScale+off, 0)
			noise += n.Noise(float64(x)*wg.NoiseScale*2+off, float64(y)*wg.NoiseScale*2+off, 10) * 0.5

			elevation := (noise*0.8 + 0.6) - math.Pow(d, 3)*2.0

			c := g.At(x, y)
			switch {
			case elevation < wg.WaterLevel:
				c.Terrain = TerrainWater
			case elevation < wg.SandLevel:
				c.Terrain = TerrainSand
			case elevation < wg.HighlandLevel:
				c.Terrain = TerrainGrass
				roll := int(hash2(seed+1, x, y) % 1000)
				if roll < wg.StonePermille {
					c.Terrain = TerrainStone
				} else if roll < wg.StonePermille+wg.WeedPermille {
					c.Terrain = TerrainWeed
				}
			default:
				c.Terrain = TerrainGrass
				if int(hash2(seed+2, x, y)%1000) < wg.TreePermille {
					c.Terrain = TerrainWood
				}
			}

			// Spawn safety: the center stays clear walkable grass.
			if d < wg.SpawnSafeRadius {
				c.Terrain = TerrainGrass
			}

			if c.Terrain == TerrainWood || c.Terrain == TerrainStone || c.Terrain == TerrainWeed {
				c.Variant = uint8(hash2(seed+3, x, y) % 3)
			}
		}
	}
	return g
}

func hash2(seed int64, x, y int) uint64 {
	ux := uint64(uint32(int32(x)))
	uy := uint64(uint32(int32(y)))
	v := uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uy * 0xbf58476d1ce4e5b9)
	return mix64(v)
}

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
