package world

import (
	"encoding/json"
	"fmt"
)

// Terrain is the ground type of one grid cell. Only grass can be tilled,
// and only soil carries a crop.
type Terrain uint8

const (
	TerrainGrass Terrain = iota
	TerrainSoil
	TerrainSand
	TerrainWater
	TerrainWood
	TerrainStone
	TerrainWeed
)

var terrainNames = [...]string{
	TerrainGrass: "grass",
	TerrainSoil:  "soil",
	TerrainSand:  "sand",
	TerrainWater: "water",
	TerrainWood:  "wood",
	TerrainStone: "stone",
	TerrainWeed:  "weed",
}

func (t Terrain) String() string {
	if int(t) < len(terrainNames) {
		return terrainNames[t]
	}
	return fmt.Sprintf("terrain(%d)", int(t))
}

func (t Terrain) MarshalJSON() ([]byte, error) {
	if int(t) >= len(terrainNames) {
		return nil, fmt.Errorf("bad terrain %d", int(t))
	}
	return json.Marshal(terrainNames[t])
}

func (t *Terrain) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	got, err := ParseTerrain(s)
	if err != nil {
		return err
	}
	*t = got
	return nil
}

func ParseTerrain(s string) (Terrain, error) {
	for i, name := range terrainNames {
		if name == s {
			return Terrain(i), nil
		}
	}
	return 0, fmt.Errorf("unknown terrain %q", s)
}

// Walkable reports whether a player can stand on the terrain. Trees, rocks
// and water block movement; everything else is passable.
func (t Terrain) Walkable() bool {
	switch t {
	case TerrainWood, TerrainStone, TerrainWater:
		return false
	}
	return true
}

// CropStatus is meaningful only on soil cells.
type CropStatus string

const (
	StatusEmpty    CropStatus = "empty"
	StatusPlanted  CropStatus = "planted"
	StatusWithered CropStatus = "withered"
)

// Cell is one plot of the farm grid.
//
// Invariants: SeedID is non-empty iff Status is planted or withered (withered
// cells carry the dead-crop marker). Watered and DaysGrowing are meaningful
// only on soil.
type Cell struct {
	Terrain     Terrain    `json:"terrain"`
	Status      CropStatus `json:"status,omitempty"`
	SeedID      string     `json:"seed_id,omitempty"`
	DaysGrowing int        `json:"days_growing,omitempty"`
	Watered     bool       `json:"watered,omitempty"`

	// Variant picks the yield/visual tier for trees, rocks and weeds.
	Variant uint8 `json:"variant,omitempty"`
}

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}
