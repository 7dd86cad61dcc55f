package world

import (
	"fmt"

	"farmgrid.app/internal/protocol"
	"farmgrid.app/internal/sim/catalogs"
)

// RuleError is a rejected action. Code is one of the protocol E_* codes and
// travels to the UI unchanged; Message is for logs.
type RuleError struct {
	Code    string
	Message string
}

func (e *RuleError) Error() string { return e.Code + ": " + e.Message }

func ruleErr(code, format string, args ...any) *RuleError {
	if !protocol.IsKnownCode(code) {
		code = protocol.ErrInternal
	}
	return &RuleError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Action is the closed set of plot actions. The compiler enforces exhaustive
// handling in Apply; there is no string-keyed dispatch to drift out of sync.
type Action interface {
	Plot() int
	isAction()
}

type ClearAction struct{ PlotIndex int }
type TillAction struct{ PlotIndex int }
type PlantAction struct {
	PlotIndex int
	SeedID    string
}
type WaterAction struct{ PlotIndex int }
type HarvestAction struct{ PlotIndex int }

func (a ClearAction) Plot() int   { return a.PlotIndex }
func (a TillAction) Plot() int    { return a.PlotIndex }
func (a PlantAction) Plot() int   { return a.PlotIndex }
func (a WaterAction) Plot() int   { return a.PlotIndex }
func (a HarvestAction) Plot() int { return a.PlotIndex }

func (ClearAction) isAction()   {}
func (TillAction) isAction()    {}
func (PlantAction) isAction()   {}
func (WaterAction) isAction()   {}
func (HarvestAction) isAction() {}

// Result describes a successfully applied action. Cell is the plot's
// post-state; InventoryDeltas holds item gains (positive) and spends
// (negative) for the sync layer to mirror out.
type Result struct {
	PlotIndex       int
	Cell            Cell
	InventoryDeltas map[string]int
	EnergySpent     int
	XP              int
}

// Apply runs one action against the world, mutating grid, inventory and
// stats together. On a RuleError nothing has been mutated.
func (w *World) Apply(a Action) (Result, error) {
	i := a.Plot()
	if i < 0 || i >= len(w.Grid.Cells) {
		return Result{}, ruleErr(protocol.ErrInvalidTarget, "plot %d out of range", i)
	}
	c := &w.Grid.Cells[i]

	switch act := a.(type) {
	case ClearAction:
		return w.applyClear(i, c)
	case TillAction:
		return w.applyTill(i, c)
	case PlantAction:
		return w.applyPlant(i, c, act.SeedID)
	case WaterAction:
		return w.applyWater(i, c)
	case HarvestAction:
		return w.applyHarvest(i, c)
	default:
		return Result{}, ruleErr(protocol.ErrBadRequest, "unknown action %T", a)
	}
}

// spend checks and deducts energy. Callers must have finished all rule
// checks first so a rejection never costs energy.
func (w *World) spend(cost int) error {
	if w.Stats.Energy < cost {
		return ruleErr(protocol.ErrNoEnergy, "need %d energy, have %d", cost, w.Stats.Energy)
	}
	w.Stats.Energy -= cost
	return nil
}

func clearYieldItem(t Terrain) string {
	switch t {
	case TerrainWood:
		return "wood"
	case TerrainStone:
		return "stone"
	default:
		return "fiber"
	}
}

func (w *World) applyClear(i int, c *Cell) (Result, error) {
	switch {
	case c.Terrain == TerrainWood || c.Terrain == TerrainStone:
		if err := w.spend(w.Tun.Energy.ClearHard); err != nil {
			return Result{}, err
		}
		item := clearYieldItem(c.Terrain)
		count := int(c.Variant) + 1
		w.Inv.Add(item, count)
		w.Stats.Exp += w.Tun.XP.Clear
		*c = Cell{Terrain: TerrainGrass}
		return Result{
			PlotIndex:       i,
			Cell:            *c,
			InventoryDeltas: map[string]int{item: count},
			EnergySpent:     w.Tun.Energy.ClearHard,
			XP:              w.Tun.XP.Clear,
		}, nil

	case c.Terrain == TerrainWeed:
		if err := w.spend(w.Tun.Energy.ClearSoft); err != nil {
			return Result{}, err
		}
		count := int(c.Variant) + 1
		w.Inv.Add("fiber", count)
		w.Stats.Exp += w.Tun.XP.Clear
		*c = Cell{Terrain: TerrainGrass}
		return Result{
			PlotIndex:       i,
			Cell:            *c,
			InventoryDeltas: map[string]int{"fiber": count},
			EnergySpent:     w.Tun.Energy.ClearSoft,
			XP:              w.Tun.XP.Clear,
		}, nil

	case c.Terrain == TerrainSoil && c.Status == StatusWithered:
		if err := w.spend(w.Tun.Energy.ClearSoft); err != nil {
			return Result{}, err
		}
		*c = Cell{Terrain: TerrainSoil, Status: StatusEmpty}
		return Result{
			PlotIndex:   i,
			Cell:        *c,
			EnergySpent: w.Tun.Energy.ClearSoft,
		}, nil

	default:
		return Result{}, ruleErr(protocol.ErrInvalidTarget, "plot %d (%s) has nothing to clear", i, c.Terrain)
	}
}

func (w *World) applyTill(i int, c *Cell) (Result, error) {
	if c.Terrain != TerrainGrass {
		return Result{}, ruleErr(protocol.ErrInvalidTarget, "cannot till %s", c.Terrain)
	}
	// A tree on the cell directly north shades the plot.
	x, y := w.Grid.Coord(i)
	if w.Grid.InBounds(x, y-1) && w.Grid.At(x, y-1).Terrain == TerrainWood {
		return Result{}, ruleErr(protocol.ErrInvalidTarget, "plot %d is shaded by a tree", i)
	}
	if err := w.spend(w.Tun.Energy.Till); err != nil {
		return Result{}, err
	}
	*c = Cell{Terrain: TerrainSoil, Status: StatusEmpty}
	return Result{PlotIndex: i, Cell: *c, EnergySpent: w.Tun.Energy.Till}, nil
}

func (w *World) applyPlant(i int, c *Cell, seedID string) (Result, error) {
	if c.Terrain != TerrainSoil || c.Status != StatusEmpty {
		return Result{}, ruleErr(protocol.ErrInvalidTarget, "plot %d is not empty soil", i)
	}
	def, ok := w.Catalog.Get(seedID)
	if !ok || def.Type != catalogs.ItemSeed {
		return Result{}, ruleErr(protocol.ErrBadRequest, "%q is not a seed", seedID)
	}
	season := w.Season()
	if !def.GrowsIn(string(season)) {
		return Result{}, ruleErr(protocol.ErrWrongSeason, "%s does not grow in %s", seedID, season)
	}
	if w.Inv.Count(seedID) < 1 {
		return Result{}, ruleErr(protocol.ErrNoItem, "no %s in inventory", seedID)
	}
	if err := w.spend(w.Tun.Energy.Plant); err != nil {
		return Result{}, err
	}
	w.Inv.Remove(seedID, 1)
	*c = Cell{Terrain: TerrainSoil, Status: StatusPlanted, SeedID: seedID}
	return Result{
		PlotIndex:       i,
		Cell:            *c,
		InventoryDeltas: map[string]int{seedID: -1},
		EnergySpent:     w.Tun.Energy.Plant,
	}, nil
}

func (w *World) applyWater(i int, c *Cell) (Result, error) {
	if c.Terrain != TerrainSoil {
		return Result{}, ruleErr(protocol.ErrInvalidTarget, "plot %d is not soil", i)
	}
	if c.Watered {
		// Idempotent: already watered costs nothing and changes nothing.
		return Result{PlotIndex: i, Cell: *c}, nil
	}
	if err := w.spend(w.Tun.Energy.Water); err != nil {
		return Result{}, err
	}
	c.Watered = true
	return Result{PlotIndex: i, Cell: *c, EnergySpent: w.Tun.Energy.Water}, nil
}

func (w *World) applyHarvest(i int, c *Cell) (Result, error) {
	if c.Terrain != TerrainSoil || c.Status != StatusPlanted {
		return Result{}, ruleErr(protocol.ErrInvalidTarget, "plot %d has no crop", i)
	}
	def, ok := w.Catalog.Get(c.SeedID)
	if !ok {
		return Result{}, ruleErr(protocol.ErrInternal, "planted unknown seed %q", c.SeedID)
	}
	if c.DaysGrowing < def.GrowthDays {
		return Result{}, ruleErr(protocol.ErrInvalidTarget, "plot %d not ready: %d/%d days", i, c.DaysGrowing, def.GrowthDays)
	}
	if err := w.spend(w.Tun.Energy.Harvest); err != nil {
		return Result{}, err
	}
	cropID := def.CropID()
	count := def.MinHarvest
	if def.MaxHarvest > def.MinHarvest {
		count += w.rng.Intn(def.MaxHarvest - def.MinHarvest + 1)
	}
	w.Inv.Add(cropID, count)
	w.Stats.Exp += w.Tun.XP.Harvest
	*c = Cell{Terrain: TerrainSoil, Status: StatusEmpty}
	return Result{
		PlotIndex:       i,
		Cell:            *c,
		InventoryDeltas: map[string]int{cropID: count},
		EnergySpent:     w.Tun.Energy.Harvest,
		XP:              w.Tun.XP.Harvest,
	}, nil
}
