package world

import (
	"testing"

	"farmgrid.app/internal/protocol"
	"farmgrid.app/internal/sim/catalogs"
	"farmgrid.app/internal/sim/tuning"
)

func testWorld(t *testing.T) *World {
	t.Helper()
	tun := tuning.Default()
	tun.GridCols = 8
	tun.GridRows = 8
	w := New(7, tun, catalogs.Default())
	// Tests set up terrain explicitly.
	for i := range w.Grid.Cells {
		w.Grid.Cells[i] = Cell{Terrain: TerrainGrass}
	}
	return w
}

func mustApply(t *testing.T, w *World, a Action) Result {
	t.Helper()
	res, err := w.Apply(a)
	if err != nil {
		t.Fatalf("apply %T: %v", a, err)
	}
	return res
}

func wantRule(t *testing.T, err error, code string) {
	t.Helper()
	re, ok := err.(*RuleError)
	if !ok {
		t.Fatalf("got %v, want RuleError %s", err, code)
	}
	if re.Code != code {
		t.Fatalf("code = %s, want %s", re.Code, code)
	}
}

func TestTillShadeRule(t *testing.T) {
	w := testWorld(t)
	// Plot 9 is (1,1); a tree at (1,0) is directly north.
	w.Grid.At(1, 0).Terrain = TerrainWood

	_, err := w.Apply(TillAction{PlotIndex: w.Grid.Index(1, 1)})
	wantRule(t, err, protocol.ErrInvalidTarget)
	if got := w.Grid.At(1, 1); got.Terrain != TerrainGrass || w.Stats.Energy != w.Stats.MaxEnergy {
		t.Fatalf("rejected till mutated state: %+v energy=%d", got, w.Stats.Energy)
	}

	res := mustApply(t, w, TillAction{PlotIndex: w.Grid.Index(1, 2)})
	if res.Cell.Terrain != TerrainSoil || res.Cell.Status != StatusEmpty {
		t.Fatalf("till result = %+v", res.Cell)
	}
	if w.Stats.Energy != w.Stats.MaxEnergy-w.Tun.Energy.Till {
		t.Fatalf("energy = %d after till", w.Stats.Energy)
	}
}

func TestClearYieldsByVariant(t *testing.T) {
	w := testWorld(t)
	*w.Grid.At(2, 2) = Cell{Terrain: TerrainWood, Variant: 2}
	res := mustApply(t, w, ClearAction{PlotIndex: w.Grid.Index(2, 2)})
	if res.InventoryDeltas["wood"] != 3 || w.Inv.Count("wood") != 3 {
		t.Fatalf("wood yield = %v", res.InventoryDeltas)
	}
	if res.Cell.Terrain != TerrainGrass {
		t.Fatalf("cleared cell = %+v", res.Cell)
	}
	if res.EnergySpent != w.Tun.Energy.ClearHard || res.XP != w.Tun.XP.Clear {
		t.Fatalf("cost/xp = %d/%d", res.EnergySpent, res.XP)
	}

	*w.Grid.At(3, 3) = Cell{Terrain: TerrainWeed, Variant: 0}
	res = mustApply(t, w, ClearAction{PlotIndex: w.Grid.Index(3, 3)})
	if res.InventoryDeltas["fiber"] != 1 || res.EnergySpent != w.Tun.Energy.ClearSoft {
		t.Fatalf("weed clear = %+v", res)
	}

	_, err := w.Apply(ClearAction{PlotIndex: w.Grid.Index(4, 4)})
	wantRule(t, err, protocol.ErrInvalidTarget)
}

func TestClearWitheredPlot(t *testing.T) {
	w := testWorld(t)
	*w.Grid.At(1, 1) = Cell{Terrain: TerrainSoil, Status: StatusWithered, SeedID: catalogs.DeadCropID}
	res := mustApply(t, w, ClearAction{PlotIndex: w.Grid.Index(1, 1)})
	if res.Cell.Terrain != TerrainSoil || res.Cell.Status != StatusEmpty || res.Cell.SeedID != "" {
		t.Fatalf("cleared withered = %+v", res.Cell)
	}
	if res.EnergySpent != w.Tun.Energy.ClearSoft {
		t.Fatalf("withered clear cost = %d", res.EnergySpent)
	}
}

func TestPlantRules(t *testing.T) {
	w := testWorld(t)
	i := w.Grid.Index(1, 1)
	*w.Grid.At(1, 1) = Cell{Terrain: TerrainSoil, Status: StatusEmpty}

	// Spring (day 1): melon is summer-only.
	w.Inv.Add("seed_melon", 1)
	_, err := w.Apply(PlantAction{PlotIndex: i, SeedID: "seed_melon"})
	wantRule(t, err, protocol.ErrWrongSeason)

	_, err = w.Apply(PlantAction{PlotIndex: i, SeedID: "crop_parsnip"})
	wantRule(t, err, protocol.ErrBadRequest)

	w.Inv = Inventory{}
	_, err = w.Apply(PlantAction{PlotIndex: i, SeedID: "seed_parsnip"})
	wantRule(t, err, protocol.ErrNoItem)

	w.Inv.Add("seed_parsnip", 2)
	res := mustApply(t, w, PlantAction{PlotIndex: i, SeedID: "seed_parsnip"})
	if res.Cell.Status != StatusPlanted || res.Cell.SeedID != "seed_parsnip" || res.Cell.DaysGrowing != 0 {
		t.Fatalf("planted cell = %+v", res.Cell)
	}
	if w.Inv.Count("seed_parsnip") != 1 {
		t.Fatalf("seed count = %d", w.Inv.Count("seed_parsnip"))
	}
	if res.EnergySpent != 0 {
		t.Fatalf("plant cost = %d, want 0", res.EnergySpent)
	}

	_, err = w.Apply(PlantAction{PlotIndex: i, SeedID: "seed_parsnip"})
	wantRule(t, err, protocol.ErrInvalidTarget)
}

func TestWaterIdempotent(t *testing.T) {
	w := testWorld(t)
	i := w.Grid.Index(1, 1)
	*w.Grid.At(1, 1) = Cell{Terrain: TerrainSoil, Status: StatusEmpty}

	res := mustApply(t, w, WaterAction{PlotIndex: i})
	if !res.Cell.Watered || res.EnergySpent != w.Tun.Energy.Water {
		t.Fatalf("first water = %+v", res)
	}
	res = mustApply(t, w, WaterAction{PlotIndex: i})
	if res.EnergySpent != 0 {
		t.Fatalf("re-water cost = %d, want 0", res.EnergySpent)
	}
	if w.Stats.Energy != w.Stats.MaxEnergy-w.Tun.Energy.Water {
		t.Fatalf("energy = %d", w.Stats.Energy)
	}

	_, err := w.Apply(WaterAction{PlotIndex: w.Grid.Index(2, 2)})
	wantRule(t, err, protocol.ErrInvalidTarget)
}

func TestHarvestYieldRangeAndReset(t *testing.T) {
	w := testWorld(t)
	def, _ := w.Catalog.Get("seed_bean")
	i := w.Grid.Index(1, 1)

	for trial := 0; trial < 50; trial++ {
		*w.Grid.At(1, 1) = Cell{
			Terrain:     TerrainSoil,
			Status:      StatusPlanted,
			SeedID:      "seed_bean",
			DaysGrowing: def.GrowthDays,
		}
		w.Stats.Energy = w.Stats.MaxEnergy
		before := w.Inv.Count("crop_bean")
		res := mustApply(t, w, HarvestAction{PlotIndex: i})
		got := w.Inv.Count("crop_bean") - before
		if got < def.MinHarvest || got > def.MaxHarvest {
			t.Fatalf("yield %d outside [%d,%d]", got, def.MinHarvest, def.MaxHarvest)
		}
		if res.Cell.Status != StatusEmpty || res.Cell.SeedID != "" {
			t.Fatalf("harvested cell = %+v", res.Cell)
		}
		if res.XP != w.Tun.XP.Harvest {
			t.Fatalf("xp = %d", res.XP)
		}
	}
}

func TestHarvestNotReady(t *testing.T) {
	w := testWorld(t)
	*w.Grid.At(1, 1) = Cell{Terrain: TerrainSoil, Status: StatusPlanted, SeedID: "seed_parsnip", DaysGrowing: 1}
	_, err := w.Apply(HarvestAction{PlotIndex: w.Grid.Index(1, 1)})
	wantRule(t, err, protocol.ErrInvalidTarget)
}

func TestEnergyGate(t *testing.T) {
	w := testWorld(t)
	w.Stats.Energy = 2
	*w.Grid.At(1, 1) = Cell{Terrain: TerrainWood}
	_, err := w.Apply(ClearAction{PlotIndex: w.Grid.Index(1, 1)})
	wantRule(t, err, protocol.ErrNoEnergy)
	if w.Grid.At(1, 1).Terrain != TerrainWood || w.Stats.Energy != 2 {
		t.Fatalf("rejected clear mutated state")
	}
}

func TestAdvanceDayGrowthAndReset(t *testing.T) {
	w := testWorld(t)
	planted := w.Grid.Index(1, 1)
	bare := w.Grid.Index(2, 2)
	*w.Grid.At(1, 1) = Cell{Terrain: TerrainSoil, Status: StatusPlanted, SeedID: "seed_parsnip", Watered: true}
	*w.Grid.At(2, 2) = Cell{Terrain: TerrainSoil, Status: StatusEmpty, Watered: true}
	dry := w.Grid.Index(3, 3)
	*w.Grid.At(3, 3) = Cell{Terrain: TerrainSoil, Status: StatusPlanted, SeedID: "seed_parsnip"}
	w.Stats.Energy = 13

	rep := w.AdvanceDay()
	if rep.Day != 2 || rep.SeasonChanged {
		t.Fatalf("report = %+v", rep)
	}
	if got := w.Grid.Cells[planted]; got.DaysGrowing != 1 || got.Watered {
		t.Fatalf("planted after day = %+v", got)
	}
	if got := w.Grid.Cells[dry]; got.DaysGrowing != 0 {
		t.Fatalf("dry crop grew: %+v", got)
	}
	if w.Grid.Cells[bare].Watered {
		t.Fatalf("bare soil kept watered flag")
	}
	if w.Stats.Energy != w.Stats.MaxEnergy || w.Stats.Day != 2 {
		t.Fatalf("stats = %+v", w.Stats)
	}
	if len(rep.GrownPlots) != 1 || rep.GrownPlots[0] != planted {
		t.Fatalf("grown plots = %v", rep.GrownPlots)
	}
}

func TestSeasonBoundaryWither(t *testing.T) {
	w := testWorld(t)
	i := w.Grid.Index(1, 1)
	// Last day of spring; parsnip is spring-only.
	w.Stats.Day = w.Tun.DaysPerSeason
	*w.Grid.At(1, 1) = Cell{Terrain: TerrainSoil, Status: StatusPlanted, SeedID: "seed_parsnip", DaysGrowing: 2, Watered: true}

	rep := w.AdvanceDay()
	if !rep.SeasonChanged || rep.Season != SeasonSummer {
		t.Fatalf("report = %+v", rep)
	}
	got := w.Grid.Cells[i]
	if got.Status != StatusWithered || got.SeedID != catalogs.DeadCropID {
		t.Fatalf("cell = %+v, want withered dead crop", got)
	}
	// Withering and growth are exclusive on the boundary day.
	if got.DaysGrowing != 0 || len(rep.GrownPlots) != 0 {
		t.Fatalf("withered crop also grew: %+v %v", got, rep.GrownPlots)
	}
	if len(rep.WitheredPlots) != 1 || rep.WitheredPlots[0] != i {
		t.Fatalf("withered plots = %v", rep.WitheredPlots)
	}
}

func TestSeasonSpanningCropSurvivesBoundary(t *testing.T) {
	w := testWorld(t)
	w.Stats.Day = 2 * w.Tun.DaysPerSeason // last day of summer
	*w.Grid.At(1, 1) = Cell{Terrain: TerrainSoil, Status: StatusPlanted, SeedID: "seed_corn", DaysGrowing: 5, Watered: true}

	rep := w.AdvanceDay()
	if rep.Season != SeasonFall {
		t.Fatalf("season = %s", rep.Season)
	}
	got := w.Grid.Cells[w.Grid.Index(1, 1)]
	if got.Status != StatusPlanted || got.DaysGrowing != 6 {
		t.Fatalf("corn across summer/fall = %+v", got)
	}
}

func TestBuySellUse(t *testing.T) {
	w := testWorld(t)

	if err := w.Buy("seed_parsnip", 2); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if w.Stats.Coins != w.Tun.StartingCoins-40 || w.Inv.Count("seed_parsnip") != 7 {
		t.Fatalf("after buy: coins=%d inv=%d", w.Stats.Coins, w.Inv.Count("seed_parsnip"))
	}

	err := w.Buy("seed_melon", 1)
	wantRule(t, err, protocol.ErrWrongSeason)
	err = w.Buy("seed_strawberry", 100)
	wantRule(t, err, protocol.ErrNoCoins)
	err = w.Buy(catalogs.DeadCropID, 1)
	wantRule(t, err, protocol.ErrInvalidTarget)

	w.Inv.Add("crop_parsnip", 3)
	if err := w.Sell("crop_parsnip", 2); err != nil {
		t.Fatalf("sell: %v", err)
	}
	if w.Inv.Count("crop_parsnip") != 1 {
		t.Fatalf("crop count = %d", w.Inv.Count("crop_parsnip"))
	}
	err = w.Sell("crop_parsnip", 5)
	wantRule(t, err, protocol.ErrNoItem)

	w.Stats.Energy = 50
	if err := w.UseItem("crop_parsnip"); err != nil {
		t.Fatalf("use: %v", err)
	}
	if w.Stats.Energy != 75 {
		t.Fatalf("energy = %d, want 75", w.Stats.Energy)
	}
	err = w.UseItem("wood")
	wantRule(t, err, protocol.ErrInvalidTarget)
}

func TestUseItemCapsAtMax(t *testing.T) {
	w := testWorld(t)
	w.Inv.Add("crop_parsnip", 1)
	w.Stats.Energy = w.Stats.MaxEnergy - 1
	if err := w.UseItem("crop_parsnip"); err != nil {
		t.Fatalf("use: %v", err)
	}
	if w.Stats.Energy != w.Stats.MaxEnergy {
		t.Fatalf("energy = %d, want %d", w.Stats.Energy, w.Stats.MaxEnergy)
	}

	// Eating at full energy keeps the item.
	w.Inv.Add("crop_parsnip", 1)
	if err := w.UseItem("crop_parsnip"); err != nil {
		t.Fatalf("use at full energy: %v", err)
	}
	if got := w.Inv.Count("crop_parsnip"); got != 1 {
		t.Fatalf("item consumed at full energy: count=%d, want 1", got)
	}
	if w.Stats.Energy != w.Stats.MaxEnergy {
		t.Fatalf("energy changed at cap: %d", w.Stats.Energy)
	}
}

// The day-one loop from a fresh account: plant, water, sleep.
func TestPlantWaterSleepScenario(t *testing.T) {
	tun := tuning.Default()
	tun.GridCols = 8
	tun.GridRows = 8
	w := New(7, tun, catalogs.Default())
	if w.Inv.Count("seed_parsnip") != 5 {
		t.Fatalf("starter kit = %v", w.Inv)
	}

	i := w.Grid.Index(1, 1)
	*w.Grid.At(1, 1) = Cell{Terrain: TerrainSoil, Status: StatusEmpty}

	mustApply(t, w, PlantAction{PlotIndex: i, SeedID: "seed_parsnip"})
	if w.Inv.Count("seed_parsnip") != 4 {
		t.Fatalf("seeds = %d", w.Inv.Count("seed_parsnip"))
	}
	if w.Stats.Energy != 100 {
		t.Fatalf("energy after plant = %d, want 100", w.Stats.Energy)
	}

	mustApply(t, w, WaterAction{PlotIndex: i})
	if w.Stats.Energy != 98 {
		t.Fatalf("energy after water = %d, want 98", w.Stats.Energy)
	}

	rep := w.AdvanceDay()
	got := w.Grid.Cells[i]
	if got.DaysGrowing != 1 || got.Watered {
		t.Fatalf("cell after day = %+v", got)
	}
	if w.Stats.Energy != 100 || w.Stats.Day != 2 || rep.Day != 2 {
		t.Fatalf("stats after day = %+v", w.Stats)
	}
}
