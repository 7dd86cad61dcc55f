package world

import (
	"math/rand"

	"farmgrid.app/internal/protocol"
	"farmgrid.app/internal/sim/catalogs"
	"farmgrid.app/internal/sim/tuning"
)

// World is one player's farm: grid, inventory and account stats, mutated
// together so an action either fully applies or not at all. It is not safe
// for concurrent use; the owning goroutine serializes access.
type World struct {
	Grid    *Grid
	Stats   Stats
	Inv     Inventory
	Catalog *catalogs.Catalog
	Tun     tuning.Tuning

	rng *rand.Rand
}

// New creates a fresh account world: generated terrain, starting stats and
// the starter seed kit.
func New(seed int64, tun tuning.Tuning, cat *catalogs.Catalog) *World {
	w := &World{
		Grid:    Generate(seed, tun),
		Catalog: cat,
		Tun:     tun,
		rng:     rand.New(rand.NewSource(seed)),
	}
	w.Stats = Stats{
		Coins:     tun.StartingCoins,
		Energy:    tun.StartingEnergy,
		MaxEnergy: tun.MaxEnergy,
		Day:       1,
	}
	w.Inv = Inventory{"seed_parsnip": 5}
	return w
}

// Restore rebuilds a world from persisted state.
func Restore(grid *Grid, stats Stats, inv Inventory, tun tuning.Tuning, cat *catalogs.Catalog, seed int64) *World {
	if inv == nil {
		inv = Inventory{}
	}
	if stats.MaxEnergy <= 0 {
		stats.MaxEnergy = tun.MaxEnergy
	}
	if stats.Day <= 0 {
		stats.Day = 1
	}
	return &World{
		Grid:    grid,
		Stats:   stats,
		Inv:     inv,
		Catalog: cat,
		Tun:     tun,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// Season is derived from the day index, never stored.
func (w *World) Season() Season {
	return SeasonForDay(w.Stats.Day, w.Tun.DaysPerSeason)
}

// Buy purchases n of an item from the shop. Seeds are season-gated at
// purchase time the same way they are at planting.
func (w *World) Buy(itemID string, n int) error {
	if n <= 0 {
		return ruleErr(protocol.ErrBadRequest, "bad count %d", n)
	}
	def, ok := w.Catalog.Get(itemID)
	if !ok || def.Price <= 0 {
		return ruleErr(protocol.ErrInvalidTarget, "%q is not for sale", itemID)
	}
	if def.Type == catalogs.ItemSeed && !def.GrowsIn(string(w.Season())) {
		return ruleErr(protocol.ErrWrongSeason, "%s is out of season", itemID)
	}
	total := def.Price * n
	if w.Stats.Coins < total {
		return ruleErr(protocol.ErrNoCoins, "need %d coins, have %d", total, w.Stats.Coins)
	}
	w.Stats.Coins -= total
	w.Inv.Add(itemID, n)
	return nil
}

// Sell trades n of an item for coins at its sell price.
func (w *World) Sell(itemID string, n int) error {
	if n <= 0 {
		return ruleErr(protocol.ErrBadRequest, "bad count %d", n)
	}
	def, ok := w.Catalog.Get(itemID)
	if !ok || def.SellPrice <= 0 {
		return ruleErr(protocol.ErrInvalidTarget, "%q cannot be sold", itemID)
	}
	if !w.Inv.Remove(itemID, n) {
		return ruleErr(protocol.ErrNoItem, "have %d %s, selling %d", w.Inv.Count(itemID), itemID, n)
	}
	w.Stats.Coins += def.SellPrice * n
	return nil
}

// UseItem consumes one edible item, restoring its energy value up to the cap.
// At full energy the item is kept and nothing happens.
func (w *World) UseItem(itemID string) error {
	def, ok := w.Catalog.Get(itemID)
	if !ok || def.EnergyRegen <= 0 {
		return ruleErr(protocol.ErrInvalidTarget, "%q is not edible", itemID)
	}
	if w.Stats.Energy >= w.Stats.MaxEnergy {
		return nil
	}
	if !w.Inv.Remove(itemID, 1) {
		return ruleErr(protocol.ErrNoItem, "no %s in inventory", itemID)
	}
	w.Stats.Energy += def.EnergyRegen
	if w.Stats.Energy > w.Stats.MaxEnergy {
		w.Stats.Energy = w.Stats.MaxEnergy
	}
	return nil
}
