package world

import "farmgrid.app/internal/sim/catalogs"

// DayReport lists what changed when the day rolled over, for the sync layer
// to persist and broadcast.
type DayReport struct {
	Day           int
	Season        Season
	SeasonChanged bool
	GrownPlots    []int
	WitheredPlots []int
}

// AdvanceDay ends the current day. Per cell: a planted crop whose species
// does not grow in the new season withers at the boundary and gets no growth
// that day; otherwise a watered, non-withered crop gains one growth day.
// All soil loses its watered flag, energy refills, and the day increments.
func (w *World) AdvanceDay() DayReport {
	newDay := w.Stats.Day + 1
	oldSeason := SeasonForDay(w.Stats.Day, w.Tun.DaysPerSeason)
	newSeason := SeasonForDay(newDay, w.Tun.DaysPerSeason)

	rep := DayReport{
		Day:           newDay,
		Season:        newSeason,
		SeasonChanged: newSeason != oldSeason,
	}

	for i := range w.Grid.Cells {
		c := &w.Grid.Cells[i]
		if c.Terrain != TerrainSoil {
			continue
		}
		if c.Status == StatusPlanted {
			def, ok := w.Catalog.Get(c.SeedID)
			switch {
			case rep.SeasonChanged && (!ok || !def.GrowsIn(string(newSeason))):
				c.Status = StatusWithered
				c.SeedID = catalogs.DeadCropID
				c.DaysGrowing = 0
				rep.WitheredPlots = append(rep.WitheredPlots, i)
			case c.Watered:
				c.DaysGrowing++
				rep.GrownPlots = append(rep.GrownPlots, i)
			}
		}
		c.Watered = false
	}

	w.Stats.Day = newDay
	w.Stats.Energy = w.Stats.MaxEnergy
	return rep
}
