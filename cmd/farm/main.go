// farm is a headless game client: it signs an account in, plays a number of
// days (till, plant, water, sleep, harvest, sell), and signs out. With -relay
// it shares rooms with other clients through a roomd; without one it runs
// against an in-process hub.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"farmgrid.app/internal/client"
	persistlog "farmgrid.app/internal/persistence/log"
	"farmgrid.app/internal/persistence/store"
	"farmgrid.app/internal/sim/catalogs"
	"farmgrid.app/internal/sim/tuning"
	"farmgrid.app/internal/sim/world"
	"farmgrid.app/internal/transport"
	"farmgrid.app/internal/transport/memhub"
	"farmgrid.app/internal/transport/ws"
)

func main() {
	var (
		account   = flag.String("account", "player1", "account id")
		name      = flag.String("name", "Player", "display name")
		avatar    = flag.String("avatar", "avatar_1", "avatar id")
		dataDir   = flag.String("data", "./data", "runtime data directory")
		configDir = flag.String("configs", "./configs", "config directory")
		relayURL  = flag.String("relay", "", "roomd websocket url (empty: in-process hub)")
		days      = flag.Int("days", 3, "number of days to play")
		seed      = flag.Int64("seed", 0, "worldgen seed for a fresh farm (0: random)")
		visit     = flag.String("visit", "", "account to visit after playing (optional)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[farm] ", log.LstdFlags|log.Lmicroseconds)
	ctx := context.Background()

	tune, err := tuning.Load(filepath.Join(*configDir, "tuning.yaml"))
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found; using defaults")
		tune = tuning.Default()
	}
	cats, err := catalogs.Load(*configDir)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load catalogs: %v", err)
		}
		logger.Printf("items catalog not found; using built-in set")
		cats = catalogs.Default()
	}

	sqlStore, err := store.OpenSQLite(filepath.Join(*dataDir, "farm.db"))
	if err != nil {
		logger.Fatalf("open store: %v", err)
	}
	defer sqlStore.Close()
	st, err := store.NewCached(sqlStore, 32)
	if err != nil {
		logger.Fatalf("wrap store cache: %v", err)
	}

	var bus transport.Bus
	if strings.TrimSpace(*relayURL) != "" {
		wsc, err := ws.Dial(ctx, *relayURL, logger)
		if err != nil {
			logger.Fatalf("dial relay: %v", err)
		}
		bus = wsc
	} else {
		bus = memhub.New()
	}
	defer bus.Close()

	journal := persistlog.NewJSONLZstdWriter(filepath.Join(*dataDir, "journal"), "sync")
	defer journal.Close()

	c := client.New(client.Options{
		Tuning:  tune,
		Catalog: cats,
		Store:   st,
		Bus:     bus,
		Logger:  logger,
		Journal: journal,
		Seed:    *seed,
		OnSessionLocked: func() {
			logger.Printf("logged in elsewhere; this session is read-only")
		},
	})
	if err := c.Login(ctx, *account, *name, *avatar); err != nil {
		logger.Fatalf("login: %v", err)
	}

	for d := 0; d < *days; d++ {
		playDay(c, logger)
		report, err := c.Sleep()
		if err != nil {
			logger.Fatalf("sleep: %v", err)
		}
		logger.Printf("day %d begins (%s), grown=%d withered=%d",
			report.Day, report.Season, len(report.GrownPlots), len(report.WitheredPlots))
	}

	if strings.TrimSpace(*visit) != "" {
		if err := c.VisitFriend(ctx, *visit); err != nil {
			logger.Printf("visit %s: %v", *visit, err)
		} else {
			for _, m := range c.Roster() {
				logger.Printf("also here: %s (%s)", m.Name, m.ID)
			}
			if err := c.ReturnHome(); err != nil {
				logger.Printf("return home: %v", err)
			}
		}
	}

	if err := c.Logout(ctx); err != nil {
		logger.Fatalf("logout: %v", err)
	}
	stats := c.Stats()
	logger.Printf("signed out: day=%d coins=%d exp=%d", stats.Day, stats.Coins, stats.Exp)
}

// playDay spends the day's energy farming: harvest what is ready, water what
// is planted, then till-and-plant new plots while seeds and energy last.
func playDay(c *client.Client, logger *log.Logger) {
	g := c.Grid()
	season := c.Season()

	for i := range g.Cells {
		cell := &g.Cells[i]
		if cell.Terrain != world.TerrainSoil {
			continue
		}
		switch cell.Status {
		case world.StatusPlanted:
			if res, err := c.FarmAction(world.HarvestAction{PlotIndex: i}); err == nil {
				for id, n := range res.InventoryDeltas {
					logger.Printf("harvested %dx %s", n, id)
					if err := c.Sell(id, n); err != nil {
						logger.Printf("sell %s: %v", id, err)
					}
				}
				continue
			}
			if _, err := c.FarmAction(world.WaterAction{PlotIndex: i}); err != nil {
				return // out of energy for the day
			}
		case world.StatusWithered:
			if _, err := c.FarmAction(world.ClearAction{PlotIndex: i}); err != nil {
				return
			}
		}
	}

	seedID := seedForSeason(c, season)
	if seedID == "" {
		return
	}
	for y := 1; y < g.Rows; y++ {
		for x := 0; x < g.Cols; x++ {
			if c.Inventory().Count(seedID) == 0 {
				if err := c.Buy(seedID, 1); err != nil {
					return
				}
			}
			if g.At(x, y).Terrain != world.TerrainGrass || g.At(x, y-1).Terrain == world.TerrainWood {
				continue
			}
			idx := g.Index(x, y)
			if _, err := c.FarmAction(world.TillAction{PlotIndex: idx}); err != nil {
				return
			}
			if _, err := c.FarmAction(world.PlantAction{PlotIndex: idx, SeedID: seedID}); err != nil {
				return
			}
			if _, err := c.FarmAction(world.WaterAction{PlotIndex: idx}); err != nil {
				return
			}
		}
	}
}

// seedForSeason prefers a seed already in the inventory, then the cheapest
// plantable one.
func seedForSeason(c *client.Client, season world.Season) string {
	inv := c.Inventory()
	best := ""
	bestPrice := 0
	for id, def := range c.Catalog().Items {
		if def.Type != catalogs.ItemSeed || !def.GrowsIn(string(season)) {
			continue
		}
		if inv.Count(id) > 0 {
			return id
		}
		if best == "" || def.Price < bestPrice {
			best, bestPrice = id, def.Price
		}
	}
	return best
}
