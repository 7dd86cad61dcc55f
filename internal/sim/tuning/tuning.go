package tuning

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	GridCols      int `yaml:"grid_cols"`
	GridRows      int `yaml:"grid_rows"`
	DaysPerSeason int `yaml:"days_per_season"`

	MaxEnergy      int `yaml:"max_energy"`
	StartingCoins  int `yaml:"starting_coins"`
	StartingEnergy int `yaml:"starting_energy"`

	AutosaveDebounceMs int `yaml:"autosave_debounce_ms"`

	Energy  EnergyCosts   `yaml:"energy"`
	XP      XPAwards      `yaml:"xp"`
	Worldgen WorldgenKnobs `yaml:"worldgen"`
}

// EnergyCosts is the per-action energy table. Clearing a withered plot or a
// weed is cheaper than clearing wood or stone.
type EnergyCosts struct {
	ClearHard int `yaml:"clear_hard"`
	ClearSoft int `yaml:"clear_soft"`
	Till      int `yaml:"till"`
	Plant     int `yaml:"plant"`
	Water     int `yaml:"water"`
	Harvest   int `yaml:"harvest"`
}

type XPAwards struct {
	Clear   int `yaml:"clear"`
	Harvest int `yaml:"harvest"`
}

type WorldgenKnobs struct {
	NoiseScale      float64 `yaml:"noise_scale"`
	WaterLevel      float64 `yaml:"water_level"`
	SandLevel       float64 `yaml:"sand_level"`
	HighlandLevel   float64 `yaml:"highland_level"`
	SpawnSafeRadius float64 `yaml:"spawn_safe_radius"`
	StonePermille   int     `yaml:"stone_permille"`
	WeedPermille    int     `yaml:"weed_permille"`
	TreePermille    int     `yaml:"tree_permille"`
}

// AutosaveDuration is the autosave debounce as a time.Duration.
func (t Tuning) AutosaveDuration() time.Duration {
	return time.Duration(t.AutosaveDebounceMs) * time.Millisecond
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	t.ApplyDefaults()
	return t, nil
}

// Default returns the tuning used when no tuning.yaml is present.
func Default() Tuning {
	var t Tuning
	t.ApplyDefaults()
	return t
}

func (t *Tuning) ApplyDefaults() {
	if t.ProtocolVersion == "" {
		t.ProtocolVersion = "1.0"
	}
	if t.GridCols <= 0 {
		t.GridCols = 128
	}
	if t.GridRows <= 0 {
		t.GridRows = 285
	}
	if t.DaysPerSeason <= 0 {
		t.DaysPerSeason = 30
	}
	if t.MaxEnergy <= 0 {
		t.MaxEnergy = 100
	}
	if t.StartingCoins <= 0 {
		t.StartingCoins = 100
	}
	if t.StartingEnergy <= 0 {
		t.StartingEnergy = t.MaxEnergy
	}
	if t.AutosaveDebounceMs <= 0 {
		t.AutosaveDebounceMs = 2000
	}
	if t.Energy.ClearHard <= 0 {
		t.Energy.ClearHard = 8
	}
	if t.Energy.ClearSoft <= 0 {
		t.Energy.ClearSoft = 3
	}
	if t.Energy.Till <= 0 {
		t.Energy.Till = 4
	}
	// Plant deliberately costs nothing; zero is the default, not a gap.
	if t.Energy.Water <= 0 {
		t.Energy.Water = 2
	}
	if t.Energy.Harvest <= 0 {
		t.Energy.Harvest = 4
	}
	if t.XP.Clear <= 0 {
		t.XP.Clear = 5
	}
	if t.XP.Harvest <= 0 {
		t.XP.Harvest = 10
	}
	if t.Worldgen.NoiseScale <= 0 {
		t.Worldgen.NoiseScale = 0.1
	}
	if t.Worldgen.WaterLevel == 0 {
		t.Worldgen.WaterLevel = -0.1
	}
	if t.Worldgen.SandLevel == 0 {
		t.Worldgen.SandLevel = 0.05
	}
	if t.Worldgen.HighlandLevel == 0 {
		t.Worldgen.HighlandLevel = 0.4
	}
	if t.Worldgen.SpawnSafeRadius <= 0 {
		t.Worldgen.SpawnSafeRadius = 0.1
	}
	if t.Worldgen.StonePermille <= 0 {
		t.Worldgen.StonePermille = 40
	}
	if t.Worldgen.WeedPermille <= 0 {
		t.Worldgen.WeedPermille = 40
	}
	if t.Worldgen.TreePermille <= 0 {
		t.Worldgen.TreePermille = 200
	}
}
