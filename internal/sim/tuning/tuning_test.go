package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValues(t *testing.T) {
	d := Default()
	if d.GridCols != 128 || d.GridRows != 285 {
		t.Fatalf("grid defaults = %dx%d, want 128x285", d.GridCols, d.GridRows)
	}
	if d.DaysPerSeason != 30 {
		t.Fatalf("days_per_season = %d, want 30", d.DaysPerSeason)
	}
	if d.MaxEnergy != 100 || d.StartingEnergy != 100 || d.StartingCoins != 100 {
		t.Fatalf("stats defaults wrong: %+v", d)
	}
	if d.Energy.Plant != 0 {
		t.Fatalf("plant cost = %d, want 0", d.Energy.Plant)
	}
	if d.Energy.ClearHard != 8 || d.Energy.ClearSoft != 3 {
		t.Fatalf("clear costs = %d/%d, want 8/3", d.Energy.ClearHard, d.Energy.ClearSoft)
	}
}

func TestLoadOverridesAndFills(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	raw := []byte("grid_cols: 64\ngrid_rows: 64\nenergy:\n  till: 9\n")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.GridCols != 64 || got.GridRows != 64 {
		t.Fatalf("grid = %dx%d, want 64x64", got.GridCols, got.GridRows)
	}
	if got.Energy.Till != 9 {
		t.Fatalf("till = %d, want 9", got.Energy.Till)
	}
	// Unset fields fall back to defaults.
	if got.Energy.Water != 2 || got.DaysPerSeason != 30 {
		t.Fatalf("defaults not applied: %+v", got)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	if err := os.WriteFile(path, []byte("grid_cols: [nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("Load accepted malformed yaml")
	}
}
