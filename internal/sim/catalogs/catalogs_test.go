package catalogs

import "testing"

func TestDefaultCatalogValid(t *testing.T) {
	c := Default()
	if len(c.Items) == 0 {
		t.Fatalf("empty default catalog")
	}
	if c.Digest == "" {
		t.Fatalf("missing digest")
	}
	if c.Digest != Default().Digest {
		t.Fatalf("digest not stable across builds")
	}
	if _, ok := c.Get(DeadCropID); !ok {
		t.Fatalf("default catalog missing %s", DeadCropID)
	}
}

func TestCropID(t *testing.T) {
	c := Default()
	seed, ok := c.Get("seed_parsnip")
	if !ok {
		t.Fatalf("seed_parsnip not in catalog")
	}
	if got := seed.CropID(); got != "crop_parsnip" {
		t.Fatalf("CropID = %q, want crop_parsnip", got)
	}
	crop, _ := c.Get("crop_parsnip")
	if got := crop.CropID(); got != "" {
		t.Fatalf("CropID on non-seed = %q, want empty", got)
	}
}

func TestGrowsIn(t *testing.T) {
	c := Default()
	corn, _ := c.Get("seed_corn")
	for _, tc := range []struct {
		season string
		want   bool
	}{
		{"spring", false},
		{"summer", true},
		{"fall", true},
		{"winter", false},
	} {
		if got := corn.GrowsIn(tc.season); got != tc.want {
			t.Fatalf("corn GrowsIn(%s) = %v, want %v", tc.season, got, tc.want)
		}
	}
	wood, _ := c.Get("wood")
	if !wood.GrowsIn("winter") {
		t.Fatalf("empty season set should allow all seasons")
	}
}

func TestBuildRejectsBadItems(t *testing.T) {
	dead := ItemDef{ID: DeadCropID, Name: "Withered Plant", Type: ItemResource}
	cases := []struct {
		name string
		defs []ItemDef
	}{
		{"missing dead crop", []ItemDef{
			{ID: "wood", Name: "Wood", Type: ItemResource},
		}},
		{"duplicate id", []ItemDef{
			dead,
			{ID: "wood", Name: "Wood", Type: ItemResource},
			{ID: "wood", Name: "Wood", Type: ItemResource},
		}},
		{"unknown type", []ItemDef{
			dead,
			{ID: "wood", Name: "Wood", Type: "mineral"},
		}},
		{"seed without growth days", []ItemDef{
			dead,
			{ID: "seed_x", Name: "X Seeds", Type: ItemSeed, MinHarvest: 1, MaxHarvest: 1},
			{ID: "crop_x", Name: "X", Type: ItemCrop},
		}},
		{"seed with bad harvest range", []ItemDef{
			dead,
			{ID: "seed_x", Name: "X Seeds", Type: ItemSeed, GrowthDays: 3, MinHarvest: 3, MaxHarvest: 1},
			{ID: "crop_x", Name: "X", Type: ItemCrop},
		}},
		{"seed without crop", []ItemDef{
			dead,
			{ID: "seed_x", Name: "X Seeds", Type: ItemSeed, GrowthDays: 3, MinHarvest: 1, MaxHarvest: 1},
		}},
	}
	for _, tc := range cases {
		if _, err := build(tc.defs); err == nil {
			t.Fatalf("%s: build accepted invalid item set", tc.name)
		}
	}
}
