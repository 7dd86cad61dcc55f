package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type ItemType string

const (
	ItemSeed     ItemType = "seed"
	ItemCrop     ItemType = "crop"
	ItemResource ItemType = "resource"
	ItemFood     ItemType = "food"
)

// DeadCropID marks a withered plot. It is harvest-inert and only clearable.
const DeadCropID = "dead_crop"

type ItemDef struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Type        ItemType `yaml:"type" json:"type"`
	Price       int      `yaml:"price" json:"price"`
	SellPrice   int      `yaml:"sell_price" json:"sell_price"`
	GrowthDays  int      `yaml:"growth_days,omitempty" json:"growth_days,omitempty"`
	MinHarvest  int      `yaml:"min_harvest,omitempty" json:"min_harvest,omitempty"`
	MaxHarvest  int      `yaml:"max_harvest,omitempty" json:"max_harvest,omitempty"`
	Seasons     []string `yaml:"seasons,omitempty" json:"seasons,omitempty"`
	EnergyRegen int      `yaml:"energy_regen,omitempty" json:"energy_regen,omitempty"`
}

// CropID maps a seed to the crop it yields on harvest.
func (d ItemDef) CropID() string {
	if d.Type != ItemSeed {
		return ""
	}
	return strings.Replace(d.ID, "seed_", "crop_", 1)
}

// GrowsIn reports whether the item may be planted in the given season.
// An empty season set means all seasons.
func (d ItemDef) GrowsIn(season string) bool {
	if len(d.Seasons) == 0 {
		return true
	}
	for _, s := range d.Seasons {
		if s == season {
			return true
		}
	}
	return false
}

type Catalog struct {
	Items  map[string]ItemDef
	Digest string
}

func (c *Catalog) Get(id string) (ItemDef, bool) {
	d, ok := c.Items[id]
	return d, ok
}

// Load reads items.yaml from configDir and validates the item set.
func Load(configDir string) (*Catalog, error) {
	raw, err := os.ReadFile(filepath.Join(configDir, "items.yaml"))
	if err != nil {
		return nil, err
	}
	var file struct {
		Items []ItemDef `yaml:"items"`
	}
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("items.yaml: %w", err)
	}
	return build(file.Items)
}

func build(defs []ItemDef) (*Catalog, error) {
	items := make(map[string]ItemDef, len(defs))
	for _, d := range defs {
		if d.ID == "" {
			return nil, fmt.Errorf("item with empty id")
		}
		if _, dup := items[d.ID]; dup {
			return nil, fmt.Errorf("duplicate item id %q", d.ID)
		}
		switch d.Type {
		case ItemSeed, ItemCrop, ItemResource, ItemFood:
		default:
			return nil, fmt.Errorf("item %s: unknown type %q", d.ID, d.Type)
		}
		if d.Type == ItemSeed {
			if d.GrowthDays <= 0 {
				return nil, fmt.Errorf("seed %s: growth_days must be positive", d.ID)
			}
			if d.MinHarvest <= 0 || d.MaxHarvest < d.MinHarvest {
				return nil, fmt.Errorf("seed %s: bad harvest range [%d,%d]", d.ID, d.MinHarvest, d.MaxHarvest)
			}
		}
		items[d.ID] = d
	}
	if _, ok := items[DeadCropID]; !ok {
		return nil, fmt.Errorf("catalog missing %s", DeadCropID)
	}
	// Every seed must have its crop defined.
	for _, d := range items {
		if d.Type != ItemSeed {
			continue
		}
		if _, ok := items[d.CropID()]; !ok {
			return nil, fmt.Errorf("seed %s: missing crop %s", d.ID, d.CropID())
		}
	}
	return &Catalog{Items: items, Digest: digest(items)}, nil
}

func digest(items map[string]ItemDef) string {
	ids := make([]string, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	h := sha256.New()
	for _, id := range ids {
		b, _ := json.Marshal(items[id])
		h.Write(b)
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
