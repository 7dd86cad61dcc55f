package catalogs

// Default returns the built-in item set. configs/items.yaml carries the same
// data for deployments that want to tune prices without rebuilding; tests use
// this copy so they do not depend on config files.
func Default() *Catalog {
	c, err := build(defaultItems)
	if err != nil {
		panic("catalogs: bad built-in item set: " + err.Error())
	}
	return c
}

var defaultItems = []ItemDef{
	{ID: DeadCropID, Name: "Withered Plant", Type: ItemResource},

	// Gathered resources.
	{ID: "wood", Name: "Wood", Type: ItemResource, SellPrice: 2},
	{ID: "stone", Name: "Stone", Type: ItemResource, SellPrice: 2},
	{ID: "fiber", Name: "Fiber", Type: ItemResource, SellPrice: 1},
	{ID: "coal", Name: "Coal", Type: ItemResource, Price: 15, SellPrice: 25},

	// Spring.
	{ID: "seed_parsnip", Name: "Parsnip Seeds", Type: ItemSeed, Price: 20, SellPrice: 10,
		GrowthDays: 4, MinHarvest: 1, MaxHarvest: 1, Seasons: []string{"spring"}},
	{ID: "crop_parsnip", Name: "Parsnip", Type: ItemCrop, SellPrice: 55, EnergyRegen: 25},
	{ID: "seed_bean", Name: "Bean Starter", Type: ItemSeed, Price: 60, SellPrice: 30,
		GrowthDays: 10, MinHarvest: 4, MaxHarvest: 8, Seasons: []string{"spring"}},
	{ID: "crop_bean", Name: "Green Bean", Type: ItemCrop, SellPrice: 75, EnergyRegen: 25},
	{ID: "seed_potato", Name: "Potato Seeds", Type: ItemSeed, Price: 50, SellPrice: 25,
		GrowthDays: 6, MinHarvest: 1, MaxHarvest: 3, Seasons: []string{"spring"}},
	{ID: "crop_potato", Name: "Potato", Type: ItemCrop, SellPrice: 100, EnergyRegen: 25},
	{ID: "seed_strawberry", Name: "Strawberry Seeds", Type: ItemSeed, Price: 100, SellPrice: 50,
		GrowthDays: 8, MinHarvest: 2, MaxHarvest: 4, Seasons: []string{"spring"}},
	{ID: "crop_strawberry", Name: "Strawberry", Type: ItemCrop, SellPrice: 180, EnergyRegen: 50},

	// Summer.
	{ID: "seed_melon", Name: "Melon Seeds", Type: ItemSeed, Price: 80, SellPrice: 40,
		GrowthDays: 12, MinHarvest: 1, MaxHarvest: 1, Seasons: []string{"summer"}},
	{ID: "crop_melon", Name: "Melon", Type: ItemCrop, SellPrice: 550, EnergyRegen: 113},
	{ID: "seed_hotpepper", Name: "Pepper Seeds", Type: ItemSeed, Price: 40, SellPrice: 20,
		GrowthDays: 5, MinHarvest: 2, MaxHarvest: 4, Seasons: []string{"summer"}},
	{ID: "crop_hotpepper", Name: "Hot Pepper", Type: ItemCrop, SellPrice: 60, EnergyRegen: 13},
	{ID: "seed_corn", Name: "Corn Seeds", Type: ItemSeed, Price: 150, SellPrice: 75,
		GrowthDays: 14, MinHarvest: 2, MaxHarvest: 4, Seasons: []string{"summer", "fall"}},
	{ID: "crop_corn", Name: "Corn", Type: ItemCrop, SellPrice: 100, EnergyRegen: 25},

	// Fall.
	{ID: "seed_pumpkin", Name: "Pumpkin Seeds", Type: ItemSeed, Price: 100, SellPrice: 50,
		GrowthDays: 13, MinHarvest: 1, MaxHarvest: 1, Seasons: []string{"fall"}},
	{ID: "crop_pumpkin", Name: "Pumpkin", Type: ItemCrop, SellPrice: 720},
	{ID: "seed_eggplant", Name: "Eggplant Seeds", Type: ItemSeed, Price: 20, SellPrice: 10,
		GrowthDays: 5, MinHarvest: 1, MaxHarvest: 3, Seasons: []string{"fall"}},
	{ID: "crop_eggplant", Name: "Eggplant", Type: ItemCrop, SellPrice: 90, EnergyRegen: 20},
	{ID: "seed_bokchoy", Name: "Bok Choy Seeds", Type: ItemSeed, Price: 50, SellPrice: 25,
		GrowthDays: 4, MinHarvest: 1, MaxHarvest: 1, Seasons: []string{"fall"}},
	{ID: "crop_bokchoy", Name: "Bok Choy", Type: ItemCrop, SellPrice: 90, EnergyRegen: 25},
}
