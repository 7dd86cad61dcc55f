package world

// Stats is the player's persistent account state outside the grid.
type Stats struct {
	Coins     int `json:"coins"`
	Energy    int `json:"energy"`
	MaxEnergy int `json:"max_energy"`
	Day       int `json:"day"`
	Exp       int `json:"exp"`
}

// Inventory maps item id to count. Entries at zero are removed rather than
// kept; absence and zero are the same state.
type Inventory map[string]int

func (inv Inventory) Count(id string) int { return inv[id] }

func (inv Inventory) Add(id string, n int) {
	if n == 0 {
		return
	}
	inv[id] += n
	if inv[id] <= 0 {
		delete(inv, id)
	}
}

// Remove takes n of an item, reporting false (and changing nothing) if the
// inventory holds fewer than n.
func (inv Inventory) Remove(id string, n int) bool {
	if inv[id] < n {
		return false
	}
	inv.Add(id, -n)
	return true
}

func (inv Inventory) Clone() Inventory {
	out := make(Inventory, len(inv))
	for k, v := range inv {
		out[k] = v
	}
	return out
}
