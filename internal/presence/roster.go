// Package presence tracks who else is in a farm room and arbitrates
// duplicate logins for an account.
package presence

import (
	"encoding/json"
	"sort"
	"sync"

	"farmgrid.app/internal/protocol"
)

// Remote is one other player in the room.
type Remote struct {
	ID     string
	Name   string
	Avatar string
	X      float64
	Z      float64
	Facing string
	Anim   string
}

// Roster mirrors room membership. Presence snapshots are the membership
// truth: anyone absent from the latest snapshot is pruned. Move broadcasts
// update position and animation only and never add or remove entries.
//
// Identity protection: a non-empty name or avatar, once seen for an id, is
// never overwritten by an empty one. Broadcasts race ahead of profile
// propagation, so empty identity fields are stale, not authoritative.
type Roster struct {
	mu      sync.Mutex
	selfID  string
	members map[string]Remote
}

func NewRoster(selfID string) *Roster {
	return &Roster{selfID: selfID, members: map[string]Remote{}}
}

// ApplySnapshot reconciles the roster against a full membership snapshot.
func (r *Roster) ApplySnapshot(members []protocol.PresenceMember) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, len(members))
	for _, m := range members {
		if m.Key == r.selfID {
			continue
		}
		seen[m.Key] = struct{}{}

		var st protocol.PlayerMove
		if len(m.State) > 0 {
			_ = json.Unmarshal(m.State, &st)
		}
		cur := r.members[m.Key]
		cur.ID = m.Key
		cur.Name = keepIdentity(cur.Name, st.Name)
		cur.Avatar = keepIdentity(cur.Avatar, st.Avatar)
		if len(m.State) > 0 {
			cur.X = st.X
			cur.Z = st.Z
			cur.Facing = st.Facing
			cur.Anim = st.Anim
		}
		r.members[m.Key] = cur
	}

	for id := range r.members {
		if _, ok := seen[id]; !ok {
			delete(r.members, id)
		}
	}
}

// ApplyMove folds a move broadcast into an existing entry. Moves from ids
// not in the roster are dropped; the snapshot decides membership.
func (r *Roster) ApplyMove(mv protocol.PlayerMove) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if mv.ID == r.selfID {
		return
	}
	cur, ok := r.members[mv.ID]
	if !ok {
		return
	}
	cur.Name = keepIdentity(cur.Name, mv.Name)
	cur.Avatar = keepIdentity(cur.Avatar, mv.Avatar)
	cur.X = mv.X
	cur.Z = mv.Z
	cur.Facing = mv.Facing
	cur.Anim = mv.Anim
	r.members[mv.ID] = cur
}

func keepIdentity(have, incoming string) string {
	if incoming == "" {
		return have
	}
	return incoming
}

// Members returns the roster sorted by id.
func (r *Roster) Members() []Remote {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Remote, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Roster) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}
