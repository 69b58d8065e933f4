package tracker

import (
	"math/rand"
	"sync"

	"questline/internal/domain/quest"
)

// Registry owns the mapping from player identity to the player's active
// quest set. Notifications may arrive on any goroutine; the registry
// serializes all mutation per player by holding that player's entry lock for
// the duration of an Update, so one notification's iteration is a single
// critical section.
type Registry struct {
	mu      sync.Mutex
	players map[string]*playerEntry
}

type playerEntry struct {
	mu  sync.Mutex
	set *quest.PlayerQuestSet
}

func NewRegistry() *Registry {
	return &Registry{players: make(map[string]*playerEntry)}
}

func (r *Registry) Assign(playerID string, set *quest.PlayerQuestSet) {
	r.mu.Lock()
	entry, ok := r.players[playerID]
	if !ok {
		entry = &playerEntry{}
		r.players[playerID] = entry
	}
	r.mu.Unlock()

	entry.mu.Lock()
	entry.set = set
	entry.mu.Unlock()
}

// Remove drops the player's entry. It waits for an in-flight Update on the
// same player to finish.
func (r *Registry) Remove(playerID string) {
	r.mu.Lock()
	entry, ok := r.players[playerID]
	delete(r.players, playerID)
	r.mu.Unlock()
	if !ok {
		return
	}

	entry.mu.Lock()
	entry.set = nil
	entry.mu.Unlock()
}

func (r *Registry) Registered(playerID string) bool {
	r.mu.Lock()
	entry, ok := r.players[playerID]
	r.mu.Unlock()
	if !ok {
		return false
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.set != nil
}

// Update runs fn against the player's quest set under the per-player lock.
// fn returns the set to keep, which lets callers rotate in a replacement
// atomically. Update reports false when the player has no entry.
func (r *Registry) Update(playerID string, fn func(set *quest.PlayerQuestSet) *quest.PlayerQuestSet) bool {
	r.mu.Lock()
	entry, ok := r.players[playerID]
	r.mu.Unlock()
	if !ok {
		return false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.set == nil {
		return false
	}
	entry.set = fn(entry.set)
	return true
}

// WithPlayer is Update for callers that mutate in place.
func (r *Registry) WithPlayer(playerID string, fn func(set *quest.PlayerQuestSet)) bool {
	return r.Update(playerID, func(set *quest.PlayerQuestSet) *quest.PlayerQuestSet {
		fn(set)
		return set
	})
}

// CategoryQuotas is the per-category draw for categorized catalogs. The
// quotas should sum to the configured quest count.
type CategoryQuotas struct {
	Easy   int
	Medium int
	Hard   int
}

// SelectRandomQuests draws count distinct definitions. Categorized catalogs
// are drawn per quota; an empty category falls back to a uniform draw across
// the whole catalog, as does any shortfall. The result may be shorter than
// count when the catalog itself is too small — callers treat that as a
// recoverable, logged condition.
func SelectRandomQuests(c *quest.Catalog, count int, quotas CategoryQuotas, rng *rand.Rand) []*quest.QuestDefinition {
	seen := make(map[quest.QuestID]bool)
	var out []*quest.QuestDefinition

	if c.Categorized() {
		for _, draw := range []struct {
			cat   quest.Category
			quota int
		}{
			{quest.CategoryEasy, quotas.Easy},
			{quest.CategoryMedium, quotas.Medium},
			{quest.CategoryHard, quotas.Hard},
		} {
			out = append(out, drawDistinct(c.Category(draw.cat), draw.quota, rng, seen)...)
		}
	} else {
		out = append(out, drawDistinct(c.Category(quest.CategoryGlobal), count, rng, seen)...)
	}

	if len(out) < count {
		out = append(out, drawDistinct(c.All(), count-len(out), rng, seen)...)
	}
	return out
}

func drawDistinct(pool []*quest.QuestDefinition, n int, rng *rand.Rand, seen map[quest.QuestID]bool) []*quest.QuestDefinition {
	if n <= 0 || len(pool) == 0 {
		return nil
	}
	var out []*quest.QuestDefinition
	for _, i := range rng.Perm(len(pool)) {
		if len(out) == n {
			break
		}
		q := pool[i]
		if seen[q.ID()] {
			continue
		}
		seen[q.ID()] = true
		out = append(out, q)
	}
	return out
}
