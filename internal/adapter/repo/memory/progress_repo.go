// Package memory holds player progress in process memory. Used by tests and
// by hosts that accept losing progress on restart.
package memory

import (
	"context"
	"sort"
	"sync"

	"questline/internal/app/ports"
)

type PlayerProgressRepo struct {
	mu      sync.RWMutex
	records map[string]ports.PlayerQuestRecord
}

func NewPlayerProgressRepo() *PlayerProgressRepo {
	return &PlayerProgressRepo{records: make(map[string]ports.PlayerQuestRecord)}
}

func (r *PlayerProgressRepo) Get(_ context.Context, playerID string) (ports.PlayerQuestRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[playerID]
	if !ok {
		return ports.PlayerQuestRecord{}, ports.ErrNotFound
	}
	return cloneRecord(rec), nil
}

func (r *PlayerProgressRepo) Save(_ context.Context, rec ports.PlayerQuestRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.PlayerID] = cloneRecord(rec)
	return nil
}

func (r *PlayerProgressRepo) Delete(_ context.Context, playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, playerID)
	return nil
}

func (r *PlayerProgressRepo) ListPlayerIDs(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.records))
	for id := range r.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func cloneRecord(rec ports.PlayerQuestRecord) ports.PlayerQuestRecord {
	out := rec
	out.Lines = append([]ports.QuestLineRecord(nil), rec.Lines...)
	return out
}
