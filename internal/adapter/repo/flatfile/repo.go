// Package flatfile persists player progress in a single YAML file. It is the
// storage mode for hosts that run without a database.
package flatfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"questline/internal/app/ports"
)

type lineDoc struct {
	QuestFile      string `yaml:"quest_file"`
	QuestIndex     int    `yaml:"quest_index"`
	AchievedAmount int    `yaml:"achieved_amount"`
	Achieved       bool   `yaml:"achieved"`
}

type playerDoc struct {
	AssignedAt    int64     `yaml:"assigned_at"`
	TotalAchieved int       `yaml:"total_achieved"`
	AchievedInSet int       `yaml:"achieved_in_set"`
	Quests        []lineDoc `yaml:"quests"`
}

type fileDoc struct {
	Players map[string]playerDoc `yaml:"players"`
}

// Repo loads the whole file once and rewrites it atomically on every save.
type Repo struct {
	path string

	mu      sync.Mutex
	players map[string]playerDoc
}

func Open(path string) (*Repo, error) {
	r := &Repo{path: path, players: make(map[string]playerDoc)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read progress file: %w", err)
	}

	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse progress file: %w", err)
	}
	if doc.Players != nil {
		r.players = doc.Players
	}
	return r, nil
}

func (r *Repo) Get(_ context.Context, playerID string) (ports.PlayerQuestRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.players[playerID]
	if !ok {
		return ports.PlayerQuestRecord{}, ports.ErrNotFound
	}

	rec := ports.PlayerQuestRecord{
		PlayerID:      playerID,
		AssignedAt:    doc.AssignedAt,
		TotalAchieved: doc.TotalAchieved,
		AchievedInSet: doc.AchievedInSet,
	}
	for _, l := range doc.Quests {
		rec.Lines = append(rec.Lines, ports.QuestLineRecord(l))
	}
	return rec, nil
}

func (r *Repo) Save(_ context.Context, rec ports.PlayerQuestRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc := playerDoc{
		AssignedAt:    rec.AssignedAt,
		TotalAchieved: rec.TotalAchieved,
		AchievedInSet: rec.AchievedInSet,
	}
	for _, l := range rec.Lines {
		doc.Quests = append(doc.Quests, lineDoc(l))
	}
	r.players[rec.PlayerID] = doc
	return r.flushLocked()
}

func (r *Repo) Delete(_ context.Context, playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.players[playerID]; !ok {
		return nil
	}
	delete(r.players, playerID)
	return r.flushLocked()
}

func (r *Repo) ListPlayerIDs(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.players))
	for id := range r.players {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// flushLocked writes through a temp file and renames over the target so a
// crash mid-write never truncates the stored progress.
func (r *Repo) flushLocked() error {
	data, err := yaml.Marshal(fileDoc{Players: r.players})
	if err != nil {
		return fmt.Errorf("encode progress file: %w", err)
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, ".progress-*.yml")
	if err != nil {
		return fmt.Errorf("create temp progress file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write progress file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close progress file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace progress file: %w", err)
	}
	return nil
}
