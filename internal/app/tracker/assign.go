package tracker

import (
	"context"
	"errors"
	"log/slog"

	"questline/internal/app/ports"
	"questline/internal/domain/quest"
)

var (
	ErrNoCatalog            = errors.New("no quest catalog loaded")
	ErrQuestAlreadyAchieved = errors.New("quest already achieved")
	ErrInvalidQuestIndex    = errors.New("invalid quest index")
)

// LoadOrAssign restores the player's stored quest set, or assigns a fresh
// daily set when nothing is stored, the stored set has aged past the
// rotation window, or its definitions no longer exist after a reload. The
// lifetime total always carries over.
func (t *Tracker) LoadOrAssign(ctx context.Context, playerID string) (*quest.PlayerQuestSet, error) {
	cat := t.Catalog()
	if cat == nil {
		return nil, ErrNoCatalog
	}

	total := 0
	rec, err := t.Progress.Get(ctx, playerID)
	switch {
	case err == nil:
		total = rec.TotalAchieved
		if !t.expired(rec.AssignedAt) {
			if set, ok := rebuildSet(cat, rec); ok {
				t.Registry.Assign(playerID, set)
				return set, nil
			}
			t.logger().Info("stored quest set no longer resolves against the catalog",
				slog.String("player", playerID))
		}
	case errors.Is(err, ports.ErrNotFound):
		// first join
	default:
		return nil, err
	}

	set := t.freshSet(cat, total)
	t.Registry.Assign(playerID, set)
	t.persist(ctx, playerID, set)
	return set, nil
}

// OnPlayerQuit flushes the player's progress and drops the registry entry.
func (t *Tracker) OnPlayerQuit(ctx context.Context, playerID string) {
	t.Registry.WithPlayer(playerID, func(set *quest.PlayerQuestSet) {
		t.persist(ctx, playerID, set)
	})
	t.Registry.Remove(playerID)
}

// ResetQuests rotates in a new random set. The lifetime total is preserved;
// the per-set counter starts over.
func (t *Tracker) ResetQuests(ctx context.Context, playerID string) error {
	cat := t.Catalog()
	if cat == nil {
		return ErrNoCatalog
	}
	ok := t.Registry.Update(playerID, func(set *quest.PlayerQuestSet) *quest.PlayerQuestSet {
		fresh := t.freshSet(cat, set.TotalAchieved)
		t.persist(ctx, playerID, fresh)
		return fresh
	})
	if !ok {
		return ports.ErrNotFound
	}
	return nil
}

func (t *Tracker) ResetLifetimeTotal(ctx context.Context, playerID string) error {
	ok := t.Registry.WithPlayer(playerID, func(set *quest.PlayerQuestSet) {
		set.TotalAchieved = 0
		t.persist(ctx, playerID, set)
	})
	if !ok {
		return ports.ErrNotFound
	}
	return nil
}

// ForceComplete achieves the quest at the 1-based display index through the
// normal completion pipeline.
func (t *Tracker) ForceComplete(ctx context.Context, playerID string, displayIndex int) error {
	var opErr error
	ok := t.Registry.WithPlayer(playerID, func(set *quest.PlayerQuestSet) {
		if displayIndex < 1 || displayIndex > len(set.Entries) {
			opErr = ErrInvalidQuestIndex
			return
		}
		e := set.Entries[displayIndex-1]
		if e.Progression.Achieved {
			opErr = ErrQuestAlreadyAchieved
			return
		}
		e.Progression.AchievedAmount = e.Quest.RequiredAmount
		t.complete(ctx, playerID, set, e)
		t.persist(ctx, playerID, set)
	})
	if !ok {
		return ports.ErrNotFound
	}
	return opErr
}

// QuestView is a read-only projection of one display slot.
type QuestView struct {
	DisplayIndex   int      `json:"display_index"`
	Name           string   `json:"name"`
	Description    []string `json:"description,omitempty"`
	Kind           string   `json:"kind"`
	Icon           string   `json:"icon"`
	AchievedAmount int      `json:"achieved_amount"`
	RequiredAmount int      `json:"required_amount"`
	Achieved       bool     `json:"achieved"`
}

type SetView struct {
	PlayerID      string      `json:"player_id"`
	AssignedAt    int64       `json:"assigned_at"`
	Quests        []QuestView `json:"quests"`
	TotalAchieved int         `json:"total_achieved"`
	AchievedInSet int         `json:"achieved_in_set"`
}

// View snapshots the player's quest display under the per-player lock.
func (t *Tracker) View(playerID string) (SetView, error) {
	var view SetView
	ok := t.Registry.WithPlayer(playerID, func(set *quest.PlayerQuestSet) {
		view = SetView{
			PlayerID:      playerID,
			AssignedAt:    set.AssignedAt,
			TotalAchieved: set.TotalAchieved,
			AchievedInSet: set.AchievedInSet,
		}
		for i, e := range set.Entries {
			icon := e.Quest.MenuIcon
			if e.Progression.Achieved {
				icon = e.Quest.AchievedMenuIcon
			}
			view.Quests = append(view.Quests, QuestView{
				DisplayIndex:   i + 1,
				Name:           e.Quest.Name,
				Description:    e.Quest.Description,
				Kind:           string(e.Quest.Kind),
				Icon:           icon.Type,
				AchievedAmount: e.Progression.AchievedAmount,
				RequiredAmount: e.Quest.RequiredAmount,
				Achieved:       e.Progression.Achieved,
			})
		}
	})
	if !ok {
		return SetView{}, ports.ErrNotFound
	}
	return view, nil
}

func (t *Tracker) expired(assignedAt int64) bool {
	if t.Settings.RotationEvery <= 0 {
		return false
	}
	age := t.now().UnixMilli() - assignedAt
	return age > t.Settings.RotationEvery.Milliseconds()
}

func (t *Tracker) freshSet(cat *quest.Catalog, lifetimeTotal int) *quest.PlayerQuestSet {
	picks := SelectRandomQuests(cat, t.Settings.QuestCount, t.Settings.Quotas, t.rng())
	if len(picks) < t.Settings.QuestCount {
		t.logger().Warn("catalog has fewer eligible quests than requested",
			slog.Int("requested", t.Settings.QuestCount), slog.Int("selected", len(picks)))
	}
	set := quest.NewPlayerQuestSet(t.now().UnixMilli(), picks)
	set.TotalAchieved = lifetimeTotal
	return set
}

// rebuildSet resolves a stored record against the current catalog; any line
// whose definition is gone invalidates the whole record.
func rebuildSet(cat *quest.Catalog, rec ports.PlayerQuestRecord) (*quest.PlayerQuestSet, bool) {
	set := &quest.PlayerQuestSet{
		AssignedAt:    rec.AssignedAt,
		TotalAchieved: rec.TotalAchieved,
		AchievedInSet: rec.AchievedInSet,
	}
	for _, line := range rec.Lines {
		def, ok := cat.Resolve(quest.QuestID{FileName: line.QuestFile, QuestIndex: line.QuestIndex})
		if !ok {
			return nil, false
		}
		set.Entries = append(set.Entries, quest.Entry{
			Quest:       def,
			Progression: &quest.Progression{AchievedAmount: line.AchievedAmount, Achieved: line.Achieved},
		})
	}
	return set, true
}
