// Package tracker is the progression engine: it owns the active-quest
// registry, translates host action notifications into progression deltas and
// runs the completion pipeline.
package tracker

import (
	"context"
	"log/slog"
	"math/rand"
	"sync/atomic"
	"time"

	"questline/internal/app/antidupe"
	"questline/internal/app/ports"
	"questline/internal/domain/quest"
)

type Settings struct {
	// Synchronized controls whether one action may advance every matching
	// quest or only the first in display order.
	Synchronized bool
	// TakeItems enables consuming matched items on GET-quest completion.
	TakeItems      bool
	DisabledWorlds []string
	QuestCount     int
	Quotas         CategoryQuotas
	// RotationEvery bounds a stored set's age; older sets are replaced on
	// load. Zero disables age-based rotation.
	RotationEvery time.Duration
}

// Tracker wires the registry and guard tables to the outbound collaborator
// ports. Registry and Progress are required; the collaborator ports and
// Guards may be nil, in which case the corresponding step is skipped.
type Tracker struct {
	Registry *Registry
	Progress ports.PlayerProgressRepository
	Guards   *antidupe.Guards

	Signals      ports.QuestSignals
	Messenger    ports.Messenger
	Placeholders ports.PlaceholderEvaluator
	Holdings     ports.PlayerHoldings
	Rewards      ports.RewardDispenser
	Metrics      ports.TrackerMetrics

	Settings Settings
	Logger   *slog.Logger
	Now      func() time.Time
	Rand     *rand.Rand

	catalog atomic.Pointer[quest.Catalog]
}

func (t *Tracker) SwapCatalog(c *quest.Catalog) {
	t.catalog.Store(c)
}

func (t *Tracker) Catalog() *quest.Catalog {
	return t.catalog.Load()
}

func (t *Tracker) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return slog.Default()
}

func (t *Tracker) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

func (t *Tracker) rng() *rand.Rand {
	if t.Rand != nil {
		return t.Rand
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

func (t *Tracker) worldDisabled(world string) bool {
	for _, w := range t.Settings.DisabledWorlds {
		if w == world {
			return true
		}
	}
	return false
}

func (t *Tracker) send(ctx context.Context, playerID string, key ports.MessageKey, vars map[string]string) {
	if t.Messenger != nil {
		t.Messenger.Send(ctx, playerID, key, vars)
	}
}

func (t *Tracker) recordRejection(reason string) {
	if t.Metrics != nil {
		t.Metrics.RecordRejection(reason)
	}
}

// advance runs the common dispatch algorithm: iterate the player's quests in
// display order and grow every not-yet-achieved quest of the matching kind
// that passes the kind-specific predicate. With synchronization off the
// iteration stops after the first quest advanced. Reports whether any quest
// progressed.
func (t *Tracker) advance(ctx context.Context, playerID, world string, kind quest.Kind, amount int, match func(*quest.QuestDefinition) bool) bool {
	if amount <= 0 {
		return false
	}
	if t.worldDisabled(world) {
		t.recordRejection("world_disabled")
		return false
	}

	progressed := false
	ok := t.Registry.WithPlayer(playerID, func(set *quest.PlayerQuestSet) {
		for _, e := range set.Entries {
			if e.Progression.Achieved || e.Quest.Kind != kind {
				continue
			}
			if !e.Quest.WorldAllowed(world) {
				continue
			}
			if match != nil && !match(e.Quest) {
				continue
			}

			if t.Signals != nil {
				t.Signals.QuestProgressed(ctx, playerID, *e.Progression, e.Quest)
			}
			e.Progression.AchievedAmount += amount
			progressed = true
			if t.Metrics != nil {
				t.Metrics.RecordProgress(kind)
			}

			if e.Progression.AchievedAmount >= e.Quest.RequiredAmount {
				t.complete(ctx, playerID, set, e)
			}
			if !t.Settings.Synchronized {
				break
			}
		}
		if progressed {
			t.persist(ctx, playerID, set)
		}
	})
	if !ok {
		// Missing assignment, not an error: the host fired an action for a
		// player the engine was never told about.
		t.logger().Warn("player is not in the active quests list",
			slog.String("player", playerID), slog.String("kind", string(kind)))
		t.recordRejection("no_active_quests")
		return false
	}
	return progressed
}

func (t *Tracker) persist(ctx context.Context, playerID string, set *quest.PlayerQuestSet) {
	if t.Progress == nil {
		return
	}
	if err := t.Progress.Save(ctx, recordFromSet(playerID, set)); err != nil {
		t.logger().Error("save player progress",
			slog.String("player", playerID), slog.Any("error", err))
	}
}

func recordFromSet(playerID string, set *quest.PlayerQuestSet) ports.PlayerQuestRecord {
	rec := ports.PlayerQuestRecord{
		PlayerID:      playerID,
		AssignedAt:    set.AssignedAt,
		TotalAchieved: set.TotalAchieved,
		AchievedInSet: set.AchievedInSet,
	}
	for _, e := range set.Entries {
		rec.Lines = append(rec.Lines, ports.QuestLineRecord{
			QuestFile:      e.Quest.FileName,
			QuestIndex:     e.Quest.QuestIndex,
			AchievedAmount: e.Progression.AchievedAmount,
			Achieved:       e.Progression.Achieved,
		})
	}
	return rec
}
