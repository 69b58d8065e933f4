package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"questline/internal/app/ports"
	"questline/internal/domain/quest"
)

func TestLoadOrAssignFirstJoinAssignsAndPersists(t *testing.T) {
	defs := []*quest.QuestDefinition{
		breakQuest("global.yml", 0, 10, "STONE"),
		breakQuest("global.yml", 1, 10, "DIRT"),
		breakQuest("global.yml", 2, 10, "SAND"),
	}
	env := newTestEnv(defs...)
	env.tracker.Settings.QuestCount = 3

	set, err := env.tracker.LoadOrAssign(context.Background(), "p1")
	if err != nil {
		t.Fatalf("LoadOrAssign: %v", err)
	}
	if len(set.Entries) != 3 {
		t.Fatalf("expected 3 quests, got %d", len(set.Entries))
	}
	if set.AssignedAt != env.tracker.now().UnixMilli() {
		t.Fatalf("assigned at %d, want clock time", set.AssignedAt)
	}
	if !env.tracker.Registry.Registered("p1") {
		t.Fatal("player must be registered after assignment")
	}
	if env.progress.saves != 1 {
		t.Fatalf("fresh set must persist once, saves = %d", env.progress.saves)
	}

	// Quests are distinct.
	seen := map[quest.QuestID]bool{}
	for _, e := range set.Entries {
		if seen[e.Quest.ID()] {
			t.Fatalf("duplicate quest %+v in set", e.Quest.ID())
		}
		seen[e.Quest.ID()] = true
	}
}

func TestLoadOrAssignRestoresStoredProgress(t *testing.T) {
	defs := []*quest.QuestDefinition{
		breakQuest("global.yml", 0, 10, "STONE"),
		breakQuest("global.yml", 1, 10, "DIRT"),
	}
	env := newTestEnv(defs...)
	env.tracker.Settings.QuestCount = 2
	env.tracker.Settings.RotationEvery = 24 * time.Hour

	env.progress.records["p1"] = ports.PlayerQuestRecord{
		PlayerID:      "p1",
		AssignedAt:    env.tracker.now().UnixMilli() - time.Hour.Milliseconds(),
		TotalAchieved: 12,
		AchievedInSet: 1,
		Lines: []ports.QuestLineRecord{
			{QuestFile: "global.yml", QuestIndex: 0, AchievedAmount: 10, Achieved: true},
			{QuestFile: "global.yml", QuestIndex: 1, AchievedAmount: 4},
		},
	}

	set, err := env.tracker.LoadOrAssign(context.Background(), "p1")
	if err != nil {
		t.Fatalf("LoadOrAssign: %v", err)
	}
	if set.TotalAchieved != 12 || set.AchievedInSet != 1 {
		t.Fatalf("counters = %d/%d, want 12/1", set.TotalAchieved, set.AchievedInSet)
	}
	if !set.Entries[0].Progression.Achieved || set.Entries[1].Progression.AchievedAmount != 4 {
		t.Fatalf("progress not restored: %+v %+v", set.Entries[0].Progression, set.Entries[1].Progression)
	}
	if env.progress.saves != 0 {
		t.Fatal("a restored set needs no immediate save")
	}
}

func TestLoadOrAssignRotatesExpiredSet(t *testing.T) {
	defs := []*quest.QuestDefinition{breakQuest("global.yml", 0, 10, "STONE")}
	env := newTestEnv(defs...)
	env.tracker.Settings.QuestCount = 1
	env.tracker.Settings.RotationEvery = 24 * time.Hour

	env.progress.records["p1"] = ports.PlayerQuestRecord{
		PlayerID:      "p1",
		AssignedAt:    env.tracker.now().UnixMilli() - (25 * time.Hour).Milliseconds(),
		TotalAchieved: 3,
		AchievedInSet: 1,
		Lines: []ports.QuestLineRecord{
			{QuestFile: "global.yml", QuestIndex: 0, AchievedAmount: 10, Achieved: true},
		},
	}

	set, err := env.tracker.LoadOrAssign(context.Background(), "p1")
	if err != nil {
		t.Fatalf("LoadOrAssign: %v", err)
	}
	if set.AchievedInSet != 0 || set.Entries[0].Progression.AchievedAmount != 0 {
		t.Fatal("expired set must be replaced with fresh progress")
	}
	if set.TotalAchieved != 3 {
		t.Fatalf("lifetime total = %d, must survive rotation", set.TotalAchieved)
	}
}

func TestLoadOrAssignReplacesUnresolvableStoredSet(t *testing.T) {
	defs := []*quest.QuestDefinition{breakQuest("global.yml", 0, 10, "STONE")}
	env := newTestEnv(defs...)
	env.tracker.Settings.QuestCount = 1

	env.progress.records["p1"] = ports.PlayerQuestRecord{
		PlayerID:      "p1",
		AssignedAt:    env.tracker.now().UnixMilli(),
		TotalAchieved: 5,
		Lines: []ports.QuestLineRecord{
			{QuestFile: "removed.yml", QuestIndex: 7, AchievedAmount: 2},
		},
	}

	set, err := env.tracker.LoadOrAssign(context.Background(), "p1")
	if err != nil {
		t.Fatalf("LoadOrAssign: %v", err)
	}
	if set.Entries[0].Quest.FileName != "global.yml" {
		t.Fatal("a stored set referencing removed definitions must be replaced")
	}
	if set.TotalAchieved != 5 {
		t.Fatalf("lifetime total = %d, want 5", set.TotalAchieved)
	}
}

func TestLoadOrAssignWithoutCatalog(t *testing.T) {
	env := newTestEnv(breakQuest("global.yml", 0, 10, "STONE"))
	env.tracker.SwapCatalog(nil)

	if _, err := env.tracker.LoadOrAssign(context.Background(), "p1"); !errors.Is(err, ErrNoCatalog) {
		t.Fatalf("expected ErrNoCatalog, got %v", err)
	}
}

func TestOnPlayerQuitFlushesAndUnregisters(t *testing.T) {
	env := newTestEnv(breakQuest("global.yml", 0, 10, "STONE"))
	env.assign("p1")

	env.tracker.OnBlockBreak(context.Background(), breakEvent("p1", "STONE"))
	env.tracker.OnPlayerQuit(context.Background(), "p1")

	if env.tracker.Registry.Registered("p1") {
		t.Fatal("player must be unregistered after quit")
	}
	rec := env.progress.records["p1"]
	if len(rec.Lines) != 1 || rec.Lines[0].AchievedAmount != 1 {
		t.Fatalf("progress not flushed on quit: %+v", rec)
	}

	// Events after quit are noops.
	env.tracker.OnBlockBreak(context.Background(), breakEvent("p1", "STONE"))
	if env.metrics.rejections["no_active_quests"] != 1 {
		t.Fatalf("expected no_active_quests rejection after quit, got %v", env.metrics.rejections)
	}
}

func TestResetQuestsKeepsLifetimeTotal(t *testing.T) {
	defs := []*quest.QuestDefinition{
		breakQuest("global.yml", 0, 1, "STONE"),
		breakQuest("global.yml", 1, 10, "DIRT"),
	}
	env := newTestEnv(defs...)
	env.tracker.Settings.QuestCount = 2
	set := env.assign("p1")

	env.tracker.OnBlockBreak(context.Background(), breakEvent("p1", "STONE"))
	if set.AchievedInSet != 1 {
		t.Fatalf("setup failed, achieved in set = %d", set.AchievedInSet)
	}

	if err := env.tracker.ResetQuests(context.Background(), "p1"); err != nil {
		t.Fatalf("ResetQuests: %v", err)
	}

	view, err := env.tracker.View("p1")
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if view.AchievedInSet != 0 {
		t.Fatalf("achieved in set = %d after reset", view.AchievedInSet)
	}
	if view.TotalAchieved != 1 {
		t.Fatalf("lifetime total = %d, must survive the reset", view.TotalAchieved)
	}

	if err := env.tracker.ResetQuests(context.Background(), "ghost"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown player, got %v", err)
	}
}

func TestResetLifetimeTotal(t *testing.T) {
	env := newTestEnv(breakQuest("global.yml", 0, 1, "STONE"))
	set := env.assign("p1")
	set.TotalAchieved = 40

	if err := env.tracker.ResetLifetimeTotal(context.Background(), "p1"); err != nil {
		t.Fatalf("ResetLifetimeTotal: %v", err)
	}
	if set.TotalAchieved != 0 {
		t.Fatalf("lifetime total = %d after reset", set.TotalAchieved)
	}
	if env.progress.records["p1"].TotalAchieved != 0 {
		t.Fatal("reset not persisted")
	}
}

func TestForceComplete(t *testing.T) {
	defs := []*quest.QuestDefinition{
		breakQuest("global.yml", 0, 10, "STONE"),
		breakQuest("global.yml", 1, 10, "DIRT"),
	}
	env := newTestEnv(defs...)
	set := env.assign("p1")

	if err := env.tracker.ForceComplete(context.Background(), "p1", 2); err != nil {
		t.Fatalf("ForceComplete: %v", err)
	}
	if !set.Entries[1].Progression.Achieved {
		t.Fatal("second display slot not achieved")
	}
	if set.Entries[1].Progression.AchievedAmount != 10 {
		t.Fatalf("amount = %d, want the requirement", set.Entries[1].Progression.AchievedAmount)
	}
	if len(env.signals.completed) != 1 {
		t.Fatal("forced completion must run the normal pipeline")
	}

	if err := env.tracker.ForceComplete(context.Background(), "p1", 2); !errors.Is(err, ErrQuestAlreadyAchieved) {
		t.Fatalf("expected ErrQuestAlreadyAchieved, got %v", err)
	}
	if err := env.tracker.ForceComplete(context.Background(), "p1", 0); !errors.Is(err, ErrInvalidQuestIndex) {
		t.Fatalf("expected ErrInvalidQuestIndex for 0, got %v", err)
	}
	if err := env.tracker.ForceComplete(context.Background(), "p1", 3); !errors.Is(err, ErrInvalidQuestIndex) {
		t.Fatalf("expected ErrInvalidQuestIndex past the end, got %v", err)
	}
	if err := env.tracker.ForceComplete(context.Background(), "ghost", 1); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestViewSwapsAchievedIcon(t *testing.T) {
	def := breakQuest("global.yml", 0, 1, "STONE")
	def.AchievedMenuIcon = quest.ItemIcon{Type: "EMERALD"}
	env := newTestEnv(def)
	env.assign("p1")

	view, err := env.tracker.View("p1")
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if view.Quests[0].Icon != "STONE" || view.Quests[0].DisplayIndex != 1 {
		t.Fatalf("unexpected view: %+v", view.Quests[0])
	}

	env.tracker.OnBlockBreak(context.Background(), breakEvent("p1", "STONE"))
	view, _ = env.tracker.View("p1")
	if view.Quests[0].Icon != "EMERALD" {
		t.Fatalf("achieved quest icon = %q, want EMERALD", view.Quests[0].Icon)
	}
	if !view.Quests[0].Achieved {
		t.Fatal("view must report the achieved flag")
	}
}
