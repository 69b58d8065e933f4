package tracker

import (
	"context"
	"log/slog"

	"questline/internal/app/ports"
	"questline/internal/domain/quest"
)

// complete transitions one quest to achieved. The completed signal is
// emitted before anything else touches the quest; reward dispensation is
// best-effort and never blocks the transition. Caller holds the player's
// registry entry.
func (t *Tracker) complete(ctx context.Context, playerID string, set *quest.PlayerQuestSet, e quest.Entry) {
	e.Progression.Achieved = true

	if t.Signals != nil {
		t.Signals.QuestCompleted(ctx, playerID, *e.Progression, e.Quest)
	}

	set.AchievedInSet++
	set.TotalAchieved++
	if t.Metrics != nil {
		t.Metrics.RecordCompletion(e.Quest.Kind)
	}

	if t.Rewards != nil && e.Quest.Reward.Type != quest.RewardNone {
		if err := t.Rewards.Dispense(ctx, playerID, e.Quest.Reward); err != nil {
			t.logger().Error("reward dispensation failed",
				slog.String("player", playerID),
				slog.String("quest", e.Quest.Name),
				slog.Any("error", err))
		}
	}
}

// takeItems removes matched items from the player's holdings up to the
// required amount, walking the required descriptors in order until the
// target is met or the supply runs out. Gated on the TakeItems setting and
// never blocks completion.
func (t *Tracker) takeItems(ctx context.Context, playerID string, q *quest.QuestDefinition, stacks []ports.ItemStack) {
	if !t.Settings.TakeItems || t.Holdings == nil || q.Items == nil {
		return
	}

	remaining := q.RequiredAmount
	for _, req := range q.Items.Required {
		if remaining <= 0 {
			break
		}
		have := countMatching(stacks, req)
		if have == 0 {
			continue
		}
		n := have
		if n > remaining {
			n = remaining
		}
		if err := t.Holdings.Remove(ctx, playerID, req, n); err != nil {
			t.logger().Error("take items failed",
				slog.String("player", playerID),
				slog.String("item", req.Type),
				slog.Any("error", err))
			continue
		}
		remaining -= n
	}
}

func countMatching(stacks []ports.ItemStack, req quest.ItemDescriptor) int {
	total := 0
	for _, s := range stacks {
		if quest.MatchItem(req, s.Item) {
			total += s.Amount
		}
	}
	return total
}
