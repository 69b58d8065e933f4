package ports

import (
	"context"

	"questline/internal/domain/quest"
)

// MessageKey names a player-visible outcome. Rendering and localization
// happen in the host's messaging layer; the core only picks the key and the
// interpolation values.
type MessageKey string

const (
	MsgWorldDisabled          MessageKey = "world_disabled"
	MsgNotEnoughItems         MessageKey = "not_enough_items"
	MsgTooFarFromLocation     MessageKey = "too_far_from_location"
	MsgBadWorldLocation       MessageKey = "bad_world_location"
	MsgPlaceholderUnavailable MessageKey = "placeholder_system_unavailable"
	MsgInventoryUnavailable   MessageKey = "inventory_system_unavailable"
	MsgPlaceholderNotNumber   MessageKey = "placeholder_not_a_number"
	MsgQuestsRenewed          MessageKey = "quests_renewed"
	MsgTotalAmountReset       MessageKey = "total_amount_reset"
)

type Messenger interface {
	Send(ctx context.Context, playerID string, key MessageKey, vars map[string]string)
	// SendRaw delivers a quest-provided message verbatim (placeholder quests
	// carry their own failure text).
	SendRaw(ctx context.Context, playerID string, message string)
}

// PlaceholderEvaluator resolves external predicate values. Evaluate must not
// block; when the backing system is not hooked, Available returns false and
// the dispatch layer fails soft.
type PlaceholderEvaluator interface {
	Available() bool
	Evaluate(ctx context.Context, playerID, placeholder string) (string, error)
}

type RewardDispenser interface {
	Dispense(ctx context.Context, playerID string, reward quest.Reward) error
}

type ItemStack struct {
	Item   quest.ItemDescriptor
	Amount int
}

// PlayerHoldings exposes the acting player's inventory to the GET-quest
// validation and the take-items consumption step.
type PlayerHoldings interface {
	Stacks(ctx context.Context, playerID string) ([]ItemStack, error)
	Remove(ctx context.Context, playerID string, item quest.ItemDescriptor, amount int) error
	CloseQuestInterface(ctx context.Context, playerID string)
}

// QuestSignals is the observable outbound surface: progressed fires once per
// matched evaluation, completed at most once per quest lifetime.
type QuestSignals interface {
	QuestProgressed(ctx context.Context, playerID string, progression quest.Progression, def *quest.QuestDefinition)
	QuestCompleted(ctx context.Context, playerID string, progression quest.Progression, def *quest.QuestDefinition)
}

type TrackerMetrics interface {
	RecordProgress(kind quest.Kind)
	RecordCompletion(kind quest.Kind)
	RecordRejection(reason string)
}
