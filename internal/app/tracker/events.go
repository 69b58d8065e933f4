package tracker

import (
	"context"
	"errors"
	"log/slog"

	"questline/internal/app/antidupe"
	"questline/internal/app/ports"
	"questline/internal/domain/quest"
)

// The methods in this file are the narrow inbound port the host environment
// invokes; the engine knows nothing about how the host dispatches its
// callbacks.

const (
	reflectProjectile = "FIREBALL"
	reflectTarget     = "GHAST"
)

type ItemNotification struct {
	PlayerID string
	World    string
	Kind     quest.Kind
	Item     quest.ItemDescriptor
	Amount   int
}

// OnItemAction covers craft, pickup, launch, consume, cook, enchant, fish
// and farm notifications; break and place go through the block handlers so
// the placed-block guard applies.
func (t *Tracker) OnItemAction(ctx context.Context, n ItemNotification) {
	if n.Kind.Family() != quest.FamilyItem {
		return
	}
	t.advance(ctx, n.PlayerID, n.World, n.Kind, n.Amount, func(q *quest.QuestDefinition) bool {
		return q.Items.MatchesItem(n.Item)
	})
}

type BlockNotification struct {
	PlayerID string
	World    string
	Block    quest.ItemDescriptor
	Pos      antidupe.BlockPos
}

func (t *Tracker) OnBlockPlace(ctx context.Context, n BlockNotification) {
	if t.Guards != nil {
		t.Guards.MarkPlaced(n.Pos, n.PlayerID)
	}
	t.advance(ctx, n.PlayerID, n.World, quest.KindPlace, 1, func(q *quest.QuestDefinition) bool {
		return q.Items.MatchesItem(n.Block)
	})
}

// OnBlockBreak excludes blocks the same player placed within the tracked
// window. The marker is consumed either way; the block is gone.
func (t *Tracker) OnBlockBreak(ctx context.Context, n BlockNotification) {
	if t.Guards != nil {
		if placer, ok := t.Guards.ConsumePlaced(n.Pos); ok && placer == n.PlayerID {
			t.recordRejection("self_placed_block")
			return
		}
	}
	t.advance(ctx, n.PlayerID, n.World, quest.KindBreak, 1, func(q *quest.QuestDefinition) bool {
		return q.Items.MatchesItem(n.Block)
	})
}

type EntityNotification struct {
	PlayerID   string
	World      string
	EntityID   string
	EntityKind string
	SheepColor string
	Amount     int
}

// OnSpawnerSpawn flags an entity as spawner-sourced so its eventual death
// earns no kill credit.
func (t *Tracker) OnSpawnerSpawn(entityID string) {
	if t.Guards != nil {
		t.Guards.MarkSpawnerSourced(entityID)
	}
}

func (t *Tracker) OnEntityKill(ctx context.Context, n EntityNotification) {
	if t.Guards != nil && t.Guards.ConsumeSpawnerFlag(n.EntityID) {
		t.recordRejection("spawner_sourced_entity")
		return
	}
	amount := n.Amount
	if amount == 0 {
		amount = 1
	}
	t.advance(ctx, n.PlayerID, n.World, quest.KindKill, amount, func(q *quest.QuestDefinition) bool {
		return q.Entities.MatchesKind(n.EntityKind)
	})
}

// OnEntityUnstack handles stack-splitting kills: the spawner flag is always
// consumed first, even when the unstack earns no credit, so it cannot leak
// to an unrelated entity reusing the identity.
func (t *Tracker) OnEntityUnstack(ctx context.Context, n EntityNotification) {
	fromSpawner := t.Guards != nil && t.Guards.ConsumeSpawnerFlag(n.EntityID)
	if fromSpawner {
		t.recordRejection("spawner_sourced_entity")
		return
	}
	if n.PlayerID == "" {
		return
	}
	t.advance(ctx, n.PlayerID, n.World, quest.KindKill, n.Amount, func(q *quest.QuestDefinition) bool {
		return q.Entities.MatchesKind(n.EntityKind)
	})
}

// OnEntityAction covers breed, tame and shear.
func (t *Tracker) OnEntityAction(ctx context.Context, kind quest.Kind, n EntityNotification) {
	if kind != quest.KindBreed && kind != quest.KindTame && kind != quest.KindShear {
		return
	}
	t.advance(ctx, n.PlayerID, n.World, kind, 1, func(q *quest.QuestDefinition) bool {
		if !q.Entities.MatchesKind(n.EntityKind) {
			return false
		}
		if kind == quest.KindShear && q.Entities != nil && q.Entities.SheepColor != "" {
			return q.Entities.SheepColor == n.SheepColor
		}
		return true
	})
}

type CustomMobNotification struct {
	PlayerID string
	World    string
	MobName  string
	Amount   int
}

func (t *Tracker) OnCustomMobKill(ctx context.Context, n CustomMobNotification) {
	amount := n.Amount
	if amount == 0 {
		amount = 1
	}
	t.advance(ctx, n.PlayerID, n.World, quest.KindCustomMobs, amount, func(q *quest.QuestDefinition) bool {
		return q.Entities.MatchesName(n.MobName)
	})
}

type CounterNotification struct {
	PlayerID string
	World    string
	Kind     quest.Kind
	Amount   int
}

// OnCounter covers the payload-free kinds: milking, exp points/levels,
// carving, player death.
func (t *Tracker) OnCounter(ctx context.Context, n CounterNotification) {
	if n.Kind.Family() != quest.FamilyCounter {
		return
	}
	amount := n.Amount
	if amount == 0 {
		amount = 1
	}
	t.advance(ctx, n.PlayerID, n.World, n.Kind, amount, nil)
}

type ProjectileNotification struct {
	ShooterID       string
	ShooterIsPlayer bool
	World           string
	ProjectileKind  string
	HitEntityKind   string
}

// OnProjectileHit credits reflect quests only for the specific reflect
// target hit by a player-launched projectile.
func (t *Tracker) OnProjectileHit(ctx context.Context, n ProjectileNotification) {
	if !n.ShooterIsPlayer {
		return
	}
	if n.ProjectileKind != reflectProjectile || n.HitEntityKind != reflectTarget {
		return
	}
	t.advance(ctx, n.ShooterID, n.World, quest.KindFireballReflect, 1, nil)
}

type VillagerInfo struct {
	Profession string
	Level      int
}

type TradeOfferState struct {
	OfferID string
	Uses    int
}

type TradeNotification struct {
	PlayerID string
	World    string
	OfferID  string
	// OfferUses is the offer's use count at event time; MaxUses its cap.
	OfferUses int
	MaxUses   int
	Result    quest.ItemDescriptor
	Quantity  int
	// Villager is nil when the merchant is gone at trade time; the
	// profession/level filters are then not applied.
	Villager *VillagerInfo
}

// OnTradeMenuOpen records the already-spent use count of each offer so a
// re-opened menu cannot re-credit earlier uses.
func (t *Tracker) OnTradeMenuOpen(offers []TradeOfferState) {
	if t.Guards == nil {
		return
	}
	for _, o := range offers {
		t.Guards.MarkTradeOpened(o.OfferID, o.Uses)
	}
}

func (t *Tracker) OnTrade(ctx context.Context, n TradeNotification) {
	if t.Guards != nil && n.OfferUses <= t.Guards.CreditedUses(n.OfferID) {
		t.recordRejection("trade_uses_exhausted")
		return
	}
	if n.MaxUses > 0 && n.OfferUses > n.MaxUses {
		t.recordRejection("trade_uses_exhausted")
		return
	}

	progressed := t.advance(ctx, n.PlayerID, n.World, quest.KindVillagerTrade, n.Quantity, func(q *quest.QuestDefinition) bool {
		if !q.Trade.MatchesResult(n.Result) {
			return false
		}
		if n.Villager != nil && q.Trade != nil {
			if q.Trade.Profession != "" && q.Trade.Profession != n.Villager.Profession {
				return false
			}
			if q.Trade.Level != 0 && q.Trade.Level != n.Villager.Level {
				return false
			}
		}
		return true
	})
	if progressed && t.Guards != nil {
		// Advance the credited mark so a re-fired event for the same use is
		// rejected.
		t.Guards.MarkTradeOpened(n.OfferID, n.OfferUses)
	}
}

type Position struct {
	World string
	X     float64
	Y     float64
	Z     float64
}

type ClickNotification struct {
	PlayerID string
	World    string
	Icon     quest.ItemIcon
	Position Position
}

// OnMenuClick validates the click-triggered kinds: GET scans the player's
// holdings, LOCATION checks distance, PLACEHOLDER asks the external
// evaluator. The clicked icon's embedded tag disambiguates quest icons from
// look-alike inventory items.
func (t *Tracker) OnMenuClick(ctx context.Context, n ClickNotification) {
	if t.worldDisabled(n.World) {
		t.send(ctx, n.PlayerID, ports.MsgWorldDisabled, nil)
		return
	}

	ok := t.Registry.WithPlayer(n.PlayerID, func(set *quest.PlayerQuestSet) {
		for _, e := range set.Entries {
			if e.Progression.Achieved || !quest.IconMatches(n.Icon, e.Quest.MenuIcon) {
				continue
			}
			switch e.Quest.Kind {
			case quest.KindGet:
				t.validateGet(ctx, n.PlayerID, set, e)
				return
			case quest.KindLocation:
				t.validateLocation(ctx, n, set, e)
			case quest.KindPlaceholder:
				t.validatePlaceholder(ctx, n.PlayerID, set, e)
			}
		}
	})
	if !ok {
		t.logger().Warn("player is not in the active quests list",
			slog.String("player", n.PlayerID), slog.String("event", "menu_click"))
	}
}

func (t *Tracker) validateGet(ctx context.Context, playerID string, set *quest.PlayerQuestSet, e quest.Entry) {
	if t.Holdings == nil {
		t.send(ctx, playerID, ports.MsgInventoryUnavailable, nil)
		return
	}
	stacks, err := t.Holdings.Stacks(ctx, playerID)
	if err != nil {
		t.logger().Error("read player holdings", slog.String("player", playerID), slog.Any("error", err))
		return
	}

	if t.Signals != nil {
		t.Signals.QuestProgressed(ctx, playerID, *e.Progression, e.Quest)
	}

	total := 0
	if e.Quest.Items != nil {
		for _, req := range e.Quest.Items.Required {
			total += countMatching(stacks, req)
		}
	} else {
		for _, s := range stacks {
			total += s.Amount
		}
	}

	if total < e.Quest.RequiredAmount {
		t.send(ctx, playerID, ports.MsgNotEnoughItems, nil)
		return
	}

	e.Progression.AchievedAmount = e.Quest.RequiredAmount
	t.complete(ctx, playerID, set, e)
	t.takeItems(ctx, playerID, e.Quest, stacks)
	t.Holdings.CloseQuestInterface(ctx, playerID)
	t.persist(ctx, playerID, set)
}

func (t *Tracker) validateLocation(ctx context.Context, n ClickNotification, set *quest.PlayerQuestSet, e quest.Entry) {
	loc := e.Quest.Location
	if loc.World != n.Position.World {
		// Terminal non-match, reported rather than silently ignored.
		t.send(ctx, n.PlayerID, ports.MsgBadWorldLocation, nil)
		return
	}

	if t.Signals != nil {
		t.Signals.QuestProgressed(ctx, n.PlayerID, *e.Progression, e.Quest)
	}

	if loc.Distance(n.Position.X, n.Position.Y, n.Position.Z) > loc.Radius {
		t.send(ctx, n.PlayerID, ports.MsgTooFarFromLocation, nil)
		return
	}

	e.Progression.AchievedAmount = e.Quest.RequiredAmount
	t.complete(ctx, n.PlayerID, set, e)
	if t.Holdings != nil {
		t.Holdings.CloseQuestInterface(ctx, n.PlayerID)
	}
	t.persist(ctx, n.PlayerID, set)
}

func (t *Tracker) validatePlaceholder(ctx context.Context, playerID string, set *quest.PlayerQuestSet, e quest.Entry) {
	p := e.Quest.Placeholder

	if t.Placeholders == nil || !t.Placeholders.Available() {
		t.send(ctx, playerID, ports.MsgPlaceholderUnavailable, nil)
		return
	}
	value, err := t.Placeholders.Evaluate(ctx, playerID, p.Name)
	if err != nil {
		t.logger().Error("placeholder evaluation failed",
			slog.String("player", playerID), slog.String("placeholder", p.Name), slog.Any("error", err))
		return
	}

	valid, err := quest.EvaluateCondition(p.Condition, value, p.Expected)
	if errors.Is(err, quest.ErrNotANumber) {
		t.send(ctx, playerID, ports.MsgPlaceholderNotNumber, map[string]string{"placeholder": p.Name})
		return
	}

	if t.Signals != nil {
		t.Signals.QuestProgressed(ctx, playerID, *e.Progression, e.Quest)
	}

	if !valid {
		if t.Messenger != nil && p.FailureMessage != "" {
			t.Messenger.SendRaw(ctx, playerID, p.FailureMessage)
		}
		return
	}

	e.Progression.AchievedAmount = e.Quest.RequiredAmount
	t.complete(ctx, playerID, set, e)
	if t.Holdings != nil {
		t.Holdings.CloseQuestInterface(ctx, playerID)
	}
	t.persist(ctx, playerID, set)
}
