package quest

// Kind is the category of player action a quest tracks. The string values
// match the quest_type field of the quest definition files.
type Kind string

const (
	KindBreak   Kind = "BREAK"
	KindPlace   Kind = "PLACE"
	KindCraft   Kind = "CRAFT"
	KindPickup  Kind = "PICKUP"
	KindLaunch  Kind = "LAUNCH"
	KindConsume Kind = "CONSUME"
	KindGet     Kind = "GET"
	KindCook    Kind = "COOK"
	KindEnchant Kind = "ENCHANT"
	KindFish    Kind = "FISH"
	KindFarming Kind = "FARMING"

	KindKill  Kind = "KILL"
	KindBreed Kind = "BREED"
	KindTame  Kind = "TAME"
	KindShear Kind = "SHEAR"

	KindCustomMobs Kind = "CUSTOM_MOBS"

	KindVillagerTrade Kind = "VILLAGER_TRADE"

	KindLocation    Kind = "LOCATION"
	KindPlaceholder Kind = "PLACEHOLDER"

	KindMilking         Kind = "MILKING"
	KindExpPoints       Kind = "EXP_POINTS"
	KindExpLevels       Kind = "EXP_LEVELS"
	KindCarve           Kind = "CARVE"
	KindPlayerDeath     Kind = "PLAYER_DEATH"
	KindFireballReflect Kind = "FIREBALL_REFLECT"
)

// Family groups kinds by the payload they carry and the match predicate they
// use. Dispatch switches on the family, never on a type hierarchy.
type Family int

const (
	FamilyUnknown Family = iota
	FamilyItem
	FamilyEntity
	FamilyCustomMob
	FamilyTrade
	FamilyLocation
	FamilyPlaceholder
	FamilyCounter
)

func (k Kind) Family() Family {
	switch k {
	case KindBreak, KindPlace, KindCraft, KindPickup, KindLaunch, KindConsume,
		KindGet, KindCook, KindEnchant, KindFish, KindFarming:
		return FamilyItem
	case KindKill, KindBreed, KindTame, KindShear:
		return FamilyEntity
	case KindCustomMobs:
		return FamilyCustomMob
	case KindVillagerTrade:
		return FamilyTrade
	case KindLocation:
		return FamilyLocation
	case KindPlaceholder:
		return FamilyPlaceholder
	case KindMilking, KindExpPoints, KindExpLevels, KindCarve, KindPlayerDeath, KindFireballReflect:
		return FamilyCounter
	default:
		return FamilyUnknown
	}
}

func (k Kind) Valid() bool {
	return k.Family() != FamilyUnknown
}

// Binary reports whether the kind completes in a single check rather than by
// accumulating an amount. Binary kinds always require exactly 1.
func (k Kind) Binary() bool {
	return k == KindLocation || k == KindPlaceholder
}

// ItemDescriptor identifies an item by its material type plus an optional
// sub-identity. Two descriptors with sub-identities on both sides must agree
// on them; a sub-identity on exactly one side never matches.
type ItemDescriptor struct {
	Type            string
	CustomModelData *int
}

// IconTag is embedded in the menu icon of GET, LOCATION and PLACEHOLDER
// quests so a click on the quest display can be told apart from a click on a
// look-alike inventory item.
type IconTag struct {
	Kind       Kind
	QuestIndex int
	FileName   string
}

type ItemIcon struct {
	Type string
	Name string
	Tag  *IconTag
}

type ItemPayload struct {
	Required []ItemDescriptor
}

// EntityPayload restricts entity-action quests. Empty slices leave the
// corresponding dimension unrestricted. SheepColor only applies to SHEAR.
type EntityPayload struct {
	Kinds      []string
	Names      []string
	SheepColor string
}

// TradePayload holds the villager-trade constraints. An empty Required list
// means any traded result counts; profession and level are filters applied
// on top when the villager is known at trade time.
type TradePayload struct {
	Required   []ItemDescriptor
	Profession string
	Level      int
}

type LocationPayload struct {
	World  string
	X      float64
	Y      float64
	Z      float64
	Radius float64
}

type ConditionType string

const (
	ConditionEquals              ConditionType = "EQUALS"
	ConditionNotEquals           ConditionType = "NOT_EQUALS"
	ConditionGreaterThan         ConditionType = "GREATER_THAN"
	ConditionGreaterThanOrEquals ConditionType = "GREATER_THAN_OR_EQUALS"
	ConditionLessThan            ConditionType = "LESS_THAN"
	ConditionLessThanOrEquals    ConditionType = "LESS_THAN_OR_EQUALS"
)

func (c ConditionType) Valid() bool {
	switch c {
	case ConditionEquals, ConditionNotEquals, ConditionGreaterThan,
		ConditionGreaterThanOrEquals, ConditionLessThan, ConditionLessThanOrEquals:
		return true
	}
	return false
}

func (c ConditionType) Numeric() bool {
	switch c {
	case ConditionGreaterThan, ConditionGreaterThanOrEquals, ConditionLessThan, ConditionLessThanOrEquals:
		return true
	}
	return false
}

type PlaceholderPayload struct {
	Name           string
	Condition      ConditionType
	Expected       string
	FailureMessage string
}

type RewardType string

const (
	RewardNone        RewardType = "NONE"
	RewardCommand     RewardType = "COMMAND"
	RewardCoinsEngine RewardType = "COINS_ENGINE"
	RewardExp         RewardType = "EXP"
	RewardMoney       RewardType = "MONEY"
	RewardPoints      RewardType = "POINTS"
)

func (r RewardType) Valid() bool {
	switch r {
	case RewardNone, RewardCommand, RewardCoinsEngine, RewardExp, RewardMoney, RewardPoints:
		return true
	}
	return false
}

type Reward struct {
	Type                RewardType
	Commands            []string
	CurrencyLabel       string
	CurrencyDisplayName string
	Amount              int
}

// QuestID identifies a definition across reloads and in persisted records.
type QuestID struct {
	FileName   string
	QuestIndex int
}

// QuestDefinition is immutable after load. Exactly the payload pointers
// implied by Kind.Family() are set; the rest stay nil.
type QuestDefinition struct {
	FileName    string
	QuestIndex  int
	Name        string
	Description []string

	Kind           Kind
	RequiredAmount int
	RequiredWorlds []string

	MenuIcon         ItemIcon
	AchievedMenuIcon ItemIcon

	Items       *ItemPayload
	Entities    *EntityPayload
	Trade       *TradePayload
	Location    *LocationPayload
	Placeholder *PlaceholderPayload

	Reward Reward
}

func (q *QuestDefinition) ID() QuestID {
	return QuestID{FileName: q.FileName, QuestIndex: q.QuestIndex}
}

// WorldAllowed reports whether progress in the given world counts toward the
// quest. An empty RequiredWorlds list is unrestricted.
func (q *QuestDefinition) WorldAllowed(world string) bool {
	if len(q.RequiredWorlds) == 0 {
		return true
	}
	for _, w := range q.RequiredWorlds {
		if w == world {
			return true
		}
	}
	return false
}
