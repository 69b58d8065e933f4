package quest

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ConfigError reports one malformed quest definition entry. A load never
// aborts on one; the entry is skipped and the rest of the file continues.
type ConfigError struct {
	FileName   string `json:"file_name"`
	QuestIndex int    `json:"quest_index"`
	Field      string `json:"field,omitempty"`
	Message    string `json:"message"`
}

func (e ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s[%d]: %s", e.FileName, e.QuestIndex, e.Message)
	}
	return fmt.Sprintf("%s[%d] %s: %s", e.FileName, e.QuestIndex, e.Field, e.Message)
}

// StringList accepts either a single scalar or a sequence in YAML; the quest
// files use both forms interchangeably.
type StringList []string

func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*l = StringList{s}
		return nil
	}
	var out []string
	if err := node.Decode(&out); err != nil {
		return err
	}
	*l = out
	return nil
}

// RawItem is either a bare material name or a mapping with a sub-identity.
type RawItem struct {
	Type            string `yaml:"type"`
	CustomModelData *int   `yaml:"custom_model_data"`
}

func (i *RawItem) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		i.Type = s
		return nil
	}
	type plain RawItem
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*i = RawItem(p)
	return nil
}

type RawItemList []RawItem

func (l *RawItemList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		var item RawItem
		if err := node.Decode(&item); err != nil {
			return err
		}
		*l = RawItemList{item}
		return nil
	}
	var out []RawItem
	if err := node.Decode(&out); err != nil {
		return err
	}
	*l = out
	return nil
}

type RawLocation struct {
	World  string  `yaml:"world"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Z      float64 `yaml:"z"`
	Radius float64 `yaml:"radius"`
}

type RawPlaceholder struct {
	Value        string `yaml:"value"`
	Operator     string `yaml:"operator"`
	Expected     string `yaml:"expected"`
	ErrorMessage string `yaml:"error_message"`
}

type RawReward struct {
	RewardType          string   `yaml:"reward_type"`
	Commands            []string `yaml:"commands"`
	CurrencyLabel       string   `yaml:"currency_label"`
	CurrencyDisplayName string   `yaml:"currency_display_name"`
	Amount              int      `yaml:"amount"`
}

// RawDefinition mirrors one quest section of a definition file.
type RawDefinition struct {
	Name               string          `yaml:"name"`
	Description        []string        `yaml:"description"`
	QuestType          string          `yaml:"quest_type"`
	RequiredAmount     int             `yaml:"required_amount"`
	RequiredWorlds     []string        `yaml:"required_worlds"`
	MenuItem           string          `yaml:"menu_item"`
	AchievedMenuItem   string          `yaml:"achieved_menu_item"`
	RequiredItems      RawItemList     `yaml:"required_item"`
	RequiredEntities   StringList      `yaml:"required_entity"`
	EntityNames        StringList      `yaml:"entity_name"`
	SheepColor         string          `yaml:"sheep_color"`
	VillagerProfession string          `yaml:"villager_profession"`
	VillagerLevel      int             `yaml:"villager_level"`
	Location           *RawLocation    `yaml:"location"`
	Placeholder        *RawPlaceholder `yaml:"placeholder"`
	Reward             *RawReward      `yaml:"reward"`
}

type CatalogLoadResult struct {
	Quests []*QuestDefinition
	Errors []ConfigError
}

// Load builds definitions from the raw entries of one file. Malformed
// entries are skipped individually; loading is side-effect-free besides the
// returned errors and is safe to repeat.
func Load(fileName string, raws []RawDefinition) CatalogLoadResult {
	var result CatalogLoadResult
	fail := func(index int, field, msg string) {
		result.Errors = append(result.Errors, ConfigError{
			FileName:   fileName,
			QuestIndex: index,
			Field:      field,
			Message:    msg,
		})
	}

	for index, raw := range raws {
		q, errs := buildDefinition(fileName, index, raw)
		for _, e := range errs {
			fail(index, e.Field, e.Message)
		}
		if q != nil {
			result.Quests = append(result.Quests, q)
		}
	}
	return result
}

type fieldError struct {
	Field   string
	Message string
}

func buildDefinition(fileName string, index int, raw RawDefinition) (*QuestDefinition, []fieldError) {
	var errs []fieldError

	kind := Kind(raw.QuestType)
	if !kind.Valid() {
		return nil, append(errs, fieldError{"quest_type", fmt.Sprintf("%q is not a valid quest type", raw.QuestType)})
	}

	amount := raw.RequiredAmount
	if kind.Binary() {
		amount = 1
	}
	if amount < 1 {
		return nil, append(errs, fieldError{"required_amount", "required amount must be at least 1"})
	}

	if raw.MenuItem == "" {
		return nil, append(errs, fieldError{"menu_item", "the menu item is not defined"})
	}

	q := &QuestDefinition{
		FileName:       fileName,
		QuestIndex:     index,
		Name:           raw.Name,
		Description:    raw.Description,
		Kind:           kind,
		RequiredAmount: amount,
		RequiredWorlds: raw.RequiredWorlds,
		MenuIcon:       ItemIcon{Type: raw.MenuItem, Name: raw.Name},
	}

	if raw.AchievedMenuItem != "" {
		q.AchievedMenuIcon = ItemIcon{Type: raw.AchievedMenuItem, Name: raw.Name}
	} else {
		q.AchievedMenuIcon = q.MenuIcon
	}

	reward, rewardErrs := buildReward(raw.Reward)
	errs = append(errs, rewardErrs...)
	q.Reward = reward

	switch kind.Family() {
	case FamilyCounter:
		// no payload

	case FamilyEntity:
		if len(raw.RequiredEntities) > 0 || raw.SheepColor != "" {
			payload := &EntityPayload{SheepColor: raw.SheepColor}
			for _, e := range raw.RequiredEntities {
				if e == "" {
					return nil, append(errs, fieldError{"required_entity", "invalid entity type detected"})
				}
				payload.Kinds = append(payload.Kinds, e)
			}
			q.Entities = payload
		}

	case FamilyCustomMob:
		if len(raw.EntityNames) == 0 {
			return nil, append(errs, fieldError{"entity_name", "there is no entity name defined for quest type CUSTOM_MOBS"})
		}
		q.Entities = &EntityPayload{Names: raw.EntityNames}

	case FamilyItem:
		if len(raw.RequiredItems) > 0 {
			payload := &ItemPayload{}
			for _, item := range raw.RequiredItems {
				if item.Type == "" {
					return nil, append(errs, fieldError{"required_item", "invalid material type detected"})
				}
				payload.Required = append(payload.Required, ItemDescriptor{
					Type:            item.Type,
					CustomModelData: item.CustomModelData,
				})
			}
			q.Items = payload
		}
		if kind == KindGet {
			q.MenuIcon.Tag = &IconTag{Kind: kind, QuestIndex: index, FileName: fileName}
		}

	case FamilyTrade:
		payload := &TradePayload{
			Profession: raw.VillagerProfession,
			Level:      raw.VillagerLevel,
		}
		for _, item := range raw.RequiredItems {
			if item.Type == "" {
				return nil, append(errs, fieldError{"required_item", "invalid material type detected"})
			}
			payload.Required = append(payload.Required, ItemDescriptor{
				Type:            item.Type,
				CustomModelData: item.CustomModelData,
			})
		}
		q.Trade = payload

	case FamilyLocation:
		if raw.Location == nil {
			return nil, append(errs, fieldError{"location", "you need to specify a location"})
		}
		radius := raw.Location.Radius
		if radius <= 0 {
			radius = 1
		}
		q.Location = &LocationPayload{
			World:  raw.Location.World,
			X:      raw.Location.X,
			Y:      raw.Location.Y,
			Z:      raw.Location.Z,
			Radius: radius,
		}
		q.MenuIcon.Tag = &IconTag{Kind: kind, QuestIndex: index, FileName: fileName}

	case FamilyPlaceholder:
		if raw.Placeholder == nil {
			return nil, append(errs, fieldError{"placeholder", "you need to specify a placeholder"})
		}
		cond := ConditionType(raw.Placeholder.Operator)
		if !cond.Valid() {
			return nil, append(errs, fieldError{"placeholder.operator", fmt.Sprintf("%q is not a valid operator", raw.Placeholder.Operator)})
		}
		q.Placeholder = &PlaceholderPayload{
			Name:           raw.Placeholder.Value,
			Condition:      cond,
			Expected:       raw.Placeholder.Expected,
			FailureMessage: raw.Placeholder.ErrorMessage,
		}
		q.MenuIcon.Tag = &IconTag{Kind: kind, QuestIndex: index, FileName: fileName}
	}

	return q, errs
}

// buildReward falls back to a NONE reward for an absent or malformed reward
// section instead of dropping the quest.
func buildReward(raw *RawReward) (Reward, []fieldError) {
	if raw == nil {
		return Reward{Type: RewardNone}, nil
	}

	rt := RewardType(raw.RewardType)
	if !rt.Valid() {
		return Reward{Type: RewardNone}, []fieldError{{"reward.reward_type", fmt.Sprintf("%q is not a valid reward type", raw.RewardType)}}
	}

	switch rt {
	case RewardNone:
		return Reward{Type: RewardNone}, nil
	case RewardCommand:
		return Reward{Type: RewardCommand, Commands: raw.Commands}, nil
	case RewardCoinsEngine:
		if raw.CurrencyLabel == "" || raw.CurrencyDisplayName == "" {
			return Reward{Type: RewardNone}, []fieldError{{"reward.currency_label", "currency_label or currency_display_name is missing"}}
		}
		return Reward{
			Type:                RewardCoinsEngine,
			CurrencyLabel:       raw.CurrencyLabel,
			CurrencyDisplayName: raw.CurrencyDisplayName,
			Amount:              raw.Amount,
		}, nil
	default:
		return Reward{Type: rt, Amount: raw.Amount}, nil
	}
}

// Category names the definition files quests are drawn from.
type Category string

const (
	CategoryGlobal Category = "global"
	CategoryEasy   Category = "easy"
	CategoryMedium Category = "medium"
	CategoryHard   Category = "hard"
)

// Catalog is the immutable set of loaded definitions. A reload builds a new
// Catalog and swaps it in whole; existing quest sets keep the definitions
// they were assigned with.
type Catalog struct {
	byCategory map[Category][]*QuestDefinition
	index      map[QuestID]*QuestDefinition
	all        []*QuestDefinition
}

func NewCatalog(byCategory map[Category][]*QuestDefinition) *Catalog {
	c := &Catalog{
		byCategory: make(map[Category][]*QuestDefinition, len(byCategory)),
		index:      make(map[QuestID]*QuestDefinition),
	}
	for _, cat := range []Category{CategoryGlobal, CategoryEasy, CategoryMedium, CategoryHard} {
		for _, q := range byCategory[cat] {
			c.byCategory[cat] = append(c.byCategory[cat], q)
			c.index[q.ID()] = q
			c.all = append(c.all, q)
		}
	}
	return c
}

func (c *Catalog) Category(cat Category) []*QuestDefinition {
	return c.byCategory[cat]
}

func (c *Catalog) All() []*QuestDefinition {
	return c.all
}

func (c *Catalog) Resolve(id QuestID) (*QuestDefinition, bool) {
	q, ok := c.index[id]
	return q, ok
}

// Categorized reports whether any of the easy/medium/hard files contributed
// quests; selection then draws per-category quotas instead of a flat draw.
func (c *Catalog) Categorized() bool {
	return len(c.byCategory[CategoryEasy])+len(c.byCategory[CategoryMedium])+len(c.byCategory[CategoryHard]) > 0
}
