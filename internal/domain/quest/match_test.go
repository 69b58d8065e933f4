package quest

import (
	"errors"
	"testing"
)

func intp(n int) *int { return &n }

func TestMatchItemCustomModelData(t *testing.T) {
	cases := []struct {
		name     string
		required ItemDescriptor
		actual   ItemDescriptor
		want     bool
	}{
		{"same type no model data", ItemDescriptor{Type: "STONE"}, ItemDescriptor{Type: "STONE"}, true},
		{"different type", ItemDescriptor{Type: "STONE"}, ItemDescriptor{Type: "DIRT"}, false},
		{"both sides same model data", ItemDescriptor{Type: "STONE", CustomModelData: intp(7)}, ItemDescriptor{Type: "STONE", CustomModelData: intp(7)}, true},
		{"both sides different model data", ItemDescriptor{Type: "STONE", CustomModelData: intp(7)}, ItemDescriptor{Type: "STONE", CustomModelData: intp(8)}, false},
		{"model data only on required", ItemDescriptor{Type: "STONE", CustomModelData: intp(7)}, ItemDescriptor{Type: "STONE"}, false},
		{"model data only on actual", ItemDescriptor{Type: "STONE"}, ItemDescriptor{Type: "STONE", CustomModelData: intp(7)}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MatchItem(tc.required, tc.actual); got != tc.want {
				t.Fatalf("MatchItem(%+v, %+v) = %v, want %v", tc.required, tc.actual, got, tc.want)
			}
		})
	}
}

func TestItemPayloadNilMatchesEverything(t *testing.T) {
	var p *ItemPayload
	if !p.MatchesItem(ItemDescriptor{Type: "ANYTHING"}) {
		t.Fatal("nil payload must match every item")
	}
}

func TestEntityPayloadKindAndName(t *testing.T) {
	p := &EntityPayload{Kinds: []string{"ZOMBIE", "SKELETON"}}
	if !p.MatchesKind("ZOMBIE") {
		t.Fatal("listed kind must match")
	}
	if p.MatchesKind("CREEPER") {
		t.Fatal("unlisted kind must not match")
	}

	var empty *EntityPayload
	if !empty.MatchesKind("ANY") {
		t.Fatal("nil payload must match every kind")
	}
	if empty.MatchesName("ANY") {
		t.Fatal("nil payload must match no name")
	}

	named := &EntityPayload{Names: []string{"Boss"}}
	if !named.MatchesName("Boss") {
		t.Fatal("listed name must match")
	}
	if named.MatchesName("boss") {
		t.Fatal("name match is case sensitive")
	}
}

func TestTradePayloadMatchesResult(t *testing.T) {
	var p *TradePayload
	if !p.MatchesResult(ItemDescriptor{Type: "EMERALD"}) {
		t.Fatal("nil payload must accept any trade")
	}

	p = &TradePayload{Required: []ItemDescriptor{{Type: "ARROW"}}}
	if !p.MatchesResult(ItemDescriptor{Type: "ARROW", CustomModelData: intp(4)}) {
		t.Fatal("trade result matches on type only")
	}
	if p.MatchesResult(ItemDescriptor{Type: "EMERALD"}) {
		t.Fatal("unlisted result must not match")
	}
}

func TestLocationContains(t *testing.T) {
	l := &LocationPayload{World: "overworld", X: 10, Y: 64, Z: -5, Radius: 3}

	if !l.Contains("overworld", 10, 64, -5) {
		t.Fatal("the exact point is inside")
	}
	if !l.Contains("overworld", 13, 64, -5) {
		t.Fatal("the radius boundary is inclusive")
	}
	if l.Contains("overworld", 13.5, 64, -5) {
		t.Fatal("outside the radius must not match")
	}
	if l.Contains("nether", 10, 64, -5) {
		t.Fatal("another world never matches regardless of distance")
	}
}

func TestEvaluateCondition(t *testing.T) {
	cases := []struct {
		cond     ConditionType
		actual   string
		expected string
		want     bool
	}{
		{ConditionEquals, "gold", "gold", true},
		{ConditionEquals, "gold", "iron", false},
		{ConditionNotEquals, "gold", "iron", true},
		{ConditionGreaterThan, "10", "5", true},
		{ConditionGreaterThan, "5", "5", false},
		{ConditionGreaterThanOrEquals, "5", "5", true},
		{ConditionLessThan, "4.5", "5", true},
		{ConditionLessThanOrEquals, "5", "5", true},
	}
	for _, tc := range cases {
		got, err := EvaluateCondition(tc.cond, tc.actual, tc.expected)
		if err != nil {
			t.Fatalf("EvaluateCondition(%s, %q, %q): %v", tc.cond, tc.actual, tc.expected, err)
		}
		if got != tc.want {
			t.Fatalf("EvaluateCondition(%s, %q, %q) = %v, want %v", tc.cond, tc.actual, tc.expected, got, tc.want)
		}
	}
}

func TestEvaluateConditionNotANumber(t *testing.T) {
	_, err := EvaluateCondition(ConditionGreaterThan, "lots", "5")
	if !errors.Is(err, ErrNotANumber) {
		t.Fatalf("expected ErrNotANumber, got %v", err)
	}
	_, err = EvaluateCondition(ConditionLessThan, "5", "few")
	if !errors.Is(err, ErrNotANumber) {
		t.Fatalf("expected ErrNotANumber for the expected side, got %v", err)
	}
	if _, err := EvaluateCondition(ConditionEquals, "lots", "lots"); err != nil {
		t.Fatalf("EQUALS never parses numbers: %v", err)
	}
}

func TestIconMatches(t *testing.T) {
	tag := &IconTag{Kind: KindGet, QuestIndex: 2, FileName: "easy.yml"}
	menu := ItemIcon{Type: "CHEST", Tag: tag}

	if !IconMatches(ItemIcon{Type: "CHEST", Tag: &IconTag{Kind: KindGet, QuestIndex: 2, FileName: "easy.yml"}}, menu) {
		t.Fatal("equal tags must match")
	}
	if IconMatches(ItemIcon{Type: "CHEST"}, menu) {
		t.Fatal("an untagged look-alike item must not match a tagged icon")
	}
	if IconMatches(ItemIcon{Type: "CHEST", Tag: &IconTag{Kind: KindGet, QuestIndex: 3, FileName: "easy.yml"}}, menu) {
		t.Fatal("a tag for another quest must not match")
	}
	if !IconMatches(ItemIcon{Type: "STONE"}, ItemIcon{Type: "STONE"}) {
		t.Fatal("two untagged icons of the same type match")
	}
}
