package quest

import (
	"errors"
	"math"
	"strconv"
)

// ErrNotANumber reports a numeric comparison against a non-numeric value.
// Callers treat it as a soft failure: the quest stays untouched.
var ErrNotANumber = errors.New("value is not a number")

// MatchItem applies the sub-identity rule: identical types match when both
// sides carry the same custom model data or neither side carries any. A
// custom model data on exactly one side is a non-match.
func MatchItem(required, actual ItemDescriptor) bool {
	if required.Type != actual.Type {
		return false
	}
	switch {
	case required.CustomModelData != nil && actual.CustomModelData != nil:
		return *required.CustomModelData == *actual.CustomModelData
	case required.CustomModelData == nil && actual.CustomModelData == nil:
		return true
	default:
		return false
	}
}

// MatchesItem reports whether any required descriptor matches. A nil payload
// matches everything: the definition fell back to its base form.
func (p *ItemPayload) MatchesItem(actual ItemDescriptor) bool {
	if p == nil || len(p.Required) == 0 {
		return true
	}
	for _, req := range p.Required {
		if MatchItem(req, actual) {
			return true
		}
	}
	return false
}

func (p *EntityPayload) MatchesKind(entityKind string) bool {
	if p == nil || len(p.Kinds) == 0 {
		return true
	}
	for _, k := range p.Kinds {
		if k == entityKind {
			return true
		}
	}
	return false
}

func (p *EntityPayload) MatchesName(name string) bool {
	if p == nil || len(p.Names) == 0 {
		return false
	}
	for _, n := range p.Names {
		if n == name {
			return true
		}
	}
	return false
}

// MatchesResult checks the traded offer result. No required items means any
// trade counts.
func (p *TradePayload) MatchesResult(actual ItemDescriptor) bool {
	if p == nil || len(p.Required) == 0 {
		return true
	}
	for _, req := range p.Required {
		if req.Type == actual.Type {
			return true
		}
	}
	return false
}

// Distance is the 3-D Euclidean distance from the payload's point.
func (l *LocationPayload) Distance(x, y, z float64) float64 {
	dx := l.X - x
	dy := l.Y - y
	dz := l.Z - z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Contains reports whether the position is within the radius, inclusive.
// The world must match; distance is irrelevant across worlds.
func (l *LocationPayload) Contains(world string, x, y, z float64) bool {
	if l.World != world {
		return false
	}
	return l.Distance(x, y, z) <= l.Radius
}

// EvaluateCondition compares an observed placeholder value against the
// expected one. Numeric operators parse both sides as floats and return
// ErrNotANumber when either side fails to parse.
func EvaluateCondition(cond ConditionType, actual, expected string) (bool, error) {
	switch cond {
	case ConditionEquals:
		return actual == expected, nil
	case ConditionNotEquals:
		return actual != expected, nil
	}

	current, err := strconv.ParseFloat(actual, 64)
	if err != nil {
		return false, ErrNotANumber
	}
	want, err := strconv.ParseFloat(expected, 64)
	if err != nil {
		return false, ErrNotANumber
	}

	switch cond {
	case ConditionGreaterThan:
		return current > want, nil
	case ConditionGreaterThanOrEquals:
		return current >= want, nil
	case ConditionLessThan:
		return current < want, nil
	case ConditionLessThanOrEquals:
		return current <= want, nil
	default:
		return false, nil
	}
}

// IconMatches compares a clicked icon against a quest's menu icon. Types
// must agree and the embedded tags must be equal on both sides; two untagged
// icons of the same type also match, mirroring plain inventory items.
func IconMatches(clicked, menu ItemIcon) bool {
	if clicked.Type != menu.Type {
		return false
	}
	if (clicked.Tag == nil) != (menu.Tag == nil) {
		return false
	}
	if clicked.Tag == nil {
		return true
	}
	return *clicked.Tag == *menu.Tag
}
