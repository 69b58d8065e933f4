// Package staticplaceholder resolves placeholders from values the host
// pushes over the API. It stands in for an external placeholder engine.
package staticplaceholder

import (
	"context"
	"errors"
	"sync"
)

var ErrUnknownPlaceholder = errors.New("unknown placeholder")

// Evaluator keeps per-player values keyed by placeholder name. It reports
// unavailable until the first value arrives, matching a placeholder backend
// that has not been hooked yet.
type Evaluator struct {
	mu     sync.RWMutex
	values map[string]map[string]string
}

func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Set stores one placeholder value for a player and flips the evaluator to
// available.
func (e *Evaluator) Set(playerID, placeholder, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.values == nil {
		e.values = make(map[string]map[string]string)
	}
	byName := e.values[playerID]
	if byName == nil {
		byName = make(map[string]string)
		e.values[playerID] = byName
	}
	byName[placeholder] = value
}

func (e *Evaluator) Available() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.values != nil
}

func (e *Evaluator) Evaluate(_ context.Context, playerID, placeholder string) (string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if v, ok := e.values[playerID][placeholder]; ok {
		return v, nil
	}
	return "", ErrUnknownPlaceholder
}
