// Package memoryholdings mirrors player inventories pushed by the host, so
// GET-quest validation can scan and consume items without a callback to the
// game process.
package memoryholdings

import (
	"context"
	"log/slog"
	"sync"

	"questline/internal/app/ports"
	"questline/internal/domain/quest"
)

type Holdings struct {
	Logger *slog.Logger

	mu     sync.Mutex
	stacks map[string][]ports.ItemStack
}

func New() *Holdings {
	return &Holdings{stacks: make(map[string][]ports.ItemStack)}
}

// SetStacks replaces the mirrored inventory of one player.
func (h *Holdings) SetStacks(playerID string, stacks []ports.ItemStack) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stacks[playerID] = append([]ports.ItemStack(nil), stacks...)
}

func (h *Holdings) Stacks(_ context.Context, playerID string) ([]ports.ItemStack, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]ports.ItemStack(nil), h.stacks[playerID]...), nil
}

// Remove consumes up to amount matching items from the mirror, draining
// stacks in order.
func (h *Holdings) Remove(_ context.Context, playerID string, item quest.ItemDescriptor, amount int) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	remaining := amount
	kept := h.stacks[playerID][:0]
	for _, s := range h.stacks[playerID] {
		if remaining > 0 && quest.MatchItem(item, s.Item) {
			take := s.Amount
			if take > remaining {
				take = remaining
			}
			remaining -= take
			s.Amount -= take
			if s.Amount == 0 {
				continue
			}
		}
		kept = append(kept, s)
	}
	h.stacks[playerID] = kept
	return nil
}

func (h *Holdings) CloseQuestInterface(_ context.Context, playerID string) {
	l := h.Logger
	if l == nil {
		l = slog.Default()
	}
	l.Info("quest interface closed", slog.String("player", playerID))
}
