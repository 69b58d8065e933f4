// Package hostlog carries the outbound collaborator ports over structured
// logs. A host that consumes the log stream gets every player message, quest
// signal and reward grant; embedding hosts replace these with their own
// implementations.
package hostlog

import (
	"context"
	"log/slog"

	"questline/internal/app/ports"
	"questline/internal/domain/quest"
)

type Messenger struct {
	Logger *slog.Logger
}

func (m Messenger) Send(_ context.Context, playerID string, key ports.MessageKey, vars map[string]string) {
	attrs := []any{
		slog.String("player", playerID),
		slog.String("key", string(key)),
	}
	for k, v := range vars {
		attrs = append(attrs, slog.String("var_"+k, v))
	}
	m.logger().Info("player message", attrs...)
}

func (m Messenger) SendRaw(_ context.Context, playerID string, message string) {
	m.logger().Info("player message",
		slog.String("player", playerID),
		slog.String("raw", message))
}

func (m Messenger) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}

type Signals struct {
	Logger *slog.Logger
}

func (s Signals) QuestProgressed(_ context.Context, playerID string, p quest.Progression, def *quest.QuestDefinition) {
	s.logger().Info("quest progressed",
		slog.String("player", playerID),
		slog.String("quest", def.Name),
		slog.Int("achieved_amount", p.AchievedAmount),
		slog.Int("required_amount", def.RequiredAmount))
}

func (s Signals) QuestCompleted(_ context.Context, playerID string, _ quest.Progression, def *quest.QuestDefinition) {
	s.logger().Info("quest completed",
		slog.String("player", playerID),
		slog.String("quest", def.Name))
}

func (s Signals) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

type RewardDispenser struct {
	Logger *slog.Logger
}

func (d RewardDispenser) Dispense(_ context.Context, playerID string, reward quest.Reward) error {
	l := d.Logger
	if l == nil {
		l = slog.Default()
	}
	attrs := []any{
		slog.String("player", playerID),
		slog.String("type", string(reward.Type)),
	}
	switch reward.Type {
	case quest.RewardCommand:
		attrs = append(attrs, slog.Any("commands", reward.Commands))
	case quest.RewardCoinsEngine:
		attrs = append(attrs,
			slog.String("currency", reward.CurrencyLabel),
			slog.Int("amount", reward.Amount))
	default:
		attrs = append(attrs, slog.Int("amount", reward.Amount))
	}
	l.Info("reward granted", attrs...)
	return nil
}
