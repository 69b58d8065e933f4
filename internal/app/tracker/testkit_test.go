package tracker

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"questline/internal/app/antidupe"
	"questline/internal/app/ports"
	"questline/internal/domain/quest"
)

type stubProgress struct {
	mu      sync.Mutex
	records map[string]ports.PlayerQuestRecord
	saves   int
	getErr  error
	saveErr error
}

func newStubProgress() *stubProgress {
	return &stubProgress{records: map[string]ports.PlayerQuestRecord{}}
}

func (s *stubProgress) Get(_ context.Context, playerID string) (ports.PlayerQuestRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return ports.PlayerQuestRecord{}, s.getErr
	}
	rec, ok := s.records[playerID]
	if !ok {
		return ports.PlayerQuestRecord{}, ports.ErrNotFound
	}
	return rec, nil
}

func (s *stubProgress) Save(_ context.Context, rec ports.PlayerQuestRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.records[rec.PlayerID] = rec
	s.saves++
	return nil
}

func (s *stubProgress) Delete(_ context.Context, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, playerID)
	return nil
}

func (s *stubProgress) ListPlayerIDs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	return ids, nil
}

type signalRecord struct {
	PlayerID string
	Quest    string
	Amount   int
	Achieved bool
}

type stubSignals struct {
	mu         sync.Mutex
	progressed []signalRecord
	completed  []signalRecord
}

func (s *stubSignals) QuestProgressed(_ context.Context, playerID string, p quest.Progression, def *quest.QuestDefinition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progressed = append(s.progressed, signalRecord{playerID, def.Name, p.AchievedAmount, p.Achieved})
}

func (s *stubSignals) QuestCompleted(_ context.Context, playerID string, p quest.Progression, def *quest.QuestDefinition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed = append(s.completed, signalRecord{playerID, def.Name, p.AchievedAmount, p.Achieved})
}

type stubMessenger struct {
	mu   sync.Mutex
	keys []ports.MessageKey
	vars []map[string]string
	raw  []string
}

func (m *stubMessenger) Send(_ context.Context, _ string, key ports.MessageKey, vars map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = append(m.keys, key)
	m.vars = append(m.vars, vars)
}

func (m *stubMessenger) SendRaw(_ context.Context, _ string, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raw = append(m.raw, message)
}

type removal struct {
	Item   quest.ItemDescriptor
	Amount int
}

type stubHoldings struct {
	stacks  []ports.ItemStack
	removed []removal
	closed  int
}

func (h *stubHoldings) Stacks(_ context.Context, _ string) ([]ports.ItemStack, error) {
	return h.stacks, nil
}

func (h *stubHoldings) Remove(_ context.Context, _ string, item quest.ItemDescriptor, amount int) error {
	h.removed = append(h.removed, removal{item, amount})
	return nil
}

func (h *stubHoldings) CloseQuestInterface(_ context.Context, _ string) {
	h.closed++
}

type stubPlaceholders struct {
	available bool
	values    map[string]string
	err       error
}

func (p *stubPlaceholders) Available() bool { return p.available }

func (p *stubPlaceholders) Evaluate(_ context.Context, _, placeholder string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return p.values[placeholder], nil
}

type stubRewards struct {
	granted []quest.Reward
	err     error
}

func (r *stubRewards) Dispense(_ context.Context, _ string, reward quest.Reward) error {
	r.granted = append(r.granted, reward)
	return r.err
}

type stubMetrics struct {
	mu          sync.Mutex
	progress    map[quest.Kind]int
	completions map[quest.Kind]int
	rejections  map[string]int
}

func newStubMetrics() *stubMetrics {
	return &stubMetrics{
		progress:    map[quest.Kind]int{},
		completions: map[quest.Kind]int{},
		rejections:  map[string]int{},
	}
}

func (m *stubMetrics) RecordProgress(kind quest.Kind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress[kind]++
}

func (m *stubMetrics) RecordCompletion(kind quest.Kind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completions[kind]++
}

func (m *stubMetrics) RecordRejection(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejections[reason]++
}

type testEnv struct {
	tracker   *Tracker
	progress  *stubProgress
	signals   *stubSignals
	messenger *stubMessenger
	metrics   *stubMetrics
	rewards   *stubRewards
	holdings  *stubHoldings
}

func newTestEnv(defs ...*quest.QuestDefinition) *testEnv {
	env := &testEnv{
		progress:  newStubProgress(),
		signals:   &stubSignals{},
		messenger: &stubMessenger{},
		metrics:   newStubMetrics(),
		rewards:   &stubRewards{},
		holdings:  &stubHoldings{},
	}
	env.tracker = &Tracker{
		Registry:  NewRegistry(),
		Progress:  env.progress,
		Guards:    antidupe.NewGuards(antidupe.DefaultConfig()),
		Signals:   env.signals,
		Messenger: env.messenger,
		Holdings:  env.holdings,
		Rewards:   env.rewards,
		Metrics:   env.metrics,
		Settings:  Settings{QuestCount: len(defs), TakeItems: true},
		Now:       func() time.Time { return time.UnixMilli(1_700_000_000_000) },
		Rand:      rand.New(rand.NewSource(1)),
	}
	env.tracker.SwapCatalog(quest.NewCatalog(map[quest.Category][]*quest.QuestDefinition{
		quest.CategoryGlobal: defs,
	}))
	return env
}

// assign registers a fresh set containing every catalog quest in definition
// order, bypassing random selection so tests control display order.
func (e *testEnv) assign(playerID string) *quest.PlayerQuestSet {
	set := quest.NewPlayerQuestSet(e.tracker.now().UnixMilli(), e.tracker.Catalog().All())
	e.tracker.Registry.Assign(playerID, set)
	return set
}

func breakQuest(file string, index, amount int, itemTypes ...string) *quest.QuestDefinition {
	q := &quest.QuestDefinition{
		FileName:       file,
		QuestIndex:     index,
		Name:           fmt.Sprintf("break-%s-%d", itemTypes[0], index),
		Kind:           quest.KindBreak,
		RequiredAmount: amount,
		MenuIcon:       quest.ItemIcon{Type: itemTypes[0]},
		Reward:         quest.Reward{Type: quest.RewardNone},
	}
	q.AchievedMenuIcon = q.MenuIcon
	payload := &quest.ItemPayload{}
	for _, t := range itemTypes {
		payload.Required = append(payload.Required, quest.ItemDescriptor{Type: t})
	}
	q.Items = payload
	return q
}
