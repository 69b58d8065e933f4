package ports

import "context"

// QuestLineRecord is one persisted (quest, progression) pair. Order inside
// PlayerQuestRecord.Lines is the display order of the set.
type QuestLineRecord struct {
	QuestFile      string
	QuestIndex     int
	AchievedAmount int
	Achieved       bool
}

type PlayerQuestRecord struct {
	PlayerID      string
	AssignedAt    int64
	Lines         []QuestLineRecord
	TotalAchieved int
	AchievedInSet int
}

type PlayerProgressRepository interface {
	Get(ctx context.Context, playerID string) (PlayerQuestRecord, error)
	Save(ctx context.Context, record PlayerQuestRecord) error
	Delete(ctx context.Context, playerID string) error
	ListPlayerIDs(ctx context.Context) ([]string, error)
}

type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
