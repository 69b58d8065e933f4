package gormrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"questline/internal/adapter/repo/gorm/model"
	"questline/internal/app/ports"
)

type PlayerProgressRepo struct {
	db *gorm.DB
}

func NewPlayerProgressRepo(db *gorm.DB) PlayerProgressRepo {
	return PlayerProgressRepo{db: db}
}

func (r PlayerProgressRepo) Get(ctx context.Context, playerID string) (ports.PlayerQuestRecord, error) {
	db := getDBFromCtx(ctx, r.db)

	var m model.PlayerQuestRecord
	if err := db.Where("player_id = ?", playerID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.PlayerQuestRecord{}, ports.ErrNotFound
		}
		return ports.PlayerQuestRecord{}, err
	}

	var lines []model.PlayerQuestLine
	if err := db.Where("player_id = ?", playerID).Order("line_index ASC").Find(&lines).Error; err != nil {
		return ports.PlayerQuestRecord{}, err
	}

	rec := ports.PlayerQuestRecord{
		PlayerID:      m.PlayerID,
		AssignedAt:    m.AssignedAt,
		TotalAchieved: int(m.TotalAchieved),
		AchievedInSet: int(m.AchievedInSet),
	}
	for _, l := range lines {
		rec.Lines = append(rec.Lines, ports.QuestLineRecord{
			QuestFile:      l.QuestFile,
			QuestIndex:     int(l.QuestIndex),
			AchievedAmount: int(l.AchievedAmount),
			Achieved:       l.Achieved,
		})
	}
	return rec, nil
}

// Save upserts the record row and replaces its quest lines whole. Both
// happen in one transaction so a crash never leaves a record with a stale
// line set.
func (r PlayerProgressRepo) Save(ctx context.Context, rec ports.PlayerQuestRecord) error {
	db := getDBFromCtx(ctx, r.db)
	return db.Transaction(func(tx *gorm.DB) error {
		m := model.PlayerQuestRecord{
			PlayerID:      rec.PlayerID,
			AssignedAt:    rec.AssignedAt,
			TotalAchieved: int32(rec.TotalAchieved),
			AchievedInSet: int32(rec.AchievedInSet),
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "player_id"}},
			UpdateAll: true,
		}).Create(&m).Error; err != nil {
			return err
		}

		if err := tx.Where("player_id = ?", rec.PlayerID).Delete(&model.PlayerQuestLine{}).Error; err != nil {
			return err
		}
		if len(rec.Lines) == 0 {
			return nil
		}

		lines := make([]model.PlayerQuestLine, 0, len(rec.Lines))
		for i, l := range rec.Lines {
			lines = append(lines, model.PlayerQuestLine{
				PlayerID:       rec.PlayerID,
				LineIndex:      int32(i),
				QuestFile:      l.QuestFile,
				QuestIndex:     int32(l.QuestIndex),
				AchievedAmount: int32(l.AchievedAmount),
				Achieved:       l.Achieved,
			})
		}
		return tx.Create(&lines).Error
	})
}

func (r PlayerProgressRepo) Delete(ctx context.Context, playerID string) error {
	db := getDBFromCtx(ctx, r.db)
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("player_id = ?", playerID).Delete(&model.PlayerQuestLine{}).Error; err != nil {
			return err
		}
		return tx.Where("player_id = ?", playerID).Delete(&model.PlayerQuestRecord{}).Error
	})
}

func (r PlayerProgressRepo) ListPlayerIDs(ctx context.Context) ([]string, error) {
	db := getDBFromCtx(ctx, r.db)
	var ids []string
	if err := db.Model(&model.PlayerQuestRecord{}).Order("player_id ASC").Pluck("player_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
