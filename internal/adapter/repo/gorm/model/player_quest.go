package model

const TableNamePlayerQuestRecord = "player_quest_records"

// PlayerQuestRecord mapped from table <player_quest_records>
type PlayerQuestRecord struct {
	PlayerID      string `gorm:"column:player_id;primaryKey" json:"player_id"`
	AssignedAt    int64  `gorm:"column:assigned_at;not null" json:"assigned_at"`
	TotalAchieved int32  `gorm:"column:total_achieved;not null" json:"total_achieved"`
	AchievedInSet int32  `gorm:"column:achieved_in_set;not null" json:"achieved_in_set"`
}

func (*PlayerQuestRecord) TableName() string {
	return TableNamePlayerQuestRecord
}

const TableNamePlayerQuestLine = "player_quest_lines"

// PlayerQuestLine mapped from table <player_quest_lines>
type PlayerQuestLine struct {
	PlayerID       string `gorm:"column:player_id;primaryKey" json:"player_id"`
	LineIndex      int32  `gorm:"column:line_index;primaryKey" json:"line_index"`
	QuestFile      string `gorm:"column:quest_file;not null" json:"quest_file"`
	QuestIndex     int32  `gorm:"column:quest_index;not null" json:"quest_index"`
	AchievedAmount int32  `gorm:"column:achieved_amount;not null" json:"achieved_amount"`
	Achieved       bool   `gorm:"column:achieved;not null" json:"achieved"`
}

func (*PlayerQuestLine) TableName() string {
	return TableNamePlayerQuestLine
}
