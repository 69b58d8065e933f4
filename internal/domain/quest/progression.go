package quest

// Progression is the mutable counter + achieved flag for one player/quest
// pair. It is owned by the player's quest set and must only be mutated while
// holding that player's registry entry.
type Progression struct {
	AchievedAmount int
	Achieved       bool
}

// Entry pairs a definition with its progression. Slice order is display
// order and never changes for the lifetime of the set.
type Entry struct {
	Quest       *QuestDefinition
	Progression *Progression
}

// PlayerQuestSet is one player's currently assigned daily quests plus the
// aggregate counters. TotalAchieved survives rotations, AchievedInSet does
// not.
type PlayerQuestSet struct {
	AssignedAt    int64
	Entries       []Entry
	TotalAchieved int
	AchievedInSet int
}

func NewPlayerQuestSet(assignedAt int64, quests []*QuestDefinition) *PlayerQuestSet {
	entries := make([]Entry, 0, len(quests))
	for _, q := range quests {
		entries = append(entries, Entry{Quest: q, Progression: &Progression{}})
	}
	return &PlayerQuestSet{AssignedAt: assignedAt, Entries: entries}
}

// AchievedCount recounts achieved entries; it exists so invariants can be
// checked against the AchievedInSet counter.
func (s *PlayerQuestSet) AchievedCount() int {
	n := 0
	for _, e := range s.Entries {
		if e.Progression.Achieved {
			n++
		}
	}
	return n
}

func (s *PlayerQuestSet) Find(id QuestID) (Entry, bool) {
	for _, e := range s.Entries {
		if e.Quest.ID() == id {
			return e, true
		}
	}
	return Entry{}, false
}
