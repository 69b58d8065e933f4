package httpadapter

import (
	"encoding/json"
	"testing"

	"questline/internal/adapter/metrics/inmemory"
	"questline/internal/app/admin"
	"questline/internal/app/tracker"
	"questline/internal/domain/quest"
)

func TestResponseJSONUsesSnakeCase(t *testing.T) {
	view := tracker.SetView{
		PlayerID:      "p1",
		AssignedAt:    1_700_000_000_000,
		TotalAchieved: 4,
		AchievedInSet: 1,
		Quests: []tracker.QuestView{
			{
				DisplayIndex:   1,
				Name:           "break stone",
				Kind:           "BREAK",
				Icon:           "STONE",
				AchievedAmount: 3,
				RequiredAmount: 10,
			},
		},
	}
	reload := admin.ReloadResult{
		QuestCount: 7,
		Errors: []quest.ConfigError{
			{FileName: "easy.yml", QuestIndex: 2, Field: "quest_type", Message: "unknown quest type"},
		},
	}
	convert := admin.ConvertResult{Players: 12}
	snapshot := inmemory.Snapshot{
		ProgressTotal:    5,
		CompletionTotal:  2,
		RejectionTotal:   1,
		ProgressByKind:   map[string]uint64{"BREAK": 5},
		CompletionByKind: map[string]uint64{"BREAK": 2},
		ByRejectReason:   map[string]uint64{"disabled_world": 1},
	}

	cases := []struct {
		name    string
		payload any
		want    []string
		notWant []string
	}{
		{
			name:    "set view",
			payload: view,
			want:    []string{"player_id", "assigned_at", "quests", "total_achieved", "achieved_in_set"},
			notWant: []string{"PlayerID", "AssignedAt", "Quests", "TotalAchieved"},
		},
		{
			name:    "reload",
			payload: reload,
			want:    []string{"quest_count", "errors"},
			notWant: []string{"QuestCount", "Errors"},
		},
		{
			name:    "convert",
			payload: convert,
			want:    []string{"players"},
			notWant: []string{"Players"},
		},
		{
			name:    "metrics",
			payload: snapshot,
			want:    []string{"progress_total", "completion_total", "rejection_total", "progress_by_kind", "completion_by_kind", "by_reject_reason"},
			notWant: []string{"ProgressTotal", "ByRejectReason"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := json.Marshal(tc.payload)
			if err != nil {
				t.Fatalf("marshal failed: %v", err)
			}
			var got map[string]any
			if err := json.Unmarshal(b, &got); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			for _, key := range tc.want {
				if _, ok := got[key]; !ok {
					t.Fatalf("expected key %q in %s", key, string(b))
				}
			}
			for _, key := range tc.notWant {
				if _, ok := got[key]; ok {
					t.Fatalf("unexpected key %q in %s", key, string(b))
				}
			}
			if tc.name == "set view" {
				quests, _ := got["quests"].([]any)
				if len(quests) != 1 {
					t.Fatalf("expected one quest in %s", string(b))
				}
				questMap := asMap(quests[0])
				for _, key := range []string{"display_index", "achieved_amount", "required_amount", "achieved"} {
					if _, ok := questMap[key]; !ok {
						t.Fatalf("expected nested snake_case key quests[0].%s in %s", key, string(b))
					}
				}
				if _, ok := questMap["DisplayIndex"]; ok {
					t.Fatalf("unexpected nested key quests[0].DisplayIndex in %s", string(b))
				}
			}
			if tc.name == "reload" {
				errs, _ := got["errors"].([]any)
				errMap := asMap(errs[0])
				if _, ok := errMap["file_name"]; !ok {
					t.Fatalf("expected nested snake_case key errors[0].file_name in %s", string(b))
				}
			}
		})
	}
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}
