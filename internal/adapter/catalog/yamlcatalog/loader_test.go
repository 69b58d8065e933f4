package yamlcatalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"questline/internal/domain/quest"
)

func writeQuestFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadKeyedMappingOrderedByKey(t *testing.T) {
	dir := t.TempDir()
	writeQuestFile(t, dir, "easy.yml", `
quests:
  2:
    name: "Second"
    quest_type: BREAK
    required_amount: 5
    menu_item: DIRT
  1:
    name: "First"
    quest_type: BREAK
    required_amount: 10
    menu_item: STONE
    required_item: STONE
`)

	cat, cfgErrs, err := New(dir).Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, cfgErrs)

	easy := cat.Category(quest.CategoryEasy)
	require.Len(t, easy, 2)
	require.Equal(t, "First", easy[0].Name)
	require.Equal(t, "Second", easy[1].Name)
	require.Equal(t, []quest.ItemDescriptor{{Type: "STONE"}}, easy[0].Items.Required)
}

func TestLoadSequenceForm(t *testing.T) {
	dir := t.TempDir()
	writeQuestFile(t, dir, "global.yml", `
quests:
  - name: "Fisher"
    quest_type: FISH
    required_amount: 3
    menu_item: COD
  - name: "Visit"
    quest_type: LOCATION
    menu_item: MAP
    location:
      world: overworld
      x: 10
      y: 64
      z: -3
      radius: 2
`)

	cat, cfgErrs, err := New(dir).Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, cfgErrs)
	require.Len(t, cat.All(), 2)
	require.False(t, cat.Categorized())

	visit, ok := cat.Resolve(quest.QuestID{FileName: "global.yml", QuestIndex: 1})
	require.True(t, ok)
	require.Equal(t, quest.KindLocation, visit.Kind)
	require.Equal(t, 1, visit.RequiredAmount)
	require.NotNil(t, visit.MenuIcon.Tag)
}

func TestLoadCollectsConfigErrorsAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	writeQuestFile(t, dir, "easy.yml", `
quests:
  - name: "Good"
    quest_type: BREAK
    required_amount: 1
    menu_item: STONE
  - name: "Bad"
    quest_type: NOPE
    required_amount: 1
    menu_item: STONE
`)
	writeQuestFile(t, dir, "hard.yml", `
quests:
  - name: "NoIcon"
    quest_type: KILL
    required_amount: 3
`)

	cat, cfgErrs, err := New(dir).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, cat.All(), 1)
	require.Len(t, cfgErrs, 2)
	require.Equal(t, "easy.yml", cfgErrs[0].FileName)
	require.Equal(t, "hard.yml", cfgErrs[1].FileName)
}

func TestLoadMissingFilesContributeNothing(t *testing.T) {
	dir := t.TempDir()

	cat, cfgErrs, err := New(dir).Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, cfgErrs)
	require.Empty(t, cat.All())
}

func TestLoadRejectsUnparseableFile(t *testing.T) {
	dir := t.TempDir()
	writeQuestFile(t, dir, "easy.yml", "quests: \"not a list\"")

	_, _, err := New(dir).Load(context.Background())
	require.Error(t, err)
}
