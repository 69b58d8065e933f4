// Package yamlcatalog loads quest definition files from a directory on disk.
package yamlcatalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"questline/internal/domain/quest"
)

var categoryFiles = map[quest.Category]string{
	quest.CategoryGlobal: "global.yml",
	quest.CategoryEasy:   "easy.yml",
	quest.CategoryMedium: "medium.yml",
	quest.CategoryHard:   "hard.yml",
}

// Loader reads the four category files from Dir. Missing files contribute no
// quests; malformed entries inside a file are skipped with a config error.
type Loader struct {
	Dir string
}

func New(dir string) *Loader {
	return &Loader{Dir: dir}
}

func (l *Loader) Load(_ context.Context) (*quest.Catalog, []quest.ConfigError, error) {
	byCategory := make(map[quest.Category][]*quest.QuestDefinition)
	var cfgErrs []quest.ConfigError

	for _, cat := range []quest.Category{quest.CategoryGlobal, quest.CategoryEasy, quest.CategoryMedium, quest.CategoryHard} {
		fileName := categoryFiles[cat]
		raws, err := readFile(filepath.Join(l.Dir, fileName))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read quest file %s: %w", fileName, err)
		}

		result := quest.Load(fileName, raws)
		byCategory[cat] = result.Quests
		cfgErrs = append(cfgErrs, result.Errors...)
	}

	return quest.NewCatalog(byCategory), cfgErrs, nil
}

type questFile struct {
	Quests yaml.Node `yaml:"quests"`
}

// readFile accepts both layouts the definition files use: a sequence of quest
// sections, or a mapping keyed by display number. Mapping entries are ordered
// by key.
func readFile(path string) ([]quest.RawDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file questFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	switch file.Quests.Kind {
	case 0:
		return nil, nil
	case yaml.SequenceNode:
		var raws []quest.RawDefinition
		if err := file.Quests.Decode(&raws); err != nil {
			return nil, err
		}
		return raws, nil
	case yaml.MappingNode:
		return decodeKeyed(&file.Quests)
	default:
		return nil, fmt.Errorf("quests must be a sequence or a mapping")
	}
}

func decodeKeyed(node *yaml.Node) ([]quest.RawDefinition, error) {
	type keyed struct {
		key int
		raw quest.RawDefinition
	}
	entries := make([]keyed, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var e keyed
		if err := node.Content[i].Decode(&e.key); err != nil {
			return nil, fmt.Errorf("quest key %q: %w", node.Content[i].Value, err)
		}
		if err := node.Content[i+1].Decode(&e.raw); err != nil {
			return nil, fmt.Errorf("quest %d: %w", e.key, err)
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	raws := make([]quest.RawDefinition, 0, len(entries))
	for _, e := range entries {
		raws = append(raws, e.raw)
	}
	return raws, nil
}
