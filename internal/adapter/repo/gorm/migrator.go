package gormrepo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
)

// ApplyMigrations brings the quest progress schema up to date from the SQL
// files in dir, lowest version first. Applied versions are recorded in
// schema_migrations; re-running is a no-op for versions already present.
func ApplyMigrations(ctx context.Context, db *gorm.DB, dir string) error {
	metaTable := `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version TEXT PRIMARY KEY,
  applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`
	if err := db.WithContext(ctx).Exec(metaTable).Error; err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	files, err := listMigrationFiles(dir)
	if err != nil {
		return err
	}

	for _, name := range files {
		version := strings.TrimSuffix(name, ".sql")

		var applied int64
		err := db.WithContext(ctx).Table("schema_migrations").
			Where("version = ?", version).Count(&applied).Error
		if err != nil {
			return fmt.Errorf("check migration %s: %w", version, err)
		}
		if applied > 0 {
			continue
		}

		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		// Each migration plus its version record lands atomically.
		err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(string(content)).Error; err != nil {
				return fmt.Errorf("apply migration %s: %w", name, err)
			}
			return tx.Exec(
				`INSERT INTO schema_migrations(version, applied_at) VALUES (?, ?)`,
				version, time.Now(),
			).Error
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func listMigrationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migration dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}
