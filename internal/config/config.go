// Package config loads the server settings file and applies QUESTLINE_*
// environment overrides on top.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

type QuotasConfig struct {
	Easy   int `yaml:"easy"`
	Medium int `yaml:"medium"`
	Hard   int `yaml:"hard"`
}

type GuardsConfig struct {
	PlacedBlockTTL time.Duration `yaml:"placed_block_ttl"`
	SpawnerMarkTTL time.Duration `yaml:"spawner_mark_ttl"`
	TradeOfferTTL  time.Duration `yaml:"trade_offer_ttl"`
}

type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	QuestsDir  string `yaml:"quests_dir"`

	StorageMode   string `yaml:"storage_mode"`
	DBDSN         string `yaml:"db_dsn"`
	MigrationsDir string `yaml:"migrations_dir"`
	ProgressFile  string `yaml:"progress_file"`

	QuestCount     int           `yaml:"quest_count"`
	Quotas         QuotasConfig  `yaml:"quotas"`
	Synchronized   bool          `yaml:"synchronized"`
	TakeItems      bool          `yaml:"take_items"`
	DisabledWorlds []string      `yaml:"disabled_worlds"`
	RotationEvery  time.Duration `yaml:"rotation_every"`

	Guards GuardsConfig `yaml:"guards"`
}

func Default() Config {
	return Config{
		ListenAddr:    ":8080",
		QuestsDir:     "quests",
		StorageMode:   StorageFile,
		MigrationsDir: "deploy/migrations",
		ProgressFile:  "progress.yml",
		QuestCount:    3,
		TakeItems:     true,
		RotationEvery: 24 * time.Hour,
	}
}

// Load reads the settings file when it exists, then applies environment
// overrides. A missing file is not an error; defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	applyEnv(&cfg)

	switch cfg.StorageMode {
	case StorageMemory, StorageFile, StoragePostgres:
	default:
		return Config{}, fmt.Errorf("unknown storage mode %q", cfg.StorageMode)
	}
	if cfg.QuestCount < 1 {
		return Config{}, fmt.Errorf("quest count must be at least 1")
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	strEnv("QUESTLINE_LISTEN_ADDR", &cfg.ListenAddr)
	strEnv("QUESTLINE_QUESTS_DIR", &cfg.QuestsDir)
	strEnv("QUESTLINE_STORAGE_MODE", &cfg.StorageMode)
	strEnv("QUESTLINE_DB_DSN", &cfg.DBDSN)
	strEnv("QUESTLINE_MIGRATIONS_DIR", &cfg.MigrationsDir)
	strEnv("QUESTLINE_PROGRESS_FILE", &cfg.ProgressFile)
	intEnv("QUESTLINE_QUEST_COUNT", &cfg.QuestCount)
	intEnv("QUESTLINE_QUOTA_EASY", &cfg.Quotas.Easy)
	intEnv("QUESTLINE_QUOTA_MEDIUM", &cfg.Quotas.Medium)
	intEnv("QUESTLINE_QUOTA_HARD", &cfg.Quotas.Hard)
	boolEnv("QUESTLINE_SYNCHRONIZED", &cfg.Synchronized)
	boolEnv("QUESTLINE_TAKE_ITEMS", &cfg.TakeItems)
	durEnv("QUESTLINE_ROTATION_EVERY", &cfg.RotationEvery)

	if v := os.Getenv("QUESTLINE_DISABLED_WORLDS"); v != "" {
		var worlds []string
		for _, w := range strings.Split(v, ",") {
			if w = strings.TrimSpace(w); w != "" {
				worlds = append(worlds, w)
			}
		}
		cfg.DisabledWorlds = worlds
	}
}

func strEnv(key string, out *string) {
	if v := os.Getenv(key); v != "" {
		*out = v
	}
}

func intEnv(key string, out *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*out = n
		}
	}
}

func boolEnv(key string, out *bool) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*out = b
		}
	}
}

func durEnv(key string, out *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*out = d
		}
	}
}
