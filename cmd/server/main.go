package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	yamlcatalog "questline/internal/adapter/catalog/yamlcatalog"
	memoryholdings "questline/internal/adapter/holdings/memory"
	"questline/internal/adapter/hostlog"
	httpadapter "questline/internal/adapter/http"
	metricsinmem "questline/internal/adapter/metrics/inmemory"
	staticplaceholder "questline/internal/adapter/placeholder/static"
	"questline/internal/adapter/repo/flatfile"
	gormrepo "questline/internal/adapter/repo/gorm"
	memoryrepo "questline/internal/adapter/repo/memory"
	"questline/internal/app/admin"
	"questline/internal/app/antidupe"
	"questline/internal/app/ports"
	"questline/internal/app/tracker"
	"questline/internal/config"

	"github.com/cloudwego/hertz/pkg/app/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(os.Getenv("QUESTLINE_CONFIG"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	stores, txManagers := mustBuildStores(cfg)
	progress, ok := stores[cfg.StorageMode]
	if !ok {
		log.Fatalf("storage mode %q is not available", cfg.StorageMode)
	}

	guardCfg := antidupe.DefaultConfig()
	if cfg.Guards.PlacedBlockTTL > 0 {
		guardCfg.PlacedBlockTTL = cfg.Guards.PlacedBlockTTL
	}
	if cfg.Guards.SpawnerMarkTTL > 0 {
		guardCfg.SpawnerMarkTTL = cfg.Guards.SpawnerMarkTTL
	}
	if cfg.Guards.TradeOfferTTL > 0 {
		guardCfg.TradeOfferTTL = cfg.Guards.TradeOfferTTL
	}
	guards := antidupe.NewGuards(guardCfg)
	defer guards.Stop()

	holdings := memoryholdings.New()
	placeholders := staticplaceholder.NewEvaluator()
	recorder := metricsinmem.NewRecorder()

	trk := &tracker.Tracker{
		Registry:     tracker.NewRegistry(),
		Progress:     progress,
		Guards:       guards,
		Signals:      hostlog.Signals{Logger: logger},
		Messenger:    hostlog.Messenger{Logger: logger},
		Placeholders: placeholders,
		Holdings:     holdings,
		Rewards:      hostlog.RewardDispenser{Logger: logger},
		Metrics:      recorder,
		Settings: tracker.Settings{
			Synchronized:   cfg.Synchronized,
			TakeItems:      cfg.TakeItems,
			DisabledWorlds: cfg.DisabledWorlds,
			QuestCount:     cfg.QuestCount,
			Quotas: tracker.CategoryQuotas{
				Easy:   cfg.Quotas.Easy,
				Medium: cfg.Quotas.Medium,
				Hard:   cfg.Quotas.Hard,
			},
			RotationEvery: cfg.RotationEvery,
		},
		Logger: logger,
	}

	loader := yamlcatalog.New(cfg.QuestsDir)
	adminUC := admin.UseCase{
		Tracker:   trk,
		Loader:    loader,
		Stores:    stores,
		Tx:        txManagers,
		Messenger: trk.Messenger,
		Logger:    logger,
	}
	if _, err := adminUC.Reload(context.Background()); err != nil {
		log.Fatalf("load quest catalog: %v", err)
	}

	h := httpadapter.Handler{
		Tracker:      trk,
		AdminUC:      adminUC,
		Holdings:     holdings,
		Placeholders: placeholders,
		Metrics:      recorder,
	}

	s := server.Default(server.WithHostPorts(cfg.ListenAddr))
	h.RegisterRoutes(s)

	log.Printf("questline server listening on %s (storage: %s)", cfg.ListenAddr, cfg.StorageMode)
	s.Spin()
}

func mustBuildStores(cfg config.Config) (map[string]ports.PlayerProgressRepository, map[string]ports.TxManager) {
	stores := map[string]ports.PlayerProgressRepository{
		config.StorageMemory: memoryrepo.NewPlayerProgressRepo(),
	}
	txManagers := map[string]ports.TxManager{}

	fileRepo, err := flatfile.Open(cfg.ProgressFile)
	if err != nil {
		log.Fatalf("open progress file: %v", err)
	}
	stores[config.StorageFile] = fileRepo

	if cfg.DBDSN != "" {
		db, err := gormrepo.OpenPostgres(cfg.DBDSN)
		if err != nil {
			log.Fatalf("open postgres: %v", err)
		}
		if cfg.MigrationsDir != "" {
			if err := gormrepo.ApplyMigrations(context.Background(), db, cfg.MigrationsDir); err != nil {
				log.Fatalf("apply migrations: %v", err)
			}
		}
		stores[config.StoragePostgres] = gormrepo.NewPlayerProgressRepo(db)
		txManagers[config.StoragePostgres] = gormrepo.NewTxManager(db)
	} else if cfg.StorageMode == config.StoragePostgres {
		log.Fatal("QUESTLINE_DB_DSN is required for postgres storage")
	}

	return stores, txManagers
}
