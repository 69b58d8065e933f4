// Package admin exposes the operations behind the administrative command
// surface: catalog reload, per-player resets, forced completion, quest
// display lookup and storage conversion.
package admin

import (
	"context"
	"errors"
	"log/slog"

	"questline/internal/app/ports"
	"questline/internal/app/tracker"
	"questline/internal/domain/quest"
)

var (
	ErrInvalidPlayer      = errors.New("invalid player")
	ErrInvalidStorageMode = errors.New("invalid storage mode")
)

// CatalogLoader rebuilds the whole catalog from the quest definition files.
type CatalogLoader interface {
	Load(ctx context.Context) (*quest.Catalog, []quest.ConfigError, error)
}

type UseCase struct {
	Tracker *tracker.Tracker
	Loader  CatalogLoader
	Stores  map[string]ports.PlayerProgressRepository
	// Tx carries the transaction manager of storage modes that have one;
	// conversion into such a mode writes all players in one transaction.
	Tx        map[string]ports.TxManager
	Messenger ports.Messenger
	Logger    *slog.Logger
}

type ReloadResult struct {
	QuestCount int                 `json:"quest_count"`
	Errors     []quest.ConfigError `json:"errors,omitempty"`
}

// Reload rebuilds the catalog and swaps it in atomically. Config errors are
// reported, never fatal; already-assigned sets keep their old definitions
// until rotation.
func (u UseCase) Reload(ctx context.Context) (ReloadResult, error) {
	cat, cfgErrs, err := u.Loader.Load(ctx)
	if err != nil {
		return ReloadResult{}, err
	}
	for _, e := range cfgErrs {
		u.logger().Warn("skipped malformed quest definition", slog.String("error", e.Error()))
	}
	u.Tracker.SwapCatalog(cat)
	u.logger().Info("quest catalog reloaded", slog.Int("quests", len(cat.All())))
	return ReloadResult{QuestCount: len(cat.All()), Errors: cfgErrs}, nil
}

func (u UseCase) ResetQuests(ctx context.Context, playerID string) error {
	if err := u.Tracker.ResetQuests(ctx, playerID); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return ErrInvalidPlayer
		}
		return err
	}
	if u.Messenger != nil {
		u.Messenger.Send(ctx, playerID, ports.MsgQuestsRenewed, nil)
	}
	return nil
}

func (u UseCase) ResetTotal(ctx context.Context, playerID string) error {
	if err := u.Tracker.ResetLifetimeTotal(ctx, playerID); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return ErrInvalidPlayer
		}
		return err
	}
	if u.Messenger != nil {
		u.Messenger.Send(ctx, playerID, ports.MsgTotalAmountReset, nil)
	}
	return nil
}

// Complete force-achieves the quest in the given 1-based display slot.
func (u UseCase) Complete(ctx context.Context, playerID string, displayIndex int) error {
	err := u.Tracker.ForceComplete(ctx, playerID, displayIndex)
	if errors.Is(err, ports.ErrNotFound) {
		return ErrInvalidPlayer
	}
	return err
}

// Show returns another player's quest display.
func (u UseCase) Show(_ context.Context, playerID string) (tracker.SetView, error) {
	view, err := u.Tracker.View(playerID)
	if errors.Is(err, ports.ErrNotFound) {
		return tracker.SetView{}, ErrInvalidPlayer
	}
	return view, err
}

type ConvertResult struct {
	Players int `json:"players"`
}

// Convert copies every player record from one storage mode to another.
func (u UseCase) Convert(ctx context.Context, from, to string) (ConvertResult, error) {
	src, ok := u.Stores[from]
	dst, ok2 := u.Stores[to]
	if !ok || !ok2 || from == to {
		return ConvertResult{}, ErrInvalidStorageMode
	}

	ids, err := src.ListPlayerIDs(ctx)
	if err != nil {
		return ConvertResult{}, err
	}

	copied := 0
	copyAll := func(ctx context.Context) error {
		for _, id := range ids {
			rec, err := src.Get(ctx, id)
			if err != nil {
				return err
			}
			if err := dst.Save(ctx, rec); err != nil {
				return err
			}
			copied++
		}
		return nil
	}

	if tx := u.Tx[to]; tx != nil {
		err = tx.RunInTx(ctx, copyAll)
	} else {
		err = copyAll(ctx)
	}
	if err != nil {
		return ConvertResult{Players: copied}, err
	}
	return ConvertResult{Players: copied}, nil
}

func (u UseCase) logger() *slog.Logger {
	if u.Logger != nil {
		return u.Logger
	}
	return slog.Default()
}
