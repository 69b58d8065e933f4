// Package antidupe keeps the short-lived side tables that correlate world
// objects with their origin, so a noisy event stream (stacked entities,
// re-opened trade menus, place-then-break farming) cannot credit the same
// physical event twice.
package antidupe

import (
	"fmt"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

type BlockPos struct {
	World string
	X     int
	Y     int
	Z     int
}

func (p BlockPos) key() string {
	return fmt.Sprintf("%s:%d:%d:%d", p.World, p.X, p.Y, p.Z)
}

type Config struct {
	PlacedBlockTTL time.Duration
	SpawnerMarkTTL time.Duration
	TradeOfferTTL  time.Duration
}

func DefaultConfig() Config {
	return Config{
		PlacedBlockTTL: 24 * time.Hour,
		SpawnerMarkTTL: time.Hour,
		TradeOfferTTL:  time.Hour,
	}
}

// Guards owns three expiring tables: block position -> placing player,
// entity identity -> spawner-sourced flag, trade offer identity -> uses
// already credited. Entries are bounded by TTL and removed eagerly when the
// underlying object is consumed.
type Guards struct {
	placed  *ttlcache.Cache[string, string]
	spawner *ttlcache.Cache[string, bool]
	offers  *ttlcache.Cache[string, int]
}

func NewGuards(cfg Config) *Guards {
	g := &Guards{
		placed: ttlcache.New[string, string](
			ttlcache.WithTTL[string, string](cfg.PlacedBlockTTL),
			ttlcache.WithDisableTouchOnHit[string, string](),
		),
		spawner: ttlcache.New[string, bool](
			ttlcache.WithTTL[string, bool](cfg.SpawnerMarkTTL),
			ttlcache.WithDisableTouchOnHit[string, bool](),
		),
		offers: ttlcache.New[string, int](
			ttlcache.WithTTL[string, int](cfg.TradeOfferTTL),
			ttlcache.WithDisableTouchOnHit[string, int](),
		),
	}
	go g.placed.Start()
	go g.spawner.Start()
	go g.offers.Start()
	return g
}

func (g *Guards) Stop() {
	g.placed.Stop()
	g.spawner.Stop()
	g.offers.Stop()
}

// MarkPlaced records who placed a block so a later break by the same player
// can be excluded from progress.
func (g *Guards) MarkPlaced(pos BlockPos, playerID string) {
	g.placed.Set(pos.key(), playerID, ttlcache.DefaultTTL)
}

// ConsumePlaced returns the placing player, if any, and drops the marker;
// the block ceases to exist on break regardless of who gets credit.
func (g *Guards) ConsumePlaced(pos BlockPos) (string, bool) {
	item := g.placed.Get(pos.key())
	if item == nil {
		return "", false
	}
	g.placed.Delete(pos.key())
	return item.Value(), true
}

func (g *Guards) MarkSpawnerSourced(entityID string) {
	g.spawner.Set(entityID, true, ttlcache.DefaultTTL)
}

// ConsumeSpawnerFlag reports whether the entity was spawner-sourced and
// removes the flag either way, so a recycled entity identity never inherits
// it.
func (g *Guards) ConsumeSpawnerFlag(entityID string) bool {
	item := g.spawner.Get(entityID)
	g.spawner.Delete(entityID)
	return item != nil && item.Value()
}

// MarkTradeOpened records how many uses of an offer were already spent when
// the trade menu opened; uses up to that mark were credited in an earlier
// session of the same menu.
func (g *Guards) MarkTradeOpened(offerID string, usesAlreadyCredited int) {
	g.offers.Set(offerID, usesAlreadyCredited, ttlcache.DefaultTTL)
}

// CreditedUses returns the recorded mark for an offer, zero when untracked.
func (g *Guards) CreditedUses(offerID string) int {
	item := g.offers.Get(offerID)
	if item == nil {
		return 0
	}
	return item.Value()
}
