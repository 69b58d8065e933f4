package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"questline/internal/app/admin"
	"questline/internal/app/antidupe"
	"questline/internal/app/ports"
	"questline/internal/app/tracker"
	"questline/internal/domain/quest"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

type holdingsSink interface {
	SetStacks(playerID string, stacks []ports.ItemStack)
}

type placeholderSink interface {
	Set(playerID, placeholder, value string)
}

type metricsSnapshotProvider interface {
	SnapshotAny() any
}

// Handler exposes the engine over HTTP: the host game process reports player
// actions to /api/events, mirrors state to /api/players, and operators drive
// /api/admin.
type Handler struct {
	Tracker      *tracker.Tracker
	AdminUC      admin.UseCase
	Holdings     holdingsSink
	Placeholders placeholderSink
	Metrics      metricsSnapshotProvider
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware())

	events := s.Group("/api/events")
	events.POST("/join", h.join)
	events.POST("/quit", h.quit)
	events.POST("/item", h.item)
	events.POST("/block-place", h.blockPlace)
	events.POST("/block-break", h.blockBreak)
	events.POST("/entity-kill", h.entityKill)
	events.POST("/entity-unstack", h.entityUnstack)
	events.POST("/entity-action", h.entityAction)
	events.POST("/custom-mob-kill", h.customMobKill)
	events.POST("/spawner-spawn", h.spawnerSpawn)
	events.POST("/projectile-hit", h.projectileHit)
	events.POST("/trade-menu-open", h.tradeMenuOpen)
	events.POST("/trade", h.trade)
	events.POST("/menu-click", h.menuClick)
	events.POST("/counter", h.counter)

	players := s.Group("/api/players")
	players.GET("/:id/quests", h.playerQuests)
	players.PUT("/:id/inventory", h.putInventory)
	players.PUT("/:id/placeholders", h.putPlaceholders)

	adm := s.Group("/api/admin")
	adm.POST("/reload", h.reload)
	adm.GET("/players/:id/quests", h.showQuests)
	adm.POST("/players/:id/reset-quests", h.resetQuests)
	adm.POST("/players/:id/reset-total", h.resetTotal)
	adm.POST("/players/:id/complete", h.completeQuest)
	adm.POST("/convert", h.convert)

	s.GET("/ops/metrics", h.metrics)
}

type itemBody struct {
	Type            string `json:"type"`
	CustomModelData *int   `json:"custom_model_data,omitempty"`
}

func (b itemBody) descriptor() quest.ItemDescriptor {
	return quest.ItemDescriptor{Type: b.Type, CustomModelData: b.CustomModelData}
}

type posBody struct {
	World string  `json:"world"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
}

type playerRequest struct {
	PlayerID string `json:"player_id"`
}

func (h Handler) join(c context.Context, ctx *app.RequestContext) {
	var body playerRequest
	if err := decodeJSON(ctx, &body); err != nil || body.PlayerID == "" {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if _, err := h.Tracker.LoadOrAssign(c, body.PlayerID); err != nil {
		writeError(ctx, err)
		return
	}
	view, err := h.Tracker.View(body.PlayerID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, view)
}

func (h Handler) quit(c context.Context, ctx *app.RequestContext) {
	var body playerRequest
	if err := decodeJSON(ctx, &body); err != nil || body.PlayerID == "" {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	h.Tracker.OnPlayerQuit(c, body.PlayerID)
	ctx.JSON(consts.StatusOK, map[string]bool{"ok": true})
}

type itemEventRequest struct {
	PlayerID string   `json:"player_id"`
	World    string   `json:"world"`
	Kind     string   `json:"kind"`
	Item     itemBody `json:"item"`
	Amount   int      `json:"amount"`
}

func (h Handler) item(c context.Context, ctx *app.RequestContext) {
	var body itemEventRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	h.Tracker.OnItemAction(c, tracker.ItemNotification{
		PlayerID: body.PlayerID,
		World:    body.World,
		Kind:     quest.Kind(body.Kind),
		Item:     body.Item.descriptor(),
		Amount:   body.Amount,
	})
	ctx.JSON(consts.StatusOK, map[string]bool{"ok": true})
}

type blockEventRequest struct {
	PlayerID string   `json:"player_id"`
	World    string   `json:"world"`
	Block    itemBody `json:"block"`
	Pos      posBody  `json:"pos"`
}

func (r blockEventRequest) notification() tracker.BlockNotification {
	return tracker.BlockNotification{
		PlayerID: r.PlayerID,
		World:    r.World,
		Block:    r.Block.descriptor(),
		Pos: antidupe.BlockPos{
			World: r.Pos.World,
			X:     int(r.Pos.X),
			Y:     int(r.Pos.Y),
			Z:     int(r.Pos.Z),
		},
	}
}

func (h Handler) blockPlace(c context.Context, ctx *app.RequestContext) {
	var body blockEventRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	h.Tracker.OnBlockPlace(c, body.notification())
	ctx.JSON(consts.StatusOK, map[string]bool{"ok": true})
}

func (h Handler) blockBreak(c context.Context, ctx *app.RequestContext) {
	var body blockEventRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	h.Tracker.OnBlockBreak(c, body.notification())
	ctx.JSON(consts.StatusOK, map[string]bool{"ok": true})
}

type entityEventRequest struct {
	PlayerID   string `json:"player_id"`
	World      string `json:"world"`
	EntityID   string `json:"entity_id"`
	EntityKind string `json:"entity_kind"`
	SheepColor string `json:"sheep_color,omitempty"`
	Kind       string `json:"kind,omitempty"`
	Amount     int    `json:"amount"`
}

func (r entityEventRequest) notification() tracker.EntityNotification {
	return tracker.EntityNotification{
		PlayerID:   r.PlayerID,
		World:      r.World,
		EntityID:   r.EntityID,
		EntityKind: r.EntityKind,
		SheepColor: r.SheepColor,
		Amount:     r.Amount,
	}
}

func (h Handler) entityKill(c context.Context, ctx *app.RequestContext) {
	var body entityEventRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	h.Tracker.OnEntityKill(c, body.notification())
	ctx.JSON(consts.StatusOK, map[string]bool{"ok": true})
}

func (h Handler) entityUnstack(c context.Context, ctx *app.RequestContext) {
	var body entityEventRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	h.Tracker.OnEntityUnstack(c, body.notification())
	ctx.JSON(consts.StatusOK, map[string]bool{"ok": true})
}

func (h Handler) entityAction(c context.Context, ctx *app.RequestContext) {
	var body entityEventRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	h.Tracker.OnEntityAction(c, quest.Kind(body.Kind), body.notification())
	ctx.JSON(consts.StatusOK, map[string]bool{"ok": true})
}

type customMobEventRequest struct {
	PlayerID string `json:"player_id"`
	World    string `json:"world"`
	MobName  string `json:"mob_name"`
	Amount   int    `json:"amount"`
}

func (h Handler) customMobKill(c context.Context, ctx *app.RequestContext) {
	var body customMobEventRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	h.Tracker.OnCustomMobKill(c, tracker.CustomMobNotification{
		PlayerID: body.PlayerID,
		World:    body.World,
		MobName:  body.MobName,
		Amount:   body.Amount,
	})
	ctx.JSON(consts.StatusOK, map[string]bool{"ok": true})
}

type spawnerSpawnRequest struct {
	EntityID string `json:"entity_id"`
}

func (h Handler) spawnerSpawn(_ context.Context, ctx *app.RequestContext) {
	var body spawnerSpawnRequest
	if err := decodeJSON(ctx, &body); err != nil || body.EntityID == "" {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	h.Tracker.OnSpawnerSpawn(body.EntityID)
	ctx.JSON(consts.StatusOK, map[string]bool{"ok": true})
}

type projectileEventRequest struct {
	ShooterID       string `json:"shooter_id"`
	ShooterIsPlayer bool   `json:"shooter_is_player"`
	World           string `json:"world"`
	ProjectileKind  string `json:"projectile_kind"`
	HitEntityKind   string `json:"hit_entity_kind"`
}

func (h Handler) projectileHit(c context.Context, ctx *app.RequestContext) {
	var body projectileEventRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	h.Tracker.OnProjectileHit(c, tracker.ProjectileNotification{
		ShooterID:       body.ShooterID,
		ShooterIsPlayer: body.ShooterIsPlayer,
		World:           body.World,
		ProjectileKind:  body.ProjectileKind,
		HitEntityKind:   body.HitEntityKind,
	})
	ctx.JSON(consts.StatusOK, map[string]bool{"ok": true})
}

type tradeMenuOpenRequest struct {
	Offers []struct {
		OfferID string `json:"offer_id"`
		Uses    int    `json:"uses"`
	} `json:"offers"`
}

func (h Handler) tradeMenuOpen(_ context.Context, ctx *app.RequestContext) {
	var body tradeMenuOpenRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	offers := make([]tracker.TradeOfferState, 0, len(body.Offers))
	for _, o := range body.Offers {
		offers = append(offers, tracker.TradeOfferState{OfferID: o.OfferID, Uses: o.Uses})
	}
	h.Tracker.OnTradeMenuOpen(offers)
	ctx.JSON(consts.StatusOK, map[string]bool{"ok": true})
}

type tradeEventRequest struct {
	PlayerID  string   `json:"player_id"`
	World     string   `json:"world"`
	OfferID   string   `json:"offer_id"`
	OfferUses int      `json:"offer_uses"`
	MaxUses   int      `json:"max_uses"`
	Result    itemBody `json:"result"`
	Quantity  int      `json:"quantity"`
	Villager  *struct {
		Profession string `json:"profession"`
		Level      int    `json:"level"`
	} `json:"villager,omitempty"`
}

func (h Handler) trade(c context.Context, ctx *app.RequestContext) {
	var body tradeEventRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	n := tracker.TradeNotification{
		PlayerID:  body.PlayerID,
		World:     body.World,
		OfferID:   body.OfferID,
		OfferUses: body.OfferUses,
		MaxUses:   body.MaxUses,
		Result:    body.Result.descriptor(),
		Quantity:  body.Quantity,
	}
	if body.Villager != nil {
		n.Villager = &tracker.VillagerInfo{
			Profession: body.Villager.Profession,
			Level:      body.Villager.Level,
		}
	}
	h.Tracker.OnTrade(c, n)
	ctx.JSON(consts.StatusOK, map[string]bool{"ok": true})
}

type menuClickRequest struct {
	PlayerID string `json:"player_id"`
	World    string `json:"world"`
	Icon     struct {
		Type string `json:"type"`
		Name string `json:"name"`
		Tag  *struct {
			Kind       string `json:"kind"`
			QuestIndex int    `json:"quest_index"`
			FileName   string `json:"file_name"`
		} `json:"tag,omitempty"`
	} `json:"icon"`
	Position posBody `json:"position"`
}

func (h Handler) menuClick(c context.Context, ctx *app.RequestContext) {
	var body menuClickRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	icon := quest.ItemIcon{Type: body.Icon.Type, Name: body.Icon.Name}
	if body.Icon.Tag != nil {
		icon.Tag = &quest.IconTag{
			Kind:       quest.Kind(body.Icon.Tag.Kind),
			QuestIndex: body.Icon.Tag.QuestIndex,
			FileName:   body.Icon.Tag.FileName,
		}
	}
	h.Tracker.OnMenuClick(c, tracker.ClickNotification{
		PlayerID: body.PlayerID,
		World:    body.World,
		Icon:     icon,
		Position: tracker.Position{
			World: body.Position.World,
			X:     body.Position.X,
			Y:     body.Position.Y,
			Z:     body.Position.Z,
		},
	})
	ctx.JSON(consts.StatusOK, map[string]bool{"ok": true})
}

type counterEventRequest struct {
	PlayerID string `json:"player_id"`
	World    string `json:"world"`
	Kind     string `json:"kind"`
	Amount   int    `json:"amount"`
}

func (h Handler) counter(c context.Context, ctx *app.RequestContext) {
	var body counterEventRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	h.Tracker.OnCounter(c, tracker.CounterNotification{
		PlayerID: body.PlayerID,
		World:    body.World,
		Kind:     quest.Kind(body.Kind),
		Amount:   body.Amount,
	})
	ctx.JSON(consts.StatusOK, map[string]bool{"ok": true})
}

func (h Handler) playerQuests(_ context.Context, ctx *app.RequestContext) {
	view, err := h.Tracker.View(requirePlayerParam(ctx))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, view)
}

type inventoryRequest struct {
	Stacks []struct {
		Item   itemBody `json:"item"`
		Amount int      `json:"amount"`
	} `json:"stacks"`
}

func (h Handler) putInventory(_ context.Context, ctx *app.RequestContext) {
	if h.Holdings == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "holdings mirror not configured")
		return
	}
	var body inventoryRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	stacks := make([]ports.ItemStack, 0, len(body.Stacks))
	for _, s := range body.Stacks {
		stacks = append(stacks, ports.ItemStack{Item: s.Item.descriptor(), Amount: s.Amount})
	}
	h.Holdings.SetStacks(requirePlayerParam(ctx), stacks)
	ctx.JSON(consts.StatusOK, map[string]bool{"ok": true})
}

type placeholderValuesRequest struct {
	Values map[string]string `json:"values"`
}

func (h Handler) putPlaceholders(_ context.Context, ctx *app.RequestContext) {
	if h.Placeholders == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "placeholder sink not configured")
		return
	}
	var body placeholderValuesRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	playerID := requirePlayerParam(ctx)
	for name, value := range body.Values {
		h.Placeholders.Set(playerID, name, value)
	}
	ctx.JSON(consts.StatusOK, map[string]bool{"ok": true})
}

func (h Handler) reload(c context.Context, ctx *app.RequestContext) {
	result, err := h.AdminUC.Reload(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, result)
}

func (h Handler) showQuests(c context.Context, ctx *app.RequestContext) {
	view, err := h.AdminUC.Show(c, requirePlayerParam(ctx))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, view)
}

func (h Handler) resetQuests(c context.Context, ctx *app.RequestContext) {
	if err := h.AdminUC.ResetQuests(c, requirePlayerParam(ctx)); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]bool{"ok": true})
}

func (h Handler) resetTotal(c context.Context, ctx *app.RequestContext) {
	if err := h.AdminUC.ResetTotal(c, requirePlayerParam(ctx)); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]bool{"ok": true})
}

type completeRequest struct {
	Index int `json:"index"`
}

func (h Handler) completeQuest(c context.Context, ctx *app.RequestContext) {
	var body completeRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if body.Index == 0 {
		body.Index, _ = strconv.Atoi(string(ctx.Query("index")))
	}
	if err := h.AdminUC.Complete(c, requirePlayerParam(ctx), body.Index); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]bool{"ok": true})
}

type convertRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (h Handler) convert(c context.Context, ctx *app.RequestContext) {
	var body convertRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	result, err := h.AdminUC.Convert(c, body.From, body.To)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, result)
}

func (h Handler) metrics(_ context.Context, ctx *app.RequestContext) {
	if h.Metrics == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "metrics recorder not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.Metrics.SnapshotAny())
}

func requirePlayerParam(ctx *app.RequestContext) string {
	return strings.TrimSpace(ctx.Param("id"))
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, tracker.ErrNoCatalog):
		writeErrorBody(ctx, consts.StatusServiceUnavailable, "no_catalog", err.Error())
	case errors.Is(err, tracker.ErrInvalidQuestIndex):
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_quest_index", err.Error())
	case errors.Is(err, tracker.ErrQuestAlreadyAchieved):
		writeErrorBody(ctx, consts.StatusConflict, "quest_already_achieved", err.Error())
	case errors.Is(err, admin.ErrInvalidPlayer):
		writeErrorBody(ctx, consts.StatusNotFound, "invalid_player", err.Error())
	case errors.Is(err, admin.ErrInvalidStorageMode):
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_storage_mode", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ports.ErrConflict):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
