// Package echo exposes the gateway over HTTP. Handlers are thin: they
// normalize query parameters, drive the fetch/compose pipeline, and
// map errors onto the JSON envelope.
package echo

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	gateway "github.com/thedoughmonster/doughmonster-worker-sub001"
	"github.com/thedoughmonster/doughmonster-worker-sub001/client"
	"github.com/thedoughmonster/doughmonster-worker-sub001/domain"
	gwerrors "github.com/thedoughmonster/doughmonster-worker-sub001/errors"
)

// Upstream is the vendor-facing surface the handlers consume.
type Upstream interface {
	OrdersBulk(ctx context.Context, q client.OrdersQuery) (*domain.OrdersPage, error)
	Menus(ctx context.Context) (*domain.MenuDocument, string, error)
	KitchenConfig(ctx context.Context) (*domain.KitchenConfig, error)
}

// Composer is the expansion surface the orders handler consumes.
type Composer interface {
	BuildExpandedOrders(ctx context.Context, in gateway.ComposeInput) *gateway.ComposeResult
	CacheStats() gateway.CacheStats
}

// GatewayAPI struct to hold dependencies.
type GatewayAPI struct {
	upstream   Upstream
	composer   Composer
	orderLimit int
	timeBudget time.Duration
}

// NewGatewayAPI initializes the gateway API.
func NewGatewayAPI(upstream Upstream, composer Composer, orderLimit int, timeBudget time.Duration) *GatewayAPI {
	return &GatewayAPI{
		upstream:   upstream,
		composer:   composer,
		orderLimit: orderLimit,
		timeBudget: timeBudget,
	}
}

// RegisterRoutes registers the gateway routes.
func (a *GatewayAPI) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/orders", a.OrdersHandler)
	e.GET("/api/menus", a.MenusHandler)
	e.GET("/api/kitchen/config", a.KitchenConfigHandler)
	e.GET("/api/cache/stats", a.CacheStatsHandler)

	e.GET("/healthz", a.HealthHandler)
	e.GET("/openapi.json", a.OpenAPIHandler)
	e.GET("/docs", a.DocsHandler)
}

// normalizeParam trims a query parameter; whitespace-only collapses to
// empty.
func normalizeParam(c echo.Context, name string) string {
	return strings.TrimSpace(c.QueryParam(name))
}

// requestContext attaches a correlation id to the request-scoped
// logger.
func requestContext(c echo.Context) context.Context {
	logger := log.With().Str("request_id", uuid.NewString()).Logger()
	return logger.WithContext(c.Request().Context())
}

type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// errorJSON maps an error onto the structured failure envelope.
func errorJSON(c echo.Context, err error) error {
	status := gwerrors.HTTPStatus(err)
	log.Ctx(c.Request().Context()).Error().Err(err).Int("status", status).Msg("request failed")
	return c.JSON(status, errorResponse{OK: false, Error: err.Error(), Code: gwerrors.Code(err)})
}

type ordersResponse struct {
	OK            bool              `json:"ok"`
	Orders        []domain.Document `json:"orders"`
	NextPageToken string            `json:"nextPageToken,omitempty"`
	Truncated     bool              `json:"truncated,omitempty"`
}

// OrdersHandler fetches a page of raw orders plus the menu catalog and
// returns the expanded, deterministically ordered payload.
func (a *GatewayAPI) OrdersHandler(c echo.Context) error {
	ctx := requestContext(c)
	startedAt := time.Now()

	limit := a.orderLimit
	if raw := normalizeParam(c, "limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return c.JSON(http.StatusBadRequest, errorResponse{OK: false, Error: "limit must be a non-negative integer", Code: "invalid_request"})
		}
		limit = parsed
	}

	page, err := a.upstream.OrdersBulk(ctx, client.OrdersQuery{
		PageToken:    normalizeParam(c, "pageToken"),
		LastModified: normalizeParam(c, "lastModified"),
	})
	if err != nil {
		return errorJSON(c, err)
	}

	// A menu fetch failure degrades the expansion (names unresolved)
	// instead of failing the whole request.
	menu, menuUpdatedAt, err := a.upstream.Menus(ctx)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("menu fetch failed, composing without catalog")
		menu, menuUpdatedAt = nil, ""
	}

	res := a.composer.BuildExpandedOrders(ctx, gateway.ComposeInput{
		Orders:        page.Orders,
		Menu:          menu,
		MenuUpdatedAt: menuUpdatedAt,
		Limit:         limit,
		StartedAt:     startedAt,
		TimeBudget:    a.timeBudget,
	})

	return c.JSON(http.StatusOK, ordersResponse{
		OK:            true,
		Orders:        res.Orders,
		NextPageToken: page.NextPageToken,
		Truncated:     res.Truncated,
	})
}

type menusResponse struct {
	OK          bool                 `json:"ok"`
	Menu        *domain.MenuDocument `json:"menu"`
	LastUpdated string               `json:"lastUpdated,omitempty"`
}

// MenusHandler returns the (possibly snapshot-cached) menu catalog.
func (a *GatewayAPI) MenusHandler(c echo.Context) error {
	ctx := requestContext(c)
	menu, lastUpdated, err := a.upstream.Menus(ctx)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, menusResponse{OK: true, Menu: menu, LastUpdated: lastUpdated})
}

type kitchenResponse struct {
	OK     bool                  `json:"ok"`
	Config *domain.KitchenConfig `json:"config"`
}

// KitchenConfigHandler returns the restaurant's kitchen configuration.
func (a *GatewayAPI) KitchenConfigHandler(c echo.Context) error {
	ctx := requestContext(c)
	cfg, err := a.upstream.KitchenConfig(ctx)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, kitchenResponse{OK: true, Config: cfg})
}

// CacheStatsHandler exposes the composition cache counters.
func (a *GatewayAPI) CacheStatsHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"ok": true, "stats": a.composer.CacheStats()})
}

// HealthHandler reports process liveness.
func (a *GatewayAPI) HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// OpenAPIHandler serves the static API document.
func (a *GatewayAPI) OpenAPIHandler(c echo.Context) error {
	return c.JSONBlob(http.StatusOK, []byte(openAPIDocument))
}

// DocsHandler serves a minimal documentation page.
func (a *GatewayAPI) DocsHandler(c echo.Context) error {
	return c.HTML(http.StatusOK, docsPage)
}
