package echo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gateway "github.com/thedoughmonster/doughmonster-worker-sub001"
	"github.com/thedoughmonster/doughmonster-worker-sub001/client"
	"github.com/thedoughmonster/doughmonster-worker-sub001/domain"
	gwerrors "github.com/thedoughmonster/doughmonster-worker-sub001/errors"
)

type fakeUpstream struct {
	page     *domain.OrdersPage
	pageErr  error
	menu     *domain.MenuDocument
	menuErr  error
	kitchen  *domain.KitchenConfig
	lastQ    client.OrdersQuery
	menuTime string
}

func (f *fakeUpstream) OrdersBulk(_ context.Context, q client.OrdersQuery) (*domain.OrdersPage, error) {
	f.lastQ = q
	return f.page, f.pageErr
}

func (f *fakeUpstream) Menus(context.Context) (*domain.MenuDocument, string, error) {
	return f.menu, f.menuTime, f.menuErr
}

func (f *fakeUpstream) KitchenConfig(context.Context) (*domain.KitchenConfig, error) {
	return f.kitchen, nil
}

type fakeComposer struct {
	lastIn gateway.ComposeInput
	result *gateway.ComposeResult
	stats  gateway.CacheStats
}

func (f *fakeComposer) BuildExpandedOrders(_ context.Context, in gateway.ComposeInput) *gateway.ComposeResult {
	f.lastIn = in
	if f.result != nil {
		return f.result
	}
	return &gateway.ComposeResult{Orders: in.Orders}
}

func (f *fakeComposer) CacheStats() gateway.CacheStats { return f.stats }

func newTestAPI(up *fakeUpstream, comp *fakeComposer) *echo.Echo {
	e := echo.New()
	api := NewGatewayAPI(up, comp, 100, 10*time.Second)
	api.RegisterRoutes(e)
	return e
}

func doRequest(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestOrdersHandlerSuccess(t *testing.T) {
	up := &fakeUpstream{
		page: &domain.OrdersPage{
			Orders:        []domain.Document{{"guid": "order-1"}},
			NextPageToken: "page-2",
		},
		menu:     &domain.MenuDocument{},
		menuTime: "2024-10-10T09:00:00Z",
	}
	comp := &fakeComposer{}
	e := newTestAPI(up, comp)

	rec := doRequest(e, "/api/orders?pageToken=%20tok-1%20&lastModified=2024-10-10")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		OK            bool              `json:"ok"`
		Orders        []domain.Document `json:"orders"`
		NextPageToken string            `json:"nextPageToken"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.OK)
	require.Len(t, body.Orders, 1)
	assert.Equal(t, "page-2", body.NextPageToken)

	// Query parameters are trimmed before hitting the upstream.
	assert.Equal(t, "tok-1", up.lastQ.PageToken)
	assert.Equal(t, "2024-10-10", up.lastQ.LastModified)

	assert.Equal(t, "2024-10-10T09:00:00Z", comp.lastIn.MenuUpdatedAt)
	assert.Equal(t, 100, comp.lastIn.Limit)
}

func TestOrdersHandlerLimitOverride(t *testing.T) {
	up := &fakeUpstream{page: &domain.OrdersPage{}, menu: &domain.MenuDocument{}}
	comp := &fakeComposer{}
	e := newTestAPI(up, comp)

	rec := doRequest(e, "/api/orders?limit=5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, comp.lastIn.Limit)
}

func TestOrdersHandlerRejectsBadLimit(t *testing.T) {
	e := newTestAPI(&fakeUpstream{}, &fakeComposer{})

	for _, raw := range []string{"abc", "-1", "1.5"} {
		rec := doRequest(e, "/api/orders?limit="+raw)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "limit=%s", raw)

		var body struct {
			OK   bool   `json:"ok"`
			Code string `json:"code"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.False(t, body.OK)
		assert.Equal(t, "invalid_request", body.Code)
	}
}

func TestOrdersHandlerUpstreamStatusPassthrough(t *testing.T) {
	up := &fakeUpstream{
		pageErr: gwerrors.NewUpstreamFetchError("https://api.example.com/orders", http.StatusNotFound, nil),
	}
	e := newTestAPI(up, &fakeComposer{})

	rec := doRequest(e, "/api/orders")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body struct {
		OK   bool   `json:"ok"`
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.OK)
	assert.Equal(t, "upstream_fetch_error", body.Code)
}

func TestOrdersHandlerTransportFailureMapsToBadGateway(t *testing.T) {
	up := &fakeUpstream{
		pageErr: gwerrors.NewUpstreamFetchError("https://api.example.com/orders", 0, context.DeadlineExceeded),
	}
	e := newTestAPI(up, &fakeComposer{})

	rec := doRequest(e, "/api/orders")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestOrdersHandlerDegradesWithoutMenu(t *testing.T) {
	up := &fakeUpstream{
		page:    &domain.OrdersPage{Orders: []domain.Document{{"guid": "order-1"}}},
		menuErr: gwerrors.NewUpstreamFetchError("https://api.example.com/menus", http.StatusServiceUnavailable, nil),
	}
	comp := &fakeComposer{}
	e := newTestAPI(up, comp)

	rec := doRequest(e, "/api/orders")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Nil(t, comp.lastIn.Menu)
	assert.Empty(t, comp.lastIn.MenuUpdatedAt)
}

func TestMenusHandlerError(t *testing.T) {
	up := &fakeUpstream{
		menuErr: gwerrors.NewUpstreamAuthError(http.StatusUnauthorized, "expired"),
	}
	e := newTestAPI(up, &fakeComposer{})

	rec := doRequest(e, "/api/menus")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "upstream_auth_error", body.Code)
}

func TestCacheStatsHandler(t *testing.T) {
	comp := &fakeComposer{stats: gateway.CacheStats{Hits: 3, Misses: 1, Size: 1}}
	e := newTestAPI(&fakeUpstream{}, comp)

	rec := doRequest(e, "/api/cache/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		OK    bool               `json:"ok"`
		Stats gateway.CacheStats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.OK)
	assert.Equal(t, int64(3), body.Stats.Hits)
}

func TestHealthHandler(t *testing.T) {
	e := newTestAPI(&fakeUpstream{}, &fakeComposer{})
	rec := doRequest(e, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}
