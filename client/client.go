package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/thedoughmonster/doughmonster-worker-sub001/cache"
	"github.com/thedoughmonster/doughmonster-worker-sub001/domain"
	gwerrors "github.com/thedoughmonster/doughmonster-worker-sub001/errors"
)

const (
	ordersBulkPath   = "/orders/v2/ordersBulk"
	menusPath        = "/menus/v2/menus"
	menuMetadataPath = "/menus/v2/metadata"
	prepStationsPath = "/kitchen/v1/prepStations"

	nextPageTokenHeader = "Toast-Next-Page-Token"

	menuSnapshotKey   = "snapshot:menus"
	ordersSnapshotKey = "snapshot:orders"

	defaultMenuSnapshotTTL   = 6 * time.Hour
	defaultOrdersSnapshotTTL = 30 * time.Second
)

// TokenSource supplies the authenticated request headers for upstream
// calls.
type TokenSource interface {
	AuthHeaders(ctx context.Context) (http.Header, error)
}

// Config holds the vendor API settings for a Client.
type Config struct {
	BaseURL string
	Retry   RetryPolicy

	// MenuSnapshotTTL bounds how long a cached menu document may serve
	// requests once the vendor's lastUpdated stamp stops changing.
	MenuSnapshotTTL time.Duration

	// OrdersSnapshotTTL bounds the very short reuse window for a bulk
	// orders page fetched with identical query parameters.
	OrdersSnapshotTTL time.Duration
}

// Client fetches raw vendor documents over the retrying fetcher,
// memoizing menu and order snapshots in the key-value store.
type Client struct {
	cfg       Config
	fetcher   *Fetcher
	tokens    TokenSource
	snapshots cache.Store
}

// New creates a vendor API client. snapshots may be nil, which
// disables snapshot caching entirely.
func New(cfg Config, fetcher *Fetcher, tokens TokenSource, snapshots cache.Store) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.MenuSnapshotTTL <= 0 {
		cfg.MenuSnapshotTTL = defaultMenuSnapshotTTL
	}
	if cfg.OrdersSnapshotTTL <= 0 {
		cfg.OrdersSnapshotTTL = defaultOrdersSnapshotTTL
	}
	return &Client{cfg: cfg, fetcher: fetcher, tokens: tokens, snapshots: snapshots}
}

// get performs an authenticated GET against the vendor API.
func (c *Client) get(ctx context.Context, path string, query url.Values) (*Response, error) {
	header, err := c.tokens.AuthHeaders(ctx)
	if err != nil {
		return nil, err
	}
	u := c.cfg.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return c.fetcher.Fetch(ctx, http.MethodGet, u, header, nil, c.cfg.Retry)
}

// OrdersQuery carries the caller-supplied pagination and filtering
// parameters. Values are trimmed; empty values are omitted from the
// upstream request.
type OrdersQuery struct {
	PageToken    string
	LastModified string
}

func (q OrdersQuery) values() url.Values {
	v := url.Values{}
	if t := strings.TrimSpace(q.PageToken); t != "" {
		v.Set("pageToken", t)
	}
	if t := strings.TrimSpace(q.LastModified); t != "" {
		v.Set("lastModified", t)
	}
	return v
}

// ordersSnapshot is the stored shape of a cached bulk orders page.
type ordersSnapshot struct {
	Query string             `json:"query"`
	Page  *domain.OrdersPage `json:"page"`
}

// OrdersBulk fetches one page of raw orders. Identical queries within
// the snapshot TTL are served from the key-value store.
func (c *Client) OrdersBulk(ctx context.Context, q OrdersQuery) (*domain.OrdersPage, error) {
	queryKey := q.values().Encode()

	if c.snapshots != nil {
		raw, err := c.snapshots.Get(ctx, ordersSnapshotKey)
		if err != nil {
			logCacheRead(ctx, gwerrors.NewCacheReadError(ordersSnapshotKey, err))
		} else if raw != nil {
			var snap ordersSnapshot
			if err := json.Unmarshal(raw, &snap); err != nil {
				logCacheRead(ctx, gwerrors.NewCacheReadError(ordersSnapshotKey, err))
			} else if snap.Query == queryKey && snap.Page != nil {
				return snap.Page, nil
			}
		}
	}

	resp, err := c.get(ctx, ordersBulkPath, q.values())
	if err != nil {
		return nil, err
	}

	var orders []domain.Document
	if err := json.Unmarshal(resp.Body, &orders); err != nil {
		return nil, gwerrors.NewUpstreamFetchError(ordersBulkPath, resp.Status, err)
	}

	page := &domain.OrdersPage{
		Orders:        orders,
		NextPageToken: resp.Header.Get(nextPageTokenHeader),
	}

	c.putSnapshot(ctx, ordersSnapshotKey, ordersSnapshot{Query: queryKey, Page: page}, c.cfg.OrdersSnapshotTTL)

	return page, nil
}

// menuSnapshot is the stored shape of a cached menu document.
type menuSnapshot struct {
	LastUpdated string               `json:"lastUpdated"`
	Document    *domain.MenuDocument `json:"document"`
}

// Menus returns the menu catalog plus the vendor's lastUpdated stamp.
// The full document is fetched only when the stamp moved past the
// cached snapshot.
func (c *Client) Menus(ctx context.Context) (*domain.MenuDocument, string, error) {
	meta, err := c.MenuMetadata(ctx)
	if err != nil {
		return nil, "", err
	}

	if c.snapshots != nil {
		raw, err := c.snapshots.Get(ctx, menuSnapshotKey)
		if err != nil {
			logCacheRead(ctx, gwerrors.NewCacheReadError(menuSnapshotKey, err))
		} else if raw != nil {
			var snap menuSnapshot
			if err := json.Unmarshal(raw, &snap); err != nil {
				logCacheRead(ctx, gwerrors.NewCacheReadError(menuSnapshotKey, err))
			} else if snap.LastUpdated == meta.LastUpdated && snap.Document != nil {
				return snap.Document, meta.LastUpdated, nil
			}
		}
	}

	resp, err := c.get(ctx, menusPath, nil)
	if err != nil {
		return nil, "", err
	}

	var doc domain.MenuDocument
	if err := json.Unmarshal(resp.Body, &doc); err != nil {
		return nil, "", gwerrors.NewUpstreamFetchError(menusPath, resp.Status, err)
	}

	c.putSnapshot(ctx, menuSnapshotKey, menuSnapshot{LastUpdated: meta.LastUpdated, Document: &doc}, c.cfg.MenuSnapshotTTL)

	return &doc, meta.LastUpdated, nil
}

// MenuMetadata fetches the catalog's change stamp.
func (c *Client) MenuMetadata(ctx context.Context) (*domain.MenuMetadata, error) {
	resp, err := c.get(ctx, menuMetadataPath, nil)
	if err != nil {
		return nil, err
	}
	var meta domain.MenuMetadata
	if err := json.Unmarshal(resp.Body, &meta); err != nil {
		return nil, gwerrors.NewUpstreamFetchError(menuMetadataPath, resp.Status, err)
	}
	return &meta, nil
}

// KitchenConfig fetches the restaurant's prep station configuration.
func (c *Client) KitchenConfig(ctx context.Context) (*domain.KitchenConfig, error) {
	resp, err := c.get(ctx, prepStationsPath, nil)
	if err != nil {
		return nil, err
	}
	var stations []domain.PrepStation
	if err := json.Unmarshal(resp.Body, &stations); err != nil {
		return nil, gwerrors.NewUpstreamFetchError(prepStationsPath, resp.Status, err)
	}
	return &domain.KitchenConfig{PrepStations: stations}, nil
}

// putSnapshot serializes and stores a snapshot, logging and swallowing
// write failures.
func (c *Client) putSnapshot(ctx context.Context, key string, snap any, ttl time.Duration) {
	if c.snapshots == nil {
		return
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		log.Ctx(ctx).Warn().Err(gwerrors.NewCacheWriteError(key, err)).Msg("snapshot serialize failed")
		return
	}
	if err := c.snapshots.Put(ctx, key, raw, ttl); err != nil {
		log.Ctx(ctx).Warn().Err(gwerrors.NewCacheWriteError(key, err)).Msg("snapshot write failed")
	}
}

func logCacheRead(ctx context.Context, err error) {
	log.Ctx(ctx).Warn().Err(err).Msg("snapshot read failed, treating as miss")
}
