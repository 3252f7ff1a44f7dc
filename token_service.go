// Package gateway implements the order enrichment pipeline: day-scoped
// machine-client token caching, menu catalog indexing, deterministic
// line-item ordering, and memoized composition of raw vendor orders
// into denormalized, client-friendly payloads.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/thedoughmonster/doughmonster-worker-sub001/cache"
	"github.com/thedoughmonster/doughmonster-worker-sub001/client"
	"github.com/thedoughmonster/doughmonster-worker-sub001/domain"
	gwerrors "github.com/thedoughmonster/doughmonster-worker-sub001/errors"
)

const (
	tokenCacheKey = "auth:access-token"

	// A token within a minute of expiry is treated as already expired.
	tokenExpiryMarginMs = 60_000

	minTokenTTLSeconds     = 120
	maxTokenTTLSeconds     = 86_400
	defaultTokenTTLSeconds = 1_800

	restaurantIDHeader = "Toast-Restaurant-External-ID"
	machineClientType  = "TOAST_MACHINE_CLIENT"
	dayLayout          = "2006-01-02"
)

// TokenServiceConfig holds the vendor credential settings.
type TokenServiceConfig struct {
	TokenURL             string
	ClientID             string
	ClientSecret         string
	RestaurantExternalID string
	Retry                client.RetryPolicy
}

// TokenService obtains and caches the machine-client bearer token.
// Cached tokens are valid only for the UTC calendar day they were
// issued on; refreshes overwrite the previous record whole. Concurrent
// cold-start refreshes may duplicate the upstream call, which is
// accepted: each writes a self-consistent record.
type TokenService struct {
	cfg     TokenServiceConfig
	kv      cache.Store
	fetcher *client.Fetcher
	now     func() time.Time
}

// NewTokenService creates a TokenService persisting through kv.
func NewTokenService(cfg TokenServiceConfig, kv cache.Store, fetcher *client.Fetcher) *TokenService {
	return &TokenService{
		cfg:     cfg,
		kv:      kv,
		fetcher: fetcher,
		now:     time.Now,
	}
}

// tokenEndpointResponse mirrors the vendor's token endpoint payload.
type tokenEndpointResponse struct {
	Token struct {
		AccessToken string `json:"accessToken"`
		TokenType   string `json:"tokenType"`
		ExpiresIn   int64  `json:"expiresIn"`
	} `json:"token"`
}

// AccessToken returns a bearer token that is neither expired nor
// issued on a previous calendar day, fetching a fresh one from the
// vendor when the cached record no longer qualifies.
func (s *TokenService) AccessToken(ctx context.Context) (string, error) {
	now := s.now().UTC()
	today := now.Format(dayLayout)

	if rec := s.cachedRecord(ctx); rec != nil {
		if rec.IssuedAtDay == today && rec.ExpiresAt-now.UnixMilli() > tokenExpiryMarginMs && rec.AccessToken != "" {
			return rec.AccessToken, nil
		}
	}

	return s.refresh(ctx, now, today)
}

// cachedRecord reads the persisted token record, tolerating read
// failures and malformed values as "absent".
func (s *TokenService) cachedRecord(ctx context.Context) *domain.AccessTokenRecord {
	raw, err := s.kv.Get(ctx, tokenCacheKey)
	if err != nil {
		log.Ctx(ctx).Warn().Err(gwerrors.NewCacheReadError(tokenCacheKey, err)).Msg("token cache read failed, refreshing")
		return nil
	}
	if raw == nil {
		return nil
	}
	var rec domain.AccessTokenRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		log.Ctx(ctx).Warn().Err(gwerrors.NewCacheReadError(tokenCacheKey, err)).Msg("token cache entry malformed, refreshing")
		return nil
	}
	return &rec
}

// refresh calls the vendor's client-credential token endpoint and
// persists the resulting record.
func (s *TokenService) refresh(ctx context.Context, now time.Time, today string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"clientId":       s.cfg.ClientID,
		"clientSecret":   s.cfg.ClientSecret,
		"userAccessType": machineClientType,
	})
	if err != nil {
		return "", fmt.Errorf("marshal token request: %w", err)
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("Accept", "application/json")

	resp, err := s.fetcher.Fetch(ctx, http.MethodPost, s.cfg.TokenURL, header, body, s.cfg.Retry)
	if err != nil {
		var fetchErr *gwerrors.UpstreamFetchError
		if errors.As(err, &fetchErr) && fetchErr.Status != 0 {
			return "", gwerrors.NewUpstreamAuthError(fetchErr.Status, fetchErr.Snippet)
		}
		return "", err
	}

	var payload tokenEndpointResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return "", gwerrors.NewMalformedAuthResponse("unparseable token payload")
	}
	if !strings.EqualFold(payload.Token.TokenType, "bearer") {
		return "", gwerrors.NewMalformedAuthResponse(fmt.Sprintf("unexpected token type %q", payload.Token.TokenType))
	}
	if payload.Token.AccessToken == "" {
		return "", gwerrors.NewMalformedAuthResponse("empty access token")
	}

	ttl := payload.Token.ExpiresIn
	if ttl <= 0 {
		ttl = defaultTokenTTLSeconds
	}
	if ttl < minTokenTTLSeconds {
		ttl = minTokenTTLSeconds
	}
	if ttl > maxTokenTTLSeconds {
		ttl = maxTokenTTLSeconds
	}

	rec := domain.AccessTokenRecord{
		AccessToken: payload.Token.AccessToken,
		ExpiresAt:   now.UnixMilli() + ttl*1000,
		IssuedAtDay: today,
	}

	// KV entry expires a minute before the token itself, floored at a
	// minute so a short-lived token still persists.
	kvTTL := ttl - 60
	if kvTTL < 60 {
		kvTTL = 60
	}
	if raw, err := json.Marshal(rec); err == nil {
		if err := s.kv.Put(ctx, tokenCacheKey, raw, time.Duration(kvTTL)*time.Second); err != nil {
			log.Ctx(ctx).Warn().Err(gwerrors.NewCacheWriteError(tokenCacheKey, err)).Msg("token cache write failed")
		}
	}

	log.Ctx(ctx).Debug().
		Str("issued_at_day", today).
		Int64("expires_in_s", ttl).
		Msg("access token refreshed")

	return rec.AccessToken, nil
}

// AuthHeaders returns the headers every authenticated vendor call
// carries: the bearer token, the JSON accept header and the configured
// restaurant id.
func (s *TokenService) AuthHeaders(ctx context.Context) (http.Header, error) {
	token, err := s.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	h.Set("Accept", "application/json")
	h.Set(restaurantIDHeader, s.cfg.RestaurantExternalID)
	return h, nil
}
