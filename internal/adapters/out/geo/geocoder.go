// Package geo implements the Geocoder port against a Nominatim-compatible
// HTTP service, with a TTL cache, a global interval rate limiter and
// single-flight coalescing of concurrent lookups for the same key.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

const (
	// DefaultCacheTTL matches the upstream's data refresh cadence; entries
	// older than this are recomputed.
	DefaultCacheTTL = 30 * 24 * time.Hour

	// DefaultMinInterval is the minimum spacing between outbound requests
	// required by the upstream usage policy.
	DefaultMinInterval = time.Second

	requestTimeout = 10 * time.Second

	serviceName = "geocoder"
)

// Geocoder resolves addresses through a Nominatim-compatible service.
//
// Lookup pipeline: normalized cache key → cache → single-flight group →
// interval limiter → HTTP. A cache hit short-circuits the limiter entirely;
// concurrent lookups for the same key share one in-flight request.
type Geocoder struct {
	baseURL   string
	userAgent string
	client    *http.Client
	cache     Cache
	limiter   *IntervalLimiter
	ttl       time.Duration
	group     singleflight.Group
	logger    *slog.Logger
}

// Config carries the knobs for NewGeocoder. Zero values fall back to
// defaults; BaseURL is required.
type Config struct {
	BaseURL     string
	UserAgent   string
	CacheTTL    time.Duration
	MinInterval time.Duration
}

// NewGeocoder creates a Geocoder over the given cache. A nil cache gets an
// in-process MemoryCache.
func NewGeocoder(cfg Config, cache Cache, logger *slog.Logger) (*Geocoder, error) {
	if cfg.BaseURL == "" {
		return nil, errs.NewValueIsRequiredError("base URL")
	}

	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = DefaultMinInterval
	}
	if cache == nil {
		cache = NewMemoryCache()
	}

	limiter, err := NewIntervalLimiter(cfg.MinInterval)
	if err != nil {
		return nil, err
	}

	return &Geocoder{
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		client:    &http.Client{Timeout: requestTimeout},
		cache:     cache,
		limiter:   limiter,
		ttl:       cfg.CacheTTL,
		logger:    logger.With("component", "geocoder"),
	}, nil
}

type geocodeCacheEntry struct {
	Lat              float64 `json:"lat"`
	Lon              float64 `json:"lon"`
	FormattedAddress string  `json:"formatted_address"`
	CachedAt         int64   `json:"cached_at"`
}

type reverseCacheEntry struct {
	DisplayAddress string `json:"display_address"`
	City           string `json:"city"`
	Province       string `json:"province"`
	Region         string `json:"region"`
	Country        string `json:"country"`
	CachedAt       int64  `json:"cached_at"`
}

// Geocode resolves a free-text address to coordinates.
func (g *Geocoder) Geocode(ctx context.Context, address string) (ports.GeocodeResult, error) {
	key := "fwd:" + kernel.NormalizeAddressLine(address)
	if key == "fwd:" {
		return ports.GeocodeResult{}, errs.NewValueIsRequiredError("address")
	}

	if raw, ok := g.cacheGet(ctx, key); ok {
		var entry geocodeCacheEntry
		if err := json.Unmarshal(raw, &entry); err == nil {
			return entryToResult(entry)
		}
	}

	value, err, _ := g.group.Do(key, func() (any, error) {
		return g.geocodeUpstream(ctx, address, key)
	})
	if err != nil {
		return ports.GeocodeResult{}, err
	}

	return value.(ports.GeocodeResult), nil
}

// ReverseGeocode resolves coordinates to an address.
func (g *Geocoder) ReverseGeocode(ctx context.Context, point kernel.GeoPoint) (ports.ReverseGeocodeResult, error) {
	if err := point.Validate(); err != nil {
		return ports.ReverseGeocodeResult{}, err
	}

	key := "rev:" + point.RoundedKey()

	if raw, ok := g.cacheGet(ctx, key); ok {
		var entry reverseCacheEntry
		if err := json.Unmarshal(raw, &entry); err == nil {
			return ports.ReverseGeocodeResult{
				DisplayAddress: entry.DisplayAddress,
				City:           entry.City,
				Province:       entry.Province,
				Region:         entry.Region,
				Country:        entry.Country,
			}, nil
		}
	}

	value, err, _ := g.group.Do(key, func() (any, error) {
		return g.reverseUpstream(ctx, point, key)
	})
	if err != nil {
		return ports.ReverseGeocodeResult{}, err
	}

	return value.(ports.ReverseGeocodeResult), nil
}

// DistanceBetween geocodes both addresses and returns the great-circle
// distance between them in kilometers. Satisfies the calculator's
// DistanceResolver contract.
func (g *Geocoder) DistanceBetween(ctx context.Context, a, b kernel.Address) (float64, error) {
	origin, err := g.resolvePoint(ctx, a)
	if err != nil {
		return 0, err
	}

	destination, err := g.resolvePoint(ctx, b)
	if err != nil {
		return 0, err
	}

	return origin.DistanceKm(destination)
}

func (g *Geocoder) resolvePoint(ctx context.Context, addr kernel.Address) (kernel.GeoPoint, error) {
	if p := addr.Point(); p != nil {
		return *p, nil
	}

	result, err := g.Geocode(ctx, fullAddress(addr))
	if err != nil {
		return kernel.GeoPoint{}, err
	}

	return result.Point, nil
}

func fullAddress(addr kernel.Address) string {
	return strings.Join([]string{addr.Line(), addr.City(), addr.Province(), addr.Region()}, ", ")
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Address     struct {
		City     string `json:"city"`
		Town     string `json:"town"`
		Province string `json:"province"`
		State    string `json:"state"`
		Region   string `json:"region"`
		Country  string `json:"country"`
	} `json:"address"`
}

func (g *Geocoder) geocodeUpstream(ctx context.Context, address, key string) (ports.GeocodeResult, error) {
	query := url.Values{}
	query.Set("q", address)
	query.Set("format", "json")
	query.Set("limit", "1")

	var places []nominatimPlace
	if err := g.fetch(ctx, "/search", query, &places); err != nil {
		return ports.GeocodeResult{}, err
	}

	if len(places) == 0 {
		return ports.GeocodeResult{}, errs.NewObjectNotFoundError("address", address)
	}

	lat, latErr := strconv.ParseFloat(places[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(places[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		return ports.GeocodeResult{}, errs.NewUpstreamError(serviceName, false,
			fmt.Errorf("malformed coordinates %q,%q", places[0].Lat, places[0].Lon))
	}

	point, err := kernel.NewGeoPoint(lat, lon)
	if err != nil {
		return ports.GeocodeResult{}, errs.NewUpstreamError(serviceName, false, err)
	}

	g.cacheSet(ctx, key, geocodeCacheEntry{
		Lat:              lat,
		Lon:              lon,
		FormattedAddress: places[0].DisplayName,
		CachedAt:         time.Now().Unix(),
	})

	return ports.GeocodeResult{Point: point, FormattedAddress: places[0].DisplayName}, nil
}

func (g *Geocoder) reverseUpstream(ctx context.Context, point kernel.GeoPoint, key string) (ports.ReverseGeocodeResult, error) {
	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(point.Lat(), 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(point.Lon(), 'f', -1, 64))
	query.Set("format", "json")

	var place nominatimPlace
	if err := g.fetch(ctx, "/reverse", query, &place); err != nil {
		return ports.ReverseGeocodeResult{}, err
	}

	if place.DisplayName == "" {
		return ports.ReverseGeocodeResult{}, errs.NewObjectNotFoundError("coordinates", point.RoundedKey())
	}

	result := ports.ReverseGeocodeResult{
		DisplayAddress: place.DisplayName,
		City:           firstNonEmpty(place.Address.City, place.Address.Town),
		Province:       firstNonEmpty(place.Address.Province, place.Address.State),
		Region:         place.Address.Region,
		Country:        place.Address.Country,
	}

	g.cacheSet(ctx, key, reverseCacheEntry{
		DisplayAddress: result.DisplayAddress,
		City:           result.City,
		Province:       result.Province,
		Region:         result.Region,
		Country:        result.Country,
		CachedAt:       time.Now().Unix(),
	})

	return result, nil
}

// fetch waits for a limiter slot, issues the request and decodes the JSON
// body into out. Transport failures and 5xx responses are retryable
// upstream errors; other non-2xx responses are not.
func (g *Geocoder) fetch(ctx context.Context, path string, query url.Values, out any) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return errs.NewUpstreamError(serviceName, false, err)
	}
	if g.userAgent != "" {
		req.Header.Set("User-Agent", g.userAgent)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return errs.NewUpstreamError(serviceName, true, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.NewUpstreamError(serviceName, true, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		retryable := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return errs.NewUpstreamError(serviceName, retryable,
			fmt.Errorf("%s %s: status %d", http.MethodGet, path, resp.StatusCode))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errs.NewUpstreamError(serviceName, false, fmt.Errorf("decode response: %w", err))
	}

	return nil
}

func (g *Geocoder) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	raw, ok, err := g.cache.Get(ctx, key)
	if err != nil {
		g.logger.Warn("cache read failed", "key", key, "error", err)
		return nil, false
	}
	return raw, ok
}

func (g *Geocoder) cacheSet(ctx context.Context, key string, entry any) {
	raw, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := g.cache.Set(ctx, key, raw, g.ttl); err != nil {
		g.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

func entryToResult(entry geocodeCacheEntry) (ports.GeocodeResult, error) {
	point, err := kernel.NewGeoPoint(entry.Lat, entry.Lon)
	if err != nil {
		return ports.GeocodeResult{}, err
	}
	return ports.GeocodeResult{Point: point, FormattedAddress: entry.FormattedAddress}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
