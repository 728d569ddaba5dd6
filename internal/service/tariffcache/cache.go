// Package tariffcache keeps a fast, possibly-stale view of each company's
// quota state in Redis. It is never a source of truth for admissions: the
// quota guard only uses it to short-circuit obvious denials, and every state
// mutation drops the entry.
package tariffcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/verimetr/verimetr-api/internal/domain"
	"github.com/verimetr/verimetr-api/internal/metrics"
	"github.com/verimetr/verimetr-api/pkg/logger"
)

const keyFormat = "tenant:%s:quota_view"

// KindUsage is one (max, used) pair inside a cached view.
type KindUsage struct {
	Max  *int64 `json:"max"`
	Used int64  `json:"used"`
}

// View is the denormalized snapshot served from the cache. It may lag the
// database by up to the TTL or by the gap between a write and its
// invalidation; staleness can only cause a false admit on the fast path,
// never a false deny, because the authoritative check always follows.
type View struct {
	HasTariff bool      `json:"has_tariff"`
	CachedAt  time.Time `json:"cached_at"`

	Title     string     `json:"title,omitempty"`
	ValidFrom *time.Time `json:"valid_from,omitempty"`
	ValidTo   *time.Time `json:"valid_to,omitempty"`
	IsExpired bool       `json:"is_expired,omitempty"`

	Limits      map[domain.QuotaKind]KindUsage `json:"limits,omitempty"`
	Percentages map[domain.QuotaKind]float64   `json:"percentages,omitempty"`

	Automation *AutomationFlags `json:"automation,omitempty"`
}

// AutomationFlags are tariff toggles consumed by other subsystems; they ride
// along in the view unchanged.
type AutomationFlags struct {
	AutoManufactureYear bool `json:"auto_manufacture_year"`
	AutoTeams           bool `json:"auto_teams"`
	AutoMetrolog        bool `json:"auto_metrolog"`
}

// Usage returns the cached pair for a kind, with ok=false when the view has
// no tariff or the kind is missing.
func (v *View) Usage(kind domain.QuotaKind) (KindUsage, bool) {
	if v == nil || !v.HasTariff {
		return KindUsage{}, false
	}
	usage, ok := v.Limits[kind]
	return usage, ok
}

// BuildView derives the cached representation of a quota state. A nil state
// produces the minimal "no tariff" marker, which is cached too so that
// repeated checks for unassigned companies also skip the database.
func BuildView(state *domain.TariffState, now time.Time) *View {
	if state == nil {
		return &View{HasTariff: false, CachedAt: now}
	}

	validFrom := state.ValidFrom
	validTo := state.ValidTo
	view := &View{
		HasTariff:   true,
		CachedAt:    now,
		Title:       state.Title,
		ValidFrom:   &validFrom,
		ValidTo:     &validTo,
		IsExpired:   state.IsExpired(now),
		Limits:      make(map[domain.QuotaKind]KindUsage, len(domain.QuotaKinds)),
		Percentages: make(map[domain.QuotaKind]float64, len(domain.QuotaKinds)),
		Automation: &AutomationFlags{
			AutoManufactureYear: state.AutoManufactureYear,
			AutoTeams:           state.AutoTeams,
			AutoMetrolog:        state.AutoMetrolog,
		},
	}

	for _, kind := range domain.QuotaKinds {
		max := state.Max(kind)
		used := state.Used(kind)
		view.Limits[kind] = KindUsage{Max: max, Used: used}
		view.Percentages[kind] = usagePercent(used, max)
	}
	return view
}

// usagePercent is used/max*100 rounded to one decimal, 0 for unlimited or
// zero-limit plans.
func usagePercent(used int64, max *int64) float64 {
	if max == nil || *max <= 0 {
		return 0
	}
	return math.Round(float64(used)/float64(*max)*1000) / 10
}

type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

func NewCache(client *redis.Client, ttl time.Duration, logger *logger.Logger) *Cache {
	return &Cache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func cacheKey(companyID string) string {
	return fmt.Sprintf(keyFormat, companyID)
}

// GetView returns the cached view for a company, or nil on a miss. A
// corrupted payload is deleted and reported as a miss, never as an error.
func (c *Cache) GetView(ctx context.Context, companyID string) (*View, error) {
	key := cacheKey(companyID)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.CacheLookup(false)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read quota view for company %s: %w", companyID, err)
	}

	var view View
	if err := json.Unmarshal(payload, &view); err != nil {
		c.logger.Warnf("Dropping corrupted quota view for company %s: %v", companyID, err)
		if delErr := c.client.Del(ctx, key).Err(); delErr != nil {
			c.logger.Errorf("Failed to delete corrupted quota view for company %s: %v", companyID, delErr)
		}
		metrics.CacheLookup(false)
		return nil, nil
	}
	metrics.CacheLookup(true)
	return &view, nil
}

// SetView caches the derived view of a state (nil means "no tariff") with
// the configured TTL and returns the stored view.
func (c *Cache) SetView(ctx context.Context, companyID string, state *domain.TariffState) (*View, error) {
	view := BuildView(state, time.Now().UTC())

	payload, err := json.Marshal(view)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal quota view for company %s: %w", companyID, err)
	}

	if err := c.client.Set(ctx, cacheKey(companyID), payload, c.ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to cache quota view for company %s: %w", companyID, err)
	}
	return view, nil
}

// Invalidate unconditionally drops the cached entry. Every operation that
// mutates the quota state must call this; the design tolerates brief
// staleness but never a forgotten invalidation.
func (c *Cache) Invalidate(ctx context.Context, companyID string) error {
	if err := c.client.Del(ctx, cacheKey(companyID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate quota view for company %s: %w", companyID, err)
	}
	return nil
}

// GetOrFetch is the read-through path: cached view if present, otherwise
// fetch the state, cache its derived view, and return it.
func (c *Cache) GetOrFetch(ctx context.Context, companyID string, fetch func(ctx context.Context) (*domain.TariffState, error)) (*View, error) {
	view, err := c.GetView(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if view != nil {
		return view, nil
	}

	state, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	return c.SetView(ctx, companyID, state)
}
