package memory

import (
	"time"

	"github.com/patrickmn/go-cache"

	"support-desk-be/internal/dto"
)

const analyticsKey = "supervisor_analytics"

// AnalyticsCache keeps the admin analytics aggregation for a short window
// so repeated dashboard polls do not re-run the per-supervisor queries.
type AnalyticsCache struct {
	cache *cache.Cache
}

func NewAnalyticsCache(ttl time.Duration) *AnalyticsCache {
	return &AnalyticsCache{
		cache: cache.New(ttl, 2*ttl),
	}
}

func (c *AnalyticsCache) Get() ([]dto.SupervisorAnalytics, bool) {
	if x, found := c.cache.Get(analyticsKey); found {
		return x.([]dto.SupervisorAnalytics), true
	}
	return nil, false
}

func (c *AnalyticsCache) Set(analytics []dto.SupervisorAnalytics) {
	c.cache.Set(analyticsKey, analytics, cache.DefaultExpiration)
}

func (c *AnalyticsCache) Invalidate() {
	c.cache.Delete(analyticsKey)
}
