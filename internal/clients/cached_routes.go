package clients

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/logicaltomy/CONDOR-BACK-TS/internal/cache"
)

// RegionResolver resolves a route to its region
type RegionResolver interface {
	RegionOfRoute(ctx context.Context, routeID int64) (int64, error)
}

// CachedRouteCatalog remembers route regions. A route's region does not
// change, so only successful lookups are cached; NotFound and failures
// always reach the route service.
type CachedRouteCatalog struct {
	next   RegionResolver
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedRouteCatalog wraps next with a region cache
func NewCachedRouteCatalog(next RegionResolver, c cache.Cache, ttl time.Duration, logger *zap.Logger) *CachedRouteCatalog {
	return &CachedRouteCatalog{
		next:   next,
		cache:  c,
		ttl:    ttl,
		logger: logger,
	}
}

func regionCacheKey(routeID int64) string {
	return "route_region:" + strconv.FormatInt(routeID, 10)
}

// RegionOfRoute returns the cached region or asks the route service
func (c *CachedRouteCatalog) RegionOfRoute(ctx context.Context, routeID int64) (int64, error) {
	key := regionCacheKey(routeID)

	if raw, found := c.cache.Get(ctx, key); found {
		if regionID, err := strconv.ParseInt(string(raw), 10, 64); err == nil {
			regionCacheLookups.WithLabelValues("hit").Inc()
			return regionID, nil
		}
		c.logger.Warn("Discarding malformed cached region", zap.String("key", key))
	}
	regionCacheLookups.WithLabelValues("miss").Inc()

	regionID, err := c.next.RegionOfRoute(ctx, routeID)
	if err != nil {
		return 0, err
	}

	if err := c.cache.Set(ctx, key, []byte(strconv.FormatInt(regionID, 10)), c.ttl); err != nil {
		c.logger.Warn("Failed to cache route region",
			zap.Int64("route_id", routeID),
			zap.Error(err))
	}
	return regionID, nil
}
