package mapbox

import (
	"context"
	"fmt"

	"github.com/couchcryptid/volunteer-map-page/internal/domain"
	"github.com/couchcryptid/volunteer-map-page/internal/lru"
)

// CachedGeocoder wraps a Geocoder with an in-memory LRU cache. Many
// volunteers share a zipcode, so most lookups repeat.
type CachedGeocoder struct {
	inner domain.Geocoder
	cache *lru.Cache[string, domain.GeocodingResult]
}

// NewCachedGeocoder creates a cache decorator around a geocoder.
func NewCachedGeocoder(inner domain.Geocoder, maxEntries int) *CachedGeocoder {
	return &CachedGeocoder{
		inner: inner,
		cache: lru.New[string, domain.GeocodingResult](maxEntries, nil),
	}
}

func (c *CachedGeocoder) ForwardGeocode(ctx context.Context, query, country string) (domain.GeocodingResult, error) {
	key := fmt.Sprintf("fwd:%s|%s", query, country)
	if result, ok := c.cache.Get(key); ok {
		return result, nil
	}
	result, err := c.inner.ForwardGeocode(ctx, query, country)
	if err != nil {
		return result, err
	}
	// Only cache non-empty results so transient "not found" responses can be retried.
	if result.FormattedAddress != "" {
		c.cache.Add(key, result)
	}
	return result, nil
}
