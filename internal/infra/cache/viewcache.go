package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/zeebo/xxh3"

	"github.com/agrovest/agrovest/internal/domain"
)

// ViewCache is a read-through memcached cache for the token-listing
// projection. The listing is the hottest read in the system and tolerates a
// few seconds of staleness, so entries carry a short TTL instead of being
// invalidated on writes.
type ViewCache struct {
	mc  *memcache.Client
	ttl time.Duration
}

func NewViewCache(addr string, ttl time.Duration) *ViewCache {
	return &ViewCache{
		mc:  memcache.New(addr),
		ttl: ttl,
	}
}

func (c *ViewCache) Get(criteria domain.SearchCriteria) ([]domain.TokenView, bool) {
	item, err := c.mc.Get(criteriaKey(criteria))
	if err != nil {
		return nil, false
	}
	var views []domain.TokenView
	if err := json.Unmarshal(item.Value, &views); err != nil {
		return nil, false
	}
	return views, true
}

func (c *ViewCache) Set(criteria domain.SearchCriteria, views []domain.TokenView) {
	value, err := json.Marshal(views)
	if err != nil {
		return
	}
	// best effort: a miss next time just hits postgres
	_ = c.mc.Set(&memcache.Item{
		Key:        criteriaKey(criteria),
		Value:      value,
		Expiration: int32(c.ttl.Seconds()),
	})
}

// criteriaKey hashes the serialized criteria so arbitrary filter strings stay
// within memcached's key length and charset limits.
func criteriaKey(criteria domain.SearchCriteria) string {
	raw, _ := json.Marshal(criteria)
	return fmt.Sprintf("agrovest:tokview:%016x", xxh3.Hash(raw))
}
