package catalog

import (
	"time"

	"bmapp/model"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bmapp_audio_cache_hits_total",
		Help: "Audio detail lookups served from the LRU cache.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bmapp_audio_cache_misses_total",
		Help: "Audio detail lookups that went to the catalog store.",
	})
)

// DetailCache is a per-instance LRU of clip records keyed by id. Clips are
// immutable after ingest, so entries only leave the cache by TTL or eviction.
type DetailCache struct {
	lru *expirable.LRU[string, *model.AudioClip]
}

// NewDetailCache creates a cache holding at most size records for ttl each.
func NewDetailCache(size int, ttl time.Duration) *DetailCache {
	if size <= 0 {
		size = 1
	}
	return &DetailCache{lru: expirable.NewLRU[string, *model.AudioClip](size, nil, ttl)}
}

// Get returns a copy of the cached clip.
func (c *DetailCache) Get(id string) (*model.AudioClip, bool) {
	clip, ok := c.lru.Get(id)
	if !ok {
		cacheMissesTotal.Inc()
		return nil, false
	}
	cacheHitsTotal.Inc()
	cp := *clip
	return &cp, true
}

func (c *DetailCache) Set(id string, clip *model.AudioClip) {
	cp := *clip
	c.lru.Add(id, &cp)
}

func (c *DetailCache) Len() int {
	return c.lru.Len()
}
