package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bmapp/logger"
	"bmapp/model"
	"bmapp/repository"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	searchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bmapp_catalog_searches_total",
		Help: "Catalog list queries by kind (search, category).",
	}, []string{"kind"})
	searchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bmapp_catalog_search_duration_seconds",
		Help:    "Catalog list query latency including the count.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
)

// Page is one page of a catalog listing.
type Page struct {
	Items   []*model.AudioClip
	Page    int
	Limit   int
	Total   int64
	HasMore bool
}

// Service answers catalog read queries.
type Service struct {
	repo  repository.AudioRepository
	cache *DetailCache
}

// NewService creates a catalog service. cache may be nil.
func NewService(repo repository.AudioRepository, cache *DetailCache) *Service {
	return &Service{repo: repo, cache: cache}
}

// Search lists clips matching the text query (title, category or artist)
// and type filter, newest first.
func (s *Service) Search(ctx context.Context, params SearchParams) (*Page, error) {
	filter := repository.Filter{
		Pattern: BuildPattern(params.Query),
		Fields:  []string{repository.FieldTitle, repository.FieldCategory, repository.FieldArtistName},
		Type:    params.Type,
	}
	return s.list(ctx, "search", filter, params)
}

// SearchByCategory lists clips whose category matches the normalized raw
// category. An empty category matches every clip.
func (s *Service) SearchByCategory(ctx context.Context, category string, page, limit int) (*Page, error) {
	params := SearchParams{Page: page, Limit: limit}
	filter := repository.Filter{
		Pattern: BuildPattern(category),
		Fields:  []string{repository.FieldCategory},
	}
	return s.list(ctx, "category", filter, params)
}

func (s *Service) list(ctx context.Context, kind string, filter repository.Filter, params SearchParams) (*Page, error) {
	params = params.sanitize()
	start := time.Now()
	defer func() {
		searchTotal.WithLabelValues(kind).Inc()
		searchDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}()

	skip := params.Skip()
	items, err := s.repo.Find(ctx, filter, repository.NewestFirst, skip, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}

	logger.Debug("catalog query",
		logger.String("kind", kind),
		logger.String("pattern", filter.Pattern),
		logger.String("type", filter.Type),
		logger.Int("page", params.Page),
		logger.Int("limit", params.Limit),
		logger.Int64("total", total))

	return &Page{
		Items:   items,
		Page:    params.Page,
		Limit:   params.Limit,
		Total:   total,
		HasMore: int64(skip+len(items)) < total,
	}, nil
}

// Get returns a single clip. The id must be 24 hex characters.
func (s *Service) Get(ctx context.Context, id string) (*model.AudioClip, error) {
	id = strings.TrimSpace(id)
	if !model.IsValidClipID(id) {
		return nil, ErrInvalidID
	}
	id = strings.ToLower(id)

	if s.cache != nil {
		if clip, ok := s.cache.Get(id); ok {
			return clip, nil
		}
	}

	clip, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}
	if clip == nil {
		return nil, ErrNotFound
	}
	if s.cache != nil {
		s.cache.Set(id, clip)
	}
	return clip, nil
}

// Lookup returns the clips for ids in the order given, skipping unknown ids.
func (s *Service) Lookup(ctx context.Context, ids []string) ([]*model.AudioClip, error) {
	clips, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}
	byID := make(map[string]*model.AudioClip, len(clips))
	for _, c := range clips {
		byID[c.ID] = c
	}

	ordered := make([]*model.AudioClip, 0, len(clips))
	for _, id := range ids {
		if c, ok := byID[strings.ToLower(id)]; ok {
			ordered = append(ordered, c)
		}
	}
	return ordered, nil
}
