// Package stats serves the plant, material and project statistics through a
// read-through cache.
package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/crucial707/landscape-lab/internal/cache"
	"github.com/crucial707/landscape-lab/internal/metrics"
	"github.com/crucial707/landscape-lab/internal/models"
)

// Kind selects one statistics payload.
type Kind string

const (
	Plants    Kind = "plants"
	Materials Kind = "materials"
	Projects  Kind = "projects"
)

var Kinds = []Kind{Plants, Materials, Projects}

func (k Kind) cacheKey() string {
	switch k {
	case Plants:
		return cache.KeyPlantStats
	case Materials:
		return cache.KeyMaterialStats
	default:
		return cache.KeyProjectStats
	}
}

// Sources are the repositories that compute statistics. repo.PlantRepo and
// friends satisfy them.
type (
	PlantSource interface {
		Statistics(ctx context.Context) (*models.PlantStatistics, error)
	}
	MaterialSource interface {
		Statistics(ctx context.Context) (*models.MaterialStatistics, error)
	}
	ProjectSource interface {
		Statistics(ctx context.Context) (*models.ProjectStatistics, error)
	}
)

type Service struct {
	plants    PlantSource
	materials MaterialSource
	projects  ProjectSource
	cache     cache.Cache
	ttl       time.Duration
	logger    *slog.Logger
}

func NewService(plants PlantSource, materials MaterialSource, projects ProjectSource, c cache.Cache, ttl time.Duration, logger *slog.Logger) *Service {
	if c == nil {
		c = cache.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{plants: plants, materials: materials, projects: projects, cache: c, ttl: ttl, logger: logger}
}

func (s *Service) Plants(ctx context.Context) (*models.PlantStatistics, error) {
	return readThrough(ctx, s, Plants, s.plants.Statistics)
}

func (s *Service) Materials(ctx context.Context) (*models.MaterialStatistics, error) {
	return readThrough(ctx, s, Materials, s.materials.Statistics)
}

func (s *Service) Projects(ctx context.Context) (*models.ProjectStatistics, error) {
	return readThrough(ctx, s, Projects, s.projects.Statistics)
}

// Invalidate drops the cached payloads for kinds. Cache errors are logged only.
func (s *Service) Invalidate(ctx context.Context, kinds ...Kind) {
	keys := make([]string, 0, len(kinds))
	for _, k := range kinds {
		keys = append(keys, k.cacheKey())
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("stats cache invalidate failed", "error", err)
	}
}

// Refresh recomputes every payload and stores it, whether or not it is cached.
func (s *Service) Refresh(ctx context.Context) error {
	var errs []error
	for _, k := range Kinds {
		var v any
		var err error
		switch k {
		case Plants:
			v, err = s.plants.Statistics(ctx)
		case Materials:
			v, err = s.materials.Statistics(ctx)
		case Projects:
			v, err = s.projects.Statistics(ctx)
		}
		if err == nil {
			err = s.store(ctx, k, v)
		}
		metrics.IncStatsRefresh(string(k), err == nil)
		if err != nil {
			errs = append(errs, fmt.Errorf("refresh %s: %w", k, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Service) store(ctx context.Context, k Kind, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, k.cacheKey(), b, s.ttl)
}

// readThrough returns the cached payload for k, or loads and caches it. A
// broken cache degrades to loading directly.
func readThrough[T any](ctx context.Context, s *Service, k Kind, load func(context.Context) (*T, error)) (*T, error) {
	if b, ok, err := s.cache.Get(ctx, k.cacheKey()); err != nil {
		s.logger.Warn("stats cache read failed", "kind", k, "error", err)
	} else if ok {
		var v T
		if err := json.Unmarshal(b, &v); err == nil {
			return &v, nil
		}
	}

	v, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.store(ctx, k, v); err != nil {
		s.logger.Warn("stats cache write failed", "kind", k, "error", err)
	}
	return v, nil
}
