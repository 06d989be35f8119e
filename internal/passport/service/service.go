// Package service resolves public identifier tokens into rendered passport
// views. This is the anonymous read path: no auth, aggressive caching, and
// nothing here ever mutates a carrier.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"traceport/internal/identifier"
	idstore "traceport/internal/identifier/store"
	"traceport/internal/passport"
	"traceport/internal/passportdata"
	pdstore "traceport/internal/passportdata/store"
	"traceport/internal/platform/metrics"
	"traceport/internal/platform/redis"
	"traceport/internal/template"
	tmplstore "traceport/internal/template/store"
	"traceport/pkg/platform/sentinel"
)

// SectionView is the public JSON shape of one section's reconstructed rows.
type SectionView struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	ParentID    string         `json:"parentId,omitempty"`
	Granularity string         `json:"granularityLevel,omitempty"`
	Rows        []passport.Row `json:"rows"`
}

// PassportView is the public JSON shape of a flat passport.
type PassportView struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Sections    []SectionView `json:"dataSections"`
}

// Service resolves tokens and renders views.
type Service struct {
	identifiers idstore.Store
	models      pdstore.ModelStore
	items       pdstore.ItemStore
	templates   tmplstore.Store
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithCache enables the redis view cache. A nil client leaves caching off.
func WithCache(cache *redis.Client, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(identifiers idstore.Store, models pdstore.ModelStore, items pdstore.ItemStore, templates tmplstore.Store, opts ...Option) *Service {
	s := &Service{
		identifiers: identifiers,
		models:      models,
		items:       items,
		templates:   templates,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get renders the flat passport view behind a public identifier token.
func (s *Service) Get(ctx context.Context, uuid string) (PassportView, error) {
	var view PassportView
	if s.cacheGet(ctx, "passport:"+uuid, &view) {
		return view, nil
	}

	t, model, item, upi, err := s.resolve(ctx, uuid)
	if err != nil {
		return PassportView{}, err
	}

	built := passport.New(t, model, item, upi)
	view = PassportView{
		ID:          built.ID,
		Name:        built.Name,
		Description: built.Description,
		Sections:    make([]SectionView, 0, len(built.DataSections)),
	}
	for _, ds := range built.DataSections {
		rows := ds.DataValues
		if rows == nil {
			rows = []passport.Row{}
		}
		view.Sections = append(view.Sections, SectionView{
			ID:          ds.Section.ID(),
			Name:        ds.Section.Name(),
			Type:        string(ds.Section.Type()),
			ParentID:    ds.Section.ParentID(),
			Granularity: string(ds.Section.Granularity()),
			Rows:        rows,
		})
	}

	s.cacheSet(ctx, "passport:"+uuid, view)
	if s.metrics != nil {
		s.metrics.PassportsBuilt.Inc()
	}
	return view, nil
}

// GetTree renders the nested section-tree view behind a public identifier
// token.
func (s *Service) GetTree(ctx context.Context, uuid string) (passport.TreeView, error) {
	var view passport.TreeView
	if s.cacheGet(ctx, "passport:tree:"+uuid, &view) {
		return view, nil
	}

	t, model, item, _, err := s.resolve(ctx, uuid)
	if err != nil {
		return passport.TreeView{}, err
	}

	view, err = passport.BuildTreeView(t, model, item)
	if err != nil {
		return passport.TreeView{}, fmt.Errorf("build tree view for %s: %w", uuid, err)
	}

	s.cacheSet(ctx, "passport:tree:"+uuid, view)
	if s.metrics != nil {
		s.metrics.PassportsBuilt.Inc()
	}
	return view, nil
}

// resolve walks token -> carrier -> template. A token may reference an item
// or a model; items are tried first since item views subsume model data.
func (s *Service) resolve(ctx context.Context, uuid string) (*template.Template, *passportdata.Model, *passportdata.Item, identifier.UniqueProductIdentifier, error) {
	var none identifier.UniqueProductIdentifier
	upi, err := s.identifiers.FindByUUID(ctx, uuid)
	if err != nil {
		return nil, nil, nil, none, err
	}

	item, err := s.items.FindByID(ctx, upi.ReferenceID)
	if err == nil {
		model, err := s.models.FindByID(ctx, item.ModelID())
		if err != nil {
			return nil, nil, nil, none, fmt.Errorf("model for item %s: %w", item.ID(), err)
		}
		t, err := s.templates.FindByID(ctx, item.TemplateID())
		if err != nil {
			return nil, nil, nil, none, err
		}
		return t, model, item, upi, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil, nil, none, err
	}

	model, err := s.models.FindByID(ctx, upi.ReferenceID)
	if err != nil {
		return nil, nil, nil, none, err
	}
	t, err := s.templates.FindByID(ctx, model.TemplateID())
	if err != nil {
		return nil, nil, nil, none, err
	}
	return t, model, nil, upi, nil
}

func (s *Service) cacheGet(ctx context.Context, key string, out any) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if s.metrics != nil {
			s.metrics.PassportCacheMiss.Inc()
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false
	}
	if s.metrics != nil {
		s.metrics.PassportCacheHits.Inc()
	}
	return true
}

func (s *Service) cacheSet(ctx context.Context, key string, view any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(view)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
		s.logger.WarnContext(ctx, "passport cache write failed", "key", key, "error", err)
	}
}
