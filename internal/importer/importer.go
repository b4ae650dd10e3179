package importer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"job-connect-backend/config"
	"job-connect-backend/internal/logging"
	"job-connect-backend/internal/mapper"
	"job-connect-backend/internal/model"
)

var (
	// ErrImportRunning is returned when an import is requested while another one runs.
	ErrImportRunning = errors.New("an import is already running")
	// ErrNoEntities is returned for data without an "entities" object.
	ErrNoEntities = errors.New(`data has no "entities" object`)
)

// Stack hands out child contexts that collect one import's changes.
type Stack interface {
	ChildContext(ctx context.Context) (*gorm.DB, error)
	SaveChildContext(child *gorm.DB) error
	DiscardChildContext(child *gorm.DB)
}

// ObjectMapper is the part of the mapper the importer drives.
type ObjectMapper interface {
	ResetMapper()
	ProcessStaticData(ctx context.Context, et model.EntityType, records []map[string]any) (mapper.Stats, error)
}

// MapperFactory creates a mapper writing into child.
type MapperFactory func(child *gorm.DB, deleteNotProvided bool) (ObjectMapper, error)

// NewMapperFactory returns a factory for the gorm-backed mapper.
func NewMapperFactory(loc *time.Location) MapperFactory {
	return func(child *gorm.DB, deleteNotProvided bool) (ObjectMapper, error) {
		m, err := mapper.New(child, deleteNotProvided, mapper.NewMemoryMapper(child), mapper.WithLocation(loc))
		if err != nil {
			return nil, err
		}
		return m, nil
	}
}

// Service imports static data into the store.
type Service struct {
	cfg        *config.ImportConfig
	stack      Stack
	client     *http.Client
	newMapper  MapperFactory
	entities   []string
	fatal      func(error)
	onImported []func(*Report)

	running atomic.Bool
	mu      sync.RWMutex
	last    *Report
}

// Option configures a Service.
type Option func(*Service)

// WithMapperFactory replaces the gorm-backed mapper.
func WithMapperFactory(f MapperFactory) Option {
	return func(s *Service) {
		s.newMapper = f
	}
}

// WithHTTPClient sets the client used for URL sources.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Service) {
		s.client = c
	}
}

// WithFatalHook sets what Run does when the initial import cannot read its
// data. The default logs at fatal level, which exits the process.
func WithFatalHook(fn func(error)) Option {
	return func(s *Service) {
		s.fatal = fn
	}
}

// OnImported registers a callback for every successful import.
func OnImported(fn func(*Report)) Option {
	return func(s *Service) {
		s.onImported = append(s.onImported, fn)
	}
}

// NewService creates and initializes a new import service.
func NewService(ctx context.Context, cfg *config.ImportConfig, stack Stack, opts ...Option) *Service {
	log := logging.GetFromContext(ctx)

	s := &Service{
		cfg:      cfg,
		stack:    stack,
		entities: RequestEntities,
	}
	if len(cfg.Entities) > 0 {
		s.entities = lo.Uniq(cfg.Entities)
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.client == nil {
		s.client = newHTTPClient(ctx, cfg.HTTPProxy)
	}
	if s.newMapper == nil {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			log.Warn().Err(err).Str("timezone", cfg.Timezone).Msg("unknown timezone, reading timestamps as UTC")
			loc = time.UTC
		}
		s.newMapper = NewMapperFactory(loc)
	}
	return s
}

// Run performs the initial import and, with a refresh interval configured,
// re-imports on a timer until ctx is done. Failing to load the data for the
// initial import is fatal; later failures keep the previous data.
func (s *Service) Run(ctx context.Context) {
	log := logging.GetFromContext(ctx)
	log.Info().Str("source", s.Source()).Msg("starting import service")

	if _, err := s.ImportOnce(ctx); err != nil {
		if errors.Is(err, ErrDataFile) {
			s.die(ctx, err)
			return
		}
		log.Error().Err(err).Msg("initial import failed")
	}

	interval := s.cfg.RefreshInterval
	if interval <= 0 {
		return
	}

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("import service shutting down")
			return
		case <-timer.C:
			if _, err := s.ImportOnce(ctx); err != nil && !errors.Is(err, ErrImportRunning) {
				log.Error().Err(err).Msg("refresh import failed, keeping previous data")
			}
			timer.Reset(interval)
		}
	}
}

func (s *Service) die(ctx context.Context, err error) {
	if s.fatal != nil {
		s.fatal(err)
		return
	}
	log := logging.GetFromContext(ctx)
	log.Fatal().Err(err).Str("source", s.Source()).Msg("could not load static data")
}

// ImportOnce reads the data source and processes it. Only one import runs at a time.
func (s *Service) ImportOnce(ctx context.Context) (*Report, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrImportRunning
	}
	defer s.running.Store(false)

	log := logging.GetFromContext(ctx)
	started := time.Now().UTC()

	data, err := s.ReadDataFile(ctx)
	if err != nil {
		s.remember(&Report{Source: s.Source(), StartedAt: started, FinishedAt: time.Now().UTC(), Error: err.Error()})
		return nil, err
	}

	report, err := s.ProcessData(ctx, data)
	if report == nil {
		report = &Report{}
	}
	report.Source = s.Source()
	report.StartedAt = started
	report.FinishedAt = time.Now().UTC()
	if err != nil {
		report.Error = err.Error()
		s.remember(report)
		return report, err
	}
	s.remember(report)

	totals := report.Totals()
	log.Info().
		Int("entities", len(report.Entities)).
		Int("saved", totals.Saved).
		Int("failed", totals.Failed).
		Int("deleted", totals.Deleted).
		Dur("took", report.Duration()).
		Msg("import finished")

	for _, fn := range s.onImported {
		fn(report)
	}
	return report, nil
}

// Running reports whether an import is in progress.
func (s *Service) Running() bool {
	return s.running.Load()
}

// LastReport returns the report of the most recent import, if any.
func (s *Service) LastReport() (*Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.last != nil
}

func (s *Service) remember(r *Report) {
	s.mu.Lock()
	s.last = r
	s.mu.Unlock()
}

// ProcessData imports the "entities" object of serverData. Every allow-listed
// name holding an array of objects is handed to a fresh batch of the mapper;
// everything is saved together once all names have been processed.
func (s *Service) ProcessData(ctx context.Context, serverData any) (*Report, error) {
	log := logging.GetFromContext(ctx)

	root, ok := serverData.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("top level is %T: %w", serverData, ErrNoEntities)
	}
	entities, ok := root["entities"].(map[string]any)
	if !ok {
		return nil, ErrNoEntities
	}

	child, err := s.stack.ChildContext(ctx)
	if err != nil {
		return nil, err
	}
	m, err := s.newMapper(child, s.cfg.DeleteUnlisted())
	if err != nil {
		s.stack.DiscardChildContext(child)
		return nil, fmt.Errorf("failed to create mapper: %w", err)
	}

	report := &Report{}
	for _, name := range s.entities {
		raw, present := entities[name]
		if !present {
			continue
		}
		records, ok := mapper.AsRecords(raw)
		if !ok {
			log.Debug().Str("entity", name).Msg("entity data is not an array of objects, skipping")
			report.skip(name, "not an array of objects")
			continue
		}
		et, ok := model.Lookup(name)
		if !ok {
			log.Warn().Str("entity", name).Msg("no entity type registered, skipping")
			report.skip(name, model.ErrUnknownEntity.Error())
			continue
		}

		m.ResetMapper()
		stats, err := m.ProcessStaticData(ctx, et, records)
		report.Entities = append(report.Entities, EntityReport{Entity: name, Stats: stats})
		if err != nil {
			s.stack.DiscardChildContext(child)
			return report, fmt.Errorf("failed to import %s: %w", name, err)
		}
	}

	if err := s.stack.SaveChildContext(child); err != nil {
		return report, err
	}
	return report, nil
}
