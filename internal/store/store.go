package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"job-connect-backend/internal/model"
	"job-connect-backend/internal/parse"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// Store defines the persistence stack and the read side used by the API.
type Store interface {
	ChildContext(ctx context.Context) (*gorm.DB, error)
	SaveChildContext(child *gorm.DB) error
	DiscardChildContext(child *gorm.DB)

	Count(ctx context.Context, et model.EntityType) (int64, error)
	List(ctx context.Context, et model.EntityType, opts ListOptions) (any, int64, error)
	Get(ctx context.Context, et model.EntityType, key string) (any, error)
	DeviceStateMachine(ctx context.Context, id int64) (*model.DeviceStateMachine, error)
	SRStateMachine(ctx context.Context, id int64) (*model.SRStateMachine, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// ChildContext begins a transaction that collects one import's changes.
func (s *gormStore) ChildContext(ctx context.Context) (*gorm.DB, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin child context: %w", tx.Error)
	}
	return tx, nil
}

// SaveChildContext commits the child context. A failed commit is rolled back.
func (s *gormStore) SaveChildContext(child *gorm.DB) error {
	if err := child.Commit().Error; err != nil {
		child.Rollback()
		return fmt.Errorf("failed to save child context: %w", err)
	}
	return nil
}

func (s *gormStore) DiscardChildContext(child *gorm.DB) {
	child.Rollback()
}

func (s *gormStore) Count(ctx context.Context, et model.EntityType) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(et.New()).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", et.Name, err)
	}
	return n, nil
}

// List returns one page of entities as a slice of the entity's type, plus the total row count.
func (s *gormStore) List(ctx context.Context, et model.EntityType, opts ListOptions) (any, int64, error) {
	opts = opts.Normalized()

	q := s.db.WithContext(ctx).Model(et.New())
	if !opts.IncludeDisabled {
		q = q.Where("disabled = ?", false)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count %s: %w", et.Name, err)
	}

	page := newSliceOf(et)
	if err := q.Order("id").Offset((opts.Page - 1) * opts.PageSize).Limit(opts.PageSize).Find(page).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list %s: %w", et.Name, err)
	}
	return derefSlice(page), total, nil
}

// Get finds an entity by numeric id or uuid. Any other key matches nothing.
func (s *gormStore) Get(ctx context.Context, et model.EntityType, key string) (any, error) {
	q := s.db.WithContext(ctx)
	if id, err := strconv.ParseInt(key, 10, 64); err == nil {
		q = q.Where("id = ?", id)
	} else if parse.IsUUID(key) {
		q = q.Where("uuid = ?", parse.CanonicalUUID(key))
	} else {
		return nil, fmt.Errorf("%s %q: %w", et.Name, key, ErrNotFound)
	}

	obj := et.New()
	if err := q.First(obj).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s %q: %w", et.Name, key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get %s %q: %w", et.Name, key, err)
	}
	return obj, nil
}

func (s *gormStore) DeviceStateMachine(ctx context.Context, id int64) (*model.DeviceStateMachine, error) {
	var sm model.DeviceStateMachine
	err := s.db.WithContext(ctx).
		Preload("DefaultInitialState").
		Preload("DeviceTypes").
		Preload("Transitions.SourceState").
		Preload("Transitions.TargetState").
		First(&sm, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("device state machine %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load device state machine %d: %w", id, err)
	}
	return &sm, nil
}

func (s *gormStore) SRStateMachine(ctx context.Context, id int64) (*model.SRStateMachine, error) {
	var sm model.SRStateMachine
	err := s.db.WithContext(ctx).
		Preload("DefaultInitialState").
		Preload("Categories").
		Preload("Transitions.SourceState").
		Preload("Transitions.TargetState").
		First(&sm, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("service request state machine %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load service request state machine %d: %w", id, err)
	}
	return &sm, nil
}
