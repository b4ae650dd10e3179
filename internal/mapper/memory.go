package mapper

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"job-connect-backend/internal/model"
)

// ErrNoIdentity is returned for a record that carries neither an id nor a uuid.
var ErrNoIdentity = errors.New("record has neither id nor uuid")

type idKey struct {
	table string
	id    int64
}

type uuidKey struct {
	table string
	uuid  string
}

// MemoryMapper hands out one managed instance per (entity, identity),
// keeping instances in memory so that repeated references within a batch
// do not go back to the database.
type MemoryMapper struct {
	db      *gorm.DB
	objects map[idKey]model.Entity
	uuids   map[uuidKey]model.Entity
}

// NewMemoryMapper creates a memory mapper over the given (child) context.
func NewMemoryMapper(db *gorm.DB) *MemoryMapper {
	m := &MemoryMapper{db: db}
	m.Reset()
	return m
}

// Reset forgets every cached instance.
func (m *MemoryMapper) Reset() {
	m.objects = make(map[idKey]model.Entity)
	m.uuids = make(map[uuidKey]model.Entity)
}

// Object returns the instance of s identified by id, or by uuid when id is
// zero. Unknown identities are inserted as stubs so references always resolve.
func (m *MemoryMapper) Object(ctx context.Context, s *schema.Schema, id int64, uuid string) (model.Entity, error) {
	if id == 0 && uuid == "" {
		return nil, fmt.Errorf("%s: %w", s.Name, ErrNoIdentity)
	}

	if obj, ok := m.cached(s, id, uuid); ok {
		return obj, nil
	}

	obj, err := m.load(ctx, s, id, uuid)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		obj, err = m.insertStub(ctx, s, id, uuid)
		if err != nil {
			return nil, err
		}
	}

	m.remember(s, obj)
	return obj, nil
}

func (m *MemoryMapper) cached(s *schema.Schema, id int64, uuid string) (model.Entity, bool) {
	if id != 0 {
		obj, ok := m.objects[idKey{s.Table, id}]
		return obj, ok
	}
	obj, ok := m.uuids[uuidKey{s.Table, uuid}]
	return obj, ok
}

func (m *MemoryMapper) load(ctx context.Context, s *schema.Schema, id int64, uuid string) (model.Entity, error) {
	obj := newEntity(s)

	q := m.db.WithContext(ctx)
	if id != 0 {
		q = q.Where(clause.Eq{Column: clause.Column{Name: s.PrioritizedPrimaryField.DBName}, Value: id})
	} else {
		q = q.Where(clause.Eq{Column: clause.Column{Name: "uuid"}, Value: uuid})
	}

	err := q.Take(obj).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s (id=%d uuid=%q): %w", s.Name, id, uuid, err)
	}
	return obj, nil
}

func (m *MemoryMapper) insertStub(ctx context.Context, s *schema.Schema, id int64, uuid string) (model.Entity, error) {
	if id == 0 {
		if err := m.syncSequence(ctx, s); err != nil {
			return nil, err
		}
	}

	obj := newEntity(s)
	obj.SetIdentity(id, uuid)
	if err := m.db.WithContext(ctx).Omit(clause.Associations).Create(obj).Error; err != nil {
		return nil, fmt.Errorf("failed to insert %s (id=%d uuid=%q): %w", s.Name, id, uuid, err)
	}
	return obj, nil
}

// syncSequence moves the postgres id sequence of s past the highest stored
// id. Rows imported with explicit ids do not advance it, so a stub drawing
// its id from the sequence could otherwise collide with an imported row.
func (m *MemoryMapper) syncSequence(ctx context.Context, s *schema.Schema) error {
	if m.db.Dialector.Name() != "postgres" {
		return nil
	}
	pk := s.PrioritizedPrimaryField.DBName
	err := m.db.WithContext(ctx).Exec(
		"SELECT setval(pg_get_serial_sequence(?, ?), (SELECT COALESCE(MAX(?), 0) + 1 FROM ?), false)",
		s.Table, pk, clause.Column{Name: pk}, clause.Table{Name: s.Table},
	).Error
	if err != nil {
		return fmt.Errorf("failed to sync id sequence of %s: %w", s.Name, err)
	}
	return nil
}

// remember indexes obj under its current identity.
func (m *MemoryMapper) remember(s *schema.Schema, obj model.Entity) {
	id, uuid := obj.Identity()
	m.objects[idKey{s.Table, id}] = obj
	if uuid != "" {
		m.uuids[uuidKey{s.Table, uuid}] = obj
	}
}

// forget drops deleted rows.
func (m *MemoryMapper) forget(table string, ids []int64) {
	for _, id := range ids {
		key := idKey{table, id}
		if obj, ok := m.objects[key]; ok {
			if _, uuid := obj.Identity(); uuid != "" {
				delete(m.uuids, uuidKey{table, uuid})
			}
			delete(m.objects, key)
		}
	}
}

func newEntity(s *schema.Schema) model.Entity {
	return reflect.New(s.ModelType).Interface().(model.Entity)
}
