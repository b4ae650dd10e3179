package mapper

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"job-connect-backend/internal/logging"
	"job-connect-backend/internal/model"
	"job-connect-backend/internal/parse"
)

const recordSavePoint = "mapper_record"

// Stats summarises one processed batch.
type Stats struct {
	Received int `json:"received"`
	Saved    int `json:"saved"`
	Failed   int `json:"failed"`
	Deleted  int `json:"deleted"`
}

// Mapper translates JSON records into persisted entities.
type Mapper struct {
	db                *gorm.DB
	deleteNotProvided bool
	memory            *MemoryMapper
	graph             *Graph
	loc               *time.Location

	provided map[string]map[int64]struct{}
	pending  map[string]map[int64]struct{}
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithLocation sets the zone used for timestamps that carry none.
func WithLocation(loc *time.Location) Option {
	return func(m *Mapper) {
		if loc != nil {
			m.loc = loc
		}
	}
}

// New creates a mapper writing through db, which should be a child context.
// With deleteNotProvided set, ProcessStaticData removes rows of the batch's
// entity that the batch did not mention.
func New(db *gorm.DB, deleteNotProvided bool, memory *MemoryMapper, opts ...Option) (*Mapper, error) {
	m := &Mapper{
		db:                db,
		deleteNotProvided: deleteNotProvided,
		memory:            memory,
		loc:               time.UTC,
	}
	for _, opt := range opts {
		opt(m)
	}
	g, err := DefaultGraph()
	if err != nil {
		return nil, err
	}
	m.graph = g
	if m.memory == nil {
		m.memory = NewMemoryMapper(db)
	}
	m.ResetMapper()
	return m, nil
}

// ResetMapper clears the memory mapper and the set of provided records.
func (m *Mapper) ResetMapper() {
	m.memory.Reset()
	m.provided = make(map[string]map[int64]struct{})
	m.pending = make(map[string]map[int64]struct{})
}

// ProcessData checks that serverData is an array of objects before handing
// it to ProcessStaticData. Data of any other shape is ignored.
func (m *Mapper) ProcessData(ctx context.Context, et model.EntityType, serverData any) (Stats, error) {
	records, ok := AsRecords(serverData)
	if !ok {
		log := logging.GetFromContext(ctx)
		log.Debug().Str("entity", et.Name).Msg("server data is not an array of objects, skipping")
		return Stats{}, nil
	}
	return m.ProcessStaticData(ctx, et, records)
}

// ProcessStaticData upserts records of the given entity and, when the
// mapper deletes unlisted records, removes every row of that entity that
// was neither provided nor referenced since the last reset.
func (m *Mapper) ProcessStaticData(ctx context.Context, et model.EntityType, records []map[string]any) (Stats, error) {
	s, ok := m.graph.Schema(et.Name)
	if !ok {
		return Stats{}, fmt.Errorf("%s: %w", et.Name, model.ErrUnknownEntity)
	}

	stats := m.processRecords(ctx, s, records)

	if m.deleteNotProvided {
		deleted, err := m.deleteUnlisted(ctx, s)
		if err != nil {
			return stats, err
		}
		stats.Deleted = deleted
	}
	return stats, nil
}

// ProcessRecords upserts records without any delete semantics.
func (m *Mapper) ProcessRecords(ctx context.Context, et model.EntityType, records []map[string]any) (Stats, error) {
	s, ok := m.graph.Schema(et.Name)
	if !ok {
		return Stats{}, fmt.Errorf("%s: %w", et.Name, model.ErrUnknownEntity)
	}
	return m.processRecords(ctx, s, records), nil
}

func (m *Mapper) processRecords(ctx context.Context, s *schema.Schema, records []map[string]any) Stats {
	log := logging.GetFromContext(ctx)
	stats := Stats{Received: len(records)}

	for i, values := range records {
		if err := m.processRecord(ctx, s, values); err != nil {
			stats.Failed++
			log.Warn().Err(err).Str("entity", s.Name).Int("index", i).Msg("could not map record, skipping")
			continue
		}
		stats.Saved++
	}

	log.Debug().Str("entity", s.Name).Int("saved", stats.Saved).Int("failed", stats.Failed).Msg("processed records")
	return stats
}

// processRecord maps one top-level record inside a savepoint, so a failing
// record leaves neither rows nor cached instances behind.
func (m *Mapper) processRecord(ctx context.Context, s *schema.Schema, values map[string]any) error {
	if err := m.db.SavePoint(recordSavePoint).Error; err != nil {
		return fmt.Errorf("failed to create savepoint: %w", err)
	}
	m.pending = make(map[string]map[int64]struct{})

	err := m.mapRecord(ctx, s, values)
	if err != nil {
		if rbErr := m.db.RollbackTo(recordSavePoint).Error; rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		m.memory.Reset()
		return err
	}

	if err := m.db.Exec("RELEASE SAVEPOINT " + recordSavePoint).Error; err != nil {
		return fmt.Errorf("failed to release savepoint: %w", err)
	}

	for table, ids := range m.pending {
		for id := range ids {
			m.markProvided(table, id)
		}
	}
	return nil
}

func (m *Mapper) mapRecord(ctx context.Context, s *schema.Schema, values map[string]any) error {
	id, _ := parse.ID(values["id"])
	obj, err := m.memory.Object(ctx, s, id, uuidOf(values))
	if err != nil {
		return err
	}
	return m.processValues(ctx, s, obj, values, nil, true)
}

func (m *Mapper) touch(table string, obj model.Entity) {
	id, _ := obj.Identity()
	ids, ok := m.pending[table]
	if !ok {
		ids = make(map[int64]struct{})
		m.pending[table] = ids
	}
	ids[id] = struct{}{}
}

func (m *Mapper) markProvided(table string, id int64) {
	ids, ok := m.provided[table]
	if !ok {
		ids = make(map[int64]struct{})
		m.provided[table] = ids
	}
	ids[id] = struct{}{}
}

// AsRecords returns v as a slice of objects when every element is an object.
func AsRecords(v any) ([]map[string]any, bool) {
	switch items := v.(type) {
	case []map[string]any:
		return items, true
	case []any:
		records := make([]map[string]any, 0, len(items))
		for _, item := range items {
			record, ok := item.(map[string]any)
			if !ok {
				return nil, false
			}
			records = append(records, record)
		}
		return records, true
	}
	return nil, false
}

func uuidOf(values map[string]any) string {
	s, ok := values["uuid"].(string)
	if !ok {
		return ""
	}
	return parse.CanonicalUUID(s)
}

func encodePayload(values map[string]any) ([]byte, error) {
	return json.Marshal(values)
}
