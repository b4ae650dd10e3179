package mapper

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"job-connect-backend/internal/logging"
)

const deleteChunkSize = 500

// deleteUnlisted removes rows of s that were neither provided nor referenced
// since the last reset. Foreign keys pointing at removed rows are nulled and
// join-table rows are deleted.
func (m *Mapper) deleteUnlisted(ctx context.Context, s *schema.Schema) (int, error) {
	pk := clause.Column{Name: s.PrioritizedPrimaryField.DBName}

	q := m.db.WithContext(ctx).Model(newEntity(s))
	if provided := m.provided[s.Table]; len(provided) > 0 {
		q = q.Where(clause.Not(clause.IN{Column: pk, Values: lo.ToAnySlice(lo.Keys(provided))}))
	}

	var ids []int64
	if err := q.Pluck(pk.Name, &ids).Error; err != nil {
		return 0, fmt.Errorf("failed to list %s rows: %w", s.Name, err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	for _, chunk := range lo.Chunk(ids, deleteChunkSize) {
		if err := m.detach(ctx, s.Table, chunk); err != nil {
			return 0, err
		}
		err := m.db.WithContext(ctx).
			Where(clause.IN{Column: pk, Values: lo.ToAnySlice(chunk)}).
			Delete(newEntity(s)).Error
		if err != nil {
			return 0, fmt.Errorf("failed to delete %s rows: %w", s.Name, err)
		}
		m.memory.forget(s.Table, chunk)
	}

	log := logging.GetFromContext(ctx)
	log.Debug().Str("entity", s.Name).Int("deleted", len(ids)).Msg("deleted rows not provided")
	return len(ids), nil
}

// detach applies the nullify rule to every column referencing ids in table.
func (m *Mapper) detach(ctx context.Context, table string, ids []int64) error {
	for _, ref := range m.graph.referencesTo(table) {
		var err error
		if ref.join {
			err = m.db.WithContext(ctx).Exec("DELETE FROM ? WHERE ? IN ?",
				clause.Table{Name: ref.table}, clause.Column{Name: ref.column}, ids).Error
		} else {
			err = m.db.WithContext(ctx).Exec("UPDATE ? SET ? = NULL WHERE ? IN ?",
				clause.Table{Name: ref.table}, clause.Column{Name: ref.column}, clause.Column{Name: ref.column}, ids).Error
		}
		if err != nil {
			return fmt.Errorf("failed to detach %s.%s: %w", ref.table, ref.column, err)
		}
	}
	return nil
}
