package mapper

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/samber/lo"
	"gorm.io/gorm/schema"

	"job-connect-backend/internal/model"
)

// attribute is a scalar column addressed by its json key.
type attribute struct {
	key   string
	index []int
}

// relation is a gorm relationship addressed by its json key.
type relation struct {
	key string
	rel *schema.Relationship
}

// reference is a column elsewhere that points at rows of a table.
type reference struct {
	table  string
	column string
	join   bool // join-table rows are deleted, plain foreign keys are nulled
}

// Graph is the entity model as the mapper sees it: per-entity attributes,
// relationships and the columns that reference each table.
type Graph struct {
	byName  map[string]*schema.Schema
	attrs   map[string][]attribute
	rels    map[string][]relation
	inbound map[string][]reference
}

var (
	graphOnce sync.Once
	graphVal  *Graph
	graphErr  error
)

// DefaultGraph parses every registered entity once with gorm's default naming.
func DefaultGraph() (*Graph, error) {
	graphOnce.Do(func() {
		graphVal, graphErr = NewGraph(schema.NamingStrategy{})
	})
	return graphVal, graphErr
}

// NewGraph parses the registered entities with the given naming strategy.
func NewGraph(namer schema.Namer) (*Graph, error) {
	cache := &sync.Map{}
	g := &Graph{
		byName:  make(map[string]*schema.Schema),
		attrs:   make(map[string][]attribute),
		rels:    make(map[string][]relation),
		inbound: make(map[string][]reference),
	}

	for _, et := range model.All() {
		s, err := schema.Parse(et.New(), cache, namer)
		if err != nil {
			return nil, fmt.Errorf("failed to parse schema of %s: %w", et.Name, err)
		}
		g.byName[et.Name] = s
		g.attrs[s.Table] = attributesOf(s)
		g.rels[s.Table] = relationsOf(s)
	}

	for _, s := range g.byName {
		for _, rel := range ownRelations(s) {
			g.addInbound(s, rel)
		}
	}
	for table, refs := range g.inbound {
		g.inbound[table] = lo.Uniq(refs)
	}

	return g, nil
}

// Schema returns the parsed schema of a registered entity.
func (g *Graph) Schema(name string) (*schema.Schema, bool) {
	s, ok := g.byName[name]
	return s, ok
}

func (g *Graph) attributes(s *schema.Schema) []attribute {
	return g.attrs[s.Table]
}

func (g *Graph) relations(s *schema.Schema) []relation {
	return g.rels[s.Table]
}

func (g *Graph) referencesTo(table string) []reference {
	return g.inbound[table]
}

func (g *Graph) addInbound(s *schema.Schema, rel *schema.Relationship) {
	switch rel.Type {
	case schema.BelongsTo:
		for _, ref := range rel.References {
			g.inbound[rel.FieldSchema.Table] = append(g.inbound[rel.FieldSchema.Table],
				reference{table: s.Table, column: ref.ForeignKey.DBName})
		}
	case schema.HasOne, schema.HasMany:
		for _, ref := range rel.References {
			if ref.OwnPrimaryKey {
				g.inbound[s.Table] = append(g.inbound[s.Table],
					reference{table: rel.FieldSchema.Table, column: ref.ForeignKey.DBName})
			}
		}
	case schema.Many2Many:
		if rel.JoinTable == nil {
			return
		}
		for _, ref := range rel.References {
			target := rel.FieldSchema.Table
			if ref.OwnPrimaryKey {
				target = s.Table
			}
			g.inbound[target] = append(g.inbound[target],
				reference{table: rel.JoinTable.Table, column: ref.ForeignKey.DBName, join: true})
		}
	}
}

func attributesOf(s *schema.Schema) []attribute {
	var attrs []attribute
	for _, f := range reflect.VisibleFields(s.ModelType) {
		if f.Anonymous || !f.IsExported() {
			continue
		}
		if _, isRelation := s.Relationships.Relations[f.Name]; isRelation {
			continue
		}
		key := jsonKey(f.Tag)
		if key == "" || key == "id" {
			continue
		}
		attrs = append(attrs, attribute{key: key, index: f.Index})
	}
	return attrs
}

func relationsOf(s *schema.Schema) []relation {
	var rels []relation
	for _, rel := range ownRelations(s) {
		key := jsonKey(rel.Field.StructField.Tag)
		if key == "" {
			continue
		}
		rels = append(rels, relation{key: key, rel: rel})
	}
	return rels
}

// ownRelations returns the relationships declared by s's own fields. gorm
// also files the reverse side of other schemas' has-many relations under s,
// keyed by "_<Owner>_<Field>"; those belong to the owner and are skipped.
func ownRelations(s *schema.Schema) []*schema.Relationship {
	var rels []*schema.Relationship
	for name, rel := range s.Relationships.Relations {
		if name != rel.Name || rel.Field == nil || rel.Field.Schema != s {
			continue
		}
		rels = append(rels, rel)
	}
	return rels
}

func jsonKey(tag reflect.StructTag) string {
	key, _, _ := strings.Cut(tag.Get("json"), ",")
	if key == "-" {
		return ""
	}
	return key
}

// inverseOf reports whether r walks back along p, the relationship that led to r's owner.
func inverseOf(r, p *schema.Relationship) bool {
	if r.FieldSchema.Table != p.Schema.Table {
		return false
	}
	if p.Type == schema.Many2Many || r.Type == schema.Many2Many {
		return r.Type == p.Type && r.JoinTable != nil && p.JoinTable != nil && r.JoinTable.Table == p.JoinTable.Table
	}
	return foreignKeyOf(r) == foreignKeyOf(p)
}

func foreignKeyOf(r *schema.Relationship) string {
	if len(r.References) == 0 || r.References[0].ForeignKey == nil {
		return ""
	}
	return r.References[0].ForeignKey.DBName
}
