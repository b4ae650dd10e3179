package mapper

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"job-connect-backend/internal/model"
	"job-connect-backend/internal/parse"
)

var timeType = reflect.TypeOf(time.Time{})

// processValues applies attributes and relationships from values to obj and
// saves it. parent is the relationship that led here for nested records; it
// is not walked back. To-many relationships are only applied when toMany is set.
func (m *Mapper) processValues(ctx context.Context, s *schema.Schema, obj model.Entity, values map[string]any, parent *schema.Relationship, toMany bool) error {
	rv := reflect.Indirect(reflect.ValueOf(obj))

	for _, a := range m.graph.attributes(s) {
		raw, ok := values[a.key]
		if !ok {
			continue
		}
		if a.key == "uuid" {
			if str, isString := raw.(string); isString {
				raw = parse.CanonicalUUID(str)
			}
		}
		if err := assign(rv.FieldByIndex(a.index), raw, m.loc); err != nil {
			return fmt.Errorf("%s.%s: %w", s.Name, a.key, err)
		}
	}

	payload, err := encodePayload(values)
	if err != nil {
		return fmt.Errorf("%s: failed to encode payload: %w", s.Name, err)
	}
	obj.SetPayload(payload)

	var afterSave []func() error
	for _, r := range m.graph.relations(s) {
		raw, ok := values[r.key]
		if !ok {
			continue
		}
		if parent != nil && inverseOf(r.rel, parent) {
			continue
		}

		switch r.rel.Type {
		case schema.BelongsTo:
			target, err := m.resolve(ctx, r.rel, raw)
			if err != nil {
				return fmt.Errorf("%s.%s: %w", s.Name, r.key, err)
			}
			if err := setForeignKey(rv, r.rel, target); err != nil {
				return fmt.Errorf("%s.%s: %w", s.Name, r.key, err)
			}
		case schema.HasOne:
			target, err := m.resolve(ctx, r.rel, raw)
			if err != nil {
				return fmt.Errorf("%s.%s: %w", s.Name, r.key, err)
			}
			name := r.rel.Name
			afterSave = append(afterSave, func() error {
				if target == nil {
					return m.db.WithContext(ctx).Model(obj).Association(name).Clear()
				}
				return m.db.WithContext(ctx).Model(obj).Association(name).Replace(target)
			})
		case schema.HasMany, schema.Many2Many:
			if !toMany {
				continue
			}
			targets, err := m.resolveMany(ctx, r.rel, raw)
			if err != nil {
				return fmt.Errorf("%s.%s: %w", s.Name, r.key, err)
			}
			name := r.rel.Name
			afterSave = append(afterSave, func() error {
				if targets.Len() == 0 {
					return m.db.WithContext(ctx).Model(obj).Association(name).Clear()
				}
				return m.db.WithContext(ctx).Model(obj).Association(name).Replace(targets.Interface())
			})
		}
	}

	if err := m.db.WithContext(ctx).Omit(clause.Associations).Save(obj).Error; err != nil {
		return fmt.Errorf("failed to save %s: %w", s.Name, err)
	}
	m.memory.remember(s, obj)
	m.touch(s.Table, obj)

	for _, apply := range afterSave {
		if err := apply(); err != nil {
			return fmt.Errorf("failed to update relationships of %s: %w", s.Name, err)
		}
	}
	return nil
}

// resolve turns a reference value into the instance it names: an id, a
// uuid, or a nested record that is itself mapped. nil clears the reference.
func (m *Mapper) resolve(ctx context.Context, rel *schema.Relationship, raw any) (model.Entity, error) {
	target := rel.FieldSchema

	switch v := raw.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		id, _ := parse.ID(v["id"])
		obj, err := m.memory.Object(ctx, target, id, uuidOf(v))
		if err != nil {
			return nil, err
		}
		if err := m.processValues(ctx, target, obj, v, rel, false); err != nil {
			return nil, err
		}
		return obj, nil
	}

	if id, ok := parse.ID(raw); ok {
		obj, err := m.memory.Object(ctx, target, id, "")
		if err != nil {
			return nil, err
		}
		m.touch(target.Table, obj)
		return obj, nil
	}
	if str, ok := raw.(string); ok && strings.TrimSpace(str) != "" {
		obj, err := m.memory.Object(ctx, target, 0, parse.CanonicalUUID(str))
		if err != nil {
			return nil, err
		}
		m.touch(target.Table, obj)
		return obj, nil
	}
	return nil, fmt.Errorf("unsupported reference %v to %s", raw, target.Name)
}

// resolveMany resolves every element of a to-many value into a []*T.
func (m *Mapper) resolveMany(ctx context.Context, rel *schema.Relationship, raw any) (reflect.Value, error) {
	targets := reflect.MakeSlice(reflect.SliceOf(reflect.PointerTo(rel.FieldSchema.ModelType)), 0, 0)
	if raw == nil {
		return targets, nil
	}

	items, ok := raw.([]any)
	if !ok {
		return targets, fmt.Errorf("expected an array for %s, got %T", rel.Name, raw)
	}

	for _, item := range items {
		obj, err := m.resolve(ctx, rel, item)
		if err != nil {
			return targets, err
		}
		if obj == nil {
			continue
		}
		targets = reflect.Append(targets, reflect.ValueOf(obj))
	}
	return targets, nil
}

func setForeignKey(owner reflect.Value, rel *schema.Relationship, target model.Entity) error {
	if len(rel.References) == 0 || rel.References[0].ForeignKey == nil {
		return fmt.Errorf("relationship %s has no foreign key", rel.Name)
	}
	fk := owner.FieldByName(rel.References[0].ForeignKey.Name)
	if !fk.IsValid() || !fk.CanSet() {
		return fmt.Errorf("foreign key %s is not settable", rel.References[0].ForeignKey.Name)
	}

	if target == nil {
		fk.Set(reflect.Zero(fk.Type()))
		return nil
	}

	id, _ := target.Identity()
	if fk.Kind() == reflect.Pointer {
		v := reflect.New(fk.Type().Elem())
		v.Elem().SetInt(id)
		fk.Set(v)
		return nil
	}
	fk.SetInt(id)
	return nil
}

// assign converts a decoded JSON value into the field's type.
func assign(field reflect.Value, raw any, loc *time.Location) error {
	if raw == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}

	if field.Kind() == reflect.Pointer {
		v := reflect.New(field.Type().Elem())
		if err := assign(v.Elem(), raw, loc); err != nil {
			return err
		}
		field.Set(v)
		return nil
	}

	if field.Type() == timeType {
		t, err := parse.Time(raw, loc)
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(t))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		str, err := parse.String(raw)
		if err != nil {
			return err
		}
		field.SetString(str)
	case reflect.Bool:
		b, err := parse.Bool(raw)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := parse.Int(raw)
		if err != nil {
			return err
		}
		if field.OverflowInt(n) {
			return fmt.Errorf("%d overflows %s", n, field.Type())
		}
		field.SetInt(n)
	case reflect.Float32, reflect.Float64:
		f, err := parse.Float(raw)
		if err != nil {
			return err
		}
		field.SetFloat(f)
	default:
		b, err := json.Marshal(raw)
		if err != nil {
			return err
		}
		return json.Unmarshal(b, field.Addr().Interface())
	}
	return nil
}
