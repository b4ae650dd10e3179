package model

import "errors"

// ErrUnknownEntity is returned when an entity name has no registered type.
var ErrUnknownEntity = errors.New("unknown entity type")

// EntityType is a named, persistable entity.
type EntityType struct {
	Name string
	new  func() any
}

// New returns a pointer to a fresh zero instance of the entity.
func (t EntityType) New() any {
	return t.new()
}

func entity[T any](name string) EntityType {
	return EntityType{Name: name, new: func() any { return new(T) }}
}

var registry = []EntityType{
	entity[Organization]("Organization"),
	entity[Contract]("Contract"),
	entity[User]("User"),
	entity[Symptom]("Symptom"),
	entity[AttributeGroup]("AttributeGroup"),
	entity[Priority]("Priority"),
	entity[DeviceState]("DeviceState"),
	entity[DeviceStateMachine]("DeviceStateMachine"),
	entity[DeviceTransition]("DeviceTransition"),
	entity[DeviceType]("DeviceType"),
	entity[Device]("Device"),
	entity[DeviceStateUpdate]("DeviceStateUpdate"),
	entity[DeviceAttribute]("DeviceAttribute"),
	entity[DeviceTypeAttribute]("DeviceTypeAttribute"),
	entity[DeviceTypeAttributeStateBehavior]("DeviceTypeAttributeStateBehavior"),
	entity[SRState]("SRState"),
	entity[SRStateMachine]("SRStateMachine"),
	entity[SRTransition]("SRTransition"),
	entity[SRCategory]("SRCategory"),
	entity[SRAttribute]("SRAttribute"),
	entity[SRCategoryAttribute]("SRCategoryAttribute"),
	entity[SRCategoryAttributeStateBehavior]("SRCategoryAttributeStateBehavior"),
	entity[WorkForm]("WorkForm"),
	entity[WorkFormPDFRevision]("WorkFormPDFRevision"),
	entity[FileMetadata]("FileMetadata"),
	entity[PMTask]("PMTask"),
	entity[WorkFormPDFData]("WorkFormPDFData"),
}

var byName = func() map[string]EntityType {
	m := make(map[string]EntityType, len(registry))
	for _, t := range registry {
		m[t.Name] = t
	}
	return m
}()

// Lookup resolves an entity name to its type.
func Lookup(name string) (EntityType, bool) {
	t, ok := byName[name]
	return t, ok
}

// All returns every registered entity type in registration order.
func All() []EntityType {
	out := make([]EntityType, len(registry))
	copy(out, registry)
	return out
}

// Models returns one zero instance per entity, for migrations.
func Models() []any {
	models := make([]any, 0, len(registry))
	for _, t := range registry {
		models = append(models, t.New())
	}
	return models
}
