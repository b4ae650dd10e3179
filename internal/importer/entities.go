package importer

// RequestEntities lists the entity names imported from the data file, in
// processing order. Referenced types come before the types referencing them.
var RequestEntities = []string{
	"Organization",
	"Contract",
	"User",
	"Symptom",
	"AttributeGroup",
	"Priority",
	"DeviceState",
	"DeviceStateMachine",
	"DeviceType",
	"DeviceAttribute",
	"DeviceTypeAttribute",
	"DeviceTypeAttributeStateBehavior",
	"SRState",
	"SRStateMachine",
	"SRCategory",
	"SRAttribute",
	"SRCategoryAttribute",
	"SRCategoryAttributeStateBehavior",
	"WorkForm",
}
