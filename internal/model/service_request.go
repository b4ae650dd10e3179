package model

// Symptom is a reported problem a service request can be filed under.
type Symptom struct {
	Base
	Name string `gorm:"size:256" json:"name"`
	Code string `gorm:"size:64" json:"code"`

	// Associations
	Categories []*SRCategory `gorm:"many2many:sr_category_symptoms" json:"categories,omitempty"`
}

// AttributeGroup groups device and service-request attributes for display.
type AttributeGroup struct {
	Base
	Name      string `gorm:"size:128" json:"name"`
	SortOrder int    `json:"sortOrder"`

	// Associations
	DeviceAttributes []*DeviceAttribute `gorm:"foreignKey:AttributeGroupID" json:"deviceAttributes,omitempty"`
	SRAttributes     []*SRAttribute     `gorm:"foreignKey:AttributeGroupID" json:"srAttributes,omitempty"`
}

// Priority is a service-request urgency level.
type Priority struct {
	Base
	Name            string `gorm:"size:64" json:"name"`
	Level           int    `json:"level"`
	ResponseMinutes int    `json:"responseMinutes"`

	// Associations
	Categories []*SRCategory `gorm:"foreignKey:DefaultPriorityID" json:"categories,omitempty"`
}

// SRState is a node of a service-request state machine.
type SRState struct {
	Base
	Name    string `gorm:"size:128" json:"name"`
	Color   string `gorm:"size:16" json:"color"`
	IsFinal bool   `json:"isFinal"`

	// Associations
	DefaultInitialStateMachines []*SRStateMachine `gorm:"foreignKey:DefaultInitialStateID" json:"defaultInitialStateMachines,omitempty"`
	SourceTransitions           []*SRTransition   `gorm:"foreignKey:SourceStateID" json:"sourceTransitions,omitempty"`
	TargetTransitions           []*SRTransition   `gorm:"foreignKey:TargetStateID" json:"targetTransitions,omitempty"`
}

// SRStateMachine drives the lifecycle of service requests in its categories.
type SRStateMachine struct {
	Base
	Name string `gorm:"size:128" json:"name"`

	DefaultInitialStateID *int64 `gorm:"index" json:"-"`

	// Associations
	DefaultInitialState *SRState        `gorm:"foreignKey:DefaultInitialStateID" json:"defaultInitialState,omitempty"`
	Categories          []*SRCategory   `gorm:"foreignKey:StateMachineID" json:"categories,omitempty"`
	Transitions         []*SRTransition `gorm:"foreignKey:StateMachineID" json:"transitions,omitempty"`
}

// SRTransition is a directed edge between two service-request states.
type SRTransition struct {
	Base
	Name string `gorm:"size:128" json:"name"`

	StateMachineID *int64 `gorm:"index" json:"-"`
	SourceStateID  *int64 `gorm:"index" json:"-"`
	TargetStateID  *int64 `gorm:"index" json:"-"`

	// Associations
	StateMachine *SRStateMachine `gorm:"foreignKey:StateMachineID" json:"stateMachine,omitempty"`
	SourceState  *SRState        `gorm:"foreignKey:SourceStateID" json:"sourceState,omitempty"`
	TargetState  *SRState        `gorm:"foreignKey:TargetStateID" json:"targetState,omitempty"`
}

// SRCategory classifies service requests.
type SRCategory struct {
	Base
	Name string `gorm:"size:256" json:"name"`
	Code string `gorm:"size:64" json:"code"`

	StateMachineID    *int64 `gorm:"index" json:"-"`
	DefaultPriorityID *int64 `gorm:"index" json:"-"`

	// Associations
	StateMachine    *SRStateMachine        `gorm:"foreignKey:StateMachineID" json:"stateMachine,omitempty"`
	DefaultPriority *Priority              `gorm:"foreignKey:DefaultPriorityID" json:"defaultPriority,omitempty"`
	Symptoms        []*Symptom             `gorm:"many2many:sr_category_symptoms" json:"symptoms,omitempty"`
	Attributes      []*SRCategoryAttribute `gorm:"foreignKey:CategoryID" json:"attributes,omitempty"`
}

// SRAttribute is a named, typed value that service-request categories can carry.
type SRAttribute struct {
	Base
	Name     string `gorm:"size:128" json:"name"`
	DataType string `gorm:"size:32" json:"dataType"`
	Unit     string `gorm:"size:32" json:"unit"`

	AttributeGroupID *int64 `gorm:"index" json:"-"`

	// Associations
	AttributeGroup     *AttributeGroup        `gorm:"foreignKey:AttributeGroupID" json:"attributeGroup,omitempty"`
	CategoryAttributes []*SRCategoryAttribute `gorm:"foreignKey:AttributeID" json:"categoryAttributes,omitempty"`
}

// SRCategoryAttribute binds an attribute to a service-request category.
type SRCategoryAttribute struct {
	Base
	Required  bool `json:"required"`
	SortOrder int  `json:"sortOrder"`

	CategoryID  *int64 `gorm:"index" json:"-"`
	AttributeID *int64 `gorm:"index" json:"-"`

	// Associations
	Category       *SRCategory                         `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Attribute      *SRAttribute                        `gorm:"foreignKey:AttributeID" json:"attribute,omitempty"`
	StateBehaviors []*SRCategoryAttributeStateBehavior `gorm:"foreignKey:CategoryAttributeID" json:"stateBehaviors,omitempty"`
}

// SRCategoryAttributeStateBehavior controls how an attribute behaves while a request is in a state.
type SRCategoryAttributeStateBehavior struct {
	Base
	Visible  bool `json:"visible"`
	Editable bool `json:"editable"`
	Required bool `json:"required"`

	CategoryAttributeID *int64 `gorm:"index" json:"-"`
	StateID             *int64 `gorm:"index" json:"-"`

	// Associations
	CategoryAttribute *SRCategoryAttribute `gorm:"foreignKey:CategoryAttributeID" json:"categoryAttribute,omitempty"`
	State             *SRState             `gorm:"foreignKey:StateID" json:"state,omitempty"`
}
