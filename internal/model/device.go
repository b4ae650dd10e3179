package model

// DeviceState is a node of a device state machine.
type DeviceState struct {
	Base
	Name    string `gorm:"size:128" json:"name"`
	Color   string `gorm:"size:16" json:"color"`
	IsFinal bool   `json:"isFinal"`

	// Associations
	DefaultInitialStateMachines []*DeviceStateMachine `gorm:"foreignKey:DefaultInitialStateID" json:"defaultInitialStateMachines,omitempty"`
	Devices                     []*Device             `gorm:"foreignKey:StateID" json:"devices,omitempty"`
	SourceTransitions           []*DeviceTransition   `gorm:"foreignKey:SourceStateID" json:"sourceTransitions,omitempty"`
	StateUpdates                []*DeviceStateUpdate  `gorm:"foreignKey:StateID" json:"stateUpdates,omitempty"`
	TargetTransitions           []*DeviceTransition   `gorm:"foreignKey:TargetStateID" json:"targetTransitions,omitempty"`
}

// DeviceStateMachine groups the states and transitions applicable to a set of device types.
type DeviceStateMachine struct {
	Base
	Name string `gorm:"size:128" json:"name"`

	DefaultInitialStateID *int64 `gorm:"index" json:"-"`

	// Associations
	DefaultInitialState *DeviceState        `gorm:"foreignKey:DefaultInitialStateID" json:"defaultInitialState,omitempty"`
	DeviceTypes         []*DeviceType       `gorm:"foreignKey:StateMachineID" json:"deviceTypes,omitempty"`
	Transitions         []*DeviceTransition `gorm:"foreignKey:StateMachineID" json:"transitions,omitempty"`
}

// DeviceTransition is a directed edge between two device states.
type DeviceTransition struct {
	Base
	Name string `gorm:"size:128" json:"name"`

	StateMachineID *int64 `gorm:"index" json:"-"`
	SourceStateID  *int64 `gorm:"index" json:"-"`
	TargetStateID  *int64 `gorm:"index" json:"-"`

	// Associations
	StateMachine *DeviceStateMachine `gorm:"foreignKey:StateMachineID" json:"stateMachine,omitempty"`
	SourceState  *DeviceState        `gorm:"foreignKey:SourceStateID" json:"sourceState,omitempty"`
	TargetState  *DeviceState        `gorm:"foreignKey:TargetStateID" json:"targetState,omitempty"`
}

// DeviceType classifies devices.
type DeviceType struct {
	Base
	Name         string `gorm:"size:128" json:"name"`
	Manufacturer string `gorm:"size:128" json:"manufacturer"`
	Model        string `gorm:"size:128" json:"model"`

	StateMachineID *int64 `gorm:"index" json:"-"`

	// Associations
	StateMachine *DeviceStateMachine   `gorm:"foreignKey:StateMachineID" json:"stateMachine,omitempty"`
	Attributes   []*DeviceTypeAttribute `gorm:"foreignKey:DeviceTypeID" json:"attributes,omitempty"`
	Devices      []*Device              `gorm:"foreignKey:DeviceTypeID" json:"devices,omitempty"`
}

// Device is a physical asset serviced in the field.
type Device struct {
	Base
	Name         string `gorm:"size:256" json:"name"`
	SerialNumber string `gorm:"size:128;index" json:"serialNumber"`

	DeviceTypeID *int64 `gorm:"index" json:"-"`
	StateID      *int64 `gorm:"index" json:"-"`

	// Associations
	DeviceType   *DeviceType          `gorm:"foreignKey:DeviceTypeID" json:"deviceType,omitempty"`
	State        *DeviceState         `gorm:"foreignKey:StateID" json:"state,omitempty"`
	StateUpdates []*DeviceStateUpdate `gorm:"foreignKey:DeviceID" json:"stateUpdates,omitempty"`
	Tasks        []*PMTask            `gorm:"foreignKey:DeviceID" json:"tasks,omitempty"`
}

// DeviceStateUpdate records a device entering a state.
type DeviceStateUpdate struct {
	AbstractStateUpdate
	Note string `gorm:"size:1024" json:"note"`

	DeviceID *int64 `gorm:"index" json:"-"`
	StateID  *int64 `gorm:"index" json:"-"`

	// Associations
	Device *Device      `gorm:"foreignKey:DeviceID" json:"device,omitempty"`
	State  *DeviceState `gorm:"foreignKey:StateID" json:"state,omitempty"`
}

// DeviceAttribute is a named, typed value that device types can carry.
type DeviceAttribute struct {
	Base
	Name     string `gorm:"size:128" json:"name"`
	DataType string `gorm:"size:32" json:"dataType"`
	Unit     string `gorm:"size:32" json:"unit"`

	AttributeGroupID *int64 `gorm:"index" json:"-"`

	// Associations
	AttributeGroup       *AttributeGroup        `gorm:"foreignKey:AttributeGroupID" json:"attributeGroup,omitempty"`
	DeviceTypeAttributes []*DeviceTypeAttribute `gorm:"foreignKey:DeviceAttributeID" json:"deviceTypeAttributes,omitempty"`
}

// DeviceTypeAttribute binds an attribute to a device type.
type DeviceTypeAttribute struct {
	Base
	Required  bool `json:"required"`
	SortOrder int  `json:"sortOrder"`

	DeviceTypeID      *int64 `gorm:"index" json:"-"`
	DeviceAttributeID *int64 `gorm:"index" json:"-"`

	// Associations
	DeviceType      *DeviceType                         `gorm:"foreignKey:DeviceTypeID" json:"deviceType,omitempty"`
	DeviceAttribute *DeviceAttribute                    `gorm:"foreignKey:DeviceAttributeID" json:"deviceAttribute,omitempty"`
	StateBehaviors  []*DeviceTypeAttributeStateBehavior `gorm:"foreignKey:DeviceTypeAttributeID" json:"stateBehaviors,omitempty"`
}

// DeviceTypeAttributeStateBehavior controls how an attribute behaves while a device is in a state.
type DeviceTypeAttributeStateBehavior struct {
	Base
	Visible  bool `json:"visible"`
	Editable bool `json:"editable"`
	Required bool `json:"required"`

	DeviceTypeAttributeID *int64 `gorm:"index" json:"-"`
	StateID               *int64 `gorm:"index" json:"-"`

	// Associations
	DeviceTypeAttribute *DeviceTypeAttribute `gorm:"foreignKey:DeviceTypeAttributeID" json:"deviceTypeAttribute,omitempty"`
	State               *DeviceState         `gorm:"foreignKey:StateID" json:"state,omitempty"`
}
