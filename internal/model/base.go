package model

import (
	"time"

	"gorm.io/datatypes"
)

// Base carries the identity shared by every imported entity.
type Base struct {
	ID       int64  `gorm:"primaryKey" json:"id"`
	UUID     string `gorm:"size:64;index" json:"uuid"`
	Disabled bool   `gorm:"not null" json:"disabled"`

	// Payload is the raw record as it was last imported.
	Payload   datatypes.JSON `json:"-"`
	CreatedAt time.Time      `json:"-"`
	UpdatedAt time.Time      `json:"-"`
}

// AbstractStateUpdate is the common shape of state-update records.
type AbstractStateUpdate struct {
	Base
	Created *time.Time `json:"created"`
}
