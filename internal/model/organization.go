package model

import "time"

// Organization is a customer organization.
type Organization struct {
	Base
	Name string `gorm:"size:256" json:"name"`
	Code string `gorm:"size:64;index" json:"code"`

	// Associations
	Contracts []*Contract `gorm:"foreignKey:OrganizationID" json:"contracts,omitempty"`
	Users     []*User     `gorm:"foreignKey:OrganizationID" json:"users,omitempty"`
}

// Contract is a service contract held by an organization.
type Contract struct {
	Base
	Name     string     `gorm:"size:256" json:"name"`
	Number   string     `gorm:"size:64" json:"number"`
	StartsAt *time.Time `json:"startsAt"`
	EndsAt   *time.Time `json:"endsAt"`

	OrganizationID *int64 `gorm:"index" json:"-"`

	// Associations
	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Users        []*User       `gorm:"many2many:user_contracts" json:"users,omitempty"`
}

// User is a technician or dispatcher account.
type User struct {
	Base
	Username  string `gorm:"size:128;index" json:"username"`
	FirstName string `gorm:"size:128" json:"firstName"`
	LastName  string `gorm:"size:128" json:"lastName"`
	Email     string `gorm:"size:256" json:"email"`

	OrganizationID *int64 `gorm:"index" json:"-"`

	// Associations
	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Contracts    []*Contract   `gorm:"many2many:user_contracts" json:"contracts,omitempty"`
}
