package model

import "gorm.io/datatypes"

// Entity is implemented by every registered type through its embedded Base.
type Entity interface {
	Identity() (id int64, uuid string)
	SetIdentity(id int64, uuid string)
	SetPayload(raw datatypes.JSON)
}

func (b *Base) Identity() (int64, string) {
	return b.ID, b.UUID
}

func (b *Base) SetIdentity(id int64, uuid string) {
	b.ID = id
	b.UUID = uuid
}

func (b *Base) SetPayload(raw datatypes.JSON) {
	b.Payload = raw
}
