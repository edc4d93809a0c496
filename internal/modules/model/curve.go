package model

import (
	"time"

	"gorm.io/datatypes"
)

// Curve is one participant's time-series for a Content/ValueType pair.
// RoomName matches Request.RoomName by value only; it is not a foreign key.
type Curve struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	ContentID   uint           `gorm:"not null;index" json:"content_id"`
	ValueTypeID uint           `gorm:"not null;index" json:"value_type_id"`
	Values      datatypes.JSON `gorm:"type:jsonb;not null" swaggertype:"object" json:"values"`
	Version     string         `gorm:"type:varchar(16);not null;default:''" json:"version"`
	RoomName    string         `gorm:"type:varchar(32);not null;default:'';index:ix_curves_room_name" json:"room_name"`
	Locked      bool           `gorm:"not null" json:"locked"`

	Created time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created"`

	// Curve <-> EmailUser
	User *EmailUser `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"user,omitempty"`

	// Curve <-> Content (protected)
	Content *Content `gorm:"foreignKey:ContentID;references:ID;constraint:OnDelete:RESTRICT,OnUpdate:CASCADE;" json:"content,omitempty"`

	// Curve <-> ValueType
	ValueType *ValueType `gorm:"foreignKey:ValueTypeID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"value_type,omitempty"`
}

func (Curve) TableName() string { return "curves" }
