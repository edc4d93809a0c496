package model

import "time"

// AxisType is the semantics of a measured axis.
type AxisType int

const (
	// AxisBidirectional has values above and below a neutral baseline.
	AxisBidirectional AxisType = 1
	// AxisMonotonic only rises from the baseline.
	AxisMonotonic AxisType = 2
)

func (a AxisType) Valid() bool {
	return a == AxisBidirectional || a == AxisMonotonic
}

type ValueType struct {
	ID       uint     `gorm:"primaryKey" json:"id"`
	UserID   uint     `gorm:"not null;index" json:"user_id"`
	Title    string   `gorm:"type:varchar(256);not null;default:''" json:"title"`
	AxisType AxisType `gorm:"not null;default:1;check:chk_value_types_axis_type,axis_type IN (1,2)" json:"axis_type"`

	Created time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created"`

	// ValueType <-> EmailUser
	User *EmailUser `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (ValueType) TableName() string { return "value_types" }
