package model

import (
	"time"
)

// EmailUser is the authenticatable principal. Username is generated when absent.
type EmailUser struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"type:varchar(32);not null;uniqueIndex:uq_users_username" json:"username"`
	Email        string     `gorm:"type:varchar(256);not null;default:''" json:"email"`
	PasswordHash string     `gorm:"type:text;not null" json:"-"`
	IsActive     bool       `gorm:"not null" json:"is_active"`
	IsStaff      bool       `gorm:"not null;default:false" json:"is_staff"`
	IsSuperuser  bool       `gorm:"not null;default:false" json:"is_superuser"`
	LastLogin    *time.Time `json:"last_login,omitempty"`

	DateJoined  time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP;index" json:"date_joined"`
	LastUpdated time.Time `gorm:"autoUpdateTime;not null;default:CURRENT_TIMESTAMP" json:"last_updated"`

	// EmailUser <-> Group
	Groups []Group `gorm:"many2many:user_groups;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"groups,omitempty"`

	// EmailUser <-> ValueType / Content / Curve / Request (owner)
	ValueTypes []ValueType `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
	Contents   []Content   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
	Curves     []Curve     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
	Requests   []Request   `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (EmailUser) TableName() string { return "users" }

func (u *EmailUser) GroupNames() []string {
	names := make([]string, 0, len(u.Groups))
	for _, g := range u.Groups {
		names = append(names, g.Name)
	}
	return names
}

func (u *EmailUser) InGroup(name string) bool {
	for _, g := range u.Groups {
		if g.Name == name {
			return true
		}
	}
	return false
}

// FullName mirrors the "username(email)" display form.
func (u *EmailUser) FullName() string {
	return u.Username + "(" + u.Email + ")"
}
