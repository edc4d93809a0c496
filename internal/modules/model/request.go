package model

import "time"

type Questionaire struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	URL        string `gorm:"column:url;type:varchar(200);not null;default:''" json:"url"`
	UserIDForm string `gorm:"column:user_id_form;type:varchar(32);not null" json:"user_id_form"`

	Created time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created"`
}

func (Questionaire) TableName() string { return "questionaires" }

// Request is a study invitation identified publicly by its room code.
type Request struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	RoomName       string `gorm:"type:varchar(6);not null;uniqueIndex:uq_requests_room_name" json:"room_name"`
	Title          string `gorm:"type:varchar(128);not null;default:''" json:"title"`
	Description    string `gorm:"type:text;not null;default:''" json:"description"`
	OwnerID        uint   `gorm:"not null;index" json:"owner_id"`
	Intervals      int    `gorm:"not null;default:1" json:"intervals"`
	ContentID      uint   `gorm:"not null;index" json:"content_id"`
	ValueTypeID    uint   `gorm:"not null;index" json:"value_type_id"`
	QuestionaireID *uint  `gorm:"index" json:"questionaire_id"`

	Created time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP;index" json:"created"`

	// Request <-> EmailUser (owner)
	Owner *EmailUser `gorm:"foreignKey:OwnerID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"owner,omitempty"`

	// Request <-> Content
	Content *Content `gorm:"foreignKey:ContentID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"content,omitempty"`

	// Request <-> ValueType
	ValueType *ValueType `gorm:"foreignKey:ValueTypeID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"value_type,omitempty"`

	// Request <-> Questionaire
	Questionaire *Questionaire `gorm:"foreignKey:QuestionaireID;references:ID;constraint:OnDelete:SET NULL,OnUpdate:CASCADE;" json:"questionaire,omitempty"`

	// Request <-> RelationParticipant
	Participants []RelationParticipant `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"participants,omitempty"`
}

func (Request) TableName() string { return "requests" }

// RelationParticipant is the request/participant membership with per-member mail state.
type RelationParticipant struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	RequestID  uint `gorm:"not null;uniqueIndex:uq_relation_participants_request_user,priority:1" json:"request_id"`
	UserID     uint `gorm:"not null;uniqueIndex:uq_relation_participants_request_user,priority:2;index" json:"user_id"`
	SendedMail bool `gorm:"not null;default:false" json:"sended_mail"`

	Created time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created"`

	// RelationParticipant <-> EmailUser
	User *EmailUser `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"user,omitempty"`

	// RelationParticipant <-> Request
	Request *Request `gorm:"foreignKey:RequestID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (RelationParticipant) TableName() string { return "relation_participants" }
