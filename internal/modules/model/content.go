package model

import "time"

type Content struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"not null;index" json:"user_id"`
	Title  string `gorm:"type:varchar(256);not null" json:"title"`
	URL    string `gorm:"column:url;type:varchar(1024);not null;default:''" json:"url"`

	Created time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created"`

	// Content <-> EmailUser
	User *EmailUser `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (Content) TableName() string { return "contents" }

// YouTubeContent specializes a Content row with a unique video id.
type YouTubeContent struct {
	ContentID uint   `gorm:"primaryKey;autoIncrement:false" json:"content_id"`
	VideoID   string `gorm:"type:varchar(128);not null;uniqueIndex:uq_youtube_contents_video_id" json:"video_id"`

	// YouTubeContent <-> Content
	Content Content `gorm:"foreignKey:ContentID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"content"`
}

func (YouTubeContent) TableName() string { return "youtube_contents" }
