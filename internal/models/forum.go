package models

import "time"

// ForumTopic is a discussion thread. Pinned topics list first.
type ForumTopic struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"size:200;not null"`
	Description string `gorm:"type:text"`
	UserID      uint   `gorm:"index;not null"`
	IsPinned    bool   `gorm:"default:false"`
	CreatedAt   time.Time

	User User
}

// ForumReply is a single reply inside a topic.
type ForumReply struct {
	ID        uint   `gorm:"primaryKey"`
	Content   string `gorm:"type:text;not null"`
	TopicID   uint   `gorm:"index;not null"`
	UserID    uint   `gorm:"index;not null"`
	CreatedAt time.Time

	User User
}
