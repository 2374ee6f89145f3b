package models

import "time"

// TrickUpvote marks one user's vote on one trick. The composite unique
// index is the source of truth for at-most-one-vote, concurrent double
// toggles are resolved by the constraint, not by the handler check.
type TrickUpvote struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"not null;uniqueIndex:uniq_trick_upvote"`
	TrickID   uint `gorm:"not null;uniqueIndex:uniq_trick_upvote;index"`
	CreatedAt time.Time
}

// ReplyUpvote marks one user's vote on one forum reply.
type ReplyUpvote struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"not null;uniqueIndex:uniq_reply_upvote"`
	ReplyID   uint `gorm:"not null;uniqueIndex:uniq_reply_upvote;index"`
	CreatedAt time.Time
}
