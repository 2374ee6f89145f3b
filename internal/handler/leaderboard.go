package handler

import (
	"net/http"

	"github.com/Maniok19/Wikitricks/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LeaderboardHandler computes the community activity rankings. Each
// dimension is one grouped aggregate query, users with zero activity in
// a dimension never appear, ties break on ascending user id so the
// ordering is reproducible.
type LeaderboardHandler struct {
	DB *gorm.DB
}

func NewLeaderboardHandler(db *gorm.DB) *LeaderboardHandler {
	return &LeaderboardHandler{DB: db}
}

const leaderboardSize = 10

type contributor struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Region   string `json:"region"`
	Count    int64  `json:"count"`
}

type topTrick struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	UpvoteCount int64  `json:"upvote_count"`
}

// topContributors counts rows per author in the given table.
func (h *LeaderboardHandler) topContributors(table string) ([]contributor, error) {
	rows := make([]contributor, 0, leaderboardSize)
	err := h.DB.Table(table).
		Select("users.id AS user_id, users.username AS username, users.region AS region, COUNT(*) AS count").
		Joins("JOIN users ON users.id = " + table + ".user_id").
		Group("users.id, users.username, users.region").
		Order("count DESC, user_id ASC").
		Limit(leaderboardSize).
		Scan(&rows).Error
	return rows, err
}

// forumParticipants counts topics and replies together per author.
func (h *LeaderboardHandler) forumParticipants() ([]contributor, error) {
	rows := make([]contributor, 0, leaderboardSize)
	err := h.DB.Raw(`
		SELECT users.id AS user_id, users.username AS username, users.region AS region, COUNT(*) AS count
		FROM (
			SELECT user_id FROM forum_topics
			UNION ALL
			SELECT user_id FROM forum_replies
		) AS activity
		JOIN users ON users.id = activity.user_id
		GROUP BY users.id, users.username, users.region
		ORDER BY count DESC, user_id ASC
		LIMIT ?`, leaderboardSize).
		Scan(&rows).Error
	return rows, err
}

// topUpvotedTricks left-joins votes so zero-vote tricks still rank.
func (h *LeaderboardHandler) topUpvotedTricks() ([]topTrick, error) {
	rows := make([]topTrick, 0, leaderboardSize)
	err := h.DB.Table("tricks").
		Select("tricks.id AS id, tricks.title AS title, COUNT(trick_upvotes.id) AS upvote_count").
		Joins("LEFT JOIN trick_upvotes ON trick_upvotes.trick_id = tricks.id").
		Group("tricks.id, tricks.title").
		Order("upvote_count DESC, tricks.id ASC").
		Limit(leaderboardSize).
		Scan(&rows).Error
	return rows, err
}

func (h *LeaderboardHandler) GetLeaderboards(c *gin.Context) {
	trickContributors, err := h.topContributors("tricks")
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to compute leaderboards")
		return
	}
	topicContributors, err := h.topContributors("forum_topics")
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to compute leaderboards")
		return
	}
	commenters, err := h.topContributors("comments")
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to compute leaderboards")
		return
	}
	participants, err := h.forumParticipants()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to compute leaderboards")
		return
	}
	topTricks, err := h.topUpvotedTricks()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to compute leaderboards")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"trick_contributors": trickContributors,
		"topic_contributors": topicContributors,
		"commenters":         commenters,
		"forum_participants": participants,
		"top_upvoted_tricks": topTricks,
	})
}
