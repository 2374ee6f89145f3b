package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Maniok19/Wikitricks/internal/middleware"
	"github.com/Maniok19/Wikitricks/internal/models"
	"github.com/Maniok19/Wikitricks/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// VoteHandler is the toggle-vote ledger for tricks and forum replies.
// The application-level exists check is only an optimization, the
// composite unique indexes on the vote tables are the source of truth.
type VoteHandler struct {
	DB *gorm.DB
}

func NewVoteHandler(db *gorm.DB) *VoteHandler {
	return &VoteHandler{DB: db}
}

func targetID(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return uint(id), true
}

// ToggleTrickUpvote flips the caller's vote on a trick and returns the
// resulting state with the post-mutation total.
func (h *VoteHandler) ToggleTrickUpvote(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "Token missing")
		return
	}
	trickID, ok := targetID(c)
	if !ok {
		return
	}

	var trick models.Trick
	if err := h.DB.First(&trick, trickID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, "Trick not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "Failed to upvote")
		}
		return
	}

	var existing models.TrickUpvote
	err := h.DB.Where("user_id = ? AND trick_id = ?", userID, trickID).First(&existing).Error
	switch {
	case err == nil:
		if err := h.DB.Delete(&existing).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, "Failed to remove upvote")
			return
		}
		h.respondTrickVote(c, trickID, false, "Upvote removed")

	case errors.Is(err, gorm.ErrRecordNotFound):
		upvote := models.TrickUpvote{UserID: userID, TrickID: trickID}
		if cerr := h.DB.Create(&upvote).Error; cerr != nil && !h.trickVoteExists(userID, trickID, cerr) {
			util.Error(c, http.StatusInternalServerError, "Failed to upvote")
			return
		}
		h.respondTrickVote(c, trickID, true, "Trick upvoted")

	default:
		util.Error(c, http.StatusInternalServerError, "Failed to upvote")
	}
}

// trickVoteExists decides whether a failed insert actually lost a race
// against an identical concurrent toggle, in which case the vote is
// already on record and the request degrades to a no-op.
func (h *VoteHandler) trickVoteExists(userID, trickID uint, insertErr error) bool {
	if errors.Is(insertErr, gorm.ErrDuplicatedKey) {
		return true
	}
	var count int64
	if err := h.DB.Model(&models.TrickUpvote{}).
		Where("user_id = ? AND trick_id = ?", userID, trickID).
		Count(&count).Error; err != nil {
		return false
	}
	return count > 0
}

func (h *VoteHandler) respondTrickVote(c *gin.Context, trickID uint, upvoted bool, msg string) {
	var count int64
	if err := h.DB.Model(&models.TrickUpvote{}).Where("trick_id = ?", trickID).Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to count upvotes")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      msg,
		"upvoted":      upvoted,
		"upvote_count": count,
	})
}

// TrickUpvoteStatus reports whether the caller has voted and the total.
func (h *VoteHandler) TrickUpvoteStatus(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "Token missing")
		return
	}
	trickID, ok := targetID(c)
	if !ok {
		return
	}

	var trick models.Trick
	if err := h.DB.First(&trick, trickID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, "Trick not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "Failed to load status")
		}
		return
	}

	var voted, count int64
	if err := h.DB.Model(&models.TrickUpvote{}).
		Where("user_id = ? AND trick_id = ?", userID, trickID).
		Count(&voted).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to load status")
		return
	}
	if err := h.DB.Model(&models.TrickUpvote{}).Where("trick_id = ?", trickID).Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to load status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"upvoted":      voted > 0,
		"upvote_count": count,
	})
}

// ToggleReplyUpvote mirrors ToggleTrickUpvote for forum replies.
func (h *VoteHandler) ToggleReplyUpvote(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "Token missing")
		return
	}
	replyID, ok := targetID(c)
	if !ok {
		return
	}

	var reply models.ForumReply
	if err := h.DB.First(&reply, replyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, "Reply not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "Failed to upvote")
		}
		return
	}

	var existing models.ReplyUpvote
	err := h.DB.Where("user_id = ? AND reply_id = ?", userID, replyID).First(&existing).Error
	switch {
	case err == nil:
		if err := h.DB.Delete(&existing).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, "Failed to remove upvote")
			return
		}
		h.respondReplyVote(c, replyID, false, "Upvote removed")

	case errors.Is(err, gorm.ErrRecordNotFound):
		upvote := models.ReplyUpvote{UserID: userID, ReplyID: replyID}
		if cerr := h.DB.Create(&upvote).Error; cerr != nil && !h.replyVoteExists(userID, replyID, cerr) {
			util.Error(c, http.StatusInternalServerError, "Failed to upvote")
			return
		}
		h.respondReplyVote(c, replyID, true, "Reply upvoted")

	default:
		util.Error(c, http.StatusInternalServerError, "Failed to upvote")
	}
}

func (h *VoteHandler) replyVoteExists(userID, replyID uint, insertErr error) bool {
	if errors.Is(insertErr, gorm.ErrDuplicatedKey) {
		return true
	}
	var count int64
	if err := h.DB.Model(&models.ReplyUpvote{}).
		Where("user_id = ? AND reply_id = ?", userID, replyID).
		Count(&count).Error; err != nil {
		return false
	}
	return count > 0
}

func (h *VoteHandler) respondReplyVote(c *gin.Context, replyID uint, upvoted bool, msg string) {
	var count int64
	if err := h.DB.Model(&models.ReplyUpvote{}).Where("reply_id = ?", replyID).Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to count upvotes")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      msg,
		"upvoted":      upvoted,
		"upvote_count": count,
	})
}

// ReplyUpvoteStatus reports whether the caller has voted and the total.
func (h *VoteHandler) ReplyUpvoteStatus(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "Token missing")
		return
	}
	replyID, ok := targetID(c)
	if !ok {
		return
	}

	var reply models.ForumReply
	if err := h.DB.First(&reply, replyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, "Reply not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "Failed to load status")
		}
		return
	}

	var voted, count int64
	if err := h.DB.Model(&models.ReplyUpvote{}).
		Where("user_id = ? AND reply_id = ?", userID, replyID).
		Count(&voted).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to load status")
		return
	}
	if err := h.DB.Model(&models.ReplyUpvote{}).Where("reply_id = ?", replyID).Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to load status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"upvoted":      voted > 0,
		"upvote_count": count,
	})
}
