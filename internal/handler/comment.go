package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Maniok19/Wikitricks/internal/middleware"
	"github.com/Maniok19/Wikitricks/internal/models"
	"github.com/Maniok19/Wikitricks/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CommentHandler serves comments under a trick.
type CommentHandler struct {
	DB *gorm.DB
}

func NewCommentHandler(db *gorm.DB) *CommentHandler {
	return &CommentHandler{DB: db}
}

type commentResp struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	Created   time.Time `json:"created"`
	CreatedAt time.Time `json:"created_at"`
	TrickID   uint      `json:"trick_id"`
	UserEmail string    `json:"user_email"`
	Username  string    `json:"username"`
	Region    string    `json:"region"`
}

func toCommentResp(cm *models.Comment) commentResp {
	return commentResp{
		ID:        cm.ID,
		Content:   cm.Content,
		Created:   cm.CreatedAt,
		CreatedAt: cm.CreatedAt,
		TrickID:   cm.TrickID,
		UserEmail: cm.User.Email,
		Username:  cm.User.Username,
		Region:    cm.User.Region,
	}
}

func (h *CommentHandler) ListComments(c *gin.Context) {
	trickID, err := strconv.Atoi(c.Param("id"))
	if err != nil || trickID <= 0 {
		util.Error(c, http.StatusBadRequest, "Invalid trick id")
		return
	}

	var comments []models.Comment
	if err := h.DB.Preload("User").
		Where("trick_id = ?", trickID).
		Order("created_at DESC").
		Find(&comments).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to list comments")
		return
	}

	items := make([]commentResp, 0, len(comments))
	for i := range comments {
		items = append(items, toCommentResp(&comments[i]))
	}
	c.JSON(http.StatusOK, items)
}

type createCommentReq struct {
	Content string `json:"content" binding:"required"`
}

func (h *CommentHandler) CreateComment(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "Token missing")
		return
	}

	trickID, err := strconv.Atoi(c.Param("id"))
	if err != nil || trickID <= 0 {
		util.Error(c, http.StatusBadRequest, "Invalid trick id")
		return
	}

	var req createCommentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "Missing content")
		return
	}

	var trick models.Trick
	if err := h.DB.First(&trick, trickID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, "Trick not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "Failed to create comment")
		}
		return
	}

	comment := models.Comment{
		Content: req.Content,
		TrickID: uint(trickID),
		UserID:  userID,
	}
	if err := h.DB.Create(&comment).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to create comment")
		return
	}

	if err := h.DB.Preload("User").First(&comment, comment.ID).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to create comment")
		return
	}

	c.JSON(http.StatusCreated, toCommentResp(&comment))
}
