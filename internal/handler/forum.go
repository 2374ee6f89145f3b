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

// ForumHandler owns discussion topics and their replies.
type ForumHandler struct {
	DB *gorm.DB
}

func NewForumHandler(db *gorm.DB) *ForumHandler {
	return &ForumHandler{DB: db}
}

type topicResp struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Created     time.Time `json:"created"`
	UserID      uint      `json:"user_id"`
	Username    string    `json:"username"`
	UserRegion  string    `json:"user_region"`
	IsPinned    bool      `json:"is_pinned"`
	ReplyCount  int64     `json:"reply_count"`
}

func toTopicResp(t *models.ForumTopic, replies int64) topicResp {
	return topicResp{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Created:     t.CreatedAt,
		UserID:      t.UserID,
		Username:    t.User.Username,
		UserRegion:  t.User.Region,
		IsPinned:    t.IsPinned,
		ReplyCount:  replies,
	}
}

type replyResp struct {
	ID          uint      `json:"id"`
	Content     string    `json:"content"`
	Created     time.Time `json:"created"`
	TopicID     uint      `json:"topic_id"`
	UserID      uint      `json:"user_id"`
	Username    string    `json:"username"`
	UserRegion  string    `json:"user_region"`
	UpvoteCount int64     `json:"upvote_count"`
}

func toReplyResp(r *models.ForumReply, upvotes int64) replyResp {
	return replyResp{
		ID:          r.ID,
		Content:     r.Content,
		Created:     r.CreatedAt,
		TopicID:     r.TopicID,
		UserID:      r.UserID,
		Username:    r.User.Username,
		UserRegion:  r.User.Region,
		UpvoteCount: upvotes,
	}
}

// replyCounts returns reply totals per topic id in one grouped query.
func replyCounts(db *gorm.DB, topicIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(topicIDs))
	if len(topicIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		TopicID uint
		Total   int64
	}
	if err := db.Model(&models.ForumReply{}).
		Select("topic_id, COUNT(*) AS total").
		Where("topic_id IN ?", topicIDs).
		Group("topic_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, r := range rows {
		counts[r.TopicID] = r.Total
	}
	return counts, nil
}

// replyUpvoteCounts returns vote totals per reply id in one grouped query.
func replyUpvoteCounts(db *gorm.DB, replyIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(replyIDs))
	if len(replyIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		ReplyID uint
		Total   int64
	}
	if err := db.Model(&models.ReplyUpvote{}).
		Select("reply_id, COUNT(*) AS total").
		Where("reply_id IN ?", replyIDs).
		Group("reply_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, r := range rows {
		counts[r.ReplyID] = r.Total
	}
	return counts, nil
}

func (h *ForumHandler) listTopics(c *gin.Context, query *gorm.DB, order string) {
	var topics []models.ForumTopic
	if err := query.Preload("User").Order(order).Find(&topics).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to list topics")
		return
	}

	ids := make([]uint, 0, len(topics))
	for i := range topics {
		ids = append(ids, topics[i].ID)
	}
	counts, err := replyCounts(h.DB, ids)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to list topics")
		return
	}

	items := make([]topicResp, 0, len(topics))
	for i := range topics {
		items = append(items, toTopicResp(&topics[i], counts[topics[i].ID]))
	}
	c.JSON(http.StatusOK, items)
}

// ListTopics returns all topics, pinned ones first.
func (h *ForumHandler) ListTopics(c *gin.Context) {
	h.listTopics(c, h.DB.Model(&models.ForumTopic{}), "is_pinned DESC, created_at DESC")
}

func (h *ForumHandler) SearchTopics(c *gin.Context) {
	like := "%" + c.Query("q") + "%"
	h.listTopics(c,
		h.DB.Model(&models.ForumTopic{}).Where("LOWER(title) LIKE LOWER(?)", like),
		"created_at DESC")
}

type createTopicReq struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description"`
}

func (h *ForumHandler) CreateTopic(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "Token missing")
		return
	}

	var req createTopicReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "Title is required")
		return
	}

	topic := models.ForumTopic{
		Title:       req.Title,
		Description: req.Description,
		UserID:      userID,
	}
	if err := h.DB.Create(&topic).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to create topic")
		return
	}

	if err := h.DB.Preload("User").First(&topic, topic.ID).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to create topic")
		return
	}

	c.JSON(http.StatusCreated, toTopicResp(&topic, 0))
}

func (h *ForumHandler) GetTopic(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, "Invalid topic id")
		return
	}

	var topic models.ForumTopic
	if err := h.DB.Preload("User").First(&topic, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, "Topic not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "Failed to load topic")
		}
		return
	}

	counts, err := replyCounts(h.DB, []uint{topic.ID})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to load topic")
		return
	}

	c.JSON(http.StatusOK, toTopicResp(&topic, counts[topic.ID]))
}

// ListReplies returns a topic's replies oldest first.
func (h *ForumHandler) ListReplies(c *gin.Context) {
	topicID, err := strconv.Atoi(c.Param("id"))
	if err != nil || topicID <= 0 {
		util.Error(c, http.StatusBadRequest, "Invalid topic id")
		return
	}

	var replies []models.ForumReply
	if err := h.DB.Preload("User").
		Where("topic_id = ?", topicID).
		Order("created_at ASC").
		Find(&replies).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to list replies")
		return
	}

	ids := make([]uint, 0, len(replies))
	for i := range replies {
		ids = append(ids, replies[i].ID)
	}
	counts, err := replyUpvoteCounts(h.DB, ids)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to list replies")
		return
	}

	items := make([]replyResp, 0, len(replies))
	for i := range replies {
		items = append(items, toReplyResp(&replies[i], counts[replies[i].ID]))
	}
	c.JSON(http.StatusOK, items)
}

type createReplyReq struct {
	Content string `json:"content" binding:"required"`
}

func (h *ForumHandler) CreateReply(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "Token missing")
		return
	}

	topicID, err := strconv.Atoi(c.Param("id"))
	if err != nil || topicID <= 0 {
		util.Error(c, http.StatusBadRequest, "Invalid topic id")
		return
	}

	var req createReplyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "Content is required")
		return
	}

	var topic models.ForumTopic
	if err := h.DB.First(&topic, topicID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, "Topic not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "Failed to create reply")
		}
		return
	}

	reply := models.ForumReply{
		Content: req.Content,
		TopicID: uint(topicID),
		UserID:  userID,
	}
	if err := h.DB.Create(&reply).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to create reply")
		return
	}

	if err := h.DB.Preload("User").First(&reply, reply.ID).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to create reply")
		return
	}

	c.JSON(http.StatusCreated, toReplyResp(&reply, 0))
}
