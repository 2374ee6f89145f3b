package handler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Maniok19/Wikitricks/internal/models"
	"github.com/Maniok19/Wikitricks/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// AdminHandler is the moderation surface. Every route is mounted behind
// AdminRequired.
type AdminHandler struct {
	DB       *gorm.DB
	PageSize int
}

func NewAdminHandler(db *gorm.DB, pageSize int) *AdminHandler {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &AdminHandler{DB: db, PageSize: pageSize}
}

// ---------- dashboard ----------

func (h *AdminHandler) Dashboard(c *gin.Context) {
	var totalUsers, totalTricks, totalTopics, totalComments, totalReplies int64
	counts := []struct {
		model any
		dst   *int64
	}{
		{&models.User{}, &totalUsers},
		{&models.Trick{}, &totalTricks},
		{&models.ForumTopic{}, &totalTopics},
		{&models.Comment{}, &totalComments},
		{&models.ForumReply{}, &totalReplies},
	}
	for _, cnt := range counts {
		if err := h.DB.Model(cnt.model).Count(cnt.dst).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, "Failed to load dashboard")
			return
		}
	}

	var recentTricks []models.Trick
	if err := h.DB.Order("created_at DESC").Limit(5).Find(&recentTricks).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}
	trickIDs := make([]uint, 0, len(recentTricks))
	for i := range recentTricks {
		trickIDs = append(trickIDs, recentTricks[i].ID)
	}
	voteTotals, err := trickUpvoteCounts(h.DB, trickIDs)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}
	tricks := make([]trickResp, 0, len(recentTricks))
	for i := range recentTricks {
		tricks = append(tricks, toTrickResp(&recentTricks[i], voteTotals[recentTricks[i].ID]))
	}

	var recentTopics []models.ForumTopic
	if err := h.DB.Preload("User").Order("created_at DESC").Limit(5).Find(&recentTopics).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}
	topicIDs := make([]uint, 0, len(recentTopics))
	for i := range recentTopics {
		topicIDs = append(topicIDs, recentTopics[i].ID)
	}
	replyTotals, err := replyCounts(h.DB, topicIDs)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}
	topics := make([]topicResp, 0, len(recentTopics))
	for i := range recentTopics {
		topics = append(topics, toTopicResp(&recentTopics[i], replyTotals[recentTopics[i].ID]))
	}

	var recentUsers []models.User
	if err := h.DB.Order("created_at DESC").Limit(5).Find(&recentUsers).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}
	users := make([]gin.H, 0, len(recentUsers))
	for i := range recentUsers {
		users = append(users, toUserResp(&recentUsers[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"stats": gin.H{
			"total_users":    totalUsers,
			"total_tricks":   totalTricks,
			"total_topics":   totalTopics,
			"total_comments": totalComments,
			"total_replies":  totalReplies,
		},
		"recent_activity": gin.H{
			"tricks": tricks,
			"topics": topics,
			"users":  users,
		},
	})
}

// ---------- moderation deletes ----------

func (h *AdminHandler) DeleteTrick(c *gin.Context) {
	id, ok := targetID(c)
	if !ok {
		return
	}

	var trick models.Trick
	if err := h.DB.First(&trick, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, "Trick not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "Failed to delete trick")
		}
		return
	}

	if err := deleteTrickCascade(h.DB, trick.ID); err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to delete trick")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Trick deleted successfully"})
}

func (h *AdminHandler) DeleteComment(c *gin.Context) {
	id, ok := targetID(c)
	if !ok {
		return
	}

	var comment models.Comment
	if err := h.DB.First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, "Comment not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "Failed to delete comment")
		}
		return
	}

	if err := h.DB.Delete(&comment).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to delete comment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}

// DeleteTopic removes a topic, its replies and the votes on those replies
// in one transaction.
func (h *AdminHandler) DeleteTopic(c *gin.Context) {
	id, ok := targetID(c)
	if !ok {
		return
	}

	var topic models.ForumTopic
	if err := h.DB.First(&topic, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, "Topic not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "Failed to delete topic")
		}
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("reply_id IN (?)",
			tx.Model(&models.ForumReply{}).Select("id").Where("topic_id = ?", topic.ID),
		).Delete(&models.ReplyUpvote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("topic_id = ?", topic.ID).Delete(&models.ForumReply{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.ForumTopic{}, topic.ID).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to delete topic")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Forum topic deleted successfully"})
}

func (h *AdminHandler) DeleteReply(c *gin.Context) {
	id, ok := targetID(c)
	if !ok {
		return
	}

	var reply models.ForumReply
	if err := h.DB.First(&reply, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, "Reply not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "Failed to delete reply")
		}
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("reply_id = ?", reply.ID).Delete(&models.ReplyUpvote{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.ForumReply{}, reply.ID).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to delete reply")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Forum reply deleted successfully"})
}

// ---------- admin flag ----------

func (h *AdminHandler) ToggleAdmin(c *gin.Context) {
	id, ok := targetID(c)
	if !ok {
		return
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, "User not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "Failed to update user")
		}
		return
	}

	user.IsAdmin = !user.IsAdmin
	if err := h.DB.Model(&user).Update("is_admin", user.IsAdmin).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to update user")
		return
	}

	verb := "revoked"
	if user.IsAdmin {
		verb = "granted"
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  fmt.Sprintf("Admin status %s for user %s", verb, user.Username),
		"is_admin": user.IsAdmin,
	})
}

// ---------- audit log ----------

type auditLogResp struct {
	ID        uint      `json:"id"`
	UserID    *uint     `json:"user_id"`
	Path      string    `json:"path"`
	Method    string    `json:"method"`
	Action    string    `json:"action"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

// ListLogs returns the audit trail of authenticated mutations, newest
// first, paginated.
func (h *AdminHandler) ListLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(h.PageSize)))
	if size <= 0 || size > 100 {
		size = h.PageSize
	}
	offset := (page - 1) * size

	var total int64
	if err := h.DB.Model(&models.AuditLog{}).Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to list logs")
		return
	}

	var logs []models.AuditLog
	if err := h.DB.Order("created_at DESC, id DESC").
		Limit(size).
		Offset(offset).
		Find(&logs).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to list logs")
		return
	}

	items := make([]auditLogResp, 0, len(logs))
	for i := range logs {
		l := &logs[i]
		items = append(items, auditLogResp{
			ID:        l.ID,
			UserID:    l.UserID,
			Path:      l.Path,
			Method:    l.Method,
			Action:    l.Action,
			IP:        l.IP,
			UserAgent: l.UserAgent,
			CreatedAt: l.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": total,
		"page":  page,
		"size":  size,
	})
}

// ---------- tricks export ----------

type exportRow struct {
	ID         uint
	Title      string
	Difficulty string
	Username   string
	Upvotes    int64
	CreatedAt  time.Time
}

func (h *AdminHandler) exportRows() ([]exportRow, error) {
	var rows []exportRow
	err := h.DB.Table("tricks").
		Select(`tricks.id AS id, tricks.title AS title, tricks.difficulty AS difficulty,
			users.username AS username, COUNT(trick_upvotes.id) AS upvotes, tricks.created_at AS created_at`).
		Joins("JOIN users ON users.id = tricks.user_id").
		Joins("LEFT JOIN trick_upvotes ON trick_upvotes.trick_id = tricks.id").
		Group("tricks.id, tricks.title, tricks.difficulty, users.username, tricks.created_at").
		Order("tricks.created_at DESC").
		Scan(&rows).Error
	return rows, err
}

var exportHeaders = []string{"ID", "Title", "Difficulty", "Author", "Upvotes", "Created"}

// ExportTricksCSV streams the trick catalogue for offline moderation.
func (h *AdminHandler) ExportTricksCSV(c *gin.Context) {
	rows, err := h.exportRows()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to export tricks")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"tricks_%s.csv\"",
		time.Now().Format("20060102")))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeaders)
	for _, r := range rows {
		writer.Write([]string{
			strconv.FormatUint(uint64(r.ID), 10),
			r.Title,
			r.Difficulty,
			r.Username,
			strconv.FormatInt(r.Upvotes, 10),
			r.CreatedAt.Format("2006-01-02"),
		})
	}
}

// ExportTricksXLSX is the spreadsheet variant of the catalogue export.
func (h *AdminHandler) ExportTricksXLSX(c *gin.Context) {
	rows, err := h.exportRows()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to export tricks")
		return
	}

	f := excelize.NewFile()
	sheetName := "Tricks"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to export tricks")
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, header := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for idx, r := range rows {
		row := idx + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), r.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), r.Title)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), r.Difficulty)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), r.Username)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), r.Upvotes)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), r.CreatedAt.Format("2006-01-02"))
	}

	f.SetColWidth(sheetName, "B", "B", 30)
	f.SetColWidth(sheetName, "D", "D", 20)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"tricks_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to export tricks")
	}
}
