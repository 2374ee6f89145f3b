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

// TrickHandler owns the trick catalogue.
type TrickHandler struct {
	DB *gorm.DB
}

func NewTrickHandler(db *gorm.DB) *TrickHandler {
	return &TrickHandler{DB: db}
}

type trickResp struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	VideoURL    string    `json:"video_url"`
	Difficulty  string    `json:"difficulty"`
	Created     time.Time `json:"created"`
	UpvoteCount int64     `json:"upvote_count"`
}

func toTrickResp(t *models.Trick, upvotes int64) trickResp {
	return trickResp{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		VideoURL:    util.NormalizeVideoURL(t.VideoURL),
		Difficulty:  t.Difficulty,
		Created:     t.CreatedAt,
		UpvoteCount: upvotes,
	}
}

// trickUpvoteCounts returns vote totals per trick id in one grouped query.
func trickUpvoteCounts(db *gorm.DB, trickIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(trickIDs))
	if len(trickIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		TrickID uint
		Total   int64
	}
	if err := db.Model(&models.TrickUpvote{}).
		Select("trick_id, COUNT(*) AS total").
		Where("trick_id IN ?", trickIDs).
		Group("trick_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, r := range rows {
		counts[r.TrickID] = r.Total
	}
	return counts, nil
}

type createTrickReq struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"required"`
	VideoURL    string `json:"videoUrl" binding:"required,max=255"`
	Difficulty  string `json:"difficulty" binding:"required,max=50"`
}

func (h *TrickHandler) CreateTrick(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "Token missing")
		return
	}

	var req createTrickReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "Missing required fields")
		return
	}

	trick := models.Trick{
		Title:       req.Name,
		Description: req.Description,
		VideoURL:    req.VideoURL,
		Difficulty:  req.Difficulty,
		UserID:      userID,
	}
	if err := h.DB.Create(&trick).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to create trick")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Trick created successfully",
		"id":      trick.ID,
	})
}

func (h *TrickHandler) listTricks(c *gin.Context, query *gorm.DB) {
	var tricks []models.Trick
	if err := query.Order("created_at DESC").Find(&tricks).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to list tricks")
		return
	}

	ids := make([]uint, 0, len(tricks))
	for i := range tricks {
		ids = append(ids, tricks[i].ID)
	}
	counts, err := trickUpvoteCounts(h.DB, ids)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to list tricks")
		return
	}

	items := make([]trickResp, 0, len(tricks))
	for i := range tricks {
		items = append(items, toTrickResp(&tricks[i], counts[tricks[i].ID]))
	}
	c.JSON(http.StatusOK, items)
}

func (h *TrickHandler) ListTricks(c *gin.Context) {
	h.listTricks(c, h.DB.Model(&models.Trick{}))
}

func (h *TrickHandler) SearchTricks(c *gin.Context) {
	q := c.Query("q")
	like := "%" + q + "%"
	h.listTricks(c, h.DB.Model(&models.Trick{}).Where("LOWER(title) LIKE LOWER(?)", like))
}

func (h *TrickHandler) GetTrick(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, "Invalid trick id")
		return
	}

	var trick models.Trick
	if err := h.DB.First(&trick, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, "Trick not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "Failed to load trick")
		}
		return
	}

	counts, err := trickUpvoteCounts(h.DB, []uint{trick.ID})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to load trick")
		return
	}

	c.JSON(http.StatusOK, toTrickResp(&trick, counts[trick.ID]))
}

// DeleteTrick removes a trick with its comments and votes. Owners delete
// their own tricks, admins delete any.
func (h *TrickHandler) DeleteTrick(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "Token missing")
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, "Invalid trick id")
		return
	}

	var trick models.Trick
	if err := h.DB.First(&trick, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, "Trick not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "Failed to load trick")
		}
		return
	}

	if trick.UserID != userID {
		var user models.User
		if err := h.DB.First(&user, userID).Error; err != nil || !user.IsAdmin {
			util.Error(c, http.StatusForbidden, "Permission denied")
			return
		}
	}

	if err := deleteTrickCascade(h.DB, trick.ID); err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to delete trick")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Trick deleted successfully"})
}

// deleteTrickCascade removes the trick and its dependent rows in one
// transaction so a failure partway rolls back fully.
func deleteTrickCascade(db *gorm.DB, trickID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("trick_id = ?", trickID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("trick_id = ?", trickID).Delete(&models.TrickUpvote{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Trick{}, trickID).Error
	})
}
