package handler

import (
	"net/http"
	"time"

	"github.com/Maniok19/Wikitricks/internal/models"
	"github.com/Maniok19/Wikitricks/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SkateparkHandler serves the park listings.
type SkateparkHandler struct {
	DB *gorm.DB
}

func NewSkateparkHandler(db *gorm.DB) *SkateparkHandler {
	return &SkateparkHandler{DB: db}
}

type skateparkResp struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Description string    `json:"description"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedBy   *uint     `json:"created_by"`
}

func toSkateparkResp(p *models.Skatepark) skateparkResp {
	return skateparkResp{
		ID:          p.ID,
		Name:        p.Name,
		Address:     p.Address,
		Description: p.Description,
		Lat:         p.Lat,
		Lng:         p.Lng,
		CreatedAt:   p.CreatedAt,
		CreatedBy:   p.CreatedBy,
	}
}

type createSkateparkReq struct {
	Name        string   `json:"name" binding:"required,max=100"`
	Address     string   `json:"address" binding:"required,max=200"`
	Description string   `json:"description" binding:"required"`
	Lat         *float64 `json:"lat" binding:"required"`
	Lng         *float64 `json:"lng" binding:"required"`
}

// CreateSkatepark accepts anonymous submissions, parks have no owner.
func (h *SkateparkHandler) CreateSkatepark(c *gin.Context) {
	var req createSkateparkReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "Missing required fields")
		return
	}

	park := models.Skatepark{
		Name:        req.Name,
		Address:     req.Address,
		Description: req.Description,
		Lat:         *req.Lat,
		Lng:         *req.Lng,
	}
	if err := h.DB.Create(&park).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to create skatepark")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Skatepark created successfully",
		"id":      park.ID,
	})
}

func (h *SkateparkHandler) ListSkateparks(c *gin.Context) {
	var parks []models.Skatepark
	if err := h.DB.Order("created_at DESC").Find(&parks).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to list skateparks")
		return
	}

	items := make([]skateparkResp, 0, len(parks))
	for i := range parks {
		items = append(items, toSkateparkResp(&parks[i]))
	}
	c.JSON(http.StatusOK, items)
}
