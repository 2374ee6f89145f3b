package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Maniok19/Wikitricks/internal/googleauth"
	"github.com/Maniok19/Wikitricks/internal/middleware"
	"github.com/Maniok19/Wikitricks/internal/models"
	"github.com/Maniok19/Wikitricks/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserHandler serves the current user's record and profile updates.
type UserHandler struct {
	DB         *gorm.DB
	BcryptCost int
	Google     googleauth.Verifier
}

func NewUserHandler(db *gorm.DB, bcryptCost int, google googleauth.Verifier) *UserHandler {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserHandler{DB: db, BcryptCost: bcryptCost, Google: google}
}

func (h *UserHandler) currentUser(c *gin.Context) (*models.User, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "Token missing")
		return nil, false
	}
	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, "User not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "Failed to load user")
		}
		return nil, false
	}
	return &user, true
}

// GetMe returns the authenticated user.
func (h *UserHandler) GetMe(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toUserResp(user))
}

type updateProfileReq struct {
	CurrentPassword string  `json:"currentPassword"`
	GoogleToken     string  `json:"googleToken"`
	Username        string  `json:"username" binding:"max=50"`
	Region          *string `json:"region" binding:"omitempty,max=100"`
	NewPassword     string  `json:"newPassword" binding:"omitempty,min=6,max=72"`
}

// UpdateProfile changes username/region/password after re-authentication:
// local accounts re-enter their password, Google accounts present a fresh
// Google assertion matching their linked identity.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req updateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "Invalid request")
		return
	}

	if user.GoogleID == nil {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
			util.Error(c, http.StatusUnauthorized, "Current password is incorrect")
			return
		}
	} else {
		if req.GoogleToken == "" {
			util.Error(c, http.StatusUnauthorized, "Google authentication required for profile update")
			return
		}
		identity, err := h.Google.Verify(c.Request.Context(), req.GoogleToken)
		if err != nil {
			util.Error(c, http.StatusUnauthorized, "Invalid Google token")
			return
		}
		if identity.Subject != *user.GoogleID || !strings.EqualFold(identity.Email, user.Email) {
			util.Error(c, http.StatusUnauthorized, "Google authentication failed")
			return
		}
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username != "" && req.Username != user.Username {
		var count int64
		if err := h.DB.Model(&models.User{}).Where("username = ?", req.Username).Count(&count).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, "Failed to update profile")
			return
		}
		if count > 0 {
			util.Error(c, http.StatusConflict, "Username already taken")
			return
		}
		user.Username = req.Username
	}

	if req.Region != nil {
		user.Region = *req.Region
	}

	// password changes only apply to local accounts
	if req.NewPassword != "" && user.GoogleID == nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), h.BcryptCost)
		if err != nil {
			util.Error(c, http.StatusInternalServerError, "Failed to update profile")
			return
		}
		user.PasswordHash = string(hash)
	}

	if err := h.DB.Save(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			util.Error(c, http.StatusConflict, "Username already taken")
		} else {
			util.Error(c, http.StatusInternalServerError, "Failed to update profile")
		}
		return
	}

	c.JSON(http.StatusOK, toUserResp(user))
}
