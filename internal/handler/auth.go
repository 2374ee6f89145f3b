package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Maniok19/Wikitricks/internal/googleauth"
	"github.com/Maniok19/Wikitricks/internal/mail"
	"github.com/Maniok19/Wikitricks/internal/models"
	"github.com/Maniok19/Wikitricks/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler owns registration, email verification, login and the
// password-reset flow.
type AuthHandler struct {
	DB         *gorm.DB
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
	Mailer     mail.Mailer
	Google     googleauth.Verifier
}

func NewAuthHandler(db *gorm.DB, jwtSecret string, ttlHours, bcryptCost int, mailer mail.Mailer, google googleauth.Verifier) *AuthHandler {
	if ttlHours <= 0 {
		ttlHours = 24
	}
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthHandler{
		DB:         db,
		JWTSecret:  jwtSecret,
		TokenTTL:   time.Duration(ttlHours) * time.Hour,
		BcryptCost: bcryptCost,
		Mailer:     mailer,
		Google:     google,
	}
}

func toUserResp(u *models.User) gin.H {
	return gin.H{
		"id":          u.ID,
		"email":       u.Email,
		"username":    u.Username,
		"region":      u.Region,
		"is_verified": u.IsVerified,
		"is_admin":    u.IsAdmin,
		"google_id":   u.GoogleID != nil,
	}
}

// ---------- register ----------

type registerReq struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,max=50"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Region   string `json:"region" binding:"max=100"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "Missing required data")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Username = strings.TrimSpace(req.Username)

	var count int64
	if err := h.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to create user")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusConflict, "Email already exists")
		return
	}

	if err := h.DB.Model(&models.User{}).Where("username = ?", req.Username).Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to create user")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusConflict, "Username already exists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.BcryptCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	verificationToken, err := util.GeneratePurposeToken(h.JWTSecret, req.Email, util.PurposeEmailVerify)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	user := models.User{
		Email:             req.Email,
		Username:          req.Username,
		Region:            req.Region,
		PasswordHash:      string(hash),
		VerificationToken: &verificationToken,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		// the unique indexes win over the check above under concurrency
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			util.Error(c, http.StatusConflict, "Email or username already exists")
		} else {
			util.Error(c, http.StatusInternalServerError, "Failed to create user")
		}
		return
	}

	if err := h.Mailer.SendVerificationEmail(user.Email, verificationToken); err != nil {
		// the account exists either way, the user can ask for a re-send
		log.Printf("send verification email to %s: %v", user.Email, err)
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully. Please check your email to verify your account.",
	})
}

// ---------- email verification ----------

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Param("token")

	email, err := util.ParsePurposeToken(h.JWTSecret, token, util.PurposeEmailVerify, 24*time.Hour)
	if err != nil {
		util.Error(c, http.StatusBadRequest, "Invalid or expired verification link")
		return
	}

	var user models.User
	if err := h.DB.Where("email = ?", email).First(&user).Error; err != nil {
		util.Error(c, http.StatusNotFound, "Invalid verification link")
		return
	}

	user.IsVerified = true
	user.VerificationToken = nil
	if err := h.DB.Save(&user).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to verify email")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email verified successfully"})
}

// ---------- login ----------

type loginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "Missing credentials")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusUnauthorized, "Invalid credentials")
		} else {
			util.Error(c, http.StatusInternalServerError, "Failed to log in")
		}
		return
	}

	if !user.IsVerified {
		util.Error(c, http.StatusForbidden, "Please verify your email before logging in")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		util.Error(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := util.GenerateToken(h.JWTSecret, user.ID, h.TokenTTL)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  toUserResp(&user),
	})
}

// ---------- google sign-in ----------

type googleAuthReq struct {
	Token string `json:"token" binding:"required"`
}

func (h *AuthHandler) GoogleAuth(c *gin.Context) {
	var req googleAuthReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "Token is required")
		return
	}

	identity, err := h.Google.Verify(c.Request.Context(), req.Token)
	if err != nil {
		util.Error(c, http.StatusUnauthorized, "Invalid Google token")
		return
	}

	email := strings.ToLower(identity.Email)

	var user models.User
	err = h.DB.Where("email = ?", email).First(&user).Error
	switch {
	case err == nil:
		// link the google id to the existing local account on first sight
		if user.GoogleID == nil {
			user.GoogleID = &identity.Subject
			if err := h.DB.Save(&user).Error; err != nil {
				util.Error(c, http.StatusInternalServerError, "Failed to log in")
				return
			}
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		user, err = h.createGoogleUser(email, identity)
		if err != nil {
			util.Error(c, http.StatusInternalServerError, "Failed to create user")
			return
		}
	default:
		util.Error(c, http.StatusInternalServerError, "Failed to log in")
		return
	}

	token, err := util.GenerateToken(h.JWTSecret, user.ID, h.TokenTTL)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  toUserResp(&user),
	})
}

// createGoogleUser provisions a pre-verified account for a first-time
// Google sign-in. The stored password is a random placeholder that can
// never be presented, these accounts authenticate with Google only.
func (h *AuthHandler) createGoogleUser(email string, identity *googleauth.Identity) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), h.BcryptCost)
	if err != nil {
		return models.User{}, err
	}

	username := identity.Name
	if username == "" {
		username = strings.SplitN(email, "@", 2)[0]
	}
	var count int64
	if err := h.DB.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return models.User{}, err
	}
	if count > 0 {
		username = username + "-" + uuid.NewString()[:8]
	}

	user := models.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		IsVerified:   true,
		GoogleID:     &identity.Subject,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

// ---------- password reset ----------

type forgotPasswordReq struct {
	Email string `json:"email" binding:"required"`
}

const resetSentMsg = "If this email exists, you will receive a password reset link"

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "Email is required")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		// same answer whether the account exists or not
		c.JSON(http.StatusOK, gin.H{"message": resetSentMsg})
		return
	}

	resetToken, err := util.GeneratePurposeToken(h.JWTSecret, user.Email, util.PurposePasswordReset)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to send reset email")
		return
	}
	if err := h.Mailer.SendPasswordResetEmail(user.Email, resetToken); err != nil {
		log.Printf("send password reset email to %s: %v", user.Email, err)
	}

	c.JSON(http.StatusOK, gin.H{"message": resetSentMsg})
}

type resetPasswordReq struct {
	Password string `json:"password" binding:"required,min=6,max=72"`
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "Password is required")
		return
	}

	email, err := util.ParsePurposeToken(h.JWTSecret, c.Param("token"), util.PurposePasswordReset, time.Hour)
	if err != nil {
		util.Error(c, http.StatusBadRequest, "Invalid or expired reset link")
		return
	}

	var user models.User
	if err := h.DB.Where("email = ?", email).First(&user).Error; err != nil {
		util.Error(c, http.StatusNotFound, "Invalid reset link")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.BcryptCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to reset password")
		return
	}

	if err := h.DB.Model(&user).Update("password_hash", string(hash)).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Failed to reset password")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}
