package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/Maniok19/Wikitricks/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Audit records authenticated write operations (everything except GET)
// so moderators can review who changed what. It only observes, the
// request outcome is untouched.
func Audit(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var bodyBytes []byte
		if c.Request.Method != http.MethodGet && c.Request.Body != nil {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		c.Next()

		if c.Request.Method == http.MethodGet {
			return
		}

		userID, ok := CurrentUserID(c)
		if !ok {
			return
		}

		path := c.Request.URL.Path
		action := c.Request.Method + " " + path
		// profile updates carry passwords, keep those bodies out of the log
		if path != "/user/profile" && len(bodyBytes) > 0 && len(bodyBytes) < 2000 {
			action += " " + string(bodyBytes)
		}

		log := models.AuditLog{
			UserID:    &userID,
			Path:      path,
			Method:    c.Request.Method,
			Action:    action,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}

		_ = db.Create(&log).Error
	}
}
