package util

import "github.com/gin-gonic/gin"

// Error writes the uniform error body used by every endpoint.
// The HTTP status carries the category (400 validation, 401 auth,
// 403 permission, 404 not found, 409 conflict, 429 throttled, 500 unexpected).
func Error(c *gin.Context, httpStatus int, msg string) {
	c.JSON(httpStatus, gin.H{"error": msg})
}
