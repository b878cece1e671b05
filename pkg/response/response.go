package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error writes the standard error envelope.
func Error(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// NotFound writes a 404 with the standard envelope.
func NotFound(c *gin.Context, msg string) {
	Error(c, http.StatusNotFound, msg)
}

// Unauthorized writes a 401 with the standard envelope.
func Unauthorized(c *gin.Context, msg string) {
	Error(c, http.StatusUnauthorized, msg)
}

// Unavailable writes a 503 for persistence or broker outages. The
// client is expected to retry.
func Unavailable(c *gin.Context, msg string) {
	Error(c, http.StatusServiceUnavailable, msg)
}

// OK writes a 200 with the given body.
func OK(c *gin.Context, body interface{}) {
	c.JSON(http.StatusOK, body)
}

// Created writes a 201 with the given body.
func Created(c *gin.Context, body interface{}) {
	c.JSON(http.StatusCreated, body)
}
