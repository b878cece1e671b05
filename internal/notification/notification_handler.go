package notification

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dikenang-service/internal/middleware"
	"dikenang-service/pkg/response"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// List godoc
// @Summary List the caller's notifications, newest first
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Success 200 {array} Notification
// @Router /notifications [get]
func (h *Handler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	notifications, err := h.repo.ListFor(c.Request.Context(), userID, limit)
	if err != nil {
		response.Unavailable(c, "failed to fetch notifications")
		return
	}
	if notifications == nil {
		notifications = []Notification{}
	}
	response.OK(c, notifications)
}

// MarkRead godoc
// @Summary Mark a notification as read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /notifications/{id}/read [put]
func (h *Handler) MarkRead(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	err := h.repo.MarkRead(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "notification not found")
			return
		}
		response.Unavailable(c, "failed to update notification")
		return
	}
	response.OK(c, gin.H{"read": true})
}
