package comment

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dikenang-service/internal/middleware"
	"dikenang-service/pkg/response"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Create godoc
// @Summary Comment on a post
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param request body CreateCommentRequest true "Comment payload"
// @Success 201 {object} Comment
// @Failure 404 {object} map[string]interface{}
// @Router /posts/{id}/comments [post]
func (h *Handler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.service.Create(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			response.NotFound(c, "post not found")
			return
		}
		response.Unavailable(c, "failed to create comment")
		return
	}
	response.Created(c, created)
}

// ListByPost godoc
// @Summary List a post's comments, oldest first
// @Tags comments
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {array} Comment
// @Failure 404 {object} map[string]interface{}
// @Router /posts/{id}/comments [get]
func (h *Handler) ListByPost(c *gin.Context) {
	comments, err := h.service.ListByPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			response.NotFound(c, "post not found")
			return
		}
		response.Unavailable(c, "failed to fetch comments")
		return
	}
	response.OK(c, comments)
}

// Delete godoc
// @Summary Delete a comment
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /comments/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	err := h.service.Delete(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrCommentNotFound):
			response.NotFound(c, "comment not found")
		case errors.Is(err, ErrForbidden):
			response.Error(c, http.StatusForbidden, "not the comment author")
		default:
			response.Unavailable(c, "failed to delete comment")
		}
		return
	}
	response.OK(c, gin.H{"deleted": true})
}
