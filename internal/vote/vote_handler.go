package vote

import (
	"context"
	"errors"

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

// AddUpvote godoc
// @Summary Upvote a post
// @Tags votes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /posts/{id}/upvote [post]
func (h *Handler) AddUpvote(c *gin.Context) {
	h.mutate(c, h.service.AddUpvote, "upvotes")
}

// RemoveUpvote godoc
// @Summary Retract an upvote
// @Tags votes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /posts/{id}/upvote [delete]
func (h *Handler) RemoveUpvote(c *gin.Context) {
	h.mutate(c, h.service.RemoveUpvote, "upvotes")
}

// AddDownvote godoc
// @Summary Downvote a post
// @Tags votes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /posts/{id}/downvote [post]
func (h *Handler) AddDownvote(c *gin.Context) {
	h.mutate(c, h.service.AddDownvote, "downvotes")
}

// RemoveDownvote godoc
// @Summary Retract a downvote
// @Tags votes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /posts/{id}/downvote [delete]
func (h *Handler) RemoveDownvote(c *gin.Context) {
	h.mutate(c, h.service.RemoveDownvote, "downvotes")
}

func (h *Handler) mutate(c *gin.Context, op func(ctx context.Context, postID, userID string) (int, error), field string) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}
	postID := c.Param("id")

	count, err := op(c.Request.Context(), postID, userID)
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			response.NotFound(c, "post not found")
			return
		}
		response.Unavailable(c, "vote store unavailable, retry later")
		return
	}

	response.OK(c, gin.H{"post_id": postID, field: count})
}

// GetTallies godoc
// @Summary Read the current vote counters for a post
// @Tags votes
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} map[string]interface{}
// @Router /posts/{id}/votes [get]
func (h *Handler) GetTallies(c *gin.Context) {
	postID := c.Param("id")
	ctx := c.Request.Context()

	up, err := h.service.Tally(ctx, postID, KindUp)
	if err != nil {
		response.Unavailable(c, "vote store unavailable, retry later")
		return
	}
	down, err := h.service.Tally(ctx, postID, KindDown)
	if err != nil {
		response.Unavailable(c, "vote store unavailable, retry later")
		return
	}

	response.OK(c, gin.H{
		"post_id":    postID,
		"upvotes":    up.Count,
		"upvoters":   up.Voters,
		"downvotes":  down.Count,
		"downvoters": down.Voters,
	})
}
