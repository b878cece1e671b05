package post

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dikenang-service/internal/middleware"
	"dikenang-service/pkg/response"
)

const maxAttachmentSize = 32 << 20 // 32 MiB

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// CreatePost godoc
// @Summary Create a post, optionally with an attachment
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param caption formData string true "Caption"
// @Param type formData string false "public or private"
// @Param attachment formData file false "Attachment file"
// @Success 201 {object} Post
// @Router /posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req CreatePostRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	var upload *Upload
	if fileHeader, err := c.FormFile("attachment"); err == nil {
		if fileHeader.Size > maxAttachmentSize {
			response.Error(c, http.StatusRequestEntityTooLarge, "attachment too large")
			return
		}
		f, err := fileHeader.Open()
		if err != nil {
			response.Error(c, http.StatusBadRequest, "failed to read attachment")
			return
		}
		defer f.Close()
		upload = &Upload{
			Filename:    fileHeader.Filename,
			ContentType: fileHeader.Header.Get("Content-Type"),
			Size:        fileHeader.Size,
			Reader:      f,
		}
	}

	p, err := h.service.CreatePost(c.Request.Context(), userID, req, upload)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidType), errors.Is(err, ErrNoAudience):
			response.Error(c, http.StatusBadRequest, err.Error())
		default:
			response.Unavailable(c, "failed to create post")
		}
		return
	}
	response.Created(c, p)
}

// GetPublicFeed godoc
// @Summary List public posts, newest first
// @Tags posts
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {array} Post
// @Router /posts [get]
func (h *Handler) GetPublicFeed(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	posts, err := h.service.PublicFeed(c.Request.Context(), limit, offset)
	if err != nil {
		response.Unavailable(c, "failed to fetch posts")
		return
	}
	response.OK(c, posts)
}

// GetRelationshipFeed godoc
// @Summary List the caller's private relationship memories
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} Post
// @Router /posts/memories [get]
func (h *Handler) GetRelationshipFeed(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	posts, err := h.service.RelationshipFeed(c.Request.Context(), userID)
	if err != nil {
		response.Unavailable(c, "failed to fetch posts")
		return
	}
	response.OK(c, posts)
}

// GetPost godoc
// @Summary Get a post by ID
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} Post
// @Failure 404 {object} map[string]interface{}
// @Router /posts/{id} [get]
func (h *Handler) GetPost(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	p, err := h.service.GetPost(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "post not found")
			return
		}
		response.Unavailable(c, "failed to fetch post")
		return
	}
	response.OK(c, p)
}

// DeletePost godoc
// @Summary Delete a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /posts/{id} [delete]
func (h *Handler) DeletePost(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	err := h.service.DeletePost(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(c, "post not found")
		case errors.Is(err, ErrForbidden):
			response.Error(c, http.StatusForbidden, "not the post author")
		default:
			response.Unavailable(c, "failed to delete post")
		}
		return
	}
	response.OK(c, gin.H{"deleted": true})
}
