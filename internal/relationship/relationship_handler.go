package relationship

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

// Invite godoc
// @Summary Invite a partner
// @Tags relationships
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body InviteRequest true "Invite payload"
// @Success 201 {object} Invite
// @Failure 409 {object} map[string]interface{}
// @Router /relationships/invites [post]
func (h *Handler) Invite(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	inv, err := h.service.Invite(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			response.NotFound(c, "user not found")
		case errors.Is(err, ErrSelfInvite):
			response.Error(c, http.StatusBadRequest, "cannot invite yourself")
		case errors.Is(err, ErrAlreadyLinked):
			response.Error(c, http.StatusConflict, "already in a relationship")
		default:
			response.Unavailable(c, "failed to create invite")
		}
		return
	}
	response.Created(c, inv)
}

// Accept godoc
// @Summary Accept a partner invite
// @Tags relationships
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invite ID"
// @Success 200 {object} RelationshipResponse
// @Failure 404 {object} map[string]interface{}
// @Router /relationships/invites/{id}/accept [post]
func (h *Handler) Accept(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	rel, err := h.service.Accept(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrInviteNotFound):
			response.NotFound(c, "invite not found")
		case errors.Is(err, ErrNotInvitee):
			response.Error(c, http.StatusForbidden, "invite addressed to someone else")
		case errors.Is(err, ErrInviteSettled):
			response.Error(c, http.StatusConflict, "invite already settled")
		case errors.Is(err, ErrAlreadyLinked):
			response.Error(c, http.StatusConflict, "already in a relationship")
		default:
			response.Unavailable(c, "failed to accept invite")
		}
		return
	}
	response.OK(c, rel)
}

// Decline godoc
// @Summary Decline a partner invite
// @Tags relationships
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invite ID"
// @Success 200 {object} map[string]interface{}
// @Router /relationships/invites/{id}/decline [post]
func (h *Handler) Decline(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	if err := h.service.Decline(c.Request.Context(), userID, c.Param("id")); err != nil {
		switch {
		case errors.Is(err, ErrInviteNotFound):
			response.NotFound(c, "invite not found")
		case errors.Is(err, ErrNotInvitee):
			response.Error(c, http.StatusForbidden, "invite addressed to someone else")
		case errors.Is(err, ErrInviteSettled):
			response.Error(c, http.StatusConflict, "invite already settled")
		default:
			response.Unavailable(c, "failed to decline invite")
		}
		return
	}
	response.OK(c, gin.H{"declined": true})
}

// PendingInvites godoc
// @Summary List the caller's pending invites
// @Tags relationships
// @Produce json
// @Security BearerAuth
// @Success 200 {array} Invite
// @Router /relationships/invites [get]
func (h *Handler) PendingInvites(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	invites, err := h.service.PendingInvites(c.Request.Context(), userID)
	if err != nil {
		response.Unavailable(c, "failed to fetch invites")
		return
	}
	response.OK(c, invites)
}

// Get godoc
// @Summary Get the caller's relationship
// @Tags relationships
// @Produce json
// @Security BearerAuth
// @Success 200 {object} RelationshipResponse
// @Failure 404 {object} map[string]interface{}
// @Router /relationships [get]
func (h *Handler) Get(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	rel, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotLinked) {
			response.NotFound(c, "no relationship")
			return
		}
		response.Unavailable(c, "failed to fetch relationship")
		return
	}
	response.OK(c, rel)
}

// Unlink godoc
// @Summary Dissolve the caller's relationship
// @Tags relationships
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /relationships [delete]
func (h *Handler) Unlink(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	if err := h.service.Unlink(c.Request.Context(), userID); err != nil {
		if errors.Is(err, ErrNotLinked) {
			response.NotFound(c, "no relationship")
			return
		}
		response.Unavailable(c, "failed to unlink")
		return
	}
	response.OK(c, gin.H{"unlinked": true})
}
