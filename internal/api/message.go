package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lalith-99/happythoughts/internal/middleware"
	"github.com/lalith-99/happythoughts/internal/models"
	"github.com/lalith-99/happythoughts/internal/repository"
	"github.com/lalith-99/happythoughts/internal/service"
)

// HeaderClientID carries the anonymous liker's id.
const HeaderClientID = "X-Client-Id"

type MessageHandler struct {
	messages *service.MessageService
	likes    *service.LikeEngine
	logger   *zap.Logger
}

func NewMessageHandler(messages *service.MessageService, likes *service.LikeEngine, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{messages: messages, likes: likes, logger: logger}
}

type createMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

type deleteMessageResponse struct {
	DeletedID string `json:"deletedId"`
}

func normalized(msgs []models.Message) []models.Message {
	for i := range msgs {
		msgs[i].Normalize()
	}
	return msgs
}

// List handles GET /messages?hasHearts=&sort=&order=
//
// Unknown sort and order values fall back to createdAt/desc rather than
// failing.
func (h *MessageHandler) List(c *gin.Context) {
	opts := repository.ParseListOptions(c.Query("hasHearts"), c.Query("sort"), c.Query("order"))

	msgs, err := h.messages.List(c.Request.Context(), opts)
	if err != nil {
		writeError(c, h.logger, "failed to list messages", err)
		return
	}
	respond(c, http.StatusOK, normalized(msgs), msgSuccess)
}

// GetByID handles GET /messages/:id
func (h *MessageHandler) GetByID(c *gin.Context) {
	msg, err := h.messages.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, "failed to get message", err)
		return
	}
	msg.Normalize()
	respond(c, http.StatusOK, msg, msgSuccess)
}

// Create handles POST /messages. Runs behind OptionalAuth, so a bad token
// just means an anonymous post.
func (h *MessageHandler) Create(c *gin.Context) {
	var req createMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request")
		return
	}

	msg, err := h.messages.Create(c.Request.Context(), req.Text, middleware.CurrentUser(c))
	if err != nil {
		writeError(c, h.logger, "failed to create message", err)
		return
	}
	msg.Normalize()
	respond(c, http.StatusCreated, msg, msgSuccess)
}

// Like handles PATCH /messages/:id/like
//
// Authentication is decided inside the like engine: an unresolvable bearer
// token is a 401 here, unlike on Create.
func (h *MessageHandler) Like(c *gin.Context) {
	msg, err := h.likes.Like(c.Request.Context(), service.LikeRequest{
		MessageID:     c.Param("id"),
		Authorization: c.GetHeader("Authorization"),
		ClientID:      c.GetHeader(HeaderClientID),
	})
	if err != nil {
		writeError(c, h.logger, "failed to like message", err)
		return
	}
	msg.Normalize()
	respond(c, http.StatusOK, msg, msgSuccess)
}

// Delete handles DELETE /messages/:id. Runs behind RequireAuth.
func (h *MessageHandler) Delete(c *gin.Context) {
	id, err := h.messages.Delete(c.Request.Context(), c.Param("id"), middleware.CurrentUser(c))
	if err != nil {
		writeError(c, h.logger, "failed to delete message", err)
		return
	}
	respond(c, http.StatusOK, deleteMessageResponse{DeletedID: id}, "Message deleted")
}
