package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lalith-99/happythoughts/internal/middleware"
	"github.com/lalith-99/happythoughts/internal/models"
	"github.com/lalith-99/happythoughts/internal/service"
)

type UserHandler struct {
	users  *service.UserService
	logger *zap.Logger
}

func NewUserHandler(users *service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse is what both register and login return. The client keeps
// accessToken and sends it as "Authorization: Bearer <token>".
type authResponse struct {
	UserID      string `json:"userId"`
	Name        string `json:"name"`
	AccessToken string `json:"accessToken"`
}

func newAuthResponse(u *models.User) authResponse {
	return authResponse{UserID: u.ID, Name: u.Name, AccessToken: u.AccessToken}
}

// Register handles POST /users
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request")
		return
	}

	user, err := h.users.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, h.logger, "failed to register user", err)
		return
	}
	respond(c, http.StatusCreated, newAuthResponse(user), msgSuccess)
}

// Login handles POST /users/login
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request")
		return
	}

	user, err := h.users.Login(c.Request.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, h.logger, "failed to log in", err)
		return
	}
	respond(c, http.StatusOK, newAuthResponse(user), msgSuccess)
}

// Me handles GET /users/me. Runs behind RequireAuth.
func (h *UserHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		fail(c, http.StatusUnauthorized, "Authentication missing or invalid")
		return
	}
	respond(c, http.StatusOK, user, msgSuccess)
}
