package handler

import (
	"net/http"
	"time"

	"smart-locker/internal/usecase/auth"
	"smart-locker/internal/usecase/session"
	"smart-locker/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthHandler struct {
	service  *auth.Service
	sessions *session.Manager
}

func NewAuthHandler(service *auth.Service, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{service: service, sessions: sessions}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/forgot-password", h.ForgotPassword)
		authGroup.POST("/reset-password", h.ResetPassword)
	}
}

func (h *AuthHandler) RegisterProtectedRoutes(router *gin.RouterGroup) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/logout", h.Logout)
	}
}

type registerRequest struct {
	Username string `json:"username" binding:"required,min=1,max=64"`
	Password string `json:"password" binding:"required,min=1,max=128"`
	FullName string `json:"full_name" binding:"required,min=1,max=128"`
	Birthday string `json:"birthday" binding:"required,dateonly"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type forgotPasswordRequest struct {
	Username string `json:"username" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
	Birthday string `json:"birthday" binding:"required,dateonly"`
}

type resetPasswordRequest struct {
	UserID      string `json:"user_id" binding:"required,uuid"`
	Code        string `json:"code" binding:"required,len=6,numeric"`
	NewPassword string `json:"new_password" binding:"required,min=1,max=128"`
}

type loginResponse struct {
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	birthday, err := time.Parse("2006-01-02", req.Birthday)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Birthday must be in YYYY-MM-DD format")
		return
	}

	userID, err := h.service.Register(c.Request.Context(), auth.RegisterInput{
		Username: utils.SanitizeString(req.Username),
		Password: req.Password,
		FullName: utils.SanitizeString(req.FullName),
		Birthday: birthday,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "User registered successfully", gin.H{"user_id": userID})
}

// Login validates credentials, issues the access token and opens the
// user's interaction session. Logging in again replaces any previous
// session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.Login(c.Request.Context(), utils.SanitizeString(req.Username), req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.sessions.Open(result.User.ID, result.User.Username)

	utils.SuccessResponse(c, http.StatusOK, "Login successful", loginResponse{
		UserID:    result.User.ID,
		Username:  result.User.Username,
		Role:      result.User.Role,
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	})
}

// ForgotPassword verifies the claimed identity and hands the recovery
// code back in the response, to be shown to the verified account
// holder.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	birthday, err := time.Parse("2006-01-02", req.Birthday)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Birthday must be in YYYY-MM-DD format")
		return
	}

	challenge, err := h.service.InitiatePasswordReset(c.Request.Context(),
		utils.SanitizeString(req.Username), utils.SanitizeString(req.FullName), birthday)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Recovery code issued", challenge)
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid user ID")
		return
	}

	if err := h.service.CompletePasswordReset(c.Request.Context(), userID, req.Code, req.NewPassword); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Password reset successfully", nil)
}

// Logout closes the caller's session. Any in-flight actuation is
// cancelled and its channel de-energized before this returns.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		return
	}

	h.sessions.Close(userID)

	utils.SuccessResponse(c, http.StatusOK, "Logged out", nil)
}
