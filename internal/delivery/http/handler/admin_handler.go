package handler

import (
	"net/http"

	"smart-locker/internal/usecase/admin"
	"smart-locker/internal/usecase/session"
	"smart-locker/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AdminHandler struct {
	service  *admin.Service
	sessions *session.Manager
}

func NewAdminHandler(service *admin.Service, sessions *session.Manager) *AdminHandler {
	return &AdminHandler{service: service, sessions: sessions}
}

func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/tables", h.ListTables)
	router.GET("/tables/:table", h.BrowseTable)
	router.PUT("/tables/:table/rows/:row_id", h.UpdateCell)
	router.DELETE("/users/:user_id", h.DeleteUser)
}

type updateCellRequest struct {
	Column string      `json:"column" binding:"required"`
	Value  interface{} `json:"value"`
}

func (h *AdminHandler) ListTables(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Tables retrieved", h.service.Tables())
}

func (h *AdminHandler) BrowseTable(c *gin.Context) {
	data, err := h.service.Browse(c.Request.Context(), c.Param("table"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Table retrieved", data)
}

func (h *AdminHandler) UpdateCell(c *gin.Context) {
	var req updateCellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := h.service.UpdateCell(c.Request.Context(), c.Param("table"), req.Column, c.Param("row_id"), req.Value)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Cell updated", nil)
}

// DeleteUser removes the account, releases every locker it holds and
// tears down any live session it has.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid user ID")
		return
	}

	if err := h.service.DeleteUser(c.Request.Context(), userID); err != nil {
		respondWithError(c, err)
		return
	}

	h.sessions.Close(userID)

	utils.SuccessResponse(c, http.StatusOK, "User deleted successfully", nil)
}
