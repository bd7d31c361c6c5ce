package handler

import (
	"errors"
	"net/http"
	"strconv"

	domainLocker "smart-locker/internal/domain/locker"
	"smart-locker/internal/usecase/locker"
	"smart-locker/internal/usecase/session"
	"smart-locker/pkg/utils"

	"github.com/gin-gonic/gin"
)

type LockerHandler struct {
	service  *locker.Service
	sessions *session.Manager
}

func NewLockerHandler(service *locker.Service, sessions *session.Manager) *LockerHandler {
	return &LockerHandler{service: service, sessions: sessions}
}

func (h *LockerHandler) RegisterRoutes(router *gin.RouterGroup) {
	lockers := router.Group("/lockers")
	{
		lockers.GET("", h.ListState)
		lockers.POST("/:locker_id/toggle", h.Toggle)
	}
}

type toggleRequest struct {
	Item string `json:"item" binding:"omitempty,max=256"`
}

// ListState returns the occupancy of every locker, read fresh from the
// ledger.
func (h *LockerHandler) ListState(c *gin.Context) {
	states, err := h.service.ListState(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Locker state retrieved", states)
}

// Toggle runs one place-or-claim interaction against a locker through
// the caller's session. A free locker needs an item description; a
// locker the caller holds is claimed back regardless of body.
func (h *LockerHandler) Toggle(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		return
	}

	lockerID, err := strconv.Atoi(c.Param("locker_id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid locker ID")
		return
	}

	var req toggleRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	sess, exists := h.sessions.Get(userID)
	if !exists {
		utils.ErrorResponse(c, http.StatusUnauthorized, "No active session, please log in again")
		return
	}

	result, err := sess.Toggle(c.Request.Context(), lockerID, utils.SanitizeText(req.Item))
	if err != nil {
		h.respondToggleError(c, result, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Locker toggled", result)
}

// respondToggleError keeps the re-read locker state in failure
// responses so the client can repaint without another round trip.
func (h *LockerHandler) respondToggleError(c *gin.Context, result *session.ToggleResult, err error) {
	if result != nil {
		switch {
		case result.HardwareFault:
			utils.ErrorResponseWithData(c, http.StatusServiceUnavailable, "Locker recorded but the door failed to open", result)
			return
		case result.Outcome == session.OutcomeConflict:
			utils.ErrorResponseWithData(c, http.StatusConflict, "Locker state changed, showing the current view", result)
			return
		case result.Outcome == session.OutcomeDenied:
			utils.ErrorResponseWithData(c, http.StatusConflict, "Locker is held by another user", result)
			return
		}
	}

	if errors.Is(err, session.ErrSessionClosed) {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Session is closed, please log in again")
		return
	}
	if errors.Is(err, domainLocker.ErrEmptyItem) {
		utils.ErrorResponse(c, http.StatusBadRequest, "An item description is required to place into a free locker")
		return
	}

	respondWithError(c, err)
}
