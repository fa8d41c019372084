package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	invoicingapp "github.com/invoiceflow/backend/internal/application/invoicing"
)

// PreferencesHandler handles per-user display settings
type PreferencesHandler struct {
	BaseHandler
	preferencesService *invoicingapp.PreferencesService
}

// NewPreferencesHandler creates a new PreferencesHandler
func NewPreferencesHandler(preferencesService *invoicingapp.PreferencesService) *PreferencesHandler {
	return &PreferencesHandler{
		preferencesService: preferencesService,
	}
}

// Get godoc
// @ID           getPreferences
// @Summary      Get user preferences
// @Description  Return the caller's currency and date format, or the defaults when none are stored
// @Tags         preferences
// @Produce      json
// @Success      200 {object} APIResponse[invoicingapp.PreferencesResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /preferences [get]
func (h *PreferencesHandler) Get(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	prefs, err := h.preferencesService.Get(c.Request.Context(), userID)
	h.reply(c, http.StatusOK, prefs, err)
}

// Update godoc
// @ID           updatePreferences
// @Summary      Update user preferences
// @Tags         preferences
// @Accept       json
// @Produce      json
// @Param        request body invoicingapp.UpdatePreferencesRequest true "Preference changes"
// @Success      200 {object} APIResponse[invoicingapp.PreferencesResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /preferences [put]
func (h *PreferencesHandler) Update(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req invoicingapp.UpdatePreferencesRequest
	if !h.bindJSON(c, &req) {
		return
	}

	prefs, err := h.preferencesService.Update(c.Request.Context(), userID, req)
	h.reply(c, http.StatusOK, prefs, err)
}
