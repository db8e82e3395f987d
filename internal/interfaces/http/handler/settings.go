package handler

import (
	settingsapp "github.com/atelier/backend/internal/application/settings"
	"github.com/atelier/backend/internal/interfaces/command"
	"github.com/atelier/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SettingsHandler reads and updates the business settings row
type SettingsHandler struct {
	BaseHandler
	settings command.SettingsService
}

// NewSettingsHandler creates a SettingsHandler
func NewSettingsHandler(settings command.SettingsService, v *dto.Validator) *SettingsHandler {
	return &SettingsHandler{BaseHandler: newBase(v), settings: settings}
}

// Get GET /api/v1/settings
func (h *SettingsHandler) Get(c *gin.Context) {
	current, err := h.settings.Get(c.Request.Context())
	respond(&h.BaseHandler, c, false, current, err)
}

// Update PUT /api/v1/settings
func (h *SettingsHandler) Update(c *gin.Context) {
	var req settingsapp.UpdateSettingsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	updated, err := h.settings.Update(c.Request.Context(), req)
	respond(&h.BaseHandler, c, false, updated, err)
}
