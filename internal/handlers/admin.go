package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chatroom-service/internal/settings"
	"chatroom-service/internal/telemetry"
)

// AdminHandler exposes the runtime configuration mutations: passwords, the
// site toggle, and the announcement.
type AdminHandler struct {
	settings settings.Store
	emitter  *telemetry.AuditEmitter
}

// NewAdminHandler builds an AdminHandler.
func NewAdminHandler(st settings.Store, emitter *telemetry.AuditEmitter) *AdminHandler {
	return &AdminHandler{settings: st, emitter: emitter}
}

// Announcement returns the current announcement. Publicly readable.
func (h *AdminHandler) Announcement(c *gin.Context) {
	text, err := h.settings.Announcement(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load announcement"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"announcement": text})
}

// SiteStatus reports whether the site currently accepts connections.
func (h *AdminHandler) SiteStatus(c *gin.Context) {
	enabled, err := h.settings.SiteEnabled(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load site status"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"enabled": enabled})
}

// SetAnnouncement replaces the announcement text.
func (h *AdminHandler) SetAnnouncement(c *gin.Context) {
	var req struct {
		Announcement string `json:"announcement"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.settings.Set(c.Request.Context(), settings.KeyAnnouncement, req.Announcement); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save announcement"})
		return
	}

	h.emitter.Emit(c.Request.Context(), "INFO", "announcement updated", requestIDFromContext(c), adminActor())
	c.Status(http.StatusNoContent)
}

// SetSiteEnabled flips whether new connections are accepted. Existing
// websocket sessions are left alone.
func (h *AdminHandler) SetSiteEnabled(c *gin.Context) {
	var req struct {
		Enabled *bool `json:"enabled" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	value := "false"
	if *req.Enabled {
		value = "true"
	}
	if err := h.settings.Set(c.Request.Context(), settings.KeySiteEnabled, value); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save site status"})
		return
	}

	h.emitter.Emit(c.Request.Context(), "WARN", "site enabled set to "+value, requestIDFromContext(c), adminActor())
	c.Status(http.StatusNoContent)
}

// SetRoomPassword changes the password the authentication gate checks. The
// gate re-reads it on every join, so the change is effective immediately.
func (h *AdminHandler) SetRoomPassword(c *gin.Context) {
	h.setPassword(c, settings.KeyRoomPassword, "room password updated")
}

// SetDeletePassword changes the password gating bulk delete and file removal.
func (h *AdminHandler) SetDeletePassword(c *gin.Context) {
	h.setPassword(c, settings.KeyDeletePassword, "delete password updated")
}

// SetAdminPassword changes the password protecting these endpoints.
func (h *AdminHandler) SetAdminPassword(c *gin.Context) {
	h.setPassword(c, settings.KeyAdminPassword, "admin password updated")
}

func (h *AdminHandler) setPassword(c *gin.Context, key, auditText string) {
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.settings.Set(c.Request.Context(), key, req.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save password"})
		return
	}

	h.emitter.Emit(c.Request.Context(), "WARN", auditText, requestIDFromContext(c), adminActor())
	c.Status(http.StatusNoContent)
}

func adminActor() *string {
	actor := "admin"
	return &actor
}
