package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chatroom-service/internal/mocks"
	"chatroom-service/internal/settings"
	"chatroom-service/internal/telemetry"
)

func setupAdminRouter(store *mocks.SettingsStoreMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	emitter := telemetry.NewAuditEmitter(nil, "audit_log.chatroom", "chatroom-service", "test")
	handler := NewAdminHandler(store, emitter)

	r := gin.New()
	r.GET("/announcement", handler.Announcement)
	r.GET("/site-status", handler.SiteStatus)
	r.PUT("/admin/announcement", handler.SetAnnouncement)
	r.PUT("/admin/site-enabled", handler.SetSiteEnabled)
	r.PUT("/admin/room-password", handler.SetRoomPassword)
	return r
}

func TestAnnouncementSuccess(t *testing.T) {
	store := new(mocks.SettingsStoreMock)
	router := setupAdminRouter(store)

	store.On("Announcement", mock.Anything).Return("welcome", nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/announcement", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, "welcome", resp["announcement"])
	store.AssertExpectations(t)
}

func TestSiteStatusError(t *testing.T) {
	store := new(mocks.SettingsStoreMock)
	router := setupAdminRouter(store)

	store.On("SiteEnabled", mock.Anything).Return(false, assert.AnError).Once()

	req := httptest.NewRequest(http.MethodGet, "/site-status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	store.AssertExpectations(t)
}

func TestSetAnnouncement(t *testing.T) {
	store := new(mocks.SettingsStoreMock)
	router := setupAdminRouter(store)

	store.On("Set", mock.Anything, settings.KeyAnnouncement, "maintenance at noon").Return(nil).Once()

	req := httptest.NewRequest(http.MethodPut, "/admin/announcement", bytes.NewBufferString(`{"announcement":"maintenance at noon"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	store.AssertExpectations(t)
}

func TestSetSiteEnabled(t *testing.T) {
	store := new(mocks.SettingsStoreMock)
	router := setupAdminRouter(store)

	store.On("Set", mock.Anything, settings.KeySiteEnabled, "false").Return(nil).Once()

	req := httptest.NewRequest(http.MethodPut, "/admin/site-enabled", bytes.NewBufferString(`{"enabled":false}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	store.AssertExpectations(t)
}

func TestSetRoomPasswordMissingBody(t *testing.T) {
	store := new(mocks.SettingsStoreMock)
	router := setupAdminRouter(store)

	req := httptest.NewRequest(http.MethodPut, "/admin/room-password", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestSetRoomPasswordSuccess(t *testing.T) {
	store := new(mocks.SettingsStoreMock)
	router := setupAdminRouter(store)

	store.On("Set", mock.Anything, settings.KeyRoomPassword, "new-secret").Return(nil).Once()

	req := httptest.NewRequest(http.MethodPut, "/admin/room-password", bytes.NewBufferString(`{"password":"new-secret"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	store.AssertExpectations(t)
}
