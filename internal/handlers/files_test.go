package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chatroom-service/internal/files"
	"chatroom-service/internal/mocks"
	"chatroom-service/internal/models"
	"chatroom-service/internal/telemetry"
)

func setupFileRouter(t *testing.T, repo files.Repository, settings *mocks.SettingsStoreMock) (*gin.Engine, *files.BlobStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := files.NewBlobStore(t.TempDir())
	require.NoError(t, err)

	emitter := telemetry.NewAuditEmitter(nil, "audit_log.chatroom", "chatroom-service", "test")
	handler := NewFileHandler(repo, store, nil, settings, emitter)

	r := gin.New()
	r.GET("/files", handler.List)
	r.GET("/files/search", handler.Search)
	r.GET("/files/categories", handler.Categories)
	r.POST("/files", handler.Upload)
	r.GET("/files/:file_id/content", handler.Download)
	r.DELETE("/files/:file_id", handler.Delete)
	return r, store
}

func TestListFilesSuccess(t *testing.T) {
	repo := new(mocks.FileRepositoryMock)
	router, _ := setupFileRouter(t, repo, new(mocks.SettingsStoreMock))

	repo.On("List", mock.Anything, "").Return([]models.FileRecord{{ID: "f1", OriginalName: "cat.png"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/files", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestListFilesRepoError(t *testing.T) {
	repo := new(mocks.FileRepositoryMock)
	router, _ := setupFileRouter(t, repo, new(mocks.SettingsStoreMock))

	repo.On("List", mock.Anything, "").Return(([]models.FileRecord)(nil), assert.AnError).Once()

	req := httptest.NewRequest(http.MethodGet, "/files", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	repo.AssertExpectations(t)
}

func TestSearchFilesMissingQuery(t *testing.T) {
	router, _ := setupFileRouter(t, new(mocks.FileRepositoryMock), new(mocks.SettingsStoreMock))

	req := httptest.NewRequest(http.MethodGet, "/files/search", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchFilesSuccess(t *testing.T) {
	repo := new(mocks.FileRepositoryMock)
	router, _ := setupFileRouter(t, repo, new(mocks.SettingsStoreMock))

	repo.On("Search", mock.Anything, "cat").Return([]models.FileRecord{{ID: "f1"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/files/search?q=cat", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestUploadFileSuccess(t *testing.T) {
	repo := new(mocks.FileRepositoryMock)
	router, _ := setupFileRouter(t, repo, new(mocks.SettingsStoreMock))

	repo.On("Create", mock.Anything, mock.MatchedBy(func(rec models.FileRecord) bool {
		return rec.OriginalName == "note.txt" && rec.Size == int64(len("hello world")) && rec.Category == "docs"
	})).Return(nil).Once()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "note.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("hello world"))
	require.NoError(t, err)
	require.NoError(t, writer.WriteField("category", "docs"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/files", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	repo.AssertExpectations(t)
}

func TestUploadFileMissingField(t *testing.T) {
	router, _ := setupFileRouter(t, new(mocks.FileRepositoryMock), new(mocks.SettingsStoreMock))

	req := httptest.NewRequest(http.MethodPost, "/files", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteFileWrongPassword(t *testing.T) {
	repo := new(mocks.FileRepositoryMock)
	settings := new(mocks.SettingsStoreMock)
	router, _ := setupFileRouter(t, repo, settings)

	settings.On("DeletePassword", mock.Anything).Return("correct", nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/files/f1", bytes.NewBufferString(`{"password":"wrong"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	settings.AssertExpectations(t)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeleteFileSuccess(t *testing.T) {
	repo := new(mocks.FileRepositoryMock)
	settings := new(mocks.SettingsStoreMock)
	router, _ := setupFileRouter(t, repo, settings)

	settings.On("DeletePassword", mock.Anything).Return("correct", nil).Once()
	repo.On("Get", mock.Anything, "f1").Return(models.FileRecord{ID: "f1", StoredName: "f1.txt"}, nil).Once()
	repo.On("Delete", mock.Anything, "f1").Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/files/f1", bytes.NewBufferString(`{"password":"correct"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	repo.AssertExpectations(t)
	settings.AssertExpectations(t)
}

func TestDeleteFileNotFound(t *testing.T) {
	repo := new(mocks.FileRepositoryMock)
	settings := new(mocks.SettingsStoreMock)
	router, _ := setupFileRouter(t, repo, settings)

	settings.On("DeletePassword", mock.Anything).Return("correct", nil).Once()
	repo.On("Get", mock.Anything, "missing").Return(models.FileRecord{}, files.ErrFileNotFound).Once()

	req := httptest.NewRequest(http.MethodDelete, "/files/missing", bytes.NewBufferString(`{"password":"correct"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	repo.AssertExpectations(t)
}

func TestDownloadFile(t *testing.T) {
	repo := new(mocks.FileRepositoryMock)
	router, store := setupFileRouter(t, repo, new(mocks.SettingsStoreMock))

	_, err := store.Save("f1.txt", strings.NewReader("payload"))
	require.NoError(t, err)
	repo.On("Get", mock.Anything, "f1").Return(models.FileRecord{
		ID:           "f1",
		OriginalName: "note.txt",
		StoredName:   "f1.txt",
		MimeType:     "text/plain",
		Size:         int64(len("payload")),
	}, nil).Twice()

	req := httptest.NewRequest(http.MethodGet, "/files/f1/content", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "payload", rec.Body.String())
	require.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	req = httptest.NewRequest(http.MethodGet, "/files/f1/content?preview=1", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Disposition"), "inline")
	repo.AssertExpectations(t)
}

func TestDownloadFileMissingBlob(t *testing.T) {
	repo := new(mocks.FileRepositoryMock)
	router, _ := setupFileRouter(t, repo, new(mocks.SettingsStoreMock))

	repo.On("Get", mock.Anything, "f1").Return(models.FileRecord{ID: "f1", StoredName: "ghost.txt"}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/files/f1/content", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	repo.AssertExpectations(t)
}
