package handlers

import (
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"chatroom-service/internal/files"
	"chatroom-service/internal/models"
	"chatroom-service/internal/settings"
	"chatroom-service/internal/telemetry"
	"chatroom-service/internal/ws"
)

// FileHandler manages the file catalog endpoints. Completed uploads are
// announced into the chat feed through the hub.
type FileHandler struct {
	repo     files.Repository
	store    *files.BlobStore
	hub      *ws.Hub
	settings settings.Store
	emitter  *telemetry.AuditEmitter
}

// NewFileHandler builds a FileHandler.
func NewFileHandler(repo files.Repository, store *files.BlobStore, hub *ws.Hub, st settings.Store, emitter *telemetry.AuditEmitter) *FileHandler {
	return &FileHandler{repo: repo, store: store, hub: hub, settings: st, emitter: emitter}
}

// Upload stores a multipart file, records its metadata, and broadcasts a
// file-uploaded event to the room.
func (h *FileHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}

	src, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read upload"})
		return
	}
	defer src.Close()

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	id := uuid.NewString()
	storedName := id + filepath.Ext(header.Filename)

	size, err := h.store.Save(storedName, src)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store file"})
		return
	}

	rec := models.FileRecord{
		ID:           id,
		OriginalName: header.Filename,
		StoredName:   storedName,
		MimeType:     mimeType,
		Size:         size,
		Category:     c.PostForm("category"),
		Description:  c.PostForm("description"),
		UploadedAt:   time.Now(),
	}

	if err := h.repo.Create(c.Request.Context(), rec); err != nil {
		_ = h.store.Remove(storedName)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not record file"})
		return
	}

	// Attachment bridge: the room learns about the upload independently of
	// any chat message that may later reference it.
	if h.hub != nil {
		h.hub.Broadcast(models.RoomEvent{
			Type: models.EventFileUpload,
			Data: models.FileUploadPayload{
				ID:           rec.ID,
				OriginalName: rec.OriginalName,
				MimeType:     rec.MimeType,
				Size:         rec.Size,
			},
		})
	}

	h.emitter.Emit(c.Request.Context(), "INFO", "file uploaded: "+rec.OriginalName, requestIDFromContext(c), nil)
	c.JSON(http.StatusCreated, rec)
}

// List returns the catalog, optionally filtered by category.
func (h *FileHandler) List(c *gin.Context) {
	recs, err := h.repo.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load files"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": recs})
}

// Search matches files by name or description.
func (h *FileHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query"})
		return
	}

	recs, err := h.repo.Search(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": recs})
}

// Categories lists the distinct categories in use.
func (h *FileHandler) Categories(c *gin.Context) {
	categories, err := h.repo.Categories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load categories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// Download serves the stored bytes. With ?preview=1 the file is offered
// inline so browsers can render it instead of saving it.
func (h *FileHandler) Download(c *gin.Context) {
	rec, err := h.repo.Get(c.Request.Context(), c.Param("file_id"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, files.ErrFileNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "file not found"})
		return
	}

	blob, err := h.store.Open(rec.StoredName)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "file content not found"})
		return
	}
	defer blob.Close()

	stat, err := blob.Stat()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not read file"})
		return
	}

	disposition := `attachment; filename="` + rec.OriginalName + `"`
	if c.Query("preview") == "1" {
		disposition = `inline; filename="` + rec.OriginalName + `"`
	}
	c.DataFromReader(http.StatusOK, stat.Size(), rec.MimeType, blob, map[string]string{
		"Content-Disposition": disposition,
	})
}

// Delete removes a file after checking the runtime delete password.
func (h *FileHandler) Delete(c *gin.Context) {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	current, err := h.settings.DeletePassword(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read delete password"})
		return
	}
	if req.Password != current {
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid delete password"})
		return
	}

	rec, err := h.repo.Get(c.Request.Context(), c.Param("file_id"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, files.ErrFileNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "file not found"})
		return
	}

	if err := h.repo.Delete(c.Request.Context(), rec.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete file"})
		return
	}
	_ = h.store.Remove(rec.StoredName)

	h.emitter.Emit(c.Request.Context(), "WARN", "file deleted: "+rec.OriginalName, requestIDFromContext(c), nil)
	c.Status(http.StatusNoContent)
}
