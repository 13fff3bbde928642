package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/contenthub/contenthub/internal/content"
	"github.com/contenthub/contenthub/internal/storage"
	"github.com/contenthub/contenthub/pkg/logger"
)

// PostContentRequest is the validated payload for creating a content
// record. Image is an opaque reference and is saved as-is.
type PostContentRequest struct {
	Title  string  `json:"title" binding:"required,min=3,max=200"`
	Image  *string `json:"image"`
	Body   string  `json:"content" binding:"required,min=10"`
	UserID int64   `json:"user_id" binding:"required,gt=0"`
}

// UpdateContentRequest is a partial content update; absent fields are
// left unchanged.
type UpdateContentRequest struct {
	Image *string `json:"image"`
	Body  *string `json:"content" binding:"omitempty,min=10"`
}

// ContentHandler holds dependencies. media may be nil, in which case
// the image upload route is not registered.
type ContentHandler struct {
	contents *content.Service
	media    *storage.MediaStorage
}

func NewContentHandler(s *content.Service, media *storage.MediaStorage) *ContentHandler {
	return &ContentHandler{contents: s, media: media}
}

// Register routes under the given group
func (h *ContentHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/post-content", h.Create)
	rg.GET("/content", h.List)
	rg.GET("/content/:id", h.GetByID)
	rg.PUT("/content/:id", h.Update)
	if h.media != nil {
		rg.POST("/content/:id/image", h.UploadImage)
	}
}

// Create inserts a new content record owned by an existing user.
func (h *ContentHandler) Create(c *gin.Context) {
	var req PostContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created, err := h.contents.Create(c.Request.Context(), content.CreateInput{
		Title:  req.Title,
		Image:  req.Image,
		Body:   req.Body,
		UserID: req.UserID,
	})
	if err != nil {
		if errors.Is(err, content.ErrOwnerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("User with id %d not found", req.UserID)})
			return
		}
		logger.Errorf("create content: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// List returns all content joined with the users who created them.
func (h *ContentHandler) List(c *gin.Context) {
	list, err := h.contents.ListWithOwner(c.Request.Context())
	if err != nil {
		logger.Errorf("list content: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetByID returns a single content record.
func (h *ContentHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	rec, err := h.contents.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Content with id %d not found", id)})
			return
		}
		logger.Errorf("get content %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Update applies a partial update (image, content body).
func (h *ContentHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req UpdateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := h.contents.Update(c.Request.Context(), id, content.UpdateInput{
		Image: req.Image,
		Body:  req.Body,
	})
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Content with id %d not found", id)})
			return
		}
		logger.Errorf("update content %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// UploadImage stores a multipart image in media storage and saves the
// object key as the record's image reference.
func (h *ContentHandler) UploadImage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer src.Close()

	key := fmt.Sprintf("content/%d/%d%s", id, time.Now().UnixMilli(), filepath.Ext(file.Filename))
	if err := h.media.Upload(c.Request.Context(), key, src, file.Size, file.Header.Get("Content-Type")); err != nil {
		logger.Errorf("upload image for content %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}

	rec, err := h.contents.SetImage(c.Request.Context(), id, key)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Content with id %d not found", id)})
			return
		}
		logger.Errorf("set image for content %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}
