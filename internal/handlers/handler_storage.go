package handlers

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/atelierhq/order_tracking_app/internal/middleware"
	"github.com/atelierhq/order_tracking_app/pkg/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	maxImagesPerUpload = 5
	maxImageSizeBytes  = 5 << 20
)

// StorageHandler accepts order reference image uploads and returns the
// public URLs they can be attached to an order with.
type StorageHandler struct {
	images *storage.ImageStore
}

// NewStorageHandler creates a new StorageHandler.
func NewStorageHandler(images *storage.ImageStore) *StorageHandler {
	return &StorageHandler{images: images}
}

// registerStorageRoutes sets up the upload route. Skipped entirely when no
// image store is configured.
func registerStorageRoutes(rg *gin.RouterGroup, images *storage.ImageStore) {
	if images == nil {
		return
	}
	h := NewStorageHandler(images)
	rg.POST("/images", h.UploadImages)
}

// UploadedImagesResponse lists the public URLs of a successful upload.
type UploadedImagesResponse struct {
	URLs []string `json:"urls"`
}

// UploadImages godoc
// @Summary Upload order reference images
// @Description Accepts up to 5 images of at most 5MB each as multipart form files under the "images" field.
// @Tags images
// @Accept multipart/form-data
// @Produce json
// @Success 201 {object} UploadedImagesResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /images [post]
func (h *StorageHandler) UploadImages(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	profile, ok := middleware.GetProfileFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid multipart form"})
		return
	}
	files := form.File["images"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "No images provided"})
		return
	}
	if len(files) > maxImagesPerUpload {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("At most %d images per upload", maxImagesPerUpload)})
		return
	}

	urls := make([]string, 0, len(files))
	for _, fh := range files {
		if fh.Size > maxImageSizeBytes {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("Image %q exceeds the %dMB limit", fh.Filename, maxImageSizeBytes>>20)})
			return
		}

		f, err := fh.Open()
		if err != nil {
			logger.Error("Failed to open uploaded file", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to read upload"})
			return
		}

		head := make([]byte, 512)
		n, err := io.ReadFull(f, head)
		if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
			f.Close()
			logger.Error("Failed to read uploaded file", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to read upload"})
			return
		}
		contentType := http.DetectContentType(head[:n])
		if !strings.HasPrefix(contentType, "image/") {
			f.Close()
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("File %q is not an image", fh.Filename)})
			return
		}

		key := fmt.Sprintf("%s/%s%s", *profile.CompanyID, uuid.NewString(), strings.ToLower(path.Ext(fh.Filename)))
		if err := h.images.Upload(c.Request.Context(), key, contentType, io.MultiReader(bytes.NewReader(head[:n]), f)); err != nil {
			f.Close()
			logger.Error("Failed to store image", slog.String("key", key), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to store image"})
			return
		}
		f.Close()

		urls = append(urls, h.images.PublicURL(key))
	}

	c.JSON(http.StatusCreated, UploadedImagesResponse{URLs: urls})
}
