package handler

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"os"
	"path"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/alumni-portal/internal/dto"
	"github.com/noah-isme/alumni-portal/internal/models"
	"github.com/noah-isme/alumni-portal/internal/service"
	appErrors "github.com/noah-isme/alumni-portal/pkg/errors"
	"github.com/noah-isme/alumni-portal/pkg/response"
	"github.com/noah-isme/alumni-portal/pkg/storage"
)

type mediaService interface {
	Upload(ctx context.Context, sess *models.Session, upload service.ImageUpload) (*dto.UploadedImage, error)
	MaxBytes() int64
}

type signedOpener interface {
	OpenSigned(token string) (*os.File, string, error)
}

// MediaHandler accepts image uploads and serves locally hosted images.
type MediaHandler struct {
	service mediaService
	files   signedOpener
}

// NewMediaHandler constructs the handler. files may be nil when images are
// hosted elsewhere.
func NewMediaHandler(svc mediaService, files signedOpener) *MediaHandler {
	return &MediaHandler{service: svc, files: files}
}

// Upload godoc
// @Summary Upload image
// @Description Validate and host one image, returning its public URL
// @Tags Media
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image"
// @Success 201 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Failure 415 {object} response.Envelope
// @Router /media/images [post]
func (h *MediaHandler) Upload(c *gin.Context) {
	sess := sessionFromContext(c)
	if sess == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	// Multipart overhead on top of the image itself.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.service.MaxBytes()+1<<20)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, appErrors.ErrFileTooLarge)
			return
		}
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer src.Close()

	image, err := h.service.Upload(c.Request.Context(), sess, service.ImageUpload{
		Filename:     fileHeader.Filename,
		Size:         fileHeader.Size,
		DeclaredType: fileHeader.Header.Get("Content-Type"),
		Content:      src,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, image)
}

// Serve godoc
// @Summary Download hosted image
// @Tags Media
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /media/{token} [get]
func (h *MediaHandler) Serve(c *gin.Context) {
	if h.files == nil {
		response.Error(c, appErrors.ErrNotFound)
		return
	}
	file, key, err := h.files.OpenSigned(c.Param("token"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			response.Error(c, appErrors.ErrNotFound)
			return
		}
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "media link is invalid or has expired"))
		return
	}
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read media"))
		return
	}
	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Cache-Control", "private, max-age=3600")
	c.DataFromReader(http.StatusOK, info.Size(), contentType, file, nil)
}
