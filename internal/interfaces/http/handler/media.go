package handler

import (
	"errors"
	"net/http"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/interfaces/command"
	"github.com/atelier/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

const maxMultipartMemory = 8 << 20

// MediaHandler passes uploaded files through to the remote media library
type MediaHandler struct {
	BaseHandler
	sync command.SyncService
}

// NewMediaHandler creates a MediaHandler. sync may be nil when no remote
// store is configured.
func NewMediaHandler(sync command.SyncService, v *dto.Validator) *MediaHandler {
	return &MediaHandler{BaseHandler: newBase(v), sync: sync}
}

// Upload POST /api/v1/media (multipart field "file")
func (h *MediaHandler) Upload(c *gin.Context) {
	if h.sync == nil {
		h.HandleError(c, shared.NewPreconditionError("remote catalog is not configured"))
		return
	}
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.HandleError(c, err)
			return
		}
		h.HandleError(c, shared.NewValidationError("file", "multipart form with a file is required"))
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		h.HandleError(c, shared.NewValidationError("file", "file is required"))
		return
	}
	f, err := header.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer f.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	media, err := h.sync.UploadMedia(c.Request.Context(), header.Filename, contentType, f)
	respond(&h.BaseHandler, c, true, media, err)
}
