package cvs

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"cvprofile-backend/internal/shared/server/middleware"
	"cvprofile-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches CV routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/cvs", h.upload)
	rg.GET("/cvs", h.list)
	rg.GET("/cvs/:id/status", h.status)
}

type uploadResponse struct {
	CVID       string `json:"cvId"`
	StorageKey string `json:"storageKey"`
	Filename   string `json:"filename"`
	Status     string `json:"status"`
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	// Slack over the configured ceiling covers multipart framing; the exact
	// limit is enforced by intake validation.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.Svc.UploadCeiling()+1<<20)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", ErrMissingFile.Error(), nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	data, readErr := io.ReadAll(file)
	file.Close()
	if readErr != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}

	rec, err := h.Svc.Upload(c.Request.Context(), userID, fileHeader, data)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyFile):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), gin.H{
				"declaredSize": fileHeader.Size,
				"bufferedSize": len(data),
			})
		case errors.Is(err, ErrMissingFile),
			errors.Is(err, ErrUnsupportedType),
			errors.Is(err, ErrTooLarge),
			errors.Is(err, ErrInvalidFileName):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to store upload", nil)
		}
		return
	}

	c.Set("cvId", rec.ID)
	c.Set("statusTransition", string(StatusPending)+"->"+string(rec.Status))

	respond.Created(c, uploadResponse{
		CVID:       rec.ID,
		StorageKey: rec.StorageKey,
		Filename:   rec.FileName,
		Status:     string(rec.Status),
	})
}

func (h *Handler) status(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	id := c.Param("id")

	rec, err := h.Svc.Status(c.Request.Context(), userID, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "cv not found", nil)
		case errors.Is(err, ErrForbidden):
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "cv not accessible", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch status", nil)
		}
		return
	}

	c.Set("cvId", rec.ID)

	body := gin.H{
		"cvId":   rec.ID,
		"status": string(rec.Status),
	}
	if rec.Status == StatusCompleted && rec.ImprovementScore != nil {
		body["improvementScore"] = *rec.ImprovementScore
	}
	respond.JSON(c, http.StatusOK, body)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if limit > 50 {
		limit = 50
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	recs, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list cvs", nil)
		return
	}

	resp := make([]gin.H, 0, len(recs))
	for _, rec := range recs {
		item := gin.H{
			"cvId":       rec.ID,
			"fileName":   rec.FileName,
			"mimeType":   rec.MimeType,
			"sizeBytes":  rec.SizeBytes,
			"status":     string(rec.Status),
			"uploadedAt": rec.CreatedAt.Format(time.RFC3339),
		}
		if rec.Status == StatusCompleted && rec.ImprovementScore != nil {
			item["improvementScore"] = *rec.ImprovementScore
		}
		resp = append(resp, item)
	}
	respond.JSON(c, http.StatusOK, resp)
}
