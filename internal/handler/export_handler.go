package handler

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campusdocs/doctrack-api/internal/dto"
	"github.com/campusdocs/doctrack-api/internal/models"
	appErrors "github.com/campusdocs/doctrack-api/pkg/errors"
	"github.com/campusdocs/doctrack-api/pkg/response"
)

type exportService interface {
	GenerateRegister(ctx context.Context, format string, viewer *models.JWTClaims) (*dto.ExportResponse, error)
	OpenDownload(token string) (*os.File, string, error)
}

// ExportHandler produces and serves document register exports.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// Generate godoc
// @Summary Generate a document register export
// @Tags Exports
// @Produce json
// @Param format query string false "csv or pdf"
// @Success 200 {object} response.Envelope
// @Router /exports/register [post]
func (h *ExportHandler) Generate(c *gin.Context) {
	result, err := h.service.GenerateRegister(c.Request.Context(), c.Query("format"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Download godoc
// @Summary Download a generated export via signed token
// @Tags Exports
// @Param token query string true "Signed download token"
// @Success 200
// @Router /exports/download [get]
func (h *ExportHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	file, name, err := h.service.OpenDownload(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	contentType := "application/octet-stream"
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		contentType = "text/csv"
	case ".pdf":
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", `attachment; filename="`+filepath.Base(name)+`"`)
	c.Header("Content-Type", contentType)
	http.ServeContent(c.Writer, c.Request, filepath.Base(name), fileModTime(file), file)
}

func fileModTime(f *os.File) (t time.Time) {
	if info, err := f.Stat(); err == nil {
		t = info.ModTime()
	}
	return t
}
