package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campusdocs/doctrack-api/internal/dto"
	"github.com/campusdocs/doctrack-api/internal/models"
	appErrors "github.com/campusdocs/doctrack-api/pkg/errors"
	"github.com/campusdocs/doctrack-api/pkg/response"
)

type documentService interface {
	Submit(ctx context.Context, req dto.SubmitDocumentRequest, actor *models.JWTClaims) (*dto.DocumentItem, error)
	Approve(ctx context.Context, id string, req dto.ApproveDocumentRequest, actor *models.JWTClaims) (*models.Document, error)
	Reject(ctx context.Context, id string, req dto.RejectDocumentRequest, actor *models.JWTClaims) (*models.Document, error)
	Forward(ctx context.Context, id string, req dto.ForwardDocumentRequest, actor *models.JWTClaims) (*dto.DocumentItem, error)
	ReplaceAttachment(ctx context.Context, id string, req dto.ReplaceAttachmentRequest, actor *models.JWTClaims) (*models.Document, error)
	Delete(ctx context.Context, id string, actor *models.JWTClaims) error
	Get(ctx context.Context, id string, viewer *models.JWTClaims) (*dto.DocumentItem, error)
	List(ctx context.Context, query dto.DocumentQuery, viewer *models.JWTClaims) ([]dto.DocumentItem, error)
	ListApproved(ctx context.Context, viewer *models.JWTClaims) ([]dto.DocumentItem, error)
	ListArchived(ctx context.Context, viewer *models.JWTClaims) ([]dto.DocumentItem, error)
	Timeline(ctx context.Context, id string, viewer *models.JWTClaims) ([]dto.TimelineItem, []dto.WorkflowStep, error)
}

// DocumentHandler exposes REST endpoints for the document workflow.
type DocumentHandler struct {
	service documentService
}

// NewDocumentHandler constructs the handler.
func NewDocumentHandler(service documentService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

// Submit godoc
// @Summary Submit a document for approval
// @Tags Documents
// @Accept json
// @Produce json
// @Param payload body dto.SubmitDocumentRequest true "Document payload"
// @Success 201 {object} response.Envelope
// @Router /documents [post]
func (h *DocumentHandler) Submit(c *gin.Context) {
	var req dto.SubmitDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid document payload"))
		return
	}
	item, err := h.service.Submit(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, item, nil)
}

// List godoc
// @Summary List documents visible to the caller
// @Tags Documents
// @Produce json
// @Param status query string false "Comma separated statuses"
// @Param priority query string false "Priority"
// @Param categoryId query string false "File category"
// @Param search query string false "Reference or remarks search"
// @Success 200 {object} response.Envelope
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	query := dto.DocumentQuery{
		FileCategoryID: c.Query("categoryId"),
		Search:         strings.TrimSpace(c.Query("search")),
	}
	if raw := c.Query("priority"); raw != "" {
		query.Priority = models.DocumentPriority(strings.ToUpper(raw))
	}
	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.ToUpper(strings.TrimSpace(part))
			if part != "" {
				query.Status = append(query.Status, models.DocumentStatus(part))
			}
		}
	}
	if raw := c.Query("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			query.Limit = limit
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil {
			query.Offset = offset
		}
	}
	items, err := h.service.List(c.Request.Context(), query, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// ListApproved godoc
// @Summary List the approved repository
// @Tags Documents
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /documents/approved [get]
func (h *DocumentHandler) ListApproved(c *gin.Context) {
	items, err := h.service.ListApproved(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// ListArchived godoc
// @Summary List archived documents
// @Tags Documents
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /documents/archived [get]
func (h *DocumentHandler) ListArchived(c *gin.Context) {
	items, err := h.service.ListArchived(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Get document detail
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Router /documents/{id} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Timeline godoc
// @Summary Get a document's history and stage snapshot
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Router /documents/{id}/timeline [get]
func (h *DocumentHandler) Timeline(c *gin.Context) {
	timeline, steps, err := h.service.Timeline(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"timeline": timeline, "steps": steps}, nil)
}

// Approve godoc
// @Summary Approve a pending document
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param payload body dto.ApproveDocumentRequest false "Optional remarks"
// @Success 200 {object} response.Envelope
// @Router /documents/{id}/approve [post]
func (h *DocumentHandler) Approve(c *gin.Context) {
	var req dto.ApproveDocumentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid approval payload"))
			return
		}
	}
	doc, err := h.service.Approve(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil)
}

// Reject godoc
// @Summary Reject a pending document
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param payload body dto.RejectDocumentRequest true "Rejection reason"
// @Success 200 {object} response.Envelope
// @Router /documents/{id}/reject [post]
func (h *DocumentHandler) Reject(c *gin.Context) {
	var req dto.RejectDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid rejection payload"))
		return
	}
	doc, err := h.service.Reject(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil)
}

// Forward godoc
// @Summary Forward a document to the next review tier
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param payload body dto.ForwardDocumentRequest true "Recipients"
// @Success 200 {object} response.Envelope
// @Router /documents/{id}/forward [post]
func (h *DocumentHandler) Forward(c *gin.Context) {
	var req dto.ForwardDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid forward payload"))
		return
	}
	item, err := h.service.Forward(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// ReplaceAttachment godoc
// @Summary Replace the stored attachment with a signed copy
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param payload body dto.ReplaceAttachmentRequest true "New attachment"
// @Success 200 {object} response.Envelope
// @Router /documents/{id}/attachment [put]
func (h *DocumentHandler) ReplaceAttachment(c *gin.Context) {
	var req dto.ReplaceAttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid attachment payload"))
		return
	}
	doc, err := h.service.ReplaceAttachment(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil)
}

// Delete godoc
// @Summary Delete an unapproved document
// @Tags Documents
// @Param id path string true "Document ID"
// @Success 204
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
