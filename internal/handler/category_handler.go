package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusdocs/doctrack-api/internal/dto"
	"github.com/campusdocs/doctrack-api/internal/models"
	appErrors "github.com/campusdocs/doctrack-api/pkg/errors"
	"github.com/campusdocs/doctrack-api/pkg/response"
)

type categoryService interface {
	List(ctx context.Context) ([]models.FileCategory, error)
	Get(ctx context.Context, id string) (*models.FileCategory, error)
	Create(ctx context.Context, req dto.CreateCategoryRequest) (*models.FileCategory, error)
	ListDesignations(ctx context.Context) ([]models.Designation, error)
	CreateDesignation(ctx context.Context, req dto.CreateDesignationRequest) (*models.Designation, error)
}

// CategoryHandler manages file categories and designations.
type CategoryHandler struct {
	service categoryService
}

// NewCategoryHandler constructs the handler.
func NewCategoryHandler(service categoryService) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// List godoc
// @Summary List file categories
// @Tags Categories
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, categories, nil)
}

// Get godoc
// @Summary Get one file category
// @Tags Categories
// @Produce json
// @Param id path string true "Category ID"
// @Success 200 {object} response.Envelope
// @Router /categories/{id} [get]
func (h *CategoryHandler) Get(c *gin.Context) {
	category, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, category, nil)
}

// Create godoc
// @Summary Create a file category
// @Tags Categories
// @Accept json
// @Produce json
// @Param payload body dto.CreateCategoryRequest true "Category payload"
// @Success 201 {object} response.Envelope
// @Router /categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid category payload"))
		return
	}
	category, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, category)
}

// ListDesignations godoc
// @Summary List designations
// @Tags Categories
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /designations [get]
func (h *CategoryHandler) ListDesignations(c *gin.Context) {
	designations, err := h.service.ListDesignations(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, designations, nil)
}

// CreateDesignation godoc
// @Summary Create a designation
// @Tags Categories
// @Accept json
// @Produce json
// @Param payload body dto.CreateDesignationRequest true "Designation payload"
// @Success 201 {object} response.Envelope
// @Router /designations [post]
func (h *CategoryHandler) CreateDesignation(c *gin.Context) {
	var req dto.CreateDesignationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid designation payload"))
		return
	}
	designation, err := h.service.CreateDesignation(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, designation)
}
