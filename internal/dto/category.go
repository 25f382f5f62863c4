package dto

// CreateCategoryRequest registers a new file category.
type CreateCategoryRequest struct {
	Name          string `json:"name" validate:"required"`
	Prefix        string `json:"prefix" validate:"required,alphanum,max=8"`
	DesignationID string `json:"designationId"`
}

// CreateDesignationRequest registers a new department or office.
type CreateDesignationRequest struct {
	Name string `json:"name" validate:"required"`
}
