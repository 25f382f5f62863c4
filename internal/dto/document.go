package dto

import (
	"time"

	"github.com/campusdocs/doctrack-api/internal/models"
)

// SubmitDocumentRequest is the payload for submitting a new document.
type SubmitDocumentRequest struct {
	Attachment     string                  `json:"attachment" validate:"required"`
	FileCategoryID string                  `json:"fileCategoryId" validate:"required"`
	Remarks        string                  `json:"remarks"`
	FileDate       time.Time               `json:"fileDate" validate:"required"`
	Priority       models.DocumentPriority `json:"priority" validate:"required,priority"`
	AssignatoryIDs []string                `json:"assignatoryIds"`
}

// ApproveDocumentRequest carries optional approval remarks.
type ApproveDocumentRequest struct {
	Remarks string `json:"remarks"`
}

// RejectDocumentRequest carries the mandatory rejection reason.
type RejectDocumentRequest struct {
	Reason  models.RejectionReason `json:"reason" validate:"required"`
	Details string                 `json:"details"`
}

// ForwardDocumentRequest names the recipients of a forward.
type ForwardDocumentRequest struct {
	TargetUserIDs []string `json:"targetUserIds" validate:"required,min=1"`
	Note          string   `json:"note"`
}

// ReplaceAttachmentRequest swaps the stored attachment for a signed copy.
type ReplaceAttachmentRequest struct {
	Attachment string `json:"attachment" validate:"required"`
}

// DocumentQuery mirrors supported listing filters.
type DocumentQuery struct {
	Status         []models.DocumentStatus
	Priority       models.DocumentPriority
	FileCategoryID string
	Search         string
	Limit          int
	Offset         int
}

// DocumentItem is the list/detail projection of a document.
type DocumentItem struct {
	models.Document
	CategoryName  string               `json:"category_name,omitempty"`
	Title         string               `json:"title"`
	CurrentStage  models.WorkflowStage `json:"current_stage"`
	Assignatories []string             `json:"assignatories,omitempty"`
}

// TimelineItem is one rendered step of a document's audit trail.
type TimelineItem struct {
	Action        models.HistoryAction  `json:"action"`
	Stage         models.WorkflowStage  `json:"stage"`
	Status        models.DocumentStatus `json:"status"`
	Summary       string                `json:"summary"`
	Details       *string               `json:"details,omitempty"`
	PerformedByID *string               `json:"performed_by_id,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	IsActive      bool                  `json:"is_active"`
}

// WorkflowStep is one cell of the rendered stage-progress snapshot.
type WorkflowStep struct {
	Stage  models.WorkflowStage `json:"stage"`
	Status string               `json:"status"`
}
