package models

import (
	"strings"
	"time"
)

// DocumentStatus captures the terminal lifecycle of a tracked document.
type DocumentStatus string

const (
	DocumentStatusPending  DocumentStatus = "PENDING"
	DocumentStatusApproved DocumentStatus = "APPROVED"
	DocumentStatusRejected DocumentStatus = "REJECTED"
)

// DocumentPriority orders documents for reviewer attention.
type DocumentPriority string

const (
	PriorityLow    DocumentPriority = "LOW"
	PriorityMedium DocumentPriority = "MEDIUM"
	PriorityHigh   DocumentPriority = "HIGH"
)

// Document is the unit of work driven through the approval workflow.
type Document struct {
	ID             string           `db:"id" json:"id"`
	ReferenceID    string           `db:"reference_id" json:"reference_id"`
	Attachment     string           `db:"attachment" json:"attachment"`
	FileCategoryID string           `db:"file_category_id" json:"file_category_id"`
	Remarks        *string          `db:"remarks" json:"remarks,omitempty"`
	FileDate       time.Time        `db:"file_date" json:"file_date"`
	Priority       DocumentPriority `db:"priority" json:"priority"`
	Status         DocumentStatus   `db:"status" json:"status"`
	SubmittedByID  string           `db:"submitted_by_id" json:"submitted_by_id"`
	ArchivedAt     *time.Time       `db:"archived_at" json:"archived_at,omitempty"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time        `db:"updated_at" json:"updated_at"`
}

// DisplayTitle resolves the human title: remarks first, then category name,
// then the reference id.
func (d *Document) DisplayTitle(categoryName string) string {
	if d.Remarks != nil && strings.TrimSpace(*d.Remarks) != "" {
		return *d.Remarks
	}
	if categoryName != "" {
		return categoryName
	}
	return d.ReferenceID
}

// Terminal reports whether the document reached a final status.
func (d *Document) Terminal() bool {
	return d.Status == DocumentStatusApproved || d.Status == DocumentStatusRejected
}

// Assignatory links a document to a user it was explicitly forwarded to.
type Assignatory struct {
	DocumentID string    `db:"document_id" json:"document_id"`
	UserID     string    `db:"user_id" json:"user_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// DocumentFilter constrains document listing queries.
type DocumentFilter struct {
	Status         []DocumentStatus
	Priority       DocumentPriority
	FileCategoryID string
	Search         string
	Archived       *bool
	Limit          int
	Offset         int

	// Visibility scoping, populated by the policy layer rather than callers.
	SubmittedByID   string
	AssignedUserID  string
	OwnerOrAssigned string
	DesignationID   string
}
