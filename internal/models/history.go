package models

import "time"

// HistoryAction enumerates the state-changing events recorded per document.
type HistoryAction string

const (
	HistoryActionSubmitted         HistoryAction = "SUBMITTED"
	HistoryActionForwarded         HistoryAction = "FORWARDED"
	HistoryActionApproved          HistoryAction = "APPROVED"
	HistoryActionRejected          HistoryAction = "REJECTED"
	HistoryActionSignatureAttached HistoryAction = "SIGNATURE_ATTACHED"
	HistoryActionArchived          HistoryAction = "ARCHIVED"
)

// RejectionReason is the fixed vocabulary for rejecting a document.
type RejectionReason string

const (
	RejectionMissingInformation RejectionReason = "MISSING_INFORMATION"
	RejectionInvalidDetails     RejectionReason = "INVALID_DETAILS"
	RejectionPolicyViolation    RejectionReason = "POLICY_VIOLATION"
	RejectionNeedsRevision      RejectionReason = "NEEDS_REVISION"
	RejectionOther              RejectionReason = "OTHER"
)

// ValidRejectionReason reports whether the reason belongs to the fixed enum.
func ValidRejectionReason(r RejectionReason) bool {
	switch r {
	case RejectionMissingInformation, RejectionInvalidDetails,
		RejectionPolicyViolation, RejectionNeedsRevision, RejectionOther:
		return true
	}
	return false
}

// HistoryEntry is one immutable fact about a workflow transition. Entries are
// append-only: they are never updated or deleted, and the most recent entry
// defines the document's current stage.
type HistoryEntry struct {
	ID               string           `db:"id" json:"id"`
	DocumentID       string           `db:"document_id" json:"document_id"`
	Action           HistoryAction    `db:"action" json:"action"`
	Status           DocumentStatus   `db:"status" json:"status"`
	Stage            WorkflowStage    `db:"stage" json:"stage"`
	Summary          string           `db:"summary" json:"summary"`
	Details          *string          `db:"details" json:"details,omitempty"`
	RejectionReason  *RejectionReason `db:"rejection_reason" json:"rejection_reason,omitempty"`
	RejectionDetails *string          `db:"rejection_details" json:"rejection_details,omitempty"`
	PerformedByID    *string          `db:"performed_by_id" json:"performed_by_id,omitempty"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
}
