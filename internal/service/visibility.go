package service

import (
	"strings"

	"github.com/campusdocs/doctrack-api/internal/models"
)

// The three visibility surfaces (listing, approved repository, archive)
// follow intentionally different rule sets. They stay separate named policies
// here; do not merge them into one ACL.

// ApplyListVisibility narrows a document filter to what the viewer may see in
// general listings: privileged roles see everything, deans and HR see their
// own submissions plus documents forwarded to them, everyone else sees only
// their own submissions.
func ApplyListVisibility(filter *models.DocumentFilter, viewer *models.JWTClaims) {
	switch {
	case viewer.Role.IsPrivileged():
		// unrestricted
	case viewer.Role == models.RoleDean || viewer.Role == models.RoleHR:
		filter.OwnerOrAssigned = viewer.UserID
	default:
		filter.SubmittedByID = viewer.UserID
	}
}

// CanViewDocument is the per-document predicate matching ApplyListVisibility,
// used on detail reads where the row is already loaded.
func CanViewDocument(doc *models.Document, assignatoryIDs []string, viewer *models.JWTClaims) bool {
	if viewer.Role.IsPrivileged() {
		return true
	}
	if doc.SubmittedByID == viewer.UserID {
		return true
	}
	if viewer.Role == models.RoleDean || viewer.Role == models.RoleHR {
		return containsID(assignatoryIDs, viewer.UserID)
	}
	return false
}

// ApprovedVisibilityContext carries the loaded metadata the approved
// repository policy evaluates per document.
type ApprovedVisibilityContext struct {
	Document            models.Document
	AssignatoryIDs      []string
	PerformerIDs        []string
	CategoryDesignation string
}

// reservedDesignation reports whether the category's designation is reserved
// to executive offices in the approved repository.
func reservedDesignation(name string) bool {
	lowered := strings.ToLower(name)
	if lowered == "" {
		return false
	}
	return strings.Contains(lowered, "president") ||
		strings.Contains(lowered, "academic affairs") ||
		strings.Contains(lowered, "vpaa")
}

// ApprovedRepositoryVisible decides whether the viewer sees a document in the
// approved repository. This is stricter than list visibility: owners and
// assignatories always qualify, privileged roles get no blanket access here,
// and reserved categories hide the document from everyone else. Remaining
// viewers qualify only when they participated somewhere in the workflow.
func ApprovedRepositoryVisible(ctx ApprovedVisibilityContext, viewer *models.JWTClaims) bool {
	if ctx.Document.SubmittedByID == viewer.UserID {
		return true
	}
	if containsID(ctx.AssignatoryIDs, viewer.UserID) {
		return true
	}
	if viewer.Role.IsPrivileged() {
		return false
	}
	if reservedDesignation(ctx.CategoryDesignation) {
		return false
	}
	return containsID(ctx.PerformerIDs, viewer.UserID)
}

// ApplyArchiveVisibility narrows a filter for the archived listing: deans see
// everything submitted from their designation, privileged roles see all, and
// everyone else (instructors included) sees only their own.
func ApplyArchiveVisibility(filter *models.DocumentFilter, viewer *models.JWTClaims) {
	switch {
	case viewer.Role.IsPrivileged():
		// unrestricted
	case viewer.Role == models.RoleDean && viewer.DesignationID != "":
		filter.DesignationID = viewer.DesignationID
	default:
		filter.SubmittedByID = viewer.UserID
	}
}

// DashboardScopeFor mirrors list visibility for analytics: instructors are
// scoped to their own submissions, deans to their designation, and the
// executive roles plus HR are unscoped.
func DashboardScopeFor(viewer *models.JWTClaims) models.DashboardScope {
	switch {
	case viewer.Role.IsPrivileged() || viewer.Role == models.RoleHR:
		return models.DashboardScope{}
	case viewer.Role == models.RoleDean && viewer.DesignationID != "":
		return models.DashboardScope{DesignationID: viewer.DesignationID}
	default:
		return models.DashboardScope{SubmittedByID: viewer.UserID}
	}
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
