package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campusdocs/doctrack-api/internal/models"
)

func claimsFor(role models.UserRole, userID, designationID string) *models.JWTClaims {
	return &models.JWTClaims{UserID: userID, Role: role, DesignationID: designationID}
}

func TestApplyListVisibility(t *testing.T) {
	tests := []struct {
		name              string
		viewer            *models.JWTClaims
		wantSubmittedBy   string
		wantOwnerAssigned string
	}{
		{name: "instructor sees own", viewer: claimsFor(models.RoleInstructor, "u1", ""), wantSubmittedBy: "u1"},
		{name: "registrar sees own", viewer: claimsFor(models.RoleRegistrar, "u2", ""), wantSubmittedBy: "u2"},
		{name: "dean sees own plus assigned", viewer: claimsFor(models.RoleDean, "u3", "d1"), wantOwnerAssigned: "u3"},
		{name: "hr sees own plus assigned", viewer: claimsFor(models.RoleHR, "u4", ""), wantOwnerAssigned: "u4"},
		{name: "vpaa unrestricted", viewer: claimsFor(models.RoleVPAA, "u5", "")},
		{name: "vpada unrestricted", viewer: claimsFor(models.RoleVPADA, "u6", "")},
		{name: "president unrestricted", viewer: claimsFor(models.RolePresident, "u7", "")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			filter := models.DocumentFilter{}
			ApplyListVisibility(&filter, tc.viewer)
			assert.Equal(t, tc.wantSubmittedBy, filter.SubmittedByID)
			assert.Equal(t, tc.wantOwnerAssigned, filter.OwnerOrAssigned)
		})
	}
}

func TestCanViewDocument(t *testing.T) {
	doc := &models.Document{ID: "doc-1", SubmittedByID: "owner"}
	assignatories := []string{"dean-1"}

	assert.True(t, CanViewDocument(doc, assignatories, claimsFor(models.RoleInstructor, "owner", "")))
	assert.False(t, CanViewDocument(doc, assignatories, claimsFor(models.RoleInstructor, "stranger", "")))
	assert.True(t, CanViewDocument(doc, assignatories, claimsFor(models.RoleDean, "dean-1", "")))
	assert.False(t, CanViewDocument(doc, assignatories, claimsFor(models.RoleDean, "dean-2", "")))
	assert.True(t, CanViewDocument(doc, assignatories, claimsFor(models.RoleVPAA, "anyone", "")))
}

func TestApprovedRepositoryVisibleOwnerAndAssignatory(t *testing.T) {
	ctx := ApprovedVisibilityContext{
		Document:       models.Document{SubmittedByID: "owner"},
		AssignatoryIDs: []string{"dean-1"},
	}

	assert.True(t, ApprovedRepositoryVisible(ctx, claimsFor(models.RoleInstructor, "owner", "")))
	assert.True(t, ApprovedRepositoryVisible(ctx, claimsFor(models.RoleDean, "dean-1", "")))
}

func TestApprovedRepositoryDeniesPrivilegedBlanketAccess(t *testing.T) {
	// Broad listing access does not carry over: an executive who never
	// touched the document does not see it in the approved repository.
	ctx := ApprovedVisibilityContext{
		Document: models.Document{SubmittedByID: "owner"},
	}
	assert.False(t, ApprovedRepositoryVisible(ctx, claimsFor(models.RoleVPAA, "vp-1", "")))
	assert.False(t, ApprovedRepositoryVisible(ctx, claimsFor(models.RolePresident, "pres-1", "")))
}

func TestApprovedRepositoryPrivilegedOwnerStillQualifies(t *testing.T) {
	ctx := ApprovedVisibilityContext{
		Document: models.Document{SubmittedByID: "vp-1"},
	}
	assert.True(t, ApprovedRepositoryVisible(ctx, claimsFor(models.RoleVPAA, "vp-1", "")))
}

func TestApprovedRepositoryReservedCategory(t *testing.T) {
	tests := []struct {
		designation string
		reserved    bool
	}{
		{"Office of the President", true},
		{"VP for Academic Affairs", true},
		{"VPAA Office", true},
		{"College of Engineering", false},
		{"", false},
	}
	for _, tc := range tests {
		ctx := ApprovedVisibilityContext{
			Document:            models.Document{SubmittedByID: "owner"},
			PerformerIDs:        []string{"participant"},
			CategoryDesignation: tc.designation,
		}
		got := ApprovedRepositoryVisible(ctx, claimsFor(models.RoleRegistrar, "participant", ""))
		assert.Equalf(t, !tc.reserved, got, "designation %q", tc.designation)
	}
}

func TestApprovedRepositoryParticipationFallback(t *testing.T) {
	ctx := ApprovedVisibilityContext{
		Document:     models.Document{SubmittedByID: "owner"},
		PerformerIDs: []string{"dean-1", "registrar-1"},
	}
	assert.True(t, ApprovedRepositoryVisible(ctx, claimsFor(models.RoleRegistrar, "registrar-1", "")))
	assert.False(t, ApprovedRepositoryVisible(ctx, claimsFor(models.RoleRegistrar, "registrar-2", "")))
}

func TestApplyArchiveVisibility(t *testing.T) {
	filter := models.DocumentFilter{}
	ApplyArchiveVisibility(&filter, claimsFor(models.RoleVPADA, "u1", ""))
	assert.Empty(t, filter.SubmittedByID)
	assert.Empty(t, filter.DesignationID)

	filter = models.DocumentFilter{}
	ApplyArchiveVisibility(&filter, claimsFor(models.RoleDean, "u2", "designation-9"))
	assert.Equal(t, "designation-9", filter.DesignationID)
	assert.Empty(t, filter.SubmittedByID)

	// A dean without a designation falls back to own submissions.
	filter = models.DocumentFilter{}
	ApplyArchiveVisibility(&filter, claimsFor(models.RoleDean, "u3", ""))
	assert.Equal(t, "u3", filter.SubmittedByID)

	filter = models.DocumentFilter{}
	ApplyArchiveVisibility(&filter, claimsFor(models.RoleInstructor, "u4", "designation-9"))
	assert.Equal(t, "u4", filter.SubmittedByID)
	assert.Empty(t, filter.DesignationID)
}

func TestDashboardScopeFor(t *testing.T) {
	assert.Equal(t, models.DashboardScope{}, DashboardScopeFor(claimsFor(models.RolePresident, "u1", "")))
	assert.Equal(t, models.DashboardScope{}, DashboardScopeFor(claimsFor(models.RoleHR, "u2", "")))
	assert.Equal(t, models.DashboardScope{DesignationID: "d1"}, DashboardScopeFor(claimsFor(models.RoleDean, "u3", "d1")))
	assert.Equal(t, models.DashboardScope{SubmittedByID: "u4"}, DashboardScopeFor(claimsFor(models.RoleInstructor, "u4", "")))
}
