package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusdocs/doctrack-api/internal/models"
)

func TestResolveStepStatusApprovedShortCircuit(t *testing.T) {
	// Approval resolves every stage at or before the current one as
	// completed, regardless of ordering cases that would otherwise apply.
	assert.Equal(t, StepCompleted, ResolveStepStatus(models.StageInstructor, models.StagePresident, models.DocumentStatusApproved))
	assert.Equal(t, StepCompleted, ResolveStepStatus(models.StagePresident, models.StagePresident, models.DocumentStatusApproved))
	assert.Equal(t, StepWaiting, ResolveStepStatus(models.StageRegistrar, models.StagePresident, models.DocumentStatusApproved))
	assert.Equal(t, StepWaiting, ResolveStepStatus(models.StageArchives, models.StagePresident, models.DocumentStatusApproved))
}

func TestResolveStepStatusRejectedOnlyAtCurrentStage(t *testing.T) {
	// A rejection marks exactly the stage where it happened; earlier stages
	// stay completed and later stages stay waiting.
	assert.Equal(t, StepRejected, ResolveStepStatus(models.StageVPAA, models.StageVPAA, models.DocumentStatusRejected))
	assert.Equal(t, StepCompleted, ResolveStepStatus(models.StageDean, models.StageVPAA, models.DocumentStatusRejected))
	assert.Equal(t, StepWaiting, ResolveStepStatus(models.StagePresident, models.StageVPAA, models.DocumentStatusRejected))
}

func TestResolveStepStatusPendingOrdering(t *testing.T) {
	assert.Equal(t, StepCompleted, ResolveStepStatus(models.StageInstructor, models.StageDean, models.DocumentStatusPending))
	assert.Equal(t, StepPending, ResolveStepStatus(models.StageDean, models.StageDean, models.DocumentStatusPending))
	assert.Equal(t, StepWaiting, ResolveStepStatus(models.StageVPAA, models.StageDean, models.DocumentStatusPending))
}

func TestResolveStepStatusExhaustive(t *testing.T) {
	statuses := []models.DocumentStatus{
		models.DocumentStatusPending,
		models.DocumentStatusApproved,
		models.DocumentStatusRejected,
	}
	for _, status := range statuses {
		for _, current := range models.WorkflowStages {
			for _, target := range models.WorkflowStages {
				got := ResolveStepStatus(target, current, status)

				var want string
				switch {
				case status == models.DocumentStatusApproved && target.Index() <= current.Index():
					want = StepCompleted
				case status == models.DocumentStatusApproved:
					want = StepWaiting
				case status == models.DocumentStatusRejected && target == current:
					want = StepRejected
				case target.Index() < current.Index():
					want = StepCompleted
				case target == current:
					want = StepPending
				default:
					want = StepWaiting
				}

				assert.Equalf(t, want, got, "status=%s current=%s target=%s", status, current, target)
			}
		}
	}
}

func TestResolveStepStatusUnknownStage(t *testing.T) {
	// Unknown stages index to -1 and therefore sort before every real stage.
	assert.Equal(t, StepWaiting, ResolveStepStatus(models.StageDean, models.WorkflowStage("BOGUS"), models.DocumentStatusPending))
	assert.Equal(t, StepCompleted, ResolveStepStatus(models.WorkflowStage("BOGUS"), models.StageDean, models.DocumentStatusPending))
}

func TestCurrentStage(t *testing.T) {
	assert.Equal(t, models.StageInstructor, CurrentStage(nil, models.RoleInstructor))
	assert.Equal(t, models.StageDean, CurrentStage(nil, models.RoleDean))

	latest := &models.HistoryEntry{Stage: models.StageVPAA}
	assert.Equal(t, models.StageVPAA, CurrentStage(latest, models.RoleInstructor))
}

func TestBuildTimelineMarksOnlyLatestActive(t *testing.T) {
	now := time.Now().UTC()
	entries := []models.HistoryEntry{
		{Action: models.HistoryActionForwarded, Stage: models.StageDean, CreatedAt: now},
		{Action: models.HistoryActionSubmitted, Stage: models.StageInstructor, CreatedAt: now.Add(-time.Hour)},
	}

	items := BuildTimeline(entries)
	require.Len(t, items, 2)
	assert.True(t, items[0].IsActive)
	assert.False(t, items[1].IsActive)
	assert.Equal(t, models.HistoryActionForwarded, items[0].Action)
}

func TestBuildWorkflowSteps(t *testing.T) {
	steps := BuildWorkflowSteps(models.WorkflowStages, models.StageVPAA, models.DocumentStatusPending)
	require.Len(t, steps, len(models.WorkflowStages))

	byStage := make(map[models.WorkflowStage]string, len(steps))
	for _, step := range steps {
		byStage[step.Stage] = step.Status
	}
	assert.Equal(t, StepCompleted, byStage[models.StageInstructor])
	assert.Equal(t, StepCompleted, byStage[models.StageDean])
	assert.Equal(t, StepPending, byStage[models.StageVPAA])
	assert.Equal(t, StepWaiting, byStage[models.StageVPADA])
	assert.Equal(t, StepWaiting, byStage[models.StagePresident])
}
