package service

import (
	"github.com/campusdocs/doctrack-api/internal/dto"
	"github.com/campusdocs/doctrack-api/internal/models"
)

// Step display statuses for rendered workflow snapshots.
const (
	StepCompleted = "Completed"
	StepPending   = "Pending"
	StepWaiting   = "Waiting"
	StepRejected  = "Rejected"
)

// ResolveStepStatus computes the display status of a target stage relative to
// the document's current stage and terminal status. Branch order is load
// bearing: the approved short-circuit runs before the equality-rejected check,
// which runs before the ordering comparisons.
func ResolveStepStatus(target, current models.WorkflowStage, status models.DocumentStatus) string {
	targetIdx := target.Index()
	currentIdx := current.Index()
	if status == models.DocumentStatusApproved {
		if targetIdx <= currentIdx {
			return StepCompleted
		}
		return StepWaiting
	}
	if status == models.DocumentStatusRejected && targetIdx == currentIdx {
		return StepRejected
	}
	if targetIdx < currentIdx {
		return StepCompleted
	}
	if targetIdx == currentIdx {
		return StepPending
	}
	return StepWaiting
}

// CurrentStage derives a document's stage from its latest ledger entry. A
// document without history sits at the stage implied by its submitter's role.
func CurrentStage(latest *models.HistoryEntry, submitterRole models.UserRole) models.WorkflowStage {
	if latest == nil {
		return models.StageFromRole(submitterRole)
	}
	return latest.Stage
}

// BuildTimeline projects ledger entries (already ordered most recent first)
// into display items. Only the most recent entry is flagged active.
func BuildTimeline(entries []models.HistoryEntry) []dto.TimelineItem {
	items := make([]dto.TimelineItem, 0, len(entries))
	for i, entry := range entries {
		items = append(items, dto.TimelineItem{
			Action:        entry.Action,
			Stage:         entry.Stage,
			Status:        entry.Status,
			Summary:       entry.Summary,
			Details:       entry.Details,
			PerformedByID: entry.PerformedByID,
			CreatedAt:     entry.CreatedAt,
			IsActive:      i == 0,
		})
	}
	return items
}

// BuildWorkflowSteps renders a stage-progress snapshot across the given
// target stages.
func BuildWorkflowSteps(targets []models.WorkflowStage, current models.WorkflowStage, status models.DocumentStatus) []dto.WorkflowStep {
	steps := make([]dto.WorkflowStep, 0, len(targets))
	for _, target := range targets {
		steps = append(steps, dto.WorkflowStep{
			Stage:  target,
			Status: ResolveStepStatus(target, current, status),
		})
	}
	return steps
}
