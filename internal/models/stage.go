package models

// WorkflowStage is an ordered checkpoint a document passes through. The
// integer index determines precedence when comparing stages; VPAA and VPADA
// are peers conceptually but keep distinct indexes so comparisons stay total.
type WorkflowStage string

const (
	StageInstructor WorkflowStage = "INSTRUCTOR"
	StageDean       WorkflowStage = "DEAN"
	StageVPAA       WorkflowStage = "VPAA"
	StageVPADA      WorkflowStage = "VPADA"
	StagePresident  WorkflowStage = "PRESIDENT"
	StageRegistrar  WorkflowStage = "REGISTRAR"
	StageArchives   WorkflowStage = "ARCHIVES"
)

// WorkflowStages lists every stage in precedence order.
var WorkflowStages = []WorkflowStage{
	StageInstructor,
	StageDean,
	StageVPAA,
	StageVPADA,
	StagePresident,
	StageRegistrar,
	StageArchives,
}

var stageIndexes = func() map[WorkflowStage]int {
	m := make(map[WorkflowStage]int, len(WorkflowStages))
	for i, s := range WorkflowStages {
		m[s] = i
	}
	return m
}()

// Index returns the stage's position in the precedence order, or -1 for an
// unknown stage.
func (s WorkflowStage) Index() int {
	if idx, ok := stageIndexes[s]; ok {
		return idx
	}
	return -1
}

// StageFromRole derives the workflow stage stamped onto a history entry from
// the role of the acting user. Roles without a dedicated stage act at the
// instructor tier.
func StageFromRole(role UserRole) WorkflowStage {
	switch role {
	case RoleDean:
		return StageDean
	case RoleVPAA:
		return StageVPAA
	case RoleVPADA:
		return StageVPADA
	case RolePresident:
		return StagePresident
	default:
		return StageInstructor
	}
}
