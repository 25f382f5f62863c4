package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campusdocs/doctrack-api/internal/dto"
	"github.com/campusdocs/doctrack-api/internal/models"
	"github.com/campusdocs/doctrack-api/internal/repository"
	appErrors "github.com/campusdocs/doctrack-api/pkg/errors"
)

type documentStore interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id string) (*models.Document, error)
	List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error)
	Transition(ctx context.Context, params repository.TransitionParams) error
	UpdateAttachment(ctx context.Context, id, attachment string, entry *models.HistoryEntry) error
	Delete(ctx context.Context, id string) error
	CreateAssignatories(ctx context.Context, documentID string, userIDs []string) error
	ListAssignatoryIDs(ctx context.Context, documentID string) ([]string, error)
	IsAssignatory(ctx context.Context, documentID, userID string) (bool, error)
}

type historyStore interface {
	Append(ctx context.Context, entry *models.HistoryEntry) error
	ListByDocument(ctx context.Context, documentID string) ([]models.HistoryEntry, error)
	Latest(ctx context.Context, documentID string) (*models.HistoryEntry, error)
	LatestByDocuments(ctx context.Context, documentIDs []string) (map[string]models.HistoryEntry, error)
	ListPerformerIDs(ctx context.Context, documentID string) ([]string, error)
}

type categoryStore interface {
	GetByID(ctx context.Context, id string) (*models.FileCategory, error)
	DesignationName(ctx context.Context, categoryID string) (string, error)
}

type userDirectory interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindActiveByIDs(ctx context.Context, ids []string, roles []models.UserRole) ([]models.User, error)
	FindByRoleAndDesignation(ctx context.Context, role models.UserRole, designationID string) ([]models.User, error)
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// Dispatcher delivers notifications; failures never surface to callers.
type Dispatcher interface {
	Notify(userID string, payload dto.NotificationPayload)
	NotifyMany(userIDs []string, payload dto.NotificationPayload)
}

// AttachmentCleaner schedules best-effort removal of replaced attachments.
type AttachmentCleaner interface {
	ScheduleDelete(url string)
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

type transitionRecorder interface {
	RecordTransition(action models.HistoryAction)
}

// forwardGates maps an actor's role to the roles it may forward documents to.
var forwardGates = map[models.UserRole][]models.UserRole{
	models.RoleDean:  {models.RoleVPAA, models.RoleVPADA, models.RoleHR},
	models.RoleVPAA:  {models.RolePresident},
	models.RoleVPADA: {models.RolePresident},
}

// DocumentService is the workflow engine: it validates and executes document
// transitions, appends the audit ledger, and fans out side effects.
type DocumentService struct {
	docs       documentStore
	history    historyStore
	categories categoryStore
	users      userDirectory
	audit      auditLogger
	dispatcher Dispatcher
	cleaner    AttachmentCleaner
	cache      cacheInvalidator
	metrics    transitionRecorder
	validator  *validator.Validate
	logger     *zap.Logger
}

// DocumentServiceParams groups constructor dependencies.
type DocumentServiceParams struct {
	Documents  documentStore
	History    historyStore
	Categories categoryStore
	Users      userDirectory
	Audit      auditLogger
	Dispatcher Dispatcher
	Cleaner    AttachmentCleaner
	Cache      cacheInvalidator
	Metrics    transitionRecorder
	Validator  *validator.Validate
	Logger     *zap.Logger
}

// NewDocumentService constructs the workflow engine with defaults.
func NewDocumentService(params DocumentServiceParams) *DocumentService {
	v := params.Validator
	if v == nil {
		v = validator.New()
	}
	registerDocumentValidators(v)
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{
		docs:       params.Documents,
		history:    params.History,
		categories: params.Categories,
		users:      params.Users,
		audit:      params.Audit,
		dispatcher: params.Dispatcher,
		cleaner:    params.Cleaner,
		cache:      params.Cache,
		metrics:    params.Metrics,
		validator:  v,
		logger:     logger,
	}
}

func registerDocumentValidators(v *validator.Validate) {
	_ = v.RegisterValidation("priority", func(fl validator.FieldLevel) bool {
		switch models.DocumentPriority(strings.ToUpper(fl.Field().String())) {
		case models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
			return true
		default:
			return false
		}
	})
}

// Submit creates a document in PENDING status, writes the SUBMITTED ledger
// entry, registers any initial assignatories, and notifies the dean of the
// submitter's designation plus the assignatories.
func (s *DocumentService) Submit(ctx context.Context, req dto.SubmitDocumentRequest, actor *models.JWTClaims) (*dto.DocumentItem, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid document payload")
	}
	category, err := s.categories.GetByID(ctx, req.FileCategoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "file category not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load category")
	}

	doc := &models.Document{
		ReferenceID:    generateReferenceID(category.Prefix),
		Attachment:     req.Attachment,
		FileCategoryID: category.ID,
		FileDate:       req.FileDate,
		Priority:       models.DocumentPriority(strings.ToUpper(string(req.Priority))),
		Status:         models.DocumentStatusPending,
		SubmittedByID:  actor.UserID,
	}
	if trimmed := strings.TrimSpace(req.Remarks); trimmed != "" {
		doc.Remarks = &trimmed
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create document")
	}

	stage := models.StageFromRole(actor.Role)
	entry := &models.HistoryEntry{
		DocumentID:    doc.ID,
		Action:        models.HistoryActionSubmitted,
		Status:        models.DocumentStatusPending,
		Stage:         stage,
		Summary:       fmt.Sprintf("Submitted by %s", actor.FullName),
		PerformedByID: &actor.UserID,
	}
	if err := s.history.Append(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record submission")
	}

	assignatories := dedupeIDs(req.AssignatoryIDs)
	if len(assignatories) > 0 {
		if err := s.docs.CreateAssignatories(ctx, doc.ID, assignatories); err != nil {
			s.logger.Warn("failed to register initial assignatories", zap.String("document_id", doc.ID), zap.Error(err))
		}
	}

	s.recordTransition(models.HistoryActionSubmitted)
	s.notifySubmission(ctx, doc, category, actor, assignatories)
	s.emitAudit(ctx, actor, models.AuditActionDocumentSubmit, doc.ID, map[string]interface{}{
		"reference_id": doc.ReferenceID,
		"priority":     doc.Priority,
	})
	s.invalidateDashboards(ctx)

	return &dto.DocumentItem{
		Document:     *doc,
		CategoryName: category.Name,
		Title:        doc.DisplayTitle(category.Name),
		CurrentStage: stage,
	}, nil
}

// Approve marks a pending document approved. The status flip and the ledger
// append commit in one transaction; a document already in a terminal status
// fails without touching the ledger. Stage gating is deliberately not
// enforced here: any authenticated actor may approve a pending document.
func (s *DocumentService) Approve(ctx context.Context, documentID string, req dto.ApproveDocumentRequest, actor *models.JWTClaims) (*models.Document, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	doc, err := s.loadDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Status == models.DocumentStatusApproved {
		return nil, appErrors.ErrAlreadyApproved
	}
	if doc.Status == models.DocumentStatusRejected {
		return nil, appErrors.ErrAlreadyRejected
	}

	var remarks *string
	if trimmed := strings.TrimSpace(req.Remarks); trimmed != "" {
		remarks = &trimmed
	}
	entry := &models.HistoryEntry{
		DocumentID:    doc.ID,
		Action:        models.HistoryActionApproved,
		Status:        models.DocumentStatusApproved,
		Stage:         models.StageFromRole(actor.Role),
		Summary:       fmt.Sprintf("Approved by %s", actor.FullName),
		Details:       remarks,
		PerformedByID: &actor.UserID,
	}
	err = s.docs.Transition(ctx, repository.TransitionParams{
		DocumentID: doc.ID,
		ToStatus:   models.DocumentStatusApproved,
		Remarks:    remarks,
		Entry:      entry,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.terminalConflict(ctx, doc.ID)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve document")
	}
	doc.Status = models.DocumentStatusApproved
	if remarks != nil {
		doc.Remarks = remarks
	}
	s.recordTransition(models.HistoryActionApproved)

	if doc.SubmittedByID != actor.UserID {
		s.dispatch(doc.SubmittedByID, dto.NotificationPayload{
			Title:       "Document approved",
			Description: fmt.Sprintf("%s was approved by %s", doc.ReferenceID, actor.FullName),
			Type:        string(models.NotificationDocumentApproved),
			Link:        documentLink(doc.ID),
		})
	}
	s.emitAudit(ctx, actor, models.AuditActionDocumentApprove, doc.ID, map[string]interface{}{"reference_id": doc.ReferenceID})
	s.invalidateDashboards(ctx)
	return doc, nil
}

// Reject marks a pending document rejected with a reason from the fixed
// vocabulary. Semantics mirror Approve.
func (s *DocumentService) Reject(ctx context.Context, documentID string, req dto.RejectDocumentRequest, actor *models.JWTClaims) (*models.Document, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !models.ValidRejectionReason(req.Reason) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported rejection reason")
	}
	doc, err := s.loadDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Status == models.DocumentStatusRejected {
		return nil, appErrors.ErrAlreadyRejected
	}
	if doc.Status == models.DocumentStatusApproved {
		return nil, appErrors.ErrAlreadyApproved
	}

	reason := req.Reason
	var details *string
	if trimmed := strings.TrimSpace(req.Details); trimmed != "" {
		details = &trimmed
	}
	entry := &models.HistoryEntry{
		DocumentID:       doc.ID,
		Action:           models.HistoryActionRejected,
		Status:           models.DocumentStatusRejected,
		Stage:            models.StageFromRole(actor.Role),
		Summary:          fmt.Sprintf("Rejected by %s", actor.FullName),
		RejectionReason:  &reason,
		RejectionDetails: details,
		PerformedByID:    &actor.UserID,
	}
	err = s.docs.Transition(ctx, repository.TransitionParams{
		DocumentID: doc.ID,
		ToStatus:   models.DocumentStatusRejected,
		Entry:      entry,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.terminalConflict(ctx, doc.ID)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject document")
	}
	doc.Status = models.DocumentStatusRejected
	s.recordTransition(models.HistoryActionRejected)

	if doc.SubmittedByID != actor.UserID {
		s.dispatch(doc.SubmittedByID, dto.NotificationPayload{
			Title:       "Document rejected",
			Description: fmt.Sprintf("%s was rejected: %s", doc.ReferenceID, reason),
			Type:        string(models.NotificationDocumentRejected),
			Link:        documentLink(doc.ID),
		})
	}
	s.emitAudit(ctx, actor, models.AuditActionDocumentReject, doc.ID, map[string]interface{}{
		"reference_id": doc.ReferenceID,
		"reason":       reason,
	})
	s.invalidateDashboards(ctx)
	return doc, nil
}

// Forward routes a document to reviewers at the next tier. The gate is
// role-based: deans forward to VPAA/VPADA/HR, the VPs forward to the
// president. Requested ids outside the legal target set or inactive are
// silently dropped; the call fails only when nothing remains.
func (s *DocumentService) Forward(ctx context.Context, documentID string, req dto.ForwardDocumentRequest, actor *models.JWTClaims) (*dto.DocumentItem, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	targetRoles, ok := forwardGates[actor.Role]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "role cannot forward documents")
	}
	requested := dedupeIDs(req.TargetUserIDs)
	if len(requested) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "targetUserIds is required")
	}
	doc, err := s.loadDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	recipients, err := s.users.FindActiveByIDs(ctx, requested, targetRoles)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve recipients")
	}
	if len(recipients) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no valid recipients")
	}

	recipientIDs := make([]string, 0, len(recipients))
	recipientNames := make([]string, 0, len(recipients))
	for _, recipient := range recipients {
		recipientIDs = append(recipientIDs, recipient.ID)
		recipientNames = append(recipientNames, recipient.FullName)
	}
	if err := s.docs.CreateAssignatories(ctx, doc.ID, recipientIDs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign recipients")
	}

	var note *string
	if trimmed := strings.TrimSpace(req.Note); trimmed != "" {
		note = &trimmed
	}
	stage := models.StageFromRole(actor.Role)
	entry := &models.HistoryEntry{
		DocumentID:    doc.ID,
		Action:        models.HistoryActionForwarded,
		Status:        doc.Status,
		Stage:         stage,
		Summary:       fmt.Sprintf("Forwarded to %s", strings.Join(recipientNames, ", ")),
		Details:       note,
		PerformedByID: &actor.UserID,
	}
	if err := s.history.Append(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record forward")
	}

	s.recordTransition(models.HistoryActionForwarded)
	s.dispatchMany(recipientIDs, dto.NotificationPayload{
		Title:       "Document forwarded to you",
		Description: fmt.Sprintf("%s forwarded %s for your review", actor.FullName, doc.ReferenceID),
		Type:        string(models.NotificationDocumentForwarded),
		Link:        documentLink(doc.ID),
	})
	if doc.SubmittedByID != actor.UserID {
		s.dispatch(doc.SubmittedByID, dto.NotificationPayload{
			Title:       "Document moved forward",
			Description: fmt.Sprintf("%s was forwarded to %s", doc.ReferenceID, strings.Join(recipientNames, ", ")),
			Type:        string(models.NotificationDocumentForwarded),
			Link:        documentLink(doc.ID),
		})
	}
	s.emitAudit(ctx, actor, models.AuditActionDocumentForward, doc.ID, map[string]interface{}{
		"reference_id": doc.ReferenceID,
		"recipients":   recipientIDs,
	})

	assignatoryIDs, err := s.docs.ListAssignatoryIDs(ctx, doc.ID)
	if err != nil {
		s.logger.Warn("failed to reload assignatories", zap.String("document_id", doc.ID), zap.Error(err))
	}
	return &dto.DocumentItem{
		Document:      *doc,
		Title:         doc.DisplayTitle(""),
		CurrentStage:  stage,
		Assignatories: assignatoryIDs,
	}, nil
}

// ReplaceAttachment swaps the stored file for a signed copy. Allowed for the
// owner, any assignatory, or the executive roles. The previous attachment is
// cleaned up best-effort after the swap commits.
func (s *DocumentService) ReplaceAttachment(ctx context.Context, documentID string, req dto.ReplaceAttachmentRequest, actor *models.JWTClaims) (*models.Document, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attachment payload")
	}
	doc, err := s.loadDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	allowed := doc.SubmittedByID == actor.UserID || actor.Role.IsPrivileged()
	if !allowed {
		assigned, err := s.docs.IsAssignatory(ctx, doc.ID, actor.UserID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check assignment")
		}
		allowed = assigned
	}
	if !allowed {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not allowed to replace this attachment")
	}

	previous := doc.Attachment
	entry := &models.HistoryEntry{
		DocumentID:    doc.ID,
		Action:        models.HistoryActionSignatureAttached,
		Status:        doc.Status,
		Stage:         models.StageFromRole(actor.Role),
		Summary:       fmt.Sprintf("Signed copy attached by %s", actor.FullName),
		PerformedByID: &actor.UserID,
	}
	if err := s.docs.UpdateAttachment(ctx, doc.ID, req.Attachment, entry); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace attachment")
	}
	doc.Attachment = req.Attachment
	s.recordTransition(models.HistoryActionSignatureAttached)

	if previous != "" && previous != req.Attachment && s.cleaner != nil {
		s.cleaner.ScheduleDelete(previous)
	}
	s.emitAudit(ctx, actor, models.AuditActionDocumentAttach, doc.ID, map[string]interface{}{"reference_id": doc.ReferenceID})
	return doc, nil
}

// Delete removes a document. Only the owner may delete, and never once the
// document is approved.
func (s *DocumentService) Delete(ctx context.Context, documentID string, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	doc, err := s.loadDocument(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.SubmittedByID != actor.UserID {
		return appErrors.Clone(appErrors.ErrForbidden, "only the submitter may delete a document")
	}
	if doc.Status == models.DocumentStatusApproved {
		return appErrors.Clone(appErrors.ErrInvalidState, "approved documents cannot be deleted")
	}
	if err := s.docs.Delete(ctx, doc.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete document")
	}
	if doc.Attachment != "" && s.cleaner != nil {
		s.cleaner.ScheduleDelete(doc.Attachment)
	}
	s.emitAudit(ctx, actor, models.AuditActionDocumentDelete, doc.ID, map[string]interface{}{"reference_id": doc.ReferenceID})
	s.invalidateDashboards(ctx)
	return nil
}

// Get loads one document with its derived stage, enforcing list visibility.
func (s *DocumentService) Get(ctx context.Context, documentID string, viewer *models.JWTClaims) (*dto.DocumentItem, error) {
	if viewer == nil {
		return nil, appErrors.ErrUnauthorized
	}
	doc, err := s.loadDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	assignatoryIDs, err := s.docs.ListAssignatoryIDs(ctx, doc.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignatories")
	}
	if !CanViewDocument(doc, assignatoryIDs, viewer) {
		return nil, appErrors.ErrForbidden
	}
	item, err := s.project(ctx, doc)
	if err != nil {
		return nil, err
	}
	item.Assignatories = assignatoryIDs
	return item, nil
}

// List returns documents visible to the viewer with derived current stages.
func (s *DocumentService) List(ctx context.Context, query dto.DocumentQuery, viewer *models.JWTClaims) ([]dto.DocumentItem, error) {
	if viewer == nil {
		return nil, appErrors.ErrUnauthorized
	}
	filter := models.DocumentFilter{
		Status:         query.Status,
		Priority:       query.Priority,
		FileCategoryID: query.FileCategoryID,
		Search:         query.Search,
		Limit:          query.Limit,
		Offset:         query.Offset,
	}
	ApplyListVisibility(&filter, viewer)
	docs, err := s.docs.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}
	return s.projectAll(ctx, docs)
}

// ListApproved applies the approved-repository policy, which is stricter
// than list visibility and evaluated per document.
func (s *DocumentService) ListApproved(ctx context.Context, viewer *models.JWTClaims) ([]dto.DocumentItem, error) {
	if viewer == nil {
		return nil, appErrors.ErrUnauthorized
	}
	docs, err := s.docs.List(ctx, models.DocumentFilter{
		Status: []models.DocumentStatus{models.DocumentStatusApproved},
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list approved documents")
	}
	visible := make([]models.Document, 0, len(docs))
	for _, doc := range docs {
		assignatoryIDs, err := s.docs.ListAssignatoryIDs(ctx, doc.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignatories")
		}
		performerIDs, err := s.history.ListPerformerIDs(ctx, doc.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load performers")
		}
		designation, err := s.categories.DesignationName(ctx, doc.FileCategoryID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load category designation")
		}
		if ApprovedRepositoryVisible(ApprovedVisibilityContext{
			Document:            doc,
			AssignatoryIDs:      assignatoryIDs,
			PerformerIDs:        performerIDs,
			CategoryDesignation: designation,
		}, viewer) {
			visible = append(visible, doc)
		}
	}
	return s.projectAll(ctx, visible)
}

// ListArchived returns soft-archived documents under the archive policy.
func (s *DocumentService) ListArchived(ctx context.Context, viewer *models.JWTClaims) ([]dto.DocumentItem, error) {
	if viewer == nil {
		return nil, appErrors.ErrUnauthorized
	}
	archived := true
	filter := models.DocumentFilter{Archived: &archived}
	ApplyArchiveVisibility(&filter, viewer)
	docs, err := s.docs.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list archived documents")
	}
	return s.projectAll(ctx, docs)
}

// Timeline replays a document's ledger into display items plus the rendered
// stage snapshot.
func (s *DocumentService) Timeline(ctx context.Context, documentID string, viewer *models.JWTClaims) ([]dto.TimelineItem, []dto.WorkflowStep, error) {
	if viewer == nil {
		return nil, nil, appErrors.ErrUnauthorized
	}
	doc, err := s.loadDocument(ctx, documentID)
	if err != nil {
		return nil, nil, err
	}
	assignatoryIDs, err := s.docs.ListAssignatoryIDs(ctx, doc.ID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignatories")
	}
	if !CanViewDocument(doc, assignatoryIDs, viewer) {
		return nil, nil, appErrors.ErrForbidden
	}
	entries, err := s.history.ListByDocument(ctx, doc.ID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load history")
	}
	var latest *models.HistoryEntry
	var submitterRole models.UserRole
	if len(entries) > 0 {
		latest = &entries[0]
	} else if submitter, err := s.users.FindByID(ctx, doc.SubmittedByID); err == nil && submitter != nil {
		submitterRole = submitter.Role
	}
	current := CurrentStage(latest, submitterRole)
	return BuildTimeline(entries), BuildWorkflowSteps(models.WorkflowStages, current, doc.Status), nil
}

func (s *DocumentService) loadDocument(ctx context.Context, id string) (*models.Document, error) {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	return doc, nil
}

// terminalConflict re-reads the document after a transition lost the race so
// the caller gets the precise terminal-status error.
func (s *DocumentService) terminalConflict(ctx context.Context, documentID string) error {
	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		return appErrors.Clone(appErrors.ErrConflict, "document already processed")
	}
	switch doc.Status {
	case models.DocumentStatusApproved:
		return appErrors.ErrAlreadyApproved
	case models.DocumentStatusRejected:
		return appErrors.ErrAlreadyRejected
	default:
		return appErrors.Clone(appErrors.ErrConflict, "document already processed")
	}
}

func (s *DocumentService) project(ctx context.Context, doc *models.Document) (*dto.DocumentItem, error) {
	categoryName := ""
	if category, err := s.categories.GetByID(ctx, doc.FileCategoryID); err == nil {
		categoryName = category.Name
	}
	latest, err := s.history.Latest(ctx, doc.ID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load latest history")
	}
	stage := models.StageInstructor
	if latest != nil {
		stage = latest.Stage
	}
	return &dto.DocumentItem{
		Document:     *doc,
		CategoryName: categoryName,
		Title:        doc.DisplayTitle(categoryName),
		CurrentStage: stage,
	}, nil
}

func (s *DocumentService) projectAll(ctx context.Context, docs []models.Document) ([]dto.DocumentItem, error) {
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.ID)
	}
	latest, err := s.history.LatestByDocuments(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to derive stages")
	}
	items := make([]dto.DocumentItem, 0, len(docs))
	for _, doc := range docs {
		stage := models.StageInstructor
		if entry, ok := latest[doc.ID]; ok {
			stage = entry.Stage
		}
		items = append(items, dto.DocumentItem{
			Document:     doc,
			Title:        doc.DisplayTitle(""),
			CurrentStage: stage,
		})
	}
	return items, nil
}

func (s *DocumentService) notifySubmission(ctx context.Context, doc *models.Document, category *models.FileCategory, actor *models.JWTClaims, assignatories []string) {
	payload := dto.NotificationPayload{
		Title:       "New document submitted",
		Description: fmt.Sprintf("%s submitted %s", actor.FullName, doc.ReferenceID),
		Type:        string(models.NotificationDocumentSubmitted),
		Link:        documentLink(doc.ID),
	}
	if actor.DesignationID != "" {
		deans, err := s.users.FindByRoleAndDesignation(ctx, models.RoleDean, actor.DesignationID)
		if err != nil {
			s.logger.Warn("failed to resolve dean for notification", zap.Error(err))
		} else {
			for _, dean := range deans {
				if dean.ID != actor.UserID {
					s.dispatch(dean.ID, payload)
				}
			}
		}
	}
	s.dispatchMany(assignatories, payload)
}

func (s *DocumentService) dispatch(userID string, payload dto.NotificationPayload) {
	if s.dispatcher == nil || userID == "" {
		return
	}
	s.dispatcher.Notify(userID, payload)
}

func (s *DocumentService) dispatchMany(userIDs []string, payload dto.NotificationPayload) {
	if s.dispatcher == nil || len(userIDs) == 0 {
		return
	}
	s.dispatcher.NotifyMany(userIDs, payload)
}

func (s *DocumentService) emitAudit(ctx context.Context, actor *models.JWTClaims, action, documentID string, values map[string]interface{}) {
	if s.audit == nil {
		return
	}
	payload, _ := json.Marshal(values)
	log := &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     action,
		Resource:   "document",
		ResourceID: &documentID,
		NewValues:  payload,
		IPAddress:  "system",
		UserAgent:  "document-service",
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to persist audit log", zap.Error(err))
	}
}

func (s *DocumentService) recordTransition(action models.HistoryAction) {
	if s.metrics != nil {
		s.metrics.RecordTransition(action)
	}
}

func (s *DocumentService) invalidateDashboards(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "dashboard:summary:*"); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}

// generateReferenceID builds the human-readable id DOC-{prefix}-{rand4}.
// Uniqueness is probabilistic, matching how the ids are treated downstream.
func generateReferenceID(prefix string) string {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ123456789"
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("DOC-%s-%04d", strings.ToUpper(prefix), time.Now().UnixNano()%10000)
	}
	out := make([]byte, 4)
	for i, b := range buf {
		out[i] = alphabet[int(b)%len(alphabet)]
	}
	return fmt.Sprintf("DOC-%s-%s", strings.ToUpper(prefix), string(out))
}

func dedupeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		trimmed := strings.TrimSpace(id)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}

func documentLink(documentID string) string {
	return "/documents/" + documentID
}
