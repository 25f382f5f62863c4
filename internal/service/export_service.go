package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusdocs/doctrack-api/internal/dto"
	"github.com/campusdocs/doctrack-api/internal/models"
	appErrors "github.com/campusdocs/doctrack-api/pkg/errors"
	"github.com/campusdocs/doctrack-api/pkg/export"
)

type exportStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
}

type exportSigner interface {
	Generate(exportID, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (exportID, relPath string, expiresAt time.Time, err error)
}

var registerHeaders = []string{"Reference", "Title", "Category", "Status", "Priority", "Stage", "Submitted", "File Date"}

// ExportService renders the document register visible to a viewer as CSV or
// PDF, stores the file, and hands back a signed download token.
type ExportService struct {
	docs    documentStore
	history historyStore
	storage exportStorage
	signer  exportSigner
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	audit   auditLogger
	logger  *zap.Logger
}

// NewExportService constructs an export service.
func NewExportService(docs documentStore, history historyStore, storage exportStorage, signer exportSigner, audit auditLogger, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		docs:    docs,
		history: history,
		storage: storage,
		signer:  signer,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		audit:   audit,
		logger:  logger,
	}
}

// GenerateRegister builds the register export under the viewer's list
// visibility and returns the signed download descriptor.
func (s *ExportService) GenerateRegister(ctx context.Context, format string, viewer *models.JWTClaims) (*dto.ExportResponse, error) {
	if viewer == nil {
		return nil, appErrors.ErrUnauthorized
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "pdf" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}

	filter := models.DocumentFilter{}
	ApplyListVisibility(&filter, viewer)
	docs, err := s.docs.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load documents for export")
	}

	dataset, err := s.buildDataset(ctx, docs)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch format {
	case "csv":
		payload, err = s.csv.Render(dataset)
	case "pdf":
		payload, err = s.pdf.Render(dataset, "Document Register")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	exportID := uuid.NewString()
	filename := fmt.Sprintf("register-%s-%s.%s", time.Now().UTC().Format("20060102-150405"), exportID[:8], format)
	if _, err := s.storage.Save(filename, payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}

	token, expiresAt, err := s.signer.Generate(exportID, filename)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download")
	}

	if s.audit != nil {
		userID := viewer.UserID
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			UserID:    &userID,
			Action:    models.AuditActionExportGenerate,
			Resource:  "export",
			NewValues: []byte(fmt.Sprintf(`{"format":%q,"rows":%d}`, format, len(docs))),
			IPAddress: "system",
			UserAgent: "export-service",
		}); err != nil {
			s.logger.Warn("failed to persist export audit log", zap.Error(err))
		}
	}

	return &dto.ExportResponse{
		Filename:    filename,
		Format:      format,
		DownloadURL: "/api/v1/exports/download?token=" + token,
		ExpiresAt:   expiresAt.UTC().Format(time.RFC3339),
	}, nil
}

// OpenDownload validates the token and opens the referenced export file.
func (s *ExportService) OpenDownload(token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export no longer available")
	}
	return file, relPath, nil
}

func (s *ExportService) buildDataset(ctx context.Context, docs []models.Document) (export.Dataset, error) {
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.ID)
	}
	latest, err := s.history.LatestByDocuments(ctx, ids)
	if err != nil {
		return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to derive stages for export")
	}

	rows := make([]map[string]string, 0, len(docs))
	for _, doc := range docs {
		stage := models.StageInstructor
		if entry, ok := latest[doc.ID]; ok {
			stage = entry.Stage
		}
		rows = append(rows, map[string]string{
			"Reference": doc.ReferenceID,
			"Title":     doc.DisplayTitle(""),
			"Category":  doc.FileCategoryID,
			"Status":    string(doc.Status),
			"Priority":  string(doc.Priority),
			"Stage":     string(stage),
			"Submitted": doc.CreatedAt.UTC().Format("2006-01-02 15:04"),
			"File Date": doc.FileDate.UTC().Format("2006-01-02"),
		})
	}
	return export.Dataset{Headers: registerHeaders, Rows: rows}, nil
}
