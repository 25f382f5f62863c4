package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusdocs/doctrack-api/internal/dto"
	"github.com/campusdocs/doctrack-api/internal/middleware"
	"github.com/campusdocs/doctrack-api/internal/models"
	appErrors "github.com/campusdocs/doctrack-api/pkg/errors"
)

type fakeDocumentSrv struct {
	submitResp  *dto.DocumentItem
	submitErr   error
	approveResp *models.Document
	approveErr  error
	rejectReq   dto.RejectDocumentRequest
	listResp    []dto.DocumentItem
	lastQuery   dto.DocumentQuery
}

func (f *fakeDocumentSrv) Submit(_ context.Context, req dto.SubmitDocumentRequest, actor *models.JWTClaims) (*dto.DocumentItem, error) {
	return f.submitResp, f.submitErr
}

func (f *fakeDocumentSrv) Approve(_ context.Context, id string, req dto.ApproveDocumentRequest, actor *models.JWTClaims) (*models.Document, error) {
	return f.approveResp, f.approveErr
}

func (f *fakeDocumentSrv) Reject(_ context.Context, id string, req dto.RejectDocumentRequest, actor *models.JWTClaims) (*models.Document, error) {
	f.rejectReq = req
	return f.approveResp, f.approveErr
}

func (f *fakeDocumentSrv) Forward(_ context.Context, id string, req dto.ForwardDocumentRequest, actor *models.JWTClaims) (*dto.DocumentItem, error) {
	return f.submitResp, f.submitErr
}

func (f *fakeDocumentSrv) ReplaceAttachment(_ context.Context, id string, req dto.ReplaceAttachmentRequest, actor *models.JWTClaims) (*models.Document, error) {
	return f.approveResp, f.approveErr
}

func (f *fakeDocumentSrv) Delete(_ context.Context, id string, actor *models.JWTClaims) error {
	return f.approveErr
}

func (f *fakeDocumentSrv) Get(_ context.Context, id string, viewer *models.JWTClaims) (*dto.DocumentItem, error) {
	return f.submitResp, f.submitErr
}

func (f *fakeDocumentSrv) List(_ context.Context, query dto.DocumentQuery, viewer *models.JWTClaims) ([]dto.DocumentItem, error) {
	f.lastQuery = query
	return f.listResp, nil
}

func (f *fakeDocumentSrv) ListApproved(_ context.Context, viewer *models.JWTClaims) ([]dto.DocumentItem, error) {
	return f.listResp, nil
}

func (f *fakeDocumentSrv) ListArchived(_ context.Context, viewer *models.JWTClaims) ([]dto.DocumentItem, error) {
	return f.listResp, nil
}

func (f *fakeDocumentSrv) Timeline(_ context.Context, id string, viewer *models.JWTClaims) ([]dto.TimelineItem, []dto.WorkflowStep, error) {
	return nil, nil, f.submitErr
}

func testContext(t *testing.T, method, target string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	c.Request = httptest.NewRequest(method, target, &buf)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1", Role: models.RoleInstructor, FullName: "Ana Cruz"})
	return c, rec
}

func TestDocumentHandlerSubmitInvalidBody(t *testing.T) {
	handler := NewDocumentHandler(&fakeDocumentSrv{})
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/documents", bytes.NewBufferString("{broken"))

	handler.Submit(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentHandlerSubmitSuccess(t *testing.T) {
	handler := NewDocumentHandler(&fakeDocumentSrv{
		submitResp: &dto.DocumentItem{Title: "Course syllabus revision"},
	})
	c, rec := testContext(t, http.MethodPost, "/documents", dto.SubmitDocumentRequest{
		Attachment:     "uploads/memo.pdf",
		FileCategoryID: "cat-1",
		Priority:       models.PriorityHigh,
	})

	handler.Submit(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "Course syllabus revision")
}

func TestDocumentHandlerApproveConflict(t *testing.T) {
	handler := NewDocumentHandler(&fakeDocumentSrv{approveErr: appErrors.ErrAlreadyApproved})
	c, rec := testContext(t, http.MethodPost, "/documents/doc-1/approve", dto.ApproveDocumentRequest{})
	c.Params = gin.Params{{Key: "id", Value: "doc-1"}}

	handler.Approve(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "ALREADY_APPROVED")
}

func TestDocumentHandlerRejectParsesPayload(t *testing.T) {
	srv := &fakeDocumentSrv{approveResp: &models.Document{Status: models.DocumentStatusRejected}}
	handler := NewDocumentHandler(srv)
	c, rec := testContext(t, http.MethodPost, "/documents/doc-1/reject", dto.RejectDocumentRequest{
		Reason:  models.RejectionNeedsRevision,
		Details: "missing appendix",
	})
	c.Params = gin.Params{{Key: "id", Value: "doc-1"}}

	handler.Reject(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.RejectionNeedsRevision, srv.rejectReq.Reason)
}

func TestDocumentHandlerListParsesFilters(t *testing.T) {
	srv := &fakeDocumentSrv{}
	handler := NewDocumentHandler(srv)
	c, rec := testContext(t, http.MethodGet, "/documents?status=pending,approved&priority=high&limit=10", nil)

	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []models.DocumentStatus{models.DocumentStatusPending, models.DocumentStatusApproved}, srv.lastQuery.Status)
	assert.Equal(t, models.PriorityHigh, srv.lastQuery.Priority)
	assert.Equal(t, 10, srv.lastQuery.Limit)
}

func TestDocumentHandlerDeleteNoContent(t *testing.T) {
	handler := NewDocumentHandler(&fakeDocumentSrv{})
	c, rec := testContext(t, http.MethodDelete, "/documents/doc-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "doc-1"}}

	handler.Delete(c)
	// Status set without a body is only flushed once the header is written.
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
