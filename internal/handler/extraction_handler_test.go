package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"reqsmith/internal/domain"
	"reqsmith/internal/handler"
	"reqsmith/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(svc *mocks.MockExtractionService) *gin.Engine {
	h := handler.NewExtractionHandler(svc)
	r := gin.New()
	r.POST("/extractions", h.Submit)
	r.GET("/extractions/:id", h.Get)
	r.GET("/extractions/:id/export", h.Export)
	return r
}

func multipartBody(t *testing.T, fields map[string]string, fileName string, fileData []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = fw.Write(fileData)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) handler.APIResponse {
	t.Helper()
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestSubmit_EnqueuesByDefault(t *testing.T) {
	svc := new(mocks.MockExtractionService)
	job := &domain.ExtractionJob{ID: uuid.New(), FileName: "spec.pdf", Status: domain.ExtractionStatusQueued}
	svc.On("Enqueue", mock.Anything, mock.Anything).Return(job, nil).Once()

	body, contentType := multipartBody(t, nil, "spec.pdf", []byte("%PDF-1.7 data"))
	req := httptest.NewRequest(http.MethodPost, "/extractions", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
	svc.AssertExpectations(t)
}

func TestSubmit_SyncMode(t *testing.T) {
	svc := new(mocks.MockExtractionService)
	batch := &domain.ExtractionBatch{Format: domain.FormatPDF, Requirements: []domain.Requirement{}}
	svc.On("ExtractSync", mock.Anything, mock.Anything).Return(batch, nil).Once()

	body, contentType := multipartBody(t, map[string]string{"mode": "sync"}, "spec.pdf", []byte("%PDF-1.7 data"))
	req := httptest.NewRequest(http.MethodPost, "/extractions", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
	svc.AssertExpectations(t)
}

func TestSubmit_SyncGapFillOutageReturnsPartial(t *testing.T) {
	svc := new(mocks.MockExtractionService)
	partial := &domain.ExtractionBatch{Format: domain.FormatPDF, Requirements: []domain.Requirement{{ID: "r1"}}}
	svc.On("ExtractSync", mock.Anything, mock.Anything).
		Return(nil, &domain.GapFillUnavailableError{Partial: partial, Err: errors.New("kb down")}).Once()

	body, contentType := multipartBody(t, map[string]string{"mode": "sync"}, "spec.pdf", []byte("%PDF-1.7 data"))
	req := httptest.NewRequest(http.MethodPost, "/extractions", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "GAP_FILL_UNAVAILABLE", resp.Error.Code)
	assert.NotNil(t, resp.Data)
}

func TestSubmit_MissingFile(t *testing.T) {
	svc := new(mocks.MockExtractionService)
	req := httptest.NewRequest(http.MethodPost, "/extractions", bytes.NewBufferString(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "MISSING_FILE", resp.Error.Code)
}

func TestGet(t *testing.T) {
	svc := new(mocks.MockExtractionService)
	id := uuid.New()
	svc.On("GetJob", mock.Anything, id).
		Return(&domain.ExtractionJob{ID: id, Status: domain.ExtractionStatusCompleted}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/extractions/"+id.String(), nil)
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeResponse(t, rec).Success)
}

func TestGet_BadID(t *testing.T) {
	svc := new(mocks.MockExtractionService)
	req := httptest.NewRequest(http.MethodGet, "/extractions/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGet_NotFound(t *testing.T) {
	svc := new(mocks.MockExtractionService)
	id := uuid.New()
	svc.On("GetJob", mock.Anything, id).Return(nil, domain.ErrNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/extractions/"+id.String(), nil)
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestExport_CSV(t *testing.T) {
	svc := new(mocks.MockExtractionService)
	id := uuid.New()
	svc.On("GetJob", mock.Anything, id).Return(&domain.ExtractionJob{
		ID:       id,
		FileName: "spec.pdf",
		Status:   domain.ExtractionStatusCompleted,
		Batch: &domain.ExtractionBatch{
			Format: domain.FormatPDF,
			Requirements: []domain.Requirement{{
				ID:          "r1",
				Description: domain.SetValue("The system shall export"),
				Priority:    domain.SetValue("High"),
				Source:      domain.FormatPDF,
			}},
		},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/extractions/"+id.String()+"/export?format=csv", nil)
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "spec_pdf")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte{0xEF, 0xBB, 0xBF}))
	assert.Contains(t, rec.Body.String(), "The system shall export")
}

func TestExport_NotReady(t *testing.T) {
	svc := new(mocks.MockExtractionService)
	id := uuid.New()
	svc.On("GetJob", mock.Anything, id).
		Return(&domain.ExtractionJob{ID: id, Status: domain.ExtractionStatusProcessing}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/extractions/"+id.String()+"/export", nil)
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_READY", resp.Error.Code)
}

func TestExport_BadFormat(t *testing.T) {
	svc := new(mocks.MockExtractionService)
	id := uuid.New()
	svc.On("GetJob", mock.Anything, id).Return(&domain.ExtractionJob{
		ID:    id,
		Batch: &domain.ExtractionBatch{Requirements: []domain.Requirement{}},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/extractions/"+id.String()+"/export?format=pdf", nil)
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
