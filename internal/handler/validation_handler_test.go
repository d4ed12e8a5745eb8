package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"surveydq/internal/domain"
	"surveydq/internal/handler"
	"surveydq/internal/profile"
	"surveydq/internal/service"
	"surveydq/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRunHandler(maxBytes int64) (*handler.ValidationHandler, *mocks.MockValidationService) {
	svc := new(mocks.MockValidationService)
	h := handler.NewValidationHandler(svc, handler.RunDefaults{
		Country:        "GHA",
		Language:       "EN",
		MaxUploadBytes: maxBytes,
	}, handler.NewErrorHandler(zap.NewNop()))
	return h, svc
}

type upload struct {
	field, filename string
	content         []byte
}

func multipartRequest(t *testing.T, target string, fields map[string]string, files ...upload) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, target, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func bothFiles() []upload {
	return []upload{
		{field: "key_file", filename: "key.xlsx", content: []byte("key")},
		{field: "data_file", filename: "survey data.xlsx", content: []byte("data")},
	}
}

func sampleResult() *domain.RunResult {
	row := 3
	issues := []domain.Issue{{Sheet: "P", Field: "Age", Row: &row, Kind: domain.IssueTypeMismatch, Message: "Expected a numeric value", Value: "abc"}}
	return &domain.RunResult{
		Run:    domain.ValidationRun{ID: uuid.New(), Country: domain.CountryGhana, Language: domain.LanguageEN, Status: domain.RunStatusCompleted, IssueCount: 1},
		Sheets: []domain.SheetSummary{{Name: "P", Rows: 5, Issues: 1}},
		Groups: []domain.IssueGroup{{Sheet: "P", Field: "Age", Kind: domain.IssueTypeMismatch, Count: 1, Example: "Expected a numeric value"}},
		Issues: issues,
		Report: []byte("PK-report"),
	}
}

func serve(h gin.HandlerFunc, req *http.Request, params ...gin.Param) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = params
	h(c)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) handler.APIResponse {
	t.Helper()
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestValidationHandler_Run_JSON(t *testing.T) {
	h, svc := newRunHandler(1 << 20)

	svc.On("Run", mock.Anything, mock.MatchedBy(func(in service.RunInput) bool {
		return in.Country == "CIV" && in.Language == "EN" &&
			in.KeyFileName == "key.xlsx" && in.DataFileName == "survey data.xlsx" &&
			in.KeyWorkbook != nil && in.DataWorkbook != nil
	})).Return(sampleResult(), nil)

	req := multipartRequest(t, "/api/v1/runs", map[string]string{"country": "CIV"}, bothFiles()...)
	w := serve(h.Run, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decode(t, w)
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, false, data["clean"])
	assert.Len(t, data["issues"], 1)
	assert.NotContains(t, w.Body.String(), "PK-report")
	svc.AssertExpectations(t)
}

func TestValidationHandler_Run_XLSX(t *testing.T) {
	h, svc := newRunHandler(0)
	svc.On("Run", mock.Anything, mock.Anything).Return(sampleResult(), nil)

	req := multipartRequest(t, "/api/v1/runs?format=xlsx", nil, bothFiles()...)
	w := serve(h.Run, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "PK-report", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "dq_survey_data_")
}

func TestValidationHandler_Run_CSV(t *testing.T) {
	h, svc := newRunHandler(0)
	svc.On("Run", mock.Anything, mock.Anything).Return(sampleResult(), nil)

	req := multipartRequest(t, "/api/v1/runs?format=csv", nil, bothFiles()...)
	w := serve(h.Run, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")

	body := w.Body.Bytes()
	require.True(t, bytes.HasPrefix(body, []byte{0xEF, 0xBB, 0xBF}))
	lines := strings.Split(strings.TrimSpace(string(body[3:])), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Sheet,Field,Row,Issue,Value,Message", lines[0])
	assert.Equal(t, "P,Age,5,Type Error,abc,Expected a numeric value", lines[1])
}

func TestValidationHandler_Run_RejectsBadRequests(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		files    []upload
		maxBytes int64
		status   int
		code     string
	}{
		{
			name:   "invalid format",
			target: "/api/v1/runs?format=pdf",
			files:  bothFiles(),
			status: http.StatusBadRequest,
			code:   "INVALID_FORMAT",
		},
		{
			name:   "missing data file",
			target: "/api/v1/runs",
			files:  bothFiles()[:1],
			status: http.StatusBadRequest,
			code:   "MISSING_FILE",
		},
		{
			name:   "unsupported extension",
			target: "/api/v1/runs",
			files: []upload{
				{field: "key_file", filename: "key.csv", content: []byte("a,b")},
				{field: "data_file", filename: "data.xlsx", content: []byte("x")},
			},
			status: http.StatusBadRequest,
			code:   "UNSUPPORTED_FILE_TYPE",
		},
		{
			name:     "file too large",
			target:   "/api/v1/runs",
			files:    []upload{{field: "key_file", filename: "key.xlsx", content: bytes.Repeat([]byte("x"), 64)}},
			maxBytes: 16,
			status:   http.StatusRequestEntityTooLarge,
			code:     "FILE_TOO_LARGE",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, svc := newRunHandler(tt.maxBytes)
			w := serve(h.Run, multipartRequest(t, tt.target, nil, tt.files...))

			assert.Equal(t, tt.status, w.Code)
			resp := decode(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			svc.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
		})
	}
}

func TestValidationHandler_Run_ServiceErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{err: fmt.Errorf("%w: unsupported country \"KEN\"", domain.ErrInvalidRunParams), status: http.StatusBadRequest, code: "INVALID_RUN_PARAMS"},
		{err: fmt.Errorf("%w: column missing", domain.ErrSchema), status: http.StatusUnprocessableEntity, code: "SCHEMA_ERROR"},
		{err: fmt.Errorf("%w: not a zip", domain.ErrDataRead), status: http.StatusUnprocessableEntity, code: "DATA_READ_ERROR"},
		{err: errors.New("boom"), status: http.StatusInternalServerError, code: "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			h, svc := newRunHandler(0)
			svc.On("Run", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := serve(h.Run, multipartRequest(t, "/api/v1/runs", nil, bothFiles()...))
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decode(t, w).Error.Code)
		})
	}
}

func TestValidationHandler_List(t *testing.T) {
	h, svc := newRunHandler(0)
	runs := []domain.ValidationRun{{ID: uuid.New()}}
	svc.On("List", mock.Anything, 10, 20).Return(runs, 11, nil)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/runs?offset=10&limit=500", http.NoBody)
	w := serve(h.List, req)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, handler.PagMeta{Total: 11, Offset: 10, Limit: 20}, *resp.Meta)
}

func TestValidationHandler_List_HistoryDisabled(t *testing.T) {
	h, svc := newRunHandler(0)
	svc.On("List", mock.Anything, 0, 20).Return(nil, 0, domain.ErrHistoryDisabled)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/runs", http.NoBody)
	w := serve(h.List, req)

	assert.Equal(t, http.StatusNotImplemented, w.Code)
	assert.Equal(t, "HISTORY_DISABLED", decode(t, w).Error.Code)
}

func TestValidationHandler_GetByID(t *testing.T) {
	h, svc := newRunHandler(0)
	res := sampleResult()
	missing := uuid.New()
	svc.On("Get", mock.Anything, res.Run.ID).Return(res, nil)
	svc.On("Get", mock.Anything, missing).Return(nil, domain.ErrNotFound)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/runs/x", http.NoBody)

	w := serve(h.GetByID, req, gin.Param{Key: "id", Value: res.Run.ID.String()})
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(h.GetByID, req, gin.Param{Key: "id", Value: missing.String()})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(h.GetByID, req, gin.Param{Key: "id", Value: "not-a-uuid"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", decode(t, w).Error.Code)
}

func TestValidationHandler_ReportURL(t *testing.T) {
	h, svc := newRunHandler(0)
	archived, bare := uuid.New(), uuid.New()
	svc.On("ReportURL", mock.Anything, archived).Return("https://example.test/r.xlsx", nil)
	svc.On("ReportURL", mock.Anything, bare).Return("", domain.ErrReportNotArchived)

	req, _ := http.NewRequest(http.MethodGet, "/", http.NoBody)

	w := serve(h.ReportURL, req, gin.Param{Key: "id", Value: archived.String()})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://example.test/r.xlsx", decode(t, w).Data.(map[string]interface{})["url"])

	w = serve(h.ReportURL, req, gin.Param{Key: "id", Value: bare.String()})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "REPORT_NOT_ARCHIVED", decode(t, w).Error.Code)
}

func TestProfileHandler(t *testing.T) {
	svc := new(mocks.MockValidationService)
	svc.On("Profile").Return(profile.Default())
	h := handler.NewProfileHandler(svc)

	req, _ := http.NewRequest(http.MethodGet, "/", http.NoBody)
	w := serve(h.Get, req)
	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data.(map[string]interface{})
	assert.Equal(t, "description", data["schema_sheet"])

	w = serve(h.IssueKinds, req)
	assert.Equal(t, http.StatusOK, w.Code)
	kinds := decode(t, w).Data.([]interface{})
	assert.Len(t, kinds, len(domain.AllIssueKinds))
}

func TestHealthHandler_Readiness(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "/readyz", http.NoBody)

	w := serve(handler.NewHealthHandler(nil).Readiness, req)
	assert.Equal(t, http.StatusOK, w.Code)

	runs := new(mocks.MockRunRepo)
	runs.On("Ping", mock.Anything).Return(errors.New("connection refused")).Once()
	runs.On("Ping", mock.Anything).Return(nil).Once()
	h := handler.NewHealthHandler(runs)

	w = serve(h.Readiness, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	w = serve(h.Readiness, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
