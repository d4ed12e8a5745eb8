package handler

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"surveydq/internal/domain"
	"surveydq/internal/report"
	"surveydq/internal/service"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	csvContentType  = "text/csv; charset=utf-8"
)

var allowedExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
}

// RunDefaults fills in run parameters the request leaves blank.
type RunDefaults struct {
	Country        string
	Language       string
	MaxUploadBytes int64
}

// ValidationHandler handles validation run endpoints.
type ValidationHandler struct {
	svc      service.ValidationService
	defaults RunDefaults
	errs     *ErrorHandler
}

// NewValidationHandler creates a new ValidationHandler.
func NewValidationHandler(svc service.ValidationService, defaults RunDefaults, errs *ErrorHandler) *ValidationHandler {
	return &ValidationHandler{svc: svc, defaults: defaults, errs: errs}
}

// Run handles POST /api/v1/runs
// @Summary Validate a data workbook
// @Description Validate a survey data workbook against a key workbook. The report is returned
// @Description as JSON by default, or as a file with format=xlsx or format=csv.
// @Tags runs
// @Accept multipart/form-data
// @Produce json
// @Param key_file formData file true "Key workbook (schema and answer sheets)"
// @Param data_file formData file true "Data workbook"
// @Param country formData string false "Country code (GHA, CIV)"
// @Param language formData string false "Report language (EN, FR)"
// @Param format query string false "json, xlsx or csv" default(json)
// @Success 201 {object} APIResponse{data=domain.RunResult}
// @Failure 400 {object} APIResponse "Missing file, unsupported type or invalid parameters"
// @Failure 413 {object} APIResponse "File too large"
// @Failure 422 {object} APIResponse "Unusable workbook"
// @Router /runs [post]
func (h *ValidationHandler) Run(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", "json"))
	if format != "json" && format != "xlsx" && format != "csv" {
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be one of: json, xlsx, csv")
		return
	}

	keyFile, keyHeader, ok := h.formFile(c, "key_file")
	if !ok {
		return
	}
	defer func() { _ = keyFile.Close() }()

	dataFile, dataHeader, ok := h.formFile(c, "data_file")
	if !ok {
		return
	}
	defer func() { _ = dataFile.Close() }()

	input := service.RunInput{
		KeyWorkbook:  keyFile,
		KeyFileName:  filepath.Base(keyHeader.Filename),
		DataWorkbook: dataFile,
		DataFileName: filepath.Base(dataHeader.Filename),
		Country:      firstNonEmpty(c.PostForm("country"), h.defaults.Country),
		Language:     firstNonEmpty(c.PostForm("language"), h.defaults.Language),
	}

	res, err := h.svc.Run(c.Request.Context(), input)
	if err != nil {
		h.errs.HandleError(c, err)
		return
	}

	switch format {
	case "xlsx":
		attach(c, report.BuildFilename(input.DataFileName, "xlsx"))
		c.Data(http.StatusOK, xlsxContentType, res.Report)
	case "csv":
		var buf bytes.Buffer
		if err := report.WriteCSV(&buf, res.Issues); err != nil {
			h.errs.HandleError(c, fmt.Errorf("writing csv: %w", err))
			return
		}
		attach(c, report.BuildFilename(input.DataFileName, "csv"))
		c.Data(http.StatusOK, csvContentType, buf.Bytes())
	default:
		RespondCreated(c, res)
	}
}

// formFile reads and checks one uploaded workbook. On failure the error
// response has already been written.
func (h *ValidationHandler) formFile(c *gin.Context, field string) (multipart.File, *multipart.FileHeader, bool) {
	file, header, err := c.Request.FormFile(field)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", field+" field is required")
		return nil, nil, false
	}
	if !allowedExtensions[strings.ToLower(filepath.Ext(header.Filename))] {
		_ = file.Close()
		h.errs.HandleError(c, fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, header.Filename))
		return nil, nil, false
	}
	if h.defaults.MaxUploadBytes > 0 && header.Size > h.defaults.MaxUploadBytes {
		_ = file.Close()
		h.errs.HandleError(c, fmt.Errorf("%w: %s", domain.ErrFileTooLarge, header.Filename))
		return nil, nil, false
	}
	return file, header, true
}

// List handles GET /api/v1/runs
// @Summary List validation runs
// @Tags runs
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} APIResponse{data=[]domain.ValidationRun,meta=PagMeta}
// @Router /runs [get]
func (h *ValidationHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	runs, total, err := h.svc.List(c.Request.Context(), offset, limit)
	if err != nil {
		h.errs.HandleError(c, err)
		return
	}

	RespondPaginated(c, runs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/runs/:id
// @Summary Get a validation run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} APIResponse{data=domain.RunResult}
// @Failure 404 {object} APIResponse "Run not found"
// @Router /runs/{id} [get]
func (h *ValidationHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	res, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.errs.HandleError(c, err)
		return
	}

	RespondOK(c, res)
}

// ReportURL handles GET /api/v1/runs/:id/report
// @Summary Get a download URL for a run's archived report
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse "Run or report not found"
// @Router /runs/{id}/report [get]
func (h *ValidationHandler) ReportURL(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	url, err := h.svc.ReportURL(c.Request.Context(), id)
	if err != nil {
		h.errs.HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"url": url})
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid run ID")
		return uuid.Nil, false
	}
	return id, true
}

// parsePagination extracts offset and limit from query params with defaults.
func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}

func attach(c *gin.Context, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
