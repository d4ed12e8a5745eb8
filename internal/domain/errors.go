package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrSchema              = errors.New("schema sheet is unusable")
	ErrDataRead            = errors.New("workbook could not be read as tabular data")
	ErrInvalidRunParams    = errors.New("invalid run parameters")
	ErrProfile             = errors.New("invalid survey profile")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrArchiveFailed       = errors.New("report upload to storage failed")
	ErrHistoryDisabled     = errors.New("run history is not configured")
	ErrReportNotArchived   = errors.New("run has no archived report")
)
