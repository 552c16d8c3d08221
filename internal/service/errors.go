package service

import "errors"

// Analysis pipeline failures. Callers match them with errors.Is; the wrapped
// error carries the underlying cause.
var (
	ErrEmptySubmission = errors.New("no bill text to analyze")
	ErrExtraction      = errors.New("uploaded bill could not be read")
	ErrOversizeUpload  = errors.New("uploaded bill exceeds the size limit")
	ErrGeneration      = errors.New("analysis generation failed")
	ErrPersistence     = errors.New("report could not be saved")
	ErrReportNotFound  = errors.New("report not found")
)
