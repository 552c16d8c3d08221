package dto

import (
	"time"

	"billwise/internal/models"
)

type ReportResponse struct {
	ID        string `json:"id"`
	Bill      string `json:"bill"`
	Analysis  string `json:"analysis"`
	Timestamp string `json:"timestamp"`
}

type AnalyzeResponse struct {
	Analysis           string `json:"analysis"`
	UsedComparisonMode bool   `json:"used_comparison_mode"`
	Saved              bool   `json:"saved"`
	ReportID           string `json:"report_id,omitempty"`
	Timestamp          string `json:"timestamp,omitempty"`
	Warning            string `json:"warning,omitempty"`
}

func NewReportResponse(report *models.Report) ReportResponse {
	return ReportResponse{
		ID:        report.ID.String(),
		Bill:      report.Bill,
		Analysis:  report.Analysis,
		Timestamp: report.CreatedAt.Format(time.RFC3339),
	}
}
