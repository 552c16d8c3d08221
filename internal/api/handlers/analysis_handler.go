package handlers

import (
	"errors"
	"strings"

	"billwise/internal/dto"
	"billwise/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Machine-readable error codes of the analyze endpoint.
const (
	CodeEmptySubmission  = "empty_submission"
	CodeExtractionFailed = "extraction_failed"
	CodeUploadTooLarge   = "upload_too_large"
	CodeGenerationFailed = "generation_failed"
)

const unsavedWarning = "The analysis could not be saved to your history."

type AnalysisHandler struct {
	analysisService *service.AnalysisService
	logger          *zap.Logger
}

func NewAnalysisHandler(analysisService *service.AnalysisService, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
		logger:          logger,
	}
}

// Analyze godoc
// @Summary Analyze a bill
// @Description Analyze pasted bill text or an uploaded .pdf/.txt bill, optionally compared with the previous report
// @Tags analysis
// @Accept multipart/form-data
// @Produce json
// @Param bill formData string false "Pasted bill text"
// @Param file formData file false "Bill file (.pdf or .txt); takes priority over pasted text"
// @Param language formData string false "Response language" default(English)
// @Param compare formData string false "Compare with the most recent report (on/true/1)"
// @Security Bearer
// @Success 200 {object} dto.AnalyzeResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 413 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /api/v1/analyze [post]
func (h *AnalysisHandler) Analyze(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	sub := &service.Submission{
		PastedText: c.FormValue("bill"),
		Language:   c.FormValue("language"),
		Compare:    checkboxValue(c.FormValue("compare")),
	}

	// a missing file part is not an error, the pasted text is used instead
	if fh, err := c.FormFile("file"); err == nil && fh.Filename != "" {
		src, err := fh.Open()
		if err != nil {
			h.logger.Error("Failed to open uploaded file", zap.Error(err))
			return errorResponse(c, fiber.StatusUnprocessableEntity, CodeExtractionFailed, "Failed to read uploaded file")
		}
		defer src.Close()

		sub.File = &service.UploadedFile{
			Filename: fh.Filename,
			Size:     fh.Size,
			Content:  src,
		}
	}

	result, err := h.analysisService.Analyze(c.Context(), userID, sub)
	if err != nil && !errors.Is(err, service.ErrPersistence) {
		return h.analyzeError(c, err)
	}

	resp := dto.AnalyzeResponse{
		Analysis:           result.Analysis,
		UsedComparisonMode: result.UsedComparison,
		Saved:              result.Saved,
	}
	if result.Saved {
		report := dto.NewReportResponse(result.Report)
		resp.ReportID = report.ID
		resp.Timestamp = report.Timestamp
	} else {
		resp.Warning = unsavedWarning
	}

	return c.JSON(resp)
}

func (h *AnalysisHandler) analyzeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrEmptySubmission):
		return errorResponse(c, fiber.StatusBadRequest, CodeEmptySubmission, "Paste a bill or upload a .pdf/.txt file")
	case errors.Is(err, service.ErrOversizeUpload):
		return errorResponse(c, fiber.StatusRequestEntityTooLarge, CodeUploadTooLarge, "Uploaded file is too large")
	case errors.Is(err, service.ErrExtraction):
		return errorResponse(c, fiber.StatusUnprocessableEntity, CodeExtractionFailed, "Could not read text from the uploaded file")
	case errors.Is(err, service.ErrGeneration):
		return errorResponse(c, fiber.StatusBadGateway, CodeGenerationFailed, "The analysis could not be generated, try again later")
	default:
		h.logger.Error("Analysis failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Analysis failed",
		})
	}
}

// ListReports godoc
// @Summary List analysis history
// @Description All reports of the current user, newest first
// @Tags analysis
// @Produce json
// @Security Bearer
// @Success 200 {array} dto.ReportResponse
// @Failure 401 {object} map[string]string
// @Router /api/v1/reports [get]
func (h *AnalysisHandler) ListReports(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	reports, err := h.analysisService.History(c.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list reports", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list reports",
		})
	}

	resp := make([]dto.ReportResponse, 0, len(reports))
	for _, r := range reports {
		resp = append(resp, dto.NewReportResponse(r))
	}
	return c.JSON(resp)
}

// GetReport godoc
// @Summary Get a report
// @Tags analysis
// @Produce json
// @Param id path string true "Report ID"
// @Security Bearer
// @Success 200 {object} dto.ReportResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/reports/{id} [get]
func (h *AnalysisHandler) GetReport(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid report ID",
		})
	}

	report, err := h.analysisService.GetReport(c.Context(), userID, reportID)
	if errors.Is(err, service.ErrReportNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Report not found",
		})
	}
	if err != nil {
		h.logger.Error("Failed to get report", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get report",
		})
	}

	return c.JSON(dto.NewReportResponse(report))
}

func errorResponse(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error":   code,
		"message": message,
	})
}

// checkboxValue follows HTML checkbox semantics: absent is false, and any
// value other than an explicit false/0/off is true.
func checkboxValue(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "false", "0", "off":
		return false
	default:
		return true
	}
}
