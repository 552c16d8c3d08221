package service

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"billwise/pkg/metrics"

	"go.uber.org/zap"
)

// UploadedFile is a bill file received from the client. Size is the size the
// client declared; the content is still read through a limit.
type UploadedFile struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// Submission is one analysis request as received from the transport layer.
type Submission struct {
	PastedText string
	File       *UploadedFile
	Language   string
	Compare    bool
}

type fileKind int

const (
	kindUnsupported fileKind = iota
	kindPDF
	kindText
)

func (k fileKind) String() string {
	switch k {
	case kindPDF:
		return "pdf"
	case kindText:
		return "text"
	default:
		return "unsupported"
	}
}

func kindOf(filename string) fileKind {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return kindPDF
	case ".txt":
		return kindText
	default:
		return kindUnsupported
	}
}

type TextExtractor struct {
	pdf            PageParser
	maxUploadBytes int64
	tempDir        string // empty means os.TempDir()
	metrics        *metrics.Metrics
	logger         *zap.Logger
}

func NewTextExtractor(pdf PageParser, maxUploadBytes int64, m *metrics.Metrics, logger *zap.Logger) *TextExtractor {
	return &TextExtractor{
		pdf:            pdf,
		maxUploadBytes: maxUploadBytes,
		metrics:        m,
		logger:         logger,
	}
}

// Extract returns the trimmed bill text of a submission. An uploaded file with
// a name replaces the pasted text entirely, even when it yields nothing.
func (e *TextExtractor) Extract(sub *Submission) (string, error) {
	var text string
	if sub.File != nil && sub.File.Filename != "" {
		extracted, err := e.ExtractFile(sub.File)
		if err != nil {
			return "", err
		}
		text = extracted
	} else {
		text = sub.PastedText
		e.metrics.ObserveExtraction("pasted")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptySubmission
	}
	return text, nil
}

// ExtractFile returns the untrimmed text of an uploaded file, dispatching on
// the filename suffix. Unsupported suffixes yield an empty string.
func (e *TextExtractor) ExtractFile(file *UploadedFile) (string, error) {
	if file.Size > e.maxUploadBytes {
		return "", fmt.Errorf("%w: %d bytes (limit %d)", ErrOversizeUpload, file.Size, e.maxUploadBytes)
	}

	kind := kindOf(file.Filename)
	e.metrics.ObserveExtraction(kind.String())

	if kind == kindUnsupported {
		e.logger.Info("Unsupported bill file type, ignoring content", zap.String("file", file.Filename))
		return "", nil
	}

	data, err := e.readUpload(file.Content)
	if err != nil {
		return "", err
	}

	var text string
	switch kind {
	case kindPDF:
		text, err = e.extractPDF(data)
	case kindText:
		text, err = decodeText(data)
	}
	if err != nil {
		return "", err
	}

	e.logger.Info("Bill text extracted",
		zap.String("file", file.Filename),
		zap.String("type", kind.String()),
		zap.Int("text_length", len(text)),
	)
	return text, nil
}

func (e *TextExtractor) readUpload(r io.Reader) ([]byte, error) {
	if r == nil {
		return nil, nil
	}
	data, err := io.ReadAll(io.LimitReader(r, e.maxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > e.maxUploadBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrOversizeUpload, e.maxUploadBytes)
	}
	return data, nil
}

// extractPDF parses the document from a private temp file that is removed on
// every return path.
func (e *TextExtractor) extractPDF(data []byte) (string, error) {
	tmp, err := os.CreateTemp(e.tempDir, "bill-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	path := tmp.Name()
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			e.logger.Warn("Failed to remove temp file", zap.String("path", path), zap.Error(err))
		}
	}()

	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}

	pages, err := e.pdf.Pages(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	return strings.Join(pages, ""), nil
}

func decodeText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: text file is not valid UTF-8", ErrExtraction)
	}
	return string(data), nil
}
