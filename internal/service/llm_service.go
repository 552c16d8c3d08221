package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"billwise/pkg/config"
	"billwise/pkg/metrics"

	"github.com/Role1776/gigago"
	"go.uber.org/zap"
)

// Fixed generation parameters for every bill analysis.
const (
	AnalysisModel       = "GigaChat-Pro"
	AnalysisMaxTokens   = 600
	AnalysisTemperature = 0.7
)

// TextGenerator turns a prompt into generated text.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// GigaChatBackend is the production TextGenerator. The model is configured
// once with the fixed analysis parameters.
type GigaChatBackend struct {
	client *gigago.Client
	model  *gigago.GenerativeModel
	logger *zap.Logger
}

func NewGigaChatBackend(cfg *config.GigaChatConfig, logger *zap.Logger) (*GigaChatBackend, error) {
	ctx := context.Background()

	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	model := client.GenerativeModel(AnalysisModel)
	model.Temperature = AnalysisTemperature
	model.MaxTokens = AnalysisMaxTokens

	logger.Info("GigaChat backend ready",
		zap.String("model", AnalysisModel),
		zap.Int("max_tokens", AnalysisMaxTokens),
		zap.Float64("temperature", AnalysisTemperature),
	)

	return &GigaChatBackend{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

func (b *GigaChatBackend) GenerateText(ctx context.Context, prompt string) (string, error) {
	messages := []gigago.Message{
		{Role: gigago.RoleUser, Content: prompt},
	}

	resp, err := b.model.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response from LLM")
	}

	return resp.Choices[0].Message.Content, nil
}

func (b *GigaChatBackend) Close() error {
	if b.client != nil {
		b.client.Close()
	}
	return nil
}

// LLMService produces the analysis text for a composed prompt. Failures are
// not retried.
type LLMService struct {
	backend TextGenerator
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewLLMService(backend TextGenerator, m *metrics.Metrics, logger *zap.Logger) *LLMService {
	return &LLMService{
		backend: backend,
		metrics: m,
		logger:  logger,
	}
}

func (s *LLMService) GenerateAnalysis(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	text, err := s.backend.GenerateText(ctx, prompt)
	elapsed := time.Since(start)
	s.metrics.ObserveGeneration(elapsed)

	if err != nil {
		s.logger.Error("Generation backend failed", zap.Duration("elapsed", elapsed), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: empty response", ErrGeneration)
	}

	s.logger.Info("Analysis generated",
		zap.Int("prompt_length", len(prompt)),
		zap.Int("analysis_length", len(text)),
		zap.Duration("elapsed", elapsed),
	)
	return text, nil
}
