package main

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"billwise/internal/app"
	"billwise/internal/dto"
	"billwise/internal/service"
	"billwise/pkg/auth"
	"billwise/pkg/config"
	"billwise/pkg/logger"
	"billwise/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	seedDir := flag.String("dir", filepath.Join("cmd", "seed", "bills"), "directory with .pdf/.txt bills")
	email := flag.String("email", "demo@billwise.local", "demo user email")
	password := flag.String("password", "demo-password", "demo user password")
	language := flag.String("language", service.DefaultLanguage, "analysis language")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logger.Level, cfg.Logger.Format); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()
	storage, err := app.OpenStorage(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to open storage", zap.Error(err))
	}
	defer storage.Close()

	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)
	authService := service.NewAuthService(storage.Users, jwtManager, appLogger)

	userID, err := demoUser(ctx, authService, *email, *password)
	if err != nil {
		appLogger.Fatal("Failed to prepare demo user", zap.Error(err))
	}

	backend, err := service.NewGigaChatBackend(&cfg.GigaChat, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize generation backend", zap.Error(err))
	}
	defer backend.Close()

	analysisService := app.NewAnalysisService(&cfg.Extraction, storage, backend, metrics.New(), appLogger)

	appLogger.Info("Starting bill seeding...", zap.String("dir", *seedDir), zap.String("user_id", userID.String()))

	cacheFile := filepath.Join(*seedDir, ".seed_cache.json")
	if err := seedBills(ctx, *seedDir, cacheFile, userID, *language, analysisService, appLogger); err != nil {
		appLogger.Fatal("Failed to seed bills", zap.Error(err))
	}

	appLogger.Info("Bill seeding completed successfully!")
}

// demoUser registers the demo account or logs into it if it already exists.
func demoUser(ctx context.Context, authService *service.AuthService, email, password string) (uuid.UUID, error) {
	resp, err := authService.Register(ctx, &dto.RegisterRequest{
		Username: "demo",
		Email:    email,
		Password: password,
	})
	if errors.Is(err, service.ErrUserExists) {
		resp, err = authService.Login(ctx, &dto.LoginRequest{Email: email, Password: password})
	}
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(resp.User.ID)
}

// ProcessedFile represents a processed bill in cache
type ProcessedFile struct {
	FilePath    string    `json:"file_path"`
	FileHash    string    `json:"file_hash"`
	ReportID    string    `json:"report_id"`
	ProcessedAt time.Time `json:"processed_at"`
}

// CacheData stores information about processed files
type CacheData struct {
	ProcessedFiles map[string]ProcessedFile `json:"processed_files"` // key: file path
}

func loadCache(cacheFile string) (*CacheData, error) {
	cache := &CacheData{
		ProcessedFiles: make(map[string]ProcessedFile),
	}

	data, err := os.ReadFile(cacheFile)
	if os.IsNotExist(err) {
		return cache, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	if len(data) == 0 {
		return cache, nil
	}

	if err := json.Unmarshal(data, cache); err != nil {
		return nil, fmt.Errorf("failed to parse cache file: %w", err)
	}

	return cache, nil
}

func saveCache(cacheFile string, cache *CacheData) error {
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	if err := os.WriteFile(cacheFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	return nil
}

func calculateFileHash(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", fmt.Errorf("failed to calculate hash: %w", err)
	}

	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}

type billFile struct {
	path    string
	size    int64
	modTime time.Time
}

// listBills returns the .pdf and .txt files of dir, oldest first.
func listBills(dir string) ([]billFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed directory: %w", err)
	}

	var bills []billFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".pdf", ".txt":
		default:
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", entry.Name(), err)
		}
		bills = append(bills, billFile{
			path:    filepath.Join(dir, entry.Name()),
			size:    info.Size(),
			modTime: info.ModTime(),
		})
	}

	sort.Slice(bills, func(i, j int) bool {
		if !bills[i].modTime.Equal(bills[j].modTime) {
			return bills[i].modTime.Before(bills[j].modTime)
		}
		return bills[i].path < bills[j].path
	})
	return bills, nil
}

// seedBills runs every new or changed bill through the analysis pipeline,
// each one compared with the bill before it.
func seedBills(
	ctx context.Context,
	seedDir string,
	cacheFile string,
	userID uuid.UUID,
	language string,
	analysisService *service.AnalysisService,
	logger *zap.Logger,
) error {
	cache, err := loadCache(cacheFile)
	if err != nil {
		logger.Warn("Failed to load cache, will process all files", zap.Error(err))
		cache = &CacheData{ProcessedFiles: make(map[string]ProcessedFile)}
	}

	bills, err := listBills(seedDir)
	if err != nil {
		return err
	}

	for _, bill := range bills {
		fileHash, err := calculateFileHash(bill.path)
		if err != nil {
			logger.Warn("Failed to calculate file hash, will process anyway", zap.String("path", bill.path), zap.Error(err))
		}

		if cached, exists := cache.ProcessedFiles[bill.path]; exists && cached.FileHash == fileHash {
			logger.Info("Bill already processed, skipping",
				zap.String("path", bill.path),
				zap.Time("processed_at", cached.ProcessedAt),
			)
			continue
		}

		logger.Info("Processing bill", zap.String("path", bill.path))

		result, err := analyzeFile(ctx, bill, userID, language, analysisService)
		if err != nil {
			if errors.Is(err, service.ErrEmptySubmission) || errors.Is(err, service.ErrExtraction) || errors.Is(err, service.ErrOversizeUpload) {
				logger.Warn("Bill skipped", zap.String("path", bill.path), zap.Error(err))
				continue
			}
			logger.Error("Failed to analyze bill", zap.String("path", bill.path), zap.Error(err))
			continue
		}

		logger.Info("Bill analyzed",
			zap.String("path", bill.path),
			zap.String("report_id", result.Report.ID.String()),
			zap.Bool("comparison", result.UsedComparison),
		)

		cache.ProcessedFiles[bill.path] = ProcessedFile{
			FilePath:    bill.path,
			FileHash:    fileHash,
			ReportID:    result.Report.ID.String(),
			ProcessedAt: time.Now().UTC(),
		}
	}

	if err := saveCache(cacheFile, cache); err != nil {
		logger.Warn("Failed to save cache", zap.Error(err))
	} else {
		logger.Info("Cache saved", zap.Int("processed_files", len(cache.ProcessedFiles)))
	}

	return nil
}

func analyzeFile(
	ctx context.Context,
	bill billFile,
	userID uuid.UUID,
	language string,
	analysisService *service.AnalysisService,
) (*service.AnalysisResult, error) {
	file, err := os.Open(bill.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open bill: %w", err)
	}
	defer file.Close()

	return analysisService.Analyze(ctx, userID, &service.Submission{
		File: &service.UploadedFile{
			Filename: filepath.Base(bill.path),
			Size:     bill.size,
			Content:  file,
		},
		Language: language,
		Compare:  true,
	})
}
