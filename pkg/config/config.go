package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	PDFEngineMuPDF  = "mupdf"
	PDFEngineNative = "native"

	// DefaultMaxUploadBytes caps a single uploaded bill (5 MiB).
	DefaultMaxUploadBytes = 5 * 1024 * 1024
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	GigaChat   GigaChatConfig
	Extraction ExtractionConfig
	Logger     LoggerConfig
}

type LoggerConfig struct {
	Level  string
	Format string // json or console
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
}

type JWTConfig struct {
	SecretKey  string
	Expiration time.Duration
	RefreshExp time.Duration
}

type GigaChatConfig struct {
	APIKey             string
	Scope              string
	InsecureSkipVerify bool
}

type ExtractionConfig struct {
	MaxUploadBytes int64
	PDFEngine      string
}

// BodyLimit is the request body cap handed to the HTTP server. It leaves room
// for multipart framing and form fields so that an oversized file reaches the
// handler and is rejected with a dedicated error instead of a bare 413.
func (c ExtractionConfig) BodyLimit() int {
	return int(c.MaxUploadBytes) + 1024*1024
}

func Load() (*Config, error) {
	// .env is optional; plain environment variables work too (Docker/K8s)
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "120"))
	jwtExp, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	refreshExp, _ := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168"))
	insecureSkipVerify := getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "true") == "true"

	maxUpload, err := strconv.ParseInt(getEnv("MAX_UPLOAD_BYTES", strconv.Itoa(DefaultMaxUploadBytes)), 10, 64)
	if err != nil || maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}

	driver := strings.ToLower(getEnv("DB_DRIVER", DriverPostgres))
	if driver != DriverSQLite {
		driver = DriverPostgres
	}

	pdfEngine := strings.ToLower(getEnv("PDF_ENGINE", PDFEngineMuPDF))
	if pdfEngine != PDFEngineNative {
		pdfEngine = PDFEngineMuPDF
	}

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Driver:     driver,
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", "postgres"),
			DBName:     getEnv("DB_NAME", "billwise"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("SQLITE_PATH", "./data/billwise.db"),
		},
		JWT: JWTConfig{
			SecretKey:  getEnv("JWT_SECRET_KEY", "your-secret-key-change-in-production"),
			Expiration: time.Duration(jwtExp) * time.Hour,
			RefreshExp: time.Duration(refreshExp) * time.Hour,
		},
		GigaChat: GigaChatConfig{
			APIKey:             getEnv("GIGACHAT_API_KEY", ""),
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			InsecureSkipVerify: insecureSkipVerify,
		},
		Extraction: ExtractionConfig{
			MaxUploadBytes: maxUpload,
			PDFEngine:      pdfEngine,
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
