package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DB_DRIVER", "PDF_ENGINE", "MAX_UPLOAD_BYTES", "SERVER_PORT", "LOG_FORMAT"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Driver != DriverPostgres {
		t.Errorf("expected driver %q, got %q", DriverPostgres, cfg.Database.Driver)
	}
	if cfg.Extraction.PDFEngine != PDFEngineMuPDF {
		t.Errorf("expected pdf engine %q, got %q", PDFEngineMuPDF, cfg.Extraction.PDFEngine)
	}
	if cfg.Extraction.MaxUploadBytes != DefaultMaxUploadBytes {
		t.Errorf("expected max upload %d, got %d", DefaultMaxUploadBytes, cfg.Extraction.MaxUploadBytes)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Server.Port)
	}
	if cfg.JWT.Expiration != 24*time.Hour {
		t.Errorf("expected 24h token expiration, got %v", cfg.JWT.Expiration)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/bills.db")
	t.Setenv("PDF_ENGINE", "native")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("expected sqlite driver, got %q", cfg.Database.Driver)
	}
	if cfg.Database.SQLitePath != "/tmp/bills.db" {
		t.Errorf("unexpected sqlite path %q", cfg.Database.SQLitePath)
	}
	if cfg.Extraction.PDFEngine != PDFEngineNative {
		t.Errorf("expected native engine, got %q", cfg.Extraction.PDFEngine)
	}
	if cfg.Extraction.MaxUploadBytes != 1024 {
		t.Errorf("expected 1024, got %d", cfg.Extraction.MaxUploadBytes)
	}
	if cfg.Extraction.BodyLimit() <= 1024 {
		t.Errorf("body limit %d must exceed the upload cap", cfg.Extraction.BodyLimit())
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	t.Setenv("PDF_ENGINE", "tesseract")
	t.Setenv("MAX_UPLOAD_BYTES", "-5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Driver != DriverPostgres {
		t.Errorf("unknown driver should fall back to postgres, got %q", cfg.Database.Driver)
	}
	if cfg.Extraction.PDFEngine != PDFEngineMuPDF {
		t.Errorf("unknown engine should fall back to mupdf, got %q", cfg.Extraction.PDFEngine)
	}
	if cfg.Extraction.MaxUploadBytes != DefaultMaxUploadBytes {
		t.Errorf("invalid limit should fall back to default, got %d", cfg.Extraction.MaxUploadBytes)
	}
}
