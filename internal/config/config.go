package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/docker/go-units"
)

// Storage backends selectable through STORAGE_BACKEND.
const (
	BackendBlob   = "blob"
	BackendSite   = "site"
	BackendMemory = "memory"
)

// DatabaseConfig holds PostgreSQL connection settings for the optional extraction log.
// An empty Host disables the database entirely.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// Enabled reports whether a database was configured.
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// MinIOConfig holds object storage settings for the blob backend.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// SharePointConfig holds settings for the document-site backend.
type SharePointConfig struct {
	SiteURL      string
	TenantID     string
	ClientID     string
	ClientSecret string
	Library      string
	Folders      []string
	TimeoutSec   int
}

// SessionConfig holds settings for document-site user sessions.
type SessionConfig struct {
	Secret     string
	TTLMinutes int
	MaxEntries int
}

// TTL returns the session lifetime.
func (c SessionConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// ExtractConfig holds text extraction settings.
type ExtractConfig struct {
	ScratchDir  string
	PDFPassword string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost              string
	Port                 string
	FunctionsPort        string
	Backend              string
	MaxUploadSize        string
	DownloadURLExpiryMin int
	CORSAllowOrigins     string
	LogLevel             string
	LogTimezone          string
	Database             DatabaseConfig
	MinIO                MinIOConfig
	SharePoint           SharePointConfig
	Session              SessionConfig
	Extract              ExtractConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:              getEnv("APP_HOST", "localhost:8080"),
		Port:                 getEnv("PORT", "8080"),
		FunctionsPort:        getEnv("FUNCTIONS_CUSTOMHANDLER_PORT", "7071"),
		Backend:              strings.ToLower(getEnv("STORAGE_BACKEND", BackendBlob)),
		MaxUploadSize:        getEnv("UPLOAD_MAX_SIZE", "50MB"),
		DownloadURLExpiryMin: getEnvInt("DOWNLOAD_URL_EXPIRY_MIN", 60),
		CORSAllowOrigins:     getEnv("CORS_ALLOW_ORIGINS", "*"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogTimezone:          getEnv("LOG_TIMEZONE", "UTC"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		SharePoint: SharePointConfig{
			SiteURL:      strings.TrimRight(getEnv("SHAREPOINT_SITE_URL", ""), "/"),
			TenantID:     getEnv("SHAREPOINT_TENANT_ID", ""),
			ClientID:     getEnv("SHAREPOINT_CLIENT_ID", ""),
			ClientSecret: getEnv("SHAREPOINT_CLIENT_SECRET", ""),
			Library:      getEnv("SHAREPOINT_LIBRARY", "Shared Documents"),
			Folders:      getEnvList("SHAREPOINT_FOLDERS"),
			TimeoutSec:   getEnvInt("SHAREPOINT_TIMEOUT_SEC", 30),
		},
		Session: SessionConfig{
			Secret:     getEnv("SESSION_SECRET", ""),
			TTLMinutes: getEnvInt("SESSION_TTL_MIN", 480),
			MaxEntries: getEnvInt("SESSION_MAX_ENTRIES", 1024),
		},
		Extract: ExtractConfig{
			ScratchDir:  getEnv("EXTRACT_SCRATCH_DIR", os.TempDir()),
			PDFPassword: getEnv("EXTRACT_PDF_PASSWORD", ""),
		},
	}
}

// Validate checks the settings required by the selected backend.
func (c *AppConfig) Validate() error {
	switch c.Backend {
	case BackendBlob:
		if c.MinIO.Endpoint == "" || c.MinIO.Bucket == "" {
			return fmt.Errorf("blob backend requires MINIO_ENDPOINT and MINIO_BUCKET")
		}
	case BackendSite:
		if c.SharePoint.SiteURL == "" {
			return fmt.Errorf("site backend requires SHAREPOINT_SITE_URL")
		}
		if c.SharePoint.Library == "" {
			return fmt.Errorf("site backend requires SHAREPOINT_LIBRARY")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Backend)
	}

	if _, err := c.MaxUploadSizeBytes(); err != nil {
		return err
	}
	if c.DownloadURLExpiryMin <= 0 {
		return fmt.Errorf("DOWNLOAD_URL_EXPIRY_MIN must be positive")
	}
	return nil
}

// MaxUploadSizeBytes parses MaxUploadSize ("50MB", "1GiB", ...) into bytes.
func (c *AppConfig) MaxUploadSizeBytes() (int64, error) {
	size, err := units.FromHumanSize(c.MaxUploadSize)
	if err != nil {
		return 0, fmt.Errorf("invalid UPLOAD_MAX_SIZE: %w", err)
	}
	if size <= 0 {
		return 0, fmt.Errorf("UPLOAD_MAX_SIZE must be positive")
	}
	return size, nil
}

// DownloadURLExpiry returns the lifetime of issued download URLs.
func (c *AppConfig) DownloadURLExpiry() time.Duration {
	return time.Duration(c.DownloadURLExpiryMin) * time.Minute
}

// Location resolves LogTimezone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.LogTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

// getEnvList splits a comma separated variable, dropping blank items.
func getEnvList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
