package config

import (
	"log"
	"os"
	"strconv"
)

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	MaxRetries  int
	DialTimeout int
	Timeout     int
	Prefix      string
}

type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
	Prefix          string
}

type AuthConfig struct {
	JWTSecret    string
	JWTExpiryHrs int
}

type AppConfig struct {
	Port        string
	ExternalURL string

	// AssetDir holds the base document (form.pdf) and the logo images.
	AssetDir string
	// ChromePath overrides browser binary discovery when set.
	ChromePath string

	// UploadDir keeps intake photo and signature uploads on local disk,
	// served under FilesPublicPrefix.
	UploadDir         string
	FilesPublicPrefix string

	Postgres PostgresConfig
	Redis    RedisConfig
	S3       S3Config
	Auth     AuthConfig
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func mustAtoi(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int value %q: %v", s, err)
	}
	return i
}

func mustBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		log.Fatalf("invalid bool value %q: %v", s, err)
	}
	return b
}

func Load() AppConfig {
	return AppConfig{
		Port:        getenv("APP_PORT", "8020"),
		ExternalURL: getenv("EXTERNAL_URL", ""),
		AssetDir:    getenv("ASSET_DIR", "./assets"),
		ChromePath:  getenv("CHROME_PATH", ""),

		UploadDir:         getenv("UPLOAD_DIR", "./uploads"),
		FilesPublicPrefix: getenv("FILES_PREFIX", "/files"),
		Postgres: PostgresConfig{
			Host:     getenv("PG_HOST", "127.0.0.1"),
			Port:     mustAtoi(getenv("PG_PORT", "5432")),
			User:     getenv("PG_USER", "root"),
			Password: getenv("PG_PASSWORD", "hello-world"),
			DBName:   getenv("PG_DB", "estate_intake"),
			SSLMode:  getenv("PG_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:        getenv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:    getenv("REDIS_PASSWORD", ""),
			DB:          mustAtoi(getenv("REDIS_DB", "0")),
			MaxRetries:  mustAtoi(getenv("REDIS_MAX_RETRIES", "5")),
			DialTimeout: mustAtoi(getenv("REDIS_DIAL_TIMEOUT", "10")),
			Timeout:     mustAtoi(getenv("REDIS_TIMEOUT", "5")),
			Prefix:      getenv("REDIS_PREFIX", "estate_intake"),
		},
		S3: S3Config{
			Endpoint:        getenv("S3_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getenv("S3_ACCESS_KEY", "minio"),
			SecretAccessKey: getenv("S3_SECRET_KEY", "minio123"),
			Bucket:          getenv("S3_BUCKET", "applications"),
			Region:          getenv("S3_REGION", "us-east-1"),
			UseSSL:          mustBool(getenv("S3_USE_SSL", "false")),
			Prefix:          getenv("S3_PREFIX", ""),
		},
		Auth: AuthConfig{
			JWTSecret:    getenv("JWT_SECRET", "change-this-in-production"),
			JWTExpiryHrs: mustAtoi(getenv("JWT_EXPIRY_HOURS", "168")),
		},
	}
}
