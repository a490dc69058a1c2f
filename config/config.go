package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all pipeline configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	MasterCSVPath  string
	FeatureCSVPath string
	StopsCSVPath   string
	LegacyCSVPath  string
	RawBatchDir    string
	RawBatchPrefix string

	// AddedCutoffDate is the earliest reliable first-appearance date
	// ("YYYY-MM-DD"); older dates are corrected or discarded.
	AddedCutoffDate string
	ReferenceYear   int

	OnlyExpired   bool
	DurationStart int
	DurationEnd   int

	ComparableRadiusKm float64
	UseKeywordMatcher  bool

	ScrapeEnabled  bool
	SearchURL      string
	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int
	MaxPages       int
	ChromeBin      string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "pipeline"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "pipeline123"),
		PostgresDB:       getEnv("POSTGRES_DB", "rental_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		MasterCSVPath:  getEnv("MASTER_CSV_PATH", "./data_processed/main.csv"),
		FeatureCSVPath: getEnv("FEATURE_CSV_PATH", "./data_processed/features.csv"),
		StopsCSVPath:   getEnv("STOPS_CSV_PATH", "./data_reference/subway_stops.csv"),
		LegacyCSVPath:  getEnv("LEGACY_CSV_PATH", ""),
		RawBatchDir:    getEnv("RAW_BATCH_DIR", "./data_raw"),
		RawBatchPrefix: getEnv("RAW_BATCH_PREFIX", "otodom"),

		AddedCutoffDate: getEnv("ADDED_CUTOFF_DATE", "2024-12-01"),
		ReferenceYear:   getEnvInt("REFERENCE_YEAR", time.Now().Year()),

		OnlyExpired:   getEnvBool("ONLY_EXPIRED", false),
		DurationStart: getEnvInt("DURATION_START", 1),
		DurationEnd:   getEnvInt("DURATION_END", 28),

		ComparableRadiusKm: getEnvFloat("COMPARABLE_RADIUS_KM", 0.5),
		UseKeywordMatcher:  getEnvBool("USE_KEYWORD_MATCHER", false),

		ScrapeEnabled:  getEnvBool("SCRAPE_ENABLED", false),
		SearchURL:      getEnv("SEARCH_URL", "https://www.otodom.pl/pl/wyniki/wynajem/mieszkanie/mazowieckie/warszawa/warszawa/warszawa?limit=36&daysSinceCreated=7&by=DEFAULT&direction=DESC&viewType=listing&page=1"),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 2),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 2000),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		MaxPages:       getEnvInt("MAX_PAGES", 25),
		ChromeBin:      getEnv("CHROME_BIN", ""),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
