package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Logger     LoggerConfig
	Completion CompletionConfig
	Search     SearchConfig
	Reddit     RedditConfig
	Scrapers   []ScraperConfig
	Ingest     IngestConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey  string
	Expiration time.Duration
	RefreshExp time.Duration
}

// CompletionConfig configures the Together AI completion provider. The
// endpoint is OpenAI-compatible, so any compatible gateway works here.
type CompletionConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// SearchConfig configures the web-search fallback chain. Brave is tried
// first, SerpAPI second; the order is fixed, not latency-driven.
type SearchConfig struct {
	BraveAPIKey  string
	BraveBaseURL string
	SerpAPIKey   string
	SerpBaseURL  string
	ResultLimit  int
	Timeout      time.Duration
}

// RedditConfig configures the social-API connector. Authentication uses the
// OAuth2 client-credentials flow against TokenURL.
type RedditConfig struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
	Subreddit    string
	BaseURL      string
	TokenURL     string
	ResultLimit  int
}

// ScraperConfig describes one scraped site: a query URL template with a
// single %s placeholder and the CSS class that marks candidate elements.
// Selector rules are configuration because site markup changes under us.
type ScraperConfig struct {
	Name      string
	URLFormat string
	ItemClass string
}

type IngestConfig struct {
	Timeout     time.Duration
	RecentLimit int
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}
	// No .env file is fine: environment variables may be set directly
	// (Docker/K8s deployments).

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	jwtExp, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	refreshExp, _ := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168"))
	completionTimeout, _ := strconv.Atoi(getEnv("COMPLETION_TIMEOUT", "60"))
	maxTokens, _ := strconv.Atoi(getEnv("COMPLETION_MAX_TOKENS", "700"))
	temperature, _ := strconv.ParseFloat(getEnv("COMPLETION_TEMPERATURE", "0.5"), 64)
	searchLimit, _ := strconv.Atoi(getEnv("SEARCH_RESULT_LIMIT", "3"))
	searchTimeout, _ := strconv.Atoi(getEnv("SEARCH_TIMEOUT", "10"))
	redditLimit, _ := strconv.Atoi(getEnv("REDDIT_RESULT_LIMIT", "25"))
	ingestTimeout, _ := strconv.Atoi(getEnv("INGEST_TIMEOUT", "30"))
	recentLimit, _ := strconv.Atoi(getEnv("INGEST_RECENT_LIMIT", "5"))

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "apexbox"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey:  getEnv("JWT_SECRET_KEY", "your-secret-key-change-in-production"),
			Expiration: time.Duration(jwtExp) * time.Hour,
			RefreshExp: time.Duration(refreshExp) * time.Hour,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Completion: CompletionConfig{
			APIKey:      getEnv("TOGETHER_API_KEY", ""),
			BaseURL:     getEnv("TOGETHER_BASE_URL", "https://api.together.xyz/v1"),
			Model:       getEnv("TOGETHER_MODEL", "mistralai/Mixtral-8x7B-Instruct-v0.1"),
			Temperature: temperature,
			MaxTokens:   maxTokens,
			Timeout:     time.Duration(completionTimeout) * time.Second,
		},
		Search: SearchConfig{
			BraveAPIKey:  getEnv("BRAVE_API_KEY", ""),
			BraveBaseURL: getEnv("BRAVE_BASE_URL", "https://api.search.brave.com"),
			SerpAPIKey:   getEnv("SERPAPI_KEY", ""),
			SerpBaseURL:  getEnv("SERPAPI_BASE_URL", "https://serpapi.com"),
			ResultLimit:  searchLimit,
			Timeout:      time.Duration(searchTimeout) * time.Second,
		},
		Reddit: RedditConfig{
			ClientID:     getEnv("REDDIT_CLIENT_ID", ""),
			ClientSecret: getEnv("REDDIT_CLIENT_SECRET", ""),
			UserAgent:    getEnv("REDDIT_USER_AGENT", "apexbox/1.0"),
			Subreddit:    getEnv("REDDIT_SUBREDDIT", "simracing"),
			BaseURL:      getEnv("REDDIT_BASE_URL", "https://oauth.reddit.com"),
			TokenURL:     getEnv("REDDIT_TOKEN_URL", "https://www.reddit.com/api/v1/access_token"),
			ResultLimit:  redditLimit,
		},
		Scrapers: []ScraperConfig{
			{
				Name:      "rsetups",
				URLFormat: getEnv("RSETUPS_URL_FORMAT", "https://www.racingsetups.example/search?q=%s"),
				ItemClass: getEnv("RSETUPS_ITEM_CLASS", "setup-card"),
			},
			{
				Name:      "gridbank",
				URLFormat: getEnv("GRIDBANK_URL_FORMAT", "https://gridbank.example/setups?query=%s"),
				ItemClass: getEnv("GRIDBANK_ITEM_CLASS", "entry-row"),
			},
		},
		Ingest: IngestConfig{
			Timeout:     time.Duration(ingestTimeout) * time.Second,
			RecentLimit: recentLimit,
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
