package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	CatalogSourceJSON     = "json"
	CatalogSourcePostgres = "postgres"
)

type Config struct {
	Env      string
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	AI       AIConfig
	Catalog  CatalogConfig
	Admin    AdminConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string
}

type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

// AuthConfig описывает проверку токенов, выпущенных внешним сервисом авторизации.
// Пустой JWTSecret отключает проверку.
type AuthConfig struct {
	JWTSecret      string
	JWTIssuer      string
	AccessTokenTTL time.Duration
}

type AIConfig struct {
	Provider              string
	APIKey                string
	BaseURL               string
	Model                 string
	Timeout               time.Duration
	RateLimitPerMinute    int
	RateLimitBurst        int
	PlanTemperature       float64
	PlanMaxTokens         int
	ExtractionTemperature float64
	ExtractionMaxTokens   int
	CircuitBreaker        bool
	JSONExtractor         string
}

type CatalogConfig struct {
	Source string
	Path   string
}

type AdminConfig struct {
	UserIDs []int
}

// Load загружает конфигурацию приложения из окружения и .env.
func Load() (Config, error) {
	cfg := Config{}

	if err := loadEnv(); err != nil {
		return cfg, err
	}

	cfg.Env = getEnv("APP_ENV", "local")

	serverPort, err := parseIntEnv("SERVER_PORT", 8081)
	if err != nil {
		return cfg, err
	}

	readTimeout, err := parseDurationEnv("SERVER_READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return cfg, err
	}

	writeTimeout, err := parseDurationEnv("SERVER_WRITE_TIMEOUT", 45*time.Second)
	if err != nil {
		return cfg, err
	}

	idleTimeout, err := parseDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return cfg, err
	}

	cfg.Server = ServerConfig{
		Host:         getEnv("SERVER_HOST", "0.0.0.0"),
		Port:         serverPort,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
		CORSOrigins:  parseCSVEnv("SERVER_CORS_ORIGINS"),
	}

	dbEnabled, err := parseBoolEnv("DB_ENABLED", false)
	if err != nil {
		return cfg, err
	}

	dbPort, err := parseIntEnv("DB_PORT", 5432)
	if err != nil {
		return cfg, err
	}

	maxOpenConns, err := parseIntEnv("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return cfg, err
	}

	maxIdleConns, err := parseIntEnv("DB_MAX_IDLE_CONNS", 5)
	if err != nil {
		return cfg, err
	}

	connMaxIdleTime, err := parseDurationEnv("DB_CONN_MAX_IDLE_TIME", 5*time.Minute)
	if err != nil {
		return cfg, err
	}

	connMaxLifetime, err := parseDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute)
	if err != nil {
		return cfg, err
	}

	cfg.Database = DatabaseConfig{
		Enabled:         dbEnabled,
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            dbPort,
		User:            getEnv("DB_USER", "learning"),
		Password:        getEnv("DB_PASSWORD", "learning"),
		Name:            getEnv("DB_NAME", "learning_path"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    maxOpenConns,
		MaxIdleConns:    maxIdleConns,
		ConnMaxIdleTime: connMaxIdleTime,
		ConnMaxLifetime: connMaxLifetime,
	}

	accessTTL, err := parseDurationEnv("JWT_ACCESS_TTL", 15*time.Minute)
	if err != nil {
		return cfg, err
	}

	cfg.Auth = AuthConfig{
		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWTIssuer:      getEnv("JWT_ISSUER", "learning-path"),
		AccessTokenTTL: accessTTL,
	}

	aiTimeout, err := parseDurationEnv("AI_TIMEOUT", 30*time.Second)
	if err != nil {
		return cfg, err
	}

	aiRateLimitPerMinute, err := parseIntEnv("AI_RATE_LIMIT_PER_MINUTE", 30)
	if err != nil {
		return cfg, err
	}

	aiRateLimitBurst, err := parseIntEnv("AI_RATE_LIMIT_BURST", 10)
	if err != nil {
		return cfg, err
	}

	planTemperature, err := parseFloatEnv("AI_PLAN_TEMPERATURE", 0.7)
	if err != nil {
		return cfg, err
	}

	planMaxTokens, err := parseIntEnv("AI_PLAN_MAX_TOKENS", 2000)
	if err != nil {
		return cfg, err
	}

	extractionTemperature, err := parseFloatEnv("AI_EXTRACTION_TEMPERATURE", 0.3)
	if err != nil {
		return cfg, err
	}

	extractionMaxTokens, err := parseIntEnv("AI_EXTRACTION_MAX_TOKENS", 500)
	if err != nil {
		return cfg, err
	}

	circuitBreaker, err := parseBoolEnv("AI_CIRCUIT_BREAKER", true)
	if err != nil {
		return cfg, err
	}

	aiProvider := strings.ToLower(getEnv("AI_PROVIDER", "groq"))
	defaultBaseURL := "https://api.groq.com/openai/v1"
	defaultModel := "llama-3.3-70b-versatile"
	if aiProvider == "gemini" {
		defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
		defaultModel = "gemini-1.5-flash"
	}

	aiAPIKey := getEnv("AI_API_KEY", "")
	if aiAPIKey == "" {
		switch aiProvider {
		case "gemini":
			aiAPIKey = getEnv("GEMINI_API_KEY", "")
		case "groq":
			aiAPIKey = getEnv("GROQ_API_KEY", "")
		}
	}

	cfg.AI = AIConfig{
		Provider:              aiProvider,
		APIKey:                aiAPIKey,
		BaseURL:               getEnv("AI_BASE_URL", defaultBaseURL),
		Model:                 getEnv("AI_MODEL", defaultModel),
		Timeout:               aiTimeout,
		RateLimitPerMinute:    aiRateLimitPerMinute,
		RateLimitBurst:        aiRateLimitBurst,
		PlanTemperature:       planTemperature,
		PlanMaxTokens:         planMaxTokens,
		ExtractionTemperature: extractionTemperature,
		ExtractionMaxTokens:   extractionMaxTokens,
		CircuitBreaker:        circuitBreaker,
		JSONExtractor:         strings.ToLower(getEnv("AI_JSON_EXTRACTOR", "outermost")),
	}

	cfg.Catalog = CatalogConfig{
		Source: strings.ToLower(getEnv("CATALOG_SOURCE", CatalogSourceJSON)),
		Path:   getEnv("CATALOG_PATH", "data/courses.json"),
	}

	adminIDs, err := parseIntListEnv("ADMIN_USER_IDS")
	if err != nil {
		return cfg, err
	}

	cfg.Admin = AdminConfig{
		UserIDs: adminIDs,
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// DSN возвращает строку подключения к базе данных.
func (c DatabaseConfig) DSN() string {
	user := url.UserPassword(c.User, c.Password)
	dsn := url.URL{
		Scheme: "postgres",
		User:   user,
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Name,
	}

	query := url.Values{}
	query.Set("sslmode", c.SSLMode)
	return dsn.String() + "?" + query.Encode()
}

func (c Config) validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("SERVER_PORT must be greater than 0")
	}

	if c.Database.Enabled {
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required")
		}

		if c.Database.User == "" {
			return fmt.Errorf("DB_USER is required")
		}

		if c.Database.Name == "" {
			return fmt.Errorf("DB_NAME is required")
		}

		if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
			return fmt.Errorf("DB_MAX_IDLE_CONNS cannot exceed DB_MAX_OPEN_CONNS")
		}
	}

	switch c.Catalog.Source {
	case CatalogSourceJSON:
		if strings.TrimSpace(c.Catalog.Path) == "" {
			return fmt.Errorf("CATALOG_PATH is required for json catalog")
		}
	case CatalogSourcePostgres:
		if !c.Database.Enabled {
			return fmt.Errorf("CATALOG_SOURCE=postgres requires DB_ENABLED=true")
		}
	default:
		return fmt.Errorf("CATALOG_SOURCE must be json or postgres")
	}

	switch c.AI.Provider {
	case "groq", "gemini":
	default:
		return fmt.Errorf("AI_PROVIDER must be groq or gemini")
	}

	switch c.AI.JSONExtractor {
	case "outermost", "balanced":
	default:
		return fmt.Errorf("AI_JSON_EXTRACTOR must be outermost or balanced")
	}

	if c.AI.PlanTemperature > 2 || c.AI.ExtractionTemperature > 2 {
		return fmt.Errorf("AI temperatures must be between 0 and 2")
	}

	if c.Auth.JWTSecret != "" && c.Auth.AccessTokenTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be greater than 0")
	}

	if len(c.Admin.UserIDs) > 0 && c.Auth.JWTSecret == "" {
		return fmt.Errorf("ADMIN_USER_IDS requires JWT_SECRET")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

func parseIntEnv(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func parseFloatEnv(key string, fallback float64) (float64, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}

	if parsed < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}

	return parsed, nil
}

func parseBoolEnv(key string, fallback bool) (bool, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}

	return parsed, nil
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func parseCSVEnv(key string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(part))
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

func parseIntListEnv(key string) ([]int, error) {
	values := parseCSVEnv(key)
	if len(values) == 0 {
		return nil, nil
	}

	out := make([]int, 0, len(values))
	for _, value := range values {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("%s must contain positive integers", key)
		}
		out = append(out, parsed)
	}
	return out, nil
}

func loadEnv() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}

	return nil
}
