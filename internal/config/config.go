package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	AppPort    string
	AppEnv     string

	JWTSecret       string
	JWTAccessTTL    time.Duration
	JWTRefreshTTL   time.Duration
	CORSOrigin      string
	InternalSecret  string
	ShutdownTimeout time.Duration

	WeatherBaseURL   string
	WeatherLatitude  float64
	WeatherLongitude float64
	WeatherTimeout   time.Duration
	WeatherCacheTTL  time.Duration

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	PredictModelURL    string
	PredictClassesPath string
	PredictTimeout     time.Duration

	GroqAPIKey  string
	GroqBaseURL string
	GroqModel   string
	LLMTimeout  time.Duration
}

var (
	ErrMissingDBHost    = errors.New("DB_HOST is not set")
	ErrMissingJWTSecret = errors.New("JWT_SECRET is not set")
)

// LoadConfig reads .env (when present) and the process environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     getEnv("DB_PORT", "5432"),
		AppPort:    getEnv("APP_PORT", "8000"),
		AppEnv:     getEnv("APP_ENV", "development"),

		JWTSecret:       os.Getenv("JWT_SECRET"),
		JWTAccessTTL:    getDuration("JWT_ACCESS_TTL", time.Hour),
		JWTRefreshTTL:   getDuration("JWT_REFRESH_TTL", 24*time.Hour),
		CORSOrigin:      getEnv("CORS_ALLOWED_ORIGIN", "http://localhost:3000"),
		InternalSecret:  os.Getenv("INTERNAL_SECRET_KEY"),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 20*time.Second),

		WeatherBaseURL:   getEnv("WEATHER_BASE_URL", "https://api.open-meteo.com"),
		WeatherLatitude:  getFloat("WEATHER_DEFAULT_LATITUDE", 36.8065),
		WeatherLongitude: getFloat("WEATHER_DEFAULT_LONGITUDE", 10.1815),
		WeatherTimeout:   getDuration("WEATHER_TIMEOUT", 5*time.Second),
		WeatherCacheTTL:  getDuration("WEATHER_CACHE_TTL", 10*time.Minute),

		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),

		PredictModelURL:    os.Getenv("PREDICT_MODEL_URL"),
		PredictClassesPath: getEnv("PREDICT_CLASSES_PATH", "predict/classes.json"),
		PredictTimeout:     getDuration("PREDICT_TIMEOUT", 30*time.Second),

		GroqAPIKey:  os.Getenv("GROQ_API_KEY"),
		GroqBaseURL: getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		GroqModel:   getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		LLMTimeout:  getDuration("LLM_TIMEOUT", 20*time.Second),
	}

	if cfg.DBHost == "" {
		return nil, ErrMissingDBHost
	}
	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}

	return cfg, nil
}

// PredictEnabled reports whether the disease-detection endpoints should be mounted.
func (c *Config) PredictEnabled() bool {
	return c.PredictModelURL != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
