package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config 应用配置
type Config struct {
	Env  string
	Port string

	// Storage
	DBPath     string
	RawDir     string
	CuratedDir string

	// OpenSky
	StatesURL          string
	OpenSkyUsername    string
	OpenSkyPassword    string
	InsecureSkipVerify bool
	FetchTimeout       time.Duration

	// Pipeline
	Interval        time.Duration
	AlertPolicyPath string

	// Presentation
	JWTSecret          string
	WatchInterval      time.Duration
	RateLimitPerMinute int
}

// Load 加载配置
func Load() *Config {
	// .env is optional; the environment always wins
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env file: %v", err)
	}

	return &Config{
		Env:  getEnv("ENV", "local"),
		Port: getEnv("PORT", ":8080"),

		DBPath:     getEnv("DB_PATH", "./data/flights.db"),
		RawDir:     getEnv("RAW_DIR", "./data/raw"),
		CuratedDir: getEnv("CURATED_DIR", "./data/curated"),

		StatesURL:          getEnv("OPENSKY_URL", "https://opensky-network.org/api/states/all"),
		OpenSkyUsername:    getEnv("OPENSKY_USERNAME", ""),
		OpenSkyPassword:    getEnv("OPENSKY_PASSWORD", ""),
		InsecureSkipVerify: getEnvAsBool("OPENSKY_INSECURE_SKIP_VERIFY", false),
		FetchTimeout:       getEnvAsSeconds("FETCH_TIMEOUT_SECONDS", 30),

		Interval:        getEnvAsSeconds("PIPELINE_INTERVAL_SECONDS", 600),
		AlertPolicyPath: getEnv("ALERT_POLICY_PATH", ""),

		JWTSecret:          getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		WatchInterval:      getEnvAsSeconds("WATCH_INTERVAL_SECONDS", 5),
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 120),
	}
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultVal
}

// getEnvAsSeconds reads a positive number of seconds.
func getEnvAsSeconds(key string, defaultVal int) time.Duration {
	seconds := getEnvAsInt(key, defaultVal)
	if seconds <= 0 {
		seconds = defaultVal
	}
	return time.Duration(seconds) * time.Second
}
