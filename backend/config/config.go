package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	ServerPort string

	LeetcodeAPIURL string
	FetchTimeout   time.Duration
	// DayOffset is the fixed UTC offset that defines the tracker's calendar
	// day. Defaults to IST (+05:30); never the host's local zone.
	DayOffset      time.Duration
	StreakWindow   int
	RefreshWorkers int
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "leetcode_tracker"),
		ServerPort: getEnv("SERVER_PORT", "8080"),

		LeetcodeAPIURL: getEnv("LEETCODE_API_URL", "https://leetcode.com/graphql"),
		FetchTimeout:   time.Duration(getEnvInt("FETCH_TIMEOUT_SECONDS", 15)) * time.Second,
		DayOffset:      time.Duration(getEnvInt("TZ_OFFSET_MINUTES", 330)) * time.Minute,
		StreakWindow:   getEnvInt("STREAK_WINDOW_DAYS", 30),
		RefreshWorkers: getEnvInt("REFRESH_WORKERS", 5),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
