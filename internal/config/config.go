package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string

	FacilityName      string
	BaseRatePerHour   float64
	TicketNumberFloor int
	ActivateOnIssue   bool
	FullnessPolicy    string

	// Archive database; the engine runs purely in memory when DBHost is empty.
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	JWTSecret     string
	JWTExpiration time.Duration

	AdminUsername string
	AdminPassword string
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Printf("warning: could not load .env file: %v", err)
	}

	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	jwtExpHours, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	baseRate, _ := strconv.ParseFloat(getEnv("BASE_RATE_PER_HOUR", "50"), 64)
	ticketFloor, _ := strconv.Atoi(getEnv("TICKET_NUMBER_FLOOR", "1000"))
	activateOnIssue, _ := strconv.ParseBool(getEnv("ACTIVATE_ON_ISSUE", "true"))

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),

		FacilityName:      getEnv("FACILITY_NAME", "central-garage"),
		BaseRatePerHour:   baseRate,
		TicketNumberFloor: ticketFloor,
		ActivateOnIssue:   activateOnIssue,
		FullnessPolicy:    getEnv("FULLNESS_POLICY", "per-class"),

		DBHost:     getEnv("DB_HOST", ""),
		DBPort:     dbPort,
		DBUser:     getEnv("DB_USER", "parking"),
		DBPassword: getEnv("DB_PASSWORD", "parking"),
		DBName:     getEnv("DB_NAME", "parking_facility"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:     getEnv("JWT_SECRET", "change-me-in-production"),
		JWTExpiration: time.Duration(jwtExpHours) * time.Hour,

		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),
	}
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
