package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const devSessionSecret = "timeclock-dev-secret"

type Config struct {
	Port   string
	AppEnv string

	MongoURI      string
	MongoDatabase string

	JWTSecret         string
	EmployeeJWTSecret string
	SessionTTL        time.Duration
	EmployeeTTL       time.Duration
	CookieDomain      string
	CookieSecure      bool

	CronSecret  string
	CORSOrigins []string

	Timezone               string
	CleanupAt              string
	TimesheetRetentionDays int
	ImageRetentionDays     int

	S3Endpoint    string
	S3AccessKey   string
	S3SecretKey   string
	S3Bucket      string
	S3UseSSL      bool
	ImageHost     string
	ImageMaxBytes int64

	RequireDevice bool

	SMTPHost       string
	SMTPPort       int
	SMTPUser       string
	SMTPPassword   string
	AlertEmailFrom string
	AlertEmailTo   string

	MetricsAllowedIPs []string
}

// Load reads .env (if present) and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file loaded, using process environment")
	}

	appEnv := getEnv("APP_ENV", "production")
	jwtSecret, err := sessionSecret(getEnv("JWT_SECRET", ""), appEnv)
	if err != nil {
		log.Fatal(err)
	}

	return &Config{
		Port:   getEnv("PORT", "1414"),
		AppEnv: appEnv,

		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "timeclock"),

		JWTSecret:         jwtSecret,
		EmployeeJWTSecret: getEnv("EMPLOYEE_JWT_SECRET", jwtSecret),
		SessionTTL:        time.Duration(getEnvAsInt("SESSION_TTL_HOURS", 24)) * time.Hour,
		EmployeeTTL:       time.Duration(getEnvAsInt("EMPLOYEE_SESSION_TTL_HOURS", 12)) * time.Hour,
		CookieDomain:      getEnv("COOKIE_DOMAIN", ""),
		CookieSecure:      getEnvAsBool("COOKIE_SECURE", true),

		CronSecret:  getEnv("CRON_SECRET", ""),
		CORSOrigins: getEnvAsList("CORS_ORIGINS"),

		Timezone:               getEnv("TIMEZONE", "UTC"),
		CleanupAt:              getEnv("CLEANUP_AT", "03:00"),
		TimesheetRetentionDays: getEnvAsInt("TIMESHEET_RETENTION_DAYS", 0),
		ImageRetentionDays:     getEnvAsInt("IMAGE_RETENTION_DAYS", 0),

		S3Endpoint:    getEnv("S3_ENDPOINT", ""),
		S3AccessKey:   getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:   getEnv("S3_SECRET_KEY", ""),
		S3Bucket:      getEnv("S3_BUCKET", ""),
		S3UseSSL:      getEnvAsBool("S3_USE_SSL", true),
		ImageHost:     getEnv("IMAGE_HOST", ""),
		ImageMaxBytes: int64(getEnvAsInt("IMAGE_MAX_BYTES", 5*1024*1024)),

		RequireDevice: getEnvAsBool("REQUIRE_DEVICE", false),

		SMTPHost:       getEnv("SMTP_HOST", ""),
		SMTPPort:       getEnvAsInt("SMTP_PORT", 465),
		SMTPUser:       getEnv("SMTP_USER", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		AlertEmailFrom: getEnv("ALERT_EMAIL_FROM", ""),
		AlertEmailTo:   getEnv("ALERT_EMAIL_TO", ""),

		MetricsAllowedIPs: getEnvAsList("METRICS_ALLOWED_IPS"),
	}
}

func (c *Config) IsDevelopment() bool {
	return isDevelopment(c.AppEnv)
}

func isDevelopment(appEnv string) bool {
	return strings.EqualFold(appEnv, "development")
}

// sessionSecret refuses to run without JWT_SECRET outside development, where
// a fixed local key is used instead.
func sessionSecret(secret, appEnv string) (string, error) {
	if secret != "" {
		return secret, nil
	}
	if !isDevelopment(appEnv) {
		return "", errors.New("JWT_SECRET must be set when APP_ENV is not development")
	}
	log.Println("WARNING: JWT_SECRET is empty, sessions are signed with an insecure development key")
	return devSessionSecret, nil
}

// Location returns the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("Invalid TIMEZONE %q, using UTC: %v", c.Timezone, err)
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
