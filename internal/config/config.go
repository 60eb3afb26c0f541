package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type Config struct {
	// APIBaseURL is the upstream REST API every query and mutation talks to.
	APIBaseURL string

	ServerPort string

	// RedisURL enables cross-instance invalidation when set.
	// Format: redis://[:password@]host:port[/db]
	RedisURL string

	RequestTimeout time.Duration

	// InstanceID tags invalidation events so a shell ignores its own.
	InstanceID string

	// AllowedOrigins may call the shell API from a browser.
	AllowedOrigins []string
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables")
	}

	apiBaseURL := strings.TrimRight(os.Getenv("API_BASE_URL"), "/")
	if apiBaseURL == "" {
		apiBaseURL = "http://localhost:5001/api"
	}

	serverPort := os.Getenv("SHELL_PORT")
	if serverPort == "" {
		serverPort = "5173"
	}

	timeoutSecs, err := strconv.Atoi(os.Getenv("REQUEST_TIMEOUT"))
	if err != nil || timeoutSecs <= 0 {
		timeoutSecs = 10
	}

	instanceID := os.Getenv("INSTANCE_ID")
	if instanceID == "" {
		instanceID = uuid.NewString()
	}

	allowedOrigins := []string{"http://localhost:*"}
	if raw := os.Getenv("CORS_ALLOWED_ORIGINS"); raw != "" {
		allowedOrigins = nil
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				allowedOrigins = append(allowedOrigins, o)
			}
		}
	}

	return &Config{
		APIBaseURL: apiBaseURL,
		ServerPort: serverPort,

		RedisURL: os.Getenv("REDIS_URL"),

		RequestTimeout: time.Duration(timeoutSecs) * time.Second,

		InstanceID: instanceID,

		AllowedOrigins: allowedOrigins,
	}, nil
}
