package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the full environment-style configuration of the service.
type Config struct {
	Port     string
	Env      string
	LogLevel string

	FirebaseCredentialsPath string
	FirebaseDatabaseURL     string

	// Public web config proxied to the browser through /api/firebase-config.
	FirebaseAPIKey            string
	FirebaseAuthDomain        string
	FirebaseProjectID         string
	FirebaseStorageBucket     string
	FirebaseMessagingSenderID string
	FirebaseAppID             string
	FirebaseMeasurementID     string

	JWTSecret string

	// Config-endpoint gating.
	AllowedIPs           []string
	AllowedRefererPrefix string
	ClientIDHeader       string
	ClientIDValue        string

	StaticDir string

	UploadSignEndpoint string
	UploadPublicBase   string
	UploadFolder       string

	ModerationAllowPeerAction bool
}

// WebConfig is the JSON shape of the config endpoint response, matching what
// the browser SDK expects field for field.
type WebConfig struct {
	APIKey            string `json:"apiKey"`
	AuthDomain        string `json:"authDomain"`
	DatabaseURL       string `json:"databaseURL"`
	ProjectID         string `json:"projectId"`
	StorageBucket     string `json:"storageBucket"`
	MessagingSenderID string `json:"messagingSenderId"`
	AppID             string `json:"appId"`
	MeasurementID     string `json:"measurementId"`
}

// Load reads configuration from the environment, with a .env file as
// fallback for local runs.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	return &Config{
		Port:     getEnv("PORT", "5000"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", "./firebase_credentials.json"),
		FirebaseDatabaseURL:     getEnv("FIREBASE_DATABASE_URL", ""),

		FirebaseAPIKey:            getEnv("FIREBASE_API_KEY", ""),
		FirebaseAuthDomain:        getEnv("FIREBASE_AUTH_DOMAIN", ""),
		FirebaseProjectID:         getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseStorageBucket:     getEnv("FIREBASE_STORAGE_BUCKET", ""),
		FirebaseMessagingSenderID: getEnv("FIREBASE_MESSAGING_SENDER_ID", ""),
		FirebaseAppID:             getEnv("FIREBASE_APP_ID", ""),
		FirebaseMeasurementID:     getEnv("FIREBASE_MEASUREMENT_ID", ""),

		JWTSecret: getEnv("JWT_SECRET", "supersecretjwtkey"),

		AllowedIPs:           splitList(getEnv("ALLOWED_IPS", "")),
		AllowedRefererPrefix: getEnv("ALLOWED_REFERER_PREFIX", ""),
		ClientIDHeader:       getEnv("CLIENT_ID_HEADER", "X-Client-Id"),
		ClientIDValue:        getEnv("CLIENT_ID_VALUE", ""),

		StaticDir: getEnv("STATIC_DIR", "./public"),

		UploadSignEndpoint: getEnv("UPLOAD_SIGN_ENDPOINT", "https://pxpic.com/getSignedUrl"),
		UploadPublicBase:   getEnv("UPLOAD_PUBLIC_BASE", "https://files.fotoenhancer.com/uploads"),
		UploadFolder:       getEnv("UPLOAD_FOLDER", "uploads"),

		ModerationAllowPeerAction: getEnv("MODERATION_ALLOW_PEER_ACTION", "false") == "true",
	}
}

// WebConfig assembles the browser-facing connection parameters.
func (c *Config) WebConfig() WebConfig {
	return WebConfig{
		APIKey:            c.FirebaseAPIKey,
		AuthDomain:        c.FirebaseAuthDomain,
		DatabaseURL:       c.FirebaseDatabaseURL,
		ProjectID:         c.FirebaseProjectID,
		StorageBucket:     c.FirebaseStorageBucket,
		MessagingSenderID: c.FirebaseMessagingSenderID,
		AppID:             c.FirebaseAppID,
		MeasurementID:     c.FirebaseMeasurementID,
	}
}

// IsDevelopment reports whether the service runs ungated locally.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
