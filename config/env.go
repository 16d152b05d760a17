package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultRequestTimeout is how long a single store call may run before it is
// reported as a timeout.
const DefaultRequestTimeout = 30 * time.Second

// Settings holds everything the gateway reads from its environment.
type Settings struct {
	SupabaseURL       string
	SupabaseAnonKey   string
	SupabaseJWTSecret string

	Port           string
	GRPCHealthPort string
	RequestTimeout time.Duration
	LogLevel       string
	CORSOrigins    string

	MediaBucket  string
	MediaWorkers int
}

// Load reads settings from the process environment, after loading a .env file
// if one exists. The store URL and public key are mandatory.
func Load() (*Settings, error) {
	// A missing .env file is fine, the variables may come from the environment.
	_ = godotenv.Load()

	s := &Settings{
		SupabaseURL:       strings.TrimRight(os.Getenv("SUPABASE_URL"), "/"),
		SupabaseAnonKey:   os.Getenv("SUPABASE_ANON_KEY"),
		SupabaseJWTSecret: os.Getenv("SUPABASE_JWT_SECRET"),
		Port:              getEnv("PORT", "8080"),
		GRPCHealthPort:    os.Getenv("GRPC_HEALTH_PORT"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		CORSOrigins:       getEnv("CORS_ORIGINS", "*"),
		MediaBucket:       getEnv("MEDIA_BUCKET", "portfolio-media"),
	}

	var missing []string
	if s.SupabaseURL == "" {
		missing = append(missing, "SUPABASE_URL")
	}
	if s.SupabaseAnonKey == "" {
		missing = append(missing, "SUPABASE_ANON_KEY")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	timeoutMS, err := getInt("REQUEST_TIMEOUT_MS", int(DefaultRequestTimeout/time.Millisecond))
	if err != nil {
		return nil, err
	}
	if timeoutMS <= 0 {
		return nil, fmt.Errorf("REQUEST_TIMEOUT_MS must be positive, got %d", timeoutMS)
	}
	s.RequestTimeout = time.Duration(timeoutMS) * time.Millisecond

	s.MediaWorkers, err = getInt("MEDIA_WORKERS", 2)
	if err != nil {
		return nil, err
	}
	if s.MediaWorkers < 1 {
		s.MediaWorkers = 1
	}

	return s, nil
}

// RestURL is the PostgREST endpoint of the project.
func (s *Settings) RestURL() string {
	return s.SupabaseURL + "/rest/v1"
}

// PublicMediaPrefix is the URL prefix of publicly readable objects in the
// media bucket.
func (s *Settings) PublicMediaPrefix() string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/", s.SupabaseURL, s.MediaBucket)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v, nil
}
