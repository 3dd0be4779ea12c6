package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Backends suportados para o armazenamento remoto.
const (
	BackendPostgREST = "postgrest"
	BackendPostgres  = "postgres"
	BackendLocal     = "local"
	BackendMemory    = "memory"
)

type Config struct {
	SupabaseURL    string
	SupabaseKey    string
	DatabaseURL    string
	RedisURL       string
	StoreBackend   string
	LocalDBPath    string
	DataDir        string
	RegionsFile    string
	APIPort        string
	MetricsPort    string
	WorkerCount    int
	SearchCacheTTL time.Duration
	SheetID        string
	SheetGIDs      []string
}

func Load() *Config {
	// Carrega .env da raiz do projeto
	_ = godotenv.Load("../../.env")
	// Se não encontrar, tenta no diretório atual
	_ = godotenv.Load()
	return &Config{
		SupabaseURL:    os.Getenv("SUPABASE_URL"),
		SupabaseKey:    os.Getenv("SUPABASE_KEY"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		StoreBackend:   getEnv("STORE_BACKEND", BackendPostgREST),
		LocalDBPath:    getEnv("LOCAL_DB_PATH", "cafes.db"),
		DataDir:        getEnv("DATA_DIR", "."),
		RegionsFile:    os.Getenv("REGIONS_FILE"),
		APIPort:        getEnv("API_PORT", "8000"),
		MetricsPort:    getEnv("METRICS_PORT", "9090"),
		WorkerCount:    getEnvInt("WORKER_COUNT", 10),
		SearchCacheTTL: getEnvDuration("SEARCH_CACHE_TTL", 5*time.Minute),
		SheetID:        os.Getenv("SHEET_ID"),
		SheetGIDs:      splitList(os.Getenv("SHEET_GIDS")),
	}
}

// RequireStore checks the settings the selected backend cannot start without.
func (c *Config) RequireStore() error {
	switch c.StoreBackend {
	case BackendPostgREST:
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			return fmt.Errorf("SUPABASE_URL or SUPABASE_KEY not set")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL not set")
		}
	case BackendLocal:
		if c.LocalDBPath == "" {
			return fmt.Errorf("LOCAL_DB_PATH not set")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	return nil
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getEnvInt(k string, d int) int {
	v, err := strconv.Atoi(os.Getenv(k))
	if err != nil || v <= 0 {
		return d
	}
	return v
}

func getEnvDuration(k string, d time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(k))
	if err != nil {
		return d
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
