package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings"
	"time"
)

// Config holds the booking server's runtime configuration. Each field
// corresponds to an environment variable.
type Config struct {
	Env         string        // application environment (e.g. "dev", "prod")
	Port        string        // HTTP port to listen on
	DBUser      string        // database username
	DBPass      string        // database password (optional)
	DBHost      string        // database host address
	DBPort      string        // database port number
	DBName      string        // database name
	JWTSecret   string        // secret used to sign ticket tokens
	TicketTTL   time.Duration // lifetime of a ticket token
	LayoutPath  string        // YAML seating layout used to seed the database (empty = default theater)
	SeedOnStart bool          // create the schema and seed the event when the database is empty
	AMQPURL     string        // RabbitMQ URL; empty disables booking events
	CORSOrigins []string      // allowed CORS origins
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:         must("APP_ENV"),
		Port:        must("APP_PORT"),
		DBUser:      must("DB_USER"),
		DBPass:      os.Getenv("DB_PASS"), // empty allowed
		DBHost:      must("DB_HOST"),
		DBPort:      must("DB_PORT"),
		DBName:      must("DB_NAME"),
		JWTSecret:   must("JWT_SECRET"),
		TicketTTL:   time.Duration(mustInt("TICKET_TOKEN_TTL_HOURS")) * time.Hour,
		LayoutPath:  os.Getenv("SEAT_LAYOUT"),
		SeedOnStart: envBool("DB_SEED", true),
		AMQPURL:     os.Getenv("RABBITMQ_URL"),
		CORSOrigins: splitList(envStr("CORS_ORIGINS", "*")),
	}
}

// ClientConfig holds the seat map client's settings. Command line flags
// override these values.
type ClientConfig struct {
	Origin     string // server origin the client was "served from"
	LayoutPath string // YAML seating layout (empty = default theater)
	LogFile    string // file receiving log output while the TUI owns the terminal
	Debug      bool   // log ignored push messages
}

// LoadClient reads the client settings. Nothing is required.
func LoadClient() ClientConfig {
	return ClientConfig{
		Origin:     envStr("SEATMAP_ORIGIN", "http://localhost:8080"),
		LayoutPath: os.Getenv("SEATMAP_LAYOUT"),
		LogFile:    envStr("SEATMAP_LOG_FILE", "seatmap.log"),
		Debug:      envBool("SEATMAP_DEBUG", false),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
