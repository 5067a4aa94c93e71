package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time parses duration overrides
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.  Strings for identifiers
// and secrets, durations for windows the engine reasons about.
type Config struct {
	Env           string        // application environment (e.g. "dev", "prod")
	Port          string        // HTTP port to listen on
	MongoURI      string        // MongoDB connection string
	MongoDatabase string        // database holding the reservations/tables collections
	JWTSecret     string        // secret used to sign JWTs
	AccessTTLMin  int           // operator access token time-to-live in minutes
	VerifyTTLMin  int           // second-step verify token time-to-live in minutes
	BcryptCost    int           // bcrypt cost for hashing the admin password at setup
	AdminEmail    string        // operator login email
	AdminPassHash string        // bcrypt hash of the operator password
	HoldTTL       time.Duration // how long unconfirmed pending holds live
	SweepPeriod   time.Duration // how often the expiry sweeper runs
	CaptchaSecret string        // reCAPTCHA secret; empty disables verification
}

// Load reads configuration values from environment variables and
// returns a Config.  Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:           must("APP_ENV"),
		Port:          must("APP_PORT"),
		MongoURI:      must("MONGO_URI"),
		MongoDatabase: must("MONGO_DB"),
		JWTSecret:     must("JWT_SECRET"),
		AccessTTLMin:  mustInt("ACCESS_TOKEN_TTL_MIN"),
		VerifyTTLMin:  intOr("VERIFY_TOKEN_TTL_MIN", 10),
		BcryptCost:    mustInt("BCRYPT_COST"),
		AdminEmail:    must("ADMIN_EMAIL"),
		AdminPassHash: must("ADMIN_PASSWORD_HASH"),
		HoldTTL:       durOr("HOLD_TTL", 30*time.Minute),
		SweepPeriod:   durOr("SWEEP_PERIOD", 5*time.Minute),
		CaptchaSecret: os.Getenv("CAPTCHA_SECRET"), // empty allowed
	}
}

// must retrieves the value of a required environment variable.  If
// the variable is unset or empty, the application logs a fatal error
// and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an
// integer.  If conversion fails, the application logs a fatal error
// and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// intOr reads an optional integer variable, falling back to def.
func intOr(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}

// durOr reads an optional duration variable (e.g. "30m"), falling
// back to def.
func durOr(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("invalid duration for %s: %q", key, v)
	}
	return d
}
