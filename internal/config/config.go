package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  Strings are used for identifiers and
// secrets, ints for durations and costs.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes (1440 = the 24h booking session)
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing
	AdminEmail     string // bootstrap admin email, seeded when the users table is empty
	AdminPassword  string // bootstrap admin password
	SeedDemoData   bool   // when true, seed demo rooms and a member account on first run
}

// Load reads configuration values from environment variables and returns
// a Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Bootstrap and
// seeding values have defaults so a fresh checkout boots against an
// empty database.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),                            // environment (dev/test/prod)
		Port:           must("APP_PORT"),                           // port to bind the HTTP server
		DBUser:         must("DB_USER"),                            // database user
		DBPass:         os.Getenv("DB_PASS"),                       // database password (empty allowed)
		DBHost:         must("DB_HOST"),                            // database host
		DBPort:         must("DB_PORT"),                            // database port
		DBName:         must("DB_NAME"),                            // database name
		JWTSecret:      must("JWT_SECRET"),                         // secret used for signing JWTs
		AccessTTLMin:   intOr("ACCESS_TOKEN_TTL_MIN", 1440),        // access tokens default to 24 hours
		RefreshTTLDays: intOr("REFRESH_TOKEN_TTL_DAYS", 30),        // refresh tokens default to 30 days
		BcryptCost:     intOr("BCRYPT_COST", 10),                   // bcrypt cost factor
		AdminEmail:     strOr("ADMIN_EMAIL", "admin@example.com"),  // seeded admin account
		AdminPassword:  strOr("ADMIN_PASSWORD", "admin123"),        // seeded admin password (dev default)
		SeedDemoData:   strOr("SEED_DEMO_DATA", "true") == "true",  // demo rooms + member account
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and
// exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// strOr returns the environment value for key, or def when unset.
func strOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// intOr is like strOr but converts the retrieved string into an
// integer.  A malformed value is a fatal configuration error.
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
