package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppPort string

	// DBDriver is "mysql" or "sqlite"
	DBDriver   string
	SQLitePath string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	JWTSecret string
	TokenTTL  time.Duration

	LogLevel  string
	LogFormat string

	AuthRatePerSec float64
	AuthRateBurst  int

	SeedAdminName     string
	SeedAdminEmail    string
	SeedAdminPassword string

	SNSTopicARN string
	AWSRegion   string
}

var defaults = map[string]any{
	"APP_PORT":                "8080",
	"DB_DRIVER":               "mysql",
	"SQLITE_PATH":             "loantrack.db",
	"MYSQL_HOST":              "mysql",
	"MYSQL_PORT":              "3306",
	"MYSQL_DB":                "loantrack",
	"MYSQL_USER":              "loantrack",
	"MYSQL_PASS":              "loantrack",
	"REDIS_ADDR":              "redis:6379",
	"REDIS_DB":                0,
	"IDEMPOTENCY_TTL_SECONDS": 300,
	"TOKEN_TTL_HOURS":         24,
	"LOG_LEVEL":               "info",
	"LOG_FORMAT":              "json",
	"AUTH_RATE_PER_SEC":       1.0,
	"AUTH_RATE_BURST":         5,
	"SEED_ADMIN_NAME":         "Administrator",
	"AWS_REGION":              "ap-southeast-1",
}

// Load reads an optional .env file, then the process environment.
// Values already present in the environment win over .env.
func Load(envFiles ...string) *Config {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}

	return &Config{
		AppPort:    v.GetString("APP_PORT"),
		DBDriver:   strings.ToLower(v.GetString("DB_DRIVER")),
		SQLitePath: v.GetString("SQLITE_PATH"),

		MySQLHost: v.GetString("MYSQL_HOST"),
		MySQLPort: v.GetString("MYSQL_PORT"),
		MySQLDB:   v.GetString("MYSQL_DB"),
		MySQLUser: v.GetString("MYSQL_USER"),
		MySQLPass: v.GetString("MYSQL_PASS"),

		RedisAddr:    v.GetString("REDIS_ADDR"),
		RedisDB:      v.GetInt("REDIS_DB"),
		IdempTTLSecs: v.GetInt("IDEMPOTENCY_TTL_SECONDS"),

		JWTSecret: v.GetString("JWT_SECRET"),
		TokenTTL:  time.Duration(v.GetInt("TOKEN_TTL_HOURS")) * time.Hour,

		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFormat: v.GetString("LOG_FORMAT"),

		AuthRatePerSec: v.GetFloat64("AUTH_RATE_PER_SEC"),
		AuthRateBurst:  v.GetInt("AUTH_RATE_BURST"),

		SeedAdminName:     v.GetString("SEED_ADMIN_NAME"),
		SeedAdminEmail:    v.GetString("SEED_ADMIN_EMAIL"),
		SeedAdminPassword: v.GetString("SEED_ADMIN_PASSWORD"),

		SNSTopicARN: v.GetString("SNS_TOPIC_ARN"),
		AWSRegion:   v.GetString("AWS_REGION"),
	}
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.DBDriver {
	case "mysql":
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want mysql or sqlite)", c.DBDriver)
	}
	if len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL_HOURS must be positive")
	}
	if c.IdempTTLSecs <= 0 {
		return errors.New("IDEMPOTENCY_TTL_SECONDS must be positive")
	}
	if c.AuthRatePerSec <= 0 || c.AuthRateBurst <= 0 {
		return errors.New("AUTH_RATE_PER_SEC and AUTH_RATE_BURST must be positive")
	}
	if (c.SeedAdminEmail == "") != (c.SeedAdminPassword == "") {
		return errors.New("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD must be set together")
	}
	return nil
}

func (c *Config) IdempotencyTTL() time.Duration {
	return time.Duration(c.IdempTTLSecs) * time.Second
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
