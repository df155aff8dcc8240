package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port     int    `envconfig:"PORT" default:"8079"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Version  string `envconfig:"VERSION" default:"dev"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	BcryptCost  int    `envconfig:"BCRYPT_COST" default:"12"`

	AWSRegion      string `envconfig:"AWS_REGION" default:"eu-west-2"`
	AWSAccessKey   string `envconfig:"AWS_ACCESS_KEY" default:""`
	AWSSecretKey   string `envconfig:"AWS_SECRET_KEY" default:""`
	DynamoEndpoint string `envconfig:"DYNAMODB_ENDPOINT" default:""`
	TablePrefix    string `envconfig:"DYNAMODB_TABLE_PREFIX" default:""`

	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	JWTIssuer string        `envconfig:"JWT_ISSUER" default:"nexus"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"12h"`

	AllowedReferer string   `envconfig:"ALLOWED_REFERER" default:""`
	CORSOrigins    []string `envconfig:"CORS_ORIGINS" default:""`
	RateLimitRPS   float64  `envconfig:"RATE_LIMIT_RPS" default:"50"`
	RateLimitBurst int      `envconfig:"RATE_LIMIT_BURST" default:"100"`

	MailDriver string `envconfig:"MAIL_DRIVER" default:"log"`
	MailFrom   string `envconfig:"MAIL_FROM" default:"noreply@nexusintelligence.local"`

	ProxyConfigPath string `envconfig:"PROXY_CONFIG" default:""`

	AlertSweepInterval time.Duration `envconfig:"ALERT_SWEEP_INTERVAL" default:"5m"`
}

// Load reads configuration from environment variables into a Config struct.
// An optional .env file in the working directory is applied first; variables
// already present in the environment take precedence over it.
func Load() (*Config, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDotEnv applies the given .env files (default ".env"). Missing files are
// not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// Bootstrap holds the settings needed before secrets are injected into the
// environment: where the secret store lives and which groups to read.
type Bootstrap struct {
	SecretGroups []string `envconfig:"SECRET_GROUPS"`
	AWSRegion    string   `envconfig:"AWS_REGION" default:"eu-west-2"`
	AWSAccessKey string   `envconfig:"AWS_ACCESS_KEY" default:""`
	AWSSecretKey string   `envconfig:"AWS_SECRET_KEY" default:""`
}

// LoadBootstrap reads the Bootstrap settings, applying .env first.
func LoadBootstrap() (*Bootstrap, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}

	var b Bootstrap
	if err := envconfig.Process("", &b); err != nil {
		return nil, err
	}
	return &b, nil
}
