// Package app assembles configuration, secrets and stores shared by the
// server and the admin CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/alert"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/atomic"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/auth"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/awsconfig"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/config"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/database"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/dynamo"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/mail"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/notification"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/org"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/secrets"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/team"
)

// Environment is the resolved configuration together with the AWS settings
// it was loaded with.
type Environment struct {
	Config  *config.Config
	AWS     aws.Config
	Secrets secrets.Result
}

// LoadEnvironment reads the bootstrap settings, copies the configured secret
// groups into the process environment and then parses the full Config.
// Secret groups that fail to load are logged and skipped.
func LoadEnvironment(ctx context.Context) (*Environment, error) {
	boot, err := config.LoadBootstrap()
	if err != nil {
		return nil, fmt.Errorf("loading bootstrap configuration: %w", err)
	}

	awsCfg, err := awsconfig.Load(ctx, awsconfig.Options{
		Region:    boot.AWSRegion,
		AccessKey: boot.AWSAccessKey,
		SecretKey: boot.AWSSecretKey,
	})
	if err != nil {
		return nil, err
	}

	var res secrets.Result
	if len(boot.SecretGroups) > 0 {
		res = secrets.NewLoader(secrets.NewSecretsManagerFetcher(awsCfg)).Load(ctx, boot.SecretGroups)
		slog.Info("secret groups loaded", "loaded", res.Loaded, "failed", len(res.Failed))
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return &Environment{Config: cfg, AWS: awsCfg, Secrets: res}, nil
}

// BootstrapLogger installs the JSON handler at LOG_LEVEL from the process
// environment, before .env files and secret groups have been applied.
func BootstrapLogger() {
	SetupLogger(os.Getenv("LOG_LEVEL"))
}

// SetupLogger installs a JSON slog handler at the given level.
func SetupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// Stores holds every repository and service backed by Postgres or DynamoDB.
type Stores struct {
	DB     *database.DB
	Dynamo dynamo.API

	Users         auth.UserRepository
	Auth          *auth.Service
	Teams         team.Repository
	TeamRoles     team.RoleRepository
	OrgMembers    org.Repository
	Notifications *notification.Service
	Alerts        alert.Repository
	Atomic        atomic.Repository
	Mailer        mail.Sender
}

// OpenStores connects to Postgres, applies migrations and builds the
// repositories. The caller owns Stores.DB and must Close it.
func OpenStores(ctx context.Context, env *Environment) (*Stores, error) {
	cfg := env.Config

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if _, err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	mailer, err := mail.New(cfg.MailDriver, env.AWS, cfg.MailFrom)
	if err != nil {
		db.Close()
		return nil, err
	}

	ddb := dynamo.NewClient(env.AWS, cfg.DynamoEndpoint)
	table := func(base string) string { return dynamo.TableName(cfg.TablePrefix, base) }

	users := auth.NewRepository(db.Pool())
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)

	return &Stores{
		DB:            db,
		Dynamo:        ddb,
		Users:         users,
		Auth:          auth.NewService(users, tokens, cfg.BcryptCost),
		Teams:         team.NewRepository(ddb, table(team.TeamsTable)),
		TeamRoles:     team.NewRoleRepository(ddb, table(team.RolesTable)),
		OrgMembers:    org.NewRepository(ddb, table(org.MembersTable)),
		Notifications: notification.NewService(notification.NewRepository(ddb, table(notification.Table)), users, mailer),
		Alerts:        alert.NewRepository(ddb, table(alert.Table)),
		Atomic:        atomic.NewRepository(db.Pool()),
		Mailer:        mailer,
	}, nil
}
