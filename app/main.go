package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/lysyi3m/bow-comb/app/cfg"
	"github.com/lysyi3m/bow-comb/app/database"
	"github.com/lysyi3m/bow-comb/app/feed"
	"github.com/lysyi3m/bow-comb/app/secrets"
	"github.com/lysyi3m/bow-comb/app/sink"
	"github.com/lysyi3m/bow-comb/app/tasks"
	"github.com/lysyi3m/bow-comb/app/thingiverse"
)

func main() {
	c, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if c == nil {
		return
	}

	level := slog.LevelInfo
	if c.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, c); err != nil {
		slog.Error("Run failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, c *cfg.Cfg) error {
	slog.Info("Starting bow-comb",
		"version", c.Version,
		"account", c.Account,
		"ledger", c.Ledger,
		"sink", c.Sink)

	var awsCfg *aws.Config
	if c.SecretsBackend == cfg.SecretsAWS || c.Sink == cfg.SinkS3 {
		loaded, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(c.AWSRegion))
		if err != nil {
			return fmt.Errorf("failed to load AWS configuration: %w", err)
		}
		awsCfg = &loaded
	}

	store, err := newSecretStore(c, awsCfg)
	if err != nil {
		return err
	}

	token, err := secrets.AuthToken(ctx, store, c.APISecret)
	if err != nil {
		return err
	}

	ledger, err := newLedger(ctx, c, store)
	if err != nil {
		return err
	}
	defer func() {
		if err := ledger.Close(); err != nil {
			slog.Warn("Failed to close ledger", "error", err)
		}
	}()

	client := thingiverse.NewClient(c.APIBaseURL, c.Account, token, thingiverse.Options{
		UserAgent: c.UserAgent,
		Timeout:   c.HTTPTimeout,
	})

	task := tasks.NewPublishFeedTask(client, ledger,
		feed.NewFilterer(feed.Policy{
			CollectionMaxAge: c.CollectionMaxAge,
			ItemMaxAge:       c.ItemMaxAge,
			NamePrefixes:     c.NamePrefixes,
		}),
		feed.NewGenerator(),
		feed.NewVerifier(),
		newWriter(c, awsCfg),
		tasks.Output{
			Key:          c.ObjectKey,
			CacheControl: c.CacheControl,
			ACL:          c.ACL,
			Metadata: feed.Metadata{
				Title:       c.FeedTitle,
				HomePageURL: c.FeedHomePageURL,
				FeedURL:     c.FeedURL(),
				UserComment: c.FeedComment,
				Author:      feed.Author{Name: c.AuthorName, URL: c.AuthorURL},
			},
		})

	slog.Info("Task started", "run", task.GetID(), "type", task.GetType())
	return task.Execute(ctx)
}

func newSecretStore(c *cfg.Cfg, awsCfg *aws.Config) (secrets.Store, error) {
	switch c.SecretsBackend {
	case cfg.SecretsFile:
		store, err := secrets.NewFileStore(c.SecretsFile)
		if err != nil {
			return nil, &cfg.ConfigError{Field: "secrets-file", Err: err}
		}
		return store, nil
	default:
		return secrets.NewAWSStore(secretsmanager.NewFromConfig(*awsCfg)), nil
	}
}

func newLedger(ctx context.Context, c *cfg.Cfg, store secrets.Store) (database.Ledger, error) {
	switch c.Ledger {
	case cfg.LedgerPostgres:
		creds, err := secrets.LoadDBCredentials(ctx, store, c.DBSecret)
		if err != nil {
			return nil, err
		}
		dbName := creds.DBName
		if dbName == "" {
			dbName = c.DBName
		}
		ledger, err := database.NewPostgresLedger(ctx, database.PostgresConfig{
			Host:     creds.Host,
			Port:     creds.PortOr(c.DBPort),
			User:     creds.Username,
			Password: creds.Password,
			DBName:   dbName,
			SSLMode:  c.DBSSLMode,
		})
		if err != nil {
			return nil, err
		}
		return ledger, nil
	case cfg.LedgerRedis:
		ledger, err := database.NewRedisLedger(ctx, c.RedisAddr, c.RedisPrefix)
		if err != nil {
			return nil, err
		}
		return ledger, nil
	default:
		ledger, err := database.NewSQLiteLedger(ctx, c.LedgerPath, c.LedgerCreate)
		if err != nil {
			return nil, err
		}
		slog.Info("SQLite ledger opened", "path", ledger.Path())
		return ledger, nil
	}
}

func newWriter(c *cfg.Cfg, awsCfg *aws.Config) sink.Writer {
	if c.Sink == cfg.SinkFile {
		return sink.NewFileWriter(c.OutputDir)
	}
	return sink.NewS3Writer(s3.NewFromConfig(*awsCfg), c.S3Bucket)
}
