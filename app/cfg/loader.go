package cfg

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	if Version != "" {
		return Version
	}
	return "unknown"
}

type rawCfg struct {
	// Upstream configuration
	APIBaseURL  string        `long:"api-base-url" env:"API_BASE_URL" default:"https://api.thingiverse.com" description:"Thingiverse API base URL"`
	Account     string        `long:"account" env:"ACCOUNT" default:"KryptonicLoser" description:"Account whose collections are polled"`
	APISecret   string        `long:"api-secret" env:"API_SECRET" default:"thingiverse_api" description:"Secret holding the API auth_token"`
	UserAgent   string        `long:"user-agent" env:"USER_AGENT" default:"bow-comb/1.0" description:"User agent string for HTTP requests"`
	HTTPTimeout time.Duration `long:"http-timeout" env:"HTTP_TIMEOUT" default:"0s" description:"Per-request timeout (0 keeps the transport default)"`

	// Secret store configuration
	SecretsBackend string `long:"secrets" env:"SECRETS_BACKEND" default:"aws" choice:"aws" choice:"file" description:"Secret store backend"`
	SecretsFile    string `long:"secrets-file" env:"SECRETS_FILE" default:"./secrets.yml" description:"YAML secrets file (file backend)"`
	AWSRegion      string `long:"aws-region" env:"AWS_REGION" default:"us-east-1" description:"AWS region for Secrets Manager and S3"`

	// Ledger configuration
	Ledger       string `long:"ledger" env:"LEDGER" default:"sqlite" choice:"postgres" choice:"sqlite" choice:"redis" description:"First-seen ledger backend"`
	LedgerPath   string `long:"ledger-path" env:"LEDGER_PATH" default:"./thingiverse-bow.sqlite3" description:"SQLite ledger file"`
	LedgerCreate bool   `long:"ledger-create" env:"LEDGER_CREATE" description:"Create the SQLite ledger file when missing"`
	DBSecret     string `long:"db-secret" env:"DB_SECRET" default:"serverless_db" description:"Secret holding host/username/password for the postgres ledger"`
	DBName       string `long:"db-name" env:"DB_NAME" default:"thingiverse" description:"Postgres database name"`
	DBPort       string `long:"db-port" env:"DB_PORT" default:"5432" description:"Postgres port when the secret has none"`
	DBSSLMode    string `long:"db-sslmode" env:"DB_SSLMODE" default:"require" description:"Postgres sslmode"`
	RedisAddr    string `long:"redis-addr" env:"REDIS_ADDR" default:"localhost:6379" description:"Redis ledger address"`
	RedisPrefix  string `long:"redis-prefix" env:"REDIS_PREFIX" default:"bow:item:" description:"Key prefix for redis ledger entries"`

	// Inclusion policy
	CollectionMaxAge time.Duration `long:"collection-max-age" env:"COLLECTION_MAX_AGE" default:"336h" description:"Skip collections not modified within this window"`
	ItemMaxAge       time.Duration `long:"item-max-age" env:"ITEM_MAX_AGE" default:"168h" description:"Only publish items first seen within this window"`
	NamePrefixes     []string      `long:"prefix" env:"NAME_PREFIXES" env-delim:"," default:"best of" default:"bow" description:"Recognized collection name prefixes (case-insensitive, repeatable)"`

	// Output configuration
	Sink         string `long:"sink" env:"SINK" default:"s3" choice:"s3" choice:"file" description:"Where the feed document is written"`
	S3Bucket     string `long:"s3-bucket" env:"S3_BUCKET" default:"dyn.tedder.me" description:"Destination bucket"`
	ObjectKey    string `long:"key" env:"OBJECT_KEY" default:"rss/thingiverse_kryptonicloser_recent_collected.json" description:"Destination key"`
	OutputDir    string `long:"output-dir" env:"OUTPUT_DIR" default:"." description:"Destination directory (file sink)"`
	CacheControl string `long:"cache-control" env:"CACHE_CONTROL" default:"max-age=6" description:"Cache-Control for the published document"`
	ACL          string `long:"acl" env:"ACL" default:"public-read" description:"Canned ACL for the published document"`

	// Feed metadata
	FeedTitle       string `long:"feed-title" env:"FEED_TITLE" default:"recent items collected by KryptonicLoser" description:"Feed title"`
	FeedHomePageURL string `long:"feed-home-page-url" env:"FEED_HOME_PAGE_URL" default:"https://www.thingiverse.com/KryptonicLoser/about" description:"Feed home page URL"`
	FeedBaseURL     string `long:"feed-base-url" env:"FEED_BASE_URL" default:"https://dyn.tedder.me/" description:"Public URL prefix of the destination key"`
	FeedComment     string `long:"feed-comment" env:"FEED_COMMENT" default:"items from recent collections of KryptonicLoser. Designed to get the Best-of-Week items." description:"Feed user_comment"`
	AuthorName      string `long:"author-name" env:"AUTHOR_NAME" default:"tedder" description:"Feed author name"`
	AuthorURL       string `long:"author-url" env:"AUTHOR_URL" default:"https://tedder.me/" description:"Feed author URL"`

	Debug bool `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load parses the process arguments and environment. A nil config with a nil
// error means help was printed.
func Load() (*Cfg, error) {
	return LoadArgs(os.Args[1:])
}

func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, &ConfigError{Field: "flags", Err: err}
	}

	cfg := &Cfg{
		APIBaseURL:       strings.TrimRight(raw.APIBaseURL, "/"),
		Account:          raw.Account,
		APISecret:        raw.APISecret,
		UserAgent:        raw.UserAgent,
		HTTPTimeout:      raw.HTTPTimeout,
		SecretsBackend:   raw.SecretsBackend,
		SecretsFile:      raw.SecretsFile,
		AWSRegion:        raw.AWSRegion,
		Ledger:           raw.Ledger,
		LedgerPath:       raw.LedgerPath,
		LedgerCreate:     raw.LedgerCreate,
		DBSecret:         raw.DBSecret,
		DBName:           raw.DBName,
		DBPort:           raw.DBPort,
		DBSSLMode:        raw.DBSSLMode,
		RedisAddr:        raw.RedisAddr,
		RedisPrefix:      raw.RedisPrefix,
		CollectionMaxAge: raw.CollectionMaxAge,
		ItemMaxAge:       raw.ItemMaxAge,
		NamePrefixes:     normalizePrefixes(raw.NamePrefixes),
		Sink:             raw.Sink,
		S3Bucket:         raw.S3Bucket,
		ObjectKey:        strings.TrimLeft(raw.ObjectKey, "/"),
		OutputDir:        raw.OutputDir,
		CacheControl:     raw.CacheControl,
		ACL:              raw.ACL,
		FeedTitle:        raw.FeedTitle,
		FeedHomePageURL:  raw.FeedHomePageURL,
		FeedBaseURL:      raw.FeedBaseURL,
		FeedComment:      raw.FeedComment,
		AuthorName:       raw.AuthorName,
		AuthorURL:        raw.AuthorURL,
		Debug:            raw.Debug,
		Version:          GetVersion(),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func normalizePrefixes(prefixes []string) []string {
	out := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func validate(cfg *Cfg) error {
	requiredFields := map[string]string{
		"account":      cfg.Account,
		"api-base-url": cfg.APIBaseURL,
		"api-secret":   cfg.APISecret,
		"key":          cfg.ObjectKey,
	}

	for fieldName, fieldValue := range requiredFields {
		if fieldValue == "" {
			return &ConfigError{Field: fieldName, Err: fmt.Errorf("%s is required", fieldName)}
		}
	}

	if cfg.CollectionMaxAge <= 0 {
		return &ConfigError{Field: "collection-max-age", Err: fmt.Errorf("must be positive, got %s", cfg.CollectionMaxAge)}
	}
	if cfg.ItemMaxAge <= 0 {
		return &ConfigError{Field: "item-max-age", Err: fmt.Errorf("must be positive, got %s", cfg.ItemMaxAge)}
	}
	if cfg.HTTPTimeout < 0 {
		return &ConfigError{Field: "http-timeout", Err: fmt.Errorf("must be non-negative, got %s", cfg.HTTPTimeout)}
	}
	if len(cfg.NamePrefixes) == 0 {
		return &ConfigError{Field: "prefix", Err: fmt.Errorf("at least one collection name prefix is required")}
	}

	switch {
	case cfg.Ledger == LedgerSQLite && cfg.LedgerPath == "":
		return &ConfigError{Field: "ledger-path", Err: fmt.Errorf("sqlite ledger needs a path")}
	case cfg.Ledger == LedgerPostgres && cfg.DBSecret == "":
		return &ConfigError{Field: "db-secret", Err: fmt.Errorf("postgres ledger needs a credentials secret")}
	case cfg.Ledger == LedgerRedis && cfg.RedisAddr == "":
		return &ConfigError{Field: "redis-addr", Err: fmt.Errorf("redis ledger needs an address")}
	}

	if cfg.Sink == SinkS3 && cfg.S3Bucket == "" {
		return &ConfigError{Field: "s3-bucket", Err: fmt.Errorf("s3 sink needs a bucket")}
	}
	if cfg.SecretsBackend == SecretsFile && cfg.SecretsFile == "" {
		return &ConfigError{Field: "secrets-file", Err: fmt.Errorf("file secrets backend needs a path")}
	}

	return nil
}
