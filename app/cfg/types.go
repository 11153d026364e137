package cfg

import "time"

const (
	LedgerPostgres = "postgres"
	LedgerSQLite   = "sqlite"
	LedgerRedis    = "redis"

	SecretsAWS  = "aws"
	SecretsFile = "file"

	SinkS3   = "s3"
	SinkFile = "file"
)

type Cfg struct {
	// Upstream
	APIBaseURL  string
	Account     string
	APISecret   string
	UserAgent   string
	HTTPTimeout time.Duration

	// Secrets
	SecretsBackend string
	SecretsFile    string
	AWSRegion      string

	// Ledger
	Ledger       string
	LedgerPath   string
	LedgerCreate bool
	DBSecret     string
	DBName       string
	DBPort       string
	DBSSLMode    string
	RedisAddr    string
	RedisPrefix  string

	// Policy
	CollectionMaxAge time.Duration
	ItemMaxAge       time.Duration
	NamePrefixes     []string

	// Output
	Sink         string
	S3Bucket     string
	ObjectKey    string
	OutputDir    string
	CacheControl string
	ACL          string

	// Feed metadata
	FeedTitle       string
	FeedHomePageURL string
	FeedBaseURL     string
	FeedComment     string
	AuthorName      string
	AuthorURL       string

	Debug   bool
	Version string
}

// FeedURL is where the published document will be reachable.
func (c *Cfg) FeedURL() string {
	return c.FeedBaseURL + c.ObjectKey
}
