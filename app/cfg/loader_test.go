package cfg

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}

	version := GetVersion()
	if version != "dev" && version != "unknown" {
		// This is fine, version could be set at build time
		t.Logf("Version: %s", version)
	}
}

func TestLoadArgs_Defaults(t *testing.T) {
	cfg, err := LoadArgs([]string{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.CollectionMaxAge != 14*24*time.Hour {
		t.Errorf("Expected collection max age of 14 days, got %s", cfg.CollectionMaxAge)
	}
	if cfg.ItemMaxAge != 7*24*time.Hour {
		t.Errorf("Expected item max age of 7 days, got %s", cfg.ItemMaxAge)
	}
	if !reflect.DeepEqual(cfg.NamePrefixes, []string{"best of", "bow"}) {
		t.Errorf("Expected default prefixes [best of bow], got %v", cfg.NamePrefixes)
	}
	if cfg.Ledger != LedgerSQLite {
		t.Errorf("Expected sqlite ledger by default, got %s", cfg.Ledger)
	}
	if cfg.Sink != SinkS3 {
		t.Errorf("Expected s3 sink by default, got %s", cfg.Sink)
	}
	if cfg.HTTPTimeout != 0 {
		t.Errorf("Expected no request timeout by default, got %s", cfg.HTTPTimeout)
	}
	if cfg.FeedURL() != "https://dyn.tedder.me/rss/thingiverse_kryptonicloser_recent_collected.json" {
		t.Errorf("Unexpected feed URL: %s", cfg.FeedURL())
	}
	if cfg.Version == "" {
		t.Error("Expected version to be populated")
	}
}

func TestLoadArgs_Overrides(t *testing.T) {
	cfg, err := LoadArgs([]string{
		"--ledger", "postgres",
		"--collection-max-age", "48h",
		"--item-max-age", "24h",
		"--prefix", "Staff Picks",
		"--prefix", " ",
		"--sink", "file",
		"--output-dir", "/tmp/out",
		"--key", "/feeds/bow.json",
		"--api-base-url", "http://localhost:9999/",
		"--debug",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.Ledger != LedgerPostgres {
		t.Errorf("Expected postgres ledger, got %s", cfg.Ledger)
	}
	if cfg.CollectionMaxAge != 48*time.Hour || cfg.ItemMaxAge != 24*time.Hour {
		t.Errorf("Unexpected thresholds: %s / %s", cfg.CollectionMaxAge, cfg.ItemMaxAge)
	}
	if !reflect.DeepEqual(cfg.NamePrefixes, []string{"Staff Picks"}) {
		t.Errorf("Expected blank prefixes to be dropped, got %v", cfg.NamePrefixes)
	}
	if cfg.ObjectKey != "feeds/bow.json" {
		t.Errorf("Expected leading slash to be trimmed from key, got %s", cfg.ObjectKey)
	}
	if cfg.APIBaseURL != "http://localhost:9999" {
		t.Errorf("Expected trailing slash to be trimmed from base URL, got %s", cfg.APIBaseURL)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
}

func TestLoadArgs_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		field string
	}{
		{"zero collection age", []string{"--collection-max-age", "0s"}, "collection-max-age"},
		{"negative item age", []string{"--item-max-age=-1h"}, "item-max-age"},
		{"empty account", []string{"--account="}, "account"},
		{"blank prefixes only", []string{"--prefix", " "}, "prefix"},
		{"s3 without bucket", []string{"--s3-bucket="}, "s3-bucket"},
		{"unknown ledger", []string{"--ledger", "mysql"}, "flags"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadArgs(tt.args)
			if err == nil {
				t.Fatalf("Expected error, got config %+v", cfg)
			}

			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Expected *ConfigError, got %T: %v", err, err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Expected field %q, got %q", tt.field, cfgErr.Field)
			}
		})
	}
}
