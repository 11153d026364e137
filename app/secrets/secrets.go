package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lysyi3m/bow-comb/app/cfg"
)

// Store returns a secret's payload, SecretString or SecretBinary alike.
type Store interface {
	GetSecret(ctx context.Context, name string) ([]byte, error)
}

// ErrNotFound is returned by stores that know the secret does not exist.
var ErrNotFound = errors.New("secret not found")

type apiSecret struct {
	AuthToken string `json:"auth_token"`
}

// AuthToken reads the API bearer token from the JSON secret name.
func AuthToken(ctx context.Context, store Store, name string) (string, error) {
	raw, err := store.GetSecret(ctx, name)
	if err != nil {
		return "", fmt.Errorf("failed to get secret %s: %w", name, err)
	}

	var secret apiSecret
	if err := json.Unmarshal(raw, &secret); err != nil {
		return "", &cfg.ConfigError{Field: name, Err: fmt.Errorf("secret is not a JSON object: %w", err)}
	}
	if secret.AuthToken == "" {
		return "", &cfg.ConfigError{Field: name, Err: errors.New("auth_token missing from secret")}
	}

	return secret.AuthToken, nil
}

// DBCredentials is the JSON layout of the ledger database secret.
type DBCredentials struct {
	Host     string `json:"host"`
	Username string `json:"username"`
	Password string `json:"password"`
	Port     any    `json:"port"`
	DBName   string `json:"dbname"`
}

// PortOr returns the secret's port, or fallback when it carries none.
func (c DBCredentials) PortOr(fallback string) string {
	switch p := c.Port.(type) {
	case nil:
		return fallback
	case string:
		if p == "" {
			return fallback
		}
		return p
	default:
		return fmt.Sprint(p)
	}
}

func LoadDBCredentials(ctx context.Context, store Store, name string) (DBCredentials, error) {
	raw, err := store.GetSecret(ctx, name)
	if err != nil {
		return DBCredentials{}, fmt.Errorf("failed to get secret %s: %w", name, err)
	}

	var creds DBCredentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		return DBCredentials{}, &cfg.ConfigError{Field: name, Err: fmt.Errorf("secret is not a JSON object: %w", err)}
	}

	required := map[string]string{
		"host":     creds.Host,
		"username": creds.Username,
		"password": creds.Password,
	}
	for field, value := range required {
		if value == "" {
			return DBCredentials{}, &cfg.ConfigError{Field: name, Err: fmt.Errorf("%s missing from secret", field)}
		}
	}

	return creds, nil
}
