package secrets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"

	"github.com/lysyi3m/bow-comb/app/cfg"
)

type mockSecretsManager struct {
	values map[string]*secretsmanager.GetSecretValueOutput
	calls  []string
}

func (m *mockSecretsManager) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	name := aws.ToString(params.SecretId)
	m.calls = append(m.calls, name)

	out, ok := m.values[name]
	if !ok {
		return nil, &types.ResourceNotFoundException{Message: aws.String("not found")}
	}
	return out, nil
}

func writeSecretsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "secrets.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write secrets file: %v", err)
	}
	return path
}

func TestAWSStore_StringAndBinary(t *testing.T) {
	client := &mockSecretsManager{values: map[string]*secretsmanager.GetSecretValueOutput{
		"thingiverse_api": {SecretString: aws.String(`{"auth_token": "abc123"}`)},
		"binary":          {SecretBinary: []byte(`{"auth_token": "from-binary"}`)},
	}}
	store := NewAWSStore(client)
	ctx := context.Background()

	token, err := AuthToken(ctx, store, "thingiverse_api")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if token != "abc123" {
		t.Errorf("Expected token 'abc123', got %q", token)
	}

	token, err = AuthToken(ctx, store, "binary")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if token != "from-binary" {
		t.Errorf("Expected token 'from-binary', got %q", token)
	}

	_, err = store.GetSecret(ctx, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestAuthToken_Missing(t *testing.T) {
	tests := []struct {
		name   string
		secret string
	}{
		{"no auth_token", `{"other": "value"}`},
		{"empty auth_token", `{"auth_token": ""}`},
		{"not json", `auth_token=abc`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewAWSStore(&mockSecretsManager{values: map[string]*secretsmanager.GetSecretValueOutput{
				"thingiverse_api": {SecretString: aws.String(tt.secret)},
			}})

			_, err := AuthToken(context.Background(), store, "thingiverse_api")
			var cfgErr *cfg.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Expected *cfg.ConfigError, got %T: %v", err, err)
			}
		})
	}
}

func TestFileStore(t *testing.T) {
	path := writeSecretsFile(t, `
thingiverse_api:
  auth_token: abc123
serverless_db: '{"host": "db.local", "username": "bow", "password": "pw", "port": 6543}'
broken:
  - not
  - a map
`)

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	ctx := context.Background()

	token, err := AuthToken(ctx, store, "thingiverse_api")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if token != "abc123" {
		t.Errorf("Expected token 'abc123', got %q", token)
	}

	creds, err := LoadDBCredentials(ctx, store, "serverless_db")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if creds.Host != "db.local" || creds.Username != "bow" || creds.Password != "pw" {
		t.Errorf("Unexpected credentials: %+v", creds)
	}
	if creds.PortOr("5432") != "6543" {
		t.Errorf("Expected port 6543, got %s", creds.PortOr("5432"))
	}

	if _, err := store.GetSecret(ctx, "broken"); err == nil {
		t.Error("Expected error for list-valued secret")
	}
	if _, err := store.GetSecret(ctx, "absent"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestLoadDBCredentials_MissingFields(t *testing.T) {
	store := NewAWSStore(&mockSecretsManager{values: map[string]*secretsmanager.GetSecretValueOutput{
		"db": {SecretString: aws.String(`{"host": "db.local", "username": "bow"}`)},
	}})

	_, err := LoadDBCredentials(context.Background(), store, "db")
	var cfgErr *cfg.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected *cfg.ConfigError, got %T: %v", err, err)
	}

	creds := DBCredentials{}
	if creds.PortOr("5432") != "5432" {
		t.Errorf("Expected fallback port, got %s", creds.PortOr("5432"))
	}
}
