package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var _ Store = (*FileStore)(nil)

// FileStore serves secrets from a YAML file for local runs. Each top-level key
// is a secret name; a string value is returned verbatim, a mapping is
// returned as its JSON encoding.
//
//	thingiverse_api:
//	  auth_token: abc123
//	serverless_db: '{"host": "localhost", "username": "bow", "password": "bow"}'
type FileStore struct {
	secrets map[string]any
}

func NewFileStore(path string) (*FileStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secrets file: %w", err)
	}

	secrets := make(map[string]any)
	if err := yaml.Unmarshal(data, &secrets); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &FileStore{secrets: secrets}, nil
}

func (s *FileStore) GetSecret(ctx context.Context, name string) ([]byte, error) {
	value, ok := s.secrets[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}

	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case map[string]any:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode secret %s: %w", name, err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("secret %s has unsupported type %T", name, value)
	}
}
