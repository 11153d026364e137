package secrets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
)

var _ Store = (*AWSStore)(nil)

type secretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSStore reads secrets from AWS Secrets Manager.
type AWSStore struct {
	client secretsManagerAPI
}

func NewAWSStore(client secretsManagerAPI) *AWSStore {
	return &AWSStore{client: client}
}

func (s *AWSStore) GetSecret(ctx context.Context, name string) ([]byte, error) {
	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return nil, err
	}

	if out.SecretString != nil {
		slog.Debug("Secret retrieved", "name", name, "kind", "string")
		return []byte(*out.SecretString), nil
	}

	slog.Debug("Secret retrieved", "name", name, "kind", "binary")
	return out.SecretBinary, nil
}
