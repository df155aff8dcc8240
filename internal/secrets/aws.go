package secrets

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// ErrEmptySecret is returned when a secret has no string payload.
var ErrEmptySecret = errors.New("secret has no string value")

// SecretsManagerAPI is the subset of the Secrets Manager client used here.
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsManagerFetcher reads secrets from AWS Secrets Manager.
type SecretsManagerFetcher struct {
	client SecretsManagerAPI
}

// NewSecretsManagerFetcher creates a Fetcher from an AWS config.
func NewSecretsManagerFetcher(cfg aws.Config) *SecretsManagerFetcher {
	return &SecretsManagerFetcher{client: secretsmanager.NewFromConfig(cfg)}
}

// NewFetcherWithClient wraps an existing client.
func NewFetcherWithClient(client SecretsManagerAPI) *SecretsManagerFetcher {
	return &SecretsManagerFetcher{client: client}
}

// FetchSecret returns the SecretString of the named secret.
func (f *SecretsManagerFetcher) FetchSecret(ctx context.Context, name string) (string, error) {
	out, err := f.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		return "", fmt.Errorf("GetSecretValue %s: %w", name, err)
	}
	if out.SecretString == nil || *out.SecretString == "" {
		return "", ErrEmptySecret
	}
	return *out.SecretString, nil
}
