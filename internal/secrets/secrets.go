// Package secrets resolves password references stored in AWS Secrets Manager.
//
// A CLUSTER.db_password of the form "secretsmanager:<secret-id>" is replaced
// by the secret's value before connecting. Literal passwords are returned
// untouched and never reach AWS.
package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/smithy-go"

	"github.com/vvka-141/dwhload/pkg/dwhload"
)

// RefPrefix marks a password value as a Secrets Manager reference.
const RefPrefix = "secretsmanager:"

// AWS error codes returned by GetSecretValue.
const (
	ResourceNotFoundException = "ResourceNotFoundException"
	AccessDeniedException     = "AccessDeniedException"
)

var (
	ErrSecretNotFound = errors.New("secret not found")
	ErrSecretEmpty    = errors.New("secret value is empty")
	ErrAccessDenied   = errors.New("access denied to secret")
)

// ManagerAPI is the subset of the Secrets Manager client the resolver uses.
type ManagerAPI interface {
	GetSecretValue(
		ctx context.Context,
		params *secretsmanager.GetSecretValueInput,
		optFns ...func(*secretsmanager.Options),
	) (*secretsmanager.GetSecretValueOutput, error)
}

// IsRef reports whether value is a Secrets Manager reference.
func IsRef(value string) bool {
	return strings.HasPrefix(value, RefPrefix)
}

// Resolver looks up referenced secrets.
type Resolver struct {
	api ManagerAPI
}

// NewResolver wraps an existing client.
//
// Panics if api is nil.
func NewResolver(api ManagerAPI) *Resolver {
	if api == nil {
		panic("secrets manager api cannot be nil")
	}
	return &Resolver{api: api}
}

// NewResolverFromConfig builds a client from the default AWS credential chain.
func NewResolverFromConfig(ctx context.Context, region string) (*Resolver, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewResolver(secretsmanager.NewFromConfig(cfg)), nil
}

// Resolve returns value unchanged unless it is a reference, in which case
// the referenced secret is fetched. Errors wrap dwhload.ErrConfig and never
// include the secret value.
func (r *Resolver) Resolve(ctx context.Context, value string) (string, error) {
	if !IsRef(value) {
		return value, nil
	}

	id := strings.TrimSpace(strings.TrimPrefix(value, RefPrefix))
	if id == "" {
		return "", fmt.Errorf("%w: empty secret id in %q", dwhload.ErrConfig, value)
	}

	out, err := r.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(id),
	})
	if err != nil {
		return "", fmt.Errorf("%w: secret %s: %w", dwhload.ErrConfig, id, classify(err))
	}

	raw := aws.ToString(out.SecretString)
	if raw == "" && len(out.SecretBinary) > 0 {
		raw = string(out.SecretBinary)
	}
	password := extractPassword(raw)
	if password == "" {
		return "", fmt.Errorf("%w: secret %s: %w", dwhload.ErrConfig, id, ErrSecretEmpty)
	}
	return password, nil
}

// ResolveConfig replaces a referenced CLUSTER.db_password in place.
func (r *Resolver) ResolveConfig(ctx context.Context, cfg *dwhload.Config) error {
	password, err := r.Resolve(ctx, cfg.Cluster.DBPassword)
	if err != nil {
		return err
	}
	cfg.Cluster.DBPassword = password
	return nil
}

func classify(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case ResourceNotFoundException:
			return ErrSecretNotFound
		case AccessDeniedException:
			return ErrAccessDenied
		}
		return fmt.Errorf("%s: %s", apiErr.ErrorCode(), apiErr.ErrorMessage())
	}
	return err
}

// extractPassword unwraps managed database secrets, which are JSON
// documents with username, password, host and port keys.
func extractPassword(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return raw
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(trimmed), &doc); err != nil {
		return raw
	}
	if pw, ok := doc["password"].(string); ok {
		return pw
	}
	return raw
}
