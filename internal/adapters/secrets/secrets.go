// Package secrets resolves the catalog client secret from AWS Secrets Manager
package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	perr "glossarysync/internal/platform/errors"
	"glossarysync/internal/platform/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/smithy-go"
)

// AWS error codes we classify
const (
	codeResourceNotFound = "ResourceNotFoundException"
	codeAccessDenied     = "AccessDeniedException"
)

// ManagerAPI is the slice of the Secrets Manager client the resolver needs
type ManagerAPI interface {
	GetSecretValue(
		ctx context.Context,
		params *secretsmanager.GetSecretValueInput,
		optFns ...func(*secretsmanager.Options),
	) (*secretsmanager.GetSecretValueOutput, error)
}

// Resolver turns a secret reference into its value
// values are never logged; only the secret id is
type Resolver struct {
	api ManagerAPI
	log logger.Logger
}

// New wraps an existing api
func New(api ManagerAPI) *Resolver {
	return &Resolver{api: api, log: *logger.Named("secrets")}
}

// NewFromEnv loads the default AWS chain (AWS_REGION, AWS_PROFILE, AWS_ENDPOINT_URL...)
func NewFromEnv(ctx context.Context) (*Resolver, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "load aws config")
	}
	return New(secretsmanager.NewFromConfig(cfg)), nil
}

// ParseRef splits "name-or-arn#field" into its id and optional json field
// arns contain colons but never '#', so the last '#' is the separator
func ParseRef(ref string) (id, field string) {
	ref = strings.TrimSpace(ref)
	if i := strings.LastIndexByte(ref, '#'); i >= 0 {
		return ref[:i], ref[i+1:]
	}
	return ref, ""
}

// Resolve fetches the secret named by ref; with a field the secret must be a json object
func (r *Resolver) Resolve(ctx context.Context, ref string) (string, error) {
	id, field := ParseRef(ref)
	if id == "" {
		return "", perr.InvalidArgf("empty secret reference")
	}

	out, err := r.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: aws.String(id)})
	if err != nil {
		return "", classify(err, id)
	}

	var raw string
	switch {
	case out.SecretString != nil:
		raw = *out.SecretString
	case len(out.SecretBinary) > 0:
		raw = string(out.SecretBinary)
	}
	if raw == "" {
		return "", perr.WithField(perr.Validationf("secret %s is empty", id), id)
	}
	r.log.Debug().Str("secret_id", id).Bool("field", field != "").Msg("resolved secret")

	if field == "" {
		return raw, nil
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return "", perr.WithField(perr.Wrapf(err, perr.ErrorCodeJSON, "secret %s is not a json object", id), id)
	}
	v, ok := obj[field].(string)
	if !ok || v == "" {
		return "", perr.WithField(perr.Validationf("secret %s has no string field %q", id, field), field)
	}
	return v, nil
}

func classify(err error, id string) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case codeResourceNotFound:
			return perr.WithField(perr.Wrapf(err, perr.ErrorCodeNotFound, "secret %s not found", id), id)
		case codeAccessDenied:
			return perr.WithField(perr.Wrapf(err, perr.ErrorCodeForbidden, "access denied to secret %s", id), id)
		}
	}
	return perr.WithField(perr.Wrapf(err, perr.ErrorCodeUnavailable, "get secret %s", id), id)
}
