package aws_handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/aws/aws-sdk-go/service/secretsmanager/secretsmanageriface"
)

var ErrEmptySecret = errors.New("secret has no string value")

type SecretManager struct {
	svc secretsmanageriface.SecretsManagerAPI
}

func NewSecretManager(svc secretsmanageriface.SecretsManagerAPI) *SecretManager {
	return &SecretManager{svc: svc}
}

func (s *SecretManager) GetSecretValue(ctx context.Context, secretID string) (string, error) {
	input := &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	}

	result, err := s.svc.GetSecretValueWithContext(ctx, input)
	if err != nil {
		return "", fmt.Errorf("get secret %s: %w", secretID, err)
	}
	if result.SecretString == nil {
		return "", fmt.Errorf("get secret %s: %w", secretID, ErrEmptySecret)
	}
	return *result.SecretString, nil
}

// DatabasePassword reads the database password from a secret stored either
// as RDS-style JSON ({"password": "..."}) or as the bare password.
func (s *SecretManager) DatabasePassword(ctx context.Context, secretID string) (string, error) {
	value, err := s.GetSecretValue(ctx, secretID)
	if err != nil {
		return "", err
	}

	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "{") {
		var payload struct {
			Password string `json:"password"`
		}
		if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
			return "", fmt.Errorf("decode secret %s: %w", secretID, err)
		}
		if payload.Password == "" {
			return "", fmt.Errorf("secret %s: %w", secretID, ErrEmptySecret)
		}
		return payload.Password, nil
	}
	if trimmed == "" {
		return "", fmt.Errorf("secret %s: %w", secretID, ErrEmptySecret)
	}
	return value, nil
}
