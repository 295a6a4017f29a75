package aws_handler

import (
	"context"

	"inventory/src/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
)

type AWSHandler struct {
	SecretManager *SecretManager
}

func NewAWSHandler(cfg config.AWSConfig) (*AWSHandler, error) {
	awsCfg := aws.NewConfig()
	if cfg.Region != "" {
		awsCfg = awsCfg.WithRegion(cfg.Region)
	}
	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            *awsCfg,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, err
	}

	return &AWSHandler{
		SecretManager: NewSecretManager(secretsmanager.New(sess)),
	}, nil
}

// ResolveDatabasePassword replaces the configured SQL password with the one
// held in Secrets Manager. It does nothing when no secret id is configured.
func ResolveDatabasePassword(ctx context.Context, cfg *config.Config, sm *SecretManager) error {
	if cfg.AWS.DBPasswordSecretID == "" {
		return nil
	}
	password, err := sm.DatabasePassword(ctx, cfg.AWS.DBPasswordSecretID)
	if err != nil {
		return err
	}
	cfg.Databases.SQL.Password = password
	return nil
}
