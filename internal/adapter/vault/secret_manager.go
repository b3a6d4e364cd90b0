package vault

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/vault/api"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/pkg/config"
)

// ErrSecretNotFound is returned when the path holds no connection string.
var ErrSecretNotFound = errors.New("secret not found")

const secretPrefix = "secret/data/posto/"

type SecretManager struct {
	client *api.Client
	log    *zap.Logger
}

func NewSecretManager(cfg config.VaultConfig, log *zap.Logger) (*SecretManager, error) {
	vcfg := api.DefaultConfig()
	vcfg.Address = cfg.Address

	client, err := api.NewClient(vcfg)
	if err != nil {
		return nil, err
	}

	client.SetToken(cfg.Token)

	return &SecretManager{client: client, log: log}, nil
}

// ConnectionString reads the connection_string field of a KV v2 secret
// under secret/data/posto/<name>.
func (sm *SecretManager) ConnectionString(ctx context.Context, name string) (string, error) {
	secret, err := sm.client.Logical().ReadWithContext(ctx, secretPrefix+name)
	if err != nil {
		return "", fmt.Errorf("failed to read secret %s: %w", name, err)
	}
	return connectionString(secret)
}

// ResolveURLs overrides the connection URLs in cfg with the ones kept in
// Vault. Missing secrets leave the configured URL in place.
func (sm *SecretManager) ResolveURLs(ctx context.Context, cfg *config.Config) error {
	targets := map[string]*string{
		"database": &cfg.Database.URL,
		"redis":    &cfg.Redis.URL,
		"nats":     &cfg.NATS.URL,
		"rabbitmq": &cfg.RabbitMQ.URL,
	}
	for name, target := range targets {
		url, err := sm.ConnectionString(ctx, name)
		if errors.Is(err, ErrSecretNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		*target = url
		sm.log.Info("Connection URL resolved from Vault", zap.String("secret", name))
	}
	return nil
}

func connectionString(secret *api.Secret) (string, error) {
	if secret == nil || secret.Data == nil {
		return "", ErrSecretNotFound
	}
	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return "", ErrSecretNotFound
	}
	url, ok := data["connection_string"].(string)
	if !ok || url == "" {
		return "", ErrSecretNotFound
	}
	return url, nil
}
