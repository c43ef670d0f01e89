package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
)

// ErrSecretNotFound is returned when a provider has no value for a key.
var ErrSecretNotFound = errors.New("secret not found")

// SecretProvider resolves named secrets such as token signing keys.
type SecretProvider interface {
	Get(ctx context.Context, key string) (string, error)
}

// NewSecretProvider builds the provider selected by cfg.Source.
func NewSecretProvider(cfg SecretsConfig) (SecretProvider, error) {
	switch cfg.Source {
	case "", SecretSourceEnv:
		return EnvSecretProvider{}, nil
	case SecretSourceAzureKeyVault:
		return NewKeyVaultSecretProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown CONFIG_SOURCE %q", cfg.Source)
	}
}

// EnvSecretProvider reads secrets from the process environment.
type EnvSecretProvider struct{}

func (EnvSecretProvider) Get(_ context.Context, key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%w: %s", ErrSecretNotFound, key)
	}
	return val, nil
}

// keyVaultGetter is the slice of azsecrets.Client used here.
type keyVaultGetter interface {
	GetSecret(ctx context.Context, name string, version string, options *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error)
}

// KeyVaultSecretProvider reads secrets from Azure Key Vault and caches them.
// Key Vault names cannot contain underscores, so AUTH_ACCESS_SECRET is stored
// as AUTH-ACCESS-SECRET.
type KeyVaultSecretProvider struct {
	client keyVaultGetter
	ttl    time.Duration

	mu    sync.RWMutex
	cache map[string]cachedSecret
}

type cachedSecret struct {
	value     string
	expiresAt time.Time
}

// NewKeyVaultSecretProvider authenticates with the default Azure credential chain.
func NewKeyVaultSecretProvider(cfg SecretsConfig) (*KeyVaultSecretProvider, error) {
	if cfg.KeyVaultURL == "" {
		return nil, errors.New("AZURE_KEYVAULT_URL is required for the azure-keyvault source")
	}
	credential, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("azure credential: %w", err)
	}
	client, err := azsecrets.NewClient(cfg.KeyVaultURL, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("key vault client: %w", err)
	}
	return newKeyVaultSecretProvider(client, time.Duration(cfg.CacheTTLSeconds)*time.Second), nil
}

func newKeyVaultSecretProvider(client keyVaultGetter, ttl time.Duration) *KeyVaultSecretProvider {
	return &KeyVaultSecretProvider{
		client: client,
		ttl:    ttl,
		cache:  make(map[string]cachedSecret),
	}
}

func (p *KeyVaultSecretProvider) Get(ctx context.Context, key string) (string, error) {
	p.mu.RLock()
	entry, ok := p.cache[key]
	p.mu.RUnlock()
	if ok && time.Now().Before(entry.expiresAt) {
		return entry.value, nil
	}

	resp, err := p.client.GetSecret(ctx, vaultSecretName(key), "", nil)
	if err != nil {
		return "", fmt.Errorf("get secret %s: %w", key, err)
	}
	if resp.Value == nil || *resp.Value == "" {
		return "", fmt.Errorf("%w: %s", ErrSecretNotFound, key)
	}

	p.mu.Lock()
	p.cache[key] = cachedSecret{value: *resp.Value, expiresAt: time.Now().Add(p.ttl)}
	p.mu.Unlock()
	return *resp.Value, nil
}

func vaultSecretName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}
