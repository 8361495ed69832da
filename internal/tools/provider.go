package tools

import (
	"crypto/tls"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/edvin/rediscloud-tools/internal/config"
	"github.com/edvin/rediscloud-tools/internal/rediscloud"
)

// Instance holds the optional defaults sourced from a Redis instance record:
// which subscription and database the diagnostics tools should target when a
// call does not name one explicitly. Set once at construction, never mutated.
type Instance struct {
	SubscriptionID   *int   `yaml:"subscription_id" json:"subscription_id"`
	DatabaseID       *int   `yaml:"database_id" json:"database_id"`
	SubscriptionType string `yaml:"subscription_type" json:"subscription_type" validate:"omitempty,oneof=pro essentials fixed"`
	DatabaseName     string `yaml:"database_name" json:"database_name"`
}

// Provider exposes Redis Cloud diagnostics operations as named tools.
// The API client is created lazily on first use and shared across calls.
type Provider struct {
	cfg       *config.Config
	instance  Instance
	tlsConfig *tls.Config
	logger    zerolog.Logger

	mu     sync.Mutex
	client *rediscloud.Client
}

// New creates a provider from validated config and an instance record.
// The error covers an unreadable or malformed custom CA bundle.
func New(cfg *config.Config, instance Instance, logger zerolog.Logger) (*Provider, error) {
	tlsConfig, err := cfg.TLS()
	if err != nil {
		return nil, err
	}

	return &Provider{
		cfg:       cfg,
		instance:  instance,
		tlsConfig: tlsConfig,
		logger:    logger.With().Str("component", "tool-provider").Logger(),
	}, nil
}

// Client returns the shared API client, creating it on first call.
// Safe for concurrent use; every caller gets the same handle.
func (p *Provider) Client() *rediscloud.Client {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client == nil {
		p.client = rediscloud.NewClient(
			p.cfg.BaseURL, p.cfg.APIKey, p.cfg.APISecretKey, p.cfg.Timeout, p.tlsConfig, p.logger)
		p.logger.Debug().Str("base_url", p.cfg.BaseURL).Msg("created redis cloud client")
	}
	return p.client
}

// Close releases the underlying transport and clears the client handle.
// Best effort: a provider can keep serving, a later call recreates the client.
func (p *Provider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		p.client.Close()
		p.client = nil
	}
}

// subscriptionID returns the configured subscription id or a "not configured"
// error whose message callers and tests match on.
func (p *Provider) subscriptionID() (int, error) {
	if p.instance.SubscriptionID == nil {
		return 0, fmt.Errorf("subscription ID is not configured")
	}
	return *p.instance.SubscriptionID, nil
}

// NotFoundError is returned when a lookup exhausted both plan families.
type NotFoundError struct {
	SubscriptionID int
	DatabaseID     *int
	DatabaseName   string
}

func (e *NotFoundError) Error() string {
	switch {
	case e.DatabaseID != nil:
		return fmt.Sprintf("database %d not found in subscription %d (checked pro and essentials plans)",
			*e.DatabaseID, e.SubscriptionID)
	case e.DatabaseName != "":
		return fmt.Sprintf("database named %q not found in subscription %d (checked pro and essentials plans)",
			e.DatabaseName, e.SubscriptionID)
	default:
		return fmt.Sprintf("subscription %d not found (checked pro and essentials plans)", e.SubscriptionID)
	}
}
