package config

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// TLS builds a *tls.Config for the API client from the CA bundle field.
// Returns nil, nil when no custom CA is configured (system roots apply).
// A custom bundle is needed when outbound HTTPS passes through an
// intercepting corporate proxy.
func (c *Config) TLS() (*tls.Config, error) {
	if c.CACert == "" {
		return nil, nil
	}

	caPEM, err := os.ReadFile(c.CACert)
	if err != nil {
		return nil, fmt.Errorf("read CA cert: %w", err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caPEM) {
		return nil, fmt.Errorf("failed to parse CA cert %s", c.CACert)
	}

	return &tls.Config{RootCAs: pool}, nil
}
