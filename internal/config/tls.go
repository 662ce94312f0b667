package config

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// CentralServerTLS builds the *tls.Config used for calls to central servers.
// Returns nil, nil when nothing is configured (system roots, no client cert).
func (c *Config) CentralServerTLS() (*tls.Config, error) {
	if c.CentralServerTLSCert == "" && c.CentralServerTLSKey == "" &&
		c.CentralServerTLSCACert == "" && c.CentralServerTLSServerName == "" {
		return nil, nil
	}

	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}

	if c.CentralServerTLSCert != "" || c.CentralServerTLSKey != "" {
		cert, err := tls.LoadX509KeyPair(c.CentralServerTLSCert, c.CentralServerTLSKey)
		if err != nil {
			return nil, fmt.Errorf("load central server client cert: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	if c.CentralServerTLSCACert != "" {
		caPEM, err := os.ReadFile(c.CentralServerTLSCACert)
		if err != nil {
			return nil, fmt.Errorf("read central server CA cert: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caPEM) {
			return nil, fmt.Errorf("failed to parse central server CA cert")
		}
		tlsConfig.RootCAs = pool
	}

	if c.CentralServerTLSServerName != "" {
		tlsConfig.ServerName = c.CentralServerTLSServerName
	}

	return tlsConfig, nil
}
