package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	ServiceName       string
	HTTPListenAddr    string
	MetricsListenAddr string
	LogLevel          string
	// RegistryFile is the YAML file holding central servers, users and alert types.
	RegistryFile string
	// EndpointBase is the path prefix the provisioning endpoints are mounted under.
	EndpointBase string
	// ConnectTimeout bounds the TCP connect phase of calls to central servers.
	// No read timeout is applied.
	ConnectTimeout time.Duration
	AlertLogDir    string

	CentralServerTLSCert       string
	CentralServerTLSKey        string
	CentralServerTLSCACert     string
	CentralServerTLSServerName string
}

func Load() (*Config, error) {
	timeout, err := time.ParseDuration(getEnv("CONNECT_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("parse CONNECT_TIMEOUT: %w", err)
	}

	cfg := &Config{
		ServiceName:       getEnv("SERVICE_NAME", "provisioning-gateway"),
		HTTPListenAddr:    getEnv("HTTP_LISTEN_ADDR", ":8080"),
		MetricsListenAddr: getEnv("METRICS_LISTEN_ADDR", ""),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		RegistryFile:      getEnv("REGISTRY_FILE", ""),
		EndpointBase:      strings.TrimRight(getEnv("ENDPOINT_BASE", "/api/v1/provisioning"), "/"),
		ConnectTimeout:    timeout,
		AlertLogDir:       getEnv("ALERT_LOG_DIR", ""),

		CentralServerTLSCert:       getEnv("CENTRAL_SERVER_TLS_CERT", ""),
		CentralServerTLSKey:        getEnv("CENTRAL_SERVER_TLS_KEY", ""),
		CentralServerTLSCACert:     getEnv("CENTRAL_SERVER_TLS_CA_CERT", ""),
		CentralServerTLSServerName: getEnv("CENTRAL_SERVER_TLS_SERVER_NAME", ""),
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	var missing []string
	if c.HTTPListenAddr == "" {
		missing = append(missing, "HTTP_LISTEN_ADDR")
	}
	if c.RegistryFile == "" {
		missing = append(missing, "REGISTRY_FILE")
	}
	if c.AlertLogDir == "" {
		missing = append(missing, "ALERT_LOG_DIR")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}

	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("CONNECT_TIMEOUT must be positive")
	}
	if !strings.HasPrefix(c.EndpointBase, "/") {
		return fmt.Errorf("ENDPOINT_BASE must start with /")
	}
	if (c.CentralServerTLSCert == "") != (c.CentralServerTLSKey == "") {
		return fmt.Errorf("CENTRAL_SERVER_TLS_CERT and CENTRAL_SERVER_TLS_KEY must both be set")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
