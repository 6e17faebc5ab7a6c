// Package config loads chaincode process settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the chaincode process settings. When ServerAddress is set the
// chaincode runs as an external service and the peer connects to it.
type Config struct {
	LogSpec          string `envconfig:"CHAINCODE_LOG_SPEC" default:"info"`
	ServerAddress    string `envconfig:"CHAINCODE_SERVER_ADDRESS"`
	CCID             string `envconfig:"CHAINCODE_ID"`
	TLSDisabled      bool   `envconfig:"CHAINCODE_TLS_DISABLED" default:"true"`
	TLSKeyFile       string `envconfig:"CHAINCODE_TLS_KEY"`
	TLSCertFile      string `envconfig:"CHAINCODE_TLS_CERT"`
	ClientCACertFile string `envconfig:"CHAINCODE_CLIENT_CA_CERT"`
}

// Load reads the configuration from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read chaincode config from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if !c.ExternalService() {
		return nil
	}
	if c.CCID == "" {
		return errors.New("CHAINCODE_ID is required when CHAINCODE_SERVER_ADDRESS is set")
	}
	if !c.TLSDisabled && (c.TLSKeyFile == "" || c.TLSCertFile == "") {
		return errors.New("CHAINCODE_TLS_KEY and CHAINCODE_TLS_CERT are required when TLS is enabled")
	}
	return nil
}

// ExternalService reports whether the chaincode should run its own gRPC server
// instead of connecting out to the peer.
func (c Config) ExternalService() bool {
	return c.ServerAddress != ""
}

// TLSProperties reads the configured key material for the chaincode server.
func (c Config) TLSProperties() (shim.TLSProperties, error) {
	if c.TLSDisabled {
		return shim.TLSProperties{Disabled: true}, nil
	}
	key, err := os.ReadFile(c.TLSKeyFile)
	if err != nil {
		return shim.TLSProperties{}, fmt.Errorf("failed to read TLS key: %w", err)
	}
	cert, err := os.ReadFile(c.TLSCertFile)
	if err != nil {
		return shim.TLSProperties{}, fmt.Errorf("failed to read TLS cert: %w", err)
	}
	props := shim.TLSProperties{Key: key, Cert: cert}
	if c.ClientCACertFile != "" {
		ca, err := os.ReadFile(c.ClientCACertFile)
		if err != nil {
			return shim.TLSProperties{}, fmt.Errorf("failed to read client CA cert: %w", err)
		}
		props.ClientCACerts = ca
	}
	return props, nil
}
