package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsulConfig(t *testing.T) {
	config := ConsulConfig{
		Address:  "consul.example.com:8500",
		Username: "consul_user",
		Password: "consul_pass",
		Token:    "consul_token",
	}

	assert.Equal(t, "consul.example.com:8500", config.Address)
	assert.Equal(t, "consul_user", config.Username)
	assert.Equal(t, "consul_pass", config.Password)
	assert.Equal(t, "consul_token", config.Token)
}

func TestNATsConfig(t *testing.T) {
	config := NATsConfig{
		URL:      "nats://nats.example.com:4222",
		Username: "nats_user",
		Password: "nats_pass",
	}

	assert.Equal(t, "nats://nats.example.com:4222", config.URL)
	assert.Equal(t, "nats_user", config.Username)
	assert.Equal(t, "nats_pass", config.Password)
}

func TestConfig_ApplyDefaults(t *testing.T) {
	config := &Config{}
	applyDefaults(config)

	assert.Equal(t, Development, config.Environment)
	assert.Equal(t, defaultNetwork, config.Network)
	assert.Equal(t, defaultNetworkHRP, config.NetworkHRP)
	assert.Equal(t, defaultKeystoreBackend, config.KeystoreBackend)
	assert.Equal(t, defaultKeystorePath, config.KeystorePath)
	assert.Equal(t, defaultDBPath, config.DBPath)
	assert.Equal(t, defaultHistoryPageSize, config.HistoryPageSize)
	assert.Equal(t, defaultPollIntervalMs, config.PollIntervalMs)
}

func TestConfig_ApplyDefaults_WithExistingValues(t *testing.T) {
	config := &Config{
		Environment: "production",
		Network:     "stokenet",
		NetworkHRP:  "tdx",
		DBPath:      "/custom/path",
	}
	applyDefaults(config)

	// Should not override existing values
	assert.Equal(t, "production", config.Environment)
	assert.Equal(t, "stokenet", config.Network)
	assert.Equal(t, "tdx", config.NetworkHRP)
	assert.Equal(t, "/custom/path", config.DBPath)
}

func TestValidateEnvironment(t *testing.T) {
	assert.NoError(t, validateEnvironment(Production))
	assert.NoError(t, validateEnvironment(Development))
	assert.Error(t, validateEnvironment("staging"))
	assert.Error(t, validateEnvironment(""))
}

func TestSetEnvConfigPath(t *testing.T) {
	t.Cleanup(func() { os.Unsetenv(EnvConfigFile) })

	SetEnvConfigPath("/tmp/custom-config.yaml")
	assert.Equal(t, "/tmp/custom-config.yaml", os.Getenv(EnvConfigFile))

	// empty path leaves the variable untouched
	SetEnvConfigPath("")
	assert.Equal(t, "/tmp/custom-config.yaml", os.Getenv(EnvConfigFile))
}

func TestGetConfig_AfterSet(t *testing.T) {
	cfg := &Config{Environment: Development, Network: "localnet"}
	setConfig(cfg)

	require.NotNil(t, GetConfig())
	assert.Equal(t, "localnet", Network())

	Update(func(c *Config) { c.Network = "mainnet" })
	assert.Equal(t, "mainnet", Network())
}
