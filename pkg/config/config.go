package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	// Environment constants
	Production  = "production"
	Development = "development"

	defaultNetwork         = "mainnet"
	defaultNetworkHRP      = "rdx"
	defaultKeystorePath    = "keystore.json"
	defaultKeystoreBackend = "file"
	defaultDBPath          = "."
	defaultHistoryPageSize = 25
	defaultPollIntervalMs  = 1000

	EnvConfigFile = "RADIX_CONFIG_FILE"
)

type Config struct {
	Environment string `mapstructure:"environment"`

	Network    string   `mapstructure:"network"`
	NetworkHRP string   `mapstructure:"network_hrp"`
	NetworkID  int      `mapstructure:"network_id"`
	Nodes      []string `mapstructure:"nodes"`

	// Keystore configuration
	KeystoreBackend string `mapstructure:"keystore_backend"`
	KeystorePath    string `mapstructure:"keystore_path"`

	Consul *ConsulConfig `mapstructure:"consul"`
	NATs   *NATsConfig   `mapstructure:"nats"`

	// Local transaction cache
	DBPath string `mapstructure:"db_path"`

	HistoryPageSize int `mapstructure:"history_page_size"`
	PollIntervalMs  int `mapstructure:"poll_interval_ms"`

	// Hardware wallet options
	LedgerEnabled bool `mapstructure:"ledger_enabled"`
}

type ConsulConfig struct {
	Address  string `mapstructure:"address"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Token    string `mapstructure:"token"`
}

type NATsConfig struct {
	URL      string `mapstructure:"url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

var (
	app *Config
	mu  sync.RWMutex
)

func initConfig() error {
	// env
	viper.SetEnvPrefix("RADIX")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("environment", Development)
	viper.SetDefault("network", defaultNetwork)
	viper.SetDefault("network_hrp", defaultNetworkHRP)
	viper.SetDefault("keystore_backend", defaultKeystoreBackend)
	viper.SetDefault("keystore_path", defaultKeystorePath)
	viper.SetDefault("db_path", defaultDBPath)
	viper.SetDefault("history_page_size", defaultHistoryPageSize)
	viper.SetDefault("poll_interval_ms", defaultPollIntervalMs)

	// set env config file
	configFile := os.Getenv(EnvConfigFile)
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/radixium/")
		viper.AddConfigPath("$HOME/.radixium/")
	}

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("viper read config: %w", err)
	}

	return nil
}

func SetEnvConfigPath(configPath string) {
	if configPath != "" {
		os.Setenv(EnvConfigFile, configPath)
	}
}

func LoadConfig() (*Config, error) {
	var cfg Config
	decoderConfig := &mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	}

	decoder, err := mapstructure.NewDecoder(decoderConfig)
	if err != nil {
		return nil, fmt.Errorf("create decoder: %w", err)
	}

	if err := decoder.Decode(viper.AllSettings()); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateEnvironment(cfg.Environment); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	setConfig(&cfg)
	return &cfg, nil
}

func Load() (*Config, error) {
	if err := initConfig(); err != nil {
		return nil, err
	}
	return LoadConfig()
}

func validateEnvironment(environment string) error {
	validEnvironments := []string{Production, Development}

	if !slices.Contains(validEnvironments, environment) {
		return fmt.Errorf("invalid environment '%s'. Must be one of: %s", environment, strings.Join(validEnvironments, ", "))
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = Development
	}
	if cfg.Network == "" {
		cfg.Network = defaultNetwork
	}
	if cfg.NetworkHRP == "" {
		cfg.NetworkHRP = defaultNetworkHRP
	}
	if cfg.KeystoreBackend == "" {
		cfg.KeystoreBackend = defaultKeystoreBackend
	}
	if cfg.KeystorePath == "" {
		cfg.KeystorePath = defaultKeystorePath
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.HistoryPageSize == 0 {
		cfg.HistoryPageSize = defaultHistoryPageSize
	}
	if cfg.PollIntervalMs == 0 {
		cfg.PollIntervalMs = defaultPollIntervalMs
	}
}

func setConfig(cfg *Config) {
	mu.Lock()
	defer mu.Unlock()
	app = cfg
}

// GetConfig returns the in-memory application configuration.
// It panics if the configuration has not been loaded yet.
func GetConfig() *Config {
	mu.RLock()
	defer mu.RUnlock()
	if app == nil {
		panic("configuration not loaded")
	}
	return app
}

// Update applies the provided function while holding the configuration write lock.
// It panics if the configuration has not been loaded yet.
func Update(fn func(cfg *Config)) {
	mu.Lock()
	defer mu.Unlock()
	if app == nil {
		panic("configuration not loaded")
	}
	fn(app)
}

func Network() string {
	return GetConfig().Network
}

func NetworkHRP() string {
	return GetConfig().NetworkHRP
}

func NetworkID() int {
	return GetConfig().NetworkID
}

func Nodes() []string {
	return GetConfig().Nodes
}

func KeystoreBackend() string {
	return GetConfig().KeystoreBackend
}

func KeystorePath() string {
	return GetConfig().KeystorePath
}

func DBPath() string {
	return GetConfig().DBPath
}

func HistoryPageSize() int {
	return GetConfig().HistoryPageSize
}

func PollIntervalMs() int {
	return GetConfig().PollIntervalMs
}

func LedgerEnabled() bool {
	return GetConfig().LedgerEnabled
}

func NATs() *NATsConfig {
	return GetConfig().NATs
}

func Consul() *ConsulConfig {
	return GetConfig().Consul
}

func Environment() string {
	return GetConfig().Environment
}

func IsProduction() bool {
	return strings.EqualFold(Environment(), Production)
}
