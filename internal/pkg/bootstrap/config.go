// internal/pkg/bootstrap/config.go
package bootstrap

import (
	"os"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config carries everything a service needs to start. It is loaded once from
// CONFIG_FILE and then frozen; individual fields can be overridden through
// environment variables for container deployments.
type Config struct {
	App struct {
		LogLevel string `yaml:"log_level"`
		// OrderRule is a CEL expression evaluated against every order
		// creation request. Empty means no rule.
		OrderRule    string `yaml:"order_rule"`
		FeatureFlags struct {
			// RestoreStockOnDelete makes DELETE of an active order release
			// its reservation first. Off by default: deletion historically
			// performed no compensation.
			RestoreStockOnDelete bool `yaml:"restore_stock_on_delete"`
			// SerializeSKUAdjustments routes every stock adjustment through
			// a per-SKU distributed lock. Off by default: concurrent orders
			// touching the same SKU race, each single adjustment stays
			// atomic on the participant side.
			SerializeSKUAdjustments bool `yaml:"serialize_sku_adjustments"`
		} `yaml:"feature_flags"`
	} `yaml:"app"`

	Infra struct {
		MySQL struct {
			DSN string `yaml:"dsn"`
		} `yaml:"mysql"`
		Redis struct {
			Addr string `yaml:"addr"`
		} `yaml:"redis"`
		Kafka struct {
			Brokers          []string `yaml:"brokers"`
			OrderEventsTopic string   `yaml:"order_events_topic"`
		} `yaml:"kafka"`
		Jaeger struct {
			Endpoint string `yaml:"endpoint"`
		} `yaml:"jaeger"`
		Nacos struct {
			ServerAddrs string `yaml:"server_addrs"`
			Namespace   string `yaml:"namespace"`
			Group       string `yaml:"group"`
		} `yaml:"nacos"`
		Zookeeper struct {
			Addrs []string `yaml:"addrs"`
		} `yaml:"zookeeper"`
	} `yaml:"infra"`

	// Static participant addresses, used when Nacos discovery is disabled.
	Services struct {
		InventoryURL string `yaml:"inventory_url"`
		UsersURL     string `yaml:"users_url"`
	} `yaml:"services"`
}

var (
	currentConfig Config
	configOnce    sync.Once
)

// Init loads the configuration exactly once. Missing CONFIG_FILE is not an
// error; everything then comes from env vars and defaults.
func Init() {
	configOnce.Do(func() {
		cfg, err := loadConfig(os.Getenv("CONFIG_FILE"))
		if err != nil {
			panic(err)
		}
		currentConfig = *cfg
	})
}

// GetCurrentConfig returns the loaded configuration. Init must run first.
func GetCurrentConfig() *Config {
	return &currentConfig
}

func loadConfig(path string) (*Config, error) {
	var cfg Config
	cfg.App.LogLevel = "info"
	cfg.Infra.Jaeger.Endpoint = "http://localhost:14268/api/traces"
	cfg.Infra.Nacos.Group = "DEFAULT_GROUP"
	cfg.Infra.Kafka.OrderEventsTopic = "order-events"

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read config file %s", path)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config file %s", path)
		}
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

func overrideFromEnv(cfg *Config) {
	setIfPresent(&cfg.App.LogLevel, "LOG_LEVEL")
	setIfPresent(&cfg.Infra.MySQL.DSN, "MYSQL_DSN")
	setIfPresent(&cfg.Infra.Redis.Addr, "REDIS_ADDR")
	setIfPresent(&cfg.Infra.Jaeger.Endpoint, "JAEGER_ENDPOINT")
	setIfPresent(&cfg.Infra.Nacos.ServerAddrs, "NACOS_SERVER_ADDRS")
	setIfPresent(&cfg.Infra.Nacos.Namespace, "NACOS_NAMESPACE")
	setIfPresent(&cfg.Infra.Nacos.Group, "NACOS_GROUP")
	setIfPresent(&cfg.Services.InventoryURL, "INVENTORY_SERVICE_URL")
	setIfPresent(&cfg.Services.UsersURL, "USERS_SERVICE_URL")
}

func setIfPresent(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}
