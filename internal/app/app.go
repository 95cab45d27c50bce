package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	"storefront/internal/catalog"

	"gopkg.in/yaml.v3"
)

const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

type Config struct {
	CfgDB           ConfigDB      `yaml:"db"`
	CfgES           ConfigES      `yaml:"es"`
	CfgRedis        ConfigRedis   `yaml:"redis"`
	CfgKafka        ConfigKafka   `yaml:"kafka"`
	CfgCatalog      ConfigCatalog `yaml:"catalog"`
	CfgAccount      ConfigService `yaml:"account"`
	CfgCart         ConfigCart    `yaml:"cart"`
	ETLTimeout      time.Duration `yaml:"etl_search_timeout"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	Secret          string        `yaml:"secret"`
	ServerPort      string        `yaml:"srv_port"`
	SessionDuration time.Duration `yaml:"session_duration"`
}

type ConfigDB struct {
	Login    string `yaml:"login"`
	Password string `yaml:"password"`
	Port     uint   `yaml:"port"`
	Database string `yaml:"database"`
	Host     string `yaml:"host"`
}

// DSN - строка подключения для lib/pq
func (c ConfigDB) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s "+"password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.Login, c.Password, c.Database,
	)
}

type ConfigES struct {
	Addresses []string `yaml:"addresses"`
	Index     string   `yaml:"index"`
}

type ConfigRedis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type ConfigKafka struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	GroupID string   `yaml:"group_id"`
}

type ConfigService struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type ConfigCatalog struct {
	ConfigService `yaml:",inline"`
	Breaker       catalog.BreakerConfig `yaml:"breaker"`
}

// ConfigCart - где и как долго живут корзины посетителей
type ConfigCart struct {
	Storage       string        `yaml:"storage"`
	SnapshotTTL   time.Duration `yaml:"snapshot_ttl"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

func NewConfig(configPath string) (*Config, error) {
	cfg, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var c Config
	err = yaml.Unmarshal(cfg, &c)
	if err != nil {
		return nil, err
	}

	c.setDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

func (c *Config) setDefaults() {
	if c.ServerPort == "" {
		c.ServerPort = ":8080"
	}
	if c.SessionDuration == 0 {
		c.SessionDuration = 24 * time.Hour
	}
	if c.MaxOpenConns == 0 {
		c.MaxOpenConns = 10
	}
	if c.ETLTimeout == 0 {
		c.ETLTimeout = 5 * time.Minute
	}
	if len(c.CfgES.Addresses) == 0 {
		c.CfgES.Addresses = []string{"http://elasticsearch:9200"}
	}
	if c.CfgES.Index == "" {
		c.CfgES.Index = "products"
	}
	if c.CfgRedis.Addr == "" {
		c.CfgRedis.Addr = "redis:6379"
	}
	if c.CfgKafka.Topic == "" {
		c.CfgKafka.Topic = "storefront-events"
	}
	if c.CfgCatalog.Timeout == 0 {
		c.CfgCatalog.Timeout = 5 * time.Second
	}
	if c.CfgCatalog.Breaker == (catalog.BreakerConfig{}) {
		c.CfgCatalog.Breaker = catalog.DefaultBreakerConfig()
	}
	if c.CfgAccount.Timeout == 0 {
		c.CfgAccount.Timeout = 10 * time.Second
	}
	if c.CfgCart.Storage == "" {
		c.CfgCart.Storage = StorageRedis
	}
	if c.CfgCart.SnapshotTTL == 0 {
		c.CfgCart.SnapshotTTL = 30 * 24 * time.Hour
	}
	if c.CfgCart.WriteTimeout == 0 {
		c.CfgCart.WriteTimeout = 2 * time.Second
	}
	if c.CfgCart.IdleTimeout == 0 {
		c.CfgCart.IdleTimeout = 30 * time.Minute
	}
	if c.CfgCart.SweepInterval == 0 {
		c.CfgCart.SweepInterval = time.Minute
	}
}

func (c *Config) Validate() error {
	if c.Secret == "" {
		return errors.New("config: secret is required")
	}
	if c.CfgCatalog.BaseURL == "" {
		return errors.New("config: catalog.base_url is required")
	}
	if c.CfgAccount.BaseURL == "" {
		return errors.New("config: account.base_url is required")
	}

	switch c.CfgCart.Storage {
	case StorageMemory, StorageRedis, StoragePostgres:
	default:
		return fmt.Errorf("config: unknown cart storage %q", c.CfgCart.Storage)
	}

	return nil
}
