package analytics

import (
	"os"

	"storefront/internal/app"

	"gopkg.in/yaml.v3"
)

type Config struct {
	CfgDB        app.ConfigDB    `yaml:"db"`
	CfgKafka     app.ConfigKafka `yaml:"kafka"`
	MaxOpenConns int             `yaml:"max_open_conns"`
	ServerPort   string          `yaml:"srv_port"`
}

func NewConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var cfg Config
	if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.ServerPort == "" {
		cfg.ServerPort = ":8082"
	}
	if cfg.CfgKafka.Topic == "" {
		cfg.CfgKafka.Topic = "storefront-events"
	}
	if cfg.CfgKafka.GroupID == "" {
		cfg.CfgKafka.GroupID = "analytics-group"
	}

	return &cfg, nil
}
