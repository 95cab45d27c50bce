package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"storefront/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestNewConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `
secret: s3cr3t
catalog:
  base_url: http://catalog:8081
account:
  base_url: http://accounts:8083
`)

	c, err := NewConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.ServerPort)
	assert.Equal(t, 24*time.Hour, c.SessionDuration)
	assert.Equal(t, StorageRedis, c.CfgCart.Storage)
	assert.Equal(t, 2*time.Second, c.CfgCart.WriteTimeout)
	assert.Equal(t, "products", c.CfgES.Index)
	assert.Equal(t, "storefront-events", c.CfgKafka.Topic)
	assert.Equal(t, catalog.DefaultBreakerConfig(), c.CfgCatalog.Breaker)
	assert.Equal(t, 5*time.Second, c.CfgCatalog.Timeout)
}

func TestNewConfig_Full(t *testing.T) {
	path := writeConfig(t, `
srv_port: ":9000"
secret: s3cr3t
session_duration: 2h
max_open_conns: 3
etl_search_timeout: 30s
db:
  login: postgres
  password: pw
  port: 5432
  database: storefront
  host: db
redis:
  addr: localhost:6379
kafka:
  brokers: ["k1:9092", "k2:9092"]
catalog:
  base_url: http://catalog:8081
  timeout: 1s
  breaker:
    max_requests: 2
    interval: 10s
    timeout: 5s
    failure_ratio: 0.6
    min_requests: 3
account:
  base_url: http://accounts:8083
cart:
  storage: postgres
  idle_timeout: 10m
`)

	c, err := NewConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", c.ServerPort)
	assert.Equal(t, 2*time.Hour, c.SessionDuration)
	assert.Equal(t, 30*time.Second, c.ETLTimeout)
	assert.Equal(t, "localhost:6379", c.CfgRedis.Addr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.CfgKafka.Brokers)
	assert.Equal(t, time.Second, c.CfgCatalog.Timeout)
	assert.Equal(t, uint32(3), c.CfgCatalog.Breaker.MinRequests)
	assert.Equal(t, 0.6, c.CfgCatalog.Breaker.FailureRatio)
	assert.Equal(t, StoragePostgres, c.CfgCart.Storage)
	assert.Equal(t, 10*time.Minute, c.CfgCart.IdleTimeout)
	assert.Equal(t, "host=db port=5432 user=postgres password=pw dbname=storefront sslmode=disable", c.CfgDB.DSN())
}

func TestNewConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "no secret", body: "catalog: {base_url: x}\naccount: {base_url: y}\n"},
		{name: "no catalog", body: "secret: s\naccount: {base_url: y}\n"},
		{name: "no account", body: "secret: s\ncatalog: {base_url: x}\n"},
		{name: "unknown storage", body: "secret: s\ncatalog: {base_url: x}\naccount: {base_url: y}\ncart: {storage: disk}\n"},
		{name: "broken yaml", body: "secret: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}
