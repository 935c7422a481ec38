package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_ValoresPorDefecto(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, StoreSQLite, cfg.Store.Driver)
	assert.Equal(t, CacheMemory, cfg.Cache.Driver)
	assert.Equal(t, 10*time.Minute, cfg.Cache.Lookup)
	assert.Equal(t, 4*time.Minute, cfg.Cache.List)
	assert.Equal(t, 15*time.Minute, cfg.Cache.Aggregate)
	assert.Equal(t, 10*time.Second, cfg.Sales.DuplicateWindow)
	assert.Equal(t, 2, cfg.Sales.Precision)
	assert.False(t, cfg.Sales.AllowNegativeStock)
	assert.Equal(t, "V", cfg.Sales.InvoicePrefix)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestFromViper_VariablesDeEntorno(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("CACHE_DRIVER", "redis")
	t.Setenv("SALES_DUPLICATE_WINDOW_SECONDS", "0")
	t.Setenv("SALES_ALLOW_NEGATIVE_STOCK", "true")
	t.Setenv("CACHE_TTL_LIST_SECONDS", "30")
	t.Setenv("DB_MAX_CONNS", "25")

	v := viper.New()
	v.AutomaticEnv()
	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, StorePostgres, cfg.Store.Driver)
	assert.Equal(t, CacheRedis, cfg.Cache.Driver)
	assert.Zero(t, cfg.Sales.DuplicateWindow)
	assert.True(t, cfg.Sales.AllowNegativeStock)
	assert.Equal(t, 30*time.Second, cfg.Cache.List)
	assert.Equal(t, 25, cfg.DB.MaxConns)
}

func TestFromViper_DriverInvalido(t *testing.T) {
	v := viper.New()
	v.Set("STORE_DRIVER", "memory")
	_, err := fromViper(v)
	assert.Error(t, err)

	v = viper.New()
	v.Set("CACHE_DRIVER", "memcached")
	_, err = fromViper(v)
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "ventas", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/ventas?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}
