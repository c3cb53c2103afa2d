package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/gridlay/pkg/cache"
	"github.com/matzehuels/gridlay/pkg/server"
	"github.com/matzehuels/gridlay/pkg/store"
)

// Backend names accepted in the config file.
const (
	backendFile   = "file"
	backendRedis  = "redis"
	backendNone   = "none"
	backendMemory = "memory"
	backendMongo  = "mongo"
)

const defaultAddr = "localhost:8080"

// Config is the optional serve configuration file.
//
//	[server]
//	addr = "localhost:8080"
//
//	[cache]
//	backend = "redis"
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[store]
//	backend = "mongo"
//	[store.mongo]
//	uri = "mongodb://localhost:27017"
type Config struct {
	Server ServerConfig `toml:"server"`
	Cache  CacheConfig  `toml:"cache"`
	Store  StoreConfig  `toml:"store"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr        string `toml:"addr"`
	MaxBodySize int64  `toml:"max_body_size"`
}

// CacheConfig selects the artifact cache: file (default), redis or none.
type CacheConfig struct {
	Backend string            `toml:"backend"`
	Dir     string            `toml:"dir"`
	Redis   cache.RedisConfig `toml:"redis"`
}

// StoreConfig selects the document store: memory (default) or mongo.
type StoreConfig struct {
	Backend string            `toml:"backend"`
	Mongo   store.MongoConfig `toml:"mongo"`
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{Addr: defaultAddr, MaxBodySize: server.DefaultMaxBodySize},
		Cache:  CacheConfig{Backend: backendFile, Redis: cache.RedisConfig{Prefix: appName + ":"}},
		Store:  StoreConfig{Backend: backendMemory},
	}
}

// loadConfig reads path over the defaults. A missing file is not an error
// unless required is set.
func loadConfig(path string, required bool) (Config, error) {
	cfg := defaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config %s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Cache.Backend {
	case backendFile, backendRedis, backendNone:
	default:
		return fmt.Errorf("unknown cache backend %q (want file, redis or none)", c.Cache.Backend)
	}
	switch c.Store.Backend {
	case backendMemory, backendMongo:
	default:
		return fmt.Errorf("unknown store backend %q (want memory or mongo)", c.Store.Backend)
	}
	if c.Cache.Backend == backendRedis && c.Cache.Redis.Addr == "" {
		return errors.New("cache backend redis needs cache.redis.addr")
	}
	if c.Store.Backend == backendMongo && c.Store.Mongo.URI == "" {
		return errors.New("store backend mongo needs store.mongo.uri")
	}
	return nil
}
