package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridlay/pkg/cache"
	"github.com/matzehuels/gridlay/pkg/observability"
	"github.com/matzehuels/gridlay/pkg/pipeline"
	"github.com/matzehuels/gridlay/pkg/server"
	"github.com/matzehuels/gridlay/pkg/store"
)

// serveFlags are the serve overrides applied on top of the config file.
type serveFlags struct {
	config  string
	addr    string
	redis   string
	mongo   string
	noCache bool
}

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var f serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout API over HTTP",
		Long: `Serve the layout API over HTTP.

Settings come from ~/.config/gridlay/config.toml (or --config) and are
overridden by flags. --redis switches the artifact cache to Redis and
--mongo keeps documents in MongoDB instead of memory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveServeConfig(f, cmd.Flags().Changed("config"))
			if err != nil {
				return err
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&f.config, "config", "", "config file (default: ~/.config/gridlay/config.toml)")
	cmd.Flags().StringVar(&f.addr, "addr", "", "listen address (default: "+defaultAddr+")")
	cmd.Flags().StringVar(&f.redis, "redis", "", "cache artifacts in Redis at this address")
	cmd.Flags().StringVar(&f.mongo, "mongo", "", "store documents in MongoDB at this URI")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}

// resolveServeConfig loads the config file and applies flag overrides.
func resolveServeConfig(f serveFlags, explicit bool) (Config, error) {
	path := f.config
	if path == "" {
		p, err := configPath()
		if err != nil {
			return Config{}, fmt.Errorf("get config path: %w", err)
		}
		path = p
	}
	cfg, err := loadConfig(path, explicit)
	if err != nil {
		return Config{}, err
	}

	if f.addr != "" {
		cfg.Server.Addr = f.addr
	}
	if f.redis != "" {
		cfg.Cache.Backend = backendRedis
		cfg.Cache.Redis.Addr = f.redis
	}
	if f.mongo != "" {
		cfg.Store.Backend = backendMongo
		cfg.Store.Mongo.URI = f.mongo
	}
	if f.noCache {
		cfg.Cache.Backend = backendNone
	}
	return cfg, cfg.validate()
}

// runServe opens the configured backends and serves until ctx ends.
func (c *CLI) runServe(ctx context.Context, cfg Config) error {
	logger := loggerFromContext(ctx)

	hooks := observability.NewLogHooks(logger)
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	artifacts, err := openCache(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(artifacts, nil, logger)
	defer runner.Close()

	docs, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer docs.Close(context.Background())

	printSuccess("Serving on %s", StyleLink.Render("http://"+cfg.Server.Addr))
	printKeyValue("cache", cfg.Cache.Backend)
	printKeyValue("store", cfg.Store.Backend)
	printKeyValue("max body", strconv.FormatInt(cfg.Server.MaxBodySize, 10)+" bytes")

	srv := server.New(runner,
		server.WithStore(docs),
		server.WithLogger(logger),
		server.WithMaxBodySize(cfg.Server.MaxBodySize),
	)
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}

func openCache(ctx context.Context, cfg CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case backendRedis:
		rc, err := cache.NewRedisCache(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("open redis cache: %w", err)
		}
		return rc, nil
	case backendNone:
		return cache.NewNullCache(), nil
	}
	if cfg.Dir != "" {
		return cache.NewFileCache(cfg.Dir)
	}
	return newCache(false)
}

func openStore(ctx context.Context, cfg StoreConfig) (store.Store, error) {
	if cfg.Backend == backendMongo {
		ms, err := store.NewMongoStore(ctx, cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("open mongo store: %w", err)
		}
		return ms, nil
	}
	return store.NewMemoryStore(), nil
}
