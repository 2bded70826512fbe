package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/loomviz/loom/pkg/cache"
	"github.com/loomviz/loom/pkg/render"
	"github.com/loomviz/loom/pkg/store"

	"github.com/loomviz/loom/internal/server"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr     string // listen address
	redisURL string // Redis cache URL (empty keeps the file cache)
	mongoURI string // MongoDB connection string (empty keeps the in-memory store)
	mongoDB  string // MongoDB database name
	noCache  bool   // disable caching
}

// newServeCmd creates the serve command for running the HTTP API.
func newServeCmd() *cobra.Command {
	opts := serveOpts{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the diagram rendering HTTP API",
		Long: `Run the diagram rendering HTTP API.

The server exposes /api/render for one-shot rendering and /api/diagrams
for stored diagram management. Layouts are cached in Redis when
--redis is given, otherwise on the local filesystem. Diagrams persist
in MongoDB when --mongo is given, otherwise in memory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default: 127.0.0.1:8321)")
	cmd.Flags().StringVar(&opts.redisURL, "redis", "", "Redis URL for the shared cache")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo", "", "MongoDB URI for diagram storage")
	cmd.Flags().StringVar(&opts.mongoDB, "mongo-db", "loom", "MongoDB database name")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runServe builds the runner and store from flags and config, then runs
// the server until the context is canceled.
func runServe(ctx context.Context, opts *serveOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyServerConfig(cfg.Server, opts)

	c, err := serveCache(ctx, logger, opts)
	if err != nil {
		return err
	}
	runner := render.NewRunner(newEngineRegistry(logger), c, nil, logger)
	registerSinks(runner)
	defer runner.Close()

	st, err := serveStore(ctx, logger, opts)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	srv := server.NewServer(server.Config{Addr: opts.addr}, runner, st, logger)
	return srv.ListenAndServe(ctx)
}

func applyServerConfig(cfg ServerConfig, opts *serveOpts) {
	if opts.addr == "" {
		opts.addr = cfg.Addr
	}
	if opts.redisURL == "" {
		opts.redisURL = cfg.RedisURL
	}
	if opts.mongoURI == "" {
		opts.mongoURI = cfg.MongoURI
	}
	if opts.mongoDB == "loom" && cfg.MongoDB != "" {
		opts.mongoDB = cfg.MongoDB
	}
}

func serveCache(ctx context.Context, logger *log.Logger, opts *serveOpts) (cache.Cache, error) {
	if opts.noCache {
		return cache.NewNullCache(), nil
	}
	if opts.redisURL != "" {
		c, err := cache.NewRedisCache(ctx, opts.redisURL)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		logger.Info("using redis cache")
		return c, nil
	}
	return newCache(false)
}

func serveStore(ctx context.Context, logger *log.Logger, opts *serveOpts) (store.Store, error) {
	if opts.mongoURI != "" {
		st, err := store.NewMongoStore(ctx, opts.mongoURI, opts.mongoDB)
		if err != nil {
			return nil, fmt.Errorf("connect mongodb: %w", err)
		}
		logger.Info("using mongodb store", "db", opts.mongoDB)
		return st, nil
	}
	return store.NewMemoryStore(), nil
}
