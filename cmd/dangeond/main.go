package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"dangeond/internal/api"
	"dangeond/internal/config"
	"dangeond/internal/otel"
	"dangeond/internal/session"
	"dangeond/internal/version"
	"dangeond/internal/ws"
	"dangeond/pkg/bus"
	"dangeond/pkg/db"
	gos3 "dangeond/pkg/s3"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           version.Name,
		Short:         "Social backend with live chat delivery",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newMigrateCommand())
	return cmd
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			_ = godotenv.Load()
			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}

			pool, err := db.Open(ctx, cfg.DBDSN)
			if err != nil {
				return err
			}
			defer pool.Close()

			return db.Migrate(ctx, pool)
		},
	}
}

func serve() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	cleanup, err := otel.Init(ctx, version.Name, cfg.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("init otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := cleanup(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown otel")
		}
	}()

	pool, err := db.Open(ctx, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	orm, err := db.OpenGorm(cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("open orm: %w", err)
	}
	defer func() {
		if err := db.CloseGorm(orm); err != nil {
			log.Error().Err(err).Msg("close orm")
		}
	}()

	codec, err := session.NewCodec(cfg.SessionSecret)
	if err != nil {
		return fmt.Errorf("session codec: %w", err)
	}
	var sessions session.Store
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		sessions = session.NewRedisStore(rdb, codec, cfg.SessionTTL)
	} else {
		log.Warn().Msg("REDIS_ADDR not set, sessions are in-memory and lost on restart")
		sessions = session.NewMemoryStore(codec, cfg.SessionTTL)
	}

	store := &api.Store{DB: pool, ORM: orm}

	if cfg.NATSURL != "" {
		b, err := bus.New(cfg.NATSURL)
		if err != nil {
			return fmt.Errorf("connect nats: %w", err)
		}
		defer b.Close()
		store.Bus = b
	}

	if cfg.ImageBucket != "" {
		s3c, err := gos3.NewClientFromEnv()
		if err != nil {
			return fmt.Errorf("init s3: %w", err)
		}
		store.S3 = s3c
	} else {
		log.Warn().Msg("S3_IMAGE_BUCKET not set, image uploads disabled")
	}

	registry := ws.NewRegistry()
	notifier := ws.NewNotifier(registry, store, store)

	app, err := api.New(store, sessions, registry, notifier, api.Config{
		ImageBucket:    cfg.ImageBucket,
		AllowedOrigins: cfg.AllowedOrigins,
		CookieDomain:   cfg.CookieDomain,
		CookieSecure:   cfg.CookieSecure,
	})
	if err != nil {
		return fmt.Errorf("init api: %w", err)
	}

	if relay, err := app.StartRelay(ctx); err != nil {
		return fmt.Errorf("start relay: %w", err)
	} else if relay != nil {
		defer relay.Close()
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           otelhttp.NewHandler(app.Routes(), version.Name),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Str("version", version.Version).Msg("starting dangeond")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown server")
	}
	return nil
}
