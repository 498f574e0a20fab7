package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/redis/go-redis/v9"

	"github.com/nsorokina/bookclub/internal/config"
	"github.com/nsorokina/bookclub/internal/content"
	"github.com/nsorokina/bookclub/internal/ratelimit"
	"github.com/nsorokina/bookclub/internal/server"
	"github.com/nsorokina/bookclub/internal/store"
	"github.com/nsorokina/bookclub/internal/ws"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open database at %s: %v", cfg.DatabasePath, err)
	}

	opts := []server.Option{
		server.WithLimiter(ratelimit.NewLimiter(cfg.RateLimit.Max, cfg.RateLimit.Window.Std())),
	}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			cancel()
			log.Fatalf("Failed to connect to Redis at %s: %v", cfg.RedisAddr, err)
		}
		cancel()
		log.Printf("Connected to Redis at %s", cfg.RedisAddr)
		opts = append(opts,
			server.WithCache(rdb),
			server.WithExtractor(content.NewExtractor(rdb, cfg.ContentCacheTTL.Std())),
		)
	} else {
		opts = append(opts, server.WithExtractor(content.NewExtractor(nil, cfg.ContentCacheTTL.Std())))
	}

	srv := server.New(cfg.ListenAddr, st, ws.NewRegistry(), opts...)

	go func() {
		log.Printf("Starting bookclub server on %s", cfg.ListenAddr)
		if err := srv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return srv.Shutdown(ctx)
			},
			"database": func(ctx context.Context) error {
				return st.Close()
			},
		},
	)
	os.Exit(<-wait)
}
