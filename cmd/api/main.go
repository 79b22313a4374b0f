package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/emojilens/backend/internal/config"
	"github.com/emojilens/backend/internal/handler"
	"github.com/emojilens/backend/internal/quota"
	"github.com/emojilens/backend/internal/quota/drivers"
	"github.com/emojilens/backend/internal/service/interpreter"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize quota store and governor
	var store quota.Store
	if cfg.Quota.UseRedis() {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Quota.RedisAddr,
			Password: cfg.Quota.RedisPassword,
			DB:       cfg.Quota.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatalf("failed to connect to quota redis: %v", err)
		}
		store = drivers.NewRedisStore(client, 0)
		log.Printf("quota store: redis at %s", cfg.Quota.RedisAddr)
	} else {
		store = drivers.NewMemoryStore()
		log.Println("quota store: in-memory (single instance)")
	}
	defer store.Close()

	governor := quota.NewGovernor(store, cfg.Quota.MaxUses)

	// Initialize the generation service, falling back to the deterministic
	// placeholder so the pipeline stays usable without Ark credentials.
	var generator interpreter.Generator
	if cfg.AI.Enabled() {
		svc, err := interpreter.NewService(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("falling back to the placeholder generator - 请检查 Ark 模型相关环境变量")
			generator = interpreter.NewPlaceholder()
		} else {
			generator = svc
			if !cfg.AI.StreamResponse {
				// ARK_STREAM=false 时流式端点退化为单次调用交付。
				generator = interpreter.NewSingleShot(svc)
				log.Println("AI streaming disabled, delivering responses in a single chunk")
			}
			log.Println("AI interpretation service initialized successfully")
		}
	} else {
		generator = interpreter.NewPlaceholder()
		log.Println("Ark 凭证未配置，使用占位生成器")
	}

	router := handler.NewRouter(governor, generator, cfg.Stream)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("EmojiLens backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
