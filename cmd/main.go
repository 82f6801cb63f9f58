package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"caseflow/internal/clients"
	"caseflow/internal/config"
	"caseflow/internal/repository"
	"caseflow/internal/service"
	"caseflow/internal/transport/auth"
	"caseflow/internal/transport/rest"
	"caseflow/internal/transport/websocket"
	"caseflow/pkg/database/postgres"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system env or defaults")
	}

	// top-level context which we can cancel on shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg := config.Load()

	db := mustInitPostgres(cfg.Postgres)
	defer postgres.Close(db)

	redisClient := mustInitRedis(cfg.Redis)
	defer redisClient.Close()

	storageClient, err := clients.NewDocumentStorage(ctx, clients.S3Config{
		Endpoint:        cfg.S3.Endpoint,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
		Bucket:          cfg.S3.Bucket,
		UseSSL:          cfg.S3.UseSSL,
		Region:          cfg.S3.Region,
		Prefix:          cfg.S3.Prefix,
	})
	if err != nil {
		log.Fatalf("storage init error: %v", err)
	}

	wsHub := websocket.NewHub()
	go wsHub.Run(ctx)
	notifier := clients.NewCaseNotifier(wsHub)

	caseRepo := repository.NewCaseRepository(db)
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewPersonalAccessTokenRepository(db)

	caseSvc := service.NewCaseService(caseRepo, userRepo, notifier, redisClient, cfg.EscalationFee)
	ledgerSvc := service.NewLedgerService(caseRepo, notifier, redisClient)
	escalationSvc := service.NewEscalationService(caseRepo, notifier, redisClient)
	projectionSvc := service.NewProjectionService(caseRepo, userRepo, redisClient, time.Duration(cfg.SummaryCacheTTL)*time.Second)

	sanctumMiddleware := auth.SanctumMiddleware(tokenRepo)

	handler := rest.NewHandler(caseSvc, ledgerSvc, escalationSvc, projectionSvc, storageClient)
	router := handler.InitRouterWithAuth(sanctumMiddleware)

	// public root router: /health stays open, everything else requires a token
	root := chi.NewRouter()

	root.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// protected websocket endpoint; browsers cannot set an Authorization
	// header on a ws dial, so the middleware also accepts ?token=
	router.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		actor, err := auth.GetActor(r.Context())
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		log.Printf("WS connected: user_id=%d", actor.UserID)
		wsHub.HandleWebSocket(w, r, actor.UserID)
	})

	root.Mount("/", router)

	corsHandler := withCORS(root)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      corsHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on :%s\n", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			srvErr <- err
			return
		}
		srvErr <- nil
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-srvErr:
		if err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	case sig := <-stop:
		log.Printf("Shutdown signal received: %v", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server Shutdown error: %v", err)
		}

		// stop the websocket hub before closing its downstreams
		cancel()

		postgres.Close(db)
		redisClient.Close()

		log.Println("Shutdown complete")
	}
}

func mustInitPostgres(cfg config.PostgresConfig) *sql.DB {
	db, err := postgres.NewPostgresConnection(postgres.ConnectionInfo{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.User,
		DBName:   cfg.DBName,
		SSLMode:  cfg.SSLMode,
		Password: cfg.Password,
	})
	if err != nil {
		log.Fatalf("postgres init error: %v", err)
	}
	return db
}

func mustInitRedis(cfg config.RedisConfig) *clients.RedisClient {
	client, err := clients.NewRedisClient(clients.RedisConfig{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		MaxRetries:  cfg.MaxRetries,
		DialTimeout: time.Duration(cfg.DialTimeout) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		Prefix:      cfg.Prefix,
	})
	if err != nil {
		log.Fatalf("redis init error: %v", err)
	}
	return client
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")

			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
