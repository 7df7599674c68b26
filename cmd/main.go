package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"loanlook/internal/clients"
	"loanlook/internal/config"
	"loanlook/internal/logger"
	"loanlook/internal/repository"
	"loanlook/internal/service"
	"loanlook/internal/transport/auth"
	"loanlook/internal/transport/rest"
	"loanlook/internal/transport/websocket"
	"loanlook/pkg/database/postgres"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogPretty)
	zlog.Logger = log
	if envErr != nil {
		log.Info().Msg("no .env file found, using system env or defaults")
	}

	// top-level context which we can cancel on shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loc, err := time.LoadLocation(cfg.Report.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Report.Timezone).Msg("invalid report timezone")
	}

	db := mustInitPostgres(ctx, log, cfg.Postgres)
	defer postgres.Close(db)

	redisClient := mustInitRedis(ctx, log, cfg.Redis)
	defer redisClient.Close()

	localStorage, err := clients.NewLocalStorage(cfg.ExportDir, cfg.FilesPublicPrefix, cfg.ExternalURL)
	if err != nil {
		log.Fatal().Err(err).Msg("storage init error")
	}
	files := mustInitFileStore(ctx, log, cfg.S3, localStorage)

	wsHub := websocket.NewHub(log)
	go wsHub.Run(ctx)
	wsClient := clients.NewWebSocketClient(wsHub)

	appRepo := repository.NewApplicationRepository(db)
	adjRepo := repository.NewAdjustmentRepository(db)
	stmtRepo := repository.NewStatementRepository(db)
	tokenRepo := repository.NewPersonalAccessTokenRepository(db)

	reportSvc := service.NewReportService(appRepo, adjRepo, stmtRepo, log, service.ReportOptions{
		TopProvinces: cfg.Report.TopProvinces,
		Location:     loc,
	})
	adjustmentSvc := service.NewAdjustmentService(adjRepo, loc, log)
	exportSvc := service.NewExportService(reportSvc, redisClient, files, wsClient, log)

	tokenMiddleware := auth.TokenMiddleware(tokenRepo, log)

	handler := rest.NewHandler(reportSvc, adjustmentSvc, exportSvc, exportSvc, log)
	router := handler.InitRouterWithAuth(tokenMiddleware)

	router.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		userID, err := auth.GetUserID(r.Context())
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		wsHub.HandleWebSocket(w, r, userID)
	})

	// /files and /health stay public, everything else goes through auth
	root := chi.NewRouter()
	root.Get("/health", rest.Health)
	root.Get(cfg.FilesPublicPrefix+"/{file}", rest.ServeFiles(localStorage))
	root.Mount("/", router)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      withCORS(root),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			srvErr <- err
			return
		}
		srvErr <- nil
	}()

	go cleanupExports(ctx, log, localStorage)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-srvErr:
		if err != nil {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("HTTP server shutdown error")
		}

		// let running exports publish their final status before the
		// hub and redis go away
		exportSvc.Wait()
		cancel()

		log.Info().Msg("shutdown complete")
	}
}

func mustInitPostgres(ctx context.Context, log zerolog.Logger, cfg config.PostgresConfig) *sql.DB {
	db, err := postgres.NewPostgresConnection(ctx, postgres.ConnectionInfo{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.User,
		DBName:   cfg.DBName,
		SSLMode:  cfg.SSLMode,
		Password: cfg.Password,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("postgres init error")
	}
	return db
}

func mustInitRedis(ctx context.Context, log zerolog.Logger, cfg config.RedisConfig) *clients.RedisClient {
	client, err := clients.NewRedisClient(ctx, clients.RedisConfig{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		MaxRetries:  cfg.MaxRetries,
		DialTimeout: time.Duration(cfg.DialTimeout) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		Prefix:      cfg.Prefix,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis init error")
	}
	return client
}

// mustInitFileStore picks the bucket when S3 is enabled and local disk
// otherwise.
func mustInitFileStore(ctx context.Context, log zerolog.Logger, cfg config.S3Config, local *clients.StorageClient) service.FileStore {
	if !cfg.Enabled {
		return local
	}
	s3, err := clients.NewS3Client(ctx, clients.S3Config{
		Endpoint:        cfg.Endpoint,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
		Bucket:          cfg.Bucket,
		UseSSL:          cfg.UseSSL,
		Region:          cfg.Region,
		Prefix:          cfg.Prefix,
		URLTTL:          time.Duration(cfg.URLTTLMinutes) * time.Minute,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("s3 init error")
	}
	log.Info().Str("bucket", cfg.Bucket).Msg("exports stored in s3")
	return s3
}

func cleanupExports(ctx context.Context, log zerolog.Logger, storage *clients.StorageClient) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := storage.CleanupOlderThan(30 * time.Minute); err != nil {
				log.Warn().Err(err).Msg("storage cleanup error")
			}
		}
	}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")

			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
