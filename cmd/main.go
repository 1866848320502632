package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campusreport/backend/internal/analytics"
	"campusreport/backend/internal/api/handler"
	"campusreport/backend/internal/auth"
	"campusreport/backend/internal/complaint"
	"campusreport/backend/internal/config"
	"campusreport/backend/internal/contact"
	"campusreport/backend/internal/feed"
	"campusreport/backend/internal/localization"
	"campusreport/backend/internal/logging"
	"campusreport/backend/internal/notify"
	"campusreport/backend/internal/storage"
	"campusreport/backend/internal/upload"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

func setupDependencies(ctx context.Context, cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := storage.Open(cfg.Database.DSN)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := storage.Migrate(db); err != nil {
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	if !cfg.Redis.Enabled {
		logging.Warn().Msg("redis disabled: notifications are delivered inline and the feed is local to this instance")
		return db, nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}

	logging.Info().Msg("database and redis connections established")
	return db, rdb, nil
}

func setupUploader(cfg config.CloudinaryConfig) (upload.Uploader, error) {
	if !cfg.Enabled() {
		logging.Warn().Msg("cloudinary not configured: evidence uploads will be rejected")
		return upload.Disabled{}, nil
	}
	return upload.NewCloudinary(cfg.CloudName, cfg.APIKey, cfg.APISecret, cfg.Folder)
}

func setupDeliverer(cfg *config.Config) (*notify.Deliverer, error) {
	loc, err := localization.Default()
	if err != nil {
		return nil, fmt.Errorf("load locales: %w", err)
	}

	var senders []notify.Sender
	if cfg.SMTP.Enabled() {
		senders = append(senders, notify.NewEmailSender(cfg.SMTP))
	}
	if cfg.Telegram.Enabled() {
		tg, err := notify.NewTelegramSender(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			return nil, fmt.Errorf("telegram bot: %w", err)
		}
		senders = append(senders, tg)
	}
	return notify.NewDeliverer(loc, cfg.Notify.Language, senders...), nil
}

func main() {
	start := time.Now()
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load configuration")
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().Int("port", cfg.Server.Port).Msg("starting campus report backend")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, rdb, err := setupDependencies(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("initialize storage")
	}
	s := storage.NewStorageService(db, rdb)

	uploader, err := setupUploader(cfg.Cloudinary)
	if err != nil {
		logging.Fatal().Err(err).Msg("initialize cloudinary")
	}
	deliverer, err := setupDeliverer(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("initialize notifications")
	}

	g, gctx := errgroup.WithContext(ctx)

	var dispatcher notify.Dispatcher
	switch {
	case len(deliverer.Senders()) == 0:
		logging.Warn().Msg("no notification senders configured")
		dispatcher = notify.Nop{}
	case cfg.Notify.Mode == "queue" && rdb != nil:
		dispatcher = notify.NewQueueDispatcher(s)
		worker := notify.NewWorker(s, deliverer)
		g.Go(func() error {
			worker.Run(gctx)
			return nil
		})
	default:
		dispatcher = notify.NewDirectDispatcher(deliverer)
	}

	hub := feed.NewHub()
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	var publisher feed.Publisher = feed.NewLocalPublisher(hub)
	if rdb != nil {
		if err := hub.StartPubSubListener(gctx, s); err != nil {
			logging.Fatal().Err(err).Msg("subscribe to complaint events")
		}
		publisher = feed.NewRedisPublisher(s)
	}

	tokens := auth.NewTokenManager(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	h := handler.NewHandler(
		auth.NewService(s, tokens, cfg.Security.BcryptCost),
		complaint.NewService(s, uploader, dispatcher, publisher),
		analytics.NewService(s),
		contact.NewService(s),
		hub,
	)
	h.Ping = s.Ping
	h.MaxUploadBytes = cfg.Server.MaxUploadBytes
	h.AllowedOrigins = cfg.Server.CORSOrigins

	gin.SetMode(gin.ReleaseMode)
	r := handler.NewRouter(h)

	server := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: handler.WrapEdge(r, handler.EdgeOptions{
			CORSOrigins:     cfg.Server.CORSOrigins,
			RateLimitReqs:   cfg.Server.RateLimitReqs,
			RateLimitWindow: cfg.Server.RateLimitWindow,
		}),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	g.Go(func() error {
		logging.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logging.Error().Err(err).Msg("server stopped with error")
	}

	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logging.Info().Dur("uptime", time.Since(start)).Msg("shutdown complete")
}
