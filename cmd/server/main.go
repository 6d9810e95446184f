package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/citimr/aid-portal/internal/application/port"
	"github.com/citimr/aid-portal/internal/application/service"
	"github.com/citimr/aid-portal/internal/auth"
	"github.com/citimr/aid-portal/internal/config"
	"github.com/citimr/aid-portal/internal/domain/lifecycle"
	httpserver "github.com/citimr/aid-portal/internal/interfaces/http"
	"github.com/citimr/aid-portal/internal/mail"
	"github.com/citimr/aid-portal/internal/repository"
	"github.com/citimr/aid-portal/internal/storage"
	"github.com/citimr/aid-portal/pkg/database"
	"github.com/citimr/aid-portal/pkg/logger"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting aid portal",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	db, err := database.Open(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, log)
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	migrator := database.NewMigrator(db, log)
	if err := migrator.Run(ctx, repository.Migrations); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	fileStore, err := storage.NewLocalStore(cfg.Storage.UploadDir, log)
	if err != nil {
		log.Fatal("Failed to initialize file storage", zap.Error(err))
	}

	// Repositories
	requestRepo := repository.NewRequestRepository(db, log)
	userRepo := repository.NewUserRepository(db, log)
	notificationRepo := repository.NewNotificationRepository(db, log)
	txManager := repository.NewTxManager(db)

	// Mail delivery: HTTP relay when configured, log-only otherwise.
	var sender port.MailSender
	if cfg.Mail.Endpoint != "" {
		sender = mail.NewRelaySender(cfg.Mail.RelayConfig(), log)
	} else {
		sender = mail.NewLogSender(log)
	}

	serviceLogger := &zapLoggerAdapter{logger: log}

	notifier := service.NewNotifier(notificationRepo, sender, cfg.Mail.AdminCopy, serviceLogger)
	if err := notifier.Start(ctx); err != nil {
		log.Fatal("Failed to start notification dispatcher", zap.Error(err))
	}
	defer notifier.Stop()

	// Services
	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	machine := lifecycle.NewMachine()

	authService := service.NewAuthService(userRepo, issuer, cfg.Auth.AdminAccessCode, serviceLogger)
	requestService := service.NewRequestService(requestRepo, userRepo, fileStore, txManager, notifier, serviceLogger)
	reviewService := service.NewReviewService(requestRepo, userRepo, txManager, machine, notifier, serviceLogger)
	accountabilityService := service.NewAccountabilityService(requestRepo, userRepo, txManager, machine, notifier, serviceLogger)

	server := httpserver.NewServer(
		httpserver.ServerConfig{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		authService,
		requestService,
		reviewService,
		accountabilityService,
		fileStore,
		issuer,
		serviceLogger,
	)

	if err := server.Start(ctx); err != nil {
		log.Fatal("HTTP server failed", zap.Error(err))
	}

	log.Info("Server exited")
}

// zapLoggerAdapter adapts zap.Logger to the service and http Logger
// interfaces.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", keysAndValues[i])
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
