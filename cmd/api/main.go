package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/excellence-hub/excellence-forms-api/internal/config"
	"github.com/excellence-hub/excellence-forms-api/internal/database"
	"github.com/excellence-hub/excellence-forms-api/internal/handler"
	"github.com/excellence-hub/excellence-forms-api/internal/middleware"
	"github.com/excellence-hub/excellence-forms-api/internal/models"
	"github.com/excellence-hub/excellence-forms-api/internal/repository"
	"github.com/excellence-hub/excellence-forms-api/internal/router"
	"github.com/excellence-hub/excellence-forms-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Person{},
		&models.Form{},
		&models.FormSection{},
		&models.SectionField{},
		&models.FieldOption{},
		&models.SectionPermission{},
		&models.FormInstance{},
		&models.FieldValue{},
		&models.Notification{},
		&models.AuditEntry{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not configured, caching and fan-out disabled")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL, nats.Name(cfg.AppName))
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	var emailSender service.EmailSender
	if cfg.SMTPConfigured() {
		emailSender = service.NewSMTPEmailSender(service.SMTPSettings{
			Host:      cfg.SMTPHost,
			Port:      cfg.SMTPPort,
			Username:  cfg.SMTPUsername,
			Password:  cfg.SMTPPassword,
			FromEmail: cfg.SMTPFromEmail,
			FromName:  cfg.SMTPFromName,
		}, logger)
	} else {
		emailSender = service.NewLogEmailSender(logger)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	formRepo := repository.NewFormRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	fieldRepo := repository.NewFieldRepository(db)
	instanceRepo := repository.NewInstanceRepository(db)
	valueRepo := repository.NewFieldValueRepository(db)
	permissionRepo := repository.NewPermissionRepository(db)
	personRepo := repository.NewPersonRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	auditService := service.NewAuditService(auditRepo, logger)
	validationService := service.NewValidationService(formRepo, sectionRepo, fieldRepo, instanceRepo, valueRepo, logger)
	notificationService := service.NewNotificationService(notificationRepo, instanceRepo, formRepo, sectionRepo, personRepo, emailSender, redisClient, natsConn, cfg.NotificationChannel, logger)
	instanceService := service.NewInstanceService(instanceRepo, formRepo, fieldRepo, valueRepo, personRepo, validationService, notificationService, auditService, validate, logger)
	formService := service.NewFormService(formRepo, sectionRepo, fieldRepo, validationService, auditService, validate, logger)
	permissionService := service.NewPermissionService(permissionRepo, sectionRepo, personRepo, validate, logger)
	statisticsService := service.NewStatisticsService(instanceRepo, formRepo, redisClient, cfg.StatsCacheTTL, logger)
	authService := service.NewAuthService(personRepo, validate, cfg.JWTSecret, cfg.JWTTokenTTL, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:         handler.NewAuthHandler(authService, logger),
		FormHandler:         handler.NewFormHandler(formService, validationService, logger),
		SectionHandler:      handler.NewSectionHandler(formService, logger),
		FieldHandler:        handler.NewFieldHandler(formService, logger),
		InstanceHandler:     handler.NewInstanceHandler(instanceService, validationService, logger),
		PermissionHandler:   handler.NewPermissionHandler(permissionService, logger),
		StatisticsHandler:   handler.NewStatisticsHandler(statisticsService, logger),
		NotificationHandler: handler.NewNotificationHandler(notificationService, logger),
		AuditHandler:        handler.NewAuditHandler(auditService, logger),
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
