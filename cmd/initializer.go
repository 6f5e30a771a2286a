package main

import (
	"context"
	"database/sql"
	"log"
	"log/slog"

	"firebase.google.com/go/messaging"
	"github.com/redis/go-redis/v9"

	"bilimBack/internal/config"
	"bilimBack/internal/handlers"
	"bilimBack/internal/lock"
	"bilimBack/internal/repositories"
	"bilimBack/internal/services"
	"bilimBack/utils"
)

type application struct {
	errorLog *log.Logger
	infoLog  *log.Logger
	cfg      config.Config
	db       *sql.DB

	userRepo    *repositories.UserRepository
	sessionRepo *repositories.SessionRepository

	userHandler    *handlers.UserHandler
	courseHandler  *handlers.CourseHandler
	paymentHandler *handlers.PaymentHandler
	adminHandler   *handlers.AdminHandler
	otherHandler   *handlers.OtherHandler

	statsService        *services.StatsService
	subscriptionService *services.SubscriptionService

	statsFeed *StatsFeed
}

func initializeApp(db *sql.DB, rdb *redis.Client, fcmClient *messaging.Client, cfg config.Config, errorLog, infoLog *log.Logger, logger *slog.Logger) (*application, error) {
	// Repositories
	userRepo := &repositories.UserRepository{DB: db}
	sessionRepo := &repositories.SessionRepository{DB: db}
	playlistRepo := &repositories.PlaylistRepository{DB: db}
	courseRepo := &repositories.CourseRepository{DB: db}
	paymentRepo := &repositories.PaymentRepository{DB: db}
	statsRepo := &repositories.StatsRepository{DB: db}
	tokenRepo := &repositories.DeviceTokenRepository{DB: db}

	tokenManager, err := utils.NewManager(cfg.JWT.SigningKey)
	if err != nil {
		return nil, err
	}
	storage, err := utils.NewS3Storage(utils.S3Config{
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		Bucket:    cfg.S3.Bucket,
		Region:    cfg.S3.Region,
		Endpoint:  cfg.S3.Endpoint,
	})
	if err != nil {
		return nil, err
	}

	gateway, err := services.NewRazorpayService(services.RazorpayConfig{
		KeyID:     cfg.Razorpay.KeyID,
		KeySecret: cfg.Razorpay.KeySecret,
		BaseURL:   cfg.Razorpay.BaseURL,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	// Services
	mailService := services.NewMailService(services.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	pushService := &services.PushService{Client: fcmClient, Tokens: tokenRepo, Logger: logger}
	statsService := services.NewStatsService(userRepo, statsRepo, logger)

	userService := &services.UserService{
		Users:       userRepo,
		Sessions:    sessionRepo,
		Playlist:    playlistRepo,
		Courses:     courseRepo,
		Tokens:      tokenManager,
		Storage:     storage,
		Mail:        mailService,
		Stats:       statsService,
		FrontendURL: cfg.Frontend.URL,
		Logger:      logger,
	}
	courseService := &services.CourseService{
		Courses: courseRepo,
		Storage: storage,
		Logger:  logger,
	}
	subscriptionService := &services.SubscriptionService{
		Users:         userRepo,
		Payments:      paymentRepo,
		Gateway:       gateway,
		Locker:        lock.NewLocker(rdb),
		PlanID:        cfg.Razorpay.PlanID,
		WebhookSecret: []byte(cfg.Razorpay.KeySecret),
		RefundDays:    cfg.Razorpay.RefundDays,
		Logger:        logger,
	}
	userService.Subscriptions = subscriptionService
	subscriptionService.Events = services.SubscriptionEvents{
		SubscriptionChanged: statsService.Notify,
		Activated: func(userID int) {
			go pushService.NotifySubscriptionActivated(context.Background(), userID)
		},
	}

	return &application{
		errorLog:    errorLog,
		infoLog:     infoLog,
		cfg:         cfg,
		db:          db,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		userHandler: &handlers.UserHandler{Service: userService},
		courseHandler: &handlers.CourseHandler{
			Service: courseService,
			Users:   userService,
		},
		paymentHandler: &handlers.PaymentHandler{
			Service:     subscriptionService,
			FrontendURL: cfg.Frontend.URL,
		},
		adminHandler:        &handlers.AdminHandler{Stats: statsService},
		otherHandler:        &handlers.OtherHandler{Mail: mailService, Push: pushService},
		statsService:        statsService,
		subscriptionService: subscriptionService,
	}, nil
}
