package server

import (
	"context"
	"net/http"
	"time"

	"portal-notification-service/internal/config"
	hrest "portal-notification-service/internal/handler/http"
	wshandler "portal-notification-service/internal/handler/ws"
	"portal-notification-service/internal/repository"
	"portal-notification-service/internal/router"
	"portal-notification-service/internal/usecase"
	"portal-notification-service/pkg/notifier"
	ws "portal-notification-service/pkg/notifier/ws"
	"portal-notification-service/pkg/template"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func NewServer(cfg config.AppConfig, log *zap.Logger) (*http.Server, error) {
	// --- DB connection ---
	dbpool, err := config.ConnectDB(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	// --- Repos ---
	notifRepo := repository.NewNotificationRepository(dbpool)
	logRepo := repository.NewDeliveryLogRepository(dbpool)
	prefRepo := repository.NewPreferenceRepository(dbpool)
	profileRepo := repository.NewProfileRepository(dbpool)
	practiceRepo := repository.NewPracticeRepository(dbpool)

	// --- Redis (rate limiting) ---
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       0,
	})

	// --- Providers ---
	emailSender := notifier.NewSMTPEmailSender(
		cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From, log)
	smsSender := notifier.NewHTTPSMSSender(
		cfg.SMS.BaseURL, cfg.SMS.APIKey, cfg.SMS.SenderID, cfg.SMS.UserID, cfg.SMS.Password, cfg.SMS.Timeout, log)

	// --- WS manager and handler ---
	wsManager := ws.NewManager(log)
	go wsManager.Heartbeat(30 * time.Second)
	wsHandler := wshandler.NewWSHandler(wsManager, log)

	// --- Templates ---
	tmplService := template.NewService(cfg.EmailTmplDir, cfg.TextTmplDir)

	// --- Usecases ---
	dispatchUC := usecase.NewDispatchUsecase(
		notifRepo, logRepo, prefRepo, profileRepo, practiceRepo,
		emailSender, smsSender, tmplService, wsManager, cfg.PortalBaseURL, log)
	inboxUC := usecase.NewInboxUsecase(notifRepo, prefRepo)

	// --- Handlers ---
	restHandler := hrest.NewNotificationHandler(dispatchUC, inboxUC)

	// --- HTTP routes ---
	r := chi.NewRouter()
	r = router.SetupRoutes(r, restHandler, wsHandler, rdb).(*chi.Mux)

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}, nil
}
