package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xavierca1/foreclosure-leads/internal/app"
	"github.com/xavierca1/foreclosure-leads/internal/config"
	"github.com/xavierca1/foreclosure-leads/internal/infra/cache"
	"github.com/xavierca1/foreclosure-leads/internal/infra/database"
	"github.com/xavierca1/foreclosure-leads/internal/infra/http/handlers"
	"github.com/xavierca1/foreclosure-leads/internal/infra/http/middleware"
	"github.com/xavierca1/foreclosure-leads/internal/infra/integration/llm"
	"github.com/xavierca1/foreclosure-leads/internal/infra/integration/tts"
	"github.com/xavierca1/foreclosure-leads/internal/infra/logger"
	"github.com/xavierca1/foreclosure-leads/internal/infra/queue"
	"github.com/xavierca1/foreclosure-leads/internal/infra/telephony"
	"github.com/xavierca1/foreclosure-leads/internal/infra/worker"
	"github.com/xavierca1/foreclosure-leads/internal/usecase"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger ainda não existe
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, cfg.ServiceName)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDBConnection(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal("migrations failed", zap.Error(err))
	}

	// 1. Repositórios
	leadRepo := database.NewLeadRepository(db)
	callRepo := database.NewCallRepository(db)
	usageRepo := database.NewVoiceUsageRepository(db)

	rdb := cache.NewRedisClient(cfg.Redis)
	defer rdb.Close()
	if err := cache.Ping(ctx, rdb); err != nil {
		log.Warn("redis unavailable, voice limits will fail until it comes back", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}
	counters := cache.NewUsageCounter(rdb)

	// 2. Notificações
	dispatcher, err := app.NewDispatcher(cfg, leadRepo, log)
	if err != nil {
		log.Fatal("notification setup failed", zap.Error(err))
	}

	// servidor e workers morrem juntos: erro em um cancela o ctx dos outros
	g, gctx := errgroup.WithContext(ctx)

	var publisher usecase.NotificationPublisher = usecase.NewInlinePublisher(dispatcher)
	var rabbitPing handlers.Pinger
	if cfg.RabbitMQURL != "" {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			log.Fatal("rabbitmq connection failed", zap.Error(err))
		}
		defer rabbitMQ.Close()

		publisher = queue.NewProducer(rabbitMQ.Ch)
		rabbitPing = handlers.PingFunc(func(context.Context) error {
			if !rabbitMQ.Healthy() {
				return errors.New("connection closed")
			}
			return nil
		})

		// 3. Worker (consome a fila e chama o dispatcher)
		w := queue.NewWorker(rabbitMQ.Ch, dispatcher, log.Named("queue"))
		g.Go(func() error {
			return w.Start(gctx, queue.QueueName)
		})
	}

	followUps := usecase.NewRunFollowUpsUseCase(leadRepo, dispatcher, log)
	if cfg.FollowUpInterval > 0 {
		fw := worker.NewFollowUpWorker(followUps, cfg.FollowUpInterval, log.Named("follow-ups"))
		g.Go(func() error {
			fw.Start(gctx)
			return nil
		})
	}

	classifier, err := llm.New(ctx, cfg.LLM, log)
	if err != nil {
		log.Fatal("llm setup failed", zap.Error(err))
	}

	// 4. UseCases
	submitUC := usecase.NewSubmitLeadUseCase(leadRepo, publisher, log)
	getLeadUC := usecase.NewGetLeadUseCase(leadRepo)
	updateStatusUC := usecase.NewUpdateLeadStatusUseCase(leadRepo, dispatcher)
	callUC := usecase.NewHandleCallUseCase(callRepo, classifier, log)
	analyticsUC := usecase.NewCallAnalyticsUseCase(callRepo)
	usageUC := usecase.NewRecordVoiceUsageUseCase(usageRepo, counters, log)
	limitsUC := usecase.NewCheckVoiceLimitsUseCase(counters, cfg.TierLimits)
	speechUC := usecase.NewSynthesizeSpeechUseCase(
		tts.NewOpenAI(cfg.LLM.OpenAIURL, cfg.LLM.OpenAIKey, log.Named("tts")),
		limitsUC,
		usageUC,
		log,
	)

	// 5. Handlers
	limiter := handlers.NewRateLimiter(10, time.Minute) // 10 req/min por IP
	go limiter.Cleanup(gctx, 10*time.Minute)

	leadHandler := handlers.NewLeadHandler(submitUC, getLeadUC, updateStatusUC, limiter, log)
	notificationHandler := handlers.NewNotificationHandler(dispatcher, followUps, log)
	voiceHandler := handlers.NewVoiceHandler(
		callUC,
		telephony.NewRenderer(cfg.Telephony.AgentPhone, cfg.Telephony.SchedulingPhone, cfg.Telephony.WebhookBaseURL),
		usageUC,
		limitsUC,
		log,
	)
	speechHandler := handlers.NewSpeechHandler(speechUC, log)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsUC, log)
	healthHandler := handlers.NewHealthHandler(
		db,
		rabbitPing,
		handlers.PingFunc(func(ctx context.Context) error { return cache.Ping(ctx, rdb) }),
		version,
	)

	// 6. Router
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log.Named("http")))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{cfg.SiteURL, "http://localhost:5173"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Client-Info", "Apikey"},
		MaxAge:         300,
	}))

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// chamado pelo provedor de telefonia, sem JWT
		r.Post("/voice/webhook", voiceHandler.Webhook)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTSecret))

			r.Post("/leads", leadHandler.Submit)
			r.Get("/leads/{id}", leadHandler.Get)
			r.Patch("/leads/{id}/status", leadHandler.UpdateStatus)

			r.Post("/notifications", notificationHandler.Dispatch)
			r.Post("/follow-ups/run", notificationHandler.RunFollowUps)

			r.Get("/calls/analytics", analyticsHandler.Handle)

			r.Post("/voice/usage", voiceHandler.RecordUsage)
			r.Post("/voice/limits", voiceHandler.CheckLimits)
			r.Post("/voice/tts", speechHandler.Synthesize)
		})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", zap.Error(err))
	}
}
