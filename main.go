package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cardifyAPI/handlers"
	"cardifyAPI/internal/broadcast"
	"cardifyAPI/internal/config"
	"cardifyAPI/internal/migrate"
	"cardifyAPI/internal/notification"
	"cardifyAPI/internal/seed"
	"cardifyAPI/internal/storage"
	"cardifyAPI/middleware"
	"cardifyAPI/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	verifyTokens := cfg.Auth.ClerkSecretKey != ""
	if verifyTokens {
		clerk.SetKey(cfg.Auth.ClerkSecretKey)
		log.Println("Clerk initialized successfully")
	} else {
		log.Printf("CLERK_SECRET_KEY not set, actors come from the %s header (default %q)", middleware.ActorHeader, cfg.Auth.DefaultActor)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := storage.Open(ctx, storage.Options{
		Driver:      cfg.Storage.Driver,
		SQLitePath:  cfg.Storage.SQLitePath,
		DatabaseURL: cfg.Storage.DatabaseURL,
		RedisURL:    cfg.Storage.RedisURL,
	})
	if err != nil {
		log.Fatal("Failed to open storage:", err)
	}
	defer func() {
		log.Println("Closing storage...")
		store.Close()
	}()

	var changes broadcast.Broadcaster = broadcast.NewLocal()
	if cfg.NATS.URL != "" {
		natsBroadcaster, err := broadcast.NewNATS(cfg.NATS.URL, cfg.NATS.Subject)
		if err != nil {
			log.Printf("Warning: Could not connect to NATS, changes stay local: %v", err)
		} else {
			changes = natsBroadcaster
			log.Printf("Following storage changes on NATS subject %s", cfg.NATS.Subject)
		}
	}
	defer changes.Close()

	fixtures := seed.Empty()
	if cfg.Storage.SeedOnFirst {
		if fixtures, err = seed.Load(); err != nil {
			log.Fatal("Failed to load fixtures:", err)
		}
	}

	stores, err := services.OpenStores(ctx, services.StoreOptions{
		Namespace:   cfg.Storage.Namespace,
		Storage:     store,
		Broadcaster: changes,
		Migrator:    migrate.New(store, cfg.Storage.Namespace).Default(),
		Fixtures:    fixtures,
	})
	if err != nil {
		log.Fatal("Failed to open record stores:", err)
	}
	defer stores.Close()

	dispatcher := services.NewNotificationDispatcher(cfg.Notifications.Workers, cfg.Notifications.FCMDeviceTokens)
	defer dispatcher.Stop()

	fcmService, err := notification.NewFCMService(ctx, cfg.Notifications.FCMCredentials)
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
	} else {
		dispatcher.SetPushProvider(fcmService)
		log.Println("FCM Push Provider initialized successfully")
	}

	activityLog := services.NewActivityLog(stores.Logs, dispatcher)
	vcardService := services.NewVCardService(stores, activityLog, dispatcher)
	ticketService := services.NewTicketService(stores, activityLog, dispatcher)
	eventService := services.NewEventService(stores, activityLog, dispatcher)
	memberService := services.NewMemberService(stores, activityLog, dispatcher)
	scanService := services.NewScanService(ticketService, dispatcher)
	metricsService := services.NewMetricsService(stores)
	qrService := services.NewQRService(cfg.QR.Size)

	middleware.InitPrometheus(prometheus.DefaultRegisterer)
	services.RegisterMetrics(prometheus.DefaultRegisterer)

	// Initialize handlers
	vcardHandler := handlers.NewVCardHandler(vcardService, qrService)
	ticketHandler := handlers.NewTicketHandler(ticketService, qrService)
	eventHandler := handlers.NewEventHandler(eventService, ticketService)
	memberHandler := handlers.NewMemberHandler(memberService, qrService)
	logHandler := handlers.NewLogHandler(activityLog)
	scanHandler := handlers.NewScanHandler(scanService)
	metricsHandler := handlers.NewMetricsHandler(metricsService)
	notificationHandler := handlers.NewNotificationHandler(dispatcher)

	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	go limiter.Cleanup(bgCtx, 3*time.Minute)
	go scanService.CleanupIdle(bgCtx, time.Minute, 30*time.Minute)

	r := mux.NewRouter()

	// The stream blocks for the life of the socket, so it skips the
	// per-request middleware.
	r.Handle("/api/v1/scan/sessions/{id}/stream",
		middleware.ActorMiddleware(verifyTokens, cfg.Auth.DefaultActor)(http.HandlerFunc(scanHandler.StreamSession))).Methods("GET")

	standardRouter := r.PathPrefix("/").Subrouter()

	standardRouter.Use(middleware.RequestID)
	standardRouter.Use(middleware.Logging)
	standardRouter.Use(limiter.Middleware)
	standardRouter.Use(middleware.MonitorMiddleware)

	standardRouter.Handle("/metrics", middleware.BasicAuthMiddleware(cfg.Metrics.User, cfg.Metrics.Pass)(promhttp.Handler()))

	standardRouter.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if p, ok := store.(storage.Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status": "unhealthy", "error": "storage connection failed"}`))
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "cardify-api"}`))
	}).Methods("GET")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := standardRouter.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.ActorMiddleware(verifyTokens, cfg.Auth.DefaultActor))

	api.HandleFunc("/vcards", vcardHandler.ListVCards).Methods("GET")
	api.HandleFunc("/vcards", vcardHandler.CreateVCard).Methods("POST")
	api.HandleFunc("/vcards/bulk-delete", vcardHandler.BulkDeleteVCards).Methods("POST")
	api.HandleFunc("/vcards/bulk-tags", vcardHandler.BulkTagVCards).Methods("POST")
	api.HandleFunc("/vcards/{id}", vcardHandler.GetVCard).Methods("GET")
	api.HandleFunc("/vcards/{id}", vcardHandler.UpdateVCard).Methods("PATCH")
	api.HandleFunc("/vcards/{id}", vcardHandler.DeleteVCard).Methods("DELETE")
	api.HandleFunc("/vcards/{id}/qr.png", vcardHandler.VCardQR).Methods("GET")
	api.HandleFunc("/vcards/{id}/vcf", vcardHandler.DownloadVCF).Methods("GET")

	api.HandleFunc("/tickets", ticketHandler.ListTickets).Methods("GET")
	api.HandleFunc("/tickets", ticketHandler.CreateTicket).Methods("POST")
	api.HandleFunc("/tickets/bulk-delete", ticketHandler.BulkDeleteTickets).Methods("POST")
	api.HandleFunc("/tickets/bulk-tags", ticketHandler.BulkTagTickets).Methods("POST")
	api.HandleFunc("/tickets/{id}", ticketHandler.GetTicket).Methods("GET")
	api.HandleFunc("/tickets/{id}", ticketHandler.UpdateTicket).Methods("PATCH")
	api.HandleFunc("/tickets/{id}", ticketHandler.DeleteTicket).Methods("DELETE")
	api.HandleFunc("/tickets/{id}/scan-log", ticketHandler.AddScanLogEntry).Methods("POST")
	api.HandleFunc("/tickets/{id}/qr.png", ticketHandler.TicketQR).Methods("GET")

	api.HandleFunc("/events", eventHandler.ListEvents).Methods("GET")
	api.HandleFunc("/events", eventHandler.CreateEvent).Methods("POST")
	api.HandleFunc("/events/bulk-delete", eventHandler.BulkDeleteEvents).Methods("POST")
	api.HandleFunc("/events/{id}", eventHandler.GetEvent).Methods("GET")
	api.HandleFunc("/events/{id}", eventHandler.UpdateEvent).Methods("PATCH")
	api.HandleFunc("/events/{id}", eventHandler.DeleteEvent).Methods("DELETE")
	api.HandleFunc("/events/{id}/tickets", eventHandler.ListEventTickets).Methods("GET")

	api.HandleFunc("/members", memberHandler.ListMembers).Methods("GET")
	api.HandleFunc("/members", memberHandler.CreateMember).Methods("POST")
	api.HandleFunc("/members/bulk-delete", memberHandler.BulkDeleteMembers).Methods("POST")
	api.HandleFunc("/members/{id}", memberHandler.GetMember).Methods("GET")
	api.HandleFunc("/members/{id}", memberHandler.UpdateMember).Methods("PATCH")
	api.HandleFunc("/members/{id}", memberHandler.DeleteMember).Methods("DELETE")
	api.HandleFunc("/members/{id}/payments", memberHandler.AddPayment).Methods("POST")
	api.HandleFunc("/members/{id}/qr.png", memberHandler.MemberQR).Methods("GET")

	api.HandleFunc("/logs", logHandler.ListLogs).Methods("GET")
	api.HandleFunc("/logs", logHandler.ClearLogs).Methods("DELETE")

	api.HandleFunc("/scan/sessions", scanHandler.OpenSession).Methods("POST")
	api.HandleFunc("/scan/sessions/{id}", scanHandler.GetSession).Methods("GET")
	api.HandleFunc("/scan/sessions/{id}", scanHandler.CloseSession).Methods("DELETE")
	api.HandleFunc("/scan/sessions/{id}/frames", scanHandler.SubmitFrame).Methods("POST")
	api.HandleFunc("/scan/sessions/{id}/reset", scanHandler.ResetSession).Methods("POST")
	api.HandleFunc("/scan/sessions/{id}/log", scanHandler.AddLog).Methods("POST")
	api.HandleFunc("/scan/sessions/{id}/camera-error", scanHandler.ReportCameraError).Methods("POST")

	api.HandleFunc("/metrics/summary", metricsHandler.Summary).Methods("GET")
	api.HandleFunc("/metrics/export.csv", metricsHandler.ExportCSV).Methods("GET")

	api.HandleFunc("/notifications", notificationHandler.GetNotifications).Methods("GET")
	api.HandleFunc("/notifications/devices", notificationHandler.RegisterDevice).Methods("POST")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", middleware.ActorHeader, "X-Request-ID"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length", "Content-Disposition", "X-Request-ID"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := ":" + cfg.Server.Port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r), // Pass the root router 'r'
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	scanService.CloseAll()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
