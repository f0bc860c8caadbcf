package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"cloud.google.com/go/firestore"
	"firebase.google.com/go/v4/auth"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"questifyAPI/handlers"
	firebaseinit "questifyAPI/internal/firebase"
	"questifyAPI/internal/identity"
	"questifyAPI/internal/notification"
	"questifyAPI/internal/remote"
	"questifyAPI/internal/store"
	"questifyAPI/internal/store/postgres"
	"questifyAPI/internal/store/sqlite"
	"questifyAPI/middleware"
	"questifyAPI/services"

	_ "net/http/pprof"
)

var (
	localStore          store.Store
	remoteStore         *remote.Store
	stateService        *services.StateService
	statsService        *services.StatsService
	notificationService *services.NotificationService
	watchHub            *services.WatchHub
	authProvider        identity.Provider
	tokenVerifier       middleware.TokenVerifier
	fcmService          *notification.FCMService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Local store: postgres when DATABASE_URL is set, sqlite otherwise.
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		poolConfig, err := pgxpool.ParseConfig(dbURL)
		if err != nil {
			log.Fatal("Failed to parse database URL:", err)
		}

		poolConfig.MaxConns = 25
		poolConfig.MinConns = 5
		poolConfig.MaxConnLifetime = time.Hour
		poolConfig.MaxConnIdleTime = 30 * time.Minute
		poolConfig.HealthCheckPeriod = time.Minute

		dbPool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			log.Fatal("Failed to create connection pool:", err)
		}
		if err := dbPool.Ping(ctx); err != nil {
			log.Fatal("Failed to ping database:", err)
		}

		pgStore := postgres.NewStore(dbPool)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			log.Fatal("Failed to ensure database schema:", err)
		}
		localStore = pgStore
		log.Println("Successfully connected to Postgres")
	} else {
		sqlitePath := os.Getenv("SQLITE_PATH")
		if sqlitePath == "" {
			sqlitePath = "./questify.db"
		}
		sqliteStore, err := sqlite.Open(sqlitePath)
		if err != nil {
			log.Fatal("Failed to open sqlite store:", err)
		}
		localStore = sqliteStore
		log.Printf("Using sqlite store at %s", sqlitePath)
	}

	// Firebase is optional: without credentials there is no remote sync,
	// no push, and no google auth mode.
	var authClient *auth.Client
	var fsClient *firestore.Client

	app, err := firebaseinit.NewApp(ctx)
	if err != nil {
		log.Printf("Warning: Could not initialize Firebase: %v", err)
	}
	if app != nil {
		if authClient, err = app.Auth(ctx); err != nil {
			log.Printf("Warning: Could not initialize Firebase auth: %v", err)
		}
		if fsClient, err = app.Firestore(ctx); err != nil {
			log.Printf("Warning: Could not initialize Firestore: %v", err)
		}
		if fcmService, err = notification.NewFCMService(ctx, app); err != nil {
			log.Printf("Warning: Could not initialize FCM: %v", err)
		} else {
			log.Println("FCM Push Provider initialized successfully")
		}
	}
	remoteStore = remote.NewStore(fsClient)

	providerName := os.Getenv("AUTH_PROVIDER")
	if providerName == "" {
		if authClient != nil && os.Getenv("GOOGLE_API_KEY") != "" {
			providerName = "google"
		} else {
			providerName = "local"
		}
	}
	switch providerName {
	case "google":
		if authClient == nil {
			log.Fatal("AUTH_PROVIDER=google requires Firebase credentials")
		}
		googleProvider, err := identity.NewGoogleProvider(ctx, os.Getenv("GOOGLE_API_KEY"))
		if err != nil {
			log.Fatal("Failed to initialize google auth provider:", err)
		}
		authProvider = googleProvider
		tokenVerifier = identity.NewFirebaseVerifier(authClient)
	case "local":
		if os.Getenv("AUTH_JWT_SECRET") == "" {
			log.Println("Warning: AUTH_JWT_SECRET is not set, sign-up and sign-in are disabled")
		}
		localProvider := identity.NewLocalProvider(localStore, os.Getenv("AUTH_JWT_SECRET"))
		authProvider = localProvider
		tokenVerifier = localProvider
	default:
		log.Fatalf("Unknown AUTH_PROVIDER %q (want google or local)", providerName)
	}
	log.Printf("Auth provider: %s", providerName)

	stateService = services.NewStateService(localStore, remoteStore)
	watchHub = services.NewWatchHub()
	notificationService = services.NewNotificationService(localStore)
	if fcmService != nil {
		notificationService.SetPushProvider(fcmService)
	}
	stateService.SetWatchHub(watchHub)
	stateService.SetNotifier(notificationService)
	statsService = services.NewStatsService(stateService)

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing stores...")
		stateService.Stop()
		remoteStore.Close()
		localStore.Close()
	}()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authProvider, stateService)
	stateHandler := handlers.NewStateHandler(stateService, watchHub)
	questHandler := handlers.NewQuestHandler(stateService)
	habitHandler := handlers.NewHabitHandler(stateService)
	focusHandler := handlers.NewFocusHandler(stateService)
	userHandler := handlers.NewUserHandler(stateService, statsService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	docHandler := handlers.NewDocHandler()

	r := mux.NewRouter()

	// The websocket route skips the monitoring wrapper: the wrapped
	// ResponseWriter cannot hijack the connection for the upgrade.
	r.Handle("/api/v1/state/watch", middleware.AuthMiddleware(tokenVerifier)(http.HandlerFunc(stateHandler.Watch)))

	standardRouter := r.PathPrefix("/").Subrouter()

	go middleware.CleanupVisitors()

	standardRouter.Use(middleware.RateLimitMiddleware)
	standardRouter.Use(middleware.MonitorMiddleware)

	standardRouter.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	standardRouter.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	standardRouter.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := localStore.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "store connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "questify-api"}`))
	}).Methods("GET")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := standardRouter.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth/sign-up", authHandler.SignUp).Methods("POST")
	api.HandleFunc("/auth/sign-in", authHandler.SignIn).Methods("POST")
	api.HandleFunc("/min-version", docHandler.GetAppMinVersion).Methods("GET")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware(tokenVerifier))

	protected.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST")

	protected.HandleFunc("/state", stateHandler.GetState).Methods("GET")
	protected.HandleFunc("/state/onboarding", stateHandler.CompleteOnboarding).Methods("POST")
	protected.HandleFunc("/state/mood", stateHandler.SetMood).Methods("PUT")

	protected.HandleFunc("/quests", questHandler.CreateQuest).Methods("POST")
	protected.HandleFunc("/quests/templates", questHandler.GetTemplates).Methods("GET")
	protected.HandleFunc("/quests/{id}", questHandler.UpdateQuest).Methods("PUT")
	protected.HandleFunc("/quests/{id}", questHandler.DeleteQuest).Methods("DELETE")
	protected.HandleFunc("/quests/{id}/complete", questHandler.CompleteQuest).Methods("POST")
	protected.HandleFunc("/quests/{id}/subtasks/{subtaskId}/toggle", questHandler.ToggleSubtask).Methods("POST")

	protected.HandleFunc("/habits", habitHandler.CreateHabit).Methods("POST")
	protected.HandleFunc("/habits/{id}/toggle", habitHandler.ToggleHabit).Methods("POST")

	protected.HandleFunc("/focus-sessions", focusHandler.CompleteFocusSession).Methods("POST")

	protected.HandleFunc("/user/stats", userHandler.GetUserStats).Methods("GET")
	protected.HandleFunc("/user/profile", userHandler.UpdateProfile).Methods("PUT")

	protected.HandleFunc("/notifications", notificationHandler.GetNotifications).Methods("GET")
	protected.HandleFunc("/notifications/unread-count", notificationHandler.GetUnreadCount).Methods("GET")
	protected.HandleFunc("/notifications/{id}/read", notificationHandler.MarkAsRead).Methods("PUT")
	protected.HandleFunc("/notifications/read-all", notificationHandler.MarkAllAsRead).Methods("PUT")
	protected.HandleFunc("/notifications/register-device", notificationHandler.RegisterDevice).Methods("POST")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
