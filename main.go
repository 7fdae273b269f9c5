package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"evently/auth"
	"evently/categories"
	"evently/config"
	"evently/db"
	"evently/events"
	"evently/globals"
	"evently/mq"
	"evently/orders"
	"evently/ratelim"
	"evently/razorpay"
	"evently/rdx"
	"evently/routes"

	"github.com/joho/godotenv"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
)

// securityHeaders applies a set of recommended HTTP security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs each request method, path, remote address, and duration.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		duration := time.Since(start)
		log.Printf("%s %s from %s – %v", r.Method, r.RequestURI, r.RemoteAddr, duration)
	})
}

// Index is a simple health check handler.
func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

func setupRouter(database *db.Database, cache *rdx.Cache, emitter *mq.Emitter, gateway *razorpay.Client, cfg config.Config) *httprouter.Router {
	router := httprouter.New()
	router.GET("/health", Index)

	rateLimiter := ratelim.NewRateLimiter()

	authSvc := auth.NewService(database)
	eventSvc := events.NewService(database, cache, emitter)
	categorySvc := categories.NewService(database)
	orderSvc := orders.NewService(database, gateway, cache, emitter, cfg.TicketSecret)

	routes.AddAuthRoutes(router, authSvc, rateLimiter)
	routes.AddEventsRoutes(router, eventSvc)
	routes.AddCategoryRoutes(router, categorySvc)
	routes.AddOrderRoutes(router, orderSvc, rateLimiter)
	routes.AddStaticRoutes(router)

	return router
}

func main() {
	// load .env if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	cfg := config.Load()
	globals.JwtSecret = []byte(cfg.JWTSecret)

	port := cfg.Port
	if port[0] != ':' {
		port = ":" + port
	}

	client, err := db.Connect(context.Background(), cfg.MongoURI)
	if err != nil {
		log.Fatalf("❌ Failed to connect to MongoDB: %v", err)
	}
	database := db.New(client, cfg.MongoDB)
	if err := database.EnsureIndexes(context.Background()); err != nil {
		log.Fatalf("❌ Failed to create indexes: %v", err)
	}

	cache := rdx.NewCache(cfg.RedisAddr)
	emitter := mq.NewEmitter(cache)
	gateway := razorpay.New(cfg.RazorpayKeyID, cfg.RazorpaySecret)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	go emitter.StartIndexingWorker(workerCtx)

	router := setupRouter(database, cache, emitter, gateway, cfg)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // lock down in production
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)

	handler := loggingMiddleware(securityHeaders(corsHandler))

	server := &http.Server{
		Addr:              port,
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server listening on %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe error: %v", err)
		}
	}()

	// wait for interrupt or SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("🛑 Shutdown signal received; shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Graceful shutdown failed: %v", err)
	}

	stopWorker()
	if err := cache.Close(); err != nil {
		log.Println("Redis close error:", err)
	}
	if err := database.Close(ctx); err != nil {
		log.Println("MongoDB disconnect error:", err)
	}

	log.Println("✅ Server stopped cleanly")
}
