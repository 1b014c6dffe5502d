package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pairup_server/routes"
	"pairup_server/services"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Initialize DynamoDB client and store
	log.Println("Initializing DynamoDB client...")
	dynamoClient := services.InitializeDynamoDBClient()
	dynamoService := &services.DynamoService{Client: dynamoClient}
	store := services.NewDynamoStore(dynamoService)
	log.Println("DynamoDB client initialized.")

	// Initialize Services
	notificationService := services.NewNotificationService(dynamoService)
	groupChatService := services.NewGroupChatService(dynamoService)
	pairMatchService := services.NewPairMatchService(store)
	venueCatalog := &services.VenueCatalog{}
	orchestratorService := services.NewEventOrchestratorService(store, pairMatchService, venueCatalog, notificationService)
	participationService := services.NewEventParticipationService(store, orchestratorService, groupChatService, notificationService)
	reminderService := services.NewEventReminderService(store, notificationService)

	// Start background sweeps
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queueSweeper := &services.Sweeper{
		Name:     "queue",
		Interval: durationFromEnv("QUEUE_SWEEP_INTERVAL", time.Minute),
		Run:      orchestratorService.ProcessAllQueues,
	}
	queueSweeper.Start(ctx)
	defer queueSweeper.Stop()

	reminderSweeper := &services.Sweeper{
		Name:     "reminder",
		Interval: durationFromEnv("REMINDER_SWEEP_INTERVAL", 15*time.Minute),
		Run:      reminderService.SendUpcomingEventReminders,
	}
	reminderSweeper.Start(ctx)
	defer reminderSweeper.Stop()

	// Set up the server port
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Using server port: %s\n", port)

	// Initialize the router
	r := mux.NewRouter()

	// Register a welcome route
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "Welcome to PairUp")
	}).Methods("GET")

	// Register a health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		response := map[string]string{"status": "healthy"}
		json.NewEncoder(w).Encode(response)
	}).Methods("GET")

	// Register routes
	routes.RegisterPairMatchRoutes(r, pairMatchService, participationService)
	routes.RegisterEventRoutes(r, participationService, orchestratorService, reminderService, store)

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	server := &http.Server{Addr: ":" + port, Handler: corsHandler}

	// Shut down cleanly on SIGINT/SIGTERM
	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		<-sigs
		log.Println("Shutting down...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		server.Shutdown(shutdownCtx)
		cancel()
	}()

	// Start the HTTP server
	log.Printf("Starting server on port %s...\n", port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

func durationFromEnv(name string, fallback time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("⚠️ Invalid %s '%s', using %s", name, raw, fallback)
		return fallback
	}
	return d
}
