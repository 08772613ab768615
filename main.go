package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"opine/handlers"
	"opine/utils"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found, continuing..")
		}
	}
	log.Println("environment:", os.Getenv("APP_ENV"))

	pgDSN := os.Getenv("DATABASE_URL")

	// Initialize the database connection pool
	dbPool, pgErr := utils.OpenDB(pgDSN)
	if pgErr != nil {
		log.Fatalf("Failed to connect to database: %v", pgErr)
	}
	defer dbPool.Close()

	if err := utils.Migrate(context.Background(), dbPool); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	redisDSN := os.Getenv("REDIS_URL")
	redisPool := utils.OpenRedisPool(redisDSN)
	defer redisPool.Close()

	// Set up the HTTP server and handlers
	mux := http.NewServeMux()

	// File server for static files
	fileServer := http.FileServer(http.Dir("./ui/static/"))
	mux.Handle("/static/", http.StripPrefix("/static", fileServer))

	// HTTP handlers
	mux.HandleFunc("/{$}", func(w http.ResponseWriter, r *http.Request) {
		handlers.HomeHandler(w, r, redisPool)
	})
	mux.HandleFunc("/register", func(w http.ResponseWriter, r *http.Request) {
		handlers.RegisterHandler(w, r, dbPool, redisPool)
	})
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		handlers.LoginHandler(w, r, dbPool, redisPool)
	})
	mux.HandleFunc("GET /logout", func(w http.ResponseWriter, r *http.Request) {
		handlers.LogOutHandler(w, r, redisPool)
	})
	mux.HandleFunc("GET /users/{id}", func(w http.ResponseWriter, r *http.Request) {
		handlers.UserProfileHandler(w, r, dbPool, redisPool)
	})
	mux.HandleFunc("POST /users/{id}/delete", func(w http.ResponseWriter, r *http.Request) {
		handlers.DeleteUserHandler(w, r, dbPool, redisPool)
	})
	mux.HandleFunc("/users/{id}/feedback/add", func(w http.ResponseWriter, r *http.Request) {
		handlers.AddFeedbackHandler(w, r, dbPool, redisPool)
	})
	mux.HandleFunc("/feedback/{id}/update", func(w http.ResponseWriter, r *http.Request) {
		handlers.UpdateFeedbackHandler(w, r, dbPool, redisPool)
	})
	mux.HandleFunc("POST /feedback/{id}/delete", func(w http.ResponseWriter, r *http.Request) {
		handlers.DeleteFeedbackHandler(w, r, dbPool, redisPool)
	})

	mux.HandleFunc("GET /forgot-password", func(w http.ResponseWriter, r *http.Request) {
		handlers.ForgotPasswordForm(w, r)
	})
	mux.HandleFunc("POST /forgot-password/send-email", func(w http.ResponseWriter, r *http.Request) {
		handlers.SendResetEmailHandler(w, r, dbPool)
	})
	mux.HandleFunc("/forgot-password/verify", func(w http.ResponseWriter, r *http.Request) {
		handlers.VerifyResetHandler(w, r, dbPool, redisPool)
	})
	mux.HandleFunc("/forgot-password/change-password", func(w http.ResponseWriter, r *http.Request) {
		handlers.ChangePasswordHandler(w, r, dbPool, redisPool)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Start the server
	log.Println("Starting server on :" + port)
	log.Fatal(http.ListenAndServe(":"+port, mux))
}
