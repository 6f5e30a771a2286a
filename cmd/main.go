package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"google.golang.org/api/option"

	"bilimBack/internal/config"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}
	cfg := config.LoadConfig()

	addr := cfg.Server.Address
	if addr == "" {
		addr = ":4001"
	}
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	flagAddr := flag.String("addr", addr, "HTTP network address")
	flag.Parse()

	infoLog := log.New(os.Stdout, "INFO\t", log.Ldate|log.Ltime)
	errorLog := log.New(os.Stderr, "ERROR\t", log.Ldate|log.Ltime|log.Lshortfile)
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	db, err := openDB(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		errorLog.Fatal(err)
	}
	defer db.Close()

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
	}

	fcmClient := newFCMClient(cfg, errorLog)

	app, err := initializeApp(db, rdb, fcmClient, cfg, errorLog, infoLog, logger)
	if err != nil {
		errorLog.Fatal(err)
	}

	app.statsFeed = NewStatsFeed(infoLog)
	go app.statsFeed.Run()
	app.statsService.OnUpdate = app.statsFeed.Broadcast

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go app.statsService.Run(ctx, 10*time.Minute)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.Frontend.URL, "http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: true,
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Refresh-Token"},
	})

	srv := &http.Server{
		Addr:         *flagAddr,
		ErrorLog:     errorLog,
		Handler:      c.Handler(app.routes()),
		IdleTimeout:  time.Minute,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	infoLog.Printf("Starting server on %s", *flagAddr)
	if err := srv.ListenAndServe(); err != nil {
		errorLog.Fatal(err)
	}
}

func openDB(driver, dsn string) (*sql.DB, error) {
	if driver == "" {
		driver = "mysql"
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// newFCMClient is best-effort: without Firebase credentials push delivery is
// disabled and everything else keeps working.
func newFCMClient(cfg config.Config, errorLog *log.Logger) *messaging.Client {
	if cfg.Firebase.CredentialsFile == "" {
		return nil
	}

	ctx := context.Background()
	fbApp, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(cfg.Firebase.CredentialsFile))
	if err != nil {
		errorLog.Printf("firebase init: %v", err)
		return nil
	}
	client, err := fbApp.Messaging(ctx)
	if err != nil {
		errorLog.Printf("firebase messaging: %v", err)
		return nil
	}
	return client
}
