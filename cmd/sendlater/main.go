package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"sendlater/gemini"
	"sendlater/internal/biz/repo"
	"sendlater/internal/biz/usecase"
	"sendlater/internal/conf"
	"sendlater/internal/data"
	"sendlater/internal/server"
	"sendlater/internal/service"
	"sendlater/line"
	"sendlater/trello"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := conf.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Entity store
	var store repo.StoreRepo
	var err error
	switch cfg.Store.Backend {
	case "sqlite":
		dbPath := cfg.Store.DBPath
		if dbPath == "" {
			dbPath = "sendlater.db"
		}
		store, err = data.NewSQLiteStore(dbPath)
		if err != nil {
			log.Fatalf("Failed to open store: %v", err)
		}
	default:
		trelloCli := trello.NewClient(cfg.Trello.APIKey, cfg.Trello.Token)
		store = data.NewTrelloStore(trelloCli, data.TrelloListIDs{
			Scheduled: cfg.Trello.ScheduledListID,
			Contacts:  cfg.Trello.ContactsListID,
			Sent:      cfg.Trello.SentListID,
			Admins:    cfg.Trello.AdminsListID,
		}, cfg.Trello.CustomFieldContact)
	}
	defer store.Close()

	// Messaging channel
	lineCli := line.NewClient(cfg.Line.ChannelToken)
	messenger := data.NewLineMessenger(lineCli)

	// Language model (optional)
	var completion repo.CompletionRepo
	if cfg.Gemini.APIKey != "" {
		completion = data.NewGeminiCompletion(gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.Model))
	} else {
		log.Println("No GEMINI_API_KEY, quick commands only")
	}

	// Core usecases
	resolver := usecase.NewResolverUsecase(completion, usecase.ResolverConfig{
		Floor:      cfg.Resolver.Floor,
		AutoAccept: cfg.Resolver.AutoAccept,
	})
	interpreter := usecase.NewInterpreterUsecase(completion)
	dispatcher := usecase.NewDispatcherUsecase(store, resolver, usecase.DispatcherConfig{
		DefaultSendHour: cfg.Schedule.DefaultSendHour,
	})
	sweepUC := usecase.NewSweepUsecase(store, messenger)

	bot := service.NewBotService(interpreter, dispatcher, store, messenger)

	runner := service.NewSweepRunner(sweepUC, time.Duration(cfg.Sweep.IntervalMinutes)*time.Minute)
	runner.Start()

	srv := server.New(bot, sweepUC, cfg.Line.ChannelSecret, cfg.Sweep.Secret, cfg.Port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nShutting down...")
		runner.Stop()
		srv.Stop()
		store.Close()
		os.Exit(0)
	}()

	fmt.Println("Starting SendLater bot...")
	if err := srv.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
