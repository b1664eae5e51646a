package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"downtime-panel-bot/internal/config"
	"downtime-panel-bot/internal/discord"
	"downtime-panel-bot/internal/downtime"
	"downtime-panel-bot/internal/events"
	"downtime-panel-bot/internal/handlers"
	"downtime-panel-bot/internal/logging"
	"downtime-panel-bot/internal/maintenance"
	"downtime-panel-bot/internal/models"
	"downtime-panel-bot/internal/mq"
	"downtime-panel-bot/internal/storage"
	"downtime-panel-bot/internal/telegram"
	"downtime-panel-bot/internal/timeparse"
	"downtime-panel-bot/internal/wizard"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logr, err := logging.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logr.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Storage ---
	persister, err := storage.Open(ctx, storage.Options{
		Backend:       cfg.StorageBackend,
		DataFile:      cfg.DataFile,
		DatabaseURL:   cfg.DatabaseURL,
		RedisURL:      cfg.RedisURL,
		RedisKey:      cfg.RedisKey,
		S3Bucket:      cfg.S3Bucket,
		S3Key:         cfg.S3Key,
		S3Region:      cfg.S3Region,
		LegacyGuildID: cfg.LegacyGuildID(),
	}, logr.Named("storage"))
	if err != nil {
		logr.Fatal("storage", zap.Error(err))
	}
	defer persister.Close()
	logr.Info("storage ready", zap.String("backend", cfg.StorageBackend))

	// --- Event catalogue ---
	catalogue, err := events.Load(cfg.EventsFile)
	if err != nil {
		logr.Fatal("events", zap.Error(err))
	}

	// --- Scheduling core ---
	resolver := timeparse.NewResolver(nil)
	parserOpts := []timeparse.ParserOption{}
	if cfg.DebugTimeParse {
		parserOpts = append(parserOpts, timeparse.WithDebugLog(logr.Named("timeparse")))
	}
	parser := timeparse.NewParser(parserOpts...)
	store := downtime.NewStore()

	// --- RabbitMQ (optional) ---
	var notifier maintenance.Notifier
	var consumer *mq.Consumer
	if cfg.RabbitMQURL != "" {
		publisher, err := mq.NewPublisher(cfg.RabbitMQURL, logr.Named("mq"))
		if err != nil {
			logr.Fatal("rabbitmq publisher", zap.Error(err))
		}
		defer publisher.Close()
		notifier = mq.NewChangeNotifier(publisher)

		consumer, err = mq.NewConsumer(cfg.RabbitMQURL, logr.Named("mq"))
		if err != nil {
			logr.Fatal("rabbitmq consumer", zap.Error(err))
		}
		defer consumer.Close()
		logr.Info("rabbitmq connected")
	}

	svc := maintenance.New(maintenance.Config{
		Scheduler: downtime.NewScheduler(store, resolver, parser),
		Store:     store,
		Persister: persister,
		Catalogue: catalogue,
		Notifier:  notifier,
		Log:       logr.Named("scheduler"),
	})
	if err := svc.Load(ctx); err != nil {
		logr.Fatal("load state", zap.Error(err))
	}

	// --- Discord ---
	if cfg.DiscordToken != "" {
		dcBot, err := discord.New(cfg.DiscordToken, svc, resolver, discord.Options{
			SyncGuildIDs:        cfg.SyncGuildIDs,
			AllowedGuildIDs:     cfg.AllowedGuildIDs,
			ClearGlobalCommands: cfg.ClearGlobalCommands,
			RoleName:            cfg.DowntimeRoleName,
		}, logr.Named("bot"))
		if err != nil {
			logr.Fatal("discord", zap.Error(err))
		}
		svc.AddSurface(models.PlatformDiscord, dcBot.Surface())
		if err := dcBot.Start(); err != nil {
			logr.Fatal("discord", zap.Error(err))
		}
		defer func() { _ = dcBot.Stop() }()
		logr.Info("discord bot started")
	}

	// --- Telegram ---
	if cfg.TelegramToken != "" {
		wiz := wizard.New(wizard.Config{
			Resolver:    resolver,
			Parser:      parser,
			Applier:     svc,
			StepTimeout: time.Duration(cfg.WizardStepTimeout) * time.Second,
		})
		tgBot, err := telegram.New(cfg.TelegramToken, svc, wiz, telegram.Options{
			AllowedChatIDs: cfg.AllowedChatIDs,
		}, logr.Named("bot"))
		if err != nil {
			logr.Fatal("telegram", zap.Error(err))
		}
		svc.AddSurface(models.PlatformTelegram, tgBot.Surface())
		go tgBot.Start()
		defer tgBot.Stop()
		go tgBot.RunWizardSweeper(ctx, 15*time.Second)
		logr.Info("telegram bot started")
	}

	// --- Panel refresher ---
	go svc.StartRefresher(ctx, time.Duration(cfg.PanelRefreshInterval)*time.Second)

	// --- RabbitMQ listener ---
	if consumer != nil {
		l := newListener(svc, consumer, logr.Named("mq"))
		go l.start(ctx)
		logr.Info("rabbitmq listener started")
	}

	// --- HTTP API ---
	var app *fiber.App
	if cfg.Port != "" {
		app = fiber.New(fiber.Config{DisableStartupMessage: true})
		app.Use(logger.New(logger.Config{
			Format: "${time} ${status} ${method} ${path} ${latency}\n",
		}))
		h := &handlers.Handlers{Svc: svc, Log: logr.Named("api")}
		h.Register(app)

		go func() {
			logr.Info("http api starting", zap.String("port", cfg.Port))
			if err := app.Listen(":" + cfg.Port); err != nil {
				logr.Error("http api", zap.Error(err))
			}
		}()
	}

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logr.Info("shutting down...")
	cancel()
	if app != nil {
		_ = app.Shutdown()
	}
}
