// Package main contains the entrypoint for the Castellan moderation bot.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/castellanbot/castellan/internal/bot"
	"github.com/castellanbot/castellan/internal/bot/handlers"
	"github.com/castellanbot/castellan/internal/bot/tasks"
	"github.com/castellanbot/castellan/internal/config"
	"github.com/castellanbot/castellan/internal/database"
	"github.com/castellanbot/castellan/internal/logger"
	"github.com/castellanbot/castellan/internal/moderation"
	"github.com/castellanbot/castellan/internal/rules"
	"github.com/castellanbot/castellan/internal/store"
	"github.com/castellanbot/castellan/internal/telegram"
	"github.com/castellanbot/castellan/internal/web"

	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes and starts all application components (config, logger,
// state store, audit database, telegram bot, dispatcher, scheduler, web
// server), handles graceful shutdown, and returns an exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	var st store.Store
	if cfg.Redis.URL != "" {
		redisStore, err := store.NewRedisStore(ctx, cfg.Redis.URL, log)
		if err != nil {
			log.Error("Failed to connect to redis", "error", err)
			return 1
		}
		st = redisStore
	} else {
		log.Warn("No redis URL configured, using in-memory store; moderation state is lost on restart")
		st = store.NewMemStore()
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Error("Failed to close state store", "error", err)
		}
	}()

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to open audit database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	events := database.NewEventStore(db, log)

	ruleCfg := rules.Load(cfg.Rules.Path, log)

	actions := telegram.NewChatActions(log, cfg.Telegram.AuditChatID)
	dispatcher := moderation.NewDispatcher(log, st, events, actions, ruleCfg, cfg.Store.Timeout)

	hDeps := handlers.HandlerDeps{
		Logger:     log,
		Config:     cfg,
		Store:      st,
		Events:     events,
		Actions:    actions,
		Dispatcher: dispatcher,
	}

	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log,
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(handlers.NewMessageHandler(hDeps)),
	)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}
	actions.Bind(tg)

	if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllCommands(hDeps)); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}

	tDeps := tasks.TaskDeps{
		Logger: log,
		Config: cfg,
		Store:  st,
		Events: events,
	}
	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	var webSrv *web.Server
	if cfg.Web.Enabled {
		webSrv = web.NewServer(cfg.Web.Addr, log, st, events)
	}

	app := bot.NewBot(log, cfg, db, st, events, tg, sched, webSrv)

	log.Info("Starting Castellan...")
	runErr := app.Run(ctx)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
