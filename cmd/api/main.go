package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hotline-router/internal/config"
	"hotline-router/internal/events"
	"hotline-router/internal/httpapi"
	"hotline-router/internal/journal"
	"hotline-router/internal/metrics"
	"hotline-router/internal/reporting"
	"hotline-router/internal/representatives"
	"hotline-router/internal/routing"
	"hotline-router/pkg/logger"
	"hotline-router/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// .env is optional; variables already set in the environment win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error(".env load failed", "err", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	roster := representatives.DefaultRoster()
	if cfg.Routing.RepresentativesFile != "" {
		roster, err = representatives.LoadRosterFile(cfg.Routing.RepresentativesFile)
		if err != nil {
			log.Error("roster load failed", "err", err)
			os.Exit(1)
		}
	}
	directory, err := representatives.NewMemoryStore(roster...)
	if err != nil {
		log.Error("directory init failed", "err", err)
		os.Exit(1)
	}

	selector, err := routing.NewSelector(cfg.Routing.Selector)
	if err != nil {
		log.Error("selector init failed", "err", err)
		os.Exit(1)
	}

	bus := events.NewBus()
	engine := routing.NewEngine(directory, routing.Options{
		Selector:       selector,
		MinutesPerCall: cfg.Routing.MinutesPerCall,
		Events:         bus,
	})

	var journalRepo journal.Repository = journal.NewMemoryRepo()
	if cfg.Journal.Store == config.JournalStorePostgres {
		db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
		if err != nil {
			log.Error("postgres init failed", "err", err)
			os.Exit(1)
		}
		defer db.Close()

		pg := journal.NewPostgresRepo(db)
		if err := pg.EnsureSchema(rootCtx); err != nil {
			log.Error("journal schema failed", "err", err)
			os.Exit(1)
		}
		journalRepo = pg
	}
	journalSvc := journal.NewService(journalRepo)

	journalSub, cancelJournal := bus.Subscribe(1024)
	defer cancelJournal()
	go journalSvc.Record(rootCtx, journalSub, log)

	metricsSub, cancelMetrics := bus.Subscribe(1024)
	defer cancelMetrics()
	go metrics.Run(rootCtx, metricsSub)

	if cfg.RedisEnabled() {
		rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
		if err != nil {
			log.Error("redis init failed", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()

		redisSub, cancelRedis := bus.Subscribe(1024)
		defer cancelRedis()
		go events.RedisForwarder{Client: rdb, Channel: cfg.Redis.Channel, Log: log}.Run(rootCtx, redisSub)
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	httpapi.Register(r, httpapi.Handlers{
		Engine:        engine,
		Directory:     directory,
		Reports:       reporting.NewService(journalSvc),
		Events:        bus,
		HotlineNumber: cfg.Routing.HotlineNumber,
	}, metrics.Registry)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening",
			"addr", srv.Addr,
			"env", cfg.App.Env,
			"selector", cfg.Routing.Selector,
			"journal", cfg.Journal.Store,
			"representatives", len(roster),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
