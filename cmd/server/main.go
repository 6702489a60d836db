package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"updown/internal/config"
	cronrunner "updown/internal/cron"
	"updown/internal/db"
	"updown/internal/handler"
	"updown/internal/logger"
	"updown/internal/pricefeed"
	gormrepository "updown/internal/repository/gorm"
	"updown/internal/service"

	_ "updown/docs"
)

func main() {
	cfgPath := os.Getenv("UPDOWN_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("UPDOWN_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	feed, err := pricefeed.New(cfg.Feed, logger)
	if err != nil {
		logger.Fatal("price feed init failed", zap.Error(err))
	}
	if ws, ok := feed.(*pricefeed.BinanceWS); ok {
		go func() {
			if err := ws.Run(ctx, cfg.Trading.Symbol); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("price stream stopped", zap.Error(err))
			}
		}()
	}

	store := gormrepository.New(dbConn.Gorm)
	roundSvc := &service.RoundService{
		Repo:         store,
		Feed:         feed,
		Symbol:       cfg.Trading.Symbol,
		WindowLength: cfg.Round.WindowLength,
		Logger:       logger,
	}
	tradeSvc := &service.TradeService{
		Repo:        store,
		Rounds:      roundSvc,
		Feed:        feed,
		Trading:     cfg.Trading,
		EntryCutoff: cfg.Round.EntryCutoff,
		Logger:      logger,
	}
	settlementSvc := &service.SettlementService{
		Repo:       store,
		Feed:       feed,
		PayoutRate: decimal.NewFromFloat(cfg.Trading.PayoutRate),
		Grace:      cfg.Round.SettlementGrace,
		BatchLimit: 100,
		Logger:     logger,
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	auth := handler.RequireIdentityMiddleware()
	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	tradeHandler := &handler.TradeHandler{Repo: store, Trades: tradeSvc}
	tradeHandler.Register(engine, auth)
	roundHandler := &handler.RoundHandler{Repo: store, Rounds: roundSvc}
	roundHandler.Register(engine)
	balanceHandler := &handler.BalanceHandler{Repo: store}
	balanceHandler.Register(engine, auth)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	// Open the first round before any trade can arrive.
	if _, err := roundSvc.EnsureCurrentRound(ctx, time.Now().UTC()); err != nil {
		logger.Warn("initial round creation failed (next tick retries)", zap.Error(err))
	}

	cronRunner := cronrunner.New(logger, ctx)
	tickSpec := "@every " + cfg.Round.TickInterval.String()
	_, err = cronRunner.Add(tickSpec, func(ctx context.Context) {
		now := time.Now().UTC()
		// The two phases are error-isolated: a failed round creation must not
		// block settlement of older rounds, and vice versa.
		if _, err := roundSvc.EnsureCurrentRound(ctx, now); err != nil {
			logger.Warn("ensure current round failed", zap.Error(err))
		}
		if err := settlementSvc.SettleDueRounds(ctx, now); err != nil {
			logger.Warn("settle due rounds failed", zap.Error(err))
		}
	})
	if err != nil {
		logger.Fatal("cron register round tick failed", zap.Error(err))
	}
	cronRunner.Start()
	defer cronRunner.Stop()

	errCh := make(chan error, 1)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization,X-User-ID")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
