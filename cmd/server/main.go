package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/suPer8Hu/codeassist/internal/config"
	"github.com/suPer8Hu/codeassist/internal/db"
	"github.com/suPer8Hu/codeassist/internal/httpapi"
	"github.com/suPer8Hu/codeassist/internal/httpapi/handlers"
	"github.com/suPer8Hu/codeassist/internal/preview"
	"github.com/suPer8Hu/codeassist/internal/store"
	"github.com/suPer8Hu/codeassist/internal/store/rabbitmq"
	"github.com/suPer8Hu/codeassist/internal/store/redisstore"
	"github.com/suPer8Hu/codeassist/internal/workspace"
)

func main() {
	cfg := config.Load()

	logger := config.NewLogger(cfg.Debug)
	defer logger.Sync()

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, err := config.LoadCatalog(cfg.ProviderCatalog)
	if err != nil {
		logger.Fatal("provider catalog", zap.Error(err))
	}
	reg := config.NewRegistry(cfg, catalog, logger)

	ids, err := store.ParseIDStrategy(cfg.IDStrategy)
	if err != nil {
		logger.Fatal("id strategy", zap.Error(err))
	}
	storeOpts := []store.Option{store.WithLogger(logger), store.WithIDStrategy(ids)}

	// redis is optional; without it schema upgrades are not announced
	var rds *redisstore.Store
	if cfg.RedisAddr != "" {
		rds, err = redisstore.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
		if err != nil {
			logger.Warn("redis unavailable, version notifications disabled", zap.Error(err))
		} else {
			defer rds.Close()
			storeOpts = append(storeOpts, store.WithNotifier(rds))
		}
	}

	st := store.New(db.Opener(cfg.DBDriver, cfg.DBDSN), storeOpts...)
	defer st.Close()
	if err := st.Open(ctx); err != nil {
		logger.Warn("chat history unavailable at startup", zap.Error(err))
	}

	if rds != nil {
		if _, err := rds.Listen(ctx, st.InstanceID(), st.HandleVersionChange); err != nil {
			logger.Warn("version change listener", zap.Error(err))
		}
	}

	opts := handlers.Options{
		DefaultProvider: cfg.AIProvider,
		DefaultModel:    cfg.AIModel,
	}

	filter := workspace.NewIgnoreFilter(cfg.ProjectRoot)
	ser := workspace.NewSerializer(filter)
	ser.MaxFiles = cfg.ContextMaxFiles
	ser.MaxFileBytes = cfg.ContextMaxFileBytes
	opts.Filter = filter
	opts.Serializer = ser

	if cfg.RabbitURL != "" {
		pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
		if err != nil {
			logger.Warn("rabbitmq unavailable, usage is stored inline", zap.Error(err))
		} else {
			defer pub.Close()
			opts.Publisher = pub
		}
	}

	opts.Preview = preview.NewWatchdog(cfg.PreviewTimeout, logger, func(s preview.State) {
		logger.Debug("preview state", zap.String("status", string(s.Status)), zap.String("message", s.Message))
	})
	defer opts.Preview.Stop()

	h := handlers.NewHandler(st, reg, logger, opts)
	r := httpapi.NewRouter(h, httpapi.Options{JWTSecret: cfg.JWTSecret, CORSOrigins: cfg.CORSOrigins}, logger)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.HTTPAddr), zap.String("provider", reg.Default()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
