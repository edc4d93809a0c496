package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/emonotate/emonotate/internal/bootstrap"
	"github.com/emonotate/emonotate/internal/config"
	"github.com/emonotate/emonotate/internal/infra/cache"
	mq "github.com/emonotate/emonotate/internal/infra/queue"
	"github.com/emonotate/emonotate/internal/modules/handler"
	"github.com/emonotate/emonotate/internal/modules/service"
	"github.com/emonotate/emonotate/internal/pkg/validate"
	"github.com/emonotate/emonotate/internal/router"
	"github.com/emonotate/emonotate/internal/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
)

//	@title						emonotate API
//	@version					1.0
//	@description				Backend of the emonotate continuous-annotation survey service.
//	@BasePath					/api
//	@securityDefinitions.apikey	SessionCookie
//	@in							header
//	@name						sessionid
func main() {
	inj := bootstrap.BuildContainer()

	cfg := do.MustInvoke[*config.Config](inj)
	log := do.MustInvoke[*zap.Logger](inj)
	defer func() { _ = log.Sync() }()

	if cfg.App.Env == "prod" || cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := validate.RegisterGin(); err != nil {
		log.Fatal("register validators", zap.Error(err))
	}

	// telemetry first so the gorm and redis plugins see the global providers
	if cfg.Telemetry.Enabled && cfg.Telemetry.OtlpEndpoint != "" {
		if _, err := telemetry.SetupTracing(cfg); err != nil {
			log.Warn("tracing disabled", zap.Error(err))
		}
		if _, err := telemetry.SetupMetrics(cfg); err != nil {
			log.Warn("metrics disabled", zap.Error(err))
		}
	}
	if err := telemetry.InitDomainMetrics(); err != nil {
		log.Warn("domain metrics", zap.Error(err))
	}

	engine := router.NewRouter(router.RouterDeps{
		Config:              cfg,
		Log:                 log,
		Auth:                do.MustInvoke[service.AuthService](inj),
		AuthHandler:         do.MustInvoke[*handler.AuthHandler](inj),
		UserHandler:         do.MustInvoke[*handler.UserHandler](inj),
		ValueTypeHandler:    do.MustInvoke[*handler.ValueTypeHandler](inj),
		ContentHandler:      do.MustInvoke[*handler.ContentHandler](inj),
		CurveHandler:        do.MustInvoke[*handler.CurveHandler](inj),
		RequestHandler:      do.MustInvoke[*handler.RequestHandler](inj),
		QuestionaireHandler: do.MustInvoke[*handler.QuestionaireHandler](inj),
	})

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	go func() {
		log.Sugar().Infow("starting http server", "addr", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
	if rdb, err := do.Invoke[*redis.Client](inj); err == nil {
		_ = cache.Close(rdb)
	}
	if cfg.Mail.Transport == "queue" {
		if pub, err := do.Invoke[*mq.Publisher](inj); err == nil {
			_ = pub.Close()
		}
	}
	if err := telemetry.Shutdown(ctx); err != nil {
		log.Warn("tracing shutdown", zap.Error(err))
	}
	if err := telemetry.ShutdownMetrics(ctx); err != nil {
		log.Warn("metrics shutdown", zap.Error(err))
	}
	log.Info("server exited")
}
