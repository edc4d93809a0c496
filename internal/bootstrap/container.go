package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"
	"time"

	"github.com/emonotate/emonotate/internal/config"
	"github.com/emonotate/emonotate/internal/infra/blob"
	"github.com/emonotate/emonotate/internal/infra/cache"
	"github.com/emonotate/emonotate/internal/infra/db"
	"github.com/emonotate/emonotate/internal/infra/httpclient"
	"github.com/emonotate/emonotate/internal/infra/logger"
	"github.com/emonotate/emonotate/internal/infra/mailer"
	mq "github.com/emonotate/emonotate/internal/infra/queue"
	"github.com/emonotate/emonotate/internal/modules/handler"
	"github.com/emonotate/emonotate/internal/modules/model"
	"github.com/emonotate/emonotate/internal/modules/repo"
	"github.com/emonotate/emonotate/internal/modules/service"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func BuildContainer() *do.Injector {
	inj := do.New()

	// config
	do.Provide(inj, func(i *do.Injector) (*config.Config, error) {
		return config.Load()
	})

	// logger
	do.Provide(inj, func(i *do.Injector) (*zap.Logger, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return logger.New(cfg.App.Env, cfg.Log.Level)
	})

	// DB
	do.Provide(inj, func(i *do.Injector) (*gorm.DB, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		d, err := db.New(cfg)
		if err != nil {
			return nil, err
		}
		if cfg.Telemetry.Enabled {
			if err := db.RegisterOpenTelemetryPlugin(d); err != nil {
				log.Warn("gorm otel plugin", zap.Error(err))
			}
		}
		// [optional] auto migrate
		if cfg.Database.AutoMigrate {
			if err := d.AutoMigrate(model.All()...); err != nil {
				return nil, err
			}
		}

		// predefined groups must exist before the first signup
		if err := EnsureGroupsExist(context.Background(), repo.NewUserRepo(d), log); err != nil {
			return nil, err
		}
		return d, nil
	})

	// Redis
	do.Provide(inj, func(i *do.Injector) (*redis.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		rdb, err := cache.New(cfg)
		if err != nil {
			return nil, err
		}
		if cfg.Telemetry.Enabled {
			if err := cache.RegisterOpenTelemetryPlugin(rdb); err != nil {
				do.MustInvoke[*zap.Logger](i).Warn("redis otel plugin", zap.Error(err))
			}
		}
		return rdb, nil
	})
	do.Provide(inj, func(i *do.Injector) (*cache.SessionStore, error) {
		cfg := do.MustInvoke[*config.Config](i)
		ttl := time.Duration(cfg.Auth.SessionTTLSec) * time.Second
		return cache.NewSessionStore(do.MustInvoke[*redis.Client](i), ttl), nil
	})

	// RabbitMQ DialFunc for connection and reconnection
	do.Provide(inj, func(i *do.Injector) (mq.DialFunc, error) {
		cfg := do.MustInvoke[*config.Config](i)

		dialFn := func() (*amqp.Connection, error) {
			useTLS := cfg.RabbitMQ.EnableTLS || strings.HasPrefix(cfg.RabbitMQ.URL, "amqps://")
			if useTLS {
				tlsConfig := &tls.Config{
					MinVersion: tls.VersionTLS12,
				}
				url := cfg.RabbitMQ.URL
				if strings.HasPrefix(url, "amqp://") {
					url = strings.Replace(url, "amqp://", "amqps://", 1)
				}
				return amqp.DialTLS(url, tlsConfig)
			}
			return amqp.Dial(cfg.RabbitMQ.URL)
		}
		return dialFn, nil
	})

	// RabbitMQ Connection
	do.Provide(inj, func(i *do.Injector) (*amqp.Connection, error) {
		dialFn := do.MustInvoke[mq.DialFunc](i)
		return dialFn()
	})

	// RabbitMQ Publisher
	do.Provide(inj, func(i *do.Injector) (*mq.Publisher, error) {
		cfg := do.MustInvoke[*config.Config](i)
		conn := do.MustInvoke[*amqp.Connection](i)
		log := do.MustInvoke[*zap.Logger](i)
		dialFn := do.MustInvoke[mq.DialFunc](i)
		p, err := mq.NewPublisher(conn, log, cfg.App.Name, dialFn)
		if err != nil {
			return nil, err
		}
		if err := p.DeclareTopic(cfg.RabbitMQ.ExchangeName.Notification); err != nil {
			return nil, err
		}
		return p, nil
	})

	// Mailer; the broker is only dialed for the queue transport
	do.Provide(inj, func(i *do.Injector) (mailer.Mailer, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		var pub *mq.Publisher
		if cfg.Mail.Transport == "queue" {
			p, err := do.Invoke[*mq.Publisher](i)
			if err != nil {
				return nil, err
			}
			pub = p
		}
		return mailer.New(cfg, log, pub)
	})

	// S3
	do.Provide(inj, func(i *do.Injector) (*blob.S3Deps, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return blob.NewS3(context.Background(), cfg)
	})
	// get presign expire duration
	do.Provide(inj, func(i *do.Injector) (func() time.Duration, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return func() time.Duration {
			if cfg.S3.PresignExpireSec <= 0 {
				return 15 * time.Minute
			}
			return time.Duration(cfg.S3.PresignExpireSec) * time.Second
		}, nil
	})

	// YouTube HTTP Client
	do.Provide(inj, func(i *do.Injector) (*httpclient.YouTubeClient, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		return httpclient.NewYouTubeClient(cfg, log), nil
	})

	// Repo
	do.Provide(inj, func(i *do.Injector) (repo.UserRepo, error) {
		return repo.NewUserRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.ValueTypeRepo, error) {
		return repo.NewValueTypeRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.ContentRepo, error) {
		return repo.NewContentRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.CurveRepo, error) {
		return repo.NewCurveRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.RequestRepo, error) {
		return repo.NewRequestRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.QuestionaireRepo, error) {
		return repo.NewQuestionaireRepo(do.MustInvoke[*gorm.DB](i)), nil
	})

	// Service
	do.Provide(inj, func(i *do.Injector) (service.SentinelEmail, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return service.NewSentinelEmail(cfg.Auth.SentinelEmailUser, cfg.Auth.SentinelEmailHost), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.UserService, error) {
		return service.NewUserService(
			do.MustInvoke[repo.UserRepo](i),
			do.MustInvoke[*config.Config](i).Root.SecretPepper,
			do.MustInvoke[service.SentinelEmail](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.AuthService, error) {
		return service.NewAuthService(
			do.MustInvoke[repo.UserRepo](i),
			do.MustInvoke[repo.RequestRepo](i),
			do.MustInvoke[service.UserService](i),
			do.MustInvoke[*cache.SessionStore](i),
			do.MustInvoke[*config.Config](i).Root.SecretPepper,
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.ValueTypeService, error) {
		return service.NewValueTypeService(do.MustInvoke[repo.ValueTypeRepo](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.ContentService, error) {
		return service.NewContentService(
			do.MustInvoke[repo.ContentRepo](i),
			do.MustInvoke[*httpclient.YouTubeClient](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.CurveService, error) {
		return service.NewCurveService(do.MustInvoke[repo.CurveRepo](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.RequestService, error) {
		return service.NewRequestService(do.MustInvoke[repo.RequestRepo](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.QuestionaireService, error) {
		return service.NewQuestionaireService(do.MustInvoke[repo.QuestionaireRepo](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.MailService, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return service.NewMailService(
			do.MustInvoke[repo.RequestRepo](i),
			do.MustInvoke[mailer.Mailer](i),
			do.MustInvoke[service.SentinelEmail](i),
			cfg.App.ApplicationURL,
			cfg.Mail.Concurrency,
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.ExportService, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return service.NewExportService(
			do.MustInvoke[repo.RequestRepo](i),
			do.MustInvoke[repo.CurveRepo](i),
			do.MustInvoke[*blob.S3Deps](i),
			cfg.S3.ExportPrefix,
			do.MustInvoke[func() time.Duration](i)(),
		), nil
	})

	// Handler
	do.Provide(inj, func(i *do.Injector) (*handler.AuthHandler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return handler.NewAuthHandler(
			do.MustInvoke[service.AuthService](i),
			handler.AuthHandlerConfig{
				AppURL:        cfg.App.ApplicationURL,
				SessionCookie: cfg.Auth.SessionCookie,
				CookieSecure:  cfg.Auth.CookieSecure,
				YouTubeAPIKey: cfg.YouTube.APIKey,
			},
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.UserHandler, error) {
		return handler.NewUserHandler(do.MustInvoke[service.UserService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.ValueTypeHandler, error) {
		return handler.NewValueTypeHandler(do.MustInvoke[service.ValueTypeService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.ContentHandler, error) {
		return handler.NewContentHandler(do.MustInvoke[service.ContentService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.CurveHandler, error) {
		return handler.NewCurveHandler(
			do.MustInvoke[service.CurveService](i),
			do.MustInvoke[service.ExportService](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.RequestHandler, error) {
		return handler.NewRequestHandler(
			do.MustInvoke[service.RequestService](i),
			do.MustInvoke[service.MailService](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.QuestionaireHandler, error) {
		return handler.NewQuestionaireHandler(do.MustInvoke[service.QuestionaireService](i)), nil
	})
	return inj
}
