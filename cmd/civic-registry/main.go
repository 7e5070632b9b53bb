package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"civic-registry/internal/auth"
	"civic-registry/internal/common/database"
	"civic-registry/internal/common/logger"
	commonmqtt "civic-registry/internal/common/mqtt"
	commonredis "civic-registry/internal/common/redis"
	"civic-registry/internal/config"
	httpapi "civic-registry/internal/http"
	"civic-registry/internal/metrics"
	"civic-registry/internal/mqtt"
	"civic-registry/internal/repository"
	"civic-registry/internal/service"
	"civic-registry/internal/store"
)

type repositories struct {
	users     repository.UsersRepository
	people    repository.PeopleRepository
	templates repository.TemplatesRepository
	messages  repository.MessagesRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "civic-registry")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zl); err != nil {
		zl.Error("Service exited with error", zap.Error(err))
		_ = zl.Sync()
		os.Exit(1)
	}
	zl.Info("Service stopped")
}

func run(ctx context.Context, cfg *config.Config, zl *zap.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var repos repositories
	if cfg.DBEnabled {
		db, err := database.NewPostgresDB(&cfg.Database)
		if err != nil {
			return err
		}
		defer database.Close(db)

		if cfg.AutoMigrate {
			if err := repository.EnsureSchema(ctx, db); err != nil {
				return err
			}
			zl.Info("Schema up to date")
		}
		qt := cfg.Database.QueryTimeout
		repos = repositories{
			users:     repository.NewPostgresUsersRepository(db, qt),
			people:    repository.NewPostgresPeopleRepository(db, qt),
			templates: repository.NewPostgresTemplatesRepository(db, qt),
			messages:  repository.NewPostgresMessagesRepository(db, qt),
		}
		zl.Info("DB enabled", zap.String("host", cfg.Database.Host), zap.String("database", cfg.Database.Database))
	} else {
		ms := repository.NewMemoryStore()
		repos = repositories{
			users:     ms.UsersRepository(),
			people:    ms.People,
			templates: ms.Templates,
			messages:  ms.Messages,
		}
		zl.Warn("DB disabled, using in-memory repositories")
	}

	var kv store.KV = store.NewMemoryKV()
	if cfg.Redis.Enabled {
		rc := commonredis.NewRedisClient(&cfg.Redis.RedisConfig)
		defer commonredis.Close(rc)
		if err := commonredis.Ping(ctx, rc); err != nil {
			zl.Warn("Redis ping failed, lockout counters fail open until it recovers", zap.Error(err))
		}
		kv = store.NewRedisKV(rc)
	}

	notifier := service.NewMultiNotifier(m, zl)
	if cfg.MQTT.Enabled {
		client, err := commonmqtt.NewClient(&cfg.MQTT.MQTTConfig, zl)
		if err != nil {
			return err
		}
		defer client.Disconnect()
		notifier.Add("mqtt", mqtt.NewCampaignPublisher(client, cfg.MQTT.Topic, zl))
		zl.Info("Campaign events enabled", zap.String("broker", cfg.MQTT.Broker), zap.String("topic", cfg.MQTT.Topic))
	}
	if cfg.WhatsApp.Enabled {
		sender := service.NewWhatsAppClient(cfg.WhatsApp.BaseURL, cfg.WhatsApp.Token, cfg.WhatsApp.Timeout, zl)
		notifier.Add("whatsapp", service.NewWhatsAppNotifier(repos.people, sender, 0, zl))
		zl.Info("WhatsApp dispatch enabled", zap.String("base_url", cfg.WhatsApp.BaseURL))
	}
	var campaignNotifier service.CampaignNotifier
	if notifier.Len() > 0 {
		campaignNotifier = notifier
	}

	hasher := auth.NewPasswordHasher(auth.DefaultCost)
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL, cfg.JWT.Issuer)
	lockout := service.LockoutPolicy{MaxAttempts: cfg.Lockout.MaxAttempts, Window: cfg.Lockout.Window}

	svcs := httpapi.Services{
		Auth:      service.NewAuthService(repos.users, hasher, tokens, kv, lockout, m, zl),
		Users:     service.NewUserService(repos.users, hasher, zl),
		People:    service.NewPersonService(repos.people, m, zl),
		Templates: service.NewTemplateService(repos.templates, zl),
		Messages:  service.NewMessageService(repos.messages, repos.templates, campaignNotifier, m, zl),
	}
	router := httpapi.NewRouter(svcs, tokens, httpapi.RouterConfig{
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		MaxBodyBytes:   cfg.HTTP.MaxBodyBytes,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		Gatherer:       reg,
	}, m, zl)

	srv := service.NewServer(service.ServerConfig{
		Addr:            cfg.HTTP.Addr,
		ReadTimeout:     cfg.HTTP.ReadTimeout,
		WriteTimeout:    cfg.HTTP.WriteTimeout,
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
	}, router, zl)
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
