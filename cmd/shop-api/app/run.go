package app

import (
	"context"
	"net/http"
	"time"

	"github.com/NoBodyyy-dev/shispare-backend-sub000/configs"
	"github.com/NoBodyyy-dev/shispare-backend-sub000/internal/adapter/cache"
	httpadapter "github.com/NoBodyyy-dev/shispare-backend-sub000/internal/adapter/http"
	"github.com/NoBodyyy-dev/shispare-backend-sub000/internal/adapter/http/middleware"
	"github.com/NoBodyyy-dev/shispare-backend-sub000/internal/adapter/kafka"
	"github.com/NoBodyyy-dev/shispare-backend-sub000/internal/adapter/payment"
	"github.com/NoBodyyy-dev/shispare-backend-sub000/internal/adapter/queue"
	"github.com/NoBodyyy-dev/shispare-backend-sub000/internal/adapter/repo"
	"github.com/NoBodyyy-dev/shispare-backend-sub000/internal/logging"
	"github.com/NoBodyyy-dev/shispare-backend-sub000/internal/notify"
	"github.com/NoBodyyy-dev/shispare-backend-sub000/internal/usecase"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

type App struct {
	Router *gin.Engine
}

// InitWithConfig wires the long-lived shared instances once at startup; every
// request handler reaches the same hub, fan-out and use cases.
func InitWithConfig(cfg configs.Config) (*App, func(), error) {
	log := logging.Init("shop-api", cfg.App.LogFile)
	log.Info("shop-api: starting up")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// storage
	db, err := repo.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		return nil, nil, err
	}

	// redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, nil, err
	}

	// rabbitmq
	conn, err := amqp.Dial(cfg.Rabbit.URL)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, err
	}
	producer, err := queue.NewRabbitProducer(ch)
	if err != nil {
		return nil, nil, err
	}

	// kafka event stream
	kp, err := kafka.NewSyncProducer(cfg.Kafka.Brokers)
	if err != nil {
		return nil, nil, err
	}
	events := kafka.NewOrderEventsProducer(kp, cfg.Kafka.TopicEvents)

	// repos
	orderRepo := repo.NewMongoOrderRepo(db)
	cartRepo := repo.NewMongoCartRepo(db)
	catalog := repo.NewMongoCatalog(db)
	numbers := repo.NewMongoOrderNumbers(db, "SH")
	users := repo.NewMongoUserRepo(db)
	idem := cache.NewRedisIdempotencyStore(rdb, cfg.Idempotency.TTL)
	statusCache := cache.NewRedisOrderCache(rdb, cfg.Cache.TTL)

	// payment gateway
	gateway := payment.NewYooKassa(cfg.YooKassa.BaseURL, cfg.YooKassa.ShopID, cfg.YooKassa.SecretKey,
		&http.Client{Timeout: cfg.YooKassa.Timeout})

	// notification fan-out
	hub := notify.NewHub()
	fanout := notify.NewFanout(hub, producer, users, cfg.Notify.AdminEmail)

	// notification worker on its own channel (the producer channel is in
	// confirm mode).
	consumeCh, err := conn.Channel()
	if err != nil {
		return nil, nil, err
	}
	if err := setupNotifyWorker(cfg, consumeCh); err != nil {
		return nil, nil, err
	}

	// use cases
	checkoutUC := usecase.NewCheckout(orderRepo, cartRepo, catalog, numbers,
		gateway, fanout, events, statusCache, idem, cfg.YooKassa.Timeout)
	statusUC := usecase.NewUpdateStatus(orderRepo, gateway, fanout, events,
		statusCache, cfg.YooKassa.Timeout)
	webhookUC := usecase.NewPaymentWebhook(orderRepo, idem, fanout, events, statusCache)
	cartUC := usecase.NewCartService(cartRepo, catalog)

	// handlers + router
	authz := middleware.NewAuthz(cfg)
	router := httpadapter.NewRouter(
		httpadapter.NewOrderHandler(checkoutUC, statusUC, orderRepo),
		httpadapter.NewCartHandler(cartUC),
		httpadapter.NewWebhookHandler(webhookUC),
		httpadapter.NewWSHandler(hub, authz),
		httpadapter.NewTokenHandler(cfg),
		authz,
	)

	cleanup := func() {
		_ = kp.Close()
		_ = ch.Close()
		_ = conn.Close()
		_ = rdb.Close()
		_ = db.Client().Disconnect(context.Background())
	}

	return &App{Router: router}, cleanup, nil
}

// setupNotifyWorker starts the background consumer that drains queued e-mail
// and Telegram tasks. Sinks left unconfigured are skipped by the handler.
func setupNotifyWorker(cfg configs.Config, ch *amqp.Channel) error {
	var email queue.EmailSink
	if cfg.SMTP.Host != "" {
		email = notify.NewEmailSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	}

	var telegram queue.TelegramSink
	if cfg.Telegram.BotToken != "" {
		tg, err := notify.NewTelegramSender(cfg.Telegram.BotToken)
		if err != nil {
			logging.New("app").Error("telegram sender init failed, channel disabled", "error", err)
		} else {
			telegram = tg
		}
	}

	h := queue.NewNotificationTaskHandler(email, telegram)

	router := queue.NewRouter(ch, queue.WithPrefetch(50))
	router.Register(queue.TaskQueueName, queue.JSONHandler[usecase.NotificationTask]{HandleFunc: h.HandleTask})
	return router.Start()
}
