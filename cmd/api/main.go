package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/andredale-lab/One-Coffee/internal/api"
	"github.com/andredale-lab/One-Coffee/internal/auth"
	"github.com/andredale-lab/One-Coffee/internal/cache"
	"github.com/andredale-lab/One-Coffee/internal/config"
	"github.com/andredale-lab/One-Coffee/internal/feed"
	"github.com/andredale-lab/One-Coffee/internal/kafka"
	"github.com/andredale-lab/One-Coffee/internal/logger"
	"github.com/andredale-lab/One-Coffee/internal/notify"
	"github.com/andredale-lab/One-Coffee/internal/repository"
	"github.com/andredale-lab/One-Coffee/internal/service"
	"github.com/andredale-lab/One-Coffee/internal/ws"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "./config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}
	log, err := logger.New(cfg.App.Env == "development")
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Infof("starting one-coffee api (env=%s)", cfg.App.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mc, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		log.Fatalf("mongo connect: %v", err)
	}
	if err := mc.Ping(ctx, nil); err != nil {
		log.Fatalf("mongo ping: %v", err)
	}
	db := mc.Database(cfg.Mongo.Database)

	profiles := repository.NewMongoProfiles(db.Collection(cfg.Mongo.ProfilesCollection))
	conversations := repository.NewMongoConversations(db.Collection(cfg.Mongo.ConversationsCollection), log)
	messages := repository.NewMongoMessages(db.Collection(cfg.Mongo.MessagesCollection), log)
	invitations := repository.NewMongoInvitations(db.Collection(cfg.Mongo.InvitationsCollection), log)

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("redis ping: %v", err)
	}
	unread := cache.NewUnreadCache(rdb, cfg.UnreadTTL)

	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicMessageCreated)
	broker := feed.NewBroker(cfg.Feed.Buffer)

	convSvc := service.NewConversationService(profiles, conversations, messages, log)
	msgSvc := service.NewMessageService(conversations, messages, broker, unread, producer, log)
	invSvc := service.NewInvitationService(profiles, invitations, log)
	profSvc := service.NewProfileService(profiles, log)

	verifier := auth.NewVerifier(cfg.JWT.Secret)
	wsHandler := ws.NewHandler(broker, conversations, log)
	app := api.NewServer(convSvc, msgSvc, invSvc, profSvc, wsHandler, verifier, cfg.ReadTimeout, cfg.WriteTimeout, log)

	notifyCtx, stopNotify := context.WithCancel(context.Background())
	var notifier *notify.Notifier
	if cfg.Notify.Enabled {
		email := notify.NewEmailClient(cfg.Notify.ResendAPIKey, cfg.Notify.FromEmail, cfg.Notify.FromName)
		notifier = notify.NewNotifier(
			cfg.Kafka.Brokers, cfg.Kafka.TopicMessageCreated, cfg.Kafka.ConsumerGroup,
			profiles, email, cfg.Notify.SiteURL, log,
		)
		go notifier.Run(notifyCtx)
	}

	go func() {
		addr := fmt.Sprintf(":%d", cfg.App.Port)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down...")

	stopNotify()
	_ = app.Shutdown()
	if notifier != nil {
		_ = notifier.Close()
	}
	_ = producer.Close()
	shutCtx, cancel2 := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel2()
	_ = mc.Disconnect(shutCtx)
	_ = rdb.Close()
	log.Info("shutdown complete")
}
