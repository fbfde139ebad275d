package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AppCfg struct {
	Env                 string `mapstructure:"env"`
	Port                int    `mapstructure:"port"`
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds"`
}

type MongoCfg struct {
	URI                     string `mapstructure:"uri"`
	Database                string `mapstructure:"database"`
	ProfilesCollection      string `mapstructure:"profiles_collection"`
	ConversationsCollection string `mapstructure:"conversations_collection"`
	MessagesCollection      string `mapstructure:"messages_collection"`
	InvitationsCollection   string `mapstructure:"invitations_collection"`
}

type RedisCfg struct {
	Addr             string `mapstructure:"addr"`
	Password         string `mapstructure:"password"`
	DB               int    `mapstructure:"db"`
	UnreadTTLSeconds int    `mapstructure:"unread_ttl_seconds"`
}

type KafkaCfg struct {
	Brokers             []string `mapstructure:"brokers"`
	TopicMessageCreated string   `mapstructure:"topic_message_created"`
	ConsumerGroup       string   `mapstructure:"consumer_group"`
}

type JWTCfg struct {
	Secret string `mapstructure:"secret"`
}

type NotifyCfg struct {
	Enabled      bool   `mapstructure:"enabled"`
	ResendAPIKey string `mapstructure:"resend_api_key"`
	FromEmail    string `mapstructure:"from_email"`
	FromName     string `mapstructure:"from_name"`
	SiteURL      string `mapstructure:"site_url"`
}

type FeedCfg struct {
	Buffer int `mapstructure:"buffer"`
}

type Config struct {
	App    AppCfg    `mapstructure:"app"`
	Mongo  MongoCfg  `mapstructure:"mongo"`
	Redis  RedisCfg  `mapstructure:"redis"`
	Kafka  KafkaCfg  `mapstructure:"kafka"`
	JWT    JWTCfg    `mapstructure:"jwt"`
	Notify NotifyCfg `mapstructure:"notify"`
	Feed   FeedCfg   `mapstructure:"feed"`
	// Derived
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	UnreadTTL    time.Duration
}

// Load reads the YAML file at path, with APP_ environment overrides on top.
// A .env file in the working directory is loaded first when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.App.ReadTimeoutSeconds == 0 {
		cfg.App.ReadTimeoutSeconds = 15
	}
	if cfg.App.WriteTimeoutSeconds == 0 {
		cfg.App.WriteTimeoutSeconds = 15
	}
	if cfg.Redis.UnreadTTLSeconds == 0 {
		cfg.Redis.UnreadTTLSeconds = 30
	}
	if cfg.Feed.Buffer == 0 {
		cfg.Feed.Buffer = 64
	}
	if cfg.Mongo.ProfilesCollection == "" {
		cfg.Mongo.ProfilesCollection = "profiles"
	}
	if cfg.Mongo.ConversationsCollection == "" {
		cfg.Mongo.ConversationsCollection = "conversations"
	}
	if cfg.Mongo.MessagesCollection == "" {
		cfg.Mongo.MessagesCollection = "messages"
	}
	if cfg.Mongo.InvitationsCollection == "" {
		cfg.Mongo.InvitationsCollection = "invitations"
	}
	cfg.ReadTimeout = time.Duration(cfg.App.ReadTimeoutSeconds) * time.Second
	cfg.WriteTimeout = time.Duration(cfg.App.WriteTimeoutSeconds) * time.Second
	cfg.UnreadTTL = time.Duration(cfg.Redis.UnreadTTLSeconds) * time.Second
	return &cfg, nil
}
