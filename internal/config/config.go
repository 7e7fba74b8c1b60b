package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultConfigPath is read when CONFIG_PATH is not set.
const DefaultConfigPath = "configs/config.yaml"

// Config is the main struct that holds all configuration for the application.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Notifier NotifierConfig `mapstructure:"notifier"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
}

// LoggerConfig holds logging-specific settings.
type LoggerConfig struct {
	Level string `mapstructure:"level"`
	// Format is "console" for human-readable output or "json".
	Format string `mapstructure:"format"`
}

// HTTPConfig holds HTTP server-specific settings.
type HTTPConfig struct {
	Port    string `mapstructure:"port"`
	GinMode string `mapstructure:"gin_mode"`
}

// ChatConfig is the notification settings supplied by the monitoring host.
// Values are passed through unchecked.
type ChatConfig struct {
	// SeqBaseURL enables the "open in Seq" link line when non-blank.
	SeqBaseURL string `mapstructure:"seq_base_url"`
	// NotificationBaseURL defaults to the HipChat API root.
	NotificationBaseURL string `mapstructure:"notification_base_url"`
	AuthToken           string `mapstructure:"auth_token"`
	RoomID              string `mapstructure:"room_id"`
	// Color overrides the level-based color when non-blank.
	Color           string `mapstructure:"color"`
	MessageTemplate string `mapstructure:"message_template"`
	Notify          bool   `mapstructure:"notify"`
}

// NotifierConfig selects the chat provider.
type NotifierConfig struct {
	// Provider is one of "hipchat", "telegram", "email" or "log_only".
	Provider string         `mapstructure:"provider"`
	Email    EmailConfig    `mapstructure:"email"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// EmailConfig holds SMTP settings for the email provider.
type EmailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	To       string `mapstructure:"to"`
	Subject  string `mapstructure:"subject"`
}

// TelegramConfig holds settings for the Telegram provider.
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// PostgresConfig holds settings for the delivery journal database.
// An empty DSN disables the journal.
type PostgresConfig struct {
	DSN  string     `mapstructure:"dsn"`
	Pool PoolConfig `mapstructure:"pool"`
}

// PoolConfig defines the connection pool settings for the database.
type PoolConfig struct {
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// RedisConfig holds settings for the journal cache. An empty Addr disables caching.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// RabbitMQConfig holds settings for the AMQP event consumer. An empty DSN disables it.
type RabbitMQConfig struct {
	DSN      string `mapstructure:"dsn"`
	Exchange string `mapstructure:"exchange"`
	Queue    string `mapstructure:"queue"`
	Workers  int    `mapstructure:"workers"`
}

// KafkaConfig holds settings for the Kafka event consumer. No brokers disables it.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
}

// NewConfig reads the file named by CONFIG_PATH (or DefaultConfigPath) and environment variables.
func NewConfig() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = DefaultConfigPath
	}
	return Load(path)
}

// Load parses the YAML file at path, applies defaults and environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("http.port", ":8080")
	v.SetDefault("http.gin_mode", "release")
	v.SetDefault("chat.notification_base_url", "https://api.hipchat.com/v2/")
	v.SetDefault("notifier.provider", "hipchat")
	v.SetDefault("redis.ttl", 24*time.Hour)
	v.SetDefault("rabbitmq.exchange", "seq.events")
	v.SetDefault("rabbitmq.queue", "chat.events")
	v.SetDefault("rabbitmq.workers", 2)
	v.SetDefault("kafka.topic", "seq-events")
	v.SetDefault("kafka.group_id", "seq-chat-bridge")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
