package config

import "time"

// Config 配置主体
type Config struct {
	Server               ServerConfig         `mapstructure:"server"`
	DB                   DBConfig             `mapstructure:"database"`
	Redis                RedisConfig          `mapstructure:"redis"`
	Mongo                MongoConfig          `mapstructure:"mongo"`
	Elastic              ElasticConfig        `mapstructure:"elastic"`
	Kafka                KafkaConfig          `mapstructure:"kafka"`
	KafkaCopilotConsumer KafkaCopilotConsumer `mapstructure:"kafka_copilot_consumer"`
	Logstash             LogstashConfig       `mapstructure:"logstash"`
	Logger               LoggerConfig         `mapstructure:"logger"`
	JWT                  JWTConfig            `mapstructure:"jwt"`
	Rating               RatingConfig         `mapstructure:"rating"`
	Listing              ListingConfig        `mapstructure:"listing"`
	Cron                 CronConfig           `mapstructure:"cron"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// DBConfig 数据库配置
type DBConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// MongoConfig 旧版评分数据所在的 MongoDB
type MongoConfig struct {
	URL      string `mapstructure:"url"`
	Database string `mapstructure:"database"`
}

// ElasticConfig Elastic配置
type ElasticConfig struct {
	Address  string         `mapstructure:"address"`
	Username string         `mapstructure:"username"`
	Password string         `mapstructure:"password"`
	Indices  ElasticIndices `mapstructure:"indices"`
}

// ElasticIndices Elastic索引
type ElasticIndices struct {
	StageIndex string `mapstructure:"stage_index"`
}

type KafkaConfig struct {
	Enable   bool           `mapstructure:"enable"`
	Brokers  []string       `mapstructure:"brokers"`
	Sasl     SaslConfig     `mapstructure:"sasl"`
	Consumer ConsumerConfig `mapstructure:"consumer"`
}

type SaslConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ConsumerConfig struct {
	SessionTimeout    int `mapstructure:"session_timeout"`
	HeartbeatInterval int `mapstructure:"heartbeat_interval"`
	RebalanceTimeout  int `mapstructure:"rebalance_timeout"`
	MaxProcessingTime int `mapstructure:"max_processing_time"`
}

// KafkaCopilotConsumer copilots 表的 canal binlog 订阅
type KafkaCopilotConsumer struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

type LogstashConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
	Token   string `mapstructure:"token"`
}

type LoggerConfig struct {
	Level string `mapstructure:"level"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

// RatingConfig 评分、浏览去重与迁移相关参数
type RatingConfig struct {
	WindowDays       int           `mapstructure:"window_days"`
	ViewCooldown     time.Duration `mapstructure:"view_cooldown"`
	CacheablePages   int           `mapstructure:"cacheable_pages"`
	MigrateLockTTL   time.Duration `mapstructure:"migrate_lock_ttl"`
	MigrateLockRetry int           `mapstructure:"migrate_lock_retry"`
}

type ListingConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`
}

type CronConfig struct {
	ScoreRefresh string `mapstructure:"score_refresh"`
}
