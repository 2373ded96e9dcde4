package config

import (
	"errors"
	"log"
	"os"

	"github.com/spf13/viper"
)

// Config 全局配置结构体
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	App        AppConfig        `mapstructure:"app"`
	Migration  MigrationConfig  `mapstructure:"migration"`
	Moderation ModerationConfig `mapstructure:"moderation"`
	Story      StoryConfig      `mapstructure:"story"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Port     string `mapstructure:"port"`
	SSLMode  string `mapstructure:"sslmode"`
	TimeZone string `mapstructure:"timezone"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Expire int64  `mapstructure:"expire"` // 小时
}

type AppConfig struct {
	Env   string `mapstructure:"env"`
	Debug bool   `mapstructure:"debug"`
}

// MigrationConfig 标签迁移引擎配置
type MigrationConfig struct {
	DefaultBatchSize int `mapstructure:"default_batch_size"` // 默认批大小
	MaxWriteBatch    int `mapstructure:"max_write_batch"`    // 单事务最大写入行数
	BatchDelayMs     int `mapstructure:"batch_delay_ms"`     // 批次间隔，限制写入速率
	RetentionDays    int `mapstructure:"retention_days"`     // 终态任务保留天数
}

// ModerationConfig 审核引擎配置
type ModerationConfig struct {
	DefaultStatus string `mapstructure:"default_status"` // 空规则链时的默认状态
	FailurePolicy string `mapstructure:"failure_policy"` // fail_safe | skip
	WorkerNum     int    `mapstructure:"worker_num"`     // 异步审核 worker 数量
	QueueSize     int    `mapstructure:"queue_size"`     // 审核任务队列长度
}

// StoryConfig 故事生命周期配置
type StoryConfig struct {
	TTLHours     int `mapstructure:"ttl_hours"`     // 故事存活时间
	SweepMinutes int `mapstructure:"sweep_minutes"` // 过期清理周期
	CacheSeconds int `mapstructure:"cache_seconds"` // 活跃列表缓存上限
}

var GlobalConfig Config

// Validate 验证配置
func (c *Config) Validate() error {
	if c.JWT.Secret == "" || c.JWT.Secret == "your_super_secret_key" {
		return errors.New("please set a secure JWT secret in production")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("JWT secret should be at least 32 characters")
	}

	if c.Database.Host == "" || c.Database.User == "" || c.Database.DBName == "" {
		return errors.New("database configuration is incomplete")
	}

	if c.Redis.Addr == "" {
		return errors.New("redis address is required")
	}

	if c.Migration.MaxWriteBatch <= 0 || c.Migration.MaxWriteBatch > 500 {
		return errors.New("migration.max_write_batch must be in (0, 500]")
	}

	switch c.Moderation.FailurePolicy {
	case "fail_safe", "skip":
	default:
		return errors.New("moderation.failure_policy must be fail_safe or skip")
	}

	return nil
}

// LoadConfig 加载配置
func LoadConfig() {
	// 获取环境变量，默认为dev
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}

	// 根据环境选择配置文件
	configName := "config"
	if env != "" && env != "dev" {
		configName = "config." + env
	}

	viper.SetConfigName(configName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// 设置默认值
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("jwt.expire", 24)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("app.env", "dev")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("migration.default_batch_size", 100)
	viper.SetDefault("migration.max_write_batch", 500)
	viper.SetDefault("migration.batch_delay_ms", 100)
	viper.SetDefault("migration.retention_days", 30)
	viper.SetDefault("moderation.default_status", "approved")
	viper.SetDefault("moderation.failure_policy", "fail_safe")
	viper.SetDefault("moderation.worker_num", 4)
	viper.SetDefault("moderation.queue_size", 1024)
	viper.SetDefault("story.ttl_hours", 24)
	viper.SetDefault("story.sweep_minutes", 10)
	viper.SetDefault("story.cache_seconds", 60)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Config file not found, using defaults or env vars: %v", err)
	}

	// 绑定环境变量
	viper.AutomaticEnv()

	if err := viper.Unmarshal(&GlobalConfig); err != nil {
		log.Fatalf("Unable to decode into struct: %v", err)
	}

	// 手动覆盖，以防 viper 无法正确解析复杂结构或环境变量
	if host := os.Getenv("DB_HOST"); host != "" {
		GlobalConfig.Database.Host = host
	}
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		GlobalConfig.Redis.Addr = redisAddr
	}
	if jwtSecret := os.Getenv("JWT_SECRET"); jwtSecret != "" {
		GlobalConfig.JWT.Secret = jwtSecret
	}

	// 验证配置
	if err := GlobalConfig.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	log.Printf("Configuration loaded and validated successfully. Environment: %s", GlobalConfig.App.Env)
}
