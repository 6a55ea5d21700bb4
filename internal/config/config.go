package config

import (
	"fmt"
	"log"

	"github.com/spf13/viper"
)

// global configuration structure
type Config struct {
	Bot        BotConfig        `mapstructure:"bot"`
	Logger     LoggerConfig     `mapstructure:"logger"`
	Moderation ModerationConfig `mapstructure:"moderation"`
	Database   DatabaseConfig   `mapstructure:"database"`
}

// Telegram bot configuration
type BotConfig struct {
	Token        string        `mapstructure:"token"`
	OwnerID      int64         `mapstructure:"owner_id"`
	LogChannelID int64         `mapstructure:"log_channel_id"`
	Webhook      WebhookConfig `mapstructure:"webhook"`
}

// webhook server configuration
type WebhookConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	ListenPort string `mapstructure:"listen_port"`
	DebugPath  string `mapstructure:"debug_path"`
	CertFile   string `mapstructure:"cert_file"`
	KeyFile    string `mapstructure:"key_file"`
}

// logging configuration
type LoggerConfig struct {
	Directory string            `mapstructure:"directory"`
	Rotation  LogRotationConfig `mapstructure:"rotation"`
	Level     string            `mapstructure:"level"`
}

// log rotation settings
type LogRotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Charset  string `mapstructure:"charset"`
}

// defaults applied to newly seen groups and scheduler tuning
type ModerationConfig struct {
	WarnLimit           int  `mapstructure:"warn_limit"`
	FloodLimit          int  `mapstructure:"flood_limit"`
	CaptchaTimeout      int  `mapstructure:"captcha_timeout"`
	EnableAntiSpam      bool `mapstructure:"enable_anti_spam"`
	EnableWelcome       bool `mapstructure:"enable_welcome"`
	EnableGoodbye       bool `mapstructure:"enable_goodbye"`
	EnableFilter        bool `mapstructure:"enable_filter"`
	EnableVerification  bool `mapstructure:"enable_verification"`
	SweepIntervalMinute int  `mapstructure:"sweep_interval_minute"`
}

var cfg *Config

func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("config file path is required")
	}

	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	log.Printf("Using config file: %s", v.ConfigFileUsed())

	// Unmarshal configuration
	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return cfg, nil
}

func Get() *Config {
	if cfg == nil {
		log.Fatal("Configuration not initialized, call Load() first")
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.owner_id", 0)
	v.SetDefault("bot.log_channel_id", 0)
	v.SetDefault("bot.webhook.listen_port", "8443")
	v.SetDefault("bot.webhook.debug_path", "/debug")
	v.SetDefault("bot.webhook.cert_file", "")
	v.SetDefault("bot.webhook.key_file", "")

	v.SetDefault("logger.directory", "logs")
	v.SetDefault("logger.rotation.max_size", 10)
	v.SetDefault("logger.rotation.max_backups", 30)
	v.SetDefault("logger.rotation.max_age", 90)
	v.SetDefault("logger.rotation.compress", true)
	v.SetDefault("logger.level", "INFO")

	v.SetDefault("database.enabled", false)

	v.SetDefault("moderation.warn_limit", 3)
	v.SetDefault("moderation.flood_limit", 5)
	v.SetDefault("moderation.captcha_timeout", 60)
	v.SetDefault("moderation.enable_anti_spam", true)
	v.SetDefault("moderation.enable_welcome", true)
	v.SetDefault("moderation.enable_goodbye", true)
	v.SetDefault("moderation.enable_filter", true)
	v.SetDefault("moderation.enable_verification", false)
	v.SetDefault("moderation.sweep_interval_minute", 1)
}
