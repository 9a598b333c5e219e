package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"capstone/pkg/constants"
)

var GlobalConfig *Config

// Config 全局配置
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Log          LogConfig          `mapstructure:"log"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Notification NotificationConfig `mapstructure:"notification"`
	Scheduler    SchedulerConfig    `mapstructure:"scheduler"`
	Capstone     CapstoneConfig     `mapstructure:"capstone"`
}

// ServerConfig 服务配置
type ServerConfig struct {
	Name string `mapstructure:"name"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"` // mysql, postgres, sqlite
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Database        string `mapstructure:"database"` // sqlite 时为文件路径
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"ssl_mode"` // 仅 postgres
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 秒
	LogLevel        string `mapstructure:"log_level"`         // SQL日志级别: silent/error/warn/info
	AutoMigrate     bool   `mapstructure:"auto_migrate"`      // serve 启动时自动迁移
}

// AuthConfig 认证配置
type AuthConfig struct {
	JWT JWTConfig `mapstructure:"jwt"`
}

// JWTConfig 身份目录签发Token的校验配置
type JWTConfig struct {
	Secret            string `mapstructure:"secret"`
	Issuer            string `mapstructure:"issuer"`
	AccessTokenExpire int    `mapstructure:"access_token_expire"` // 秒, 仅本地签发(测试/CLI)使用
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string `mapstructure:"level"`  // debug, info, warn, error
	Format   string `mapstructure:"format"` // json, console
	Output   string `mapstructure:"output"` // stdout, file
	FilePath string `mapstructure:"file_path"`
}

// RedisConfig Redis配置, 用于通知投递
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// NotificationConfig 通知配置
type NotificationConfig struct {
	Enabled  bool   `mapstructure:"enabled"`  // 是否启用
	Provider string `mapstructure:"provider"` // log, redis, multi
	Channel  string `mapstructure:"channel"`  // Redis 发布频道
}

// SchedulerConfig 定时任务配置
type SchedulerConfig struct {
	InvitationSweep string `mapstructure:"invitation_sweep"` // Cron表达式(秒级)
}

// CapstoneConfig 业务规则配置
type CapstoneConfig struct {
	MaxAdvisorProjects int    `mapstructure:"max_advisor_projects"` // 指导教师可同时指导的已通过项目数
	GroupNumberWidth   int    `mapstructure:"group_number_width"`   // 组号补零位数
	InvitationTTL      string `mapstructure:"invitation_ttl"`       // 邀请有效期
}

// InvitationTTLDuration 解析邀请有效期, 非法或为空时默认14天
func (c *CapstoneConfig) InvitationTTLDuration() time.Duration {
	if c.InvitationTTL == "" {
		return 14 * 24 * time.Hour
	}
	d, err := time.ParseDuration(c.InvitationTTL)
	if err != nil || d <= 0 {
		return 14 * 24 * time.Hour
	}
	return d
}

// Normalize 补齐业务默认值
func (c *CapstoneConfig) Normalize() {
	if c.MaxAdvisorProjects <= 0 {
		c.MaxAdvisorProjects = constants.DefaultMaxAdvisorProjects
	}
	if c.GroupNumberWidth <= 0 {
		c.GroupNumberWidth = constants.DefaultGroupNumberWidth
	}
}

// Load 加载配置
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// 设置配置文件路径
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	// 读取环境变量, 例如 CAPSTONE_DATABASE_HOST
	v.SetEnvPrefix("CAPSTONE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	// 解析配置
	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	config.Capstone.Normalize()

	// 设置全局配置
	GlobalConfig = config

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.name", "capstone")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.conn_max_lifetime", 3600)
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("notification.provider", "log")
	v.SetDefault("notification.channel", "capstone:notifications")
	v.SetDefault("scheduler.invitation_sweep", "0 0 * * * *")
	v.SetDefault("capstone.max_advisor_projects", constants.DefaultMaxAdvisorProjects)
	v.SetDefault("capstone.group_number_width", constants.DefaultGroupNumberWidth)
	v.SetDefault("capstone.invitation_ttl", "336h")
}

// GetDSN 获取数据库DSN
func (c *DatabaseConfig) GetDSN() string {
	switch c.Driver {
	case "postgres":
		sslMode := c.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=Asia/Shanghai",
			c.Host, c.Port, c.Username, c.Password, c.Database, sslMode)
	case "sqlite":
		return c.Database
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.Username,
			c.Password,
			c.Host,
			c.Port,
			c.Database,
		)
	}
}
