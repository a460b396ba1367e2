package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}

type App struct {
	Name    string
	Env     string
	BaseURL string // 对外地址，拼接邮件里的确认链接
	HTTP    HTTP
}

type LogRotate struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level  string
	JSON   bool
	Rotate LogRotate
}

type JWT struct {
	Secret             string
	Issuer             string
	AccessTokenTTLMin  int
	RefreshTokenTTLDay int
	EmailTokenTTLDay   int
}

type Redis struct {
	Addr        string `mapstructure:"addr"`
	Password    string `mapstructure:"password"`
	DB          int    `mapstructure:"db"`
	UserTTLSec  int    `mapstructure:"user_ttl_sec"` // 当前用户缓存 TTL
}

type DB struct {
	Driver             string
	DSN                string // 凭据直接写在 DSN 里
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Mail struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type Cloudinary struct {
	CloudName string `mapstructure:"cloud_name"`
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
	Folder    string
}

type RateLimit struct {
	CreateContactTimes      int // 窗口内允许的创建次数
	CreateContactWindowSec  int
	GlobalRPS               int
	GlobalBurst             int
	MaxAvatarBytes          int64
}

type Config struct {
	App        App
	Log        Log
	JWT        JWT
	DB         DB
	Redis      Redis `mapstructure:"redis"`
	Mail       Mail
	Cloudinary Cloudinary `mapstructure:"cloudinary"`
	RateLimit  RateLimit
}

func Load(path string) *Config {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("read config: %v", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		log.Fatalf("unmarshal config: %v", err)
	}
	return &c
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.rotate.filename", "logs/app.log")
	v.SetDefault("log.rotate.maxsizemb", 100)
	v.SetDefault("log.rotate.maxbackups", 7)
	v.SetDefault("log.rotate.maxagedays", 30)
	v.SetDefault("jwt.accesstokenttlmin", 15)
	v.SetDefault("jwt.refreshtokenttlday", 7)
	v.SetDefault("jwt.emailtokenttlday", 7)
	v.SetDefault("redis.user_ttl_sec", 900)
	v.SetDefault("ratelimit.createcontacttimes", 5)
	v.SetDefault("ratelimit.createcontactwindowsec", 60)
	v.SetDefault("ratelimit.globalrps", 200)
	v.SetDefault("ratelimit.globalburst", 400)
	v.SetDefault("ratelimit.maxavatarbytes", 2<<20)
}
