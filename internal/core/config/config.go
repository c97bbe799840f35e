package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int `mapstructure:"read_timeout_sec"`
	WriteTimeoutSec int `mapstructure:"write_timeout_sec"`
	IdleTimeoutSec  int `mapstructure:"idle_timeout_sec"`
}

type App struct {
	Name string
	Env  string
	HTTP HTTP
}

type LogFile struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int `mapstructure:"max_size_mb"`
	MaxBackups int `mapstructure:"max_backups"`
	MaxAgeDays int `mapstructure:"max_age_days"`
	Compress   bool
}

type Log struct {
	Level string
	JSON  bool
	File  LogFile
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type Cache struct {
	TTLSec int `mapstructure:"ttl_sec"`
}

func (c Cache) TTL() time.Duration {
	if c.TTLSec <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.TTLSec) * time.Second
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int    `mapstructure:"max_open_conns"`
	MaxIdleConns       int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMin int    `mapstructure:"conn_max_lifetime_min"`
	AutoMigrate        bool   `mapstructure:"auto_migrate"`
	LogLevel           string `mapstructure:"log_level"`
}

// Keycloak holds everything the identity-provider client and the token
// verifier need. ClientUUID is the internal id of ClientID, used for role
// lookups.
type Keycloak struct {
	URL           string `mapstructure:"url"`
	Realm         string `mapstructure:"realm"`
	AdminUsername string `mapstructure:"admin_username"`
	AdminPassword string `mapstructure:"admin_password"`
	ClientID      string `mapstructure:"client_id"`
	ClientSecret  string `mapstructure:"client_secret"`
	ClientUUID    string `mapstructure:"client_uuid"`
	TimeoutSec    int    `mapstructure:"timeout_sec"`
}

func (k Keycloak) Timeout() time.Duration {
	if k.TimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(k.TimeoutSec) * time.Second
}

// BaseURL is URL without trailing slashes.
func (k Keycloak) BaseURL() string { return strings.TrimRight(k.URL, "/") }

func (k Keycloak) JWKSURL() string {
	return fmt.Sprintf("%s/realms/%s/protocol/openid-connect/certs", k.BaseURL(), k.Realm)
}

func (k Keycloak) Issuer() string {
	return fmt.Sprintf("%s/realms/%s", k.BaseURL(), k.Realm)
}

type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	TLSMode  string `mapstructure:"tls_mode"` // auto | ssl | none
}

type Mail struct {
	Driver                  string // mailersend | smtp | log
	APIKey                  string `mapstructure:"api_key"`
	FromEmail               string `mapstructure:"from_email"`
	FromName                string `mapstructure:"from_name"`
	VerifyEmailTemplateID   string `mapstructure:"verify_email_template_id"`
	ResetPasswordTemplateID string `mapstructure:"reset_password_template_id"`
	TimeoutSec              int    `mapstructure:"timeout_sec"`
	SMTP                    SMTP
}

func (m Mail) Timeout() time.Duration {
	if m.TimeoutSec <= 0 {
		return 15 * time.Second
	}
	return time.Duration(m.TimeoutSec) * time.Second
}

type Config struct {
	App      App
	Log      Log
	DB       DB
	Redis    Redis `mapstructure:"redis"`
	Cache    Cache
	Keycloak Keycloak
	Mail     Mail
}

// Load reads the YAML file at path (or CONFIG_PATH, or the local default) and
// applies APP_* environment overrides, e.g. APP_KEYCLOAK_CLIENT_SECRET.
func Load(path string) *Config {
	c, err := Read(path)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return c
}

func Read(path string) (*Config, error) {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "storefront-api")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.read_timeout_sec", 5)
	v.SetDefault("app.http.write_timeout_sec", 15)
	v.SetDefault("app.http.idle_timeout_sec", 60)
	v.SetDefault("log.level", "info")
	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime_min", 30)
	v.SetDefault("db.log_level", "warn")
	v.SetDefault("cache.ttl_sec", 300)
	v.SetDefault("keycloak.timeout_sec", 10)
	v.SetDefault("mail.driver", "log")
	v.SetDefault("mail.from_name", "Storefront")
	v.SetDefault("mail.verify_email_template_id", "verify-email")
	v.SetDefault("mail.reset_password_template_id", "reset-password")
	v.SetDefault("mail.smtp.port", 587)
	v.SetDefault("mail.smtp.tls_mode", "auto")

	v.SetDefault("db.auto_migrate", false)
	v.SetDefault("redis.db", 0)

	// AutomaticEnv only sees keys viper already knows about.
	for _, k := range []string{
		"db.dsn", "db.username", "db.password",
		"redis.addr", "redis.password",
		"keycloak.url", "keycloak.realm", "keycloak.admin_username", "keycloak.admin_password",
		"keycloak.client_id", "keycloak.client_secret", "keycloak.client_uuid",
		"mail.api_key", "mail.from_email",
		"mail.smtp.host", "mail.smtp.username", "mail.smtp.password",
	} {
		v.SetDefault(k, "")
	}
}
