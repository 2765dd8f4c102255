package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Log         LogConfig         `mapstructure:"log"`
	DB          DBConfig          `mapstructure:"db"`
	MySQL       MySQLConfig       `mapstructure:"mysql"`
	Postgres    PostgresConfig    `mapstructure:"postgres"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Idempotency IdempotencyConfig `mapstructure:"idempotency"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Upload      UploadConfig      `mapstructure:"upload"`
	Gateway     GatewayConfig     `mapstructure:"gateway"`
	Validation  ValidationConfig  `mapstructure:"validation"`
	Sweep       SweepConfig       `mapstructure:"sweep"`
}

type AppConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DBConfig struct {
	Driver   string        `mapstructure:"driver"`
	Timeout  time.Duration `mapstructure:"timeout"`
	LogLevel string        `mapstructure:"log_level"`
	Migrate  bool          `mapstructure:"migrate"`
}

type MySQLConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	DB   string `mapstructure:"db"`
	User string `mapstructure:"user"`
	Pass string `mapstructure:"pass"`
}

type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr string `mapstructure:"addr"`
	DB   int    `mapstructure:"db"`
}

type IdempotencyConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type StorageConfig struct {
	Root    string        `mapstructure:"root"`
	Bucket  string        `mapstructure:"bucket"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type UploadConfig struct {
	MaxBytes int64 `mapstructure:"max_bytes"`
}

type GatewayConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	RatePerSec  float64       `mapstructure:"rate_per_sec"`
	// Mirror pushes saved custom data and validations to the gateway as well.
	Mirror bool `mapstructure:"mirror"`
}

type ValidationConfig struct {
	Mode string `mapstructure:"mode"`
}

type SweepConfig struct {
	Interval  time.Duration `mapstructure:"interval"`
	OlderThan time.Duration `mapstructure:"older_than"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.env", "production")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("db.driver", "mysql")
	v.SetDefault("db.timeout", "5s")
	v.SetDefault("db.log_level", "warn")
	v.SetDefault("db.migrate", true)
	v.SetDefault("mysql.host", "mysql")
	v.SetDefault("mysql.port", "3306")
	v.SetDefault("mysql.db", "lr")
	v.SetDefault("mysql.user", "lr")
	v.SetDefault("mysql.pass", "lr")
	v.SetDefault("postgres.dsn", "")

	v.SetDefault("redis.addr", "redis:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("idempotency.ttl", "5m")

	v.SetDefault("storage.root", "./data")
	v.SetDefault("storage.bucket", "lorry-receipts")
	v.SetDefault("storage.timeout", "30s")
	v.SetDefault("upload.max_bytes", 12*1024*1024)

	v.SetDefault("gateway.base_url", "http://extraction:8000")
	v.SetDefault("gateway.timeout", "15s")
	v.SetDefault("gateway.max_attempts", 3)
	v.SetDefault("gateway.rate_per_sec", 10.0)
	v.SetDefault("gateway.mirror", false)

	v.SetDefault("validation.mode", "coarse")
	v.SetDefault("sweep.interval", "5m")
	v.SetDefault("sweep.older_than", "15m")
}

// Load reads defaults, then an optional config.yaml in the working directory,
// then LR_* environment variables (LR_MYSQL_HOST overrides mysql.host).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("LR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	return &c, nil
}

func (c *Config) Validate() error {
	switch c.DB.Driver {
	case "mysql":
		if c.MySQL.Host == "" || c.MySQL.Port == "" || c.MySQL.DB == "" || c.MySQL.User == "" {
			return errors.New("missing MySQL config (LR_MYSQL_HOST/PORT/DB/USER)")
		}
		if err := validPort(c.MySQL.Port); err != nil {
			return fmt.Errorf("invalid LR_MYSQL_PORT %q: %w", c.MySQL.Port, err)
		}
	case "postgres":
		if c.Postgres.DSN == "" {
			return errors.New("missing LR_POSTGRES_DSN")
		}
	default:
		return fmt.Errorf("unknown db.driver %q (want mysql|postgres)", c.DB.Driver)
	}
	if c.App.Port == "" {
		return errors.New("missing LR_APP_PORT")
	}
	if err := validPort(c.App.Port); err != nil {
		return fmt.Errorf("invalid LR_APP_PORT %q: %w", c.App.Port, err)
	}
	switch c.Validation.Mode {
	case "coarse", "strict":
	default:
		return fmt.Errorf("unknown validation.mode %q (want coarse|strict)", c.Validation.Mode)
	}
	if c.Storage.Bucket == "" || strings.Contains(c.Storage.Bucket, "/") {
		return fmt.Errorf("invalid storage.bucket %q", c.Storage.Bucket)
	}
	if c.Gateway.BaseURL == "" {
		return errors.New("missing LR_GATEWAY_BASE_URL")
	}
	if c.Upload.MaxBytes <= 0 {
		return errors.New("upload.max_bytes must be positive")
	}
	if c.DB.Timeout <= 0 {
		return errors.New("db.timeout must be positive")
	}
	if c.Storage.Timeout <= 0 {
		return errors.New("storage.timeout must be positive")
	}
	// an upload still inside its PUT must never look abandoned
	if c.Sweep.OlderThan <= c.Storage.Timeout {
		return fmt.Errorf("sweep.older_than (%s) must exceed storage.timeout (%s)", c.Sweep.OlderThan, c.Storage.Timeout)
	}
	return nil
}

func validPort(p string) error {
	n, err := strconv.Atoi(p)
	if err != nil {
		// named service ports ("http") are fine
		_, err = net.LookupPort("tcp", p)
		return err
	}
	if n <= 0 || n > 65535 {
		return fmt.Errorf("port %d out of range", n)
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQL.Host, c.MySQL.Port) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATE/DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQL.User, c.MySQL.Pass, c.mysqlAddr(), c.MySQL.DB)
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DB.Driver == "postgres" {
		return c.Postgres.DSN
	}
	return c.MySQLDSN()
}

// InitLogger installs the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zc zap.Config
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zc.Level.SetLevel(level)

	logger, err := zc.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)
	return nil
}
