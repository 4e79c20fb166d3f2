package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

const (
	AuditSinkLog      = "log"
	AuditSinkFirehose = "firehose"
)

type Config struct {
	Env        string `yaml:"env" validate:"oneof=dev stage prod"`
	BadgeLabel string `yaml:"badge_label" validate:"required"`
	HTTPServer `yaml:"http_server"`
	Postgres   `yaml:"postgres"`
	Counter    `yaml:"counter"`
	Audit      `yaml:"audit"`
}

type HTTPServer struct {
	Port           int           `yaml:"port" validate:"min=1,max=65535"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	MaxHeaderBytes int           `yaml:"max_header_bytes"`
	CertFile       string        `yaml:"cert_file"`
	KeyFile        string        `yaml:"key_file"`
}

var defaultHTTPServer = HTTPServer{
	Port:           8080,
	ReadTimeout:    5 * time.Second,
	WriteTimeout:   10 * time.Second,
	IdleTimeout:    time.Minute,
	MaxHeaderBytes: 1 << 20,
}

func (s *HTTPServer) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

type Postgres struct {
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port" validate:"min=1,max=65535"`
	DB              string        `yaml:"db"`
	SSLMode         string        `yaml:"sslmode"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
}

var defaultPostgres = Postgres{
	Host:            "localhost",
	Port:            5432,
	SSLMode:         "disable",
	ConnMaxIdleTime: 5 * time.Minute,
	ConnMaxLifetime: 30 * time.Minute,
	MaxIdleConns:    5,
	MaxOpenConns:    25,
}

func (p *Postgres) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DB, p.SSLMode)
}

// Counter configures the durable counter store.
type Counter struct {
	Table string `yaml:"table" validate:"required"`
}

var defaultCounter = Counter{
	Table: "view_counters",
}

// Audit configures the audit event sink. The log sink is the development
// default; the firehose sink delivers events to a Kinesis Data Firehose
// stream.
type Audit struct {
	Sink   string `yaml:"sink" validate:"oneof=log firehose"`
	Stream string `yaml:"stream" validate:"required"`
	Region string `yaml:"region" validate:"required"`
}

var defaultAudit = Audit{
	Sink:   AuditSinkLog,
	Stream: "views_log_stream_dev",
	Region: "us-east-1",
}

// Load reads the config file at path, fills defaults, and validates the
// result. An empty path yields the development defaults.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	var cfg Config
	setDefaults(&cfg)

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to open config file: %w", op, err)
		}
		defer f.Close()

		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("%s: failed to decode config file: %w", op, err)
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("%s: invalid config: %w", op, err)
	}

	return &cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.Env = EnvDev
	cfg.BadgeLabel = "views"
	cfg.HTTPServer = defaultHTTPServer
	cfg.Postgres = defaultPostgres
	cfg.Counter = defaultCounter
	cfg.Audit = defaultAudit
}
