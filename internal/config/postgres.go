package config

import (
	"errors"
	"time"
)

// Postgres holds the catalog and outbox database settings.
type Postgres struct {
	Host     string `env:"POSTGRES_HOST,required"`
	Port     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	User     string `env:"POSTGRES_USER,required"`
	Password string `env:"POSTGRES_PASSWORD,required"`
	DB       string `env:"POSTGRES_DB,required"`
	SSLMode  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// ApplicationName shows up in pg_stat_activity.
	ApplicationName string `env:"POSTGRES_APPLICATION_NAME" envDefault:"self-checkout"`

	MaxConns        int32         `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
	MinConns        int32         `env:"POSTGRES_MIN_CONNS" envDefault:"1"`
	MaxConnLifetime time.Duration `env:"POSTGRES_MAX_CONN_LIFETIME" envDefault:"1h"`
	MaxConnIdleTime time.Duration `env:"POSTGRES_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	ConnectTimeout  time.Duration `env:"POSTGRES_CONNECT_TIMEOUT" envDefault:"5s"`
}

func (p *Postgres) Validate() error {
	var errs []error
	if p.MaxConns < 1 {
		errs = append(errs, errors.New("POSTGRES_MAX_CONNS must be at least 1"))
	}
	if p.MinConns < 0 || p.MinConns > p.MaxConns {
		errs = append(errs, errors.New("POSTGRES_MIN_CONNS must be within [0, POSTGRES_MAX_CONNS]"))
	}
	if p.ConnectTimeout <= 0 {
		errs = append(errs, errors.New("POSTGRES_CONNECT_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}
