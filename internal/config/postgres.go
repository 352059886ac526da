package config

import "time"

type Postgres struct {
	Host     string `env:"POSTGRES_HOST" envDefault:"localhost" validate:"required"`
	Port     int    `env:"POSTGRES_PORT" envDefault:"5432" validate:"gt=0"`
	User     string `env:"POSTGRES_USER" validate:"required"`
	Password string `env:"POSTGRES_PASSWORD" validate:"required"`
	DB       string `env:"POSTGRES_DB" validate:"required"`
	SSLMode  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	MaxConns        int32         `env:"POSTGRES_MAX_CONNS" envDefault:"4"`
	MinConns        int32         `env:"POSTGRES_MIN_CONNS" envDefault:"0"`
	MaxConnLifetime time.Duration `env:"POSTGRES_MAX_CONN_LIFETIME" envDefault:"1h"`
	MaxConnIdleTime time.Duration `env:"POSTGRES_MAX_CONN_IDLE_TIME" envDefault:"5m"`
}
