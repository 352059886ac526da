package config

import "time"

type Odoo struct {
	URL      string        `env:"ODOO_URL" validate:"required,url"`
	DB       string        `env:"ODOO_DB" validate:"required"`
	Login    string        `env:"ODOO_LOGIN" validate:"required"`
	Password string        `env:"ODOO_PASSWORD" validate:"required"`
	Timeout  time.Duration `env:"ODOO_TIMEOUT" envDefault:"180s" validate:"gt=0"`
}
