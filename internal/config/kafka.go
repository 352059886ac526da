package config

import "time"

// Kafka is optional: with no addresses the merged-snapshot notification is skipped.
type Kafka struct {
	Addresses       []string      `env:"KAFKA_ADDRESSES" envSeparator:","`
	Topic           string        `env:"KAFKA_TOPIC" envDefault:"inventory.snapshot.merged" validate:"required"`
	ClientID        string        `env:"KAFKA_CLIENT_ID" envDefault:"inventory-etl"`
	DeliveryTimeout time.Duration `env:"KAFKA_DELIVERY_TIMEOUT" envDefault:"30s" validate:"gt=0"`
}

// Enabled reports whether any broker address is configured.
func (k Kafka) Enabled() bool {
	return len(k.Addresses) > 0
}
