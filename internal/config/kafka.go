package config

type Kafka struct {
	Addresses []string `env:"KAFKA_ADDRESSES,required" envSeparator:","`
	Group     string   `env:"KAFKA_GROUP" envDefault:"self-checkout"`
	ClientID  string   `env:"KAFKA_CLIENT_ID" envDefault:"self-checkout"`
}
