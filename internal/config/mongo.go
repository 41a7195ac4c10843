package config

import "time"

// Mongo configures the document store holding archived receipts.
type Mongo struct {
	URI               string        `env:"MONGO_URI,required"`
	DB                string        `env:"MONGO_DB" envDefault:"selfcheckout"`
	ReceiptCollection string        `env:"MONGO_RECEIPT_COLLECTION" envDefault:"receipts"`
	Timeout           time.Duration `env:"MONGO_TIMEOUT" envDefault:"10s"`
}
