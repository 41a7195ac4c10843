package config

type HTTP struct {
	Port    uint32 `env:"HTTP_PORT" envDefault:"8080"`
	Swagger bool   `env:"HTTP_SWAGGER" envDefault:"true"`

	// MaxUploadSize bounds the multipart body accepted by the detection endpoint.
	MaxUploadSize int64 `env:"HTTP_MAX_UPLOAD_SIZE" envDefault:"33554432"`

	ValidateRequests   bool     `env:"HTTP_VALIDATE_REQUESTS" envDefault:"true"`
	CorsAllowedOrigins []string `env:"HTTP_CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}
