package config

import (
	"errors"
	"time"
)

// Detector configures the client of the object detection inference server.
type Detector struct {
	InferenceURL string `env:"DETECTOR_INFERENCE_URL,required,notEmpty"`
	// HealthURL defaults to InferenceURL + "/health" when empty.
	HealthURL string `env:"DETECTOR_HEALTH_URL"`

	// Timeout bounds a whole detection, retries included.
	Timeout       time.Duration `env:"DETECTOR_TIMEOUT" envDefault:"10s"`
	MaxRetries    uint          `env:"DETECTOR_MAX_RETRIES" envDefault:"2"`
	MinConfidence float64       `env:"DETECTOR_MIN_CONFIDENCE" envDefault:"0"`
	JPEGQuality   int           `env:"DETECTOR_JPEG_QUALITY" envDefault:"90"`
}

func (d *Detector) Validate() error {
	var errs []error
	if d.MinConfidence < 0 || d.MinConfidence > 1 {
		errs = append(errs, errors.New("DETECTOR_MIN_CONFIDENCE must be within [0, 1]"))
	}
	if d.JPEGQuality < 1 || d.JPEGQuality > 100 {
		errs = append(errs, errors.New("DETECTOR_JPEG_QUALITY must be within [1, 100]"))
	}
	if d.Timeout < 0 {
		errs = append(errs, errors.New("DETECTOR_TIMEOUT must not be negative"))
	}
	return errors.Join(errs...)
}
