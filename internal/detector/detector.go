// Package detector talks to the object detection model. The model itself runs in a separate
// inference server; this package only sends images and decodes detections.
package detector

import (
	"context"
	"image"

	"github.com/tuanvumaihuynh/self-checkout/internal/model"
)

// Detection is one raw model output.
type Detection struct {
	Class      string    `json:"class"`
	Confidence float64   `json:"confidence"`
	Box        model.Box `json:"box"`
}

type Detector interface {
	Detect(ctx context.Context, img image.Image) ([]Detection, error)
}

type HealthChecker interface {
	IsHealthy(ctx context.Context) (bool, error)
}
