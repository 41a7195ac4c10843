package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/tuanvumaihuynh/self-checkout/internal/config"
	"github.com/tuanvumaihuynh/self-checkout/internal/detector"
	"github.com/tuanvumaihuynh/self-checkout/internal/model"
	"github.com/tuanvumaihuynh/self-checkout/internal/repository"
)

const (
	DetectionSuccessfulMsg = "Detection successful"
	NoObjectsDetectedMsg   = "No objects detected"
)

type DetectionReport struct {
	Objects []model.Detection
	Message string
}

type DetectionService interface {
	// Detect prices the objects found in img against the catalog. Only detections whose class
	// names a product with stock left are reported; the rest are dropped without error.
	// Detect never changes stock.
	Detect(ctx context.Context, img image.Image) (DetectionReport, error)
}

type detectionService struct {
	cfg         config.Detector
	logger      *slog.Logger
	detector    detector.Detector
	productRepo repository.ProductRepository
}

func NewDetectionService(
	cfg config.Detector,
	logger *slog.Logger,
	detector detector.Detector,
	productRepo repository.ProductRepository,
) DetectionService {
	return &detectionService{
		cfg:         cfg,
		logger:      logger.With(slog.String("service", "detection")),
		detector:    detector,
		productRepo: productRepo,
	}
}

func (s *detectionService) Detect(ctx context.Context, img image.Image) (DetectionReport, error) {
	detectCtx := ctx
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		detectCtx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	raw, err := s.detector.Detect(detectCtx, img)
	if err != nil {
		return DetectionReport{}, dependencyErr(fmt.Errorf("detector detect: %w", err))
	}

	type lookup struct {
		product model.Product
		found   bool
	}
	seen := make(map[string]lookup)

	objects := []model.Detection{}
	for _, d := range raw {
		if d.Confidence < s.cfg.MinConfidence {
			continue
		}

		l, ok := seen[d.Class]
		if !ok {
			product, err := s.productRepo.GetProductByName(ctx, d.Class)
			switch {
			case err == nil:
				l = lookup{product: product, found: true}
			case errors.Is(err, repository.ErrProductNotFound):
				l = lookup{}
			default:
				return DetectionReport{}, dependencyErr(fmt.Errorf("product repository get product by name: %w", err))
			}
			seen[d.Class] = l
		}

		if !l.found || !l.product.InStock() {
			continue
		}

		objects = append(objects, model.Detection{
			Class:             d.Class,
			Confidence:        d.Confidence,
			Price:             l.product.Price,
			AvailableQuantity: l.product.Quantity,
			Box:               d.Box,
		})
	}

	s.logger.DebugContext(ctx, "detection priced",
		slog.Int("raw", len(raw)),
		slog.Int("available", len(objects)),
	)

	msg := DetectionSuccessfulMsg
	if len(objects) == 0 {
		msg = NoObjectsDetectedMsg
	}

	return DetectionReport{
		Objects: objects,
		Message: msg,
	}, nil
}
