package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/tuanvumaihuynh/self-checkout/internal/config"
)

var tracer = otel.Tracer("internal/detector")

var (
	_ Detector      = (*HTTPDetector)(nil)
	_ HealthChecker = (*HTTPDetector)(nil)
)

// HTTPDetector sends images to an inference server as multipart/form-data (field "image") and
// expects {"detections": [{"class", "confidence", "box"}]} back.
type HTTPDetector struct {
	cfg    config.Detector
	client *http.Client
	logger *slog.Logger
}

func NewHTTPDetector(cfg config.Detector, client *http.Client, logger *slog.Logger) *HTTPDetector {
	if client == nil {
		client = &http.Client{}
	}
	if cfg.JPEGQuality <= 0 || cfg.JPEGQuality > 100 {
		cfg.JPEGQuality = jpeg.DefaultQuality
	}
	return &HTTPDetector{
		cfg:    cfg,
		client: client,
		logger: logger.With(slog.String("component", "detector")),
	}
}

type inferenceResponse struct {
	Detections []Detection `json:"detections"`
}

func (d *HTTPDetector) Detect(ctx context.Context, img image.Image) ([]Detection, error) {
	ctx, span := tracer.Start(ctx, "HTTPDetector.Detect", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	body, contentType, err := d.encodeRequest(img)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "encode request")
		return nil, err
	}

	attempt := 0
	operation := func() ([]Detection, error) {
		attempt++
		detections, err := d.predict(ctx, body, contentType)
		if err != nil {
			d.logger.WarnContext(ctx, "inference attempt failed",
				slog.Int("attempt", attempt),
				slog.Any("error", err),
			)
		}
		return detections, err
	}

	detections, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(d.cfg.MaxRetries+1),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "inference failed")
		return nil, fmt.Errorf("inference: %w", err)
	}

	span.SetAttributes(attribute.Int("detections", len(detections)), attribute.Int("attempts", attempt))
	return detections, nil
}

func (d *HTTPDetector) encodeRequest(img image.Image) ([]byte, string, error) {
	var imgBuf bytes.Buffer
	if err := jpeg.Encode(&imgBuf, img, &jpeg.Options{Quality: d.cfg.JPEGQuality}); err != nil {
		return nil, "", fmt.Errorf("encode jpeg: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("image", "image.jpg")
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, &imgBuf); err != nil {
		return nil, "", fmt.Errorf("copy image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}

	return body.Bytes(), writer.FormDataContentType(), nil
}

func (d *HTTPDetector) predict(ctx context.Context, body []byte, contentType string) ([]Detection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.InferenceURL, bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", contentType)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := d.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, backoff.Permanent(ctxErr)
		}
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		//nolint:errcheck
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("inference failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	var result inferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("decode response: %w", err))
	}

	return result.Detections, nil
}

func (d *HTTPDetector) IsHealthy(ctx context.Context) (bool, error) {
	healthURL := d.cfg.HealthURL
	if healthURL == "" {
		healthURL = strings.TrimRight(d.cfg.InferenceURL, "/") + "/health"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("detector unhealthy: status %d", resp.StatusCode)
	}

	return true, nil
}
