package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tuanvumaihuynh/self-checkout/internal/apperr"
	"github.com/tuanvumaihuynh/self-checkout/internal/config"
	"github.com/tuanvumaihuynh/self-checkout/internal/detector"
	"github.com/tuanvumaihuynh/self-checkout/internal/model"
	"github.com/tuanvumaihuynh/self-checkout/internal/service"
)

const (
	imageFormField     = "image"
	noImageUploadedMsg = "No image uploaded"
)

type DetectionResponse struct {
	Success bool               `json:"success"`
	Objects *[]model.Detection `json:"objects,omitempty"`
	Message string             `json:"message"`
}

type detectionHandler struct {
	maxUploadSize int64
	detectionSvc  service.DetectionService
}

func newDetectionHandler(cfg config.HTTP, detectionSvc service.DetectionService) *detectionHandler {
	return &detectionHandler{
		maxUploadSize: cfg.MaxUploadSize,
		detectionSvc:  detectionSvc,
	}
}

func (h *detectionHandler) DetectObjects(w http.ResponseWriter, r *http.Request) error {
	if h.maxUploadSize > 0 && r.Body != nil {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}

	file, _, err := r.FormFile(imageFormField)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			return writeJSON(w, http.StatusOK, DetectionResponse{
				Success: false,
				Message: noImageUploadedMsg,
			})
		case errors.As(err, &maxBytesErr):
			return apperr.InvalidImageErr.
				WithMsg(fmt.Sprintf("uploaded image exceeds %d bytes", maxBytesErr.Limit)).
				WrapParent(err)
		default:
			return requestErr(err)
		}
	}
	defer file.Close()

	img, _, err := detector.DecodeImage(file)
	if err != nil {
		return apperr.InvalidImageErr.WrapParent(err)
	}

	report, err := h.detectionSvc.Detect(r.Context(), img)
	if err != nil {
		return fmt.Errorf("detection service detect: %w", err)
	}

	return writeJSON(w, http.StatusOK, DetectionResponse{
		Success: true,
		Objects: &report.Objects,
		Message: report.Message,
	})
}
