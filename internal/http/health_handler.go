package http

import (
	"context"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"time"
)

const healthCheckTimeout = 3 * time.Second

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

type healthHandler struct {
	logger   *slog.Logger
	checkers map[string]HealthChecker
}

func newHealthHandler(logger *slog.Logger, checkers map[string]HealthChecker) *healthHandler {
	return &healthHandler{
		logger:   logger,
		checkers: checkers,
	}
}

func (h *healthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	res := HealthResponse{
		Status: "ok",
		Checks: make(map[string]string, len(h.checkers)),
	}
	status := http.StatusOK

	for _, name := range slices.Sorted(maps.Keys(h.checkers)) {
		healthy, err := h.checkers[name].IsHealthy(ctx)
		if err != nil || !healthy {
			h.logger.WarnContext(ctx, "dependency unhealthy",
				slog.String("dependency", name),
				slog.Any("error", err),
			)
			res.Checks[name] = "unavailable"
			res.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		res.Checks[name] = "ok"
	}

	//nolint:errcheck
	writeJSON(w, status, res)
}
