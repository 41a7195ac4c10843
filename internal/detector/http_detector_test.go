package detector_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/self-checkout/internal/config"
	"github.com/tuanvumaihuynh/self-checkout/internal/detector"
	"github.com/tuanvumaihuynh/self-checkout/internal/model"
)

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 100, A: 255})
		}
	}
	return img
}

func newDetector(t *testing.T, url string, retries uint) *detector.HTTPDetector {
	t.Helper()
	cfg := config.Detector{
		InferenceURL: url,
		Timeout:      5 * time.Second,
		MaxRetries:   retries,
	}
	return detector.NewHTTPDetector(cfg, nil, slog.New(slog.DiscardHandler))
}

func TestHTTPDetectorDetect(t *testing.T) {
	t.Run("Should post the image and decode detections", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)

			file, header, err := r.FormFile("image")
			if !assert.NoError(t, err) {
				return
			}
			defer file.Close()
			assert.Equal(t, "image.jpg", header.Filename)

			_, format, err := image.Decode(file)
			assert.NoError(t, err)
			assert.Equal(t, "jpeg", format)

			w.Header().Set("Content-Type", "application/json")
			//nolint:errcheck
			json.NewEncoder(w).Encode(map[string]any{
				"detections": []map[string]any{
					{"class": "Maggi", "confidence": 0.91, "box": map[string]float64{"x1": 1, "y1": 2, "x2": 3, "y2": 4}},
				},
			})
		}))
		defer srv.Close()

		got, err := newDetector(t, srv.URL, 0).Detect(context.Background(), testImage())
		require.NoError(t, err)
		assert.Equal(t, []detector.Detection{
			{Class: "Maggi", Confidence: 0.91, Box: model.Box{X1: 1, Y1: 2, X2: 3, Y2: 4}},
		}, got)
	})

	t.Run("Should retry server errors", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			//nolint:errcheck
			w.Write([]byte(`{"detections":[]}`))
		}))
		defer srv.Close()

		got, err := newDetector(t, srv.URL, 2).Detect(context.Background(), testImage())
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("Should not retry client errors", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			http.Error(w, "bad image", http.StatusUnprocessableEntity)
		}))
		defer srv.Close()

		_, err := newDetector(t, srv.URL, 3).Detect(context.Background(), testImage())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "422")
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("Should stop when the context expires", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer srv.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := newDetector(t, srv.URL, 3).Detect(ctx, testImage())
		assert.Error(t, err)
	})
}

func TestHTTPDetectorIsHealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/predict/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	ok, err := newDetector(t, srv.URL+"/predict", 0).IsHealthy(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = newDetector(t, srv.URL+"/other", 0).IsHealthy(context.Background())
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestDecodeImage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage()))

	img, format, err := detector.DecodeImage(&buf)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 8, img.Bounds().Dx())

	_, _, err = detector.DecodeImage(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}
