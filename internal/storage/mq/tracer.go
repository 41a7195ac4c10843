package mq

import (
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("internal/storage/mq")

// tracingHooks instruments a client so produced records carry the caller's trace context in
// their headers and consumed records resume it. It reads the global providers, so it must run
// after the tracer is initialized.
func tracingHooks() kgo.Opt {
	k := kotel.NewKotel(kotel.WithTracer(kotel.NewTracer(
		kotel.TracerProvider(otel.GetTracerProvider()),
		kotel.TracerPropagator(otel.GetTextMapPropagator()),
	)))
	return kgo.WithHooks(k.Hooks()...)
}
