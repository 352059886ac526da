package headers

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/tuanvumaihuynh/inventory-etl/pkg/runid"
)

// Build creates a headers map with trace context and run id injected from context.
func Build(ctx context.Context) map[string]string {
	headers := map[string]string{}

	propagator := otel.GetTextMapPropagator()
	propagator.Inject(ctx, propagation.MapCarrier(headers))

	if id, ok := runid.FromContext(ctx); ok {
		headers[runid.Header] = id
	}

	return headers
}
