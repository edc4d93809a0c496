package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	// Curve export metrics
	exportCounter  metric.Int64Counter
	exportDuration metric.Float64Histogram
	exportCurves   metric.Int64Histogram

	// Invitation mail metrics
	mailCounter metric.Int64Counter
)

// InitDomainMetrics registers the export and mail instruments on the global
// meter provider. Record* calls before this are no-ops.
func InitDomainMetrics() error {
	meter := otel.Meter("emonotate.api")

	var err error
	exportCounter, err = meter.Int64Counter(
		"curve.export.count",
		metric.WithDescription("Number of curve export packages built"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return err
	}

	exportDuration, err = meter.Float64Histogram(
		"curve.export.duration",
		metric.WithDescription("Duration of curve exports including upload"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	exportCurves, err = meter.Int64Histogram(
		"curve.export.size",
		metric.WithDescription("Curves per export package"),
		metric.WithUnit("{curve}"),
	)
	if err != nil {
		return err
	}

	mailCounter, err = meter.Int64Counter(
		"mail.invitation.count",
		metric.WithDescription("Invitation mails by outcome"),
		metric.WithUnit("{mail}"),
	)
	return err
}

// RecordExportSuccess records a finished export; kind is "request" or "ids".
func RecordExportSuccess(ctx context.Context, kind string, curves int, durationMs float64) {
	attrs := metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("status", "success"),
	)
	if exportCounter != nil {
		exportCounter.Add(ctx, 1, attrs)
	}
	if exportDuration != nil {
		exportDuration.Record(ctx, durationMs, attrs)
	}
	if exportCurves != nil {
		exportCurves.Record(ctx, int64(curves), metric.WithAttributes(attribute.String("kind", kind)))
	}
}

func RecordExportError(ctx context.Context, kind string, durationMs float64) {
	attrs := metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("status", "error"),
	)
	if exportCounter != nil {
		exportCounter.Add(ctx, 1, attrs)
	}
	if exportDuration != nil {
		exportDuration.Record(ctx, durationMs, attrs)
	}
}

func RecordMailDispatch(ctx context.Context, sent, skipped, failed int64) {
	if mailCounter == nil {
		return
	}
	for outcome, n := range map[string]int64{"sent": sent, "skipped": skipped, "failed": failed} {
		if n == 0 {
			continue
		}
		mailCounter.Add(ctx, n, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}
