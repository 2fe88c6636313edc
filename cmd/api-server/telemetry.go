package main

import (
	"context"
	"log/slog"
	"os"

	"fisski-backend/lib/serviceutil"
	"fisski-backend/lib/telemetry"
)

func InitTelemetry(ctx context.Context, verbose bool) {
	telemetry.InitSlog(verbose)

	if verbose {
		slog.DebugContext(ctx, "verbose logging enabled")
	}

	t, err := telemetry.SetupFromEnv(ctx, "api-server")
	if os.IsNotExist(err) {
		slog.Warn("no telemetry.json5 found, otel export disabled")
		return
	}
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	go func() {
		<-ctx.Done()
		t.Shutdown(context.Background())
	}()
	telemetry.InstrumentPerfStats(ctx)
}
