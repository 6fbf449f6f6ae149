package main

import (
	"context"

	"spots-backend/cmd/spots/commands"
	"spots-backend/lib/serviceutil"
	"spots-backend/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()

	telemetry.InitSlog(true)
	err := telemetry.SetupFromEnv(ctx, "spots")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	defer telemetry.Shutdown(context.Background())
	telemetry.InstrumentPerfStats(ctx)

	commands.ExecuteContext(ctx)
}
