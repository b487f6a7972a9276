package main

import (
	"context"

	"ticketwatch-backend/cmd/ticketwatch/commands"
	"ticketwatch-backend/lib/serviceutil"
	"ticketwatch-backend/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()

	tel, err := telemetry.SetupFromEnv(ctx, "ticketwatch")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	defer tel.Shutdown(context.Background())
	telemetry.InstrumentPerfStats(ctx)

	commands.ExecuteContext(ctx)
}
