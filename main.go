package main

import (
	"context"

	"github.com/locvowork/tablexcel/internal/bootstrap"
	"github.com/locvowork/tablexcel/internal/logger"
)

func main() {
	ctx := context.Background()

	app := bootstrap.NewApp()
	if err := app.Initialize(ctx); err != nil {
		logger.ErrorLog(ctx, "Failed to initialize application", err)
		panic(err)
	}

	logger.InfoLog(ctx, "Report server starting")
	if err := app.Run(); err != nil {
		logger.ErrorLog(ctx, "Server stopped", err)
	}
}
