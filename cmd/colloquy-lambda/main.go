package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aretw0/colloquy/internal/cli"
	"github.com/aretw0/colloquy/internal/config"
	lambdaadapter "github.com/aretw0/colloquy/pkg/adapters/lambda"
	"github.com/aws/aws-lambda-go/lambda"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (COLLOQUY_* environment only) ----
	cfg, err := config.Decode(config.New())
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	// ---- Bot and its stores ----
	app, err := cli.Build(ctx, cfg)
	if err != nil {
		slog.Error("failed to build bot", "err", err)
		os.Exit(1)
	}
	defer app.Close()

	// ---- Handler ----
	h, err := lambdaadapter.NewHandler(app.Bot, lambdaadapter.WithLogger(app.Logger))
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}
