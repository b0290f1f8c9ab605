package runner

import (
	"context"

	"github.com/aretw0/colloquy/pkg/domain"
)

// Bot is the turn processor the runner talks to.
type Bot interface {
	ProcessTurn(ctx context.Context, act domain.Activity) ([]domain.Reply, error)
}

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (console) and JSON (structured) modes.
type IOHandler interface {
	// Output presents the replies of one turn.
	Output(ctx context.Context, replies []domain.Reply) error

	// Input reads the next line from the user. It returns io.EOF when the
	// source is exhausted and ctx.Err() when ctx is cancelled.
	Input(ctx context.Context) (string, error)
}

// ContentRenderer is a function that transforms the content before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)
