package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/colloquy/pkg/domain"
)

// LoggingHooks writes one structured line per lifecycle event.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTurnStart: func(ctx context.Context, e *domain.TurnEvent) {
			logger.DebugContext(ctx, "turn_start",
				"conversation", e.Conversation,
				"activity_type", e.ActivityType,
			)
		},
		OnTurnEnd: func(ctx context.Context, e *domain.TurnEvent) {
			level := slog.LevelInfo
			if e.Err != nil {
				level = slog.LevelWarn
			}
			logger.Log(ctx, level, "turn_end",
				"conversation", e.Conversation,
				"activity_type", e.ActivityType,
				"branch", e.Branch,
				"replies", e.Replies,
				"duration", e.Duration,
			)
		},
		OnDialogBegin: func(ctx context.Context, e *domain.DialogEvent) {
			logger.DebugContext(ctx, "dialog_begin", "conversation", e.Conversation, "dialog_id", e.DialogID, "depth", e.Depth)
		},
		OnDialogEnd: func(ctx context.Context, e *domain.DialogEvent) {
			logger.DebugContext(ctx, "dialog_end", "conversation", e.Conversation, "dialog_id", e.DialogID, "depth", e.Depth)
		},
	}
}
