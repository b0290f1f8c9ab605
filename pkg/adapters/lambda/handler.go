// Package lambda serves turns from AWS Lambda behind an API Gateway proxy integration.
package lambda

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/colloquy/internal/dto"
	"github.com/aretw0/colloquy/internal/logging"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
)

const correlationHeader = "X-Correlation-Id"

// Bot is the turn processor the handler delegates to.
type Bot interface {
	ProcessTurn(ctx context.Context, act domain.Activity) ([]domain.Reply, error)
}

type Handler struct {
	bot    Bot
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*Handler)

func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

func NewHandler(bot Bot, opts ...Option) (*Handler, error) {
	if bot == nil {
		return nil, errors.New("lambda: bot is required")
	}
	h := &Handler{bot: bot, logger: logging.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Handle answers one API Gateway request carrying a dto.TurnRequest.
// Failures are encoded in the response; the returned error is always nil so
// the invocation is never retried by the platform.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	corrID := correlationID(req.Headers)
	logger := h.logger.With("correlation_id", corrID)

	if req.HTTPMethod != "" && req.HTTPMethod != http.MethodPost {
		return h.respond(corrID, http.StatusMethodNotAllowed, dto.ErrorResponse{Error: "method not allowed"}), nil
	}

	var body dto.TurnRequest
	if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
		logger.Warn("Rejected turn request", "err", err)
		return h.respond(corrID, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body", Code: domain.CodeInvalidActivity}), nil
	}

	act := body.Activity()
	if act.ID == "" {
		act.ID = corrID
	}
	if act.Timestamp.IsZero() {
		act.Timestamp = h.now().UTC()
	}

	replies, err := h.bot.ProcessTurn(ctx, act)
	if err != nil {
		status := http.StatusInternalServerError
		if domain.IsCode(err, domain.CodeInvalidActivity) {
			status = http.StatusBadRequest
		}
		logger.Warn("Turn request failed", "status", status, "err", err)
		return h.respond(corrID, status, dto.ErrorResponse{Error: err.Error(), Code: domain.Code(err)}), nil
	}

	return h.respond(corrID, http.StatusOK, dto.NewTurnResponse(act.ConversationKey(), replies)), nil
}

func (h *Handler) respond(corrID string, status int, v any) events.APIGatewayProxyResponse {
	body, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("Response encode failed", "err", err)
		status = http.StatusInternalServerError
		body = []byte(`{"error":"internal error"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":    "application/json",
			correlationHeader: corrID,
		},
		Body: string(body),
	}
}

// correlationID reuses the caller's id when present; header names are matched case-insensitively.
func correlationID(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, correlationHeader) && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return uuid.NewString()
}
