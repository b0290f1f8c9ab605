package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/colloquy"
	"github.com/aretw0/colloquy/internal/dto"
	"github.com/aretw0/colloquy/internal/logging"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Bot is the turn processor behind POST /v1/turns.
type Bot interface {
	ProcessTurn(ctx context.Context, act domain.Activity) ([]domain.Reply, error)
}

// Sessions is the administrative view of conversation state.
type Sessions interface {
	List(ctx context.Context) ([]string, error)
	Load(ctx context.Context, key string) (*domain.Snapshot, error)
	Delete(ctx context.Context, key string) error
}

// Server holds the handlers of the HTTP API.
type Server struct {
	Bot       Bot
	Directory ports.UserDirectory
	Sessions  Sessions
	Streams   *StreamManager

	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithDirectory exposes the registration directory under /v1/users.
func WithDirectory(dir ports.UserDirectory) Option {
	return func(s *Server) {
		s.Directory = dir
	}
}

// WithSessions exposes conversation state under /v1/sessions.
func WithSessions(sessions Sessions) Option {
	return func(s *Server) {
		s.Sessions = sessions
	}
}

// WithMetricsHandler mounts h on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewHandler creates the HTTP handler for the bot.
func NewHandler(bot Bot, opts ...Option) http.Handler {
	s := &Server{
		Bot:     bot,
		Streams: NewStreamManager(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.logger

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/turns", s.PostTurn)
		r.Get("/events", s.SubscribeEvents)

		if s.Directory != nil {
			r.Get("/users", s.ListUsers)
			r.Post("/users", s.AddUser)
		}
		if s.Sessions != nil {
			r.Get("/sessions", s.ListSessions)
			r.Get("/sessions/{channel}/*", s.GetSession)
			r.Delete("/sessions/{channel}/*", s.DeleteSession)
		}
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// PostTurn handles the POST /v1/turns request.
func (s *Server) PostTurn(w http.ResponseWriter, r *http.Request) {
	var body dto.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	act := body.Activity()
	if act.Timestamp.IsZero() {
		act.Timestamp = time.Now().UTC()
	}
	replies, err := s.Bot.ProcessTurn(r.Context(), act)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	resp := dto.NewTurnResponse(act.ConversationKey(), replies)
	if data, err := json.Marshal(resp.Replies); err == nil && len(replies) > 0 {
		s.Streams.Broadcast(resp.Conversation, string(data))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "colloquy-http",
		"version": strings.TrimSpace(colloquy.Version),
	})
}

// ListUsers handles the GET /v1/users request.
func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.Directory.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusBadGateway, domain.CollaboratorUnavailable("user directory", "list", err))
		return
	}
	if users == nil {
		users = []domain.UserRecord{}
	}
	s.writeJSON(w, http.StatusOK, users)
}

// AddUser handles the POST /v1/users request.
func (s *Server) AddUser(w http.ResponseWriter, r *http.Request) {
	var rec domain.UserRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if strings.TrimSpace(rec.ChannelID) == "" || strings.TrimSpace(rec.UserID) == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("channel_id and user_id are required"))
		return
	}
	if err := s.Directory.Add(r.Context(), rec); err != nil {
		s.writeError(w, http.StatusBadGateway, domain.CollaboratorUnavailable("user directory", "add", err))
		return
	}
	s.writeJSON(w, http.StatusCreated, rec)
}

// ListSessions handles the GET /v1/sessions request.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	keys, err := s.Sessions.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, domain.Persistence("list", "", err))
		return
	}
	if keys == nil {
		keys = []string{}
	}
	s.writeJSON(w, http.StatusOK, keys)
}

// GetSession handles the GET /v1/sessions/{channel}/{conversation} request.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	key := sessionKey(r)
	snap, err := s.Sessions.Load(r.Context(), key.String())
	if errors.Is(err, domain.ErrSnapshotNotFound) {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("conversation %s not found", key))
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, domain.Persistence("load", key.String(), err))
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

// DeleteSession handles the DELETE /v1/sessions/{channel}/{conversation} request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	key := sessionKey(r)
	if err := s.Sessions.Delete(r.Context(), key.String()); err != nil {
		s.writeError(w, http.StatusInternalServerError, domain.Persistence("delete", key.String(), err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Conversation ids may contain slashes, so they are matched by the wildcard.
func sessionKey(r *http.Request) domain.ConversationKey {
	return domain.ConversationKey{
		ChannelID:      unescapeParam(chi.URLParam(r, "channel")),
		ConversationID: unescapeParam(chi.URLParam(r, "*")),
	}
}

// chi matches against the raw path when the request carries escapes.
func unescapeParam(s string) string {
	if v, err := url.PathUnescape(s); err == nil {
		return v
	}
	return s
}

func statusFor(err error) int {
	switch domain.Code(err) {
	case domain.CodeInvalidActivity:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "status", status, "err", err)
	} else {
		s.logger.Warn("Request rejected", "status", status, "err", err)
	}
	s.writeJSON(w, status, dto.ErrorResponse{Error: err.Error(), Code: domain.Code(err)})
}
