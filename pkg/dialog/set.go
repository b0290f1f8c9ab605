package dialog

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/aretw0/colloquy/internal/logging"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/session"
	"github.com/aretw0/colloquy/pkg/turn"
)

// Set manages the available dialogs.
type Set struct {
	mu      sync.RWMutex
	dialogs map[string]Dialog

	logger *slog.Logger
	hooks  domain.LifecycleHooks
}

// SetOption configures a Set.
type SetOption func(*Set)

// WithLogger sets the logger handed to every Context.
func WithLogger(logger *slog.Logger) SetOption {
	return func(s *Set) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLifecycleHooks registers callbacks fired when frames are pushed and popped.
func WithLifecycleHooks(hooks domain.LifecycleHooks) SetOption {
	return func(s *Set) {
		s.hooks = hooks
	}
}

// NewSet creates a new empty set.
func NewSet(opts ...SetOption) *Set {
	s := &Set{
		dialogs: make(map[string]Dialog),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds a dialog under a unique id.
func (s *Set) Register(id string, d Dialog) error {
	if id == "" || d == nil {
		return domain.NewError(domain.ErrInvalidDialog, "dialog id and definition are required", nil, nil)
	}
	if v, ok := d.(Validator); ok {
		if err := v.Validate(); err != nil {
			return domain.NewError(domain.ErrInvalidDialog, "invalid dialog "+id, err, map[string]any{"dialog_id": id})
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.dialogs[id]; exists {
		return domain.DuplicateDialog(id)
	}
	s.dialogs[id] = d
	return nil
}

// MustRegister is Register for startup wiring; it panics on error.
func (s *Set) MustRegister(id string, d Dialog) *Set {
	if err := s.Register(id, d); err != nil {
		panic(err)
	}
	return s
}

// Find looks up a dialog by id.
func (s *Set) Find(id string) (Dialog, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.dialogs[id]
	return d, ok
}

// IDs returns the registered dialog ids, sorted.
func (s *Set) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.dialogs))
	for id := range s.dialogs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// CreateContext binds the dialog stack of st to the turn.
func (s *Set) CreateContext(tc *turn.Context, st *session.State) (*Context, error) {
	dialogs, err := session.DialogStateSlot.Get(st)
	if err != nil {
		// An undecodable stack cannot be resumed.
		return nil, domain.NewError(domain.ErrCorruptDialogState, "undecodable dialog stack", err, map[string]any{
			"conversation": st.Key(),
		})
	}
	return &Context{
		set:     s,
		turn:    tc,
		state:   st,
		dialogs: dialogs,
		logger:  s.logger.With("conversation", st.Key()),
	}, nil
}

// Reset empties the dialog stack of st.
func (s *Set) Reset(st *session.State) error {
	return session.DialogStateSlot.Set(st, domain.DialogState{Stack: []domain.Frame{}})
}
