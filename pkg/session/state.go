package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/ports"
	"github.com/mitchellh/mapstructure"
)

// State is the slot buffer of one turn.
//
// Reads see the writes of the same turn. Nothing reaches the store until
// Commit, which flushes every buffered slot with a single Save.
type State struct {
	key     string
	store   ports.StateStore
	base    map[string]any
	pending map[string]any
	logger  *slog.Logger
	now     func() time.Time
}

func newState(key string, store ports.StateStore, slots map[string]any, logger *slog.Logger, now func() time.Time) *State {
	base := make(map[string]any, len(slots))
	for name, v := range slots {
		// Loaded data is already JSON-shaped; normalizing keeps comparisons
		// stable across backends that return ints or float64s.
		if nv, err := normalize(v); err == nil {
			base[name] = nv
		} else {
			base[name] = v
		}
	}
	return &State{
		key:     key,
		store:   store,
		base:    base,
		pending: make(map[string]any),
		logger:  logger,
		now:     now,
	}
}

// Key returns the conversation key the state is scoped to.
func (s *State) Key() string {
	return s.key
}

// Has reports whether the slot holds a value, buffered or persisted.
func (s *State) Has(name string) bool {
	if _, ok := s.pending[name]; ok {
		return true
	}
	_, ok := s.base[name]
	return ok
}

// Get decodes the slot into out, which must be a pointer.
// It reports false and leaves out untouched when the slot is absent.
func (s *State) Get(name string, out any) (bool, error) {
	raw, ok := s.pending[name]
	if !ok {
		raw, ok = s.base[name]
	}
	if !ok || raw == nil {
		return false, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return false, err
	}
	if err := decoder.Decode(raw); err != nil {
		return false, fmt.Errorf("failed to decode slot %s: %w", name, err)
	}
	return true, nil
}

// Set buffers a slot write. The value is stored in its JSON shape so later
// reads of the same turn decode exactly what a reload would.
func (s *State) Set(name string, value any) error {
	nv, err := normalize(value)
	if err != nil {
		return fmt.Errorf("failed to encode slot %s: %w", name, err)
	}
	s.pending[name] = nv
	return nil
}

// Changed returns the names of slots whose buffered value differs from the
// persisted one.
func (s *State) Changed() []string {
	return domain.ChangedSlots(s.base, s.merged())
}

// Discard drops every buffered write.
func (s *State) Discard() {
	clear(s.pending)
}

// Commit flushes the buffered writes in one Save. A turn that changed nothing
// does not touch the store.
func (s *State) Commit(ctx context.Context) error {
	merged := s.merged()
	changed := domain.ChangedSlots(s.base, merged)
	if len(changed) == 0 {
		clear(s.pending)
		return nil
	}

	snap := &domain.Snapshot{
		Key:       s.key,
		Slots:     merged,
		UpdatedAt: s.now().UTC(),
	}
	if err := s.store.Save(ctx, s.key, snap); err != nil {
		return domain.Persistence("commit", s.key, err)
	}

	s.logger.Debug("Conversation state committed", "conversation", s.key, "slots", changed)
	s.base = merged
	s.pending = make(map[string]any)
	return nil
}

// Snapshot returns the current view of the state, buffered writes included.
func (s *State) Snapshot() *domain.Snapshot {
	return &domain.Snapshot{
		Key:   s.key,
		Slots: s.merged(),
	}
}

func (s *State) merged() map[string]any {
	out := maps.Clone(s.base)
	if out == nil {
		out = make(map[string]any)
	}
	maps.Copy(out, s.pending)
	return out
}

func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
