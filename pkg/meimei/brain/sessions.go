package brain

import (
	"context"
	"log/slog"
	"sync"
)

// SessionManager owns at most one live backend session per channel. Sessions
// are created lazily on the first reply request, seeded with the persona
// context, and reused for the rest of the process lifetime. No other
// component holds or mutates session handles.
type SessionManager struct {
	backend Backend
	seed    string
	logger  *slog.Logger

	// mu guards the slot map only; creation itself is serialized per channel
	// by the slot's own lock so slow backends don't block other channels.
	mu    sync.Mutex
	slots map[string]*sessionSlot
}

// sessionSlot holds one channel's session and serializes its creation.
type sessionSlot struct {
	mu      sync.Mutex
	session Session
}

// NewSessionManager creates a session registry. A nil backend disables
// generation: GetOrCreate always returns nil.
func NewSessionManager(backend Backend, seed string, logger *slog.Logger) *SessionManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{
		backend: backend,
		seed:    seed,
		logger:  logger.With("component", "sessions"),
		slots:   make(map[string]*sessionSlot),
	}
}

// Enabled reports whether a generation backend is configured.
func (m *SessionManager) Enabled() bool {
	return m.backend != nil
}

// GetOrCreate returns the channel's session, creating and seeding it on
// first use. Returns nil when the backend is disabled or creation fails;
// callers must treat nil as "no session", not an error. A failed creation is
// not cached, so a later call can succeed.
func (m *SessionManager) GetOrCreate(ctx context.Context, channelID string) Session {
	if m.backend == nil {
		return nil
	}

	m.mu.Lock()
	slot, ok := m.slots[channelID]
	if !ok {
		slot = &sessionSlot{}
		m.slots[channelID] = slot
	}
	m.mu.Unlock()

	slot.mu.Lock()
	defer slot.mu.Unlock()

	if slot.session != nil {
		return slot.session
	}

	session, err := m.backend.StartSession(ctx, m.seed)
	if err != nil {
		m.logger.Warn("failed to start backend session", "channel_id", channelID, "error", err)
		return nil
	}

	slot.session = session
	m.logger.Info("backend session created", "channel_id", channelID)
	return session
}

// Count returns the number of channels with a live session.
func (m *SessionManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int
	for _, slot := range m.slots {
		slot.mu.Lock()
		if slot.session != nil {
			n++
		}
		slot.mu.Unlock()
	}
	return n
}
