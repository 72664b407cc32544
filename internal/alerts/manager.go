package alerts

import (
	"sync"

	"go.uber.org/zap"

	"github.com/smartnotify/console/internal/model"
	"github.com/smartnotify/console/internal/storage"
)

// SessionManager hands out one Session per viewer. Sessions live for the
// lifetime of the process; each keeps its own scoped collection.
type SessionManager struct {
	logger   *zap.Logger
	store    storage.RuleStore
	sessions sync.Map
}

// NewSessionManager creates a session manager over the given store
func NewSessionManager(logger *zap.Logger, store storage.RuleStore) *SessionManager {
	return &SessionManager{
		logger: logger,
		store:  store,
	}
}

// Session returns the viewer's session, creating it on first use
func (m *SessionManager) Session(viewer model.Viewer) *Session {
	if value, ok := m.sessions.Load(viewer.ID); ok {
		return value.(*Session)
	}

	session := NewSession(m.logger, m.store, viewer)
	actual, _ := m.sessions.LoadOrStore(viewer.ID, session)
	return actual.(*Session)
}
