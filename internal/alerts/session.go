package alerts

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/smartnotify/console/internal/model"
	"github.com/smartnotify/console/internal/storage"
)

// ErrRuleNotVisible is returned when a mutation targets a rule that is
// not part of the session's scoped collection
var ErrRuleNotVisible = errors.New("alert rule not in view")

// ViewModel is what a rule page renders: the filtered subset in stable
// order plus the filter-independent summary counts
type ViewModel struct {
	Rules   []model.AlertRule `json:"rules"`
	Summary Summary           `json:"summary"`
}

// Session holds one viewer's scoped rule collection between a refresh and
// the next. Mutations go to the store first and touch the in-memory
// collection only after the store accepted them, so the displayed state
// never runs ahead of the last known-good server state.
type Session struct {
	logger *zap.Logger
	store  storage.RuleStore
	viewer model.Viewer

	mu     sync.RWMutex
	rules  []model.AlertRule
	loaded bool
}

// NewSession creates a session for one viewer over the given store
func NewSession(logger *zap.Logger, store storage.RuleStore, viewer model.Viewer) *Session {
	return &Session{
		logger: logger.Named("session").With(zap.String("viewer_id", viewer.ID)),
		store:  store,
		viewer: viewer,
	}
}

// Viewer returns the identity the session is scoped to
func (s *Session) Viewer() model.Viewer {
	return s.viewer
}

// Refresh fetches the collection from the store and applies viewer
// scoping. On fetch failure a previously loaded collection stays in
// place; a session that never loaded presents an empty collection.
func (s *Session) Refresh(ctx context.Context) error {
	fetched, err := s.store.FetchAll(ctx, s.viewer.ID)
	if err != nil {
		// a previously loaded collection stays; a never-loaded session
		// keeps presenting an empty one and retries on the next refresh
		s.logger.Warn("Failed to refresh alert rules", zap.Error(err))
		return fmt.Errorf("failed to refresh alert rules: %w", err)
	}

	scoped := ScopeToViewer(fetched, s.viewer)

	s.mu.Lock()
	s.rules = scoped
	s.loaded = true
	s.mu.Unlock()

	s.logger.Debug("Alert rules refreshed",
		zap.Int("fetched", len(fetched)),
		zap.Int("scoped", len(scoped)))

	return nil
}

// Loaded reports whether the session has completed at least one refresh
func (s *Session) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// View computes the view model for the given filter specification
func (s *Session) View(spec FilterSpec) ViewModel {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return ViewModel{
		Rules:   Filter(s.rules, spec, s.viewer, time.Now()),
		Summary: Summarize(s.rules),
	}
}

// Toggle flips the active flag of one rule. The in-memory record changes
// only after the store confirmed the update; on failure everything stays
// as it was.
func (s *Session) Toggle(ctx context.Context, id string) (bool, error) {
	if !s.contains(id) {
		return false, ErrRuleNotVisible
	}

	active, err := s.store.ToggleActive(ctx, id)
	if err != nil {
		s.logger.Warn("Failed to toggle alert rule",
			zap.String("rule_id", id),
			zap.Error(err))
		return false, fmt.Errorf("failed to toggle alert rule %s: %w", id, err)
	}

	s.mu.Lock()
	for i := range s.rules {
		if s.rules[i].ID == id {
			s.rules[i].IsActive = active
			break
		}
	}
	s.mu.Unlock()

	return active, nil
}

// Delete removes one rule. The in-memory collection shrinks only after
// the store confirmed the deletion.
func (s *Session) Delete(ctx context.Context, id string) error {
	if !s.contains(id) {
		return ErrRuleNotVisible
	}

	if err := s.store.Delete(ctx, id); err != nil {
		s.logger.Warn("Failed to delete alert rule",
			zap.String("rule_id", id),
			zap.Error(err))
		return fmt.Errorf("failed to delete alert rule %s: %w", id, err)
	}

	s.mu.Lock()
	kept := s.rules[:0]
	for _, rule := range s.rules {
		if rule.ID != id {
			kept = append(kept, rule)
		}
	}
	s.rules = kept
	s.mu.Unlock()

	return nil
}

// Create persists a new rule owned by the session's viewer and adds it to
// the collection when viewer scoping keeps it visible.
func (s *Session) Create(ctx context.Context, rule model.AlertRule) (model.AlertRule, error) {
	rule.OwnerID = s.viewer.ID
	if rule.OwnerName == "" {
		rule.OwnerName = s.viewer.Username
	}
	if rule.OwnerEmail == "" {
		rule.OwnerEmail = s.viewer.Email
	}

	if err := s.store.Create(ctx, &rule); err != nil {
		s.logger.Warn("Failed to create alert rule", zap.Error(err))
		return model.AlertRule{}, fmt.Errorf("failed to create alert rule: %w", err)
	}

	if visible := ScopeToViewer([]model.AlertRule{rule}, s.viewer); len(visible) == 1 {
		s.mu.Lock()
		s.rules = append(s.rules, rule)
		s.mu.Unlock()
	}

	return rule, nil
}

func (s *Session) contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rule := range s.rules {
		if rule.ID == id {
			return true
		}
	}
	return false
}
