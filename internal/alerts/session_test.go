package alerts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smartnotify/console/internal/model"
	"github.com/smartnotify/console/internal/storage"
)

// stubStore is an in-memory RuleStore with switchable failures
type stubStore struct {
	rules     []model.AlertRule
	fetchErr  error
	toggleErr error
	deleteErr error
	createErr error
}

func (s *stubStore) FetchAll(ctx context.Context, ownerID string) ([]model.AlertRule, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	out := make([]model.AlertRule, len(s.rules))
	copy(out, s.rules)
	return out, nil
}

func (s *stubStore) Create(ctx context.Context, rule *model.AlertRule) error {
	if s.createErr != nil {
		return s.createErr
	}
	if rule.ID == "" {
		rule.ID = "generated"
	}
	rule.CreatedAt = time.Now()
	s.rules = append(s.rules, *rule)
	return nil
}

func (s *stubStore) ToggleActive(ctx context.Context, id string) (bool, error) {
	if s.toggleErr != nil {
		return false, s.toggleErr
	}
	for i := range s.rules {
		if s.rules[i].ID == id {
			s.rules[i].IsActive = !s.rules[i].IsActive
			return s.rules[i].IsActive, nil
		}
	}
	return false, storage.ErrRuleNotFound
}

func (s *stubStore) Delete(ctx context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	for i := range s.rules {
		if s.rules[i].ID == id {
			s.rules = append(s.rules[:i], s.rules[i+1:]...)
			return nil
		}
	}
	return storage.ErrRuleNotFound
}

func newTestSession(t *testing.T, store *stubStore, viewer model.Viewer) *Session {
	t.Helper()
	session := NewSession(zap.NewNop(), store, viewer)
	require.NoError(t, session.Refresh(context.Background()))
	return session
}

func TestSession_RefreshAppliesScoping(t *testing.T) {
	store := &stubStore{rules: []model.AlertRule{
		{ID: "1", OwnerID: "u1"},
		{ID: "2", OwnerID: "u2"},
	}}

	admin := model.Viewer{ID: "u1", IsSuperuser: true}
	session := newTestSession(t, store, admin)

	view := session.View(FilterSpec{})
	require.Equal(t, []string{"1"}, ids(view.Rules))
	require.Equal(t, 1, view.Summary.Total)
}

func TestSession_RefreshFailureKeepsPreviousCollection(t *testing.T) {
	store := &stubStore{rules: []model.AlertRule{{ID: "1", OwnerID: "u1"}}}
	session := newTestSession(t, store, model.Viewer{ID: "u1"})

	store.fetchErr = errors.New("backend down")
	require.Error(t, session.Refresh(context.Background()))

	view := session.View(FilterSpec{})
	require.Equal(t, []string{"1"}, ids(view.Rules))
}

func TestSession_RefreshFailureWithoutPreviousIsEmpty(t *testing.T) {
	store := &stubStore{fetchErr: errors.New("backend down")}
	session := NewSession(zap.NewNop(), store, model.Viewer{ID: "u1"})

	require.Error(t, session.Refresh(context.Background()))
	require.False(t, session.Loaded())

	view := session.View(FilterSpec{})
	require.Empty(t, view.Rules)
	require.Equal(t, 0, view.Summary.Total)

	// the next refresh retries the fetch
	store.fetchErr = nil
	store.rules = []model.AlertRule{{ID: "1", OwnerID: "u1"}}
	require.NoError(t, session.Refresh(context.Background()))
	require.Equal(t, 1, session.View(FilterSpec{}).Summary.Total)
}

func TestSession_ToggleSuccess(t *testing.T) {
	store := &stubStore{rules: []model.AlertRule{
		{ID: "1", OwnerID: "u1", IsActive: true, Severity: model.SeverityCritical},
		{ID: "2", OwnerID: "u1", IsActive: false, Severity: model.SeverityLow},
	}}
	session := newTestSession(t, store, model.Viewer{ID: "u1"})

	active, err := session.Toggle(context.Background(), "2")
	require.NoError(t, err)
	require.True(t, active)

	view := session.View(FilterSpec{})
	require.Equal(t, 2, view.Summary.Active)
	require.Equal(t, 0, view.Summary.Inactive)

	// nothing else changed on the record
	require.Equal(t, model.SeverityLow, view.Rules[1].Severity)
}

func TestSession_ToggleFailureLeavesStateUntouched(t *testing.T) {
	store := &stubStore{rules: []model.AlertRule{
		{ID: "1", OwnerID: "u1", IsActive: true},
		{ID: "2", OwnerID: "u1", IsActive: false},
	}}
	session := newTestSession(t, store, model.Viewer{ID: "u1"})

	store.toggleErr = errors.New("backend rejected")
	_, err := session.Toggle(context.Background(), "2")
	require.Error(t, err)

	view := session.View(FilterSpec{})
	require.Equal(t, 1, view.Summary.Active)
	require.Equal(t, 1, view.Summary.Inactive)
	require.False(t, view.Rules[1].IsActive)
}

func TestSession_ToggleUnknownRule(t *testing.T) {
	store := &stubStore{rules: []model.AlertRule{{ID: "1", OwnerID: "u1"}}}
	session := newTestSession(t, store, model.Viewer{ID: "u1"})

	_, err := session.Toggle(context.Background(), "missing")
	require.ErrorIs(t, err, ErrRuleNotVisible)
}

func TestSession_DeleteRemovesFromCollection(t *testing.T) {
	store := &stubStore{rules: []model.AlertRule{
		{ID: "1", OwnerID: "u1", IsActive: true},
		{ID: "2", OwnerID: "u1", IsActive: false},
	}}
	session := newTestSession(t, store, model.Viewer{ID: "u1"})

	require.NoError(t, session.Delete(context.Background(), "1"))

	view := session.View(FilterSpec{})
	require.Equal(t, []string{"2"}, ids(view.Rules))
	require.Equal(t, 1, view.Summary.Total)
	require.Equal(t, 0, view.Summary.Active)
}

func TestSession_DeleteFailureLeavesStateUntouched(t *testing.T) {
	store := &stubStore{rules: []model.AlertRule{{ID: "1", OwnerID: "u1"}}}
	session := newTestSession(t, store, model.Viewer{ID: "u1"})

	store.deleteErr = errors.New("backend rejected")
	require.Error(t, session.Delete(context.Background(), "1"))

	view := session.View(FilterSpec{})
	require.Equal(t, 1, view.Summary.Total)
}

func TestSession_CreateOwnedByViewer(t *testing.T) {
	store := &stubStore{}
	session := newTestSession(t, store, model.Viewer{ID: "u1", Username: "jdupont"})

	created, err := session.Create(context.Background(), model.AlertRule{Name: "Stock bas"})
	require.NoError(t, err)
	require.Equal(t, "u1", created.OwnerID)
	require.Equal(t, "jdupont", created.OwnerName)
	require.NotEmpty(t, created.ID)

	view := session.View(FilterSpec{})
	require.Equal(t, 1, view.Summary.Total)
}

func TestSessionManager_ReusesSessions(t *testing.T) {
	manager := NewSessionManager(zap.NewNop(), &stubStore{})

	viewer := model.Viewer{ID: "u1"}
	first := manager.Session(viewer)
	second := manager.Session(viewer)
	require.Same(t, first, second)

	other := manager.Session(model.Viewer{ID: "u2"})
	require.NotSame(t, first, other)
}
