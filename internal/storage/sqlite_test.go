package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smartnotify/console/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(zap.NewNop(), filepath.Join(t.TempDir(), "rules.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func TestSQLiteStore_CreateAndFetch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rule := model.AlertRule{
		Name:     "Stock bas",
		Module:   "stock",
		Severity: model.SeverityCritical,
		IsActive: true,
		Schedule: model.ScheduleDaily,
		Condition: model.Condition{
			Type:      model.ConditionThreshold,
			Operator:  "<",
			Threshold: 10,
		},
		OwnerID: "u1",
	}

	require.NoError(t, store.Create(ctx, &rule))
	require.NotEmpty(t, rule.ID)
	require.False(t, rule.CreatedAt.IsZero())

	rules, err := store.FetchAll(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, rules, 1)
	require.Equal(t, rule.ID, rules[0].ID)
	require.Equal(t, "Stock bas", rules[0].Name)
	require.Equal(t, model.SeverityCritical, rules[0].Severity)

	// other owners see nothing
	rules, err = store.FetchAll(ctx, "u2")
	require.NoError(t, err)
	require.Empty(t, rules)
}

func TestSQLiteStore_FetchAllPreservesCreationOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	for i, name := range []string{"first", "second", "third"} {
		rule := model.AlertRule{
			Name:      name,
			OwnerID:   "u1",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, store.Create(ctx, &rule))
	}

	rules, err := store.FetchAll(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, rules, 3)
	require.Equal(t, "first", rules[0].Name)
	require.Equal(t, "second", rules[1].Name)
	require.Equal(t, "third", rules[2].Name)
}

func TestSQLiteStore_ToggleActive(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rule := model.AlertRule{Name: "Retard facture", OwnerID: "u1", IsActive: false}
	require.NoError(t, store.Create(ctx, &rule))

	active, err := store.ToggleActive(ctx, rule.ID)
	require.NoError(t, err)
	require.True(t, active)

	rules, err := store.FetchAll(ctx, "u1")
	require.NoError(t, err)
	require.True(t, rules[0].IsActive)
	require.Equal(t, "Retard facture", rules[0].Name)

	active, err = store.ToggleActive(ctx, rule.ID)
	require.NoError(t, err)
	require.False(t, active)
}

func TestSQLiteStore_ToggleUnknownRule(t *testing.T) {
	store := newTestStore(t)

	_, err := store.ToggleActive(context.Background(), "missing")
	require.ErrorIs(t, err, ErrRuleNotFound)
}

func TestSQLiteStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rule := model.AlertRule{Name: "Stock bas", OwnerID: "u1"}
	require.NoError(t, store.Create(ctx, &rule))

	require.NoError(t, store.Delete(ctx, rule.ID))

	rules, err := store.FetchAll(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, rules)

	require.ErrorIs(t, store.Delete(ctx, rule.ID), ErrRuleNotFound)
}
