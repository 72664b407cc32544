package storage

import (
	"context"
	"errors"

	"github.com/smartnotify/console/internal/model"
)

var (
	// ErrRuleNotFound is returned when a rule id does not exist in the store
	ErrRuleNotFound = errors.New("alert rule not found")

	// ErrFetchFailed is returned when the backing store could not deliver
	// the rule collection
	ErrFetchFailed = errors.New("failed to fetch alert rules")
)

// RuleStore is the persistence collaborator behind the rule views. One
// backing drives a view at a time: the remote SmartNotify backend in
// production, SQLite for local and demo use.
type RuleStore interface {
	// FetchAll returns every rule visible to the given owner. Server-side
	// scoping applies; additional viewer scoping happens in the engine.
	FetchAll(ctx context.Context, ownerID string) ([]model.AlertRule, error)

	// Create persists a new rule and fills in its assigned ID and
	// creation timestamp.
	Create(ctx context.Context, rule *model.AlertRule) error

	// ToggleActive flips the active flag of one rule and returns the new
	// value.
	ToggleActive(ctx context.Context, id string) (bool, error)

	// Delete removes one rule.
	Delete(ctx context.Context, id string) error
}
