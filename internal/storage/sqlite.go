package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/smartnotify/console/internal/model"
)

// SQLiteStore keeps alert rules in a local SQLite database. It mirrors the
// demo pages of the original console that persisted rules locally per
// user instead of going through the backend.
type SQLiteStore struct {
	logger *zap.Logger
	db     *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite-backed rule store
func NewSQLiteStore(logger *zap.Logger, dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{
		logger: logger.Named("sqlite-store"),
		db:     db,
	}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// initialize creates the necessary tables if they don't exist
func (s *SQLiteStore) initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS alert_rules (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			is_active INTEGER NOT NULL,
			payload TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_alert_rules_owner_id ON alert_rules(owner_id);
		CREATE INDEX IF NOT EXISTS idx_alert_rules_created_at ON alert_rules(created_at);
	`)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	return nil
}

// Close closes the underlying database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// FetchAll implements RuleStore.FetchAll
func (s *SQLiteStore) FetchAll(ctx context.Context, ownerID string) ([]model.AlertRule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM alert_rules
		WHERE owner_id = ?
		ORDER BY created_at, id`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer rows.Close()

	var rules []model.AlertRule
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
		}

		var rule model.AlertRule
		if err := json.Unmarshal([]byte(payload), &rule); err != nil {
			s.logger.Warn("Skipping malformed stored rule", zap.Error(err))
			continue
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	return rules, nil
}

// Create implements RuleStore.Create
func (s *SQLiteStore) Create(ctx context.Context, rule *model.AlertRule) error {
	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = time.Now()
	}

	payload, err := json.Marshal(rule)
	if err != nil {
		return fmt.Errorf("failed to marshal alert rule: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO alert_rules (id, owner_id, is_active, payload, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		rule.ID,
		rule.OwnerID,
		rule.IsActive,
		string(payload),
		rule.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store alert rule: %w", err)
	}

	return nil
}

// ToggleActive implements RuleStore.ToggleActive
func (s *SQLiteStore) ToggleActive(ctx context.Context, id string) (bool, error) {
	rule, err := s.get(ctx, id)
	if err != nil {
		return false, err
	}

	rule.IsActive = !rule.IsActive

	payload, err := json.Marshal(rule)
	if err != nil {
		return false, fmt.Errorf("failed to marshal alert rule: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE alert_rules SET is_active = ?, payload = ? WHERE id = ?`,
		rule.IsActive,
		string(payload),
		id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update alert rule: %w", err)
	}

	return rule.IsActive, nil
}

// Delete implements RuleStore.Delete
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM alert_rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete alert rule: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete alert rule: %w", err)
	}
	if affected == 0 {
		return ErrRuleNotFound
	}

	return nil
}

// get retrieves a single rule by id
func (s *SQLiteStore) get(ctx context.Context, id string) (*model.AlertRule, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM alert_rules WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrRuleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load alert rule: %w", err)
	}

	var rule model.AlertRule
	if err := json.Unmarshal([]byte(payload), &rule); err != nil {
		return nil, fmt.Errorf("failed to decode stored rule: %w", err)
	}

	return &rule, nil
}
