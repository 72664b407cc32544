package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAlertRule_DecodeFlatShape(t *testing.T) {
	payload := `{
		"id": 12,
		"name": "Stock bas",
		"description": "Seuil de stock atteint",
		"module": "stock",
		"severity": "critical",
		"is_active": true,
		"schedule": "daily",
		"condition_type": "threshold",
		"comparison_operator": ">=",
		"threshold_value": 10,
		"user": {"id": 7, "username": "jdupont", "email": "j.dupont@example.com"},
		"created_at": "2024-01-10T08:00:00Z"
	}`

	var rule AlertRule
	require.NoError(t, json.Unmarshal([]byte(payload), &rule))

	require.Equal(t, "12", rule.ID)
	require.Equal(t, "Stock bas", rule.Name)
	require.Equal(t, SeverityCritical, rule.Severity)
	require.True(t, rule.IsActive)
	require.Equal(t, ScheduleDaily, rule.Schedule)
	require.Equal(t, ConditionThreshold, rule.Condition.Type)
	require.Equal(t, ">=", rule.Condition.Operator)
	require.Equal(t, 10.0, rule.Condition.Threshold)
	require.Equal(t, "7", rule.OwnerID)
	require.Equal(t, "jdupont", rule.OwnerName)
	require.Equal(t, time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC), rule.CreatedAt)
}

func TestAlertRule_DecodeLegacyConditionsShape(t *testing.T) {
	payload := `{
		"id": "a1",
		"name": "Retard facture",
		"module": "facturation",
		"severity": "low",
		"user": 3,
		"conditions": [
			{"field": "days_overdue", "operator": "greater_than", "value": "30"}
		],
		"created_at": "2024-01-01T08:00:00Z"
	}`

	var rule AlertRule
	require.NoError(t, json.Unmarshal([]byte(payload), &rule))

	require.Equal(t, "a1", rule.ID)
	require.Equal(t, ConditionList, rule.Condition.Type)
	require.Len(t, rule.Condition.List, 1)
	require.Equal(t, "days_overdue", rule.Condition.List[0].Field)
	require.Equal(t, "greater_than", rule.Condition.List[0].Operator)
	require.Equal(t, "3", rule.OwnerID)
	require.Empty(t, rule.OwnerName)
}

func TestAlertRule_DecodeMissingFieldsSubstitutesDefaults(t *testing.T) {
	var rule AlertRule
	require.NoError(t, json.Unmarshal([]byte(`{"id": "x"}`), &rule))

	require.Equal(t, "x", rule.ID)
	require.Empty(t, rule.Name)
	require.Empty(t, rule.Description)
	require.False(t, rule.IsActive)
	require.Equal(t, ConditionThreshold, rule.Condition.Type)
	require.True(t, rule.CreatedAt.IsZero())
}

func TestAlertRule_DecodeBadTimestamp(t *testing.T) {
	var rule AlertRule
	require.NoError(t, json.Unmarshal([]byte(`{"id": "x", "created_at": "not-a-date"}`), &rule))
	require.True(t, rule.CreatedAt.IsZero())
}

func TestAlertRule_UnknownEnumValuesPassThrough(t *testing.T) {
	payload := `{
		"id": "x",
		"severity": "catastrophic",
		"schedule": "fortnightly",
		"condition_type": "vibes"
	}`

	var rule AlertRule
	require.NoError(t, json.Unmarshal([]byte(payload), &rule))
	require.Equal(t, Severity("catastrophic"), rule.Severity)
	require.Equal(t, Schedule("fortnightly"), rule.Schedule)
	require.Equal(t, ConditionType("vibes"), rule.Condition.Type)
}

func TestAlertRule_RoundTrip(t *testing.T) {
	rule := AlertRule{
		ID:          "r1",
		Name:        "Stock bas",
		Description: "Seuil de stock atteint",
		Module:      "stock",
		Severity:    SeverityHigh,
		IsActive:    true,
		Schedule:    ScheduleHourly,
		Condition: Condition{
			Type:      ConditionThreshold,
			Operator:  "<",
			Threshold: 5,
		},
		OwnerID:   "u1",
		OwnerName: "jdupont",
		CreatedAt: time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(rule)
	require.NoError(t, err)

	var decoded AlertRule
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, rule, decoded)
}

func TestModuleLabel(t *testing.T) {
	require.Equal(t, "Stock", ModuleLabel("stock"))
	require.Equal(t, "Facturation", ModuleLabel("facturation"))
	require.Equal(t, "warehouse", ModuleLabel("warehouse"))
}
