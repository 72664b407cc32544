package model

import (
	"encoding/json"
	"strconv"
	"time"
)

// Severity represents the priority level of an alert rule
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Severities lists the known severity values in display order
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

// Schedule represents the evaluation cadence of an alert rule
type Schedule string

const (
	ScheduleImmediate Schedule = "immediate"
	ScheduleHourly    Schedule = "hourly"
	ScheduleDaily     Schedule = "daily"
	ScheduleWeekly    Schedule = "weekly"
	ScheduleMonthly   Schedule = "monthly"
)

// ConditionType represents the kind of condition an alert rule evaluates
type ConditionType string

const (
	ConditionThreshold ConditionType = "threshold"
	ConditionAbsence   ConditionType = "absence"
	ConditionAnomaly   ConditionType = "anomaly"
	ConditionTrend     ConditionType = "trend"

	// ConditionList marks the legacy shape where the backend sends a list
	// of {field, operator, value} triples instead of flat threshold fields.
	ConditionList ConditionType = "condition_list"
)

// ConditionTriple is one entry of the legacy conditions array
type ConditionTriple struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// Condition is the tagged condition detail of an alert rule. Only the
// fields matching Type are meaningful.
type Condition struct {
	Type      ConditionType     `json:"type"`
	Operator  string            `json:"operator,omitempty"`
	Threshold float64           `json:"threshold,omitempty"`
	List      []ConditionTriple `json:"list,omitempty"`
}

// AlertRule represents one configured alerting condition
type AlertRule struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Module      string    `json:"module"`
	Severity    Severity  `json:"severity"`
	IsActive    bool      `json:"is_active"`
	Schedule    Schedule  `json:"schedule"`
	Condition   Condition `json:"condition"`
	OwnerID     string    `json:"owner_id"`
	OwnerName   string    `json:"owner_name,omitempty"`
	OwnerEmail  string    `json:"owner_email,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// moduleLabels maps ERP module tags to their display labels
var moduleLabels = map[string]string{
	"stock":       "Stock",
	"crm":         "CRM",
	"finance":     "Finance",
	"facturation": "Facturation",
	"rh":          "Ressources Humaines",
	"production":  "Production",
	"purchasing":  "Achats",
	"accounting":  "Comptabilité",
}

// ModuleLabel returns the display label for an ERP module tag.
// Unknown tags are returned verbatim.
func ModuleLabel(module string) string {
	if label, ok := moduleLabels[module]; ok {
		return label
	}
	return module
}

// ruleWire is the backend JSON shape. IDs arrive as strings or integers,
// the owner as a bare id or an embedded user object, and the condition
// either flat or as a legacy conditions array.
type ruleWire struct {
	ID                 json.RawMessage   `json:"id"`
	Name               string            `json:"name"`
	Description        string            `json:"description"`
	Module             string            `json:"module"`
	Severity           string            `json:"severity"`
	IsActive           bool              `json:"is_active"`
	Schedule           string            `json:"schedule"`
	ConditionType      string            `json:"condition_type"`
	ComparisonOperator string            `json:"comparison_operator"`
	ThresholdValue     float64           `json:"threshold_value"`
	Conditions         []ConditionTriple `json:"conditions"`
	User               json.RawMessage   `json:"user"`
	CreatedAt          string            `json:"created_at"`
}

type userWire struct {
	ID       json.RawMessage `json:"id"`
	Username string          `json:"username"`
	Email    string          `json:"email"`
}

type userWireOut struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// UnmarshalJSON decodes the backend wire shape into an AlertRule. Missing
// or malformed fields fall back to zero values so one bad record never
// fails a whole batch.
func (r *AlertRule) UnmarshalJSON(data []byte) error {
	var wire ruleWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	r.ID = decodeScalarID(wire.ID)
	r.Name = wire.Name
	r.Description = wire.Description
	r.Module = wire.Module
	r.Severity = Severity(wire.Severity)
	r.IsActive = wire.IsActive
	r.Schedule = Schedule(wire.Schedule)
	r.Condition = decodeCondition(wire)
	r.OwnerID, r.OwnerName, r.OwnerEmail = decodeOwner(wire.User)

	if t, err := time.Parse(time.RFC3339, wire.CreatedAt); err == nil {
		r.CreatedAt = t
	} else {
		r.CreatedAt = time.Time{}
	}

	return nil
}

// MarshalJSON emits the backend wire shape so records round-trip through
// the local store unchanged.
func (r AlertRule) MarshalJSON() ([]byte, error) {
	wire := struct {
		ID                 string            `json:"id"`
		Name               string            `json:"name"`
		Description        string            `json:"description"`
		Module             string            `json:"module"`
		Severity           string            `json:"severity"`
		IsActive           bool              `json:"is_active"`
		Schedule           string            `json:"schedule"`
		ConditionType      string            `json:"condition_type"`
		ComparisonOperator string            `json:"comparison_operator,omitempty"`
		ThresholdValue     float64           `json:"threshold_value,omitempty"`
		Conditions         []ConditionTriple `json:"conditions,omitempty"`
		User               userWireOut       `json:"user"`
		CreatedAt          string            `json:"created_at"`
	}{
		ID:            r.ID,
		Name:          r.Name,
		Description:   r.Description,
		Module:        r.Module,
		Severity:      string(r.Severity),
		IsActive:      r.IsActive,
		Schedule:      string(r.Schedule),
		ConditionType: string(r.Condition.Type),
		User: userWireOut{
			ID:       r.OwnerID,
			Username: r.OwnerName,
			Email:    r.OwnerEmail,
		},
		CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
	}

	if r.Condition.Type == ConditionList {
		wire.Conditions = r.Condition.List
	} else {
		wire.ComparisonOperator = r.Condition.Operator
		wire.ThresholdValue = r.Condition.Threshold
	}

	return json.Marshal(wire)
}

func decodeCondition(wire ruleWire) Condition {
	if len(wire.Conditions) > 0 {
		return Condition{Type: ConditionList, List: wire.Conditions}
	}
	condType := ConditionType(wire.ConditionType)
	if wire.ConditionType == "" {
		condType = ConditionThreshold
	}
	return Condition{
		Type:      condType,
		Operator:  wire.ComparisonOperator,
		Threshold: wire.ThresholdValue,
	}
}

func decodeOwner(raw json.RawMessage) (id, username, email string) {
	if len(raw) == 0 {
		return "", "", ""
	}

	var user userWire
	if err := json.Unmarshal(raw, &user); err == nil && len(user.ID) > 0 {
		return decodeScalarID(user.ID), user.Username, user.Email
	}

	return decodeScalarID(raw), "", ""
}

// decodeScalarID accepts string or integer ids and renders both as strings
func decodeScalarID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.FormatInt(n, 10)
	}

	return ""
}
