package api

import (
	"time"

	"github.com/smartnotify/console/internal/alerts"
	"github.com/smartnotify/console/internal/model"
	"github.com/smartnotify/console/internal/schedule"
)

// ruleView is one rule as the browser renders it: the record plus the
// derived display fields (module label, normalized operators, next
// evaluation time). AlertRule marshals to the backend wire shape, so the
// view spells its fields out instead of embedding the record.
type ruleView struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Module         string          `json:"module"`
	ModuleLabel    string          `json:"module_label"`
	Severity       model.Severity  `json:"severity"`
	IsActive       bool            `json:"is_active"`
	Schedule       model.Schedule  `json:"schedule"`
	Condition      model.Condition `json:"condition"`
	OwnerID        string          `json:"owner_id"`
	OwnerName      string          `json:"owner_name,omitempty"`
	OwnerEmail     string          `json:"owner_email,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	NextEvaluation *time.Time      `json:"next_evaluation,omitempty"`
}

// listResponse is the body of the rule list endpoint. Error carries the
// non-fatal fetch failure message when the view is served from a
// previously loaded collection.
type listResponse struct {
	Rules   []ruleView     `json:"rules"`
	Summary alerts.Summary `json:"summary"`
	Error   string         `json:"error,omitempty"`
}

func renderRules(rules []model.AlertRule, now time.Time) []ruleView {
	views := make([]ruleView, 0, len(rules))
	for _, rule := range rules {
		views = append(views, renderRule(rule, now))
	}
	return views
}

func renderRule(rule model.AlertRule, now time.Time) ruleView {
	view := ruleView{
		ID:          rule.ID,
		Name:        rule.Name,
		Description: rule.Description,
		Module:      rule.Module,
		ModuleLabel: model.ModuleLabel(rule.Module),
		Severity:    rule.Severity,
		IsActive:    rule.IsActive,
		Schedule:    rule.Schedule,
		Condition:   rule.Condition,
		OwnerID:     rule.OwnerID,
		OwnerName:   rule.OwnerName,
		OwnerEmail:  rule.OwnerEmail,
		CreatedAt:   rule.CreatedAt,
	}

	view.Condition.Operator = alerts.NormalizeOperator(rule.Condition.Operator)
	if len(rule.Condition.List) > 0 {
		list := make([]model.ConditionTriple, len(rule.Condition.List))
		copy(list, rule.Condition.List)
		for i := range list {
			list[i].Operator = alerts.NormalizeOperator(list[i].Operator)
		}
		view.Condition.List = list
	}

	if next, err := schedule.NextRun(rule.Schedule, now); err == nil {
		view.NextEvaluation = &next
	}

	return view
}
