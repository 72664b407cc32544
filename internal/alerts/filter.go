package alerts

import (
	"strings"
	"time"

	"github.com/smartnotify/console/internal/model"
)

// FilterAll is the value that disables a criterion
const FilterAll = "all"

// Status filter values. The simple rule pages also accept a severity name
// here, folding both controls into one.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Date filter buckets, evaluated against the rule creation time on local
// calendar-day boundaries
const (
	DateToday     = "today"
	DateThisWeek  = "this_week"
	DateThisMonth = "this_month"
)

// FilterSpec holds the narrowing criteria a viewer has selected. The zero
// value (empty strings) selects everything.
type FilterSpec struct {
	Search   string `json:"search"`
	Status   string `json:"status"`
	Severity string `json:"severity"`
	Module   string `json:"module"`
	Date     string `json:"date"`
}

// Summary holds the aggregate counts shown next to the rule list. Counts
// are computed over the scoped collection, never the filtered subset, so
// switching a filter does not change the denominators on the other chips.
type Summary struct {
	Total      int            `json:"total"`
	Active     int            `json:"active"`
	Inactive   int            `json:"inactive"`
	BySeverity map[string]int `json:"by_severity"`
}

// ScopeToViewer reduces a fetched collection to the subset visible to the
// viewer, before any user-driven filtering. Administrators see only rules
// they own themselves; non-administrators keep the collection the backend
// already scoped to them. Order-preserving and idempotent.
//
// Restricting administrators to their own rules mirrors the original
// console even though its labels promise a global list; see DESIGN.md.
func ScopeToViewer(rules []model.AlertRule, viewer model.Viewer) []model.AlertRule {
	if !viewer.CanAdminister() {
		return rules
	}

	scoped := make([]model.AlertRule, 0, len(rules))
	for _, rule := range rules {
		if rule.OwnerID == viewer.ID {
			scoped = append(scoped, rule)
		}
	}
	return scoped
}

// Filter returns the subset of rules matching every criterion of spec, in
// their original relative order. Each predicate is independent, so the
// composition is order-insensitive; the whole pass is a single sweep.
func Filter(rules []model.AlertRule, spec FilterSpec, viewer model.Viewer, now time.Time) []model.AlertRule {
	matched := make([]model.AlertRule, 0, len(rules))
	for _, rule := range rules {
		if !matches(rule, spec, viewer, now) {
			continue
		}
		matched = append(matched, rule)
	}
	return matched
}

// Summarize computes the aggregate counts over a scoped collection
func Summarize(rules []model.AlertRule) Summary {
	summary := Summary{
		Total:      len(rules),
		BySeverity: make(map[string]int, len(model.Severities)),
	}
	for _, severity := range model.Severities {
		summary.BySeverity[string(severity)] = 0
	}

	for _, rule := range rules {
		if rule.IsActive {
			summary.Active++
		}
		summary.BySeverity[string(rule.Severity)]++
	}
	summary.Inactive = summary.Total - summary.Active

	return summary
}

func matches(rule model.AlertRule, spec FilterSpec, viewer model.Viewer, now time.Time) bool {
	return matchesStatus(rule, spec.Status) &&
		matchesSeverity(rule, spec.Severity) &&
		matchesModule(rule, spec.Module) &&
		matchesDate(rule, spec.Date, now) &&
		matchesSearch(rule, spec.Search, viewer)
}

func matchesStatus(rule model.AlertRule, status string) bool {
	switch status {
	case "", FilterAll:
		return true
	case StatusActive:
		return rule.IsActive
	case StatusInactive:
		return !rule.IsActive
	default:
		// simple pages fold severity into the status control
		return rule.Severity == model.Severity(status)
	}
}

func matchesSeverity(rule model.AlertRule, severity string) bool {
	if severity == "" || severity == FilterAll {
		return true
	}
	return rule.Severity == model.Severity(severity)
}

func matchesModule(rule model.AlertRule, module string) bool {
	if module == "" || module == FilterAll {
		return true
	}
	return rule.Module == module
}

func matchesDate(rule model.AlertRule, date string, now time.Time) bool {
	if date == "" || date == FilterAll {
		return true
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var cutoff time.Time
	switch date {
	case DateToday:
		cutoff = today
	case DateThisWeek:
		cutoff = today.AddDate(0, 0, -7)
	case DateThisMonth:
		cutoff = today.AddDate(0, -1, 0)
	default:
		return true
	}

	return !rule.CreatedAt.Before(cutoff)
}

func matchesSearch(rule model.AlertRule, search string, viewer model.Viewer) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)

	haystacks := []string{
		rule.Name,
		rule.Description,
		model.ModuleLabel(rule.Module),
	}
	if viewer.CanAdminister() {
		haystacks = append(haystacks, rule.OwnerName, rule.OwnerEmail)
	}

	for _, haystack := range haystacks {
		if strings.Contains(strings.ToLower(haystack), needle) {
			return true
		}
	}
	return false
}
