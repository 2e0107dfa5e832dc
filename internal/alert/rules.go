// Package alert evaluates threshold rules against the headline metrics of a
// finished pipeline run, such as p_value and final_cash.
package alert

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/quantfarm/harvest/internal/config"
)

// Rule defines a single alert rule.
type Rule struct {
	Name     string
	Expr     string
	Severity string
	Message  string
}

// FromConfig converts configured alert rules.
func FromConfig(rules []config.AlertRule) []Rule {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		out[i] = Rule{Name: r.Name, Expr: r.Expr, Severity: r.Severity, Message: r.Message}
	}
	return out
}

// Simple expression grammar: "metric op value"
// Supports: >, <, >=, <=, ==, !=
var exprPattern = regexp.MustCompile(`^(\w+)\s*(>=|<=|==|!=|>|<)\s*(-?[\d.]+)$`)

// Evaluate evaluates the rule expression against metrics. Malformed
// expressions and unknown metrics never trigger.
func (r *Rule) Evaluate(metrics map[string]float64) bool {
	matches := exprPattern.FindStringSubmatch(strings.TrimSpace(r.Expr))
	if len(matches) != 4 {
		return false
	}

	threshold, err := strconv.ParseFloat(matches[3], 64)
	if err != nil {
		return false
	}

	value, exists := metrics[matches[1]]
	if !exists {
		return false
	}

	switch matches[2] {
	case ">":
		return value > threshold
	case "<":
		return value < threshold
	case ">=":
		return value >= threshold
	case "<=":
		return value <= threshold
	case "==":
		return value == threshold
	case "!=":
		return value != threshold
	default:
		return false
	}
}

// FormatMessage renders the alert line sent to notifiers.
func (r *Rule) FormatMessage(commodity string, metrics map[string]float64) string {
	return fmt.Sprintf("[%s] %s (%s): %s", strings.ToUpper(r.Severity), r.Name, commodity, r.Message)
}
