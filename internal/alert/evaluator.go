package alert

import (
	"go.uber.org/zap"
)

// Alert is a fired rule with its rendered message.
type Alert struct {
	Rule    Rule
	Message string
}

// Evaluator checks a fixed rule set against one run's metrics. Pipelines are
// batch jobs, so rules fire at most once per run and there is no pending or
// cooldown state.
type Evaluator struct {
	rules  []Rule
	logger *zap.Logger
}

// NewEvaluator creates an evaluator for the given rules.
func NewEvaluator(rules []Rule, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{rules: rules, logger: logger}
}

// Evaluate runs every rule against the metrics and returns the fired alerts.
func (e *Evaluator) Evaluate(commodity string, metrics map[string]float64) []Alert {
	var fired []Alert
	for _, rule := range e.rules {
		if !rule.Evaluate(metrics) {
			continue
		}
		a := Alert{Rule: rule, Message: rule.FormatMessage(commodity, metrics)}
		fired = append(fired, a)
		e.logger.Warn("alert fired",
			zap.String("rule", rule.Name),
			zap.String("severity", rule.Severity),
			zap.String("commodity", commodity),
			zap.String("expr", rule.Expr),
		)
	}
	return fired
}
