// Package notifier delivers pipeline run summaries to external channels.
package notifier

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Summary is the notification payload for one finished pipeline run.
type Summary struct {
	RunID             string    `json:"run_id"`
	Commodity         string    `json:"commodity"`
	Symbol            string    `json:"symbol"`
	SignalCount       int       `json:"signal_count"`
	FinalCash         float64   `json:"final_cash"`
	TotalReturn       float64   `json:"total_return"`
	BestHoldingMonths int       `json:"best_holding_months"`
	PValue            float64   `json:"p_value"`
	Alerts            []string  `json:"alerts,omitempty"`
	GeneratedAt       time.Time `json:"generated_at"`
}

// Notifier defines the interface for run summary delivery
type Notifier interface {
	// Name returns the unique identifier for this notifier
	Name() string

	// Send delivers one run summary
	Send(ctx context.Context, s Summary) error
}

// Registry manages notifier instances
type Registry struct {
	mu        sync.RWMutex
	notifiers map[string]Notifier
}

// NewRegistry creates a new notifier registry
func NewRegistry() *Registry {
	return &Registry{
		notifiers: make(map[string]Notifier),
	}
}

// Register adds a notifier to the registry
func (r *Registry) Register(n Notifier) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := n.Name()
	if _, exists := r.notifiers[name]; exists {
		return fmt.Errorf("notifier %s already registered", name)
	}

	r.notifiers[name] = n
	return nil
}

// Get retrieves a notifier by name
func (r *Registry) Get(name string) (Notifier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, exists := r.notifiers[name]
	if !exists {
		return nil, fmt.Errorf("notifier %s not found", name)
	}
	return n, nil
}

// All returns all registered notifiers
func (r *Registry) All() []Notifier {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Notifier, 0, len(r.notifiers))
	for _, n := range r.notifiers {
		result = append(result, n)
	}
	return result
}

// SendAll delivers the summary to every registered notifier and reports
// per-notifier failures.
func (r *Registry) SendAll(ctx context.Context, s Summary) map[string]error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	errors := make(map[string]error)
	for name, n := range r.notifiers {
		if err := n.Send(ctx, s); err != nil {
			errors[name] = err
		}
	}
	return errors
}
