package alerts

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Edneylin/factory-efficiency-analysis/internal/config"
	"github.com/Edneylin/factory-efficiency-analysis/internal/store"
)

const (
	defaultCooldown   = 15 * time.Minute
	maxHistoryLen     = 200
	recentWindowHours = 1
)

// Alert represents a single alert event produced by the rule engine.
type Alert struct {
	ID         string     `json:"id"`
	RuleName   string     `json:"rule_name"`
	Dataset    string     `json:"dataset"`
	AnalysisID string     `json:"analysis_id"`
	Severity   string     `json:"severity"`
	Message    string     `json:"message"`
	Value      float64    `json:"value"`
	FiredAt    time.Time  `json:"fired_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	State      string     `json:"state"` // "firing" | "resolved"
}

// Engine evaluates alert rules against completed analyses and delivers
// webhook notifications when rules fire or resolve.
//
// Engine is safe for concurrent use.
type Engine struct {
	mu       sync.Mutex
	rules    []config.AlertRule
	webhooks []config.WebhookConfig

	active   map[string]*Alert    // key: "ruleName:datasetName"
	lastFire map[string]time.Time // last fire time per key (for cooldown)
	history  []*Alert             // recently resolved alerts
	client   *http.Client
}

// New creates an Engine from the alert configuration.
// An Engine with empty rules is valid — Evaluate becomes a no-op.
func New(cfg config.AlertsConfig) *Engine {
	return &Engine{
		rules:    cfg.Rules,
		webhooks: cfg.Webhooks,
		active:   make(map[string]*Alert),
		lastFire: make(map[string]time.Time),
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Reload swaps in a new rule and webhook set. Active alerts and cooldown
// state survive the reload so a config edit does not re-fire everything.
func (e *Engine) Reload(cfg config.AlertsConfig) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules = cfg.Rules
	e.webhooks = cfg.Webhooks
}

// Evaluate tests all configured rules against a freshly stored analysis.
// Alerts that fire are stored and webhook delivery is triggered asynchronously.
// Alerts that were firing for the same rule and dataset name, but whose
// condition is now false on the new upload, are resolved.
func (e *Engine) Evaluate(a *store.Analysis) {
	e.mu.Lock()
	rules := e.rules
	e.mu.Unlock()
	if len(rules) == 0 {
		return
	}

	now := time.Now()
	for _, rule := range rules {
		key := rule.Name + ":" + a.Name
		fires, value := evalCondition(rule.Condition, a.Result)

		e.mu.Lock()

		if fires {
			cooldown := rule.Cooldown
			if cooldown <= 0 {
				cooldown = defaultCooldown
			}
			if now.Sub(e.lastFire[key]) > cooldown {
				sev := rule.Severity
				if sev == "" {
					sev = "warning"
				}
				al := &Alert{
					ID:         fmt.Sprintf("%s:%s:%d", rule.Name, a.Name, now.UnixNano()),
					RuleName:   rule.Name,
					Dataset:    a.Name,
					AnalysisID: a.ID,
					Severity:   sev,
					Value:      value,
					Message: fmt.Sprintf("[%s] %s fired on %s — %s = %.2f",
						sev, rule.Name, a.Name, rule.Condition, value),
					FiredAt: now,
					State:   "firing",
				}
				e.active[key] = al
				e.lastFire[key] = now
				alertCopy := *al
				e.mu.Unlock()

				slog.Warn("alert fired",
					"rule", rule.Name,
					"dataset", a.Name,
					"value", value,
					"severity", sev,
				)
				go e.deliver(&alertCopy)
			} else {
				e.mu.Unlock()
			}
		} else {
			if al, ok := e.active[key]; ok && al.State == "firing" {
				resolved := now
				al.State = "resolved"
				al.ResolvedAt = &resolved
				delete(e.active, key)

				e.history = append(e.history, al)
				if len(e.history) > maxHistoryLen {
					e.history = e.history[len(e.history)-maxHistoryLen:]
				}
				alertCopy := *al
				e.mu.Unlock()

				slog.Info("alert resolved",
					"rule", rule.Name,
					"dataset", a.Name,
				)
				go e.deliver(&alertCopy)
			} else {
				e.mu.Unlock()
			}
		}
	}
}

// Active returns copies of all currently firing alerts plus any alerts
// resolved within the past hour.
func (e *Engine) Active() []*Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	cutoff := time.Now().Add(-recentWindowHours * time.Hour)
	out := make([]*Alert, 0, len(e.active))

	for _, a := range e.active {
		cp := *a
		out = append(out, &cp)
	}
	for _, a := range e.history {
		if a.ResolvedAt != nil && a.ResolvedAt.After(cutoff) {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out
}
