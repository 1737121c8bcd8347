package domain

import "time"

// CallRecord summarizes one handled external-function call for the audit
// trail. It carries no row contents, only shape and outcome.
type CallRecord struct {
	FunctionName string    `json:"function_name"`
	Operation    string    `json:"operation"`
	Provider     string    `json:"provider,omitempty"`
	Rows         int       `json:"rows"`
	Status       int       `json:"status"`
	Outcome      string    `json:"outcome"` // "ok" or the failure kind
	DurationMS   int64     `json:"duration_ms"`
	HandledAt    time.Time `json:"handled_at"`
}
