// Package usage defines metering records: usage logs, meters and periods.
package usage

import (
	"math"
	"time"
)

// Log is one audited API call, recorded regardless of outcome.
type Log struct {
	ID             string    `json:"id"`
	TenantID       string    `json:"tenant_id"`
	CredentialID   string    `json:"credential_id,omitempty"`
	Path           string    `json:"path"`
	Method         string    `json:"method"`
	StatusCode     int       `json:"status_code"`
	ResponseTimeMS int64     `json:"response_time_ms"`
	CreatedAt      time.Time `json:"created_at"`
}

// Meter is the persisted per-tenant counter for the current period.
type Meter struct {
	TenantID    string    `json:"tenant_id"`
	Count       int64     `json:"monthly_requests_count"`
	Period      string    `json:"period"`
	LastResetAt time.Time `json:"last_reset_at"`
}

// Period is a calendar month in UTC.
type Period struct {
	Start time.Time
	End   time.Time
}

// PeriodAt returns the calendar month containing t.
func PeriodAt(t time.Time) Period {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Period{Start: start, End: start.AddDate(0, 1, 0)}
}

// ID returns the period identifier used in counter keys, e.g. "2026-10".
func (p Period) ID() string {
	return p.Start.Format("2006-01")
}

// Remaining returns the time left in the period after t, never negative.
func (p Period) Remaining(t time.Time) time.Duration {
	d := p.End.Sub(t)
	if d < 0 {
		return 0
	}
	return d
}

// Summary is the usage report for a tenant.
type Summary struct {
	Plan  PlanInfo  `json:"plan"`
	Usage UsageInfo `json:"usage"`
}

// PlanInfo is the plan section of Summary.
type PlanInfo struct {
	Name  string `json:"name"`
	Limit int64  `json:"limit"`
}

// UsageInfo is the usage section of Summary.
type UsageInfo struct {
	Consumed    int64     `json:"consumed"`
	Remaining   int64     `json:"remaining"`
	Percent     float64   `json:"percent"`
	Period      string    `json:"period"`
	LastResetAt time.Time `json:"last_reset_at,omitzero"`
}

// NewUsageInfo derives remaining and percent from consumed and limit.
func NewUsageInfo(consumed, limit int64) UsageInfo {
	info := UsageInfo{Consumed: consumed, Remaining: max(0, limit-consumed)}
	if limit > 0 {
		info.Percent = math.Min(100, float64(consumed)/float64(limit)*100)
	} else {
		info.Percent = 100
	}
	return info
}
