package usage

import (
	"testing"
	"time"
)

func TestPeriodAt(t *testing.T) {
	p := PeriodAt(time.Date(2026, time.October, 16, 13, 4, 5, 0, time.UTC))
	if p.ID() != "2026-10" {
		t.Errorf("ID = %s, want 2026-10", p.ID())
	}
	if !p.Start.Equal(time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected start %v", p.Start)
	}
	if !p.End.Equal(time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected end %v", p.End)
	}
}

func TestPeriodAt_December(t *testing.T) {
	p := PeriodAt(time.Date(2026, time.December, 31, 23, 59, 59, 0, time.UTC))
	if p.ID() != "2026-12" {
		t.Errorf("ID = %s", p.ID())
	}
	if p.End.Year() != 2027 || p.End.Month() != time.January {
		t.Errorf("end = %v, want 2027-01-01", p.End)
	}
}

func TestPeriodAt_NormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC-3", -3*3600)
	// 2026-10-31 22:00 at UTC-3 is already November in UTC.
	p := PeriodAt(time.Date(2026, time.October, 31, 22, 0, 0, 0, loc))
	if p.ID() != "2026-11" {
		t.Errorf("ID = %s, want 2026-11", p.ID())
	}
}

func TestPeriod_Remaining(t *testing.T) {
	p := PeriodAt(time.Date(2026, time.October, 31, 23, 0, 0, 0, time.UTC))
	if got := p.Remaining(time.Date(2026, time.October, 31, 23, 0, 0, 0, time.UTC)); got != time.Hour {
		t.Errorf("Remaining = %v, want 1h", got)
	}
	if got := p.Remaining(p.End.Add(time.Minute)); got != 0 {
		t.Errorf("Remaining after end = %v, want 0", got)
	}
}

func TestNewUsageInfo(t *testing.T) {
	tests := []struct {
		consumed, limit int64
		remaining       int64
		percent         float64
	}{
		{0, 100, 100, 0},
		{50, 100, 50, 50},
		{101, 100, 0, 100},
		{5, 0, 0, 100},
	}
	for _, tt := range tests {
		got := NewUsageInfo(tt.consumed, tt.limit)
		if got.Remaining != tt.remaining || got.Percent != tt.percent {
			t.Errorf("NewUsageInfo(%d, %d) = {%d, %v}, want {%d, %v}",
				tt.consumed, tt.limit, got.Remaining, got.Percent, tt.remaining, tt.percent)
		}
	}
}
