package service

import (
	"testing"
	"time"
)

func TestMonthStartFilterAcceptsRecentFirstOfMonth(t *testing.T) {
	filter := MonthStartFilter(day(2024, 3, 8), 10)

	if !filter(day(2024, 3, 1)) {
		t.Error("expected March 1st inside the lookback to be accepted")
	}
}

func TestMonthStartFilterRejectsMidMonth(t *testing.T) {
	filter := MonthStartFilter(day(2024, 3, 8), 10)

	if filter(day(2024, 3, 5)) {
		t.Error("expected a mid-month date to be rejected")
	}
}

func TestMonthStartFilterRejectsOutsideLookback(t *testing.T) {
	filter := MonthStartFilter(day(2024, 3, 20), 10)

	if filter(day(2024, 3, 1)) {
		t.Error("expected a month start older than the lookback to be rejected")
	}
	if filter(day(2024, 4, 1)) {
		t.Error("expected a future month start to be rejected")
	}
}

func TestMonthStartFilterIgnoresClockComponents(t *testing.T) {
	filter := MonthStartFilter(day(2024, 3, 8), 10)

	noon := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	if !filter(noon) {
		t.Error("expected time-of-day to be ignored")
	}
}
