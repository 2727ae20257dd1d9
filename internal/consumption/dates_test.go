package consumption

import (
	"testing"
	"time"
)

var today = time.Date(2025, time.July, 24, 15, 30, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNormalizeDate_EmptyFallsBackToToday(t *testing.T) {
	got := NormalizeDate("", today)
	if !got.Equal(date(2025, time.July, 24)) {
		t.Fatalf("expected today, got %s", got)
	}
}

func TestNormalizeDate_Hoje(t *testing.T) {
	got := NormalizeDate("foi hoje de manhã", today)
	if !got.Equal(date(2025, time.July, 24)) {
		t.Fatalf("expected today, got %s", got)
	}
}

func TestNormalizeDate_Ontem(t *testing.T) {
	got := NormalizeDate("apliquei ontem", today)
	if !got.Equal(date(2025, time.July, 23)) {
		t.Fatalf("expected yesterday, got %s", got)
	}
}

func TestNormalizeDate_DayOfMonthName(t *testing.T) {
	got := NormalizeDate("dia 12 de março", today)
	if !got.Equal(date(2025, time.March, 12)) {
		t.Fatalf("expected 12 march, got %s", got)
	}
}

func TestNormalizeDate_MonthNameWithoutCedilla(t *testing.T) {
	got := NormalizeDate("5 de marco", today)
	if !got.Equal(date(2025, time.March, 5)) {
		t.Fatalf("expected 5 march, got %s", got)
	}
}

func TestNormalizeDate_FullDate(t *testing.T) {
	got := NormalizeDate("20/06/2024", today)
	if !got.Equal(date(2024, time.June, 20)) {
		t.Fatalf("expected 20/06/2024, got %s", got)
	}
}

func TestNormalizeDate_FullDateTwoDigitYear(t *testing.T) {
	got := NormalizeDate("20-06-24", today)
	if !got.Equal(date(2024, time.June, 20)) {
		t.Fatalf("expected 20/06/2024, got %s", got)
	}
}

func TestNormalizeDate_DayMonth(t *testing.T) {
	got := NormalizeDate("no dia 03/02", today)
	if !got.Equal(date(2025, time.February, 3)) {
		t.Fatalf("expected 03/02 current year, got %s", got)
	}
}

func TestNormalizeDate_BareDayNumber(t *testing.T) {
	got := NormalizeDate("dia 20", today)
	if !got.Equal(date(2025, time.July, 20)) {
		t.Fatalf("expected day 20 current month, got %s", got)
	}
}

func TestNormalizeDate_BareNumberOutOfRangeFallsBack(t *testing.T) {
	got := NormalizeDate("dia 45", today)
	if !got.Equal(date(2025, time.July, 24)) {
		t.Fatalf("expected fallback to today, got %s", got)
	}
}

func TestNormalizeDate_InvalidCalendarDateFallsThrough(t *testing.T) {
	// 31/02 never exists; the bare-number rule then reads the 31 as a
	// day in the current month.
	got := NormalizeDate("31/02", today)
	if !got.Equal(date(2025, time.July, 31)) {
		t.Fatalf("expected 31 of current month, got %s", got)
	}
}

func TestNormalizeDate_Idempotent(t *testing.T) {
	first := NormalizeDate("ontem", today)
	second := NormalizeDate(first.Format("02/01/2006"), today)
	if !first.Equal(second) {
		t.Fatalf("normalization not idempotent: %s vs %s", first, second)
	}
}
