package study

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogicalDay(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)

	tests := []struct {
		name    string
		at      time.Time
		wantDay time.Time
	}{
		{
			name:    "день — обычное время",
			at:      time.Date(2026, 1, 15, 14, 30, 0, 0, loc),
			wantDay: time.Date(2026, 1, 15, 0, 0, 0, 0, loc),
		},
		{
			name:    "02:59 — ещё вчерашний день",
			at:      time.Date(2026, 1, 15, 2, 59, 59, 0, loc),
			wantDay: time.Date(2026, 1, 14, 0, 0, 0, 0, loc),
		},
		{
			name:    "03:00 — уже сегодняшний день",
			at:      time.Date(2026, 1, 15, 3, 0, 0, 0, loc),
			wantDay: time.Date(2026, 1, 15, 0, 0, 0, 0, loc),
		},
		{
			name:    "полночь — вчерашний день",
			at:      time.Date(2026, 1, 15, 0, 0, 0, 0, loc),
			wantDay: time.Date(2026, 1, 14, 0, 0, 0, 0, loc),
		},
		{
			name:    "23:59 — сегодняшний день",
			at:      time.Date(2026, 1, 15, 23, 59, 0, 0, loc),
			wantDay: time.Date(2026, 1, 15, 0, 0, 0, 0, loc),
		},
		{
			name:    "окно работает и через границу месяца",
			at:      time.Date(2026, 2, 1, 1, 30, 0, 0, loc),
			wantDay: time.Date(2026, 1, 31, 0, 0, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LogicalDay(tt.at, loc, 3)
			assert.True(t, got.Equal(tt.wantDay), "got %v, want %v", got, tt.wantDay)
		})
	}
}

func TestLogicalDay_MomentInOtherZone(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)

	// 23:30 UTC = 02:30 MSK следующего календарного дня — окно
	// возвращает событие в «московское вчера»
	at := time.Date(2026, 1, 14, 23, 30, 0, 0, time.UTC)
	got := LogicalDay(at, loc, 3)
	want := time.Date(2026, 1, 14, 0, 0, 0, 0, loc)
	assert.True(t, got.Equal(want), "got %v, want %v", got, want)
}

func TestLogicalDay_ZeroGrace(t *testing.T) {
	loc := time.UTC

	at := time.Date(2026, 1, 15, 0, 30, 0, 0, loc)
	got := LogicalDay(at, loc, 0)
	want := time.Date(2026, 1, 15, 0, 0, 0, 0, loc)
	assert.True(t, got.Equal(want))
}

func TestDaysBetween(t *testing.T) {
	loc := time.UTC
	day := func(d int) time.Time {
		return time.Date(2026, 1, d, 0, 0, 0, 0, loc)
	}

	assert.Equal(t, 0, DaysBetween(day(10), day(10)))
	assert.Equal(t, 1, DaysBetween(day(10), day(11)))
	assert.Equal(t, 5, DaysBetween(day(10), day(15)))
	assert.Equal(t, -1, DaysBetween(day(10), day(9)))
}

func TestDaysBetween_DSTTransition(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	// Переход на летнее время: сутки из 23 часов, но это всё ещё 1 день
	before := time.Date(2026, 3, 29, 0, 0, 0, 0, loc)
	after := time.Date(2026, 3, 30, 0, 0, 0, 0, loc)
	assert.Equal(t, 1, DaysBetween(before, after))
}
