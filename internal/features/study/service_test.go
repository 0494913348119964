package study

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyriga.ru/telegram-bot/internal/common"
	"studyriga.ru/telegram-bot/internal/config"
)

// memStore — хранилище в памяти с той же семантикой, что у Postgres-репозитория:
// журнал + серия атомарно, дата последнего дня не уменьшается.
type memStore struct {
	states  map[int64]*StreakState
	records []*StudyRecord
}

func newMemStore() *memStore {
	return &memStore{states: make(map[int64]*StreakState)}
}

func (m *memStore) RecordStudy(_ context.Context, rec *StudyRecord, day time.Time) (int, bool, error) {
	m.records = append(m.records, rec)

	prior := m.states[rec.UserID]
	streak, first := Advance(prior, day)

	persistDay := day
	if prior != nil && prior.LastDay.After(day) {
		persistDay = prior.LastDay
	}
	m.states[rec.UserID] = &StreakState{Streak: streak, LastDay: persistDay}
	return streak, first, nil
}

func (m *memStore) GetUserStats(_ context.Context, userID int64) (*UserStats, error) {
	st, ok := m.states[userID]
	if !ok {
		return nil, nil
	}
	last := st.LastDay
	return &UserStats{UserID: userID, CurrentStreak: st.Streak, LastStudyDate: &last}, nil
}

func (m *memStore) UsersByLastStudyDate(_ context.Context, day time.Time) ([]int64, error) {
	var out []int64
	for id, st := range m.states {
		if st.LastDay.Equal(day) {
			out = append(out, id)
		}
	}
	return out, nil
}

func (m *memStore) TopByRecentActivity(_ context.Context, since time.Time, limit int) ([]RankingRow, error) {
	counts := make(map[string]int)
	for _, rec := range m.records {
		if !rec.RecordedAt.Before(since) {
			counts[rec.DisplayName]++
		}
	}
	var rows []RankingRow
	for name, c := range counts {
		rows = append(rows, RankingRow{DisplayName: name, Count: c})
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// memLedger — леджер в памяти.
type memLedger struct {
	balances map[int64]int64
}

func newMemLedger() *memLedger {
	return &memLedger{balances: make(map[int64]int64)}
}

func (m *memLedger) AddBalance(_ context.Context, userID int64, amount int64, _, _ string) (int64, error) {
	m.balances[userID] += amount
	return m.balances[userID], nil
}

func (m *memLedger) GetBalance(_ context.Context, userID int64) (int64, error) {
	return m.balances[userID], nil
}

func testConfig() *config.Config {
	return &config.Config{
		AppTimezone:           "UTC",
		DBOpTimeout:           time.Second,
		StreakGraceHours:      3,
		StudyCategories:       []string{"словарь", "учебник", "видео"},
		StreakRewardThreshold: 7,
		StreakRewardCap:       50,
		StreakRepeatBonus:     1,
		ReminderLagDays:       1,
		RankingWindowDays:     30,
		RankingLimit:          10,
	}
}

func newTestService() (*Service, *memStore, *memLedger) {
	store := newMemStore()
	ledger := newMemLedger()
	return NewService(store, ledger, testConfig()), store, ledger
}

// at возвращает момент «14:00 числа d» (вне грейс-окна).
func at(d int) time.Time {
	return time.Date(2026, 1, d, 14, 0, 0, 0, time.UTC)
}

func TestRecordStudy_FirstEver(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	res, err := svc.RecordStudy(ctx, 100, "@vasya", "словарь", at(10))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Streak)
	assert.True(t, res.FirstOfDay)
	assert.Equal(t, int64(0), res.Awarded, "до порога бонуса нет")
	assert.Equal(t, int64(0), res.Balance)
	assert.True(t, res.Day.Equal(day(10)))
}

func TestRecordStudy_UnknownCategory(t *testing.T) {
	svc, store, _ := newTestService()

	_, err := svc.RecordStudy(context.Background(), 100, "@vasya", "покер", at(10))
	assert.ErrorIs(t, err, common.ErrUnknownCategory)
	assert.Empty(t, store.records, "журнал не тронут")
}

func TestRecordStudy_ConsecutiveDays(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	// Дни 1..10 подряд
	var last *RecordResult
	for d := 1; d <= 10; d++ {
		res, err := svc.RecordStudy(ctx, 100, "@vasya", "учебник", at(d))
		require.NoError(t, err)
		assert.Equal(t, d, res.Streak)
		last = res
	}

	// Дни 1-6 — ноль; день 7 → 1, 8 → 2, 9 → 3, 10 → 4. Итого 10.
	assert.Equal(t, int64(4), last.Awarded)
	assert.Equal(t, int64(10), last.Balance)
}

func TestRecordStudy_RepeatSameDay(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	for d := 1; d <= 7; d++ {
		_, err := svc.RecordStudy(ctx, 100, "@vasya", "видео", at(d))
		require.NoError(t, err)
	}

	// Повторная запись в день 7: серия не растёт, утешительный бонус
	res, err := svc.RecordStudy(ctx, 100, "@vasya", "словарь", at(7).Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 7, res.Streak)
	assert.False(t, res.FirstOfDay)
	assert.Equal(t, int64(1), res.Awarded)
}

func TestRecordStudy_RepeatBelowThreshold(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.RecordStudy(ctx, 100, "@vasya", "видео", at(10))
	require.NoError(t, err)

	// Повтор при серии 1 — ничего
	res, err := svc.RecordStudy(ctx, 100, "@vasya", "учебник", at(10).Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Streak)
	assert.False(t, res.FirstOfDay)
	assert.Equal(t, int64(0), res.Awarded)
}

func TestRecordStudy_GraceWindowContinuesDay(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.RecordStudy(ctx, 100, "@vasya", "видео", at(10))
	require.NoError(t, err)

	// 02:30 следующей ночи — всё ещё логический день 10
	lateNight := time.Date(2026, 1, 11, 2, 30, 0, 0, time.UTC)
	res, err := svc.RecordStudy(ctx, 100, "@vasya", "словарь", lateNight)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Streak)
	assert.False(t, res.FirstOfDay)
	assert.True(t, res.Day.Equal(day(10)))
}

func TestRecordStudy_GapResets(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	for d := 1; d <= 8; d++ {
		_, err := svc.RecordStudy(ctx, 100, "@vasya", "видео", at(d))
		require.NoError(t, err)
	}

	// Пропуск дня 9 — день 10 начинает серию заново
	res, err := svc.RecordStudy(ctx, 100, "@vasya", "видео", at(10))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Streak)
	assert.True(t, res.FirstOfDay)
	assert.Equal(t, int64(0), res.Awarded)
}

func TestSelectReminderTargets(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	// 100 занимался в день 10, 200 — в день 11, 300 — в день 5
	_, err := svc.RecordStudy(ctx, 100, "@vasya", "видео", at(10))
	require.NoError(t, err)
	_, err = svc.RecordStudy(ctx, 200, "@petya", "видео", at(11))
	require.NoError(t, err)
	_, err = svc.RecordStudy(ctx, 300, "@kolya", "видео", at(5))
	require.NoError(t, err)

	// Вечер дня 11: напоминаем тем, у кого последний день = 10
	now := time.Date(2026, 1, 11, 22, 0, 0, 0, time.UTC)
	targets, err := svc.SelectReminderTargets(ctx, svc.ReminderDay(now))
	require.NoError(t, err)

	assert.Equal(t, []int64{100}, targets)
}

func TestReminderDay_GraceWindow(t *testing.T) {
	svc, _, _ := newTestService()

	// 01:00 ночи 12-го: логический день ещё 11, значит напоминаем про 10-е
	now := time.Date(2026, 1, 12, 1, 0, 0, 0, time.UTC)
	got := svc.ReminderDay(now)
	assert.True(t, got.Equal(day(10)), "got %v", got)
}

func TestRanking(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	for d := 1; d <= 3; d++ {
		_, err := svc.RecordStudy(ctx, 100, "@vasya", "видео", at(d))
		require.NoError(t, err)
	}
	_, err := svc.RecordStudy(ctx, 200, "@petya", "словарь", at(2))
	require.NoError(t, err)

	rows, err := svc.Ranking(ctx, at(5))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	counts := make(map[string]int)
	for _, row := range rows {
		counts[row.DisplayName] = row.Count
	}
	assert.Equal(t, 3, counts["@vasya"])
	assert.Equal(t, 1, counts["@petya"])
}

func TestGetStats_NewUser(t *testing.T) {
	svc, _, _ := newTestService()

	stats, err := svc.GetStats(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, stats)
}

func TestIsValidCategory(t *testing.T) {
	svc, _, _ := newTestService()

	assert.True(t, svc.IsValidCategory("словарь"))
	assert.False(t, svc.IsValidCategory("Словарь"), "регистр значим")
	assert.False(t, svc.IsValidCategory(""))
}
