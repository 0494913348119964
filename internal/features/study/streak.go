// Package study — streak.go содержит чистую машину состояний серии.
// Ни БД, ни времени «сейчас» — только (прошлое состояние, новый день).
package study

import "time"

// StreakState — прошлое состояние серии пользователя.
type StreakState struct {
	Streak  int       // Текущая серия
	LastDay time.Time // Последний учебный день (полночь в поясе приложения)
}

// Advance вычисляет новую серию для события в день today.
//
// Таблица переходов (gap = today - LastDay, в целых днях):
//
//	prior == nil → 1, первое событие дня (первое занятие вообще)
//	gap == 0     → серия без изменений, НЕ первое событие дня
//	gap == 1     → серия + 1, первое событие дня
//	gap  > 1     → серия сброшена в 1, первое событие дня
//	gap  < 0     → как gap == 0: часы ушли назад — серию не трогаем
//	               и не уменьшаем (защита от порчи данных)
//
// Флаг firstOfDay открывает дневной бонус; повторные события того же
// логического дня его не получают.
func Advance(prior *StreakState, today time.Time) (newStreak int, firstOfDay bool) {
	if prior == nil {
		return 1, true
	}

	gap := DaysBetween(prior.LastDay, today)
	switch {
	case gap == 1:
		return prior.Streak + 1, true
	case gap > 1:
		return 1, true
	default:
		// gap <= 0: сегодня уже записано (или аномалия часов)
		return prior.Streak, false
	}
}
