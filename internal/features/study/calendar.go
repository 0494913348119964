// Package study — calendar.go переводит абсолютный момент времени
// в «логический учебный день». Никакой другой модуль не имеет права
// заниматься датной арифметикой — вся она собрана здесь.
package study

import (
	"math"
	"time"
)

// LogicalDay возвращает логический учебный день для момента at.
//
// Правило: момент переводится в пояс loc; если локальный час попадает
// в окно [0, graceHours), событие засчитывается в ПРЕДЫДУЩИЙ календарный
// день. Занятие в 00:30 после полуночи продолжает вчерашнюю серию,
// а не открывает новую.
//
// Результат — полночь логического дня в поясе loc.
//
// Примеры (grace = 3):
//
//	02:59 15.01 → 14.01
//	03:00 15.01 → 15.01
func LogicalDay(at time.Time, loc *time.Location, graceHours int) time.Time {
	local := at.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	if local.Hour() < graceHours {
		day = day.AddDate(0, 0, -1)
	}
	return day
}

// DaysBetween возвращает разницу в целых днях между двумя логическими
// днями (полуночами). Округление прикрывает 23/25-часовые сутки при
// переводе часов.
func DaysBetween(from, to time.Time) int {
	return int(math.Round(to.Sub(from).Hours() / 24))
}
